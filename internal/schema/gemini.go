package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// Keywords understood by the Gemini Schema object. Everything else is dropped.
var geminiKeywords = map[string]bool{
	"type":        true,
	"format":      true,
	"description": true,
	"nullable":    true,
	"enum":        true,
	"properties":  true,
	"required":    true,
	"items":       true,
	"minimum":     true,
	"maximum":     true,
	"minItems":    true,
	"maxItems":    true,
}

func toGemini(s *openapi3.Schema) (map[string]interface{}, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshaling report schema: %w", err)
	}
	var generic map[string]interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("unmarshaling report schema: %w", err)
	}
	return convertNode(generic), nil
}

func convertNode(node map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(node))
	for key, val := range node {
		switch {
		case key == orderingExtension:
			out["propertyOrdering"] = val
		case !geminiKeywords[key]:
			continue
		case key == "type":
			out[key] = upperType(val)
		case key == "properties":
			props, _ := val.(map[string]interface{})
			converted := make(map[string]interface{}, len(props))
			for name, p := range props {
				if pm, ok := p.(map[string]interface{}); ok {
					converted[name] = convertNode(pm)
				}
			}
			out[key] = converted
		case key == "items":
			if im, ok := val.(map[string]interface{}); ok {
				out[key] = convertNode(im)
			}
		default:
			out[key] = val
		}
	}
	return out
}

// upperType maps OpenAPI type names to the upper-case Gemini Type enum.
func upperType(val interface{}) interface{} {
	switch t := val.(type) {
	case string:
		return strings.ToUpper(t)
	case []interface{}:
		if len(t) == 1 {
			if s, ok := t[0].(string); ok {
				return strings.ToUpper(s)
			}
		}
	}
	return val
}
