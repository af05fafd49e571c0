// Package schema holds the single definition of the due-diligence report schema.
// The same definition is sent to the model as its response schema and used to
// validate what comes back, so the two cannot drift apart.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"

	"propcheck/internal/domain"
)

const orderingExtension = "x-property-ordering"

type field struct {
	name     string
	schema   *openapi3.Schema
	required bool
}

func required(name string, s *openapi3.Schema) field { return field{name: name, schema: s, required: true} }
func optional(name string, s *openapi3.Schema) field { return field{name: name, schema: s} }

func object(fields ...field) *openapi3.Schema {
	s := openapi3.NewObjectSchema()
	order := make([]string, 0, len(fields))
	for _, f := range fields {
		s.WithProperty(f.name, f.schema)
		order = append(order, f.name)
		if f.required {
			s.Required = append(s.Required, f.name)
		}
	}
	s.Extensions = map[string]interface{}{orderingExtension: order}
	return s
}

func str(description string) *openapi3.Schema {
	s := openapi3.NewStringSchema()
	s.Description = description
	return s
}

func level(description string) *openapi3.Schema {
	values := make([]interface{}, 0, len(domain.Levels))
	for _, l := range domain.Levels {
		values = append(values, string(l))
	}
	return str(description).WithEnum(values...)
}

func arrayOf(items *openapi3.Schema, description string) *openapi3.Schema {
	s := openapi3.NewArraySchema().WithItems(items)
	s.Description = description
	return s
}

func build() *openapi3.Schema {
	propertyDetails := object(
		required("address", str("Full address or location of the property.")),
		required("surveyNumber", str("Survey, plot or khata number.")),
		required("totalArea", str("Total area with units.")),
		required("propertyType", str("Land, apartment, house, commercial unit, etc.")),
		optional("zoneType", str("Residential, Commercial, Agricultural, etc.")),
	)

	transaction := object(
		required("date", str("")),
		required("transactionType", str("Sale Deed, Mortgage, Release Deed, etc.")),
		required("from", str("")),
		required("to", str("")),
		required("amount", str("")),
		optional("documentNumber", str("")),
		optional("details", str("")),
	)

	financials := object(
		required("summary", str("Brief summary of financial observations (taxes, dues).")),
		required("lastTransactionValue", str("The value of the most recent transaction.")),
		required("taxStatus", str("Current status of property taxes (Paid/Pending/Unknown).")),
	)

	legalClause := object(
		required("clause", str("Title of the clause (e.g., Indemnity, Easement).")),
		required("explanation", str("Simple explanation of what this means for the buyer.")),
		required("significance", level("")),
	)

	riskFactor := object(
		required("category", str("e.g., Zoning, Environmental, Title, Financial")),
		required("risk", str("Name of the risk")),
		required("severity", level("")),
		required("explanation", str("")),
	)

	score := openapi3.NewIntegerSchema().WithMin(0).WithMax(100)
	score.Description = "Risk score from 0 (Safe) to 100 (Risky)"

	riskAssessment := object(
		required("riskLevel", level("")),
		required("score", score),
		required("factors", arrayOf(riskFactor, "")),
		required("recommendations", arrayOf(str(""), "")),
	)

	return object(
		required("reportSummary", str("A professional executive summary of the property document analysis.")),
		required("propertyDetails", propertyDetails),
		required("currentOwner", str("")),
		required("ownershipHistory", arrayOf(transaction, "Chronological chain of title transactions.")),
		required("encumbrances", arrayOf(str(""), "List of active liabilities, mortgages, or court stays.")),
		required("financials", financials),
		required("legalClauses", arrayOf(legalClause, "Key legal clauses extracted from the document.")),
		required("riskAssessment", riskAssessment),
	)
}

var (
	once         sync.Once
	reportSchema *openapi3.Schema
	geminiSchema map[string]interface{}
	geminiErr    error
)

func load() {
	reportSchema = build()
	geminiSchema, geminiErr = toGemini(reportSchema)
}

// Report returns the report schema. Callers must not modify it.
func Report() *openapi3.Schema {
	once.Do(load)
	return reportSchema
}

// Gemini returns the report schema in the shape expected by the Gemini
// generationConfig.responseSchema field.
func Gemini() (map[string]interface{}, error) {
	once.Do(load)
	return geminiSchema, geminiErr
}

// Decode validates a model response against the report schema and converts it
// into a report. Any failure wraps domain.ErrSchemaViolation; no partial report
// is ever returned.
func Decode(text []byte) (*domain.DueDiligenceReport, error) {
	var value interface{}
	if err := json.Unmarshal(text, &value); err != nil {
		return nil, fmt.Errorf("%w: malformed JSON: %v", domain.ErrSchemaViolation, err)
	}

	if err := Report().VisitJSON(value); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSchemaViolation, err)
	}

	dec := json.NewDecoder(bytes.NewReader(text))
	var report domain.DueDiligenceReport
	if err := dec.Decode(&report); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSchemaViolation, err)
	}
	return &report, nil
}
