package domain

import "strings"

// Level is the three-valued scale used for risk level, severity and significance.
type Level string

const (
	LevelLow    Level = "LOW"
	LevelMedium Level = "MEDIUM"
	LevelHigh   Level = "HIGH"
)

// Levels lists every valid Level, lowest first.
var Levels = []Level{LevelLow, LevelMedium, LevelHigh}

// Valid reports whether l is one of the enumerated levels.
func (l Level) Valid() bool {
	switch l {
	case LevelLow, LevelMedium, LevelHigh:
		return true
	}
	return false
}

// FileType represents the document formats accepted for upload.
type FileType string

const (
	FileTypePDF FileType = "pdf"
	FileTypeJPG FileType = "jpg"
	FileTypePNG FileType = "png"
)

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypePDF: "application/pdf",
	FileTypeJPG: "image/jpeg",
	FileTypePNG: "image/png",
}

// AllowedContentTypes maps accepted MIME content types back to FileType.
// image/jpg is not a registered type but browsers still send it.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
	"image/jpeg":      FileTypeJPG,
	"image/jpg":       FileTypeJPG,
	"image/png":       FileTypePNG,
}

// NormalizeContentType lower-cases a MIME type and drops any parameters.
func NormalizeContentType(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

// IsAllowedContentType reports whether contentType may be uploaded for analysis.
func IsAllowedContentType(contentType string) bool {
	_, ok := AllowedContentTypes[NormalizeContentType(contentType)]
	return ok
}
