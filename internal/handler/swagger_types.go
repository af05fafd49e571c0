package handler

import (
	"propcheck/internal/render"
	"propcheck/internal/service"
)

// Request and response shapes referenced by the handler annotations.

// --- Request Types ---

// UploadDataURLRequest is the JSON form of an upload, as produced by a browser
// FileReader.readAsDataURL.
type UploadDataURLRequest struct {
	FileName string `json:"file_name" binding:"required" example:"sale_deed.pdf"`
	DataURL  string `json:"data_url" binding:"required" example:"data:application/pdf;base64,JVBERi0xLjQK..."`
}

// ImportRequest names an object in the configured document bucket. An empty
// bucket selects the default one.
type ImportRequest struct {
	Bucket string `json:"bucket" example:"property-docs"`
	Key    string `json:"key" binding:"required" example:"uploads/sale_deed.pdf"`
}

// --- Response Types ---

// SessionResponse is the session state; View is set only when a report is available.
type SessionResponse struct {
	service.Snapshot
	View *render.View `json:"view,omitempty"`
}

// HealthResponse is returned by the liveness and readiness probes.
type HealthResponse struct {
	Status  string `json:"status" example:"ok"`
	Version string `json:"version,omitempty" example:"1.0.0"`
	Model   string `json:"model,omitempty" example:"gemini-2.5-flash"`
}

// --- Generic Response Wrappers ---

// Response wraps a successful response with data.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}
