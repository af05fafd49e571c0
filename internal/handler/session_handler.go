package handler

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"propcheck/internal/csvexport"
	"propcheck/internal/document"
	"propcheck/internal/domain"
	"propcheck/internal/render"
	"propcheck/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// SessionHandler exposes the analysis session over HTTP.
type SessionHandler struct {
	sessionService service.SessionService
	maxUploadBytes int64
	now            func() time.Time
}

// NewSessionHandler creates a new SessionHandler. maxUploadBytes of 0 disables the
// size check.
func NewSessionHandler(sessionService service.SessionService, maxUploadBytes int64) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		maxUploadBytes: maxUploadBytes,
		now:            time.Now,
	}
}

// Upload handles POST /api/v1/session/upload
// @Summary Upload a document for analysis
// @Description Accepts a PDF, PNG or JPEG as multipart field "file", or JSON {file_name, data_url}.
// @Description Starts the analysis and returns immediately; poll GET /session for the result.
// @Tags session
// @Accept multipart/form-data,json
// @Produce json
// @Param file formData file false "Document (PDF, JPG, or PNG)"
// @Success 202 {object} Response{data=service.Snapshot} "Analysis started"
// @Failure 400 {object} ErrorResponseBody "Missing file or unsupported type"
// @Failure 409 {object} ErrorResponseBody "Analysis already in progress"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Router /session/upload [post]
func (h *SessionHandler) Upload(c *gin.Context) {
	var (
		input service.FileInput
		ok    bool
	)
	if strings.HasPrefix(c.ContentType(), "application/json") {
		input, ok = h.jsonInput(c)
	} else {
		input, ok = h.multipartInput(c)
	}
	if !ok {
		return
	}

	snap, err := h.sessionService.SelectFile(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondAccepted(c, snap)
}

func (h *SessionHandler) multipartInput(c *gin.Context) (service.FileInput, bool) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return service.FileInput{}, false
	}

	input := service.FileInput{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}
	if h.maxUploadBytes > 0 && header.Size > h.maxUploadBytes {
		// the session rejects it by size without reading
		return input, true
	}

	// buffer so the analysis does not depend on the request's temp files
	data, err := io.ReadAll(file)
	_ = file.Close()
	if err != nil {
		HandleError(c, &domain.EncodingError{Err: err})
		return service.FileInput{}, false
	}
	input.ContentType = document.DetectContentType(firstBytes(data), input.ContentType)
	input.Size = int64(len(data))
	input.Body = io.NopCloser(bytes.NewReader(data))
	return input, true
}

func (h *SessionHandler) jsonInput(c *gin.Context) (service.FileInput, bool) {
	var req UploadDataURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "file_name and data_url are required")
		return service.FileInput{}, false
	}

	mimeType, data, err := document.ParseDataURI(req.DataURL)
	if err != nil {
		HandleError(c, err)
		return service.FileInput{}, false
	}
	return service.FileInput{
		Name:        req.FileName,
		ContentType: mimeType,
		Size:        int64(len(data)),
		Body:        io.NopCloser(bytes.NewReader(data)),
	}, true
}

// Import handles POST /api/v1/session/import
// @Summary Analyze a document stored in S3
// @Tags session
// @Accept json
// @Produce json
// @Param request body ImportRequest true "Object location"
// @Success 202 {object} Response{data=service.Snapshot} "Analysis started"
// @Failure 404 {object} ErrorResponseBody "Import disabled or object not found"
// @Failure 409 {object} ErrorResponseBody "Analysis already in progress"
// @Router /session/import [post]
func (h *SessionHandler) Import(c *gin.Context) {
	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "key is required")
		return
	}

	snap, err := h.sessionService.Import(c.Request.Context(), req.Bucket, req.Key)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondAccepted(c, snap)
}

// Get handles GET /api/v1/session
// @Summary Get the session state
// @Description Returns the current phase; includes the report and its display view on success.
// @Tags session
// @Produce json
// @Success 200 {object} Response{data=SessionResponse} "Session state"
// @Router /session [get]
func (h *SessionHandler) Get(c *gin.Context) {
	RespondOK(c, newSessionResponse(h.sessionService.Snapshot()))
}

// Reset handles POST /api/v1/session/reset
// @Summary Reset the session to idle
// @Tags session
// @Produce json
// @Success 200 {object} Response{data=service.Snapshot} "Idle session"
// @Router /session/reset [post]
func (h *SessionHandler) Reset(c *gin.Context) {
	RespondOK(c, h.sessionService.Reset())
}

// ExportMarkdown handles GET /api/v1/session/report.md
// @Summary Download the report as printable Markdown
// @Tags session
// @Produce text/markdown
// @Failure 409 {object} ErrorResponseBody "No report available"
// @Router /session/report.md [get]
func (h *SessionHandler) ExportMarkdown(c *gin.Context) {
	snap, ok := h.reportSnapshot(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := render.NewMarkdownWriter(&buf).Write(snap.Report, snap.FileName, h.now()); err != nil {
		HandleError(c, err)
		return
	}
	h.attach(c, snap.FileName, "md")
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", buf.Bytes())
}

// ExportXLSX handles GET /api/v1/session/report.xlsx
// @Summary Download the report as an Excel workbook
// @Tags session
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Failure 409 {object} ErrorResponseBody "No report available"
// @Router /session/report.xlsx [get]
func (h *SessionHandler) ExportXLSX(c *gin.Context) {
	snap, ok := h.reportSnapshot(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := render.WriteXLSX(&buf, snap.Report, snap.FileName); err != nil {
		HandleError(c, err)
		return
	}
	h.attach(c, snap.FileName, "xlsx")
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ExportCSV handles GET /api/v1/session/report.csv
// @Summary Download the title flow as CSV
// @Tags session
// @Produce text/csv
// @Failure 409 {object} ErrorResponseBody "No report available"
// @Router /session/report.csv [get]
func (h *SessionHandler) ExportCSV(c *gin.Context) {
	snap, ok := h.reportSnapshot(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	buf.Write(csvexport.BOM)
	w := csvexport.NewWriter(&buf)
	if err := w.WriteHeader(); err != nil {
		HandleError(c, err)
		return
	}
	if err := w.WriteReport(snap.Report); err != nil {
		HandleError(c, err)
		return
	}
	w.Flush()
	if err := w.Error(); err != nil {
		HandleError(c, err)
		return
	}
	h.attach(c, snap.FileName, "csv")
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *SessionHandler) reportSnapshot(c *gin.Context) (service.Snapshot, bool) {
	snap := h.sessionService.Snapshot()
	if snap.Phase != service.PhaseSuccess || snap.Report == nil {
		HandleError(c, domain.ErrNoReport)
		return snap, false
	}
	return snap, true
}

func (h *SessionHandler) attach(c *gin.Context, fileName, ext string) {
	c.Header("Content-Disposition", `attachment; filename="`+csvexport.BuildFilename(fileName, ext, h.now())+`"`)
}

func firstBytes(data []byte) []byte {
	if len(data) > document.SniffLength {
		return data[:document.SniffLength]
	}
	return data
}

func newSessionResponse(snap service.Snapshot) SessionResponse {
	resp := SessionResponse{Snapshot: snap}
	if snap.Phase == service.PhaseSuccess && snap.Report != nil {
		view := render.NewView(snap.Report)
		resp.View = &view
	}
	return resp
}
