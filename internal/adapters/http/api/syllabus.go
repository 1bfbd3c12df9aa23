package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/okian/studyplan/internal/adapters/export"
	service "github.com/okian/studyplan/internal/app"
	"github.com/okian/studyplan/internal/domain/model"
	"github.com/okian/studyplan/internal/domain/syllabus"
)

const (
	// maxUploadBytes caps syllabus uploads.
	maxUploadBytes = 10 << 20
	uploadField    = "syllabus"
)

// SyllabusDependencies is what the syllabus routes need.
type SyllabusDependencies interface {
	ProcessSyllabus(ctx context.Context, userID, filename, content string) (model.SyllabusAnalysis, error)
	SearchSyllabus(ctx context.Context, userID, query string) ([]model.SyllabusEvent, error)
	UpcomingEvents(ctx context.Context, userID string, days int) ([]model.SyllabusEvent, int, error)
	Snippets(ctx context.Context, userID, query string, limit int) ([]syllabus.Snippet, error)
	ImportEvents(ctx context.Context, userID string, eventIDs []string) (service.ImportResult, error)
	Export(ctx context.Context, userID, format string) (export.File, error)
}

// SyllabusHandler handles syllabus upload, search and import.
type SyllabusHandler struct {
	deps SyllabusDependencies
}

// NewSyllabusHandler creates a new syllabus handler.
func NewSyllabusHandler(deps SyllabusDependencies) *SyllabusHandler {
	return &SyllabusHandler{deps: deps}
}

type uploadRequest struct {
	UserID   string `json:"userId"`
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

type importRequest struct {
	UserID   string   `json:"userId"`
	EventIDs []string `json:"eventIds"`
}

type eventsResponse struct {
	Events []model.SyllabusEvent `json:"events"`
	Query  string                `json:"query,omitempty"`
	Days   int                   `json:"days,omitempty"`
	Count  int                   `json:"count"`
}

type snippetsResponse struct {
	Snippets []syllabus.Snippet `json:"snippets"`
	Query    string             `json:"query"`
	Count    int                `json:"count"`
}

// HandleUpload handles POST /syllabus/upload. It takes either a multipart
// form with a "syllabus" text file and a userId field, or a JSON body.
func (h *SyllabusHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	const op = "api.syllabus_upload"
	if !allow(w, r, http.MethodPost) {
		return
	}
	req, err := readUpload(w, r, op)
	if err != nil {
		respond(w, r, op, err)
		return
	}
	analysis, err := h.deps.ProcessSyllabus(r.Context(), req.UserID, req.Filename, req.Content)
	if err != nil {
		respond(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, analysis)
}

func readUpload(w http.ResponseWriter, r *http.Request, op string) (uploadRequest, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var req uploadRequest
		err := decode(w, r, op, &req)
		return req, err
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return uploadRequest{}, WrapKind(op, ErrBadRequest, err)
	}
	file, header, err := r.FormFile(uploadField)
	if err != nil {
		return uploadRequest{}, WrapKind(op, ErrBadRequest, fmt.Errorf("missing %s file: %w", uploadField, err))
	}
	defer func() { _ = file.Close() }()

	body, err := io.ReadAll(file)
	if err != nil {
		return uploadRequest{}, WrapKind(op, ErrBadRequest, err)
	}
	if !utf8.Valid(body) {
		return uploadRequest{}, WrapKind(op, ErrBadRequest, errors.New("only text syllabi are supported"))
	}
	return uploadRequest{
		UserID:   r.FormValue("userId"),
		Filename: header.Filename,
		Content:  string(body),
	}, nil
}

// HandleSearch handles GET /syllabus/search?userId=&query=.
func (h *SyllabusHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	const op = "api.syllabus_search"
	if !allow(w, r, http.MethodGet) {
		return
	}
	userID, err := required(r, op, "userId")
	if err != nil {
		respond(w, r, op, err)
		return
	}
	query, err := required(r, op, "query")
	if err != nil {
		respond(w, r, op, err)
		return
	}
	events, err := h.deps.SearchSyllabus(r.Context(), userID, query)
	if err != nil {
		respond(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, eventsResponse{Events: nonNil(events), Query: query, Count: len(events)})
}

// HandleUpcoming handles GET /syllabus/upcoming?userId=&days=.
func (h *SyllabusHandler) HandleUpcoming(w http.ResponseWriter, r *http.Request) {
	const op = "api.syllabus_upcoming"
	if !allow(w, r, http.MethodGet) {
		return
	}
	userID, err := required(r, op, "userId")
	if err != nil {
		respond(w, r, op, err)
		return
	}
	days, err := intParam(r, op, "days", 0)
	if err != nil {
		respond(w, r, op, err)
		return
	}
	events, days, err := h.deps.UpcomingEvents(r.Context(), userID, days)
	if err != nil {
		respond(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, eventsResponse{Events: nonNil(events), Days: days, Count: len(events)})
}

// HandleSnippets handles GET /syllabus/snippets?userId=&query=&limit=.
func (h *SyllabusHandler) HandleSnippets(w http.ResponseWriter, r *http.Request) {
	const op = "api.syllabus_snippets"
	if !allow(w, r, http.MethodGet) {
		return
	}
	userID, err := required(r, op, "userId")
	if err != nil {
		respond(w, r, op, err)
		return
	}
	query, err := required(r, op, "query")
	if err != nil {
		respond(w, r, op, err)
		return
	}
	limit, err := intParam(r, op, "limit", syllabus.DefaultSnippetLimit)
	if err != nil {
		respond(w, r, op, err)
		return
	}
	snippets, err := h.deps.Snippets(r.Context(), userID, query, limit)
	if err != nil {
		respond(w, r, op, err)
		return
	}
	if snippets == nil {
		snippets = []syllabus.Snippet{}
	}
	writeJSON(w, http.StatusOK, snippetsResponse{Snippets: snippets, Query: query, Count: len(snippets)})
}

// HandleImport handles POST /syllabus/import-events.
func (h *SyllabusHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	const op = "api.syllabus_import"
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req importRequest
	if err := decode(w, r, op, &req); err != nil {
		respond(w, r, op, err)
		return
	}
	if strings.TrimSpace(req.UserID) == "" || len(req.EventIDs) == 0 {
		respond(w, r, op, WrapKind(op, ErrBadRequest, errors.New("userId and eventIds are required")))
		return
	}
	res, err := h.deps.ImportEvents(r.Context(), req.UserID, req.EventIDs)
	if err != nil {
		respond(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleExport handles GET /syllabus/export?userId=&format=ics|xlsx and
// answers with the file as an attachment.
func (h *SyllabusHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	const op = "api.syllabus_export"
	if !allow(w, r, http.MethodGet) {
		return
	}
	userID, err := required(r, op, "userId")
	if err != nil {
		respond(w, r, op, err)
		return
	}
	format := strings.TrimSpace(r.URL.Query().Get("format"))
	if format == "" {
		format = export.FormatICS
	}
	file, err := h.deps.Export(r.Context(), userID, format)
	if err != nil {
		respond(w, r, op, err)
		return
	}
	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.Name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Body)
}

func nonNil(events []model.SyllabusEvent) []model.SyllabusEvent {
	if events == nil {
		return []model.SyllabusEvent{}
	}
	return events
}
