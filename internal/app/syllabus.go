package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/okian/studyplan/internal/adapters/export"
	"github.com/okian/studyplan/internal/domain/dedupe"
	"github.com/okian/studyplan/internal/domain/model"
	"github.com/okian/studyplan/internal/domain/syllabus"
	"github.com/okian/studyplan/pkg/logger"
	"github.com/okian/studyplan/pkg/metrics"
)

// Import outcomes.
const (
	importImported  = "imported"
	importDuplicate = "duplicate"
	importFailed    = "failed"
)

// ImportResult is the outcome of ImportEvents.
type ImportResult struct {
	Events   []model.CalendarEvent `json:"events"`
	Imported int                   `json:"imported"`
	Skipped  int                   `json:"skipped"`
	Failed   int                   `json:"failed"`
	Message  string                `json:"message"`
}

// ProcessSyllabus extracts events from an uploaded document and stores the
// document, its chunks and the events.
func (s *Service) ProcessSyllabus(ctx context.Context, userID, filename, content string) (model.SyllabusAnalysis, error) {
	start := s.now()
	if userID == "" || strings.TrimSpace(content) == "" {
		return model.SyllabusAnalysis{}, fmt.Errorf("%w: userId and syllabus content are required", ErrInvalidInput)
	}

	analysis, pieces := s.extractor.Analyze(content)
	doc := model.Syllabus{
		ID:         s.newID(),
		UserID:     userID,
		Filename:   filename,
		Content:    content,
		CourseInfo: analysis.CourseInfo,
		UploadedAt: start,
	}
	analysis.SyllabusID = doc.ID

	chunks := make([]model.Chunk, len(pieces))
	for i, p := range pieces {
		chunks[i] = model.Chunk{SyllabusID: doc.ID, Index: i, Content: p}
	}

	err := s.store.SaveSyllabus(ctx, doc, chunks, analysis.Events)
	s.audit(ctx, userID, model.ActionUploadSyllabus, start, map[string]string{
		"syllabusId": doc.ID,
		"filename":   filename,
		"chunks":     strconv.Itoa(len(chunks)),
		"events":     strconv.Itoa(len(analysis.Events)),
	}, err)
	if err != nil {
		return model.SyllabusAnalysis{}, fmt.Errorf("store syllabus: %w", err)
	}

	metrics.RecordSyllabusDocument()
	for _, ev := range analysis.Events {
		metrics.RecordSyllabusEvent(string(ev.Type))
	}
	s.logger.Info(ctx, "syllabus processed",
		logger.String("user", userID),
		logger.String("syllabus", doc.ID),
		logger.Int("chunks", len(chunks)),
		logger.Int("events", len(analysis.Events)),
	)
	return analysis, nil
}

// SearchSyllabus returns userID's events matching query.
func (s *Service) SearchSyllabus(ctx context.Context, userID, query string) ([]model.SyllabusEvent, error) {
	if userID == "" || strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: userId and query are required", ErrInvalidInput)
	}
	events, err := s.store.SyllabusEvents(ctx, userID)
	if err != nil {
		return nil, err
	}
	return syllabus.Search(events, query), nil
}

// UpcomingEvents returns userID's events in the next days days. A
// non-positive days uses the configured default.
func (s *Service) UpcomingEvents(ctx context.Context, userID string, days int) ([]model.SyllabusEvent, int, error) {
	if userID == "" {
		return nil, 0, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	if days <= 0 {
		days = s.upcomingDays
	}
	events, err := s.store.SyllabusEvents(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return syllabus.Upcoming(events, s.clock(), days), days, nil
}

// Snippets returns the chunks of userID's documents that best match query.
func (s *Service) Snippets(ctx context.Context, userID, query string, limit int) ([]syllabus.Snippet, error) {
	if userID == "" || strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: userId and query are required", ErrInvalidInput)
	}
	chunks, err := s.store.Chunks(ctx, userID)
	if err != nil {
		return nil, err
	}
	return syllabus.SearchChunks(chunks, query, limit), nil
}

// ImportEvents writes the selected syllabus events to the calendar as one
// hour events. Each user and event pair is imported at most once; an event
// the calendar rejected may be retried.
func (s *Service) ImportEvents(ctx context.Context, userID string, eventIDs []string) (ImportResult, error) {
	start := s.now()
	if userID == "" || len(eventIDs) == 0 {
		return ImportResult{}, fmt.Errorf("%w: userId and eventIds are required", ErrInvalidInput)
	}

	all, err := s.store.SyllabusEvents(ctx, userID)
	if err != nil {
		return ImportResult{}, err
	}
	wanted := make(map[string]bool, len(eventIDs))
	for _, id := range eventIDs {
		wanted[id] = true
	}
	var selected []model.SyllabusEvent
	for _, ev := range all {
		if wanted[ev.ID] {
			selected = append(selected, ev)
		}
	}
	if len(selected) == 0 {
		return ImportResult{}, ErrNoEvents
	}

	res := ImportResult{Events: []model.CalendarEvent{}}
	var lastErr error
	for _, ev := range selected {
		key := dedupe.Key(userID, ev.ID)
		if s.deduper.SeenAndRecord(ctx, key) {
			res.Skipped++
			metrics.RecordSyllabusImport(importDuplicate)
			continue
		}
		created, err := s.calendar.Create(ctx, importPlan(ev, s.newID()))
		if err != nil {
			s.deduper.Unrecord(ctx, key)
			res.Failed++
			lastErr = err
			metrics.RecordSyllabusImport(importFailed)
			s.logger.Warn(ctx, "failed to import syllabus event",
				logger.String("event", ev.ID), logger.Error(err))
			continue
		}
		res.Events = append(res.Events, created)
		res.Imported++
		metrics.RecordSyllabusImport(importImported)
	}
	res.Message = fmt.Sprintf("Successfully imported %d events to the calendar", res.Imported)

	var auditErr error
	if res.Imported == 0 && res.Failed > 0 {
		auditErr = lastErr
	}
	s.audit(ctx, userID, model.ActionImportEvents, start, map[string]string{
		"requested": strconv.Itoa(len(eventIDs)),
		"imported":  strconv.Itoa(res.Imported),
		"skipped":   strconv.Itoa(res.Skipped),
		"failed":    strconv.Itoa(res.Failed),
	}, auditErr)
	if auditErr != nil {
		return res, fmt.Errorf("import events: %w", auditErr)
	}
	return res, nil
}

func importPlan(ev model.SyllabusEvent, id string) model.EventPlan {
	desc := ev.Description
	if desc == "" {
		desc = "Imported from syllabus: " + ev.SourceText
	}
	return model.EventPlan{
		ID:            id,
		Title:         ev.Title,
		Description:   desc,
		StartDateTime: ev.Date,
		EndDateTime:   ev.Date.Add(importEventLength),
		Confidence:    ev.Confidence,
		Explanation:   "Imported from syllabus",
	}
}

// Export renders userID's syllabus events as an ICS or XLSX file.
func (s *Service) Export(ctx context.Context, userID, format string) (export.File, error) {
	if userID == "" {
		return export.File{}, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	events, err := s.store.SyllabusEvents(ctx, userID)
	if err != nil {
		return export.File{}, err
	}
	name := ""
	for _, ev := range events {
		if ev.Course != "" {
			name = ev.Course
			break
		}
	}
	return s.exporter.Syllabus(format, name, events)
}
