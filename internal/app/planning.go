package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/okian/studyplan/internal/adapters/calendar"
	"github.com/okian/studyplan/internal/adapters/llm"
	"github.com/okian/studyplan/internal/adapters/repository"
	"github.com/okian/studyplan/internal/domain/model"
	"github.com/okian/studyplan/internal/domain/planner"
	"github.com/okian/studyplan/pkg/logger"
	"github.com/okian/studyplan/pkg/metrics"
)

// Extraction paths.
const (
	PathHeuristic = "heuristic"
	PathLLM       = "llm"
)

// LLM fallback reasons.
const (
	fallbackError         = "error"
	fallbackLowConfidence = "low_confidence"
	fallbackIntent        = "intent"
)

// LLMSummary is the part of an LLM analysis returned to the caller.
type LLMSummary struct {
	Confidence     float64    `json:"confidence"`
	Intent         llm.Intent `json:"intent"`
	Clarifications []string   `json:"clarificationNeeded,omitempty"`
	Suggestions    []string   `json:"suggestions,omitempty"`
	Fallback       bool       `json:"fallback"`
}

// AnalyzeResult is the outcome of Analyze.
type AnalyzeResult struct {
	SessionID     string            `json:"sessionId"`
	Plans         []model.EventPlan `json:"plans"`
	OriginalInput string            `json:"originalInput"`
	Path          string            `json:"path"`
	Timestamp     time.Time         `json:"timestamp"`
	LLMAnalysis   *LLMSummary       `json:"llmAnalysis"`
}

// Analyze turns a free-text request into plans. The heuristic planner always
// runs; when an analyzer is configured its result replaces the heuristic
// plans only if it reports a schedule intent above the confidence threshold.
// Analyzer failures never fail the request.
func (s *Service) Analyze(ctx context.Context, req model.SchedulingRequest) (AnalyzeResult, error) {
	start := s.now()
	input := strings.TrimSpace(req.NaturalLanguageInput)
	if input == "" || req.UserID == "" {
		return AnalyzeResult{}, fmt.Errorf("%w: naturalLanguageInput and userId are required", ErrInvalidInput)
	}
	req.NaturalLanguageInput = input

	session := model.SchedulingSession{
		ID:        s.newID(),
		UserID:    req.UserID,
		Input:     input,
		Status:    model.SessionStarted,
		CreatedAt: start,
	}
	s.advance(ctx, &session, model.SessionStarted)

	prefs := s.requestPreferences(ctx, req)
	if prefs != nil {
		if req.Context == nil {
			req.Context = &model.RequestContext{}
		} else {
			c := *req.Context
			req.Context = &c
		}
		req.Context.UserPreferences = prefs
	}

	s.advance(ctx, &session, model.SessionAnalyzing)
	plans := s.planner.CreatePlans(ctx, req)
	path := PathHeuristic

	var summary *LLMSummary
	if s.analyzer != nil {
		a := s.enhance(ctx, input)
		summary = &LLMSummary{
			Confidence:     a.Confidence,
			Intent:         a.Intent,
			Clarifications: a.Clarifications,
			Suggestions:    a.Suggestions,
			Fallback:       a.Fallback,
		}
		if a.Usable(s.threshold) {
			s.advance(ctx, &session, model.SessionPlanning)
			plans = s.planner.FromDraft(ctx, withPreferences(a.Draft(input), prefs))
			path = PathLLM
		} else if !a.Fallback {
			reason := fallbackLowConfidence
			if a.Intent != llm.IntentSchedule {
				reason = fallbackIntent
			}
			metrics.RecordLLMFallback(reason)
		}
	}
	if session.Status != model.SessionPlanning {
		s.advance(ctx, &session, model.SessionPlanning)
	}

	metrics.RecordAnalyzePath(path)
	for _, p := range plans {
		metrics.RecordPlan(path, p.Confidence)
	}

	if err := s.store.SavePlans(ctx, req.UserID, plans); err != nil {
		s.logger.Warn(ctx, "failed to store plans", logger.String("user", req.UserID), logger.Error(err))
		metrics.RecordErrorByComponent("service", "save_plans")
	}
	session.PlanIDs = make([]string, len(plans))
	for i, p := range plans {
		session.PlanIDs[i] = p.ID
	}
	session.Path = path
	s.advance(ctx, &session, model.SessionUserReview)

	s.audit(ctx, req.UserID, model.ActionAnalyzeRequest, start, map[string]string{
		"sessionId": session.ID,
		"path":      path,
		"plans":     strconv.Itoa(len(plans)),
	}, nil)

	return AnalyzeResult{
		SessionID:     session.ID,
		Plans:         plans,
		OriginalInput: input,
		Path:          path,
		Timestamp:     s.clock(),
		LLMAnalysis:   summary,
	}, nil
}

// enhance runs the analyzer under its own deadline. Errors yield the
// fallback analysis.
func (s *Service) enhance(ctx context.Context, input string) llm.Analysis {
	ctx, cancel := context.WithTimeout(ctx, s.llmTimeout)
	defer cancel()

	start := time.Now()
	a, err := s.analyzer.Analyze(ctx, input)
	if err != nil {
		metrics.RecordLLMRequest(metrics.StatusError, time.Since(start))
		metrics.RecordLLMFallback(fallbackError)
		s.logger.Warn(ctx, "llm analysis failed, using heuristic planner", logger.Error(err))
		return llm.Fallback(input)
	}
	metrics.RecordLLMRequest(metrics.StatusOK, time.Since(start))
	return a
}

// requestPreferences returns the preferences sent with the request, else
// the stored ones.
func (s *Service) requestPreferences(ctx context.Context, req model.SchedulingRequest) *model.UserPreferences {
	if req.Context != nil && req.Context.UserPreferences != nil {
		return req.Context.UserPreferences
	}
	prefs, err := s.store.Preferences(ctx, req.UserID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn(ctx, "failed to load preferences", logger.String("user", req.UserID), logger.Error(err))
		}
		return nil
	}
	return &prefs
}

func withPreferences(d planner.Draft, prefs *model.UserPreferences) planner.Draft {
	if prefs == nil || len(prefs.AvoidDays) == 0 {
		return d
	}
	days := append(append([]model.Weekday{}, d.Constraints.AvoidDays...), prefs.AvoidDays...)
	d.Constraints.AvoidDays = model.SortWeekdays(days)
	return d
}

// ValidatePlan lists what is wrong with a caller-edited plan.
func (s *Service) ValidatePlan(plan model.EventPlan) []string {
	return planner.Validate(plan)
}

// CheckConflicts checks plan against existing. When existing is nil the
// plan's day is fetched from the calendar provider; a provider failure is
// logged and the check runs against an empty calendar.
func (s *Service) CheckConflicts(ctx context.Context, userID string, plan model.EventPlan, existing []model.CalendarEvent) (model.ConflictResolution, error) {
	start := s.now()
	if issues := planner.Validate(plan); len(issues) > 0 {
		return model.ConflictResolution{}, fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(issues, "; "))
	}

	if existing == nil {
		from, to := calendar.DayWindow(plan.StartDateTime)
		events, err := s.calendar.List(ctx, from, to)
		if err != nil {
			s.logger.Warn(ctx, "failed to fetch calendar events, checking against an empty calendar",
				logger.String("provider", s.calendarLabel), logger.Error(err))
			metrics.RecordErrorByComponent("service", "calendar_list")
		}
		existing = events
	}

	res := s.resolver.Check(plan, existing)
	metrics.RecordConflictCheck(len(res.Alternatives))
	for _, c := range res.Conflicts {
		metrics.RecordConflict(string(c.ConflictType), string(c.Severity))
	}

	s.audit(ctx, userID, model.ActionCheckConflicts, start, map[string]string{
		"planId":       plan.ID,
		"conflicts":    strconv.Itoa(len(res.Conflicts)),
		"alternatives": strconv.Itoa(len(res.Alternatives)),
	}, nil)
	return res, nil
}

// Session returns a stored scheduling session.
func (s *Service) Session(ctx context.Context, id string) (model.SchedulingSession, error) {
	return s.store.Session(ctx, id)
}

// UpdateSession moves a session to status. Terminal sessions cannot move.
func (s *Service) UpdateSession(ctx context.Context, id string, status model.SessionStatus) (model.SchedulingSession, error) {
	if !knownStatus(status) {
		return model.SchedulingSession{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	session, err := s.store.Session(ctx, id)
	if err != nil {
		return model.SchedulingSession{}, err
	}
	if session.Status.Terminal() {
		return model.SchedulingSession{}, fmt.Errorf("%w: session is %s", ErrInvalidTransition, session.Status)
	}
	session.Status = status
	session.UpdatedAt = s.now()
	if err := s.store.SaveSession(ctx, session); err != nil {
		return model.SchedulingSession{}, err
	}
	return session, nil
}

func knownStatus(st model.SessionStatus) bool {
	switch st {
	case model.SessionStarted, model.SessionAnalyzing, model.SessionPlanning, model.SessionConflictCheck,
		model.SessionUserReview, model.SessionConfirmed, model.SessionCompleted, model.SessionCancelled,
		model.SessionFailed:
		return true
	}
	return false
}

// advance stores session with its new status. Failures are logged only.
func (s *Service) advance(ctx context.Context, session *model.SchedulingSession, status model.SessionStatus) {
	session.Status = status
	session.UpdatedAt = s.now()
	if err := s.store.SaveSession(ctx, *session); err != nil {
		s.logger.Warn(ctx, "failed to store session",
			logger.String("session", session.ID),
			logger.String("status", string(status)),
			logger.Error(err))
	}
}
