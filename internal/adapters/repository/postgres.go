package repository

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/studyplan/internal/domain/model"
)

//go:embed schema.sql
var schema string

// Postgres is a Store on a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ Store = (*Postgres)(nil)

// Connect opens a pool for dsn and applies the schema.
func Connect(ctx context.Context, dsn string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	p := &Postgres{pool: pool}
	if err := p.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

// Migrate applies the embedded schema. Statements are idempotent.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("exec schema: %w", err)
	}
	return nil
}

func (p *Postgres) Ready(ctx context.Context) error {
	var one int
	return p.pool.QueryRow(ctx, "select 1").Scan(&one)
}

func (p *Postgres) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

func (p *Postgres) SavePlans(ctx context.Context, userID string, plans []model.EventPlan) (err error) {
	start := time.Now()
	defer func() { observe("save_plans", start, err) }()
	if len(plans) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, plan := range plans {
		if plan.ID == "" {
			return fmt.Errorf("%w: plan without id", ErrInvalidRecord)
		}
		payload, err := json.Marshal(plan)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
		}
		batch.Queue(`
INSERT INTO event_plans (id, user_id, title, start_at, end_at, payload)
VALUES ($1, $2, $3, $4, $5, $6::jsonb)
ON CONFLICT (id) DO UPDATE SET
  title = EXCLUDED.title, start_at = EXCLUDED.start_at,
  end_at = EXCLUDED.end_at, payload = EXCLUDED.payload`,
			plan.ID, userID, plan.Title, plan.StartDateTime, plan.EndDateTime, string(payload))
	}
	return p.pool.SendBatch(ctx, batch).Close()
}

func (p *Postgres) Plan(ctx context.Context, id string) (model.EventPlan, error) {
	var payload []byte
	err := p.pool.QueryRow(ctx, `SELECT payload FROM event_plans WHERE id = $1`, id).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.EventPlan{}, ErrNotFound
	}
	if err != nil {
		return model.EventPlan{}, fmt.Errorf("select plan: %w", err)
	}
	var plan model.EventPlan
	if err := json.Unmarshal(payload, &plan); err != nil {
		return model.EventPlan{}, fmt.Errorf("decode plan: %w", err)
	}
	return plan, nil
}

func (p *Postgres) SaveSyllabus(ctx context.Context, doc model.Syllabus, chunks []model.Chunk, events []model.SyllabusEvent) (err error) {
	start := time.Now()
	defer func() { observe("save_syllabus", start, err) }()
	if doc.ID == "" || doc.UserID == "" {
		return fmt.Errorf("%w: syllabus needs id and user", ErrInvalidRecord)
	}
	return pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
INSERT INTO syllabi (id, user_id, filename, content, course_name, instructor, semester, uploaded_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE SET
  filename = EXCLUDED.filename, content = EXCLUDED.content,
  course_name = EXCLUDED.course_name, instructor = EXCLUDED.instructor,
  semester = EXCLUDED.semester`,
			doc.ID, doc.UserID, doc.Filename, doc.Content,
			doc.CourseInfo.Name, doc.CourseInfo.Instructor, doc.CourseInfo.Semester, doc.UploadedAt,
		); err != nil {
			return fmt.Errorf("insert syllabus: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM syllabus_chunks WHERE syllabus_id = $1`, doc.ID); err != nil {
			return fmt.Errorf("clear chunks: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM syllabus_events WHERE syllabus_id = $1`, doc.ID); err != nil {
			return fmt.Errorf("clear events: %w", err)
		}

		chunkRows := make([][]any, 0, len(chunks))
		for _, c := range chunks {
			chunkRows = append(chunkRows, []any{doc.ID, c.Index, c.Content})
		}
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"syllabus_chunks"},
			[]string{"syllabus_id", "chunk_index", "content"}, pgx.CopyFromRows(chunkRows)); err != nil {
			return fmt.Errorf("copy chunks: %w", err)
		}

		eventRows := make([][]any, 0, len(events))
		for _, ev := range events {
			eventRows = append(eventRows, []any{
				doc.ID, ev.ID, ev.Title, ev.Date, string(ev.Type),
				ev.Description, ev.Course, ev.Confidence, ev.SourceText,
			})
		}
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"syllabus_events"},
			[]string{"syllabus_id", "id", "title", "event_date", "event_type", "description", "course", "confidence", "source_text"},
			pgx.CopyFromRows(eventRows)); err != nil {
			return fmt.Errorf("copy events: %w", err)
		}
		return nil
	})
}

func (p *Postgres) Syllabus(ctx context.Context, id string) (model.Syllabus, error) {
	var s model.Syllabus
	err := p.pool.QueryRow(ctx, `
SELECT id, user_id, filename, content, course_name, instructor, semester, uploaded_at
FROM syllabi WHERE id = $1`, id).Scan(
		&s.ID, &s.UserID, &s.Filename, &s.Content,
		&s.CourseInfo.Name, &s.CourseInfo.Instructor, &s.CourseInfo.Semester, &s.UploadedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Syllabus{}, ErrNotFound
	}
	if err != nil {
		return model.Syllabus{}, fmt.Errorf("select syllabus: %w", err)
	}
	return s, nil
}

func (p *Postgres) SyllabusEvents(ctx context.Context, userID string) ([]model.SyllabusEvent, error) {
	rows, err := p.pool.Query(ctx, `
SELECT e.id, e.title, e.event_date, e.event_type, e.description, e.course, e.confidence, e.source_text
FROM syllabus_events e JOIN syllabi s ON s.id = e.syllabus_id
WHERE s.user_id = $1
ORDER BY e.event_date ASC, s.uploaded_at ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("select events: %w", err)
	}
	defer rows.Close()

	var out []model.SyllabusEvent
	for rows.Next() {
		var ev model.SyllabusEvent
		var typ string
		if err := rows.Scan(&ev.ID, &ev.Title, &ev.Date, &typ, &ev.Description, &ev.Course, &ev.Confidence, &ev.SourceText); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Type = model.EventType(typ)
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (p *Postgres) Chunks(ctx context.Context, userID string) ([]model.Chunk, error) {
	rows, err := p.pool.Query(ctx, `
SELECT c.syllabus_id, c.chunk_index, c.content
FROM syllabus_chunks c JOIN syllabi s ON s.id = c.syllabus_id
WHERE s.user_id = $1
ORDER BY s.uploaded_at ASC, c.syllabus_id, c.chunk_index`, userID)
	if err != nil {
		return nil, fmt.Errorf("select chunks: %w", err)
	}
	defer rows.Close()

	var out []model.Chunk
	for rows.Next() {
		var c model.Chunk
		if err := rows.Scan(&c.SyllabusID, &c.Index, &c.Content); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (p *Postgres) Preferences(ctx context.Context, userID string) (model.UserPreferences, error) {
	var payload []byte
	err := p.pool.QueryRow(ctx, `SELECT payload FROM user_preferences WHERE user_id = $1`, userID).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.UserPreferences{}, ErrNotFound
	}
	if err != nil {
		return model.UserPreferences{}, fmt.Errorf("select preferences: %w", err)
	}
	var prefs model.UserPreferences
	if err := json.Unmarshal(payload, &prefs); err != nil {
		return model.UserPreferences{}, fmt.Errorf("decode preferences: %w", err)
	}
	return prefs, nil
}

func (p *Postgres) SavePreferences(ctx context.Context, prefs model.UserPreferences) error {
	if prefs.UserID == "" {
		return fmt.Errorf("%w: preferences without user", ErrInvalidRecord)
	}
	payload, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	_, err = p.pool.Exec(ctx, `
INSERT INTO user_preferences (user_id, payload, updated_at) VALUES ($1, $2::jsonb, now())
ON CONFLICT (user_id) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`,
		prefs.UserID, string(payload))
	return err
}

func (p *Postgres) AppendAudit(ctx context.Context, entries ...model.AuditEntry) (err error) {
	start := time.Now()
	defer func() { observe("append_audit", start, err) }()
	if len(entries) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, e := range entries {
		if e.ID == "" {
			return fmt.Errorf("%w: audit entry without id", ErrInvalidRecord)
		}
		var details any
		if len(e.Details) > 0 {
			b, _ := json.Marshal(e.Details)
			details = string(b)
		}
		batch.Queue(`
INSERT INTO audit_log (id, user_id, action, status, details, error, duration_ms, created_at)
VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7, $8)
ON CONFLICT DO NOTHING`,
			e.ID, e.UserID, string(e.Action), string(e.Status), details, e.Error, e.DurationMs, e.CreatedAt)
	}
	return p.pool.SendBatch(ctx, batch).Close()
}

func (p *Postgres) Audit(ctx context.Context, userID string, limit int) ([]model.AuditEntry, error) {
	rows, err := p.pool.Query(ctx, `
SELECT id, user_id, action, status, details, error, duration_ms, created_at
FROM audit_log WHERE user_id = $1
ORDER BY created_at DESC LIMIT $2`, userID, auditLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("select audit: %w", err)
	}
	defer rows.Close()

	var out []model.AuditEntry
	for rows.Next() {
		var (
			e              model.AuditEntry
			action, status string
			details        []byte
		)
		if err := rows.Scan(&e.ID, &e.UserID, &action, &status, &details, &e.Error, &e.DurationMs, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit: %w", err)
		}
		e.Action = model.AuditAction(action)
		e.Status = model.AuditStatus(status)
		if e.Details, err = decodeDetails(details); err != nil {
			return nil, fmt.Errorf("decode audit %s: %w", e.ID, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// decodeDetails reads an audit details column. NULL and empty give nil.
func decodeDetails(b []byte) (map[string]string, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var d map[string]string
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, err
	}
	return d, nil
}

func (p *Postgres) SaveSession(ctx context.Context, s model.SchedulingSession) error {
	if s.ID == "" {
		return fmt.Errorf("%w: session without id", ErrInvalidRecord)
	}
	planIDs := s.PlanIDs
	if planIDs == nil {
		planIDs = []string{}
	}
	_, err := p.pool.Exec(ctx, `
INSERT INTO scheduling_sessions (id, user_id, input, status, plan_ids, path, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE SET
  status = EXCLUDED.status, plan_ids = EXCLUDED.plan_ids,
  path = EXCLUDED.path, updated_at = EXCLUDED.updated_at`,
		s.ID, s.UserID, s.Input, string(s.Status), planIDs, s.Path, s.CreatedAt, s.UpdatedAt)
	return err
}

func (p *Postgres) Session(ctx context.Context, id string) (model.SchedulingSession, error) {
	var (
		s      model.SchedulingSession
		status string
	)
	err := p.pool.QueryRow(ctx, `
SELECT id, user_id, input, status, plan_ids, path, created_at, updated_at
FROM scheduling_sessions WHERE id = $1`, id).Scan(
		&s.ID, &s.UserID, &s.Input, &status, &s.PlanIDs, &s.Path, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.SchedulingSession{}, ErrNotFound
	}
	if err != nil {
		return model.SchedulingSession{}, fmt.Errorf("select session: %w", err)
	}
	s.Status = model.SessionStatus(status)
	return s, nil
}
