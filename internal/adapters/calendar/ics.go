package calendar

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/robfig/cron/v3"

	"github.com/okian/studyplan/internal/domain/model"
	"github.com/okian/studyplan/pkg/logger"
)

const (
	defaultFeedTimeout = 15 * time.Second
	// DefaultRefreshSpec refreshes a feed every fifteen minutes.
	DefaultRefreshSpec = "*/15 * * * *"
)

// FeedOption configures a Feed.
type FeedOption func(*Feed)

// WithHTTPClient replaces the feed's HTTP client.
func WithHTTPClient(c *http.Client) FeedOption {
	return func(f *Feed) {
		if c != nil {
			f.client = c
		}
	}
}

// WithFeedLocation sets the zone for floating and all-day times.
func WithFeedLocation(loc *time.Location) FeedOption {
	return func(f *Feed) {
		if loc != nil {
			f.loc = loc
		}
	}
}

// Feed is a read-only ICS subscription. The body is fetched with ETag and
// Last-Modified validators; when a fetch fails the last good copy is kept.
type Feed struct {
	url    string
	client *http.Client
	loc    *time.Location

	mu           sync.RWMutex
	etag         string
	lastModified string
	events       []model.CalendarEvent
	fetchedAt    time.Time

	cron *cron.Cron
}

// NewFeed creates a feed for url. Nothing is fetched until Refresh or Start.
func NewFeed(url string, opts ...FeedOption) *Feed {
	f := &Feed{
		url:    url,
		client: &http.Client{Timeout: defaultFeedTimeout},
		loc:    time.Local,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Feed) Name() string { return ProviderICS }

// Start fetches once, then refreshes on the cron schedule spec until Stop.
// A failed first fetch is logged, not returned.
func (f *Feed) Start(ctx context.Context, spec string) error {
	if spec == "" {
		spec = DefaultRefreshSpec
	}
	if err := f.Refresh(ctx); err != nil {
		logger.Get().Warn(ctx, "initial ics fetch failed", logger.Error(err))
	}
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		rctx, cancel := context.WithTimeout(context.Background(), defaultFeedTimeout)
		defer cancel()
		if err := f.Refresh(rctx); err != nil {
			logger.Get().Warn(rctx, "ics refresh failed", logger.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("calendar: invalid refresh schedule %q: %w", spec, err)
	}
	f.mu.Lock()
	f.cron = c
	f.mu.Unlock()
	c.Start()
	return nil
}

// Stop halts scheduled refreshes and waits for a running one.
func (f *Feed) Stop() {
	f.mu.Lock()
	c := f.cron
	f.cron = nil
	f.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
}

// Refresh fetches the feed and replaces the cached events.
func (f *Feed) Refresh(ctx context.Context) error {
	if f.url == "" {
		return fmt.Errorf("%w: empty feed url", ErrUnavailable)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	f.mu.RLock()
	if f.etag != "" {
		req.Header.Set("If-None-Match", f.etag)
	}
	if f.lastModified != "" {
		req.Header.Set("If-Modified-Since", f.lastModified)
	}
	f.mu.RUnlock()

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotModified:
		f.mu.Lock()
		f.fetchedAt = time.Now()
		f.mu.Unlock()
		return nil
	default:
		return fmt.Errorf("%w: feed returned %s", ErrUnavailable, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	events, err := ParseICS(body, f.loc)
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.events = events
	f.etag = resp.Header.Get("ETag")
	f.lastModified = resp.Header.Get("Last-Modified")
	f.fetchedAt = time.Now()
	f.mu.Unlock()

	logger.Get().Info(ctx, "ics feed refreshed", logger.Int("events", len(events)))
	return nil
}

// FetchedAt returns when the feed was last confirmed fresh.
func (f *Feed) FetchedAt() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.fetchedAt
}

func (f *Feed) List(_ context.Context, from, to time.Time) ([]model.CalendarEvent, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}
	f.mu.RLock()
	out := make([]model.CalendarEvent, 0, len(f.events))
	for _, ev := range f.events {
		out = expandInto(out, ev, from, to)
	}
	f.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.DateTime.Before(out[j].Start.DateTime) })
	return out, nil
}

func (f *Feed) Create(context.Context, model.EventPlan) (model.CalendarEvent, error) {
	return model.CalendarEvent{}, ErrReadOnly
}

func (f *Feed) Update(context.Context, string, model.EventPlan) (model.CalendarEvent, error) {
	return model.CalendarEvent{}, ErrReadOnly
}

func (f *Feed) Delete(context.Context, string) error { return ErrReadOnly }

// ParseICS reads the VEVENTs of an iCalendar body. Events without a UID or
// a start are skipped. All-day events span whole days in loc; an event
// without an end lasts one day when all-day, else one hour.
func ParseICS(body []byte, loc *time.Location) ([]model.CalendarEvent, error) {
	if len(body) == 0 {
		return nil, errors.New("calendar: empty ics body")
	}
	if loc == nil {
		loc = time.Local
	}
	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("calendar: parse ics: %w", err)
	}
	out := make([]model.CalendarEvent, 0, len(cal.Events()))
	for _, ve := range cal.Events() {
		ev, ok := fromVEvent(ve, loc)
		if ok {
			out = append(out, ev)
		}
	}
	return out, nil
}

func fromVEvent(ve *ical.VEvent, loc *time.Location) (model.CalendarEvent, bool) {
	uid := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uid == nil || uid.Value == "" {
		return model.CalendarEvent{}, false
	}
	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return model.CalendarEvent{}, false
	}
	allDay := !strings.Contains(dtStart.Value, "T")
	if vs, ok := dtStart.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		allDay = true
	}

	var start, end time.Time
	if allDay {
		s, err := time.ParseInLocation("20060102", strings.TrimSpace(dtStart.Value), loc)
		if err != nil {
			return model.CalendarEvent{}, false
		}
		start, end = s, s.AddDate(0, 0, 1)
		if p := ve.GetProperty(ical.ComponentPropertyDtEnd); p != nil {
			if e, err := time.ParseInLocation("20060102", strings.TrimSpace(p.Value), loc); err == nil && e.After(s) {
				end = e
			}
		}
	} else {
		s, err := ve.GetStartAt()
		if err != nil {
			return model.CalendarEvent{}, false
		}
		start, end = s, s.Add(time.Hour)
		if e, err := ve.GetEndAt(); err == nil && e.After(s) {
			end = e
		}
	}

	ev := model.CalendarEvent{
		ID:     uid.Value,
		Title:  propValue(ve, ical.ComponentPropertySummary),
		Start:  model.EventTime{DateTime: start},
		End:    model.EventTime{DateTime: end},
		Source: model.SourceImported,
	}
	ev.Description = propValue(ve, ical.ComponentPropertyDescription)
	ev.Location = propValue(ve, ical.ComponentPropertyLocation)
	if ev.Title == "" {
		ev.Title = untitled
	}
	if rr := propValue(ve, ical.ComponentPropertyRrule); rr != "" {
		ev.Recurrence = []string{"RRULE:" + rr}
	}
	for _, p := range ve.GetProperties(ical.ComponentPropertyAttendee) {
		addr := strings.TrimSpace(p.Value)
		if len(addr) > 7 && strings.EqualFold(addr[:7], "mailto:") {
			addr = addr[7:]
		}
		if addr != "" {
			ev.Attendees = append(ev.Attendees, addr)
		}
	}
	return ev, true
}

func propValue(ve *ical.VEvent, prop ical.ComponentProperty) string {
	if p := ve.GetProperty(prop); p != nil {
		return strings.TrimSpace(p.Value)
	}
	return ""
}
