package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/okian/studyplan/internal/domain/model"
)

const (
	defaultCalendarID = "primary"
	maxListResults    = 250
	dateLayout        = "2006-01-02"
)

// GoogleCredentials are the OAuth tokens of one user. With a refresh token
// and client credentials the access token is renewed automatically.
type GoogleCredentials struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
	ClientID     string
	ClientSecret string
}

func (c GoogleCredentials) tokenSource(ctx context.Context) oauth2.TokenSource {
	tok := &oauth2.Token{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		Expiry:       c.Expiry,
		TokenType:    "Bearer",
	}
	if c.RefreshToken == "" || c.ClientID == "" {
		return oauth2.StaticTokenSource(tok)
	}
	cfg := &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gcal.CalendarScope},
	}
	return cfg.TokenSource(ctx, tok)
}

// Google talks to the Google Calendar v3 API.
type Google struct {
	svc        *gcal.Service
	calendarID string
	loc        *time.Location
}

// NewGoogle creates a Google provider for calendarID ("primary" when empty).
// Extra client options are appended, e.g. option.WithEndpoint in tests.
func NewGoogle(ctx context.Context, creds GoogleCredentials, calendarID string, loc *time.Location, opts ...option.ClientOption) (*Google, error) {
	if calendarID == "" {
		calendarID = defaultCalendarID
	}
	if loc == nil {
		loc = time.Local
	}
	all := append([]option.ClientOption{option.WithTokenSource(creds.tokenSource(ctx))}, opts...)
	svc, err := gcal.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &Google{svc: svc, calendarID: calendarID, loc: loc}, nil
}

func (g *Google) Name() string { return ProviderGoogle }

func (g *Google) List(ctx context.Context, from, to time.Time) ([]model.CalendarEvent, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}
	res, err := g.svc.Events.List(g.calendarID).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(maxListResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, mapGoogleErr(err)
	}
	out := make([]model.CalendarEvent, 0, len(res.Items))
	for _, item := range res.Items {
		ev, ok := g.fromGoogle(item)
		if !ok {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

func (g *Google) Create(ctx context.Context, plan model.EventPlan) (model.CalendarEvent, error) {
	ev, err := FromPlan("", plan, model.SourceGoogle)
	if err != nil {
		return model.CalendarEvent{}, err
	}
	created, err := g.svc.Events.Insert(g.calendarID, toGoogle(ev)).Context(ctx).Do()
	if err != nil {
		return model.CalendarEvent{}, mapGoogleErr(err)
	}
	ev.ID = created.Id
	return ev, nil
}

func (g *Google) Update(ctx context.Context, id string, plan model.EventPlan) (model.CalendarEvent, error) {
	ev, err := FromPlan(id, plan, model.SourceGoogle)
	if err != nil {
		return model.CalendarEvent{}, err
	}
	if _, err := g.svc.Events.Update(g.calendarID, id, toGoogle(ev)).Context(ctx).Do(); err != nil {
		return model.CalendarEvent{}, mapGoogleErr(err)
	}
	return ev, nil
}

func (g *Google) Delete(ctx context.Context, id string) error {
	if err := g.svc.Events.Delete(g.calendarID, id).Context(ctx).Do(); err != nil {
		return mapGoogleErr(err)
	}
	return nil
}

func toGoogle(ev model.CalendarEvent) *gcal.Event {
	out := &gcal.Event{
		Summary:     ev.Title,
		Description: ev.Description,
		Location:    ev.Location,
		Start:       &gcal.EventDateTime{DateTime: ev.Start.DateTime.Format(time.RFC3339), TimeZone: ev.Start.TimeZone},
		End:         &gcal.EventDateTime{DateTime: ev.End.DateTime.Format(time.RFC3339), TimeZone: ev.End.TimeZone},
		Recurrence:  ev.Recurrence,
	}
	for _, a := range ev.Attendees {
		out.Attendees = append(out.Attendees, &gcal.EventAttendee{Email: a})
	}
	return out
}

// fromGoogle converts an API event. All-day events run from midnight of
// their start date to midnight of their (exclusive) end date.
func (g *Google) fromGoogle(item *gcal.Event) (model.CalendarEvent, bool) {
	if item == nil || item.Start == nil || item.End == nil {
		return model.CalendarEvent{}, false
	}
	start, ok := g.eventTime(item.Start)
	if !ok {
		return model.CalendarEvent{}, false
	}
	end, ok := g.eventTime(item.End)
	if !ok {
		return model.CalendarEvent{}, false
	}
	ev := model.CalendarEvent{
		ID:          item.Id,
		Title:       item.Summary,
		Description: item.Description,
		Start:       start,
		End:         end,
		Location:    item.Location,
		Recurrence:  item.Recurrence,
		Source:      model.SourceGoogle,
	}
	if ev.Title == "" {
		ev.Title = untitled
	}
	for _, a := range item.Attendees {
		if a != nil && a.Email != "" {
			ev.Attendees = append(ev.Attendees, a.Email)
		}
	}
	return ev, true
}

func (g *Google) eventTime(dt *gcal.EventDateTime) (model.EventTime, bool) {
	if dt.DateTime != "" {
		t, err := time.Parse(time.RFC3339, dt.DateTime)
		if err != nil {
			return model.EventTime{}, false
		}
		return model.EventTime{DateTime: t, TimeZone: dt.TimeZone}, true
	}
	if dt.Date != "" {
		loc := g.loc
		if dt.TimeZone != "" {
			if l, err := time.LoadLocation(dt.TimeZone); err == nil {
				loc = l
			}
		}
		t, err := time.ParseInLocation(dateLayout, dt.Date, loc)
		if err != nil {
			return model.EventTime{}, false
		}
		return model.EventTime{DateTime: t, TimeZone: dt.TimeZone}, true
	}
	return model.EventTime{}, false
}

func mapGoogleErr(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && (gerr.Code == http.StatusNotFound || gerr.Code == http.StatusGone) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
