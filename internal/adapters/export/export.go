// Package export renders syllabus events and plans as downloadable files:
// iCalendar for calendar apps and XLSX for spreadsheets.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"

	"github.com/okian/studyplan/internal/domain/model"
	"github.com/okian/studyplan/internal/domain/recurrence"
)

// Formats.
const (
	FormatICS  = "ics"
	FormatXLSX = "xlsx"
)

// Content types.
const (
	ContentTypeICS  = "text/calendar; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

const (
	defaultProductID = "-//studyplan//syllabus export//EN"
	eventsSheet      = "Events"
	summarySheet     = "Summary"
	dateLayout       = "2006-01-02"
)

var (
	// ErrNoEvents is returned when there is nothing to export.
	ErrNoEvents = errors.New("export: no events")
	// ErrUnknownFormat is returned for a format other than ics or xlsx.
	ErrUnknownFormat = errors.New("export: unknown format")
	// ErrGenerate wraps failures of the underlying writers.
	ErrGenerate = errors.New("export: generate file")
)

// File is a rendered export.
type File struct {
	Name        string
	ContentType string
	Body        []byte
}

// Exporter renders files. The zero value is not usable; call New.
type Exporter struct {
	productID string
	now       func() time.Time
}

// New creates an Exporter.
func New(opts ...Option) *Exporter {
	e := &Exporter{
		productID: defaultProductID,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Syllabus renders events in format. name labels the calendar or workbook
// and seeds the file name.
func (e *Exporter) Syllabus(format, name string, events []model.SyllabusEvent) (File, error) {
	if len(events) == 0 {
		return File{}, ErrNoEvents
	}
	sorted := sortedEvents(events)
	switch strings.ToLower(format) {
	case FormatICS, "":
		body := e.SyllabusICS(name, sorted)
		return File{Name: fileName(name, FormatICS), ContentType: ContentTypeICS, Body: body}, nil
	case FormatXLSX:
		body, err := e.SyllabusXLSX(name, sorted)
		if err != nil {
			return File{}, err
		}
		return File{Name: fileName(name, FormatXLSX), ContentType: ContentTypeXLSX, Body: body}, nil
	default:
		return File{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// SyllabusICS renders events as all-day VEVENTs categorized by type.
func (e *Exporter) SyllabusICS(name string, events []model.SyllabusEvent) []byte {
	cal := e.calendar(name)
	stamp := e.now().UTC()
	for _, se := range events {
		ve := cal.AddEvent(se.ID + "@studyplan")
		ve.SetDtStampTime(stamp)
		ve.SetAllDayStartAt(se.Date)
		ve.SetAllDayEndAt(se.Date.AddDate(0, 0, 1))
		ve.SetSummary(se.Title)
		if desc := describe(se); desc != "" {
			ve.SetDescription(desc)
		}
		ve.SetProperty(ical.ComponentPropertyCategories, strings.ToUpper(string(se.Type)))
	}
	return []byte(cal.Serialize())
}

// PlansICS renders plans as timed VEVENTs, keeping their recurrence.
func (e *Exporter) PlansICS(name string, plans []model.EventPlan) ([]byte, error) {
	if len(plans) == 0 {
		return nil, ErrNoEvents
	}
	cal := e.calendar(name)
	stamp := e.now().UTC()
	for _, p := range plans {
		ve := cal.AddEvent(p.ID + "@studyplan")
		ve.SetDtStampTime(stamp)
		ve.SetStartAt(p.StartDateTime)
		ve.SetEndAt(p.EndDateTime)
		ve.SetSummary(p.Title)
		if p.Description != "" {
			ve.SetDescription(p.Description)
		}
		if p.Location != "" {
			ve.SetLocation(p.Location)
		}
		for _, a := range p.Attendees {
			ve.AddAttendee(a)
		}
		if p.Recurrence == nil {
			continue
		}
		rule := *p.Recurrence
		if rule.RRule == "" {
			built, err := recurrence.Build(rule, p.StartDateTime)
			if err != nil {
				return nil, fmt.Errorf("%w: plan %s: %v", ErrGenerate, p.ID, err)
			}
			rule = built
		}
		ve.SetProperty(ical.ComponentPropertyRrule, rule.RRule)
	}
	return []byte(cal.Serialize()), nil
}

func (e *Exporter) calendar(name string) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(e.productID)
	if name != "" {
		cal.SetXWRCalName(name)
	}
	return cal
}

// SyllabusXLSX renders events as a workbook with an Events sheet (one row
// per event, date order) and a Summary sheet (count per type).
func (e *Exporter) SyllabusXLSX(name string, events []model.SyllabusEvent) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(eventsSheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerate, err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerate, err)
	}

	headers := []string{"Date", "Day", "Type", "Title", "Course", "Confidence", "Source"}
	widths := []float64{12, 8, 12, 40, 14, 11, 60}
	for i, w := range widths {
		col := colName(i)
		_ = f.SetColWidth(eventsSheet, col, col, w)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerate, err)
	}

	title := "Syllabus events"
	if name != "" {
		title = name + " - syllabus events"
	}
	_ = f.SetCellValue(eventsSheet, "A1", title)
	_ = f.MergeCell(eventsSheet, "A1", cell(colName(len(headers)-1), 1))
	_ = f.SetCellStyle(eventsSheet, "A1", "A1", headerStyle)

	for i, h := range headers {
		_ = f.SetCellValue(eventsSheet, cell(colName(i), 2), h)
	}
	_ = f.SetCellStyle(eventsSheet, "A2", cell(colName(len(headers)-1), 2), headerStyle)

	counts := make(map[model.EventType]int)
	row := 3
	for _, se := range events {
		values := []any{
			se.Date.Format(dateLayout),
			se.Date.Weekday().String()[:3],
			se.Type.Title(),
			se.Title,
			se.Course,
			se.Confidence,
			se.SourceText,
		}
		for i, v := range values {
			_ = f.SetCellValue(eventsSheet, cell(colName(i), row), v)
		}
		counts[se.Type]++
		row++
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerate, err)
	}
	_ = f.SetCellValue(summarySheet, "A1", "Type")
	_ = f.SetCellValue(summarySheet, "B1", "Count")
	_ = f.SetCellStyle(summarySheet, "A1", "B1", headerStyle)
	row = 2
	for _, t := range []model.EventType{model.TypeExam, model.TypeAssignment, model.TypeQuiz, model.TypeProject, model.TypeOther} {
		if counts[t] == 0 {
			continue
		}
		_ = f.SetCellValue(summarySheet, cell("A", row), t.Title())
		_ = f.SetCellValue(summarySheet, cell("B", row), counts[t])
		row++
	}
	_ = f.SetCellValue(summarySheet, cell("A", row), "Total")
	_ = f.SetCellValue(summarySheet, cell("B", row), len(events))

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerate, err)
	}
	return buf.Bytes(), nil
}

func sortedEvents(events []model.SyllabusEvent) []model.SyllabusEvent {
	out := append([]model.SyllabusEvent(nil), events...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func describe(se model.SyllabusEvent) string {
	parts := make([]string, 0, 3)
	if se.Course != "" {
		parts = append(parts, "Course: "+se.Course)
	}
	if se.Description != "" {
		parts = append(parts, se.Description)
	}
	if se.SourceText != "" {
		parts = append(parts, "Source: "+se.SourceText)
	}
	return strings.Join(parts, "\n")
}

func fileName(name, ext string) string {
	base := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ':
			return '-'
		}
		return -1
	}, strings.TrimSpace(name))
	if base == "" {
		base = "syllabus"
	}
	return strings.ToLower(base) + "-events." + ext
}

// colName maps a 0-based column index to its letter.
func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
