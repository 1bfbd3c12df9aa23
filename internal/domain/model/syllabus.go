package model

import (
	"strings"
	"time"
)

// EventType classifies a syllabus event.
type EventType string

// Syllabus event types.
const (
	TypeExam       EventType = "exam"
	TypeAssignment EventType = "assignment"
	TypeQuiz       EventType = "quiz"
	TypeProject    EventType = "project"
	TypeOther      EventType = "other"
)

// Title returns "Exam" style casing.
func (t EventType) Title() string {
	if t == "" {
		return ""
	}
	return strings.ToUpper(string(t[:1])) + string(t[1:])
}

// SyllabusEvent is a dated fact extracted from a document. Date is the
// local midnight of the resolved day.
type SyllabusEvent struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Date        time.Time `json:"date"`
	Type        EventType `json:"type"`
	Description string    `json:"description,omitempty"`
	Course      string    `json:"course,omitempty"`
	Confidence  float64   `json:"confidence"`
	SourceText  string    `json:"sourceText"`
}

// CourseInfo is header data pulled from a syllabus.
type CourseInfo struct {
	Name       string `json:"name,omitempty"`
	Instructor string `json:"instructor,omitempty"`
	Semester   string `json:"semester,omitempty"`
}

// Syllabus is an uploaded document.
type Syllabus struct {
	ID         string     `json:"id"`
	UserID     string     `json:"userId"`
	Filename   string     `json:"filename"`
	Content    string     `json:"-"`
	CourseInfo CourseInfo `json:"courseInfo"`
	UploadedAt time.Time  `json:"uploadedAt"`
}

// Chunk is a split piece of a syllabus.
type Chunk struct {
	SyllabusID string `json:"syllabusId"`
	Index      int    `json:"chunkIndex"`
	Content    string `json:"content"`
}

// SyllabusAnalysis is the result of processing one document.
type SyllabusAnalysis struct {
	SyllabusID string          `json:"syllabusId"`
	Events     []SyllabusEvent `json:"events"`
	CourseInfo CourseInfo      `json:"courseInfo"`
	Summary    string          `json:"summary"`
}
