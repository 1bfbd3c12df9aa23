package syllabus

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/okian/studyplan/internal/domain/model"
)

var (
	courseRe     = regexp.MustCompile(`(?i)(?:course|class|subject):\s*([A-Z]{2,4}\s*\d{3,4})`)
	instructorRe = regexp.MustCompile(`(?i:instructor|professor|prof)\.?:\s*([A-Z][a-z]+\s+[A-Z][a-z]+)`)
	semesterRe   = regexp.MustCompile(`(?i)(?:semester|term|quarter):\s*((?:fall|spring|summer|winter)\s*\d{4})`)
	yearRe       = regexp.MustCompile(`\b(20\d{2})\b`)
)

// CourseInfo reads the course code, instructor and semester from labelled
// header lines such as "Course: EE 201" or "Semester: Fall 2025".
func CourseInfo(text string) model.CourseInfo {
	var info model.CourseInfo
	if m := courseRe.FindStringSubmatch(text); m != nil {
		info.Name = strings.ToUpper(m[1])
	}
	if m := instructorRe.FindStringSubmatch(text); m != nil {
		info.Instructor = m[1]
	}
	if m := semesterRe.FindStringSubmatch(text); m != nil {
		info.Semester = m[1]
	}
	return info
}

// DefaultYear returns the 20xx year named in a semester string, or 0.
func DefaultYear(semester string) int {
	m := yearRe.FindStringSubmatch(semester)
	if m == nil {
		return 0
	}
	y, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return y
}
