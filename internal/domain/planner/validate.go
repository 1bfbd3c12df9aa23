package planner

import (
	"strings"

	"github.com/okian/studyplan/internal/domain/model"
)

// Validation issues.
const (
	IssueMissingTitle   = "Missing event title"
	IssueMissingStart   = "Missing start time"
	IssueMissingEnd     = "Missing end time"
	IssueEndBeforeStart = "End time must be after start time"
)

// Validate lists what is wrong with a caller-edited plan. An empty result
// means the plan is valid.
func Validate(plan model.EventPlan) []string {
	issues := []string{}
	if strings.TrimSpace(plan.Title) == "" {
		issues = append(issues, IssueMissingTitle)
	}
	if plan.StartDateTime.IsZero() {
		issues = append(issues, IssueMissingStart)
	}
	if plan.EndDateTime.IsZero() {
		issues = append(issues, IssueMissingEnd)
	}
	if !plan.StartDateTime.IsZero() && !plan.EndDateTime.IsZero() && !plan.StartDateTime.Before(plan.EndDateTime) {
		issues = append(issues, IssueEndBeforeStart)
	}
	return issues
}
