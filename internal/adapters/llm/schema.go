package llm

import (
	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

const functionName = "extract_scheduling_info"

const systemPrompt = `You are an expert scheduling assistant that helps students manage their academic and personal calendars.

Extract structured scheduling information from natural language requests. Pay attention to:

1. TIME EXPRESSIONS: "7-9pm", "2:30pm", "morning", "afternoon", "evening"
2. DAY PATTERNS: "Tu/Th", "weekdays", "every Monday", "Monday and Wednesday"
3. DURATION: "2 hours", "30 minutes", "1.5 hours"
4. FREQUENCY: "once", "weekly", "every Tuesday", "3 times per week"
5. CONSTRAINTS: "avoid Fridays", "no mornings", "after 6pm only"
6. ACADEMIC CONTEXT: "lab", "study session", "office hours", "class"

Examples:
- "Block 7-9pm Tu/Th for EE labs" is Tuesday and Thursday 7-9pm, recurring weekly.
- "Study sessions 3 hours/week" is weekly, 3 hours long, flexible timing.
- "Office hours avoid Fridays" is recurring and excludes Fridays.

Give suggestions and ask for clarification when the request is ambiguous.`

var weekdayEnum = []string{"MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY", "SUNDAY"}

func stringList(desc string, enum ...string) jsonschema.Definition {
	return jsonschema.Definition{
		Type:        jsonschema.Array,
		Description: desc,
		Items:       &jsonschema.Definition{Type: jsonschema.String, Enum: enum},
	}
}

// extractionTool is the single function the model is forced to call.
func extractionTool() openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        functionName,
			Description: "Extract structured scheduling information from natural language",
			Parameters: jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"intent": {
						Type:        jsonschema.String,
						Enum:        []string{string(IntentSchedule), string(IntentModify), string(IntentQuery), string(IntentUnclear)},
						Description: "The primary intent of the user request",
					},
					"title":          {Type: jsonschema.String, Description: "The event title or subject"},
					"duration":       {Type: jsonschema.Number, Description: "Duration in minutes"},
					"preferredTimes": stringList(`Preferred start times (e.g., "7pm", "2:30pm")`),
					"daysOfWeek":     stringList("Preferred days of the week", weekdayEnum...),
					"frequency": {
						Type:        jsonschema.String,
						Enum:        []string{frequencyOnce, "DAILY", "WEEKLY", "MONTHLY"},
						Description: "How often the event should repeat",
					},
					"avoidDays":           stringList("Days to avoid scheduling", weekdayEnum...),
					"avoidTimes":          stringList("Time ranges to avoid"),
					"location":            {Type: jsonschema.String, Description: "Event location"},
					"attendees":           stringList("Email addresses of attendees"),
					"confidence":          {Type: jsonschema.Number, Description: "Confidence in the extraction, between 0 and 1"},
					"clarificationNeeded": stringList("Questions to ask the user for clarification"),
					"suggestions":         stringList("Helpful suggestions for the user"),
				},
				Required: []string{"intent", "confidence"},
			},
		},
	}
}
