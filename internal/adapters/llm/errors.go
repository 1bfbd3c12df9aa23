package llm

import "errors"

var (
	// ErrNoToolCall is returned when the model answered without calling the
	// extraction function.
	ErrNoToolCall = errors.New("llm: no tool call in response")
	// ErrInvalidResponse is returned when the tool arguments fail validation.
	ErrInvalidResponse = errors.New("llm: invalid extraction payload")
	// ErrEmptyInput is returned for blank requests.
	ErrEmptyInput = errors.New("llm: empty input")
)
