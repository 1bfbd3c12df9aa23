package llm

import "time"

// Option configures an Extractor.
type Option func(*Extractor)

// WithModel sets the chat model name.
func WithModel(model string) Option {
	return func(e *Extractor) {
		if model != "" {
			e.model = model
		}
	}
}

// WithTimeout bounds one extraction call.
func WithTimeout(d time.Duration) Option {
	return func(e *Extractor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithClient replaces the chat client, e.g. with a test double.
func WithClient(c ChatClient) Option {
	return func(e *Extractor) {
		if c != nil {
			e.client = c
		}
	}
}
