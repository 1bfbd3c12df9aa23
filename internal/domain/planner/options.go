package planner

import "github.com/okian/studyplan/internal/domain/temporal"

// Option configures a Planner.
type Option func(*Planner)

// WithParser sets the temporal parser, and with it the clock and location
// slots are resolved against.
func WithParser(p *temporal.Parser) Option {
	return func(pl *Planner) {
		if p != nil {
			pl.parser = p
		}
	}
}

// WithIDGenerator overrides plan ID generation.
func WithIDGenerator(f func() string) Option {
	return func(pl *Planner) {
		if f != nil {
			pl.newID = f
		}
	}
}
