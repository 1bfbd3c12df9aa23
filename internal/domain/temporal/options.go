package temporal

import "time"

// Option applies a configuration option to the Parser.
type Option func(*Parser)

// WithClock sets the time source used for year inference and rollover.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) {
		if now != nil {
			p.now = now
		}
	}
}

// WithLocation sets the location dates and clocks are resolved in.
func WithLocation(loc *time.Location) Option {
	return func(p *Parser) {
		if loc != nil {
			p.loc = loc
		}
	}
}
