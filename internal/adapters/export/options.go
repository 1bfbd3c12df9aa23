package export

import "time"

// Option configures an Exporter.
type Option func(*Exporter)

// WithClock sets the source of DTSTAMP values.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) {
		if now != nil {
			e.now = now
		}
	}
}

// WithProductID sets the PRODID of generated calendars.
func WithProductID(id string) Option {
	return func(e *Exporter) {
		if id != "" {
			e.productID = id
		}
	}
}
