package conflict

import "time"

// Option configures a Resolver.
type Option func(*Resolver)

// WithAdjacencyWindow sets how close two edges must be to count as adjacent.
func WithAdjacencyWindow(d time.Duration) Option {
	return func(r *Resolver) {
		if d >= 0 {
			r.window = d
		}
	}
}

// WithShifts replaces the ordered list of candidate shifts.
func WithShifts(shifts ...Shift) Option {
	return func(r *Resolver) {
		if len(shifts) > 0 {
			r.shifts = append([]Shift(nil), shifts...)
		}
	}
}

// WithMaxAlternatives caps how many alternatives are collected.
func WithMaxAlternatives(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxAlternatives = n
		}
	}
}

// WithWeights overrides the scoring weights. Zero fields keep their defaults.
func WithWeights(w Weights) Option {
	return func(r *Resolver) {
		r.weights = w.withDefaults()
	}
}
