package conflict

import (
	"math"
	"time"

	"github.com/okian/studyplan/internal/domain/model"
)

// Weights are the terms of an alternative's score.
type Weights struct {
	PerConflict    float64
	PerHigh        float64
	DriftPerHour   float64
	MaxDrift       float64
	BusinessBonus  float64
	OffHourPenalty float64
	// MinScore is exclusive: alternatives must score above it.
	MinScore float64
}

// DefaultWeights returns the stock scoring weights.
func DefaultWeights() Weights {
	return Weights{
		PerConflict:    0.3,
		PerHigh:        0.4,
		DriftPerHour:   0.1,
		MaxDrift:       0.5,
		BusinessBonus:  0.1,
		OffHourPenalty: 0.2,
		MinScore:       0.3,
	}
}

func (w Weights) withDefaults() Weights {
	d := DefaultWeights()
	if w.PerConflict > 0 {
		d.PerConflict = w.PerConflict
	}
	if w.PerHigh > 0 {
		d.PerHigh = w.PerHigh
	}
	if w.DriftPerHour > 0 {
		d.DriftPerHour = w.DriftPerHour
	}
	if w.MaxDrift > 0 {
		d.MaxDrift = w.MaxDrift
	}
	if w.BusinessBonus > 0 {
		d.BusinessBonus = w.BusinessBonus
	}
	if w.OffHourPenalty > 0 {
		d.OffHourPenalty = w.OffHourPenalty
	}
	if w.MinScore > 0 {
		d.MinScore = w.MinScore
	}
	return d
}

// Score rates a candidate start that still carries conflicts, relative to
// the original start. Business hours are 09:00-18:59 by start hour; before
// 07:00 or after 22:59 is penalized. The result is never negative.
func (w Weights) Score(start, original time.Time, conflicts []model.CalendarConflict) float64 {
	score := 1.0
	score -= float64(len(conflicts)) * w.PerConflict
	for _, c := range conflicts {
		if c.Severity == model.SeverityHigh {
			score -= w.PerHigh
		}
	}

	drift := math.Abs(start.Sub(original).Hours())
	score -= math.Min(drift*w.DriftPerHour, w.MaxDrift)

	switch h := start.Hour(); {
	case h >= 9 && h <= 18:
		score += w.BusinessBonus
	case h < 7 || h > 22:
		score -= w.OffHourPenalty
	}

	return round(math.Max(score, 0))
}

func round(v float64) float64 {
	return math.Round(v*1000) / 1000
}
