// Package fitness holds the arithmetic of the tracker: deriving pace and
// speed for an activity, and turning stored values into display strings and
// chart series.
package fitness

import (
	"errors"
	"math"
)

// ClimbFactor is how many horizontal meters one meter of elevation gain
// counts for when computing the effective distance of a route.
const ClimbFactor = 10

var (
	ErrZeroDistance = errors.New("fitness: effective distance must be positive")
	ErrZeroTime     = errors.New("fitness: duration must be positive")
)

// Effort is the derived result of running a route in a given time.
type Effort struct {
	Seconds    int     // total duration
	DistanceKm float64 // effective distance
	Pace       float64 // min/km, 3 decimals
	Speed      float64 // km/h, 3 decimals
}

// EffectiveDistanceKm credits each meter of climb as ClimbFactor meters.
func EffectiveDistanceKm(distanceM, heightM float64) float64 {
	return (distanceM + ClimbFactor*heightM) / 1000
}

// Derive computes pace and speed for a route of distanceM meters with
// heightM meters of climb, run in minutes:seconds.
func Derive(distanceM, heightM float64, minutes, seconds int) (Effort, error) {
	km := EffectiveDistanceKm(distanceM, heightM)
	if km <= 0 {
		return Effort{}, ErrZeroDistance
	}
	total := 60*minutes + seconds
	if total <= 0 {
		return Effort{}, ErrZeroTime
	}

	m, s := float64(minutes), float64(seconds)
	totalMin := m + s/60
	totalH := m/60 + s/3600

	return Effort{
		Seconds:    total,
		DistanceKm: km,
		Pace:       round3(totalMin / km),
		Speed:      round3(km / totalH),
	}, nil
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
