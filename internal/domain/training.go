// Package domain defines the business logic for the workout tracker.
package domain

import "math"

// Formula constants shared by the training calculators. The per-step length
// differs for swimming, where the sensor counts strokes instead of steps.
const (
	lenStep   = 0.65
	mInKm     = 1000
	minInH    = 60
	kmhInMsec = 0.278
	cmInM     = 100

	runningCaloriesMeanSpeedMultiplier = 18
	runningCaloriesMeanSpeedShift      = 1.79

	walkingCaloriesWeightMultiplier = 0.035
	walkingSpeedHeightMultiplier    = 0.029

	swimmingLenStep                  = 1.38
	swimmingCaloriesMeanSpeedShift   = 1.1
	swimmingCaloriesWeightMultiplier = 2
)

// Training is the closed set of workout kinds the tracker understands.
type Training interface {
	// Name reports the training type label used in summaries.
	Name() string
	// DurationHours returns the workout length in hours.
	DurationHours() float64
	// Distance returns the covered distance in kilometers.
	Distance() float64
	// MeanSpeed returns the average speed in km/h over the full duration.
	MeanSpeed() float64
	// Calories returns the energy spent in kcal.
	Calories() float64
}

// Reading holds the raw sensor values shared by every training type.
// Values are immutable once the reading is constructed.
type Reading struct {
	Action   int     // steps or strokes counted by the sensor
	Duration float64 // hours
	Weight   float64 // kg
}

// DurationHours implements the shared part of Training.
func (r Reading) DurationHours() float64 {
	return r.Duration
}

func (r Reading) distance(step float64) float64 {
	return float64(r.Action) * step / mInKm
}

func (r Reading) meanSpeed(step float64) float64 {
	if r.Duration <= 0 {
		return 0
	}
	return r.distance(step) / r.Duration
}

// Running is a run captured by a step counter.
type Running struct {
	Reading
}

// Name implements Training.
func (r Running) Name() string { return "Running" }

// Distance implements Training.
func (r Running) Distance() float64 { return r.distance(lenStep) }

// MeanSpeed implements Training.
func (r Running) MeanSpeed() float64 { return r.meanSpeed(lenStep) }

// Calories implements Training.
func (r Running) Calories() float64 {
	return (runningCaloriesMeanSpeedMultiplier*r.MeanSpeed() + runningCaloriesMeanSpeedShift) *
		r.Weight / mInKm * r.Duration * minInH
}

// Walking is a sports-walking session; the calorie formula needs the
// athlete's height in centimeters.
type Walking struct {
	Reading
	Height float64 // cm
}

// Name implements Training.
func (w Walking) Name() string { return "SportsWalking" }

// Distance implements Training.
func (w Walking) Distance() float64 { return w.distance(lenStep) }

// MeanSpeed implements Training.
func (w Walking) MeanSpeed() float64 { return w.meanSpeed(lenStep) }

// Calories implements Training.
func (w Walking) Calories() float64 {
	speedMsec := w.MeanSpeed() * kmhInMsec
	return (walkingCaloriesWeightMultiplier*w.Weight +
		math.Pow(speedMsec, 2)/(w.Height/cmInM)*walkingSpeedHeightMultiplier*w.Weight) *
		w.Duration * minInH
}

// Swimming is a pool session; distance per stroke and the speed formula
// differ from the land trainings.
type Swimming struct {
	Reading
	LengthPool float64 // m
	CountPool  int     // laps swum
}

// Name implements Training.
func (s Swimming) Name() string { return "Swimming" }

// Distance implements Training.
func (s Swimming) Distance() float64 { return s.distance(swimmingLenStep) }

// MeanSpeed derives speed from the pool length rather than stroke count.
func (s Swimming) MeanSpeed() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return s.LengthPool * float64(s.CountPool) / mInKm / s.Duration
}

// Calories implements Training.
func (s Swimming) Calories() float64 {
	return (s.MeanSpeed() + swimmingCaloriesMeanSpeedShift) *
		swimmingCaloriesWeightMultiplier * s.Weight * s.Duration
}
