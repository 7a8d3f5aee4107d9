package domain

import "fmt"

// Summary is the derived report for a finished training. It is computed
// once and never mutated afterwards.
type Summary struct {
	TrainingType string
	Duration     float64 // hours
	Distance     float64 // km
	MeanSpeed    float64 // km/h
	Calories     float64 // kcal
}

// NewSummary evaluates the formula set of the training and captures the
// results.
func NewSummary(t Training) Summary {
	return Summary{
		TrainingType: t.Name(),
		Duration:     t.DurationHours(),
		Distance:     t.Distance(),
		MeanSpeed:    t.MeanSpeed(),
		Calories:     t.Calories(),
	}
}

// Message renders the human-readable report line shown to the athlete.
func (s Summary) Message() string {
	return fmt.Sprintf(
		"Тип тренировки: %s; Длительность: %.3f ч.; Дистанция: %.3f км; Ср. скорость: %.3f км/ч; Потрачено ккал: %.3f.",
		s.TrainingType, s.Duration, s.Distance, s.MeanSpeed, s.Calories,
	)
}
