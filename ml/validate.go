package ml

import (
	"fmt"

	"go.uber.org/multierr"
)

const (
	MinAge     = 18
	MaxAge     = 150
	MaxSleep   = 24
	MaxBadDays = 30
)

// Validate checks every field and returns all violations combined.
func (in RawInput) Validate() error {
	var err error
	if in.HeightCM <= 0 {
		err = multierr.Append(err, &ValidationError{Field: "height_cm", Reason: "must be positive"})
	}
	if in.WeightKG <= 0 {
		err = multierr.Append(err, &ValidationError{Field: "weight_kg", Reason: "must be positive"})
	}
	if in.Age < MinAge || in.Age > MaxAge {
		err = multierr.Append(err, rangeError("age", in.Age, MinAge, MaxAge))
	}
	if !in.Gender.valid() {
		err = multierr.Append(err, invalidEnum("gender", in.Gender.String()))
	}
	if !in.GeneralHealth.valid() {
		err = multierr.Append(err, invalidEnum("general_health", in.GeneralHealth.String()))
	}
	if !in.Diabetic.valid() {
		err = multierr.Append(err, invalidEnum("diabetic_status", in.Diabetic.String()))
	}
	if in.SleepHours < 0 || in.SleepHours > MaxSleep {
		err = multierr.Append(err, rangeError("sleep_hours", in.SleepHours, 0, MaxSleep))
	}
	if in.PhysicalHealthBadDays < 0 || in.PhysicalHealthBadDays > MaxBadDays {
		err = multierr.Append(err, rangeError("physical_health_bad_days", in.PhysicalHealthBadDays, 0, MaxBadDays))
	}
	if in.MentalHealthBadDays < 0 || in.MentalHealthBadDays > MaxBadDays {
		err = multierr.Append(err, rangeError("mental_health_bad_days", in.MentalHealthBadDays, 0, MaxBadDays))
	}
	return err
}

func rangeError(field string, got, min, max int) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf("%d is outside [%d, %d]", got, min, max)}
}
