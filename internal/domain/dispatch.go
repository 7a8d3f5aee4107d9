package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownTrainingType is returned when a sensor package carries a
	// type code outside the supported set.
	ErrUnknownTrainingType = errors.New("unknown training type")
	// ErrInvalidPackage indicates the positional data does not match the
	// arity expected for the type code.
	ErrInvalidPackage = errors.New("invalid sensor package")
)

// TypeCode identifies the training variant inside a sensor package.
type TypeCode string

const (
	TypeSwimming TypeCode = "SWM"
	TypeRunning  TypeCode = "RUN"
	TypeWalking  TypeCode = "WLK"
)

// ParsePackage builds the training matching the type code from positional
// sensor data. The layout follows the tracker firmware: action count,
// duration in hours, and weight in kg come first, followed by the
// type-specific values (height for WLK; pool length and lap count for SWM).
func ParsePackage(code TypeCode, data []float64) (Training, error) {
	switch code {
	case TypeSwimming:
		if len(data) != 5 {
			return nil, fmt.Errorf("%w: %s expects 5 values, got %d", ErrInvalidPackage, code, len(data))
		}
		return Swimming{
			Reading:    Reading{Action: int(data[0]), Duration: data[1], Weight: data[2]},
			LengthPool: data[3],
			CountPool:  int(data[4]),
		}, nil
	case TypeRunning:
		if len(data) != 3 {
			return nil, fmt.Errorf("%w: %s expects 3 values, got %d", ErrInvalidPackage, code, len(data))
		}
		return Running{
			Reading: Reading{Action: int(data[0]), Duration: data[1], Weight: data[2]},
		}, nil
	case TypeWalking:
		if len(data) != 4 {
			return nil, fmt.Errorf("%w: %s expects 4 values, got %d", ErrInvalidPackage, code, len(data))
		}
		return Walking{
			Reading: Reading{Action: int(data[0]), Duration: data[1], Weight: data[2]},
			Height:  data[3],
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTrainingType, code)
	}
}
