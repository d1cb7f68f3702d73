package ml

import "fmt"

// Classifier is a loaded, read-only binary model. Predict must not mutate
// the receiver so one instance can serve concurrent requests.
type Classifier interface {
	Predict(features []float64) (int, float64, error)
	NumFeatures() int
}

// Label is the classifier outcome.
type Label int

const (
	NoDisease        Label = 0
	PotentialDisease Label = 1
)

func (l Label) String() string {
	switch l {
	case NoDisease:
		return "no_disease"
	case PotentialDisease:
		return "potential_disease"
	default:
		return fmt.Sprintf("Label(%d)", int(l))
	}
}

func (l Label) MarshalText() ([]byte, error) {
	if l != NoDisease && l != PotentialDisease {
		return nil, fmt.Errorf("%w: %d", ErrUnknownLabel, int(l))
	}
	return []byte(l.String()), nil
}

func labelFromClass(class int) (Label, error) {
	switch class {
	case 0:
		return NoDisease, nil
	case 1:
		return PotentialDisease, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknownLabel, class)
	}
}

// Prediction is the result of one inference call.
type Prediction struct {
	Label      Label   `json:"label"`
	Confidence float64 `json:"confidence"`
}
