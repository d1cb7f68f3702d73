// Package assessment turns a questionnaire submission into the message
// shown to the user.
package assessment

import (
	"fmt"

	"heartfelt/ml"
)

const Disclaimer = "Please note that this is not a medical diagnosis, please consult an actual doctor if you think you are unwell."

// Message is the fixed text shown for a label.
type Message struct {
	Headline string `json:"headline"`
	Body     string `json:"message"`
}

var messages = map[ml.Label]Message{
	ml.NoDisease: {
		Headline: "No heart disease!",
		Body:     "Our model has predicted that you're safe from heart problems! Make sure to maintain a healthy lifestyle.",
	},
	ml.PotentialDisease: {
		Headline: "Potential heart disease!",
		Body: "Oh no, our model believes that you're at risk of heart problems! Being physically active, " +
			"avoiding smoking and alcohol consumption, getting adequate sleep, and a healthy diet are all " +
			"things that we can control to improve our overall health",
	},
}

// MessageFor returns the text for label.
func MessageFor(label ml.Label) (Message, error) {
	msg, ok := messages[label]
	if !ok {
		return Message{}, fmt.Errorf("%w: %d", ml.ErrUnknownLabel, int(label))
	}
	return msg, nil
}

// Predictor is the inference dependency of Service.
type Predictor interface {
	Predict(v ml.FeatureVector) (ml.Prediction, error)
}

// Result is the outcome of one assessment.
type Result struct {
	Label      ml.Label           `json:"label"`
	Headline   string             `json:"headline"`
	Message    string             `json:"message"`
	Disclaimer string             `json:"disclaimer"`
	Confidence float64            `json:"confidence"`
	BMI        float64            `json:"bmi"`
	AgeBand    string             `json:"age_category"`
	Features   map[string]float64 `json:"features"`
}

type Service struct {
	predictor Predictor
}

func NewService(predictor Predictor) *Service {
	return &Service{predictor: predictor}
}

// Assess encodes raw, runs the classifier and attaches the fixed message.
// Validation failures are returned unchanged so callers can use
// ml.IsValidation and ml.FieldErrors on them.
func (s *Service) Assess(raw ml.RawInput) (*Result, error) {
	vector, err := ml.Encode(raw)
	if err != nil {
		return nil, err
	}
	pred, err := s.predictor.Predict(vector)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	msg, err := MessageFor(pred.Label)
	if err != nil {
		return nil, err
	}
	return &Result{
		Label:      pred.Label,
		Headline:   msg.Headline,
		Message:    msg.Body,
		Disclaimer: Disclaimer,
		Confidence: pred.Confidence,
		BMI:        vector.BMI(),
		AgeBand:    ml.AgeCategoryLabel(vector.AgeBand()),
		Features:   vector.Named(),
	}, nil
}

// Encode exposes the feature vector for a submission without running the
// classifier.
func (s *Service) Encode(raw ml.RawInput) (map[string]float64, error) {
	vector, err := ml.Encode(raw)
	if err != nil {
		return nil, err
	}
	return vector.Named(), nil
}
