package ml

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/multierr"
	"golang.org/x/text/cases"
)

// Gender is the self-reported sex used by the Sex_* one-hot columns.
type Gender int

const (
	Male Gender = iota
	Female
	genderCount
)

// GeneralHealth is an ordinal self-assessment, Poor lowest.
type GeneralHealth int

const (
	HealthPoor GeneralHealth = iota
	HealthFair
	HealthGood
	HealthVeryGood
	HealthExcellent
	generalHealthCount
)

// DiabeticStatus covers the four diabetes answers of the questionnaire.
type DiabeticStatus int

const (
	DiabeticYes DiabeticStatus = iota
	DiabeticYesDuringPregnancy
	DiabeticNo
	DiabeticNoBorderline
	diabeticCount
)

// RawInput is one questionnaire submission.
type RawInput struct {
	HeightCM int `json:"height_cm"`
	WeightKG int `json:"weight_kg"`
	Age      int `json:"age"`

	Gender        Gender         `json:"gender"`
	GeneralHealth GeneralHealth  `json:"general_health"`
	Diabetic      DiabeticStatus `json:"diabetic_status"`

	Smoker           bool `json:"smoker"`
	HeavyAlcohol     bool `json:"heavy_alcohol"`
	PhysicalActivity bool `json:"physical_activity_30d"`
	Stroke           bool `json:"stroke_history"`
	DiffWalking      bool `json:"difficulty_walking"`
	SkinCancer       bool `json:"skin_cancer_history"`
	KidneyDisease    bool `json:"kidney_disease_history"`
	Asthma           bool `json:"asthma_history"`

	SleepHours            int `json:"sleep_hours"`
	PhysicalHealthBadDays int `json:"physical_health_bad_days"`
	MentalHealthBadDays   int `json:"mental_health_bad_days"`
}

var folder = cases.Fold()

func foldLabel(s string) string {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	return folder.String(strings.Join(strings.Fields(s), " "))
}

var genderLabels = [genderCount]string{
	Male:   "Male",
	Female: "Female",
}

var genderAliases = map[string]Gender{
	"male":   Male,
	"m":      Male,
	"female": Female,
	"f":      Female,
}

func (g Gender) String() string {
	if g < 0 || g >= genderCount {
		return fmt.Sprintf("Gender(%d)", int(g))
	}
	return genderLabels[g]
}

func (g Gender) valid() bool { return g >= 0 && g < genderCount }

func (g Gender) MarshalText() ([]byte, error) {
	if !g.valid() {
		return nil, invalidEnum("gender", g.String())
	}
	return []byte(g.String()), nil
}

func (g *Gender) UnmarshalText(text []byte) error {
	parsed, err := ParseGender(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// ParseGender accepts Male/M and Female/F in any case.
func ParseGender(s string) (Gender, error) {
	if g, ok := genderAliases[foldLabel(s)]; ok {
		return g, nil
	}
	return 0, invalidEnum("gender", s)
}

var generalHealthLabels = [generalHealthCount]string{
	HealthPoor:      "Poor",
	HealthFair:      "Fair",
	HealthGood:      "Good",
	HealthVeryGood:  "Very good",
	HealthExcellent: "Excellent",
}

func (h GeneralHealth) String() string {
	if h < 0 || h >= generalHealthCount {
		return fmt.Sprintf("GeneralHealth(%d)", int(h))
	}
	return generalHealthLabels[h]
}

func (h GeneralHealth) valid() bool { return h >= 0 && h < generalHealthCount }

func (h GeneralHealth) MarshalText() ([]byte, error) {
	if !h.valid() {
		return nil, invalidEnum("general_health", h.String())
	}
	return []byte(h.String()), nil
}

func (h *GeneralHealth) UnmarshalText(text []byte) error {
	parsed, err := ParseGeneralHealth(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// ParseGeneralHealth accepts the questionnaire labels, e.g. "Very good" or "very_good".
func ParseGeneralHealth(s string) (GeneralHealth, error) {
	key := foldLabel(s)
	for h, label := range generalHealthLabels {
		if foldLabel(label) == key {
			return GeneralHealth(h), nil
		}
	}
	return 0, invalidEnum("general_health", s)
}

var diabeticLabels = [diabeticCount]string{
	DiabeticYes:                "Yes",
	DiabeticYesDuringPregnancy: "Yes, during pregnancy",
	DiabeticNo:                 "No",
	DiabeticNoBorderline:       "No, but borderline",
}

var diabeticAliases = map[string]DiabeticStatus{
	"yes":                   DiabeticYes,
	"yes during pregnancy":  DiabeticYesDuringPregnancy,
	"yes, during pregnancy": DiabeticYesDuringPregnancy,
	"no":                    DiabeticNo,
	"no borderline":         DiabeticNoBorderline,
	"no, but borderline":    DiabeticNoBorderline,
	"no, borderline":        DiabeticNoBorderline,
}

func (d DiabeticStatus) String() string {
	if d < 0 || d >= diabeticCount {
		return fmt.Sprintf("DiabeticStatus(%d)", int(d))
	}
	return diabeticLabels[d]
}

func (d DiabeticStatus) valid() bool { return d >= 0 && d < diabeticCount }

func (d DiabeticStatus) MarshalText() ([]byte, error) {
	if !d.valid() {
		return nil, invalidEnum("diabetic_status", d.String())
	}
	return []byte(d.String()), nil
}

func (d *DiabeticStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseDiabeticStatus(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDiabeticStatus accepts both the form labels ("No, but borderline")
// and identifier spellings ("no_borderline", "yes_during_pregnancy").
func ParseDiabeticStatus(s string) (DiabeticStatus, error) {
	if d, ok := diabeticAliases[foldLabel(s)]; ok {
		return d, nil
	}
	return 0, invalidEnum("diabetic_status", s)
}

// ParseYesNo maps the form's Yes/No radio values to a bool.
func ParseYesNo(s string) (bool, error) {
	switch foldLabel(s) {
	case "yes", "y", "true", "1":
		return true, nil
	case "no", "n", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected Yes or No, got %q", s)
}

// GenderOptions, GeneralHealthOptions and DiabeticOptions list the display
// labels in form order.
func GenderOptions() []string { return append([]string(nil), genderLabels[:]...) }

func GeneralHealthOptions() []string {
	// best first, like the questionnaire
	out := make([]string, 0, generalHealthCount)
	for h := HealthExcellent; h >= HealthPoor; h-- {
		out = append(out, h.String())
	}
	return out
}

func DiabeticOptions() []string { return append([]string(nil), diabeticLabels[:]...) }

type rawInputFields RawInput

// answerKeys are the yes/no and day-count answers. Like the categorical
// answers, their zero values (No, 0 days) are real answers, so each key must
// be present.
var answerKeys = []string{
	"smoker", "heavy_alcohol", "physical_activity_30d", "stroke_history",
	"difficulty_walking", "skin_cancer_history", "kidney_disease_history",
	"asthma_history", "sleep_hours", "physical_health_bad_days",
	"mental_health_bad_days",
}

// UnmarshalJSON decodes a submission strictly. Unknown keys are an error,
// and so is a payload that omits an answer: zero values are real answers
// (Male, Poor, diabetic Yes, No), so a missing key must not default to them.
func (in *RawInput) UnmarshalJSON(data []byte) error {
	aux := struct {
		*rawInputFields
		Gender        *Gender         `json:"gender"`
		GeneralHealth *GeneralHealth  `json:"general_health"`
		Diabetic      *DiabeticStatus `json:"diabetic_status"`
	}{rawInputFields: (*rawInputFields)(in)}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&aux); err != nil {
		return err
	}
	var present map[string]json.RawMessage
	if err := json.Unmarshal(data, &present); err != nil {
		return err
	}

	var err error
	if aux.Gender == nil {
		err = multierr.Append(err, missingAnswer("gender"))
	} else {
		in.Gender = *aux.Gender
	}
	if aux.GeneralHealth == nil {
		err = multierr.Append(err, missingAnswer("general_health"))
	} else {
		in.GeneralHealth = *aux.GeneralHealth
	}
	if aux.Diabetic == nil {
		err = multierr.Append(err, missingAnswer("diabetic_status"))
	} else {
		in.Diabetic = *aux.Diabetic
	}
	for _, key := range answerKeys {
		if v, ok := present[key]; !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			err = multierr.Append(err, missingAnswer(key))
		}
	}
	return err
}

func missingAnswer(field string) error {
	return &ValidationError{Field: field, Reason: "is required"}
}
