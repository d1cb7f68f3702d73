package ml

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// LabeledRecord is one row of the survey dataset: the encoded answers plus
// the recorded outcome.
type LabeledRecord struct {
	Features FeatureVector
	Label    Label
}

// datasetColumns are the survey CSV headers each feature is read from.
// Race is present in the survey but unused by the classifier.
var datasetColumns = []string{
	"HeartDisease", "BMI", "Smoking", "AlcoholDrinking", "Stroke",
	"PhysicalHealth", "MentalHealth", "DiffWalking", "Sex", "AgeCategory",
	"Diabetic", "PhysicalActivity", "GenHealth", "SleepTime", "Asthma",
	"KidneyDisease", "SkinCancer",
}

// The survey spells two diabetic categories differently from the form.
var datasetDiabetic = map[string]DiabeticStatus{
	"No, borderline diabetes": DiabeticNoBorderline,
	"Yes (during pregnancy)":  DiabeticYesDuringPregnancy,
}

// ReadDataset parses the survey CSV. Rows are located by header name, so
// extra columns and any column order are accepted.
func ReadDataset(r io.Reader) ([]LabeledRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, name := range datasetColumns {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	var records []LabeledRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rec, err := parseDatasetRow(func(name string) string { return row[index[name]] })
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseDatasetRow(col func(string) string) (LabeledRecord, error) {
	var (
		rec LabeledRecord
		v   = &rec.Features
	)

	outcome, err := ParseYesNo(col("HeartDisease"))
	if err != nil {
		return rec, fmt.Errorf("HeartDisease: %w", err)
	}
	if outcome {
		rec.Label = PotentialDisease
	}

	if v[ColBMI], err = strconv.ParseFloat(strings.TrimSpace(col("BMI")), 64); err != nil {
		return rec, fmt.Errorf("BMI: %w", err)
	}
	for name, c := range map[string]int{
		"PhysicalHealth": ColPhysicalHealth,
		"MentalHealth":   ColMentalHealth,
		"SleepTime":      ColSleepTime,
	} {
		if v[c], err = strconv.ParseFloat(strings.TrimSpace(col(name)), 64); err != nil {
			return rec, fmt.Errorf("%s: %w", name, err)
		}
	}
	for name, c := range map[string]int{
		"Smoking":          ColSmoking,
		"AlcoholDrinking":  ColAlcoholDrinking,
		"Stroke":           ColStroke,
		"DiffWalking":      ColDiffWalking,
		"PhysicalActivity": ColPhysicalActivity,
		"Asthma":           ColAsthma,
		"KidneyDisease":    ColKidneyDisease,
		"SkinCancer":       ColSkinCancer,
	} {
		yes, err := ParseYesNo(col(name))
		if err != nil {
			return rec, fmt.Errorf("%s: %w", name, err)
		}
		v[c] = boolFeature(yes)
	}

	band, err := parseAgeCategory(col("AgeCategory"))
	if err != nil {
		return rec, err
	}
	v[ColAgeCategory] = float64(band)

	gender, err := ParseGender(col("Sex"))
	if err != nil {
		return rec, err
	}
	copy(v[ColSexMale:ColSexFemale+1], sexColumns[gender][:])

	health, err := ParseGeneralHealth(col("GenHealth"))
	if err != nil {
		return rec, err
	}
	v[ColGenHealth] = generalHealthCodes[health]

	diabetic, ok := datasetDiabetic[strings.TrimSpace(col("Diabetic"))]
	if !ok {
		if diabetic, err = ParseDiabeticStatus(col("Diabetic")); err != nil {
			return rec, err
		}
	}
	copy(v[ColDiabeticYes:ColDiabeticYesDuringPregnancy+1], diabeticColumns[diabetic][:])

	return rec, nil
}

func parseAgeCategory(s string) (int, error) {
	s = strings.TrimSpace(s)
	for band := 0; band < AgeBands; band++ {
		if AgeCategoryLabel(band) == s {
			return band, nil
		}
	}
	return 0, invalidEnum("AgeCategory", s)
}

// Metrics summarises a classifier's agreement with recorded outcomes,
// treating PotentialDisease as the positive class.
type Metrics struct {
	Total         int
	Correct       int
	TruePositive  int
	FalsePositive int
	FalseNegative int
	Failed        int
}

func (m Metrics) Accuracy() float64 { return ratio(m.Correct, m.Total) }

func (m Metrics) Precision() float64 {
	return ratio(m.TruePositive, m.TruePositive+m.FalsePositive)
}

func (m Metrics) Recall() float64 {
	return ratio(m.TruePositive, m.TruePositive+m.FalseNegative)
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

// Evaluate runs model over records. Rows the model fails on are counted in
// Failed and excluded from the other figures.
func Evaluate(model Classifier, records []LabeledRecord) Metrics {
	var m Metrics
	for _, rec := range records {
		pred, err := predictWith(model, rec.Features[:])
		if err != nil {
			m.Failed++
			continue
		}
		m.Total++
		if pred.Label == rec.Label {
			m.Correct++
		}
		switch {
		case pred.Label == PotentialDisease && rec.Label == PotentialDisease:
			m.TruePositive++
		case pred.Label == PotentialDisease:
			m.FalsePositive++
		case rec.Label == PotentialDisease:
			m.FalseNegative++
		}
	}
	return m
}
