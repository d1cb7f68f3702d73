package ml

// Column indices of the feature vector. The order is the column order of
// the training data and is an external contract with the model artifact:
// the classifier receives a positional array, so any reordering here
// silently corrupts predictions. FeatureNames must stay in sync.
const (
	ColBMI = iota
	ColSmoking
	ColAlcoholDrinking
	ColStroke
	ColPhysicalHealth
	ColMentalHealth
	ColDiffWalking
	ColAgeCategory
	ColPhysicalActivity
	ColGenHealth
	ColSleepTime
	ColAsthma
	ColKidneyDisease
	ColSkinCancer
	ColSexMale
	ColSexFemale
	ColDiabeticYes
	ColDiabeticNoBorderline
	ColDiabeticNo
	ColDiabeticYesDuringPregnancy

	NumFeatures
)

var featureNames = [NumFeatures]string{
	ColBMI:                        "BMI",
	ColSmoking:                    "Smoking",
	ColAlcoholDrinking:            "AlcoholDrinking",
	ColStroke:                     "Stroke",
	ColPhysicalHealth:             "PhysicalHealth",
	ColMentalHealth:               "MentalHealth",
	ColDiffWalking:                "DiffWalking",
	ColAgeCategory:                "AgeCategory",
	ColPhysicalActivity:           "PhysicalActivity",
	ColGenHealth:                  "GenHealth",
	ColSleepTime:                  "SleepTime",
	ColAsthma:                     "Asthma",
	ColKidneyDisease:              "KidneyDisease",
	ColSkinCancer:                 "SkinCancer",
	ColSexMale:                    "Sex_Male",
	ColSexFemale:                  "Sex_Female",
	ColDiabeticYes:                "Diabetic_Yes",
	ColDiabeticNoBorderline:       "Diabetic_No_borderline_diabetes",
	ColDiabeticNo:                 "Diabetic_No",
	ColDiabeticYesDuringPregnancy: "Diabetic_Yes_during_pregnancy",
}

// FeatureVector is the encoded form of one RawInput. It is an array, so it
// is copied by value and usable as a map key.
type FeatureVector [NumFeatures]float64

// One-hot tables, indexed by the enum value. Each row has exactly one 1.
var sexColumns = [genderCount][2]float64{
	Male:   {1, 0},
	Female: {0, 1},
}

var diabeticColumns = [diabeticCount][4]float64{
	// Yes, No_borderline, No, Yes_during_pregnancy
	DiabeticYes:                {1, 0, 0, 0},
	DiabeticNoBorderline:       {0, 1, 0, 0},
	DiabeticNo:                 {0, 0, 1, 0},
	DiabeticYesDuringPregnancy: {0, 0, 0, 1},
}

var generalHealthCodes = [generalHealthCount]float64{
	HealthPoor:      0,
	HealthFair:      1,
	HealthGood:      2,
	HealthVeryGood:  3,
	HealthExcellent: 4,
}

// Encode validates raw and maps it onto the classifier's feature layout.
func Encode(raw RawInput) (FeatureVector, error) {
	if err := raw.Validate(); err != nil {
		return FeatureVector{}, err
	}
	return encode(raw), nil
}

func encode(raw RawInput) FeatureVector {
	var v FeatureVector
	v[ColBMI] = CalculateBMI(raw.HeightCM, raw.WeightKG)
	v[ColSmoking] = boolFeature(raw.Smoker)
	v[ColAlcoholDrinking] = boolFeature(raw.HeavyAlcohol)
	v[ColStroke] = boolFeature(raw.Stroke)
	v[ColPhysicalHealth] = float64(raw.PhysicalHealthBadDays)
	v[ColMentalHealth] = float64(raw.MentalHealthBadDays)
	v[ColDiffWalking] = boolFeature(raw.DiffWalking)
	v[ColAgeCategory] = float64(AgeCategory(raw.Age))
	v[ColPhysicalActivity] = boolFeature(raw.PhysicalActivity)
	v[ColGenHealth] = generalHealthCodes[raw.GeneralHealth]
	v[ColSleepTime] = float64(raw.SleepHours)
	v[ColAsthma] = boolFeature(raw.Asthma)
	v[ColKidneyDisease] = boolFeature(raw.KidneyDisease)
	v[ColSkinCancer] = boolFeature(raw.SkinCancer)
	copy(v[ColSexMale:ColSexFemale+1], sexColumns[raw.Gender][:])
	copy(v[ColDiabeticYes:ColDiabeticYesDuringPregnancy+1], diabeticColumns[raw.Diabetic][:])
	return v
}

// FeatureNames returns the ordered column names of the feature vector.
func FeatureNames() []string {
	return append([]string(nil), featureNames[:]...)
}

// Slice returns a copy of the vector as a slice.
func (v FeatureVector) Slice() []float64 {
	return append([]float64(nil), v[:]...)
}

// Named maps each column name to its value.
func (v FeatureVector) Named() map[string]float64 {
	out := make(map[string]float64, NumFeatures)
	for i, name := range featureNames {
		out[name] = v[i]
	}
	return out
}

// BMI returns the derived BMI column.
func (v FeatureVector) BMI() float64 { return v[ColBMI] }

// AgeBand returns the ordinal age code.
func (v FeatureVector) AgeBand() int { return int(v[ColAgeCategory]) }
