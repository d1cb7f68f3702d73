package ml

import "fmt"

// CalculateBMI returns weight / height² with height converted to metres.
// No rounding is applied.
func CalculateBMI(heightCM, weightKG int) float64 {
	if heightCM <= 0 {
		return 0
	}
	meters := float64(heightCM) / 100
	return float64(weightKG) / (meters * meters)
}

// ageBandFloors holds the inclusive lower bound of each age band. The band
// index is the ordinal code the classifier was trained on.
var ageBandFloors = [...]int{18, 25, 30, 35, 40, 45, 50, 55, 60, 65, 70, 75, 80}

// AgeBands is the number of ordinal age codes (0..AgeBands-1).
const AgeBands = len(ageBandFloors)

// AgeCategory maps an age to its band code. Ages below 18 fall into band 0;
// Validate rejects them before encoding.
func AgeCategory(age int) int {
	band := 0
	for i, floor := range ageBandFloors {
		if age >= floor {
			band = i
		}
	}
	return band
}

// AgeCategoryLabel renders a band code the way the survey data labels it.
func AgeCategoryLabel(band int) string {
	if band < 0 || band >= AgeBands {
		return ""
	}
	if band == AgeBands-1 {
		return "80 or older"
	}
	return fmt.Sprintf("%d-%d", ageBandFloors[band], ageBandFloors[band+1]-1)
}

func boolFeature(v bool) float64 {
	if v {
		return 1
	}
	return 0
}
