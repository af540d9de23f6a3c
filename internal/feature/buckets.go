// Package feature derives bucket features from customer records and encodes
// every categorical field into a numeric matrix with a fixed column order.
// The bucket thresholds are configuration constants, not learned from data:
// the same record always maps to the same feature vector.
package feature

// Age group buckets, inclusive-lower / exclusive-upper thresholds.
const (
	AgeGroupUnder30 = "<30"
	AgeGroup30To50  = "30-50"
	AgeGroupOver50  = ">50"

	ageMidThreshold    = 30
	ageSeniorThreshold = 50
)

// Monthly charge buckets, inclusive-lower / exclusive-upper thresholds.
const (
	ChargeRangeLow    = "<35"
	ChargeRangeMid    = "35-70"
	ChargeRangeHigh   = "70-100"
	ChargeRangeTop    = ">100"

	chargeMidThreshold  = 35.0
	chargeHighThreshold = 70.0
	chargeTopThreshold  = 100.0
)

// AgeGroup buckets an age into its ordinal group.
func AgeGroup(age int) string {
	switch {
	case age < ageMidThreshold:
		return AgeGroupUnder30
	case age < ageSeniorThreshold:
		return AgeGroup30To50
	default:
		return AgeGroupOver50
	}
}

// ChargeRange buckets a monthly charge into its ordinal range.
func ChargeRange(charge float64) string {
	switch {
	case charge < chargeMidThreshold:
		return ChargeRangeLow
	case charge < chargeHighThreshold:
		return ChargeRangeMid
	case charge < chargeTopThreshold:
		return ChargeRangeHigh
	default:
		return ChargeRangeTop
	}
}
