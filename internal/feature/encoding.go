package feature

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/sells-group/churn-cli/internal/model"
)

// Categorical field names, including the two derived buckets.
const (
	FieldGender        = "gender"
	FieldAgeGroup      = "age_group"
	FieldState         = "state"
	FieldContractType  = "contract_type"
	FieldPaymentMethod = "payment_method"
	FieldChargeRange   = "monthly_charge_range"
)

// UnknownCategoryError reports a scoring-time category that was not present
// in the fitted encoding. It is never silently mapped to a default: doing so
// would corrupt the value semantics the classifier was trained on.
type UnknownCategoryError struct {
	Field string
	Value string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("feature: unknown category %q for field %q", e.Value, e.Field)
}

// Encoding maps each categorical field to its category→code table. Codes are
// assigned alphabetically at fit time and the map is immutable afterwards:
// scoring reuses it verbatim, never re-deriving it from the scoring batch.
type Encoding map[string]map[string]int

// FitEncoding derives a fresh encoding from a training batch. Codes follow
// alphabetical order of the categories observed in the batch.
func FitEncoding(records []model.CustomerRecord) Encoding {
	values := map[string]map[string]bool{}
	for _, rec := range records {
		for field, v := range categoricals(rec) {
			if values[field] == nil {
				values[field] = map[string]bool{}
			}
			values[field][v] = true
		}
	}

	enc := make(Encoding, len(values))
	for field, set := range values {
		cats := make([]string, 0, len(set))
		for c := range set {
			cats = append(cats, c)
		}
		sort.Strings(cats)
		codes := make(map[string]int, len(cats))
		for i, c := range cats {
			codes[c] = i
		}
		enc[field] = codes
	}
	return enc
}

// Code returns the integer code for a field's category value.
func (e Encoding) Code(field, value string) (int, error) {
	codes, ok := e[field]
	if !ok {
		return 0, eris.Errorf("feature: field %q not in encoding", field)
	}
	code, ok := codes[value]
	if !ok {
		return 0, &UnknownCategoryError{Field: field, Value: value}
	}
	return code, nil
}

// MarshalJSON serializes the encoding for persistence alongside the model.
func (e Encoding) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]map[string]int(e))
}

// DecodeEncoding reloads an encoding serialized by MarshalJSON. A reloaded
// encoding reproduces identical feature vectors to the original.
func DecodeEncoding(data []byte) (Encoding, error) {
	var m map[string]map[string]int
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, eris.Wrap(err, "feature: decode encoding")
	}
	return Encoding(m), nil
}

// categoricals extracts every categorical field value from a record,
// including the derived buckets.
func categoricals(rec model.CustomerRecord) map[string]string {
	return map[string]string{
		FieldGender:        rec.Gender,
		FieldAgeGroup:      AgeGroup(rec.Age),
		FieldState:         rec.State,
		FieldContractType:  rec.ContractType,
		FieldPaymentMethod: rec.PaymentMethod,
		FieldChargeRange:   ChargeRange(rec.MonthlyCharge),
	}
}
