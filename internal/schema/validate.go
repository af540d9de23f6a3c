package schema

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/sells-group/churn-cli/internal/model"
)

// Validate checks a raw batch against the customer schema and converts it
// into CustomerRecords. Row indices in the returned error are zero-based
// positions within the batch. When requireLabel is true (training batches),
// churn_label must be present and exactly "Yes" or "No"; scoring batches may
// omit the column entirely or leave its cells blank.
//
// Validate has no side effects and never returns a partial batch: any
// failure rejects the whole batch.
func Validate(rows []model.RawRecord, requireLabel bool) ([]model.CustomerRecord, error) {
	if len(rows) == 0 {
		return nil, &Error{Rows: []RowError{{Row: 0, Field: ColCustomerID, Reason: "empty batch"}}}
	}

	var errs []RowError
	addErr := func(row int, field, value, reason string) {
		errs = append(errs, RowError{Row: row, Field: field, Value: value, Reason: reason})
	}

	seen := make(map[string]int, len(rows))
	records := make([]model.CustomerRecord, 0, len(rows))

	for i, raw := range rows {
		var rec model.CustomerRecord
		rowOK := true

		get := func(field string) (string, bool) {
			v, ok := raw[field]
			if !ok {
				addErr(i, field, "", "missing column")
				rowOK = false
				return "", false
			}
			return strings.TrimSpace(v), true
		}

		if id, ok := get(ColCustomerID); ok {
			if id == "" {
				addErr(i, ColCustomerID, "", "empty customer_id")
				rowOK = false
			} else if prev, dup := seen[id]; dup {
				addErr(i, ColCustomerID, id, "duplicate of row "+strconv.Itoa(prev))
				rowOK = false
			} else {
				seen[id] = i
				rec.CustomerID = id
			}
		}

		rec.Gender = checkEnum(i, ColGender, raw, model.Genders, get, addErr, &rowOK)
		rec.State = checkEnum(i, ColState, raw, model.States, get, addErr, &rowOK)
		rec.ContractType = checkEnum(i, ColContractType, raw, model.ContractTypes, get, addErr, &rowOK)
		rec.PaymentMethod = checkEnum(i, ColPaymentMethod, raw, model.PaymentMethods, get, addErr, &rowOK)

		if v, ok := get(ColAge); ok {
			age, err := strconv.Atoi(v)
			switch {
			case err != nil:
				addErr(i, ColAge, v, "not an integer")
				rowOK = false
			case age < model.MinAge || age > model.MaxAge:
				addErr(i, ColAge, v, "out of range 0-120")
				rowOK = false
			default:
				rec.Age = age
			}
		}

		rec.MonthlyCharge = checkCharge(i, ColMonthlyCharge, get, addErr, &rowOK)
		rec.TotalCharges = checkCharge(i, ColTotalCharges, get, addErr, &rowOK)

		label, present := raw[ColChurnLabel]
		label = strings.TrimSpace(label)
		switch {
		case !present:
			if requireLabel {
				addErr(i, ColChurnLabel, "", "missing column")
				rowOK = false
			}
		case label == "":
			// Scoring exports commonly keep the column with blank cells.
			if requireLabel {
				addErr(i, ColChurnLabel, "", "empty label")
				rowOK = false
			}
		case label != model.ChurnYes && label != model.ChurnNo:
			addErr(i, ColChurnLabel, label, `must be "Yes" or "No"`)
			rowOK = false
		default:
			rec.ChurnLabel = label
		}

		if rowOK {
			records = append(records, rec)
		}
	}

	if len(errs) > 0 {
		return nil, &Error{Rows: errs}
	}
	return records, nil
}

func checkEnum(row int, field string, raw model.RawRecord, allowed []string, get func(string) (string, bool), addErr func(int, string, string, string), rowOK *bool) string {
	v, ok := get(field)
	if !ok {
		return ""
	}
	// Case-sensitive exact match; unseen categories are an error, not ignored.
	if !slices.Contains(allowed, v) {
		addErr(row, field, v, "not in declared category set")
		*rowOK = false
		return ""
	}
	return v
}

func checkCharge(row int, field string, get func(string) (string, bool), addErr func(int, string, string, string), rowOK *bool) float64 {
	v, ok := get(field)
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	switch {
	case err != nil:
		addErr(row, field, v, "not a number")
		*rowOK = false
	// ParseFloat accepts "NaN" and "Inf"; neither may reach the feature matrix.
	case math.IsNaN(f) || math.IsInf(f, 0):
		addErr(row, field, v, "not a finite number")
		*rowOK = false
	case f < 0:
		addErr(row, field, v, "negative")
		*rowOK = false
	}
	return f
}
