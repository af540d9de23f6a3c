package feature

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/churn-cli/internal/dataset"
	"github.com/sells-group/churn-cli/internal/model"
)

// Names is the fixed feature column order of every matrix this package
// produces. A trained model stores this order and rejects any input that
// does not match it.
var Names = []string{
	"age",
	FieldAgeGroup,
	FieldGender,
	FieldState,
	FieldContractType,
	FieldPaymentMethod,
	"monthly_charge",
	FieldChargeRange,
	"total_charges",
}

// Transform encodes a validated batch into a numeric feature matrix using
// the given encoding. Transform is a pure function of (records, encoding):
// the same inputs always yield an identical matrix. An unseen category
// fails with UnknownCategoryError and produces no partial matrix.
func Transform(records []model.CustomerRecord, enc Encoding) (*dataset.Matrix, error) {
	rows := make([][]float64, len(records))
	for i, rec := range records {
		cats := categoricals(rec)
		row := make([]float64, 0, len(Names))
		for _, name := range Names {
			switch name {
			case "age":
				row = append(row, float64(rec.Age))
			case "monthly_charge":
				row = append(row, rec.MonthlyCharge)
			case "total_charges":
				row = append(row, rec.TotalCharges)
			default:
				code, err := enc.Code(name, cats[name])
				if err != nil {
					return nil, err
				}
				row = append(row, float64(code))
			}
		}
		rows[i] = row
	}
	return dataset.NewMatrix(Names, rows)
}

// Labels extracts the Yes=1 / No=0 label vector from a labeled batch.
func Labels(records []model.CustomerRecord) ([]int, error) {
	labels := make([]int, len(records))
	for i, rec := range records {
		switch rec.ChurnLabel {
		case model.ChurnYes:
			labels[i] = 1
		case model.ChurnNo:
			labels[i] = 0
		default:
			return nil, eris.Errorf("feature: row %d has no churn label", i)
		}
	}
	return labels, nil
}
