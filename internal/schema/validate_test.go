package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/churn-cli/internal/model"
)

func validRaw(id string) model.RawRecord {
	return model.RawRecord{
		ColCustomerID:    id,
		ColGender:        "Female",
		ColAge:           "34",
		ColState:         "TX",
		ColContractType:  "Month-to-Month",
		ColPaymentMethod: "Credit Card",
		ColMonthlyCharge: "72.50",
		ColTotalCharges:  "1450.00",
		ColChurnLabel:    "No",
	}
}

func TestValidate_CleanBatch(t *testing.T) {
	rows := []model.RawRecord{validRaw("C001"), validRaw("C002")}

	records, err := Validate(rows, true)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "C001", records[0].CustomerID)
	assert.Equal(t, 34, records[0].Age)
	assert.Equal(t, 72.50, records[0].MonthlyCharge)
	assert.Equal(t, "No", records[0].ChurnLabel)
}

func TestValidate_NegativeAge(t *testing.T) {
	rows := []model.RawRecord{validRaw("C001"), validRaw("C002")}
	rows[1][ColAge] = "-5"

	_, err := Validate(rows, true)
	require.Error(t, err)

	var schemaErr *Error
	require.ErrorAs(t, err, &schemaErr)
	require.Len(t, schemaErr.Rows, 1)
	assert.Equal(t, 1, schemaErr.Rows[0].Row)
	assert.Equal(t, ColAge, schemaErr.Rows[0].Field)
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	rows := []model.RawRecord{validRaw("C001"), validRaw("C002"), validRaw("C003")}
	rows[0][ColGender] = "female" // case-sensitive
	rows[1][ColAge] = "abc"
	rows[2][ColMonthlyCharge] = "-10"
	rows[2][ColPaymentMethod] = "Cash"

	_, err := Validate(rows, true)
	var schemaErr *Error
	require.ErrorAs(t, err, &schemaErr)
	assert.Len(t, schemaErr.Rows, 4)
}

func TestValidate_NonFiniteCharges(t *testing.T) {
	// ParseFloat accepts these spellings; the validator must not.
	for _, v := range []string{"NaN", "+Inf", "-Inf", "Inf"} {
		t.Run(v, func(t *testing.T) {
			rows := []model.RawRecord{validRaw("C001"), validRaw("C002")}
			rows[0][ColMonthlyCharge] = v
			rows[1][ColTotalCharges] = v

			_, err := Validate(rows, true)
			var schemaErr *Error
			require.ErrorAs(t, err, &schemaErr)
			require.Len(t, schemaErr.Rows, 2)
			assert.Equal(t, ColMonthlyCharge, schemaErr.Rows[0].Field)
			assert.Equal(t, ColTotalCharges, schemaErr.Rows[1].Field)
			assert.Equal(t, "not a finite number", schemaErr.Rows[0].Reason)
		})
	}
}

func TestValidate_DuplicateCustomerID(t *testing.T) {
	rows := []model.RawRecord{validRaw("C001"), validRaw("C001")}

	_, err := Validate(rows, true)
	var schemaErr *Error
	require.ErrorAs(t, err, &schemaErr)
	require.Len(t, schemaErr.Rows, 1)
	assert.Equal(t, 1, schemaErr.Rows[0].Row)
	assert.Equal(t, ColCustomerID, schemaErr.Rows[0].Field)
	assert.Contains(t, schemaErr.Rows[0].Reason, "duplicate")
}

func TestValidate_MissingColumn(t *testing.T) {
	row := validRaw("C001")
	delete(row, ColState)

	_, err := Validate([]model.RawRecord{row}, true)
	var schemaErr *Error
	require.ErrorAs(t, err, &schemaErr)
	require.Len(t, schemaErr.Rows, 1)
	assert.Equal(t, ColState, schemaErr.Rows[0].Field)
	assert.Equal(t, "missing column", schemaErr.Rows[0].Reason)
}

func TestValidate_BadLabel(t *testing.T) {
	row := validRaw("C001")
	row[ColChurnLabel] = "yes" // must be exactly "Yes"

	_, err := Validate([]model.RawRecord{row}, true)
	var schemaErr *Error
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, ColChurnLabel, schemaErr.Rows[0].Field)
}

func TestValidate_UnlabeledScoringBatch(t *testing.T) {
	row := validRaw("C001")
	delete(row, ColChurnLabel)

	records, err := Validate([]model.RawRecord{row}, false)
	require.NoError(t, err)
	assert.False(t, records[0].Labeled())
}

func TestValidate_BlankLabelColumn(t *testing.T) {
	// A scoring export that kept the churn_label column but left it blank.
	row := validRaw("C001")
	row[ColChurnLabel] = "  "

	records, err := Validate([]model.RawRecord{row}, false)
	require.NoError(t, err)
	assert.False(t, records[0].Labeled())

	// A training batch still needs a real label.
	_, err = Validate([]model.RawRecord{validRaw("C002"), row}, true)
	var schemaErr *Error
	require.ErrorAs(t, err, &schemaErr)
	require.Len(t, schemaErr.Rows, 1)
	assert.Equal(t, 1, schemaErr.Rows[0].Row)
	assert.Equal(t, ColChurnLabel, schemaErr.Rows[0].Field)
}

func TestValidate_LabelRequiredForTraining(t *testing.T) {
	row := validRaw("C001")
	delete(row, ColChurnLabel)

	_, err := Validate([]model.RawRecord{row}, true)
	require.Error(t, err)
	var schemaErr *Error
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, ColChurnLabel, schemaErr.Rows[0].Field)
}

func TestValidate_EmptyBatch(t *testing.T) {
	_, err := Validate(nil, true)
	require.Error(t, err)
}

func TestValidate_AgeBounds(t *testing.T) {
	row := validRaw("C001")
	row[ColAge] = "121"

	_, err := Validate([]model.RawRecord{row}, true)
	var schemaErr *Error
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, ColAge, schemaErr.Rows[0].Field)

	row[ColAge] = "120"
	_, err = Validate([]model.RawRecord{row}, true)
	assert.NoError(t, err)
}
