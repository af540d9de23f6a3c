// Package schema validates raw customer batches against the expected column
// set before any feature computation runs. Validation is pure: a batch either
// converts cleanly into CustomerRecords or fails with a SchemaError listing
// every offending row.
package schema

import (
	"fmt"
	"strings"
)

// Canonical column names for a customer batch.
const (
	ColCustomerID    = "customer_id"
	ColGender        = "gender"
	ColAge           = "age"
	ColState         = "state"
	ColContractType  = "contract_type"
	ColPaymentMethod = "payment_method"
	ColMonthlyCharge = "monthly_charge"
	ColTotalCharges  = "total_charges"
	ColChurnLabel    = "churn_label"
)

// Columns lists the required columns in canonical order. churn_label is
// required only for training batches.
var Columns = []string{
	ColCustomerID,
	ColGender,
	ColAge,
	ColState,
	ColContractType,
	ColPaymentMethod,
	ColMonthlyCharge,
	ColTotalCharges,
}

// RowError pinpoints one validation failure.
type RowError struct {
	Row    int    `json:"row"`
	Field  string `json:"field"`
	Value  string `json:"value,omitempty"`
	Reason string `json:"reason"`
}

func (e RowError) String() string {
	if e.Value != "" {
		return fmt.Sprintf("row %d: %s=%q: %s", e.Row, e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("row %d: %s: %s", e.Row, e.Field, e.Reason)
}

// Error reports every validation failure in a batch. A single malformed row
// does not abort validation of the rest; all failures are collected here.
type Error struct {
	Rows []RowError
}

func (e *Error) Error() string {
	if len(e.Rows) == 1 {
		return "schema: " + e.Rows[0].String()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "schema: %d validation errors:", len(e.Rows))
	for _, re := range e.Rows {
		b.WriteString("\n  " + re.String())
	}
	return b.String()
}
