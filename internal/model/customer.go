package model

// ChurnLabel values. A record awaiting scoring carries an empty label.
const (
	ChurnYes = "Yes"
	ChurnNo  = "No"
)

// Age bounds accepted by the schema validator.
const (
	MinAge = 0
	MaxAge = 120
)

// Genders lists the accepted gender values, case-sensitive.
var Genders = []string{"Female", "Male"}

// ContractTypes lists the accepted contract_type values.
var ContractTypes = []string{"Month-to-Month", "One-Year", "Two-Year"}

// PaymentMethods lists the accepted payment_method values.
var PaymentMethods = []string{"Bank Transfer", "Credit Card", "Electronic Check", "Mailed Check"}

// States lists the accepted state codes (USPS two-letter, plus DC).
var States = []string{
	"AK", "AL", "AR", "AZ", "CA", "CO", "CT", "DC", "DE", "FL",
	"GA", "HI", "IA", "ID", "IL", "IN", "KS", "KY", "LA", "MA",
	"MD", "ME", "MI", "MN", "MO", "MS", "MT", "NC", "ND", "NE",
	"NH", "NJ", "NM", "NV", "NY", "OH", "OK", "OR", "PA", "RI",
	"SC", "SD", "TN", "TX", "UT", "VA", "VT", "WA", "WI", "WV", "WY",
}

// RawRecord is one unvalidated input row, keyed by column name.
type RawRecord map[string]string

// CustomerRecord is one validated customer row. ChurnLabel is empty for
// records awaiting scoring.
type CustomerRecord struct {
	CustomerID    string  `json:"customer_id"`
	Gender        string  `json:"gender"`
	Age           int     `json:"age"`
	State         string  `json:"state"`
	ContractType  string  `json:"contract_type"`
	PaymentMethod string  `json:"payment_method"`
	MonthlyCharge float64 `json:"monthly_charge"`
	TotalCharges  float64 `json:"total_charges"`
	ChurnLabel    string  `json:"churn_label,omitempty"`
}

// Labeled reports whether the record carries a churn label.
func (r CustomerRecord) Labeled() bool {
	return r.ChurnLabel != ""
}
