package plausibility

// CheckResult reports one check. Expected and Actual are formatted for
// humans reading the verdict, not for machine comparison.
type CheckResult struct {
	CheckName string `json:"check_name"`
	Passed    bool   `json:"passed"`
	Expected  string `json:"expected,omitempty"`
	Actual    string `json:"actual,omitempty"`
	Details   string `json:"details,omitempty"`
}

// Verdict is the outcome of a full plausibility run. SealHash, Proof and
// HCSData are set only when every check passed.
type Verdict struct {
	IsValid           bool          `json:"is_valid"`
	InvoiceExpiryDate *string       `json:"invoice_expiry_date"`
	SealHash          *string       `json:"seal_hash"`
	Checks            []CheckResult `json:"checks"`
	Proof             *string       `json:"proof"`
	HCSData           *HCSData      `json:"hcs_data"`
}

// HCSData is the payload prepared for consensus-service anchoring.
type HCSData struct {
	SealHash     string       `json:"seal_hash"`
	PlantID      string       `json:"plant_id"`
	ValidityDate *string      `json:"validity_date"`
	Proof        string       `json:"proof"`
	Timestamp    string       `json:"timestamp"`
	Documents    HCSDocuments `json:"documents"`
}

type HCSDocuments struct {
	PosID       *string `json:"pos_id"`
	InvoiceNo   *string `json:"invoice_no"`
	PPAProject  *string `json:"ppa_project_id"`
	TermSheetID *string `json:"termsheet_id"`
}
