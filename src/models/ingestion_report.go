package models

// RowError reports a single rejected settlement row together with the
// offending input, so operators can trace it back to the source file.
type RowError struct {
	Row   map[string]string `json:"row"`
	Error string            `json:"error"`
}

// UnmatchedRow is a settlement row that no eligible transaction claimed.
// Not an error: these are surfaced for manual review.
type UnmatchedRow struct {
	Row    map[string]string `json:"row"`
	Reason string            `json:"reason"`
}

type IngestionReport struct {
	RunID               string            `json:"run_id"`
	ProcessedRows       int               `json:"processed_rows"`
	InsertedSettlements int               `json:"inserted_settlements"`
	MatchedRows         int               `json:"matched_rows"`
	AlreadyExisting     int               `json:"already_existing"`
	UnmatchedRows       []UnmatchedRow    `json:"unmatched_rows"`
	Errors              []RowError        `json:"errors"`
	UpdatedTransactions int               `json:"updated_transactions"`
	Dashboard           *DashboardSummary `json:"dashboard"`
	RecalculationErrors []string          `json:"recalculation_errors,omitempty"`
}
