package recon

import (
	"testing"
	"time"
)

func TestParseDate_AcceptedFormats(t *testing.T) {
	want := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{
		"2024-05-10",
		"2024-05-10 14:30:00",
		"2024-05-10T14:30:00Z",
		" 2024-05-10 ",
	} {
		got, err := ParseDate(in)
		if err != nil {
			t.Fatalf("ParseDate(%q): %v", in, err)
		}
		if !got.Equal(want) {
			t.Fatalf("ParseDate(%q) got=%v want=%v", in, got, want)
		}
	}

	if _, err := ParseDate("10/05/2024"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestParseRow_LifecycleIDOptional(t *testing.T) {
	row := Row{
		"settlement_id":     "S-1",
		"settlement_date":   "2024-05-11",
		"settlement_amount": "10.00",
		"settlement_type":   "DEBIT",
		"currency":          "USD",
		"transaction_date":  "2024-05-10",
		"merchant_name":     "Acme Store",
		"account_id":        "ACC-1",
	}
	rec, reason := parseRow(row)
	if reason != "" {
		t.Fatalf("parseRow: %s", reason)
	}
	if rec.LifecycleID != nil {
		t.Fatalf("lifecycle id got=%v want=nil", *rec.LifecycleID)
	}

	row["lifecycle_id"] = " LC-9 "
	rec, reason = parseRow(row)
	if reason != "" {
		t.Fatalf("parseRow: %s", reason)
	}
	if rec.LifecycleID == nil || *rec.LifecycleID != "LC-9" {
		t.Fatalf("lifecycle id got=%v want=LC-9", rec.LifecycleID)
	}
}
