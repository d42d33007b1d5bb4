package util

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"recon-server/src/recon"
)

var requiredColumns = []string{
	"settlement_id", "settlement_date", "settlement_amount", "settlement_type",
	"currency", "transaction_date", "merchant_name", "account_id",
}

// ReadRows tokenizes a settlement report CSV into field-name -> value rows.
// It validates that the header carries every required column; field content
// is validated downstream by the ingestion pipeline.
func ReadRows(r io.Reader) ([]recon.Row, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	headers, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	col := map[string]int{}
	for i, h := range headers {
		col[h] = i
	}
	var missing []string
	for _, k := range requiredColumns {
		if _, ok := col[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("CSV missing required columns: %v", missing)
	}

	var rows []recon.Row
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		row := recon.Row{}
		for name, i := range col {
			if i < len(rec) {
				row[name] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
