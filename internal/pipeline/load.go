package pipeline

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/churn-cli/internal/model"
	"github.com/sells-group/churn-cli/internal/schema"
)

// LoadBatch reads a customer batch from a CSV or XLSX file, picking the
// parser by extension. The file supplies one flat batch per call.
func LoadBatch(path string) ([]model.RawRecord, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ParseCustomerCSV(path)
	case ".xlsx":
		return ParseCustomerXLSX(path)
	default:
		return nil, eris.Errorf("load: unsupported file type %q (want .csv or .xlsx)", filepath.Ext(path))
	}
}

// ParseCustomerCSV reads a customer CSV into raw records keyed by the
// canonical column names. Header names are matched after trimming and
// lowercasing, so exports with "Customer_ID" or "customer_id " both load.
func ParseCustomerCSV(path string) ([]model.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "csv: open")
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "csv: read")
	}
	if len(records) < 2 {
		return nil, eris.New("csv: no data rows")
	}

	return rowsToRecords(records[0], records[1:])
}

// rowsToRecords maps header-addressed cells into RawRecords. Columns outside
// the customer schema are ignored; schema validation decides what is
// required.
func rowsToRecords(header []string, rows [][]string) ([]model.RawRecord, error) {
	canonical := map[string]string{}
	for _, col := range append(append([]string{}, schema.Columns...), schema.ColChurnLabel) {
		canonical[col] = col
	}

	colIdx := map[string]int{}
	for i, col := range header {
		name := strings.ToLower(strings.TrimSpace(col))
		if canon, ok := canonical[name]; ok {
			colIdx[canon] = i
		}
	}
	if len(colIdx) == 0 {
		return nil, eris.New("load: no recognized customer columns in header")
	}

	out := make([]model.RawRecord, 0, len(rows))
	for _, row := range rows {
		rec := make(model.RawRecord, len(colIdx))
		for col, idx := range colIdx {
			if idx < len(row) {
				rec[col] = row[idx]
			}
		}
		out = append(out, rec)
	}
	return out, nil
}
