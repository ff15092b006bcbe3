// Package spreadsheet decodes an uploaded brokerage ledger export (.xlsx)
// into the flat records the holdings aggregator consumes.
//
// It is deliberately dumb: every cell surfaces as a string, exactly as the
// row-source boundary promises. Numeric and date coercion stays downstream
// in the holdings package, where dirty values degrade instead of failing.
package spreadsheet

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/etnz/holdings"
)

// headerAliases maps normalized header titles, as brokers export them, to
// the canonical column names. Unknown headers are ignored.
var headerAliases = map[string]string{
	"date":             holdings.ColDate,
	"action":           holdings.ColAction,
	"actiontype":       holdings.ColAction,
	"operation":        holdings.ColAction,
	"securityid":       holdings.ColSecurityID,
	"security":         holdings.ColSecurityID,
	"paper":            holdings.ColSecurityID,
	"securityname":     holdings.ColSecurityName,
	"name":             holdings.ColSecurityName,
	"quantity":         holdings.ColQuantity,
	"amount":           holdings.ColQuantity,
	"executionprice":   holdings.ColPrice,
	"price":            holdings.ColPrice,
	"rate":             holdings.ColPrice,
	"transactionfee":   holdings.ColFee,
	"fee":              holdings.ColFee,
	"commission":       holdings.ColFee,
	"foreignamount":    holdings.ColForeignAmount,
	"foreigncurrency":  holdings.ColForeignAmount,
	"localamount":      holdings.ColLocalAmount,
	"localcurrency":    holdings.ColLocalAmount,
	"totallocalamount": holdings.ColLocalAmount,
}

// normalize strips the decoration brokers put in header cells.
func normalize(header string) string {
	header = strings.ToLower(strings.TrimSpace(header))
	for _, cut := range []string{" ", "_", "-", ".", "(", ")"} {
		header = strings.ReplaceAll(header, cut, "")
	}
	return header
}

// Read decodes the first sheet of an .xlsx stream into records. The first
// non-empty row is the header; its titles are matched against the known
// aliases and every following row becomes one Record. Cells beyond the
// header width and columns without a recognized title are dropped.
func Read(r io.Reader) ([]holdings.Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("cannot open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("cannot read sheet %q: %w", sheets[0], err)
	}

	// Locate the header row and map column positions to canonical names.
	var columns map[int]string
	start := 0
	for i, row := range rows {
		columns = headerColumns(row)
		if len(columns) > 0 {
			start = i + 1
			break
		}
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("no recognizable header row in sheet %q", sheets[0])
	}

	records := make([]holdings.Record, 0, len(rows)-start)
	for _, row := range rows[start:] {
		if empty(row) {
			continue
		}
		fields := make(map[string]string, len(columns))
		for i, cell := range row {
			if name, ok := columns[i]; ok {
				fields[name] = cell
			}
		}
		records = append(records, holdings.NewRecord(fields))
	}
	return records, nil
}

// ReadFile is Read over a file path.
func ReadFile(path string) ([]holdings.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open spreadsheet %q: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// headerColumns maps cell positions to canonical column names, or an empty
// map if the row does not look like a header.
func headerColumns(row []string) map[int]string {
	columns := make(map[int]string)
	taken := make(map[string]bool)
	for i, cell := range row {
		name, ok := headerAliases[normalize(cell)]
		if ok && !taken[name] {
			columns[i] = name
			taken[name] = true
		}
	}
	// A lone matching cell is more likely a stray label than a header.
	if len(columns) < 2 {
		return nil
	}
	return columns
}

func empty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
