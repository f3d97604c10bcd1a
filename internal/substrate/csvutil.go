package substrate

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// #region csv-helpers

// readAll reads every CSV record and enforces a fixed column count.
func readAll(r io.Reader, columns int) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = columns
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return records, nil
}

// parseFloat parses one numeric cell with positional error context.
func parseFloat(cell, column string, record int) (float64, error) {
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, fmt.Errorf("record %d: bad %s %q: %w", record, column, cell, err)
	}
	return v, nil
}

// #endregion csv-helpers
