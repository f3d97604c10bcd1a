package series

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// #region csv-helpers

func readAll(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return records, nil
}

func parseFloat(cell string, record int) (float64, error) {
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, fmt.Errorf("record %d: bad value %q: %w", record, cell, err)
	}
	return v, nil
}

// #endregion csv-helpers
