package substrate

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"time"
)

// #region types

// Row is one externally supplied observation: where a body sat at a
// timestamp, in equatorial angles plus heliocentric distance.
type Row struct {
	Timestamp         time.Time
	BodyID            string
	RightAscensionDeg float64
	DeclinationDeg    float64
	ElongationDeg     float64
	DistanceAU        float64
}

// Group collects every row sharing one timestamp.
type Group struct {
	Timestamp time.Time
	Rows      []Row
}

// Table is an immutable, timestamp-ordered substrate table.
type Table struct {
	groups []Group
}

// #endregion types

// #region errors

// ErrEmpty reports a substrate table with no rows. Structural input problems
// are fatal; the pipeline refuses to run on them.
var ErrEmpty = errors.New("substrate table is empty")

// #endregion errors

// #region constructor

// NewTable validates rows, groups them by timestamp, and orders the groups
// ascending. Rows within a group keep input order.
func NewTable(rows []Row) (*Table, error) {
	if len(rows) == 0 {
		return nil, ErrEmpty
	}
	byTS := make(map[time.Time][]Row, len(rows))
	for i, r := range rows {
		if r.Timestamp.IsZero() {
			return nil, fmt.Errorf("row %d: zero timestamp", i)
		}
		if r.BodyID == "" {
			return nil, fmt.Errorf("row %d: missing body id", i)
		}
		if r.DistanceAU <= 0 {
			// Missing or unusable distance defaults to 1 AU.
			r.DistanceAU = 1.0
		}
		byTS[r.Timestamp] = append(byTS[r.Timestamp], r)
	}

	groups := make([]Group, 0, len(byTS))
	for ts, rs := range byTS {
		groups = append(groups, Group{Timestamp: ts, Rows: rs})
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Timestamp.Before(groups[j].Timestamp)
	})
	return &Table{groups: groups}, nil
}

// #endregion constructor

// #region accessors

// Groups returns the timestamp-ordered groups. Callers must not mutate.
func (t *Table) Groups() []Group {
	return t.groups
}

// Len returns the number of distinct timestamps.
func (t *Table) Len() int {
	return len(t.groups)
}

// Timestamps returns the ordered timestamp grid.
func (t *Table) Timestamps() []time.Time {
	out := make([]time.Time, len(t.groups))
	for i, g := range t.groups {
		out[i] = g.Timestamp
	}
	return out
}

// #endregion accessors

// #region csv

// csv column layout: timestamp,body_id,ra_deg,dec_deg,elongation_deg,distance_au
const csvColumns = 6

// ReadCSV parses a substrate table from CSV. The first record is treated as
// a header when its timestamp column does not parse. An empty distance cell
// defaults to 1 AU inside NewTable.
func ReadCSV(r io.Reader) (*Table, error) {
	records, err := readAll(r, csvColumns)
	if err != nil {
		return nil, err
	}

	var rows []Row
	for i, rec := range records {
		ts, err := time.Parse(time.RFC3339, rec[0])
		if err != nil {
			if i == 0 {
				continue // header
			}
			return nil, fmt.Errorf("record %d: bad timestamp %q: %w", i+1, rec[0], err)
		}
		row := Row{Timestamp: ts.UTC(), BodyID: rec[1]}
		if row.RightAscensionDeg, err = parseFloat(rec[2], "ra_deg", i+1); err != nil {
			return nil, err
		}
		if row.DeclinationDeg, err = parseFloat(rec[3], "dec_deg", i+1); err != nil {
			return nil, err
		}
		if row.ElongationDeg, err = parseFloat(rec[4], "elongation_deg", i+1); err != nil {
			return nil, err
		}
		if rec[5] != "" {
			if row.DistanceAU, err = parseFloat(rec[5], "distance_au", i+1); err != nil {
				return nil, err
			}
		}
		rows = append(rows, row)
	}
	return NewTable(rows)
}

// #endregion csv
