// Package source reads launch datasets from files.
//
// Two formats are supported: the published comma-separated export and a
// Parquet snapshot written by WriteParquet. Both produce a dataset.Store.
package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xtxerr/launchboard/internal/dataset"
	"github.com/xtxerr/launchboard/internal/errors"
)

// ReadCSV reads every row of r. The first line is the header; every later
// line must have as many fields. Header cells are trimmed, values are kept
// as-is (dataset.Load trims them).
func ReadCSV(r io.Reader) ([]dataset.RawRow, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.ErrEmptyDataset
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	var rows []dataset.RawRow
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}

		row := make(dataset.RawRow, len(header))
		for i, name := range header {
			if name == "" {
				continue
			}
			row[name] = fields[i]
		}
		rows = append(rows, row)
	}

	return rows, nil
}
