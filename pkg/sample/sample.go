// Package sample loads observation matrices for control chart fitting.
// Observations are rows and variables are columns.
package sample

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// FromRows copies rows into a dense observation matrix.  Every row must
// carry the same number of variables.
func FromRows(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, EmptyData{}
	}
	p := len(rows[0])
	d := mat.NewDense(len(rows), p, nil)
	for i, row := range rows {
		if len(row) != p {
			return nil, RaggedRow{Row: i, Want: p, Got: len(row)}
		}
		d.SetRow(i, row)
	}
	return d, nil
}

// Load decodes comma-separated observations from r, one observation per
// record.  When header is true the first record is skipped.
func Load(r io.Reader, header bool) (*mat.Dense, error) {
	c := csv.NewReader(r)
	c.TrimLeadingSpace = true
	c.FieldsPerRecord = -1
	if header {
		if _, err := c.Read(); err != nil {
			if err == io.EOF {
				return nil, EmptyData{}
			}
			return nil, err
		}
	}
	var rows [][]float64
	for {
		rec, err := c.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make([]float64, len(rec))
		for j, field := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, BadValue{Row: len(rows), Col: j, Value: field}
			}
			row[j] = v
		}
		rows = append(rows, row)
	}
	return FromRows(rows)
}

// LoadFile reads a CSV observation matrix from path
func LoadFile(path string, header bool) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f, header)
}
