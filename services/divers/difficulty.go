package divers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	_ "embed"
)

// Static difficulty coefficient table, one row per (dive, height)
// pair. Loaded once at service construction and never mutated, so it
// is safe to share across concurrent fetches.
//
//go:embed dd.csv
var ddCSV []byte

type diveHeightKey struct {
	dive   string
	height string
}

type DifficultyTable struct {
	coefficients map[diveHeightKey]float64
}

func LoadDifficultyTable() (*DifficultyTable, error) {
	return parseDifficultyTable(ddCSV)
}

func parseDifficultyTable(raw []byte) (*DifficultyTable, error) {
	reader := csv.NewReader(bytes.NewReader(raw))

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read dd table header: %w", err)
	}
	if len(header) < 3 || header[0] != "Dive" || header[1] != "Height" || header[2] != "DD" {
		return nil, fmt.Errorf("unexpected dd table header: %v", header)
	}

	coefficients := map[diveHeightKey]float64{}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read dd table row: %w", err)
		}
		dd, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, fmt.Errorf("parse dd value %q for dive %s: %w", row[2], row[0], err)
		}
		coefficients[diveHeightKey{dive: row[0], height: row[1]}] = dd
	}

	return &DifficultyTable{coefficients: coefficients}, nil
}

func (t *DifficultyTable) Lookup(dive, height string) (float64, bool) {
	dd, ok := t.coefficients[diveHeightKey{dive: dive, height: height}]
	return dd, ok
}

func (t *DifficultyTable) Len() int {
	return len(t.coefficients)
}
