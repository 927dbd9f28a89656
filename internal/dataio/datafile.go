// Package dataio reads calibration constants from text files: plain
// whitespace-separated tables and the legacy "name value" format.
package dataio

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/openccdb/ccdb/pkg/ccdb"
)

// ReadDataFile reads a plain text constants file: one table row per
// line, cells separated by whitespace. Empty lines and lines starting
// with '#' are skipped.
func ReadDataFile(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}
	defer f.Close()

	var rows [][]string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rows = append(rows, strings.Fields(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read data file %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("data file %s holds no rows: %w", path, ccdb.ErrInvalidData)
	}
	return rows, nil
}

// NameValueFile is a parsed legacy name-value constants file.
type NameValueFile struct {
	ColumnNames []string
	Values      []string
}

// ReadNameValueFile reads the legacy "name value" format: one
// "<name> <value>" pair per line, in column order. The pairs transpose
// into a single-row table.
func ReadNameValueFile(path string) (*NameValueFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}
	defer f.Close()

	nv := &NameValueFile{}
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d of %s: want \"name value\", got %d fields: %w",
				lineNo, path, len(fields), ccdb.ErrInvalidData)
		}
		nv.ColumnNames = append(nv.ColumnNames, fields[0])
		nv.Values = append(nv.Values, fields[1])
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read data file %s: %w", path, err)
	}
	if len(nv.Values) == 0 {
		return nil, fmt.Errorf("data file %s holds no pairs: %w", path, ccdb.ErrInvalidData)
	}
	return nv, nil
}

// Rows returns the name-value content as a one-row table.
func (nv *NameValueFile) Rows() [][]string {
	return [][]string{nv.Values}
}
