// Package source reads burial extracts from local files, directories and
// S3-compatible object storage and turns them into raw CSV rows.
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/JonMunkholm/vetimport/internal/core"
)

// ReadRows parses every record of an extract. Records may have any number
// of fields; the layout is chosen per row by the importer. Lines that hold
// nothing are dropped.
func ReadRows(r io.Reader, maxBytes int64) ([][]string, error) {
	wrapped := Wrap(r, maxBytes)

	reader := csv.NewReader(wrapped)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if wrapped.Exceeded() {
				return nil, fmt.Errorf("%w: more than %d bytes", core.ErrFileTooLarge, maxBytes)
			}
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return nil, fmt.Errorf("csv %w", err)
			}
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if blankRecord(record) {
			continue
		}
		rows = append(rows, record)
	}

	if len(rows) == 0 {
		return nil, core.ErrEmptyFile
	}
	return rows, nil
}

func blankRecord(record []string) bool {
	return len(record) == 1 && strings.TrimSpace(record[0]) == ""
}

// ListCSV returns the .csv files directly inside dir sorted by name, which
// is the order the CLI imports them in.
func ListCSV(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}
