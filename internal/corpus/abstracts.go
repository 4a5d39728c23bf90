// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus reads screening exports that accompany a project: CSV
// files of candidate papers whose abstracts feed the report's landscape
// overview.
package corpus

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LoadAbstracts scans dir for CSV files and collects the non-empty values
// of each file's "Abstract" column, matched case-insensitively. Files
// without that column, and files that cannot be parsed, are skipped; one
// bad export must not block the rest. A missing dir yields no abstracts.
func LoadAbstracts(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading data directory %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".csv") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var abstracts []string
	for _, name := range names {
		found, err := readAbstractColumn(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: skipping %s: %v\n", name, err)
			continue
		}
		abstracts = append(abstracts, found...)
	}
	return abstracts, nil
}

func readAbstractColumn(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}

	col := -1
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), "abstract") {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, nil
	}

	var abstracts []string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if col >= len(record) {
			continue
		}
		if text := strings.TrimSpace(record[col]); text != "" {
			abstracts = append(abstracts, text)
		}
	}
	return abstracts, nil
}
