package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/saturnines/ledger-core/pkg/export"
	"github.com/saturnines/ledger-core/pkg/report"
)

// readJSON decodes a file, or stdin for "-"
func readJSON(path string, stdin io.Reader) (interface{}, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var v interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return v, nil
}

// readRecords accepts either one object or a list of objects
func readRecords(path string, stdin io.Reader) ([]map[string]interface{}, bool, error) {
	v, err := readJSON(path, stdin)
	if err != nil {
		return nil, false, err
	}

	switch t := v.(type) {
	case map[string]interface{}:
		return []map[string]interface{}{t}, true, nil
	case []interface{}:
		out := make([]map[string]interface{}, 0, len(t))
		for i, item := range t {
			r, ok := item.(map[string]interface{})
			if !ok {
				return nil, false, fmt.Errorf("%s: element %d is not an object", path, i)
			}
			out = append(out, r)
		}
		return out, false, nil
	}
	return nil, false, fmt.Errorf("%s: expected an object or a list of objects", path)
}

func readObject(path string, stdin io.Reader) (map[string]interface{}, error) {
	v, err := readJSON(path, stdin)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%s: expected an object", path)
	}
	return obj, nil
}

// writeJSONTo writes v indented to path, or to stdout when path is empty
func writeJSONTo(path string, stdout io.Writer, v interface{}) error {
	w, closeFn, err := openOutput(path, stdout)
	if err != nil {
		return err
	}
	defer closeFn()

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeTable picks the format from the output extension: .xlsx, .jsonl or
// JSON otherwise
func writeTable(path string, stdout io.Writer, table []report.Row, titles []string) error {
	w, closeFn, err := openOutput(path, stdout)
	if err != nil {
		return err
	}
	defer closeFn()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return export.WriteXLSX(w, export.DefaultSheet, export.Columns(table, titles), table)
	case ".jsonl":
		return export.WriteJSONLines(w, table)
	default:
		return export.WriteJSON(w, table)
	}
}

func openOutput(path string, stdout io.Writer) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		return stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, func() { f.Close() }, nil
}
