package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/andreyvit/kvsearch"
	"gopkg.in/yaml.v3"
)

// loadRecords reads a list of records from a JSON or YAML file (by extension).
// JSON numbers are kept as json.Number so large ids survive unchanged.
func loadRecords(path string) ([]kvsearch.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw []map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		err = dec.Decode(&raw)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	records := make([]kvsearch.Record, len(raw))
	for i, m := range raw {
		records[i] = kvsearch.Record(m)
	}
	return records, nil
}

// parseRecord parses a single record given as a JSON object.
func parseRecord(s string) (kvsearch.Record, error) {
	var m map[string]any
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("invalid record JSON: %w", err)
	}
	return kvsearch.Record(m), nil
}
