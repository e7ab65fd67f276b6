package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/reergymerej/poor-nosql/internal/store"
)

// MaxLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxLineCapacity = 1024 * 1024

// parseRecords reads records from JSON input: an array of objects, a single
// object, or JSONL with one object per line.
func parseRecords(data []byte) ([]store.Record, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("no records in input")
	}

	if data[0] == '[' {
		var records []store.Record
		if err := store.DecodeJSON(data, &records); err != nil {
			return nil, fmt.Errorf("parsing JSON array: %w", err)
		}
		for i, record := range records {
			if record == nil {
				return nil, fmt.Errorf("parsing JSON array: element %d is not an object", i)
			}
		}
		return records, nil
	}
	if data[0] != '{' {
		return nil, fmt.Errorf("expected a JSON object or array")
	}

	// Try parsing as single JSON object
	var record store.Record
	if err := store.DecodeJSON(data, &record); err == nil {
		return []store.Record{record}, nil
	}

	// Fall back to JSONL
	return readJSONL(bytes.NewReader(data))
}

// readJSONL reads one record per non-empty line.
func readJSONL(r io.Reader) ([]store.Record, error) {
	var records []store.Record
	scanner := bufio.NewScanner(r)

	buf := make([]byte, MaxLineCapacity)
	scanner.Buffer(buf, MaxLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var record store.Record
		if err := store.DecodeJSON(line, &record); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		if record == nil {
			return nil, fmt.Errorf("parsing line %d: expected a JSON object", lineNum)
		}
		records = append(records, record)
	}

	return records, scanner.Err()
}

// parseRecord reads exactly one JSON object.
func parseRecord(data []byte) (store.Record, error) {
	var record store.Record
	if err := store.DecodeJSON(bytes.TrimSpace(data), &record); err != nil {
		return nil, fmt.Errorf("invalid JSON object: %w", err)
	}
	if record == nil {
		return nil, fmt.Errorf("expected a JSON object")
	}
	return record, nil
}
