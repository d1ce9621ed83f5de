package stringtable

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/joshuapare/catalogkit/internal/writer"
)

// LoadTable reads a table exported as JSON.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var t Table
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("stringtable: %s: %w", path, err)
	}
	return &t, nil
}

// SaveTable writes t as indented JSON, replacing path atomically.
func SaveTable(path string, t *Table) error {
	return writeJSON(path, t)
}

// LoadMapping reads a flat JSON object of key → replacement.
func LoadMapping(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("stringtable: %s: %w", path, err)
	}
	return m, nil
}

// SaveMapping writes m as indented JSON.
func SaveMapping(path string, m map[string]string) error {
	return writeJSON(path, m)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	w := &writer.FileWriter{Path: path}
	return w.Write(append(data, '\n'))
}
