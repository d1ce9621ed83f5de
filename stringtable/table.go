// Package stringtable replaces localized strings in exported string tables.
//
// A table is exported as JSON, edited as a flat key → replacement mapping,
// and applied back. Keys are either entry ids or the current values,
// depending on the Mode.
package stringtable

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrKeyNotFound is returned in strict mode when an entry has no replacement.
var ErrKeyNotFound = errors.New("stringtable: key not found")

// Entry is one localized string.
type Entry struct {
	ID    int64  `json:"id"`
	Key   string `json:"key,omitempty"`
	Value string `json:"value"`
}

// Table is a named list of entries.
type Table struct {
	Name    string  `json:"name"`
	Entries []Entry `json:"entries"`
}

// Mode selects what a mapping key refers to.
type Mode int

const (
	// ByID keys mappings by the decimal entry id.
	ByID Mode = iota
	// ByValue keys mappings by the current value.
	ByValue
)

func (m Mode) String() string {
	if m == ByValue {
		return "value"
	}
	return "id"
}

// ParseMode parses "id" or "value".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "id":
		return ByID, nil
	case "value":
		return ByValue, nil
	}
	return ByID, fmt.Errorf("stringtable: unknown mode %q", s)
}

// ApplyOptions configures Apply.
type ApplyOptions struct {
	Mode Mode
	// Strict requires a replacement for every entry.
	Strict bool
}

func (m Mode) key(e Entry) string {
	if m == ByValue {
		return e.Value
	}
	return strconv.FormatInt(e.ID, 10)
}

// Apply rewrites entry values from repl and reports whether any value
// differed from its replacement. In strict mode a missing key fails before
// anything is changed.
func Apply(t *Table, repl map[string]string, opts ApplyOptions) (bool, error) {
	if opts.Strict {
		for _, e := range t.Entries {
			if _, ok := repl[opts.Mode.key(e)]; !ok {
				return false, fmt.Errorf("%w: %s %q in table %q", ErrKeyNotFound, opts.Mode, opts.Mode.key(e), t.Name)
			}
		}
	}
	changed := false
	for i := range t.Entries {
		e := &t.Entries[i]
		r, ok := repl[opts.Mode.key(*e)]
		if !ok || r == e.Value {
			continue
		}
		e.Value = r
		changed = true
	}
	return changed, nil
}

// Export builds the mapping that Apply would accept to leave t unchanged.
func Export(t *Table, mode Mode) map[string]string {
	out := make(map[string]string, len(t.Entries))
	for _, e := range t.Entries {
		out[mode.key(e)] = e.Value
	}
	return out
}
