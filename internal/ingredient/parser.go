// Package ingredient turns the free-text ingredient list of a recipe into
// structured entries.
//
// The accepted format is a comma separated list where each entry is split on
// dashes into name, quantity and unit:
//
//	flour - 2 - cups, sugar - 1, salt
package ingredient

import (
	"errors"
	"fmt"
	"strings"
)

const (
	entrySeparator = ","
	fieldSeparator = "-"
)

// ErrMissingName is returned when an entry carries a quantity or unit but no name.
var ErrMissingName = errors.New("ingredient name is required")

// Parsed is one structured ingredient entry. Quantity and Unit are nil when
// the entry does not provide them.
type Parsed struct {
	Name     string
	Quantity *string
	Unit     *string
}

// Parse splits text into structured ingredients. Empty input yields an empty
// slice. Blank entries (e.g. a trailing comma) are skipped and fields past
// the unit are ignored.
func Parse(text string) ([]Parsed, error) {
	parsed := []Parsed{}
	if strings.TrimSpace(text) == "" {
		return parsed, nil
	}

	for i, entry := range strings.Split(text, entrySeparator) {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		fields := strings.Split(entry, fieldSeparator)
		for j := range fields {
			fields[j] = strings.TrimSpace(fields[j])
		}

		if fields[0] == "" {
			return nil, fmt.Errorf("entry %d (%q): %w", i+1, entry, ErrMissingName)
		}

		p := Parsed{Name: fields[0]}
		if len(fields) > 1 {
			p.Quantity = optional(fields[1])
		}
		if len(fields) > 2 {
			p.Unit = optional(fields[2])
		}
		parsed = append(parsed, p)
	}

	return parsed, nil
}

// Format renders parsed entries back into the text form accepted by Parse.
func Format(parsed []Parsed) string {
	entries := make([]string, 0, len(parsed))
	for _, p := range parsed {
		fields := []string{p.Name}
		switch {
		case p.Unit != nil:
			fields = append(fields, deref(p.Quantity), *p.Unit)
		case p.Quantity != nil:
			fields = append(fields, *p.Quantity)
		}
		entries = append(entries, strings.Join(fields, " "+fieldSeparator+" "))
	}
	return strings.Join(entries, entrySeparator+" ")
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
