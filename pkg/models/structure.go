package models

import (
	"strings"
	"time"
)

// UncategorizedLabel is the display grouping for structures whose category
// is empty after trimming. The stored category value is never rewritten.
const UncategorizedLabel = "Uncategorized"

// Structure represents a grammatical structure or phrase with a mastery counter
type Structure struct {
	ID                 string `json:"id" db:"id"`
	Structure          string `json:"structure" db:"structure"`
	Category           string `json:"category" db:"category"`
	Example            string `json:"example" db:"example"`
	CreatedAt          string `json:"created_at" db:"created_at"` // RFC3339
	ConsecutiveCorrect int    `json:"consecutive_correct" db:"consecutive_correct"`
	Position           int    `json:"position" db:"position"` // manual ordering within the list
}

// DisplayCategory returns the trimmed category, or UncategorizedLabel when empty
func (s *Structure) DisplayCategory() string {
	c := strings.TrimSpace(s.Category)
	if c == "" {
		return UncategorizedLabel
	}
	return c
}

// HasExample reports whether the structure has a non-empty example sentence
func (s *Structure) HasExample() bool {
	return strings.TrimSpace(s.Example) != ""
}

// CreatedTime parses the stored creation date
func (s *Structure) CreatedTime() (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, s.CreatedAt)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// GroupByCategory groups structures by display category, preserving the
// order of the backing slice within each group
func GroupByCategory(structures []Structure) map[string][]Structure {
	groups := make(map[string][]Structure)
	for _, s := range structures {
		category := s.DisplayCategory()
		groups[category] = append(groups[category], s)
	}
	return groups
}

// MoveItem moves the element at index from to index to, shifting the
// elements between them. Out-of-range indexes leave the slice unchanged.
func MoveItem(structures []Structure, from, to int) []Structure {
	if from < 0 || from >= len(structures) || to < 0 || to >= len(structures) || from == to {
		return structures
	}
	moved := structures[from]
	rest := append(append([]Structure{}, structures[:from]...), structures[from+1:]...)
	result := append(append([]Structure{}, rest[:to]...), moved)
	return append(result, rest[to:]...)
}
