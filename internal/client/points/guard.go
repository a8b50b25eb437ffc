// Package points holds client-side checks on the loaded point collection.
package points

import (
	"strings"

	"github.com/dmitrijs2005/invaders/internal/models"
)

// IsDuplicate reports whether candidate names one of existing, ignoring
// case and surrounding whitespace.
//
// The check only sees the list it is given, so it can miss a point another
// client just added. Callers holding a status-filtered snapshot should pass
// an unfiltered list instead. The server's unique index on
// lower(btrim(name)) is what actually enforces uniqueness.
func IsDuplicate(candidate string, existing []models.Point) bool {
	key := normalize(candidate)
	for _, p := range existing {
		if normalize(p.Name) == key {
			return true
		}
	}
	return false
}

// IsDuplicateExcept is IsDuplicate ignoring the point with id, for renames.
func IsDuplicateExcept(candidate, id string, existing []models.Point) bool {
	key := normalize(candidate)
	for _, p := range existing {
		if p.ID != id && normalize(p.Name) == key {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
