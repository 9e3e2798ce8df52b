package models

import (
	"fmt"
	"time"
)

// Record is the storage envelope around a Person. Identity, provenance and
// timestamps belong to the directory, not to the entity itself, so they
// live here rather than on Person.
type Record struct {
	ID        string    `json:"id"`
	Person    Person    `json:"person"`
	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DirectoryStats holds summary statistics about the person collection.
type DirectoryStats struct {
	TotalPeople       int64            `json:"total_people"`
	WithFavouriteFood int64            `json:"with_favourite_food"`
	ByAgeDecade       map[string]int64 `json:"by_age_decade"`
}

// AgeDecade returns the decade bucket label for an age, e.g. 36 -> "30-39".
func AgeDecade(age uint32) string {
	low := age / 10 * 10
	return fmt.Sprintf("%d-%d", low, low+9)
}
