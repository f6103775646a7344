package domain

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

// IndexEntry is the denormalized summary of a record kept in its section index.
type IndexEntry struct {
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	Cover     string    `json:"cover"`
	Tags      []string  `json:"tags"`
	Year      int       `json:"year"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PublicEntry is the subset of an IndexEntry served to anonymous callers.
type PublicEntry struct {
	Slug    string   `json:"slug"`
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Cover   string   `json:"cover"`
	Tags    []string `json:"tags"`
	Year    int      `json:"year"`
}

// Public drops admin-only fields.
func (e IndexEntry) Public() PublicEntry {
	return PublicEntry{
		Slug:    e.Slug,
		Title:   e.Title,
		Summary: e.Summary,
		Cover:   e.Cover,
		Tags:    e.Tags,
		Year:    e.Year,
	}
}

// SectionIndex is the per-section index document.
type SectionIndex struct {
	LastUpdated time.Time    `json:"lastUpdated"`
	Entries     []IndexEntry `json:"entries"`
}

// SortEntries orders entries by year descending, then title ascending
// ignoring case.
func SortEntries(entries []IndexEntry) {
	slices.SortStableFunc(entries, func(a, b IndexEntry) int {
		if c := cmp.Compare(b.Year, a.Year); c != 0 {
			return c
		}
		if c := cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)); c != 0 {
			return c
		}
		return cmp.Compare(a.Title, b.Title)
	})
}
