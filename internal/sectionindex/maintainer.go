// Package sectionindex maintains the per-section index documents that list
// every record of a section.
//
// Updates are read-modify-write with no compare-and-swap: two writers racing
// on the same section can lose one update. Rebuild recovers an index from the
// records themselves.
package sectionindex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"folio-api/internal/domain"
	"folio-api/internal/objectstore"
)

const rebuildConcurrency = 8

// ErrIndexMissing is returned by Replace when the section has no index.
var ErrIndexMissing = errors.New("sectionindex: index does not exist")

// Store is the object store surface used by the Maintainer.
type Store interface {
	GetJSON(ctx context.Context, key string, v any) error
	PutJSON(ctx context.Context, key string, v any) error
	List(ctx context.Context, prefix string) ([]string, error)
}

// Maintainer reads and rewrites section indexes.
type Maintainer struct {
	store Store
	now   func() time.Time
}

// New creates a Maintainer.
func New(store Store) (*Maintainer, error) {
	if store == nil {
		return nil, errors.New("sectionindex: store must not be nil")
	}
	return &Maintainer{store: store, now: time.Now}, nil
}

// Read returns the index of section, or an empty index when none exists.
func (m *Maintainer) Read(ctx context.Context, section domain.Section) (domain.SectionIndex, error) {
	idx, _, err := m.load(ctx, section)
	return idx, err
}

// Add appends entry to the section index, creating the index if needed.
func (m *Maintainer) Add(ctx context.Context, section domain.Section, entry domain.IndexEntry) error {
	idx, _, err := m.load(ctx, section)
	if err != nil {
		return err
	}
	idx.Entries = append(idx.Entries, entry)
	return m.write(ctx, section, &idx)
}

// Replace overwrites the entry whose slug equals matchSlug, or entry.Slug
// when matchSlug is empty. The entry keeps its position; an unmatched entry
// is appended.
func (m *Maintainer) Replace(ctx context.Context, section domain.Section, entry domain.IndexEntry, matchSlug string) error {
	idx, found, err := m.load(ctx, section)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("sectionindex: Replace %s/%s: %w", section, entry.Slug, ErrIndexMissing)
	}
	if matchSlug == "" {
		matchSlug = entry.Slug
	}

	replaced := false
	for i := range idx.Entries {
		if idx.Entries[i].Slug == matchSlug {
			idx.Entries[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		idx.Entries = append(idx.Entries, entry)
	}
	return m.write(ctx, section, &idx)
}

// Rebuild recomputes the section index from every stored record and writes
// it, replacing whatever index existed.
func (m *Maintainer) Rebuild(ctx context.Context, section domain.Section) (domain.SectionIndex, error) {
	keys, err := m.store.List(ctx, domain.SectionPrefix(section))
	if err != nil {
		return domain.SectionIndex{}, fmt.Errorf("sectionindex: Rebuild %s: %w", section, err)
	}

	type target struct{ key, slug string }
	var targets []target
	for _, key := range keys {
		if slug, ok := domain.SlugFromDescKey(section, key); ok {
			targets = append(targets, target{key: key, slug: slug})
		}
	}

	now := m.now()
	entries := make([]domain.IndexEntry, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rebuildConcurrency)
	for i, t := range targets {
		g.Go(func() error {
			rec, err := domain.NewRecord(section)
			if err != nil {
				return err
			}
			if err := m.store.GetJSON(gctx, t.key, rec); err != nil {
				return fmt.Errorf("sectionindex: Rebuild %s load %q: %w", section, t.slug, err)
			}
			entry := rec.IndexEntry(t.slug, now)
			if updated := rec.Metadata().UpdatedAt; !updated.IsZero() {
				entry.UpdatedAt = updated
			}
			entries[i] = entry
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.SectionIndex{}, err
	}

	domain.SortEntries(entries)
	idx := domain.SectionIndex{Entries: entries}
	if err := m.write(ctx, section, &idx); err != nil {
		return domain.SectionIndex{}, err
	}
	return idx, nil
}

func (m *Maintainer) load(ctx context.Context, section domain.Section) (domain.SectionIndex, bool, error) {
	var idx domain.SectionIndex
	err := m.store.GetJSON(ctx, domain.SectionIndexKey(section), &idx)
	if errors.Is(err, objectstore.ErrNotFound) {
		return domain.SectionIndex{Entries: []domain.IndexEntry{}}, false, nil
	}
	if err != nil {
		return domain.SectionIndex{}, false, fmt.Errorf("sectionindex: read %s: %w", section, err)
	}
	if idx.Entries == nil {
		idx.Entries = []domain.IndexEntry{}
	}
	return idx, true, nil
}

func (m *Maintainer) write(ctx context.Context, section domain.Section, idx *domain.SectionIndex) error {
	idx.LastUpdated = m.now().UTC()
	if err := m.store.PutJSON(ctx, domain.SectionIndexKey(section), idx); err != nil {
		return fmt.Errorf("sectionindex: write %s: %w", section, err)
	}
	return nil
}
