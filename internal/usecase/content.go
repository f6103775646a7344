package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"folio-api/internal/domain"
	"folio-api/internal/objectstore"
	"folio-api/internal/validation"
)

// ContentStore is the object store surface used by ContentService.
type ContentStore interface {
	GetJSON(ctx context.Context, key string, v any) error
	PutJSON(ctx context.Context, key string, v any) error
	PutMarker(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Copy(ctx context.Context, src, dst string) error
}

// IndexMaintainer keeps section indexes in step with records.
type IndexMaintainer interface {
	Read(ctx context.Context, section domain.Section) (domain.SectionIndex, error)
	Add(ctx context.Context, section domain.Section, entry domain.IndexEntry) error
	Replace(ctx context.Context, section domain.Section, entry domain.IndexEntry, matchSlug string) error
	Rebuild(ctx context.Context, section domain.Section) (domain.SectionIndex, error)
}

type MarkdownRenderer interface {
	Render(src string) (string, error)
}

// ContentService creates, edits and serves content records.
//
// Create and Edit are two-phase: the record is written first and the section
// index second. A failure in the second phase leaves the record in place and
// is reported as ErrorPartialWrite; RebuildIndex repairs the index.
type ContentService struct {
	store    ContentStore
	index    IndexMaintainer
	validate *validation.Validator
	render   MarkdownRenderer
	logger   *zap.Logger
	now      func() time.Time
}

type CreateInput struct {
	Section string
	Slug    string
	Body    []byte
	Actor   string
}

type CreateOutput struct {
	Slug        string `json:"slug"`
	Message     string `json:"message"`
	CreatedBy   string `json:"createdBy"`
	ContentType string `json:"contentType"`
}

type EditInput struct {
	Section string
	Slug    string
	Body    []byte
	Actor   string
}

type EditOutput struct {
	Updated   bool      `json:"updated"`
	Slug      string    `json:"slug"`
	UpdatedBy string    `json:"updatedBy"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AdminList is the full index of a section.
type AdminList struct {
	Section     string              `json:"section"`
	LastUpdated time.Time           `json:"lastUpdated"`
	Entries     []domain.IndexEntry `json:"entries"`
}

// PublicList is the anonymous view of a section index.
type PublicList struct {
	Section string               `json:"section"`
	Entries []domain.PublicEntry `json:"entries"`
}

// AdminRecord is a stored record as seen by admins: every stored field plus
// the slug.
type AdminRecord struct {
	Slug   string
	Record domain.Record
}

func (a AdminRecord) MarshalJSON() ([]byte, error) {
	body, err := json.Marshal(a.Record)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	slug, err := json.Marshal(a.Slug)
	if err != nil {
		return nil, err
	}
	fields["slug"] = slug
	return json.Marshal(fields)
}

type RebuildOutput struct {
	Section     string    `json:"section"`
	Entries     int       `json:"entries"`
	LastUpdated time.Time `json:"lastUpdated"`
}

func NewContentService(store ContentStore, index IndexMaintainer, v *validation.Validator, render MarkdownRenderer, logger *zap.Logger) (*ContentService, error) {
	if store == nil {
		return nil, errors.New("usecase: content store must not be nil")
	}
	if index == nil {
		return nil, errors.New("usecase: index maintainer must not be nil")
	}
	if v == nil {
		return nil, errors.New("usecase: validator must not be nil")
	}
	if render == nil {
		return nil, errors.New("usecase: markdown renderer must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContentService{
		store:    store,
		index:    index,
		validate: v,
		render:   render,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Create stores a new record and appends it to its section index.
func (s *ContentService) Create(ctx context.Context, in CreateInput) (CreateOutput, error) {
	section, err := s.target(in.Section, in.Slug)
	if err != nil {
		return CreateOutput{}, err
	}

	rec, err := domain.NewRecord(section)
	if err != nil {
		return CreateOutput{}, newError(ErrorInternal, "unknown_section", err)
	}
	var head struct {
		Slug string `json:"slug"`
	}
	if err := decodeBody(in.Body, &head, rec); err != nil {
		return CreateOutput{}, err
	}

	verr := validation.Merge(
		s.validate.Var("slug", head.Slug, "required,slug"),
		s.validate.Struct(rec),
	)
	if verr == nil && head.Slug != in.Slug {
		verr = validation.Errors{{Field: "slug", Message: "must match the slug in the path"}}
	}
	if verr != nil {
		return CreateOutput{}, validationFailed("invalid_payload", verr)
	}

	key := domain.DescKey(section, in.Slug)
	exists, err := s.store.Exists(ctx, key)
	if err != nil {
		return CreateOutput{}, newError(ErrorInternal, "store_read_failed", err)
	}
	if exists {
		return CreateOutput{}, newError(ErrorConflict, "slug_exists", fmt.Errorf("%s/%s already exists", section, in.Slug))
	}

	now := s.now().UTC()
	entry := rec.IndexEntry(in.Slug, now)
	*rec.Metadata() = domain.Meta{
		SchemaVersion: domain.SchemaVersion,
		IndexEntry:    entry,
		CreatedAt:     now,
		UpdatedAt:     now,
		CreatedBy:     in.Actor,
		UpdatedBy:     in.Actor,
	}

	if err := s.writeMarkers(ctx, section, in.Slug); err != nil {
		return CreateOutput{}, err
	}
	if err := s.store.PutJSON(ctx, key, rec); err != nil {
		return CreateOutput{}, newError(ErrorInternal, "store_write_failed", err)
	}
	if err := s.index.Add(ctx, section, entry); err != nil {
		return CreateOutput{}, partialWrite(section.String(), in.Slug, err)
	}

	s.logger.Info("content created",
		zap.String("section", section.String()),
		zap.String("slug", in.Slug),
		zap.String("actor", in.Actor),
	)
	return CreateOutput{
		Slug:        in.Slug,
		Message:     "Content created successfully",
		CreatedBy:   in.Actor,
		ContentType: section.String(),
	}, nil
}

// Edit merges a partial payload over an existing record. A "slug" in the
// payload renames the record: its description is copied to the new key and
// the index entry is replaced in place.
func (s *ContentService) Edit(ctx context.Context, in EditInput) (EditOutput, error) {
	section, err := s.target(in.Section, in.Slug)
	if err != nil {
		return EditOutput{}, err
	}

	patch, err := domain.NewPatch(section)
	if err != nil {
		return EditOutput{}, newError(ErrorInternal, "unknown_section", err)
	}
	if err := decodeBody(in.Body, patch); err != nil {
		return EditOutput{}, err
	}
	if err := s.validate.Struct(patch); err != nil {
		return EditOutput{}, validationFailed("invalid_payload", err)
	}

	key := domain.DescKey(section, in.Slug)
	exists, err := s.store.Exists(ctx, key)
	if err != nil {
		return EditOutput{}, newError(ErrorInternal, "store_read_failed", err)
	}
	if !exists {
		return EditOutput{}, newError(ErrorNotFound, "content_not_found", fmt.Errorf("%s/%s", section, in.Slug))
	}
	rec, err := s.load(ctx, section, in.Slug)
	if err != nil {
		return EditOutput{}, err
	}
	if v := rec.Metadata().SchemaVersion; v > domain.SchemaVersion {
		return EditOutput{}, newError(ErrorConflict, "unsupported_schema_version",
			fmt.Errorf("record schema version %d is newer than %d", v, domain.SchemaVersion))
	}

	if err := patch.ApplyTo(rec); err != nil {
		return EditOutput{}, newError(ErrorInternal, "merge_failed", err)
	}
	if err := s.validate.Struct(rec); err != nil {
		return EditOutput{}, validationFailed("merged_record_invalid", err)
	}

	slug := in.Slug
	if to := patch.RenameTo(); to != "" && to != in.Slug {
		if err := s.rename(ctx, section, in.Slug, to); err != nil {
			return EditOutput{}, err
		}
		slug = to
	}

	now := s.now().UTC()
	entry := rec.IndexEntry(slug, now)
	meta := rec.Metadata()
	meta.SchemaVersion = domain.SchemaVersion
	meta.IndexEntry = entry
	meta.UpdatedAt = now
	meta.UpdatedBy = in.Actor

	if err := s.store.PutJSON(ctx, domain.DescKey(section, slug), rec); err != nil {
		return EditOutput{}, newError(ErrorInternal, "store_write_failed", err)
	}
	if err := s.index.Replace(ctx, section, entry, in.Slug); err != nil {
		return EditOutput{}, partialWrite(section.String(), slug, err)
	}

	s.logger.Info("content updated",
		zap.String("section", section.String()),
		zap.String("slug", slug),
		zap.String("previousSlug", in.Slug),
		zap.String("actor", in.Actor),
	)
	return EditOutput{Updated: true, Slug: slug, UpdatedBy: in.Actor, UpdatedAt: now}, nil
}

func (s *ContentService) rename(ctx context.Context, section domain.Section, from, to string) error {
	dst := domain.DescKey(section, to)
	taken, err := s.store.Exists(ctx, dst)
	if err != nil {
		return newError(ErrorInternal, "store_read_failed", err)
	}
	if taken {
		return newError(ErrorConflict, "slug_exists", fmt.Errorf("%s/%s already exists", section, to))
	}
	if err := s.writeMarkers(ctx, section, to); err != nil {
		return err
	}
	if err := s.store.Copy(ctx, domain.DescKey(section, from), dst); err != nil {
		return newError(ErrorInternal, "store_write_failed", err)
	}
	s.logger.Warn("media not moved on rename",
		zap.String("section", section.String()),
		zap.String("from", domain.RecordPrefix(section, from)),
		zap.String("to", domain.RecordPrefix(section, to)),
	)
	return nil
}

// ListAdmin returns every index entry of a section, sorted by year
// descending then title.
func (s *ContentService) ListAdmin(ctx context.Context, section string) (AdminList, error) {
	sec, idx, err := s.readIndex(ctx, section)
	if err != nil {
		return AdminList{}, err
	}
	return AdminList{Section: sec.String(), LastUpdated: idx.LastUpdated, Entries: idx.Entries}, nil
}

// ListPublic is ListAdmin without admin-only fields.
func (s *ContentService) ListPublic(ctx context.Context, section string) (PublicList, error) {
	sec, idx, err := s.readIndex(ctx, section)
	if err != nil {
		return PublicList{}, err
	}
	entries := make([]domain.PublicEntry, 0, len(idx.Entries))
	for _, e := range idx.Entries {
		entries = append(entries, e.Public())
	}
	return PublicList{Section: sec.String(), Entries: entries}, nil
}

func (s *ContentService) readIndex(ctx context.Context, section string) (domain.Section, domain.SectionIndex, error) {
	sec, err := s.section(section)
	if err != nil {
		return "", domain.SectionIndex{}, err
	}
	idx, err := s.index.Read(ctx, sec)
	if err != nil {
		return "", domain.SectionIndex{}, newError(ErrorInternal, "index_read_failed", err)
	}
	domain.SortEntries(idx.Entries)
	return sec, idx, nil
}

// GetAdmin returns the stored record.
func (s *ContentService) GetAdmin(ctx context.Context, section, slug string) (AdminRecord, error) {
	sec, err := s.target(section, slug)
	if err != nil {
		return AdminRecord{}, err
	}
	rec, err := s.load(ctx, sec, slug)
	if err != nil {
		return AdminRecord{}, err
	}
	return AdminRecord{Slug: slug, Record: rec}, nil
}

// GetPublic returns the allowlisted view of a record with its description
// rendered to HTML.
func (s *ContentService) GetPublic(ctx context.Context, section, slug string) (any, error) {
	sec, err := s.target(section, slug)
	if err != nil {
		return nil, err
	}
	rec, err := s.load(ctx, sec, slug)
	if err != nil {
		return nil, err
	}
	html, err := s.render.Render(rec.Fields().Description)
	if err != nil {
		s.logger.Warn("description not rendered",
			zap.String("section", sec.String()),
			zap.String("slug", slug),
			zap.Error(err),
		)
		html = ""
	}
	return rec.PublicView(slug, html), nil
}

// RebuildIndex recomputes a section index from its stored records.
func (s *ContentService) RebuildIndex(ctx context.Context, section string) (RebuildOutput, error) {
	sec, err := s.section(section)
	if err != nil {
		return RebuildOutput{}, err
	}
	idx, err := s.index.Rebuild(ctx, sec)
	if err != nil {
		return RebuildOutput{}, newError(ErrorInternal, "index_rebuild_failed", err)
	}
	s.logger.Info("index rebuilt", zap.String("section", sec.String()), zap.Int("entries", len(idx.Entries)))
	return RebuildOutput{Section: sec.String(), Entries: len(idx.Entries), LastUpdated: idx.LastUpdated}, nil
}

func (s *ContentService) load(ctx context.Context, section domain.Section, slug string) (domain.Record, error) {
	rec, err := domain.NewRecord(section)
	if err != nil {
		return nil, newError(ErrorInternal, "unknown_section", err)
	}
	if err := s.store.GetJSON(ctx, domain.DescKey(section, slug), rec); err != nil {
		if errors.Is(err, objectstore.ErrNotFound) {
			return nil, newError(ErrorNotFound, "content_not_found", err)
		}
		return nil, newError(ErrorInternal, "store_read_failed", err)
	}
	return rec, nil
}

func (s *ContentService) writeMarkers(ctx context.Context, section domain.Section, slug string) error {
	for _, key := range []string{domain.SectionPrefix(section), domain.RecordPrefix(section, slug)} {
		if err := s.store.PutMarker(ctx, key); err != nil {
			return newError(ErrorInternal, "store_write_failed", err)
		}
	}
	return nil
}

func (s *ContentService) section(raw string) (domain.Section, error) {
	sec, err := domain.ParseSection(raw)
	if err != nil {
		return "", validationFailed("invalid_section", validation.Errors{{
			Field:   "section",
			Message: "must be one of: experience, projects, education",
		}})
	}
	return sec, nil
}

// target validates the section and slug path parameters.
func (s *ContentService) target(section, slug string) (domain.Section, error) {
	sec, err := s.section(section)
	if err != nil {
		return "", err
	}
	if err := s.validate.Var("slug", slug, "required,slug"); err != nil {
		return "", validationFailed("invalid_slug", err)
	}
	return sec, nil
}

func decodeBody(body []byte, dst ...any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return newError(ErrorInvalidInput, "empty_body", nil)
	}
	for _, d := range dst {
		if err := json.Unmarshal(body, d); err != nil {
			return newError(ErrorInvalidInput, "invalid_json", err)
		}
	}
	return nil
}

// validationFailed classifies err as a validation error, keeping the field
// list as details. Anything else is internal.
func validationFailed(reason string, err error) *Error {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return &Error{Code: ErrorValidation, Reason: reason, Details: verrs, Err: err}
	}
	return newError(ErrorInternal, "validator_failed", err)
}
