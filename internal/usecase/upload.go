package usecase

import (
	"context"
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"folio-api/internal/domain"
	"folio-api/internal/validation"
)

const (
	uploadTTL     = time.Hour
	maxImageBytes = 10 << 20
	maxVideoBytes = 100 << 20
)

// uploadTypes maps every accepted MIME type to the file extensions it may carry.
var uploadTypes = map[string][]string{
	"image/jpeg":      {".jpg", ".jpeg"},
	"image/png":       {".png"},
	"image/webp":      {".webp"},
	"image/gif":       {".gif"},
	"image/svg+xml":   {".svg"},
	"video/mp4":       {".mp4"},
	"video/webm":      {".webm"},
	"video/quicktime": {".mov"},
}

// uploadSections resolves the upload section names, including the legacy
// "exp" and "job" aliases, to content sections.
var uploadSections = map[string]domain.Section{
	"exp":        domain.SectionExperience,
	"job":        domain.SectionProjects,
	"experience": domain.SectionExperience,
	"projects":   domain.SectionProjects,
	"education":  domain.SectionEducation,
}

type Presigner interface {
	PresignPut(ctx context.Context, key, contentType string, size int64, ttl time.Duration) (string, error)
}

// UploadService issues presigned URLs for media uploads.
type UploadService struct {
	presigner Presigner
	validate  *validation.Validator
	logger    *zap.Logger
	now       func() time.Time
}

type UploadInput struct {
	Section     string `json:"section" validate:"required,oneof=exp job experience projects education"`
	Slug        string `json:"slug" validate:"required,slug"`
	Filename    string `json:"filename" validate:"required,max=255,safefilename"`
	ContentType string `json:"contentType" validate:"required"`
	FileSize    int64  `json:"fileSize" validate:"gt=0"`
}

type FileInfo struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	FileSize    int64  `json:"fileSize"`
	Section     string `json:"section"`
	Slug        string `json:"slug"`
}

type UploadOutput struct {
	URL       string    `json:"url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expiresAt"`
	FileInfo  FileInfo  `json:"fileInfo"`
}

func NewUploadService(p Presigner, v *validation.Validator, logger *zap.Logger) (*UploadService, error) {
	if p == nil {
		return nil, errors.New("usecase: presigner must not be nil")
	}
	if v == nil {
		return nil, errors.New("usecase: validator must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UploadService{presigner: p, validate: v, logger: logger, now: time.Now}, nil
}

// RequestURL validates the upload and returns a one-hour presigned PUT URL
// for content/{section}/{slug}/{filename}.
func (s *UploadService) RequestURL(ctx context.Context, in UploadInput) (UploadOutput, error) {
	if err := validation.Merge(s.validate.Struct(in), checkFile(in)); err != nil {
		return UploadOutput{}, validationFailed("invalid_upload", err)
	}

	section := uploadSections[in.Section]
	key := domain.MediaKey(section, in.Slug, in.Filename)
	url, err := s.presigner.PresignPut(ctx, key, in.ContentType, in.FileSize, uploadTTL)
	if err != nil {
		return UploadOutput{}, newError(ErrorInternal, "presign_failed", err)
	}

	s.logger.Info("upload url issued", zap.String("key", key), zap.Int64("size", in.FileSize))
	return UploadOutput{
		URL:       url,
		Key:       key,
		ExpiresAt: s.now().UTC().Add(uploadTTL),
		FileInfo: FileInfo{
			Filename:    in.Filename,
			ContentType: in.ContentType,
			FileSize:    in.FileSize,
			Section:     section.String(),
			Slug:        in.Slug,
		},
	}, nil
}

// checkFile applies the MIME allowlist, the extension match and the size
// limit of the declared type.
func checkFile(in UploadInput) error {
	var errs validation.Errors
	exts, ok := uploadTypes[in.ContentType]
	if in.ContentType != "" && !ok {
		errs = append(errs, validation.FieldError{Field: "contentType", Message: "must be one of: " + strings.Join(allowedTypes(), ", ")})
	}
	if ok && in.Filename != "" && !slices.Contains(exts, strings.ToLower(path.Ext(in.Filename))) {
		errs = append(errs, validation.FieldError{Field: "filename", Message: "extension must be one of: " + strings.Join(exts, ", ")})
	}
	if ok {
		limit := int64(maxImageBytes)
		if strings.HasPrefix(in.ContentType, "video/") {
			limit = maxVideoBytes
		}
		if in.FileSize > limit {
			errs = append(errs, validation.FieldError{Field: "fileSize", Message: fmt.Sprintf("must be at most %d bytes for %s", limit, in.ContentType)})
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func allowedTypes() []string {
	types := make([]string, 0, len(uploadTypes))
	for t := range uploadTypes {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}
