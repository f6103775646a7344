package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"folio-api/internal/objectstore"
	"folio-api/internal/validation"
)

type failingPresigner struct{}

func (failingPresigner) PresignPut(context.Context, string, string, int64, time.Duration) (string, error) {
	return "", errors.New("credentials expired")
}

func newUploadService(t *testing.T, p Presigner) *UploadService {
	t.Helper()
	s, err := NewUploadService(p, validation.New(), zap.NewNop())
	require.NoError(t, err)
	s.now = func() time.Time { return fixedNow }
	return s
}

func validUpload() UploadInput {
	return UploadInput{Section: "job", Slug: "folio", Filename: "cover.png", ContentType: "image/png", FileSize: 2048}
}

func TestRequestURL_HappyPath(t *testing.T) {
	s := newUploadService(t, objectstore.NewMemory())

	out, err := s.RequestURL(context.Background(), validUpload())
	require.NoError(t, err)
	require.Equal(t, "content/projects/folio/cover.png", out.Key)
	require.Contains(t, out.URL, "content/projects/folio/cover.png")
	require.Contains(t, out.URL, "expires=3600")
	require.True(t, fixedNow.Add(time.Hour).Equal(out.ExpiresAt))
	require.Equal(t, FileInfo{Filename: "cover.png", ContentType: "image/png", FileSize: 2048, Section: "projects", Slug: "folio"}, out.FileInfo)
}

func TestRequestURL_SectionAliases(t *testing.T) {
	s := newUploadService(t, objectstore.NewMemory())
	for alias, want := range map[string]string{
		"exp":        "content/experience/folio/cover.png",
		"job":        "content/projects/folio/cover.png",
		"education":  "content/education/folio/cover.png",
		"experience": "content/experience/folio/cover.png",
	} {
		in := validUpload()
		in.Section = alias
		out, err := s.RequestURL(context.Background(), in)
		require.NoError(t, err, alias)
		require.Equal(t, want, out.Key)
	}
}

func TestRequestURL_Rejects(t *testing.T) {
	s := newUploadService(t, objectstore.NewMemory())
	cases := []struct {
		name  string
		edit  func(*UploadInput)
		field string
	}{
		{name: "traversal", edit: func(in *UploadInput) { in.Filename = "../cover.png" }, field: "filename"},
		{name: "nested traversal", edit: func(in *UploadInput) { in.Filename = "a/../../cover.png" }, field: "filename"},
		{name: "backslash", edit: func(in *UploadInput) { in.Filename = `..\cover.png` }, field: "filename"},
		{name: "spaces", edit: func(in *UploadInput) { in.Filename = "my cover.png" }, field: "filename"},
		{name: "wrong extension", edit: func(in *UploadInput) { in.Filename = "cover.jpg" }, field: "filename"},
		{name: "mime not allowed", edit: func(in *UploadInput) { in.ContentType = "application/pdf"; in.Filename = "cv.pdf" }, field: "contentType"},
		{name: "image too large", edit: func(in *UploadInput) { in.FileSize = 10<<20 + 1 }, field: "fileSize"},
		{name: "empty file", edit: func(in *UploadInput) { in.FileSize = 0 }, field: "fileSize"},
		{name: "unknown section", edit: func(in *UploadInput) { in.Section = "blog" }, field: "section"},
		{name: "bad slug", edit: func(in *UploadInput) { in.Slug = "-folio" }, field: "slug"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validUpload()
			tc.edit(&in)
			_, err := s.RequestURL(context.Background(), in)
			ue := requireCode(t, err, ErrorValidation)
			fields := []string{}
			for _, fe := range ue.Details.(validation.Errors) {
				fields = append(fields, fe.Field)
			}
			require.Contains(t, fields, tc.field)
		})
	}
}

func TestRequestURL_VideoLimit(t *testing.T) {
	s := newUploadService(t, objectstore.NewMemory())
	in := UploadInput{Section: "exp", Slug: "acme", Filename: "demo.MOV", ContentType: "video/quicktime", FileSize: 50 << 20}
	_, err := s.RequestURL(context.Background(), in)
	require.NoError(t, err)

	in.FileSize = 100<<20 + 1
	_, err = s.RequestURL(context.Background(), in)
	requireCode(t, err, ErrorValidation)
}

func TestRequestURL_PresignFailure(t *testing.T) {
	s := newUploadService(t, failingPresigner{})
	_, err := s.RequestURL(context.Background(), validUpload())
	ue := requireCode(t, err, ErrorInternal)
	require.Equal(t, "presign_failed", ue.Reason)
}
