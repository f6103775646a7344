package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"folio-api/internal/domain"
)

func validProject() *domain.Project {
	return &domain.Project{
		Common: domain.Common{
			Title:     "Folio",
			Summary:   "Portfolio site",
			Tech:      []string{"go"},
			StartDate: "2023-01-01",
			EndDate:   domain.DatePresent,
		},
		Features:     []string{"static export"},
		Achievements: []string{},
		Media:        []domain.Media{{Type: "image", Src: "cover.png"}},
	}
}

func requireFields(t *testing.T, err error, fields ...string) Errors {
	t.Helper()
	var verrs Errors
	require.ErrorAs(t, err, &verrs)
	got := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		got = append(got, fe.Field)
	}
	require.ElementsMatch(t, fields, got)
	return verrs
}

func TestStruct_ValidProject(t *testing.T) {
	require.NoError(t, New().Struct(validProject()))
}

func TestStruct_NestedMediaPath(t *testing.T) {
	p := validProject()
	p.Media = append(p.Media, domain.Media{Type: "gif", Src: ""})
	verrs := requireFields(t, New().Struct(p), "media.1.type", "media.1.src")
	require.Equal(t, "must be one of: image, video", verrs[0].Message)
}

func TestStruct_CommonFieldsUseJSONNames(t *testing.T) {
	p := validProject()
	p.Title = ""
	p.StartDate = "2023-13-01"
	p.Tech = []string{strings.Repeat("x", 51)}
	requireFields(t, New().Struct(p), "title", "start_date", "tech.0")
}

func TestStruct_TechLimit(t *testing.T) {
	p := validProject()
	p.Tech = make([]string, 21)
	for i := range p.Tech {
		p.Tech[i] = "go"
	}
	verrs := requireFields(t, New().Struct(p), "tech")
	require.Equal(t, "must have at most 20 items", verrs[0].Message)
}

func TestStruct_ProjectRequiresFeaturesAndAchievements(t *testing.T) {
	p := validProject()
	p.Features = nil
	p.Achievements = nil
	requireFields(t, New().Struct(p), "features", "achievements")
}

func TestStruct_ExperienceRequiredFields(t *testing.T) {
	e := &domain.Experience{Common: validProject().Common}
	requireFields(t, New().Struct(e), "company", "role", "employment_type", "location", "responsibilities", "achievements")

	e.Company, e.Role, e.Location = "Acme", "Engineer", "Remote"
	e.EmploymentType = "gig"
	e.Responsibilities, e.Achievements = []string{"build"}, []string{}
	requireFields(t, New().Struct(e), "employment_type")

	e.EmploymentType = "full-time"
	require.NoError(t, New().Struct(e))
}

func TestStruct_EducationMediaLimit(t *testing.T) {
	e := &domain.Education{
		Common:      validProject().Common,
		Institution: "Uni",
		Degree:      "BSc",
		Location:    "Hanoi",
	}
	for i := 0; i < 21; i++ {
		e.Media = append(e.Media, domain.Media{Type: "image", Src: "a.png"})
	}
	requireFields(t, New().Struct(e), "media")

	e.Media = e.Media[:20]
	require.NoError(t, New().Struct(e))
}

func TestStruct_URLs(t *testing.T) {
	p := validProject()
	p.URLs = &domain.URLs{GitHub: "not a url", Demo: "https://demo.test"}
	verrs := requireFields(t, New().Struct(p), "urls.github")
	require.Equal(t, "must be a valid URL", verrs[0].Message)
}

func TestStruct_PatchAllowsEmptyAndChecksSlug(t *testing.T) {
	v := New()
	require.NoError(t, v.Struct(&domain.ProjectPatch{}))

	bad := "Not_A_Slug"
	requireFields(t, v.Struct(&domain.ProjectPatch{CommonPatch: domain.CommonPatch{Slug: &bad}}), "slug")

	long := strings.Repeat("t", 201)
	requireFields(t, v.Struct(&domain.ExperiencePatch{CommonPatch: domain.CommonPatch{Title: &long}}), "title")
}

func TestVar(t *testing.T) {
	v := New()
	require.NoError(t, v.Var("slug", "folio-site", "required,slug"))
	verrs := requireFields(t, v.Var("slug", "", "required,slug"), "slug")
	require.Equal(t, "is required", verrs[0].Message)
}

func TestMerge(t *testing.T) {
	a := Errors{{Field: "a", Message: "x"}}
	b := Errors{{Field: "b", Message: "y"}}
	requireFields(t, Merge(nil, a, b), "a", "b")
	require.NoError(t, Merge(nil, nil))
}

func TestValidSlug(t *testing.T) {
	for _, s := range []string{"a", "folio-site", "v2", "a-b-c-1"} {
		require.True(t, ValidSlug(s), s)
	}
	for _, s := range []string{"", "-a", "a-", "a--b", "A", "a_b", "a b", strings.Repeat("a", 51)} {
		require.False(t, ValidSlug(s), s)
	}
	require.True(t, ValidSlug(strings.Repeat("a", 50)))
}

func TestSafeFilename(t *testing.T) {
	for _, s := range []string{"cover.png", "demo_1-final.mp4", "a.b.jpg"} {
		require.True(t, SafeFilename(s), s)
	}
	for _, s := range []string{"", "../cover.png", "..", "a/b.png", `a\b.png`, "cover .png", "x..png", strings.Repeat("a", 252) + ".png"} {
		require.False(t, SafeFilename(s), s)
	}
}

func TestFieldPath(t *testing.T) {
	require.Equal(t, "media.0.src", fieldPath("Project.Common.media[0].src"))
	require.Equal(t, "title", fieldPath("Experience.Common.title"))
	require.Equal(t, "email", fieldPath("contactRequest.email"))
}
