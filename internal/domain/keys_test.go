package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeys(t *testing.T) {
	require.Equal(t, "content/projects/folio-site/desc.json", DescKey(SectionProjects, "folio-site"))
	require.Equal(t, "content/experience/index.json", SectionIndexKey(SectionExperience))
	require.Equal(t, "content/education/uni/cover.png", MediaKey(SectionEducation, "uni", "cover.png"))
	require.Equal(t, "content/projects/", SectionPrefix(SectionProjects))
	require.Equal(t, "content/projects/folio-site/", RecordPrefix(SectionProjects, "folio-site"))
}

func TestSlugFromDescKey(t *testing.T) {
	cases := []struct {
		key  string
		slug string
		ok   bool
	}{
		{key: "content/projects/folio-site/desc.json", slug: "folio-site", ok: true},
		{key: "content/projects/index.json"},
		{key: "content/projects/folio-site/cover.png"},
		{key: "content/projects//desc.json"},
		{key: "content/projects/a/b/desc.json"},
		{key: "content/experience/folio-site/desc.json"},
	}
	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			slug, ok := SlugFromDescKey(SectionProjects, tc.key)
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.slug, slug)
		})
	}
}

func TestParseSection(t *testing.T) {
	for _, s := range Sections {
		got, err := ParseSection(string(s))
		require.NoError(t, err)
		require.Equal(t, s, got)
	}
	_, err := ParseSection("blog")
	require.Error(t, err)
	_, err = ParseSection("Projects")
	require.Error(t, err)
}
