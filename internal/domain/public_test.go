package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func publicKeys(t *testing.T, v any) map[string]any {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestPublicView_ProjectHidesPrivateFields(t *testing.T) {
	p := sampleProject()
	p.CreatedBy = "admin"
	fields := publicKeys(t, p.PublicView("folio", "<p>hi</p>"))

	require.Equal(t, "folio", fields["slug"])
	require.Equal(t, "<p>hi</p>", fields["descriptionHtml"])
	for _, private := range []string{"achievements", "deployment", "indexEntry", "createdBy", "createdAt", "schemaVersion"} {
		require.NotContains(t, fields, private)
	}
}

func TestPublicView_ExperienceHidesAchievements(t *testing.T) {
	e := &Experience{Company: "Acme", Achievements: []string{"secret win"}}
	fields := publicKeys(t, e.PublicView("acme", ""))
	require.Equal(t, "Acme", fields["company"])
	require.NotContains(t, fields, "achievements")
	require.NotContains(t, fields, "descriptionHtml")
}

func TestPublicView_EducationHidesAchievementsAndTech(t *testing.T) {
	e := &Education{Institution: "Uni", Achievements: []string{"dean's list"}, Common: Common{Tech: []string{"go"}}}
	fields := publicKeys(t, e.PublicView("uni", ""))
	require.Equal(t, "Uni", fields["institution"])
	require.NotContains(t, fields, "achievements")
	require.NotContains(t, fields, "tech")
}

func TestIndexEntryPublic(t *testing.T) {
	fields := publicKeys(t, sampleProject().IndexEntry("folio", fixedNow).Public())
	require.NotContains(t, fields, "updatedAt")
	require.Len(t, fields, 6)
}
