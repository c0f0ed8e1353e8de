package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mesh-intelligence/termsync/internal/platform"
	"github.com/mesh-intelligence/termsync/internal/sqlite"
	"github.com/mesh-intelligence/termsync/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const siteYAML = `
taxonomies:
  - name: team
    label: Teams
post_types:
  - name: person
    label: ${PERSON_LABEL}
    as_taxonomy: team
  - name: venue
    as_taxonomy: place
  - name: page
`

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
	}{
		{name: "empty", yaml: ""},
		{name: "valid", yaml: "post_types:\n  - name: person\n    as_taxonomy: team\n"},
		{name: "missing name", yaml: "post_types:\n  - label: People\n", wantErr: true},
		{name: "revision is reserved", yaml: "post_types:\n  - name: revision\n", wantErr: true},
		{name: "duplicate taxonomy", yaml: "taxonomies:\n  - name: a\n  - name: a\n", wantErr: true},
		{name: "duplicate post type", yaml: "post_types:\n  - name: a\n  - name: a\n", wantErr: true},
		{name: "bad yaml", yaml: "post_types: [", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadAndApply(t *testing.T) {
	t.Setenv("PERSON_LABEL", "People")
	path := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte(siteYAML), 0o644))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "People", m.PostTypes[0].Label)

	b := sqlite.NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	t.Cleanup(func() { _ = b.Detach() })
	p := platform.New(b, nil, nil)

	res, err := m.Apply(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"team"}, res.Taxonomies)
	assert.Equal(t, []string{"person", "venue", "page"}, res.PostTypes)

	place, err := b.Taxonomy("place")
	require.NoError(t, err, "projected taxonomies are created on demand")
	assert.Equal(t, "place", place.Name)

	// Applying twice is harmless.
	res, err = m.Apply(p)
	require.NoError(t, err)
	assert.Empty(t, res.Taxonomies)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
