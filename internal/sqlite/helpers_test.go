package sqlite

import (
	"database/sql"
	"testing"

	"github.com/mesh-intelligence/termsync/pkg/types"
	"github.com/stretchr/testify/require"
)

// newTestBackend attaches a backend to a fresh temp dir and registers a
// "team" taxonomy plus a "person" post type mirrored into it.
func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	b := attachTestBackend(t, t.TempDir())
	require.NoError(t, b.RegisterTaxonomy(&types.Taxonomy{Name: "team"}))
	require.NoError(t, b.RegisterPostType(&types.PostType{Name: "person", AsTaxonomy: "team"}))
	require.NoError(t, b.RegisterPostType(&types.PostType{Name: "page"}))
	return b
}

func attachTestBackend(t *testing.T, dataDir string) *Backend {
	t.Helper()
	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dataDir}))
	t.Cleanup(func() { _ = b.Detach() })
	return b
}

// setupTestDB opens a bare database with the schema applied.
func setupTestDB(t *testing.T) (*sql.DB, string) {
	t.Helper()
	dataDir := t.TempDir()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, createSchema(db))
	return db, dataDir
}

func savePost(t *testing.T, b *Backend, postType, title string) *types.Post {
	t.Helper()
	p := &types.Post{Type: postType, Title: title, Status: types.StatusPublish}
	_, err := b.SavePost(p)
	require.NoError(t, err)
	return p
}
