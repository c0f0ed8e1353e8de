package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/mesh-intelligence/termsync/internal/mirror"
	"github.com/mesh-intelligence/termsync/internal/platform"
	"github.com/mesh-intelligence/termsync/internal/sqlite"
	"github.com/mesh-intelligence/termsync/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testEnv sets up a temp data dir, platform, mirror and router.
func testEnv(t *testing.T) http.Handler {
	t.Helper()
	b := sqlite.NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	t.Cleanup(func() { _ = b.Detach() })

	p := platform.New(b, nil, nil)
	m := mirror.New(b)
	m.Register(p.Hooks())
	p.Init(context.Background())
	return NewRouter(p, m)
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func registerPerson(t *testing.T, h http.Handler) {
	t.Helper()
	w := do(t, h, http.MethodPost, "/post-types", RegisterPostTypeRequest{Name: "person", AsTaxonomy: "team"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func createPost(t *testing.T, h http.Handler, title string) SavePostResponse {
	t.Helper()
	w := do(t, h, http.MethodPost, "/posts", SavePostRequest{Type: "person", Title: title, Status: types.StatusPublish})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[SavePostResponse](t, w)
}

func TestSavePostReturnsLinkedTerm(t *testing.T) {
	h := testEnv(t)
	registerPerson(t, h)

	created := createPost(t, h, "Jane Doe")
	require.NotNil(t, created.LinkedTerm)
	assert.Equal(t, "Jane Doe", created.LinkedTerm.Name)
	assert.Equal(t, "jane-doe", created.LinkedTerm.Slug)

	w := do(t, h, http.MethodPost, "/posts", SavePostRequest{
		ID: created.Post.ID, Type: "person", Title: "Jane Smith", Status: types.StatusPublish,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[SavePostResponse](t, w)
	assert.Equal(t, created.LinkedTerm.ID, updated.LinkedTerm.ID)
	assert.Equal(t, "Jane Smith", updated.LinkedTerm.Name)

	w = do(t, h, http.MethodGet, "/mappings", nil)
	assert.JSONEq(t, `{"mappings":{"person":"team"}}`, w.Body.String())
}

func TestTrashAndUntrash(t *testing.T) {
	h := testEnv(t)
	registerPerson(t, h)
	created := createPost(t, h, "Jane")
	postPath := "/posts/" + strconv.FormatInt(created.Post.ID, 10)
	termPath := "/taxonomies/team/terms/" + strconv.FormatInt(created.LinkedTerm.ID, 10)

	w := do(t, h, http.MethodPost, postPath+"/trash", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, termPath, nil).Code)
	assert.Equal(t, http.StatusConflict, do(t, h, http.MethodPost, postPath+"/trash", nil).Code)

	w = do(t, h, http.MethodPost, postPath+"/untrash", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	restored := decode[SavePostResponse](t, w)
	assert.Equal(t, types.StatusPublish, restored.Post.Status)
	require.NotNil(t, restored.LinkedTerm)
	assert.Equal(t, "Jane", restored.LinkedTerm.Name)

	assert.Equal(t, http.StatusConflict, do(t, h, http.MethodPost, postPath+"/untrash", nil).Code)
}

func TestLinkedTermAndPost(t *testing.T) {
	h := testEnv(t)
	registerPerson(t, h)
	created := createPost(t, h, "Jane")
	id := strconv.FormatInt(created.Post.ID, 10)
	termID := strconv.FormatInt(created.LinkedTerm.ID, 10)

	w := do(t, h, http.MethodGet, "/posts/"+id+"/linked-term/team?field=slug", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"field":"slug","value":"jane"}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/posts/"+id+"/linked-term/team?field=color", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodGet, "/taxonomies/team/terms/"+termID+"/linked-post", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	post := decode[types.Post](t, w)
	assert.Equal(t, created.Post.ID, post.ID)
}

func TestPostTermsEndpoints(t *testing.T) {
	h := testEnv(t)
	registerPerson(t, h)
	jane := createPost(t, h, "Jane")
	john := createPost(t, h, "John")

	w := do(t, h, http.MethodPost, "/post-types", RegisterPostTypeRequest{Name: "project"})
	require.Equal(t, http.StatusCreated, w.Code)
	w = do(t, h, http.MethodPost, "/posts", SavePostRequest{Type: "project", Title: "Apollo"})
	require.Equal(t, http.StatusCreated, w.Code)
	project := decode[SavePostResponse](t, w)
	assert.Nil(t, project.LinkedTerm)
	path := "/posts/" + strconv.FormatInt(project.Post.ID, 10) + "/terms/team"

	w = do(t, h, http.MethodPut, path, SetPostTermsRequest{TermIDs: []int64{john.LinkedTerm.ID, jane.LinkedTerm.ID}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decode[TermListResponse](t, w).Terms, 2)

	w = do(t, h, http.MethodGet, path+"?field=name", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"field":"name","values":["Jane","John"]}`, w.Body.String())

	w = do(t, h, http.MethodPut, path, SetPostTermsRequest{TermIDs: []int64{0}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodGet, "/taxonomies/team/terms", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[TermListResponse](t, w).Terms, 2)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/taxonomies/nope/terms", nil).Code)
}

func TestValidationAndErrors(t *testing.T) {
	h := testEnv(t)
	registerPerson(t, h)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{name: "missing type", method: http.MethodPost, path: "/posts", body: SavePostRequest{Title: "X"}, want: http.StatusBadRequest},
		{name: "bad status", method: http.MethodPost, path: "/posts", body: SavePostRequest{Type: "person", Title: "X", Status: "archived"}, want: http.StatusBadRequest},
		{name: "unregistered type", method: http.MethodPost, path: "/posts", body: SavePostRequest{Type: "event", Title: "X"}, want: http.StatusBadRequest},
		{name: "revision post type", method: http.MethodPost, path: "/post-types", body: RegisterPostTypeRequest{Name: types.PostTypeRevision}, want: http.StatusBadRequest},
		{name: "malformed body", method: http.MethodPost, path: "/posts", body: "nope", want: http.StatusBadRequest},
		{name: "bad id", method: http.MethodGet, path: "/posts/abc", want: http.StatusBadRequest},
		{name: "missing post", method: http.MethodGet, path: "/posts/999", want: http.StatusNotFound},
		{name: "missing link", method: http.MethodGet, path: "/posts/999/linked-term/team", want: http.StatusNotFound},
		{name: "missing term", method: http.MethodGet, path: "/taxonomies/team/terms/999", want: http.StatusNotFound},
		{name: "non-numeric limit", method: http.MethodGet, path: "/posts?limit=abc", want: http.StatusBadRequest},
		{name: "negative offset", method: http.MethodGet, path: "/posts?offset=-1", want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestListAndResync(t *testing.T) {
	h := testEnv(t)
	registerPerson(t, h)
	createPost(t, h, "Jane")
	createPost(t, h, "John")

	w := do(t, h, http.MethodGet, "/posts?type=person&limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[PostListResponse](t, w)
	require.Len(t, list.Posts, 1)
	assert.Equal(t, "Jane", list.Posts[0].Title)

	w = do(t, h, http.MethodPost, "/mirror/resync", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[ResyncResponse](t, w)
	assert.Equal(t, 2, resp.Report.Scanned)
	assert.Equal(t, 2, resp.Report.Outcomes[mirror.OutcomeUnchanged])

	w = do(t, h, http.MethodGet, "/post-types", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"as_taxonomy":"team"`)
	w = do(t, h, http.MethodGet, "/taxonomies", nil)
	assert.Contains(t, w.Body.String(), `"name":"team"`)
}
