package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/mesh-intelligence/termsync/internal/mirror"
	"github.com/mesh-intelligence/termsync/internal/platform"
	"github.com/mesh-intelligence/termsync/internal/sqlite"
	"github.com/mesh-intelligence/termsync/pkg/types"
)

// Handler holds API route handlers.
type Handler struct {
	platform *platform.Platform
	mirror   *mirror.Mirror
}

// NewHandler creates a new Handler.
func NewHandler(p *platform.Platform, m *mirror.Mirror) *Handler {
	return &Handler{platform: p, mirror: m}
}

func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, types.ErrInvalidID
	}
	return id, nil
}

// ListPostTypes handles GET /api/post-types.
func (h *Handler) ListPostTypes(w http.ResponseWriter, r *http.Request) {
	pts, err := h.platform.Backend().PostTypes()
	if err != nil {
		writeError(w, "list post types", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"post_types": pts})
}

// RegisterPostType handles POST /api/post-types. The mirror picks up the
// new projection immediately.
func (h *Handler) RegisterPostType(w http.ResponseWriter, r *http.Request) {
	var req RegisterPostTypeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	pt := &types.PostType{Name: req.Name, Label: req.Label, AsTaxonomy: req.AsTaxonomy}
	if err := h.platform.RegisterPostType(pt); err != nil {
		writeError(w, "register post type", err)
		return
	}
	if err := h.mirror.Init(r.Context()); err != nil {
		writeError(w, "mirror init", err)
		return
	}
	writeJSON(w, http.StatusCreated, pt)
}

// ListTaxonomies handles GET /api/taxonomies.
func (h *Handler) ListTaxonomies(w http.ResponseWriter, r *http.Request) {
	taxes, err := h.platform.Backend().Taxonomies()
	if err != nil {
		writeError(w, "list taxonomies", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"taxonomies": taxes})
}

// ListPosts handles GET /api/posts.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	filter, err := postFilter(r.URL.Query())
	if err != nil {
		writeError(w, "list posts", err)
		return
	}

	posts, err := h.platform.Backend().Posts(filter)
	if err != nil {
		writeError(w, "list posts", err)
		return
	}
	writeJSON(w, http.StatusOK, PostListResponse{Posts: posts, Total: len(posts)})
}

// postFilter reads type, status, limit and offset from the query string.
// limit and offset must be non-negative integers when present.
func postFilter(q url.Values) (sqlite.PostFilter, error) {
	filter := sqlite.PostFilter{Type: q.Get("type"), Status: q.Get("status")}
	errs := validation.Errors{}
	for key, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		raw := q.Get(key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			errs[key] = errNonNegativeInt
			continue
		}
		*dst = n
	}
	return filter, errs.Filter()
}

// SavePost handles POST /api/posts. Returns 201 for a new post and 200 for
// an update, together with the post's linked term when it has one.
func (h *Handler) SavePost(w http.ResponseWriter, r *http.Request) {
	var req SavePostRequest
	if !decodeBody(w, r, &req) {
		return
	}
	post, err := h.platform.SavePost(r.Context(), req.post())
	if err != nil {
		writeError(w, "save post", err)
		return
	}
	status := http.StatusOK
	if req.ID == 0 {
		status = http.StatusCreated
	}
	writeJSON(w, status, h.postResponse(r, post))
}

// GetPost handles GET /api/posts/{id}.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, "get post", err)
		return
	}
	post, err := h.platform.Backend().Post(id)
	if err != nil {
		writeError(w, "get post", err)
		return
	}
	writeJSON(w, http.StatusOK, h.postResponse(r, post))
}

// TrashPost handles POST /api/posts/{id}/trash.
func (h *Handler) TrashPost(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, "trash post", err)
		return
	}
	post, err := h.platform.TrashPost(r.Context(), id)
	if err != nil {
		writeError(w, "trash post", err)
		return
	}
	writeJSON(w, http.StatusOK, SavePostResponse{Post: post})
}

// UntrashPost handles POST /api/posts/{id}/untrash.
func (h *Handler) UntrashPost(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, "untrash post", err)
		return
	}
	post, err := h.platform.UntrashPost(r.Context(), id)
	if err != nil {
		writeError(w, "untrash post", err)
		return
	}
	writeJSON(w, http.StatusOK, h.postResponse(r, post))
}

// SetPostTerms handles PUT /api/posts/{id}/terms/{taxonomy}.
func (h *Handler) SetPostTerms(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, "set post terms", err)
		return
	}
	var req SetPostTermsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	taxonomy := chi.URLParam(r, "taxonomy")
	if err := h.platform.SetPostTerms(r.Context(), id, taxonomy, req.TermIDs); err != nil {
		writeError(w, "set post terms", err)
		return
	}
	h.writeTerms(w, r, id, taxonomy)
}

// PostTerms handles GET /api/posts/{id}/terms/{taxonomy}[?field=].
func (h *Handler) PostTerms(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, "post terms", err)
		return
	}
	h.writeTerms(w, r, id, chi.URLParam(r, "taxonomy"))
}

func (h *Handler) writeTerms(w http.ResponseWriter, r *http.Request, postID int64, taxonomy string) {
	if field := r.URL.Query().Get("field"); field != "" {
		values, err := h.mirror.PostTermFields(r.Context(), postID, taxonomy, field)
		if err != nil {
			writeError(w, "post term fields", err)
			return
		}
		writeJSON(w, http.StatusOK, FieldListResponse{Field: field, Values: values})
		return
	}
	terms, err := h.mirror.PostTerms(r.Context(), postID, taxonomy)
	if err != nil {
		writeError(w, "post terms", err)
		return
	}
	writeJSON(w, http.StatusOK, TermListResponse{Terms: terms})
}

// LinkedTerm handles GET /api/posts/{id}/linked-term/{taxonomy}[?field=].
func (h *Handler) LinkedTerm(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, "linked term", err)
		return
	}
	taxonomy := chi.URLParam(r, "taxonomy")
	if field := r.URL.Query().Get("field"); field != "" {
		v, err := h.mirror.LinkedTermField(r.Context(), id, taxonomy, field)
		if err != nil {
			writeError(w, "linked term field", err)
			return
		}
		writeJSON(w, http.StatusOK, FieldResponse{Field: field, Value: v})
		return
	}
	term, err := h.mirror.LinkedTerm(r.Context(), id, taxonomy)
	if err != nil {
		writeError(w, "linked term", err)
		return
	}
	writeJSON(w, http.StatusOK, term)
}

// ListTerms handles GET /api/taxonomies/{taxonomy}/terms.
func (h *Handler) ListTerms(w http.ResponseWriter, r *http.Request) {
	taxonomy := chi.URLParam(r, "taxonomy")
	if _, err := h.platform.Backend().Taxonomy(taxonomy); err != nil {
		writeError(w, "list terms", err)
		return
	}
	terms, err := h.platform.Backend().Terms(taxonomy)
	if err != nil {
		writeError(w, "list terms", err)
		return
	}
	writeJSON(w, http.StatusOK, TermListResponse{Terms: terms})
}

// GetTerm handles GET /api/taxonomies/{taxonomy}/terms/{id}.
func (h *Handler) GetTerm(w http.ResponseWriter, r *http.Request) {
	term, ok := h.term(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, term)
}

// LinkedPost handles GET /api/taxonomies/{taxonomy}/terms/{id}/linked-post.
func (h *Handler) LinkedPost(w http.ResponseWriter, r *http.Request) {
	term, ok := h.term(w, r)
	if !ok {
		return
	}
	post, err := h.mirror.LinkedPost(r.Context(), term)
	if err != nil {
		writeError(w, "linked post", err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *Handler) term(w http.ResponseWriter, r *http.Request) (*types.Term, bool) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, "get term", err)
		return nil, false
	}
	term, err := h.platform.Backend().Term(id, chi.URLParam(r, "taxonomy"))
	if err != nil {
		writeError(w, "get term", err)
		return nil, false
	}
	return term, true
}

// Mappings handles GET /api/mappings.
func (h *Handler) Mappings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"mappings": h.mirror.Mappings()})
}

// Resync handles POST /api/mirror/resync.
func (h *Handler) Resync(w http.ResponseWriter, r *http.Request) {
	report, err := h.mirror.Resync(r.Context())
	if err != nil {
		writeError(w, "resync", err)
		return
	}
	writeJSON(w, http.StatusOK, ResyncResponse{Report: report})
}

// postResponse attaches the linked term when the post's type is mirrored.
func (h *Handler) postResponse(r *http.Request, post *types.Post) SavePostResponse {
	resp := SavePostResponse{Post: post}
	if taxonomy, ok := h.mirror.Mappings()[post.Type]; ok {
		if term, err := h.mirror.LinkedTerm(r.Context(), post.ID, taxonomy); err == nil {
			resp.LinkedTerm = term
		}
	}
	return resp
}
