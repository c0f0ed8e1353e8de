package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/mesh-intelligence/termsync/internal/mirror"
	"github.com/mesh-intelligence/termsync/pkg/types"
)

var errNonNegativeInt = validation.NewError("validation_non_negative_int", "must be a non-negative integer")

var postStatuses = []any{
	types.StatusPublish, types.StatusDraft, types.StatusPending, types.StatusPrivate,
	types.StatusFuture, types.StatusAutoDraft, types.StatusInherit,
}

// RegisterPostTypeRequest is the body of POST /post-types.
type RegisterPostTypeRequest struct {
	Name       string `json:"name"`
	Label      string `json:"label"`
	AsTaxonomy string `json:"as_taxonomy"`
}

// Validate implements validation.Validatable.
func (r RegisterPostTypeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 20),
			validation.NotIn(types.PostTypeRevision)),
		validation.Field(&r.AsTaxonomy, validation.Length(0, 32)),
	)
}

// SavePostRequest is the body of POST /posts. A zero ID creates a post.
type SavePostRequest struct {
	ID       int64  `json:"id"`
	Type     string `json:"type"`
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	Status   string `json:"status"`
	ParentID int64  `json:"parent_id"`
}

// Validate implements validation.Validatable.
func (r SavePostRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.Min(int64(0))),
		validation.Field(&r.Type, validation.Required),
		validation.Field(&r.Status, validation.In(postStatuses...)),
		validation.Field(&r.ParentID, validation.Min(int64(0))),
	)
}

func (r SavePostRequest) post() *types.Post {
	return &types.Post{
		ID:       r.ID,
		Type:     r.Type,
		Title:    r.Title,
		Slug:     r.Slug,
		Status:   r.Status,
		ParentID: r.ParentID,
	}
}

// SetPostTermsRequest is the body of PUT /posts/{id}/terms/{taxonomy}.
type SetPostTermsRequest struct {
	TermIDs []int64 `json:"term_ids"`
}

// Validate implements validation.Validatable.
func (r SetPostTermsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.TermIDs, validation.Each(validation.Required, validation.Min(int64(1)))),
	)
}

// PostListResponse is returned by GET /posts.
type PostListResponse struct {
	Posts []*types.Post `json:"posts"`
	Total int           `json:"total"`
}

// TermListResponse is returned by the term list endpoints.
type TermListResponse struct {
	Terms []*types.Term `json:"terms"`
}

// FieldResponse carries a single projected value.
type FieldResponse struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

// FieldListResponse carries projected values of several terms.
type FieldListResponse struct {
	Field  string `json:"field"`
	Values []any  `json:"values"`
}

// SavePostResponse is returned by the post lifecycle endpoints.
type SavePostResponse struct {
	Post       *types.Post `json:"post"`
	LinkedTerm *types.Term `json:"linked_term,omitempty"`
}

// ResyncResponse wraps a resync report.
type ResyncResponse struct {
	Report mirror.Report `json:"report"`
}
