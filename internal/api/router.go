// Package api implements the termsync REST API using chi.
package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/mesh-intelligence/termsync/internal/mirror"
	"github.com/mesh-intelligence/termsync/internal/platform"
)

// NewRouter creates a chi router with all API routes. Mount it under /api.
func NewRouter(p *platform.Platform, m *mirror.Mirror) chi.Router {
	h := NewHandler(p, m)

	r := chi.NewRouter()

	r.Get("/post-types", h.ListPostTypes)
	r.Post("/post-types", h.RegisterPostType)
	r.Get("/taxonomies", h.ListTaxonomies)

	r.Route("/posts", func(r chi.Router) {
		r.Get("/", h.ListPosts)
		r.Post("/", h.SavePost)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetPost)
			r.Post("/trash", h.TrashPost)
			r.Post("/untrash", h.UntrashPost)
			r.Get("/terms/{taxonomy}", h.PostTerms)
			r.Put("/terms/{taxonomy}", h.SetPostTerms)
			r.Get("/linked-term/{taxonomy}", h.LinkedTerm)
		})
	})

	r.Route("/taxonomies/{taxonomy}/terms", func(r chi.Router) {
		r.Get("/", h.ListTerms)
		r.Get("/{id}", h.GetTerm)
		r.Get("/{id}/linked-post", h.LinkedPost)
	})

	r.Get("/mappings", h.Mappings)
	r.Post("/mirror/resync", h.Resync)

	return r
}
