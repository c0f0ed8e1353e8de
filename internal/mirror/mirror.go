// Package mirror keeps posts of configured post types paired with terms of a
// taxonomy. A post type opts in by naming a taxonomy in AsTaxonomy; from then
// on saving a post creates or updates its term, trashing the post deletes it,
// and restoring the post brings it back. The pairing is stored as the
// term_id post meta value on the post only.
package mirror

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/mesh-intelligence/termsync/internal/hooks"
	"github.com/mesh-intelligence/termsync/pkg/types"
)

// InitPriority runs discovery after post types registered at the default
// priority.
const InitPriority = hooks.DefaultPriority + 1

// Outcome describes what a lifecycle call did.
type Outcome string

const (
	OutcomeSkipped   Outcome = "skipped"
	OutcomeCreated   Outcome = "created"
	OutcomeUpdated   Outcome = "updated"
	OutcomeRelinked  Outcome = "relinked"
	OutcomeDeleted   Outcome = "deleted"
	OutcomeUnchanged Outcome = "unchanged"
)

// ActionAdder is the part of the action registry the mirror subscribes to.
type ActionAdder interface {
	AddAction(name string, priority int, h hooks.Handler)
}

// Mirror is the coordinator. Create it with New and run Init (directly or
// through the init action) before the lifecycle calls.
type Mirror struct {
	host   types.Host
	logger *slog.Logger

	mu        sync.RWMutex
	postTypes map[string]string
}

// Option configures a Mirror.
type Option func(*Mirror)

// WithLogger sets the logger for outcomes and swallowed host errors.
func WithLogger(l *slog.Logger) Option {
	return func(m *Mirror) {
		m.logger = l
	}
}

// New returns a mirror over host with no post types configured.
func New(host types.Host, opts ...Option) *Mirror {
	m := &Mirror{
		host:      host,
		logger:    slog.Default(),
		postTypes: map[string]string{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Init scans the registered post types and remembers which taxonomy each
// configured type mirrors into. It replaces the previous mapping.
func (m *Mirror) Init(_ context.Context) error {
	pts, err := m.host.PostTypes()
	if err != nil {
		return err
	}

	mapping := make(map[string]string, len(pts))
	for _, pt := range pts {
		if pt.AsTaxonomy != "" {
			mapping[pt.Name] = pt.AsTaxonomy
		}
	}

	m.mu.Lock()
	m.postTypes = mapping
	m.mu.Unlock()

	m.logger.Debug("mirror initialized", slog.Int("post_types", len(mapping)))
	return nil
}

// Mappings returns a copy of the post type to taxonomy map.
func (m *Mirror) Mappings() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.postTypes))
	for k, v := range m.postTypes {
		out[k] = v
	}
	return out
}

// taxonomyFor returns the taxonomy the post type mirrors into.
func (m *Mirror) taxonomyFor(postType string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tax, ok := m.postTypes[postType]
	return tax, ok
}

// configuredTypes returns the configured post types in name order.
func (m *Mirror) configuredTypes() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.postTypes))
	for name := range m.postTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register subscribes the mirror to the platform actions. Lifecycle errors
// are logged at debug level and never reach the platform.
func (m *Mirror) Register(r ActionAdder) {
	r.AddAction(hooks.ActionInit, InitPriority, func(ctx context.Context, _ hooks.Event) error {
		if err := m.Init(ctx); err != nil {
			m.logger.Debug("mirror init failed", slog.String("error", err.Error()))
		}
		return nil
	})
	r.AddAction(hooks.ActionSavePost, hooks.DefaultPriority, m.handle(m.Save))
	r.AddAction(hooks.ActionUntrashedPost, hooks.DefaultPriority, m.handle(m.Restore))
	r.AddAction(hooks.ActionTrashedPost, hooks.DefaultPriority, m.handle(m.Trash))
}

func (m *Mirror) handle(fn func(context.Context, int64) (Outcome, error)) hooks.Handler {
	return func(ctx context.Context, e hooks.Event) error {
		outcome, err := fn(ctx, e.PostID)
		if err != nil {
			m.logger.Debug("mirror operation did not happen",
				slog.String("action", e.Name),
				slog.Int64("post_id", e.PostID),
				slog.String("error", err.Error()),
			)
			return nil
		}
		m.logger.Debug("mirror",
			slog.String("action", e.Name),
			slog.Int64("post_id", e.PostID),
			slog.String("outcome", string(outcome)),
		)
		return nil
	}
}
