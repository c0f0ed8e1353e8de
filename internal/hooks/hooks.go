// Package hooks implements the host action registry. Handlers subscribe to a
// named action with a priority; DoAction runs them synchronously, lowest
// priority first and in registration order within a priority.
package hooks

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
)

// Action names fired by the platform.
const (
	ActionInit          = "init"
	ActionSavePost      = "save_post"
	ActionTrashedPost   = "trashed_post"
	ActionUntrashedPost = "untrashed_post"
)

// DefaultPriority is the priority used when a caller has no preference.
const DefaultPriority = 10

// Event is passed to every handler of an action. PostID is zero for
// actions that are not about a post.
type Event struct {
	Name   string
	PostID int64
}

// Handler reacts to an action. A returned error is logged by the registry
// and does not stop later handlers.
type Handler func(ctx context.Context, e Event) error

type subscription struct {
	priority int
	seq      int
	handler  Handler
}

// Registry holds action subscriptions. The zero value is not usable; call
// New.
type Registry struct {
	mu      sync.RWMutex
	actions map[string][]subscription
	seq     int
	logger  *slog.Logger
}

// New returns an empty registry. A nil logger discards output.
func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Registry{
		actions: make(map[string][]subscription),
		logger:  logger,
	}
}

// AddAction subscribes h to the named action.
func (r *Registry) AddAction(name string, priority int, h Handler) {
	if h == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	subs := append(r.actions[name], subscription{priority: priority, seq: r.seq, handler: h})
	sort.SliceStable(subs, func(i, j int) bool {
		if subs[i].priority != subs[j].priority {
			return subs[i].priority < subs[j].priority
		}
		return subs[i].seq < subs[j].seq
	})
	r.actions[name] = subs
}

// HasAction reports whether any handler is subscribed to name.
func (r *Registry) HasAction(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.actions[name]) > 0
}

// DoAction runs every handler subscribed to e.Name and returns how many
// failed.
func (r *Registry) DoAction(ctx context.Context, e Event) int {
	r.mu.RLock()
	subs := make([]subscription, len(r.actions[e.Name]))
	copy(subs, r.actions[e.Name])
	r.mu.RUnlock()

	failed := 0
	for _, s := range subs {
		if err := s.handler(ctx, e); err != nil {
			failed++
			r.logger.Warn("action handler failed",
				slog.String("action", e.Name),
				slog.Int64("post_id", e.PostID),
				slog.Int("priority", s.priority),
				slog.String("error", err.Error()),
			)
		}
	}
	return failed
}
