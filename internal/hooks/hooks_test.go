package hooks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDoActionOrder(t *testing.T) {
	r := New(nil)
	var order []string
	record := func(tag string) Handler {
		return func(_ context.Context, _ Event) error {
			order = append(order, tag)
			return nil
		}
	}

	r.AddAction(ActionInit, 11, record("late"))
	r.AddAction(ActionInit, DefaultPriority, record("first"))
	r.AddAction(ActionInit, DefaultPriority, record("second"))
	r.AddAction(ActionInit, 1, record("early"))
	r.AddAction(ActionSavePost, DefaultPriority, record("other action"))

	failed := r.DoAction(context.Background(), Event{Name: ActionInit})

	assert.Zero(t, failed)
	assert.Equal(t, []string{"early", "first", "second", "late"}, order)
}

func TestDoActionContinuesAfterError(t *testing.T) {
	r := New(nil)
	var got []int64
	r.AddAction(ActionSavePost, DefaultPriority, func(_ context.Context, e Event) error {
		return errors.New("boom")
	})
	r.AddAction(ActionSavePost, DefaultPriority, func(_ context.Context, e Event) error {
		got = append(got, e.PostID)
		return nil
	})

	failed := r.DoAction(context.Background(), Event{Name: ActionSavePost, PostID: 42})

	assert.Equal(t, 1, failed)
	assert.Equal(t, []int64{42}, got)
}

func TestHasAction(t *testing.T) {
	r := New(nil)
	assert.False(t, r.HasAction(ActionTrashedPost))

	r.AddAction(ActionTrashedPost, DefaultPriority, nil)
	assert.False(t, r.HasAction(ActionTrashedPost), "nil handlers are ignored")

	r.AddAction(ActionTrashedPost, DefaultPriority, func(context.Context, Event) error { return nil })
	assert.True(t, r.HasAction(ActionTrashedPost))
	assert.Zero(t, r.DoAction(context.Background(), Event{Name: ActionUntrashedPost}))
}
