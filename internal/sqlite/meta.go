// This file implements single-valued post meta.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/termsync/pkg/types"
)

// PostMeta returns the value stored under key, or "" when unset.
func (b *Backend) PostMeta(postID int64, key string) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkAttached(); err != nil {
		return "", err
	}
	return metaValue(b.db, postID, key)
}

// SetPostMeta creates or replaces the value stored under key.
func (b *Backend) SetPostMeta(postID int64, key, value string) error {
	if key == "" {
		return types.ErrInvalidName
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkAttached(); err != nil {
		return err
	}

	if _, err := b.postLocked(postID); err != nil {
		return err
	}
	if err := upsertMeta(b.db, postID, key, value); err != nil {
		return err
	}
	return b.persistTables("postmeta")
}

// DeletePostMeta removes key from the post. Idempotent.
func (b *Backend) DeletePostMeta(postID int64, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkAttached(); err != nil {
		return err
	}

	res, err := b.db.Exec("DELETE FROM postmeta WHERE post_id = ? AND meta_key = ?", postID, key)
	if err != nil {
		return fmt.Errorf("deleting meta %s of post %d: %w", key, postID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}
	return b.persistTables("postmeta")
}

// AllPostMeta returns every meta row of a post ordered by key.
func (b *Backend) AllPostMeta(postID int64) ([]*types.Meta, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkAttached(); err != nil {
		return nil, err
	}

	rows, err := b.db.Query(
		"SELECT meta_id, post_id, meta_key, meta_value FROM postmeta WHERE post_id = ? ORDER BY meta_key",
		postID,
	)
	if err != nil {
		return nil, fmt.Errorf("fetching meta of post %d: %w", postID, err)
	}
	defer rows.Close()

	results := []*types.Meta{}
	for rows.Next() {
		var m types.Meta
		if err := rows.Scan(&m.MetaID, &m.PostID, &m.Key, &m.Value); err != nil {
			return nil, fmt.Errorf("hydrating meta: %w", err)
		}
		results = append(results, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating meta: %w", err)
	}
	return results, nil
}

func metaValue(q queryer, postID int64, key string) (string, error) {
	var v string
	err := q.QueryRow("SELECT meta_value FROM postmeta WHERE post_id = ? AND meta_key = ?", postID, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting meta %s of post %d: %w", key, postID, err)
	}
	return v, nil
}

// upsertMeta writes key=value for the post, keeping the row's meta_id when
// the key already exists.
func upsertMeta(q queryer, postID int64, key, value string) error {
	id, err := newMetaID()
	if err != nil {
		return err
	}
	_, err = q.Exec(
		`INSERT INTO postmeta (meta_id, post_id, meta_key, meta_value) VALUES (?, ?, ?, ?)
		 ON CONFLICT(post_id, meta_key) DO UPDATE SET meta_value = excluded.meta_value`,
		id, postID, key, value,
	)
	if err != nil {
		return fmt.Errorf("setting meta %s of post %d: %w", key, postID, err)
	}
	return nil
}
