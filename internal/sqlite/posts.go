// This file implements the posts table accessor and the trash lifecycle.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mesh-intelligence/termsync/pkg/types"
)

const postColumns = "post_id, post_type, title, slug, status, parent_id, created_at, updated_at"

// PostFilter narrows Posts. Zero values match everything.
type PostFilter struct {
	Type   string
	Status string
	Limit  int
	Offset int
}

// SavePost creates the post when p.ID is zero and updates it otherwise.
// A missing status defaults to draft (inherit for revisions). Returns the
// post id.
func (b *Backend) SavePost(p *types.Post) (int64, error) {
	if p == nil {
		return 0, types.ErrInvalidID
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkAttached(); err != nil {
		return 0, err
	}

	var existing *types.Post
	if p.ID != 0 {
		var err error
		existing, err = b.postLocked(p.ID)
		if err != nil {
			return 0, err
		}
		if existing.IsTrashed() {
			return 0, types.ErrAlreadyTrashed
		}
	}

	if err := b.validatePostLocked(p); err != nil {
		return 0, err
	}

	if err := b.assignPostSlugLocked(p); err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	p.UpdatedAt = now

	if existing == nil {
		p.CreatedAt = now
		res, err := b.db.Exec(
			"INSERT INTO posts (post_type, title, slug, status, parent_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
			p.Type, p.Title, p.Slug, p.Status, p.ParentID, formatTime(p.CreatedAt), formatTime(p.UpdatedAt),
		)
		if err != nil {
			return 0, fmt.Errorf("inserting post: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("reading post id: %w", err)
		}
		p.ID = id
	} else {
		p.CreatedAt = existing.CreatedAt
		if _, err := b.db.Exec(
			"UPDATE posts SET post_type = ?, title = ?, slug = ?, status = ?, parent_id = ?, updated_at = ? WHERE post_id = ?",
			p.Type, p.Title, p.Slug, p.Status, p.ParentID, formatTime(p.UpdatedAt), p.ID,
		); err != nil {
			return 0, fmt.Errorf("updating post %d: %w", p.ID, err)
		}
	}

	if err := b.persistTables("posts"); err != nil {
		return 0, err
	}
	return p.ID, nil
}

// validatePostLocked checks type, parent and status and fills the default
// status. The caller must hold b.mu.
func (b *Backend) validatePostLocked(p *types.Post) error {
	if p.Type == types.PostTypeRevision {
		if p.ParentID == 0 {
			return types.ErrInvalidID
		}
		if _, err := b.postLocked(p.ParentID); err != nil {
			return err
		}
		if p.Status == "" {
			p.Status = types.StatusInherit
		}
	} else {
		if p.Type == "" {
			return types.ErrInvalidPostType
		}
		if _, err := b.postTypeLocked(p.Type); err != nil {
			if errors.Is(err, types.ErrNotFound) {
				return types.ErrInvalidPostType
			}
			return err
		}
		if p.Status == "" {
			p.Status = types.StatusDraft
		}
	}
	if !types.IsValidStatus(p.Status) || p.Status == types.StatusTrash {
		return types.ErrInvalidStatus
	}
	return nil
}

// assignPostSlugLocked sanitizes the post slug, derives it from the title
// when empty, and makes it unique within the post type. Revisions keep their
// slug untouched and auto-drafts without a slug stay without one.
func (b *Backend) assignPostSlugLocked(p *types.Post) error {
	if p.Type == types.PostTypeRevision {
		return nil
	}
	base := p.Slug
	if base == "" {
		if p.Status == types.StatusAutoDraft {
			return nil
		}
		base = p.Title
	}
	base = sanitizeSlug(base, "")
	if base == "" {
		p.Slug = ""
		return nil
	}
	s, err := uniqueSlug(base, func(c string) (bool, error) {
		return exists(b.db, "SELECT 1 FROM posts WHERE post_type = ? AND slug = ? AND post_id != ?", p.Type, c, p.ID)
	})
	if err != nil {
		return fmt.Errorf("checking post slug: %w", err)
	}
	p.Slug = s
	return nil
}

// Post returns the post with the given id or ErrNotFound.
func (b *Backend) Post(id int64) (*types.Post, error) {
	if id <= 0 {
		return nil, types.ErrInvalidID
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkAttached(); err != nil {
		return nil, err
	}
	return b.postLocked(id)
}

func (b *Backend) postLocked(id int64) (*types.Post, error) {
	return queryPost(b.db, id)
}

func queryPost(q queryer, id int64) (*types.Post, error) {
	row := q.QueryRow("SELECT "+postColumns+" FROM posts WHERE post_id = ?", id)
	p, err := hydratePost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting post %d: %w", id, err)
	}
	return p, nil
}

// Posts returns posts matching filter ordered by id.
func (b *Backend) Posts(filter PostFilter) ([]*types.Post, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkAttached(); err != nil {
		return nil, err
	}

	query := "SELECT " + postColumns + " FROM posts"
	var conditions []string
	var args []any
	if filter.Type != "" {
		conditions = append(conditions, "post_type = ?")
		args = append(args, filter.Type)
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY post_id ASC"
	query += limitClause(filter.Limit, filter.Offset)

	return b.queryPosts(query, args...)
}

// PostsByMeta returns posts carrying meta key=value ordered by id.
func (b *Backend) PostsByMeta(key, value string, limit int) ([]*types.Post, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkAttached(); err != nil {
		return nil, err
	}

	query := "SELECT p." + strings.ReplaceAll(postColumns, ", ", ", p.") +
		" FROM posts p JOIN postmeta m ON m.post_id = p.post_id" +
		" WHERE m.meta_key = ? AND m.meta_value = ? ORDER BY p.post_id ASC" +
		limitClause(limit, 0)
	return b.queryPosts(query, key, value)
}

// PostsOfType returns every post of postType ordered by id.
func (b *Backend) PostsOfType(postType string) ([]*types.Post, error) {
	return b.Posts(PostFilter{Type: postType})
}

func (b *Backend) queryPosts(query string, args ...any) ([]*types.Post, error) {
	rows, err := b.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching posts: %w", err)
	}
	defer rows.Close()

	results := []*types.Post{}
	for rows.Next() {
		p, err := hydratePost(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating post: %w", err)
		}
		results = append(results, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating posts: %w", err)
	}
	return results, nil
}

// TrashPost moves a post to the trash and remembers its previous status.
// Returns ErrAlreadyTrashed when the post is in the trash already.
func (b *Backend) TrashPost(id int64) (*types.Post, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkAttached(); err != nil {
		return nil, err
	}

	p, err := b.postLocked(id)
	if err != nil {
		return nil, err
	}
	if p.IsTrashed() {
		return nil, types.ErrAlreadyTrashed
	}

	tx, err := b.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := upsertMeta(tx, id, types.MetaTrashStatus, p.Status); err != nil {
		return nil, err
	}
	p.Status = types.StatusTrash
	p.UpdatedAt = time.Now().UTC()
	if _, err := tx.Exec("UPDATE posts SET status = ?, updated_at = ? WHERE post_id = ?",
		p.Status, formatTime(p.UpdatedAt), id); err != nil {
		return nil, fmt.Errorf("trashing post %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing trash: %w", err)
	}

	if err := b.persistTables("posts", "postmeta"); err != nil {
		return nil, err
	}
	return p, nil
}

// UntrashPost restores a trashed post to its previous status, or draft when
// none was recorded. Returns ErrNotTrashed for posts outside the trash.
func (b *Backend) UntrashPost(id int64) (*types.Post, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkAttached(); err != nil {
		return nil, err
	}

	p, err := b.postLocked(id)
	if err != nil {
		return nil, err
	}
	if !p.IsTrashed() {
		return nil, types.ErrNotTrashed
	}

	prev, err := metaValue(b.db, id, types.MetaTrashStatus)
	if err != nil {
		return nil, err
	}
	if !types.IsValidStatus(prev) || prev == types.StatusTrash {
		prev = types.StatusDraft
	}

	tx, err := b.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	p.Status = prev
	p.UpdatedAt = time.Now().UTC()
	if _, err := tx.Exec("UPDATE posts SET status = ?, updated_at = ? WHERE post_id = ?",
		p.Status, formatTime(p.UpdatedAt), id); err != nil {
		return nil, fmt.Errorf("restoring post %d: %w", id, err)
	}
	if _, err := tx.Exec("DELETE FROM postmeta WHERE post_id = ? AND meta_key = ?", id, types.MetaTrashStatus); err != nil {
		return nil, fmt.Errorf("clearing trash status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing untrash: %w", err)
	}

	if err := b.persistTables("posts", "postmeta"); err != nil {
		return nil, err
	}
	return p, nil
}

// DeletePost permanently removes a post together with its revisions, meta
// and term relationships.
func (b *Backend) DeletePost(id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkAttached(); err != nil {
		return err
	}

	if _, err := b.postLocked(id); err != nil {
		return err
	}

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	ids := "SELECT post_id FROM posts WHERE post_id = ? OR (post_type = '" + types.PostTypeRevision + "' AND parent_id = ?)"
	for _, stmt := range []string{
		"DELETE FROM term_relationships WHERE post_id IN (" + ids + ")",
		"DELETE FROM postmeta WHERE post_id IN (" + ids + ")",
		"DELETE FROM posts WHERE post_id IN (" + ids + ")",
	} {
		if _, err := tx.Exec(stmt, id, id); err != nil {
			return fmt.Errorf("deleting post %d: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing post deletion: %w", err)
	}

	return b.persistTables("posts", "postmeta", "term_relationships")
}

func hydratePost(s scanner) (*types.Post, error) {
	var p types.Post
	var createdAt, updatedAt string
	if err := s.Scan(&p.ID, &p.Type, &p.Title, &p.Slug, &p.Status, &p.ParentID, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &p, nil
}

// limitClause renders LIMIT/OFFSET. Non-positive values are omitted.
func limitClause(limit, offset int) string {
	var s string
	if limit > 0 {
		s += " LIMIT " + strconv.Itoa(limit)
	}
	if offset > 0 {
		if limit <= 0 {
			s += " LIMIT -1"
		}
		s += " OFFSET " + strconv.Itoa(offset)
	}
	return s
}
