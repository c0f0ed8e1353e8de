// This file implements the terms table accessor and post/term relationships.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/termsync/pkg/types"
)

// Term returns the term with id inside taxonomy or ErrNotFound.
func (b *Backend) Term(id int64, taxonomy string) (*types.Term, error) {
	if id <= 0 {
		return nil, types.ErrInvalidID
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkAttached(); err != nil {
		return nil, err
	}
	return b.termLocked(id, taxonomy)
}

func (b *Backend) termLocked(id int64, taxonomy string) (*types.Term, error) {
	row := b.db.QueryRow(
		"SELECT term_id, taxonomy, name, slug FROM terms WHERE term_id = ? AND taxonomy = ?",
		id, taxonomy,
	)
	t, err := hydrateTerm(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting term %d: %w", id, err)
	}
	return t, nil
}

// Terms returns every term of taxonomy ordered by name.
func (b *Backend) Terms(taxonomy string) ([]*types.Term, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkAttached(); err != nil {
		return nil, err
	}
	return b.queryTerms(
		"SELECT term_id, taxonomy, name, slug FROM terms WHERE taxonomy = ? ORDER BY name COLLATE NOCASE, term_id",
		taxonomy,
	)
}

// InsertTerm creates a term in taxonomy. The slug defaults to the sanitized
// name and gets a numeric suffix when another term already uses it.
// Returns *types.TermExistsError when the name is taken (case-insensitive).
func (b *Backend) InsertTerm(name, taxonomy, slug string) (*types.Term, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, types.ErrInvalidName
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkAttached(); err != nil {
		return nil, err
	}

	if err := b.requireTaxonomyLocked(taxonomy); err != nil {
		return nil, err
	}
	if err := b.checkTermNameLocked(name, taxonomy, 0); err != nil {
		return nil, err
	}

	s, err := b.termSlugLocked(slug, name, taxonomy, 0)
	if err != nil {
		return nil, err
	}

	res, err := b.db.Exec("INSERT INTO terms (taxonomy, name, slug) VALUES (?, ?, ?)", taxonomy, name, s)
	if err != nil {
		return nil, fmt.Errorf("inserting term: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading term id: %w", err)
	}

	if err := b.persistTables("terms"); err != nil {
		return nil, err
	}
	return &types.Term{ID: id, Taxonomy: taxonomy, Name: name, Slug: s}, nil
}

// UpdateTerm renames the term and changes its slug. An empty slug is derived
// from name. Returns *types.TermExistsError when another term of the
// taxonomy already has the name.
func (b *Backend) UpdateTerm(id int64, taxonomy, name, slug string) (*types.Term, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, types.ErrInvalidName
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkAttached(); err != nil {
		return nil, err
	}

	t, err := b.termLocked(id, taxonomy)
	if err != nil {
		return nil, err
	}
	if err := b.checkTermNameLocked(name, taxonomy, id); err != nil {
		return nil, err
	}
	s, err := b.termSlugLocked(slug, name, taxonomy, id)
	if err != nil {
		return nil, err
	}

	if t.Name == name && t.Slug == s {
		return t, nil
	}

	if _, err := b.db.Exec("UPDATE terms SET name = ?, slug = ? WHERE term_id = ?", name, s, id); err != nil {
		return nil, fmt.Errorf("updating term %d: %w", id, err)
	}
	if err := b.persistTables("terms"); err != nil {
		return nil, err
	}

	t.Name = name
	t.Slug = s
	return t, nil
}

// DeleteTerm removes the term and its relationships.
func (b *Backend) DeleteTerm(id int64, taxonomy string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkAttached(); err != nil {
		return err
	}

	if _, err := b.termLocked(id, taxonomy); err != nil {
		return err
	}

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM term_relationships WHERE term_id = ?", id); err != nil {
		return fmt.Errorf("deleting relationships of term %d: %w", id, err)
	}
	if _, err := tx.Exec("DELETE FROM terms WHERE term_id = ?", id); err != nil {
		return fmt.Errorf("deleting term %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing term deletion: %w", err)
	}

	return b.persistTables("terms", "term_relationships")
}

// SetPostTerms replaces the post's terms in taxonomy with termIDs.
// An empty list clears the post's terms in that taxonomy.
func (b *Backend) SetPostTerms(postID int64, taxonomy string, termIDs []int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkAttached(); err != nil {
		return err
	}

	if _, err := b.postLocked(postID); err != nil {
		return err
	}
	if err := b.requireTaxonomyLocked(taxonomy); err != nil {
		return err
	}
	for _, id := range termIDs {
		if _, err := b.termLocked(id, taxonomy); err != nil {
			return fmt.Errorf("term %d: %w", id, err)
		}
	}

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"DELETE FROM term_relationships WHERE post_id = ? AND term_id IN (SELECT term_id FROM terms WHERE taxonomy = ?)",
		postID, taxonomy,
	); err != nil {
		return fmt.Errorf("clearing terms of post %d: %w", postID, err)
	}
	for _, id := range termIDs {
		if _, err := tx.Exec(
			"INSERT OR IGNORE INTO term_relationships (post_id, term_id) VALUES (?, ?)", postID, id,
		); err != nil {
			return fmt.Errorf("assigning term %d: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing post terms: %w", err)
	}

	return b.persistTables("term_relationships")
}

// PostTerms returns the terms of taxonomy assigned to the post, ordered by
// name.
func (b *Backend) PostTerms(postID int64, taxonomy string) ([]*types.Term, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkAttached(); err != nil {
		return nil, err
	}
	return b.queryTerms(
		`SELECT t.term_id, t.taxonomy, t.name, t.slug FROM terms t
		 JOIN term_relationships r ON r.term_id = t.term_id
		 WHERE r.post_id = ? AND t.taxonomy = ?
		 ORDER BY t.name COLLATE NOCASE, t.term_id`,
		postID, taxonomy,
	)
}

func (b *Backend) queryTerms(query string, args ...any) ([]*types.Term, error) {
	rows, err := b.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching terms: %w", err)
	}
	defer rows.Close()

	results := []*types.Term{}
	for rows.Next() {
		t, err := hydrateTerm(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating term: %w", err)
		}
		results = append(results, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating terms: %w", err)
	}
	return results, nil
}

func (b *Backend) requireTaxonomyLocked(taxonomy string) error {
	if taxonomy == "" {
		return types.ErrInvalidTaxonomy
	}
	if _, err := b.taxonomyLocked(taxonomy); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return types.ErrInvalidTaxonomy
		}
		return err
	}
	return nil
}

// checkTermNameLocked returns *types.TermExistsError when a term other than
// self already carries name in taxonomy.
func (b *Backend) checkTermNameLocked(name, taxonomy string, self int64) error {
	var dupID int64
	err := b.db.QueryRow(
		"SELECT term_id FROM terms WHERE taxonomy = ? AND name = ? COLLATE NOCASE AND term_id != ? ORDER BY term_id LIMIT 1",
		taxonomy, name, self,
	).Scan(&dupID)
	if err == nil {
		return &types.TermExistsError{Taxonomy: taxonomy, Name: name, TermID: dupID}
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking term name uniqueness: %w", err)
	}
	return nil
}

func (b *Backend) termSlugLocked(slug, name, taxonomy string, self int64) (string, error) {
	base := slug
	if base == "" {
		base = name
	}
	s, err := uniqueSlug(sanitizeSlug(base, "term"), func(c string) (bool, error) {
		return exists(b.db, "SELECT 1 FROM terms WHERE taxonomy = ? AND slug = ? AND term_id != ?", taxonomy, c, self)
	})
	if err != nil {
		return "", fmt.Errorf("checking term slug: %w", err)
	}
	return s, nil
}

func hydrateTerm(s scanner) (*types.Term, error) {
	var t types.Term
	if err := s.Scan(&t.ID, &t.Taxonomy, &t.Name, &t.Slug); err != nil {
		return nil, err
	}
	return &t, nil
}
