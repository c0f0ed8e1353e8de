// This file implements the post type and taxonomy registries.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/termsync/pkg/types"
)

// RegisterPostType stores a post type definition. Registering an existing
// name replaces its label and taxonomy projection, so configuration can be
// re-applied on every start.
func (b *Backend) RegisterPostType(pt *types.PostType) error {
	if pt == nil || pt.Name == "" {
		return types.ErrInvalidName
	}
	if pt.Name == types.PostTypeRevision {
		return types.ErrDuplicateType
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkAttached(); err != nil {
		return err
	}

	if pt.Label == "" {
		pt.Label = pt.Name
	}
	if pt.CreatedAt.IsZero() {
		pt.CreatedAt = time.Now().UTC()
	}

	_, err := b.db.Exec(
		`INSERT INTO post_types (name, label, as_taxonomy, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET label = excluded.label, as_taxonomy = excluded.as_taxonomy`,
		pt.Name, pt.Label, pt.AsTaxonomy, formatTime(pt.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("registering post type %s: %w", pt.Name, err)
	}

	return b.persistTables("post_types")
}

// PostTypes returns every registered post type ordered by name.
func (b *Backend) PostTypes() ([]*types.PostType, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkAttached(); err != nil {
		return nil, err
	}

	rows, err := b.db.Query("SELECT name, label, as_taxonomy, created_at FROM post_types ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("fetching post types: %w", err)
	}
	defer rows.Close()

	results := []*types.PostType{}
	for rows.Next() {
		pt, err := hydratePostType(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating post type: %w", err)
		}
		results = append(results, pt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating post types: %w", err)
	}
	return results, nil
}

// PostType returns the named post type or ErrNotFound.
func (b *Backend) PostType(name string) (*types.PostType, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkAttached(); err != nil {
		return nil, err
	}
	return b.postTypeLocked(name)
}

func (b *Backend) postTypeLocked(name string) (*types.PostType, error) {
	row := b.db.QueryRow("SELECT name, label, as_taxonomy, created_at FROM post_types WHERE name = ?", name)
	pt, err := hydratePostType(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting post type %s: %w", name, err)
	}
	return pt, nil
}

// RegisterTaxonomy stores a taxonomy. Returns ErrDuplicateType when the
// name is taken.
func (b *Backend) RegisterTaxonomy(tax *types.Taxonomy) error {
	if tax == nil || tax.Name == "" {
		return types.ErrInvalidName
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkAttached(); err != nil {
		return err
	}

	if _, err := b.taxonomyLocked(tax.Name); err == nil {
		return types.ErrDuplicateType
	} else if !errors.Is(err, types.ErrNotFound) {
		return err
	}

	if tax.Label == "" {
		tax.Label = tax.Name
	}
	if tax.CreatedAt.IsZero() {
		tax.CreatedAt = time.Now().UTC()
	}

	if _, err := b.db.Exec(
		"INSERT INTO taxonomies (name, label, created_at) VALUES (?, ?, ?)",
		tax.Name, tax.Label, formatTime(tax.CreatedAt),
	); err != nil {
		return fmt.Errorf("registering taxonomy %s: %w", tax.Name, err)
	}

	return b.persistTables("taxonomies")
}

// Taxonomies returns every registered taxonomy ordered by name.
func (b *Backend) Taxonomies() ([]*types.Taxonomy, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkAttached(); err != nil {
		return nil, err
	}

	rows, err := b.db.Query("SELECT name, label, created_at FROM taxonomies ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("fetching taxonomies: %w", err)
	}
	defer rows.Close()

	results := []*types.Taxonomy{}
	for rows.Next() {
		tax, err := hydrateTaxonomy(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating taxonomy: %w", err)
		}
		results = append(results, tax)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating taxonomies: %w", err)
	}
	return results, nil
}

// Taxonomy returns the named taxonomy or ErrNotFound.
func (b *Backend) Taxonomy(name string) (*types.Taxonomy, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkAttached(); err != nil {
		return nil, err
	}
	return b.taxonomyLocked(name)
}

func (b *Backend) taxonomyLocked(name string) (*types.Taxonomy, error) {
	row := b.db.QueryRow("SELECT name, label, created_at FROM taxonomies WHERE name = ?", name)
	tax, err := hydrateTaxonomy(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting taxonomy %s: %w", name, err)
	}
	return tax, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func hydratePostType(s scanner) (*types.PostType, error) {
	var pt types.PostType
	var createdAt string
	if err := s.Scan(&pt.Name, &pt.Label, &pt.AsTaxonomy, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if pt.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &pt, nil
}

func hydrateTaxonomy(s scanner) (*types.Taxonomy, error) {
	var tax types.Taxonomy
	var createdAt string
	if err := s.Scan(&tax.Name, &tax.Label, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if tax.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &tax, nil
}
