package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/gosimple/slug"
)

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// sanitizeSlug turns free text into a URL slug. fallback is used when the
// text has no sluggable characters.
func sanitizeSlug(text, fallback string) string {
	s := slug.Make(text)
	if s == "" {
		return fallback
	}
	return s
}

// uniqueSlug appends -2, -3, ... to base until taken reports it free.
func uniqueSlug(base string, taken func(candidate string) (bool, error)) (string, error) {
	candidate := base
	for n := 2; ; n++ {
		used, err := taken(candidate)
		if err != nil {
			return "", err
		}
		if !used {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}

// exists runs a SELECT 1 query and reports whether it matched a row.
func exists(q queryer, query string, args ...any) (bool, error) {
	var one int
	err := q.QueryRow(query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
