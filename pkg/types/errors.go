package types

import (
	"errors"
	"fmt"
)

// Backend lifecycle errors.
var (
	ErrDetached        = errors.New("backend is detached")
	ErrAlreadyAttached = errors.New("backend is already attached")
)

// Entity errors.
var (
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidID       = errors.New("invalid entity ID")
	ErrInvalidName     = errors.New("invalid name")
	ErrInvalidStatus   = errors.New("invalid status value")
	ErrInvalidPostType = errors.New("invalid post type")
	ErrInvalidTaxonomy = errors.New("invalid taxonomy")
	ErrUnknownField    = errors.New("unknown term field")
	ErrAlreadyTrashed  = errors.New("post is already in the trash")
	ErrNotTrashed      = errors.New("post is not in the trash")
	ErrTermExists      = errors.New("a term with the name already exists in this taxonomy")
	ErrDuplicateType   = errors.New("post type or taxonomy already registered")
)

// TermExistsError is returned by InsertTerm when the taxonomy already holds a
// term with the requested name. TermID identifies that term.
type TermExistsError struct {
	Taxonomy string
	Name     string
	TermID   int64
}

func (e *TermExistsError) Error() string {
	return fmt.Sprintf("term %q already exists in %s (term_id %d)", e.Name, e.Taxonomy, e.TermID)
}

// Is makes errors.Is(err, ErrTermExists) match.
func (e *TermExistsError) Is(target error) bool {
	return target == ErrTermExists
}

// ExistingTermID extracts the id carried by a TermExistsError anywhere in
// err's chain.
func ExistingTermID(err error) (int64, bool) {
	var te *TermExistsError
	if errors.As(err, &te) && te.TermID > 0 {
		return te.TermID, true
	}
	return 0, false
}
