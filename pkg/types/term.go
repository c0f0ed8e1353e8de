package types

import (
	"strconv"
	"time"
)

// Term fields addressable by the lookup helpers.
const (
	FieldTermID   = "term_id"
	FieldName     = "name"
	FieldSlug     = "slug"
	FieldTaxonomy = "taxonomy"
)

// Taxonomy is a named grouping of terms.
type Taxonomy struct {
	Name      string    `json:"name"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"created_at"`
}

// Term is a classification entry inside a taxonomy.
type Term struct {
	ID       int64  `json:"term_id"`
	Taxonomy string `json:"taxonomy"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
}

// Field returns a single attribute of the term by field name.
// Returns ErrUnknownField for names other than the Field constants.
func (t *Term) Field(name string) (any, error) {
	switch name {
	case FieldTermID:
		return t.ID, nil
	case FieldName:
		return t.Name, nil
	case FieldSlug:
		return t.Slug, nil
	case FieldTaxonomy:
		return t.Taxonomy, nil
	default:
		return nil, ErrUnknownField
	}
}

// IsValidField reports whether name is an addressable term field.
func IsValidField(name string) bool {
	switch name {
	case FieldTermID, FieldName, FieldSlug, FieldTaxonomy:
		return true
	}
	return false
}

// FormatTermID renders a term id the way it is stored in link metadata.
func FormatTermID(id int64) string {
	return formatID(id)
}

// ParseTermID parses link metadata back into a term id. Empty, zero and
// malformed values all report ok=false.
func ParseTermID(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
