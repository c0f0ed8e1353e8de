// Package manifest loads a YAML description of a site's taxonomies and post
// types and applies it to the platform.
//
// Example:
//
//	taxonomies:
//	  - name: team
//	    label: Teams
//	post_types:
//	  - name: person
//	    label: People
//	    as_taxonomy: team
package manifest

import (
	"errors"
	"fmt"
	"os"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/termsync/pkg/types"
)

// Manifest is the root of a manifest file.
type Manifest struct {
	Taxonomies []Taxonomy `yaml:"taxonomies"`
	PostTypes  []PostType `yaml:"post_types"`
}

// Taxonomy declares a taxonomy.
type Taxonomy struct {
	Name  string `yaml:"name"`
	Label string `yaml:"label"`
}

// PostType declares a post type, optionally mirrored into a taxonomy.
type PostType struct {
	Name       string `yaml:"name"`
	Label      string `yaml:"label"`
	AsTaxonomy string `yaml:"as_taxonomy"`
}

// Validate implements validation.Validatable.
func (t Taxonomy) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Name, validation.Required, validation.Length(1, 32)),
	)
}

// Validate implements validation.Validatable.
func (p PostType) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 20),
			validation.NotIn(types.PostTypeRevision)),
		validation.Field(&p.AsTaxonomy, validation.Length(0, 32)),
	)
}

// Validate checks every entry and rejects duplicate names.
func (m *Manifest) Validate() error {
	if err := validation.ValidateStruct(m,
		validation.Field(&m.Taxonomies),
		validation.Field(&m.PostTypes),
	); err != nil {
		return err
	}
	seen := map[string]bool{}
	for _, t := range m.Taxonomies {
		if seen[t.Name] {
			return fmt.Errorf("taxonomy %s declared twice", t.Name)
		}
		seen[t.Name] = true
	}
	seen = map[string]bool{}
	for _, p := range m.PostTypes {
		if seen[p.Name] {
			return fmt.Errorf("post type %s declared twice", p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}

// Load reads a manifest file, expanding environment variables before
// parsing.
func Load(filename string) (*Manifest, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", filename, err)
	}
	return Parse([]byte(os.ExpandEnv(string(data))))
}

// Parse decodes and validates manifest YAML.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("manifest validation failed: %w", err)
	}
	return &m, nil
}

// Registrar is the platform surface Apply writes through.
type Registrar interface {
	RegisterTaxonomy(tax *types.Taxonomy) error
	RegisterPostType(pt *types.PostType) error
}

// Result lists what Apply changed.
type Result struct {
	Taxonomies []string `json:"taxonomies" yaml:"taxonomies"`
	PostTypes  []string `json:"post_types" yaml:"post_types"`
}

// Apply registers the manifest's taxonomies, then its post types. Taxonomies
// that already exist are left alone; post types are re-registered so their
// labels and projections follow the manifest.
func (m *Manifest) Apply(r Registrar) (Result, error) {
	var res Result
	for _, t := range m.Taxonomies {
		err := r.RegisterTaxonomy(&types.Taxonomy{Name: t.Name, Label: t.Label})
		switch {
		case err == nil:
			res.Taxonomies = append(res.Taxonomies, t.Name)
		case errors.Is(err, types.ErrDuplicateType):
		default:
			return res, fmt.Errorf("taxonomy %s: %w", t.Name, err)
		}
	}
	for _, p := range m.PostTypes {
		if err := r.RegisterPostType(&types.PostType{Name: p.Name, Label: p.Label, AsTaxonomy: p.AsTaxonomy}); err != nil {
			return res, fmt.Errorf("post type %s: %w", p.Name, err)
		}
		res.PostTypes = append(res.PostTypes, p.Name)
	}
	return res, nil
}
