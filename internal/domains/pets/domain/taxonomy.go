package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrEmptyScientificName = errors.New("scientific name is required")
	ErrEmptyTraitName      = errors.New("trait name is required")
)

// Group is the taxonomic classification a pet belongs to, identified by scientific name.
type Group struct {
	ID             int64
	ScientificName string
	CreatedAt      time.Time
}

// Trait is a descriptive tag shared between pets, identified by name.
type Trait struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// NaturalKey folds a group or trait name into its case-insensitive identity.
func NaturalKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func NewGroup(scientificName string) (*Group, error) {
	if strings.TrimSpace(scientificName) == "" {
		return nil, ErrEmptyScientificName
	}
	return &Group{ScientificName: scientificName}, nil
}

// Key returns the natural key used for get-or-create lookups.
func (g Group) Key() string {
	return NaturalKey(g.ScientificName)
}

func NewTrait(name string) (*Trait, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyTraitName
	}
	return &Trait{Name: name}, nil
}

// Key returns the natural key used for get-or-create lookups.
func (t Trait) Key() string {
	return NaturalKey(t.Name)
}
