package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-gin-pets-api/internal/domains/pets/domain"
	"github.com/Apurer/go-gin-pets-api/internal/shared/pagination"
)

var (
	ErrNotFound      = errors.New("pet not found")
	ErrGroupNotFound = errors.New("group not found")
	ErrTraitNotFound = errors.New("trait not found")
	// ErrConflict is returned by Create when the natural key is already taken.
	ErrConflict = errors.New("natural key already exists")
)

// PetFilter narrows pet listings. Empty fields do not filter.
type PetFilter struct {
	// TraitFragments matches pets having a trait whose name contains any fragment, ignoring case.
	TraitFragments []string
}

// PetRepository persists pets together with their group reference and trait links.
// Groups and traits handed to Create/Update must already be persisted.
type PetRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Pet, error)
	Create(ctx context.Context, pet *domain.Pet) (*domain.Pet, error)
	Update(ctx context.Context, pet *domain.Pet) (*domain.Pet, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter PetFilter, page pagination.Request) (pagination.Page[*domain.Pet], error)
}

// GroupRepository stores groups keyed by case-insensitive scientific name.
type GroupRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Group, error)
	FindByScientificName(ctx context.Context, scientificName string) (*domain.Group, error)
	Create(ctx context.Context, group domain.Group) (*domain.Group, error)
	// GetOrCreate returns the stored group matching the natural key untouched, or creates it.
	// The boolean reports whether a row was created.
	GetOrCreate(ctx context.Context, group domain.Group) (*domain.Group, bool, error)
}

// TraitRepository stores traits keyed by case-insensitive name.
type TraitRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Trait, error)
	FindByName(ctx context.Context, name string) (*domain.Trait, error)
	Create(ctx context.Context, trait domain.Trait) (*domain.Trait, error)
	GetOrCreate(ctx context.Context, trait domain.Trait) (*domain.Trait, bool, error)
}

// Repositories groups the per-entity repositories sharing one unit of work.
type Repositories interface {
	Pets() PetRepository
	Groups() GroupRepository
	Traits() TraitRepository
}

// Store is the persistence boundary of the pets context.
type Store interface {
	Repositories
	// WithinTx runs fn in a single transaction. Returning an error rolls every write back.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Repositories) error) error
}
