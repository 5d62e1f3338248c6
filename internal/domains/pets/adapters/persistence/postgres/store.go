package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Apurer/go-gin-pets-api/internal/domains/pets/ports"
)

var _ ports.Store = (*Store)(nil)

// Store persists the pets context in PostgreSQL using GORM-mapped tables.
// The caller owns the DB lifecycle and the schema (see Migrate).
type Store struct {
	db *gorm.DB
}

// NewStore wires a PostgreSQL-backed store.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the tables used by the store.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("postgres store not configured")
	}
	return db.WithContext(ctx).AutoMigrate(Models()...)
}

func (s *Store) Pets() ports.PetRepository     { return &petRepository{db: s.db} }
func (s *Store) Groups() ports.GroupRepository { return &groupRepository{db: s.db} }
func (s *Store) Traits() ports.TraitRepository { return &traitRepository{db: s.db} }

// WithinTx runs fn inside a database transaction committed only when fn returns nil.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.Repositories) error) error {
	if s == nil || s.db == nil {
		return errors.New("postgres store not configured")
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, txRepositories{db: tx})
	})
}

type txRepositories struct {
	db *gorm.DB
}

func (t txRepositories) Pets() ports.PetRepository     { return &petRepository{db: t.db} }
func (t txRepositories) Groups() ports.GroupRepository { return &groupRepository{db: t.db} }
func (t txRepositories) Traits() ports.TraitRepository { return &traitRepository{db: t.db} }

func ensureDB(db *gorm.DB) error {
	if db == nil {
		return errors.New("postgres store not configured")
	}
	return nil
}
