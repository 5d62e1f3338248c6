package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-gin-pets-api/internal/domains/pets/domain"
	"github.com/Apurer/go-gin-pets-api/internal/domains/pets/ports"
)

type groupRepository struct {
	db *gorm.DB
}

func (r *groupRepository) GetByID(ctx context.Context, id int64) (*domain.Group, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *groupRepository) FindByScientificName(ctx context.Context, scientificName string) (*domain.Group, error) {
	return r.first(ctx, "scientific_name_key = ?", domain.NaturalKey(scientificName))
}

func (r *groupRepository) first(ctx context.Context, query string, arg any) (*domain.Group, error) {
	if err := ensureDB(r.db); err != nil {
		return nil, err
	}
	var record groupRecord
	if err := r.db.WithContext(ctx).First(&record, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrGroupNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *groupRepository) Create(ctx context.Context, group domain.Group) (*domain.Group, error) {
	if err := ensureDB(r.db); err != nil {
		return nil, err
	}
	if _, err := domain.NewGroup(group.ScientificName); err != nil {
		return nil, err
	}
	record := groupRecord{ScientificName: group.ScientificName, ScientificNameKey: group.Key()}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, translateUnique(err)
	}
	return record.toDomain(), nil
}

// GetOrCreate inserts the group unless its natural key exists, then re-reads the stored row.
// A concurrent insert of the same key blocks on the unique index and resolves to the winner's row.
func (r *groupRepository) GetOrCreate(ctx context.Context, group domain.Group) (*domain.Group, bool, error) {
	if err := ensureDB(r.db); err != nil {
		return nil, false, err
	}
	if _, err := domain.NewGroup(group.ScientificName); err != nil {
		return nil, false, err
	}
	record := groupRecord{ScientificName: group.ScientificName, ScientificNameKey: group.Key()}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "scientific_name_key"}}, DoNothing: true}).
		Create(&record)
	if result.Error != nil {
		return nil, false, result.Error
	}
	if result.RowsAffected == 1 {
		return record.toDomain(), true, nil
	}
	existing, err := r.FindByScientificName(ctx, group.ScientificName)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

type traitRepository struct {
	db *gorm.DB
}

func (r *traitRepository) GetByID(ctx context.Context, id int64) (*domain.Trait, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *traitRepository) FindByName(ctx context.Context, name string) (*domain.Trait, error) {
	return r.first(ctx, "name_key = ?", domain.NaturalKey(name))
}

func (r *traitRepository) first(ctx context.Context, query string, arg any) (*domain.Trait, error) {
	if err := ensureDB(r.db); err != nil {
		return nil, err
	}
	var record traitRecord
	if err := r.db.WithContext(ctx).First(&record, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrTraitNotFound
		}
		return nil, err
	}
	trait := record.toDomain()
	return &trait, nil
}

func (r *traitRepository) Create(ctx context.Context, trait domain.Trait) (*domain.Trait, error) {
	if err := ensureDB(r.db); err != nil {
		return nil, err
	}
	if _, err := domain.NewTrait(trait.Name); err != nil {
		return nil, err
	}
	record := traitRecord{Name: trait.Name, NameKey: trait.Key()}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, translateUnique(err)
	}
	created := record.toDomain()
	return &created, nil
}

func (r *traitRepository) GetOrCreate(ctx context.Context, trait domain.Trait) (*domain.Trait, bool, error) {
	if err := ensureDB(r.db); err != nil {
		return nil, false, err
	}
	if _, err := domain.NewTrait(trait.Name); err != nil {
		return nil, false, err
	}
	record := traitRecord{Name: trait.Name, NameKey: trait.Key()}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name_key"}}, DoNothing: true}).
		Create(&record)
	if result.Error != nil {
		return nil, false, result.Error
	}
	if result.RowsAffected == 1 {
		created := record.toDomain()
		return &created, true, nil
	}
	existing, err := r.FindByName(ctx, trait.Name)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func translateUnique(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ports.ErrConflict
	}
	return err
}
