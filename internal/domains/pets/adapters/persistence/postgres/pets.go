package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/Apurer/go-gin-pets-api/internal/domains/pets/domain"
	"github.com/Apurer/go-gin-pets-api/internal/domains/pets/ports"
	"github.com/Apurer/go-gin-pets-api/internal/shared/pagination"
)

type petRepository struct {
	db *gorm.DB
}

// GetByID fetches a pet by identifier along with its group and traits.
func (r *petRepository) GetByID(ctx context.Context, id int64) (*domain.Pet, error) {
	if err := ensureDB(r.db); err != nil {
		return nil, err
	}
	db := r.db.WithContext(ctx)
	var record petRecord
	if err := db.Preload("Group").First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	traits, err := loadTraits(db, []int64{record.ID})
	if err != nil {
		return nil, err
	}
	return record.toDomain(traits[record.ID]), nil
}

// Create inserts the pet row and its trait links.
func (r *petRepository) Create(ctx context.Context, pet *domain.Pet) (*domain.Pet, error) {
	if err := ensureDB(r.db); err != nil {
		return nil, err
	}
	if pet == nil {
		return nil, errors.New("cannot save nil pet")
	}
	if err := pet.Validate(); err != nil {
		return nil, err
	}
	record := newPetRecord(pet)
	record.ID = 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Group").Create(&record).Error; err != nil {
			return translateForeignKey(err, ports.ErrGroupNotFound)
		}
		return linkTraits(tx, record.ID, pet.Traits)
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, record.ID)
}

// Update overwrites the scalar columns, the group reference and the trait links.
func (r *petRepository) Update(ctx context.Context, pet *domain.Pet) (*domain.Pet, error) {
	if err := ensureDB(r.db); err != nil {
		return nil, err
	}
	if pet == nil {
		return nil, errors.New("cannot save nil pet")
	}
	if err := pet.Validate(); err != nil {
		return nil, err
	}
	record := newPetRecord(pet)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&petRecord{ID: record.ID}).
			Select("name", "age", "weight", "sex", "group_id", "updated_at").
			Updates(&record)
		if result.Error != nil {
			return translateForeignKey(result.Error, ports.ErrGroupNotFound)
		}
		if result.RowsAffected == 0 {
			return ports.ErrNotFound
		}
		if err := tx.Where("pet_id = ?", record.ID).Delete(&petTraitRecord{}).Error; err != nil {
			return err
		}
		return linkTraits(tx, record.ID, pet.Traits)
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, record.ID)
}

// Delete removes a pet and its trait links.
func (r *petRepository) Delete(ctx context.Context, id int64) error {
	if err := ensureDB(r.db); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("pet_id = ?", id).Delete(&petTraitRecord{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&petRecord{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ports.ErrNotFound
		}
		return nil
	})
}

// List returns one page of pets in id order. Trait fragments match with ILIKE ANY.
func (r *petRepository) List(ctx context.Context, filter ports.PetFilter, req pagination.Request) (pagination.Page[*domain.Pet], error) {
	if err := ensureDB(r.db); err != nil {
		return pagination.Page[*domain.Pet]{}, err
	}
	db := r.db.WithContext(ctx)
	scope := traitFilterScope(filter.TraitFragments)

	var total int64
	if err := db.Model(&petRecord{}).Scopes(scope).Count(&total).Error; err != nil {
		return pagination.Page[*domain.Pet]{}, err
	}
	if err := req.CheckBounds(total); err != nil {
		return pagination.Page[*domain.Pet]{}, err
	}

	var records []petRecord
	if err := db.Scopes(scope).
		Preload("Group").
		Order("pets.id ASC").
		Offset(req.Offset()).
		Limit(req.Size).
		Find(&records).Error; err != nil {
		return pagination.Page[*domain.Pet]{}, err
	}
	ids := make([]int64, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.ID)
	}
	traits, err := loadTraits(db, ids)
	if err != nil {
		return pagination.Page[*domain.Pet]{}, err
	}
	items := make([]*domain.Pet, 0, len(records))
	for i := range records {
		items = append(items, records[i].toDomain(traits[records[i].ID]))
	}
	return pagination.Page[*domain.Pet]{Items: items, Total: total, Number: req.Number, Size: req.Size}, nil
}

func traitFilterScope(fragments []string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if len(fragments) == 0 {
			return db
		}
		patterns := make([]string, 0, len(fragments))
		for _, fragment := range fragments {
			patterns = append(patterns, "%"+escapeLike(fragment)+"%")
		}
		return db.Where(
			"EXISTS (SELECT 1 FROM pet_traits pt JOIN traits t ON t.id = pt.trait_id WHERE pt.pet_id = pets.id AND t.name ILIKE ANY(?))",
			pq.Array(patterns),
		)
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(value string) string {
	return likeEscaper.Replace(value)
}

func linkTraits(tx *gorm.DB, petID int64, traits []domain.Trait) error {
	if len(traits) == 0 {
		return nil
	}
	links := make([]petTraitRecord, 0, len(traits))
	for i, trait := range traits {
		links = append(links, petTraitRecord{PetID: petID, TraitID: trait.ID, Position: i})
	}
	if err := tx.Omit("Pet", "Trait").Create(&links).Error; err != nil {
		return translateForeignKey(err, ports.ErrTraitNotFound)
	}
	return nil
}

type traitLinkRow struct {
	PetID int64
	traitRecord
}

func loadTraits(db *gorm.DB, petIDs []int64) (map[int64][]domain.Trait, error) {
	result := make(map[int64][]domain.Trait, len(petIDs))
	if len(petIDs) == 0 {
		return result, nil
	}
	var rows []traitLinkRow
	if err := db.Table("pet_traits AS pt").
		Select("pt.pet_id, t.id, t.name, t.name_key, t.created_at").
		Joins("JOIN traits t ON t.id = pt.trait_id").
		Where("pt.pet_id IN ?", petIDs).
		Order("pt.pet_id, pt.position").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		result[rows[i].PetID] = append(result[rows[i].PetID], rows[i].traitRecord.toDomain())
	}
	return result, nil
}

func translateForeignKey(err, target error) error {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return target
	}
	return err
}
