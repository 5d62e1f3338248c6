package postgres

import (
	"time"

	"github.com/Apurer/go-gin-pets-api/internal/domains/pets/domain"
)

type groupRecord struct {
	ID                int64     `gorm:"primaryKey;column:id"`
	ScientificName    string    `gorm:"column:scientific_name;size:50;not null"`
	ScientificNameKey string    `gorm:"column:scientific_name_key;size:50;not null;uniqueIndex"`
	CreatedAt         time.Time `gorm:"column:created_at"`
}

func (groupRecord) TableName() string { return "groups" }

func (r *groupRecord) toDomain() *domain.Group {
	return &domain.Group{ID: r.ID, ScientificName: r.ScientificName, CreatedAt: r.CreatedAt}
}

type traitRecord struct {
	ID        int64     `gorm:"primaryKey;column:id"`
	Name      string    `gorm:"column:name;size:20;not null"`
	NameKey   string    `gorm:"column:name_key;size:20;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (traitRecord) TableName() string { return "traits" }

func (r *traitRecord) toDomain() domain.Trait {
	return domain.Trait{ID: r.ID, Name: r.Name, CreatedAt: r.CreatedAt}
}

type petRecord struct {
	ID        int64        `gorm:"primaryKey;column:id"`
	Name      string       `gorm:"column:name;size:50;not null"`
	Age       int          `gorm:"column:age;not null"`
	Weight    float64      `gorm:"column:weight;not null"`
	Sex       string       `gorm:"column:sex;type:varchar(16);not null;default:NOT_INFORMED"`
	GroupID   int64        `gorm:"column:group_id;not null;index"`
	Group     *groupRecord `gorm:"foreignKey:GroupID;constraint:OnDelete:RESTRICT"`
	CreatedAt time.Time    `gorm:"column:created_at"`
	UpdatedAt time.Time    `gorm:"column:updated_at"`
}

func (petRecord) TableName() string { return "pets" }

func newPetRecord(p *domain.Pet) petRecord {
	rec := petRecord{
		ID:     p.ID,
		Name:   p.Name,
		Age:    p.Age,
		Weight: p.Weight,
		Sex:    string(p.Sex),
	}
	if p.Group != nil {
		rec.GroupID = p.Group.ID
	}
	return rec
}

func (r *petRecord) toDomain(traits []domain.Trait) *domain.Pet {
	pet := &domain.Pet{
		ID:     r.ID,
		Name:   r.Name,
		Age:    r.Age,
		Weight: r.Weight,
		Sex:    domain.Sex(r.Sex),
		Traits: traits,
	}
	if pet.Traits == nil {
		pet.Traits = []domain.Trait{}
	}
	if r.Group != nil {
		pet.Group = r.Group.toDomain()
	}
	return pet
}

// petTraitRecord links pets to traits. Position keeps the order traits were supplied in.
type petTraitRecord struct {
	PetID    int64        `gorm:"primaryKey;column:pet_id"`
	TraitID  int64        `gorm:"primaryKey;column:trait_id;index"`
	Position int          `gorm:"column:position;not null"`
	Pet      *petRecord   `gorm:"foreignKey:PetID;constraint:OnDelete:CASCADE"`
	Trait    *traitRecord `gorm:"foreignKey:TraitID;constraint:OnDelete:RESTRICT"`
}

func (petTraitRecord) TableName() string { return "pet_traits" }

// Models lists the GORM models owned by the pets adapter in dependency order.
func Models() []any {
	return []any{&groupRecord{}, &traitRecord{}, &petRecord{}, &petTraitRecord{}, &idempotencyRecord{}}
}
