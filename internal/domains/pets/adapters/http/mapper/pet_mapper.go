package mapper

import (
	"time"

	petstypes "github.com/Apurer/go-gin-pets-api/internal/domains/pets/application/types"
	"github.com/Apurer/go-gin-pets-api/internal/domains/pets/domain"
)

// Group is the HTTP representation of a taxonomic group.
type Group struct {
	ID             int64     `json:"id"`
	ScientificName string    `json:"scientific_name"`
	CreatedAt      time.Time `json:"created_at"`
}

// Trait is the HTTP representation of a trait.
type Trait struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Pet is the HTTP representation returned by every pets endpoint.
type Pet struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Age    int     `json:"age"`
	Weight float64 `json:"weight"`
	Sex    string  `json:"sex"`
	Group  *Group  `json:"group"`
	Traits []Trait `json:"traits"`
}

// GroupPayload names the group of an inbound pet.
type GroupPayload struct {
	ScientificName *string `json:"scientific_name" validate:"required,notblank,max=50"`
}

// TraitPayload names a trait of an inbound pet.
type TraitPayload struct {
	Name *string `json:"name" validate:"required,notblank,max=20"`
}

// CreatePet is the POST body. Every field except sex is required; traits may be empty.
type CreatePet struct {
	Name   *string        `json:"name" validate:"required,notblank,max=50"`
	Age    *int           `json:"age" validate:"required,min=0"`
	Weight *float64       `json:"weight" validate:"required,min=0"`
	Sex    *string        `json:"sex" validate:"omitempty,oneof=MALE FEMALE NOT_INFORMED"`
	Group  *GroupPayload  `json:"group" validate:"required"`
	Traits []TraitPayload `json:"traits" validate:"required,dive"`
}

// PatchPet is the PATCH body. Absent and null fields are left untouched.
type PatchPet struct {
	Name   *string        `json:"name" validate:"omitempty,notblank,max=50"`
	Age    *int           `json:"age" validate:"omitempty,min=0"`
	Weight *float64       `json:"weight" validate:"omitempty,min=0"`
	Sex    *string        `json:"sex" validate:"omitempty,oneof=MALE FEMALE NOT_INFORMED"`
	Group  *GroupPayload  `json:"group" validate:"omitempty"`
	Traits []TraitPayload `json:"traits" validate:"omitempty,dive"`
}

// FromDomainPet maps a domain aggregate into a transport Pet.
func FromDomainPet(p *domain.Pet) Pet {
	traits := make([]Trait, 0, len(p.Traits))
	for _, t := range p.Traits {
		traits = append(traits, Trait{ID: t.ID, Name: t.Name, CreatedAt: t.CreatedAt})
	}
	var group *Group
	if p.Group != nil {
		group = &Group{ID: p.Group.ID, ScientificName: p.Group.ScientificName, CreatedAt: p.Group.CreatedAt}
	}
	return Pet{
		ID:     p.ID,
		Name:   p.Name,
		Age:    p.Age,
		Weight: p.Weight,
		Sex:    string(p.Sex),
		Group:  group,
		Traits: traits,
	}
}

// FromDomainPetList maps a slice of domain aggregates to transport Pets.
func FromDomainPetList(list []*domain.Pet) []Pet {
	resp := make([]Pet, 0, len(list))
	for _, p := range list {
		resp = append(resp, FromDomainPet(p))
	}
	return resp
}

// ToCreateInput converts a validated create payload into the application input.
func ToCreateInput(payload CreatePet, idempotencyKey string) petstypes.CreatePetInput {
	input := petstypes.CreatePetInput{
		Name:           deref(payload.Name),
		Sex:            deref(payload.Sex),
		Traits:         toTraitInputs(payload.Traits),
		IdempotencyKey: idempotencyKey,
	}
	if payload.Age != nil {
		input.Age = *payload.Age
	}
	if payload.Weight != nil {
		input.Weight = *payload.Weight
	}
	if payload.Group != nil {
		input.Group = petstypes.GroupInput{ScientificName: deref(payload.Group.ScientificName)}
	}
	return input
}

// ToUpdateInput converts a validated patch payload into the application input while preserving field presence.
func ToUpdateInput(id int64, payload PatchPet) petstypes.UpdatePetInput {
	input := petstypes.UpdatePetInput{
		ID:     id,
		Name:   payload.Name,
		Age:    payload.Age,
		Weight: payload.Weight,
		Sex:    payload.Sex,
	}
	if payload.Group != nil {
		input.Group = &petstypes.GroupInput{ScientificName: deref(payload.Group.ScientificName)}
	}
	if payload.Traits != nil {
		traits := toTraitInputs(payload.Traits)
		input.Traits = &traits
	}
	return input
}

func toTraitInputs(payload []TraitPayload) []petstypes.TraitInput {
	traits := make([]petstypes.TraitInput, 0, len(payload))
	for _, t := range payload {
		traits = append(traits, petstypes.TraitInput{Name: deref(t.Name)})
	}
	return traits
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
