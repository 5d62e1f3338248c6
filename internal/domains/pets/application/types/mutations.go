package types

import "github.com/Apurer/go-gin-pets-api/internal/domains/pets/domain"

// GroupInput names the group a pet should belong to.
type GroupInput struct {
	ScientificName string
}

// TraitInput names a trait to attach to a pet.
type TraitInput struct {
	Name string
}

// CreatePetInput carries a complete pet representation.
type CreatePetInput struct {
	Name   string
	Age    int
	Weight float64
	// Sex is optional; empty selects NOT_INFORMED.
	Sex    string
	Group  GroupInput
	Traits []TraitInput
	// IdempotencyKey is optional; when set, retries with the same payload replay the first result.
	IdempotencyKey string
}

// UpdatePetInput carries a partial mutation. Nil fields are left untouched.
type UpdatePetInput struct {
	ID     int64
	Name   *string
	Age    *int
	Weight *float64
	Sex    *string
	Group  *GroupInput
	Traits *[]TraitInput
}

// PetIdentifier addresses a single pet.
type PetIdentifier struct {
	ID int64
}

// CreatePetResult reports the created (or replayed) pet plus the side effects of the call.
type CreatePetResult struct {
	Pet           *domain.Pet
	Replayed      bool
	GroupCreated  bool
	TraitsCreated int
}
