package ports

import (
	"context"

	pettypes "github.com/Apurer/go-gin-pets-api/internal/domains/pets/application/types"
	"github.com/Apurer/go-gin-pets-api/internal/domains/pets/domain"
)

// Service defines the pets use cases exposed to adapters (inbound/driving port).
type Service interface {
	ListPets(ctx context.Context, input pettypes.ListPetsInput) (*pettypes.PetPage, error)
	CreatePet(ctx context.Context, input pettypes.CreatePetInput) (*pettypes.CreatePetResult, error)
	GetPet(ctx context.Context, input pettypes.PetIdentifier) (*domain.Pet, error)
	UpdatePet(ctx context.Context, input pettypes.UpdatePetInput) (*domain.Pet, error)
	DeletePet(ctx context.Context, input pettypes.PetIdentifier) error
}
