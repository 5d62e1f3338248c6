package types

import (
	"github.com/Apurer/go-gin-pets-api/internal/domains/pets/domain"
	"github.com/Apurer/go-gin-pets-api/internal/shared/pagination"
)

// ListPetsInput selects a page of pets, optionally filtered by trait name fragments.
type ListPetsInput struct {
	Traits   []string
	Page     int
	PageSize int
}

// PetPage is one page of pets in id order.
type PetPage = pagination.Page[*domain.Pet]
