package ports

import (
	"context"

	pettypes "github.com/Apurer/go-gin-pets-api/internal/domains/pets/application/types"
)

// WorkflowOrchestrator exposes durable workflow operations required by the pets bounded context.
type WorkflowOrchestrator interface {
	CreatePet(ctx context.Context, input pettypes.CreatePetInput) (*pettypes.CreatePetResult, error)
}
