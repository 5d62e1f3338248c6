package pets

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/Apurer/go-gin-pets-api/internal/domains/pets/application"
	petstypes "github.com/Apurer/go-gin-pets-api/internal/domains/pets/application/types"
	petsports "github.com/Apurer/go-gin-pets-api/internal/domains/pets/ports"
)

const (
	// CreatePetActivityName resolves the group and traits of a pet and stores it.
	CreatePetActivityName = "pets.activities.CreatePet"

	// ErrTypeInvalidInput tags non-retryable validation failures. Details carry the field map.
	ErrTypeInvalidInput = "pets.InvalidInput"
	// ErrTypeIdempotencyConflict tags a reused Idempotency-Key with a different payload.
	ErrTypeIdempotencyConflict = "pets.IdempotencyConflict"
)

// Activities groups activities that operate on the pets bounded context.
type Activities struct {
	service petsports.Service
}

// NewActivities wires the pets service into the Temporal activities bundle.
func NewActivities(service petsports.Service) *Activities {
	return &Activities{service: service}
}

// CreatePet runs the create use case. Client errors are returned as non-retryable
// application errors so the workflow fails fast instead of retrying a bad request.
func (a *Activities) CreatePet(ctx context.Context, input petstypes.CreatePetInput) (*petstypes.CreatePetResult, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("pet create activity not initialized")
		return nil, errors.New("pet create activity not initialized")
	}
	logger.Info("CreatePet activity started", "group", input.Group.ScientificName)
	result, err := a.service.CreatePet(ctx, input)
	if err != nil {
		logger.Error("CreatePet activity failed", "error", err)
		return nil, classify(err)
	}
	logger.Info("CreatePet activity completed", "petId", result.Pet.ID, "replayed", result.Replayed)
	return result, nil
}

func classify(err error) error {
	var validation *application.ValidationError
	switch {
	case errors.As(err, &validation):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalidInput, nil, validation.Fields)
	case errors.Is(err, application.ErrInvalidInput):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalidInput, nil)
	case errors.Is(err, petsports.ErrIdempotencyConflict):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeIdempotencyConflict, nil)
	default:
		return err
	}
}
