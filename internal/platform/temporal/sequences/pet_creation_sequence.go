package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	petstypes "github.com/Apurer/go-gin-pets-api/internal/domains/pets/application/types"
	petactivities "github.com/Apurer/go-gin-pets-api/internal/platform/temporal/activities/pets"
)

// RunPetCreationSequence executes the activities needed to create a pet.
func RunPetCreationSequence(ctx workflow.Context, input petstypes.CreatePetInput) (*petstypes.CreatePetResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("pet creation sequence started", "group", input.Group.ScientificName)
	options := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
			NonRetryableErrorTypes: []string{
				petactivities.ErrTypeInvalidInput,
				petactivities.ErrTypeIdempotencyConflict,
			},
		},
	}

	var result petstypes.CreatePetResult
	err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, options), petactivities.CreatePetActivityName, input).Get(ctx, &result)
	if err != nil {
		logger.Error("pet creation sequence failed", "error", err)
		return nil, err
	}
	if result.Pet != nil {
		logger.Info("pet creation sequence persisted", "petId", result.Pet.ID)
	}
	return &result, nil
}
