package pets

import (
	"go.temporal.io/sdk/workflow"

	petstypes "github.com/Apurer/go-gin-pets-api/internal/domains/pets/application/types"
	"github.com/Apurer/go-gin-pets-api/internal/platform/temporal/sequences"
)

const (
	// PetCreationWorkflowName is the public identifier for registering the workflow.
	PetCreationWorkflowName = "pets.workflows.Creation"
	// PetCreationTaskQueue is the queue consumed by the worker processing pet workflows.
	PetCreationTaskQueue = "PET_CREATION"
)

// PetCreationWorkflowInput captures the payload required to create a pet.
type PetCreationWorkflowInput struct {
	Command petstypes.CreatePetInput
	TraceID string
}

// PetCreationWorkflow creates a pet together with its group and traits.
func PetCreationWorkflow(ctx workflow.Context, input PetCreationWorkflowInput) (*petstypes.CreatePetResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("PetCreationWorkflow started", withTraceID(input.TraceID)...)
	result, err := sequences.RunPetCreationSequence(ctx, input.Command)
	if err != nil {
		logger.Error("PetCreationWorkflow failed", withTraceID(input.TraceID, "error", err)...)
		return nil, err
	}
	if result.Pet != nil {
		logger.Info("PetCreationWorkflow completed", withTraceID(input.TraceID, "petId", result.Pet.ID)...)
	}
	return result, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
