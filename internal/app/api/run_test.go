package api

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	petmemory "github.com/Apurer/go-gin-pets-api/internal/domains/pets/adapters/memory"
	petsworkflows "github.com/Apurer/go-gin-pets-api/internal/domains/pets/adapters/workflows"
	"github.com/Apurer/go-gin-pets-api/internal/domains/pets/application"
	platformobservability "github.com/Apurer/go-gin-pets-api/internal/platform/observability"
)

func TestSelectPetWorkflows_InlineForUnsharedStore(t *testing.T) {
	instruments := &platformobservability.Instruments{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	service := application.NewService(petmemory.NewStore())

	// Temporal is enabled and would be dialled if the store were shared
	cfg := Config{TemporalAddress: "127.0.0.1:1", TemporalNamespace: "default"}
	workflows, closeWorkflows := selectPetWorkflows(cfg, false, service, instruments)
	defer closeWorkflows()
	assert.IsType(t, &petsworkflows.InlinePetWorkflows{}, workflows)
}

func TestSelectPetWorkflows_InlineWhenTemporalDisabled(t *testing.T) {
	instruments := &platformobservability.Instruments{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	service := application.NewService(petmemory.NewStore())

	workflows, closeWorkflows := selectPetWorkflows(Config{TemporalDisabled: true}, true, service, instruments)
	defer closeWorkflows()
	assert.IsType(t, &petsworkflows.InlinePetWorkflows{}, workflows)
}
