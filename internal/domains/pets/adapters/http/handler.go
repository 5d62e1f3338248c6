package http

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	pethttpmapper "github.com/Apurer/go-gin-pets-api/internal/domains/pets/adapters/http/mapper"
	petstypes "github.com/Apurer/go-gin-pets-api/internal/domains/pets/application/types"
	petsports "github.com/Apurer/go-gin-pets-api/internal/domains/pets/ports"
	"github.com/Apurer/go-gin-pets-api/internal/shared/pagination"
	sharederrors "github.com/Apurer/go-gin-pets-api/internal/shared/errors"
)

const (
	// HeaderIdempotencyKey lets clients retry POST /pets safely.
	HeaderIdempotencyKey = "Idempotency-Key"
	// HeaderIdempotentReplayed marks a response served from a previous request with the same key.
	HeaderIdempotentReplayed = "Idempotent-Replayed"
)

// PetAPI wires HTTP transport with the pets bounded context service and workflows.
type PetAPI struct {
	service   petsports.Service
	workflows petsports.WorkflowOrchestrator
	responder *sharederrors.ChainedResponder
}

// NewPetAPI creates a PetAPI backed by the provided service. When workflows is nil,
// creation calls the service directly.
func NewPetAPI(service petsports.Service, workflows petsports.WorkflowOrchestrator, responder *sharederrors.Responder) *PetAPI {
	return &PetAPI{
		service:   service,
		workflows: workflows,
		responder: sharederrors.NewChainedResponder(responder, ProblemFromError),
	}
}

// RegisterRoutes mounts the pets endpoints.
func (api *PetAPI) RegisterRoutes(r gin.IRouter) {
	pets := r.Group("/pets")
	pets.GET("", api.ListPets)
	pets.POST("", api.CreatePet)
	pets.GET("/:id", api.GetPet)
	pets.PATCH("/:id", api.UpdatePet)
	pets.DELETE("/:id", api.DeletePet)
}

// Get /pets
// Lists pets page by page, optionally filtered by trait name.
func (api *PetAPI) ListPets(c *gin.Context) {
	number, err := parsePage(c.Query("page"))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	size, _ := strconv.Atoi(c.Query("page_size"))
	input := petstypes.ListPetsInput{
		Traits:   c.QueryArray("trait"),
		Page:     number,
		PageSize: size,
	}
	page, err := api.service.ListPets(c.Request.Context(), input)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pethttpmapper.FromPetPage(*page, absoluteURL(c.Request)))
}

// Post /pets
// Creates a pet, resolving its group and traits by name.
func (api *PetAPI) CreatePet(c *gin.Context) {
	var payload pethttpmapper.CreatePet
	if !api.bind(c, &payload) {
		return
	}
	payload.Normalize()
	if fields := pethttpmapper.Validate(&payload); fields != nil {
		api.responder.ValidationFailed(c, fields)
		return
	}
	input := pethttpmapper.ToCreateInput(payload, strings.TrimSpace(c.GetHeader(HeaderIdempotencyKey)))
	result, err := api.createPet(c.Request.Context(), input)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	if result.Replayed {
		c.Header(HeaderIdempotentReplayed, "true")
	}
	c.JSON(http.StatusCreated, pethttpmapper.FromDomainPet(result.Pet))
}

func (api *PetAPI) createPet(ctx context.Context, input petstypes.CreatePetInput) (*petstypes.CreatePetResult, error) {
	if api.workflows != nil {
		return api.workflows.CreatePet(ctx, input)
	}
	return api.service.CreatePet(ctx, input)
}

// Get /pets/:id
// Find pet by ID
func (api *PetAPI) GetPet(c *gin.Context) {
	id, ok := api.parseIDParam(c)
	if !ok {
		return
	}
	pet, err := api.service.GetPet(c.Request.Context(), petstypes.PetIdentifier{ID: id})
	if err != nil {
		api.respondPetError(c, id, err)
		return
	}
	c.JSON(http.StatusOK, pethttpmapper.FromDomainPet(pet))
}

// Patch /pets/:id
// Partially updates a pet
func (api *PetAPI) UpdatePet(c *gin.Context) {
	id, ok := api.parseIDParam(c)
	if !ok {
		return
	}
	var payload pethttpmapper.PatchPet
	if !api.bind(c, &payload) {
		return
	}
	payload.Normalize()
	if fields := pethttpmapper.Validate(&payload); fields != nil {
		api.responder.ValidationFailed(c, fields)
		return
	}
	pet, err := api.service.UpdatePet(c.Request.Context(), pethttpmapper.ToUpdateInput(id, payload))
	if err != nil {
		api.respondPetError(c, id, err)
		return
	}
	c.JSON(http.StatusOK, pethttpmapper.FromDomainPet(pet))
}

// Delete /pets/:id
// Deletes a pet
func (api *PetAPI) DeletePet(c *gin.Context) {
	id, ok := api.parseIDParam(c)
	if !ok {
		return
	}
	if err := api.service.DeletePet(c.Request.Context(), petstypes.PetIdentifier{ID: id}); err != nil {
		api.respondPetError(c, id, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// bind decodes the JSON body into payload, answering 400 itself on failure.
func (api *PetAPI) bind(c *gin.Context, payload any) bool {
	if err := c.ShouldBindBodyWith(payload, binding.JSON); err != nil {
		body, _ := c.Get(gin.BodyBytesKey)
		raw, _ := body.([]byte)
		fields, malformed := pethttpmapper.DecodeError(err, raw)
		if malformed != nil {
			api.responder.BadRequest(c, malformed.Error())
			return false
		}
		api.responder.ValidationFailed(c, fields)
		return false
	}
	return true
}

// parseIDParam answers 400 for ids that are not integers. Integers no pet can have,
// such as 0 or values past int64, answer 404 like any other unknown id.
func (api *PetAPI) parseIDParam(c *gin.Context) (int64, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		api.responder.BadRequest(c, "pet id must be an integer")
		return 0, false
	}
	if err != nil || id <= 0 {
		api.responder.NotFound(c, "pet", raw)
		return 0, false
	}
	return id, true
}

func (api *PetAPI) respondPetError(c *gin.Context, id int64, err error) {
	if errors.Is(err, petsports.ErrNotFound) {
		api.responder.NotFound(c, "pet", id)
		return
	}
	api.responder.RespondError(c, err)
}

// parsePage accepts an absent page parameter as page 1 and rejects anything that is not a positive integer.
func parsePage(raw string) (int, error) {
	if raw == "" {
		return 1, nil
	}
	number, err := strconv.Atoi(raw)
	if err != nil || number < 1 {
		return 0, pagination.ErrInvalidPage
	}
	return number, nil
}

func absoluteURL(r *http.Request) *url.URL {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if forwarded := r.Header.Get("X-Forwarded-Proto"); forwarded != "" {
		scheme = forwarded
	}
	return &url.URL{Scheme: scheme, Host: r.Host, Path: r.URL.Path, RawQuery: r.URL.RawQuery}
}
