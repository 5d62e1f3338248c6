package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	types "github.com/Apurer/go-gin-pets-api/internal/domains/pets/application/types"
	"github.com/Apurer/go-gin-pets-api/internal/domains/pets/domain"
	"github.com/Apurer/go-gin-pets-api/internal/domains/pets/ports"
	"github.com/Apurer/go-gin-pets-api/internal/shared/pagination"
)

// Service orchestrates the pets bounded context use cases.
type Service struct {
	store       ports.Store
	idempotency ports.IdempotencyStore
	pages       pagination.Policy
}

// Option customises the service.
type Option func(*Service)

// WithIdempotencyStore enables Idempotency-Key handling on CreatePet.
func WithIdempotencyStore(store ports.IdempotencyStore) Option {
	return func(s *Service) {
		s.idempotency = store
	}
}

// WithPagination overrides the page size policy used by ListPets.
func WithPagination(policy pagination.Policy) Option {
	return func(s *Service) {
		s.pages = policy
	}
}

// NewService wires the pets service with its dependencies.
func NewService(store ports.Store, opts ...Option) *Service {
	s := &Service{store: store, pages: pagination.DefaultPolicy()}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// ListPets returns one page of pets, optionally restricted to matching trait names.
func (s *Service) ListPets(ctx context.Context, input types.ListPetsInput) (*types.PetPage, error) {
	req, err := s.pages.Resolve(input.Page, input.PageSize)
	if err != nil {
		return nil, err
	}
	filter := ports.PetFilter{}
	for _, fragment := range input.Traits {
		if strings.TrimSpace(fragment) == "" {
			continue
		}
		filter.TraitFragments = append(filter.TraitFragments, fragment)
	}
	page, err := s.store.Pets().List(ctx, filter, req)
	if err != nil {
		return nil, mapError(err)
	}
	return &page, nil
}

// CreatePet validates the full payload, resolves the group and traits, and stores the pet.
func (s *Service) CreatePet(ctx context.Context, input types.CreatePetInput) (*types.CreatePetResult, error) {
	if key := strings.TrimSpace(input.IdempotencyKey); key != "" && s.idempotency != nil {
		return s.createIdempotent(ctx, key, input)
	}
	return s.createPet(ctx, input)
}

func (s *Service) createPet(ctx context.Context, input types.CreatePetInput) (*types.CreatePetResult, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}
	pet, err := domain.NewPet(input.Name, input.Age, input.Weight, domain.Sex(input.Sex))
	if err != nil {
		return nil, mapError(err)
	}
	template := domain.Group{ScientificName: input.Group.ScientificName}
	traits := traitTemplates(input.Traits)

	result := &types.CreatePetResult{}
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Repositories) error {
		group, created, err := tx.Groups().GetOrCreate(ctx, template)
		if err != nil {
			return fmt.Errorf("resolve group: %w", err)
		}
		result.GroupCreated = created
		if err := pet.AssignGroup(group); err != nil {
			return err
		}
		resolved, createdTraits, err := resolveTraits(ctx, tx.Traits(), traits)
		if err != nil {
			return err
		}
		result.TraitsCreated = createdTraits
		pet.ReplaceTraits(resolved)
		saved, err := tx.Pets().Create(ctx, pet)
		if err != nil {
			return err
		}
		result.Pet = saved
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

func (s *Service) createIdempotent(ctx context.Context, key string, input types.CreatePetInput) (*types.CreatePetResult, error) {
	hash, err := FingerprintCreatePet(input)
	if err != nil {
		return nil, err
	}
	existing, err := s.idempotency.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return s.replay(ctx, existing, hash)
	}
	result, err := s.createPet(ctx, input)
	if err != nil {
		return nil, err
	}
	stored, err := s.idempotency.Save(ctx, ports.IdempotencyRecord{Key: key, RequestHash: hash, PetID: result.Pet.ID})
	if err != nil {
		if errors.Is(err, ports.ErrIdempotencyConflict) && stored != nil {
			// a concurrent request with the same key won the race
			return s.replay(ctx, stored, hash)
		}
		return nil, err
	}
	return result, nil
}

func (s *Service) replay(ctx context.Context, record *ports.IdempotencyRecord, hash string) (*types.CreatePetResult, error) {
	if record.RequestHash != hash {
		return nil, ports.ErrIdempotencyConflict
	}
	pet, err := s.store.Pets().GetByID(ctx, record.PetID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, fmt.Errorf("%w: pet %d created with this key no longer exists", ports.ErrIdempotencyConflict, record.PetID)
		}
		return nil, err
	}
	return &types.CreatePetResult{Pet: pet, Replayed: true}, nil
}

// GetPet loads a single pet.
func (s *Service) GetPet(ctx context.Context, input types.PetIdentifier) (*domain.Pet, error) {
	pet, err := s.store.Pets().GetByID(ctx, input.ID)
	if err != nil {
		return nil, mapError(err)
	}
	return pet, nil
}

// UpdatePet applies the supplied fields only. A supplied group is resolved and reassigned;
// a supplied non-empty trait list replaces the whole set, an empty one is ignored.
func (s *Service) UpdatePet(ctx context.Context, input types.UpdatePetInput) (*domain.Pet, error) {
	if err := validateUpdate(input); err != nil {
		return nil, err
	}
	var updated *domain.Pet
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Repositories) error {
		pet, err := tx.Pets().GetByID(ctx, input.ID)
		if err != nil {
			return err
		}
		if err := applyScalars(pet, input); err != nil {
			return err
		}
		if input.Group != nil {
			group, _, err := tx.Groups().GetOrCreate(ctx, domain.Group{ScientificName: input.Group.ScientificName})
			if err != nil {
				return fmt.Errorf("resolve group: %w", err)
			}
			if err := pet.AssignGroup(group); err != nil {
				return err
			}
		}
		if input.Traits != nil && len(*input.Traits) > 0 {
			resolved, _, err := resolveTraits(ctx, tx.Traits(), traitTemplates(*input.Traits))
			if err != nil {
				return err
			}
			pet.ReplaceTraits(resolved)
		}
		saved, err := tx.Pets().Update(ctx, pet)
		if err != nil {
			return err
		}
		updated = saved
		return nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	return updated, nil
}

// DeletePet removes a pet and its trait links. Groups and traits stay.
func (s *Service) DeletePet(ctx context.Context, input types.PetIdentifier) error {
	if err := s.store.Pets().Delete(ctx, input.ID); err != nil {
		return mapError(err)
	}
	return nil
}

func validateCreate(input types.CreatePetInput) error {
	fields := fieldErrors{}
	if strings.TrimSpace(input.Name) == "" {
		fields.add("name", domain.ErrEmptyName)
	}
	if input.Age < 0 {
		fields.add("age", domain.ErrInvalidAge)
	}
	if input.Weight < 0 {
		fields.add("weight", domain.ErrInvalidWeight)
	}
	if _, err := domain.ParseSex(input.Sex); err != nil {
		fields.add("sex", err)
	}
	if _, err := domain.NewGroup(input.Group.ScientificName); err != nil {
		fields.add("group.scientific_name", err)
	}
	validateTraits(fields, input.Traits)
	return fields.err()
}

func validateUpdate(input types.UpdatePetInput) error {
	fields := fieldErrors{}
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		fields.add("name", domain.ErrEmptyName)
	}
	if input.Age != nil && *input.Age < 0 {
		fields.add("age", domain.ErrInvalidAge)
	}
	if input.Weight != nil && *input.Weight < 0 {
		fields.add("weight", domain.ErrInvalidWeight)
	}
	if input.Sex != nil {
		if _, err := domain.ParseSex(*input.Sex); err != nil || *input.Sex == "" {
			fields.add("sex", domain.ErrInvalidSex)
		}
	}
	if input.Group != nil {
		if _, err := domain.NewGroup(input.Group.ScientificName); err != nil {
			fields.add("group.scientific_name", err)
		}
	}
	if input.Traits != nil {
		validateTraits(fields, *input.Traits)
	}
	return fields.err()
}

func validateTraits(fields fieldErrors, traits []types.TraitInput) {
	for i, t := range traits {
		if _, err := domain.NewTrait(t.Name); err != nil {
			fields.add(fmt.Sprintf("traits[%d].name", i), err)
		}
	}
}

func applyScalars(pet *domain.Pet, input types.UpdatePetInput) error {
	if input.Name != nil {
		if err := pet.Rename(*input.Name); err != nil {
			return err
		}
	}
	if input.Age != nil {
		if err := pet.SetAge(*input.Age); err != nil {
			return err
		}
	}
	if input.Weight != nil {
		if err := pet.SetWeight(*input.Weight); err != nil {
			return err
		}
	}
	if input.Sex != nil {
		if err := pet.SetSex(domain.Sex(*input.Sex)); err != nil {
			return err
		}
	}
	return nil
}

func traitTemplates(inputs []types.TraitInput) []domain.Trait {
	traits := make([]domain.Trait, 0, len(inputs))
	for _, t := range inputs {
		traits = append(traits, domain.Trait{Name: t.Name})
	}
	return traits
}

// resolveTraits get-or-creates every trait once per natural key, preserving input order.
func resolveTraits(ctx context.Context, repo ports.TraitRepository, templates []domain.Trait) ([]domain.Trait, int, error) {
	resolved := make([]domain.Trait, 0, len(templates))
	seen := make(map[string]struct{}, len(templates))
	created := 0
	for _, template := range templates {
		key := template.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		trait, isNew, err := repo.GetOrCreate(ctx, template)
		if err != nil {
			return nil, 0, fmt.Errorf("resolve trait %q: %w", template.Name, err)
		}
		if isNew {
			created++
		}
		resolved = append(resolved, *trait)
	}
	return resolved, created, nil
}

var _ ports.Service = (*Service)(nil)
