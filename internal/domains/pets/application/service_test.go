package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	petmemory "github.com/Apurer/go-gin-pets-api/internal/domains/pets/adapters/memory"
	pettypes "github.com/Apurer/go-gin-pets-api/internal/domains/pets/application/types"
	"github.com/Apurer/go-gin-pets-api/internal/domains/pets/domain"
	"github.com/Apurer/go-gin-pets-api/internal/domains/pets/ports"
	"github.com/Apurer/go-gin-pets-api/internal/shared/pagination"
)

func newCreateInput(name string, group string, traits ...string) pettypes.CreatePetInput {
	input := pettypes.CreatePetInput{
		Name:   name,
		Age:    3,
		Weight: 4.5,
		Group:  pettypes.GroupInput{ScientificName: group},
		Traits: []pettypes.TraitInput{},
	}
	for _, t := range traits {
		input.Traits = append(input.Traits, pettypes.TraitInput{Name: t})
	}
	return input
}

func TestCreatePet_Success(t *testing.T) {
	svc := NewService(petmemory.NewStore())

	result, err := svc.CreatePet(context.Background(), newCreateInput("Rex", "Canis lupus", "Fluffy", "loud"))
	require.NoError(t, err)
	require.NotNil(t, result.Pet)
	require.Equal(t, int64(1), result.Pet.ID)
	require.Equal(t, domain.SexNotInformed, result.Pet.Sex)
	require.Equal(t, "Canis lupus", result.Pet.Group.ScientificName)
	require.Equal(t, []string{"Fluffy", "loud"}, result.Pet.TraitNames())
	require.True(t, result.GroupCreated)
	require.Equal(t, 2, result.TraitsCreated)
	require.False(t, result.Replayed)
}

func TestCreatePet_ReusesGroupCaseInsensitively(t *testing.T) {
	svc := NewService(petmemory.NewStore())
	ctx := context.Background()

	first, err := svc.CreatePet(ctx, newCreateInput("Rex", "Canis lupus"))
	require.NoError(t, err)
	second, err := svc.CreatePet(ctx, newCreateInput("Fido", "CANIS LUPUS"))
	require.NoError(t, err)

	require.Equal(t, first.Pet.Group.ID, second.Pet.Group.ID)
	require.Equal(t, "Canis lupus", second.Pet.Group.ScientificName)
	require.False(t, second.GroupCreated)
}

func TestCreatePet_SharesTraitRows(t *testing.T) {
	svc := NewService(petmemory.NewStore())
	ctx := context.Background()

	first, err := svc.CreatePet(ctx, newCreateInput("Rex", "Canis lupus", "Fluffy"))
	require.NoError(t, err)
	second, err := svc.CreatePet(ctx, newCreateInput("Tom", "Felis catus", "fluffy", "FLUFFY"))
	require.NoError(t, err)

	require.Len(t, second.Pet.Traits, 1)
	require.Equal(t, first.Pet.Traits[0].ID, second.Pet.Traits[0].ID)
	require.Equal(t, "Fluffy", second.Pet.Traits[0].Name)
	require.Zero(t, second.TraitsCreated)
}

func TestCreatePet_ReportsEveryInvalidField(t *testing.T) {
	store := petmemory.NewStore()
	svc := NewService(store)

	input := pettypes.CreatePetInput{
		Name:   " ",
		Age:    -1,
		Weight: -2,
		Sex:    "UNKNOWN",
		Traits: []pettypes.TraitInput{{Name: "ok"}, {Name: ""}},
	}
	_, err := svc.CreatePet(context.Background(), input)
	require.ErrorIs(t, err, ErrInvalidInput)

	var validation *ValidationError
	require.True(t, errors.As(err, &validation))
	require.Equal(t, "This field may not be blank.", validation.Fields["name"])
	require.Contains(t, validation.Fields, "age")
	require.Contains(t, validation.Fields, "weight")
	require.Contains(t, validation.Fields, "sex")
	require.Contains(t, validation.Fields, "group.scientific_name")
	require.Contains(t, validation.Fields, "traits[1].name")
	require.NotContains(t, validation.Fields, "traits[0].name")

	// nothing was written
	_, err = store.Traits().FindByName(context.Background(), "ok")
	require.ErrorIs(t, err, ports.ErrTraitNotFound)
}

func TestGetPet_RoundTrip(t *testing.T) {
	svc := NewService(petmemory.NewStore())
	ctx := context.Background()

	input := newCreateInput("Rex", "Canis lupus", "Fluffy")
	input.Sex = string(domain.SexFemale)
	created, err := svc.CreatePet(ctx, input)
	require.NoError(t, err)

	loaded, err := svc.GetPet(ctx, pettypes.PetIdentifier{ID: created.Pet.ID})
	require.NoError(t, err)
	require.Equal(t, created.Pet, loaded)

	_, err = svc.GetPet(ctx, pettypes.PetIdentifier{ID: 404})
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestUpdatePet_OnlySuppliedFieldsChange(t *testing.T) {
	svc := NewService(petmemory.NewStore())
	ctx := context.Background()
	created, err := svc.CreatePet(ctx, newCreateInput("Rex", "Canis lupus", "Fluffy"))
	require.NoError(t, err)

	age := 7
	updated, err := svc.UpdatePet(ctx, pettypes.UpdatePetInput{ID: created.Pet.ID, Age: &age})
	require.NoError(t, err)

	expected := created.Pet.Clone()
	expected.Age = 7
	require.Equal(t, expected, updated)
}

func TestUpdatePet_EmptyTraitsIsNoop(t *testing.T) {
	svc := NewService(petmemory.NewStore())
	ctx := context.Background()
	created, err := svc.CreatePet(ctx, newCreateInput("Rex", "Canis lupus", "Fluffy"))
	require.NoError(t, err)

	empty := []pettypes.TraitInput{}
	updated, err := svc.UpdatePet(ctx, pettypes.UpdatePetInput{ID: created.Pet.ID, Traits: &empty})
	require.NoError(t, err)
	require.Equal(t, []string{"Fluffy"}, updated.TraitNames())
}

func TestUpdatePet_ReplacesTraitsAndGroup(t *testing.T) {
	store := petmemory.NewStore()
	svc := NewService(store)
	ctx := context.Background()
	created, err := svc.CreatePet(ctx, newCreateInput("Rex", "Canis lupus", "Fluffy"))
	require.NoError(t, err)

	traits := []pettypes.TraitInput{{Name: "calm"}, {Name: "Calm"}, {Name: "fluffy"}}
	group := pettypes.GroupInput{ScientificName: "Felis catus"}
	updated, err := svc.UpdatePet(ctx, pettypes.UpdatePetInput{ID: created.Pet.ID, Traits: &traits, Group: &group})
	require.NoError(t, err)
	require.Equal(t, []string{"calm", "Fluffy"}, updated.TraitNames())
	require.Equal(t, "Felis catus", updated.Group.ScientificName)

	// the previous group is left in place
	_, err = store.Groups().FindByScientificName(ctx, "canis lupus")
	require.NoError(t, err)
}

func TestUpdatePet_InvalidFieldsLeavePetUntouched(t *testing.T) {
	svc := NewService(petmemory.NewStore())
	ctx := context.Background()
	created, err := svc.CreatePet(ctx, newCreateInput("Rex", "Canis lupus"))
	require.NoError(t, err)

	name := "Max"
	weight := -1.0
	_, err = svc.UpdatePet(ctx, pettypes.UpdatePetInput{ID: created.Pet.ID, Name: &name, Weight: &weight})
	require.ErrorIs(t, err, ErrInvalidInput)

	loaded, err := svc.GetPet(ctx, pettypes.PetIdentifier{ID: created.Pet.ID})
	require.NoError(t, err)
	require.Equal(t, "Rex", loaded.Name)
}

func TestUpdatePet_UnknownID(t *testing.T) {
	svc := NewService(petmemory.NewStore())
	age := 1
	_, err := svc.UpdatePet(context.Background(), pettypes.UpdatePetInput{ID: 9, Age: &age})
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestDeletePet(t *testing.T) {
	svc := NewService(petmemory.NewStore())
	ctx := context.Background()
	created, err := svc.CreatePet(ctx, newCreateInput("Rex", "Canis lupus"))
	require.NoError(t, err)

	require.NoError(t, svc.DeletePet(ctx, pettypes.PetIdentifier{ID: created.Pet.ID}))
	require.ErrorIs(t, svc.DeletePet(ctx, pettypes.PetIdentifier{ID: created.Pet.ID}), ports.ErrNotFound)
}

func TestListPets_FilterAndPages(t *testing.T) {
	svc := NewService(petmemory.NewStore(), WithPagination(pagination.Policy{DefaultSize: 2, MaxSize: 5}))
	ctx := context.Background()
	for _, input := range []pettypes.CreatePetInput{
		newCreateInput("Rex", "Canis lupus", "Fluffy"),
		newCreateInput("Spot", "Canis lupus", "short"),
		newCreateInput("Tom", "Felis catus", "very fluffy"),
	} {
		_, err := svc.CreatePet(ctx, input)
		require.NoError(t, err)
	}

	page, err := svc.ListPets(ctx, pettypes.ListPetsInput{Traits: []string{"FLUFF"}})
	require.NoError(t, err)
	require.Equal(t, int64(2), page.Total)
	require.Equal(t, "Rex", page.Items[0].Name)
	require.Equal(t, "Tom", page.Items[1].Name)

	page, err = svc.ListPets(ctx, pettypes.ListPetsInput{Page: 2})
	require.NoError(t, err)
	require.Equal(t, int64(3), page.Total)
	require.Len(t, page.Items, 1)
	require.True(t, page.HasPrevious())

	page, err = svc.ListPets(ctx, pettypes.ListPetsInput{PageSize: 50})
	require.NoError(t, err)
	require.Equal(t, 5, page.Size)

	_, err = svc.ListPets(ctx, pettypes.ListPetsInput{Page: 3})
	require.ErrorIs(t, err, pagination.ErrInvalidPage)
	_, err = svc.ListPets(ctx, pettypes.ListPetsInput{Page: -1})
	require.ErrorIs(t, err, pagination.ErrInvalidPage)
}

func TestListPets_EmptyFirstPage(t *testing.T) {
	svc := NewService(petmemory.NewStore())
	page, err := svc.ListPets(context.Background(), pettypes.ListPetsInput{})
	require.NoError(t, err)
	require.Zero(t, page.Total)
	require.Empty(t, page.Items)
}

func TestCreatePet_IdempotentReplay(t *testing.T) {
	svc := NewService(petmemory.NewStore(), WithIdempotencyStore(petmemory.NewIdempotencyStore()))
	ctx := context.Background()

	input := newCreateInput("Rex", "Canis lupus", "Fluffy")
	input.IdempotencyKey = "abc"
	first, err := svc.CreatePet(ctx, input)
	require.NoError(t, err)
	require.False(t, first.Replayed)

	second, err := svc.CreatePet(ctx, input)
	require.NoError(t, err)
	require.True(t, second.Replayed)
	require.Equal(t, first.Pet.ID, second.Pet.ID)

	changed := input
	changed.Name = "Max"
	_, err = svc.CreatePet(ctx, changed)
	require.ErrorIs(t, err, ports.ErrIdempotencyConflict)

	page, err := svc.ListPets(ctx, pettypes.ListPetsInput{})
	require.NoError(t, err)
	require.Equal(t, int64(1), page.Total)
}

func TestCreatePet_IdempotentReplayOfDeletedPet(t *testing.T) {
	svc := NewService(petmemory.NewStore(), WithIdempotencyStore(petmemory.NewIdempotencyStore()))
	ctx := context.Background()

	input := newCreateInput("Rex", "Canis lupus")
	input.IdempotencyKey = "abc"
	first, err := svc.CreatePet(ctx, input)
	require.NoError(t, err)
	require.NoError(t, svc.DeletePet(ctx, pettypes.PetIdentifier{ID: first.Pet.ID}))

	_, err = svc.CreatePet(ctx, input)
	require.ErrorIs(t, err, ports.ErrIdempotencyConflict)
}

func TestFingerprintCreatePet_NormalisesInput(t *testing.T) {
	a := newCreateInput("Rex", "Canis lupus", "Fluffy")
	b := newCreateInput("Rex", " CANIS LUPUS ", "fluffy")
	b.Sex = string(domain.SexNotInformed)
	b.IdempotencyKey = "ignored"

	ha, err := FingerprintCreatePet(a)
	require.NoError(t, err)
	hb, err := FingerprintCreatePet(b)
	require.NoError(t, err)
	require.Equal(t, ha, hb)

	c := newCreateInput("Rex", "Canis lupus", "Fluffy")
	c.Age = 4
	hc, err := FingerprintCreatePet(c)
	require.NoError(t, err)
	require.NotEqual(t, ha, hc)
}
