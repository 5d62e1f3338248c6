package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-pets-api/internal/domains/pets/domain"
	"github.com/Apurer/go-gin-pets-api/internal/domains/pets/ports"
	"github.com/Apurer/go-gin-pets-api/internal/shared/pagination"
)

func seedPet(t *testing.T, store *Store, name string, traits ...string) *domain.Pet {
	t.Helper()
	ctx := context.Background()
	group, _, err := store.Groups().GetOrCreate(ctx, domain.Group{ScientificName: "Canis lupus"})
	require.NoError(t, err)
	pet, err := domain.NewPet(name, 1, 2.5, domain.SexMale)
	require.NoError(t, err)
	require.NoError(t, pet.AssignGroup(group))
	resolved := make([]domain.Trait, 0, len(traits))
	for _, n := range traits {
		trait, _, err := store.Traits().GetOrCreate(ctx, domain.Trait{Name: n})
		require.NoError(t, err)
		resolved = append(resolved, *trait)
	}
	pet.ReplaceTraits(resolved)
	saved, err := store.Pets().Create(ctx, pet)
	require.NoError(t, err)
	return saved
}

func TestGroupGetOrCreate_IsCaseInsensitive(t *testing.T) {
	store := NewStore()
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.WithClock(func() time.Time { return fixed })
	ctx := context.Background()

	first, created, err := store.Groups().GetOrCreate(ctx, domain.Group{ScientificName: "Felis catus"})
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, fixed, first.CreatedAt)

	second, created, err := store.Groups().GetOrCreate(ctx, domain.Group{ScientificName: "FELIS CATUS"})
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "Felis catus", second.ScientificName)

	found, err := store.Groups().FindByScientificName(ctx, " felis catus ")
	require.NoError(t, err)
	require.Equal(t, first.ID, found.ID)

	_, err = store.Groups().Create(ctx, domain.Group{ScientificName: "felis Catus"})
	require.ErrorIs(t, err, ports.ErrConflict)
}

func TestTraitLookups(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	created, err := store.Traits().Create(ctx, domain.Trait{Name: "Fluffy"})
	require.NoError(t, err)

	byName, err := store.Traits().FindByName(ctx, "fluffy")
	require.NoError(t, err)
	require.Equal(t, created.ID, byName.ID)

	_, err = store.Traits().GetByID(ctx, 99)
	require.ErrorIs(t, err, ports.ErrTraitNotFound)

	_, err = store.Traits().Create(ctx, domain.Trait{Name: "  "})
	require.ErrorIs(t, err, domain.ErrEmptyTraitName)
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.WithinTx(ctx, func(ctx context.Context, tx ports.Repositories) error {
		_, _, err := tx.Groups().GetOrCreate(ctx, domain.Group{ScientificName: "Mus musculus"})
		require.NoError(t, err)
		_, _, err = tx.Traits().GetOrCreate(ctx, domain.Trait{Name: "tiny"})
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = store.Groups().FindByScientificName(ctx, "Mus musculus")
	require.ErrorIs(t, err, ports.ErrGroupNotFound)
	_, err = store.Traits().FindByName(ctx, "tiny")
	require.ErrorIs(t, err, ports.ErrTraitNotFound)
}

func TestWithinTx_CommitsOnSuccess(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	err := store.WithinTx(ctx, func(ctx context.Context, tx ports.Repositories) error {
		_, _, err := tx.Groups().GetOrCreate(ctx, domain.Group{ScientificName: "Mus musculus"})
		return err
	})
	require.NoError(t, err)

	group, err := store.Groups().FindByScientificName(ctx, "mus MUSCULUS")
	require.NoError(t, err)
	require.Equal(t, int64(1), group.ID)
}

func TestPetCreate_RequiresPersistedReferences(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	pet, err := domain.NewPet("Rex", 1, 1, "")
	require.NoError(t, err)

	_, err = store.Pets().Create(ctx, pet)
	require.ErrorIs(t, err, domain.ErrMissingGroup)

	require.NoError(t, pet.AssignGroup(&domain.Group{ID: 7, ScientificName: "ghost"}))
	_, err = store.Pets().Create(ctx, pet)
	require.ErrorIs(t, err, ports.ErrGroupNotFound)
}

func TestPetList_FiltersAndPaginates(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	rex := seedPet(t, store, "Rex", "Fluffy")
	seedPet(t, store, "Spot", "short hair")
	tom := seedPet(t, store, "Tom", "extra FLUFFY", "loud")

	page, err := store.Pets().List(ctx, ports.PetFilter{TraitFragments: []string{"fluff"}}, pagination.Request{Number: 1, Size: 10})
	require.NoError(t, err)
	require.Equal(t, int64(2), page.Total)
	require.Len(t, page.Items, 2)
	require.Equal(t, rex.ID, page.Items[0].ID)
	require.Equal(t, tom.ID, page.Items[1].ID)

	page, err = store.Pets().List(ctx, ports.PetFilter{}, pagination.Request{Number: 2, Size: 2})
	require.NoError(t, err)
	require.Equal(t, int64(3), page.Total)
	require.Len(t, page.Items, 1)
	require.Equal(t, tom.ID, page.Items[0].ID)
	require.False(t, page.HasNext())

	_, err = store.Pets().List(ctx, ports.PetFilter{}, pagination.Request{Number: 3, Size: 2})
	require.ErrorIs(t, err, pagination.ErrInvalidPage)
}

func TestPetDelete_KeepsGroupsAndTraits(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	pet := seedPet(t, store, "Rex", "Fluffy")

	require.NoError(t, store.Pets().Delete(ctx, pet.ID))
	_, err := store.Pets().GetByID(ctx, pet.ID)
	require.ErrorIs(t, err, ports.ErrNotFound)
	require.ErrorIs(t, store.Pets().Delete(ctx, pet.ID), ports.ErrNotFound)

	_, err = store.Groups().GetByID(ctx, pet.Group.ID)
	require.NoError(t, err)
	_, err = store.Traits().GetByID(ctx, pet.Traits[0].ID)
	require.NoError(t, err)
}

func TestPetGet_ReturnsCopies(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	pet := seedPet(t, store, "Rex", "Fluffy")

	loaded, err := store.Pets().GetByID(ctx, pet.ID)
	require.NoError(t, err)
	loaded.Name = "changed"
	loaded.Traits[0].Name = "changed"

	again, err := store.Pets().GetByID(ctx, pet.ID)
	require.NoError(t, err)
	require.Equal(t, "Rex", again.Name)
	require.Equal(t, "Fluffy", again.Traits[0].Name)
}

func TestIdempotencyStore_Save(t *testing.T) {
	store := NewIdempotencyStore()
	ctx := context.Background()

	missing, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.Nil(t, missing)

	saved, err := store.Save(ctx, ports.IdempotencyRecord{Key: "k", RequestHash: "h1", PetID: 1})
	require.NoError(t, err)
	require.False(t, saved.CreatedAt.IsZero())

	again, err := store.Save(ctx, ports.IdempotencyRecord{Key: "k", RequestHash: "h1", PetID: 1})
	require.NoError(t, err)
	require.Equal(t, saved.CreatedAt, again.CreatedAt)

	existing, err := store.Save(ctx, ports.IdempotencyRecord{Key: "k", RequestHash: "h2", PetID: 2})
	require.ErrorIs(t, err, ports.ErrIdempotencyConflict)
	require.Equal(t, int64(1), existing.PetID)
}
