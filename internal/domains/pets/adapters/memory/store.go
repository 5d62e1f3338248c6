package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Apurer/go-gin-pets-api/internal/domains/pets/domain"
	"github.com/Apurer/go-gin-pets-api/internal/domains/pets/ports"
	"github.com/Apurer/go-gin-pets-api/internal/shared/pagination"
)

var _ ports.Store = (*Store)(nil)

// Store is an in-memory implementation used for demos/tests.
type Store struct {
	mu    sync.RWMutex
	state *state
	now   func() time.Time
}

type state struct {
	pets      map[int64]*domain.Pet
	groups    map[int64]domain.Group
	traits    map[int64]domain.Trait
	groupKeys map[string]int64
	traitKeys map[string]int64
	nextPet   int64
	nextGroup int64
	nextTrait int64
}

func newState() *state {
	return &state{
		pets:      map[int64]*domain.Pet{},
		groups:    map[int64]domain.Group{},
		traits:    map[int64]domain.Trait{},
		groupKeys: map[string]int64{},
		traitKeys: map[string]int64{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for id, pet := range s.pets {
		c.pets[id] = pet.Clone()
	}
	for id, group := range s.groups {
		c.groups[id] = group
	}
	for id, trait := range s.traits {
		c.traits[id] = trait
	}
	for key, id := range s.groupKeys {
		c.groupKeys[key] = id
	}
	for key, id := range s.traitKeys {
		c.traitKeys[key] = id
	}
	c.nextPet, c.nextGroup, c.nextTrait = s.nextPet, s.nextGroup, s.nextTrait
	return c
}

// NewStore constructs an empty in-memory store.
func NewStore() *Store {
	return &Store{state: newState(), now: time.Now}
}

// WithClock overrides the time source for deterministic testing.
func (s *Store) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *Store) Pets() ports.PetRepository     { return &petRepo{view{s, nil}} }
func (s *Store) Groups() ports.GroupRepository { return &groupRepo{view{s, nil}} }
func (s *Store) Traits() ports.TraitRepository { return &traitRepo{view{s, nil}} }

// WithinTx runs fn against a private copy of the state and publishes it only when fn succeeds.
// Transactions are serialised.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := &txRepos{view{s, s.state.clone()}}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	s.state = tx.snapshot
	return nil
}

// view resolves the state a repository operates on. A nil snapshot means the
// shared state guarded by the store mutex.
type view struct {
	store    *Store
	snapshot *state
}

func (v view) read(fn func(*state) error) error {
	if v.snapshot != nil {
		return fn(v.snapshot)
	}
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()
	return fn(v.store.state)
}

func (v view) write(fn func(*state) error) error {
	if v.snapshot != nil {
		return fn(v.snapshot)
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	return fn(v.store.state)
}

type txRepos struct{ view }

func (t *txRepos) Pets() ports.PetRepository     { return &petRepo{t.view} }
func (t *txRepos) Groups() ports.GroupRepository { return &groupRepo{t.view} }
func (t *txRepos) Traits() ports.TraitRepository { return &traitRepo{t.view} }

type petRepo struct{ view }

func (r *petRepo) GetByID(_ context.Context, id int64) (*domain.Pet, error) {
	var found *domain.Pet
	err := r.read(func(st *state) error {
		pet, ok := st.pets[id]
		if !ok {
			return ports.ErrNotFound
		}
		found = st.hydrate(pet)
		return nil
	})
	return found, err
}

func (r *petRepo) Create(_ context.Context, pet *domain.Pet) (*domain.Pet, error) {
	if pet == nil {
		return nil, errors.New("cannot save nil pet")
	}
	var saved *domain.Pet
	err := r.write(func(st *state) error {
		if err := st.checkRefs(pet); err != nil {
			return err
		}
		st.nextPet++
		stored := pet.Clone()
		stored.ID = st.nextPet
		st.pets[stored.ID] = stored
		saved = st.hydrate(stored)
		return nil
	})
	return saved, err
}

func (r *petRepo) Update(_ context.Context, pet *domain.Pet) (*domain.Pet, error) {
	if pet == nil {
		return nil, errors.New("cannot save nil pet")
	}
	var saved *domain.Pet
	err := r.write(func(st *state) error {
		if _, ok := st.pets[pet.ID]; !ok {
			return ports.ErrNotFound
		}
		if err := st.checkRefs(pet); err != nil {
			return err
		}
		stored := pet.Clone()
		st.pets[stored.ID] = stored
		saved = st.hydrate(stored)
		return nil
	})
	return saved, err
}

func (r *petRepo) Delete(_ context.Context, id int64) error {
	return r.write(func(st *state) error {
		if _, ok := st.pets[id]; !ok {
			return ports.ErrNotFound
		}
		delete(st.pets, id)
		return nil
	})
}

func (r *petRepo) List(_ context.Context, filter ports.PetFilter, req pagination.Request) (pagination.Page[*domain.Pet], error) {
	var page pagination.Page[*domain.Pet]
	err := r.read(func(st *state) error {
		matches := make([]*domain.Pet, 0, len(st.pets))
		for _, stored := range st.pets {
			pet := st.hydrate(stored)
			if len(filter.TraitFragments) > 0 && !pet.HasTraitContaining(filter.TraitFragments...) {
				continue
			}
			matches = append(matches, pet)
		}
		sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
		var err error
		page, err = pagination.Slice(matches, req)
		return err
	})
	return page, err
}

// hydrate returns a copy of the pet with the current group and trait rows.
func (st *state) hydrate(pet *domain.Pet) *domain.Pet {
	out := pet.Clone()
	if out.Group != nil {
		if group, ok := st.groups[out.Group.ID]; ok {
			out.Group = &group
		}
	}
	for i, trait := range out.Traits {
		if stored, ok := st.traits[trait.ID]; ok {
			out.Traits[i] = stored
		}
	}
	return out
}

func (st *state) checkRefs(pet *domain.Pet) error {
	if pet.Group == nil {
		return domain.ErrMissingGroup
	}
	if _, ok := st.groups[pet.Group.ID]; !ok {
		return ports.ErrGroupNotFound
	}
	for _, trait := range pet.Traits {
		if _, ok := st.traits[trait.ID]; !ok {
			return ports.ErrTraitNotFound
		}
	}
	return nil
}

type groupRepo struct{ view }

func (r *groupRepo) GetByID(_ context.Context, id int64) (*domain.Group, error) {
	var found *domain.Group
	err := r.read(func(st *state) error {
		group, ok := st.groups[id]
		if !ok {
			return ports.ErrGroupNotFound
		}
		found = &group
		return nil
	})
	return found, err
}

func (r *groupRepo) FindByScientificName(_ context.Context, scientificName string) (*domain.Group, error) {
	var found *domain.Group
	err := r.read(func(st *state) error {
		id, ok := st.groupKeys[domain.NaturalKey(scientificName)]
		if !ok {
			return ports.ErrGroupNotFound
		}
		group := st.groups[id]
		found = &group
		return nil
	})
	return found, err
}

func (r *groupRepo) Create(_ context.Context, group domain.Group) (*domain.Group, error) {
	var created *domain.Group
	err := r.write(func(st *state) error {
		var err error
		created, err = st.insertGroup(group, r.store.now())
		return err
	})
	return created, err
}

func (r *groupRepo) GetOrCreate(_ context.Context, group domain.Group) (*domain.Group, bool, error) {
	var (
		result  *domain.Group
		created bool
	)
	err := r.write(func(st *state) error {
		if id, ok := st.groupKeys[group.Key()]; ok {
			existing := st.groups[id]
			result = &existing
			return nil
		}
		var err error
		result, err = st.insertGroup(group, r.store.now())
		created = err == nil
		return err
	})
	return result, created, err
}

func (st *state) insertGroup(group domain.Group, now time.Time) (*domain.Group, error) {
	if _, err := domain.NewGroup(group.ScientificName); err != nil {
		return nil, err
	}
	key := group.Key()
	if _, exists := st.groupKeys[key]; exists {
		return nil, ports.ErrConflict
	}
	st.nextGroup++
	group.ID = st.nextGroup
	group.CreatedAt = now
	st.groups[group.ID] = group
	st.groupKeys[key] = group.ID
	return &group, nil
}

type traitRepo struct{ view }

func (r *traitRepo) GetByID(_ context.Context, id int64) (*domain.Trait, error) {
	var found *domain.Trait
	err := r.read(func(st *state) error {
		trait, ok := st.traits[id]
		if !ok {
			return ports.ErrTraitNotFound
		}
		found = &trait
		return nil
	})
	return found, err
}

func (r *traitRepo) FindByName(_ context.Context, name string) (*domain.Trait, error) {
	var found *domain.Trait
	err := r.read(func(st *state) error {
		id, ok := st.traitKeys[domain.NaturalKey(name)]
		if !ok {
			return ports.ErrTraitNotFound
		}
		trait := st.traits[id]
		found = &trait
		return nil
	})
	return found, err
}

func (r *traitRepo) Create(_ context.Context, trait domain.Trait) (*domain.Trait, error) {
	var created *domain.Trait
	err := r.write(func(st *state) error {
		var err error
		created, err = st.insertTrait(trait, r.store.now())
		return err
	})
	return created, err
}

func (r *traitRepo) GetOrCreate(_ context.Context, trait domain.Trait) (*domain.Trait, bool, error) {
	var (
		result  *domain.Trait
		created bool
	)
	err := r.write(func(st *state) error {
		if id, ok := st.traitKeys[trait.Key()]; ok {
			existing := st.traits[id]
			result = &existing
			return nil
		}
		var err error
		result, err = st.insertTrait(trait, r.store.now())
		created = err == nil
		return err
	})
	return result, created, err
}

func (st *state) insertTrait(trait domain.Trait, now time.Time) (*domain.Trait, error) {
	if _, err := domain.NewTrait(trait.Name); err != nil {
		return nil, err
	}
	key := trait.Key()
	if _, exists := st.traitKeys[key]; exists {
		return nil, ports.ErrConflict
	}
	st.nextTrait++
	trait.ID = st.nextTrait
	trait.CreatedAt = now
	st.traits[trait.ID] = trait
	st.traitKeys[key] = trait.ID
	return &trait, nil
}
