package domain

import (
	"errors"
	"strings"
)

// Sex enumerates the values accepted for a pet's sex.
type Sex string

const (
	SexMale        Sex = "MALE"
	SexFemale      Sex = "FEMALE"
	SexNotInformed Sex = "NOT_INFORMED"
)

// SexChoices lists the accepted sex values in presentation order.
var SexChoices = []Sex{SexMale, SexFemale, SexNotInformed}

// Pet represents the aggregate managed by the pets bounded context.
type Pet struct {
	ID     int64
	Name   string
	Age    int
	Weight float64
	Sex    Sex
	Group  *Group
	Traits []Trait
}

var (
	ErrEmptyName     = errors.New("pet name is required")
	ErrInvalidAge    = errors.New("age must be greater or equal to zero")
	ErrInvalidWeight = errors.New("weight must be greater or equal to zero")
	ErrInvalidSex    = errors.New("sex is not a valid choice")
	ErrMissingGroup  = errors.New("pet must belong to a group")
)

// ParseSex validates a raw value against the known choices. Empty input yields the default.
func ParseSex(value string) (Sex, error) {
	if value == "" {
		return SexNotInformed, nil
	}
	for _, choice := range SexChoices {
		if Sex(value) == choice {
			return choice, nil
		}
	}
	return "", ErrInvalidSex
}

// NewPet validates the scalar invariants and builds a new Pet aggregate without group or traits.
func NewPet(name string, age int, weight float64, sex Sex) (*Pet, error) {
	p := &Pet{}
	if err := p.Rename(name); err != nil {
		return nil, err
	}
	if err := p.SetAge(age); err != nil {
		return nil, err
	}
	if err := p.SetWeight(weight); err != nil {
		return nil, err
	}
	if sex == "" {
		sex = SexNotInformed
	}
	if err := p.SetSex(sex); err != nil {
		return nil, err
	}
	return p, nil
}

// Rename mutates the pet name ensuring the invariant.
func (p *Pet) Rename(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	p.Name = name
	return nil
}

func (p *Pet) SetAge(age int) error {
	if age < 0 {
		return ErrInvalidAge
	}
	p.Age = age
	return nil
}

func (p *Pet) SetWeight(weight float64) error {
	if weight < 0 {
		return ErrInvalidWeight
	}
	p.Weight = weight
	return nil
}

func (p *Pet) SetSex(sex Sex) error {
	parsed, err := ParseSex(string(sex))
	if err != nil {
		return err
	}
	p.Sex = parsed
	return nil
}

// AssignGroup points the pet at a resolved group. The previous group is left as is.
func (p *Pet) AssignGroup(group *Group) error {
	if group == nil {
		return ErrMissingGroup
	}
	copy := *group
	p.Group = &copy
	return nil
}

// ReplaceTraits swaps the whole trait set, dropping duplicate identities.
// Traits with an ID are compared by ID, the rest by natural key; the first occurrence wins.
func (p *Pet) ReplaceTraits(traits []Trait) {
	seenIDs := make(map[int64]struct{}, len(traits))
	seenKeys := make(map[string]struct{}, len(traits))
	result := make([]Trait, 0, len(traits))
	for _, trait := range traits {
		if trait.ID != 0 {
			if _, ok := seenIDs[trait.ID]; ok {
				continue
			}
			seenIDs[trait.ID] = struct{}{}
		} else {
			key := trait.Key()
			if _, ok := seenKeys[key]; ok {
				continue
			}
			seenKeys[key] = struct{}{}
		}
		result = append(result, trait)
	}
	p.Traits = result
}

// Validate checks the invariants a persisted pet must satisfy.
func (p *Pet) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if p.Age < 0 {
		return ErrInvalidAge
	}
	if p.Weight < 0 {
		return ErrInvalidWeight
	}
	if _, err := ParseSex(string(p.Sex)); err != nil {
		return err
	}
	if p.Group == nil {
		return ErrMissingGroup
	}
	return nil
}

// TraitNames returns the names of the attached traits in order.
func (p *Pet) TraitNames() []string {
	names := make([]string, 0, len(p.Traits))
	for _, trait := range p.Traits {
		names = append(names, trait.Name)
	}
	return names
}

// HasTraitContaining reports whether any trait name contains one of the fragments, ignoring case.
func (p *Pet) HasTraitContaining(fragments ...string) bool {
	for _, trait := range p.Traits {
		name := strings.ToLower(trait.Name)
		for _, fragment := range fragments {
			if strings.Contains(name, strings.ToLower(fragment)) {
				return true
			}
		}
	}
	return false
}

// Clone returns a deep copy so callers cannot alias stored state.
func (p *Pet) Clone() *Pet {
	if p == nil {
		return nil
	}
	clone := *p
	if p.Group != nil {
		group := *p.Group
		clone.Group = &group
	}
	if p.Traits != nil {
		clone.Traits = append([]Trait{}, p.Traits...)
	}
	return &clone
}
