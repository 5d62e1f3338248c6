package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	pettypes "github.com/Apurer/go-gin-pets-api/internal/domains/pets/application/types"
	"github.com/Apurer/go-gin-pets-api/internal/domains/pets/domain"
)

type normalizedCreatePetInput struct {
	Name   string   `json:"name"`
	Age    int      `json:"age"`
	Weight float64  `json:"weight"`
	Sex    string   `json:"sex"`
	Group  string   `json:"group"`
	Traits []string `json:"traits"`
}

// FingerprintCreatePet builds a deterministic hash of the create payload (excluding the idempotency key).
// Group and trait names are compared by natural key, matching how they are resolved.
func FingerprintCreatePet(input pettypes.CreatePetInput) (string, error) {
	payload, err := json.Marshal(normalizeCreatePetInput(input))
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

func normalizeCreatePetInput(input pettypes.CreatePetInput) normalizedCreatePetInput {
	sex := input.Sex
	if sex == "" {
		sex = string(domain.SexNotInformed)
	}
	traits := make([]string, 0, len(input.Traits))
	for _, t := range input.Traits {
		traits = append(traits, domain.NaturalKey(t.Name))
	}
	return normalizedCreatePetInput{
		Name:   input.Name,
		Age:    input.Age,
		Weight: input.Weight,
		Sex:    sex,
		Group:  domain.NaturalKey(input.Group.ScientificName),
		Traits: traits,
	}
}
