//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "pets-api"
	ConsumerName = "pet-portal"

	StatePetsBaseline = "no pets exist"
	StatePetExists    = "pet with id 1 exists"
	StatePetsSearch   = "pets with traits exist"
)

const (
	ExistingPetID int64 = 1
	MissingPetID  int64 = 404
)

const (
	examplePetName   = "Fluffy Pact Cat"
	exampleGroupName = "Felis catus"
	exampleTrait     = "calm"
	exampleTimestamp = "2024-06-12T10:00:00Z"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the pet portal consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleCreatePayload is the body the portal posts to create a pet.
func ExampleCreatePayload() map[string]any {
	return map[string]any{
		"name":   examplePetName,
		"age":    2,
		"weight": 4.5,
		"sex":    "FEMALE",
		"group":  map[string]any{"scientific_name": exampleGroupName},
		"traits": []map[string]any{{"name": exampleTrait}},
	}
}

// ExamplePetPayload is the pet the provider answers with for the example create payload.
func ExamplePetPayload() map[string]any {
	return map[string]any{
		"id":     ExistingPetID,
		"name":   examplePetName,
		"age":    2,
		"weight": 4.5,
		"sex":    "FEMALE",
		"group": map[string]any{
			"id":              1,
			"scientific_name": exampleGroupName,
			"created_at":      exampleTimestamp,
		},
		"traits": []map[string]any{{"id": 1, "name": exampleTrait, "created_at": exampleTimestamp}},
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
