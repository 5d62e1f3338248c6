package mapper

import (
	"encoding/json"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-pets-api/internal/domains/pets/domain"
	"github.com/Apurer/go-gin-pets-api/internal/shared/pagination"
)

func TestFromDomainPet(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	pet := &domain.Pet{
		ID:     4,
		Name:   "Buddy",
		Age:    3,
		Weight: 12.5,
		Sex:    domain.SexFemale,
		Group:  &domain.Group{ID: 2, ScientificName: "Canis lupus", CreatedAt: created},
		Traits: []domain.Trait{{ID: 9, Name: "calm", CreatedAt: created}},
	}

	body, err := json.Marshal(FromDomainPet(pet))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": 4, "name": "Buddy", "age": 3, "weight": 12.5, "sex": "FEMALE",
		"group": {"id": 2, "scientific_name": "Canis lupus", "created_at": "2024-05-01T12:00:00Z"},
		"traits": [{"id": 9, "name": "calm", "created_at": "2024-05-01T12:00:00Z"}]
	}`, string(body))

	body, err = json.Marshal(FromDomainPet(&domain.Pet{ID: 1}))
	require.NoError(t, err)
	assert.Contains(t, string(body), `"traits":[]`)
}

func TestToUpdateInput_PreservesPresence(t *testing.T) {
	age := 5
	input := ToUpdateInput(3, PatchPet{Age: &age})
	assert.Equal(t, int64(3), input.ID)
	assert.Equal(t, &age, input.Age)
	assert.Nil(t, input.Name)
	assert.Nil(t, input.Group)
	assert.Nil(t, input.Traits)

	input = ToUpdateInput(3, PatchPet{Traits: []TraitPayload{}})
	require.NotNil(t, input.Traits)
	assert.Empty(t, *input.Traits)
}

func TestValidate_ReportsJSONPaths(t *testing.T) {
	name := "  "
	payload := CreatePet{Name: &name, Traits: []TraitPayload{{}}}
	payload.Normalize()

	fields := Validate(&payload)
	assert.Equal(t, "This field may not be blank.", fields["name"])
	assert.Equal(t, "This field is required.", fields["traits[0].name"])
	assert.Equal(t, "This field is required.", fields["group"])
	assert.NotContains(t, fields, "sex")

	assert.Nil(t, Validate(&PatchPet{}))
}

func TestDecodeError(t *testing.T) {
	decode := func(body string) (map[string]string, error) {
		var payload CreatePet
		err := json.Unmarshal([]byte(body), &payload)
		require.Error(t, err)
		return DecodeError(err, []byte(body))
	}

	fields, malformed := decode(`{"weight":"heavy"}`)
	require.NoError(t, malformed)
	assert.Equal(t, map[string]string{"weight": "A valid number is required."}, fields)

	fields, malformed = decode(`{"traits":{}}`)
	require.NoError(t, malformed)
	assert.Contains(t, fields["traits"], "Expected a list of items")

	fields, malformed = decode(`{"group":{"scientific_name":7}}`)
	require.NoError(t, malformed)
	assert.Equal(t, map[string]string{"group.scientific_name": "Not a valid string."}, fields)

	_, malformed = DecodeError(errors.New("unexpected EOF"), nil)
	assert.ErrorIs(t, malformed, ErrMalformedBody)
}

func TestDecodeError_IndexesListElements(t *testing.T) {
	body := `{"traits":[{"name":"calm"},{"name":"loud"},{"name":5}]}`
	var payload CreatePet
	err := json.Unmarshal([]byte(body), &payload)
	require.Error(t, err)

	fields, malformed := DecodeError(err, []byte(body))
	require.NoError(t, malformed)
	assert.Equal(t, map[string]string{"traits[2].name": "Not a valid string."}, fields)

	// without the body the decoder path is kept as is
	fields, malformed = DecodeError(err, nil)
	require.NoError(t, malformed)
	assert.Equal(t, map[string]string{"traits.name": "Not a valid string."}, fields)
}

func TestFromPetPage_Links(t *testing.T) {
	requestURL, err := url.Parse("http://localhost:8080/pets?page=2&page_size=1&trait=calm")
	require.NoError(t, err)
	page := pagination.Page[*domain.Pet]{
		Items:  []*domain.Pet{{ID: 2}},
		Number: 2,
		Size:   1,
		Total:  3,
	}

	envelope := FromPetPage(page, requestURL)
	assert.Equal(t, int64(3), envelope.Count)
	require.NotNil(t, envelope.Next)
	require.NotNil(t, envelope.Previous)
	assert.Equal(t, "http://localhost:8080/pets?page=3&page_size=1&trait=calm", *envelope.Next)
	assert.Equal(t, "http://localhost:8080/pets?page_size=1&trait=calm", *envelope.Previous)

	empty := FromPetPage(pagination.Page[*domain.Pet]{Number: 1, Size: 10}, requestURL)
	assert.Nil(t, empty.Next)
	assert.Nil(t, empty.Previous)
	assert.NotNil(t, empty.Results)
}
