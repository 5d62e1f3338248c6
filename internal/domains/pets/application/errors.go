package application

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Apurer/go-gin-pets-api/internal/domains/pets/domain"
)

// ErrInvalidInput signals the request violated a domain invariant.
var ErrInvalidInput = errors.New("invalid pet input")

// ValidationError lists every rejected field of a request. It matches ErrInvalidInput.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return fmt.Sprintf("%s: %s", ErrInvalidInput, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

type fieldErrors map[string]string

func (f fieldErrors) add(field string, err error) {
	if err == nil {
		return
	}
	if _, exists := f[field]; exists {
		return
	}
	f[field] = fieldMessage(err)
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: map[string]string(f)}
}

func fieldMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmptyName),
		errors.Is(err, domain.ErrEmptyScientificName),
		errors.Is(err, domain.ErrEmptyTraitName):
		return "This field may not be blank."
	case errors.Is(err, domain.ErrInvalidAge), errors.Is(err, domain.ErrInvalidWeight):
		return "Ensure this value is greater than or equal to 0."
	case errors.Is(err, domain.ErrMissingGroup):
		return "This field is required."
	default:
		return err.Error()
	}
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	var validation *ValidationError
	if errors.As(err, &validation) {
		return err
	}
	fields := fieldErrors{}
	switch {
	case errors.Is(err, domain.ErrEmptyName):
		fields.add("name", err)
	case errors.Is(err, domain.ErrInvalidAge):
		fields.add("age", err)
	case errors.Is(err, domain.ErrInvalidWeight):
		fields.add("weight", err)
	case errors.Is(err, domain.ErrInvalidSex):
		fields.add("sex", err)
	case errors.Is(err, domain.ErrMissingGroup):
		fields.add("group", err)
	case errors.Is(err, domain.ErrEmptyScientificName):
		fields.add("group.scientific_name", err)
	case errors.Is(err, domain.ErrEmptyTraitName):
		fields.add("traits", err)
	default:
		return err
	}
	return fields.err()
}
