package http

import (
	"errors"

	"github.com/Apurer/go-gin-pets-api/internal/domains/pets/application"
	"github.com/Apurer/go-gin-pets-api/internal/domains/pets/ports"
	"github.com/Apurer/go-gin-pets-api/internal/shared/pagination"
	sharederrors "github.com/Apurer/go-gin-pets-api/internal/shared/errors"
)

// ProblemFromError maps pets application errors onto problem documents.
// Unknown pets are answered by the handlers, which know the requested id.
// Unknown errors are left to the responder, which answers 500.
func ProblemFromError(err error) (sharederrors.ProblemDetail, bool) {
	var validation *application.ValidationError
	switch {
	case errors.As(err, &validation):
		return sharederrors.NewValidationProblem(validation.Fields), true
	case errors.Is(err, application.ErrInvalidInput):
		return sharederrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, pagination.ErrInvalidPage):
		return sharederrors.ErrNotFound.WithDetail("Invalid page."), true
	case errors.Is(err, ports.ErrIdempotencyConflict):
		return sharederrors.ErrConflict.WithDetail("Idempotency-Key was already used with a different request."), true
	default:
		return sharederrors.ProblemDetail{}, false
	}
}
