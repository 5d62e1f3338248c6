package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(t *testing.T, register func(*gin.Engine)) (*httptest.ResponseRecorder, ProblemDetail) {
	t.Helper()
	router := gin.New()
	register(router)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/things/1", nil))
	var problem ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	return rec, problem
}

func TestRespond_SetsProblemContentTypeAndInstance(t *testing.T) {
	responder := NewResponder("https://example.com")
	rec, problem := serve(t, func(r *gin.Engine) {
		r.GET("/things/:id", func(c *gin.Context) { responder.NotFound(c, "thing", 1) })
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, ContentTypeProblemJSON, rec.Header().Get("Content-Type"))
	assert.Equal(t, "https://example.com"+TypeNotFound, problem.Type)
	assert.Equal(t, "/things/1", problem.Instance)
	assert.Equal(t, "thing", problem.Extensions["resourceType"])
}

func TestRespondError_HidesUnexpectedErrors(t *testing.T) {
	rec, problem := serve(t, func(r *gin.Engine) {
		r.GET("/things/:id", func(c *gin.Context) { DefaultResponder.RespondError(c, stderrors.New("dsn password leaked")) })
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, problem.Detail)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestChainedResponder_UsesFirstMatchingMapper(t *testing.T) {
	sentinel := stderrors.New("missing")
	responder := NewChainedResponder(nil, func(err error) (ProblemDetail, bool) {
		if stderrors.Is(err, sentinel) {
			return ErrNotFound.WithDetail("gone"), true
		}
		return ProblemDetail{}, false
	})
	rec, problem := serve(t, func(r *gin.Engine) {
		r.GET("/things/:id", func(c *gin.Context) { responder.RespondError(c, sentinel) })
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "gone", problem.Detail)
}

func TestRecovery_ConvertsPanics(t *testing.T) {
	rec, problem := serve(t, func(r *gin.Engine) {
		r.Use(DefaultResponder.Recovery())
		r.GET("/things/:id", func(c *gin.Context) { panic("boom") })
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, TypeInternal, problem.Type)
}

func TestWithExtension_DoesNotMutateTemplate(t *testing.T) {
	_ = NewValidationProblem(map[string]string{"name": "required"})
	assert.Nil(t, ErrValidation.Extensions)
}
