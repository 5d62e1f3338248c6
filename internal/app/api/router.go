package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	pethttp "github.com/Apurer/go-gin-pets-api/internal/domains/pets/adapters/http"
	petsports "github.com/Apurer/go-gin-pets-api/internal/domains/pets/ports"
	sharederrors "github.com/Apurer/go-gin-pets-api/internal/shared/errors"
)

// HeaderRequestID correlates a response with the access log line of its request.
const HeaderRequestID = "X-Request-ID"

// RouterDeps lists what the HTTP router needs to serve the API.
type RouterDeps struct {
	ServiceName    string
	Logger         *slog.Logger
	Pets           petsports.Service
	PetWorkflows   petsports.WorkflowOrchestrator
	MetricsHandler http.Handler
}

// NewRouter builds the gin engine with middleware, health and metrics endpoints, and the pets routes.
func NewRouter(deps RouterDeps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	responder := &sharederrors.Responder{Logger: logger}

	router := gin.New()
	if deps.ServiceName != "" {
		router.Use(otelgin.Middleware(deps.ServiceName))
	}
	router.Use(requestID(), accessLog(logger), responder.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if deps.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(deps.MetricsHandler))
	}

	pethttp.NewPetAPI(deps.Pets, deps.PetWorkflows, responder).RegisterRoutes(router)
	return router
}

// requestID keeps a well-formed inbound X-Request-ID and generates one otherwise.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(HeaderRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

func accessLog(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if c.FullPath() == "/healthz" {
			return
		}
		logger.InfoContext(c.Request.Context(), "http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
			slog.String("request_id", c.GetString(HeaderRequestID)),
		)
	}
}
