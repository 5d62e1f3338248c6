package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	pettypes "github.com/Apurer/go-gin-pets-api/internal/domains/pets/application/types"
	"github.com/Apurer/go-gin-pets-api/internal/domains/pets/domain"
	"github.com/Apurer/go-gin-pets-api/internal/domains/pets/ports"
)

const tracerName = "github.com/Apurer/go-gin-pets-api/internal/domains/pets/adapters/observability/service"

// Service decorates a pets application port with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

// ListPets returns a page of pets with instrumentation.
func (s *Service) ListPets(ctx context.Context, input pettypes.ListPetsInput) (*pettypes.PetPage, error) {
	ctx, span := s.startSpan(ctx, "Service.ListPets",
		attribute.StringSlice("pet.traits.requested", input.Traits),
		attribute.Int("page.number", input.Page),
	)
	defer span.End()

	s.logInfo(ctx, "listing pets", slog.Any("traits", input.Traits), slog.Int("page", input.Page))
	page, err := s.inner.ListPets(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list pets", slog.Int("page", input.Page))
	}
	span.SetAttributes(
		attribute.Int("pet.result.count", len(page.Items)),
		attribute.Int64("pet.result.total", page.Total),
	)
	s.logInfo(ctx, "listed pets", slog.Int("count", len(page.Items)), slog.Int64("total", page.Total))
	return page, nil
}

// CreatePet persists a new pet aggregate with instrumentation.
func (s *Service) CreatePet(ctx context.Context, input pettypes.CreatePetInput) (*pettypes.CreatePetResult, error) {
	ctx, span := s.startSpan(ctx, "Service.CreatePet",
		attribute.String("pet.group.scientific_name", input.Group.ScientificName),
		attribute.Int("pet.traits.count", len(input.Traits)),
		attribute.Bool("idempotency.key_present", input.IdempotencyKey != ""),
	)
	defer span.End()

	s.logInfo(ctx, "creating pet", slog.String("group", input.Group.ScientificName))
	result, err := s.inner.CreatePet(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create pet")
	}
	if result == nil || result.Pet == nil {
		return result, nil
	}
	span.SetAttributes(attribute.Int64("pet.id", result.Pet.ID), attribute.Bool("idempotency.replayed", result.Replayed))
	if result.Replayed {
		s.logInfo(ctx, "pet creation replayed", slog.Int64("pet.id", result.Pet.ID))
		return result, nil
	}
	s.metrics.recordCreated(ctx, result.Pet.Sex)
	s.metrics.recordTaxonomy(ctx, result.GroupCreated, result.TraitsCreated)
	s.logInfo(ctx, "pet created",
		slog.Int64("pet.id", result.Pet.ID),
		slog.Bool("group.created", result.GroupCreated),
		slog.Int("traits.created", result.TraitsCreated),
	)
	return result, nil
}

// GetPet loads a single pet aggregate.
func (s *Service) GetPet(ctx context.Context, input pettypes.PetIdentifier) (*domain.Pet, error) {
	ctx, span := s.startSpan(ctx, "Service.GetPet", attribute.Int64("pet.id", input.ID))
	defer span.End()

	s.logInfo(ctx, "loading pet", slog.Int64("pet.id", input.ID))
	pet, err := s.inner.GetPet(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load pet", slog.Int64("pet.id", input.ID))
	}
	return pet, nil
}

// UpdatePet applies a partial update.
func (s *Service) UpdatePet(ctx context.Context, input pettypes.UpdatePetInput) (*domain.Pet, error) {
	ctx, span := s.startSpan(ctx, "Service.UpdatePet",
		attribute.Int64("pet.id", input.ID),
		attribute.Bool("pet.group.supplied", input.Group != nil),
		attribute.Bool("pet.traits.supplied", input.Traits != nil),
	)
	defer span.End()

	s.logInfo(ctx, "updating pet", slog.Int64("pet.id", input.ID))
	pet, err := s.inner.UpdatePet(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update pet", slog.Int64("pet.id", input.ID))
	}
	s.metrics.recordUpdated(ctx, pet.Sex)
	s.logInfo(ctx, "pet updated", slog.Int64("pet.id", pet.ID))
	return pet, nil
}

// DeletePet removes a pet.
func (s *Service) DeletePet(ctx context.Context, input pettypes.PetIdentifier) error {
	ctx, span := s.startSpan(ctx, "Service.DeletePet", attribute.Int64("pet.id", input.ID))
	defer span.End()

	s.logInfo(ctx, "deleting pet", slog.Int64("pet.id", input.ID))
	if err := s.inner.DeletePet(ctx, input); err != nil {
		return s.handleError(ctx, span, err, "failed to delete pet", slog.Int64("pet.id", input.ID))
	}
	s.metrics.recordDeleted(ctx)
	s.logInfo(ctx, "pet deleted", slog.Int64("pet.id", input.ID))
	return nil
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	attrs = append(attrs, slog.String("error", err.Error()))
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	petsCreated   metric.Int64Counter
	petsUpdated   metric.Int64Counter
	petsDeleted   metric.Int64Counter
	groupsCreated metric.Int64Counter
	traitsCreated metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	petsCreated, _ := m.Int64Counter("pets.service.created", metric.WithDescription("Number of pets created"))
	petsUpdated, _ := m.Int64Counter("pets.service.updated", metric.WithDescription("Number of pets updated"))
	petsDeleted, _ := m.Int64Counter("pets.service.deleted", metric.WithDescription("Number of pets deleted"))
	groupsCreated, _ := m.Int64Counter("pets.service.groups_created", metric.WithDescription("Number of groups created on demand"))
	traitsCreated, _ := m.Int64Counter("pets.service.traits_created", metric.WithDescription("Number of traits created on demand"))
	return serviceMetrics{
		petsCreated:   petsCreated,
		petsUpdated:   petsUpdated,
		petsDeleted:   petsDeleted,
		groupsCreated: groupsCreated,
		traitsCreated: traitsCreated,
	}
}

func (m serviceMetrics) recordCreated(ctx context.Context, sex domain.Sex) {
	addCounter(ctx, m.petsCreated, 1, attribute.String("pet.sex", string(sex)))
}

func (m serviceMetrics) recordUpdated(ctx context.Context, sex domain.Sex) {
	addCounter(ctx, m.petsUpdated, 1, attribute.String("pet.sex", string(sex)))
}

func (m serviceMetrics) recordDeleted(ctx context.Context) {
	addCounter(ctx, m.petsDeleted, 1)
}

func (m serviceMetrics) recordTaxonomy(ctx context.Context, groupCreated bool, traitsCreated int) {
	if groupCreated {
		addCounter(ctx, m.groupsCreated, 1)
	}
	if traitsCreated > 0 {
		addCounter(ctx, m.traitsCreated, int64(traitsCreated))
	}
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)
