package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"voterdata/internal/audit"
	"voterdata/internal/voter/metrics"
	"voterdata/internal/voter/models"
	id "voterdata/pkg/domain"
	"voterdata/pkg/requestcontext"
)

// DefaultConcurrency bounds resolveMany fan-out when no limit is configured.
const DefaultConcurrency = 8

// Store is the durable Record Store.
type Store interface {
	FindByEPIC(ctx context.Context, epic id.EPICNumber, includeDisabled bool) (*models.VoterRecord, error)
	FindByID(ctx context.Context, recordID id.RecordID) (*models.VoterRecord, error)
	Create(ctx context.Context, record *models.VoterRecord) error
	UpdateByEPIC(ctx context.Context, epic id.EPICNumber, update models.UpdateRecord, now time.Time) (*models.VoterRecord, error)
	DeleteByEPIC(ctx context.Context, epic id.EPICNumber) (bool, error)
	List(ctx context.Context, opts models.ListOptions) ([]*models.VoterRecord, int, error)
}

// Cache is the optional accelerator in front of the Store.
type Cache interface {
	Get(ctx context.Context, epic id.EPICNumber) (*models.VoterRecord, error)
	Set(ctx context.Context, record *models.VoterRecord) error
	Delete(ctx context.Context, epic id.EPICNumber) error
}

// Source is the External Source Adapter.
type Source interface {
	ID() string
	Mode() models.DataSource
	Fetch(ctx context.Context, epic id.EPICNumber) (*models.VoterRecord, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// Service is the Resolution Engine. It resolves voter records through the
// cache, store and external source, and owns their lifecycle.
type Service struct {
	store          Store
	source         Source
	cache          Cache
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
	concurrency    int
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithCache installs the accelerator cache. Without it every lookup goes to
// the store.
func WithCache(cache Cache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithConcurrency caps how many identifiers resolveMany works on at once.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// New constructs a Service.
func New(store Store, source Source, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("voter store is required")
	}
	if source == nil {
		return nil, errors.New("voter source is required")
	}
	s := &Service{
		store:       store,
		source:      source,
		logger:      slog.New(slog.DiscardHandler),
		tracer:      otel.Tracer("voterdata/internal/voter/service"),
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s, nil
}

func (s *Service) emitAudit(ctx context.Context, action audit.Action, epic id.EPICNumber, detail map[string]string) {
	if s.auditPublisher == nil {
		return
	}
	event := audit.Event{
		Timestamp: requestcontext.Now(ctx),
		Action:    action,
		EPICNo:    epic.String(),
		Actor:     requestcontext.Actor(ctx),
		RequestID: requestcontext.RequestID(ctx),
		Detail:    detail,
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", string(action),
			"epic_no", epic.String(),
			"error", err,
		)
	}
}

func (s *Service) observeResolve(outcome string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveResolve(outcome, start)
	}
}

func (s *Service) incrementLifecycle(action string) {
	if s.metrics != nil {
		s.metrics.IncrementLifecycle(action)
	}
}
