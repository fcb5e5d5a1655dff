package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"

	"voterdata/internal/platform/metrics"
	"voterdata/internal/voter/models"
	"voterdata/pkg/platform/middleware/admin"
	"voterdata/pkg/platform/middleware/auth"
	"voterdata/pkg/platform/middleware/request"
	"voterdata/pkg/platform/middleware/requesttime"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

const requestTimeout = 30 * time.Second

// VoterService is the resolution engine surface used by the HTTP layer.
type VoterService interface {
	ResolveOne(ctx context.Context, epicNo string) (*models.VoterRecord, error)
	ResolveMany(ctx context.Context, epicNos []string) ([]*models.VoterRecord, error)
	FindByID(ctx context.Context, id string) (*models.VoterRecord, error)
	List(ctx context.Context, opts models.ListOptions) (*models.Page, error)
	Disable(ctx context.Context, epicNo, actor string) (*models.VoterRecord, error)
	Enable(ctx context.Context, epicNo, actor string) (*models.VoterRecord, error)
	Delete(ctx context.Context, epicNo string) error
}

// Importer ingests uploaded spreadsheets.
type Importer interface {
	Import(ctx context.Context, filename string, data []byte) (*models.ImportResult, error)
	MaxBytes() int64
}

// Handler serves the /voter-data routes.
type Handler struct {
	voters       VoterService
	importer     Importer
	jwtValidator auth.JWTValidator
	logger       *slog.Logger
	metrics      *metrics.Metrics
}

// New creates a voter Handler. metrics may be nil.
func New(
	voters VoterService,
	importer Importer,
	jwtValidator auth.JWTValidator,
	logger *slog.Logger,
	metrics *metrics.Metrics) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{
		voters:       voters,
		importer:     importer,
		jwtValidator: jwtValidator,
		logger:       logger,
		metrics:      metrics,
	}
}

// Register mounts the voter routes on r. Every route requires a bearer token;
// mutations additionally require the admin role.
func (h *Handler) Register(r chi.Router) {
	voterRouter := chi.NewRouter()
	voterRouter.Use(request.Recovery(h.logger))
	voterRouter.Use(request.RequestID)
	voterRouter.Use(request.Logger(h.logger))
	voterRouter.Use(request.Timeout(requestTimeout))
	voterRouter.Use(requesttime.Middleware)
	voterRouter.Use(request.LatencyMiddleware(h.metrics))
	voterRouter.Use(auth.RequireAuth(h.jwtValidator, h.logger))

	voterRouter.Post("/voter-data/search", h.handleSearch)
	voterRouter.Get("/voter-data", h.handleList)
	voterRouter.Get("/voter-data/details/{epicNo}", h.handleDetails)
	voterRouter.Get("/voter-data/{id}", h.handleFindByID)

	voterRouter.Group(func(r chi.Router) {
		r.Use(admin.RequireAdmin(h.logger))
		r.Post("/voter-data/disable/{epicNo}", h.handleDisable)
		r.Post("/voter-data/enable/{epicNo}", h.handleEnable)
		r.Delete("/voter-data/{epicNo}", h.handleDelete)
		r.Post("/voter-data/upload-excel", h.handleUpload)
	})

	r.Mount("/", voterRouter)
}
