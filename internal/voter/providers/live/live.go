// Package live fetches voter records from the third-party HTTP API.
package live

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"voterdata/internal/voter/models"
	"voterdata/internal/voter/providers"
	id "voterdata/pkg/domain"
	"voterdata/pkg/platform/circuit"
)

// DefaultTimeout bounds a single upstream request.
const DefaultTimeout = 10 * time.Second

// maxBodyBytes caps how much of an upstream response is read.
const maxBodyBytes = 1 << 20

// Source issues GET {baseURL}/{epic} with bearer authentication.
type Source struct {
	id      string
	baseURL string
	apiKey  string
	client  *http.Client
	breaker *circuit.Breaker
	logger  *slog.Logger
}

// Option configures a Source.
type Option func(*Source)

// WithHTTPClient replaces the default client. The client's own timeout is
// left untouched.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Source) {
		if c != nil {
			s.client = c
		}
	}
}

// WithBreaker installs a circuit breaker around upstream calls.
func WithBreaker(b *circuit.Breaker) Option {
	return func(s *Source) {
		s.breaker = b
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Source) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a live source. A non-positive timeout falls back to DefaultTimeout.
func New(providerID, baseURL, apiKey string, timeout time.Duration, opts ...Option) *Source {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	s := &Source{
		id:      providerID,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Source) ID() string { return s.id }

func (s *Source) Mode() models.DataSource { return models.DataSourceAPI }

// Fetch looks epic up upstream. Answers that say "nothing here" come back as
// not_found or bad_data provider errors; everything else is a transport failure.
func (s *Source) Fetch(ctx context.Context, epic id.EPICNumber) (*models.VoterRecord, error) {
	if s.breaker != nil && !s.breaker.Allow() {
		return nil, providers.NewProviderError(providers.ErrorProviderOutage, s.id, "circuit open", nil)
	}

	record, err := s.fetch(ctx, epic)
	s.record(ctx, err)
	return record, err
}

func (s *Source) fetch(ctx context.Context, epic id.EPICNumber) (*models.VoterRecord, error) {
	endpoint := s.baseURL + "/" + url.PathEscape(epic.String())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, providers.NewProviderError(providers.ErrorInternal, s.id, "failed to build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, providers.NewProviderError(providers.ErrorTimeout, s.id, "request timed out", err)
		}
		return nil, providers.NewProviderError(providers.ErrorProviderOutage, s.id, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, providers.NewProviderError(providers.ErrorTimeout, s.id, "response read timed out", err)
		}
		return nil, providers.NewProviderError(providers.ErrorProviderOutage, s.id, "failed to read response", err)
	}

	if err := statusError(s.id, resp.StatusCode); err != nil {
		return nil, err
	}
	return providers.DecodeEnvelope(s.id, body, epic)
}

// statusError classifies non-2xx answers. All of them are transport
// failures from the caller's point of view.
func statusError(providerID string, status int) error {
	if status >= 200 && status < 300 {
		return nil
	}
	msg := fmt.Sprintf("upstream returned status %d", status)
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return providers.NewProviderError(providers.ErrorAuthentication, providerID, msg, nil)
	case status == http.StatusTooManyRequests:
		return providers.NewProviderError(providers.ErrorRateLimited, providerID, msg, nil)
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return providers.NewProviderError(providers.ErrorTimeout, providerID, msg, nil)
	default:
		return providers.NewProviderError(providers.ErrorProviderOutage, providerID, msg, nil)
	}
}

func (s *Source) record(ctx context.Context, err error) {
	if s.breaker == nil {
		return
	}
	if err == nil || providers.IsNoMatch(err) {
		if _, change := s.breaker.RecordSuccess(); change.Closed {
			s.logger.InfoContext(ctx, "source circuit closed", "provider", s.id)
		}
		return
	}
	// Only transient upstream failures count against the circuit. Rejected
	// credentials and cancelled callers leave its state alone.
	if errors.Is(err, context.Canceled) || !providers.IsRetryable(err) {
		return
	}
	if _, change := s.breaker.RecordFailure(); change.Opened {
		s.logger.WarnContext(ctx, "source circuit opened",
			"provider", s.id,
			"error", err,
		)
	}
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
