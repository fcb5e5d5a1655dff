package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"voterdata/internal/voter/models"
	dErrors "voterdata/pkg/domain-errors"
	"voterdata/pkg/platform/httputil"
	"voterdata/pkg/platform/middleware/request"
	"voterdata/pkg/requestcontext"
)

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeJSON[SearchRequest](w, r, h.logger)
	if !ok {
		return
	}
	if len(req.EPICNumbers) == 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "epicNumbers is required"))
		return
	}

	records, err := h.voters.ResolveMany(ctx, req.EPICNumbers)
	if err != nil {
		h.logFailure(r, "batch search failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, records)
}

func (h *Handler) handleDetails(w http.ResponseWriter, r *http.Request) {
	record, err := h.voters.ResolveOne(r.Context(), chi.URLParam(r, "epicNo"))
	if err != nil {
		h.logFailure(r, "voter lookup failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) handleFindByID(w http.ResponseWriter, r *http.Request) {
	record, err := h.voters.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.logFailure(r, "voter lookup by id failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := intParam(q.Get("page"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "page must be an integer"))
		return
	}
	limit, err := intParam(q.Get("limit"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be an integer"))
		return
	}
	opts, err := models.NewListOptions(page, limit, q.Get("sortBy"), q.Get("sortOrder"), q.Get("search"), models.ListFilter{
		State:      q.Get("state"),
		District:   q.Get("district"),
		Gender:     q.Get("gender"),
		DataSource: models.DataSource(q.Get("dataSource")),
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.voters.List(r.Context(), opts)
	if err != nil {
		h.logFailure(r, "voter listing failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleDisable(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, h.voters.Disable, "voter disable failed")
}

func (h *Handler) handleEnable(w http.ResponseWriter, r *http.Request) {
	h.changeStatus(w, r, h.voters.Enable, "voter enable failed")
}

type statusChange func(ctx context.Context, epicNo, actor string) (*models.VoterRecord, error)

func (h *Handler) changeStatus(w http.ResponseWriter, r *http.Request, change statusChange, failure string) {
	ctx := r.Context()
	epicNo := chi.URLParam(r, "epicNo")

	var body StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if body.conflictsWith(epicNo) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "epic_no in body does not match path"))
		return
	}

	record, err := change(ctx, epicNo, requestcontext.Actor(ctx))
	if err != nil {
		h.logFailure(r, failure, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.voters.Delete(r.Context(), chi.URLParam(r, "epicNo")); err != nil {
		h.logFailure(r, "voter delete failed", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// logFailure logs server-side failures at error level and caller mistakes at warn.
func (h *Handler) logFailure(r *http.Request, msg string, err error) {
	ctx := r.Context()
	attrs := []any{
		"error", err,
		"path", r.URL.Path,
		"request_id", request.GetRequestID(ctx),
	}
	if httputil.StatusFor(dErrors.CodeOf(err)) >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg, attrs...)
		return
	}
	h.logger.WarnContext(ctx, msg, attrs...)
}

func intParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
