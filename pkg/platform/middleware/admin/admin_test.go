package admin

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"voterdata/pkg/requestcontext"
)

func TestRequireAdmin(t *testing.T) {
	h := RequireAdmin(slog.New(slog.DiscardHandler))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		role   string
		status int
	}{
		{"admin passes", requestcontext.RoleAdmin, http.StatusNoContent},
		{"viewer rejected", "viewer", http.StatusForbidden},
		{"no role rejected", "", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			req = req.WithContext(requestcontext.WithActor(req.Context(), "operator-1", tt.role))
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
