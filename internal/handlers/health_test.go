package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"POOLSHARE_BACK-END/internal/dto"
)

func TestStaticProbes(t *testing.T) {
	t.Parallel()

	// The static probes never touch the database.
	h := NewHealthHandler(nil)

	probes := []struct {
		name   string
		serve  http.HandlerFunc
		status string
	}{
		{"healthz", h.HealthCheck, "ok"},
		{"livez", h.LivenessCheck, "alive"},
	}
	for _, probe := range probes {
		t.Run(probe.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			probe.serve(rec, httptest.NewRequest(http.MethodGet, "/"+probe.name, nil))

			require.Equal(t, http.StatusOK, rec.Code)
			var resp dto.HealthResponse
			decodeBody(t, rec, &resp)
			require.Equal(t, probe.status, resp.Status)
			require.Nil(t, resp.Details)
		})
	}
}
