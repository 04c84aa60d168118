package obs

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-tour/internal/common"
)

func TestRequestLoggerLevelsAndUser(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "json", "debug")
	handler := RequestLogger{Logger: logger}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/ORD1", nil)
	ctx := common.WithPrincipal(req.Context(), common.NewPrincipal("user-1", "admin", nil))
	handler.ServeHTTP(httptest.NewRecorder(), req.WithContext(ctx))

	out := buf.String()
	require.Contains(t, out, `"level":"warn"`)
	require.Contains(t, out, `"status":404`)
	require.Contains(t, out, `"user_id":"user-1"`)
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "json", "nonsense")
	logger.Debug().Msg("hidden")
	logger.Info().Msg("shown")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")
}
