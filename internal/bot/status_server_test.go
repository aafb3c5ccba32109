package bot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"exile-bot/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusServerDebugPage(t *testing.T) {
	ss := NewStatusServer(config.StatusConfig{DebugPath: "/debug", MetricsPath: "/metrics"}, StatusSource{
		BotUser:   func() string { return "exile-bot#0001" },
		Guilds:    func() []string { return []string{"1", "2"} },
		Sanctions: func(context.Context) int64 { return 3 },
		Details:   func() string { return "=== details ===\n" },
	})

	rec := httptest.NewRecorder()
	ss.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Bot user: exile-bot#0001")
	assert.Contains(t, body, "Monitored guilds: 1, 2")
	assert.Contains(t, body, "Active sanctions: 3")
	assert.Contains(t, body, "=== details ===")
}

func TestStatusServerNotConnected(t *testing.T) {
	body := renderStatus(context.Background(), StatusSource{
		BotUser:   func() string { return "" },
		Sanctions: func(context.Context) int64 { return -1 },
	})

	assert.Contains(t, body, "Bot user: (not connected)")
	assert.Contains(t, body, "Active sanctions: unavailable")
}

func TestStatusServerMetrics(t *testing.T) {
	ss := NewStatusServer(config.StatusConfig{MetricsPath: "/metrics"}, StatusSource{})

	rec := httptest.NewRecorder()
	ss.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")

	rec = httptest.NewRecorder()
	ss.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
