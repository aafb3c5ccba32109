package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"exile-bot/internal/config"
	"exile-bot/internal/logger"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatusSource supplies the values shown on the debug page.
type StatusSource struct {
	BotUser   func() string
	Guilds    func() []string
	Sanctions func(ctx context.Context) int64
	Details   func() string
}

// StatusServer serves the debug page and Prometheus metrics.
type StatusServer struct {
	server *http.Server
}

func NewStatusServer(cfg config.StatusConfig, src StatusSource) *StatusServer {
	mux := http.NewServeMux()

	if cfg.DebugPath != "" {
		mux.HandleFunc(cfg.DebugPath, func(w http.ResponseWriter, r *http.Request) {
			logger.Debugf("Debug endpoint accessed: %s %s", r.Method, r.URL.Path)
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(renderStatus(r.Context(), src)))
		})
	}

	if cfg.MetricsPath != "" {
		mux.Handle(cfg.MetricsPath, promhttp.Handler())
	}

	return &StatusServer{
		server: &http.Server{
			Addr:    cfg.Listen,
			Handler: mux,
		},
	}
}

func renderStatus(ctx context.Context, src StatusSource) string {
	var b strings.Builder
	b.WriteString("Bot status server is running\n\n")

	user := ""
	if src.BotUser != nil {
		user = src.BotUser()
	}
	if user == "" {
		user = "(not connected)"
	}
	fmt.Fprintf(&b, "Bot user: %s\n", user)

	if src.Guilds != nil {
		fmt.Fprintf(&b, "Monitored guilds: %s\n", strings.Join(src.Guilds(), ", "))
	}
	if src.Sanctions != nil {
		if n := src.Sanctions(ctx); n >= 0 {
			fmt.Fprintf(&b, "Active sanctions: %d\n", n)
		} else {
			b.WriteString("Active sanctions: unavailable\n")
		}
	}
	if src.Details != nil {
		b.WriteString("\n")
		b.WriteString(src.Details())
	}
	return b.String()
}

// Handler exposes the mux, mainly for tests.
func (ss *StatusServer) Handler() http.Handler {
	return ss.server.Handler
}

// Start serves until Shutdown is called.
func (ss *StatusServer) Start() error {
	logger.Infof("Starting status server on %s", ss.server.Addr)
	if err := ss.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (ss *StatusServer) Shutdown(ctx context.Context) error {
	return ss.server.Shutdown(ctx)
}
