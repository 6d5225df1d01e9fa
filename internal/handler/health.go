package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/forgo/aisle/api/internal/model"
)

// Pinger is satisfied by database.Database
type Pinger interface {
	Ping(ctx context.Context) error
}

const readyTimeout = 2 * time.Second

// Health handles GET /health. It only reports that the process is serving.
func Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready returns the GET /ready handler, which fails while the database is unreachable
func Ready(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			slog.Warn("readiness check failed", slog.String("error", err.Error()))
			WriteError(w, model.NewServiceUnavailableError("database unavailable"))
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
