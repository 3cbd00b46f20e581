package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rocketscienceinc/gameroom-backend/internal/repository"
	"github.com/rocketscienceinc/gameroom-backend/pkg/handlers"
)

// StartHTTPServer - serves the operational surface: /ping always, /history
// when match history is enabled.
func StartHTTPServer(logger *slog.Logger, port string, history repository.HistoryRepository) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", handlers.PingHandler)

	if history != nil {
		mux.HandleFunc("/history", handlers.NewHistoryHandler(logger, history))
	}

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
