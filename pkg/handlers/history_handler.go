package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rocketscienceinc/gameroom-backend/internal/repository"
)

type historyReader interface {
	GetByPlayer(ctx context.Context, name string) ([]*repository.MatchResult, error)
}

// NewHistoryHandler - serves recorded match results for one player, e.g.
// GET /history?player=alice.
func NewHistoryHandler(logger *slog.Logger, history historyReader) http.HandlerFunc {
	log := logger.With("handler", "history")

	return func(w http.ResponseWriter, r *http.Request) {
		player := r.URL.Query().Get("player")
		if player == "" {
			http.Error(w, "player query parameter is required", http.StatusBadRequest)
			return
		}

		results, err := history.GetByPlayer(r.Context(), player)
		if err != nil {
			log.Error("failed to get match history", "player", player, "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err = json.NewEncoder(w).Encode(results); err != nil {
			log.Error("failed to encode match history", "error", err)
		}
	}
}
