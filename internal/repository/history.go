package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// MatchResult is one finished match as stored in history. WinnerSlot is 1
// or 2 for a decided match and 0 for a draw.
type MatchResult struct {
	Player1    string    `json:"player1"`
	Player2    string    `json:"player2"`
	WinnerSlot int       `json:"winner_slot"`
	FinishedAt time.Time `json:"finished_at"`
}

type HistoryRepository interface {
	RecordMatch(ctx context.Context, result *MatchResult) error
	GetByPlayer(ctx context.Context, name string) ([]*MatchResult, error)
}

type dbHistory struct {
	client *redis.Client
}

func NewHistoryRepository(client *redis.Client) HistoryRepository {
	return &dbHistory{
		client: client,
	}
}

// RecordMatch - appends the result to both participants' history lists.
func (that *dbHistory) RecordMatch(ctx context.Context, result *MatchResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal match result: %w", err)
	}

	for _, name := range []string{result.Player1, result.Player2} {
		historyKey := "history:" + name
		if err = that.client.RPush(ctx, historyKey, resultJSON).Err(); err != nil {
			return fmt.Errorf("failed to push match result: %w", err)
		}
	}

	return nil
}

// GetByPlayer - returns every recorded match for the player, oldest first.
func (that *dbHistory) GetByPlayer(ctx context.Context, name string) ([]*MatchResult, error) {
	historyKey := "history:" + name

	rows, err := that.client.LRange(ctx, historyKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get match history: %w", err)
	}

	results := make([]*MatchResult, 0, len(rows))
	for _, row := range rows {
		var result MatchResult
		if err = json.Unmarshal([]byte(row), &result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal match result: %w", err)
		}
		results = append(results, &result)
	}

	return results, nil
}
