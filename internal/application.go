package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/gameroom-backend/internal/config"
	"github.com/rocketscienceinc/gameroom-backend/internal/repository"
	"github.com/rocketscienceinc/gameroom-backend/internal/repository/storage"
	"github.com/rocketscienceinc/gameroom-backend/internal/server"
	"github.com/rocketscienceinc/gameroom-backend/internal/transport"
	"github.com/rocketscienceinc/gameroom-backend/internal/transport/ws"
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	// match history is optional, an empty redis host disables it
	var history repository.HistoryRepository
	if redisAddr := conf.Redis.GetRedisAddr(); redisAddr != "" {
		redisClient, err := storage.New(ctx, redisAddr)
		if err != nil {
			return fmt.Errorf("could not connect to redis storage: %w", err)
		}

		defer func() {
			if err = redisClient.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}()

		history = repository.NewHistoryRepository(redisClient)
		log.Info("Match history recording enabled", "addr", redisAddr)
	}

	// both transports feed the same accept queue
	queue := make(chan transport.Conn, conf.Game.AcceptBacklog)

	listener, err := transport.Listen(logger, ":"+conf.Game.Port, queue)
	if err != nil {
		return fmt.Errorf("could not start game listener: %w", err)
	}

	defer func() {
		if err = listener.Close(); err != nil {
			log.Error("could not close game listener", "error", err)
		}
	}()

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := server.StartHTTPServer(logger, conf.HTTPPort, history); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run WebSocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := ws.New(logger, queue)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	// run the game loop
	gameErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting game server", "port", conf.Game.Port)
		gameServer := server.New(logger, conf.Game, queue, history)
		if gameErr := gameServer.Run(ctx); gameErr != nil {
			log.Error("Game server error", "error", gameErr)
			gameErrCh <- gameErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case err = <-gameErrCh:
		return fmt.Errorf("game server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}
