package ws

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/gameroom-backend/internal/transport"
)

// Server upgrades HTTP requests on /ws and feeds the resulting connections
// into the same accept queue as the TCP listener.
type Server struct {
	logger   *slog.Logger
	queue    chan<- transport.Conn
	upgrader websocket.Upgrader
}

func New(logger *slog.Logger, queue chan<- transport.Conn) *Server {
	return &Server{
		logger: logger.With("component", "ws-server"),
		queue:  queue,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(_ *http.Request) bool { return true },
		},
	}
}

// Start - serves until the context is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.handleUpgrade)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	wsConn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		that.logger.Error("failed to upgrade connection", "error", err)
		return
	}

	that.logger.Info("accepting new client", "remote", wsConn.RemoteAddr().String())
	that.queue <- newConn(that.logger, wsConn)
}
