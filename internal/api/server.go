package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ivlev/animchat/internal/session"
)

type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

type ServerConfig struct {
	Addr      string
	Session   *session.Session
	Generator string // backend name reported by /health
	Version   string
	PublicURL string // base for preview links; the request host when empty
	Logger    *zap.Logger
	StartTime time.Time
}

func NewServer(cfg ServerConfig) *Server {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	router := NewRouter(cfg)

	return &Server{
		httpServer: &http.Server{
			Addr:        cfg.Addr,
			Handler:     router,
			ReadTimeout: 30 * time.Second,
			// renders are synchronous and may take a while
			WriteTimeout: 0,
			IdleTimeout:  60 * time.Second,
		},
		logger: cfg.Logger,
	}
}

func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	err := s.httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}
