// Package api serves tasks, focus sessions and streaks over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gerrardelliot83-create/floe/internal/logging"
	"github.com/gerrardelliot83-create/floe/internal/service"
	"github.com/gerrardelliot83-create/floe/internal/store"
)

const shutdownTimeout = 5 * time.Second

// Server is the HTTP API server.
type Server struct {
	tasks  *service.Tasks
	focus  *service.Focus
	store  store.Store
	logger logging.Logger
	userID string
	now    func() time.Time
	engine *gin.Engine
}

// Options configures a Server.
type Options struct {
	UserID    string
	DailyGoal int
	Logger    logging.Logger
	Now       func() time.Time
}

// New creates a new Server backed by st.
func New(st store.Store, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	s := &Server{
		tasks:  service.NewTasks(st, logger),
		focus:  service.NewFocus(st, logger),
		store:  st,
		logger: logger,
		userID: opts.UserID,
		now:    now,
		engine: gin.New(),
	}
	s.focus.SetDailyGoal(opts.DailyGoal)
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := s.engine
	r.Use(gin.Recovery(), RequestIDMiddleware(), AccessLogMiddleware(s.logger))

	r.GET("/health", s.handleHealth)

	api := r.Group("/api")
	api.POST("/parse", s.handleParse)

	api.GET("/tasks", s.handleTaskList)
	api.POST("/tasks", s.handleTaskCreate)
	api.POST("/tasks/:id/complete", s.handleTaskComplete)
	api.DELETE("/tasks/:id", s.handleTaskDelete)
	api.GET("/agenda", s.handleAgenda)

	api.POST("/sessions", s.handleSessionCreate)
	api.GET("/streak", s.handleStreak)
	api.GET("/stats", s.handleStats)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("floe API listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Infof("shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
