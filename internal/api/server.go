package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"reelcheck/internal/config"
	"reelcheck/internal/logging"
	"reelcheck/internal/progress"
	"reelcheck/internal/services"
	"reelcheck/internal/stepcache"
	"reelcheck/internal/verify"
)

// Runner executes one verification and streams progress to the reporter.
type Runner interface {
	Run(ctx context.Context, postURL string, reporter progress.Reporter) (*verify.Report, error)
}

// Server hosts the HTTP API.
type Server struct {
	cfg    *config.Config
	logger *slog.Logger
	runner Runner
	store  stepcache.Store

	engine   *gin.Engine
	upgrader websocket.Upgrader
	http     *http.Server
}

// NewServer wires the routes. The store is only used for workflow listing
// and deletion; the runner owns all pipeline work.
func NewServer(cfg *config.Config, runner Runner, store stepcache.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		cfg:    cfg,
		logger: logger.With(logging.String(logging.FieldComponent, "api")),
		runner: runner,
		store:  store,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// The daemon binds to loopback by default; cross-origin browser
			// calls are a deliberate choice by the operator.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestLogger())

	engine.GET("/healthz", s.handleHealth)

	authed := engine.Group("/api", s.requireToken())
	authed.POST("/verify", s.handleVerify)
	authed.GET("/verify/ws", s.handleVerifyWS)
	authed.GET("/workflows", s.handleListWorkflows)
	authed.DELETE("/workflows", s.handleDeleteWorkflow)

	s.engine = engine
	return s
}

// Handler exposes the router, useful for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe blocks until ctx is cancelled or the listener fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.http = &http.Server{
		Addr:              s.cfg.Paths.APIBind,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.ListenAndServe()
	}()
	s.logger.Info("api listening", logging.String("bind", s.cfg.Paths.APIBind))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.NewString()
		c.Request = c.Request.WithContext(services.WithRequestID(c.Request.Context(), requestID))
		c.Header("X-Request-ID", requestID)

		c.Next()

		s.logger.Info("request",
			logging.String(logging.FieldRequestID, requestID),
			logging.String("method", c.Request.Method),
			logging.String("path", c.Request.URL.Path),
			logging.Int("status", c.Writer.Status()),
			logging.Duration("elapsed", time.Since(start)))
	}
}

func (s *Server) requireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(s.cfg.Paths.APIToken)
		if token == "" {
			c.Next()
			return
		}
		header := c.GetHeader("Authorization")
		if header != "Bearer "+token && c.Query("token") != token {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing token"})
			return
		}
		c.Next()
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
