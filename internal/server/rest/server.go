// Package rest is the HTTP surface of filekeeper: a gin router exposing the
// credential and file routes under a configurable prefix, plus health and
// metrics endpoints.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/filekeeper/internal/logging"
	"github.com/dmitrijs2005/filekeeper/internal/server/metrics"
	"github.com/dmitrijs2005/filekeeper/internal/server/models"
	"github.com/dmitrijs2005/filekeeper/internal/server/services"
	"github.com/gin-gonic/gin"
)

// UserService is what the credential routes need.
type UserService interface {
	Register(ctx context.Context, name, email, password string) (*models.UserSummary, error)
	Login(ctx context.Context, name, password string) (*models.UserSummary, error)
}

// FileService is what the file routes need.
type FileService interface {
	Ingest(ctx context.Context, u services.Upload) (*models.File, error)
	List(ctx context.Context) ([]*models.File, error)
	Resolve(ctx context.Context, key string) (*services.Download, error)
	Delete(ctx context.Context, id string) error
	MaxSize() int64
}

// Options configures a Server.
type Options struct {
	Address         string
	APIPrefix       string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
	Metrics         *metrics.Collector
}

type Server struct {
	address         string
	shutdownTimeout time.Duration
	engine          *gin.Engine
	logger          logging.Logger
	users           UserService
	files           FileService
	metrics         *metrics.Collector
}

func NewServer(opts Options, l logging.Logger, us UserService, fs FileService) (*Server, error) {
	s := &Server{
		address:         opts.Address,
		shutdownTimeout: opts.ShutdownTimeout,
		logger:          l.With("module", "http_server"),
		users:           us,
		files:           fs,
		metrics:         opts.Metrics,
	}
	if s.shutdownTimeout <= 0 {
		s.shutdownTimeout = 10 * time.Second
	}

	mh, err := metrics.Handler(opts.Metrics)
	if err != nil {
		return nil, err
	}

	cm, err := corsMiddleware(opts.AllowedOrigins)
	if err != nil {
		return nil, err
	}

	s.engine = s.routes(opts.APIPrefix, originGuard(opts.AllowedOrigins), cm, mh)
	return s, nil
}

// Handler returns the router, for use with httptest.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes(prefix string, guard, corsHandler gin.HandlerFunc, metricsHandler http.Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), s.observe(), guard, corsHandler)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metricsHandler))

	api := r.Group("/" + strings.Trim(prefix, "/"))
	api.POST("/signin", s.handleRegister)
	api.POST("/signup", s.handleRegister)
	api.POST("/login", s.handleLogin)
	api.POST("/upload", s.handleUpload)
	api.GET("/files", s.handleList)
	api.GET("/uploads/:key", s.handleServe(dispositionInline))
	api.GET("/download/:key", s.handleServe(dispositionAttachment))
	api.DELETE("/files/:id", s.handleDelete)

	return r
}

// Run listens on the configured address and serves until ctx is cancelled,
// then drains in-flight requests for at most the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	stopped := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
		defer cancel()
		stopped <- srv.Shutdown(sctx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-stopped
}
