// Package httpapi exposes the identity use-cases over HTTP using gin. It
// owns routing, the token and origin middlewares and the mapping from
// service errors to the wire responses.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/identity/internal/logging"
	"github.com/dmitrijs2005/identity/internal/server/auth"
	"github.com/dmitrijs2005/identity/internal/server/config"
	"github.com/dmitrijs2005/identity/internal/server/services"
)

const shutdownTimeout = 5 * time.Second

// Server is the HTTP front of the identity service.
type Server struct {
	cfg        *config.Config
	svc        *services.Service
	tokens     *auth.TokenService
	log        logging.Logger
	engine     *gin.Engine
	httpServer *http.Server
}

// NewServer builds the gin engine with all routes and middleware attached.
func NewServer(cfg *config.Config, svc *services.Service, tokens *auth.TokenService, log logging.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		cfg:    cfg,
		svc:    svc,
		tokens: tokens,
		log:    log.With("component", "httpapi"),
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestID(), s.requestLogger())

	engine.GET("/health", s.handleHealth)

	v1 := engine.Group("/v1")
	v1.POST("/register", s.handleRegister)
	v1.POST("/authenticate", s.handleAuthenticate)
	v1.GET("/publicSignature", s.handlePublicSignature)
	v1.GET("/configuration", s.originClassifier(), s.handleGetConfiguration)
	v1.POST("/configuration", s.validateToken(), s.handleUpdateConfiguration)
	v1.POST("/updateUser", s.validateToken(), s.handleUpdateUser)
	v1.POST("/impersonate", s.validateToken(), s.handleImpersonate)

	s.engine = engine
	s.httpServer = &http.Server{Addr: cfg.EndpointAddr, Handler: engine}
	return s
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info(ctx, "http server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info(ctx, "shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}
