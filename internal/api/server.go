package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ppiankov/pap/internal/metrics"
	"github.com/ppiankov/pap/internal/pipeline"
	"github.com/ppiankov/pap/internal/syncer"
	"github.com/ppiankov/pap/internal/validate"
)

// Server is the HTTP surface the UI talks to
type Server struct {
	router *gin.Engine
	coord  *syncer.Coordinator
	pipe   *pipeline.Pipeline
	links  *validate.LinkChecker
	log    *zap.Logger
}

// NewServer builds the router. links may be nil, which disables link checks.
func NewServer(coord *syncer.Coordinator, pipe *pipeline.Pipeline, links *validate.LinkChecker, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))

	s := &Server{
		router: router,
		coord:  coord,
		pipe:   pipe,
		links:  links,
		log:    log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "demoMode": s.coord.DemoMode(), "ai": s.pipe.ProviderName()})
	})
	s.router.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/sync/status", s.syncStatus)
		v1.POST("/sync/reconnect", s.syncReconnect)
		v1.GET("/sync/events", s.syncEvents)

		v1.GET("/claims", s.listClaims)
		v1.POST("/claims", s.saveClaim)
		v1.GET("/claims/export", s.exportClaims)
		v1.POST("/claims/import", s.importClaims)
		v1.GET("/claims/:id", s.getClaim)
		v1.DELETE("/claims/:id", s.deleteClaim)
		v1.PUT("/claims/:id/params", s.setParams)
		v1.POST("/claims/:id/analyze", s.analyzeClaim)
		v1.POST("/claims/:id/links", s.checkLinks)

		v1.GET("/claimants", s.listClaimants)
		v1.POST("/claimants/enrich", s.enrichClaimants)
		v1.GET("/claimants/:id", s.getClaimant)

		v1.GET("/stats/dashboard", s.dashboard)
		v1.GET("/topics", s.topics)

		v1.POST("/analyze", s.analyzeText)
		v1.POST("/discover", s.discover)

		v1.POST("/manifestos", s.addManifesto)
		v1.GET("/manifestos", s.listManifestos)
		v1.GET("/manifestos/:id", s.getManifesto)
		v1.PUT("/manifestos/:id/claims/:claimId", s.updateManifestoClaim)
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("api server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info("api server stopping")
	return srv.Shutdown(shutdownCtx)
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}

// fail maps domain errors onto status codes; anything unknown is a 500
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, validate.ErrValidation),
		errors.Is(err, syncer.ErrInvalidClaim),
		errors.Is(err, syncer.ErrInvalidImport),
		errors.Is(err, pipeline.ErrInvalidManifesto),
		errors.Is(err, pipeline.ErrBadURL):
		status = http.StatusBadRequest
	case errors.Is(err, syncer.ErrNotFound),
		errors.Is(err, pipeline.ErrManifestoNotFound):
		status = http.StatusNotFound
	case errors.Is(err, pipeline.ErrStale):
		status = http.StatusConflict
	case errors.Is(err, pipeline.ErrDisallowed):
		status = http.StatusForbidden
	}

	if status == http.StatusInternalServerError {
		s.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func notFound(c *gin.Context, what, id string) {
	c.JSON(http.StatusNotFound, gin.H{"error": what + " " + id + " not found"})
}
