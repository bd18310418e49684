// Package api serves the studio over HTTP with gin.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/logging"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/studio"
	"github.com/Nephrolytics-ai/polyglot-podcast/pkg/utils"
)

const (
	maxUploadBytes  = 64 << 20
	shutdownTimeout = 10 * time.Second
)

var errUploadTooLarge = errors.New("upload too large")

type Server struct {
	Studio *studio.Studio
	Router *gin.Engine
	// MaxUploadBytes bounds each intro or outro file; larger uploads are rejected.
	MaxUploadBytes int64
}

func NewServer(s *studio.Studio) *Server {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	router.MaxMultipartMemory = maxUploadBytes

	server := &Server{Studio: s, Router: router, MaxUploadBytes: maxUploadBytes}
	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	s.Router.GET("/health", s.health)

	shows := s.Router.Group("/shows")
	{
		shows.GET("", s.listShows)
		shows.POST("", s.createShow)
		shows.GET("/:id", s.getShow)
		shows.PUT("/:id", s.updateShow)
		shows.GET("/:id/scripts", s.listShowScripts)
		shows.POST("/:id/episodes", s.draftEpisode)
	}

	scripts := s.Router.Group("/scripts")
	{
		scripts.GET("/:id", s.getScript)
		scripts.POST("/:id/render", s.renderScript)
		scripts.GET("/:id/audio", s.scriptAudio)
	}

	s.Router.GET("/voices", s.listVoices)
	s.Router.POST("/render", s.renderText)
}

func (s *Server) health(c *gin.Context) {
	if err := s.Studio.Store().Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "unhealthy", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "database": "connected"})
}

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	log := logging.NewLogger(ctx)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("api listening addr=%s", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		log.Errorf("error: %v", err)
		return utils.WrapIfNotNil(err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Errorf("error: %v", err)
		return utils.WrapIfNotNil(err)
	}
	log.Infof("api stopped")
	return nil
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logging.NewLogger(c.Request.Context()).Infof("http method=%s path=%s status=%d latency_ms=%d",
			c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start).Milliseconds())
	}
}
