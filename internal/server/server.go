package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"docintake/internal/export"
	"docintake/internal/pipeline"
	"docintake/internal/repository"
)

// Server wires the HTTP surface over the document pipeline and repository.
type Server struct {
	processor      *pipeline.Processor
	docs           repository.DocumentRepository
	store          pipeline.FileStore
	exporter       *export.Service
	pool           *pgxpool.Pool
	maxUploadBytes int64
	logger         *slog.Logger
}

func New(
	processor *pipeline.Processor,
	docs repository.DocumentRepository,
	store pipeline.FileStore,
	exporter *export.Service,
	pool *pgxpool.Pool,
	maxUploadBytes int64,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = 20 << 20
	}
	return &Server{
		processor:      processor,
		docs:           docs,
		store:          store,
		exporter:       exporter,
		pool:           pool,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), RequestLogger(s.logger))
	r.MaxMultipartMemory = s.maxUploadBytes

	r.GET("/healthz", s.healthz)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/documents", s.uploadDocument)
		v1.GET("/documents", s.listDocuments)
		v1.GET("/documents/export", s.exportDocuments)
		v1.GET("/documents/:id", s.getDocument)
		v1.PATCH("/documents/:id", s.updateDocument)
		v1.DELETE("/documents/:id", s.deleteDocument)
	}
	return r
}

func (s *Server) healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := s.pool.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
