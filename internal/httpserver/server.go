package httpserver

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hookview/hookview/internal/metric"
	"github.com/hookview/hookview/internal/model"
	"github.com/hookview/hookview/internal/webui"
)

// WebhookReader is the narrow engine contract required by the HTTP API.
type WebhookReader interface {
	Query(ctx context.Context, spec model.QuerySpec) (model.QueryResult, error)
	Stats(ctx context.Context) (model.Stats, error)
	FindByID(ctx context.Context, id string) (model.WebhookRecord, error)
	DeleteByID(ctx context.Context, id string) error
	ListDates(ctx context.Context) ([]string, error)
}

// Server provides the REST API and dashboard for browsing webhook records.
type Server struct {
	addr     string
	engine   WebhookReader
	metrics  *metric.Metrics
	server   *http.Server
	listener net.Listener
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewServer creates a new HTTP API server.
func NewServer(addr string, engine WebhookReader) *Server {
	if addr == "" {
		addr = "0.0.0.0:3000"
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:   addr,
		engine: engine,
		ctx:    ctx,
		cancel: cancel,
	}
}

// SetMetrics exposes the given collectors at /metrics.
func (s *Server) SetMetrics(m *metric.Metrics) {
	s.metrics = m
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	s.routes(r)

	s.server = &http.Server{
		Handler:           r,
		BaseContext:       func(_ net.Listener) context.Context { return s.ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = listener

	go s.server.Serve(listener)
	return nil
}

// Addr returns the bound listen address, useful when the configured port is 0.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.addr
	}
	return s.listener.Addr().String()
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() error {
	s.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// routes registers all handlers. Literal routes like /dates and /stats are
// registered alongside the :id param route; gin resolves the precedence.
func (s *Server) routes(r *gin.Engine) {
	r.GET("/", s.handleIndex)
	r.GET("/api/health", s.handleHealth)
	r.GET("/api/webhooks", s.handleList)
	r.GET("/api/webhooks/dates", s.handleDates)
	r.GET("/api/webhooks/stats", s.handleStats)
	r.GET("/api/webhooks/:id", s.handleGet)
	r.DELETE("/api/webhooks/:id", s.handleDelete)
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}
}

func (s *Server) handleIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", webui.Index())
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleList(c *gin.Context) {
	var req struct {
		Date           string `form:"date"`
		Page           int    `form:"page"`
		Limit          int    `form:"limit"`
		Method         string `form:"method"`
		SourceIP       string `form:"sourceIp"`
		Search         string `form:"search"`
		ConversationID string `form:"conversationId"`
	}
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}

	res, err := s.engine.Query(c.Request.Context(), model.QuerySpec{
		DatePrefix:     req.Date,
		Page:           req.Page,
		Limit:          req.Limit,
		Method:         req.Method,
		SourceIP:       req.SourceIP,
		Search:         req.Search,
		ConversationID: req.ConversationID,
	})
	if err != nil {
		s.fail(c, "listing webhooks", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  res.Records,
		"total": res.Total,
		"page":  res.Page,
		"limit": res.Limit,
	})
}

func (s *Server) handleGet(c *gin.Context) {
	rec, err := s.engine.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, "fetching webhook", err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleDelete(c *gin.Context) {
	if err := s.engine.DeleteByID(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, "deleting webhook", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleDates(c *gin.Context) {
	dates, err := s.engine.ListDates(c.Request.Context())
	if err != nil {
		s.fail(c, "listing dates", err)
		return
	}
	if dates == nil {
		dates = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"dates": dates})
}

func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.engine.Stats(c.Request.Context())
	if err != nil {
		s.fail(c, "computing stats", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// fail maps engine errors onto HTTP statuses: missing records are 404, a
// missing store configuration is a descriptive 500, everything else is a
// generic 500 with the detail kept in the server log.
func (s *Server) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "webhook not found"})
	case errors.Is(err, model.ErrNotConfigured):
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "blob store is not configured; set the store endpoint and credentials",
		})
	default:
		log.Printf("httpserver: %s: %v", op, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed " + op})
	}
}
