// Package fakeapi serves the employee API over an in-memory repository. It
// backs local demos and integration tests and can inject failures to
// exercise the client's retry and error handling.
package fakeapi

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Sternrassler/employee-client/pkg/client"
	"github.com/Sternrassler/employee-client/pkg/metrics"
	"github.com/Sternrassler/employee-client/pkg/model"
	"github.com/Sternrassler/employee-client/pkg/repository"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// BasePath is the prefix of every API route.
const BasePath = "/api"

// Prometheus metrics for the fake API.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "employee_fakeapi_requests_total",
		Help: "Requests served by the fake employee API by route and status",
	}, []string{"route", "status"})

	injectedFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "employee_fakeapi_injected_failures_total",
		Help: "Failures injected into the fake employee API",
	})
)

type failure struct {
	status  int
	message string
}

// Server is the fake employee API.
type Server struct {
	repo   *repository.Memory
	engine *gin.Engine
	logger zerolog.Logger

	mu      sync.Mutex
	pending []failure
}

// New builds the router over repo.
func New(repo *repository.Memory) *Server {
	s := &Server{
		repo:   repo,
		engine: gin.New(),
		logger: log.With().Str("component", "fakeapi").Logger(),
	}

	s.engine.Use(s.requestLogger(), gin.Recovery())

	s.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Route not found"})
	})

	s.engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := s.engine.Group(BasePath, s.injectFailures())
	{
		api.GET("/employees", s.listAll)
		api.GET("/employees/search", s.search)
		api.GET("/employees/:id", s.getByID)
		api.POST("/employees", s.create)
		api.PUT("/employees/:id", s.update)
		api.DELETE("/employees/:id", s.remove)
	}

	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// FailNext makes the next n API requests fail with status. An empty message
// sends no body.
func (s *Server) FailNext(n, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := 0; i < n; i++ {
		s.pending = append(s.pending, failure{status: status, message: message})
	}
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Int("records", s.repo.Len()).Msg("Fake API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("fake api server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Shutting down fake API")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown fake api: %w", err)
	}
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		requestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()

		s.logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Msg("Fake API request")
	}
}

func (s *Server) injectFailures() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		if len(s.pending) == 0 {
			s.mu.Unlock()
			c.Next()
			return
		}
		f := s.pending[0]
		s.pending = s.pending[1:]
		s.mu.Unlock()

		injectedFailures.Inc()
		s.logger.Warn().
			Str("path", c.Request.URL.Path).
			Int("status", f.status).
			Msg("Injecting failure")

		if f.message == "" {
			c.AbortWithStatus(f.status)
			return
		}
		c.AbortWithStatusJSON(f.status, gin.H{"message": f.message})
	}
}

// GET /api/employees
func (s *Server) listAll(c *gin.Context) {
	all, err := s.repo.FetchAll(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	writeCacheable(c, all)
}

// GET /api/employees/search?term=ad&page=1&pageSize=10
func (s *Server) search(c *gin.Context) {
	page, err := intQuery(c, "page", 1)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	pageSize, err := intQuery(c, "pageSize", 10)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := s.repo.FetchPage(c.Request.Context(), c.Query("term"), page, pageSize)
	if err != nil {
		writeError(c, err)
		return
	}
	writeCacheable(c, result)
}

// GET /api/employees/:id
func (s *Server) getByID(c *gin.Context) {
	e, err := s.repo.FetchByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	writeCacheable(c, e)
}

// POST /api/employees
func (s *Server) create(c *gin.Context) {
	var e model.Employee
	if err := c.ShouldBindJSON(&e); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	e.ID = ""

	if err := s.repo.Create(c.Request.Context(), e); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PUT /api/employees/:id
func (s *Server) update(c *gin.Context) {
	var e model.Employee
	if err := c.ShouldBindJSON(&e); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	e.ID = c.Param("id")

	if err := s.repo.Update(c.Request.Context(), e); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DELETE /api/employees/:id
func (s *Server) remove(c *gin.Context) {
	if err := s.repo.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// writeCacheable sends v as JSON with a content-derived ETag and answers a
// matching If-None-Match with 304.
func writeCacheable(c *gin.Context, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	sum := sha256.Sum256(body)
	etag := `"` + hex.EncodeToString(sum[:8]) + `"`
	c.Header("ETag", etag)
	c.Header("Cache-Control", "no-cache")

	if match := c.GetHeader("If-None-Match"); match != "" && strings.Contains(match, etag) {
		c.Status(http.StatusNotModified)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// writeError forwards a repository error. The original server payload is
// sent when there is one.
func writeError(c *gin.Context, err error) {
	apiErr, ok := client.AsAPIError(err)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	status := apiErr.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}

	if len(apiErr.RawError) > 0 && json.Valid(apiErr.RawError) && apiErr.RawError[0] == '{' {
		c.Data(status, "application/json; charset=utf-8", apiErr.RawError)
		return
	}
	c.JSON(status, gin.H{"message": apiErr.Message})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"message": message})
}

func intQuery(c *gin.Context, name string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer (got %q)", name, raw)
	}
	return n, nil
}
