// Package api exposes the tracker service over a JSON HTTP API.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"goa.design/clue/log"
	"golang.org/x/time/rate"

	"github.com/fakeyudi/stride/internal/geo"
	"github.com/fakeyudi/stride/internal/session"
	"github.com/fakeyudi/stride/internal/store"
	"github.com/fakeyudi/stride/internal/tracker"
)

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
}

// Default sample ingestion limits. A phone GPS reports about once a second.
const (
	DefaultSampleRate  = rate.Limit(20)
	DefaultSampleBurst = 50
)

// Handler serves the API routes over a tracker.Service.
type Handler struct {
	svc     *tracker.Service
	samples *rate.Limiter
}

type Option func(*Handler)

// WithSampleLimit caps POST /session/samples at r per second with the
// given burst. Requests over the limit get 429.
func WithSampleLimit(r rate.Limit, burst int) Option {
	return func(h *Handler) { h.samples = rate.NewLimiter(r, burst) }
}

func NewHandler(svc *tracker.Service, opts ...Option) *Handler {
	h := &Handler{svc: svc, samples: rate.NewLimiter(DefaultSampleRate, DefaultSampleBurst)}
	for _, o := range opts {
		o(h)
	}
	return h
}

// NewRouter builds the gin engine. Every request context carries the logger
// found in ctx.
func NewRouter(ctx context.Context, svc *tracker.Service, opts ...Option) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(ctx))
	NewHandler(svc, opts...).Register(r)
	return r
}

// Register attaches the routes to r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/healthz", h.health)

	r.GET("/runs", h.listRuns)
	r.GET("/runs/:id", h.getRun)
	r.DELETE("/runs/:id", h.deleteRun)

	s := r.Group("/session")
	s.POST("", h.start)
	s.GET("", h.status)
	s.POST("/samples", h.throttle(h.samples), h.addSample)
	s.PUT("/pause", h.pause)
	s.PUT("/resume", h.resume)
	s.PUT("/stop", h.stop)

	r.GET("/stats", h.stats)
	r.GET("/achievements", h.achievements)
}

func requestLogger(base context.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := log.WithContext(c.Request.Context(), base)
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		c.Next()
		log.Info(ctx,
			log.KV{K: "msg", V: "request"},
			log.KV{K: "method", V: c.Request.Method},
			log.KV{K: "path", V: c.FullPath()},
			log.KV{K: "status", V: c.Writer.Status()},
			log.KV{K: "ms", V: time.Since(start).Milliseconds()})
	}
}

func (h *Handler) throttle(l *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow() {
			log.Warn(c.Request.Context(), log.KV{K: "msg", V: "rate limited"}, log.KV{K: "path", V: c.FullPath()})
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many samples, slow down"})
			return
		}
		c.Next()
	}
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, session.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNoSession), errors.Is(err, store.ErrRunNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeError(c *gin.Context, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		log.Error(c.Request.Context(), err, log.KV{K: "path", V: c.FullPath()})
	}
	c.JSON(code, gin.H{"error": err.Error()})
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   "stride",
	})
}

func (h *Handler) listRuns(c *gin.Context) {
	runs, err := h.svc.History(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, runs)
}

func (h *Handler) getRun(c *gin.Context) {
	run, err := h.svc.Run(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

func (h *Handler) deleteRun(c *gin.Context) {
	if err := h.svc.DeleteRun(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) start(c *gin.Context) {
	rs, err := h.svc.Start(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rs)
}

func (h *Handler) status(c *gin.Context) {
	rs, err := h.svc.Status(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rs)
}

type sampleReq struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Timestamp int64    `json:"timestamp"`
}

func (h *Handler) addSample(c *gin.Context) {
	var req sampleReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Latitude == nil || req.Longitude == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: latitude and longitude are required"})
		return
	}
	rs, err := h.svc.AddSample(c.Request.Context(), geo.Coordinate{
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		Timestamp: req.Timestamp,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rs)
}

func (h *Handler) pause(c *gin.Context) {
	h.transition(c, h.svc.Pause)
}

func (h *Handler) resume(c *gin.Context) {
	h.transition(c, h.svc.Resume)
}

func (h *Handler) transition(c *gin.Context, fn func(context.Context) (*session.RunSession, error)) {
	rs, err := fn(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rs)
}

func (h *Handler) stop(c *gin.Context) {
	res, err := h.svc.Stop(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) stats(c *gin.Context) {
	st, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handler) achievements(c *gin.Context) {
	items, err := h.svc.Achievements(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}
