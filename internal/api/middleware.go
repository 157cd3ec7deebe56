package api

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"forestdash/internal/data"
	"forestdash/internal/domain"
	"forestdash/internal/explain"
	"forestdash/internal/forest"
	"forestdash/internal/history"
	"forestdash/internal/training"
)

// apiKey guards mutating routes when a key is configured.
func (s *Server) apiKey(c *gin.Context) {
	key := s.Settings.Server.APIKey
	if key == "" {
		c.Next()
		return
	}
	got := c.GetHeader("X-API-Key")
	if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Next()
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			s.Logger.Error("request", fields...)
			return
		}
		s.Logger.Info("request", fields...)
	}
}

func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.Metrics == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		s.Metrics.HTTPDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

func statusOf(err error) int {
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, domain.ErrUnknownDomain),
		errors.Is(err, data.ErrUnknownDataset),
		errors.Is(err, history.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrIncompleteRecord),
		errors.Is(err, forest.ErrInvalidTreeCount),
		errors.Is(err, errTooManyTrees),
		errors.Is(err, training.ErrUnknownTask),
		errors.Is(err, training.ErrUnknownColumn),
		errors.As(err, &verrs):
		return http.StatusBadRequest
	case errors.Is(err, training.ErrUnsupportedTask):
		return http.StatusUnprocessableEntity
	case errors.Is(err, explain.ErrUnavailable),
		errors.Is(err, errHistoryDisabled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(c *gin.Context, err error) {
	code := statusOf(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(code, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
