package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	apperrors "github.com/aicoder/backend/internal/errors"
	"github.com/aicoder/backend/internal/httputil"
)

// Security header values applied to every response.
const (
	contentSecurityPolicy = "default-src 'self'; style-src 'self' 'unsafe-inline'; " +
		"script-src 'self'; img-src 'self' data: https:"
	strictTransportSecurity = "max-age=31536000; includeSubDomains; preload"
)

// CustomLoggerMiddleware logs each request with slog, including the request id.
func CustomLoggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.Info("http request",
			slog.String("request_id", requestid.Get(c)),
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
		)
	}
}

// RecoveryMiddleware turns panics into 500 JSON responses.
//
// The panic value is only sent to the client when exposeDetails is set
// (development); otherwise the generic internal error body is returned.
func RecoveryMiddleware(logger *slog.Logger, exposeDetails bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					slog.Any("error", r),
					slog.String("path", c.Request.URL.Path),
					slog.String("method", c.Request.Method),
				)

				if exposeDetails {
					c.AbortWithStatusJSON(http.StatusInternalServerError, httputil.ErrorResponse{
						Error:   "internal_error",
						Message: fmt.Sprint(r),
					})
					return
				}
				httputil.HandleErrorGin(c, apperrors.Wrapf(apperrors.ErrInternal, "panic: %v", r), nil)
			}
		}()

		c.Next()
	}
}

// SecurityHeadersMiddleware sets CSP, HSTS and the related hardening headers.
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Content-Security-Policy", contentSecurityPolicy)
		h.Set("Strict-Transport-Security", strictTransportSecurity)
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "SAMEORIGIN")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cross-Origin-Opener-Policy", "same-origin")
		h.Set("Cross-Origin-Resource-Policy", "same-origin")
		h.Set("X-DNS-Prefetch-Control", "off")
		h.Del("X-Powered-By")
		c.Next()
	}
}

// BodyLimitMiddleware rejects request bodies larger than limit bytes with 413.
func BodyLimitMiddleware(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			abortPayloadTooLarge(c, limit)
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}

func abortPayloadTooLarge(c *gin.Context, limit int64) {
	c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, httputil.ErrorResponse{
		Error:   "payload_too_large",
		Message: fmt.Sprintf("request body exceeds %d bytes", limit),
	})
}

// SanitizeMiddleware strips '<' and '>' from every string value of a JSON request body.
//
// Only requests with a JSON content type are rewritten. Numbers are kept verbatim.
func SanitizeMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body == nil || !strings.HasPrefix(c.ContentType(), "application/json") {
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				abortPayloadTooLarge(c, maxBytesErr.Limit)
				return
			}
			httputil.HandleBadRequestGin(c, fmt.Errorf("failed to read request body: %w", err), logger)
			return
		}

		if len(bytes.TrimSpace(body)) > 0 {
			body, err = sanitizeJSON(body)
			if err != nil {
				httputil.HandleBadRequestGin(c, errors.New("invalid JSON body"), logger)
				return
			}
		}

		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		c.Request.ContentLength = int64(len(body))
		c.Next()
	}
}

func sanitizeJSON(body []byte) ([]byte, error) {
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}
	if decoder.More() {
		return nil, errors.New("trailing data after JSON value")
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(sanitizeValue(value)); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

var angleBracketReplacer = strings.NewReplacer("<", "", ">", "")

func sanitizeValue(value any) any {
	switch v := value.(type) {
	case string:
		return angleBracketReplacer.Replace(v)
	case map[string]any:
		for key, item := range v {
			v[key] = sanitizeValue(item)
		}
		return v
	case []any:
		for i, item := range v {
			v[i] = sanitizeValue(item)
		}
		return v
	default:
		return v
	}
}

// APIKeyMiddleware fails every request with 500 when no AI provider credential is usable.
func APIKeyMiddleware(hasAIProvider func() bool, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !hasAIProvider() {
			logger.Error("no valid AI API keys configured")
			c.AbortWithStatusJSON(http.StatusInternalServerError, httputil.ErrorResponse{
				Error:   "configuration_error",
				Message: "No valid AI API keys configured",
			})
			return
		}
		c.Next()
	}
}
