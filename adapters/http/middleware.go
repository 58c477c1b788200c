package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio/internal/application/notice"
	"github.com/khoahotran/portfolio/internal/application/session"
	"github.com/khoahotran/portfolio/internal/datastore"
	"github.com/khoahotran/portfolio/pkg/apperror"
	"github.com/khoahotran/portfolio/pkg/logger"
)

const (
	GinContextKeySession = "session"

	loginPath = "/admin/login"
)

// ErrorMiddleware turns errors attached with c.Error into JSON responses.
func ErrorMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		status := apperror.ToHTTPStatus(err)
		if status >= http.StatusInternalServerError {
			log.Error("Request failed", err, zap.String("path", c.Request.URL.Path), zap.Int("status", status))
		} else {
			log.Warn("Request rejected", zap.String("path", c.Request.URL.Path), zap.Int("status", status), zap.Error(err))
		}
		if c.Writer.Written() {
			return
		}

		var ve *apperror.ValidationError
		if errors.As(err, &ve) {
			c.JSON(status, gin.H{"error": apperror.ErrValidation.Error(), "message": ve.Error(), "fields": ve.Fields})
			return
		}
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			c.JSON(status, appErr.ToJSON())
			return
		}
		c.JSON(status, gin.H{"error": http.StatusText(status)})
	}
}

func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.Bool("htmx", isHTMX(c)),
		)
	}
}

// Recovery keeps a panicking handler from taking the page down with it.
func Recovery(log logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error("Handler panicked", nil, zap.Any("panic", recovered), zap.String("path", c.Request.URL.Path))
		if isHTMX(c) {
			setTrigger(c, map[string]any{"notice": notice.Failure("Error", "Something went wrong.")})
		}
		c.AbortWithStatus(http.StatusInternalServerError)
	})
}

// SessionGate lets only the signed-in admin through. Everyone else is sent
// to the login page; HTMX requests are redirected by the client.
func SessionGate(gate *session.Gate, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, _ := c.Cookie(cookieName)
		state, sess := gate.Check(c.Request.Context(), sid)
		if state != session.StateAuthenticated {
			redirect(c, loginPath)
			c.Abort()
			return
		}

		c.Set(GinContextKeySession, sess)
		c.Request = c.Request.WithContext(datastore.WithAccessToken(c.Request.Context(), sess.AccessToken))
		c.Next()
	}
}

func GetSessionFromGinContext(c *gin.Context) (*datastore.Session, bool) {
	v, ok := c.Get(GinContextKeySession)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*datastore.Session)
	return sess, ok
}

func isHTMX(c *gin.Context) bool {
	return c.GetHeader("HX-Request") == "true"
}

func redirect(c *gin.Context, location string) {
	if isHTMX(c) {
		c.Header("HX-Redirect", location)
		c.Status(http.StatusOK)
		return
	}
	c.Redirect(http.StatusSeeOther, location)
}

// setTrigger merges client events into the HX-Trigger header.
func setTrigger(c *gin.Context, events map[string]any) {
	merged := map[string]any{}
	if prev := c.Writer.Header().Get("HX-Trigger"); prev != "" {
		_ = json.Unmarshal([]byte(prev), &merged)
	}
	for k, v := range events {
		merged[k] = v
	}
	b, err := json.Marshal(merged)
	if err != nil {
		return
	}
	c.Header("HX-Trigger", string(b))
}

func sendNotice(c *gin.Context, n notice.Notice) {
	if n.IsZero() {
		return
	}
	setTrigger(c, map[string]any{"notice": n})
}
