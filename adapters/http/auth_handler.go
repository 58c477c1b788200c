package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio/internal/application/session"
	"github.com/khoahotran/portfolio/pkg/apperror"
	"github.com/khoahotran/portfolio/pkg/logger"
)

type CookieSettings struct {
	Name   string
	Secure bool
}

type AuthHandler struct {
	gate   *session.Gate
	cookie CookieSettings
	logger logger.Logger
}

func NewAuthHandler(gate *session.Gate, cookie CookieSettings, log logger.Logger) *AuthHandler {
	return &AuthHandler{gate: gate, cookie: cookie, logger: log}
}

type loginPage struct {
	Email string
	Error string
}

// LoginPage shows the sign-in form, or the dashboard when already signed in.
func (h *AuthHandler) LoginPage(c *gin.Context) {
	sid, _ := c.Cookie(h.cookie.Name)
	if state, _ := h.gate.Check(c.Request.Context(), sid); state == session.StateAuthenticated {
		c.Redirect(http.StatusSeeOther, "/admin")
		return
	}
	c.HTML(http.StatusOK, "login", loginPage{})
}

func (h *AuthHandler) Login(c *gin.Context) {
	email := c.PostForm("email")
	sid, sess, err := h.gate.Login(c.Request.Context(), email, c.PostForm("password"))
	if err != nil {
		page := loginPage{Email: email}
		var ve *apperror.ValidationError
		switch {
		case errors.As(err, &ve):
			page.Error = "Email and password are required."
		case errors.Is(err, session.ErrInvalidCredentials):
			page.Error = "Email or password is incorrect."
		default:
			h.logger.Error("Sign in failed", err)
			page.Error = "Could not reach the sign-in service. Try again."
		}
		c.HTML(apperror.ToHTTPStatus(err), "login", page)
		return
	}

	maxAge := int(time.Until(sess.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, sid, maxAge, "/", "", h.cookie.Secure, true)
	c.Redirect(http.StatusSeeOther, "/admin")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	sid, _ := c.Cookie(h.cookie.Name)
	if err := h.gate.Logout(c.Request.Context(), sid); err != nil {
		h.logger.Warn("Failed to drop session", zap.Error(err))
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
	c.Redirect(http.StatusSeeOther, "/")
}
