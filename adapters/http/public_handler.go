package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/khoahotran/portfolio/internal/application/portfolio"
	"github.com/khoahotran/portfolio/internal/application/reveal"
	"github.com/khoahotran/portfolio/pkg/logger"
)

const revealCookie = "reveal"

type PublicHandler struct {
	service *portfolio.Service
	counter reveal.Counter
	logger  logger.Logger
	now     func() time.Time
}

func NewPublicHandler(service *portfolio.Service, counter reveal.Counter, log logger.Logger) *PublicHandler {
	return &PublicHandler{service: service, counter: counter, logger: log, now: time.Now}
}

type homePage struct {
	Page portfolio.Page
	Year int
}

func (h *PublicHandler) Home(c *gin.Context) {
	page := h.service.Page(c.Request.Context(), c.Query("category"))
	c.HTML(http.StatusOK, "home", homePage{Page: page, Year: h.now().Year()})
}

// RevealTap counts footer taps in a cookie. The completing tap sends the
// browser to the login page; every other tap answers with no content.
func (h *PublicHandler) RevealTap(c *gin.Context) {
	raw, _ := c.Cookie(revealCookie)
	state, navigate := h.counter.Tap(reveal.Decode(raw), h.now())

	c.SetSameSite(http.SameSiteLaxMode)
	if navigate {
		c.SetCookie(revealCookie, "", -1, "/", "", false, true)
		redirect(c, loginPath)
		return
	}
	c.SetCookie(revealCookie, state.Encode(), int(h.counter.Window.Seconds())+1, "/", "", false, true)
	c.Status(http.StatusNoContent)
}

func (h *PublicHandler) Feed(c *gin.Context) {
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	feed, err := h.service.Feed(c.Request.Context(), scheme+"://"+c.Request.Host)
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("Content-Type", "application/rss+xml; charset=utf-8")
	if err := feed.WriteRss(c.Writer); err != nil {
		h.logger.Error("Failed to write RSS feed to response", err)
	}
}
