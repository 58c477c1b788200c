package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/khoahotran/portfolio/internal/application/portfolio"
	"github.com/khoahotran/portfolio/internal/domain/project"
	"github.com/khoahotran/portfolio/pkg/apperror"
)

// APIHandler exposes the public content as JSON. Unlike the page it does
// not fall back to samples; failures surface through ErrorMiddleware.
type APIHandler struct {
	repos portfolio.Repositories
}

func NewAPIHandler(repos portfolio.Repositories) *APIHandler {
	return &APIHandler{repos: repos}
}

func (h *APIHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

func (h *APIHandler) Profile(c *gin.Context) {
	p, err := h.repos.Profiles.First(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	if p == nil {
		c.Error(apperror.NewNotFound("profile", "first"))
		return
	}
	c.JSON(http.StatusOK, ToProfileDTO(*p))
}

func (h *APIHandler) Projects(c *gin.Context) {
	all, err := h.repos.Projects.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	filtered := project.Filter(all, c.DefaultQuery("category", "all"))
	c.JSON(http.StatusOK, gin.H{"data": mapSlice(filtered, ToProjectDTO)})
}

func (h *APIHandler) Certificates(c *gin.Context) {
	certs, err := h.repos.Certificates.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": mapSlice(certs, ToCertificateDTO)})
}

func (h *APIHandler) Experiences(c *gin.Context) {
	exps, err := h.repos.Experiences.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": mapSlice(exps, ToExperienceDTO)})
}
