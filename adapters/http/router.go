package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/khoahotran/portfolio/internal/app"
)

// NewRouter wires every route onto a fresh engine.
func NewRouter(a *app.App) (*gin.Engine, error) {
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	if a.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.SetHTMLTemplate(templates)
	router.Use(Recovery(a.Logger))
	router.Use(RequestLogger(a.Logger))
	router.Use(ErrorMiddleware(a.Logger))

	public := NewPublicHandler(a.Portfolio, a.Reveal, a.Logger)
	api := NewAPIHandler(a.Repos)
	authHandler := NewAuthHandler(a.Gate, CookieSettings{Name: a.Config.Session.CookieName, Secure: a.Config.Session.Secure}, a.Logger)

	router.GET("/", public.Home)
	router.POST("/reveal/tap", public.RevealTap)
	router.GET("/feed.xml", public.Feed)

	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/health", api.Health)
		apiGroup.GET("/profile", api.Profile)
		apiGroup.GET("/projects", api.Projects)
		apiGroup.GET("/certificates", api.Certificates)
		apiGroup.GET("/experiences", api.Experiences)
	}

	router.GET("/admin/login", authHandler.LoginPage)
	router.POST("/admin/login", authHandler.Login)

	admin := router.Group("/admin")
	admin.Use(SessionGate(a.Gate, a.Config.Session.CookieName))
	{
		admin.POST("/logout", authHandler.Logout)
		admin.GET("", func(c *gin.Context) {
			c.Redirect(http.StatusSeeOther, "/admin/profile")
		})

		profiles := NewProfileHandler(a.Repos.Profiles, templates, a.Logger)
		admin.GET("/profile", profiles.SingletonTab)
		admin.POST("/profile/form", profiles.Form)

		registerResource(admin, NewProjectHandler(a.Repos.Projects, templates, a.Logger))
		registerResource(admin, NewCertificateHandler(a.Repos.Certificates, templates, a.Logger))
		registerResource(admin, NewExperienceHandler(a.Repos.Experiences, templates, a.Logger))
	}

	return router, nil
}

func registerResource[T any](g *gin.RouterGroup, h *ResourceHandler[T]) {
	r := g.Group("/" + h.schema().Path)
	r.GET("", h.Tab)
	r.GET("/list", h.List)
	r.GET("/new", h.New)
	r.GET("/close", h.Close)
	r.POST("/form", h.Form)
	r.GET("/:id/edit", h.Edit)
	r.POST("/:id/delete", h.Delete)
}
