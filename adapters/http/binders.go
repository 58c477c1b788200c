package http

import (
	"html/template"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/khoahotran/portfolio/internal/application/crud"
	"github.com/khoahotran/portfolio/internal/domain/certificate"
	"github.com/khoahotran/portfolio/internal/domain/experience"
	"github.com/khoahotran/portfolio/internal/domain/profile"
	"github.com/khoahotran/portfolio/internal/domain/project"
	"github.com/khoahotran/portfolio/internal/domain/resource"
	"github.com/khoahotran/portfolio/pkg/apperror"
	"github.com/khoahotran/portfolio/pkg/logger"
)

func NewProfileHandler(repo *crud.Repository[profile.Profile], t *template.Template, log logger.Logger) *ResourceHandler[profile.Profile] {
	return &ResourceHandler[profile.Profile]{repo: repo, templates: t, logger: log, bind: bindProfile}
}

func NewProjectHandler(repo *crud.Repository[project.Project], t *template.Template, log logger.Logger) *ResourceHandler[project.Project] {
	return &ResourceHandler[project.Project]{
		repo: repo, templates: t, logger: log,
		bind: bindProject,
		lists: []listField[project.Project]{
			{name: "technologies", input: "technology_input", values: func(p *project.Project) *[]string { return &p.Technologies }, add: crud.AddUnique, byValue: true},
		},
	}
}

func NewCertificateHandler(repo *crud.Repository[certificate.Certificate], t *template.Template, log logger.Logger) *ResourceHandler[certificate.Certificate] {
	return &ResourceHandler[certificate.Certificate]{repo: repo, templates: t, logger: log, bind: bindCertificate}
}

func NewExperienceHandler(repo *crud.Repository[experience.Experience], t *template.Template, log logger.Logger) *ResourceHandler[experience.Experience] {
	return &ResourceHandler[experience.Experience]{
		repo: repo, templates: t, logger: log,
		bind: bindExperience,
		lists: []listField[experience.Experience]{
			{name: "technologies", input: "technology_input", values: func(e *experience.Experience) *[]string { return &e.Technologies }, add: crud.AddUnique, byValue: true},
			{name: "achievements", input: "achievement_input", values: func(e *experience.Experience) *[]string { return &e.Achievements }, add: crud.Append},
		},
	}
}

func bindProfile(c *gin.Context, p *profile.Profile) error {
	p.Name = c.PostForm("name")
	p.Title = c.PostForm("title")
	p.Bio = c.PostForm("bio")
	p.Email = strings.TrimSpace(c.PostForm("email"))
	p.Phone = resource.Optional(c.PostForm("phone"))
	p.Location = resource.Optional(c.PostForm("location"))
	p.LinkedinURL = resource.Optional(c.PostForm("linkedin_url"))
	p.GithubURL = resource.Optional(c.PostForm("github_url"))
	p.CVURL = resource.Optional(c.PostForm("cv_url"))

	img, err := bindImage(c, "profile_image_url")
	p.ProfileImageURL = resource.Optional(img)
	return err
}

func bindProject(c *gin.Context, p *project.Project) error {
	p.Title = c.PostForm("title")
	p.Description = c.PostForm("description")
	p.Category = c.PostForm("category")
	p.Technologies = postedList(c, "technologies")
	p.DemoURL = resource.Optional(c.PostForm("demo_url"))
	p.GithubURL = resource.Optional(c.PostForm("github_url"))
	p.Featured = c.PostForm("featured") != ""

	img, err := bindImage(c, "image_url")
	p.ImageURL = resource.Optional(img)
	return err
}

func bindCertificate(c *gin.Context, cert *certificate.Certificate) error {
	cert.Title = c.PostForm("title")
	cert.Institution = c.PostForm("institution")
	cert.Description = resource.Optional(c.PostForm("description"))

	img, err := bindImage(c, "image_url")
	cert.ImageURL = img
	if err != nil {
		return err
	}

	date, err := resource.ParseDate(c.PostForm("date"))
	if err != nil {
		return apperror.NewRejected("date", "date must be YYYY-MM-DD")
	}
	cert.Date = date
	return nil
}

func bindExperience(c *gin.Context, e *experience.Experience) error {
	e.Company = c.PostForm("company")
	e.Position = c.PostForm("position")
	e.Description = c.PostForm("description")
	e.Technologies = postedList(c, "technologies")
	e.Achievements = postedList(c, "achievements")

	start, err := resource.ParseDate(c.PostForm("start_date"))
	if err != nil {
		return apperror.NewRejected("start_date", "start date must be YYYY-MM-DD")
	}
	end, err := resource.ParseDate(c.PostForm("end_date"))
	if err != nil {
		return apperror.NewRejected("end_date", "end date must be YYYY-MM-DD")
	}
	e.StartDate, e.EndDate = start, end
	return nil
}

// bindImage resolves an image field. A new upload replaces whatever was
// there, a typed URL replaces a previous upload, otherwise the hidden upload
// value is kept. The previous value survives a rejected upload.
func bindImage(c *gin.Context, name string) (string, error) {
	img := resource.Image{URL: strings.TrimSpace(c.PostForm(name))}
	if data := c.PostForm(name + "_data"); resource.IsImageDataURI(data) {
		img.Data = data
	}
	if img.URL != "" {
		img.UseURL(img.URL)
	}

	fh, err := c.FormFile(name + "_file")
	if err != nil || fh.Size == 0 {
		return img.Ref(), nil
	}
	f, err := fh.Open()
	if err != nil {
		return img.Ref(), apperror.NewRejected(name, "could not read the uploaded file")
	}
	defer f.Close()

	data, err := crud.ImageFromUpload(name, f, fh.Size)
	if err != nil {
		return img.Ref(), err
	}
	img.UseUpload(data)
	return img.Ref(), nil
}

// postedList reads the hidden inputs of a list field. The result is never
// nil so an emptied list is stored as empty rather than null.
func postedList(c *gin.Context, name string) []string {
	values := make([]string, 0)
	for _, v := range c.PostFormArray(name) {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}
