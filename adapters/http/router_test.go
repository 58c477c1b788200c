package http

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/khoahotran/portfolio/internal/app"
	"github.com/khoahotran/portfolio/internal/application/crud"
	"github.com/khoahotran/portfolio/internal/config"
	"github.com/khoahotran/portfolio/internal/domain/project"
	"github.com/khoahotran/portfolio/pkg/logger"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "correct horse"
)

type RouterTestSuite struct {
	suite.Suite
	app    *app.App
	router *gin.Engine
	cookie *http.Cookie
}

func TestRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	suite.Run(t, new(RouterTestSuite))
}

func (s *RouterTestSuite) SetupTest() {
	var cfg config.Config
	cfg.Backend.Driver = config.DriverMemory
	cfg.Admin.Email = adminEmail
	cfg.Admin.Password = adminPassword
	cfg.Session.CookieName = "portfolio_session"

	a, err := app.New(context.Background(), cfg, logger.NewNop())
	s.Require().NoError(err)
	s.app = a

	s.router, err = NewRouter(a)
	s.Require().NoError(err)
	s.cookie = nil
}

func (s *RouterTestSuite) TearDownTest() {
	s.NoError(s.app.Close())
}

func (s *RouterTestSuite) do(method, target string, form url.Values, htmx bool, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

// admin sends an HTMX request as the signed-in admin.
func (s *RouterTestSuite) admin(method, target string, form url.Values) *httptest.ResponseRecorder {
	if s.cookie == nil {
		s.login()
	}
	return s.do(method, target, form, true, s.cookie)
}

// upload posts a multipart form with one file as the signed-in admin.
func (s *RouterTestSuite) upload(target string, fields url.Values, fileField, fileName string, content []byte) *httptest.ResponseRecorder {
	if s.cookie == nil {
		s.login()
	}
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, vs := range fields {
		for _, v := range vs {
			s.Require().NoError(w.WriteField(k, v))
		}
	}
	if fileField != "" {
		fw, err := w.CreateFormFile(fileField, fileName)
		s.Require().NoError(err)
		_, err = fw.Write(content)
		s.Require().NoError(err)
	}
	s.Require().NoError(w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("HX-Request", "true")
	req.AddCookie(s.cookie)
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

// pngBytes is a PNG signature followed by an IHDR chunk.
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

const oldImage = "https://img.example.com/old.png"

func (s *RouterTestSuite) login() {
	rr := s.do(http.MethodPost, "/admin/login", url.Values{"email": {adminEmail}, "password": {adminPassword}}, false)
	s.Require().Equal(http.StatusSeeOther, rr.Code)
	s.Require().Equal("/admin", rr.Header().Get("Location"))
	for _, c := range rr.Result().Cookies() {
		if c.Name == "portfolio_session" {
			s.cookie = c
		}
	}
	s.Require().NotNil(s.cookie)
	s.True(s.cookie.HttpOnly)
}

func (s *RouterTestSuite) TestHomeRendersWithoutContent() {
	rr := s.do(http.MethodGet, "/", nil, false)
	s.Equal(http.StatusOK, rr.Code)
	s.Contains(rr.Body.String(), "Your Name")
	s.Contains(rr.Body.String(), `id="copyright"`)
}

func (s *RouterTestSuite) TestAdminRequiresSession() {
	rr := s.do(http.MethodGet, "/admin/projects", nil, false)
	s.Equal(http.StatusSeeOther, rr.Code)
	s.Equal("/admin/login", rr.Header().Get("Location"))

	rr = s.do(http.MethodGet, "/admin/projects/list", nil, true)
	s.Equal(http.StatusOK, rr.Code)
	s.Equal("/admin/login", rr.Header().Get("HX-Redirect"))
	s.Empty(rr.Body.String())
}

func (s *RouterTestSuite) TestLoginRejectsBadPassword() {
	rr := s.do(http.MethodPost, "/admin/login", url.Values{"email": {adminEmail}, "password": {"nope"}}, false)
	s.Equal(http.StatusUnauthorized, rr.Code)
	s.Contains(rr.Body.String(), "Email or password is incorrect.")
	s.Empty(rr.Result().Cookies())
}

func (s *RouterTestSuite) TestLoginPageRedirectsWhenSignedIn() {
	s.login()
	rr := s.do(http.MethodGet, "/admin/login", nil, false, s.cookie)
	s.Equal(http.StatusSeeOther, rr.Code)
	s.Equal("/admin", rr.Header().Get("Location"))
}

func (s *RouterTestSuite) TestLogoutEndsSession() {
	s.login()
	rr := s.do(http.MethodPost, "/admin/logout", url.Values{}, false, s.cookie)
	s.Equal(http.StatusSeeOther, rr.Code)
	s.Equal("/", rr.Header().Get("Location"))

	rr = s.do(http.MethodGet, "/admin/projects", nil, false, s.cookie)
	s.Equal("/admin/login", rr.Header().Get("Location"))
}

func (s *RouterTestSuite) TestProjectTab() {
	rr := s.admin(http.MethodGet, "/admin/projects", nil)
	s.Equal(http.StatusOK, rr.Code)
	s.Contains(rr.Body.String(), "Signed in as "+adminEmail)
	s.Contains(rr.Body.String(), "No projects yet.")
	s.Contains(rr.Body.String(), `document.addEventListener("change"`)
}

func (s *RouterTestSuite) TestFormAddsAndRemovesTechnologies() {
	form := url.Values{
		"title":            {"Portfolio"},
		"technologies":     {"Go"},
		"technology_input": {"  HTMX "},
		"op":               {"add-technologies"},
	}
	rr := s.admin(http.MethodPost, "/admin/projects/form", form)
	s.Equal(http.StatusOK, rr.Code)
	body := rr.Body.String()
	s.Contains(body, `name="technologies" value="Go"`)
	s.Contains(body, `name="technologies" value="HTMX"`)
	s.Contains(body, `value="Portfolio"`)

	form.Set("op", "add-technologies")
	form.Set("technology_input", "Go")
	rr = s.admin(http.MethodPost, "/admin/projects/form", form)
	s.Equal(1, strings.Count(rr.Body.String(), `name="technologies" value="Go"`))

	form.Set("op", "remove-technologies")
	form.Set("remove", "Go")
	rr = s.admin(http.MethodPost, "/admin/projects/form", form)
	s.NotContains(rr.Body.String(), `name="technologies" value="Go"`)
}

func (s *RouterTestSuite) TestAchievementsRemoveByPosition() {
	rr := s.admin(http.MethodPost, "/admin/experiences/form", url.Values{
		"company":      {"Acme"},
		"achievements": {"Shipped", "Shipped", "Mentored"},
		"op":           {"remove-achievements"},
		"index":        {"1"},
	})
	s.Equal(http.StatusOK, rr.Code)
	body := rr.Body.String()
	s.Equal(1, strings.Count(body, `name="achievements" value="Shipped"`))
	s.Contains(body, `name="achievements" value="Mentored"`)
}

func (s *RouterTestSuite) TestEnterSubmitsTheRecord() {
	rr := s.admin(http.MethodPost, "/admin/projects/form", url.Values{
		"title":            {"Portfolio"},
		"technology_input": {"React"},
		"op":               {"add-technologies"},
	})
	body := rr.Body.String()
	s.Contains(body, `name="technologies" value="React"`)
	s.Equal(1, strings.Count(body, `type="submit"`))
	s.Contains(body, `type="submit" name="op" value="submit"`)
	s.Contains(body, `hx-vals="{&#34;index&#34;:&#34;0&#34;,&#34;op&#34;:&#34;remove-technologies&#34;,&#34;remove&#34;:&#34;React&#34;}"`)
}

func (s *RouterTestSuite) TestSubmitIncompleteProjectKeepsDraft() {
	rr := s.admin(http.MethodPost, "/admin/projects/form", url.Values{"title": {"Half done"}, "op": {"submit"}})
	s.Equal(http.StatusOK, rr.Code)
	s.Contains(rr.Body.String(), "description is required")
	s.Contains(rr.Body.String(), `value="Half done"`)
	s.Contains(rr.Header().Get("HX-Trigger"), `"level":"error"`)

	list, err := s.app.Repos.Projects.List(context.Background())
	s.Require().NoError(err)
	s.Empty(list)
}

func (s *RouterTestSuite) TestCreateProject() {
	rr := s.admin(http.MethodPost, "/admin/projects/form", url.Values{
		"title":        {"Portfolio"},
		"description":  {"This site"},
		"category":     {"programming"},
		"technologies": {"Go", "HTMX"},
		"featured":     {"on"},
		"op":           {"submit"},
	})
	s.Equal(http.StatusOK, rr.Code)
	s.Empty(rr.Body.String())
	trigger := rr.Header().Get("HX-Trigger")
	s.Contains(trigger, "refresh-list")
	s.Contains(trigger, "Project created.")

	api := s.do(http.MethodGet, "/api/projects?category=programming", nil, false)
	s.Equal(http.StatusOK, api.Code)
	s.Contains(api.Body.String(), `"title":"Portfolio"`)
	s.Contains(api.Body.String(), `"featured":true`)

	api = s.do(http.MethodGet, "/api/projects?category=design", nil, false)
	s.JSONEq(`{"data":[]}`, api.Body.String())
}

func (s *RouterTestSuite) TestEditAndDeleteProject() {
	ctx := context.Background()
	created, err := s.app.Repos.Projects.Create(ctx, project.Project{
		Title: "Old title", Description: "d", Category: "tools", Technologies: []string{},
	})
	s.Require().NoError(err)
	id := created.ID.String()

	rr := s.admin(http.MethodGet, "/admin/projects/"+id+"/edit", nil)
	s.Equal(http.StatusOK, rr.Code)
	s.Contains(rr.Body.String(), "Edit project")
	s.Contains(rr.Body.String(), `name="id" value="`+id+`"`)

	rr = s.admin(http.MethodPost, "/admin/projects/form", url.Values{
		"id": {id}, "title": {"New title"}, "description": {"d"}, "category": {"tools"}, "op": {"submit"},
	})
	s.Contains(rr.Header().Get("HX-Trigger"), "Project updated.")
	got, err := s.app.Repos.Projects.Get(ctx, created.ID)
	s.Require().NoError(err)
	s.Equal("New title", got.Title)
	s.True(created.CreatedAt.Equal(got.CreatedAt))

	rr = s.admin(http.MethodPost, "/admin/projects/"+id+"/delete", url.Values{})
	s.Contains(rr.Body.String(), "New title")

	rr = s.admin(http.MethodPost, "/admin/projects/"+id+"/delete", url.Values{"confirm": {"yes"}})
	s.Equal(http.StatusOK, rr.Code)
	s.NotContains(rr.Body.String(), "New title")
	s.Contains(rr.Header().Get("HX-Trigger"), "Project deleted.")

	rr = s.admin(http.MethodGet, "/admin/projects/"+id+"/edit", nil)
	s.Contains(rr.Header().Get("HX-Trigger"), "no longer exists")
}

func (s *RouterTestSuite) TestCertificateNeedsImage() {
	rr := s.admin(http.MethodPost, "/admin/certificates/form", url.Values{
		"title": {"CKA"}, "institution": {"CNCF"}, "date": {"2024-03-01"}, "op": {"submit"},
	})
	s.Contains(rr.Body.String(), "image url is required")

	rr = s.admin(http.MethodPost, "/admin/certificates/form", url.Values{
		"title": {"CKA"}, "institution": {"CNCF"}, "date": {"2024-03-01"},
		"image_url": {"https://img.example.com/cka.png"}, "op": {"submit"},
	})
	s.Contains(rr.Header().Get("HX-Trigger"), "Certificate created.")

	api := s.do(http.MethodGet, "/api/certificates", nil, false)
	s.Contains(api.Body.String(), `"date":"2024-03-01"`)
}

func (s *RouterTestSuite) TestCertificateBadDateKeepsImage() {
	inline := "data:image/png;base64,AAAA"
	rr := s.upload("/admin/certificates/form", url.Values{
		"title": {"CKA"}, "institution": {"CNCF"}, "date": {"2024-13-45"},
		"image_url_data": {inline}, "op": {"submit"},
	}, "", "", nil)
	s.Equal(http.StatusOK, rr.Code)
	s.Contains(rr.Body.String(), "date must be YYYY-MM-DD")
	s.Contains(rr.Body.String(), `name="image_url_data" value="`+inline+`"`)
	s.Contains(rr.Body.String(), `value="CKA"`)
}

func (s *RouterTestSuite) TestUploadReplacesURL() {
	rr := s.upload("/admin/projects/form", url.Values{
		"title": {"Portfolio"}, "image_url": {oldImage}, "op": {"add-technologies"},
	}, "image_url_file", "shot.png", pngBytes)
	s.Equal(http.StatusOK, rr.Code)
	body := rr.Body.String()
	s.Contains(body, `name="image_url_data" value="data:image/png;base64,`)
	s.Contains(body, `name="image_url" value=""`)
	s.NotContains(body, oldImage)
	s.Equal(2, strings.Count(body, `data-image-choice="image_url"`))
}

func (s *RouterTestSuite) TestNonImageUploadKeepsURL() {
	rr := s.upload("/admin/projects/form", url.Values{
		"title": {"Portfolio"}, "image_url": {oldImage}, "op": {"submit"},
	}, "image_url_file", "notes.txt", []byte("just some plain text notes"))
	s.Equal(http.StatusOK, rr.Code)
	s.Contains(rr.Body.String(), "please select an image file")
	s.Contains(rr.Body.String(), `name="image_url" value="`+oldImage+`"`)
	s.Contains(rr.Header().Get("HX-Trigger"), `"level":"error"`)
}

func (s *RouterTestSuite) TestOversizedUploadKeepsURL() {
	big := append(append([]byte{}, pngBytes...), make([]byte, crud.MaxImageSize)...)
	rr := s.upload("/admin/projects/form", url.Values{
		"title": {"Portfolio"}, "image_url": {oldImage}, "op": {"submit"},
	}, "image_url_file", "huge.png", big)
	s.Equal(http.StatusOK, rr.Code)
	s.Contains(rr.Body.String(), "the image must be 5MB or smaller")
	s.Contains(rr.Body.String(), `name="image_url" value="`+oldImage+`"`)
}

func (s *RouterTestSuite) TestUploadSurvivesListOperation() {
	inline := "data:image/png;base64,AAAA"
	rr := s.upload("/admin/projects/form", url.Values{
		"title": {"Portfolio"}, "image_url_data": {inline},
		"technology_input": {"Go"}, "op": {"add-technologies"},
	}, "", "", nil)
	body := rr.Body.String()
	s.Contains(body, `name="technologies" value="Go"`)
	s.Contains(body, `name="image_url_data" value="`+inline+`"`)
	s.Contains(body, `src="`+inline+`"`)
}

func (s *RouterTestSuite) TestPostedDataMustBeAnImage() {
	rr := s.upload("/admin/projects/form", url.Values{
		"title": {"Portfolio"}, "image_url_data": {"data:text/html;base64,PHNjcmlwdD4="}, "op": {"add-technologies"},
	}, "", "", nil)
	s.Contains(rr.Body.String(), `name="image_url_data" value=""`)
	s.NotContains(rr.Body.String(), "data:text/html")
}

func (s *RouterTestSuite) TestExperienceWithoutEndDateIsCurrent() {
	rr := s.admin(http.MethodPost, "/admin/experiences/form", url.Values{
		"company": {"Acme"}, "position": {"Engineer"}, "description": {"Built things"},
		"start_date": {"2020-01-15"}, "achievements": {"Shipped v1"}, "op": {"submit"},
	})
	s.Contains(rr.Header().Get("HX-Trigger"), "Experience created.")

	api := s.do(http.MethodGet, "/api/experiences", nil, false)
	body := api.Body.String()
	s.Contains(body, `"current":true`)
	s.Contains(body, `"period":"Jan 2020 - Present"`)
	s.Contains(body, `"achievements":["Shipped v1"]`)
}

func (s *RouterTestSuite) TestProfileSingleton() {
	rr := s.admin(http.MethodGet, "/admin/profile", nil)
	s.Equal(http.StatusOK, rr.Code)
	s.Contains(rr.Body.String(), `value="Your Name"`)

	form := url.Values{
		"name": {"Khoa Tran"}, "title": {"Backend Engineer"}, "bio": {"Go and Postgres"},
		"email": {"khoa@example.com"}, "op": {"submit"},
	}
	rr = s.admin(http.MethodPost, "/admin/profile/form", form)
	s.Contains(rr.Header().Get("HX-Trigger"), "Profile created.")
	s.Contains(rr.Body.String(), `value="Khoa Tran"`)

	saved, err := s.app.Repos.Profiles.First(context.Background())
	s.Require().NoError(err)
	s.Require().NotNil(saved)
	s.Contains(rr.Body.String(), `name="id" value="`+saved.ID.String()+`"`)

	home := s.do(http.MethodGet, "/", nil, false)
	s.Contains(home.Body.String(), "Khoa Tran")
}

func (s *RouterTestSuite) TestAPI() {
	rr := s.do(http.MethodGet, "/api/health", nil, false)
	s.Equal(http.StatusOK, rr.Code)

	rr = s.do(http.MethodGet, "/api/profile", nil, false)
	s.Equal(http.StatusNotFound, rr.Code)
	s.Contains(rr.Body.String(), "profile not found")
}

func (s *RouterTestSuite) TestRevealNeedsThreeTaps() {
	var cookies []*http.Cookie
	for i := 0; i < 2; i++ {
		rr := s.do(http.MethodPost, "/reveal/tap", url.Values{}, true, cookies...)
		s.Require().Equal(http.StatusNoContent, rr.Code)
		cookies = rr.Result().Cookies()
	}
	rr := s.do(http.MethodPost, "/reveal/tap", url.Values{}, true, cookies...)
	s.Equal("/admin/login", rr.Header().Get("HX-Redirect"))
}

func TestSetTriggerMerges(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rr := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rr)

	setTrigger(c, map[string]any{"refresh-list": true})
	setTrigger(c, map[string]any{"notice": map[string]string{"title": "ok"}})

	require.NotEmpty(t, rr.Header().Get("HX-Trigger"))
	assert.JSONEq(t, `{"refresh-list":true,"notice":{"title":"ok"}}`, rr.Header().Get("HX-Trigger"))
}

func (s *RouterTestSuite) TestFeed() {
	_, err := s.app.Repos.Projects.Create(context.Background(), project.Project{
		Title: "Feedable", Description: "d", Category: "tools", Technologies: []string{},
	})
	s.Require().NoError(err)

	rr := s.do(http.MethodGet, "/feed.xml", nil, false)
	s.Equal(http.StatusOK, rr.Code)
	s.Contains(rr.Header().Get("Content-Type"), "application/rss+xml")
	s.Contains(rr.Body.String(), "<title>Feedable</title>")
}
