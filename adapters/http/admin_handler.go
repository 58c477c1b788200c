package http

import (
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio/internal/application/crud"
	"github.com/khoahotran/portfolio/internal/application/notice"
	"github.com/khoahotran/portfolio/internal/domain/project"
	"github.com/khoahotran/portfolio/internal/domain/resource"
	"github.com/khoahotran/portfolio/pkg/apperror"
	"github.com/khoahotran/portfolio/pkg/logger"
)

const (
	opSubmit = "submit"
	opAdd    = "add-"
	opRemove = "remove-"
)

type tabLink struct {
	Path   string
	Label  string
	Active bool
}

var adminTabs = []tabLink{
	{Path: "profile", Label: "Profile"},
	{Path: "projects", Label: "Projects"},
	{Path: "certificates", Label: "Certificates"},
	{Path: "experiences", Label: "Experience"},
}

type adminPage struct {
	Email   string
	Active  string
	Tabs    []tabLink
	Content template.HTML
}

type tabView struct {
	Label string
	Path  string
	List  template.HTML
}

type listView[T any] struct {
	Records []T
	Error   string
}

type formView[T any] struct {
	Mode       string
	ID         string
	Draft      *T
	Categories []project.Category
	Errors     []string
}

// listField is a multi-value field edited through add and remove buttons.
// A byValue list holds unique entries and removes by value, the others
// remove by position.
type listField[T any] struct {
	name    string
	input   string
	values  func(*T) *[]string
	add     func([]string, string) ([]string, bool)
	byValue bool
}

// ResourceHandler serves the admin tab of one record type.
type ResourceHandler[T any] struct {
	repo      *crud.Repository[T]
	templates *template.Template
	logger    logger.Logger
	bind      func(c *gin.Context, draft *T) error
	lists     []listField[T]
}

func (h *ResourceHandler[T]) schema() resource.Schema[T] {
	return h.repo.Schema()
}

// Tab renders the full admin page with the list of records.
func (h *ResourceHandler[T]) Tab(c *gin.Context) {
	view := crud.NewListView(h.repo, h.logger)
	view.Load(c.Request.Context())

	list, err := fragment(h.templates, "list-"+h.schema().Path, h.listData(view.Records(), view.Err()))
	if err != nil {
		c.Error(err)
		return
	}
	content, err := fragment(h.templates, "tab", tabView{Label: h.schema().Label, Path: h.schema().Path, List: list})
	if err != nil {
		c.Error(err)
		return
	}
	renderAdmin(c, h.schema().Path, content)
}

func (h *ResourceHandler[T]) List(c *gin.Context) {
	view := crud.NewListView(h.repo, h.logger)
	view.Load(c.Request.Context())
	c.HTML(http.StatusOK, "list-"+h.schema().Path, h.listData(view.Records(), view.Err()))
}

func (h *ResourceHandler[T]) New(c *gin.Context) {
	view := crud.NewListView(h.repo, h.logger)
	h.renderForm(c, view.New(), nil)
}

func (h *ResourceHandler[T]) Edit(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		sendNotice(c, notice.Failure("Error", "Invalid "+h.schema().Resource+" id."))
		c.Status(http.StatusOK)
		return
	}

	view := crud.NewListView(h.repo, h.logger)
	view.Load(c.Request.Context())
	form, err := view.Edit(id)
	if err != nil {
		h.logger.Warn("Record to edit not found", zap.String("resource", h.schema().Resource), zap.Stringer("id", id))
		sendNotice(c, notice.Failure("Error", "This "+h.schema().Resource+" no longer exists."))
		setTrigger(c, map[string]any{"refresh-list": true})
		c.Status(http.StatusOK)
		return
	}
	h.renderForm(c, form, nil)
}

// Form applies one draft operation posted by the dialog: adding or removing
// a list entry, or submitting the record.
func (h *ResourceHandler[T]) Form(c *gin.Context) {
	form, err := h.formFromRequest(c)
	if err != nil {
		sendNotice(c, notice.Failure("Error", "Invalid "+h.schema().Resource+" id."))
		c.Status(http.StatusOK)
		return
	}
	if err := h.bind(c, form.Draft()); err != nil {
		sendNotice(c, notice.Failure("Invalid input", err.Error()))
		h.renderForm(c, form, errorLines(err))
		return
	}

	op := c.PostForm("op")
	if op == "" || op == opSubmit {
		h.submit(c, form)
		return
	}
	h.applyListOp(c, form.Draft(), op)
	h.renderForm(c, form, nil)
}

// Close dismisses the dialog and asks the list to refetch.
func (h *ResourceHandler[T]) Close(c *gin.Context) {
	setTrigger(c, map[string]any{"refresh-list": true})
	c.Status(http.StatusOK)
}

func (h *ResourceHandler[T]) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		sendNotice(c, notice.Failure("Error", "Invalid "+h.schema().Resource+" id."))
		c.Status(http.StatusOK)
		return
	}

	view := crud.NewListView(h.repo, h.logger)
	view.Load(c.Request.Context())
	n, err := view.Delete(c.Request.Context(), id, c.PostForm("confirm") == "yes")
	switch {
	case errors.Is(err, crud.ErrNotConfirmed):
	case err != nil:
		h.logger.Error("Failed to delete record", err, zap.String("resource", h.schema().Resource), zap.Stringer("id", id))
	}
	sendNotice(c, n)
	c.HTML(http.StatusOK, "list-"+h.schema().Path, h.listData(view.Records(), view.Err()))
}

func (h *ResourceHandler[T]) submit(c *gin.Context, form *crud.Form[T]) {
	n, err := form.Submit(c.Request.Context(), h.repo)
	sendNotice(c, n)
	if err != nil {
		var ve *apperror.ValidationError
		if !errors.As(err, &ve) {
			h.logger.Error("Failed to save record", err, zap.String("resource", h.schema().Resource))
		}
		h.renderForm(c, form, errorLines(err))
		return
	}

	if h.schema().Singleton {
		h.reloadSingleton(c)
		return
	}
	setTrigger(c, map[string]any{"refresh-list": true})
	c.Status(http.StatusOK)
}

// reloadSingleton shows the stored record again after a save.
func (h *ResourceHandler[T]) reloadSingleton(c *gin.Context) {
	current, err := h.repo.First(c.Request.Context())
	if err != nil {
		h.logger.Warn("Failed to reload record", zap.String("resource", h.schema().Resource), zap.Error(err))
	}
	h.renderForm(c, crud.OpenForm(h.schema(), current), nil)
}

func (h *ResourceHandler[T]) formFromRequest(c *gin.Context) (*crud.Form[T], error) {
	raw := strings.TrimSpace(c.PostForm("id"))
	if raw == "" {
		return crud.OpenForm(h.schema(), nil), nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperror.NewInvalidInput("id", err)
	}
	existing := h.schema().New()
	any(&existing).(resource.Entity).GetMeta().ID = id
	return crud.OpenForm(h.schema(), &existing), nil
}

func (h *ResourceHandler[T]) applyListOp(c *gin.Context, draft *T, op string) {
	for _, f := range h.lists {
		values := f.values(draft)
		switch {
		case op == opAdd+f.name:
			if next, ok := f.add(*values, c.PostForm(f.input)); ok {
				*values = next
			}
			return
		case op == opRemove+f.name && f.byValue:
			*values = crud.RemoveValue(*values, c.PostForm("remove"))
			return
		case op == opRemove+f.name:
			if i, err := strconv.Atoi(c.PostForm("index")); err == nil {
				*values = crud.RemoveAt(*values, i)
			}
			return
		}
	}
	h.logger.Warn("Unknown form operation", zap.String("resource", h.schema().Resource), zap.String("op", op))
}

// SingletonTab renders the admin page of a single-record type as one form.
// Without a stored record the form starts from the defaults.
func (h *ResourceHandler[T]) SingletonTab(c *gin.Context) {
	current, err := h.repo.First(c.Request.Context())
	var errs []string
	if err != nil {
		h.logger.Warn("Failed to load record", zap.String("resource", h.schema().Resource), zap.Error(err))
		errs = []string{"Could not load the saved " + h.schema().Resource + ". Showing defaults."}
	}
	content, err := fragment(h.templates, "form-"+h.schema().Path, h.formData(crud.OpenForm(h.schema(), current), errs))
	if err != nil {
		c.Error(err)
		return
	}
	renderAdmin(c, h.schema().Path, content)
}

func (h *ResourceHandler[T]) renderForm(c *gin.Context, form *crud.Form[T], errs []string) {
	c.HTML(http.StatusOK, "form-"+h.schema().Path, h.formData(form, errs))
}

func (h *ResourceHandler[T]) formData(form *crud.Form[T], errs []string) formView[T] {
	data := formView[T]{
		Mode:       "create",
		Draft:      form.Draft(),
		Categories: project.Categories,
		Errors:     errs,
	}
	if form.Mode() == crud.ModeEdit {
		data.Mode = "edit"
		data.ID = form.ID().String()
	}
	return data
}

func (h *ResourceHandler[T]) listData(records []T, err error) listView[T] {
	v := listView[T]{Records: records}
	if err != nil {
		v.Error = "Could not load " + h.schema().Path + ". Showing the last known list."
	}
	return v
}

func renderAdmin(c *gin.Context, active string, content template.HTML) {
	page := adminPage{Active: active, Content: content}
	if sess, ok := GetSessionFromGinContext(c); ok {
		page.Email = sess.Email
	}
	for _, t := range adminTabs {
		t.Active = t.Path == active
		page.Tabs = append(page.Tabs, t)
	}
	c.HTML(http.StatusOK, "admin", page)
}

func errorLines(err error) []string {
	var ve *apperror.ValidationError
	if errors.As(err, &ve) {
		if ve.Reason != "" {
			return []string{ve.Reason}
		}
		lines := make([]string, 0, len(ve.Fields))
		for _, f := range ve.Fields {
			lines = append(lines, strings.ReplaceAll(f, "_", " ")+" is required")
		}
		return lines
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && errors.Is(err, apperror.ErrInvalidInput) {
		return []string{appErr.Details}
	}
	return []string{"The data service rejected the request. Your changes are kept, try again."}
}
