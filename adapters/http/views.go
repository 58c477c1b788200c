package http

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"strconv"

	"github.com/khoahotran/portfolio/internal/domain/project"
	"github.com/khoahotran/portfolio/internal/domain/resource"
)

//go:embed templates/*.html
var templateFS embed.FS

// listFieldView renders a list field whose buttons post to Action with
// type="button", so only the form's own submit button answers Enter.
type listFieldView struct {
	Action      string
	Name        string
	Input       string
	Label       string
	Placeholder string
	Values      []string
}

// AddVals is the hx-vals payload of the Add button.
func (v listFieldView) AddVals() string {
	return opVals(map[string]string{"op": opAdd + v.Name})
}

// RemoveVals is the hx-vals payload of the remove button of entry i.
func (v listFieldView) RemoveVals(i int) string {
	return opVals(map[string]string{
		"op":     opRemove + v.Name,
		"remove": v.Values[i],
		"index":  strconv.Itoa(i),
	})
}

func opVals(vals map[string]string) string {
	b, _ := json.Marshal(vals)
	return string(b)
}

type imageFieldView struct {
	Name     string
	Label    string
	URL      string
	Data     string
	Preview  any
	Required bool
}

// imgSrc returns an image reference for a src attribute. Inline images are
// trusted as they are, any other value goes through the template's URL
// filter.
func imgSrc(ref string) any {
	if resource.IsImageDataURI(ref) {
		return template.URL(ref)
	}
	return ref
}

var funcs = template.FuncMap{
	"categoryLabel": project.CategoryLabel,
	"deref":         resource.Deref,
	"imgSrc":        imgSrc,
	"listField": func(action, name, input, label, placeholder string, values []string) listFieldView {
		return listFieldView{Action: action, Name: name, Input: input, Label: label, Placeholder: placeholder, Values: values}
	},
	"imageField": func(name, label, ref string, required bool) imageFieldView {
		img := resource.ParseImage(ref)
		return imageFieldView{
			Name:     name,
			Label:    label,
			URL:      img.URL,
			Data:     img.Data,
			Preview:  imgSrc(img.Ref()),
			Required: required,
		}
	},
}

func parseTemplates() (*template.Template, error) {
	t, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return t, nil
}

// fragment renders a named template for embedding in a page.
func fragment(t *template.Template, name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}
