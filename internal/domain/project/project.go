package project

import (
	"github.com/khoahotran/portfolio/internal/domain/resource"
)

type Project struct {
	resource.Meta
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	Category     string   `json:"category"`
	ImageURL     *string  `json:"image_url"`
	DemoURL      *string  `json:"demo_url"`
	GithubURL    *string  `json:"github_url"`
	Featured     bool     `json:"featured"`
}

type Category struct {
	ID    string
	Label string
}

// Categories is the fixed label set offered by the form dropdown. The store
// does not enforce it.
var Categories = []Category{
	{ID: "programming", Label: "Programming"},
	{ID: "database", Label: "Databases"},
	{ID: "design", Label: "Design"},
	{ID: "networks", Label: "Networks & Security"},
	{ID: "tools", Label: "Tools"},
}

func CategoryLabel(id string) string {
	for _, c := range Categories {
		if c.ID == id {
			return c.Label
		}
	}
	return id
}

var Schema = resource.Schema[Project]{
	Resource:  "project",
	Path:      "projects",
	Table:     "projects",
	Label:     "Projects",
	OrderBy:   "created_at",
	Ascending: false,
	Defaults: func() Project {
		return Project{Technologies: []string{}}
	},
	Required: func(p Project) []string {
		return resource.RequiredText(
			"title", p.Title,
			"description", p.Description,
			"category", p.Category,
		)
	},
}

// Filter keeps the projects of one category; "all" and "" keep everything.
func Filter(projects []Project, category string) []Project {
	if category == "" || category == "all" {
		return projects
	}
	out := make([]Project, 0, len(projects))
	for _, p := range projects {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}
