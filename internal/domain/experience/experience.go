package experience

import (
	"github.com/khoahotran/portfolio/internal/domain/resource"
)

type Experience struct {
	resource.Meta
	Company      string        `json:"company"`
	Position     string        `json:"position"`
	Description  string        `json:"description"`
	StartDate    resource.Date `json:"start_date"`
	EndDate      resource.Date `json:"end_date"`
	Technologies []string      `json:"technologies"`
	Achievements []string      `json:"achievements"`
}

// Current is true when no end date is set.
func (e Experience) Current() bool {
	return e.EndDate.IsZero()
}

func (e Experience) Period() string {
	end := "Present"
	if !e.Current() {
		end = e.EndDate.Display()
	}
	return e.StartDate.Display() + " - " + end
}

var Schema = resource.Schema[Experience]{
	Resource:  "experience",
	Path:      "experiences",
	Table:     "experiences",
	Label:     "Experience",
	OrderBy:   "start_date",
	Ascending: false,
	Defaults: func() Experience {
		return Experience{Technologies: []string{}, Achievements: []string{}}
	},
	Required: func(e Experience) []string {
		return resource.RequiredText(
			"company", e.Company,
			"position", e.Position,
			"description", e.Description,
			"start_date", e.StartDate.String(),
		)
	},
}
