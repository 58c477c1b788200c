package certificate

import (
	"github.com/khoahotran/portfolio/internal/domain/resource"
)

type Certificate struct {
	resource.Meta
	Title       string        `json:"title"`
	Institution string        `json:"institution"`
	Date        resource.Date `json:"date"`
	ImageURL    string        `json:"image_url"`
	Description *string       `json:"description"`
}

var Schema = resource.Schema[Certificate]{
	Resource:  "certificate",
	Path:      "certificates",
	Table:     "certificates",
	Label:     "Certificates",
	OrderBy:   "date",
	Ascending: false,
	Defaults: func() Certificate {
		return Certificate{}
	},
	Required: func(c Certificate) []string {
		missing := resource.RequiredText(
			"title", c.Title,
			"institution", c.Institution,
			"date", c.Date.String(),
		)
		// the image is required: either a URL or an uploaded file
		if resource.Blank(c.ImageURL) {
			missing = append(missing, "image_url")
		}
		return missing
	},
}
