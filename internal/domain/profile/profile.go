package profile

import (
	"github.com/google/uuid"

	"github.com/khoahotran/portfolio/internal/domain/resource"
)

type Profile struct {
	resource.Meta
	Name            string  `json:"name"`
	Title           string  `json:"title"`
	Bio             string  `json:"bio"`
	Email           string  `json:"email"`
	Phone           *string `json:"phone"`
	Location        *string `json:"location"`
	LinkedinURL     *string `json:"linkedin_url"`
	GithubURL       *string `json:"github_url"`
	ProfileImageURL *string `json:"profile_image_url"`
	CVURL           *string `json:"cv_url"`
}

// Persisted reports whether the profile came from the store rather than
// from the built-in defaults.
func (p Profile) Persisted() bool {
	return p.ID != uuid.Nil
}

// Defaults is what visitors see until the admin saves a profile.
func Defaults() Profile {
	return Profile{
		Name:  "Your Name",
		Title: "Software Engineer",
		Bio:   "Software developer focused on backend systems, security and infrastructure.",
		Email: "hello@example.com",
	}
}

var Schema = resource.Schema[Profile]{
	Resource:  "profile",
	Path:      "profile",
	Table:     "profiles",
	Label:     "Profile",
	OrderBy:   "created_at",
	Ascending: true,
	Singleton: true,
	Defaults:  Defaults,
	Required: func(p Profile) []string {
		return resource.RequiredText(
			"name", p.Name,
			"title", p.Title,
			"bio", p.Bio,
			"email", p.Email,
		)
	},
}
