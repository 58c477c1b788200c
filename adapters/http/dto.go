package http

import (
	"time"

	"github.com/google/uuid"

	"github.com/khoahotran/portfolio/internal/domain/certificate"
	"github.com/khoahotran/portfolio/internal/domain/experience"
	"github.com/khoahotran/portfolio/internal/domain/profile"
	"github.com/khoahotran/portfolio/internal/domain/project"
)

type ProfileDTO struct {
	Name            string    `json:"name"`
	Title           string    `json:"title"`
	Bio             string    `json:"bio"`
	Email           string    `json:"email"`
	Phone           *string   `json:"phone,omitempty"`
	Location        *string   `json:"location,omitempty"`
	LinkedinURL     *string   `json:"linkedin_url,omitempty"`
	GithubURL       *string   `json:"github_url,omitempty"`
	ProfileImageURL *string   `json:"profile_image_url,omitempty"`
	CVURL           *string   `json:"cv_url,omitempty"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func ToProfileDTO(p profile.Profile) ProfileDTO {
	return ProfileDTO{
		Name:            p.Name,
		Title:           p.Title,
		Bio:             p.Bio,
		Email:           p.Email,
		Phone:           p.Phone,
		Location:        p.Location,
		LinkedinURL:     p.LinkedinURL,
		GithubURL:       p.GithubURL,
		ProfileImageURL: p.ProfileImageURL,
		CVURL:           p.CVURL,
		UpdatedAt:       p.UpdatedAt,
	}
}

type ProjectDTO struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Technologies  []string  `json:"technologies"`
	Category      string    `json:"category"`
	CategoryLabel string    `json:"category_label"`
	ImageURL      *string   `json:"image_url,omitempty"`
	DemoURL       *string   `json:"demo_url,omitempty"`
	GithubURL     *string   `json:"github_url,omitempty"`
	Featured      bool      `json:"featured"`
	CreatedAt     time.Time `json:"created_at"`
}

func ToProjectDTO(p project.Project) ProjectDTO {
	return ProjectDTO{
		ID:            p.ID,
		Title:         p.Title,
		Description:   p.Description,
		Technologies:  nonNil(p.Technologies),
		Category:      p.Category,
		CategoryLabel: project.CategoryLabel(p.Category),
		ImageURL:      p.ImageURL,
		DemoURL:       p.DemoURL,
		GithubURL:     p.GithubURL,
		Featured:      p.Featured,
		CreatedAt:     p.CreatedAt,
	}
}

type CertificateDTO struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Institution string    `json:"institution"`
	Date        string    `json:"date"`
	ImageURL    string    `json:"image_url"`
	Description *string   `json:"description,omitempty"`
}

func ToCertificateDTO(c certificate.Certificate) CertificateDTO {
	return CertificateDTO{
		ID:          c.ID,
		Title:       c.Title,
		Institution: c.Institution,
		Date:        c.Date.String(),
		ImageURL:    c.ImageURL,
		Description: c.Description,
	}
}

type ExperienceDTO struct {
	ID           uuid.UUID `json:"id"`
	Company      string    `json:"company"`
	Position     string    `json:"position"`
	Description  string    `json:"description"`
	StartDate    string    `json:"start_date"`
	EndDate      *string   `json:"end_date"`
	Current      bool      `json:"current"`
	Period       string    `json:"period"`
	Technologies []string  `json:"technologies"`
	Achievements []string  `json:"achievements"`
}

func ToExperienceDTO(e experience.Experience) ExperienceDTO {
	dto := ExperienceDTO{
		ID:           e.ID,
		Company:      e.Company,
		Position:     e.Position,
		Description:  e.Description,
		StartDate:    e.StartDate.String(),
		Current:      e.Current(),
		Period:       e.Period(),
		Technologies: nonNil(e.Technologies),
		Achievements: nonNil(e.Achievements),
	}
	if !e.Current() {
		end := e.EndDate.String()
		dto.EndDate = &end
	}
	return dto
}

func mapSlice[T, D any](in []T, f func(T) D) []D {
	out := make([]D, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
