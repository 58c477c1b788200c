// Package portfolio assembles the public page. The page always renders:
// backend failures fall back to built-in sample content.
package portfolio

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/khoahotran/portfolio/internal/application/crud"
	"github.com/khoahotran/portfolio/internal/domain/certificate"
	"github.com/khoahotran/portfolio/internal/domain/experience"
	"github.com/khoahotran/portfolio/internal/domain/profile"
	"github.com/khoahotran/portfolio/internal/domain/project"
	"github.com/khoahotran/portfolio/pkg/logger"
)

type Repositories struct {
	Profiles     *crud.Repository[profile.Profile]
	Projects     *crud.Repository[project.Project]
	Certificates *crud.Repository[certificate.Certificate]
	Experiences  *crud.Repository[experience.Experience]
}

type Page struct {
	Profile        profile.Profile
	Projects       []project.Project
	Categories     []project.Category
	ActiveCategory string
	Certificates   []certificate.Certificate
	Experiences    []experience.Experience
	// Fallback is set when any section shows sample content.
	Fallback bool
}

type Service struct {
	repos  Repositories
	logger logger.Logger
}

func NewService(repos Repositories, log logger.Logger) *Service {
	return &Service{repos: repos, logger: log}
}

// Page loads every section concurrently. category narrows the projects;
// "" and "all" keep them all.
func (s *Service) Page(ctx context.Context, category string) Page {
	if category == "" {
		category = "all"
	}
	page := Page{Categories: project.Categories, ActiveCategory: category}
	fallback := make([]bool, 4)

	var g errgroup.Group
	g.Go(func() error {
		page.Profile, fallback[0] = s.profile(ctx)
		return nil
	})
	g.Go(func() error {
		var all []project.Project
		all, fallback[1] = s.projects(ctx)
		page.Projects = project.Filter(all, category)
		return nil
	})
	g.Go(func() error {
		page.Certificates, fallback[2] = s.certificates(ctx)
		return nil
	})
	g.Go(func() error {
		page.Experiences, fallback[3] = s.experiences(ctx)
		return nil
	})
	_ = g.Wait()

	for _, f := range fallback {
		page.Fallback = page.Fallback || f
	}
	return page
}

func (s *Service) Profile(ctx context.Context) profile.Profile {
	p, _ := s.profile(ctx)
	return p
}

func (s *Service) Projects(ctx context.Context, category string) []project.Project {
	all, _ := s.projects(ctx)
	return project.Filter(all, category)
}

func (s *Service) profile(ctx context.Context) (profile.Profile, bool) {
	p, err := s.repos.Profiles.First(ctx)
	if err != nil {
		s.logger.Warn("Profile unavailable, showing defaults", zap.Error(err))
		return profile.Defaults(), true
	}
	if p == nil {
		return profile.Defaults(), false
	}
	return *p, false
}

func (s *Service) projects(ctx context.Context) ([]project.Project, bool) {
	list, err := s.repos.Projects.List(ctx)
	if err != nil {
		s.logger.Warn("Projects unavailable, showing samples", zap.Error(err))
		return SampleProjects(), true
	}
	return list, false
}

func (s *Service) certificates(ctx context.Context) ([]certificate.Certificate, bool) {
	list, err := s.repos.Certificates.List(ctx)
	if err != nil {
		s.logger.Warn("Certificates unavailable, showing samples", zap.Error(err))
		return SampleCertificates(), true
	}
	return list, false
}

func (s *Service) experiences(ctx context.Context) ([]experience.Experience, bool) {
	list, err := s.repos.Experiences.List(ctx)
	if err != nil {
		s.logger.Warn("Experiences unavailable, showing samples", zap.Error(err))
		return SampleExperiences(), true
	}
	return list, false
}
