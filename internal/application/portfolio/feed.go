package portfolio

import (
	"context"
	"strings"

	"github.com/gorilla/feeds"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio/internal/domain/project"
	"github.com/khoahotran/portfolio/internal/domain/resource"
)

const feedLimit = 20

// Feed lists the newest projects for feed readers. Unlike the page it
// reports backend failures instead of serving samples.
func (s *Service) Feed(ctx context.Context, baseURL string) (*feeds.Feed, error) {
	baseURL = strings.TrimRight(baseURL, "/")
	owner := s.Profile(ctx)

	projects, err := s.repos.Projects.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list projects for feed", err)
		return nil, err
	}

	feed := &feeds.Feed{
		Title:       owner.Name + " | Projects",
		Link:        &feeds.Link{Href: baseURL + "/"},
		Description: owner.Title,
		Author:      &feeds.Author{Name: owner.Name, Email: owner.Email},
	}
	for i, p := range projects {
		if i == feedLimit {
			break
		}
		item := &feeds.Item{
			Id:          p.ID.String(),
			Title:       p.Title,
			Link:        &feeds.Link{Href: projectLink(p, baseURL)},
			Description: p.Description,
			Created:     p.CreatedAt,
			Updated:     p.UpdatedAt,
		}
		feed.Items = append(feed.Items, item)
		if p.CreatedAt.After(feed.Created) {
			feed.Created = p.CreatedAt
		}
	}
	s.logger.Debug("Feed generated", zap.Int("item_count", len(feed.Items)))
	return feed, nil
}

func projectLink(p project.Project, baseURL string) string {
	if demo := resource.Deref(p.DemoURL); demo != "" {
		return demo
	}
	if gh := resource.Deref(p.GithubURL); gh != "" {
		return gh
	}
	return baseURL + "/?category=" + p.Category + "#projects"
}
