package portfolio

import (
	"time"

	"github.com/khoahotran/portfolio/internal/domain/certificate"
	"github.com/khoahotran/portfolio/internal/domain/experience"
	"github.com/khoahotran/portfolio/internal/domain/project"
	"github.com/khoahotran/portfolio/internal/domain/resource"
)

func SampleProjects() []project.Project {
	return []project.Project{
		{
			Title:        "E-commerce Platform",
			Description:  "Online store with cart, checkout and an order dashboard.",
			Technologies: []string{"Go", "PostgreSQL", "HTMX"},
			Category:     "programming",
			Featured:     true,
		},
		{
			Title:        "Inventory Database",
			Description:  "Normalized schema and reporting views for a warehouse.",
			Technologies: []string{"PostgreSQL", "SQL"},
			Category:     "database",
		},
		{
			Title:        "Network Lab",
			Description:  "Segmented lab network with VLANs, firewall rules and monitoring.",
			Technologies: []string{"Cisco", "pfSense"},
			Category:     "networks",
		},
	}
}

func SampleCertificates() []certificate.Certificate {
	return []certificate.Certificate{
		{
			Title:       "Cloud Practitioner",
			Institution: "Amazon Web Services",
			Date:        resource.NewDate(2023, time.June, 1),
		},
		{
			Title:       "Cybersecurity Essentials",
			Institution: "Cisco Networking Academy",
			Date:        resource.NewDate(2022, time.November, 15),
		},
	}
}

func SampleExperiences() []experience.Experience {
	return []experience.Experience{
		{
			Company:      "Tech Solutions",
			Position:     "Backend Developer",
			Description:  "Built and maintained internal APIs.",
			StartDate:    resource.NewDate(2023, time.January, 1),
			Technologies: []string{"Go", "PostgreSQL"},
			Achievements: []string{"Cut report generation time in half"},
		},
		{
			Company:      "Digital Agency",
			Position:     "Junior Developer",
			Description:  "Worked on client websites and integrations.",
			StartDate:    resource.NewDate(2021, time.March, 1),
			EndDate:      resource.NewDate(2022, time.December, 31),
			Technologies: []string{"JavaScript", "MySQL"},
		},
	}
}
