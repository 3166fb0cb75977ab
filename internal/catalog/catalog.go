// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PrepPathway Contributors

// Package catalog serves the interview-prep resource listing and the
// dashboard summary. Data is an in-memory seed; there is no persistence.
package catalog

import (
	"strings"
	"time"

	"github.com/samber/oops"
)

// ErrResourceNotFound is returned when a resource ID has no entry.
var ErrResourceNotFound = oops.Code("CATALOG_NOT_FOUND").Errorf("resource not found")

// Category identifies a resource category.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Resource is a single prep resource.
type Resource struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
}

// DashboardStats summarizes a signed-in user's progress.
type DashboardStats struct {
	TotalResources int `json:"total_resources"`
	TotalTests     int `json:"total_tests"`
	TestsCompleted int `json:"tests_completed"`
	AvgScore       int `json:"avg_score"`
}

// Activity is one entry in the dashboard's recent activity feed.
// Score and MaxScore are only set for test attempts.
type Activity struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Title    string `json:"title"`
	Date     string `json:"date"`
	Score    int    `json:"score,omitempty"`
	MaxScore int    `json:"max_score,omitempty"`
}

// Dashboard is the auth-gated summary payload.
type Dashboard struct {
	Stats          DashboardStats `json:"stats"`
	RecentActivity []Activity     `json:"recent_activity"`
}

// Catalog holds the seeded resource and dashboard data.
type Catalog struct {
	categories []Category
	resources  []Resource
	dashboard  Dashboard
}

// New returns a catalog populated with the seed data.
func New() *Catalog {
	return &Catalog{
		categories: seedCategories(),
		resources:  seedResources(),
		dashboard:  seedDashboard(),
	}
}

// Categories returns all resource categories.
func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.categories))
	copy(out, c.categories)
	return out
}

// Resources returns resources, optionally filtered by category and a
// case-insensitive search over title and description. Empty filters match all.
func (c *Catalog) Resources(category, search string) []Resource {
	term := strings.ToLower(strings.TrimSpace(search))
	out := make([]Resource, 0, len(c.resources))
	for _, r := range c.resources {
		if category != "" && r.Category != category {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(r.Title), term) &&
			!strings.Contains(strings.ToLower(r.Description), term) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Resource looks up a single resource by ID.
func (c *Catalog) Resource(id string) (Resource, error) {
	for _, r := range c.resources {
		if r.ID == id {
			return r, nil
		}
	}
	return Resource{}, oops.With("resource_id", id).Wrap(ErrResourceNotFound)
}

// Dashboard returns the dashboard summary for a signed-in user.
func (c *Catalog) Dashboard() Dashboard {
	d := c.dashboard
	d.RecentActivity = make([]Activity, len(c.dashboard.RecentActivity))
	copy(d.RecentActivity, c.dashboard.RecentActivity)
	return d
}

func seedCategories() []Category {
	return []Category{
		{ID: "dsa", Name: "Data Structures & Algorithms"},
		{ID: "system-design", Name: "System Design"},
		{ID: "behavioral", Name: "Behavioral Questions"},
		{ID: "company-specific", Name: "Company Specific"},
		{ID: "interview-tips", Name: "Interview Tips"},
	}
}

func seedResources() []Resource {
	return []Resource{
		{
			ID:    "1",
			Title: "Mastering Binary Search Trees",
			Description: "Learn how to implement, traverse, and optimize binary search trees " +
				"for technical interviews. This comprehensive guide covers all the essential " +
				"operations and common interview questions.",
			Category:  "dsa",
			CreatedAt: time.Date(2023, 5, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			ID:    "2",
			Title: "System Design: Designing a URL Shortener",
			Description: "A step-by-step guide to designing a scalable URL shortening service " +
				"like bit.ly. Covers requirements gathering, API design, database schema, and " +
				"scaling considerations.",
			Category:  "system-design",
			CreatedAt: time.Date(2023, 5, 10, 14, 20, 0, 0, time.UTC),
		},
		{
			ID:    "3",
			Title: "Behavioral Interview Preparation Guide",
			Description: "Comprehensive guide to answering common behavioral questions using " +
				"the STAR method. Includes example answers and templates for different scenarios.",
			Category:  "behavioral",
			CreatedAt: time.Date(2023, 5, 5, 9, 15, 0, 0, time.UTC),
		},
		{
			ID:    "4",
			Title: "Google Interview Process Explained",
			Description: "An insider's guide to Google's interview process, including what to " +
				"expect in each round, common questions, and tips from successful candidates.",
			Category:  "company-specific",
			CreatedAt: time.Date(2023, 4, 28, 11, 45, 0, 0, time.UTC),
		},
		{
			ID:    "5",
			Title: "Dynamic Programming: From Beginner to Expert",
			Description: "Master dynamic programming with this comprehensive guide. Learn to " +
				"identify DP problems and develop efficient solutions with step-by-step examples.",
			Category:  "dsa",
			CreatedAt: time.Date(2023, 4, 22, 16, 30, 0, 0, time.UTC),
		},
		{
			ID:    "6",
			Title: "Microservices Architecture Fundamentals",
			Description: "Learn the core principles of microservices architecture, including " +
				"service boundaries, communication patterns, and deployment strategies.",
			Category:  "system-design",
			CreatedAt: time.Date(2023, 4, 18, 13, 20, 0, 0, time.UTC),
		},
	}
}

func seedDashboard() Dashboard {
	return Dashboard{
		Stats: DashboardStats{
			TotalResources: 120,
			TotalTests:     45,
			TestsCompleted: 12,
			AvgScore:       78,
		},
		RecentActivity: []Activity{
			{
				ID:       "1",
				Type:     "test_attempt",
				Title:    "Data Structures Interview Test",
				Date:     "May 15, 2023",
				Score:    85,
				MaxScore: 100,
			},
			{
				ID:    "2",
				Type:  "resource_view",
				Title: "System Design: Designing a URL Shortener",
				Date:  "May 12, 2023",
			},
			{
				ID:       "3",
				Type:     "test_attempt",
				Title:    "Behavioral Questions Mock",
				Date:     "May 10, 2023",
				Score:    90,
				MaxScore: 100,
			},
			{
				ID:    "4",
				Type:  "resource_view",
				Title: "Dynamic Programming: From Beginner to Expert",
				Date:  "May 8, 2023",
			},
		},
	}
}
