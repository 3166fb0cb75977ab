// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PrepPathway Contributors

package catalog_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preppathway/preppathway/internal/catalog"
)

func TestCatalog_Categories(t *testing.T) {
	c := catalog.New()

	cats := c.Categories()
	require.Len(t, cats, 5)

	ids := make([]string, len(cats))
	for i, cat := range cats {
		ids[i] = cat.ID
	}
	assert.Equal(t, []string{"dsa", "system-design", "behavioral", "company-specific", "interview-tips"}, ids)
}

func TestCatalog_Resources(t *testing.T) {
	c := catalog.New()

	t.Run("no filter returns all", func(t *testing.T) {
		assert.Len(t, c.Resources("", ""), 6)
	})

	t.Run("category filter", func(t *testing.T) {
		dsa := c.Resources("dsa", "")
		require.Len(t, dsa, 2)
		for _, r := range dsa {
			assert.Equal(t, "dsa", r.Category)
		}
	})

	t.Run("unknown category returns empty", func(t *testing.T) {
		assert.Empty(t, c.Resources("frontend", ""))
	})

	t.Run("search matches title case-insensitively", func(t *testing.T) {
		found := c.Resources("", "url shortener")
		require.Len(t, found, 1)
		assert.Equal(t, "2", found[0].ID)
	})

	t.Run("search matches description", func(t *testing.T) {
		found := c.Resources("", "STAR method")
		require.Len(t, found, 1)
		assert.Equal(t, "3", found[0].ID)
	})

	t.Run("category and search combine", func(t *testing.T) {
		found := c.Resources("dsa", "dynamic")
		require.Len(t, found, 1)
		assert.Equal(t, "5", found[0].ID)

		assert.Empty(t, c.Resources("behavioral", "dynamic"))
	})
}

func TestCatalog_Resource(t *testing.T) {
	c := catalog.New()

	t.Run("known ID", func(t *testing.T) {
		r, err := c.Resource("1")
		require.NoError(t, err)
		assert.Equal(t, "Mastering Binary Search Trees", r.Title)
		assert.Equal(t, "dsa", r.Category)
	})

	t.Run("unknown ID", func(t *testing.T) {
		_, err := c.Resource("999")
		require.Error(t, err)
		assert.True(t, errors.Is(err, catalog.ErrResourceNotFound))
	})
}

func TestCatalog_Dashboard(t *testing.T) {
	c := catalog.New()

	d := c.Dashboard()
	assert.Equal(t, 120, d.Stats.TotalResources)
	assert.Equal(t, 45, d.Stats.TotalTests)
	assert.Equal(t, 12, d.Stats.TestsCompleted)
	assert.Equal(t, 78, d.Stats.AvgScore)

	require.Len(t, d.RecentActivity, 4)
	assert.Equal(t, "test_attempt", d.RecentActivity[0].Type)
	assert.Equal(t, 85, d.RecentActivity[0].Score)
	assert.Equal(t, "resource_view", d.RecentActivity[1].Type)
	assert.Zero(t, d.RecentActivity[1].Score)

	// Mutating the returned slice must not affect the catalog
	d.RecentActivity[0].Title = "changed"
	assert.Equal(t, "Data Structures Interview Test", c.Dashboard().RecentActivity[0].Title)
}
