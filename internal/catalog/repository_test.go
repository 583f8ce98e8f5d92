package catalog_test

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/TulasiR141/otopilot/internal/catalog"
	"github.com/TulasiR141/otopilot/internal/models"
	"github.com/TulasiR141/otopilot/internal/sqlite"
	"github.com/TulasiR141/otopilot/internal/testhelpers"
)

// newTestRepository creates an in-memory catalog with three devices: one ITE,
// one BTE and one with an unset style.
func newTestRepository(t *testing.T) *catalog.Repository {
	t.Helper()
	logger := testhelpers.NewLogger(io.Discard)
	dbs, err := sqlite.NewDatabase(context.Background(), ":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, dbs.Close())
	})

	repo := catalog.NewRepository(dbs, logger)
	ite := "ITE"
	bte := "BTE"
	devices := []models.HearingAid{
		{Manufacturer: "Oticon", Model: "Own", Style: &ite},
		{Manufacturer: "Phonak", Model: "Naida", Style: &bte},
		{Manufacturer: "Signia", Model: "Active", Style: nil},
	}
	for _, device := range devices {
		_, err = repo.Insert(context.Background(), device)
		require.NoError(t, err)
	}
	return repo
}

func TestRepository_QueryByFilters(t *testing.T) {
	t.Parallel()
	repo := newTestRepository(t)

	tests := []struct {
		name       string
		filters    []models.FilterSpec
		wantModels []string
	}{
		{
			name:       "no filters returns whole catalog",
			wantModels: []string{"Own", "Naida", "Active"},
		},
		{
			name: "not_in keeps NULL rows",
			filters: []models.FilterSpec{
				{Field: "style", Operator: models.FilterOpNotIn, Values: []string{"ITE"}},
			},
			wantModels: []string{"Naida", "Active"},
		},
		{
			name: "equals excludes NULL rows",
			filters: []models.FilterSpec{
				{Field: "style", Operator: models.FilterOpEquals, Values: []string{"BTE"}},
			},
			wantModels: []string{"Naida"},
		},
		{
			name: "equals with several values behaves like in",
			filters: []models.FilterSpec{
				{Field: "style", Operator: models.FilterOpEquals, Values: []string{"BTE", "ITE"}},
			},
			wantModels: []string{"Own", "Naida"},
		},
		{
			name: "contains on manufacturer",
			filters: []models.FilterSpec{
				{Field: "manufacturer", Operator: models.FilterOpContains, Values: []string{"tic"}},
			},
			wantModels: []string{"Own"},
		},
		{
			name: "not_contains keeps NULL rows",
			filters: []models.FilterSpec{
				{Field: "style", Operator: models.FilterOpNotContains, Values: []string{"IT"}},
			},
			wantModels: []string{"Naida", "Active"},
		},
		{
			name: "no matches",
			filters: []models.FilterSpec{
				{Field: "style", Operator: models.FilterOpEquals, Values: []string{"CIC"}},
			},
			wantModels: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			aids, err := repo.QueryByFilters(context.Background(), tt.filters)
			require.NoError(t, err)
			gotModels := make([]string, 0, len(aids))
			for _, aid := range aids {
				gotModels = append(gotModels, aid.Model)
			}
			require.ElementsMatch(t, tt.wantModels, gotModels)
		})
	}
}

func TestRepository_CountAll(t *testing.T) {
	t.Parallel()
	repo := newTestRepository(t)

	count, err := repo.CountAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, count)
}

func TestRepository_DistinctValues(t *testing.T) {
	t.Parallel()
	repo := newTestRepository(t)

	values, err := repo.DistinctValues(context.Background(), "style")
	require.NoError(t, err)
	require.Equal(t, []string{"BTE", "ITE"}, values)

	_, err = repo.DistinctValues(context.Background(), "id")
	require.ErrorIs(t, err, catalog.ErrInvalidField)

	_, err = repo.DistinctValues(context.Background(), "style; DROP TABLE hearing_aids")
	require.ErrorIs(t, err, catalog.ErrInvalidField)
}
