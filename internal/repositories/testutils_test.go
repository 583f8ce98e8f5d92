package repositories_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/TulasiR141/otopilot/internal/models"
	"github.com/TulasiR141/otopilot/internal/repositories"
	"github.com/TulasiR141/otopilot/internal/sqlite"
	"github.com/TulasiR141/otopilot/internal/testhelpers"
)

// newTestDB creates a new in-memory database for testing purposes.
func newTestDB(t *testing.T) *sqlite.Database {
	t.Helper()
	dbs, err := sqlite.NewDatabase(context.Background(), ":memory:", testhelpers.NewLogger(io.Discard))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, dbs.Close())
	})
	return dbs
}

// newTestPatient inserts a patient and returns its id.
func newTestPatient(t *testing.T, dbs *sqlite.Database) int64 {
	t.Helper()
	repo := repositories.NewPatientRepository(dbs, testhelpers.NewLogger(io.Discard))
	id, err := repo.Create(context.Background(), models.Patient{
		FirstName:   "Ada",
		LastName:    "Lindqvist",
		DateOfBirth: time.Date(1953, time.March, 14, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return id
}
