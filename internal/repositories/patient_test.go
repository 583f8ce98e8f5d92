package repositories_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/TulasiR141/otopilot/internal/models"
	"github.com/TulasiR141/otopilot/internal/repositories"
	"github.com/TulasiR141/otopilot/internal/testhelpers"
)

func TestPatientRepository(t *testing.T) {
	t.Parallel()
	dbs := newTestDB(t)
	repo := repositories.NewPatientRepository(dbs, testhelpers.NewLogger(io.Discard))

	dob := time.Date(1947, time.June, 2, 0, 0, 0, 0, time.UTC)
	id, err := repo.Create(context.Background(), models.Patient{
		FirstName:   "Béla",
		LastName:    "Kovács",
		DateOfBirth: dob,
	})
	require.NoError(t, err)

	patient, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, "Béla", patient.FirstName)
	require.Equal(t, "Kovács", patient.LastName)
	require.True(t, patient.DateOfBirth.Equal(dob))

	_, err = repo.Get(context.Background(), 99999)
	require.ErrorIs(t, err, repositories.ErrPatientNotFound)

	patients, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, patients, 1)
}
