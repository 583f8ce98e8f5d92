package repositories_test

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/TulasiR141/otopilot/internal/models"
	"github.com/TulasiR141/otopilot/internal/repositories"
	"github.com/TulasiR141/otopilot/internal/testhelpers"
)

func TestAssessmentRepository_GetActiveOrCreate(t *testing.T) {
	t.Parallel()
	dbs := newTestDB(t)
	patientID := newTestPatient(t, dbs)
	repo := repositories.NewAssessmentRepository(dbs, testhelpers.NewLogger(io.Discard))
	ctx := context.Background()

	_, err := repo.GetActive(ctx, patientID)
	require.ErrorIs(t, err, repositories.ErrNoActiveAssessment)

	created, err := repo.GetActiveOrCreate(ctx, patientID, "root")
	require.NoError(t, err)
	require.Equal(t, models.AssessmentInProgress, created.Status)
	require.Equal(t, patientID, created.PatientID)
	require.NotEmpty(t, created.ID)
	require.Empty(t, created.Answers)

	// A second call converges on the same in-progress assessment.
	again, err := repo.GetActiveOrCreate(ctx, patientID, "q1")
	require.NoError(t, err)
	require.Equal(t, created.ID, again.ID)

	// Completing frees the slot for a new assessment.
	created.Status = models.AssessmentCompleted
	require.NoError(t, repo.Update(ctx, created))
	fresh, err := repo.GetActiveOrCreate(ctx, patientID, "root")
	require.NoError(t, err)
	require.NotEqual(t, created.ID, fresh.ID)
}

func TestAssessmentRepository_AppendAndListAnswers(t *testing.T) {
	t.Parallel()
	dbs := newTestDB(t)
	patientID := newTestPatient(t, dbs)
	repo := repositories.NewAssessmentRepository(dbs, testhelpers.NewLogger(io.Discard))
	ctx := context.Background()

	assessment, err := repo.GetActiveOrCreate(ctx, patientID, "root")
	require.NoError(t, err)

	filters := []models.FilterSpec{
		{Field: "style", Operator: models.FilterOpNotIn, Values: []string{"ITE"}, Reason: "first-time user"},
	}
	first, err := repo.AppendAnswer(ctx, assessment.ID, models.AssessmentAnswer{
		QuestionID:   "q_hearing",
		QuestionText: "Do you have difficulty hearing conversations?",
		Answer:       "yes",
	})
	require.NoError(t, err)
	require.Equal(t, 1, first.Sequence)

	second, err := repo.AppendAnswer(ctx, assessment.ID, models.AssessmentAnswer{
		QuestionID: "flag_ite",
		Answer:     "auto-processed",
		Filters:    filters,
	})
	require.NoError(t, err)
	require.Equal(t, 2, second.Sequence)

	answers, err := repo.ListAnswers(ctx, assessment.ID)
	require.NoError(t, err)
	require.Len(t, answers, 2)
	require.Equal(t, "q_hearing", answers[0].QuestionID)
	require.Empty(t, answers[0].Filters)
	require.Equal(t, "flag_ite", answers[1].QuestionID)
	require.Equal(t, filters, answers[1].Filters)
	require.False(t, answers[1].AnsweredAt.IsZero())
}

func TestAssessmentRepository_DeleteAnswerIsIdempotent(t *testing.T) {
	t.Parallel()
	dbs := newTestDB(t)
	patientID := newTestPatient(t, dbs)
	repo := repositories.NewAssessmentRepository(dbs, testhelpers.NewLogger(io.Discard))
	ctx := context.Background()

	assessment, err := repo.GetActiveOrCreate(ctx, patientID, "root")
	require.NoError(t, err)

	_, err = repo.AppendAnswer(ctx, assessment.ID, models.AssessmentAnswer{QuestionID: "q1", Answer: "yes"})
	require.NoError(t, err)
	_, err = repo.AppendAnswer(ctx, assessment.ID, models.AssessmentAnswer{QuestionID: "q2", Answer: "no"})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteAnswer(ctx, assessment.ID, "q2"))
	require.NoError(t, repo.DeleteAnswer(ctx, assessment.ID, "q2"))
	require.NoError(t, repo.DeleteAnswer(ctx, assessment.ID, "never-answered"))

	answers, err := repo.ListAnswers(ctx, assessment.ID)
	require.NoError(t, err)
	require.Len(t, answers, 1)

	// The sequence continues from the remaining answer count.
	replay, err := repo.AppendAnswer(ctx, assessment.ID, models.AssessmentAnswer{QuestionID: "q2", Answer: "yes"})
	require.NoError(t, err)
	require.Equal(t, 2, replay.Sequence)
}

func TestAssessmentRepository_CorruptFilterBlob(t *testing.T) {
	t.Parallel()
	dbs := newTestDB(t)
	patientID := newTestPatient(t, dbs)
	repo := repositories.NewAssessmentRepository(dbs, testhelpers.NewLogger(io.Discard))
	ctx := context.Background()

	assessment, err := repo.GetActiveOrCreate(ctx, patientID, "root")
	require.NoError(t, err)

	_, err = dbs.ReadWrite.ExecContext(ctx, `INSERT INTO assessment_answers
(assessment_id, question_id, answer, sequence, answered_at, filters)
VALUES (?, 'q1', 'yes', 1, CURRENT_TIMESTAMP, '{not json')`, assessment.ID)
	require.NoError(t, err)

	answers, err := repo.ListAnswers(ctx, assessment.ID)
	require.NoError(t, err)
	require.Len(t, answers, 1)
	require.Empty(t, answers[0].Filters)
}

func TestAssessmentRepository_Update(t *testing.T) {
	t.Parallel()
	dbs := newTestDB(t)
	patientID := newTestPatient(t, dbs)
	repo := repositories.NewAssessmentRepository(dbs, testhelpers.NewLogger(io.Discard))
	ctx := context.Background()

	assessment, err := repo.GetActiveOrCreate(ctx, patientID, "root")
	require.NoError(t, err)

	assessment.CurrentNodeID = "q_prior_devices"
	require.NoError(t, repo.Update(ctx, assessment))

	active, err := repo.GetActive(ctx, patientID)
	require.NoError(t, err)
	require.Equal(t, "q_prior_devices", active.CurrentNodeID)

	missing := *assessment
	missing.ID = "no-such-assessment"
	require.ErrorIs(t, repo.Update(ctx, &missing), repositories.ErrAssessmentNotFound)
}
