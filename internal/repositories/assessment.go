package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/TulasiR141/otopilot/internal/errors"
	"github.com/TulasiR141/otopilot/internal/models"
	"github.com/TulasiR141/otopilot/internal/sqlite"
)

var (
	// ErrNoActiveAssessment means the patient has no in-progress assessment.
	ErrNoActiveAssessment = errors.NewSentinel("no active assessment")
	// ErrAssessmentNotFound means the assessment id is unknown.
	ErrAssessmentNotFound = errors.NewSentinel("assessment not found")
)

type AssessmentRepository struct {
	dbs    *sqlite.Database
	logger *slog.Logger
}

func NewAssessmentRepository(dbs *sqlite.Database, logger *slog.Logger) *AssessmentRepository {
	return &AssessmentRepository{
		dbs:    dbs,
		logger: logger.With("source", "AssessmentRepository"),
	}
}

const assessmentColumns = `id, patient_id, status, started_at, completed_at,
current_node_id, final_node_id, final_action, total_questions`

// GetActive returns the patient's in-progress assessment with its answers,
// or ErrNoActiveAssessment when there is none.
func (r *AssessmentRepository) GetActive(ctx context.Context, patientID int64) (*models.Assessment, error) {
	return r.getActive(ctx, r.dbs.ReadOnly, patientID)
}

func (r *AssessmentRepository) getActive(ctx context.Context, q queryer, patientID int64) (*models.Assessment, error) {
	stmt := `SELECT ` + assessmentColumns + `
FROM assessments
WHERE patient_id = @patient_id AND status = @status`
	row := q.QueryRowContext(ctx, stmt,
		sql.Named("patient_id", patientID),
		sql.Named("status", models.AssessmentInProgress))

	assessment, err := scanAssessment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrap(ErrNoActiveAssessment, "get active assessment",
				slog.Int64("patientID", patientID))
		}
		return nil, errors.Wrap(err, "read active assessment", slog.Int64("patientID", patientID))
	}

	if assessment.Answers, err = r.listAnswers(ctx, q, assessment.ID); err != nil {
		return nil, err
	}
	return assessment, nil
}

// GetActiveOrCreate returns the patient's in-progress assessment, creating one
// when none exists. The insert relies on the partial unique index on active
// assessments, so two concurrent calls converge on the same row instead of
// racing to create two.
func (r *AssessmentRepository) GetActiveOrCreate(
	ctx context.Context,
	patientID int64,
	currentNodeID string,
) (*models.Assessment, error) {
	stmt := `INSERT INTO assessments (id, patient_id, status, started_at, current_node_id)
VALUES (@id, @patient_id, @status, @started_at, @current_node_id)
ON CONFLICT DO NOTHING`
	if _, err := r.dbs.ReadWrite.ExecContext(ctx, stmt,
		sql.Named("id", uuid.NewString()),
		sql.Named("patient_id", patientID),
		sql.Named("status", models.AssessmentInProgress),
		sql.Named("started_at", time.Now().UTC()),
		sql.Named("current_node_id", currentNodeID),
	); err != nil {
		return nil, errors.Wrap(err, "create assessment", slog.Int64("patientID", patientID))
	}

	// Read back through the write connection so we see the row regardless of
	// which caller won the insert.
	return r.getActive(ctx, r.dbs.ReadWrite, patientID)
}

// AppendAnswer persists an answer with the next sequence number. The sequence
// is re-derived from the current answer count inside the write transaction,
// never kept as a separate counter.
func (r *AssessmentRepository) AppendAnswer(
	ctx context.Context,
	assessmentID string,
	answer models.AssessmentAnswer,
) (models.AssessmentAnswer, error) {
	filtersBlob, err := json.Marshal(answer.Filters)
	if err != nil {
		return answer, errors.Wrap(err, "marshal answer filters", slog.String("assessmentID", assessmentID))
	}
	if answer.AnsweredAt.IsZero() {
		answer.AnsweredAt = time.Now().UTC()
	}

	tx, err := r.dbs.ReadWrite.BeginTxx(ctx, nil)
	if err != nil {
		return answer, errors.Wrap(err, "begin append answer")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var count int
	if err = tx.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM assessment_answers WHERE assessment_id = ?", assessmentID); err != nil {
		return answer, errors.Wrap(err, "count answers", slog.String("assessmentID", assessmentID))
	}
	answer.Sequence = count + 1
	answer.AssessmentID = assessmentID

	stmt := `INSERT INTO assessment_answers
(assessment_id, question_id, question_text, answer, commentary, sequence, answered_at, filters)
VALUES (@assessment_id, @question_id, @question_text, @answer, @commentary, @sequence, @answered_at, @filters)`
	result, err := tx.ExecContext(ctx, stmt,
		sql.Named("assessment_id", assessmentID),
		sql.Named("question_id", answer.QuestionID),
		sql.Named("question_text", answer.QuestionText),
		sql.Named("answer", answer.Answer),
		sql.Named("commentary", answer.Commentary),
		sql.Named("sequence", answer.Sequence),
		sql.Named("answered_at", answer.AnsweredAt),
		sql.Named("filters", string(filtersBlob)),
	)
	if err != nil {
		return answer, errors.Wrap(err, "insert answer",
			slog.String("assessmentID", assessmentID), slog.String("questionID", answer.QuestionID))
	}
	if answer.ID, err = result.LastInsertId(); err != nil {
		return answer, errors.Wrap(err, "answer insert id")
	}

	if err = tx.Commit(); err != nil {
		return answer, errors.Wrap(err, "commit append answer")
	}
	return answer, nil
}

// ListAnswers returns the assessment's answers ordered by sequence.
func (r *AssessmentRepository) ListAnswers(ctx context.Context, assessmentID string) ([]models.AssessmentAnswer, error) {
	return r.listAnswers(ctx, r.dbs.ReadOnly, assessmentID)
}

func (r *AssessmentRepository) listAnswers(ctx context.Context, q queryer, assessmentID string) ([]models.AssessmentAnswer, error) {
	stmt := `SELECT id, assessment_id, question_id, question_text, answer, commentary, sequence, answered_at, filters
FROM assessment_answers
WHERE assessment_id = ?
ORDER BY sequence`
	rows, err := q.QueryContext(ctx, stmt, assessmentID)
	if err != nil {
		return nil, errors.Wrap(err, "query answers", slog.String("assessmentID", assessmentID))
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			r.logger.LogAttrs(ctx, slog.LevelError, "could not close rows", errors.SlogError(closeErr))
		}
	}()

	var answers []models.AssessmentAnswer
	for rows.Next() {
		var (
			answer      models.AssessmentAnswer
			filtersBlob string
		)
		if err = rows.Scan(
			&answer.ID,
			&answer.AssessmentID,
			&answer.QuestionID,
			&answer.QuestionText,
			&answer.Answer,
			&answer.Commentary,
			&answer.Sequence,
			&answer.AnsweredAt,
			&filtersBlob,
		); err != nil {
			return nil, errors.Wrap(err, "scan answer")
		}
		// A corrupt filter blob must not make a patient's history unreadable.
		if err = json.Unmarshal([]byte(filtersBlob), &answer.Filters); err != nil {
			r.logger.LogAttrs(ctx, slog.LevelWarn, "unreadable filter payload, treating as empty",
				slog.String("assessmentID", assessmentID),
				slog.String("questionID", answer.QuestionID),
				errors.SlogError(err))
			answer.Filters = nil
		}
		answers = append(answers, answer)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "rows error")
	}
	return answers, nil
}

// Update persists the assessment's mutable fields.
func (r *AssessmentRepository) Update(ctx context.Context, assessment *models.Assessment) error {
	stmt := `UPDATE assessments
SET status = @status,
    completed_at = @completed_at,
    current_node_id = @current_node_id,
    final_node_id = @final_node_id,
    final_action = @final_action,
    total_questions = @total_questions
WHERE id = @id`
	result, err := r.dbs.ReadWrite.ExecContext(ctx, stmt,
		sql.Named("status", assessment.Status),
		sql.Named("completed_at", assessment.CompletedAt),
		sql.Named("current_node_id", assessment.CurrentNodeID),
		sql.Named("final_node_id", assessment.FinalNodeID),
		sql.Named("final_action", assessment.FinalAction),
		sql.Named("total_questions", assessment.TotalQuestions),
		sql.Named("id", assessment.ID),
	)
	if err != nil {
		return errors.Wrap(err, "update assessment", slog.String("assessmentID", assessment.ID))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "update assessment rows affected")
	}
	if affected == 0 {
		return errors.Wrap(ErrAssessmentNotFound, "update assessment", slog.String("assessmentID", assessment.ID))
	}
	return nil
}

// DeleteAnswer removes every answer for the question id. Deleting an already
// deleted answer is not an error.
func (r *AssessmentRepository) DeleteAnswer(ctx context.Context, assessmentID, questionID string) error {
	stmt := `DELETE FROM assessment_answers WHERE assessment_id = ? AND question_id = ?`
	if _, err := r.dbs.ReadWrite.ExecContext(ctx, stmt, assessmentID, questionID); err != nil {
		return errors.Wrap(err, "delete answer",
			slog.String("assessmentID", assessmentID), slog.String("questionID", questionID))
	}
	return nil
}

// queryer abstracts over the read-only and read-write connections.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAssessment(row rowScanner) (*models.Assessment, error) {
	var assessment models.Assessment
	err := row.Scan(
		&assessment.ID,
		&assessment.PatientID,
		&assessment.Status,
		&assessment.StartedAt,
		&assessment.CompletedAt,
		&assessment.CurrentNodeID,
		&assessment.FinalNodeID,
		&assessment.FinalAction,
		&assessment.TotalQuestions,
	)
	if err != nil {
		return nil, err
	}
	return &assessment, nil
}
