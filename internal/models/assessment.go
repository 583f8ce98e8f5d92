package models

import "time"

type AssessmentStatus string

const (
	AssessmentInProgress AssessmentStatus = "in_progress"
	AssessmentCompleted  AssessmentStatus = "completed"
)

// Assessment is one patient's walk through the decision tree.
//
// A patient has at most one in-progress assessment at a time. The final
// fields are set only at completion and never reverted.
type Assessment struct {
	ID             string
	PatientID      int64
	Status         AssessmentStatus
	StartedAt      time.Time
	CompletedAt    *time.Time
	CurrentNodeID  string
	FinalNodeID    string
	FinalAction    string
	TotalQuestions int
	Answers        []AssessmentAnswer
}

// AssessmentAnswer is one recorded answer, ordered by Sequence within its
// assessment. Sequence is assigned at write time from the current answer
// count and never reused.
type AssessmentAnswer struct {
	ID           int64
	AssessmentID string
	QuestionID   string
	QuestionText string
	Answer       string
	Commentary   string
	Sequence     int
	AnsweredAt   time.Time
	// Filters are persisted as an opaque JSON blob. A corrupt blob reads
	// back as an empty list, never an error.
	Filters []FilterSpec
}
