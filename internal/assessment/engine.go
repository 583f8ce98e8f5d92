// Package assessment owns the per-patient assessment lifecycle: advancing
// through the decision tree, persisting answers, and producing the completed
// recommendation bundle.
package assessment

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/TulasiR141/otopilot/internal/decisiontree"
	"github.com/TulasiR141/otopilot/internal/errors"
	"github.com/TulasiR141/otopilot/internal/models"
	"github.com/TulasiR141/otopilot/internal/recommendation"
	"github.com/TulasiR141/otopilot/internal/repositories"
)

// AutoProcessedAnswer is the sentinel answer text recorded for nodes that are
// persisted without user interaction.
const AutoProcessedAnswer = "auto-processed"

// maxTraversalHops bounds a single advance through the tree. The graph is
// assumed acyclic, so hitting the bound means a data-authoring bug.
const maxTraversalHops = 100

// ErrEmptyAnswer means an answer was submitted without a value.
var ErrEmptyAnswer = errors.NewSentinel("answer value must not be empty")

// AnswerStore persists assessments and their answers. GetActive reports a
// missing in-progress assessment with repositories.ErrNoActiveAssessment.
type AnswerStore interface {
	GetActive(ctx context.Context, patientID int64) (*models.Assessment, error)
	GetActiveOrCreate(ctx context.Context, patientID int64, currentNodeID string) (*models.Assessment, error)
	AppendAnswer(ctx context.Context, assessmentID string, answer models.AssessmentAnswer) (models.AssessmentAnswer, error)
	ListAnswers(ctx context.Context, assessmentID string) ([]models.AssessmentAnswer, error)
	Update(ctx context.Context, assessment *models.Assessment) error
	DeleteAnswer(ctx context.Context, assessmentID, questionID string) error
}

// CatalogStore answers compiled filter queries against the device catalog.
type CatalogStore interface {
	QueryByFilters(ctx context.Context, filters []models.FilterSpec) ([]models.HearingAid, error)
}

type Engine struct {
	trees   *decisiontree.Store
	answers AnswerStore
	catalog CatalogStore
	library *recommendation.Library
	logger  *slog.Logger
}

func NewEngine(
	trees *decisiontree.Store,
	answers AnswerStore,
	catalog CatalogStore,
	library *recommendation.Library,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		trees:   trees,
		answers: answers,
		catalog: catalog,
		library: library,
		logger:  logger.With("source", "assessment.Engine"),
	}
}

// AdvanceResult describes where a traversal came to rest.
type AdvanceResult struct {
	// NodeID and Node are the resting node.
	NodeID string
	Node   models.DecisionNode
	// NodeType is the structural classification of the resting node, derived
	// at response time and never stored.
	NodeType string
	// EndOfPath is true when the path terminated; false means the resting
	// node awaits user input.
	EndOfPath bool
	// FinalAction carries the last non-empty action text seen along the
	// auto-advanced suffix of the path.
	FinalAction string
}

// Advance walks the tree from nodeID: pass-through nodes are skipped
// silently, terminal and content-carrying nodes are auto-saved, question
// nodes stop the walk and await input.
func (e *Engine) Advance(ctx context.Context, patientID int64, nodeID string) (*AdvanceResult, error) {
	result, err := e.advance(ctx, patientID, nodeID)
	if err != nil {
		return nil, err
	}
	if err = e.recordCurrentNode(ctx, patientID, result.NodeID); err != nil {
		return nil, err
	}
	return result, nil
}

func (e *Engine) advance(ctx context.Context, patientID int64, nodeID string) (*AdvanceResult, error) {
	var finalAction string
	current := nodeID
	for hops := 0; hops < maxTraversalHops; hops++ {
		node, err := e.trees.Node(ctx, current)
		if err != nil {
			if hops > 0 && errors.Is(err, decisiontree.ErrNodeNotFound) {
				// A successor pointing outside the tree is a data-authoring
				// bug, not a plain lookup miss.
				return nil, errors.Wrap(errors.Join(decisiontree.ErrNoSuccessor, err),
					"successor not in tree", slog.String("nodeID", current))
			}
			return nil, err
		}

		kind := decisiontree.Classify(node)
		switch {
		case kind == decisiontree.NodeTerminal || node.AutoSave():
			if err = e.autoSave(ctx, patientID, current, node); err != nil {
				return nil, err
			}
			if node.Action != "" {
				finalAction = node.Action
			}
			if node.Next != "" {
				current = node.Next
				continue
			}
			return &AdvanceResult{
				NodeID:      current,
				Node:        node,
				NodeType:    kind.String(),
				EndOfPath:   true,
				FinalAction: finalAction,
			}, nil

		case kind == decisiontree.NodePassThrough:
			current = node.Next

		default:
			// Question nodes stop the walk and await input.
			return &AdvanceResult{
				NodeID:      current,
				Node:        node,
				NodeType:    kind.String(),
				FinalAction: finalAction,
			}, nil
		}
	}
	return nil, errors.Wrap(decisiontree.ErrNoSuccessor, "traversal hop limit exceeded",
		slog.String("startNodeID", nodeID), slog.Int("maxHops", maxTraversalHops))
}

// autoSave synthesizes and persists an answer for a node that carries
// clinical content but presents nothing to ask the user.
func (e *Engine) autoSave(ctx context.Context, patientID int64, nodeID string, node models.DecisionNode) error {
	assessment, err := e.answers.GetActiveOrCreate(ctx, patientID, nodeID)
	if err != nil {
		return err
	}
	if _, err = e.answers.AppendAnswer(ctx, assessment.ID, models.AssessmentAnswer{
		QuestionID:   nodeID,
		QuestionText: node.Action,
		Answer:       AutoProcessedAnswer,
		Filters:      node.Filters,
	}); err != nil {
		return err
	}
	e.logger.LogAttrs(ctx, slog.LevelDebug, "auto-saved node",
		slog.Int64("patientID", patientID), slog.String("nodeID", nodeID),
		slog.Int("filters", len(node.Filters)))
	return nil
}

// recordCurrentNode advances the cursor on the active assessment, if any.
func (e *Engine) recordCurrentNode(ctx context.Context, patientID int64, nodeID string) error {
	assessment, err := e.answers.GetActive(ctx, patientID)
	if err != nil {
		if errors.Is(err, repositories.ErrNoActiveAssessment) {
			return nil
		}
		return err
	}
	if assessment.CurrentNodeID == nodeID {
		return nil
	}
	assessment.CurrentNodeID = nodeID
	return e.answers.Update(ctx, assessment)
}

// SubmitAnswerInput carries one user answer to a question node.
type SubmitAnswerInput struct {
	NodeID     string
	Answer     string
	Commentary string
	Filters    []models.FilterSpec
}

// SubmitAnswer validates and persists an answer, then advances to the
// successor selected by the answer value. A missing successor ends the path
// without error.
func (e *Engine) SubmitAnswer(ctx context.Context, patientID int64, in SubmitAnswerInput) (*AdvanceResult, error) {
	if strings.TrimSpace(in.Answer) == "" {
		return nil, errors.Wrap(ErrEmptyAnswer, "submit answer",
			slog.Int64("patientID", patientID), slog.String("nodeID", in.NodeID))
	}

	node, err := e.trees.Node(ctx, in.NodeID)
	if err != nil {
		return nil, err
	}

	assessment, err := e.answers.GetActiveOrCreate(ctx, patientID, in.NodeID)
	if err != nil {
		return nil, err
	}
	if _, err = e.answers.AppendAnswer(ctx, assessment.ID, models.AssessmentAnswer{
		QuestionID:   in.NodeID,
		QuestionText: node.Question,
		Answer:       in.Answer,
		Commentary:   in.Commentary,
		Filters:      in.Filters,
	}); err != nil {
		return nil, err
	}

	kind := decisiontree.Classify(node)
	var next string
	switch kind {
	case decisiontree.NodeQuestionWithOptions:
		next = node.Conditions[in.Answer]
	default:
		next = node.Next
	}
	if next == "" {
		// No successor for this answer is an explicit terminal condition.
		result := &AdvanceResult{
			NodeID:      in.NodeID,
			Node:        node,
			NodeType:    kind.String(),
			EndOfPath:   true,
			FinalAction: node.Action,
		}
		return result, e.recordCurrentNode(ctx, patientID, in.NodeID)
	}

	result, err := e.advance(ctx, patientID, next)
	if err != nil {
		return nil, err
	}
	return result, e.recordCurrentNode(ctx, patientID, result.NodeID)
}

// CompleteInput finalizes an assessment.
type CompleteInput struct {
	FinalNodeID    string
	FinalAction    string
	TotalQuestions int
}

// Summary is the completed-assessment bundle returned to the caller.
type Summary struct {
	AssessmentID      string
	Status            models.AssessmentStatus
	QuestionsAnswered int
	TotalQuestions    int
	CompletedAt       time.Time
	TemplateTag       models.TemplateTag
	KeyFindings       []string
	Recommendation    string
	NextSteps         string
	ModuleName        string
	Devices           []models.HearingAid
}

// Complete flips the active assessment to completed, aggregates the filters
// from all answers in sequence order, queries the catalog and renders the
// recommendation texts. Catalog failure degrades to an empty device list;
// completion itself still succeeds.
func (e *Engine) Complete(ctx context.Context, patientID int64, in CompleteInput) (*Summary, error) {
	assessment, err := e.answers.GetActive(ctx, patientID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	assessment.Status = models.AssessmentCompleted
	assessment.CompletedAt = &now
	assessment.CurrentNodeID = in.FinalNodeID
	assessment.FinalNodeID = in.FinalNodeID
	assessment.FinalAction = in.FinalAction
	assessment.TotalQuestions = in.TotalQuestions
	if err = e.answers.Update(ctx, assessment); err != nil {
		return nil, err
	}

	filters := AggregateFilters(assessment.Answers)
	devices, err := e.catalog.QueryByFilters(ctx, filters)
	if err != nil {
		// Recommendations degrade to empty rather than aborting completion.
		e.logger.LogAttrs(ctx, slog.LevelWarn, "catalog query failed, completing without device matches",
			slog.Int64("patientID", patientID), errors.SlogError(err))
		devices = nil
	}

	// Template resolution must never block completion either: an unknown
	// final node or unavailable tree degrades to text-only resolution.
	var finalNode models.DecisionNode
	if node, nodeErr := e.trees.Node(ctx, in.FinalNodeID); nodeErr == nil {
		finalNode = node
	}
	tree, _ := e.trees.Load(ctx)

	tag := recommendation.ResolveTag(finalNode, in.FinalAction, assessment.Answers)
	template := e.library.Template(ctx, tag)
	findings := recommendation.KeyFindings(template, in.FinalAction, assessment.Answers, tree, now)

	moduleName := ""
	if tree != nil && finalNode.Module != "" {
		moduleName = tree.ModuleName(finalNode.Module)
	}

	return &Summary{
		AssessmentID:      assessment.ID,
		Status:            assessment.Status,
		QuestionsAnswered: len(assessment.Answers),
		TotalQuestions:    in.TotalQuestions,
		CompletedAt:       now,
		TemplateTag:       tag,
		KeyFindings:       findings,
		Recommendation:    template.Recommendation,
		NextSteps:         template.NextSteps,
		ModuleName:        moduleName,
		Devices:           devices,
	}, nil
}

// DeleteAnswer removes every answer recorded for the question id on the
// active assessment. The client uses this to replay a path; deleting an
// already deleted answer is not an error.
func (e *Engine) DeleteAnswer(ctx context.Context, patientID int64, questionID string) error {
	assessment, err := e.answers.GetActive(ctx, patientID)
	if err != nil {
		return err
	}
	return e.answers.DeleteAnswer(ctx, assessment.ID, questionID)
}

// AggregateFilters collects the filter specs from all answers in answer
// sequence order, preserving the stored order within each answer.
func AggregateFilters(answers []models.AssessmentAnswer) []models.FilterSpec {
	var filters []models.FilterSpec
	for _, answer := range answers {
		filters = append(filters, answer.Filters...)
	}
	return filters
}
