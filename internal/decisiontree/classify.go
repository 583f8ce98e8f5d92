// Package decisiontree loads the externally authored clinical decision graph
// and classifies its nodes for traversal.
package decisiontree

import "github.com/TulasiR141/otopilot/internal/models"

// NodeKind is the traversal state derived from a node's structural shape.
// The structural classifier is the single source of truth for node typing;
// the tree document never carries an explicit type field.
type NodeKind int

const (
	// NodePassThrough nodes have no question and a successor. They are
	// auto-traversed without user interaction.
	NodePassThrough NodeKind = iota
	// NodeTerminal nodes have no question and no successor.
	NodeTerminal
	// NodeQuestionWithOptions nodes ask a question whose answer selects the
	// successor through the conditions map.
	NodeQuestionWithOptions
	// NodeQuestionCommentaryOnly nodes ask a question without predefined
	// options; the successor is the node's next pointer.
	NodeQuestionCommentaryOnly
)

func (k NodeKind) String() string {
	switch k {
	case NodePassThrough:
		return "pass_through"
	case NodeTerminal:
		return "terminal"
	case NodeQuestionWithOptions:
		return "question_with_options"
	case NodeQuestionCommentaryOnly:
		return "question_commentary_only"
	}
	return "unknown"
}

// Classify maps a decision node's shape to its traversal state.
func Classify(n models.DecisionNode) NodeKind {
	switch {
	case n.Question != "" && len(n.Conditions) > 0:
		return NodeQuestionWithOptions
	case n.Question != "":
		return NodeQuestionCommentaryOnly
	case n.Next != "":
		return NodePassThrough
	default:
		return NodeTerminal
	}
}
