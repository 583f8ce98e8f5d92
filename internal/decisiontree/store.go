package decisiontree

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/TulasiR141/otopilot/internal/errors"
	"github.com/TulasiR141/otopilot/internal/models"
)

var (
	// ErrTreeUnavailable means the tree document is missing or malformed.
	// Callers treat this as a first-class outcome, not an exception path.
	ErrTreeUnavailable = errors.NewSentinel("decision tree unavailable")
	// ErrNodeNotFound means the requested node id is not in the tree.
	ErrNodeNotFound = errors.NewSentinel("decision node not found")
	// ErrNoSuccessor means a pass-through node points nowhere. This is a
	// data-authoring bug, not a runtime condition to route around silently.
	ErrNoSuccessor = errors.NewSentinel("pass-through node has no successor")
)

// Store loads the decision tree from a JSON document and caches the decoded
// snapshot. Reload swaps the snapshot atomically so concurrent readers never
// observe a torn tree.
type Store struct {
	path   string
	logger *slog.Logger
	tree   atomic.Pointer[models.DecisionTree]
}

func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{
		path:   path,
		logger: logger.With("source", "decisiontree.Store"),
	}
}

// Load returns the cached tree, reading the document on first use.
func (s *Store) Load(ctx context.Context) (*models.DecisionTree, error) {
	if tree := s.tree.Load(); tree != nil {
		return tree, nil
	}
	return s.Reload(ctx)
}

// Reload re-reads the document and atomically replaces the cached snapshot.
func (s *Store) Reload(ctx context.Context) (*models.DecisionTree, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "tree document unreadable",
			slog.String("path", s.path), errors.SlogError(err))
		return nil, errors.Wrap(ErrTreeUnavailable, "read tree document", slog.String("path", s.path))
	}

	var tree models.DecisionTree
	if err = json.Unmarshal(data, &tree); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "tree document malformed",
			slog.String("path", s.path), errors.SlogError(err))
		return nil, errors.Wrap(ErrTreeUnavailable, "decode tree document", slog.String("path", s.path))
	}
	if len(tree.Nodes) == 0 {
		return nil, errors.Wrap(ErrTreeUnavailable, "tree document has no nodes", slog.String("path", s.path))
	}

	s.tree.Store(&tree)
	s.logger.LogAttrs(ctx, slog.LevelInfo, "decision tree loaded",
		slog.Int("nodes", len(tree.Nodes)), slog.Int("modules", len(tree.Modules)))
	return &tree, nil
}

// Node resolves a node id against the cached tree.
func (s *Store) Node(ctx context.Context, id string) (models.DecisionNode, error) {
	tree, err := s.Load(ctx)
	if err != nil {
		return models.DecisionNode{}, err
	}
	node, ok := tree.Nodes[id]
	if !ok {
		return models.DecisionNode{}, errors.Wrap(ErrNodeNotFound, "resolve node", slog.String("nodeID", id))
	}
	return node, nil
}
