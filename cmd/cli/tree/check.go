// Package tree holds the CLI commands for working with decision tree documents.
package tree

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/TulasiR141/otopilot/internal/decisiontree"
)

var Group = &cobra.Group{
	ID:    "tree",
	Title: "Decision tree",
}

var treePath string

func init() {
	Check.Flags().StringVar(&treePath, "tree", "./data/decision-tree.json", "path to the decision tree document")
}

var Check = &cobra.Command{
	Use:     "check",
	GroupID: "tree",
	Short:   "Validate a decision tree document",
	Long: `Loads a decision tree document and reports authoring mistakes:
successors pointing outside the tree, unknown modules, and filters with
disallowed fields or unknown operators.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		store := decisiontree.NewStore(treePath, logger)
		loaded, err := store.Load(cmd.Context())
		if err != nil {
			return err
		}

		problems := decisiontree.Validate(loaded)
		if len(problems) == 0 {
			cmd.Printf("tree OK: %d nodes, %d modules\n", len(loaded.Nodes), len(loaded.Modules))
			return nil
		}
		for _, problem := range problems {
			cmd.PrintErrln(problem)
		}
		return fmt.Errorf("found %d problems in %s", len(problems), treePath)
	},
}
