package decisiontree_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/TulasiR141/otopilot/internal/decisiontree"
	"github.com/TulasiR141/otopilot/internal/models"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	t.Run("well-formed tree passes", func(t *testing.T) {
		t.Parallel()
		tree := &models.DecisionTree{
			Nodes: map[string]models.DecisionNode{
				"root": {Next: "q1"},
				"q1": {
					Question:   "Any hearing trouble?",
					Conditions: map[string]string{"yes": "flag", "no": "t_done"},
				},
				"flag": {
					Action: "Flag for review",
					Filters: []models.FilterSpec{
						{Field: "style", Operator: models.FilterOpNotIn, Values: []string{"ITE"}},
					},
					Next: "t_done",
				},
				"t_done": {Action: "Done"},
			},
		}
		require.Empty(t, decisiontree.Validate(tree))
	})

	t.Run("reports every problem", func(t *testing.T) {
		t.Parallel()
		tree := &models.DecisionTree{
			RootID: "missing_root",
			Nodes: map[string]models.DecisionNode{
				"a": {Next: "nowhere"},
				"b": {
					Question:   "?",
					Conditions: map[string]string{"yes": "nope"},
					Module:     "ghost",
				},
				"c": {
					Filters: []models.FilterSpec{
						{Field: "color", Operator: "sounds_like", Values: nil},
					},
				},
			},
			Modules: map[string]models.Module{
				"screening": {ID: "screening", Name: "Screening"},
			},
		}

		problems := decisiontree.Validate(tree)
		messages := make([]string, 0, len(problems))
		for _, p := range problems {
			messages = append(messages, p.Error())
		}
		require.ElementsMatch(t, []string{
			`root node "missing_root" not in tree`,
			`node "a": successor "nowhere" not in tree`,
			`node "b": answer "yes" points to unknown node "nope"`,
			`node "b": unknown module "ghost"`,
			`node "c": filter 0 references disallowed field "color"`,
			`node "c": filter 0 has unknown operator "sounds_like"`,
			`node "c": filter 0 has no values`,
		}, messages)
	})
}
