package decisiontree

import (
	"fmt"

	"github.com/TulasiR141/otopilot/internal/catalog"
	"github.com/TulasiR141/otopilot/internal/models"
)

// Validate checks a tree document for authoring mistakes before it is put in
// front of clinicians. It reports every problem it finds instead of stopping
// at the first one.
func Validate(tree *models.DecisionTree) []error {
	var problems []error

	root := tree.Root()
	if _, ok := tree.Nodes[root]; !ok {
		problems = append(problems, fmt.Errorf("root node %q not in tree", root))
	}

	for id, node := range tree.Nodes {
		if node.Next != "" {
			if _, ok := tree.Nodes[node.Next]; !ok {
				problems = append(problems, fmt.Errorf("node %q: successor %q not in tree", id, node.Next))
			}
		}
		for answer, target := range node.Conditions {
			if target == "" {
				continue
			}
			if _, ok := tree.Nodes[target]; !ok {
				problems = append(problems,
					fmt.Errorf("node %q: answer %q points to unknown node %q", id, answer, target))
			}
		}
		if node.Module != "" && len(tree.Modules) > 0 {
			if _, ok := tree.Modules[node.Module]; !ok {
				problems = append(problems, fmt.Errorf("node %q: unknown module %q", id, node.Module))
			}
		}
		for i, filter := range node.Filters {
			if !catalog.FieldAllowed(filter.Field) {
				problems = append(problems,
					fmt.Errorf("node %q: filter %d references disallowed field %q", id, i, filter.Field))
			}
			if !catalog.OperatorKnown(filter.Operator) {
				problems = append(problems,
					fmt.Errorf("node %q: filter %d has unknown operator %q", id, i, filter.Operator))
			}
			if len(filter.Values) == 0 {
				problems = append(problems, fmt.Errorf("node %q: filter %d has no values", id, i))
			}
		}
	}
	return problems
}
