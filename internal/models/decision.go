package models

// DecisionNode is one vertex of the externally authored clinical decision graph.
//
// Forward movement is driven by Conditions when present, otherwise by Next.
// A node with neither is terminal.
type DecisionNode struct {
	Question    string            `json:"question,omitempty"`
	Description string            `json:"description,omitempty"`
	Module      string            `json:"module,omitempty"`
	Conditions  map[string]string `json:"conditions,omitempty"`
	Action      string            `json:"action,omitempty"`
	Next        string            `json:"next,omitempty"`
	Filters     []FilterSpec      `json:"filters,omitempty"`
}

// AutoSave reports whether the node carries clinical content that must be
// persisted during traversal even though it presents nothing to ask the user.
func (n DecisionNode) AutoSave() bool {
	return n.Question == "" && (n.Action != "" || len(n.Filters) > 0)
}

// Module groups related decision nodes under a display name.
type Module struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DecisionTree is the full decision graph keyed by node id plus the module map.
// It is immutable once loaded.
type DecisionTree struct {
	// RootID names the entry node. Empty defaults to "root".
	RootID  string                  `json:"root,omitempty"`
	Nodes   map[string]DecisionNode `json:"nodes"`
	Modules map[string]Module       `json:"modules,omitempty"`
}

// Root returns the entry node id of the tree.
func (t DecisionTree) Root() string {
	if t.RootID != "" {
		return t.RootID
	}
	return "root"
}

// ModuleName resolves a module id to its display name, falling back to the id.
func (t DecisionTree) ModuleName(id string) string {
	if module, ok := t.Modules[id]; ok && module.Name != "" {
		return module.Name
	}
	return id
}
