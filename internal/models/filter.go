package models

// FilterOperator is the closed set of comparison kinds a FilterSpec can carry.
// The catalog compiler switches exhaustively over these constants; anything
// else contributes no predicate.
type FilterOperator string

const (
	FilterOpEquals             FilterOperator = "equals"
	FilterOpNotEquals          FilterOperator = "not_equals"
	FilterOpIn                 FilterOperator = "in"
	FilterOpNotIn              FilterOperator = "not_in"
	FilterOpContains           FilterOperator = "contains"
	FilterOpNotContains        FilterOperator = "not_contains"
	FilterOpGreaterThan        FilterOperator = "greater_than"
	FilterOpGreaterThanOrEqual FilterOperator = "greater_than_or_equal"
	FilterOpLessThan           FilterOperator = "less_than"
	FilterOpLessThanOrEqual    FilterOperator = "less_than_or_equal"
)

// FilterSpec is one structured catalog-query criterion attached to a decision
// node or a persisted answer.
type FilterSpec struct {
	Field    string         `json:"field"`
	Operator FilterOperator `json:"operator"`
	Values   []string       `json:"values"`
	// Reason is free-text explanation for clinicians, never used in queries.
	Reason string `json:"reason,omitempty"`
}
