// Package catalog compiles abstract filter criteria into parameterized SQL
// against the hearing-aid catalog and runs the resulting queries.
package catalog

import (
	"fmt"
	"strings"

	"github.com/TulasiR141/otopilot/internal/models"
)

// allowedFields is the fixed set of catalog columns a filter may reference.
// Field names are rendered into SQL text, so everything else is rejected.
var allowedFields = map[string]struct{}{
	"manufacturer":   {},
	"model":          {},
	"style":          {},
	"battery_type":   {},
	"power_level":    {},
	"bluetooth":      {},
	"price_category": {},
}

// FieldAllowed reports whether field is an allow-listed catalog column.
func FieldAllowed(field string) bool {
	_, ok := allowedFields[field]
	return ok
}

// OperatorKnown reports whether op is one of the compilable filter operators.
func OperatorKnown(op models.FilterOperator) bool {
	switch op {
	case models.FilterOpEquals, models.FilterOpNotEquals,
		models.FilterOpIn, models.FilterOpNotIn,
		models.FilterOpContains, models.FilterOpNotContains,
		models.FilterOpGreaterThan, models.FilterOpGreaterThanOrEqual,
		models.FilterOpLessThan, models.FilterOpLessThanOrEqual:
		return true
	}
	return false
}

// CompileFilters translates filter specs into a parameterized WHERE predicate.
//
// Filters with an empty field, empty values, a disallowed field, or an
// unrecognized operator contribute no predicate. Field names come only from
// the allow-list and every value is bound as a separate parameter, so no
// user-controlled text reaches the SQL string. Per-filter predicates are
// joined with AND. An empty predicate means "match everything".
//
// Negative operators include NULL rows on purpose: a device with an unset
// attribute must only be excluded by a positive filter.
func CompileFilters(filters []models.FilterSpec) (string, []any) {
	var (
		predicates []string
		args       []any
	)
	for _, f := range filters {
		if f.Field == "" || len(f.Values) == 0 || !FieldAllowed(f.Field) {
			continue
		}

		var (
			predicate  string
			filterArgs []any
		)
		switch f.Operator {
		case models.FilterOpEquals:
			predicate, filterArgs = compileIn(f.Field, f.Values)
		case models.FilterOpNotEquals:
			predicate, filterArgs = compileNotIn(f.Field, f.Values)
		case models.FilterOpIn:
			predicate, filterArgs = compileIn(f.Field, f.Values)
		case models.FilterOpNotIn:
			predicate, filterArgs = compileNotIn(f.Field, f.Values)
		case models.FilterOpContains:
			predicate, filterArgs = compileContains(f.Field, f.Values)
		case models.FilterOpNotContains:
			predicate, filterArgs = compileNotContains(f.Field, f.Values)
		case models.FilterOpGreaterThan:
			predicate, filterArgs = compileComparison(f.Field, ">", f.Values[0])
		case models.FilterOpGreaterThanOrEqual:
			predicate, filterArgs = compileComparison(f.Field, ">=", f.Values[0])
		case models.FilterOpLessThan:
			predicate, filterArgs = compileComparison(f.Field, "<", f.Values[0])
		case models.FilterOpLessThanOrEqual:
			predicate, filterArgs = compileComparison(f.Field, "<=", f.Values[0])
		default:
			continue
		}

		predicates = append(predicates, predicate)
		args = append(args, filterArgs...)
	}

	if len(predicates) == 0 {
		return "", nil
	}
	return strings.Join(predicates, " AND "), args
}

// compileIn covers equals with any value count: a single value compiles to a
// plain equality, several behave like an IN list.
func compileIn(field string, values []string) (string, []any) {
	if len(values) == 1 {
		return fmt.Sprintf("%s = ?", field), []any{values[0]}
	}
	return fmt.Sprintf("%s IN (%s)", field, placeholders(len(values))), bindAll(values)
}

func compileNotIn(field string, values []string) (string, []any) {
	if len(values) == 1 {
		return fmt.Sprintf("(%s != ? OR %s IS NULL)", field, field), []any{values[0]}
	}
	return fmt.Sprintf("(%s NOT IN (%s) OR %s IS NULL)", field, placeholders(len(values)), field),
		bindAll(values)
}

func compileContains(field string, values []string) (string, []any) {
	likes := make([]string, len(values))
	args := make([]any, len(values))
	for i, v := range values {
		likes[i] = fmt.Sprintf("%s LIKE ?", field)
		args[i] = "%" + v + "%"
	}
	return "(" + strings.Join(likes, " OR ") + ")", args
}

func compileNotContains(field string, values []string) (string, []any) {
	notLikes := make([]string, len(values))
	args := make([]any, len(values))
	for i, v := range values {
		notLikes[i] = fmt.Sprintf("%s NOT LIKE ?", field)
		args[i] = "%" + v + "%"
	}
	return fmt.Sprintf("(%s OR %s IS NULL)", strings.Join(notLikes, " AND "), field), args
}

// compileComparison uses only the first value of the filter.
func compileComparison(field, op, value string) (string, []any) {
	return fmt.Sprintf("%s %s ?", field, op), []any{value}
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func bindAll(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}
