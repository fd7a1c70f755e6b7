// Package query turns a QuerySpec into a store-agnostic Plan.
//
// The document store can order by a single field per query, so the builder picks exactly one
// ordering in this precedence: title prefix search, explicit deadline sort, creation time when
// nothing is filtered, document id otherwise. Every ordering ends with an id tie-break, which keeps
// (value, id) cursors valid for all filter combinations.
package query

import (
	"strings"

	"github.com/fastygo/tasksync/domain"
)

// HighSentinel is appended to a search prefix to form the inclusive upper bound of the range.
const HighSentinel = "\uf8ff"

// Build produces the plan for spec. It never fails: every combination has a well-formed default.
func Build(spec domain.QuerySpec) domain.Plan {
	var plan domain.Plan

	if spec.Priority != "" {
		plan.Predicates = append(plan.Predicates, eq(domain.FieldPriority, string(spec.Priority)))
	}
	if spec.Status != "" {
		plan.Predicates = append(plan.Predicates, eq(domain.FieldStatus, string(spec.Status)))
	}
	if spec.CategoryID != "" {
		plan.Predicates = append(plan.Predicates, eq(domain.FieldCategoryID, spec.CategoryID))
	}

	search := domain.NormalizeTitle(strings.TrimSpace(spec.SearchTitle))
	switch {
	case search != "":
		plan.Predicates = append(plan.Predicates,
			domain.Predicate{Field: domain.FieldTitleLowercase, Op: domain.OpGreaterEqual, Value: search},
			domain.Predicate{Field: domain.FieldTitleLowercase, Op: domain.OpLessEqual, Value: search + HighSentinel},
		)
		plan.Order = domain.Ordering{Field: domain.FieldTitleLowercase, Direction: domain.Asc}
	case spec.SortBy == domain.SortDeadlineAsc:
		plan.Order = domain.Ordering{Field: domain.FieldDeadline, Direction: domain.Asc}
	case spec.SortBy == domain.SortDeadlineDesc:
		plan.Order = domain.Ordering{Field: domain.FieldDeadline, Direction: domain.Desc}
	case !spec.HasFilters():
		plan.Order = domain.Ordering{Field: domain.FieldCreatedAt, Direction: domain.Desc}
	default:
		// Filtered listings without an explicit order use the id so that no composite
		// (filter, createdAt) index is needed.
		plan.Order = domain.Ordering{Field: domain.FieldID, Direction: domain.Asc}
	}

	return plan
}

func eq(field domain.Field, value string) domain.Predicate {
	return domain.Predicate{Field: field, Op: domain.OpEqual, Value: value}
}
