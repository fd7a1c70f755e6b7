package query

import (
	"testing"

	"github.com/fastygo/tasksync/domain"
)

func TestBuildSearchOverridesSort(t *testing.T) {
	for _, sortBy := range []domain.SortOrder{"", domain.SortDeadlineAsc, domain.SortDeadlineDesc} {
		plan := Build(domain.QuerySpec{SearchTitle: "Buy", SortBy: sortBy, Status: domain.StatusUncompleted})

		want := domain.Ordering{Field: domain.FieldTitleLowercase, Direction: domain.Asc}
		if plan.Order != want {
			t.Fatalf("sortBy=%q: expected %+v, got %+v", sortBy, want, plan.Order)
		}
		if len(plan.Predicates) != 3 {
			t.Fatalf("sortBy=%q: expected status + range predicates, got %+v", sortBy, plan.Predicates)
		}
		lower, upper := plan.Predicates[1], plan.Predicates[2]
		if lower.Op != domain.OpGreaterEqual || lower.Value != "buy" {
			t.Fatalf("unexpected lower bound %+v", lower)
		}
		if upper.Op != domain.OpLessEqual || upper.Value != "buy"+HighSentinel {
			t.Fatalf("unexpected upper bound %+v", upper)
		}
	}
}

func TestBuildDefaultOrdering(t *testing.T) {
	plan := Build(domain.QuerySpec{Limit: 10})

	want := domain.Ordering{Field: domain.FieldCreatedAt, Direction: domain.Desc}
	if plan.Order != want {
		t.Fatalf("expected %+v, got %+v", want, plan.Order)
	}
	if len(plan.Predicates) != 0 {
		t.Fatalf("expected no predicates, got %+v", plan.Predicates)
	}
}

func TestBuildDeadlineSort(t *testing.T) {
	asc := Build(domain.QuerySpec{SortBy: domain.SortDeadlineAsc, Priority: domain.PriorityHigh})
	if asc.Order != (domain.Ordering{Field: domain.FieldDeadline, Direction: domain.Asc}) {
		t.Fatalf("unexpected ascending order %+v", asc.Order)
	}
	desc := Build(domain.QuerySpec{SortBy: domain.SortDeadlineDesc})
	if desc.Order != (domain.Ordering{Field: domain.FieldDeadline, Direction: domain.Desc}) {
		t.Fatalf("unexpected descending order %+v", desc.Order)
	}
}

func TestBuildFiltersWithoutSortUseID(t *testing.T) {
	plan := Build(domain.QuerySpec{
		CategoryID: "c1",
		Priority:   domain.PriorityLow,
		Status:     domain.StatusCompleted,
	})

	if plan.Order != (domain.Ordering{Field: domain.FieldID, Direction: domain.Asc}) {
		t.Fatalf("expected id ordering, got %+v", plan.Order)
	}
	fields := []domain.Field{domain.FieldPriority, domain.FieldStatus, domain.FieldCategoryID}
	if len(plan.Predicates) != len(fields) {
		t.Fatalf("expected %d predicates, got %+v", len(fields), plan.Predicates)
	}
	for i, f := range fields {
		if plan.Predicates[i].Field != f || plan.Predicates[i].Op != domain.OpEqual {
			t.Fatalf("predicate %d: expected equality on %s, got %+v", i, f, plan.Predicates[i])
		}
	}
}

func TestBuildBlankSearchIsIgnored(t *testing.T) {
	plan := Build(domain.QuerySpec{SearchTitle: "   ", SortBy: domain.SortDeadlineAsc})
	if plan.Order.Field != domain.FieldDeadline {
		t.Fatalf("expected blank search to fall through to sort, got %+v", plan.Order)
	}
}

func TestBuildSearchMatchesCaseInsensitively(t *testing.T) {
	task := domain.Task{ID: "1", Title: "Buy Milk"}
	task.TitleLowercase = domain.NormalizeTitle(task.Title)

	for _, term := range []string{"buy", "BUY", "Buy M"} {
		if !Build(domain.QuerySpec{SearchTitle: term}).Match(task) {
			t.Fatalf("expected %q to match %q", term, task.Title)
		}
	}
	if Build(domain.QuerySpec{SearchTitle: "milk"}).Match(task) {
		t.Fatalf("search must be prefix only")
	}
}
