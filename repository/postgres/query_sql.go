package postgres

import (
	"fmt"
	"strings"

	"github.com/fastygo/tasksync/domain"
)

const taskColumns = `id, title, title_lowercase, description, status, priority, category_id, deadline, image_url, created_at, updated_at`

var fieldColumns = map[domain.Field]string{
	domain.FieldID:             "id",
	domain.FieldPriority:       "priority",
	domain.FieldStatus:         "status",
	domain.FieldCategoryID:     "category_id",
	domain.FieldTitleLowercase: "title_lowercase",
	domain.FieldDeadline:       "deadline",
	domain.FieldCreatedAt:      "created_at",
}

var sqlOperators = map[domain.Operator]string{
	domain.OpEqual:        "=",
	domain.OpGreaterEqual: ">=",
	domain.OpLessEqual:    "<=",
}

// buildFindQuery renders a plan as a keyset-paginated SELECT.
// The cursor is resumed with a row comparison on (order column, id).
func buildFindQuery(plan domain.Plan, after *domain.Cursor, limit int) (string, []interface{}, error) {
	var (
		sb   strings.Builder
		args []interface{}
	)
	bind := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	sb.WriteString("SELECT ")
	sb.WriteString(taskColumns)
	sb.WriteString(" FROM tasks WHERE 1=1")

	for _, pred := range plan.Predicates {
		col, ok := fieldColumns[pred.Field]
		if !ok {
			return "", nil, fmt.Errorf("unsupported filter field %q", pred.Field)
		}
		op, ok := sqlOperators[pred.Op]
		if !ok {
			return "", nil, fmt.Errorf("unsupported operator %q", pred.Op)
		}
		fmt.Fprintf(&sb, " AND %s %s %s", col, op, bind(pred.Value))
	}

	orderCol, ok := fieldColumns[plan.Order.Field]
	if !ok {
		return "", nil, fmt.Errorf("unsupported order field %q", plan.Order.Field)
	}
	dir, cmp := "ASC", ">"
	if plan.Order.Direction == domain.Desc {
		dir, cmp = "DESC", "<"
	}

	if after != nil {
		if orderCol == "id" {
			fmt.Fprintf(&sb, " AND id %s %s", cmp, bind(after.LastID))
		} else {
			fmt.Fprintf(&sb, " AND (%s, id) %s (%s, %s)", orderCol, cmp, bind(after.LastValue.Any()), bind(after.LastID))
		}
	}

	if orderCol == "id" {
		fmt.Fprintf(&sb, " ORDER BY id %s", dir)
	} else {
		fmt.Fprintf(&sb, " ORDER BY %s %s, id %s", orderCol, dir, dir)
	}
	fmt.Fprintf(&sb, " LIMIT %s", bind(clampLimit(limit)))

	return sb.String(), args, nil
}
