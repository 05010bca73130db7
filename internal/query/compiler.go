package query

import (
	"fmt"
	"strings"

	"github.com/campusflow/compass-backend/internal/apperrors"
	"github.com/campusflow/compass-backend/internal/model"
)

// Compiled is the injection-proof output of the compiler: a SQL template
// whose text depends only on the AST's shape, plus the bound parameters.
// No literal from the request ever appears in SQL.
type Compiled struct {
	SQL  string
	Args []interface{}
}

// Compile validates a structured query description against the whitelist
// and renders it. Any reference outside the whitelist — table, column or
// operator — or a limit above the ceiling fails with a ValidationError;
// compilation never silently degrades and never returns partial SQL.
func Compile(req model.QueryRequest) (Compiled, error) {
	table, ok := resolveTable(strings.ToLower(strings.TrimSpace(req.From)))
	if !ok {
		return Compiled{}, apperrors.NewValidationError("from", "table %q not whitelisted", req.From)
	}
	columns := allowedColumns[table]

	if len(req.Select) == 0 {
		return Compiled{}, apperrors.NewValidationError("select", "at least one column required")
	}
	selectCols := make([]string, 0, len(req.Select))
	for _, raw := range req.Select {
		col, err := resolveColumn("select", table, columns, raw)
		if err != nil {
			return Compiled{}, err
		}
		selectCols = append(selectCols, col)
	}

	limit := req.Limit
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit < 0 || limit > LimitCeiling {
		return Compiled{}, apperrors.NewValidationError("limit", "limit %d exceeds ceiling %d", req.Limit, LimitCeiling)
	}

	var (
		sb   strings.Builder
		args []interface{}
	)
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(selectCols, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(table)

	for i, pred := range req.Where {
		col, err := resolveColumn("where", table, columns, pred.Left)
		if err != nil {
			return Compiled{}, err
		}
		frag, arg, err := renderPredicate(col, Op(strings.ToUpper(strings.TrimSpace(pred.Op))), pred.Right, len(args)+1)
		if err != nil {
			return Compiled{}, err
		}
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		sb.WriteString(frag)
		args = append(args, arg)
	}

	sb.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)+1))
	args = append(args, limit)

	return Compiled{SQL: sb.String(), Args: args}, nil
}

// resolveColumn accepts "column" or "table.column" and checks it against
// the whitelist for the resolved table. The clause parameter names the
// originating clause so validation errors point at the right field.
func resolveColumn(clause, table string, columns map[string]bool, raw string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	if dot := strings.IndexByte(name, '.'); dot >= 0 {
		qualifier := name[:dot]
		resolved, ok := resolveTable(qualifier)
		if !ok || resolved != table {
			return "", apperrors.NewValidationError(clause, "column %q does not belong to table %q", raw, table)
		}
		name = name[dot+1:]
	}
	if !columns[name] {
		return "", apperrors.NewValidationError(clause, "column %q not whitelisted for table %q", raw, table)
	}
	return name, nil
}

// renderPredicate emits one where fragment. The operator switch is
// exhaustive over the closed Op set: an unknown operator is a validation
// error, never passed through. IN renders as "= ANY($n)" with one slice
// parameter so the template is byte-identical regardless of list length
// or content.
func renderPredicate(col string, op Op, right interface{}, argPos int) (string, interface{}, error) {
	if !allowedOps[op] {
		return "", nil, apperrors.NewValidationError("where", "operator %q not allowed", op)
	}

	switch op {
	case OpEq, OpNeq, OpLt, OpLte, OpGt, OpGte:
		arg, err := scalarValue(col, right)
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("%s %s $%d", col, op, argPos), arg, nil

	case OpLike:
		s, ok := right.(string)
		if !ok {
			return "", nil, apperrors.NewValidationError("where", "LIKE on %q requires a string value", col)
		}
		return fmt.Sprintf("%s LIKE $%d", col, argPos), s, nil

	case OpIn:
		list, ok := right.([]interface{})
		if !ok || len(list) == 0 {
			return "", nil, apperrors.NewValidationError("where", "IN on %q requires a non-empty list", col)
		}
		for _, v := range list {
			if _, err := scalarValue(col, v); err != nil {
				return "", nil, err
			}
		}
		return fmt.Sprintf("%s = ANY($%d)", col, argPos), list, nil

	default:
		return "", nil, apperrors.NewValidationError("where", "operator %q not allowed", op)
	}
}

// scalarValue admits only JSON scalar literals as bound parameters.
func scalarValue(col string, v interface{}) (interface{}, error) {
	switch v.(type) {
	case string, float64, int, int64, bool:
		return v, nil
	default:
		return nil, apperrors.NewValidationError("where", "unsupported literal type for column %q", col)
	}
}
