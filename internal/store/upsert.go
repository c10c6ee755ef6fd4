package store

import (
	"strings"

	"github.com/lib/pq"
)

// upsertSpec describes one set-based insert. Columns listed in exprs carry a
// backend expression (containing its own "?" placeholders) instead of a
// plain placeholder; callers supply the flattened args in column order with
// matching arity.
type upsertSpec struct {
	table       string
	conflictKey string
	columns     []string
	exprs       map[string]string
	// noUpdate columns are written on insert but left alone on conflict
	// (created_at keeps its first-import stamp).
	noUpdate []string
}

// buildUpsert assembles one multi-row INSERT ... ON CONFLICT DO UPDATE
// statement. Placeholder assembly mirrors how the serving queries build
// their predicates: one statement, values bound positionally.
func buildUpsert(spec upsertSpec, rows int) string {
	var group strings.Builder
	group.WriteString("(")
	for i, col := range spec.columns {
		if i > 0 {
			group.WriteString(", ")
		}
		if expr, ok := spec.exprs[col]; ok {
			group.WriteString(expr)
		} else {
			group.WriteString("?")
		}
	}
	group.WriteString(")")

	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(pq.QuoteIdentifier(spec.table))
	sb.WriteString(" (")
	sb.WriteString(strings.Join(spec.columns, ", "))
	sb.WriteString(") VALUES ")
	for i := 0; i < rows; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(group.String())
	}

	sb.WriteString(" ON CONFLICT (")
	sb.WriteString(spec.conflictKey)
	sb.WriteString(") DO UPDATE SET ")
	skip := map[string]bool{spec.conflictKey: true}
	for _, col := range spec.noUpdate {
		skip[col] = true
	}
	first := true
	for _, col := range spec.columns {
		if skip[col] {
			continue
		}
		if !first {
			sb.WriteString(", ")
		}
		first = false
		sb.WriteString(col)
		sb.WriteString(" = excluded.")
		sb.WriteString(col)
	}
	return sb.String()
}
