package repository

import (
	"fmt"
	"strings"
)

// sqlBuilder accumulates a statement and its positional arguments.
type sqlBuilder struct {
	strings.Builder
	args []any
}

// arg registers v and returns its $n placeholder.
func (b *sqlBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

// page appends ordering and an optional LIMIT/OFFSET window. A limit of zero
// or less returns every row.
func (b *sqlBuilder) page(orderBy string, limit, offset int) {
	b.WriteString(" ORDER BY " + orderBy)
	if limit > 0 {
		b.WriteString(" LIMIT " + b.arg(limit))
		b.WriteString(" OFFSET " + b.arg(offset))
	}
}
