// Package stmt builds SQL select statements for pgx and provides a
// fluent filter that conditionally narrows them while keeping a
// human-readable trace of every clause applied.
package stmt

import (
	"fmt"
	"strings"

	"github.com/patisson/gqlpg/model"
)

// Statement is an immutable select expression. Every narrowing method
// derives a new value; the receiver is never changed.
type Statement struct {
	table   string
	columns []string
	conds   []string
	args    []any
	orderBy []string
	limit   int
	offset  int
}

// Select builds a statement over the model's table projecting the given
// columns, or every mapped column when none are given.
func Select(m *model.Model, columns ...model.Column) Statement {
	if len(columns) == 0 {
		columns = m.Columns()
	}
	cols := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = c.SQL
	}
	return Statement{table: m.Table, columns: cols}
}

// Compare derives a statement with the condition "column <op> $n" bound
// to value.
func (s Statement) Compare(column, op string, value any) Statement {
	return s.cond(fmt.Sprintf("%s %s $%d", column, op, len(s.args)+1), value)
}

// In derives a statement requiring column to be one of values.
func (s Statement) In(column string, values []any) Statement {
	return s.cond(fmt.Sprintf("%s IN (%s)", column, s.placeholders(len(values))), values...)
}

// NotIn derives a statement excluding rows whose column is in values.
func (s Statement) NotIn(column string, values []any) Statement {
	return s.cond(fmt.Sprintf("%s NOT IN (%s)", column, s.placeholders(len(values))), values...)
}

// ExistsRelated derives a statement requiring at least one related row,
// joined through rel, whose name column is in values.
func (s Statement) ExistsRelated(rel model.Relationship, values []any) Statement {
	cond := fmt.Sprintf(
		"EXISTS (SELECT 1 FROM %s WHERE %s.%s = %s AND %s.name IN (%s))",
		rel.Table, rel.Table, rel.JoinColumn, rel.ParentColumn, rel.Table,
		s.placeholders(len(values)),
	)
	return s.cond(cond, values...)
}

// Like derives a statement with a pattern-match condition on column.
func (s Statement) Like(column string, pattern any) Statement {
	return s.cond(fmt.Sprintf("%s LIKE $%d", column, len(s.args)+1), pattern)
}

// OrderBy derives a statement ordered by the given column, after any
// ordering already present.
func (s Statement) OrderBy(column string) Statement {
	out := s.clone()
	out.orderBy = append(out.orderBy, column)
	return out
}

// Limit derives a statement capped at n rows. Zero means no limit.
func (s Statement) Limit(n int) Statement {
	out := s.clone()
	out.limit = n
	return out
}

// Offset derives a statement skipping the first n rows. Zero means no
// offset.
func (s Statement) Offset(n int) Statement {
	out := s.clone()
	out.offset = n
	return out
}

// SQL renders the statement, one clause per line, with $n placeholders
// matching Args.
func (s Statement) SQL() string {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(s.columns, ", "))
	b.WriteString(" FROM ")
	b.WriteString(s.table)
	if len(s.conds) > 0 {
		b.WriteString("\nWHERE ")
		b.WriteString(strings.Join(s.conds, " AND "))
	}
	if len(s.orderBy) > 0 {
		b.WriteString("\nORDER BY ")
		b.WriteString(strings.Join(s.orderBy, ", "))
	}
	if s.limit > 0 {
		fmt.Fprintf(&b, "\nLIMIT %d", s.limit)
	}
	if s.offset > 0 {
		fmt.Fprintf(&b, "\nOFFSET %d", s.offset)
	}
	return b.String()
}

// Args returns the bind arguments in placeholder order.
func (s Statement) Args() []any {
	out := make([]any, len(s.args))
	copy(out, s.args)
	return out
}

func (s Statement) cond(cond string, args ...any) Statement {
	out := s.clone()
	out.conds = append(out.conds, cond)
	out.args = append(out.args, args...)
	return out
}

func (s Statement) placeholders(n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = fmt.Sprintf("$%d", len(s.args)+i+1)
	}
	return strings.Join(ps, ", ")
}

// clone copies the statement with freshly allocated slices so appends on
// the copy never alias the receiver.
func (s Statement) clone() Statement {
	out := s
	out.conds = append([]string(nil), s.conds...)
	out.args = append([]any(nil), s.args...)
	out.orderBy = append([]string(nil), s.orderBy...)
	out.columns = append([]string(nil), s.columns...)
	return out
}
