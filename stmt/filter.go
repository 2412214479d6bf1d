package stmt

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/patisson/gqlpg/model"
)

// TracePrefix is the conventional prefix for rendered trace lines.
const TracePrefix = " - "

// Filter wraps a statement and narrows it through chained calls, logging
// each applied clause. Operations whose argument is absent (nil, a nil
// pointer, zero, or empty) are no-ops: the statement and the trace are
// left untouched. Note this makes a limit or comparison value of exactly
// zero indistinguishable from an omitted one; callers relying on the
// skip behaviour should keep that in mind.
type Filter struct {
	stmt  Statement
	base  string
	trace []string
}

// NewFilter wraps s. The statement's first line is captured now so the
// trace always shows the pre-filter form.
func NewFilter(s Statement) *Filter {
	base, _, _ := strings.Cut(s.SQL(), "\n")
	return &Filter{stmt: s, base: base}
}

// Statement returns the fully composed statement. Pure; the filter can
// keep being chained afterwards.
func (f *Filter) Statement() Statement {
	return f.stmt
}

// Entries returns the applied-clause log in application order.
func (f *Filter) Entries() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Trace renders the pre-filter statement's first line followed by one
// line per applied clause, each prefixed with pre.
func (f *Filter) Trace(pre string) string {
	var b strings.Builder
	b.WriteString(f.base)
	b.WriteByte('\n')
	for _, entry := range f.trace {
		b.WriteString(pre)
		b.WriteString(entry)
		b.WriteByte('\n')
	}
	return b.String()
}

// Lte applies "column <= value" iff value is present.
func (f *Filter) Lte(column model.Column, value any) *Filter {
	return f.compare(column, "<=", "<=", value)
}

// Gte applies "column >= value" iff value is present.
func (f *Filter) Gte(column model.Column, value any) *Filter {
	return f.compare(column, ">=", ">=", value)
}

// Lt applies "column < value" iff value is present.
func (f *Filter) Lt(column model.Column, value any) *Filter {
	return f.compare(column, "<", "<", value)
}

// Gt applies "column > value" iff value is present.
func (f *Filter) Gt(column model.Column, value any) *Filter {
	return f.compare(column, ">", ">", value)
}

// Eq applies "column = value" iff value is present.
func (f *Filter) Eq(column model.Column, value any) *Filter {
	return f.compare(column, "=", "==", value)
}

// In applies a set-membership condition iff values is non-empty.
func (f *Filter) In(column model.Column, values []any) *Filter {
	if len(values) == 0 {
		return f
	}
	f.stmt = f.stmt.In(column.SQL, values)
	f.log("%s in %v", column.Name, values)
	return f
}

// NotIn applies a set-exclusion condition iff values is non-empty.
func (f *Filter) NotIn(column model.Column, values []any) *Filter {
	if len(values) == 0 {
		return f
	}
	f.stmt = f.stmt.NotIn(column.SQL, values)
	f.log("%s not in %v", column.Name, values)
	return f
}

// InRelated applies a membership condition across a to-many
// relationship iff values is non-empty: at least one related row whose
// name column is in values. The related table is always matched on its
// name column.
func (f *Filter) InRelated(rel model.Relationship, values []any) *Filter {
	if len(values) == 0 {
		return f
	}
	f.stmt = f.stmt.ExistsRelated(rel, values)
	f.log("%s relationship in %v", rel.Name, values)
	return f
}

// Like applies a pattern-match condition iff pattern is present.
func (f *Filter) Like(column model.Column, pattern any) *Filter {
	if !present(pattern) {
		return f
	}
	v := indirect(pattern)
	f.stmt = f.stmt.Like(column.SQL, v)
	f.log("%s like %v", column.Name, v)
	return f
}

// Where applies an equality condition iff value is present. Same
// semantics as Eq through a separate path, kept for callers that phrase
// their filters as where-clauses.
func (f *Filter) Where(column model.Column, value any) *Filter {
	if !present(value) {
		return f
	}
	v := indirect(value)
	f.stmt = f.stmt.Compare(column.SQL, "=", v)
	f.log("%s where %v", column.Name, v)
	return f
}

// OrderBy applies an ordering iff column is non-nil. Unlike the other
// operations this checks only for nil, not presence.
func (f *Filter) OrderBy(column *model.Column) *Filter {
	if column == nil {
		return f
	}
	f.stmt = f.stmt.OrderBy(column.SQL)
	f.log("order by %s", column.Name)
	return f
}

// Limit caps the row count iff n is non-zero.
func (f *Filter) Limit(n int) *Filter {
	if n == 0 {
		return f
	}
	f.stmt = f.stmt.Limit(n)
	f.log("limit %d", n)
	return f
}

// Offset skips leading rows iff n is non-zero.
func (f *Filter) Offset(n int) *Filter {
	if n == 0 {
		return f
	}
	f.stmt = f.stmt.Offset(n)
	f.log("offset %d", n)
	return f
}

func (f *Filter) compare(column model.Column, op, symbol string, value any) *Filter {
	if !present(value) {
		return f
	}
	v := indirect(value)
	f.stmt = f.stmt.Compare(column.SQL, op, v)
	f.log("%s %s %v", column.Name, symbol, v)
	return f
}

func (f *Filter) log(format string, args ...any) {
	f.trace = append(f.trace, fmt.Sprintf(format, args...))
}

// indirect follows pointers so optional arguments are bound and logged
// by value.
func indirect(v any) any {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	return rv.Interface()
}

// present reports whether a filter argument counts as supplied. Nil,
// nil pointers, zero numbers, false, and empty strings, slices, and
// maps do not; pointers are followed to the value they reference.
func present(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	default:
		return !rv.IsZero()
	}
}
