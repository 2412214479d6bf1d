// Package model describes application data models and their
// storage-backed attributes, the metadata both the statement builder and
// the selection extractor resolve against.
package model

import "fmt"

// Column is a mapped attribute: the name it carries in the GraphQL
// schema and the qualified SQL column it reads from.
type Column struct {
	Name string
	SQL  string
}

// Relationship is a to-many association to another table. Membership
// filters against a relationship match on the related table's "name"
// column.
type Relationship struct {
	Name         string
	Table        string
	JoinColumn   string // column on the related table referencing the parent
	ParentColumn string // qualified parent column the join closes over
}

// Model is a mapped entity description: a table plus its columns and
// relationships, with lookups by attribute name.
type Model struct {
	Table string

	columns    []Column
	columnsMap map[string]Column
	relsMap    map[string]Relationship
}

// New builds a model description for table with the given columns.
func New(table string, columns []Column, relationships ...Relationship) *Model {
	m := &Model{
		Table:      table,
		columns:    columns,
		columnsMap: make(map[string]Column, len(columns)),
		relsMap:    make(map[string]Relationship, len(relationships)),
	}
	for _, c := range columns {
		m.columnsMap[c.Name] = c
	}
	for _, r := range relationships {
		m.relsMap[r.Name] = r
	}
	return m
}

// Col is shorthand for a column whose SQL reference is table.name.
func Col(table, name string) Column {
	return Column{Name: name, SQL: table + "." + name}
}

// Column returns the mapped column for an attribute name.
func (m *Model) Column(name string) (Column, bool) {
	c, ok := m.columnsMap[name]
	return c, ok
}

// Relationship returns the mapped relationship for an attribute name.
func (m *Model) Relationship(name string) (Relationship, bool) {
	r, ok := m.relsMap[name]
	return r, ok
}

// Columns returns the model's columns in declaration order.
func (m *Model) Columns() []Column {
	out := make([]Column, len(m.columns))
	copy(out, m.columns)
	return out
}

func (m *Model) String() string {
	return fmt.Sprintf("model(%s)", m.Table)
}
