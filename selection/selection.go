// Package selection flattens a parsed GraphQL selection tree into the
// set of mapped columns a query actually asks for, so resolvers can
// project only what gets serialized.
package selection

import (
	"context"
	"errors"
	"fmt"

	"github.com/99designs/gqlgen/graphql"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/patisson/gqlpg/model"
)

// ErrUnsupported reports a selection node of a kind the walker does not
// recognize. This is a schema or engine mismatch, not a user error.
var ErrUnsupported = errors.New("unsupported selection kind")

// Columns resolves the columns of m requested beneath the field
// currently being resolved. Fragment definitions come from the
// operation's parsed document. A field with no sub-selection yields no
// columns.
func Columns(ctx context.Context, m *model.Model) ([]model.Column, error) {
	fc := graphql.GetFieldContext(ctx)
	oc := graphql.GetOperationContext(ctx)
	return ColumnsOf(fc.Field.Field, oc.Doc.Fragments, m)
}

// ColumnsOf resolves the columns of m requested beneath field, with the
// fragment definitions supplied explicitly.
func ColumnsOf(field *ast.Field, fragments ast.FragmentDefinitionList, m *model.Model) ([]model.Column, error) {
	names, err := Fields(field.SelectionSet, fragments)
	if err != nil {
		return nil, err
	}
	columns := make([]model.Column, len(names))
	for i, name := range names {
		col, ok := m.Column(name)
		if !ok {
			return nil, fmt.Errorf("field %q has no mapped column on %s", name, m)
		}
		columns[i] = col
	}
	return columns, nil
}

// Fields flattens a selection set into the distinct field names it
// requests, in first-seen order. Fields with sub-selections contribute
// their own name and everything beneath; inline fragments and fragment
// spreads are transparent. A field reachable through several fragment
// paths is reported once.
func Fields(sels ast.SelectionSet, fragments ast.FragmentDefinitionList) ([]string, error) {
	seen := make(map[string]struct{})
	var names []string
	if err := walk(sels, fragments, seen, &names); err != nil {
		return nil, err
	}
	return names, nil
}

func walk(sels ast.SelectionSet, fragments ast.FragmentDefinitionList, seen map[string]struct{}, names *[]string) error {
	for _, sel := range sels {
		switch node := sel.(type) {
		case *ast.Field:
			if _, ok := seen[node.Name]; !ok {
				seen[node.Name] = struct{}{}
				*names = append(*names, node.Name)
			}
			if len(node.SelectionSet) > 0 {
				if err := walk(node.SelectionSet, fragments, seen, names); err != nil {
					return err
				}
			}
		case *ast.InlineFragment:
			if err := walk(node.SelectionSet, fragments, seen, names); err != nil {
				return err
			}
		case *ast.FragmentSpread:
			// The engine validates fragments before resolvers run, so
			// the definition is expected to exist.
			fragment := fragments.ForName(node.Name)
			if fragment == nil {
				return fmt.Errorf("fragment %q not defined", node.Name)
			}
			if err := walk(fragment.SelectionSet, fragments, seen, names); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: %T", ErrUnsupported, sel)
		}
	}
	return nil
}
