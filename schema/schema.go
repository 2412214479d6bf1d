// Package schema loads GraphQL type definitions from disk and validates
// them into a parsed schema. Executable-schema construction belongs to
// the generated resolver code of the consuming application.
package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

// Load reads type definitions from path. A directory is read as the
// concatenation of its .graphql files in name order.
func Load(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat schema path: %w", err)
	}
	if !info.IsDir() {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read schema file: %w", err)
		}
		return string(data), nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return "", fmt.Errorf("failed to read schema directory: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".graphql") {
			names = append(names, entry.Name())
		}
	}
	if len(names) == 0 {
		return "", fmt.Errorf("no .graphql files in %s", path)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(path, name))
		if err != nil {
			return "", fmt.Errorf("failed to read schema file %s: %w", name, err)
		}
		b.Write(data)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// Parse validates type definitions into a schema.
func Parse(typeDefs string) (*ast.Schema, error) {
	parsed, err := gqlparser.LoadSchema(&ast.Source{Name: "schema.graphql", Input: typeDefs})
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}
	return parsed, nil
}

// MustLoad loads and validates the schema at path, panicking on
// failure. Intended for wiring at startup.
func MustLoad(path string) *ast.Schema {
	typeDefs, err := Load(path)
	if err != nil {
		panic(err)
	}
	parsed, err := Parse(typeDefs)
	if err != nil {
		panic(err)
	}
	return parsed
}
