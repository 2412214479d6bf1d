package stmt

import (
	"reflect"
	"strings"
	"testing"

	"github.com/patisson/gqlpg/model"
)

func testModel() *model.Model {
	return model.New("users",
		[]model.Column{
			model.Col("users", "id"),
			model.Col("users", "name"),
			model.Col("users", "age"),
		},
		model.Relationship{
			Name:         "roles",
			Table:        "roles",
			JoinColumn:   "user_id",
			ParentColumn: "users.id",
		},
	)
}

func TestSelectRendersProjection(t *testing.T) {
	s := Select(testModel())
	want := "SELECT users.id, users.name, users.age FROM users"
	if got := s.SQL(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if args := s.Args(); len(args) != 0 {
		t.Fatalf("expected no args, got %v", args)
	}
}

func TestSelectSubsetOfColumns(t *testing.T) {
	m := testModel()
	id, _ := m.Column("id")
	s := Select(m, id)
	if got := s.SQL(); got != "SELECT users.id FROM users" {
		t.Fatalf("unexpected sql %q", got)
	}
}

func TestCompareAppendsPlaceholderAndArg(t *testing.T) {
	s := Select(testModel()).Compare("users.age", ">=", 18)
	sql := s.SQL()
	if !strings.Contains(sql, "WHERE users.age >= $1") {
		t.Fatalf("expected where clause, got %q", sql)
	}
	if args := s.Args(); !reflect.DeepEqual(args, []any{18}) {
		t.Fatalf("unexpected args %v", args)
	}
}

func TestPlaceholderNumberingAcrossConditions(t *testing.T) {
	s := Select(testModel()).
		Compare("users.age", ">=", 18).
		In("users.name", []any{"a", "b"})
	sql := s.SQL()
	if !strings.Contains(sql, "users.age >= $1 AND users.name IN ($2, $3)") {
		t.Fatalf("unexpected where clause in %q", sql)
	}
	if args := s.Args(); !reflect.DeepEqual(args, []any{18, "a", "b"}) {
		t.Fatalf("unexpected args %v", args)
	}
}

func TestNotInRendersExclusion(t *testing.T) {
	s := Select(testModel()).NotIn("users.age", []any{1, 2})
	if !strings.Contains(s.SQL(), "users.age NOT IN ($1, $2)") {
		t.Fatalf("unexpected sql %q", s.SQL())
	}
}

func TestExistsRelatedSubquery(t *testing.T) {
	m := testModel()
	rel, _ := m.Relationship("roles")
	s := Select(m).ExistsRelated(rel, []any{"admin"})
	want := "EXISTS (SELECT 1 FROM roles WHERE roles.user_id = users.id AND roles.name IN ($1))"
	if !strings.Contains(s.SQL(), want) {
		t.Fatalf("expected %q in %q", want, s.SQL())
	}
}

func TestOrderLimitOffsetClauses(t *testing.T) {
	s := Select(testModel()).OrderBy("users.name").Limit(10).Offset(5)
	sql := s.SQL()
	for _, clause := range []string{"ORDER BY users.name", "LIMIT 10", "OFFSET 5"} {
		if !strings.Contains(sql, clause) {
			t.Errorf("expected %q in %q", clause, sql)
		}
	}
}

func TestDerivationNeverMutatesReceiver(t *testing.T) {
	base := Select(testModel())
	before := base.SQL()

	narrowed := base.Compare("users.age", "<", 30).Limit(1)
	if base.SQL() != before {
		t.Fatalf("base statement changed: %q", base.SQL())
	}
	if narrowed.SQL() == before {
		t.Fatalf("derived statement did not change")
	}

	// Two siblings derived from the same parent must not share backing
	// arrays.
	a := base.Compare("users.age", "<", 30)
	b := base.Compare("users.name", "=", "x")
	if strings.Contains(a.SQL(), "users.name") {
		t.Fatalf("sibling derivation leaked into a: %q", a.SQL())
	}
	if strings.Contains(b.SQL(), "users.age <") {
		t.Fatalf("sibling derivation leaked into b: %q", b.SQL())
	}
}
