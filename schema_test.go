package vellum

import (
	"fmt"
	"strings"
	"testing"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
)

func testSchema() *Schema {
	return NewSchema([]Field{
		{Name: "id", Type: TypeInt64},
		{Name: "name", Type: TypeUtf8, Nullable: true},
		{Name: "score", Type: TypeFloat64, Nullable: true},
	}, nil)
}

func TestSchemaProjection(t *testing.T) {
	s := testSchema()

	got, err := s.Projection([]string{"score", "id"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != 2 || got[1] != 0 {
		t.Errorf("Projection() = %v, want [2 0]", got)
	}

	if _, err := s.Projection([]string{"missing"}); err == nil {
		t.Error("projecting an unknown column must fail")
	}

	// nil means "no projection", an empty non-nil slice means "no columns";
	// the two must stay distinguishable.
	if p, _ := s.Projection(nil); p != nil {
		t.Errorf("Projection(nil) = %v, want nil", p)
	}
	p, err := s.Projection([]string{})
	if err != nil {
		t.Fatal(err)
	}
	if p == nil || len(p) != 0 {
		t.Errorf("Projection(empty) = %v, want empty non-nil", p)
	}
}

func TestSchemaSelect(t *testing.T) {
	s := testSchema()

	sel := s.Select([]int{2, 0})
	if len(sel.Fields) != 2 || sel.Fields[0].Name != "score" || sel.Fields[1].Name != "id" {
		t.Errorf("Select() fields = %+v", sel.Fields)
	}

	if s.Select(nil) != s {
		t.Error("selecting with no projection must return the schema unchanged")
	}
}

// schemaDiff renders the difference between two schemas as a unified diff of
// their pretty-printed forms.
func schemaDiff(a, b *Schema) string {
	edits := myers.ComputeEdits(span.URIFromPath("schema"), a.String(), b.String())
	return fmt.Sprint(gotextdiff.ToUnified("want", "got", a.String(), edits))
}

func TestSchemaStringDiff(t *testing.T) {
	a := testSchema()
	b := NewSchema([]Field{
		{Name: "id", Type: TypeInt64},
		{Name: "name", Type: TypeUtf8, Nullable: true},
		{Name: "score", Type: TypeFloat32, Nullable: true},
	}, nil)

	if diff := schemaDiff(a, a); diff != "" {
		t.Errorf("identical schemas produced a diff:\n%s", diff)
	}

	diff := schemaDiff(a, b)
	if diff == "" {
		t.Fatal("different schemas produced no diff")
	}
	if !strings.Contains(diff, "-  score: float64 nullable") || !strings.Contains(diff, "+  score: float32 nullable") {
		t.Errorf("diff does not single out the changed field:\n%s", diff)
	}
}

func TestSchemaEqual(t *testing.T) {
	if !testSchema().Equal(testSchema()) {
		t.Error("equal schemas reported unequal")
	}

	reordered := NewSchema([]Field{
		{Name: "name", Type: TypeUtf8, Nullable: true},
		{Name: "id", Type: TypeInt64},
		{Name: "score", Type: TypeFloat64, Nullable: true},
	}, nil)
	if testSchema().Equal(reordered) {
		t.Error("field order must matter for schema equality")
	}
}
