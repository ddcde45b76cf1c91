package schema

import (
	"bytes"
	"encoding/json"
	"reflect"
	"testing"
)

func TestNormalizeWrapperOrderInvariance(t *testing.T) {
	cases := []struct {
		name string
		node *Node
	}{
		{"bare", Boolean()},
		{"optional", Optional(Boolean())},
		{"defaulted", Default(Boolean(), true)},
		{"optional_defaulted", Optional(Default(Boolean(), true))},
		{"defaulted_optional", Default(Optional(Boolean()), true)},
		{"interleaved_deep", Optional(Default(Optional(Boolean()), false))},
		{"defaulted_twice", Default(Default(Boolean(), true), false)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			inner, optional := Normalize(tc.node)
			if inner.Kind() != KindBoolean {
				t.Fatalf("innermost kind = %v, want KindBoolean", inner.Kind())
			}
			wantOptional := tc.name != "bare"
			if optional != wantOptional {
				t.Fatalf("optional = %v, want %v", optional, wantOptional)
			}
		})
	}
}

// Guards the historical regression: a defaulted optional boolean must keep its
// boolean type in the descriptor and stay out of the required list. The broken
// behavior was a two-pass unwrap leaving a wrapper behind, which degraded the
// reported type to the generic "string" fallback.
func TestDefaultedOptionalBooleanRegression(t *testing.T) {
	root := Object(
		Field{Name: "allowDuplicate", Node: Default(Optional(Boolean()), false)},
	)
	d := Assemble(root)
	prop, ok := d.Properties["allowDuplicate"]
	if !ok {
		t.Fatal("allowDuplicate missing from properties")
	}
	if prop.Type != "boolean" {
		t.Fatalf("allowDuplicate type = %q, want %q", prop.Type, "boolean")
	}
	if len(d.Required) != 0 {
		t.Fatalf("required = %v, want empty", d.Required)
	}
}

func TestMapTypePrimitivesAndArrays(t *testing.T) {
	cases := []struct {
		name string
		node *Node
		want *Descriptor
	}{
		{"string", String(), &Descriptor{Type: "string"}},
		{"number", Number(), &Descriptor{Type: "number"}},
		{"boolean", Boolean(), &Descriptor{Type: "boolean"}},
		{"array_of_number", Array(Number()), &Descriptor{Type: "array", Items: &Descriptor{Type: "number"}}},
		{"array_of_wrapped", Array(Optional(Default(Boolean(), true))), &Descriptor{Type: "array", Items: &Descriptor{Type: "boolean"}}},
		{"record", Record(String()), &Descriptor{Type: "object"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			inner, _ := Normalize(tc.node)
			got := mapType(inner)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("mapType = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestUnionTypeUnification(t *testing.T) {
	cases := []struct {
		name string
		node *Node
		want string
	}{
		{"all_numbers", Union(Number(), Number()), "number"},
		{"all_numbers_wrapped", Union(Number(), Optional(Number())), "number"},
		{"mixed", Union(String(), Number()), "string"},
		{"mixed_bool", Union(Boolean(), Number()), "string"},
		{"empty", Union(), "string"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			inner, _ := Normalize(tc.node)
			if got := mapType(inner).Type; got != tc.want {
				t.Fatalf("union type = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestAssembleRequiredOrderAndOmission(t *testing.T) {
	root := Object(
		Field{Name: "b", Node: String()},
		Field{Name: "a", Node: String()},
		Field{Name: "c", Node: Optional(Number())},
	)
	d := Assemble(root)
	if want := []string{"b", "a"}; !reflect.DeepEqual(d.Required, want) {
		t.Fatalf("required = %v, want declaration order %v", d.Required, want)
	}

	allOptional := Object(
		Field{Name: "a", Node: Optional(String())},
		Field{Name: "b", Node: Default(Number(), 1)},
	)
	raw, err := json.Marshal(Assemble(allOptional))
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}
	if _, present := decoded["required"]; present {
		t.Fatalf("required key present in %s, want omitted entirely", raw)
	}
}

func TestAssembleNestedObjectsAndArrayItems(t *testing.T) {
	root := Object(
		Field{Name: "note", Node: Object(
			Field{Name: "deckName", Node: String().Describe("Target deck")},
			Field{Name: "fields", Node: Record(String())},
			Field{Name: "tags", Node: Optional(Array(String()))},
		)},
		Field{Name: "attachments", Node: Optional(Array(Object(
			Field{Name: "filename", Node: String()},
			Field{Name: "data", Node: Optional(String())},
		)))},
	)
	d := Assemble(root)

	note := d.Properties["note"]
	if note == nil || note.Type != "object" {
		t.Fatalf("note descriptor = %+v, want object", note)
	}
	if got := note.Properties["deckName"]; got == nil || got.Type != "string" || got.Description != "Target deck" {
		t.Fatalf("deckName descriptor = %+v", got)
	}
	if got := note.Properties["fields"]; got == nil || got.Type != "object" || got.Properties != nil {
		t.Fatalf("fields descriptor = %+v, want bare object for record", got)
	}
	if want := []string{"deckName", "fields"}; !reflect.DeepEqual(note.Required, want) {
		t.Fatalf("note required = %v, want %v", note.Required, want)
	}

	att := d.Properties["attachments"]
	if att == nil || att.Type != "array" || att.Items == nil {
		t.Fatalf("attachments descriptor = %+v", att)
	}
	if att.Items.Type != "object" || att.Items.Properties["filename"] == nil {
		t.Fatalf("attachments items = %+v, want expanded object", att.Items)
	}
	if want := []string{"filename"}; !reflect.DeepEqual(att.Items.Required, want) {
		t.Fatalf("attachments items required = %v, want %v", att.Items.Required, want)
	}
}

func TestAssembleDeterministic(t *testing.T) {
	root := Object(
		Field{Name: "query", Node: String()},
		Field{Name: "limit", Node: Default(Number(), 50)},
		Field{Name: "cards", Node: Array(Number())},
		Field{Name: "options", Node: Optional(Object(
			Field{Name: "allowDuplicate", Node: Default(Optional(Boolean()), false)},
		))},
	)
	first, err := json.Marshal(Assemble(root))
	if err != nil {
		t.Fatal(err)
	}
	second, err := json.Marshal(Assemble(root))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("descriptors differ:\n%s\n%s", first, second)
	}
}

func TestAssembleNonObjectRootPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for non-object root")
		}
	}()
	Assemble(Array(String()))
}
