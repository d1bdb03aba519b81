package jsonschema

import (
	"encoding/json"
	"testing"
)

func TestEmptyObject(t *testing.T) {
	schema := EmptyObject()
	if schema.Type != "object" {
		t.Errorf("expected type object, got %q", schema.Type)
	}
	if schema.Properties == nil || schema.Required == nil {
		t.Error("expected non-nil properties and required")
	}
}

func TestNormalizeObject(t *testing.T) {
	t.Run("nil becomes empty object", func(t *testing.T) {
		schema := NormalizeObject(nil)
		if schema.Type != "object" {
			t.Errorf("expected object, got %q", schema.Type)
		}
	})

	t.Run("degenerate schema becomes empty object", func(t *testing.T) {
		schema := NormalizeObject(&Schema{Description: "nothing else"})
		if schema.Type != "object" || len(schema.Properties) != 0 {
			t.Errorf("expected empty object, got %+v", schema)
		}
	})

	t.Run("real schema keeps its shape", func(t *testing.T) {
		input := &Schema{
			Type: "object",
			Properties: map[string]*Schema{
				"city": {Type: "string", Description: "City name"},
			},
			Required: []string{"city"},
		}
		schema := NormalizeObject(input)
		if len(schema.Properties) != 1 || schema.Properties["city"].Type != "string" {
			t.Errorf("expected properties preserved, got %+v", schema.Properties)
		}
		if len(schema.Required) != 1 {
			t.Errorf("expected required preserved, got %v", schema.Required)
		}
	})

	t.Run("does not mutate the input", func(t *testing.T) {
		input := &Schema{Type: "object", Properties: map[string]*Schema{"a": {Type: "string"}}}
		_ = NormalizeObject(input)
		if input.Required != nil {
			t.Error("normalization must copy, not mutate")
		}
	})
}

func TestIsEmptyObject(t *testing.T) {
	if !IsEmptyObject(EmptyObject()) {
		t.Error("EmptyObject should be recognized as empty")
	}
	if !IsEmptyObject(nil) {
		t.Error("nil schema should be considered empty")
	}
	if IsEmptyObject(&Schema{Type: "object", Properties: map[string]*Schema{"a": {Type: "string"}}}) {
		t.Error("schema with properties is not empty")
	}
}

func TestSchemaMarshalRoundTrip(t *testing.T) {
	input := &Schema{
		Type: "object",
		Properties: map[string]*Schema{
			"items": {Type: "array", Items: &Schema{Type: "number"}},
			"kind":  {Type: "string", Enum: []any{"a", "b"}},
		},
		Required: []string{"items"},
	}

	encoded, err := json.Marshal(input)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded Schema
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded.Properties["items"].Items.Type != "number" {
		t.Errorf("nested schema lost in round trip: %+v", decoded)
	}
	if len(decoded.Properties["kind"].Enum) != 2 {
		t.Errorf("enum lost in round trip: %+v", decoded.Properties["kind"])
	}
}
