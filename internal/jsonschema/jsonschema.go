package jsonschema

// Schema represents the structure of JSON Schema used for defining tool
// parameters and structured response formats. It follows the JSON Schema
// standard, supporting various types, properties, and validation rules.
type Schema struct {
	// Type specifies the data type (e.g., "object", "array", "string", "number")
	Type        string   `json:"type,omitempty"`
	Description string   `json:"description,omitempty"`
	Required    []string `json:"required,omitempty"`
	// Properties of the object, each with its own schema
	Properties map[string]*Schema `json:"properties,omitempty"`
	// For array types, defines the schema of items in the array
	Items *Schema `json:"items,omitempty"`
	// AdditionalProperties controls whether properties not defined in Properties are allowed
	AdditionalProperties any `json:"additionalProperties,omitempty"`
	// Default value for the parameter
	Default any `json:"default,omitempty"`
	// Enum contains the list of allowed values for the parameter
	Enum []any `json:"enum,omitempty"`
	// Ref is used for JSON Schema references to avoid infinite recursion
	Ref string `json:"$ref,omitempty"`
	// Defs contains reusable schema definitions
	Defs map[string]*Schema `json:"$defs,omitempty"`
}

// EmptyObject returns the canonical empty-object schema. Wire services
// reject tools whose parameter schema is null or missing, so parameterless
// tools are normalized to this shape.
func EmptyObject() *Schema {
	return &Schema{
		Type:       "object",
		Properties: map[string]*Schema{},
		Required:   []string{},
	}
}

// NormalizeObject returns schema unchanged when it already describes a
// non-empty object, and the canonical empty-object schema when schema is nil
// or degenerate (no type and no properties).
func NormalizeObject(schema *Schema) *Schema {
	if schema == nil {
		return EmptyObject()
	}
	if schema.Type == "" && len(schema.Properties) == 0 && schema.Ref == "" {
		return EmptyObject()
	}
	normalized := *schema
	if normalized.Type == "" {
		normalized.Type = "object"
	}
	if normalized.Properties == nil {
		normalized.Properties = map[string]*Schema{}
	}
	if normalized.Required == nil {
		normalized.Required = []string{}
	}
	return &normalized
}

// IsEmptyObject reports whether schema describes an object with no declared
// properties.
func IsEmptyObject(schema *Schema) bool {
	if schema == nil {
		return true
	}
	return (schema.Type == "" || schema.Type == "object") &&
		len(schema.Properties) == 0 && schema.Ref == ""
}
