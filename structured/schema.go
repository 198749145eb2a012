// Package structured describes expected JSON shapes and coerces loosely
// structured model output into values that conform to them.
package structured

import (
	"encoding/json"
	"fmt"
)

// Kind enumerates the supported schema node types.
type Kind string

const (
	KindObject  Kind = "object"
	KindArray   Kind = "array"
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindInteger Kind = "integer"
	KindBoolean Kind = "boolean"
)

// Schema is a declarative description of an expected JSON value. It doubles
// as the output-format hint sent to the model and as the validation target
// for its responses.
//
// A schema node's kind is fixed at construction; the With* helpers adjust
// constraints and return the node for chaining.
type Schema struct {
	Type       Kind               `json:"type"`
	Properties map[string]*Schema `json:"properties,omitempty"`
	Required   []string           `json:"required,omitempty"`
	Items      *Schema            `json:"items,omitempty"`
	MinItems   *int               `json:"minItems,omitempty"`
	MaxItems   *int               `json:"maxItems,omitempty"`
	ExactItems *int               `json:"exactItems,omitempty"`
}

// Object creates an object schema with the given properties. Names listed in
// required must be present and non-null in conforming data.
func Object(properties map[string]*Schema, required ...string) *Schema {
	if properties == nil {
		properties = make(map[string]*Schema)
	}
	return &Schema{
		Type:       KindObject,
		Properties: properties,
		Required:   required,
	}
}

// Array creates an array schema whose elements conform to items.
func Array(items *Schema) *Schema {
	return &Schema{Type: KindArray, Items: items}
}

// String creates a string schema. Conforming values are non-blank strings.
func String() *Schema { return &Schema{Type: KindString} }

// Number creates a number schema.
func Number() *Schema { return &Schema{Type: KindNumber} }

// Integer creates an integer schema.
func Integer() *Schema { return &Schema{Type: KindInteger} }

// Boolean creates a boolean schema.
func Boolean() *Schema { return &Schema{Type: KindBoolean} }

// AddProperty adds a property to an object schema and returns the schema for
// chaining.
func (s *Schema) AddProperty(name string, prop *Schema) *Schema {
	if s.Properties == nil {
		s.Properties = make(map[string]*Schema)
	}
	s.Properties[name] = prop
	return s
}

// AddRequired appends required property names to an object schema.
func (s *Schema) AddRequired(names ...string) *Schema {
	s.Required = append(s.Required, names...)
	return s
}

// WithMinItems sets the minimum element count for an array schema. It has no
// effect while an exact count is set.
func (s *Schema) WithMinItems(min int) *Schema {
	if s.ExactItems != nil {
		return s
	}
	s.MinItems = &min
	return s
}

// WithMaxItems sets the maximum element count for an array schema. It has no
// effect while an exact count is set.
func (s *Schema) WithMaxItems(max int) *Schema {
	if s.ExactItems != nil {
		return s
	}
	s.MaxItems = &max
	return s
}

// WithExactItems pins an array schema to exactly n elements. Any previously
// set min/max constraints are cleared; callers must not rely on observing
// them afterwards.
func (s *Schema) WithExactItems(n int) *Schema {
	s.ExactItems = &n
	s.MinItems = nil
	s.MaxItems = nil
	return s
}

// IsRequired reports whether name is listed as required on an object schema.
func (s *Schema) IsRequired(name string) bool {
	for _, req := range s.Required {
		if req == name {
			return true
		}
	}
	return false
}

// Property returns the child schema for name, or nil.
func (s *Schema) Property(name string) *Schema {
	if s.Properties == nil {
		return nil
	}
	return s.Properties[name]
}

// Clone creates a deep copy of the schema.
func (s *Schema) Clone() *Schema {
	if s == nil {
		return nil
	}
	clone := &Schema{Type: s.Type}
	if s.Properties != nil {
		clone.Properties = make(map[string]*Schema, len(s.Properties))
		for k, v := range s.Properties {
			clone.Properties[k] = v.Clone()
		}
	}
	if s.Required != nil {
		clone.Required = make([]string, len(s.Required))
		copy(clone.Required, s.Required)
	}
	clone.Items = s.Items.Clone()
	if s.MinItems != nil {
		v := *s.MinItems
		clone.MinItems = &v
	}
	if s.MaxItems != nil {
		v := *s.MaxItems
		clone.MaxItems = &v
	}
	if s.ExactItems != nil {
		v := *s.ExactItems
		clone.ExactItems = &v
	}
	return clone
}

// ToJSON serializes the schema to its wire form. The same bytes are sent to
// the chat endpoint as the "format" field.
func (s *Schema) ToJSON() ([]byte, error) {
	return json.Marshal(s)
}

// FromJSON deserializes a schema from its wire form.
func FromJSON(data []byte) (*Schema, error) {
	var schema Schema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema: %w", err)
	}
	return &schema, nil
}
