package structured

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Generate derives a Schema from a Go type using reflection, so callers can
// describe the expected response shape with an ordinary struct instead of
// hand-building schema nodes.
//
// Field names come from the "json" tag when present. The "schema" tag
// carries constraints:
//
//	required            mark the field as required
//	minItems=N          minimum array length
//	maxItems=N          maximum array length
//	exactItems=N        exact array length (clears min/max)
func Generate(v any) (*Schema, error) {
	if v == nil {
		return nil, fmt.Errorf("cannot generate schema from nil value")
	}
	g := &generator{visited: make(map[reflect.Type]bool)}
	return g.generate(reflect.TypeOf(v))
}

type generator struct {
	visited map[reflect.Type]bool
}

func (g *generator) generate(t reflect.Type) (*Schema, error) {
	if t == nil {
		return nil, fmt.Errorf("cannot generate schema for nil type")
	}
	if t.Kind() == reflect.Ptr {
		return g.generate(t.Elem())
	}
	if g.visited[t] {
		// Recursive types bottom out in an unconstrained object node.
		return &Schema{Type: KindObject}, nil
	}

	switch t.Kind() {
	case reflect.String:
		return String(), nil
	case reflect.Bool:
		return Boolean(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Integer(), nil
	case reflect.Float32, reflect.Float64:
		return Number(), nil
	case reflect.Slice, reflect.Array:
		items, err := g.generate(t.Elem())
		if err != nil {
			return nil, fmt.Errorf("failed to generate schema for array element: %w", err)
		}
		return Array(items), nil
	case reflect.Struct:
		return g.generateStruct(t)
	default:
		return nil, fmt.Errorf("unsupported type: %s", t.Kind())
	}
}

func (g *generator) generateStruct(t reflect.Type) (*Schema, error) {
	g.visited[t] = true
	defer delete(g.visited, t)

	schema := Object(nil)
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name := jsonFieldName(field)
		if name == "-" {
			continue
		}

		fieldSchema, err := g.generate(field.Type)
		if err != nil {
			return nil, fmt.Errorf("failed to generate schema for field %s: %w", field.Name, err)
		}

		opts := parseTagOptions(field.Tag.Get("schema"))
		if _, ok := opts["required"]; ok {
			schema.AddRequired(name)
		}
		if v, ok := atoiOption(opts, "minItems"); ok {
			fieldSchema.WithMinItems(v)
		}
		if v, ok := atoiOption(opts, "maxItems"); ok {
			fieldSchema.WithMaxItems(v)
		}
		if v, ok := atoiOption(opts, "exactItems"); ok {
			fieldSchema.WithExactItems(v)
		}
		schema.AddProperty(name, fieldSchema)
	}
	return schema, nil
}

func jsonFieldName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "" {
		return field.Name
	}
	name := strings.Split(tag, ",")[0]
	if name == "" {
		return field.Name
	}
	return name
}

func parseTagOptions(tag string) map[string]string {
	options := make(map[string]string)
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if idx := strings.Index(part, "="); idx > 0 {
			options[part[:idx]] = part[idx+1:]
		} else {
			options[part] = ""
		}
	}
	return options
}

func atoiOption(opts map[string]string, key string) (int, bool) {
	raw, ok := opts[key]
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
