package structured

import "strings"

// Canonical placeholders used when neither the data nor the caller-supplied
// defaults can produce a value of the expected kind.
const placeholderString = "Default value"

// ApplyDefaults repairs a possibly partial data tree so that it conforms to
// schema, preferring already-present valid values over anything in defaults.
//
// defaults is a caller-owned, partially specified tree mirroring the schema
// shape: object keys may cover a subset of properties, and array defaults may
// be a positional sequence, a mapping used as a per-item template, or a
// single value broadcast to every synthesized slot. It is never mutated.
//
// For array defaults given as a sequence, non-null entries are positional;
// when the sequence is shorter than the target length, the last non-null
// entry repeats for the remaining slots. DefaultForSchema follows the same
// rule so the two paths cannot disagree.
func ApplyDefaults(data any, schema *Schema, defaults any) any {
	if schema == nil {
		return data
	}
	switch schema.Type {
	case KindObject:
		return applyObjectDefaults(data, schema, defaults)
	case KindArray:
		return applyArrayDefaults(data, schema, defaults)
	default:
		return repairScalar(data, schema, defaults)
	}
}

// DefaultForSchema builds a schema-conformant value from scratch, guided by
// the same defaults tree ApplyDefaults accepts. Objects are populated with
// required properties only; optional properties are omitted.
func DefaultForSchema(schema *Schema, defaults any) any {
	if schema == nil {
		if defaults != nil {
			return defaults
		}
		return placeholderString
	}
	switch schema.Type {
	case KindObject:
		obj := make(map[string]any, len(schema.Required))
		for _, name := range schema.Required {
			obj[name] = DefaultForSchema(schema.Property(name), defaultFragment(defaults, name))
		}
		return obj
	case KindArray:
		target := 1
		if schema.ExactItems != nil {
			target = *schema.ExactItems
		} else if schema.MinItems != nil {
			target = *schema.MinItems
		}
		arr := make([]any, 0, target)
		for i := 0; i < target; i++ {
			arr = append(arr, synthesizeItem(schema.Items, itemTemplate(defaults, i)))
		}
		return arr
	default:
		return scalarDefault(schema, defaults)
	}
}

func applyObjectDefaults(data any, schema *Schema, defaults any) any {
	obj, ok := data.(map[string]any)
	if !ok {
		obj = make(map[string]any)
	}
	defMap, _ := defaults.(map[string]any)

	// Explicit defaults first. Nested objects merge rather than overwrite so
	// a partial default tree can fill holes in a partial response.
	for name, dv := range defMap {
		cur, present := obj[name]
		prop := schema.Property(name)
		nested := prop != nil && prop.Type == KindObject
		_, dvIsMap := dv.(map[string]any)
		if !present || cur == nil {
			if nested && dvIsMap {
				obj[name] = ApplyDefaults(nil, prop, dv)
			} else {
				obj[name] = dv
			}
			continue
		}
		if _, curIsMap := cur.(map[string]any); nested && dvIsMap && curIsMap {
			obj[name] = ApplyDefaults(cur, prop, dv)
		}
	}

	// Then synthesize whatever required fields remain absent, and repair
	// required fields that are present but hold the wrong shape.
	for _, name := range schema.Required {
		cur, present := obj[name]
		fragment := defaultFragment(defaults, name)
		if !present || cur == nil {
			obj[name] = DefaultForSchema(schema.Property(name), fragment)
			continue
		}
		if prop := schema.Property(name); prop != nil {
			obj[name] = ApplyDefaults(cur, prop, fragment)
		}
	}
	return obj
}

func applyArrayDefaults(data any, schema *Schema, defaults any) any {
	arr, ok := data.([]any)
	if !ok {
		arr = nil
	}

	target := len(arr)
	switch {
	case schema.ExactItems != nil:
		target = *schema.ExactItems
	case schema.MinItems != nil:
		// An explicit floor, zero included, is the target for an empty
		// array; DefaultForSchema resolves the same schema the same way.
		if len(arr) < *schema.MinItems {
			target = *schema.MinItems
		}
	case len(arr) == 0:
		target = 1
	}

	for i := len(arr); i < target; i++ {
		arr = append(arr, synthesizeItem(schema.Items, itemTemplate(defaults, i)))
	}
	if schema.ExactItems != nil && len(arr) > *schema.ExactItems {
		arr = arr[:*schema.ExactItems]
	}
	return arr
}

// synthesizeItem builds one array element. When the item schema is an object
// and the template is a mapping, required fields are synthesized from the
// template's fragments and the template's own keys win on conflict.
func synthesizeItem(items *Schema, template any) any {
	tmplMap, isMap := template.(map[string]any)
	if items != nil && items.Type == KindObject && isMap {
		obj, _ := DefaultForSchema(items, template).(map[string]any)
		for k, v := range tmplMap {
			obj[k] = v
		}
		return obj
	}
	return DefaultForSchema(items, template)
}

// itemTemplate picks the defaults fragment for the array slot at index i.
// Sequences are positional with the last non-null entry repeating past the
// end; a non-empty mapping or any other non-null value is shared by every
// slot.
func itemTemplate(defaults any, i int) any {
	switch d := defaults.(type) {
	case nil:
		return nil
	case []any:
		if i < len(d) {
			// A null entry at an in-range position means "no override".
			return d[i]
		}
		for j := len(d) - 1; j >= 0; j-- {
			if d[j] != nil {
				return d[j]
			}
		}
		return nil
	case map[string]any:
		if len(d) == 0 {
			return nil
		}
		return d
	default:
		return d
	}
}

func defaultFragment(defaults any, name string) any {
	if m, ok := defaults.(map[string]any); ok {
		return m[name]
	}
	return nil
}

func repairScalar(data any, schema *Schema, defaults any) any {
	if scalarConforms(data, schema) {
		return data
	}
	return scalarDefault(schema, defaults)
}

func scalarDefault(schema *Schema, defaults any) any {
	if scalarConforms(defaults, schema) {
		return defaults
	}
	switch schema.Type {
	case KindString:
		return placeholderString
	case KindInteger:
		return 0
	case KindNumber:
		return 0.0
	case KindBoolean:
		return false
	default:
		if defaults != nil {
			return defaults
		}
		return placeholderString
	}
}

func scalarConforms(v any, schema *Schema) bool {
	switch schema.Type {
	case KindString:
		s, ok := v.(string)
		return ok && strings.TrimSpace(s) != ""
	case KindNumber, KindInteger:
		return isNumeric(v)
	case KindBoolean:
		_, ok := v.(bool)
		return ok
	default:
		return false
	}
}
