package structured

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// Whatever length an array starts at, repairing it against an exactItems
// schema converges to exactly that length.
func TestProperty_ExactItemsConvergence(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		exact := rapid.IntRange(0, 8).Draw(rt, "exact")
		startLen := rapid.IntRange(0, 12).Draw(rt, "startLen")

		schema := Array(String()).WithExactItems(exact)
		arr := make([]any, 0, startLen)
		for i := 0; i < startLen; i++ {
			arr = append(arr, "item")
		}

		repaired, ok := ApplyDefaults(arr, schema, nil).([]any)
		require.True(rt, ok)
		assert.Len(rt, repaired, exact)

		built, ok := DefaultForSchema(schema, nil).([]any)
		require.True(rt, ok)
		assert.Len(rt, built, exact)
	})
}

// Repairing an already-valid tree never changes any present field.
func TestProperty_RepairIsIdempotentOnValidData(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		names := rapid.SliceOfNDistinct(rapid.StringMatching(`[a-z]{3,8}`), 1, 4, rapid.ID[string]).Draw(rt, "names")

		props := make(map[string]*Schema, len(names))
		data := make(map[string]any, len(names))
		expect := make(map[string]any, len(names))
		for _, name := range names {
			props[name] = String()
			v := rapid.StringMatching(`[a-zA-Z]{1,10}`).Draw(rt, "value")
			data[name] = v
			expect[name] = v
		}
		schema := Object(props, names...)

		got := ApplyDefaults(data, schema, map[string]any{names[0]: "override"})
		assert.Equal(rt, expect, got)
	})
}

// Whatever the synthesizer builds from scratch passes the completeness check
// against the same schema.
func TestProperty_SynthesizedValueIsComplete(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		schema := genSchema(rt, 0)
		value := DefaultForSchema(schema, nil)
		report := Check(value, schema)
		assert.True(rt, report.Valid, "synthesized value failed its own schema: %v", report.Missing)
	})
}

// genSchema draws a random schema limited to the supported kinds, shallow
// enough to keep cases readable.
func genSchema(rt *rapid.T, depth int) *Schema {
	choices := []string{"string", "number", "integer", "boolean"}
	if depth < 2 {
		choices = append(choices, "object", "array")
	}
	switch rapid.SampledFrom(choices).Draw(rt, "kind") {
	case "object":
		names := rapid.SliceOfNDistinct(rapid.StringMatching(`[a-z]{2,6}`), 1, 3, rapid.ID[string]).Draw(rt, "props")
		props := make(map[string]*Schema, len(names))
		for _, name := range names {
			props[name] = genSchema(rt, depth+1)
		}
		return Object(props, names...)
	case "array":
		s := Array(genSchema(rt, depth+1))
		if rapid.Bool().Draw(rt, "exact") {
			return s.WithExactItems(rapid.IntRange(1, 4).Draw(rt, "n"))
		}
		return s.WithMinItems(rapid.IntRange(1, 3).Draw(rt, "min"))
	case "number":
		return Number()
	case "integer":
		return Integer()
	case "boolean":
		return Boolean()
	default:
		return String()
	}
}
