package structured

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults_FillsMissingRequired(t *testing.T) {
	schema := Object(map[string]*Schema{
		"name":    String(),
		"capital": String(),
	}, "name", "capital")

	got := ApplyDefaults(decode(t, `{"name":"Canada"}`), schema, nil)

	assert.Equal(t, map[string]any{
		"name":    "Canada",
		"capital": "Default value",
	}, got)
}

func TestApplyDefaults_PrefersCallerDefaults(t *testing.T) {
	schema := Object(map[string]*Schema{
		"name":    String(),
		"capital": String(),
	}, "name", "capital")

	got := ApplyDefaults(decode(t, `{"name":"Canada"}`), schema, map[string]any{"capital": "Ottawa"})

	assert.Equal(t, map[string]any{
		"name":    "Canada",
		"capital": "Ottawa",
	}, got)
}

func TestApplyDefaults_DoesNotOverwritePresentValues(t *testing.T) {
	schema := Object(map[string]*Schema{
		"name": String(),
	}, "name")

	got := ApplyDefaults(decode(t, `{"name":"Canada"}`), schema, map[string]any{"name": "Elsewhere"})

	assert.Equal(t, map[string]any{"name": "Canada"}, got)
}

func TestApplyDefaults_Idempotence(t *testing.T) {
	schema := Object(map[string]*Schema{
		"name": String(),
		"address": Object(map[string]*Schema{
			"city": String(),
		}, "city"),
		"tags": Array(String()).WithMinItems(1),
	}, "name", "address", "tags")

	valid := decode(t, `{"name":"Ada","address":{"city":"London"},"tags":["math"]}`)
	got := ApplyDefaults(valid, schema, map[string]any{"name": "x", "address": map[string]any{"city": "y"}})

	assert.Equal(t, decode(t, `{"name":"Ada","address":{"city":"London"},"tags":["math"]}`), got)
}

func TestApplyDefaults_NestedPartialMerge(t *testing.T) {
	schema := Object(map[string]*Schema{
		"address": Object(map[string]*Schema{
			"city": String(),
			"zip":  String(),
		}, "city", "zip"),
	}, "address")

	// Partial nested data merges with partial nested defaults instead of
	// being overwritten wholesale.
	got := ApplyDefaults(
		decode(t, `{"address":{"city":"Lyon"}}`),
		schema,
		map[string]any{"address": map[string]any{"zip": "69000", "city": "Paris"}},
	)

	assert.Equal(t, map[string]any{
		"address": map[string]any{"city": "Lyon", "zip": "69000"},
	}, got)
}

func TestApplyDefaults_RepairsWrongShapeRequired(t *testing.T) {
	schema := Object(map[string]*Schema{
		"name":  String(),
		"score": Number(),
	}, "name", "score")

	got := ApplyDefaults(decode(t, `{"name":"  ","score":"high"}`), schema, nil)

	assert.Equal(t, map[string]any{
		"name":  "Default value",
		"score": 0.0,
	}, got)
}

func TestApplyDefaults_ArrayGrowsToExact(t *testing.T) {
	schema := Array(Object(map[string]*Schema{"city": String()}, "city")).WithExactItems(3)

	got := ApplyDefaults(
		decode(t, `[{"city":"Montreal"},{"city":"Quebec"}]`),
		schema,
		[]any{map[string]any{"city": "Montreal"}},
	)

	require.Len(t, got, 3)
	assert.Equal(t, []any{
		map[string]any{"city": "Montreal"},
		map[string]any{"city": "Quebec"},
		map[string]any{"city": "Montreal"},
	}, got)
}

func TestApplyDefaults_ArrayTruncatesToExact(t *testing.T) {
	schema := Array(String()).WithExactItems(2)

	got := ApplyDefaults(decode(t, `["a","b","c","d"]`), schema, nil)

	assert.Equal(t, []any{"a", "b"}, got)
}

func TestApplyDefaults_ArrayGrowsToMin(t *testing.T) {
	schema := Array(String()).WithMinItems(3)

	got := ApplyDefaults(decode(t, `["a"]`), schema, nil)

	assert.Equal(t, []any{"a", "Default value", "Default value"}, got)
}

func TestApplyDefaults_EmptyArrayGetsOneItem(t *testing.T) {
	schema := Array(String())

	got := ApplyDefaults(decode(t, `[]`), schema, nil)

	assert.Equal(t, []any{"Default value"}, got)
}

func TestApplyDefaults_ZeroMinItemsKeepsEmptyArray(t *testing.T) {
	schema := Array(String()).WithMinItems(0)

	got := ApplyDefaults(decode(t, `[]`), schema, nil)

	// An explicit floor of zero is honored; both synthesis paths agree.
	assert.Equal(t, []any{}, got)
	assert.Equal(t, []any{}, DefaultForSchema(schema, nil))
}

func TestApplyDefaults_ArrayKeptWhenWithinBounds(t *testing.T) {
	schema := Array(String()).WithMinItems(1).WithMaxItems(5)

	got := ApplyDefaults(decode(t, `["a","b"]`), schema, nil)

	assert.Equal(t, []any{"a", "b"}, got)
}

func TestApplyDefaults_PositionalArrayDefaults(t *testing.T) {
	schema := Array(String()).WithExactItems(4)

	// Entries are positional; past the end, the last non-null entry
	// repeats.
	got := ApplyDefaults(decode(t, `["kept"]`), schema, []any{"zero", "one", "two"})

	assert.Equal(t, []any{"kept", "one", "two", "two"}, got)
}

func TestApplyDefaults_PositionalNullMeansSynthesize(t *testing.T) {
	schema := Array(String()).WithExactItems(3)

	got := ApplyDefaults(decode(t, `[]`), schema, []any{"zero", nil, "two"})

	assert.Equal(t, []any{"zero", "Default value", "two"}, got)
}

func TestApplyDefaults_MappingTemplateBroadcast(t *testing.T) {
	schema := Array(Object(map[string]*Schema{
		"city":    String(),
		"country": String(),
	}, "city", "country")).WithExactItems(2)

	got := ApplyDefaults(decode(t, `[]`), schema, map[string]any{"country": "Canada"})

	assert.Equal(t, []any{
		map[string]any{"city": "Default value", "country": "Canada"},
		map[string]any{"city": "Default value", "country": "Canada"},
	}, got)
}

func TestApplyDefaults_TemplateKeysWinAndExtrasKept(t *testing.T) {
	schema := Array(Object(map[string]*Schema{"city": String()}, "city")).WithExactItems(1)

	got := ApplyDefaults(decode(t, `[]`), schema, map[string]any{"city": "Montreal", "note": "qc"})

	assert.Equal(t, []any{
		map[string]any{"city": "Montreal", "note": "qc"},
	}, got)
}

func TestApplyDefaults_ScalarRepair(t *testing.T) {
	tests := []struct {
		name     string
		schema   *Schema
		data     any
		defaults any
		want     any
	}{
		{"keep valid string", String(), "hello", "other", "hello"},
		{"blank string replaced by default", String(), "  ", "fallback", "fallback"},
		{"blank string placeholder", String(), "", nil, "Default value"},
		{"incompatible default ignored", String(), nil, 42, "Default value"},
		{"keep number", Number(), 3.5, 9.0, 3.5},
		{"number placeholder", Number(), "nope", nil, 0.0},
		{"integer placeholder", Integer(), nil, nil, 0},
		{"keep boolean", Boolean(), true, false, true},
		{"boolean placeholder", Boolean(), "yes", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ApplyDefaults(tt.data, tt.schema, tt.defaults))
		})
	}
}

func TestDefaultForSchema_ObjectRequiredOnly(t *testing.T) {
	schema := Object(map[string]*Schema{
		"name":     String(),
		"capital":  String(),
		"optional": String(),
	}, "name", "capital")

	got := DefaultForSchema(schema, map[string]any{"name": "Canada"})

	assert.Equal(t, map[string]any{
		"name":    "Canada",
		"capital": "Default value",
	}, got)
}

func TestDefaultForSchema_NestedObject(t *testing.T) {
	schema := Object(map[string]*Schema{
		"address": Object(map[string]*Schema{
			"city": String(),
		}, "city"),
	}, "address")

	got := DefaultForSchema(schema, map[string]any{"address": map[string]any{"city": "Lyon"}})

	assert.Equal(t, map[string]any{
		"address": map[string]any{"city": "Lyon"},
	}, got)
}

func TestDefaultForSchema_ArraySizes(t *testing.T) {
	tests := []struct {
		name   string
		schema *Schema
		want   int
	}{
		{"exact", Array(String()).WithExactItems(3), 3},
		{"min", Array(String()).WithMinItems(2), 2},
		{"bare", Array(String()), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DefaultForSchema(tt.schema, nil).([]any)
			require.True(t, ok)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestDefaultForSchema_ArrayPositionalDefaults(t *testing.T) {
	schema := Array(String()).WithExactItems(4)

	got := DefaultForSchema(schema, []any{"a", "b"})

	assert.Equal(t, []any{"a", "b", "b", "b"}, got)
}

func TestDefaultForSchema_Scalars(t *testing.T) {
	assert.Equal(t, "Default value", DefaultForSchema(String(), nil))
	assert.Equal(t, 0, DefaultForSchema(Integer(), nil))
	assert.Equal(t, 0.0, DefaultForSchema(Number(), nil))
	assert.Equal(t, false, DefaultForSchema(Boolean(), nil))
	assert.Equal(t, "Ottawa", DefaultForSchema(String(), "Ottawa"))
}

func TestDefaultForSchema_RequiredWithoutChildSchema(t *testing.T) {
	schema := Object(nil, "note")

	got := DefaultForSchema(schema, map[string]any{"note": "remember"})
	assert.Equal(t, map[string]any{"note": "remember"}, got)

	got = DefaultForSchema(schema, nil)
	assert.Equal(t, map[string]any{"note": "Default value"}, got)
}

func TestApplyDefaults_NonMapDataBecomesObject(t *testing.T) {
	schema := Object(map[string]*Schema{"name": String()}, "name")

	got := ApplyDefaults("not an object", schema, nil)

	assert.Equal(t, map[string]any{"name": "Default value"}, got)
}

func TestApplyDefaults_NeverMutatesDefaults(t *testing.T) {
	schema := Object(map[string]*Schema{
		"address": Object(map[string]*Schema{
			"city": String(),
			"zip":  String(),
		}, "city", "zip"),
	}, "address")
	defaults := map[string]any{"address": map[string]any{"zip": "69000"}}

	_ = ApplyDefaults(decode(t, `{"address":{"city":"Lyon"}}`), schema, defaults)

	assert.Equal(t, map[string]any{"address": map[string]any{"zip": "69000"}}, defaults)
}
