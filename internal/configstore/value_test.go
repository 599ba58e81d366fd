package configstore

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValue(t *testing.T) {
	testCases := []struct {
		name         string
		input        string
		expectedKind Kind
		expectedRaw  string
		wantErr      bool
	}{
		{name: "object", input: `{ "a" : 1 }`, expectedKind: KindObject, expectedRaw: `{"a":1}`},
		{name: "array", input: ` [1, 2] `, expectedKind: KindArray, expectedRaw: `[1,2]`},
		{name: "string", input: `"hello"`, expectedKind: KindString, expectedRaw: `"hello"`},
		{name: "number", input: `-4.5`, expectedKind: KindNumber, expectedRaw: `-4.5`},
		{name: "bool", input: `false`, expectedKind: KindBool, expectedRaw: `false`},
		{name: "null", input: `null`, expectedKind: KindNull, expectedRaw: `null`},
		{name: "empty", input: ``, wantErr: true},
		{name: "garbage", input: `{a:1}`, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := ParseValue([]byte(tc.input))
			if tc.wantErr {
				require.ErrorIs(t, err, ErrInvalidValue)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expectedKind, v.Kind())
			assert.JSONEq(t, tc.expectedRaw, string(v.Raw()))
		})
	}
}

func TestValueEncode(t *testing.T) {
	testCases := []struct {
		name     string
		value    Value
		expected string
	}{
		{name: "object is compact json", value: MustParseValue(`{"a": {"b": [1, 2]}}`), expected: `{"a":{"b":[1,2]}}`},
		{name: "array is compact json", value: MustParseValue(`[ "x" ]`), expected: `["x"]`},
		{name: "string is stored verbatim", value: StringValue("it's fine"), expected: "it's fine"},
		{name: "number is stored verbatim", value: MustParseValue(`42`), expected: "42"},
		{name: "bool is stored verbatim", value: MustParseValue(`true`), expected: "true"},
		{name: "null", value: MustParseValue(`null`), expected: "null"},
		{name: "zero value", value: Value{}, expected: "null"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.value.Encode())
		})
	}
}

func TestDecodeValue(t *testing.T) {
	testCases := []struct {
		name         string
		stored       string
		expectedKind Kind
		expected     any
	}{
		{name: "json object", stored: `{"a":1}`, expectedKind: KindObject, expected: map[string]any{"a": float64(1)}},
		{name: "json number", stored: `42`, expectedKind: KindNumber, expected: float64(42)},
		{name: "plain text falls back to string", stored: `hello world`, expectedKind: KindString, expected: "hello world"},
		{name: "empty text", stored: ``, expectedKind: KindString, expected: ""},
		{name: "broken json falls back to string", stored: `{"a":`, expectedKind: KindString, expected: `{"a":`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := DecodeValue(tc.stored)
			assert.Equal(t, tc.expectedKind, v.Kind())

			got, err := v.Interface()
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestValueLen(t *testing.T) {
	assert.Equal(t, 2, MustParseValue(`{"a":1,"b":2}`).Len())
	assert.Equal(t, 0, MustParseValue(`{}`).Len())
	assert.Equal(t, 3, MustParseValue(`[1,2,3]`).Len())
	assert.Equal(t, 0, StringValue("abc").Len())
	assert.True(t, MustParseValue(`[]`).IsStructured())
	assert.False(t, MustParseValue(`null`).IsStructured())
}

func TestValueJSON(t *testing.T) {
	var payload struct {
		Value Value `json:"value"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"value": {"enabled": true}}`), &payload))
	assert.Equal(t, KindObject, payload.Value.Kind())

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"value":{"enabled":true}}`, string(out))

	out, err = json.Marshal(Entry{Key: "MISSING"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"exists":false,"key":"MISSING","value":null}`, string(out))
}
