package configstore

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// Kind is the JSON type of a Value.
type Kind int

const (
	// KindNull is the JSON null, and the zero Value.
	KindNull Kind = iota
	// KindString is a JSON string.
	KindString
	// KindNumber is a JSON number.
	KindNumber
	// KindBool is a JSON boolean.
	KindBool
	// KindObject is a JSON object.
	KindObject
	// KindArray is a JSON array.
	KindArray
)

var (
	// ErrInvalidValue is returned when a payload is not a JSON document.
	ErrInvalidValue = errors.New("value is not valid JSON")

	jsonNull = []byte("null") //nolint:gochecknoglobals
)

// Value is a configuration payload: a structured document (object or array) or a scalar.
// It keeps the compact JSON form of what the caller sent.
type Value struct {
	kind Kind
	raw  json.RawMessage
}

// ParseValue builds a Value from a JSON document.
func ParseValue(data []byte) (Value, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || !json.Valid(data) {
		return Value{}, ErrInvalidValue
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return Value{}, errors.Wrap(ErrInvalidValue, err.Error())
	}

	return Value{kind: kindOf(buf.Bytes()), raw: buf.Bytes()}, nil
}

// MustParseValue is ParseValue for literals known to be valid. It panics otherwise.
func MustParseValue(data string) Value {
	v, err := ParseValue([]byte(data))
	if err != nil {
		panic(err)
	}
	return v
}

// StringValue wraps a plain string.
func StringValue(s string) Value {
	raw, _ := json.Marshal(s) //nolint:errchkjson // strings always marshal
	return Value{kind: KindString, raw: raw}
}

// DecodeValue reads a stored value back. Stored text that is valid JSON is decoded,
// anything else is returned as a plain string.
func DecodeValue(stored string) Value {
	if v, err := ParseValue([]byte(stored)); err == nil {
		return v
	}
	return StringValue(stored)
}

// Encode returns the storage form: compact JSON for objects, arrays and null,
// the bare text for strings, and the literal for numbers and booleans.
func (v Value) Encode() string {
	switch v.kind {
	case KindString:
		var s string
		if err := json.Unmarshal(v.raw, &s); err == nil {
			return s
		}
		return string(v.raw)
	case KindNull:
		return string(jsonNull)
	default:
		return string(v.raw)
	}
}

// Kind reports the JSON type.
func (v Value) Kind() Kind {
	return v.kind
}

// IsStructured reports whether the value is an object or an array.
func (v Value) IsStructured() bool {
	return v.kind == KindObject || v.kind == KindArray
}

// Len is the number of members of an object or elements of an array, and 0 for scalars.
func (v Value) Len() int {
	switch v.kind {
	case KindObject:
		var m map[string]json.RawMessage
		if err := json.Unmarshal(v.raw, &m); err != nil {
			return 0
		}
		return len(m)
	case KindArray:
		var a []json.RawMessage
		if err := json.Unmarshal(v.raw, &a); err != nil {
			return 0
		}
		return len(a)
	default:
		return 0
	}
}

// Raw returns the compact JSON form.
func (v Value) Raw() json.RawMessage {
	if len(v.raw) == 0 {
		return jsonNull
	}
	return v.raw
}

// Interface decodes the value into plain Go types (map[string]any, []any, string, float64, bool, nil).
func (v Value) Interface() (any, error) {
	var out any
	if err := json.Unmarshal(v.Raw(), &out); err != nil {
		return nil, errors.Wrap(err, "decode value")
	}
	return out, nil
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return v.Raw(), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := ParseValue(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// String is the JSON form, for logging.
func (v Value) String() string {
	return string(v.Raw())
}

func kindOf(raw []byte) Kind {
	switch raw[0] {
	case '{':
		return KindObject
	case '[':
		return KindArray
	case '"':
		return KindString
	case 't', 'f':
		return KindBool
	case 'n':
		return KindNull
	default:
		return KindNumber
	}
}
