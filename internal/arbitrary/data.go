package arbitrary

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"sort"
	"strconv"

	"github.com/gowebpki/jcs"
)

// Kind discriminates the variants of Data.
type Kind uint8

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Data is an untyped structural value. The zero value is null.
type Data struct {
	kind   Kind
	b      bool
	num    json.Number
	str    string
	items  []Data
	fields map[string]Data
}

// NullValue returns the null value.
func NullValue() Data { return Data{} }

// BoolValue wraps a boolean.
func BoolValue(b bool) Data { return Data{kind: Bool, b: b} }

// StringValue wraps a string.
func StringValue(s string) Data { return Data{kind: String, str: s} }

// IntValue wraps an integer.
func IntValue(i int64) Data { return Data{kind: Number, num: json.Number(strconv.FormatInt(i, 10))} }

// NumberValue wraps a JSON number literal. The literal is kept verbatim so
// re-serialization reproduces the captured text.
func NumberValue(literal string) (Data, error) {
	if _, ok := new(big.Float).SetString(literal); !ok || !json.Valid([]byte(literal)) {
		return Data{}, fmt.Errorf("invalid number literal %q", literal)
	}
	return Data{kind: Number, num: json.Number(literal)}, nil
}

// ArrayValue builds an array from items.
func ArrayValue(items ...Data) Data {
	cp := make([]Data, len(items))
	copy(cp, items)
	return Data{kind: Array, items: cp}
}

// ObjectValue builds an object from fields.
func ObjectValue(fields map[string]Data) Data {
	cp := make(map[string]Data, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	return Data{kind: Object, fields: cp}
}

// EmptyObject returns {}.
func EmptyObject() Data { return Data{kind: Object, fields: map[string]Data{}} }

// Kind reports the variant.
func (d Data) Kind() Kind { return d.kind }

// IsNull reports whether d is null.
func (d Data) IsNull() bool { return d.kind == Null }

// IsEmpty reports whether d is null, {} or [].
func (d Data) IsEmpty() bool {
	switch d.kind {
	case Null:
		return true
	case Object:
		return len(d.fields) == 0
	case Array:
		return len(d.items) == 0
	default:
		return false
	}
}

// Bool returns the boolean payload.
func (d Data) Bool() (bool, bool) { return d.b, d.kind == Bool }

// Number returns the number literal.
func (d Data) Number() (json.Number, bool) { return d.num, d.kind == Number }

// Str returns the string payload.
func (d Data) Str() (string, bool) { return d.str, d.kind == String }

// Len returns the number of array items or object fields.
func (d Data) Len() int {
	switch d.kind {
	case Array:
		return len(d.items)
	case Object:
		return len(d.fields)
	default:
		return 0
	}
}

// Index returns the i-th array item.
func (d Data) Index(i int) (Data, bool) {
	if d.kind != Array || i < 0 || i >= len(d.items) {
		return Data{}, false
	}
	return d.items[i], true
}

// Field returns the named object field.
func (d Data) Field(key string) (Data, bool) {
	if d.kind != Object {
		return Data{}, false
	}
	v, ok := d.fields[key]
	return v, ok
}

// Keys returns object keys in sorted order.
func (d Data) Keys() []string {
	if d.kind != Object {
		return nil
	}
	keys := make([]string, 0, len(d.fields))
	for k := range d.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Equal reports structural equality. Object key order is irrelevant and
// numbers compare by value, so 1, 1.0 and 1e0 are equal.
func (d Data) Equal(other Data) bool {
	if d.kind != other.kind {
		return false
	}
	switch d.kind {
	case Null:
		return true
	case Bool:
		return d.b == other.b
	case String:
		return d.str == other.str
	case Number:
		return numbersEqual(d.num, other.num)
	case Array:
		if len(d.items) != len(other.items) {
			return false
		}
		for i := range d.items {
			if !d.items[i].Equal(other.items[i]) {
				return false
			}
		}
		return true
	case Object:
		if len(d.fields) != len(other.fields) {
			return false
		}
		for k, v := range d.fields {
			ov, ok := other.fields[k]
			if !ok || !v.Equal(ov) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func numbersEqual(a, b json.Number) bool {
	if a == b {
		return true
	}
	ra, okA := new(big.Rat).SetString(a.String())
	rb, okB := new(big.Rat).SetString(b.String())
	if !okA || !okB {
		return false
	}
	return ra.Cmp(rb) == 0
}

// Canonical returns the RFC 8785 canonical JSON encoding of d, suitable for
// hashing and byte-level comparison.
func (d Data) Canonical() ([]byte, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return jcs.Transform(raw)
}

// MarshalJSON implements json.Marshaler.
func (d Data) MarshalJSON() ([]byte, error) {
	switch d.kind {
	case Null:
		return []byte("null"), nil
	case Bool:
		return strconv.AppendBool(nil, d.b), nil
	case Number:
		return []byte(d.num.String()), nil
	case String:
		return json.Marshal(d.str)
	case Array:
		if len(d.items) == 0 {
			return []byte("[]"), nil
		}
		return json.Marshal(d.items)
	case Object:
		if len(d.fields) == 0 {
			return []byte("{}"), nil
		}
		return json.Marshal(d.fields)
	default:
		return nil, fmt.Errorf("arbitrary: unknown kind %s", d.kind)
	}
}

// UnmarshalJSON implements json.Unmarshaler. Numbers keep their literal text.
func (d *Data) UnmarshalJSON(raw []byte) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	parsed, err := FromAny(v)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Parse decodes a JSON document into Data.
func Parse(raw []byte) (Data, error) {
	var d Data
	if err := json.Unmarshal(raw, &d); err != nil {
		return Data{}, err
	}
	return d, nil
}
