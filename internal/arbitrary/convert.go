package arbitrary

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// FromAny converts decoded JSON (as produced by encoding/json into any) or
// plain Go scalars, slices and string-keyed maps into Data.
func FromAny(v any) (Data, error) {
	switch t := v.(type) {
	case nil:
		return NullValue(), nil
	case Data:
		return t, nil
	case bool:
		return BoolValue(t), nil
	case string:
		return StringValue(t), nil
	case json.Number:
		return NumberValue(t.String())
	case int:
		return IntValue(int64(t)), nil
	case int32:
		return IntValue(int64(t)), nil
	case int64:
		return IntValue(t), nil
	case uint16:
		return IntValue(int64(t)), nil
	case float64:
		return NumberValue(strconv.FormatFloat(t, 'g', -1, 64))
	case []any:
		items := make([]Data, len(t))
		for i, item := range t {
			d, err := FromAny(item)
			if err != nil {
				return Data{}, fmt.Errorf("[%d]: %w", i, err)
			}
			items[i] = d
		}
		return Data{kind: Array, items: items}, nil
	case []string:
		items := make([]Data, len(t))
		for i, s := range t {
			items[i] = StringValue(s)
		}
		return Data{kind: Array, items: items}, nil
	case map[string]any:
		fields := make(map[string]Data, len(t))
		for k, item := range t {
			d, err := FromAny(item)
			if err != nil {
				return Data{}, fmt.Errorf("%s: %w", k, err)
			}
			fields[k] = d
		}
		return Data{kind: Object, fields: fields}, nil
	case map[string]string:
		fields := make(map[string]Data, len(t))
		for k, s := range t {
			fields[k] = StringValue(s)
		}
		return Data{kind: Object, fields: fields}, nil
	case map[string][]string:
		fields := make(map[string]Data, len(t))
		for k, vs := range t {
			d, _ := FromAny(vs)
			fields[k] = d
		}
		return Data{kind: Object, fields: fields}, nil
	default:
		return Data{}, fmt.Errorf("arbitrary: unsupported type %T", v)
	}
}

// ToAny converts d back into plain Go values. Numbers are returned as json.Number.
func (d Data) ToAny() any {
	switch d.kind {
	case Bool:
		return d.b
	case Number:
		return d.num
	case String:
		return d.str
	case Array:
		out := make([]any, len(d.items))
		for i, item := range d.items {
			out[i] = item.ToAny()
		}
		return out
	case Object:
		out := make(map[string]any, len(d.fields))
		for k, v := range d.fields {
			out[k] = v.ToAny()
		}
		return out
	default:
		return nil
	}
}
