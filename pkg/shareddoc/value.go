package shareddoc

import (
	"fmt"

	"github.com/the-dev-tools/contextmap/pkg/idwrap"
)

// UnsetValue marks an optional field that holds no value. It is stored as a
// value of its own, distinct from null and from a missing key.
type UnsetValue struct{}

// Unset is the value written for absent optional fields.
var Unset = UnsetValue{}

type ValueType string

const (
	ValueNull   ValueType = "null"
	ValueUnset  ValueType = "unset"
	ValueString ValueType = "string"
	ValueNumber ValueType = "number"
	ValueBool   ValueType = "bool"
	ValueMap    ValueType = "map"
	ValueArray  ValueType = "array"
)

// Value is the wire form of what an operation writes. Map and array values
// create a new empty container whose id is the operation's stamp; their
// content travels as later operations targeting that id.
type Value struct {
	Type ValueType `json:"t"`
	Str  string    `json:"s,omitempty"`
	Num  float64   `json:"n,omitempty"`
	Bool bool      `json:"b,omitempty"`
}

// scalar converts v to one of the stored scalar types.
func scalar(v any) (any, error) {
	switch x := v.(type) {
	case nil, UnsetValue, string, bool, float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
}

func mustScalar(v any) any {
	s, err := scalar(v)
	if err != nil {
		panic("shareddoc: " + err.Error())
	}
	return s
}

func encodeValue(v any) Value {
	switch x := v.(type) {
	case nil:
		return Value{Type: ValueNull}
	case UnsetValue:
		return Value{Type: ValueUnset}
	case string:
		return Value{Type: ValueString, Str: x}
	case float64:
		return Value{Type: ValueNumber, Num: x}
	case bool:
		return Value{Type: ValueBool, Bool: x}
	case *Map:
		return Value{Type: ValueMap}
	case *Array:
		return Value{Type: ValueArray}
	default:
		panic(fmt.Sprintf("shareddoc: cannot encode %T", v))
	}
}

// decodeValue turns a wire value into a stored one, creating and
// registering the container for map and array values.
func (d *Doc) decodeValue(v Value, op ID) (any, bool) {
	switch v.Type {
	case ValueNull:
		return nil, true
	case ValueUnset:
		return Unset, true
	case ValueString:
		return v.Str, true
	case ValueNumber:
		return v.Num, true
	case ValueBool:
		return v.Bool, true
	case ValueMap:
		cid := ContainerID{Op: op}
		if c, ok := d.containers[cid].(*Map); ok {
			return c, true
		}
		m := newMap(d, cid)
		d.register(m)
		return m, true
	case ValueArray:
		cid := ContainerID{Op: op}
		if c, ok := d.containers[cid].(*Array); ok {
			return c, true
		}
		a := newArray(d, cid)
		d.register(a)
		return a, true
	default:
		return nil, false
	}
}

func randomClientID() uint64 {
	return idwrap.NewClientID()
}
