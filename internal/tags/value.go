// Package tags maps the machine onto a tag-based address space: a fixed
// table of named, typed values re-read after every tick, and a dispatch table
// of named commands invoked with positional arguments.
package tags

import (
	"encoding/json"
	"slices"
	"time"
)

// Kind is the wire type of a tag value or method argument.
type Kind uint8

const (
	KindString Kind = iota + 1
	KindDouble
	KindUInt32
	KindDateTime
	KindStringArray
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "String"
	case KindDouble:
		return "Double"
	case KindUInt32:
		return "UInt32"
	case KindDateTime:
		return "DateTime"
	case KindStringArray:
		return "String[]"
	default:
		return "Invalid"
	}
}

// Value is a tagged union over the supported kinds. The zero Value is invalid.
type Value struct {
	kind Kind
	str  string
	num  float64
	u32  uint32
	ts   time.Time
	strs []string
}

func StringValue(v string) Value { return Value{kind: KindString, str: v} }
func DoubleValue(v float64) Value { return Value{kind: KindDouble, num: v} }
func UInt32Value(v uint32) Value { return Value{kind: KindUInt32, u32: v} }
func DateTimeValue(v time.Time) Value { return Value{kind: KindDateTime, ts: v.UTC()} }

// StringArrayValue copies v so later changes to the caller's slice are not observed.
func StringArrayValue(v []string) Value {
	cp := make([]string, len(v))
	copy(cp, v)
	return Value{kind: KindStringArray, strs: cp}
}

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsValid() bool { return v.kind != 0 }
func (v Value) String() string { return v.str }
func (v Value) Double() float64 { return v.num }
func (v Value) UInt32() uint32 { return v.u32 }
func (v Value) DateTime() time.Time { return v.ts }

// StringArray returns a copy of the array payload.
func (v Value) StringArray() []string {
	return slices.Clone(v.strs)
}

// Interface returns the payload as a plain Go value.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindDouble:
		return v.num
	case KindUInt32:
		return v.u32
	case KindDateTime:
		return v.ts
	case KindStringArray:
		return v.StringArray()
	default:
		return nil
	}
}

// Equal reports whether both values have the same kind and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindDouble:
		return v.num == o.num
	case KindUInt32:
		return v.u32 == o.u32
	case KindDateTime:
		return v.ts.Equal(o.ts)
	case KindStringArray:
		return slices.Equal(v.strs, o.strs)
	default:
		return true
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == KindStringArray && v.strs == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(v.Interface())
}
