package jsonvalue

// Any is the tagged-union JSON value. The zero value is KindEmpty,
// distinct from an explicit JSON null (spec.md's Type::Empty vs
// Type::Null).
type Any struct {
	kind   Kind
	b      bool
	num    float64
	str    string // also carries Raw's verbatim text
	obj    *Object
	arr    *Array
	errVal *ErrorValue
}

// Empty returns the zero/absent value, distinct from Null.
func Empty() Any { return Any{kind: KindEmpty} }

// Null returns a JSON null value.
func Null() Any { return Any{kind: KindNull} }

// Bool wraps a boolean.
func Bool(v bool) Any { return Any{kind: KindBool, b: v} }

// Number wraps a float64. Integral values serialize without a decimal
// point (spec.md §4.2).
func Number(v float64) Any { return Any{kind: KindNumber, num: v} }

// Int is a convenience constructor for integral numbers.
func Int(v int64) Any { return Number(float64(v)) }

// String wraps a UTF-8 string.
func String(v string) Any { return Any{kind: KindString, str: v} }

// Raw wraps an already-serialized JSON fragment that is spliced
// verbatim into output.
func Raw(v string) Any { return Any{kind: KindRaw, str: v} }

// NewObject returns an Any backed by a fresh, empty Object.
func NewObject() Any { return Any{kind: KindObject, obj: newObject()} }

// FromObject wraps an existing *Object.
func FromObject(o *Object) Any { return Any{kind: KindObject, obj: o} }

// NewArray returns an Any backed by a fresh, empty Array.
func NewArray() Any { return Any{kind: KindArray, arr: newArray()} }

// FromArray wraps an existing *Array.
func FromArray(a *Array) Any { return Any{kind: KindArray, arr: a} }

// FromError wraps an ErrorValue as a JSON value.
func FromError(e *ErrorValue) Any { return Any{kind: KindError, errVal: e} }

// NewError is a convenience constructor for a simple {message} error,
// matching Result::Err's string-message constructor in ipc/result.cc.
func NewError(message string) Any {
	return FromError(&ErrorValue{Message: message})
}

// Kind reports the value's tag.
func (a Any) Kind() Kind { return a.kind }

func (a Any) IsEmpty() bool  { return a.kind == KindEmpty }
func (a Any) IsNull() bool   { return a.kind == KindNull || a.kind == KindEmpty }
func (a Any) IsBool() bool   { return a.kind == KindBool }
func (a Any) IsNumber() bool { return a.kind == KindNumber }
func (a Any) IsString() bool { return a.kind == KindString }
func (a Any) IsArray() bool  { return a.kind == KindArray }
func (a Any) IsObject() bool { return a.kind == KindObject }
func (a Any) IsRaw() bool    { return a.kind == KindRaw }
func (a Any) IsError() bool  { return a.kind == KindError }

// BoolValue returns the boolean payload and whether the kind matched.
func (a Any) BoolValue() (bool, bool) { return a.b, a.kind == KindBool }

// NumberValue returns the numeric payload and whether the kind matched.
func (a Any) NumberValue() (float64, bool) { return a.num, a.kind == KindNumber }

// StringValue returns the string payload and whether the kind matched
// (String or Raw, both of which carry verbatim text).
func (a Any) StringValue() (string, bool) {
	if a.kind == KindString || a.kind == KindRaw {
		return a.str, true
	}
	return "", false
}

// Object returns the backing *Object and whether the kind matched.
func (a Any) Object() (*Object, bool) { return a.obj, a.kind == KindObject }

// Array returns the backing *Array and whether the kind matched.
func (a Any) Array() (*Array, bool) { return a.arr, a.kind == KindArray }

// Error returns the backing *ErrorValue and whether the kind matched.
func (a Any) Error() (*ErrorValue, bool) { return a.errVal, a.kind == KindError }

// Equal implements spec.md §4.2's equality rule: scalars compare by
// value, composites compare by shared identity only.
func (a Any) Equal(other Any) bool {
	if a.kind != other.kind {
		// Empty and Null are both "no value" in practice.
		if a.IsNull() && other.IsNull() {
			return true
		}
		return false
	}
	switch a.kind {
	case KindEmpty, KindNull:
		return true
	case KindBool:
		return a.b == other.b
	case KindNumber:
		return a.num == other.num
	case KindString, KindRaw:
		return a.str == other.str
	case KindObject:
		return a.obj == other.obj
	case KindArray:
		return a.arr == other.arr
	case KindError:
		return a.errVal == other.errVal
	default:
		return false
	}
}
