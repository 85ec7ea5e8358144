package resp

import "fmt"

type RespType int

const (
	SimpleString RespType = iota
	ErrorType
	IntegerType
	BulkString
	ArrayType
	NullType
	DoubleType
)

func (t RespType) String() string {
	switch t {
	case SimpleString:
		return "simple"
	case ErrorType:
		return "error"
	case IntegerType:
		return "integer"
	case BulkString:
		return "bulk"
	case ArrayType:
		return "array"
	case NullType:
		return "null"
	case DoubleType:
		return "double"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// RespValue represents a RESP protocol value.
//
// Value holds a string for SimpleString, ErrorType and BulkString, an int64
// for IntegerType, a float64 for DoubleType, a []RespValue for ArrayType and
// nil for NullType. The wire forms "$-1", "*-1" and "_" all decode to
// NullType.
type RespValue struct {
	Type  RespType
	Value interface{}
}

// OK is the +OK status reply.
var OK = Simple("OK")

func Simple(s string) RespValue  { return RespValue{SimpleString, s} }
func Error(msg string) RespValue { return RespValue{ErrorType, msg} }
func Integer(n int64) RespValue  { return RespValue{IntegerType, n} }
func Bulk(s string) RespValue    { return RespValue{BulkString, s} }
func Double(f float64) RespValue { return RespValue{DoubleType, f} }
func Null() RespValue            { return RespValue{Type: NullType} }

// Array returns an array reply. It is never nil, so an empty array stays
// distinguishable from null.
func Array(items ...RespValue) RespValue {
	if items == nil {
		items = []RespValue{}
	}
	return RespValue{ArrayType, items}
}

// Errorf builds an error reply from a format string.
func Errorf(format string, args ...any) RespValue {
	return Error(fmt.Sprintf(format, args...))
}

// FromError turns a command error into an error reply.
func FromError(err error) RespValue {
	return Error(err.Error())
}

// BulkArray returns an array of bulk strings.
func BulkArray(items []string) RespValue {
	out := make([]RespValue, len(items))
	for i, s := range items {
		out[i] = Bulk(s)
	}
	return RespValue{ArrayType, out}
}

func (v RespValue) IsNull() bool  { return v.Type == NullType }
func (v RespValue) IsError() bool { return v.Type == ErrorType }

// Str returns the text of a simple, error or bulk string, and "" otherwise.
func (v RespValue) Str() string {
	s, _ := v.Value.(string)
	return s
}

// Int returns the integer payload, or 0.
func (v RespValue) Int() int64 {
	n, _ := v.Value.(int64)
	return n
}

// Items returns the elements of an array, or nil.
func (v RespValue) Items() []RespValue {
	items, _ := v.Value.([]RespValue)
	return items
}

// Strings flattens an array of bulk or simple strings. It fails if any
// element is not a string, which is how command frames are validated.
func (v RespValue) Strings() ([]string, error) {
	if v.Type != ArrayType {
		return nil, fmt.Errorf("expected array, got %s", v.Type)
	}
	items := v.Items()
	out := make([]string, len(items))
	for i, item := range items {
		if item.Type != BulkString && item.Type != SimpleString {
			return nil, fmt.Errorf("element %d is %s, not a string", i, item.Type)
		}
		out[i] = item.Str()
	}
	return out, nil
}
