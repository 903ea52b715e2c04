// this code is adapted from https://github.com/brunocalza/go-bustub
// there is license and copyright notice in licenses/go-bustub dir

package types

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Value is a view over SQL data held by a Tuple or Column. Every value
// carries its TypeID plus exactly one populated payload field; comparisons
// and arithmetic dispatch on the TypeID.
type Value struct {
	valueType TypeID
	isNull    bool
	integer   *int32
	boolean   *bool
	varchar   *string
	float     *float32
}

func NewInteger(value int32) Value {
	return Value{valueType: Integer, integer: &value}
}

func NewFloat(value float32) Value {
	return Value{valueType: Float, float: &value}
}

func NewBoolean(value bool) Value {
	return Value{valueType: Boolean, boolean: &value}
}

func NewVarchar(value string) Value {
	return Value{valueType: Varchar, varchar: &value}
}

// NewValueFromBytes deserializes a Value of valueType from data, mirroring
// the layout Serialize writes: a 1-byte null flag followed by the payload.
func NewValueFromBytes(data []byte, valueType TypeID) Value {
	buf := bytes.NewBuffer(data)
	var isNull bool
	binary.Read(buf, binary.LittleEndian, &isNull)

	switch valueType {
	case Integer:
		var v int32
		binary.Read(buf, binary.LittleEndian, &v)
		ret := NewInteger(v)
		ret.isNull = isNull
		return ret
	case Float:
		var v float32
		binary.Read(buf, binary.LittleEndian, &v)
		ret := NewFloat(v)
		ret.isNull = isNull
		return ret
	case Varchar:
		var length uint16
		binary.Read(buf, binary.LittleEndian, &length)
		ret := NewVarchar(string(data[3 : 3+length]))
		ret.isNull = isNull
		return ret
	case Boolean:
		var v bool
		binary.Read(buf, binary.LittleEndian, &v)
		ret := NewBoolean(v)
		ret.isNull = isNull
		return ret
	default:
		panic(fmt.Sprintf("NewValueFromBytes: unsupported type %v", valueType))
	}
}

func (v Value) ValueType() TypeID { return v.valueType }
func (v Value) IsNull() bool      { return v.isNull }

func (v Value) ToInteger() int32  { return *v.integer }
func (v Value) ToFloat() float32  { return *v.float }
func (v Value) ToBoolean() bool   { return *v.boolean }
func (v Value) ToVarchar() string { return *v.varchar }

func (v Value) CompareEquals(right Value) bool {
	if v.isNull || right.isNull {
		return v.isNull == right.isNull
	}
	switch v.valueType {
	case Integer, Tinyint, Smallint, BigInt:
		return *v.integer == *right.integer
	case Float, Decimal:
		return *v.float == *right.float
	case Varchar:
		return *v.varchar == *right.varchar
	case Boolean:
		return *v.boolean == *right.boolean
	}
	return false
}

func (v Value) CompareNotEquals(right Value) bool { return !v.CompareEquals(right) }

func (v Value) CompareLessThan(right Value) bool {
	if v.isNull || right.isNull {
		return false
	}
	switch v.valueType {
	case Integer, Tinyint, Smallint, BigInt:
		return *v.integer < *right.integer
	case Float, Decimal:
		return *v.float < *right.float
	case Varchar:
		return *v.varchar < *right.varchar
	default:
		return false
	}
}

func (v Value) CompareLessThanOrEqual(right Value) bool {
	return v.CompareLessThan(right) || v.CompareEquals(right)
}

func (v Value) CompareGreaterThan(right Value) bool {
	if v.isNull || right.isNull {
		return false
	}
	return right.CompareLessThan(v)
}

func (v Value) CompareGreaterThanOrEqual(right Value) bool {
	return v.CompareGreaterThan(right) || v.CompareEquals(right)
}

// Add is defined for the numeric types an aggregation's SUM/COUNT touches.
func (v Value) Add(other Value) Value {
	if other.isNull {
		return v
	}
	if v.isNull {
		return other
	}
	switch v.valueType {
	case Integer, Tinyint, Smallint, BigInt:
		return NewInteger(*v.integer + *other.integer)
	case Float, Decimal:
		return NewFloat(*v.float + *other.float)
	default:
		panic("Value.Add: not a numeric type")
	}
}

func (v Value) Max(other Value) Value {
	if other.isNull {
		return v
	}
	if v.isNull || v.CompareGreaterThanOrEqual(other) {
		return v
	}
	return other
}

func (v Value) Min(other Value) Value {
	if other.isNull {
		return v
	}
	if v.isNull || v.CompareLessThanOrEqual(other) {
		return v
	}
	return other
}

// Size returns the number of bytes Serialize produces for this value.
func (v Value) Size() uint32 {
	switch v.valueType {
	case Varchar:
		return uint32(len(*v.varchar)) + 1 + 2
	default:
		return v.valueType.Size() + 1
	}
}

// Serialize packs the value as a 1-byte null flag followed by the
// type-specific payload, the layout NewValueFromBytes expects.
func (v Value) Serialize() []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, v.isNull)
	switch v.valueType {
	case Integer, Tinyint, Smallint, BigInt:
		var iv int32
		if v.integer != nil {
			iv = *v.integer
		}
		binary.Write(buf, binary.LittleEndian, iv)
	case Float, Decimal:
		var fv float32
		if v.float != nil {
			fv = *v.float
		}
		binary.Write(buf, binary.LittleEndian, fv)
	case Varchar:
		s := ""
		if v.varchar != nil {
			s = *v.varchar
		}
		binary.Write(buf, binary.LittleEndian, uint16(len(s)))
		buf.WriteString(s)
	case Boolean:
		var bv bool
		if v.boolean != nil {
			bv = *v.boolean
		}
		binary.Write(buf, binary.LittleEndian, bv)
	default:
		panic(fmt.Sprintf("Value.Serialize: unsupported type %v", v.valueType))
	}
	return buf.Bytes()
}

func (v Value) String() string {
	if v.isNull {
		return "NULL"
	}
	switch v.valueType {
	case Integer, Tinyint, Smallint, BigInt:
		return fmt.Sprintf("%d", *v.integer)
	case Float, Decimal:
		return fmt.Sprintf("%g", *v.float)
	case Varchar:
		return *v.varchar
	case Boolean:
		return fmt.Sprintf("%t", *v.boolean)
	default:
		return "?"
	}
}
