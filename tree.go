// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package variant

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/xxh3"
)

// objectField is one name/value pair of a VariantValue object, kept in
// insertion order.
type objectField struct {
	name  string
	value *VariantValue
}

// VariantValue is a fully materialized, in-memory Variant: every
// primitive, object, and array is expanded into Go values rather than
// borrowed byte slices. Build one with the *Value constructors
// (NullValue, Int8Value, ..., NewObjectValue, NewArrayValue) or
// DecodeValue, compare trees with Equal and Hash, and turn a tree back
// into wire bytes with Encode.
type VariantValue struct {
	kind Type

	boolVal bool
	i64     int64
	f32     float32
	f64     float64
	decimal Decimal128
	bin     []byte
	str     string
	id      uuid.UUID

	fields          []objectField
	allowDuplicates bool
	elements        []*VariantValue
}

// NullValue returns the Null value.
func NullValue() *VariantValue { return &VariantValue{kind: KindNull} }

// BoolValue returns a Boolean value.
func BoolValue(v bool) *VariantValue { return &VariantValue{kind: KindBoolean, boolVal: v} }

// Int8Value returns an Int8 value.
func Int8Value(v int8) *VariantValue { return &VariantValue{kind: KindInt8, i64: int64(v)} }

// Int16Value returns an Int16 value.
func Int16Value(v int16) *VariantValue { return &VariantValue{kind: KindInt16, i64: int64(v)} }

// Int32Value returns an Int32 value.
func Int32Value(v int32) *VariantValue { return &VariantValue{kind: KindInt32, i64: int64(v)} }

// Int64Value returns an Int64 value.
func Int64Value(v int64) *VariantValue { return &VariantValue{kind: KindInt64, i64: v} }

// FloatValue returns a single-precision Float value.
func FloatValue(v float32) *VariantValue { return &VariantValue{kind: KindFloat, f32: v} }

// DoubleValue returns a double-precision Double value.
func DoubleValue(v float64) *VariantValue { return &VariantValue{kind: KindDouble, f64: v} }

// Decimal4Value returns a Decimal4 value.
func Decimal4Value(d Decimal128) *VariantValue { return &VariantValue{kind: KindDecimal4, decimal: d} }

// Decimal8Value returns a Decimal8 value.
func Decimal8Value(d Decimal128) *VariantValue { return &VariantValue{kind: KindDecimal8, decimal: d} }

// Decimal16Value returns a Decimal16 value.
func Decimal16Value(d Decimal128) *VariantValue {
	return &VariantValue{kind: KindDecimal16, decimal: d}
}

// DateValue returns a Date value (days since the Unix epoch).
func DateValue(days int32) *VariantValue { return &VariantValue{kind: KindDate, i64: int64(days)} }

// TimestampValue returns a microsecond-precision, UTC Timestamp value.
func TimestampValue(t time.Time) *VariantValue {
	return &VariantValue{kind: KindTimestamp, i64: t.UnixMicro()}
}

// TimestampNtzValue returns a microsecond-precision, timezone-naive
// TimestampNtz value.
func TimestampNtzValue(t time.Time) *VariantValue {
	return &VariantValue{kind: KindTimestampNtz, i64: t.UnixMicro()}
}

// TimestampTzNanosValue returns a nanosecond-precision, UTC
// TimestampTzNanos value.
func TimestampTzNanosValue(t time.Time) *VariantValue {
	return &VariantValue{kind: KindTimestampTzNanos, i64: t.UnixNano()}
}

// TimestampNtzNanosValue returns a nanosecond-precision, timezone-naive
// TimestampNtzNanos value.
func TimestampNtzNanosValue(t time.Time) *VariantValue {
	return &VariantValue{kind: KindTimestampNtzNanos, i64: t.UnixNano()}
}

// TimeNtzValue returns a microsecond-of-day TimeNtz value.
func TimeNtzValue(d time.Duration) *VariantValue {
	return &VariantValue{kind: KindTimeNtz, i64: d.Microseconds()}
}

// BinaryValue returns a Binary value.
func BinaryValue(v []byte) *VariantValue {
	return &VariantValue{kind: KindBinary, bin: append([]byte(nil), v...)}
}

// StringValue returns a String value.
func StringValue(v string) *VariantValue { return &VariantValue{kind: KindString, str: v} }

// UUIDValue returns a UUID value.
func UUIDValue(v uuid.UUID) *VariantValue { return &VariantValue{kind: KindUUID, id: v} }

// NewObjectValue returns an empty object value.
func NewObjectValue() *VariantValue { return &VariantValue{kind: KindObject} }

// FromDecimal auto-sizes d to the smallest of Decimal4Value, Decimal8Value,
// or Decimal16Value that can hold its unscaled magnitude.
func FromDecimal(d Decimal128) *VariantValue {
	switch {
	case d.FitsInt32():
		return Decimal4Value(d)
	case d.FitsInt64():
		return Decimal8Value(d)
	default:
		return Decimal16Value(d)
	}
}

// SetAllowDuplicateFields controls what happens when SetField is called
// with a name already present: false (the default) keeps map semantics
// (overwrite in place); true appends a second field with the same name,
// which Encode then resolves as last-wins at the wire level.
func (v *VariantValue) SetAllowDuplicateFields(allow bool) *VariantValue {
	v.allowDuplicates = allow
	return v
}

// SetField adds or replaces a field on an object value.
func (v *VariantValue) SetField(name string, value *VariantValue) *VariantValue {
	if !v.allowDuplicates {
		for i := range v.fields {
			if v.fields[i].name == name {
				v.fields[i].value = value
				return v
			}
		}
	}
	v.fields = append(v.fields, objectField{name: name, value: value})
	return v
}

// Field is one name/value pair returned by Fields.
type Field struct {
	Name  string
	Value *VariantValue
}

// Fields returns the object's fields in insertion order.
func (v *VariantValue) Fields() []Field {
	out := make([]Field, len(v.fields))
	for i, f := range v.fields {
		out[i] = Field{Name: f.name, Value: f.value}
	}
	return out
}

// Field returns the named field, or nil if it is absent.
func (v *VariantValue) Field(name string) *VariantValue {
	for _, f := range v.fields {
		if f.name == name {
			return f.value
		}
	}
	return nil
}

// NewArrayValue returns an array value containing elements in order.
func NewArrayValue(elements ...*VariantValue) *VariantValue {
	return &VariantValue{kind: KindArray, elements: elements}
}

// Append adds an element to an array value.
func (v *VariantValue) Append(elem *VariantValue) *VariantValue {
	v.elements = append(v.elements, elem)
	return v
}

// Elements returns the array's elements in order.
func (v *VariantValue) Elements() []*VariantValue { return v.elements }

// Type returns v's logical kind.
func (v *VariantValue) Type() Type { return v.kind }

// Bool, Int64, Float, Double, Decimal, Str, Binary, and UUID
// return v's scalar payload, assuming the caller has already checked
// Type(). They are meant for code that already knows v's kind, not as a
// generic accessor API; use a type switch on Type() for that.
func (v *VariantValue) Bool() bool           { return v.boolVal }
func (v *VariantValue) Int64() int64         { return v.i64 }
func (v *VariantValue) Float() float32       { return v.f32 }
func (v *VariantValue) Double() float64      { return v.f64 }
func (v *VariantValue) Decimal() Decimal128  { return v.decimal }
func (v *VariantValue) Str() string          { return v.str }
func (v *VariantValue) Binary() []byte       { return v.bin }
func (v *VariantValue) UUID() uuid.UUID      { return v.id }

// Equal reports whether v and other encode the same logical value.
// Object field order is ignored; array element order is significant.
func (v *VariantValue) Equal(other *VariantValue) bool {
	if v == nil || other == nil {
		return v == other
	}
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBoolean:
		return v.boolVal == other.boolVal
	case KindInt8, KindInt16, KindInt32, KindInt64, KindDate, KindTimestamp,
		KindTimestampNtz, KindTimestampTzNanos, KindTimestampNtzNanos, KindTimeNtz:
		return v.i64 == other.i64
	case KindFloat:
		return v.f32 == other.f32
	case KindDouble:
		return v.f64 == other.f64
	case KindDecimal4, KindDecimal8, KindDecimal16:
		return v.decimal.scale == other.decimal.scale && v.decimal.unscaled.Cmp(other.decimal.unscaled) == 0
	case KindBinary:
		return bytes.Equal(v.bin, other.bin)
	case KindString:
		return v.str == other.str
	case KindUUID:
		return v.id == other.id
	case KindObject:
		if len(v.fields) != len(other.fields) {
			return false
		}
		om := make(map[string]*VariantValue, len(other.fields))
		for _, f := range other.fields {
			om[f.name] = f.value
		}
		for _, f := range v.fields {
			ov, ok := om[f.name]
			if !ok || !f.value.Equal(ov) {
				return false
			}
		}
		return true
	case KindArray:
		if len(v.elements) != len(other.elements) {
			return false
		}
		for i := range v.elements {
			if !v.elements[i].Equal(other.elements[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Hash returns a structural hash of v consistent with Equal: two values
// that compare Equal always hash the same. Object hashing is
// order-independent (XOR of per-field hashes); array hashing is
// order-dependent.
func (v *VariantValue) Hash() uint64 {
	switch v.kind {
	case KindObject:
		var acc uint64
		for _, f := range v.fields {
			acc ^= xxh3.HashString(f.name) ^ f.value.Hash()
		}
		return acc
	case KindArray:
		buf := make([]byte, 0, 8*len(v.elements))
		var tmp [8]byte
		for _, e := range v.elements {
			binary.LittleEndian.PutUint64(tmp[:], e.Hash())
			buf = append(buf, tmp[:]...)
		}
		return xxh3.Hash(buf)
	default:
		return xxh3.Hash(v.leafBytes())
	}
}

// leafBytes renders a scalar value's canonical bytes for hashing.
func (v *VariantValue) leafBytes() []byte {
	buf := make([]byte, 0, 24)
	buf = append(buf, byte(v.kind))
	switch v.kind {
	case KindNull:
	case KindBoolean:
		if v.boolVal {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
	case KindInt8, KindInt16, KindInt32, KindInt64, KindDate, KindTimestamp,
		KindTimestampNtz, KindTimestampTzNanos, KindTimestampNtzNanos, KindTimeNtz:
		var tmp [8]byte
		binary.LittleEndian.PutUint64(tmp[:], uint64(v.i64))
		buf = append(buf, tmp[:]...)
	case KindFloat:
		f := v.f32
		if f == 0 {
			f = 0 // -0 == +0 under Equal, so hash both as +0
		}
		var tmp [4]byte
		binary.LittleEndian.PutUint32(tmp[:], math.Float32bits(f))
		buf = append(buf, tmp[:]...)
	case KindDouble:
		f := v.f64
		if f == 0 {
			f = 0 // -0 == +0 under Equal, so hash both as +0
		}
		var tmp [8]byte
		binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(f))
		buf = append(buf, tmp[:]...)
	case KindDecimal4, KindDecimal8, KindDecimal16:
		buf = append(buf, v.decimal.scale)
		buf = append(buf, v.decimal.unscaled.Bytes()...)
	case KindBinary:
		buf = append(buf, v.bin...)
	case KindString:
		buf = append(buf, v.str...)
	case KindUUID:
		raw, _ := v.id.MarshalBinary()
		buf = append(buf, raw...)
	}
	return buf
}

// Encode serializes v into a fresh (metadata, value) pair. Every field
// name reachable from v is registered with a MetadataBuilder in a first
// pass, so that the sorted dictionary it produces is complete before any
// field ID is baked into an object header in the second pass.
func (v *VariantValue) Encode() (metadataBytes, valueBytes []byte, err error) {
	mb := NewMetadataBuilder()
	v.collectNames(mb)
	metadataBytes, remap := mb.Build()

	vb := NewValueBuilder()
	if err := v.encodeInto(vb, mb, remap); err != nil {
		return nil, nil, err
	}
	return metadataBytes, vb.Bytes(), nil
}

func (v *VariantValue) collectNames(mb *MetadataBuilder) {
	switch v.kind {
	case KindObject:
		for _, f := range v.fields {
			mb.Add(f.name)
			f.value.collectNames(mb)
		}
	case KindArray:
		for _, e := range v.elements {
			e.collectNames(mb)
		}
	}
}

func (v *VariantValue) encodeInto(vb *ValueBuilder, mb *MetadataBuilder, remap []int) error {
	switch v.kind {
	case KindNull:
		return vb.AppendNull()
	case KindBoolean:
		return vb.AppendBool(v.boolVal)
	case KindInt8:
		return vb.AppendInt8(int8(v.i64))
	case KindInt16:
		return vb.AppendInt16(int16(v.i64))
	case KindInt32:
		return vb.AppendInt32(int32(v.i64))
	case KindInt64:
		return vb.AppendInt64(v.i64)
	case KindFloat:
		return vb.AppendFloat(v.f32)
	case KindDouble:
		return vb.AppendDouble(v.f64)
	case KindDecimal4:
		return vb.AppendDecimal4(v.decimal)
	case KindDecimal8:
		return vb.AppendDecimal8(v.decimal)
	case KindDecimal16:
		return vb.AppendDecimal16(v.decimal)
	case KindDate:
		return vb.AppendDate(int32(v.i64))
	case KindTimestamp:
		return vb.AppendTimestamp(time.UnixMicro(v.i64).UTC())
	case KindTimestampNtz:
		return vb.AppendTimestampNtz(time.UnixMicro(v.i64).UTC())
	case KindTimestampTzNanos:
		return vb.AppendTimestampTzNanos(time.Unix(0, v.i64).UTC())
	case KindTimestampNtzNanos:
		return vb.AppendTimestampNtzNanos(time.Unix(0, v.i64).UTC())
	case KindTimeNtz:
		return vb.AppendTimeNtz(time.Duration(v.i64) * time.Microsecond)
	case KindBinary:
		return vb.AppendBinary(v.bin)
	case KindString:
		return vb.AppendString(v.str)
	case KindUUID:
		return vb.AppendUUID(v.id)
	case KindObject:
		start := vb.Offset()
		entries := make([]FieldEntry, 0, len(v.fields))
		for _, f := range v.fields {
			provisionalID, ok := mb.ID(f.name)
			if !ok {
				return fmt.Errorf("%w: field %q was not registered before encoding", ErrMalformedEncoding, f.name)
			}
			entry := vb.NextField(start, remap[provisionalID])
			if err := f.value.encodeInto(vb, mb, remap); err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		return vb.FinishObject(start, entries, v.allowDuplicates)
	case KindArray:
		start := vb.Offset()
		offsets := make([]int, 0, len(v.elements))
		for _, e := range v.elements {
			offsets = append(offsets, vb.Offset()-start)
			if err := e.encodeInto(vb, mb, remap); err != nil {
				return err
			}
		}
		return vb.FinishArray(start, offsets)
	}
	return fmt.Errorf("%w: unhandled kind %s", ErrMalformedEncoding, v.kind)
}

// DecodeValue fully materializes vr into a VariantValue tree, recursing
// into any nested objects and arrays.
func DecodeValue(vr *ValueReader) (*VariantValue, error) {
	bt := vr.BasicType()
	switch bt {
	case BasicObject:
		obj, err := vr.Object()
		if err != nil {
			return nil, err
		}
		out := NewObjectValue()
		for i := 0; i < obj.NumFields(); i++ {
			name, err := obj.GetFieldName(i)
			if err != nil {
				return nil, err
			}
			fv, err := obj.GetFieldValue(i)
			if err != nil {
				return nil, err
			}
			decoded, err := DecodeValue(fv)
			if err != nil {
				return nil, err
			}
			out.SetField(name, decoded)
		}
		return out, nil
	case BasicArray:
		arr, err := vr.Array()
		if err != nil {
			return nil, err
		}
		out := NewArrayValue()
		for i := 0; i < arr.NumElements(); i++ {
			ev, err := arr.GetElement(i)
			if err != nil {
				return nil, err
			}
			decoded, err := DecodeValue(ev)
			if err != nil {
				return nil, err
			}
			out.Append(decoded)
		}
		return out, nil
	default:
		return decodePrimitiveValue(vr)
	}
}

func decodePrimitiveValue(vr *ValueReader) (*VariantValue, error) {
	tag, err := vr.PrimitiveTag()
	if err != nil {
		return nil, err
	}
	switch tag {
	case TagNull:
		return NullValue(), nil
	case TagBooleanTrue, TagBooleanFalse:
		b, err := vr.Bool()
		return BoolValue(b), err
	case TagInt8:
		x, err := vr.Int8()
		return Int8Value(x), err
	case TagInt16:
		x, err := vr.Int16()
		return Int16Value(x), err
	case TagInt32:
		x, err := vr.Int32()
		return Int32Value(x), err
	case TagInt64:
		x, err := vr.Int64()
		return Int64Value(x), err
	case TagFloat:
		x, err := vr.Float()
		return FloatValue(x), err
	case TagDouble:
		x, err := vr.Double()
		return DoubleValue(x), err
	case TagDecimal4:
		d, err := vr.Decimal4()
		return Decimal4Value(d), err
	case TagDecimal8:
		d, err := vr.Decimal8()
		return Decimal8Value(d), err
	case TagDecimal16:
		d, err := vr.Decimal16()
		return Decimal16Value(d), err
	case TagDate:
		x, err := vr.Date()
		return DateValue(x), err
	case TagTimestamp:
		t, err := vr.Timestamp()
		return TimestampValue(t), err
	case TagTimestampNtz:
		t, err := vr.TimestampNtz()
		return TimestampNtzValue(t), err
	case TagTimestampTzNanos:
		t, err := vr.TimestampTzNanos()
		return TimestampTzNanosValue(t), err
	case TagTimestampNtzNanos:
		t, err := vr.TimestampNtzNanos()
		return TimestampNtzNanosValue(t), err
	case TagTimeNtz:
		d, err := vr.TimeNtz()
		return TimeNtzValue(d), err
	case TagBinary:
		b, err := vr.Binary()
		return BinaryValue(b), err
	case TagString:
		s, err := vr.String()
		return StringValue(s), err
	case TagUUID:
		u, err := vr.UUID()
		return UUIDValue(u), err
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedPrimitive, tag)
}
