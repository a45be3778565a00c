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
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	timeType    = reflect.TypeOf(time.Time{})
	uuidType    = reflect.TypeOf(uuid.UUID{})
	decimalType = reflect.TypeOf(Decimal128{})
)

// fieldOpts is the parsed form of a `variant:"name,opt1,opt2"` struct tag.
type fieldOpts struct {
	name string
	set  map[string]bool
}

func (o fieldOpts) has(opt string) bool { return o.set[opt] }

func parseFieldTag(tag string) (fieldOpts, bool) {
	if tag == "-" {
		return fieldOpts{}, false
	}
	parts := strings.Split(tag, ",")
	opts := fieldOpts{name: parts[0], set: make(map[string]bool, len(parts)-1)}
	for _, p := range parts[1:] {
		opts.set[p] = true
	}
	return opts, true
}

// Marshal converts val into a (metadata, value) Variant pair.
//
// Slices and arrays become Variant arrays, except []byte which becomes a
// Variant Binary primitive. Maps with string keys and structs become
// Variant objects; struct field names come from the exported field name,
// or a `variant:"name"` tag. A `variant:"-"` tag skips the field. Nested
// tag options (ntz, nanos, date, time, uuid) steer time.Time and []byte
// fields toward the matching primitive the default mapping would not
// choose.
func Marshal(val any) (metadataBytes, valueBytes []byte, err error) {
	tree, err := marshalValue(reflect.ValueOf(val), fieldOpts{set: map[string]bool{}})
	if err != nil {
		return nil, nil, err
	}
	return tree.Encode()
}

func marshalValue(rv reflect.Value, opts fieldOpts) (*VariantValue, error) {
	if !rv.IsValid() {
		return NullValue(), nil
	}
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return NullValue(), nil
		}
		rv = rv.Elem()
	}

	switch rv.Type() {
	case timeType:
		return marshalTime(rv.Interface().(time.Time), opts), nil
	case uuidType:
		return UUIDValue(rv.Interface().(uuid.UUID)), nil
	case decimalType:
		return FromDecimal(rv.Interface().(Decimal128)), nil
	}

	switch rv.Kind() {
	case reflect.Bool:
		return BoolValue(rv.Bool()), nil
	case reflect.Int8:
		return Int8Value(int8(rv.Int())), nil
	case reflect.Int16:
		return Int16Value(int16(rv.Int())), nil
	case reflect.Int32:
		return Int32Value(int32(rv.Int())), nil
	case reflect.Int, reflect.Int64:
		return Int64Value(rv.Int()), nil
	case reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return Int64Value(int64(rv.Uint())), nil
	case reflect.Uint, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return nil, fmt.Errorf("%w: uint64 value %d overflows Int64", ErrUnsupportedPrimitive, u)
		}
		return Int64Value(int64(u)), nil
	case reflect.Float32:
		return FloatValue(float32(rv.Float())), nil
	case reflect.Float64:
		return DoubleValue(rv.Float()), nil
	case reflect.String:
		return StringValue(rv.String()), nil
	case reflect.Slice, reflect.Array:
		return marshalSequence(rv, opts)
	case reflect.Map:
		return marshalMap(rv)
	case reflect.Struct:
		return marshalStruct(rv)
	default:
		return nil, fmt.Errorf("%w: unsupported Go kind %s", ErrUnsupportedPrimitive, rv.Kind())
	}
}

func marshalTime(t time.Time, opts fieldOpts) *VariantValue {
	switch {
	case opts.has("date"):
		days := int32(t.UTC().Sub(time.Unix(0, 0).UTC()).Hours() / 24)
		return DateValue(days)
	case opts.has("time"):
		midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		return TimeNtzValue(t.Sub(midnight))
	case opts.has("ntz") && opts.has("nanos"):
		return TimestampNtzNanosValue(t)
	case opts.has("nanos"):
		return TimestampTzNanosValue(t)
	case opts.has("ntz"):
		return TimestampNtzValue(t)
	default:
		return TimestampValue(t)
	}
}

func marshalSequence(rv reflect.Value, opts fieldOpts) (*VariantValue, error) {
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		b := make([]byte, rv.Len())
		reflect.Copy(reflect.ValueOf(b), rv)
		if opts.has("uuid") {
			u, err := uuid.FromBytes(b)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrUnsupportedPrimitive, err)
			}
			return UUIDValue(u), nil
		}
		return BinaryValue(b), nil
	}
	out := NewArrayValue()
	for i := 0; i < rv.Len(); i++ {
		elem, err := marshalValue(rv.Index(i), fieldOpts{set: map[string]bool{}})
		if err != nil {
			return nil, err
		}
		out.Append(elem)
	}
	return out, nil
}

func marshalMap(rv reflect.Value) (*VariantValue, error) {
	if rv.Type().Key().Kind() != reflect.String {
		return nil, fmt.Errorf("%w: map key must be string, got %s", ErrUnsupportedPrimitive, rv.Type().Key())
	}
	keys := rv.MapKeys()
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })

	out := NewObjectValue()
	for _, k := range keys {
		val, err := marshalValue(rv.MapIndex(k), fieldOpts{set: map[string]bool{}})
		if err != nil {
			return nil, err
		}
		out.SetField(k.String(), val)
	}
	return out, nil
}

func marshalStruct(rv reflect.Value) (*VariantValue, error) {
	typ := rv.Type()
	out := NewObjectValue()
	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		if sf.PkgPath != "" {
			continue
		}
		opts, ok := parseFieldTag(sf.Tag.Get("variant"))
		if !ok {
			continue
		}
		name := opts.name
		if name == "" {
			name = sf.Name
		}
		val, err := marshalValue(rv.Field(i), opts)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", sf.Name, err)
		}
		out.SetField(name, val)
	}
	return out, nil
}

// Unmarshal decodes a (metadata, value) Variant pair into dest, which
// must be a non-nil pointer. The same struct tags Marshal recognizes
// steer the reverse conversion.
func Unmarshal(metadataBytes, valueBytes []byte, dest any) error {
	md, err := NewMetadataReader(metadataBytes)
	if err != nil {
		return err
	}
	vr, err := NewValueReader(md, valueBytes)
	if err != nil {
		return err
	}
	tree, err := DecodeValue(vr)
	if err != nil {
		return err
	}

	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("%w: Unmarshal destination must be a non-nil pointer", ErrTypeMismatch)
	}
	return unmarshalInto(tree, rv.Elem())
}

func unmarshalInto(v *VariantValue, rv reflect.Value) error {
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		return unmarshalInto(v, rv.Elem())
	}

	if rv.Kind() == reflect.Interface && rv.NumMethod() == 0 {
		native, err := toNative(v)
		if err != nil {
			return err
		}
		rv.Set(reflect.ValueOf(native))
		return nil
	}

	switch rv.Type() {
	case timeType:
		t, err := toTime(v)
		if err != nil {
			return err
		}
		rv.Set(reflect.ValueOf(t))
		return nil
	case uuidType:
		if v.Type() != KindUUID {
			return fmt.Errorf("%w: expected UUID, got %s", ErrTypeMismatch, v.Type())
		}
		rv.Set(reflect.ValueOf(v.UUID()))
		return nil
	case decimalType:
		if v.Type() != KindDecimal4 && v.Type() != KindDecimal8 && v.Type() != KindDecimal16 {
			return fmt.Errorf("%w: expected a decimal, got %s", ErrTypeMismatch, v.Type())
		}
		rv.Set(reflect.ValueOf(v.Decimal()))
		return nil
	}

	switch rv.Kind() {
	case reflect.Bool:
		if v.Type() != KindBoolean {
			return fmt.Errorf("%w: expected Boolean, got %s", ErrTypeMismatch, v.Type())
		}
		rv.SetBool(v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := toInt64(v)
		if err != nil {
			return err
		}
		rv.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		i, err := toInt64(v)
		if err != nil {
			return err
		}
		rv.SetUint(uint64(i))
	case reflect.Float32, reflect.Float64:
		f, err := toFloat64(v)
		if err != nil {
			return err
		}
		rv.SetFloat(f)
	case reflect.String:
		if v.Type() != KindString {
			return fmt.Errorf("%w: expected String, got %s", ErrTypeMismatch, v.Type())
		}
		rv.SetString(v.Str())
	case reflect.Slice:
		return unmarshalSlice(v, rv)
	case reflect.Map:
		return unmarshalMap(v, rv)
	case reflect.Struct:
		return unmarshalStruct(v, rv)
	default:
		return fmt.Errorf("%w: unsupported Go kind %s", ErrTypeMismatch, rv.Kind())
	}
	return nil
}

func toInt64(v *VariantValue) (int64, error) {
	switch v.Type() {
	case KindInt8, KindInt16, KindInt32, KindInt64:
		return v.Int64(), nil
	default:
		return 0, fmt.Errorf("%w: expected an integer, got %s", ErrTypeMismatch, v.Type())
	}
}

func toFloat64(v *VariantValue) (float64, error) {
	switch v.Type() {
	case KindFloat:
		return float64(v.Float()), nil
	case KindDouble:
		return v.Double(), nil
	default:
		return 0, fmt.Errorf("%w: expected a float, got %s", ErrTypeMismatch, v.Type())
	}
}

func toTime(v *VariantValue) (time.Time, error) {
	switch v.Type() {
	case KindTimestamp:
		return time.UnixMicro(v.Int64()).UTC(), nil
	case KindTimestampNtz:
		return time.UnixMicro(v.Int64()).UTC(), nil
	case KindTimestampTzNanos, KindTimestampNtzNanos:
		return time.Unix(0, v.Int64()).UTC(), nil
	case KindDate:
		return time.Unix(0, 0).UTC().AddDate(0, 0, int(v.Int64())), nil
	default:
		return time.Time{}, fmt.Errorf("%w: expected a timestamp or date, got %s", ErrTypeMismatch, v.Type())
	}
}

func unmarshalSlice(v *VariantValue, rv reflect.Value) error {
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		switch v.Type() {
		case KindBinary:
			rv.SetBytes(append([]byte(nil), v.Binary()...))
			return nil
		case KindUUID:
			raw, _ := v.UUID().MarshalBinary()
			rv.SetBytes(raw)
			return nil
		}
	}
	if v.Type() != KindArray {
		return fmt.Errorf("%w: expected Array, got %s", ErrTypeMismatch, v.Type())
	}
	elems := v.Elements()
	out := reflect.MakeSlice(rv.Type(), len(elems), len(elems))
	for i, e := range elems {
		if err := unmarshalInto(e, out.Index(i)); err != nil {
			return err
		}
	}
	rv.Set(out)
	return nil
}

func unmarshalMap(v *VariantValue, rv reflect.Value) error {
	if v.Type() != KindObject {
		return fmt.Errorf("%w: expected Object, got %s", ErrTypeMismatch, v.Type())
	}
	if rv.Type().Key().Kind() != reflect.String {
		return fmt.Errorf("%w: map key must be string, got %s", ErrTypeMismatch, rv.Type().Key())
	}
	out := reflect.MakeMap(rv.Type())
	for _, f := range v.Fields() {
		elem := reflect.New(rv.Type().Elem()).Elem()
		if err := unmarshalInto(f.Value, elem); err != nil {
			return err
		}
		out.SetMapIndex(reflect.ValueOf(f.Name).Convert(rv.Type().Key()), elem)
	}
	rv.Set(out)
	return nil
}

func unmarshalStruct(v *VariantValue, rv reflect.Value) error {
	if v.Type() != KindObject {
		return fmt.Errorf("%w: expected Object, got %s", ErrTypeMismatch, v.Type())
	}
	typ := rv.Type()
	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		if sf.PkgPath != "" {
			continue
		}
		opts, ok := parseFieldTag(sf.Tag.Get("variant"))
		if !ok {
			continue
		}
		name := opts.name
		if name == "" {
			name = sf.Name
		}
		fv := v.Field(name)
		if fv == nil {
			continue
		}
		if err := unmarshalInto(fv, rv.Field(i)); err != nil {
			return fmt.Errorf("field %s: %w", sf.Name, err)
		}
	}
	return nil
}

func toNative(v *VariantValue) (any, error) {
	switch v.Type() {
	case KindNull:
		return nil, nil
	case KindBoolean:
		return v.Bool(), nil
	case KindInt8, KindInt16, KindInt32, KindInt64:
		return v.Int64(), nil
	case KindFloat:
		return v.Float(), nil
	case KindDouble:
		return v.Double(), nil
	case KindDecimal4, KindDecimal8, KindDecimal16:
		return v.Decimal(), nil
	case KindDate, KindTimestamp, KindTimestampNtz, KindTimestampTzNanos, KindTimestampNtzNanos:
		return toTime(v)
	case KindTimeNtz:
		return time.Duration(v.Int64()) * time.Microsecond, nil
	case KindBinary:
		return v.Binary(), nil
	case KindString:
		return v.Str(), nil
	case KindUUID:
		return v.UUID(), nil
	case KindArray:
		elems := v.Elements()
		out := make([]any, len(elems))
		for i, e := range elems {
			n, err := toNative(e)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case KindObject:
		out := make(map[string]any, len(v.Fields()))
		for _, f := range v.Fields() {
			n, err := toNative(f.Value)
			if err != nil {
				return nil, err
			}
			out[f.Name] = n
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unhandled kind %s", ErrTypeMismatch, v.Type())
	}
}
