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
	"encoding/binary"
	"fmt"
	"math"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ValueReader is a zero-copy view over a single encoded value, resolved
// against a metadata dictionary for field-name lookups inside any nested
// objects it contains. It borrows both raw and its metadata and must not
// outlive them.
type ValueReader struct {
	metadata *MetadataReader
	raw      []byte
}

// NewValueReader wraps a value blob for reading. It validates only the
// leading header byte; deeper structural validation happens lazily as
// accessors are called, matching the teacher's lazy-parse style.
func NewValueReader(metadata *MetadataReader, raw []byte) (*ValueReader, error) {
	if len(raw) < 1 {
		return nil, fmt.Errorf("%w: value blob is empty", ErrMalformedEncoding)
	}
	return &ValueReader{metadata: metadata, raw: raw}, nil
}

// BasicType returns the 2-bit family of v's header byte.
func (v *ValueReader) BasicType() BasicType {
	bt, _ := decodeValueHeader(v.raw[0])
	return bt
}

// PrimitiveTag returns the concrete primitive tag of v, treating a short
// string as TagString. It fails with ErrTypeMismatch if v is an object or
// array.
func (v *ValueReader) PrimitiveTag() (PrimitiveTag, error) {
	return decodePrimitiveTag(v.raw[0])
}

// Type returns v's fully-resolved logical kind.
func (v *ValueReader) Type() Type {
	bt := v.BasicType()
	if bt == BasicObject {
		return KindObject
	}
	if bt == BasicArray {
		return KindArray
	}
	tag, err := v.PrimitiveTag()
	if err != nil {
		return KindNull
	}
	return kindFromTag(bt, tag)
}

func (v *ValueReader) requireTag(want PrimitiveTag) error {
	got, err := v.PrimitiveTag()
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%w: have %s, want %s", ErrTypeMismatch, got, want)
	}
	return nil
}

// body returns the bytes following v's one-byte header.
func (v *ValueReader) body() []byte { return v.raw[1:] }

// IsNull reports whether v is the Null primitive.
func (v *ValueReader) IsNull() bool {
	tag, err := v.PrimitiveTag()
	return err == nil && tag == TagNull
}

// Bool returns v's boolean value.
func (v *ValueReader) Bool() (bool, error) {
	tag, err := v.PrimitiveTag()
	if err != nil {
		return false, err
	}
	switch tag {
	case TagBooleanTrue:
		return true, nil
	case TagBooleanFalse:
		return false, nil
	default:
		return false, fmt.Errorf("%w: have %s, want Boolean", ErrTypeMismatch, tag)
	}
}

// Int8 returns v's Int8 value.
func (v *ValueReader) Int8() (int8, error) {
	if err := v.requireTag(TagInt8); err != nil {
		return 0, err
	}
	if err := checkBounds(v.raw, 1, 2); err != nil {
		return 0, err
	}
	return int8(v.body()[0]), nil
}

// Int16 returns v's Int16 value.
func (v *ValueReader) Int16() (int16, error) {
	if err := v.requireTag(TagInt16); err != nil {
		return 0, err
	}
	if err := checkBounds(v.raw, 1, 3); err != nil {
		return 0, err
	}
	return int16(binary.LittleEndian.Uint16(v.body())), nil
}

// Int32 returns v's Int32 value.
func (v *ValueReader) Int32() (int32, error) {
	if err := v.requireTag(TagInt32); err != nil {
		return 0, err
	}
	if err := checkBounds(v.raw, 1, 5); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(v.body())), nil
}

// Int64 returns v's Int64 value.
func (v *ValueReader) Int64() (int64, error) {
	if err := v.requireTag(TagInt64); err != nil {
		return 0, err
	}
	if err := checkBounds(v.raw, 1, 9); err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(v.body())), nil
}

// Float returns v's single-precision Float value.
func (v *ValueReader) Float() (float32, error) {
	if err := v.requireTag(TagFloat); err != nil {
		return 0, err
	}
	if err := checkBounds(v.raw, 1, 5); err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(v.body())), nil
}

// Double returns v's double-precision Double value.
func (v *ValueReader) Double() (float64, error) {
	if err := v.requireTag(TagDouble); err != nil {
		return 0, err
	}
	if err := checkBounds(v.raw, 1, 9); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(v.body())), nil
}

// Decimal4 returns v's Decimal4 value (32-bit unscaled magnitude).
func (v *ValueReader) Decimal4() (Decimal128, error) {
	if err := v.requireTag(TagDecimal4); err != nil {
		return Decimal128{}, err
	}
	if err := checkBounds(v.raw, 1, 6); err != nil {
		return Decimal128{}, err
	}
	b := v.body()
	scale := b[0]
	unscaled := int32(binary.LittleEndian.Uint32(b[1:5]))
	return DecimalFromInt64(int64(unscaled), scale), nil
}

// Decimal8 returns v's Decimal8 value (64-bit unscaled magnitude).
func (v *ValueReader) Decimal8() (Decimal128, error) {
	if err := v.requireTag(TagDecimal8); err != nil {
		return Decimal128{}, err
	}
	if err := checkBounds(v.raw, 1, 10); err != nil {
		return Decimal128{}, err
	}
	b := v.body()
	scale := b[0]
	unscaled := int64(binary.LittleEndian.Uint64(b[1:9]))
	return DecimalFromInt64(unscaled, scale), nil
}

// Decimal16 returns v's Decimal16 value (up to 128-bit unscaled
// magnitude; the spec's canonical range is 96 bits but this accessor
// never errors on overflow, see Decimal128.Unscaled96 for a strict
// variant).
func (v *ValueReader) Decimal16() (Decimal128, error) {
	if err := v.requireTag(TagDecimal16); err != nil {
		return Decimal128{}, err
	}
	if err := checkBounds(v.raw, 1, 18); err != nil {
		return Decimal128{}, err
	}
	b := v.body()
	scale := b[0]
	unscaled := decimalFromLE(b[1:17], 16)
	return NewDecimal128(unscaled, scale), nil
}

const daysEpochOffset = 0

// Date returns v's Date value as days since the Unix epoch.
func (v *ValueReader) Date() (int32, error) {
	if err := v.requireTag(TagDate); err != nil {
		return 0, err
	}
	if err := checkBounds(v.raw, 1, 5); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(v.body())), nil
}

// Timestamp returns v's microsecond-precision, UTC-normalized Timestamp
// value.
func (v *ValueReader) Timestamp() (time.Time, error) {
	micros, err := v.int64Tagged(TagTimestamp)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMicro(micros).UTC(), nil
}

// TimestampNtz returns v's microsecond-precision, timezone-naive
// TimestampNtz value.
func (v *ValueReader) TimestampNtz() (time.Time, error) {
	micros, err := v.int64Tagged(TagTimestampNtz)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMicro(micros).UTC(), nil
}

// TimestampTzNanos returns v's nanosecond-precision, UTC-normalized
// TimestampTzNanos value.
func (v *ValueReader) TimestampTzNanos() (time.Time, error) {
	nanos, err := v.int64Tagged(TagTimestampTzNanos)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(0, nanos).UTC(), nil
}

// TimestampNtzNanos returns v's nanosecond-precision, timezone-naive
// TimestampNtzNanos value.
func (v *ValueReader) TimestampNtzNanos() (time.Time, error) {
	nanos, err := v.int64Tagged(TagTimestampNtzNanos)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(0, nanos).UTC(), nil
}

// TimeNtz returns v's microsecond-of-day TimeNtz value.
func (v *ValueReader) TimeNtz() (time.Duration, error) {
	micros, err := v.int64Tagged(TagTimeNtz)
	if err != nil {
		return 0, err
	}
	return time.Duration(micros) * time.Microsecond, nil
}

func (v *ValueReader) int64Tagged(want PrimitiveTag) (int64, error) {
	if err := v.requireTag(want); err != nil {
		return 0, err
	}
	if err := checkBounds(v.raw, 1, 9); err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(v.body())), nil
}

// Binary returns v's raw bytes without copying.
func (v *ValueReader) Binary() ([]byte, error) {
	if err := v.requireTag(TagBinary); err != nil {
		return nil, err
	}
	if err := checkBounds(v.raw, 1, 5); err != nil {
		return nil, err
	}
	n := int(binary.LittleEndian.Uint32(v.body()))
	if err := checkBounds(v.raw, 5, 5+n); err != nil {
		return nil, err
	}
	return v.raw[5 : 5+n], nil
}

// StringBytes returns v's string contents as raw UTF-8 bytes without
// copying, for both the short-string and long-string (TagString)
// encodings.
func (v *ValueReader) StringBytes() ([]byte, error) {
	bt := v.BasicType()
	if bt == BasicShortString {
		length := int(v.raw[0] >> 2)
		if err := checkBounds(v.raw, 1, 1+length); err != nil {
			return nil, err
		}
		return v.raw[1 : 1+length], nil
	}
	if err := v.requireTag(TagString); err != nil {
		return nil, err
	}
	if err := checkBounds(v.raw, 1, 5); err != nil {
		return nil, err
	}
	n := int(binary.LittleEndian.Uint32(v.body()))
	if err := checkBounds(v.raw, 5, 5+n); err != nil {
		return nil, err
	}
	return v.raw[5 : 5+n], nil
}

// String returns v's string contents decoded as UTF-8 text.
func (v *ValueReader) String() (string, error) {
	b, err := v.StringBytes()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", ErrInvalidUTF8
	}
	return string(b), nil
}

// UUID returns v's UUID value, decoded from the wire's big-endian byte
// order.
func (v *ValueReader) UUID() (uuid.UUID, error) {
	if err := v.requireTag(TagUUID); err != nil {
		return uuid.UUID{}, err
	}
	if err := checkBounds(v.raw, 1, 17); err != nil {
		return uuid.UUID{}, err
	}
	return uuid.FromBytes(v.body()[:16])
}

// Object returns an ObjectReader over v. It fails with ErrTypeMismatch if
// v's basic type is not Object.
func (v *ValueReader) Object() (*ObjectReader, error) {
	if v.BasicType() != BasicObject {
		return nil, fmt.Errorf("%w: have %s, want Object", ErrTypeMismatch, v.BasicType())
	}
	return newObjectReader(v.metadata, v.raw)
}

// Array returns an ArrayReader over v. It fails with ErrTypeMismatch if
// v's basic type is not Array.
func (v *ValueReader) Array() (*ArrayReader, error) {
	if v.BasicType() != BasicArray {
		return nil, fmt.Errorf("%w: have %s, want Array", ErrTypeMismatch, v.BasicType())
	}
	return newArrayReader(v.metadata, v.raw)
}
