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

import "fmt"

// BasicType is the 2-bit family every value header encodes in its low
// bits.
type BasicType int

const (
	BasicUndefined   BasicType = -1
	BasicPrimitive   BasicType = 0
	BasicShortString BasicType = 1
	BasicObject      BasicType = 2
	BasicArray       BasicType = 3
)

func (bt BasicType) String() string {
	switch bt {
	case BasicPrimitive:
		return "Primitive"
	case BasicShortString:
		return "ShortString"
	case BasicObject:
		return "Object"
	case BasicArray:
		return "Array"
	}
	return "Undefined"
}

func basicTypeFromHeader(hdr byte) BasicType {
	return BasicType(hdr & 0x3)
}

// PrimitiveTag is the 6-bit concrete primitive kind, assigned by the
// spec's ID table.
type PrimitiveTag int

const (
	TagInvalid PrimitiveTag = -1

	TagNull               PrimitiveTag = 0
	TagBooleanTrue        PrimitiveTag = 1
	TagBooleanFalse       PrimitiveTag = 2
	TagInt8               PrimitiveTag = 3
	TagInt16              PrimitiveTag = 4
	TagInt32              PrimitiveTag = 5
	TagInt64              PrimitiveTag = 6
	TagDouble             PrimitiveTag = 7
	TagDecimal4           PrimitiveTag = 8
	TagDecimal8           PrimitiveTag = 9
	TagDecimal16          PrimitiveTag = 10
	TagDate               PrimitiveTag = 11
	TagTimestamp          PrimitiveTag = 12
	TagTimestampNtz       PrimitiveTag = 13
	TagFloat              PrimitiveTag = 14
	TagBinary             PrimitiveTag = 15
	TagString             PrimitiveTag = 16
	TagTimeNtz            PrimitiveTag = 17
	TagTimestampTzNanos   PrimitiveTag = 18
	TagTimestampNtzNanos  PrimitiveTag = 19
	TagUUID               PrimitiveTag = 20

	maxKnownTag = TagUUID
)

func (t PrimitiveTag) String() string {
	switch t {
	case TagNull:
		return "Null"
	case TagBooleanTrue:
		return "BooleanTrue"
	case TagBooleanFalse:
		return "BooleanFalse"
	case TagInt8:
		return "Int8"
	case TagInt16:
		return "Int16"
	case TagInt32:
		return "Int32"
	case TagInt64:
		return "Int64"
	case TagDouble:
		return "Double"
	case TagDecimal4:
		return "Decimal4"
	case TagDecimal8:
		return "Decimal8"
	case TagDecimal16:
		return "Decimal16"
	case TagDate:
		return "Date"
	case TagTimestamp:
		return "Timestamp"
	case TagTimestampNtz:
		return "TimestampNtz"
	case TagFloat:
		return "Float"
	case TagBinary:
		return "Binary"
	case TagString:
		return "String"
	case TagTimeNtz:
		return "TimeNtz"
	case TagTimestampTzNanos:
		return "TimestampTzNanos"
	case TagTimestampNtzNanos:
		return "TimestampNtzNanos"
	case TagUUID:
		return "UUID"
	}
	return "Invalid"
}

func validPrimitiveTag(t PrimitiveTag) error {
	if t < TagNull || t > maxKnownTag {
		return fmt.Errorf("%w: %d", ErrUnsupportedPrimitive, int(t))
	}
	return nil
}

// Type is the fully-resolved logical type of a ValueReader or
// VariantValue: BasicType plus, for primitives, the concrete PrimitiveTag
// folded together so callers can switch on one value.
type Type int

const (
	KindNull Type = iota
	KindBoolean
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindFloat
	KindDouble
	KindDecimal4
	KindDecimal8
	KindDecimal16
	KindDate
	KindTimestamp
	KindTimestampNtz
	KindTimeNtz
	KindTimestampTzNanos
	KindTimestampNtzNanos
	KindBinary
	KindString
	KindUUID
	KindObject
	KindArray
)

func (k Type) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindBoolean:
		return "Boolean"
	case KindInt8:
		return "Int8"
	case KindInt16:
		return "Int16"
	case KindInt32:
		return "Int32"
	case KindInt64:
		return "Int64"
	case KindFloat:
		return "Float"
	case KindDouble:
		return "Double"
	case KindDecimal4:
		return "Decimal4"
	case KindDecimal8:
		return "Decimal8"
	case KindDecimal16:
		return "Decimal16"
	case KindDate:
		return "Date"
	case KindTimestamp:
		return "Timestamp"
	case KindTimestampNtz:
		return "TimestampNtz"
	case KindTimeNtz:
		return "TimeNtz"
	case KindTimestampTzNanos:
		return "TimestampTzNanos"
	case KindTimestampNtzNanos:
		return "TimestampNtzNanos"
	case KindBinary:
		return "Binary"
	case KindString:
		return "String"
	case KindUUID:
		return "UUID"
	case KindObject:
		return "Object"
	case KindArray:
		return "Array"
	}
	return "Unknown"
}

func kindFromTag(bt BasicType, tag PrimitiveTag) Type {
	if bt == BasicShortString {
		return KindString
	}
	switch tag {
	case TagNull:
		return KindNull
	case TagBooleanTrue, TagBooleanFalse:
		return KindBoolean
	case TagInt8:
		return KindInt8
	case TagInt16:
		return KindInt16
	case TagInt32:
		return KindInt32
	case TagInt64:
		return KindInt64
	case TagFloat:
		return KindFloat
	case TagDouble:
		return KindDouble
	case TagDecimal4:
		return KindDecimal4
	case TagDecimal8:
		return KindDecimal8
	case TagDecimal16:
		return KindDecimal16
	case TagDate:
		return KindDate
	case TagTimestamp:
		return KindTimestamp
	case TagTimestampNtz:
		return KindTimestampNtz
	case TagTimeNtz:
		return KindTimeNtz
	case TagTimestampTzNanos:
		return KindTimestampTzNanos
	case TagTimestampNtzNanos:
		return KindTimestampNtzNanos
	case TagBinary:
		return KindBinary
	case TagString:
		return KindString
	case TagUUID:
		return KindUUID
	}
	return KindNull
}
