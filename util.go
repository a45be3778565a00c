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

// checkBounds reports whether [low, high) is within raw.
func checkBounds(raw []byte, low, high int) error {
	n := len(raw)
	if low < 0 || low > n {
		return fmt.Errorf("%w: position %d out of bounds (max %d)", ErrMalformedEncoding, low, n)
	}
	if high < low || high > n {
		return fmt.Errorf("%w: position %d out of bounds (max %d)", ErrMalformedEncoding, high, n)
	}
	return nil
}

// primitivePayloadSize returns the number of bytes following a
// primitive's header byte, consulting raw for the two variable-length
// kinds (Binary and the long String form).
func primitivePayloadSize(tag PrimitiveTag, raw []byte) (int, error) {
	switch tag {
	case TagNull, TagBooleanTrue, TagBooleanFalse:
		return 0, nil
	case TagInt8:
		return 1, nil
	case TagInt16:
		return 2, nil
	case TagInt32, TagFloat, TagDate:
		return 4, nil
	case TagInt64, TagDouble, TagTimestamp, TagTimestampNtz, TagTimeNtz,
		TagTimestampTzNanos, TagTimestampNtzNanos:
		return 8, nil
	case TagDecimal4:
		return 5, nil
	case TagDecimal8:
		return 9, nil
	case TagDecimal16:
		return 17, nil
	case TagUUID:
		return 16, nil
	case TagBinary, TagString:
		if err := checkBounds(raw, 1, 5); err != nil {
			return 0, err
		}
		n, err := readLEUint(raw, 1, 4)
		if err != nil {
			return 0, err
		}
		return 4 + int(n), nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedPrimitive, int(tag))
	}
}

// valueByteSize returns the total length, header included, of the value
// encoded at the start of raw. raw may extend beyond the value; only a
// prefix is consulted. Containers derive their size from their own
// header's final offset-table entry rather than from a sibling's start
// offset, since the format only guarantees each offset is a valid start
// position, not that offsets are monotonically increasing.
func valueByteSize(raw []byte) (int, error) {
	if err := checkBounds(raw, 0, 1); err != nil {
		return 0, err
	}
	bt, payload := decodeValueHeader(raw[0])
	switch bt {
	case BasicShortString:
		length := int(payload)
		if err := checkBounds(raw, 0, 1+length); err != nil {
			return 0, err
		}
		return 1 + length, nil
	case BasicPrimitive:
		tag := PrimitiveTag(payload)
		if err := validPrimitiveTag(tag); err != nil {
			return 0, err
		}
		n, err := primitivePayloadSize(tag, raw)
		if err != nil {
			return 0, err
		}
		return 1 + n, nil
	case BasicObject:
		fieldIDSize, offsetSize, isLarge := unpackObjectHeader(payload)
		countWidth := 1
		if isLarge {
			countWidth = 4
		}
		if err := checkBounds(raw, 1, 1+countWidth); err != nil {
			return 0, err
		}
		count64, err := readLEUint(raw, 1, countWidth)
		if err != nil {
			return 0, err
		}
		n := int(count64)
		idStart := 1 + countWidth
		offsetStart := idStart + n*fieldIDSize
		dataStart := offsetStart + (n+1)*offsetSize
		lastOffset, err := readLEUint(raw, offsetStart+n*offsetSize, offsetSize)
		if err != nil {
			return 0, err
		}
		return dataStart + int(lastOffset), nil
	case BasicArray:
		offsetSize, isLarge := unpackArrayHeader(payload)
		countWidth := 1
		if isLarge {
			countWidth = 4
		}
		if err := checkBounds(raw, 1, 1+countWidth); err != nil {
			return 0, err
		}
		count64, err := readLEUint(raw, 1, countWidth)
		if err != nil {
			return 0, err
		}
		n := int(count64)
		offsetStart := 1 + countWidth
		dataStart := offsetStart + (n+1)*offsetSize
		lastOffset, err := readLEUint(raw, offsetStart+n*offsetSize, offsetSize)
		if err != nil {
			return 0, err
		}
		return dataStart + int(lastOffset), nil
	default:
		return 0, fmt.Errorf("%w: unknown basic type", ErrMalformedEncoding)
	}
}
