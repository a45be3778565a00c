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

const (
	metadataVersionMask  = 0x0F
	metadataReservedMask = 0x10
	metadataSortedMask   = 0x20
	metadataOffsetMask   = 0xC0

	metadataVersion = 1

	maxShortStringLen = 63
)

// readLEUint reads a little-endian unsigned integer of the given width
// (1..4 bytes) from raw starting at offset.
func readLEUint(raw []byte, offset, width int) (uint64, error) {
	if width < 1 || width > 4 {
		return 0, fmt.Errorf("%w: invalid width %d", ErrMalformedEncoding, width)
	}
	if err := checkBounds(raw, offset, offset+width); err != nil {
		return 0, err
	}
	var v uint64
	for i := 0; i < width; i++ {
		v |= uint64(raw[offset+i]) << (8 * i)
	}
	return v, nil
}

// writeLEUint writes v into dst (which must have length >= width) as a
// little-endian unsigned integer of the given width.
func writeLEUint(dst []byte, v uint64, width int) {
	for i := 0; i < width; i++ {
		dst[i] = byte(v)
		v >>= 8
	}
}

// minWidth returns the narrowest width in {1,2,3,4} bytes that can hold v
// unsigned.
func minWidth(v uint64) int {
	switch {
	case v <= 0xFF:
		return 1
	case v <= 0xFFFF:
		return 2
	case v <= 0xFFFFFF:
		return 3
	default:
		return 4
	}
}

// decodeMetadataHeader unpacks the first byte of a metadata blob. Bit 4 is
// reserved and must be zero; a set reserved bit is a malformed encoding,
// not a version mismatch.
func decodeMetadataHeader(hdr byte) (version int, sorted bool, offsetSize int, err error) {
	version = int(hdr & metadataVersionMask)
	if version != metadataVersion {
		return version, false, 0, fmt.Errorf("%w: got %d, want %d", ErrUnsupportedVersion, version, metadataVersion)
	}
	if hdr&metadataReservedMask != 0 {
		return version, false, 0, fmt.Errorf("%w: reserved bit 4 is set", ErrMalformedEncoding)
	}
	sorted = hdr&metadataSortedMask != 0
	offsetSize = int((hdr&metadataOffsetMask)>>6) + 1
	return version, sorted, offsetSize, nil
}

// encodeMetadataHeader packs a metadata header byte. sorted must be true
// for any metadata this package builds (§6 requires it). Bit 4 is left
// zero, matching the reserved bit decodeMetadataHeader enforces.
func encodeMetadataHeader(sorted bool, offsetSize int) byte {
	hdr := byte(metadataVersion)
	if sorted {
		hdr |= metadataSortedMask
	}
	hdr |= byte(offsetSize-1) << 6
	return hdr
}

// decodeValueHeader splits a value header byte into its basic type and
// 6-bit value-header payload.
func decodeValueHeader(hdr byte) (BasicType, byte) {
	return basicTypeFromHeader(hdr), hdr >> 2
}

// primitiveHeader packs a primitive value header byte for tag.
func primitiveHeader(tag PrimitiveTag) (byte, error) {
	if err := validPrimitiveTag(tag); err != nil {
		return 0, err
	}
	return byte(tag<<2) | byte(BasicPrimitive), nil
}

// decodePrimitiveTag extracts the primitive tag from a value header byte,
// treating a ShortString basic type as the String primitive.
func decodePrimitiveTag(hdr byte) (PrimitiveTag, error) {
	bt := basicTypeFromHeader(hdr)
	switch bt {
	case BasicShortString:
		return TagString, nil
	case BasicPrimitive:
		tag := PrimitiveTag(hdr >> 2)
		if err := validPrimitiveTag(tag); err != nil {
			return TagInvalid, err
		}
		return tag, nil
	default:
		return TagInvalid, fmt.Errorf("%w: basic type %s is not primitive or short string", ErrTypeMismatch, bt)
	}
}

// shortStringHeader packs a short-string header byte for a string of the
// given byte length, which must be 0..63.
func shortStringHeader(length int) (byte, error) {
	if length < 0 || length > maxShortStringLen {
		return 0, fmt.Errorf("%w: short string length %d out of range", ErrMalformedEncoding, length)
	}
	return byte(length<<2) | byte(BasicShortString), nil
}

// objectHeader packs an object container header byte.
func objectHeader(fieldIDSize, offsetSize int, isLarge bool) (byte, error) {
	if fieldIDSize < 1 || fieldIDSize > 4 || offsetSize < 1 || offsetSize > 4 {
		return 0, fmt.Errorf("%w: invalid object header widths (%d, %d)", ErrMalformedEncoding, fieldIDSize, offsetSize)
	}
	info := byte(offsetSize - 1)
	info |= byte(fieldIDSize-1) << 2
	if isLarge {
		info |= 1 << 4
	}
	return info<<2 | byte(BasicObject), nil
}

// unpackObjectHeader splits the value-header payload byte (already
// shifted past basic type) of an object into its component widths.
func unpackObjectHeader(valueHdr byte) (fieldIDSize, offsetSize int, isLarge bool) {
	offsetSize = int(valueHdr&0x03) + 1
	fieldIDSize = int((valueHdr>>2)&0x03) + 1
	isLarge = valueHdr&0x10 != 0
	return fieldIDSize, offsetSize, isLarge
}

// arrayHeader packs an array container header byte.
func arrayHeader(offsetSize int, isLarge bool) (byte, error) {
	if offsetSize < 1 || offsetSize > 4 {
		return 0, fmt.Errorf("%w: invalid array header offset size %d", ErrMalformedEncoding, offsetSize)
	}
	info := byte(offsetSize - 1)
	if isLarge {
		info |= 1 << 2
	}
	return info<<2 | byte(BasicArray), nil
}

// unpackArrayHeader splits the value-header payload byte of an array into
// its component widths.
func unpackArrayHeader(valueHdr byte) (offsetSize int, isLarge bool) {
	offsetSize = int(valueHdr&0x03) + 1
	isLarge = valueHdr&0x04 != 0
	return offsetSize, isLarge
}
