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
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMinWidth(t *testing.T) {
	cases := []struct {
		v    uint64
		want int
	}{
		{0, 1},
		{0xFF, 1},
		{0x100, 2},
		{0xFFFF, 2},
		{0x10000, 3},
		{0xFFFFFF, 3},
		{0x1000000, 4},
		{0xFFFFFFFF, 4},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, minWidth(tc.v))
	}
}

func TestReadWriteLEUintThreeByte(t *testing.T) {
	dst := make([]byte, 3)
	writeLEUint(dst, 0x030201, 3)
	require.Equal(t, []byte{0x01, 0x02, 0x03}, dst)

	v, err := readLEUint([]byte{0x01, 0x02, 0x03}, 0, 3)
	require.NoError(t, err)
	require.EqualValues(t, 0x030201, v)
}

func TestReadLEUintInvalidWidth(t *testing.T) {
	_, err := readLEUint([]byte{0x01, 0x02}, 0, 5)
	require.ErrorIs(t, err, ErrMalformedEncoding)
}

func TestMetadataHeaderRoundTrip(t *testing.T) {
	for _, offsetSize := range []int{1, 2, 3, 4} {
		for _, sorted := range []bool{true, false} {
			hdr := encodeMetadataHeader(sorted, offsetSize)
			gotVersion, gotSorted, gotOffsetSize, err := decodeMetadataHeader(hdr)
			require.NoError(t, err)
			require.Equal(t, metadataVersion, gotVersion)
			require.Equal(t, sorted, gotSorted)
			require.Equal(t, offsetSize, gotOffsetSize)
		}
	}
}

func TestDecodeMetadataHeaderRejectsUnsupportedVersion(t *testing.T) {
	_, _, _, err := decodeMetadataHeader(0x02)
	require.True(t, errors.Is(err, ErrUnsupportedVersion))
}

// TestMetadataHeaderSortedBitPosition pins sorted_strings to bit 5 (0x20)
// and the reserved bit to bit 4 (0x10), matching spec.md's literal byte
// layout rather than just checking encode/decode self-consistency.
func TestMetadataHeaderSortedBitPosition(t *testing.T) {
	hdr := encodeMetadataHeader(true, 1)
	require.Equal(t, byte(0x21), hdr)

	hdr = encodeMetadataHeader(false, 1)
	require.Equal(t, byte(0x01), hdr)
}

func TestDecodeMetadataHeaderRejectsReservedBitSet(t *testing.T) {
	_, _, _, err := decodeMetadataHeader(0x11)
	require.ErrorIs(t, err, ErrMalformedEncoding)
}

func TestPrimitiveHeaderRoundTrip(t *testing.T) {
	for tag := TagNull; tag <= TagUUID; tag++ {
		hdr, err := primitiveHeader(tag)
		require.NoError(t, err)
		got, err := decodePrimitiveTag(hdr)
		require.NoError(t, err)
		require.Equal(t, tag, got)
	}
}

func TestShortStringHeaderRoundTrip(t *testing.T) {
	for _, length := range []int{0, 1, 63} {
		hdr, err := shortStringHeader(length)
		require.NoError(t, err)
		bt, payload := decodeValueHeader(hdr)
		require.Equal(t, BasicShortString, bt)
		require.EqualValues(t, length, payload)
	}

	_, err := shortStringHeader(64)
	require.ErrorIs(t, err, ErrMalformedEncoding)
}

func TestObjectHeaderRoundTrip(t *testing.T) {
	for _, fieldIDSize := range []int{1, 2, 3, 4} {
		for _, offsetSize := range []int{1, 2, 3, 4} {
			for _, isLarge := range []bool{true, false} {
				hdr, err := objectHeader(fieldIDSize, offsetSize, isLarge)
				require.NoError(t, err)
				bt, payload := decodeValueHeader(hdr)
				require.Equal(t, BasicObject, bt)
				gotFieldIDSize, gotOffsetSize, gotIsLarge := unpackObjectHeader(payload)
				require.Equal(t, fieldIDSize, gotFieldIDSize)
				require.Equal(t, offsetSize, gotOffsetSize)
				require.Equal(t, isLarge, gotIsLarge)
			}
		}
	}
}

func TestArrayHeaderRoundTrip(t *testing.T) {
	for _, offsetSize := range []int{1, 2, 3, 4} {
		for _, isLarge := range []bool{true, false} {
			hdr, err := arrayHeader(offsetSize, isLarge)
			require.NoError(t, err)
			bt, payload := decodeValueHeader(hdr)
			require.Equal(t, BasicArray, bt)
			gotOffsetSize, gotIsLarge := unpackArrayHeader(payload)
			require.Equal(t, offsetSize, gotOffsetSize)
			require.Equal(t, isLarge, gotIsLarge)
		}
	}
}
