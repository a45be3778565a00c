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
	"math/big"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestVariantValueEncodeDecodeRoundTrip(t *testing.T) {
	tree := NewObjectValue().
		SetField("name", StringValue("Bob")).
		SetField("age", Int8Value(30)).
		SetField("scores", NewArrayValue(Int8Value(1), Int8Value(2), Int8Value(3)))

	metadataBytes, valueBytes, err := tree.Encode()
	require.NoError(t, err)

	md, err := NewMetadataReader(metadataBytes)
	require.NoError(t, err)
	vr, err := NewValueReader(md, valueBytes)
	require.NoError(t, err)

	got, err := DecodeValue(vr)
	require.NoError(t, err)
	require.True(t, tree.Equal(got))
}

func TestVariantValueEqualObjectOrderIndependent(t *testing.T) {
	a := NewObjectValue().SetField("x", Int8Value(1)).SetField("y", Int8Value(2))
	b := NewObjectValue().SetField("y", Int8Value(2)).SetField("x", Int8Value(1))
	require.True(t, a.Equal(b))
	require.Equal(t, a.Hash(), b.Hash())
}

func TestVariantValueEqualArrayOrderDependent(t *testing.T) {
	a := NewArrayValue(Int8Value(1), Int8Value(2))
	b := NewArrayValue(Int8Value(2), Int8Value(1))
	require.False(t, a.Equal(b))
}

func TestVariantValueEqualDecimalAcrossWidths(t *testing.T) {
	d4 := Decimal4Value(DecimalFromInt64(1234, 2))
	d8 := Decimal8Value(DecimalFromInt64(1234, 2))
	// Equal compares by logical kind, so Decimal4 and Decimal8 values are
	// never Equal to each other even with the same scale and magnitude.
	require.False(t, d4.Equal(d8))
	require.True(t, d4.Equal(Decimal4Value(DecimalFromInt64(1234, 2))))
}

func TestFromDecimalAutoSizes(t *testing.T) {
	small := FromDecimal(DecimalFromInt64(42, 1))
	require.Equal(t, KindDecimal4, small.Type())

	huge := new(big.Int).Lsh(big.NewInt(1), 96)
	require.Equal(t, KindDecimal16, FromDecimal(NewDecimal128(huge, 0)).Type())
}

func TestVariantValueSetFieldDuplicatePolicy(t *testing.T) {
	v := NewObjectValue()
	v.SetField("a", Int8Value(1))
	v.SetField("a", Int8Value(2))
	require.Len(t, v.Fields(), 1)
	require.EqualValues(t, 2, v.Field("a").Int64())

	dup := NewObjectValue().SetAllowDuplicateFields(true)
	dup.SetField("a", Int8Value(1))
	dup.SetField("a", Int8Value(2))
	require.Len(t, dup.Fields(), 2)

	_, _, err := dup.Encode()
	require.NoError(t, err)
}

func TestVariantValueUUIDRoundTrip(t *testing.T) {
	id := uuid.New()
	tree := UUIDValue(id)
	metadataBytes, valueBytes, err := tree.Encode()
	require.NoError(t, err)
	md, err := NewMetadataReader(metadataBytes)
	require.NoError(t, err)
	vr, err := NewValueReader(md, valueBytes)
	require.NoError(t, err)
	got, err := DecodeValue(vr)
	require.NoError(t, err)
	require.Equal(t, id, got.UUID())
}

func TestVariantValueNestedObjectRoundTrip(t *testing.T) {
	inner := NewObjectValue().SetField("city", StringValue("Seattle"))
	outer := NewObjectValue().
		SetField("address", inner).
		SetField("tags", NewArrayValue(StringValue("a"), StringValue("b")))

	metadataBytes, valueBytes, err := outer.Encode()
	require.NoError(t, err)
	md, err := NewMetadataReader(metadataBytes)
	require.NoError(t, err)
	vr, err := NewValueReader(md, valueBytes)
	require.NoError(t, err)

	got, err := DecodeValue(vr)
	require.NoError(t, err)
	require.True(t, outer.Equal(got))
	require.Equal(t, "Seattle", got.Field("address").Field("city").Str())
}
