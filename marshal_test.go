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
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type person struct {
	Name      string    `variant:"name"`
	Age       int8      `variant:"age"`
	Tags      []string  `variant:"tags"`
	Secret    string    `variant:"-"`
	Birthday  time.Time `variant:"birthday,date"`
	CreatedAt time.Time `variant:"created_at,ntz"`
}

func TestMarshalUnmarshalStructRoundTrip(t *testing.T) {
	in := person{
		Name:      "Alice",
		Age:       29,
		Tags:      []string{"admin", "staff"},
		Secret:    "should not appear",
		Birthday:  time.Date(1995, time.March, 14, 0, 0, 0, 0, time.UTC),
		CreatedAt: time.Date(2024, time.January, 2, 3, 4, 5, 0, time.UTC),
	}

	metadataBytes, valueBytes, err := Marshal(in)
	require.NoError(t, err)

	var out person
	require.NoError(t, Unmarshal(metadataBytes, valueBytes, &out))

	require.Equal(t, in.Name, out.Name)
	require.Equal(t, in.Age, out.Age)
	require.Equal(t, in.Tags, out.Tags)
	require.Empty(t, out.Secret)
	require.True(t, in.Birthday.Equal(out.Birthday))
	require.True(t, in.CreatedAt.Equal(out.CreatedAt))
}

func TestMarshalUnmarshalMap(t *testing.T) {
	in := map[string]int64{"a": 1, "b": 2, "c": 3}
	metadataBytes, valueBytes, err := Marshal(in)
	require.NoError(t, err)

	var out map[string]int64
	require.NoError(t, Unmarshal(metadataBytes, valueBytes, &out))
	require.Equal(t, in, out)
}

func TestMarshalUnmarshalSlice(t *testing.T) {
	in := []int32{10, 20, 30}
	metadataBytes, valueBytes, err := Marshal(in)
	require.NoError(t, err)

	var out []int32
	require.NoError(t, Unmarshal(metadataBytes, valueBytes, &out))
	require.Equal(t, in, out)
}

func TestMarshalUUIDOption(t *testing.T) {
	type withUUID struct {
		ID []byte `variant:"id,uuid"`
	}
	id := uuid.New()
	raw, _ := id.MarshalBinary()
	in := withUUID{ID: raw}

	metadataBytes, valueBytes, err := Marshal(in)
	require.NoError(t, err)

	var out withUUID
	require.NoError(t, Unmarshal(metadataBytes, valueBytes, &out))
	gotID, err := uuid.FromBytes(out.ID)
	require.NoError(t, err)
	require.Equal(t, id, gotID)
}

func TestUnmarshalIntoInterfaceGeneric(t *testing.T) {
	type payload struct {
		A int64  `variant:"a"`
		B string `variant:"b"`
	}
	metadataBytes, valueBytes, err := Marshal(payload{A: 7, B: "x"})
	require.NoError(t, err)

	var out any
	require.NoError(t, Unmarshal(metadataBytes, valueBytes, &out))
	m, ok := out.(map[string]any)
	require.True(t, ok)
	require.EqualValues(t, 7, m["a"])
	require.Equal(t, "x", m["b"])
}

func TestMarshalDecimalField(t *testing.T) {
	type withDecimal struct {
		Price Decimal128 `variant:"price"`
	}
	in := withDecimal{Price: DecimalFromInt64(1999, 2)}
	metadataBytes, valueBytes, err := Marshal(in)
	require.NoError(t, err)

	var out withDecimal
	require.NoError(t, Unmarshal(metadataBytes, valueBytes, &out))
	require.Equal(t, "19.99", out.Price.String())
}

func TestMarshalUnsupportedKindFails(t *testing.T) {
	_, _, err := Marshal(make(chan int))
	require.ErrorIs(t, err, ErrUnsupportedPrimitive)
}
