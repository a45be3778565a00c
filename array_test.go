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

	"github.com/stretchr/testify/require"
)

func TestArrayReaderScenario(t *testing.T) {
	md := emptyMetadata(t)
	raw := []byte{0x03, 0x03, 0x00, 0x02, 0x05, 0x06, 0x0C, 0x2A, 0x09, 0x68, 0x69, 0x00}

	vr, err := NewValueReader(md, raw)
	require.NoError(t, err)
	require.Equal(t, BasicArray, vr.BasicType())

	arr, err := vr.Array()
	require.NoError(t, err)
	require.Equal(t, 3, arr.NumElements())

	e0, err := arr.GetElement(0)
	require.NoError(t, err)
	v0, err := e0.Int8()
	require.NoError(t, err)
	require.EqualValues(t, 42, v0)

	e1, err := arr.GetElement(1)
	require.NoError(t, err)
	s1, err := e1.String()
	require.NoError(t, err)
	require.Equal(t, "hi", s1)

	e2, err := arr.GetElement(2)
	require.NoError(t, err)
	require.True(t, e2.IsNull())
}

func TestArrayBuilderRoundTrip(t *testing.T) {
	md := emptyMetadata(t)

	vb := NewValueBuilder()
	start := vb.Offset()
	var offsets []int

	offsets = append(offsets, vb.Offset()-start)
	require.NoError(t, vb.AppendInt8(42))
	offsets = append(offsets, vb.Offset()-start)
	require.NoError(t, vb.AppendString("hi"))
	offsets = append(offsets, vb.Offset()-start)
	require.NoError(t, vb.AppendNull())

	require.NoError(t, vb.FinishArray(start, offsets))

	vr, err := NewValueReader(md, vb.Bytes())
	require.NoError(t, err)
	arr, err := vr.Array()
	require.NoError(t, err)
	require.Equal(t, 3, arr.NumElements())

	e0, err := arr.GetElement(0)
	require.NoError(t, err)
	v, err := e0.Int8()
	require.NoError(t, err)
	require.EqualValues(t, 42, v)
}

func TestArrayReaderEmptyAndLarge(t *testing.T) {
	md := emptyMetadata(t)

	vb := NewValueBuilder()
	start := vb.Offset()
	require.NoError(t, vb.FinishArray(start, nil))
	vr, err := NewValueReader(md, vb.Bytes())
	require.NoError(t, err)
	arr, err := vr.Array()
	require.NoError(t, err)
	require.Equal(t, 0, arr.NumElements())

	big := NewValueBuilder()
	bigStart := big.Offset()
	offsets := make([]int, 0, 300)
	for i := 0; i < 300; i++ {
		offsets = append(offsets, big.Offset()-bigStart)
		require.NoError(t, big.AppendInt8(int8(i)))
	}
	require.NoError(t, big.FinishArray(bigStart, offsets))
	vr2, err := NewValueReader(md, big.Bytes())
	require.NoError(t, err)
	arr2, err := vr2.Array()
	require.NoError(t, err)
	require.Equal(t, 300, arr2.NumElements())
	last, err := arr2.GetElement(299)
	require.NoError(t, err)
	lv, err := last.Int8()
	require.NoError(t, err)
	want := 299
	require.EqualValues(t, int8(want), lv)
}
