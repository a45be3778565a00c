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

func TestMetadataReaderUnsortedScenario(t *testing.T) {
	raw := []byte{0x01, 0x02, 0x00, 0x01, 0x02, 0x62, 0x61}

	md, err := NewMetadataReader(raw)
	require.NoError(t, err)
	require.Equal(t, 2, md.Size())
	require.False(t, md.IsSorted())

	b, err := md.GetBytes(0)
	require.NoError(t, err)
	require.Equal(t, "b", string(b))

	idx, ok := md.Find([]byte("a"))
	require.True(t, ok)
	require.Equal(t, 1, idx)

	_, ok = md.Find([]byte("c"))
	require.False(t, ok)
}

func TestMetadataReaderEmptyDictionary(t *testing.T) {
	raw := []byte{0x01, 0x00, 0x00}
	md, err := NewMetadataReader(raw)
	require.NoError(t, err)
	require.Equal(t, 0, md.Size())
	_, ok := md.Find([]byte("anything"))
	require.False(t, ok)
}

func TestMetadataReaderTruncatedFails(t *testing.T) {
	_, err := NewMetadataReader([]byte{0x01, 0x05})
	require.ErrorIs(t, err, ErrMalformedEncoding)
}

func TestMetadataBuilderAlwaysSorted(t *testing.T) {
	mb := NewMetadataBuilder()
	idZ := mb.Add("zebra")
	idA := mb.Add("apple")
	idM := mb.Add("mango")
	idA2 := mb.Add("apple")
	require.Equal(t, idA, idA2)

	raw, remap := mb.Build()
	md, err := NewMetadataReader(raw)
	require.NoError(t, err)
	require.True(t, md.IsSorted())
	require.Equal(t, 3, md.Size())

	names := make([]string, md.Size())
	for i := 0; i < md.Size(); i++ {
		s, err := md.GetString(i)
		require.NoError(t, err)
		names[i] = s
	}
	require.Equal(t, []string{"apple", "mango", "zebra"}, names)

	gotApple, err := md.GetString(remap[idA])
	require.NoError(t, err)
	require.Equal(t, "apple", gotApple)
	gotMango, err := md.GetString(remap[idM])
	require.NoError(t, err)
	require.Equal(t, "mango", gotMango)
	gotZebra, err := md.GetString(remap[idZ])
	require.NoError(t, err)
	require.Equal(t, "zebra", gotZebra)

	for i := 0; i < md.Size(); i++ {
		name, err := md.GetString(i)
		require.NoError(t, err)
		idx, ok := md.Find([]byte(name))
		require.True(t, ok)
		require.Equal(t, i, idx)
	}
}

func TestMetadataBuilderEmpty(t *testing.T) {
	mb := NewMetadataBuilder()
	raw, remap := mb.Build()
	require.Empty(t, remap)

	md, err := NewMetadataReader(raw)
	require.NoError(t, err)
	require.Equal(t, 0, md.Size())
	require.True(t, md.IsSorted())
}
