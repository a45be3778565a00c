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

func ageNameMetadata(t *testing.T) *MetadataReader {
	t.Helper()
	mb := NewMetadataBuilder()
	mb.Add("age")
	mb.Add("name")
	raw, _ := mb.Build()
	md, err := NewMetadataReader(raw)
	require.NoError(t, err)
	return md
}

func TestObjectReaderScenario(t *testing.T) {
	md := ageNameMetadata(t)
	raw := []byte{0x02, 0x02, 0x00, 0x01, 0x00, 0x02, 0x06, 0x0C, 0x1E, 0x0D, 0x42, 0x6F, 0x62}

	vr, err := NewValueReader(md, raw)
	require.NoError(t, err)
	require.Equal(t, BasicObject, vr.BasicType())

	obj, err := vr.Object()
	require.NoError(t, err)
	require.Equal(t, 2, obj.NumFields())

	name0, err := obj.GetFieldName(0)
	require.NoError(t, err)
	require.Equal(t, "age", name0)

	v0, err := obj.GetFieldValue(0)
	require.NoError(t, err)
	age, err := v0.Int8()
	require.NoError(t, err)
	require.EqualValues(t, 30, age)

	field, found, err := obj.TryGetField("name")
	require.NoError(t, err)
	require.True(t, found)
	s, err := field.String()
	require.NoError(t, err)
	require.Equal(t, "Bob", s)

	_, found, err = obj.TryGetField("missing")
	require.NoError(t, err)
	require.False(t, found)
}

func TestObjectBuilderSortsFieldsByID(t *testing.T) {
	md := ageNameMetadata(t)
	nameID, ok := md.Find([]byte("name"))
	require.True(t, ok)
	ageID, ok := md.Find([]byte("age"))
	require.True(t, ok)

	vb := NewValueBuilder()
	start := vb.Offset()

	nameField := vb.NextField(start, nameID)
	require.NoError(t, vb.AppendString("Bob"))

	ageField := vb.NextField(start, ageID)
	require.NoError(t, vb.AppendInt8(30))

	require.NoError(t, vb.FinishObject(start, []FieldEntry{nameField, ageField}, false))

	vr, err := NewValueReader(md, vb.Bytes())
	require.NoError(t, err)
	obj, err := vr.Object()
	require.NoError(t, err)

	n0, err := obj.GetFieldName(0)
	require.NoError(t, err)
	require.Equal(t, "age", n0)
	n1, err := obj.GetFieldName(1)
	require.NoError(t, err)
	require.Equal(t, "name", n1)
}

func TestObjectBuilderDuplicateFieldPolicy(t *testing.T) {
	mb := NewMetadataBuilder()
	id := mb.Add("key")
	raw, remap := mb.Build()
	md, err := NewMetadataReader(raw)
	require.NoError(t, err)
	finalID := remap[id]

	vb := NewValueBuilder()
	start := vb.Offset()
	f1 := vb.NextField(start, finalID)
	require.NoError(t, vb.AppendInt8(1))
	f2 := vb.NextField(start, finalID)
	require.NoError(t, vb.AppendInt8(2))

	err = vb.FinishObject(start, []FieldEntry{f1, f2}, false)
	require.ErrorIs(t, err, ErrMalformedEncoding)

	vb2 := NewValueBuilder()
	start2 := vb2.Offset()
	g1 := vb2.NextField(start2, finalID)
	require.NoError(t, vb2.AppendInt8(1))
	g2 := vb2.NextField(start2, finalID)
	require.NoError(t, vb2.AppendInt8(2))
	require.NoError(t, vb2.FinishObject(start2, []FieldEntry{g1, g2}, true))

	vr, err := NewValueReader(md, vb2.Bytes())
	require.NoError(t, err)
	obj, err := vr.Object()
	require.NoError(t, err)
	require.Equal(t, 1, obj.NumFields())
	v, err := obj.GetFieldValue(0)
	require.NoError(t, err)
	i, err := v.Int8()
	require.NoError(t, err)
	require.EqualValues(t, 2, i)
}

func TestObjectBuilderLargeTriggersIsLarge(t *testing.T) {
	mb := NewMetadataBuilder()
	ids := make([]int, 0, 300)
	for i := 0; i < 300; i++ {
		name := string(rune('a'+i%26)) + string(rune('A'+i/26))
		ids = append(ids, mb.Add(name))
	}
	raw, remap := mb.Build()
	md, err := NewMetadataReader(raw)
	require.NoError(t, err)

	vb := NewValueBuilder()
	start := vb.Offset()
	entries := make([]FieldEntry, 0, 300)
	for _, id := range ids {
		entries = append(entries, vb.NextField(start, remap[id]))
		require.NoError(t, vb.AppendNull())
	}
	require.NoError(t, vb.FinishObject(start, entries, false))

	vr, err := NewValueReader(md, vb.Bytes())
	require.NoError(t, err)
	obj, err := vr.Object()
	require.NoError(t, err)
	require.Equal(t, 300, obj.NumFields())
}
