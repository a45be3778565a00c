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
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeJSONWriteJSONRoundTrip(t *testing.T) {
	cases := []string{
		`null`,
		`true`,
		`false`,
		`42`,
		`-7`,
		`3.5`,
		`"hello"`,
		`[]`,
		`{}`,
		`[1,2,3]`,
		`{"a":1,"b":"two","c":[true,null,3.25]}`,
		`{"nested":{"x":1,"y":{"z":2}}}`,
	}

	for _, c := range cases {
		t.Run(c, func(t *testing.T) {
			metadataBytes, valueBytes, err := EncodeJSON([]byte(c))
			require.NoError(t, err)

			md, err := NewMetadataReader(metadataBytes)
			require.NoError(t, err)
			vr, err := NewValueReader(md, valueBytes)
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, WriteJSON(vr, &buf))
			require.JSONEq(t, c, buf.String())
		})
	}
}

func TestEncodeJSONNarrowestIntWidth(t *testing.T) {
	cases := []struct {
		json string
		tag  PrimitiveTag
	}{
		{"100", TagInt8},
		{"1000", TagInt16},
		{"100000", TagInt32},
		{"10000000000", TagInt64},
	}

	for _, c := range cases {
		t.Run(c.json, func(t *testing.T) {
			md, valueBytes, err := EncodeJSON([]byte(c.json))
			require.NoError(t, err)
			mdr, err := NewMetadataReader(md)
			require.NoError(t, err)
			vr, err := NewValueReader(mdr, valueBytes)
			require.NoError(t, err)
			tag, err := vr.PrimitiveTag()
			require.NoError(t, err)
			require.Equal(t, c.tag, tag)
		})
	}
}

func TestEncodeJSONMalformedInput(t *testing.T) {
	cases := []string{
		``,
		`{`,
		`[1,2`,
		`{"a":}`,
		`truee`,
		`{"a":1} trailing`,
	}
	for _, c := range cases {
		t.Run(c, func(t *testing.T) {
			_, _, err := EncodeJSON([]byte(c))
			require.Error(t, err)
		})
	}
}

func TestWriteJSONUnrepresentableFloat(t *testing.T) {
	md := emptyMetadata(t)
	vb := NewValueBuilder()
	require.NoError(t, vb.AppendDouble(nan()))
	vr, err := NewValueReader(md, vb.Bytes())
	require.NoError(t, err)

	var buf bytes.Buffer
	err = WriteJSON(vr, &buf)
	require.ErrorIs(t, err, ErrUnrepresentableFloat)
}

func nan() float64 {
	var zero float64
	return zero / zero
}
