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
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"
)

const (
	dateFormat      = "2006-01-02"
	timestampFormat = "2006-01-02T15:04:05.999999Z"
)

// WriteJSON walks vr directly, without materializing a VariantValue
// tree, and writes its JSON representation to w.
func WriteJSON(vr *ValueReader, w io.Writer) error {
	if buf, ok := w.(*bytes.Buffer); ok {
		return writeJSONValue(vr, buf)
	}
	var buf bytes.Buffer
	if err := writeJSONValue(vr, &buf); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// EncodeJSONBytes is a convenience wrapper around WriteJSON that returns
// the rendered JSON as a byte slice.
func EncodeJSONBytes(vr *ValueReader) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSONValue(vr, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSONValue(vr *ValueReader, buf *bytes.Buffer) error {
	switch vr.BasicType() {
	case BasicObject:
		return writeJSONObject(vr, buf)
	case BasicArray:
		return writeJSONArray(vr, buf)
	default:
		return writeJSONPrimitive(vr, buf)
	}
}

func writeJSONObject(vr *ValueReader, buf *bytes.Buffer) error {
	obj, err := vr.Object()
	if err != nil {
		return err
	}
	buf.WriteByte('{')
	for i := 0; i < obj.NumFields(); i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := obj.GetFieldName(i)
		if err != nil {
			return err
		}
		if err := writeJSONString(name, buf); err != nil {
			return err
		}
		buf.WriteByte(':')
		fv, err := obj.GetFieldValue(i)
		if err != nil {
			return err
		}
		if err := writeJSONValue(fv, buf); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

func writeJSONArray(vr *ValueReader, buf *bytes.Buffer) error {
	arr, err := vr.Array()
	if err != nil {
		return err
	}
	buf.WriteByte('[')
	for i := 0; i < arr.NumElements(); i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		ev, err := arr.GetElement(i)
		if err != nil {
			return err
		}
		if err := writeJSONValue(ev, buf); err != nil {
			return err
		}
	}
	buf.WriteByte(']')
	return nil
}

func writeJSONString(s string, buf *bytes.Buffer) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEncoding, err)
	}
	buf.Write(raw)
	return nil
}

func writeJSONPrimitive(vr *ValueReader, buf *bytes.Buffer) error {
	tag, err := vr.PrimitiveTag()
	if err != nil {
		return err
	}
	switch tag {
	case TagNull:
		buf.WriteString("null")
	case TagBooleanTrue:
		buf.WriteString("true")
	case TagBooleanFalse:
		buf.WriteString("false")
	case TagInt8:
		v, err := vr.Int8()
		if err != nil {
			return err
		}
		buf.WriteString(strconv.FormatInt(int64(v), 10))
	case TagInt16:
		v, err := vr.Int16()
		if err != nil {
			return err
		}
		buf.WriteString(strconv.FormatInt(int64(v), 10))
	case TagInt32:
		v, err := vr.Int32()
		if err != nil {
			return err
		}
		buf.WriteString(strconv.FormatInt(int64(v), 10))
	case TagInt64:
		v, err := vr.Int64()
		if err != nil {
			return err
		}
		buf.WriteString(strconv.FormatInt(v, 10))
	case TagFloat:
		v, err := vr.Float()
		if err != nil {
			return err
		}
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return fmt.Errorf("%w: %v", ErrUnrepresentableFloat, v)
		}
		buf.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
	case TagDouble:
		v, err := vr.Double()
		if err != nil {
			return err
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %v", ErrUnrepresentableFloat, v)
		}
		buf.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	case TagDecimal4:
		d, err := vr.Decimal4()
		if err != nil {
			return err
		}
		buf.WriteString(d.String())
	case TagDecimal8:
		d, err := vr.Decimal8()
		if err != nil {
			return err
		}
		buf.WriteString(d.String())
	case TagDecimal16:
		d, err := vr.Decimal16()
		if err != nil {
			return err
		}
		buf.WriteString(d.String())
	case TagDate:
		days, err := vr.Date()
		if err != nil {
			return err
		}
		t := time.Unix(0, 0).UTC().AddDate(0, 0, int(days))
		return writeJSONString(t.Format(dateFormat), buf)
	case TagTimestamp:
		t, err := vr.Timestamp()
		if err != nil {
			return err
		}
		return writeJSONString(t.Format(timestampFormat), buf)
	case TagTimestampNtz:
		t, err := vr.TimestampNtz()
		if err != nil {
			return err
		}
		return writeJSONString(t.Format(timestampFormat), buf)
	case TagTimeNtz:
		d, err := vr.TimeNtz()
		if err != nil {
			return err
		}
		buf.WriteString(strconv.FormatInt(d.Microseconds(), 10))
	case TagTimestampTzNanos:
		t, err := vr.TimestampTzNanos()
		if err != nil {
			return err
		}
		buf.WriteString(strconv.FormatInt(t.UnixNano(), 10))
	case TagTimestampNtzNanos:
		t, err := vr.TimestampNtzNanos()
		if err != nil {
			return err
		}
		buf.WriteString(strconv.FormatInt(t.UnixNano(), 10))
	case TagBinary:
		b, err := vr.Binary()
		if err != nil {
			return err
		}
		return writeJSONString(base64.StdEncoding.EncodeToString(b), buf)
	case TagString:
		s, err := vr.String()
		if err != nil {
			return err
		}
		return writeJSONString(s, buf)
	case TagUUID:
		u, err := vr.UUID()
		if err != nil {
			return err
		}
		return writeJSONString(u.String(), buf)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedPrimitive, tag)
	}
	return nil
}
