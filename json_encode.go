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
	"encoding/json"
	"fmt"
	"io"
	"math"
)

// EncodeJSON parses UTF-8 JSON text directly into a (metadata, value)
// pair, driving MetadataBuilder and ValueBuilder straight off the token
// stream rather than materializing an intermediate tree. The JSON text
// is walked twice: the first pass feeds every object key to a
// MetadataBuilder so the sorted dictionary is complete before any field
// ID is baked into an object header; the second pass re-walks the same
// tokens, resolving each field name to its final sorted ID and emitting
// bytes straight into a ValueBuilder using the same two-phase container
// emission the rest of the package uses.
//
// Integers are emitted as the narrowest of Int8, Int16, Int32, Int64 that
// fits; everything else numeric is a Double. JSON has no token for NaN or
// Infinity, so those never arise here even though the wire format itself
// can represent them.
func EncodeJSON(data []byte) (metadataBytes, valueBytes []byte, err error) {
	mb := NewMetadataBuilder()
	namesDec := json.NewDecoder(bytes.NewReader(data))
	namesDec.UseNumber()
	if err := collectJSONNames(namesDec, mb); err != nil {
		return nil, nil, err
	}
	if _, err := namesDec.Token(); err != io.EOF {
		return nil, nil, fmt.Errorf("%w: trailing data after top-level value", ErrMalformedJSON)
	}

	metadataBytes, remap := mb.Build()

	vb := NewValueBuilder()
	valuesDec := json.NewDecoder(bytes.NewReader(data))
	valuesDec.UseNumber()
	if err := encodeJSONValue(valuesDec, vb, mb, remap); err != nil {
		return nil, nil, err
	}
	if _, err := valuesDec.Token(); err != io.EOF {
		return nil, nil, fmt.Errorf("%w: trailing data after top-level value", ErrMalformedJSON)
	}
	return metadataBytes, vb.Bytes(), nil
}

// collectJSONNames is pass 1: it walks dec's token stream, registering
// every object key it finds with mb, and otherwise discards what it
// reads. It never builds a value of any kind.
func collectJSONNames(dec *json.Decoder, mb *MetadataBuilder) error {
	tok, err := dec.Token()
	if err == io.EOF {
		return fmt.Errorf("%w: unexpected end of input", ErrMalformedJSON)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case json.Delim('{'):
			return collectJSONObjectNames(dec, mb)
		case json.Delim('['):
			return collectJSONArrayNames(dec, mb)
		default:
			return fmt.Errorf("%w: unexpected delimiter %q", ErrMalformedJSON, t)
		}
	case string, json.Number, bool, nil:
		return nil
	default:
		return fmt.Errorf("%w: unexpected token %T", ErrMalformedJSON, tok)
	}
}

func collectJSONObjectNames(dec *json.Decoder, mb *MetadataBuilder) error {
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedJSON, err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("%w: object key must be a string", ErrMalformedJSON)
		}
		mb.Add(key)
		if err := collectJSONNames(dec, mb); err != nil {
			return err
		}
	}
	end, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: unterminated object: %v", ErrMalformedJSON, err)
	}
	if end != json.Delim('}') {
		return fmt.Errorf("%w: unterminated object", ErrMalformedJSON)
	}
	return nil
}

func collectJSONArrayNames(dec *json.Decoder, mb *MetadataBuilder) error {
	for dec.More() {
		if err := collectJSONNames(dec, mb); err != nil {
			return err
		}
	}
	end, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: unterminated array: %v", ErrMalformedJSON, err)
	}
	if end != json.Delim(']') {
		return fmt.Errorf("%w: unterminated array", ErrMalformedJSON)
	}
	return nil
}

// encodeJSONValue is pass 2: it re-walks the same token grammar as
// collectJSONNames, this time emitting bytes straight into vb.
func encodeJSONValue(dec *json.Decoder, vb *ValueBuilder, mb *MetadataBuilder, remap []int) error {
	tok, err := dec.Token()
	if err == io.EOF {
		return fmt.Errorf("%w: unexpected end of input", ErrMalformedJSON)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case json.Delim('{'):
			return encodeJSONObject(dec, vb, mb, remap)
		case json.Delim('['):
			return encodeJSONArray(dec, vb, mb, remap)
		default:
			return fmt.Errorf("%w: unexpected delimiter %q", ErrMalformedJSON, t)
		}
	case string:
		return vb.AppendString(t)
	case json.Number:
		return encodeJSONNumber(vb, t)
	case bool:
		return vb.AppendBool(t)
	case nil:
		return vb.AppendNull()
	default:
		return fmt.Errorf("%w: unexpected token %T", ErrMalformedJSON, tok)
	}
}

// encodeJSONObject appends an object's fields directly to vb using the
// two-phase emission from builder.go: children are appended first, and
// FinishObject then splices in the header once every field's final
// offset is known. Field names are resolved to their Build-time sorted
// ID through mb/remap, which pass 1 already populated.
func encodeJSONObject(dec *json.Decoder, vb *ValueBuilder, mb *MetadataBuilder, remap []int) error {
	start := vb.Offset()
	var entries []FieldEntry
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedJSON, err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("%w: object key must be a string", ErrMalformedJSON)
		}
		provisionalID, ok := mb.ID(key)
		if !ok {
			return fmt.Errorf("%w: field %q was not registered before encoding", ErrMalformedEncoding, key)
		}
		entry := vb.NextField(start, remap[provisionalID])
		if err := encodeJSONValue(dec, vb, mb, remap); err != nil {
			return err
		}
		entries = append(entries, entry)
	}
	end, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: unterminated object: %v", ErrMalformedJSON, err)
	}
	if end != json.Delim('}') {
		return fmt.Errorf("%w: unterminated object", ErrMalformedJSON)
	}
	// A JSON object's keys are not required to be unique; when they
	// repeat, encoding/json's own decode-to-map behavior keeps the last
	// occurrence, so duplicates are allowed here with the same policy.
	return vb.FinishObject(start, entries, true)
}

func encodeJSONArray(dec *json.Decoder, vb *ValueBuilder, mb *MetadataBuilder, remap []int) error {
	start := vb.Offset()
	var offsets []int
	for dec.More() {
		offsets = append(offsets, vb.Offset()-start)
		if err := encodeJSONValue(dec, vb, mb, remap); err != nil {
			return err
		}
	}
	end, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: unterminated array: %v", ErrMalformedJSON, err)
	}
	if end != json.Delim(']') {
		return fmt.Errorf("%w: unterminated array", ErrMalformedJSON)
	}
	return vb.FinishArray(start, offsets)
}

func encodeJSONNumber(vb *ValueBuilder, n json.Number) error {
	if i, err := n.Int64(); err == nil {
		switch {
		case i >= -128 && i <= 127:
			return vb.AppendInt8(int8(i))
		case i >= -32768 && i <= 32767:
			return vb.AppendInt16(int16(i))
		case i >= math.MinInt32 && i <= math.MaxInt32:
			return vb.AppendInt32(int32(i))
		default:
			return vb.AppendInt64(i)
		}
	}
	f, err := n.Float64()
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("%w: number %q is not representable", ErrMalformedJSON, n.String())
	}
	return vb.AppendDouble(f)
}
