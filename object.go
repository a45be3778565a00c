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

// ObjectReader is a zero-copy view over an encoded object's fields. It
// borrows its metadata and backing bytes and must not outlive them.
type ObjectReader struct {
	metadata    *MetadataReader
	raw         []byte
	numElements int
	fieldIDSize int
	offsetSize  int
	idStart     int
	offsetStart int
	dataStart   int
}

func newObjectReader(metadata *MetadataReader, raw []byte) (*ObjectReader, error) {
	_, payload := decodeValueHeader(raw[0])
	fieldIDSize, offsetSize, isLarge := unpackObjectHeader(payload)

	countWidth := 1
	if isLarge {
		countWidth = 4
	}
	if err := checkBounds(raw, 1, 1+countWidth); err != nil {
		return nil, fmt.Errorf("%w: object count truncated: %v", ErrMalformedEncoding, err)
	}
	count64, err := readLEUint(raw, 1, countWidth)
	if err != nil {
		return nil, err
	}
	numElements := int(count64)

	idStart := 1 + countWidth
	offsetStart := idStart + numElements*fieldIDSize
	dataStart := offsetStart + (numElements+1)*offsetSize
	if err := checkBounds(raw, 0, dataStart); err != nil {
		return nil, fmt.Errorf("%w: object header truncated: %v", ErrMalformedEncoding, err)
	}

	return &ObjectReader{
		metadata:    metadata,
		raw:         raw,
		numElements: numElements,
		fieldIDSize: fieldIDSize,
		offsetSize:  offsetSize,
		idStart:     idStart,
		offsetStart: offsetStart,
		dataStart:   dataStart,
	}, nil
}

// NumFields returns the number of fields in the object.
func (o *ObjectReader) NumFields() int { return o.numElements }

func (o *ObjectReader) fieldIDAt(i int) (int, error) {
	v, err := readLEUint(o.raw, o.idStart+i*o.fieldIDSize, o.fieldIDSize)
	return int(v), err
}

func (o *ObjectReader) offsetAt(i int) (int, error) {
	v, err := readLEUint(o.raw, o.offsetStart+i*o.offsetSize, o.offsetSize)
	return int(v), err
}

// GetFieldName returns the name of the i-th field, resolved through the
// metadata dictionary.
func (o *ObjectReader) GetFieldName(i int) (string, error) {
	if i < 0 || i >= o.numElements {
		return "", fmt.Errorf("%w: field index %d out of range (count %d)", ErrMalformedEncoding, i, o.numElements)
	}
	id, err := o.fieldIDAt(i)
	if err != nil {
		return "", err
	}
	return o.metadata.GetString(id)
}

// GetFieldValue returns a ValueReader over the i-th field's value. The
// field's length is derived from its own header, not from the next
// offset-table entry: the format only guarantees offsets are valid start
// positions, not that they are monotonically increasing.
func (o *ObjectReader) GetFieldValue(i int) (*ValueReader, error) {
	if i < 0 || i >= o.numElements {
		return nil, fmt.Errorf("%w: field index %d out of range (count %d)", ErrMalformedEncoding, i, o.numElements)
	}
	lo, err := o.offsetAt(i)
	if err != nil {
		return nil, err
	}
	start := o.dataStart + lo
	if err := checkBounds(o.raw, start, start+1); err != nil {
		return nil, err
	}
	size, err := valueByteSize(o.raw[start:])
	if err != nil {
		return nil, err
	}
	if err := checkBounds(o.raw, start, start+size); err != nil {
		return nil, err
	}
	return NewValueReader(o.metadata, o.raw[start:start+size])
}

// TryGetField looks up a field by name. It returns (nil, false, nil) if
// the object has no field with that name.
//
// Object fields are always emitted in ascending field-ID order, which
// the sorted metadata dictionary makes equivalent to ascending name
// order, so a binary search over field names is always correct here;
// there is no small-N threshold below which a linear scan is needed.
func (o *ObjectReader) TryGetField(name string) (*ValueReader, bool, error) {
	if _, ok := o.metadata.Find([]byte(name)); !ok {
		return nil, false, nil
	}

	lo, hi := 0, o.numElements
	for lo < hi {
		mid := (lo + hi) / 2
		midName, err := o.GetFieldName(mid)
		if err != nil {
			return nil, false, err
		}
		if midName < name {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < o.numElements {
		if midName, err := o.GetFieldName(lo); err == nil && midName == name {
			v, err := o.GetFieldValue(lo)
			return v, err == nil, err
		}
	}
	return nil, false, nil
}
