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

// ArrayReader is a zero-copy view over an encoded array's elements. It
// borrows its metadata and backing bytes and must not outlive them.
type ArrayReader struct {
	metadata    *MetadataReader
	raw         []byte
	numElements int
	offsetSize  int
	offsetStart int
	dataStart   int
}

func newArrayReader(metadata *MetadataReader, raw []byte) (*ArrayReader, error) {
	_, payload := decodeValueHeader(raw[0])
	offsetSize, isLarge := unpackArrayHeader(payload)

	countWidth := 1
	if isLarge {
		countWidth = 4
	}
	if err := checkBounds(raw, 1, 1+countWidth); err != nil {
		return nil, fmt.Errorf("%w: array count truncated: %v", ErrMalformedEncoding, err)
	}
	count64, err := readLEUint(raw, 1, countWidth)
	if err != nil {
		return nil, err
	}
	numElements := int(count64)

	offsetStart := 1 + countWidth
	dataStart := offsetStart + (numElements+1)*offsetSize
	if err := checkBounds(raw, 0, dataStart); err != nil {
		return nil, fmt.Errorf("%w: array header truncated: %v", ErrMalformedEncoding, err)
	}

	return &ArrayReader{
		metadata:    metadata,
		raw:         raw,
		numElements: numElements,
		offsetSize:  offsetSize,
		offsetStart: offsetStart,
		dataStart:   dataStart,
	}, nil
}

// NumElements returns the number of elements in the array.
func (a *ArrayReader) NumElements() int { return a.numElements }

func (a *ArrayReader) offsetAt(i int) (int, error) {
	v, err := readLEUint(a.raw, a.offsetStart+i*a.offsetSize, a.offsetSize)
	return int(v), err
}

// GetElement returns a ValueReader over the i-th element. The element's
// length is derived from its own header, not from the next offset-table
// entry: the format only guarantees offsets are valid start positions,
// not that they are monotonically increasing.
func (a *ArrayReader) GetElement(i int) (*ValueReader, error) {
	if i < 0 || i >= a.numElements {
		return nil, fmt.Errorf("%w: element index %d out of range (count %d)", ErrMalformedEncoding, i, a.numElements)
	}
	lo, err := a.offsetAt(i)
	if err != nil {
		return nil, err
	}
	start := a.dataStart + lo
	if err := checkBounds(a.raw, start, start+1); err != nil {
		return nil, err
	}
	size, err := valueByteSize(a.raw[start:])
	if err != nil {
		return nil, err
	}
	if err := checkBounds(a.raw, start, start+size); err != nil {
		return nil, err
	}
	return NewValueReader(a.metadata, a.raw[start:start+size])
}
