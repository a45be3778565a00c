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
	"fmt"
	"sort"
	"unicode/utf8"
)

// MetadataReader is a zero-copy view over an encoded metadata blob. It
// borrows raw and must not outlive it.
type MetadataReader struct {
	raw      []byte
	sorted   bool
	size     int
	strStart int
	offSize  int
}

// NewMetadataReader validates and wraps a metadata blob.
func NewMetadataReader(raw []byte) (*MetadataReader, error) {
	if len(raw) < 1 {
		return nil, fmt.Errorf("%w: metadata blob is empty", ErrMalformedEncoding)
	}
	_, sorted, offsetSize, err := decodeMetadataHeader(raw[0])
	if err != nil {
		return nil, err
	}

	size64, err := readLEUint(raw, 1, offsetSize)
	if err != nil {
		return nil, fmt.Errorf("%w: reading dictionary size: %v", ErrMalformedEncoding, err)
	}
	size := int(size64)

	offsetTableStart := 1 + offsetSize
	strStart := offsetTableStart + (size+1)*offsetSize
	if err := checkBounds(raw, 0, strStart); err != nil {
		return nil, fmt.Errorf("%w: metadata truncated before string region: %v", ErrMalformedEncoding, err)
	}

	// Every offset must be non-decreasing and stay within the string
	// region.
	prev := uint64(0)
	for i := 0; i <= size; i++ {
		off, err := readLEUint(raw, offsetTableStart+i*offsetSize, offsetSize)
		if err != nil {
			return nil, fmt.Errorf("%w: reading offset %d: %v", ErrMalformedEncoding, i, err)
		}
		if i > 0 && off < prev {
			return nil, fmt.Errorf("%w: offsets must be non-decreasing", ErrMalformedEncoding)
		}
		if strStart+int(off) > len(raw) {
			return nil, fmt.Errorf("%w: offset %d out of range", ErrMalformedEncoding, off)
		}
		prev = off
	}

	return &MetadataReader{
		raw:      raw,
		sorted:   sorted,
		size:     size,
		strStart: strStart,
		offSize:  offsetSize,
	}, nil
}

// Size returns the number of entries in the dictionary.
func (m *MetadataReader) Size() int { return m.size }

// IsSorted reports whether the dictionary's sorted_strings bit is set.
func (m *MetadataReader) IsSorted() bool { return m.sorted }

func (m *MetadataReader) offsetAt(i int) (int, error) {
	offsetTableStart := 1 + m.offSize
	v, err := readLEUint(m.raw, offsetTableStart+i*m.offSize, m.offSize)
	return int(v), err
}

// GetBytes returns the raw UTF-8 bytes of dictionary entry i without
// copying.
func (m *MetadataReader) GetBytes(i int) ([]byte, error) {
	if i < 0 || i >= m.size {
		return nil, fmt.Errorf("%w: dictionary index %d out of range (size %d)", ErrMalformedEncoding, i, m.size)
	}
	lo, err := m.offsetAt(i)
	if err != nil {
		return nil, err
	}
	hi, err := m.offsetAt(i + 1)
	if err != nil {
		return nil, err
	}
	if err := checkBounds(m.raw, m.strStart+lo, m.strStart+hi); err != nil {
		return nil, err
	}
	return m.raw[m.strStart+lo : m.strStart+hi], nil
}

// GetString returns dictionary entry i decoded as a string. It fails with
// ErrInvalidUTF8 if the bytes are not valid UTF-8.
func (m *MetadataReader) GetString(i int) (string, error) {
	b, err := m.GetBytes(i)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", fmt.Errorf("%w: dictionary entry %d", ErrInvalidUTF8, i)
	}
	return string(b), nil
}

// Find looks up name's byte-exact position in the dictionary, using
// binary search when the dictionary is sorted and a linear scan
// otherwise. It returns (-1, false) if name is not present.
func (m *MetadataReader) Find(name []byte) (int, bool) {
	if m.sorted {
		idx := sort.Search(m.size, func(i int) bool {
			b, err := m.GetBytes(i)
			if err != nil {
				return true
			}
			return bytes.Compare(b, name) >= 0
		})
		if idx < m.size {
			if b, err := m.GetBytes(idx); err == nil && bytes.Equal(b, name) {
				return idx, true
			}
		}
		return -1, false
	}
	for i := 0; i < m.size; i++ {
		b, err := m.GetBytes(i)
		if err != nil {
			continue
		}
		if bytes.Equal(b, name) {
			return i, true
		}
	}
	return -1, false
}

// MetadataBuilder collects field names and emits a sorted metadata blob.
//
// Field names are interned: repeated Add calls with the same name return
// the same provisional ID. Build sorts the dictionary by UTF-8 byte order
// (not code-point order) and returns a remap from provisional ID to
// sorted ID, so callers that recorded field references using provisional
// IDs can translate them before emitting a value blob.
type MetadataBuilder struct {
	index map[string]int
	names []string
}

// NewMetadataBuilder returns an empty builder.
func NewMetadataBuilder() *MetadataBuilder {
	return &MetadataBuilder{index: make(map[string]int)}
}

// Add interns name and returns its provisional ID.
func (b *MetadataBuilder) Add(name string) int {
	if id, ok := b.index[name]; ok {
		return id
	}
	id := len(b.names)
	b.index[name] = id
	b.names = append(b.names, name)
	return id
}

// ID returns the provisional ID already assigned to name, if any.
func (b *MetadataBuilder) ID(name string) (int, bool) {
	id, ok := b.index[name]
	return id, ok
}

// Count returns the number of distinct names interned so far.
func (b *MetadataBuilder) Count() int { return len(b.names) }

// Build emits the sorted metadata blob and the provisional-to-sorted ID
// remap.
func (b *MetadataBuilder) Build() (metadataBytes []byte, remap []int) {
	n := len(b.names)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		return b.names[order[i]] < b.names[order[j]]
	})

	remap = make([]int, n)
	sortedNames := make([]string, n)
	for sortedID, provisionalID := range order {
		remap[provisionalID] = sortedID
		sortedNames[sortedID] = b.names[provisionalID]
	}

	totalBytes := 0
	for _, s := range sortedNames {
		totalBytes += len(s)
	}
	offsetSize := minWidth(uint64(maxInt(totalBytes, n)))

	offsetTableStart := 1 + offsetSize
	strStart := offsetTableStart + (n+1)*offsetSize
	out := make([]byte, strStart+totalBytes)

	out[0] = encodeMetadataHeader(true, offsetSize)
	writeLEUint(out[1:], uint64(n), offsetSize)

	var off int
	pos := strStart
	for i, s := range sortedNames {
		writeLEUint(out[offsetTableStart+i*offsetSize:], uint64(off), offsetSize)
		pos += copy(out[pos:], s)
		off += len(s)
	}
	writeLEUint(out[offsetTableStart+n*offsetSize:], uint64(off), offsetSize)

	return out, remap
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
