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
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// headerScratchPool reuses the small byte slices FinishObject and
// FinishArray need to assemble a container header before splicing it
// into the value buffer, avoiding an allocation per container.
var headerScratchPool = sync.Pool{
	New: func() any {
		buf := make([]byte, 0, 64)
		return &buf
	},
}

// ValueBuilder accumulates an encoded value into a single growing
// buffer. Nested containers are built with the two-phase emission the
// format requires: children are appended first, and FinishObject or
// FinishArray then grows the buffer and copies the already-written
// payload forward to make room for the header, rather than patching
// offsets into a stream written once.
//
// ValueBuilder operates purely on already-resolved field IDs; it has no
// notion of a metadata dictionary. Callers that need sorted, deduplicated
// field names (every caller building a nested object) get those from a
// MetadataBuilder and pass the resulting IDs in.
type ValueBuilder struct {
	buf []byte
}

// NewValueBuilder returns an empty builder.
func NewValueBuilder() *ValueBuilder { return &ValueBuilder{} }

// Bytes returns the buffer accumulated so far.
func (b *ValueBuilder) Bytes() []byte { return b.buf }

// Offset returns the current write position, the byte offset a nested
// container should record as its start before appending children.
func (b *ValueBuilder) Offset() int { return len(b.buf) }

// Reset empties the buffer for reuse.
func (b *ValueBuilder) Reset() { b.buf = b.buf[:0] }

func (b *ValueBuilder) appendHeader(hdr byte) {
	b.buf = append(b.buf, hdr)
}

// AppendNull appends the Null primitive.
func (b *ValueBuilder) AppendNull() error {
	hdr, err := primitiveHeader(TagNull)
	if err != nil {
		return err
	}
	b.appendHeader(hdr)
	return nil
}

// AppendBool appends a Boolean primitive.
func (b *ValueBuilder) AppendBool(v bool) error {
	tag := TagBooleanFalse
	if v {
		tag = TagBooleanTrue
	}
	hdr, err := primitiveHeader(tag)
	if err != nil {
		return err
	}
	b.appendHeader(hdr)
	return nil
}

func (b *ValueBuilder) appendFixed(tag PrimitiveTag, width int, fill func([]byte)) error {
	hdr, err := primitiveHeader(tag)
	if err != nil {
		return err
	}
	b.appendHeader(hdr)
	start := len(b.buf)
	b.buf = append(b.buf, make([]byte, width)...)
	fill(b.buf[start:])
	return nil
}

// AppendInt8 appends an Int8 primitive.
func (b *ValueBuilder) AppendInt8(v int8) error {
	return b.appendFixed(TagInt8, 1, func(dst []byte) { dst[0] = byte(v) })
}

// AppendInt16 appends an Int16 primitive.
func (b *ValueBuilder) AppendInt16(v int16) error {
	return b.appendFixed(TagInt16, 2, func(dst []byte) { binary.LittleEndian.PutUint16(dst, uint16(v)) })
}

// AppendInt32 appends an Int32 primitive.
func (b *ValueBuilder) AppendInt32(v int32) error {
	return b.appendFixed(TagInt32, 4, func(dst []byte) { binary.LittleEndian.PutUint32(dst, uint32(v)) })
}

// AppendInt64 appends an Int64 primitive.
func (b *ValueBuilder) AppendInt64(v int64) error {
	return b.appendFixed(TagInt64, 8, func(dst []byte) { binary.LittleEndian.PutUint64(dst, uint64(v)) })
}

// AppendFloat appends a single-precision Float primitive.
func (b *ValueBuilder) AppendFloat(v float32) error {
	return b.appendFixed(TagFloat, 4, func(dst []byte) { binary.LittleEndian.PutUint32(dst, math.Float32bits(v)) })
}

// AppendDouble appends a double-precision Double primitive.
func (b *ValueBuilder) AppendDouble(v float64) error {
	return b.appendFixed(TagDouble, 8, func(dst []byte) { binary.LittleEndian.PutUint64(dst, math.Float64bits(v)) })
}

// AppendDate appends a Date primitive (days since the Unix epoch).
func (b *ValueBuilder) AppendDate(days int32) error {
	return b.appendFixed(TagDate, 4, func(dst []byte) { binary.LittleEndian.PutUint32(dst, uint32(days)) })
}

func (b *ValueBuilder) appendMicros(tag PrimitiveTag, t time.Time) error {
	return b.appendFixed(tag, 8, func(dst []byte) {
		binary.LittleEndian.PutUint64(dst, uint64(t.UnixMicro()))
	})
}

func (b *ValueBuilder) appendNanos(tag PrimitiveTag, t time.Time) error {
	return b.appendFixed(tag, 8, func(dst []byte) {
		binary.LittleEndian.PutUint64(dst, uint64(t.UnixNano()))
	})
}

// AppendTimestamp appends a microsecond-precision, UTC Timestamp
// primitive.
func (b *ValueBuilder) AppendTimestamp(t time.Time) error {
	return b.appendMicros(TagTimestamp, t)
}

// AppendTimestampNtz appends a microsecond-precision, timezone-naive
// TimestampNtz primitive.
func (b *ValueBuilder) AppendTimestampNtz(t time.Time) error {
	return b.appendMicros(TagTimestampNtz, t)
}

// AppendTimestampTzNanos appends a nanosecond-precision, UTC
// TimestampTzNanos primitive.
func (b *ValueBuilder) AppendTimestampTzNanos(t time.Time) error {
	return b.appendNanos(TagTimestampTzNanos, t)
}

// AppendTimestampNtzNanos appends a nanosecond-precision, timezone-naive
// TimestampNtzNanos primitive.
func (b *ValueBuilder) AppendTimestampNtzNanos(t time.Time) error {
	return b.appendNanos(TagTimestampNtzNanos, t)
}

// AppendTimeNtz appends a microsecond-of-day TimeNtz primitive.
func (b *ValueBuilder) AppendTimeNtz(d time.Duration) error {
	micros := d.Microseconds()
	return b.appendFixed(TagTimeNtz, 8, func(dst []byte) { binary.LittleEndian.PutUint64(dst, uint64(micros)) })
}

// AppendDecimal4 appends a Decimal4 primitive. It fails if d's unscaled
// magnitude does not fit in 32 bits.
func (b *ValueBuilder) AppendDecimal4(d Decimal128) error {
	if !d.FitsInt32() {
		return fmt.Errorf("%w: decimal does not fit in 32 bits", ErrDecimalOverflow)
	}
	hdr, err := primitiveHeader(TagDecimal4)
	if err != nil {
		return err
	}
	b.appendHeader(hdr)
	b.buf = append(b.buf, d.Scale())
	le := d.bytesLE4()
	b.buf = append(b.buf, le[:]...)
	return nil
}

// AppendDecimal8 appends a Decimal8 primitive. It fails if d's unscaled
// magnitude does not fit in 64 bits.
func (b *ValueBuilder) AppendDecimal8(d Decimal128) error {
	if !d.FitsInt64() {
		return fmt.Errorf("%w: decimal does not fit in 64 bits", ErrDecimalOverflow)
	}
	hdr, err := primitiveHeader(TagDecimal8)
	if err != nil {
		return err
	}
	b.appendHeader(hdr)
	b.buf = append(b.buf, d.Scale())
	le := d.bytesLE8()
	b.buf = append(b.buf, le[:]...)
	return nil
}

// AppendDecimal16 appends a Decimal16 primitive. Unlike AppendDecimal4
// and AppendDecimal8, this never errors on magnitude: the wire form has
// 128 bits of room even though the spec's canonical range is 96 bits.
func (b *ValueBuilder) AppendDecimal16(d Decimal128) error {
	hdr, err := primitiveHeader(TagDecimal16)
	if err != nil {
		return err
	}
	b.appendHeader(hdr)
	b.buf = append(b.buf, d.Scale())
	le := d.bytesLE16()
	b.buf = append(b.buf, le[:]...)
	return nil
}

// AppendBinary appends a Binary primitive.
func (b *ValueBuilder) AppendBinary(v []byte) error {
	hdr, err := primitiveHeader(TagBinary)
	if err != nil {
		return err
	}
	b.appendHeader(hdr)
	start := len(b.buf)
	b.buf = append(b.buf, make([]byte, 4)...)
	binary.LittleEndian.PutUint32(b.buf[start:], uint32(len(v)))
	b.buf = append(b.buf, v...)
	return nil
}

// AppendString appends a string, using the compact short-string encoding
// for strings of 63 bytes or fewer and the long-string primitive
// otherwise.
func (b *ValueBuilder) AppendString(v string) error {
	if len(v) <= maxShortStringLen {
		hdr, err := shortStringHeader(len(v))
		if err != nil {
			return err
		}
		b.appendHeader(hdr)
		b.buf = append(b.buf, v...)
		return nil
	}
	hdr, err := primitiveHeader(TagString)
	if err != nil {
		return err
	}
	b.appendHeader(hdr)
	start := len(b.buf)
	b.buf = append(b.buf, make([]byte, 4)...)
	binary.LittleEndian.PutUint32(b.buf[start:], uint32(len(v)))
	b.buf = append(b.buf, v...)
	return nil
}

// AppendUUID appends a UUID primitive, encoded in the wire's big-endian
// byte order.
func (b *ValueBuilder) AppendUUID(v uuid.UUID) error {
	hdr, err := primitiveHeader(TagUUID)
	if err != nil {
		return err
	}
	b.appendHeader(hdr)
	raw, err := v.MarshalBinary()
	if err != nil {
		return err
	}
	b.buf = append(b.buf, raw...)
	return nil
}

// FieldEntry is one object field awaiting header assembly: its final
// (already dictionary-sorted) field ID and its byte offset relative to
// the object's start.
type FieldEntry struct {
	ID     int
	Offset int
}

// NextField returns the FieldEntry for a field about to be appended: its
// offset is the builder's current position relative to start. Call this
// immediately before appending the field's value.
func (b *ValueBuilder) NextField(start int, id int) FieldEntry {
	return FieldEntry{ID: id, Offset: b.Offset() - start}
}

func (b *ValueBuilder) spliceHeader(start int, header []byte) {
	need := len(header)
	oldLen := len(b.buf)
	b.buf = append(b.buf, make([]byte, need)...)
	copy(b.buf[start+need:], b.buf[start:oldLen])
	copy(b.buf[start:start+need], header)
}

func withHeaderScratch(n int, fn func([]byte)) {
	ptr := headerScratchPool.Get().(*[]byte)
	buf := *ptr
	if cap(buf) < n {
		buf = make([]byte, n)
	} else {
		buf = buf[:n]
	}
	fn(buf)
	*ptr = buf[:0]
	headerScratchPool.Put(ptr)
}

// FinishObject closes the object that started at start, whose fields
// (each already appended to the buffer) are described by fields. Fields
// are reordered by ascending ID. If allowDuplicates is false, a repeated
// ID is an error; if true, the last-appended field with a given ID wins
// and earlier duplicates are silently superseded.
func (b *ValueBuilder) FinishObject(start int, fields []FieldEntry, allowDuplicates bool) error {
	sorted := append([]FieldEntry(nil), fields...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	deduped := sorted[:0:0]
	for i := 0; i < len(sorted); i++ {
		if i+1 < len(sorted) && sorted[i+1].ID == sorted[i].ID {
			if !allowDuplicates {
				return fmt.Errorf("%w: duplicate field id %d", ErrMalformedEncoding, sorted[i].ID)
			}
			continue
		}
		deduped = append(deduped, sorted[i])
	}
	sorted = deduped

	n := len(sorted)
	payloadLen := len(b.buf) - start
	maxID := 0
	for _, f := range sorted {
		if f.ID > maxID {
			maxID = f.ID
		}
	}
	fieldIDSize := minWidth(uint64(maxID))
	offsetSize := minWidth(uint64(payloadLen))
	isLarge := n > 0xFF

	countWidth := 1
	if isLarge {
		countWidth = 4
	}
	headerLen := 1 + countWidth + n*fieldIDSize + (n+1)*offsetSize

	hdrByte, err := objectHeader(fieldIDSize, offsetSize, isLarge)
	if err != nil {
		return err
	}

	withHeaderScratch(headerLen, func(header []byte) {
		header[0] = hdrByte
		writeLEUint(header[1:], uint64(n), countWidth)
		idStart := 1 + countWidth
		offStart := idStart + n*fieldIDSize
		for i, f := range sorted {
			writeLEUint(header[idStart+i*fieldIDSize:], uint64(f.ID), fieldIDSize)
			writeLEUint(header[offStart+i*offsetSize:], uint64(f.Offset), offsetSize)
		}
		writeLEUint(header[offStart+n*offsetSize:], uint64(payloadLen), offsetSize)
		b.spliceHeader(start, header)
	})
	return nil
}

// FinishArray closes the array that started at start, whose elements
// (each already appended to the buffer) begin at the byte offsets in
// offsets, relative to start and in element order.
func (b *ValueBuilder) FinishArray(start int, offsets []int) error {
	n := len(offsets)
	payloadLen := len(b.buf) - start
	offsetSize := minWidth(uint64(payloadLen))
	isLarge := n > 0xFF

	countWidth := 1
	if isLarge {
		countWidth = 4
	}
	headerLen := 1 + countWidth + (n+1)*offsetSize

	hdrByte, err := arrayHeader(offsetSize, isLarge)
	if err != nil {
		return err
	}

	withHeaderScratch(headerLen, func(header []byte) {
		header[0] = hdrByte
		writeLEUint(header[1:], uint64(n), countWidth)
		offStart := 1 + countWidth
		for i, off := range offsets {
			writeLEUint(header[offStart+i*offsetSize:], uint64(off), offsetSize)
		}
		writeLEUint(header[offStart+n*offsetSize:], uint64(payloadLen), offsetSize)
		b.spliceHeader(start, header)
	})
	return nil
}
