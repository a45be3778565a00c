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

import "errors"

// Sentinel errors. Every error returned from this package's API wraps one
// of these with fmt.Errorf("...: %w", ...) so callers can use errors.Is
// to classify a failure without parsing its text. The one exception is a
// write error from the io.Writer passed to WriteJSON, which is returned
// unchanged.
var (
	// ErrMalformedEncoding covers truncated buffers, out-of-range offsets,
	// illegal widths, and reserved bits set where the spec requires zero.
	ErrMalformedEncoding = errors.New("variant: malformed encoding")

	// ErrUnsupportedVersion is returned when a metadata blob's version
	// nibble is not 1.
	ErrUnsupportedVersion = errors.New("variant: unsupported metadata version")

	// ErrUnsupportedPrimitive is returned when a value header names a
	// primitive type ID that is not assigned by the spec.
	ErrUnsupportedPrimitive = errors.New("variant: unsupported primitive type")

	// ErrTypeMismatch is returned when a typed accessor is called against
	// a value whose actual primitive tag does not match.
	ErrTypeMismatch = errors.New("variant: type mismatch")

	// ErrDecimalOverflow is returned by the strict 96-bit decimal accessor
	// when the underlying Decimal16 magnitude does not fit in 96 bits, and
	// by AppendDecimal4/AppendDecimal8 when the magnitude does not fit in
	// 32/64 bits.
	ErrDecimalOverflow = errors.New("variant: decimal magnitude overflow")

	// ErrMalformedJSON is returned when the JSON encoder encounters
	// unparsable or unterminated JSON input.
	ErrMalformedJSON = errors.New("variant: malformed JSON")

	// ErrUnrepresentableFloat is returned by the JSON writer when asked to
	// serialize a NaN or infinite float or double.
	ErrUnrepresentableFloat = errors.New("variant: float has no JSON representation")

	// ErrInvalidUTF8 is returned when a metadata string is not valid UTF-8
	// and is requested as text rather than raw bytes.
	ErrInvalidUTF8 = errors.New("variant: invalid UTF-8")
)
