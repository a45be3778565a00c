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
	"fmt"
	"math/big"

	"github.com/cockroachdb/apd/v3"
)

// Decimal128 holds a Decimal4, Decimal8, or Decimal16 primitive value: an
// arbitrary-magnitude signed integer plus a base-10 scale. Decimal4 and
// Decimal8 always fit in 32 and 64 bits respectively; Decimal16 may carry
// up to 128 bits of magnitude even though the spec's canonical range for
// it is 96 bits, so Unscaled96 is a fallible accessor rather than the
// primary representation.
type Decimal128 struct {
	unscaled *big.Int
	scale    byte
}

// NewDecimal128 builds a Decimal128 from an arbitrary-precision unscaled
// integer and a scale (number of digits after the decimal point).
func NewDecimal128(unscaled *big.Int, scale byte) Decimal128 {
	return Decimal128{unscaled: new(big.Int).Set(unscaled), scale: scale}
}

// DecimalFromInt64 builds a Decimal128 representing unscaled * 10^-scale,
// suitable for the Decimal4 and Decimal8 wire forms.
func DecimalFromInt64(unscaled int64, scale byte) Decimal128 {
	return Decimal128{unscaled: big.NewInt(unscaled), scale: scale}
}

// Scale returns the number of digits after the decimal point.
func (d Decimal128) Scale() byte { return d.scale }

// Unscaled returns the unscaled magnitude as an arbitrary-precision
// integer. The returned value is a copy; mutating it does not affect d.
func (d Decimal128) Unscaled() *big.Int {
	return new(big.Int).Set(d.unscaled)
}

// Unscaled96 returns the unscaled magnitude as an arbitrary-precision
// integer when it lies in the spec's 96-bit canonical Decimal16 range,
// failing with ErrDecimalOverflow if the absolute value needs more than
// 96 bits (the sign is not counted).
func (d Decimal128) Unscaled96() (*big.Int, error) {
	const ninetySixBitLimit = 96
	bitLen := d.unscaled.BitLen()
	if bitLen > ninetySixBitLimit {
		return nil, fmt.Errorf("%w: magnitude needs %d bits", ErrDecimalOverflow, bitLen)
	}
	return d.Unscaled(), nil
}

// FitsInt32 reports whether d's unscaled magnitude fits in a signed
// 32-bit integer, i.e. it can be written as a Decimal4.
func (d Decimal128) FitsInt32() bool {
	return d.unscaled.IsInt64() && d.unscaled.Int64() >= minInt32 && d.unscaled.Int64() <= maxInt32
}

// FitsInt64 reports whether d's unscaled magnitude fits in a signed
// 64-bit integer, i.e. it can be written as a Decimal8.
func (d Decimal128) FitsInt64() bool {
	return d.unscaled.IsInt64()
}

const (
	minInt32 = -(1 << 31)
	maxInt32 = (1 << 31) - 1
)

// Int32 returns the unscaled magnitude as an int32, for Decimal4 callers
// that have already checked FitsInt32.
func (d Decimal128) Int32() int32 { return int32(d.unscaled.Int64()) }

// Int64 returns the unscaled magnitude as an int64, for Decimal8 callers
// that have already checked FitsInt64.
func (d Decimal128) Int64() int64 { return d.unscaled.Int64() }

// apdDecimal converts d to a cockroachdb/apd Decimal carrying the same
// unscaled value and scale, for textual formatting.
func (d Decimal128) apdDecimal() apd.Decimal {
	var coeff apd.BigInt
	coeff.SetMathBigInt(new(big.Int).Abs(d.unscaled))
	return apd.Decimal{
		Negative: d.unscaled.Sign() < 0,
		Coeff:    coeff,
		Exponent: -int32(d.scale),
	}
}

// String renders d as a plain decimal string (no exponent notation),
// matching how the spec requires Decimal values to appear in JSON.
func (d Decimal128) String() string {
	dec := d.apdDecimal()
	return dec.Text('f')
}

// bytesLE16 encodes the two's-complement unscaled magnitude as 16
// little-endian bytes, sign-extended, for the Decimal16 wire form.
func (d Decimal128) bytesLE16() [16]byte {
	return bigIntToLE(d.unscaled, 16)
}

// bytesLE8 encodes the two's-complement unscaled magnitude as 8
// little-endian bytes for the Decimal8 wire form.
func (d Decimal128) bytesLE8() [8]byte {
	var out [8]byte
	le := bigIntToLE(d.unscaled, 8)
	copy(out[:], le[:8])
	return out
}

// bytesLE4 encodes the two's-complement unscaled magnitude as 4
// little-endian bytes for the Decimal4 wire form.
func (d Decimal128) bytesLE4() [4]byte {
	var out [4]byte
	le := bigIntToLE(d.unscaled, 4)
	copy(out[:], le[:4])
	return out
}

// bigIntToLE renders v as n little-endian two's-complement bytes,
// sign-extending or truncating as needed.
func bigIntToLE(v *big.Int, n int) [16]byte {
	var out [16]byte
	mag := new(big.Int).Abs(v)
	be := mag.Bytes()
	for i := 0; i < len(be) && i < n; i++ {
		out[i] = be[len(be)-1-i]
	}
	if v.Sign() < 0 {
		for i := 0; i < n; i++ {
			out[i] = ^out[i]
		}
		carry := uint16(1)
		for i := 0; i < n; i++ {
			sum := uint16(out[i]) + carry
			out[i] = byte(sum)
			carry = sum >> 8
		}
	}
	return out
}

// decimalFromLE decodes n little-endian two's-complement bytes into an
// unscaled *big.Int.
func decimalFromLE(raw []byte, n int) *big.Int {
	neg := raw[n-1]&0x80 != 0
	work := make([]byte, n)
	copy(work, raw[:n])
	if neg {
		carry := uint16(1)
		for i := 0; i < n; i++ {
			v := uint16(^work[i]) + carry
			work[i] = byte(v)
			carry = v >> 8
		}
	}
	be := make([]byte, n)
	for i := 0; i < n; i++ {
		be[n-1-i] = work[i]
	}
	v := new(big.Int).SetBytes(be)
	if neg {
		v.Neg(v)
	}
	return v
}
