// Package smc implements arithmetic secure multi-party computation over
// additive N-of-N secret sharing: expression trees of scalar and secret
// operands, evaluated across cooperating parties with Beaver-triplet
// multiplication supplied by a trusted parameter generator.
package smc

import (
	"math/big"

	"github.com/pkg/errors"
)

// Prime is the fixed prime modulus every Share's value lives under:
// 340282366920938463463374607431768211507, i.e. 2^128 + 51, the smallest
// prime above 2^128.
var Prime = newPrime()

func newPrime() *big.Int {
	p, ok := new(big.Int).SetString("340282366920938463463374607431768211507", 10)
	if !ok {
		panic("smc: invalid prime literal")
	}
	return p
}

// shareByteLen is the fixed-width wire encoding for a Share: Prime needs
// 129 bits to represent, so a residue below it takes up to 17 bytes.
const shareByteLen = 17

// Share is one additive share of a secret in Z_Prime.
type Share struct {
	v *big.Int
}

// NewShare wraps v, reducing it modulo Prime.
func NewShare(v *big.Int) Share {
	r := new(big.Int).Mod(v, Prime)
	return Share{v: r}
}

// Value returns the share's underlying residue.
func (s Share) Value() *big.Int {
	return new(big.Int).Set(s.v)
}

// Add returns s + other mod Prime.
func (s Share) Add(other Share) Share {
	return NewShare(new(big.Int).Add(s.v, other.v))
}

// Sub returns s - other mod Prime.
func (s Share) Sub(other Share) Share {
	return NewShare(new(big.Int).Sub(s.v, other.v))
}

// Neg returns -s mod Prime.
func (s Share) Neg() Share {
	return NewShare(new(big.Int).Neg(s.v))
}

// AddScalar returns s + c mod Prime for a plain integer c.
func (s Share) AddScalar(c *big.Int) Share {
	return NewShare(new(big.Int).Add(s.v, c))
}

// SubScalar returns s - c mod Prime for a plain integer c.
func (s Share) SubScalar(c *big.Int) Share {
	return NewShare(new(big.Int).Sub(s.v, c))
}

// MulScalar returns s * c mod Prime for a plain integer c.
func (s Share) MulScalar(c *big.Int) Share {
	return NewShare(new(big.Int).Mul(s.v, c))
}

// MarshalBinary encodes the share as a fixed 17-byte big-endian integer.
func (s Share) MarshalBinary() ([]byte, error) {
	out := make([]byte, shareByteLen)
	b := s.v.Bytes()
	if len(b) > shareByteLen {
		return nil, errors.Wrap(ErrTransportFailure, "share value overflows wire encoding")
	}
	copy(out[shareByteLen-len(b):], b)
	return out, nil
}

// UnmarshalBinary decodes a share previously produced by MarshalBinary.
func (s *Share) UnmarshalBinary(data []byte) error {
	if len(data) != shareByteLen {
		return errors.Wrapf(ErrTransportFailure, "share wire encoding must be %d bytes, got %d", shareByteLen, len(data))
	}
	s.v = new(big.Int).Mod(new(big.Int).SetBytes(data), Prime)
	return nil
}

// ShareSecret splits secret into n additive shares summing to secret mod
// Prime: the first n-1 shares are drawn uniformly, the last is the
// residual needed to make the sum exact.
func ShareSecret(secret *big.Int, n int, rnd func() (*big.Int, error)) ([]Share, error) {
	if n < 1 {
		return nil, errors.Wrap(ErrContractViolation, "share count must be at least 1")
	}
	shares := make([]Share, n)
	sum := big.NewInt(0)
	for i := 0; i < n-1; i++ {
		r, err := rnd()
		if err != nil {
			return nil, errors.Wrap(err, "smc: sampling share randomness")
		}
		shares[i] = NewShare(r)
		sum.Add(sum, shares[i].v)
	}
	last := new(big.Int).Sub(secret, sum)
	shares[n-1] = NewShare(last)
	return shares, nil
}

// Reconstruct sums shares back into the plain secret mod Prime.
func Reconstruct(shares []Share) *big.Int {
	sum := big.NewInt(0)
	for _, s := range shares {
		sum.Add(sum, s.v)
	}
	return new(big.Int).Mod(sum, Prime)
}
