package abc

import (
	"crypto/cipher"

	"github.com/pkg/errors"
	"go.dedis.ch/kyber/v3"
	"go.dedis.ch/kyber/v3/pairing"
)

// Signature is a PS signature (sigma1, sigma2) in G1 x G1.
type Signature struct {
	Sigma1 kyber.Point
	Sigma2 kyber.Point
}

// Sign produces a PS signature on msgs under sk. h is fixed to the group
// generator g rather than sampled uniformly: the showing protocol always
// re-randomizes sigma1 before it is ever disclosed, so a deterministic h
// loses no security here (spec §4.1).
func Sign(suite pairing.Suite, sk *SecretKey, msgs []kyber.Scalar) (*Signature, error) {
	if len(sk.Y) != len(msgs) {
		return nil, errors.Wrap(ErrContractViolation, "attribute and message counts differ")
	}

	h := suite.G1().Point().Base()
	exponent := suite.G1().Scalar().Zero()
	term := suite.G1().Scalar()
	for i, m := range msgs {
		term.Mul(sk.Y[i], m)
		exponent.Add(exponent, term)
	}
	exponent.Add(exponent, sk.X)

	s2 := suite.G1().Point().Mul(exponent, h)
	return &Signature{Sigma1: h, Sigma2: s2}, nil
}

// Verify reports whether sig is a valid PS signature on msgs under pk. It
// fails closed: a signature with sigma1 equal to the identity is always
// rejected, independent of the pairing check.
func Verify(suite pairing.Suite, pk *PublicKey, sig *Signature, msgs []kyber.Scalar) bool {
	if len(pk.Y) != len(msgs) {
		return false
	}
	if sig.Sigma1.Equal(suite.G1().Point().Null()) {
		return false
	}

	acc := suite.G2().Point().Null()
	for i, m := range msgs {
		acc.Add(acc, suite.G2().Point().Mul(m, pk.Yhat[i]))
	}
	product := suite.G2().Point().Add(pk.Xhat, acc)

	left := suite.Pair(sig.Sigma1, product)
	right := suite.Pair(sig.Sigma2, pk.Ghat)
	return left.Equal(right)
}

// nonZeroScalar samples from Z_q \ {0}, as the issuance and showing
// protocols require for their blinding exponent u / randomizer r.
func nonZeroScalar(suite pairing.Suite, rnd cipher.Stream) kyber.Scalar {
	zero := suite.G1().Scalar().Zero()
	for {
		s := suite.G1().Scalar().Pick(rnd)
		if !s.Equal(zero) {
			return s
		}
	}
}
