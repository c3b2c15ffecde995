package abc

import (
	"github.com/pkg/errors"
	"go.dedis.ch/kyber/v3"
	"go.dedis.ch/kyber/v3/pairing"
	"go.dedis.ch/kyber/v3/util/random"
)

// AttributeMap maps 1-based attribute indices to field scalars. Ordering by
// index is canonical for every signing, hashing, and product operation
// that touches one.
type AttributeMap map[int]kyber.Scalar

// SecretKey is the issuer's PS signing key: x and the per-attribute y_i.
type SecretKey struct {
	X  kyber.Scalar
	Xp kyber.Point // X = g^x, the base factor SignIssueRequest blind-signs
	Y  []kyber.Scalar
}

// PublicKey is the issuer's PS verification key together with the public
// attribute alphabet A.
type PublicKey struct {
	G          kyber.Point   // g, the G1 generator
	Y          []kyber.Point // Y_i = g^{y_i}
	Ghat       kyber.Point   // ĝ, the G2 generator
	Xhat       kyber.Point   // X̂ = ĝ^x
	Yhat       []kyber.Point // Ŷ_i = ĝ^{y_i}
	Attributes []kyber.Scalar
}

// L returns the number of attribute slots this key was generated for.
func (pk *PublicKey) L() int {
	return len(pk.Y)
}

// Credential is a holder's full attribute-based credential: a signature
// valid on the complete attribute vector plus the holder's copy of it.
type Credential struct {
	Signature  *Signature
	Attributes AttributeMap
}

// KeyGen samples a fresh PS keypair for the given public attribute
// alphabet. len(attributes) becomes L, the number of signed attribute
// slots; index 1 of the resulting vector is conventionally reserved for
// the holder's per-user secret (see Alphabet), but KeyGen itself has no
// opinion on what the slots mean.
func KeyGen(suite pairing.Suite, attributes []kyber.Scalar) (*SecretKey, *PublicKey, error) {
	l := len(attributes)
	if l < 1 {
		return nil, nil, errors.Wrap(ErrContractViolation, "key generation requires at least one attribute")
	}

	rnd := random.New()
	g := suite.G1().Point().Base()
	ghat := suite.G2().Point().Base()

	x := suite.G1().Scalar().Pick(rnd)
	y := make([]kyber.Scalar, l)
	Y := make([]kyber.Point, l)
	Yhat := make([]kyber.Point, l)
	for i := 0; i < l; i++ {
		y[i] = suite.G1().Scalar().Pick(rnd)
		Y[i] = suite.G1().Point().Mul(y[i], g)
		Yhat[i] = suite.G2().Point().Mul(y[i], ghat)
	}

	X := suite.G1().Point().Mul(x, g)
	Xhat := suite.G2().Point().Mul(x, ghat)

	sk := &SecretKey{X: x, Xp: X, Y: y}
	pk := &PublicKey{
		G:          g,
		Y:          Y,
		Ghat:       ghat,
		Xhat:       Xhat,
		Yhat:       Yhat,
		Attributes: append([]kyber.Scalar(nil), attributes...),
	}
	return sk, pk, nil
}
