package abc

import (
	"github.com/pkg/errors"
	"go.dedis.ch/kyber/v3"
	"go.dedis.ch/kyber/v3/pairing"
	"go.dedis.ch/kyber/v3/util/random"
)

// IssuerState is the holder-side state carried between CreateIssueRequest
// and ObtainCredential: the blinding exponent t and the holder's own
// attribute map.
type IssuerState struct {
	T              kyber.Scalar
	UserAttributes AttributeMap
}

// IssueRequest is the holder's blinded commitment to its attributes plus
// a NIZK proof of well-formedness.
type IssueRequest struct {
	C     kyber.Point
	Proof *NIProof
}

// BlindSignature is the issuer's response to an IssueRequest: a PS
// signature on the commitment, plus the attributes the issuer itself
// asserted.
type BlindSignature struct {
	Sigma1           kyber.Point
	Sigma2           kyber.Point
	IssuerAttributes AttributeMap
}

func checkIndices(attrs AttributeMap, l int) error {
	for i := range attrs {
		if i < 1 || i > l {
			return errors.Wrapf(ErrContractViolation, "attribute index %d out of range [1,%d]", i, l)
		}
	}
	return nil
}

// CreateIssueRequest builds the holder's commitment C = g^t * Prod Y_i^a_i
// over the holder's own attribute indices U, together with a proof of
// knowledge of (t, {a_i}) that decomposes C that way. When U is empty the
// commitment degenerates to g^t (spec §4.2).
func CreateIssueRequest(suite pairing.Suite, pk *PublicKey, userAttrs AttributeMap) (*IssueRequest, *IssuerState, error) {
	if err := checkIndices(userAttrs, pk.L()); err != nil {
		return nil, nil, err
	}

	rnd := random.New()
	t := suite.G1().Scalar().Pick(rnd)

	c := suite.G1().Point().Mul(t, pk.G)
	for _, i := range sortedKeys(userAttrs) {
		c = suite.G1().Point().Add(c, suite.G1().Point().Mul(userAttrs[i], pk.Y[i-1]))
	}

	proof, err := createIssueProof(suite, pk, t, userAttrs, c)
	if err != nil {
		return nil, nil, err
	}

	return &IssueRequest{C: c, Proof: proof}, &IssuerState{T: t, UserAttributes: userAttrs}, nil
}

// createIssueProof proves knowledge of (t, {a_i}_{i in U}) underlying C, by
// the Sigma-protocol of spec §4.2: commit R = g^r0 * Prod Y_i^{r_i},
// challenge c = H(pk||R||C), responses s0 = r0 - c*t and s_i = r_i - c*a_i.
func createIssueProof(suite pairing.Suite, pk *PublicKey, t kyber.Scalar, userAttrs AttributeMap, c kyber.Point) (*NIProof, error) {
	rnd := random.New()

	r0 := suite.G1().Scalar().Pick(rnd)
	R := suite.G1().Point().Mul(r0, pk.G)

	keys := sortedKeys(userAttrs)
	r := make(map[int]kyber.Scalar, len(keys))
	for _, i := range keys {
		ri := suite.G1().Scalar().Pick(rnd)
		r[i] = ri
		R = suite.G1().Point().Add(R, suite.G1().Point().Mul(ri, pk.Y[i-1]))
	}

	challenge, err := fiatShamir(suite, pk, []kyber.Point{R, c}, nil)
	if err != nil {
		return nil, err
	}

	s0 := suite.G1().Scalar().Sub(r0, suite.G1().Scalar().Mul(challenge, t))
	responses := make([]AttrResponse, 0, len(keys))
	for _, i := range keys {
		si := suite.G1().Scalar().Sub(r[i], suite.G1().Scalar().Mul(challenge, userAttrs[i]))
		responses = append(responses, AttrResponse{Index: i, Value: si})
	}

	return &NIProof{Challenge: challenge, Response0: s0, Responses: responses}, nil
}

// VerifyIssueRequest fail-closes on a malformed or forged issue request by
// recomputing the Sigma-protocol commitment and checking the challenge
// matches (spec §4.2).
func VerifyIssueRequest(suite pairing.Suite, pk *PublicKey, req *IssueRequest) bool {
	Rp := suite.G1().Point().Mul(req.Proof.Challenge, req.C)
	Rp = suite.G1().Point().Add(Rp, suite.G1().Point().Mul(req.Proof.Response0, pk.G))
	for _, resp := range req.Proof.Responses {
		if resp.Index < 1 || resp.Index > pk.L() {
			return false
		}
		Rp = suite.G1().Point().Add(Rp, suite.G1().Point().Mul(resp.Value, pk.Y[resp.Index-1]))
	}

	challengePrime, err := fiatShamir(suite, pk, []kyber.Point{Rp, req.C}, nil)
	if err != nil {
		return false
	}
	return challengePrime.Equal(req.Proof.Challenge)
}

// SignIssueRequest verifies req and, if valid, blind-signs the commitment
// together with the issuer's own attributes I:
// sigma1' = g^u, sigma2' = (X * C * Prod_{j in I} Y_j^{a_j})^u.
func SignIssueRequest(suite pairing.Suite, sk *SecretKey, pk *PublicKey, req *IssueRequest, issuerAttrs AttributeMap) (*BlindSignature, error) {
	if !VerifyIssueRequest(suite, pk, req) {
		return nil, errors.Wrap(ErrCryptoFailure, "invalid issue request")
	}
	if err := checkIndices(issuerAttrs, pk.L()); err != nil {
		return nil, err
	}

	rnd := random.New()
	u := nonZeroScalar(suite, rnd)

	base := suite.G1().Point().Add(sk.Xp, req.C)
	for _, i := range sortedKeys(issuerAttrs) {
		base = suite.G1().Point().Add(base, suite.G1().Point().Mul(issuerAttrs[i], pk.Y[i-1]))
	}

	sigma1 := suite.G1().Point().Mul(u, pk.G)
	sigma2 := suite.G1().Point().Mul(u, base)
	return &BlindSignature{Sigma1: sigma1, Sigma2: sigma2, IssuerAttributes: issuerAttrs}, nil
}

// ObtainCredential unblinds the issuer's response and verifies the result
// signs the full attribute vector (U union I), returning the holder's
// Credential on success.
func ObtainCredential(suite pairing.Suite, pk *PublicKey, resp *BlindSignature, state *IssuerState) (*Credential, error) {
	if pk.L() != len(state.UserAttributes)+len(resp.IssuerAttributes) {
		return nil, errors.Wrap(ErrContractViolation, "public key attribute count does not match request")
	}

	blindedT := suite.G1().Point().Mul(state.T, resp.Sigma1)
	sigma2 := suite.G1().Point().Sub(resp.Sigma2, blindedT)
	sigma := &Signature{Sigma1: resp.Sigma1, Sigma2: sigma2}

	all := mergeAttributes(state.UserAttributes, resp.IssuerAttributes)
	msgs, err := attributeVector(all, pk.L())
	if err != nil {
		return nil, err
	}

	if !Verify(suite, pk, sigma, msgs) {
		return nil, errors.Wrap(ErrCryptoFailure, "unblinded signature failed verification")
	}
	return &Credential{Signature: sigma, Attributes: all}, nil
}

// attributeVector orders a full AttributeMap into the length-L vector
// Sign/Verify expect, index 1 first.
func attributeVector(all AttributeMap, l int) ([]kyber.Scalar, error) {
	out := make([]kyber.Scalar, l)
	for i := 1; i <= l; i++ {
		v, ok := all[i]
		if !ok {
			return nil, errors.Wrapf(ErrContractViolation, "missing attribute at index %d", i)
		}
		out[i-1] = v
	}
	return out, nil
}
