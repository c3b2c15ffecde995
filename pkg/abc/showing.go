package abc

import (
	"go.dedis.ch/kyber/v3"
	"go.dedis.ch/kyber/v3/pairing"
	"go.dedis.ch/kyber/v3/util/random"
)

// DisclosureProof is a randomized, unlinkable signature plus a NIZK proof
// that it validly signs the credential's attributes, of which only the
// disclosed subset is revealed.
type DisclosureProof struct {
	Signature *Signature
	Proof     *NIProof
}

// CreateDisclosureProof re-randomizes cred's signature and proves
// knowledge of the blinding exponent t and the hidden attributes, binding
// the proof to message M (spec §4.3).
func CreateDisclosureProof(suite pairing.Suite, pk *PublicKey, cred *Credential, hiddenAttrs AttributeMap, message []byte) (*DisclosureProof, error) {
	if err := checkIndices(hiddenAttrs, pk.L()); err != nil {
		return nil, err
	}

	rnd := random.New()
	r := nonZeroScalar(suite, rnd)
	t := suite.G1().Scalar().Pick(rnd)

	s1p := suite.G1().Point().Mul(r, cred.Signature.Sigma1)
	inner := suite.G1().Point().Add(cred.Signature.Sigma2, suite.G1().Point().Mul(t, cred.Signature.Sigma1))
	s2p := suite.G1().Point().Mul(r, inner)
	sigmaBar := &Signature{Sigma1: s1p, Sigma2: s2p}

	pairGhat := suite.Pair(s1p, pk.Ghat)

	// com is the committed form of (t, hidden attrs); by the scheme's
	// correctness it equals the verifier-side Com computed from
	// disclosed data alone, so the prover can build it directly instead
	// of pairing with sigma2/X_hat.
	com := suite.GT().Point().Mul(t, pairGhat)

	tr := suite.G1().Scalar().Pick(rnd)
	R := suite.GT().Point().Mul(tr, pairGhat)

	keys := sortedKeys(hiddenAttrs)
	r2 := make(map[int]kyber.Scalar, len(keys))
	for _, i := range keys {
		pairYi := suite.Pair(s1p, pk.Yhat[i-1])
		com = suite.GT().Point().Add(com, suite.GT().Point().Mul(hiddenAttrs[i], pairYi))

		ri := suite.G1().Scalar().Pick(rnd)
		r2[i] = ri
		R = suite.GT().Point().Add(R, suite.GT().Point().Mul(ri, pairYi))
	}

	challenge, err := fiatShamir(suite, pk, []kyber.Point{com, R}, message)
	if err != nil {
		return nil, err
	}

	r0 := suite.G1().Scalar().Sub(tr, suite.G1().Scalar().Mul(challenge, t))
	responses := make([]AttrResponse, 0, len(keys))
	for _, i := range keys {
		si := suite.G1().Scalar().Sub(r2[i], suite.G1().Scalar().Mul(challenge, hiddenAttrs[i]))
		responses = append(responses, AttrResponse{Index: i, Value: si})
	}

	proof := &NIProof{Challenge: challenge, Response0: r0, Responses: responses}
	return &DisclosureProof{Signature: sigmaBar, Proof: proof}, nil
}

// VerifyDisclosureProof fail-closes if sigma1 is the identity, then
// recomputes Com from the disclosed attributes and the proof's challenge
// response, accepting iff the recomputed challenge matches (spec §4.3).
func VerifyDisclosureProof(suite pairing.Suite, pk *PublicKey, dp *DisclosureProof, disclosedAttrs AttributeMap, message []byte) bool {
	s1p := dp.Signature.Sigma1
	if s1p.Equal(suite.G1().Point().Null()) {
		return false
	}
	if err := checkIndices(disclosedAttrs, pk.L()); err != nil {
		return false
	}

	com := suite.Pair(dp.Signature.Sigma2, pk.Ghat)
	for _, i := range sortedKeys(disclosedAttrs) {
		neg := suite.G1().Scalar().Neg(disclosedAttrs[i])
		com = suite.GT().Point().Add(com, suite.GT().Point().Mul(neg, suite.Pair(s1p, pk.Yhat[i-1])))
	}
	com = suite.GT().Point().Sub(com, suite.Pair(s1p, pk.Xhat))

	pairGhat := suite.Pair(s1p, pk.Ghat)
	Rp := suite.GT().Point().Mul(dp.Proof.Challenge, com)
	Rp = suite.GT().Point().Add(Rp, suite.GT().Point().Mul(dp.Proof.Response0, pairGhat))
	for _, resp := range dp.Proof.Responses {
		if resp.Index < 1 || resp.Index > pk.L() {
			return false
		}
		Rp = suite.GT().Point().Add(Rp, suite.GT().Point().Mul(resp.Value, suite.Pair(s1p, pk.Yhat[resp.Index-1])))
	}

	challengePrime, err := fiatShamir(suite, pk, []kyber.Point{com, Rp}, message)
	if err != nil {
		return false
	}
	return challengePrime.Equal(dp.Proof.Challenge)
}
