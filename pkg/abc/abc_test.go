package abc_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/kyber/v3"
	"go.dedis.ch/kyber/v3/pairing/bn256"
	"go.dedis.ch/kyber/v3/util/random"

	"github.com/dedis/abc-smc/pkg/abc"
)

func randomScalars(suite interface {
	G1() kyber.Group
}, n int) []kyber.Scalar {
	out := make([]kyber.Scalar, n)
	for i := range out {
		out[i] = suite.G1().Scalar().Pick(random.New())
	}
	return out
}

func TestSignVerifyRoundTrip(t *testing.T) {
	suite := bn256.NewSuite()
	msgs := randomScalars(suite, 30)

	sk, pk, err := abc.KeyGen(suite, msgs)
	require.NoError(t, err)

	sig, err := abc.Sign(suite, sk, msgs)
	require.NoError(t, err)
	require.True(t, abc.Verify(suite, pk, sig, msgs))
}

func TestVerifyRejectsTamperedMessage(t *testing.T) {
	suite := bn256.NewSuite()
	msgs := randomScalars(suite, 30)

	sk, pk, err := abc.KeyGen(suite, msgs)
	require.NoError(t, err)

	sig, err := abc.Sign(suite, sk, msgs)
	require.NoError(t, err)

	tampered := append([]kyber.Scalar(nil), msgs...)
	tampered[0] = suite.G1().Scalar().Pick(random.New())
	require.False(t, abc.Verify(suite, pk, sig, tampered))
}

func TestKeyGenRejectsEmptyAttributes(t *testing.T) {
	suite := bn256.NewSuite()
	_, _, err := abc.KeyGen(suite, nil)
	require.ErrorIs(t, err, abc.ErrContractViolation)
}

// newStrollFixture builds an issuer keypair over the subscription
// alphabet {None, ballet, opera, theater, concert, museum}, matching the
// "stroll" subscription-credential scenario.
func newStrollFixture(t *testing.T) (*bn256.Suite, *abc.Alphabet, *abc.SecretKey, *abc.PublicKey, kyber.Scalar) {
	t.Helper()
	suite := bn256.NewSuite()
	alphabet := abc.NewAlphabet(suite, []string{"ballet", "opera", "theater", "concert", "museum"})

	holderSecret := suite.G1().Scalar().Pick(random.New())
	attrs := append([]kyber.Scalar{holderSecret}, alphabet.Attributes()...)

	sk, pk, err := abc.KeyGen(suite, attrs)
	require.NoError(t, err)
	return suite, alphabet, sk, pk, holderSecret
}

func issueCredential(t *testing.T, suite *bn256.Suite, alphabet *abc.Alphabet, sk *abc.SecretKey, pk *abc.PublicKey, holderSecret kyber.Scalar, subscriptions []string) *abc.Credential {
	t.Helper()

	userAttrs := abc.AttributeMap{1: holderSecret}
	req, state, err := abc.CreateIssueRequest(suite, pk, userAttrs)
	require.NoError(t, err)
	require.True(t, abc.VerifyIssueRequest(suite, pk, req))

	issuerAttrs, err := alphabet.BuildIssuerAttributes(subscriptions)
	require.NoError(t, err)

	blindSig, err := abc.SignIssueRequest(suite, sk, pk, req, issuerAttrs)
	require.NoError(t, err)

	cred, err := abc.ObtainCredential(suite, pk, blindSig, state)
	require.NoError(t, err)
	return cred
}

func TestIssuanceAndShowingDiscloseSubscribed(t *testing.T) {
	suite, alphabet, sk, pk, holderSecret := newStrollFixture(t)
	cred := issueCredential(t, suite, alphabet, sk, pk, holderSecret, []string{"ballet", "opera"})

	message := []byte("this_is_a_msg")
	disclosed, err := alphabet.BuildDisclosedAttributes([]string{"opera"})
	require.NoError(t, err)

	hidden := abc.AttributeMap{}
	for i, v := range cred.Attributes {
		if _, ok := disclosed[i]; !ok {
			hidden[i] = v
		}
	}

	proof, err := abc.CreateDisclosureProof(suite, pk, cred, hidden, message)
	require.NoError(t, err)
	require.True(t, abc.VerifyDisclosureProof(suite, pk, proof, disclosed, message))
}

func TestDiscloseUnknownSubscriptionIsContractViolation(t *testing.T) {
	suite, alphabet, sk, pk, holderSecret := newStrollFixture(t)
	_ = issueCredential(t, suite, alphabet, sk, pk, holderSecret, []string{"ballet", "opera"})

	_, err := alphabet.BuildDisclosedAttributes([]string{"bars"})
	require.ErrorIs(t, err, abc.ErrContractViolation)
}

func TestDiscloseMultipleSubscribed(t *testing.T) {
	suite, alphabet, sk, pk, holderSecret := newStrollFixture(t)
	cred := issueCredential(t, suite, alphabet, sk, pk, holderSecret, []string{"ballet", "opera"})

	message := []byte("this_is_a_msg")
	disclosed, err := alphabet.BuildDisclosedAttributes([]string{"opera", "ballet"})
	require.NoError(t, err)

	hidden := abc.AttributeMap{}
	for i, v := range cred.Attributes {
		if _, ok := disclosed[i]; !ok {
			hidden[i] = v
		}
	}

	proof, err := abc.CreateDisclosureProof(suite, pk, cred, hidden, message)
	require.NoError(t, err)
	require.True(t, abc.VerifyDisclosureProof(suite, pk, proof, disclosed, message))
}

func TestDiscloseEmptyIsContractViolation(t *testing.T) {
	suite, alphabet, _, _, _ := newStrollFixture(t)
	_, err := alphabet.BuildDisclosedAttributes(nil)
	require.ErrorIs(t, err, abc.ErrContractViolation)
	_ = suite
}

func TestVerifyDisclosureProofRejectsWrongMessage(t *testing.T) {
	suite, alphabet, sk, pk, holderSecret := newStrollFixture(t)
	cred := issueCredential(t, suite, alphabet, sk, pk, holderSecret, []string{"ballet", "opera"})

	disclosed, err := alphabet.BuildDisclosedAttributes([]string{"opera"})
	require.NoError(t, err)
	hidden := abc.AttributeMap{}
	for i, v := range cred.Attributes {
		if _, ok := disclosed[i]; !ok {
			hidden[i] = v
		}
	}

	proof, err := abc.CreateDisclosureProof(suite, pk, cred, hidden, []byte("this_is_a_msg"))
	require.NoError(t, err)
	require.False(t, abc.VerifyDisclosureProof(suite, pk, proof, disclosed, []byte("a_different_msg")))
}
