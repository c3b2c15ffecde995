package smc_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dedis/abc-smc/pkg/smc"
)

func TestThreePartyAddition(t *testing.T) {
	secretAlice := smc.NewSecret()
	secretBob := smc.NewSecret()
	secretCarol := smc.NewSecret()
	root := secretAlice.Add(secretBob).Add(secretCarol)

	spec := &smc.ProtocolSpec{
		Root:           root,
		ParticipantIDs: []string{"alice", "bob", "carol"},
		Owners: map[uuid.UUID]string{
			secretAlice.ID(): "alice",
			secretBob.ID():   "bob",
			secretCarol.ID(): "carol",
		},
	}
	values := map[string]map[uuid.UUID]*big.Int{
		"alice": {secretAlice.ID(): big.NewInt(3)},
		"bob":   {secretBob.ID(): big.NewInt(14)},
		"carol": {secretCarol.ID(): big.NewInt(2)},
	}

	results, err := smc.RunLocal(context.Background(), spec, values)
	require.NoError(t, err)
	for _, id := range spec.ParticipantIDs {
		require.Equal(t, big.NewInt(19), results[id])
	}
}

func TestBeaverMultiplicationAndAddition(t *testing.T) {
	a := smc.NewSecret()
	b := smc.NewSecret()
	c := smc.NewSecret()
	d := smc.NewSecret()
	root := a.Mul(b).Add(c.Mul(d))

	spec := &smc.ProtocolSpec{
		Root:           root,
		ParticipantIDs: []string{"alice", "bob"},
		Owners: map[uuid.UUID]string{
			a.ID(): "alice",
			b.ID(): "bob",
			c.ID(): "alice",
			d.ID(): "bob",
		},
	}
	values := map[string]map[uuid.UUID]*big.Int{
		"alice": {a.ID(): big.NewInt(3), c.ID(): big.NewInt(2)},
		"bob":   {b.ID(): big.NewInt(14), d.ID(): big.NewInt(5)},
	}

	results, err := smc.RunLocal(context.Background(), spec, values)
	require.NoError(t, err)
	for _, id := range spec.ParticipantIDs {
		require.Equal(t, big.NewInt(52), results[id])
	}
}

func TestScalarMultiplicationNeedsNoTriplet(t *testing.T) {
	a := smc.NewSecret()
	root := a.Mul(smc.NewScalar(10)).Add(smc.NewScalar(4))

	spec := &smc.ProtocolSpec{
		Root:           root,
		ParticipantIDs: []string{"alice", "bob"},
		Owners:         map[uuid.UUID]string{a.ID(): "alice"},
	}
	values := map[string]map[uuid.UUID]*big.Int{
		"alice": {a.ID(): big.NewInt(6)},
		"bob":   {},
	}

	results, err := smc.RunLocal(context.Background(), spec, values)
	require.NoError(t, err)
	for _, id := range spec.ParticipantIDs {
		require.Equal(t, big.NewInt(64), results[id])
	}
}

func TestSingleParticipantDegenerateCase(t *testing.T) {
	a := smc.NewSecret()
	root := a.Add(smc.NewScalar(1))

	spec := &smc.ProtocolSpec{
		Root:           root,
		ParticipantIDs: []string{"solo"},
		Owners:         map[uuid.UUID]string{a.ID(): "solo"},
	}
	values := map[string]map[uuid.UUID]*big.Int{
		"solo": {a.ID(): big.NewInt(41)},
	}

	results, err := smc.RunLocal(context.Background(), spec, values)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(42), results["solo"])
}

// TestHospitalAggregateScenario ports test_hospital_data from the
// original smcompiler test suite: three hospitals, two patients each,
// computing sum((weight[+k])*tenOverHeightSquared*(5+5)) without any
// hospital disclosing a patient's individual weight or height. The
// (5+5) term is a pure-scalar subtree nested inside a multiplication,
// exercising the no-triplet-needed short-circuit at depth rather than
// only on an immediate scalar operand.
func TestHospitalAggregateScenario(t *testing.T) {
	h1w0, h1f0, h1w1, h1f1 := smc.NewSecret(), smc.NewSecret(), smc.NewSecret(), smc.NewSecret()
	h2w0, h2f0, h2w1, h2f1 := smc.NewSecret(), smc.NewSecret(), smc.NewSecret(), smc.NewSecret()
	h3w0, h3f0, h3w1, h3f1 := smc.NewSecret(), smc.NewSecret(), smc.NewSecret(), smc.NewSecret()

	ten := smc.NewScalar(5).Add(smc.NewScalar(5))
	term := func(w, f *smc.Expression, k int64) *smc.Expression {
		return w.Add(smc.NewScalar(k)).Mul(f).Mul(ten)
	}

	root := term(h1w0, h1f0, 2).Add(h1w1.Mul(h1f1).Mul(ten)).
		Add(term(h2w0, h2f0, 4)).Add(h2w1.Mul(h2f1).Mul(ten)).
		Add(term(h3w0, h3f0, 5)).Add(h3w1.Mul(h3f1).Mul(ten))

	spec := &smc.ProtocolSpec{
		Root:           root,
		ParticipantIDs: []string{"Hospital 1", "Hospital 2", "Hospital 3"},
		Owners: map[uuid.UUID]string{
			h1w0.ID(): "Hospital 1", h1f0.ID(): "Hospital 1", h1w1.ID(): "Hospital 1", h1f1.ID(): "Hospital 1",
			h2w0.ID(): "Hospital 2", h2f0.ID(): "Hospital 2", h2w1.ID(): "Hospital 2", h2f1.ID(): "Hospital 2",
			h3w0.ID(): "Hospital 3", h3f0.ID(): "Hospital 3", h3w1.ID(): "Hospital 3", h3f1.ID(): "Hospital 3",
		},
	}
	values := map[string]map[uuid.UUID]*big.Int{
		"Hospital 1": {
			h1w0.ID(): big.NewInt(80), h1f0.ID(): big.NewInt(3),
			h1w1.ID(): big.NewInt(75), h1f1.ID(): big.NewInt(2),
		},
		"Hospital 2": {
			h2w0.ID(): big.NewInt(60), h2f0.ID(): big.NewInt(4),
			h2w1.ID(): big.NewInt(102), h2f1.ID(): big.NewInt(3),
		},
		"Hospital 3": {
			h3w0.ID(): big.NewInt(100), h3f0.ID(): big.NewInt(2),
			h3w1.ID(): big.NewInt(53), h3f1.ID(): big.NewInt(3),
		},
	}

	results, err := smc.RunLocal(context.Background(), spec, values)
	require.NoError(t, err)

	expected := big.NewInt(820*3 + 750*2 + 640*4 + 1020*3 + 1050*2 + 530*3)
	for _, id := range spec.ParticipantIDs {
		require.Equal(t, expected, results[id])
	}
}

func TestRetrieveTripletRejectsUnregisteredParticipant(t *testing.T) {
	ttp := smc.NewTrustedParamGenerator()
	ttp.AddParticipant("alice")

	_, err := ttp.RetrieveTriplet(context.Background(), "mallory", uuid.New())
	require.ErrorIs(t, err, smc.ErrGeneratorFailure)
}

func TestShareSecretRejectsZeroParties(t *testing.T) {
	_, err := smc.ShareSecret(big.NewInt(1), 0, func() (*big.Int, error) { return big.NewInt(0), nil })
	require.ErrorIs(t, err, smc.ErrContractViolation)
}

func TestShareReconstructRoundTrip(t *testing.T) {
	secret := big.NewInt(123456789)
	shares, err := smc.ShareSecret(secret, 5, func() (*big.Int, error) { return big.NewInt(777), nil })
	require.NoError(t, err)
	require.Equal(t, secret, smc.Reconstruct(shares))
}
