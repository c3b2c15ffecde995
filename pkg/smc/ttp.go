package smc

import (
	"context"
	"crypto/rand"
	"math/big"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// BeaverTriplet is one participant's share of a Beaver triplet (a, b, c)
// with c = a*b mod Prime, generated jointly for all registered
// participants under a single multiplication node.
type BeaverTriplet struct {
	A Share
	B Share
	C Share
}

// TrustedParamGenerator hands out Beaver triplets keyed by multiplication
// node id, lazily generating a fresh triplet the first time any
// participant asks for one under a given node, and handing back the
// matching share to every participant that later asks for that same
// node. It is safe for concurrent use by multiple parties' goroutines.
type TrustedParamGenerator struct {
	mu           sync.Mutex
	participants map[string]struct{}
	triplets     map[uuid.UUID]map[string]BeaverTriplet
}

// NewTrustedParamGenerator returns a generator with no participants
// registered yet.
func NewTrustedParamGenerator() *TrustedParamGenerator {
	return &TrustedParamGenerator{
		participants: make(map[string]struct{}),
		triplets:     make(map[uuid.UUID]map[string]BeaverTriplet),
	}
}

// AddParticipant registers id as eligible to retrieve triplet shares.
// Must be called for every participant before the first RetrieveTriplet
// call of any participant: a triplet is split only among the participants
// registered when it is generated, so a participant added later gets no
// share of it.
func (g *TrustedParamGenerator) AddParticipant(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.participants[id] = struct{}{}
}

// RetrieveTriplet returns participantID's share of the Beaver triplet for
// multiplication node nodeID, generating the triplet on first request.
func (g *TrustedParamGenerator) RetrieveTriplet(ctx context.Context, participantID string, nodeID uuid.UUID) (BeaverTriplet, error) {
	if err := ctx.Err(); err != nil {
		return BeaverTriplet{}, errors.Wrap(ErrTransportFailure, err.Error())
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.participants[participantID]; !ok {
		return BeaverTriplet{}, errors.Wrapf(ErrGeneratorFailure, "participant %q is not registered", participantID)
	}

	byParty, ok := g.triplets[nodeID]
	if !ok {
		var err error
		byParty, err = g.generateLocked()
		if err != nil {
			return BeaverTriplet{}, err
		}
		g.triplets[nodeID] = byParty
	}

	t, ok := byParty[participantID]
	if !ok {
		return BeaverTriplet{}, errors.Wrapf(ErrGeneratorFailure, "no triplet share for participant %q", participantID)
	}
	return t, nil
}

// generateLocked samples a fresh triplet (a, b, c=a*b mod Prime) and
// splits each of a, b, c into one additive share per registered
// participant. Caller must hold g.mu.
func (g *TrustedParamGenerator) generateLocked() (map[string]BeaverTriplet, error) {
	n := len(g.participants)
	if n == 0 {
		return nil, errors.Wrap(ErrGeneratorFailure, "no participants registered")
	}

	a, err := randBelow(Prime)
	if err != nil {
		return nil, err
	}
	b, err := randBelow(Prime)
	if err != nil {
		return nil, err
	}
	c := new(big.Int).Mod(new(big.Int).Mul(a, b), Prime)

	aShares, err := ShareSecret(a, n, func() (*big.Int, error) { return randBelow(Prime) })
	if err != nil {
		return nil, err
	}
	bShares, err := ShareSecret(b, n, func() (*big.Int, error) { return randBelow(Prime) })
	if err != nil {
		return nil, err
	}
	cShares, err := ShareSecret(c, n, func() (*big.Int, error) { return randBelow(Prime) })
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, n)
	for id := range g.participants {
		ids = append(ids, id)
	}

	out := make(map[string]BeaverTriplet, n)
	for i, id := range ids {
		out[id] = BeaverTriplet{A: aShares[i], B: bShares[i], C: cShares[i]}
	}
	return out, nil
}

func randBelow(max *big.Int) (*big.Int, error) {
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return nil, errors.Wrap(ErrGeneratorFailure, "sampling random field element")
	}
	return n, nil
}
