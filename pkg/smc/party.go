package smc

import (
	"context"
	"math/big"
	"sort"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// ProtocolSpec is the shared, agreed-upon description of one SMC run:
// the expression tree every party evaluates, the full participant roster
// (order matters: it fixes which share index each participant receives),
// and which participant owns (holds the plaintext input for) each secret
// node in the tree.
type ProtocolSpec struct {
	Root           *Expression
	ParticipantIDs []string
	Owners         map[uuid.UUID]string
}

// designatedParty is the lexicographically-smallest participant id. By
// convention it is the only party that injects a public scalar's actual
// value into an Add/Sub; every other party contributes a zero share, so
// the sum of shares still reconstructs to the scalar.
func designatedParty(ids []string) string {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	return sorted[0]
}

// Party is one participant's local state and execution context for a
// single ProtocolSpec run.
type Party struct {
	ID     string
	spec   *ProtocolSpec
	Values map[uuid.UUID]*big.Int // plaintext values for secrets this party owns
	net    PrivateChannel
	bus    Broadcast
	ttp    TripletSource

	designated string
	received   map[uuid.UUID]Share
}

// NewParty constructs a participant bound to spec and the given
// transport/generator handles, with ownValues supplying the plaintext
// for every secret node spec.Owners assigns to id.
func NewParty(id string, spec *ProtocolSpec, ownValues map[uuid.UUID]*big.Int, net PrivateChannel, bus Broadcast, ttp TripletSource) *Party {
	return &Party{
		ID:         id,
		spec:       spec,
		Values:     ownValues,
		net:        net,
		bus:        bus,
		ttp:        ttp,
		designated: designatedParty(spec.ParticipantIDs),
		received:   make(map[uuid.UUID]Share),
	}
}

// Run distributes shares of this party's owned secrets, collects shares
// of every other secret, evaluates the expression tree, and reconstructs
// the final result from every party's share of the root.
func (p *Party) Run(ctx context.Context) (*big.Int, error) {
	if err := p.distributeOwnedSecrets(ctx); err != nil {
		return nil, err
	}
	if err := p.collectForeignSecrets(ctx); err != nil {
		return nil, err
	}

	rootShare, err := p.evaluate(ctx, p.spec.Root)
	if err != nil {
		return nil, err
	}

	payload, err := rootShare.MarshalBinary()
	if err != nil {
		return nil, err
	}
	if err := p.bus.Publish(ctx, "root", payload); err != nil {
		return nil, errors.Wrap(ErrTransportFailure, err.Error())
	}

	shares := make([]Share, 0, len(p.spec.ParticipantIDs))
	for _, id := range p.spec.ParticipantIDs {
		raw, err := p.bus.Retrieve(ctx, id, "root")
		if err != nil {
			return nil, err
		}
		var s Share
		if err := s.UnmarshalBinary(raw); err != nil {
			return nil, err
		}
		shares = append(shares, s)
	}
	return Reconstruct(shares), nil
}

func (p *Party) distributeOwnedSecrets(ctx context.Context) error {
	for secretID, owner := range p.spec.Owners {
		if owner != p.ID {
			continue
		}
		value, ok := p.Values[secretID]
		if !ok {
			return errors.Wrapf(ErrContractViolation, "party %q owns secret %s but has no value for it", p.ID, secretID)
		}

		shares, err := ShareSecret(value, len(p.spec.ParticipantIDs), func() (*big.Int, error) { return randBelow(Prime) })
		if err != nil {
			return err
		}

		for i, otherID := range p.spec.ParticipantIDs {
			if otherID == p.ID {
				p.received[secretID] = shares[i]
				continue
			}
			payload, err := shares[i].MarshalBinary()
			if err != nil {
				return err
			}
			if err := p.net.SendPrivate(ctx, otherID, secretID, payload); err != nil {
				return errors.Wrap(ErrTransportFailure, err.Error())
			}
		}
	}
	return nil
}

func (p *Party) collectForeignSecrets(ctx context.Context) error {
	for secretID, owner := range p.spec.Owners {
		if owner == p.ID {
			continue
		}
		raw, err := p.net.ReceivePrivate(ctx, secretID)
		if err != nil {
			return err
		}
		var s Share
		if err := s.UnmarshalBinary(raw); err != nil {
			return err
		}
		p.received[secretID] = s
	}
	return nil
}

// evaluate walks the expression tree, returning this party's share of
// the subtree's value at every node.
func (p *Party) evaluate(ctx context.Context, e *Expression) (Share, error) {
	switch e.Kind() {
	case KindScalar:
		if p.ID == p.designated {
			return NewShare(e.ScalarValue()), nil
		}
		return NewShare(big.NewInt(0)), nil

	case KindSecret:
		s, ok := p.received[e.ID()]
		if !ok {
			return Share{}, errors.Wrapf(ErrContractViolation, "no share received for secret %s", e.ID())
		}
		return s, nil

	case KindAdd:
		l, r := e.Operands()
		ls, err := p.evaluate(ctx, l)
		if err != nil {
			return Share{}, err
		}
		rs, err := p.evaluate(ctx, r)
		if err != nil {
			return Share{}, err
		}
		return ls.Add(rs), nil

	case KindSub:
		l, r := e.Operands()
		ls, err := p.evaluate(ctx, l)
		if err != nil {
			return Share{}, err
		}
		rs, err := p.evaluate(ctx, r)
		if err != nil {
			return Share{}, err
		}
		return ls.Sub(rs), nil

	case KindMul:
		return p.evaluateMul(ctx, e)

	default:
		return Share{}, errors.Wrap(ErrContractViolation, "unknown expression kind")
	}
}

// isPureScalar reports whether e's entire subtree is built only from
// scalar leaves and Add/Sub/Mul over them, so its value is a public
// constant known without any party's share.
func isPureScalar(e *Expression) bool {
	switch e.Kind() {
	case KindScalar:
		return true
	case KindAdd, KindSub, KindMul:
		l, r := e.Operands()
		return isPureScalar(l) && isPureScalar(r)
	default:
		return false
	}
}

// pureScalarValue computes the constant value of a subtree isPureScalar
// already confirmed is scalar-only.
func pureScalarValue(e *Expression) *big.Int {
	switch e.Kind() {
	case KindScalar:
		return e.ScalarValue()
	case KindAdd:
		l, r := e.Operands()
		return new(big.Int).Add(pureScalarValue(l), pureScalarValue(r))
	case KindSub:
		l, r := e.Operands()
		return new(big.Int).Sub(pureScalarValue(l), pureScalarValue(r))
	case KindMul:
		l, r := e.Operands()
		return new(big.Int).Mul(pureScalarValue(l), pureScalarValue(r))
	default:
		panic("smc: pureScalarValue called on non-pure-scalar expression")
	}
}

// evaluateMul handles scalar*share multiplication locally (no triplet
// needed whenever one operand's whole subtree is a public constant) and
// falls back to the Beaver protocol only when both operands are
// themselves shared values.
func (p *Party) evaluateMul(ctx context.Context, e *Expression) (Share, error) {
	l, r := e.Operands()

	if isPureScalar(l) {
		rs, err := p.evaluate(ctx, r)
		if err != nil {
			return Share{}, err
		}
		return rs.MulScalar(pureScalarValue(l)), nil
	}
	if isPureScalar(r) {
		ls, err := p.evaluate(ctx, l)
		if err != nil {
			return Share{}, err
		}
		return ls.MulScalar(pureScalarValue(r)), nil
	}

	xi, err := p.evaluate(ctx, l)
	if err != nil {
		return Share{}, err
	}
	yi, err := p.evaluate(ctx, r)
	if err != nil {
		return Share{}, err
	}

	triplet, err := p.ttp.RetrieveTriplet(ctx, p.ID, e.ID())
	if err != nil {
		return Share{}, err
	}

	di := xi.Sub(triplet.A)
	ei := yi.Sub(triplet.B)

	D, err := p.openShare(ctx, e.ID(), "D", di)
	if err != nil {
		return Share{}, err
	}
	E, err := p.openShare(ctx, e.ID(), "E", ei)
	if err != nil {
		return Share{}, err
	}

	zi := triplet.C.AddScalar(new(big.Int).Mul(triplet.A.Value(), E)).AddScalar(new(big.Int).Mul(triplet.B.Value(), D))
	if p.ID == p.designated {
		zi = zi.AddScalar(new(big.Int).Mul(D, E))
	}
	return zi, nil
}

// openShare broadcasts this party's share of a value under label and
// reconstructs the opened (public) value from every party's
// contribution.
func (p *Party) openShare(ctx context.Context, nodeID uuid.UUID, label string, share Share) (*big.Int, error) {
	fullLabel := nodeID.String() + ":" + label
	payload, err := share.MarshalBinary()
	if err != nil {
		return nil, err
	}
	if err := p.bus.Publish(ctx, fullLabel, payload); err != nil {
		return nil, errors.Wrap(ErrTransportFailure, err.Error())
	}

	shares := make([]Share, 0, len(p.spec.ParticipantIDs))
	for _, id := range p.spec.ParticipantIDs {
		raw, err := p.bus.Retrieve(ctx, id, fullLabel)
		if err != nil {
			return nil, err
		}
		var s Share
		if err := s.UnmarshalBinary(raw); err != nil {
			return nil, err
		}
		shares = append(shares, s)
	}
	return Reconstruct(shares), nil
}

// RunLocal drives a complete in-process protocol run over a fresh
// LocalNetwork and TrustedParamGenerator, one goroutine per participant,
// aborting all participants on the first error.
func RunLocal(ctx context.Context, spec *ProtocolSpec, values map[string]map[uuid.UUID]*big.Int) (map[string]*big.Int, error) {
	net := NewLocalNetwork()
	ttp := NewTrustedParamGenerator()
	for _, id := range spec.ParticipantIDs {
		ttp.AddParticipant(id)
	}

	g, ctx := errgroup.WithContext(ctx)
	results := make(map[string]*big.Int, len(spec.ParticipantIDs))

	type outcome struct {
		id     string
		result *big.Int
	}
	outcomes := make(chan outcome, len(spec.ParticipantIDs))

	for _, id := range spec.ParticipantIDs {
		id := id
		handle := net.Handle(id)
		party := NewParty(id, spec, values[id], handle, handle, ttp)
		g.Go(func() error {
			r, err := party.Run(ctx)
			if err != nil {
				return err
			}
			outcomes <- outcome{id: id, result: r}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	close(outcomes)
	for o := range outcomes {
		results[o.id] = o.result
	}
	return results, nil
}
