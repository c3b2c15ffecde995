package abc

import (
	"crypto/sha256"
	"sort"

	"github.com/pkg/errors"
	"go.dedis.ch/kyber/v3"
	"go.dedis.ch/kyber/v3/pairing"
)

// NoneSubscription is the sentinel alphabet entry filling an issuer-side
// attribute slot for a subscription the holder was not issued. Disclosed
// attribute maps leave non-chosen slots out instead of filling them.
const NoneSubscription = "None"

// PrivateAttrCount is the number of alphabet-independent attribute slots
// reserved ahead of the public alphabet: index 1 is always the holder's
// own secret, never part of the public subscription alphabet.
const PrivateAttrCount = 1

// Alphabet is the public, sorted vocabulary of subscription strings a key
// is generated over, with "None" prepended so every non-chosen slot has
// a well-defined attribute value (spec's supplemented subscription
// alphabet, grounded in stroll.py's all_subscriptions_attribute_map).
type Alphabet struct {
	suite   pairing.Suite
	entries []string
	scalars map[string]kyber.Scalar
}

// NewAlphabet builds the sorted ["None", subscriptions...] vocabulary and
// maps each entry to its deterministic attribute scalar.
func NewAlphabet(suite pairing.Suite, subscriptions []string) *Alphabet {
	sorted := append([]string(nil), subscriptions...)
	sort.Strings(sorted)

	entries := append([]string{NoneSubscription}, sorted...)
	scalars := make(map[string]kyber.Scalar, len(entries))
	for _, e := range entries {
		scalars[e] = ToAttribute(suite, e)
	}
	return &Alphabet{suite: suite, entries: entries, scalars: scalars}
}

// ToAttribute deterministically maps a subscription string to a scalar
// via SHA-256 followed by reduction mod q, so issuer and holder always
// agree on an attribute's value without further coordination.
func ToAttribute(suite pairing.Suite, subscription string) kyber.Scalar {
	digest := sha256.Sum256([]byte(subscription))
	return suite.G1().Scalar().SetBytes(digest[:])
}

// Attributes returns the full alphabet's scalars, in entry order, for use
// as the attribute list passed to KeyGen. Index 0 here corresponds to
// public attribute index PrivateAttrCount+1.
func (a *Alphabet) Attributes() []kyber.Scalar {
	out := make([]kyber.Scalar, len(a.entries))
	for i, e := range a.entries {
		out[i] = a.scalars[e]
	}
	return out
}

func (a *Alphabet) contains(subscription string) bool {
	_, ok := a.scalars[subscription]
	return ok
}

func (a *Alphabet) validate(chosen []string) error {
	if len(chosen) == 0 {
		return errors.Wrap(ErrContractViolation, "no subscriptions chosen")
	}
	for _, s := range chosen {
		if !a.contains(s) {
			return errors.Wrapf(ErrContractViolation, "unknown subscription %q", s)
		}
	}
	return nil
}

// index returns the public attribute index for alphabet entry at position
// pos (0-based, "None" at pos 0): PrivateAttrCount slots precede the
// alphabet, so entry pos maps to attribute index pos+PrivateAttrCount+1.
func (a *Alphabet) index(pos int) int {
	return pos + PrivateAttrCount + 1
}

// BuildDisclosedAttributes returns the AttributeMap for a showing proof's
// disclosed subset: only the chosen subscriptions' indices are present.
func (a *Alphabet) BuildDisclosedAttributes(chosen []string) (AttributeMap, error) {
	if err := a.validate(chosen); err != nil {
		return nil, err
	}
	chosenSet := make(map[string]struct{}, len(chosen))
	for _, s := range chosen {
		chosenSet[s] = struct{}{}
	}

	out := make(AttributeMap)
	for pos, e := range a.entries {
		if pos == 0 {
			continue // "None" is never itself disclosed
		}
		if _, ok := chosenSet[e]; ok {
			out[a.index(pos)] = a.scalars[e]
		}
	}
	return out, nil
}

// BuildIssuerAttributes returns the full issuer-side AttributeMap: every
// non-holder-secret slot (indices 2..L) is filled, with "None" standing
// in for any alphabet entry the holder did not choose.
func (a *Alphabet) BuildIssuerAttributes(chosen []string) (AttributeMap, error) {
	if err := a.validate(chosen); err != nil {
		return nil, err
	}
	chosenSet := make(map[string]struct{}, len(chosen))
	for _, s := range chosen {
		chosenSet[s] = struct{}{}
	}

	// Unlike BuildDisclosedAttributes, pos 0 ("None" itself) is included
	// here: it occupies a real attribute slot in the signed vector, and
	// every slot from 2..L must be present for ObtainCredential's
	// full-vector re-verification to succeed.
	out := make(AttributeMap, len(a.entries))
	for pos, e := range a.entries {
		if pos == 0 {
			out[a.index(pos)] = a.scalars[NoneSubscription]
			continue
		}
		if _, ok := chosenSet[e]; ok {
			out[a.index(pos)] = a.scalars[e]
		} else {
			out[a.index(pos)] = a.scalars[NoneSubscription]
		}
	}
	return out, nil
}
