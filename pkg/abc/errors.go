// Package abc implements Pointcheval-Sanders attribute-based anonymous
// credentials: signature generation and verification, a blind issuance
// protocol, and a selective-disclosure showing protocol with a
// Fiat-Shamir non-interactive zero-knowledge proof.
package abc

import "github.com/pkg/errors"

// Error kinds per the fail-closed contract: every verifier returns a plain
// bool, and every constructor that can reject malformed input wraps one of
// these two sentinels so a caller can recover the kind with errors.Cause.
var (
	// ErrContractViolation covers wrong attribute counts, duplicate or
	// out-of-range indices, unknown subscriptions, and empty disclosed
	// sets where the protocol disallows them.
	ErrContractViolation = errors.New("abc: contract violation")

	// ErrCryptoFailure covers a failed proof or signature verification
	// surfaced as a hard error (as opposed to the boolean Verify return
	// used for the disclosure/issuance NIZK checks themselves).
	ErrCryptoFailure = errors.New("abc: cryptographic verification failed")
)
