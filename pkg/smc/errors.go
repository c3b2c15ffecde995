package smc

import "github.com/pkg/errors"

var (
	// ErrContractViolation signals a caller misuse: malformed expression
	// tree, an owned secret without a value, a secret with no received
	// share, wrong share count.
	ErrContractViolation = errors.New("smc: contract violation")
	// ErrTransportFailure signals a private-channel or broadcast failure,
	// including context cancellation while waiting on a peer.
	ErrTransportFailure = errors.New("smc: transport failure")
	// ErrGeneratorFailure signals a trusted parameter generator failure:
	// an unregistered participant requesting a triplet, or a triplet
	// requested under a node id the generator cannot service.
	ErrGeneratorFailure = errors.New("smc: generator failure")
)
