package smc

import (
	"context"

	"github.com/google/uuid"
)

// PrivateChannel is a point-to-point transport between two parties,
// keyed by the secret's node id so concurrent sends under distinct nodes
// never interfere.
type PrivateChannel interface {
	SendPrivate(ctx context.Context, to string, secretID uuid.UUID, payload []byte) error
	ReceivePrivate(ctx context.Context, secretID uuid.UUID) ([]byte, error)
}

// Broadcast is an all-parties publish/subscribe transport used to open
// the Beaver D and E values of each multiplication and to exchange
// reconstruction shares of the final result, keyed by a label and the
// publishing party's id.
type Broadcast interface {
	Publish(ctx context.Context, label string, payload []byte) error
	Retrieve(ctx context.Context, from, label string) ([]byte, error)
}

// TripletSource is the subset of TrustedParamGenerator a Party needs: a
// way to retrieve its own share of the Beaver triplet for a given
// multiplication node.
type TripletSource interface {
	RetrieveTriplet(ctx context.Context, participantID string, nodeID uuid.UUID) (BeaverTriplet, error)
}
