package smc

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// mailbox is a set of single-value-per-key slots with blocking get: a put
// before the matching get simply leaves the value waiting; a get before
// the matching put blocks until either the value arrives or ctx is done.
type mailbox struct {
	mu      sync.Mutex
	values  map[string][]byte
	waiters map[string]chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{
		values:  make(map[string][]byte),
		waiters: make(map[string]chan struct{}),
	}
}

func (m *mailbox) put(key string, payload []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = payload
	if w, ok := m.waiters[key]; ok {
		close(w)
		delete(m.waiters, key)
	}
}

func (m *mailbox) get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	if v, ok := m.values[key]; ok {
		m.mu.Unlock()
		return v, nil
	}
	w, ok := m.waiters[key]
	if !ok {
		w = make(chan struct{})
		m.waiters[key] = w
	}
	m.mu.Unlock()

	select {
	case <-w:
		m.mu.Lock()
		v := m.values[key]
		m.mu.Unlock()
		return v, nil
	case <-ctx.Done():
		return nil, errors.Wrap(ErrTransportFailure, ctx.Err().Error())
	}
}

// LocalNetwork is an in-process transport shared by every Party in a
// single-process protocol run, standing in for the production transport
// layer the host application would otherwise provide.
type LocalNetwork struct {
	private *mailbox
	bcast   *mailbox
}

// NewLocalNetwork returns an empty shared network.
func NewLocalNetwork() *LocalNetwork {
	return &LocalNetwork{private: newMailbox(), bcast: newMailbox()}
}

// Handle returns the view of the network a single participant uses:
// implements both PrivateChannel and Broadcast, scoped to participantID
// for receive operations.
func (n *LocalNetwork) Handle(participantID string) *LocalNetworkHandle {
	return &LocalNetworkHandle{net: n, self: participantID}
}

// LocalNetworkHandle is one participant's view of a LocalNetwork.
type LocalNetworkHandle struct {
	net  *LocalNetwork
	self string
}

func privateKey(to string, secretID uuid.UUID) string {
	return to + "|" + secretID.String()
}

func (h *LocalNetworkHandle) SendPrivate(ctx context.Context, to string, secretID uuid.UUID, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(ErrTransportFailure, err.Error())
	}
	h.net.private.put(privateKey(to, secretID), payload)
	return nil
}

func (h *LocalNetworkHandle) ReceivePrivate(ctx context.Context, secretID uuid.UUID) ([]byte, error) {
	return h.net.private.get(ctx, privateKey(h.self, secretID))
}

func broadcastKey(from, label string) string {
	return from + "|" + label
}

func (h *LocalNetworkHandle) Publish(ctx context.Context, label string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(ErrTransportFailure, err.Error())
	}
	h.net.bcast.put(broadcastKey(h.self, label), payload)
	return nil
}

func (h *LocalNetworkHandle) Retrieve(ctx context.Context, from, label string) ([]byte, error) {
	return h.net.bcast.get(ctx, broadcastKey(from, label))
}
