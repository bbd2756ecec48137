package wamp

import (
	"errors"
	"time"
)

// Peer is the interface a transport presents to the router for exchanging
// WAMP messages. It is deliberately minimal: framing, serialization, and
// the actual network I/O are a transport concern (out of scope for this
// package, see spec.md §1).
type Peer interface {
	// Send queues msg for delivery to the remote side.
	Send(Message) error
	// Recv returns the channel of messages received from the remote side.
	// The channel is closed when the transport is gone.
	Recv() <-chan Message
	// Close closes the peer's connection to its remote side.
	Close()
}

// RecvTimeout waits for a single message from p, or returns an error if
// none arrives within timeout or the peer's receive channel closes first.
func RecvTimeout(p Peer, timeout time.Duration) (Message, error) {
	select {
	case msg, open := <-p.Recv():
		if !open {
			return nil, errors.New("peer closed")
		}
		return msg, nil
	case <-time.After(timeout):
		return nil, errors.New("timed out waiting for message")
	}
}
