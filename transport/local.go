// Package transport provides the concrete Peer implementations that sit
// behind a router.Transport: an in-process channel pair for testing and
// for the embedded-session path, and a websocket transport for real wire
// connections. The wire format and serialization are intentionally kept
// out of the router/wamp packages, per spec.md §1's external-collaborator
// scope note.
package transport

import (
	"sync"

	"github.com/wampio/nexus/wamp"
)

// linkState is shared by both ends of a LinkedPeers pair so that either
// side closing tears down both: a real transport's disconnect is visible
// to both peers, not just the one that called Close.
type linkState struct {
	mu     sync.Mutex
	closed bool
}

// localPeer is a Peer whose "wire" is a pair of Go channels, connecting it
// to another localPeer in the same process. This is what LinkedPeers
// returns, and it is also the shape of the "native/none" transport an
// EmbeddedSession presents (see router/embedded.go).
type localPeer struct {
	rd    chan wamp.Message
	wr    chan wamp.Message
	state *linkState
}

// LinkedPeers creates two connected peers, typically named client and
// server by convention: messages sent on one arrive on the other's Recv
// channel, and closing either end closes both Recv channels, the same
// observable behavior as a dropped socket. This is the in-process
// handshake fixture used throughout the router package's tests, grounded
// on the teacher's own router_test.go use of the same helper.
func LinkedPeers() (client wamp.Peer, server wamp.Peer) {
	abuf := make(chan wamp.Message, 16)
	bbuf := make(chan wamp.Message, 16)
	state := &linkState{}
	a := &localPeer{rd: abuf, wr: bbuf, state: state}
	b := &localPeer{rd: bbuf, wr: abuf, state: state}
	return a, b
}

func (p *localPeer) Send(msg wamp.Message) error {
	p.state.mu.Lock()
	defer p.state.mu.Unlock()
	if p.state.closed {
		return errClosed
	}
	select {
	case p.wr <- msg:
		return nil
	default:
		return errClosed
	}
}

func (p *localPeer) Recv() <-chan wamp.Message { return p.rd }

// Close tears down both ends of the pair: whichever side calls it first
// closes both underlying channels under the shared lock, so the remote
// side's Recv channel closes exactly as it would on real transport loss.
func (p *localPeer) Close() {
	p.state.mu.Lock()
	defer p.state.mu.Unlock()
	if p.state.closed {
		return
	}
	p.state.closed = true
	close(p.rd)
	close(p.wr)
}

var errClosed = closedPeerError{}

type closedPeerError struct{}

func (closedPeerError) Error() string { return "peer closed" }
