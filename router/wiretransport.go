package router

import (
	"sync"

	"github.com/wampio/nexus/wamp"
)

// WireTransport adapts a wamp.Peer obtained from the transport package
// (a websocket connection, or any other real wire transport) together with
// whatever pre-authentication state the listener already established out
// of band, into the Transport capability set RouterSession depends on. A
// listener builds one of these per accepted connection and passes it to
// RealmRegistry.Attach.
type WireTransport struct {
	wamp.Peer
	details TransportDetails

	cookieID string

	preAuthID     string
	preAuthRole   string
	preAuthMethod string
	preAuthRealm  string
	preAuthExtra  wamp.Dict

	abortOnce sync.Once
}

// NewWireTransport wraps peer, reporting details when asked (spec.md §6's
// SessionDetails.serializer/transport fields consume this).
func NewWireTransport(peer wamp.Peer, details TransportDetails) *WireTransport {
	return &WireTransport{Peer: peer, details: details}
}

// WithCookie records the cbtid bound to this connection by an HTTP cookie.
func (t *WireTransport) WithCookie(cbtid string) *WireTransport {
	t.cookieID = cbtid
	return t
}

// WithPreAuth records identity the listener already verified out of band
// (a TLS client certificate, a trusted Unix-domain-socket peer). Passing an
// empty method leaves the transport unauthenticated by this means.
func (t *WireTransport) WithPreAuth(method, authid, authrole, realm string, extra wamp.Dict) *WireTransport {
	t.preAuthMethod = method
	t.preAuthID = authid
	t.preAuthRole = authrole
	t.preAuthRealm = realm
	t.preAuthExtra = extra
	return t
}

func (t *WireTransport) Abort() {
	t.abortOnce.Do(t.Peer.Close)
}

// IsOpen always reports true: this module's wamp.Peer implementations
// (localPeer, websocketPeer) don't expose a liveness check beyond their
// Recv channel closing, which Send/Recv already surface as an error.
func (t *WireTransport) IsOpen() bool { return true }

func (t *WireTransport) Details() TransportDetails { return t.details }

func (t *WireTransport) PreAuthID() string       { return t.preAuthID }
func (t *WireTransport) PreAuthRole() string     { return t.preAuthRole }
func (t *WireTransport) PreAuthMethod() string   { return t.preAuthMethod }
func (t *WireTransport) PreAuthRealm() string    { return t.preAuthRealm }
func (t *WireTransport) PreAuthExtra() wamp.Dict { return t.preAuthExtra }
func (t *WireTransport) CookieID() string        { return t.cookieID }
