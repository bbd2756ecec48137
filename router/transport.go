package router

import (
	"github.com/wampio/nexus/wamp"
)

// TransportDetails describes the channel a RouterSession sits behind, the
// same information crossbar's TransportDetails carries: enough to report
// in SessionDetails.Serializer and to let PendingAuth variants make
// decisions (e.g. TLS auth inspecting the peer certificate).
type TransportDetails struct {
	ChannelType     string // "websocket", "rawsocket", "function" (embedded)
	ChannelFraming  string // "websocket", "batched", "native"
	Serializer      string // "json", "msgpack", "cbor", "none"
	Peer            string // remote address or description
	HTTPHeaders     map[string][]string
	TLSClientCommon string // peer certificate CN, if TLS client-cert auth is used; "" otherwise
}

const (
	ChannelTypeFunction = "function"
	ChannelFramingNative = "native"
	SerializerNone      = "none"
)

// Transport is the capability set the session core requires of whatever
// sits between it and the wire (see spec.md §6). It embeds wamp.Peer for
// message exchange and adds the session-lifecycle and pre-authentication
// surface a real transport (websocket, raw-socket, HTTP-cookie-bearing
// listener, TLS listener) provides.
type Transport interface {
	wamp.Peer

	// Abort forcibly tears down the transport without a graceful
	// handshake, used when authentication is denied.
	Abort()
	// IsOpen reports whether the transport can still be written to.
	IsOpen() bool
	// Details returns static information about this transport.
	Details() TransportDetails

	// The following report pre-authentication state a listener may have
	// already established out of band (HTTP cookie lookup, TLS client
	// certificate, or an operator-trusted listener). A zero value (""
	// for strings) means "not pre-authenticated by this means".
	PreAuthID() string
	PreAuthRole() string
	PreAuthMethod() string
	PreAuthRealm() string
	PreAuthExtra() wamp.Dict
	// CookieID returns the cbtid bound to this transport by an HTTP
	// cookie, or "" if none.
	CookieID() string
}
