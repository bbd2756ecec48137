// Package serialize converts wamp.Message values to and from the wire
// formats a transport carries. It is a concrete instance of the
// "serializer" external collaborator spec.md §1 scopes out of the session
// core. The router package uses only the Stats type and JSONSerializer,
// the latter to measure message size for rated-message stats.
package serialize

import "github.com/wampio/nexus/wamp"

// Serialization identifies a wire encoding by name, the same strings WAMP
// websocket subprotocols use.
type Serialization int

const (
	JSON Serialization = iota
	MSGPACK
)

func (s Serialization) String() string {
	switch s {
	case JSON:
		return "json"
	case MSGPACK:
		return "msgpack"
	default:
		return "unknown"
	}
}

// Serializer converts between wamp.Message values and wire bytes.
type Serializer interface {
	Serialize(wamp.Message) ([]byte, error)
	Deserialize([]byte) (wamp.Message, error)
}

// Stats are serializer-level counters a RouterSession reports via the
// wamp.session.on_stats meta-event when a realm enables stats (see
// spec.md §4.5). RatedMessageSize and the trigger fields are read from the
// realm's StatsConfig. No Serializer in this package updates the counters,
// so every snapshot RouterSession publishes carries zero counts; only
// First and Last vary.
type Stats struct {
	MessagesIn   int64
	MessagesOut  int64
	BytesIn      int64
	BytesOut     int64
	RatedMessage int64

	// First and Last are filled in by the caller (router/meta.go), not by
	// the serializer itself, since only the session knows whether this is
	// the first or final stats emission for its lifetime.
	First bool
	Last  bool
}
