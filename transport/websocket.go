package transport

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wampio/nexus/stdlog"
	"github.com/wampio/nexus/transport/serialize"
	"github.com/wampio/nexus/wamp"
)

// WAMP websocket subprotocol identifiers for unbatched modes.
const (
	jsonWebsocketProtocol    = "wamp.2.json"
	msgpackWebsocketProtocol = "wamp.2.msgpack"

	outQueueSize = 16
	ctrlTimeout  = 5 * time.Second
)

// Subprotocols returns the websocket subprotocol names this transport
// offers, in preference order (serializerFor maps each name to its
// Serializer and websocket payload type). Callers building an *http.Server
// websocket upgrade pass these to websocket.Upgrader.Subprotocols.
func Subprotocols() []string {
	return []string{jsonWebsocketProtocol, msgpackWebsocketProtocol}
}

func serializerFor(protocol string) (serialize.Serializer, int) {
	switch protocol {
	case msgpackWebsocketProtocol:
		return serialize.MessagePackSerializer{}, websocket.BinaryMessage
	default:
		return serialize.JSONSerializer{}, websocket.TextMessage
	}
}

// websocketPeer implements wamp.Peer over an established *websocket.Conn.
// It is the transport a RouterSession sits behind when serving real
// clients (as opposed to the in-process localPeer used for embedded
// sessions and tests).
type websocketPeer struct {
	conn        *websocket.Conn
	serializer  serialize.Serializer
	payloadType int

	closed chan struct{}
	rd     chan wamp.Message
	wr     chan wamp.Message

	writerDone chan struct{}

	log stdlog.StdLog
}

// NewWebsocketPeer wraps an already-upgraded websocket connection (server
// side) or an already-dialed one (client side) as a wamp.Peer. protocol is
// the negotiated subprotocol, used to pick the serializer.
func NewWebsocketPeer(conn *websocket.Conn, protocol string, log stdlog.StdLog) wamp.Peer {
	serializer, payloadType := serializerFor(protocol)
	w := &websocketPeer{
		conn:        conn,
		serializer:  serializer,
		payloadType: payloadType,
		closed:      make(chan struct{}),
		writerDone:  make(chan struct{}),
		rd:          make(chan wamp.Message),
		wr:          make(chan wamp.Message, outQueueSize),
		log:         log,
	}
	go w.recvHandler()
	go w.sendHandler()
	return w
}

func (w *websocketPeer) Recv() <-chan wamp.Message { return w.rd }

func (w *websocketPeer) Send(msg wamp.Message) error {
	select {
	case w.wr <- msg:
		return nil
	case <-w.closed:
		return errClosed
	}
}

// Close closes the websocket peer. Do not call Send after calling Close.
func (w *websocketPeer) Close() {
	select {
	case <-w.closed:
		return
	default:
	}
	w.wr <- nil
	<-w.writerDone
	close(w.closed)
	closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "goodbye")
	w.conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(ctrlTimeout))
	w.conn.Close()
}

func (w *websocketPeer) sendHandler() {
	defer close(w.writerDone)
	for msg := range w.wr {
		if msg == nil {
			return
		}
		b, err := w.serializer.Serialize(msg)
		if err != nil {
			w.log.Print(err)
			continue
		}
		if err = w.conn.WriteMessage(w.payloadType, b); err != nil {
			if !wamp.IsGoodbyeAck(msg) {
				w.log.Print(err)
			}
			return
		}
	}
}

func (w *websocketPeer) recvHandler() {
	defer close(w.rd)
	defer w.conn.Close()
	for {
		msgType, b, err := w.conn.ReadMessage()
		if err != nil {
			select {
			case <-w.closed:
			default:
				w.wr <- nil
				<-w.writerDone
			}
			return
		}
		if msgType == websocket.CloseMessage {
			return
		}
		msg, err := w.serializer.Deserialize(b)
		if err != nil {
			w.log.Println("cannot deserialize peer message:", err)
			continue
		}
		select {
		case w.rd <- msg:
		case <-w.closed:
			select {
			case w.rd <- msg:
			case <-time.After(time.Second):
			}
			return
		}
	}
}

// Upgrade upgrades an inbound HTTP request to a websocket connection and
// returns the resulting Peer, selecting a serializer from the negotiated
// subprotocol. The caller (the router's HTTP listener, out of scope here)
// is responsible for passing a Request that already carries any cookie
// used for WAMP-Cookie authentication; the transport only carries bytes.
func Upgrade(w http.ResponseWriter, r *http.Request, log stdlog.StdLog) (wamp.Peer, error) {
	upgrader := websocket.Upgrader{Subprotocols: Subprotocols()}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	return NewWebsocketPeer(conn, conn.Subprotocol(), log), nil
}
