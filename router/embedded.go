package router

import (
	"fmt"

	"github.com/wampio/nexus/stdlog"
	"github.com/wampio/nexus/transport"
	"github.com/wampio/nexus/wamp"
)

// EmbeddedHooks are the lifecycle callbacks an in-process application
// receives. They stand in for the observer events crossbar's
// RouterApplicationSession fires on a wrapped ApplicationSession: 'connect'
// and onConnect collapse into OnConnect, 'join' and onJoin collapse into
// OnJoin (this module has no separate observable-event bus from callback
// interface), 'ready' is OnReady, and onLeave/'leave'/'disconnect' collapse
// into OnLeave. A nil hook is simply skipped.
type EmbeddedHooks struct {
	OnConnect func()
	OnJoin    func(sess *wamp.Session)
	OnReady   func()
	OnLeave   func(goodbye *wamp.Goodbye)
}

// embeddedTransportDetails is fixed for every in-process session, matching
// crossbar's "pass-through transport": CHANNEL_TYPE_FUNCTION,
// CHANNEL_FRAMING_NATIVE, CHANNEL_SERIALIZER_NONE (no wire framing or
// serializer is ever involved).
var embeddedTransportDetails = TransportDetails{
	ChannelType:    ChannelTypeFunction,
	ChannelFraming: ChannelFramingNative,
	Serializer:     SerializerNone,
}

// embeddedTransport adapts the router-facing half of an in-process linked
// peer pair (transport.LinkedPeers) to the router's Transport capability
// set. It is always open and never pre-authenticated out of band, since
// identity for an embedded session is supplied directly by its creator.
type embeddedTransport struct {
	wamp.Peer
}

func (embeddedTransport) Abort()                   {}
func (embeddedTransport) IsOpen() bool              { return true }
func (embeddedTransport) Details() TransportDetails { return embeddedTransportDetails }
func (embeddedTransport) PreAuthID() string         { return "" }
func (embeddedTransport) PreAuthRole() string       { return "" }
func (embeddedTransport) PreAuthMethod() string     { return "" }
func (embeddedTransport) PreAuthRealm() string      { return "" }
func (embeddedTransport) PreAuthExtra() wamp.Dict   { return nil }
func (embeddedTransport) CookieID() string          { return "" }

// EmbeddedSession is an in-process WAMP session that bypasses the wire
// handshake (spec.md §5): it constructs a wamp.Session and attaches it to
// the realm directly, with authid/authrole/authextra trusted at
// construction rather than negotiated via HELLO/WELCOME.
type EmbeddedSession struct {
	realm Router
	sess  *wamp.Session
	hooks EmbeddedHooks
	log   stdlog.StdLog

	closing bool
}

// NewEmbeddedSession attaches a new in-process session to realmObj under
// the given trusted identity, fires the connect/join/onJoin/ready sequence
// (each stage isolated so one hook's failure cannot prevent the next from
// running), and returns the wamp.Peer the embedded application uses to
// exchange messages, plus a detach function the caller invokes to end the
// session (equivalent to crossbar's RouterApplicationSession.close).
func NewEmbeddedSession(realmObj Router, authid, authrole string, authextra wamp.Dict, hooks EmbeddedHooks, log stdlog.StdLog) (wamp.Peer, func(), error) {
	appSide, routerSide := transport.LinkedPeers()

	es := &EmbeddedSession{realm: realmObj, hooks: hooks, log: log}
	es.safely("connect", hooks.OnConnect)

	sessID := wamp.GlobalID()
	sessDetails := wamp.Dict{
		"realm":    realmObj.ID(),
		"authid":   authid,
		"authrole": authrole,
	}
	if authextra != nil {
		sessDetails["authextra"] = authextra
	}
	sess := wamp.NewSession(embeddedTransport{Peer: routerSide}, sessID, sessDetails, wamp.Dict{})

	if !realmObj.HasRole(authrole) && authrole != "" {
		routerSide.Close()
		return nil, nil, fmt.Errorf("realm %q does not define role %q", realmObj.ID(), authrole)
	}
	if _, err := realmObj.Attach(sess); err != nil {
		routerSide.Close()
		return nil, nil, err
	}
	es.sess = sess

	es.safely("join", func() {
		if hooks.OnJoin != nil {
			hooks.OnJoin(sess)
		}
	})
	es.safely("ready", hooks.OnReady)

	realmObj.ServiceSession().Publish(wamp.MetaEventSessionOnJoin, wamp.List{}, wamp.Dict{
		"session":  sessID,
		"authid":   authid,
		"authrole": authrole,
	})

	go es.run(routerSide)

	return appSide, func() { es.close(routerSide, nil) }, nil
}

// run pumps messages the embedded application sent on its side of the
// linked peer pair: app-to-router requests are handed to the realm for
// routing, GOODBYE ends the session, and anything else (there being no wire
// handshake, no HELLO/WELCOME/CHALLENGE should ever appear here) is logged
// and dropped.
func (es *EmbeddedSession) run(routerSide wamp.Peer) {
	for msg := range routerSide.Recv() {
		switch m := msg.(type) {
		case *wamp.Publish, *wamp.Subscribe, *wamp.Unsubscribe, *wamp.Call, *wamp.Cancel,
			*wamp.Register, *wamp.Unregister, *wamp.Yield:
			es.realm.Process(es.sess, msg)
		case *wamp.Error:
			if m.Type == wamp.INVOCATION {
				es.realm.Process(es.sess, msg)
			} else {
				es.log.Printf("embedded session %d: ignoring unexpected %s for %s from application", es.sess.ID, msg.MessageType(), m.Type)
			}
		case *wamp.Goodbye:
			es.close(routerSide, m)
			return
		default:
			es.log.Printf("embedded session %d: ignoring unexpected %s from application", es.sess.ID, msg.MessageType())
		}
	}
}

// close runs the onLeave/detach sequence once, tolerating being invoked
// both from a received GOODBYE and from the caller's returned detach
// closure. Detaching from the realm is deferred until this call returns to
// its caller (the run loop, or the top-level detach closure) rather than
// performed inline, mirroring crossbar's reactor.callLater(0, detach, ...):
// an onLeave hook that itself triggers a synchronous close must not
// recursively re-enter detach while the first detach is still unwinding.
func (es *EmbeddedSession) close(routerSide wamp.Peer, goodbye *wamp.Goodbye) {
	if es.closing {
		return
	}
	es.closing = true

	es.safely("leave", func() {
		if es.hooks.OnLeave != nil {
			es.hooks.OnLeave(goodbye)
		}
	})

	es.realm.ServiceSession().Publish(wamp.MetaEventSessionOnLeave, wamp.List{}, wamp.Dict{"session": es.sess.ID})

	go func() {
		if err := es.realm.Detach(es.sess); err != nil && err != ErrNotAttached {
			es.log.Printf("embedded session %d: detach: %v", es.sess.ID, err)
		}
		if goodbye != nil {
			es.sess.End(goodbye)
		} else {
			es.sess.End(wamp.NoGoodbye)
		}
		routerSide.Close()
	}()
}

// safely runs fn, recovering and logging any panic so that one failing
// observer cannot prevent the connect/join/ready/leave sequence from
// continuing, matching the per-stage error isolation crossbar's
// _log_error/_swallow_error callbacks provide around each fired stage.
func (es *EmbeddedSession) safely(stage string, fn func()) {
	if fn == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			es.log.Printf("embedded session: %s hook panicked: %v", stage, r)
		}
	}()
	fn()
}
