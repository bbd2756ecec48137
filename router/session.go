package router

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/wampio/nexus/stdlog"
	"github.com/wampio/nexus/transport/serialize"
	"github.com/wampio/nexus/wamp"
)

// processNodeID and processWorkerID stand in for crossbar's per-node,
// per-worker router_factory identifiers (original_source/crossbar/router/
// session.py): this module has no multi-node/multi-worker process model, so
// the whole process is "one node, one worker" for the purpose of stamping
// the x_cb_node/x_cb_worker authextra keys spec.md §4.1/§6 require.
var processNodeID = func() string {
	if h, err := os.Hostname(); err == nil && h != "" {
		return h
	}
	return "unknown"
}()

var processWorkerID = fmt.Sprintf("worker-%d", os.Getpid())

// sessionState is the RouterSession lifecycle (spec.md §2): a session moves
// forward only, never backward, and transport loss can move it to stateClosed
// from any state.
type sessionState int

const (
	stateInitial sessionState = iota
	statePendingAuth
	stateJoined
	stateGoodbyeSent
	stateClosed
)

func (s sessionState) String() string {
	switch s {
	case stateInitial:
		return "initial"
	case statePendingAuth:
		return "pending-auth"
	case stateJoined:
		return "joined"
	case stateGoodbyeSent:
		return "goodbye-sent"
	case stateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// helloTimeout bounds how long a transport may sit connected without
// sending its HELLO, matching the teacher's router.go helloTimeout.
const helloTimeout = 5 * time.Second

// RealmResolver looks up the realm a HELLO requested. Realm lifecycle
// (creation, auto-provisioning, removal) belongs to the registry that owns
// many realms, not to an individual RouterSession; see router.go's
// RealmRegistry for that side.
type RealmResolver func(realmURI wamp.URI) (Router, bool)

type testamentEntry struct {
	topic    wamp.URI
	args     wamp.List
	kwargs   wamp.Dict
	onClose  bool
	onDetach bool
}

// RouterSession drives a single wire transport through the WAMP session
// handshake (spec.md §2-4: HELLO, an optional CHALLENGE/AUTHENTICATE round,
// WELCOME) and then passes routed traffic through to the joined realm until
// GOODBYE or transport loss ends it. One RouterSession owns one goroutine
// (run); all other access to its fields goes through the mutex, the same
// division the teacher's wamp.Session uses between its owning goroutine and
// callers like Done()/Goodbye().
type RouterSession struct {
	transport    Transport
	resolveRealm RealmResolver
	authReg      *AuthMethodRegistry
	cookies      CookieStore
	log          stdlog.StdLog

	mu              sync.Mutex
	state           sessionState
	realm           Router
	sess            *wamp.Session
	pending         PendingAuth
	pendingHello    HelloDetails
	pendingRealm    Router
	cbtid           string
	stats           *statsTracker
	statsStop       chan struct{}
	testaments      []testamentEntry

	onJoined func(*RouterSession)
	onClosed func(wamp.ID)

	// onWelcome is an optional extension point invoked right after WELCOME
	// is sent but before the on_join meta-event is published, giving a
	// future auth method or personality a chance to veto a session
	// post-WELCOME without changing the PendingAuth interface. Unset by
	// default.
	onWelcome func(*RouterSession)
}

// OnWelcome registers fn to run after WELCOME is sent and before
// wamp.session.on_join is published.
func (rs *RouterSession) OnWelcome(fn func(*RouterSession)) {
	rs.mu.Lock()
	rs.onWelcome = fn
	rs.mu.Unlock()
}

// NewRouterSession constructs a RouterSession for transport. Call Start to
// begin processing; the caller retains ownership of transport until then.
func NewRouterSession(transport Transport, resolveRealm RealmResolver, authReg *AuthMethodRegistry, cookies CookieStore, log stdlog.StdLog) *RouterSession {
	return &RouterSession{
		transport:    transport,
		resolveRealm: resolveRealm,
		authReg:      authReg,
		cookies:      cookies,
		log:          log,
	}
}

// Start runs the session's handshake and message loop on a new goroutine.
func (rs *RouterSession) Start() {
	go rs.run()
}

// Session returns the joined wamp.Session, or nil before WELCOME.
func (rs *RouterSession) Session() *wamp.Session {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.sess
}

// State reports the current lifecycle state; exported for tests.
func (rs *RouterSession) State() string {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.state.String()
}

// SetTestament records an event to publish on this session's departure, the
// "will" mechanism described in spec.md §4.4 and grounded in crossbar's
// RouterApplicationSession set_testament (original_source/crossbar/router/
// session.py). onClose fires it for a graceful GOODBYE, onDetach for
// transport loss; a caller wanting both sets both true.
func (rs *RouterSession) SetTestament(topic wamp.URI, args wamp.List, kwargs wamp.Dict, onClose, onDetach bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.testaments = append(rs.testaments, testamentEntry{topic, args, kwargs, onClose, onDetach})
}

func (rs *RouterSession) run() {
	var hello *wamp.Hello
	for hello == nil {
		msg, err := wamp.RecvTimeout(rs.transport, helloTimeout)
		if err != nil {
			rs.log.Print("closing transport that never sent HELLO: ", err)
			rs.transport.Close()
			return
		}
		switch m := msg.(type) {
		case *wamp.Hello:
			hello = m
		case *wamp.Abort:
			rs.teardownUnjoined()
			return
		default:
			// Lenient: a message other than HELLO before the handshake is
			// logged and ignored rather than answered with an ABORT.
			rs.log.Printf("ignoring unexpected %s before HELLO", msg.MessageType())
		}
	}
	rs.onHello(hello)

	rs.mu.Lock()
	closed := rs.state == stateClosed
	rs.mu.Unlock()
	if closed {
		return
	}

	for {
		msg, open := <-rs.transport.Recv()
		if !open {
			rs.onTransportLost()
			return
		}
		if rs.dispatch(msg) {
			return
		}
	}
}

// dispatch handles one message according to the current state, returning
// true if the session's goroutine should now exit.
func (rs *RouterSession) dispatch(msg wamp.Message) bool {
	rs.mu.Lock()
	state := rs.state
	rs.mu.Unlock()

	switch state {
	case statePendingAuth:
		switch m := msg.(type) {
		case *wamp.Authenticate:
			rs.onAuthenticate(m)
			rs.mu.Lock()
			closed := rs.state == stateClosed
			rs.mu.Unlock()
			return closed
		case *wamp.Abort:
			rs.teardownUnjoined()
			return true
		default:
			// Lenient per spec.md §9: a message out of sequence during
			// authentication is logged and ignored rather than treated
			// as a protocol violation that tears down the transport.
			rs.log.Printf("ignoring unexpected %s while authenticating", msg.MessageType())
			return false
		}
	case stateJoined:
		switch m := msg.(type) {
		case *wamp.Goodbye:
			rs.onGoodbye(m)
			return true
		case *wamp.Hello:
			rs.log.Print("ignoring unexpected HELLO on an already-joined session")
			return false
		default:
			rs.recordInboundMessage(msg)
			rs.realm.Process(rs.sess, msg)
			return false
		}
	case stateGoodbyeSent:
		if wamp.IsGoodbyeAck(msg) {
			rs.teardownJoined(nil)
			return true
		}
		rs.log.Printf("ignoring %s while waiting for GOODBYE acknowledgement", msg.MessageType())
		return false
	default:
		rs.log.Printf("ignoring %s in state %s", msg.MessageType(), state)
		return false
	}
}

// onHello runs the authentication method selection loop spec.md §4.2
// describes: trusted-transport and cookie fast paths first, then the
// client's offered authmethods in order against this realm's configuration.
func (rs *RouterSession) onHello(hello *wamp.Hello) {
	hello.Details = wamp.NormalizeDict(hello.Details)
	if hello.Realm == "" {
		rs.abort(wamp.ErrNoSuchRealm, "no realm requested")
		return
	}
	realmObj, ok := rs.resolveRealm(hello.Realm)
	if !ok {
		rs.abort(wamp.ErrNoSuchRealm, fmt.Sprintf("no such realm %q", hello.Realm))
		return
	}

	rolesVal, ok := wamp.AsDict(hello.Details["roles"])
	if !ok || len(rolesVal) == 0 {
		rs.abort(wamp.ErrNoSuchRole, "no client roles specified")
		return
	}

	details := HelloDetails{
		AuthID:         wamp.OptionString(hello.Details, "authid"),
		AuthRole:       wamp.OptionString(hello.Details, "authrole"),
		SessionRoles:   rolesVal,
		PendingSession: wamp.GlobalID(),
	}
	if ae, ok := wamp.AsDict(hello.Details["authextra"]); ok {
		details.AuthExtra = ae
	}
	methods := authMethodsOf(hello.Details)
	if len(methods) == 0 {
		methods = []string{"anonymous"}
	}
	details.AuthMethods = methods

	// Trusted-transport fast path: a listener that already established
	// identity out of band (a Unix-domain-socket operator listener, a TLS
	// client-certificate listener) skips challenge/response entirely.
	if preMethod := rs.transport.PreAuthMethod(); preMethod != "" {
		rs.finishAuth(realmObj, Accept{
			Realm:        hello.Realm,
			AuthID:       firstNonEmpty(rs.transport.PreAuthID(), details.AuthID),
			AuthRole:     firstNonEmpty(rs.transport.PreAuthRole(), details.AuthRole),
			AuthMethod:   preMethod,
			AuthProvider: "trusted-transport",
			AuthExtra:    rs.transport.PreAuthExtra(),
		}, rolesVal)
		return
	}

	// Cookie-based pre-authentication (spec.md §6 cookie store capability).
	// A stored cookie is only honored for the realm it was established on
	// and while the client still offers the method it was originally
	// established under (or the pseudo-method "cookie" itself); a different
	// realm or method is treated as the client switching identity, which
	// revokes the stale binding instead of silently trusting it.
	if cbtid := rs.transport.CookieID(); cbtid != "" {
		rs.cbtid = cbtid
		if auth, ok := rs.cookies.GetAuth(cbtid); ok {
			if auth.Realm == hello.Realm && (containsString(methods, auth.AuthMethod) || containsString(methods, "cookie")) {
				rs.finishAuth(realmObj, Accept{
					Realm:        hello.Realm,
					AuthID:       auth.AuthID,
					AuthRole:     auth.AuthRole,
					AuthMethod:   auth.AuthMethod,
					AuthProvider: "cookie",
					AuthExtra:    auth.AuthExtra,
				}, rolesVal)
				return
			}
			rs.cookies.DelAuth(cbtid)
		}
	}

	authConfig := realmObj.AuthConfig()
	for _, method := range methods {
		if method == "cookie" {
			continue
		}
		config, configured := authConfig[method]
		if !configured {
			if len(authConfig) == 0 && method == "anonymous" {
				config = MethodConfig{}
			} else {
				continue
			}
		}
		if !rs.authReg.Has(method) {
			continue
		}
		pending := rs.authReg.New(method, details.PendingSession, rs.transport.Details(), config)
		switch d := pending.Hello(hello.Realm, details).(type) {
		case Accept:
			rs.finishAuth(realmObj, d, rolesVal)
		case Challenge:
			rs.mu.Lock()
			rs.state = statePendingAuth
			rs.pending = pending
			rs.pendingHello = details
			rs.pendingRealm = realmObj
			rs.mu.Unlock()
			rs.transport.Send(&wamp.Challenge{AuthMethod: d.AuthMethod, Extra: d.Extra})
		case Deny:
			rs.abort(d.Reason, d.Message)
		}
		return
	}
	rs.abort(wamp.ErrNoAuthMethod, "no suitable authentication method found")
}

func (rs *RouterSession) onAuthenticate(msg *wamp.Authenticate) {
	rs.mu.Lock()
	pending := rs.pending
	realmObj := rs.pendingRealm
	hello := rs.pendingHello
	rs.mu.Unlock()
	if pending == nil {
		rs.abort(wamp.ErrProtocolViolation, "unexpected AUTHENTICATE")
		return
	}
	switch d := pending.Authenticate(msg.Signature, msg.Extra).(type) {
	case Accept:
		rs.finishAuth(realmObj, d, hello.SessionRoles)
	case Deny:
		rs.abort(d.Reason, d.Message)
	default:
		rs.abort(wamp.ErrProtocolViolation, "authenticator issued a second challenge")
	}
}

// finishAuth completes a successful authentication: attaches the new
// wamp.Session to the realm, binds any cookie, starts stats tracking, sends
// WELCOME, and publishes wamp.session.on_join. peerRoles is the client's
// original HELLO.Details["roles"], propagated through by the caller even
// when authentication required a CHALLENGE/AUTHENTICATE round, so that
// HasRole/HasFeature still see what the client declared up front.
func (rs *RouterSession) finishAuth(realmObj Router, accept Accept, peerRoles wamp.Dict) {
	if accept.AuthRole != "" && !realmObj.HasRole(accept.AuthRole) {
		rs.abort(wamp.ErrNoSuchRole, fmt.Sprintf("realm does not define role %q", accept.AuthRole))
		return
	}

	sessID := wamp.GlobalID()
	sessDetails := wamp.Dict{
		"realm":        accept.Realm,
		"authid":       accept.AuthID,
		"authrole":     accept.AuthRole,
		"authmethod":   accept.AuthMethod,
		"authprovider": accept.AuthProvider,
	}
	sess := wamp.NewSession(rs.transport, sessID, sessDetails, wamp.Dict{"roles": peerRoles})

	routerRoles, err := realmObj.Attach(sess)
	if err != nil {
		rs.abort(wamp.ErrSystemShutdown, err.Error())
		return
	}

	rs.mu.Lock()
	rs.state = stateJoined
	rs.realm = realmObj
	rs.sess = sess
	rs.pending = nil
	cbtid := rs.cbtid
	rs.mu.Unlock()

	if cbtid != "" {
		rs.cookies.SetAuth(cbtid, CookieAuth{
			AuthID:     accept.AuthID,
			AuthRole:   accept.AuthRole,
			AuthMethod: accept.AuthMethod,
			Realm:      accept.Realm,
			AuthExtra:  accept.AuthExtra,
		})
		rs.cookies.Bind(cbtid, rs.transport)
	}

	welcomeDetails := wamp.Dict{
		"roles":        routerRoles,
		"authid":       accept.AuthID,
		"authrole":     accept.AuthRole,
		"authmethod":   accept.AuthMethod,
		"authprovider": accept.AuthProvider,
	}
	authExtra := wamp.Dict{}
	for k, v := range accept.AuthExtra {
		authExtra[k] = v
	}

	// Augment authextra with the four router-stamped identifiers spec.md
	// §4.1/§6 require (grounded on original_source/crossbar/router/
	// session.py:561-564,606-609's custom dict). If the pre-authenticated
	// authextra already carries a nested "transport" descriptor (a proxy
	// fronting the router forwards the client's real transport details),
	// that descriptor's peer replaces this transport's own peer for
	// reporting purposes, and the descriptor itself is removed from the
	// outgoing authextra the same way crossbar pops it.
	peer := rs.transport.Details().Peer
	if nested, ok := wamp.AsDict(authExtra["transport"]); ok {
		delete(authExtra, "transport")
		if p, ok := nested["peer"].(string); ok && p != "" {
			peer = p
		}
	}
	authExtra["x_cb_node"] = processNodeID
	authExtra["x_cb_worker"] = processWorkerID
	authExtra["x_cb_peer"] = peer
	authExtra["x_cb_pid"] = os.Getpid()
	welcomeDetails["authextra"] = authExtra
	sessDetails["authextra"] = authExtra

	if cfg := realmObj.StatsConfig(); cfg != nil {
		tracker := newStatsTracker(cfg)
		rs.mu.Lock()
		rs.stats = tracker
		rs.mu.Unlock()
		if snap := tracker.onJoin(serialize.Stats{}); snap != nil {
			realmObj.ServiceSession().Publish(wamp.MetaEventSessionOnStats, wamp.List{sessID}, statsKwargs(*snap))
		}
		if cfg.TriggerAfterDuration > 0 {
			rs.startStatsTicker(realmObj, sessID, cfg.TriggerAfterDuration)
		}
	}

	rs.transport.Send(&wamp.Welcome{ID: sessID, Details: welcomeDetails})

	rs.mu.Lock()
	onWelcome := rs.onWelcome
	rs.mu.Unlock()
	if onWelcome != nil {
		onWelcome(rs)
	}

	realmObj.ServiceSession().Publish(wamp.MetaEventSessionOnJoin, wamp.List{}, wamp.Dict{
		"session":      sessID,
		"authid":       sess.AuthID(),
		"authrole":     sess.AuthRole(),
		"authmethod":   sess.AuthMethod(),
		"authprovider": sess.AuthProvider(),
	})

	if rs.onJoined != nil {
		rs.onJoined(rs)
	}
}

// InitiateGoodbye sends a router-initiated GOODBYE (e.g. on server
// shutdown) and waits for the client's GOODBYE acknowledgement before
// tearing down, the mirror image of onGoodbye's client-initiated path.
func (rs *RouterSession) InitiateGoodbye(reason wamp.URI, details wamp.Dict) {
	rs.mu.Lock()
	if rs.state != stateJoined {
		rs.mu.Unlock()
		return
	}
	rs.state = stateGoodbyeSent
	rs.mu.Unlock()
	rs.transport.Send(&wamp.Goodbye{Reason: reason, Details: details})
}

// onGoodbye handles a client-initiated GOODBYE: acknowledges it, detaches
// from the realm, publishes on_leave/testaments, and (for wamp.close.logout)
// proactively closes every other transport sharing this session's cookie
// and revokes the cookie binding, per spec.md §6.
func (rs *RouterSession) onGoodbye(msg *wamp.Goodbye) {
	rs.fireTestament(true)
	rs.transport.Send(&wamp.Goodbye{Reason: wamp.CloseGoodbyeAndOut})
	rs.teardownJoined(msg)
}

// teardownJoined runs the on_leave/detach sequence for a session that made
// it to stateJoined, whether ending via GOODBYE (goodbye != nil) or
// transport loss (goodbye == nil, recorded as wamp.NoGoodbye).
func (rs *RouterSession) teardownJoined(goodbye *wamp.Goodbye) {
	rs.mu.Lock()
	realmObj := rs.realm
	sess := rs.sess
	cbtid := rs.cbtid
	stats := rs.stats
	statsStop := rs.statsStop
	rs.statsStop = nil
	rs.state = stateClosed
	rs.mu.Unlock()

	if statsStop != nil {
		close(statsStop)
	}

	if goodbye != nil && goodbye.Reason == wamp.CloseLogout && cbtid != "" {
		kicked := 0
		for _, other := range rs.cookies.Protocols(cbtid) {
			if other == rs.transport {
				continue
			}
			other.Abort()
			kicked++
		}
		rs.cookies.DelAuth(cbtid)
		if rs.log != nil {
			rs.log.Printf("wamp.close.logout: kicked %d other session(s) sharing cookie", kicked)
		}
	}

	if realmObj != nil && sess != nil {
		realmObj.Detach(sess)
		// sess is detached from the realm's session table before this
		// publish, so a real broker would never route the event back to
		// the departing session itself.
		realmObj.ServiceSession().Publish(wamp.MetaEventSessionOnLeave, wamp.List{}, wamp.Dict{"session": sess.ID})
		if stats != nil {
			if snap := stats.onLeave(); snap != nil {
				realmObj.ServiceSession().Publish(wamp.MetaEventSessionOnStats, wamp.List{sess.ID}, statsKwargs(*snap))
			}
		}
		if goodbye != nil {
			sess.End(goodbye)
		} else {
			sess.End(wamp.NoGoodbye)
		}
	}
	if cbtid != "" {
		rs.cookies.Unbind(cbtid, rs.transport)
	}
	rs.transport.Close()

	// session_id is nil iff the session is not currently joined to any
	// realm (spec.md §3 invariant 1): once torn down, Session() must stop
	// returning the stale, disconnected wamp.Session.
	rs.mu.Lock()
	rs.sess = nil
	rs.realm = nil
	rs.mu.Unlock()

	if rs.onClosed != nil && sess != nil {
		rs.onClosed(sess.ID)
	}
}

// teardownUnjoined handles an ABORT received while still authenticating:
// there is no realm attachment or session to tear down yet.
func (rs *RouterSession) teardownUnjoined() {
	rs.fireTestament(false)
	rs.mu.Lock()
	rs.state = stateClosed
	rs.mu.Unlock()
	rs.transport.Close()
}

// onTransportLost handles the transport disappearing out from under the
// session in any state (spec.md §2's transport-loss-from-anywhere edge).
func (rs *RouterSession) onTransportLost() {
	rs.fireTestament(false)
	rs.mu.Lock()
	wasJoined := rs.state == stateJoined || rs.state == stateGoodbyeSent
	rs.mu.Unlock()
	if wasJoined {
		rs.teardownJoined(nil)
		return
	}
	rs.mu.Lock()
	cbtid := rs.cbtid
	rs.state = stateClosed
	rs.mu.Unlock()
	if cbtid != "" {
		rs.cookies.Unbind(cbtid, rs.transport)
	}
}

func (rs *RouterSession) abort(reason wamp.URI, message string) {
	details := wamp.Dict{}
	if message != "" {
		details["message"] = message
	}
	rs.transport.Send(&wamp.Abort{Reason: reason, Details: details})
	rs.transport.Abort()
	rs.mu.Lock()
	rs.state = stateClosed
	rs.mu.Unlock()
	if rs.log != nil {
		rs.log.Print("aborted session: ", message)
	}
}

func (rs *RouterSession) fireTestament(graceful bool) {
	rs.mu.Lock()
	realmObj := rs.realm
	entries := rs.testaments
	rs.mu.Unlock()
	if realmObj == nil {
		return
	}
	for _, e := range entries {
		if (graceful && e.onClose) || (!graceful && e.onDetach) {
			realmObj.ServiceSession().Publish(e.topic, e.args, e.kwargs)
		}
	}
}

// recordInboundMessage accounts for one routed app-to-router message against
// the realm's rated-message stats trigger (spec.md §4.5), publishing an
// interim wamp.session.on_stats event once the configured threshold is
// crossed. Message size is measured via the JSON wire encoding regardless of
// the transport's actual serializer, since rating only needs a consistent
// byte-size proxy, not the exact bytes that went out on this transport.
func (rs *RouterSession) recordInboundMessage(msg wamp.Message) {
	rs.mu.Lock()
	tracker := rs.stats
	realmObj := rs.realm
	sess := rs.sess
	rs.mu.Unlock()
	if tracker == nil {
		return
	}
	b, err := (serialize.JSONSerializer{}).Serialize(msg)
	if err != nil {
		return
	}
	if snap := tracker.recordMessage(len(b)); snap != nil {
		realmObj.ServiceSession().Publish(wamp.MetaEventSessionOnStats, wamp.List{sess.ID}, statsKwargs(*snap))
	}
}

// startStatsTicker runs the duration-based stats trigger (spec.md §4.5's
// trigger_after_duration): every cfg.TriggerAfterDuration seconds, publish
// an interim wamp.session.on_stats event until the session ends. Stopped by
// teardownJoined closing rs.statsStop.
func (rs *RouterSession) startStatsTicker(realmObj Router, sessID wamp.ID, seconds int) {
	stop := make(chan struct{})
	rs.mu.Lock()
	rs.statsStop = stop
	rs.mu.Unlock()

	go func() {
		ticker := time.NewTicker(time.Duration(seconds) * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rs.mu.Lock()
				tracker := rs.stats
				rs.mu.Unlock()
				if tracker == nil {
					return
				}
				if snap := tracker.fire(); snap != nil {
					realmObj.ServiceSession().Publish(wamp.MetaEventSessionOnStats, wamp.List{sessID}, statsKwargs(*snap))
				}
			case <-stop:
				return
			}
		}
	}()
}

func statsKwargs(s serialize.Stats) wamp.Dict {
	return wamp.Dict{
		"messages_in":   s.MessagesIn,
		"messages_out":  s.MessagesOut,
		"bytes_in":      s.BytesIn,
		"bytes_out":     s.BytesOut,
		"rated_message": s.RatedMessage,
		"first":         s.First,
		"last":          s.Last,
	}
}

func authMethodsOf(details wamp.Dict) []string {
	raw, ok := details["authmethods"]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, m := range v {
			if s, ok := m.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
