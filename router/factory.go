package router

import (
	"fmt"
	"sync"

	"github.com/wampio/nexus/stdlog"
	"github.com/wampio/nexus/wamp"
)

// SessionFactory constructs RouterSessions for newly connected transports
// and registers/unregisters EmbeddedSessions for in-process application
// code, sharing one AuthMethodRegistry and CookieStore across every realm
// the resolver knows about. This is the Go counterpart of crossbar's
// RouterSessionFactory (original_source/crossbar/router/session.py, lines
// ~1249-1337): responsibility (a) is NewSession below, responsibility (b)
// is RegisterEmbedded/UnregisterEmbedded, minus the realm-lifecycle
// bookkeeping that belongs to RealmRegistry instead.
type SessionFactory struct {
	resolveRealm RealmResolver
	authReg      *AuthMethodRegistry
	cookies      CookieStore
	log          stdlog.StdLog

	mu       sync.Mutex
	sessions map[wamp.ID]*RouterSession
	embedded map[interface{}]func()
}

// NewSessionFactory returns a SessionFactory. A nil authReg gets the
// standard registry (NewAuthMethodRegistry); a nil cookies store gets an
// in-memory one.
func NewSessionFactory(resolveRealm RealmResolver, authReg *AuthMethodRegistry, cookies CookieStore, log stdlog.StdLog) *SessionFactory {
	if authReg == nil {
		authReg = NewAuthMethodRegistry()
	}
	if cookies == nil {
		cookies = NewMemCookieStore()
	}
	return &SessionFactory{
		resolveRealm: resolveRealm,
		authReg:      authReg,
		cookies:      cookies,
		log:          log,
		sessions:     make(map[wamp.ID]*RouterSession),
		embedded:     make(map[interface{}]func()),
	}
}

// NewSession builds a RouterSession for a newly connected transport and
// starts its handshake/message loop. The session is tracked internally
// (Add) and untracked (Remove) automatically once its goroutine exits.
func (f *SessionFactory) NewSession(t Transport) *RouterSession {
	rs := NewRouterSession(t, f.resolveRealm, f.authReg, f.cookies, f.log)
	rs.onJoined = f.Add
	rs.onClosed = f.Remove
	rs.Start()
	return rs
}

// Add registers sess under its wamp.Session ID once joined, so that
// SessionByID/Close can find it. Safe to call more than once with the same
// session.
func (f *SessionFactory) Add(sess *RouterSession) {
	s := sess.Session()
	if s == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[s.ID] = sess
}

// Remove untracks a session, e.g. once it reaches stateClosed.
func (f *SessionFactory) Remove(id wamp.ID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, id)
}

// SessionByID returns the tracked RouterSession for id, if any.
func (f *SessionFactory) SessionByID(id wamp.ID) (*RouterSession, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rs, ok := f.sessions[id]
	return rs, ok
}

// Count returns the number of sessions currently tracked.
func (f *SessionFactory) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions)
}

// RegisterEmbedded attaches realmObj for an in-process application and
// returns the wamp.Peer it should use to exchange messages with the realm.
// appSession is the caller's own handle for its application session object
// (opaque to the factory) and is used only as the key in the
// application_session → EmbeddedSession mapping spec.md §4.4 describes,
// which exists to prevent the same application session from being
// registered twice. Call UnregisterEmbedded with the same appSession to
// tear it down.
func (f *SessionFactory) RegisterEmbedded(appSession interface{}, realmObj Router, authid, authrole string, authextra wamp.Dict, hooks EmbeddedHooks) (wamp.Peer, error) {
	f.mu.Lock()
	if _, exists := f.embedded[appSession]; exists {
		f.mu.Unlock()
		return nil, fmt.Errorf("application session %v is already registered", appSession)
	}
	f.mu.Unlock()

	peer, detach, err := NewEmbeddedSession(realmObj, authid, authrole, authextra, hooks, f.log)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.embedded[appSession] = detach
	f.mu.Unlock()
	return peer, nil
}

// UnregisterEmbedded disconnects the embedded session registered under
// appSession, if any, deleting the mapping and triggering the wrapped
// session's detach.
func (f *SessionFactory) UnregisterEmbedded(appSession interface{}) {
	f.mu.Lock()
	detach, ok := f.embedded[appSession]
	if ok {
		delete(f.embedded, appSession)
	}
	f.mu.Unlock()
	if ok {
		detach()
	}
}
