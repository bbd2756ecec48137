package router

import (
	"sync"

	"github.com/wampio/nexus/wamp"
)

// CookieAuth is the authentication binding a cookie store remembers for a
// returning browser client, per spec.md §6's cookie store capability set.
type CookieAuth struct {
	AuthID     string
	AuthRole   string
	AuthMethod string
	Realm      wamp.URI
	AuthExtra  wamp.Dict
}

func (c CookieAuth) isZero() bool {
	return c.AuthID == "" && c.AuthRole == "" && c.AuthMethod == "" && c.Realm == ""
}

// CookieStore is the external collaborator that remembers cookie-id to
// identity bindings across connections. The session core only calls
// GetAuth/SetAuth/DelAuth/Protocols/Bind/Unbind; persistence and expiry policy
// belong to the implementation.
type CookieStore interface {
	Exists(cbtid string) bool
	GetAuth(cbtid string) (CookieAuth, bool)
	SetAuth(cbtid string, auth CookieAuth)
	DelAuth(cbtid string)
	// Protocols returns every live Transport currently bound to cbtid, so
	// that a wamp.close.logout GOODBYE can proactively close the others.
	Protocols(cbtid string) []Transport
	// Bind records that transport t presents cookie cbtid, so Protocols
	// can later enumerate it. Unbind removes that record when t closes.
	Bind(cbtid string, t Transport)
	Unbind(cbtid string, t Transport)
}

// memCookieStore is a process-local, in-memory CookieStore. It is the
// reference implementation used by tests and by single-process
// deployments; a multi-process router would back this with shared
// storage, which is why CookieStore is an interface (see spec.md §6).
type memCookieStore struct {
	mu    sync.Mutex
	auths map[string]CookieAuth
	conns map[string]map[Transport]struct{}
}

// NewMemCookieStore returns an in-memory CookieStore.
func NewMemCookieStore() CookieStore {
	return &memCookieStore{
		auths: make(map[string]CookieAuth),
		conns: make(map[string]map[Transport]struct{}),
	}
}

func (s *memCookieStore) Exists(cbtid string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.auths[cbtid]
	return ok && !a.isZero()
}

func (s *memCookieStore) GetAuth(cbtid string) (CookieAuth, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.auths[cbtid]
	if !ok || a.isZero() {
		return CookieAuth{}, false
	}
	return a, true
}

func (s *memCookieStore) SetAuth(cbtid string, auth CookieAuth) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auths[cbtid] = auth
}

func (s *memCookieStore) DelAuth(cbtid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.auths, cbtid)
}

func (s *memCookieStore) Bind(cbtid string, t Transport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.conns[cbtid]
	if !ok {
		m = make(map[Transport]struct{})
		s.conns[cbtid] = m
	}
	m[t] = struct{}{}
}

func (s *memCookieStore) Unbind(cbtid string, t Transport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.conns[cbtid]; ok {
		delete(m, t)
		if len(m) == 0 {
			delete(s.conns, cbtid)
		}
	}
}

func (s *memCookieStore) Protocols(cbtid string) []Transport {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.conns[cbtid]
	out := make([]Transport, 0, len(m))
	for t := range m {
		out = append(out, t)
	}
	return out
}
