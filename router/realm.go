package router

import (
	"fmt"
	"sync"

	"github.com/wampio/nexus/wamp"
)

// StatsConfig controls the optional wamp.session.on_stats meta-event
// stream for a realm (spec.md §4.5).
type StatsConfig struct {
	// RatedMessageSize is the byte count one "rated message unit" costs;
	// must be a positive even integer. Zero means "use the default (512)".
	RatedMessageSize int
	// TriggerAfterRatedMessages fires a stats event every N rated message
	// units. Zero disables this trigger.
	TriggerAfterRatedMessages int
	// TriggerAfterDuration fires a stats event every N seconds. Zero
	// disables this trigger.
	TriggerAfterDuration int
	// TriggerOnJoin, if true, publishes one stats event immediately on
	// WELCOME (with First=true).
	TriggerOnJoin bool
	// TriggerOnLeave, if true, publishes a final stats event when the
	// session ends (with Last=true). normalize does not change it, so a
	// StatsConfig that leaves it unset has no leave-time stats event.
	TriggerOnLeave bool
}

// normalize fills in defaults and is called once when a realm is created.
func (c *StatsConfig) normalize() {
	if c.RatedMessageSize <= 0 {
		c.RatedMessageSize = 512
	}
}

// valid reports whether the stats config satisfies spec.md §4.5's
// invariant that at least one time/volume trigger is configured.
func (c *StatsConfig) valid() bool {
	return c.TriggerAfterRatedMessages != 0 || c.TriggerAfterDuration != 0
}

// RealmConfig configures one realm: which roles exist, which auth methods
// are configured and how, and optional stats policy.
type RealmConfig struct {
	URI       wamp.URI
	StrictURI bool

	// Roles is the set of authroles that exist on this realm; HasRole
	// checks against this set. Authorization policy beyond existence is
	// out of scope (spec.md §1), delegated to the realm/broker/dealer.
	Roles []string

	// Auth maps authmethod name to its configuration. A nil or empty Auth
	// means "auth not configured": per crossbar's default, anonymous
	// access is then allowed unconditionally (see onHello in
	// RouterSession).
	Auth map[string]MethodConfig

	Stats *StatsConfig
}

// Router is the capability set a RouterSession/EmbeddedSession needs from
// the realm it is joined to (spec.md §6's "Router capability set"). It is
// implemented by *Realm; broker/dealer routing behind Process is out of
// scope for this module (spec.md §1).
type Router interface {
	ID() wamp.URI
	Attach(sess *wamp.Session) (wamp.Dict, error)
	Detach(sess *wamp.Session) error
	Process(sess *wamp.Session, msg wamp.Message)
	HasRole(authrole string) bool
	ServiceSession() *MetaPublisher
	StatsConfig() *StatsConfig
	AuthConfig() map[string]MethodConfig
}

// Realm is the minimal per-realm router state the session core exercises:
// a session attachment table and a service session used to publish
// meta-events. A production router additionally owns a broker and dealer
// here; those are external collaborators per spec.md §1 and are not
// reimplemented by this module.
type Realm struct {
	config *RealmConfig
	roles  map[string]struct{}

	mu       sync.Mutex
	sessions map[wamp.ID]*wamp.Session
	meta     *MetaPublisher
}

// NewRealm constructs a Realm from config, normalizing its stats policy if
// present.
func NewRealm(config *RealmConfig) (*Realm, error) {
	if !config.URI.ValidURI(config.StrictURI, "") {
		return nil, fmt.Errorf("invalid realm URI %q", config.URI)
	}
	if config.Stats != nil {
		config.Stats.normalize()
		if !config.Stats.valid() {
			return nil, fmt.Errorf("realm %q: stats config needs trigger_after_rated_messages or trigger_after_duration", config.URI)
		}
	}
	roles := make(map[string]struct{}, len(config.Roles))
	for _, r := range config.Roles {
		roles[r] = struct{}{}
	}
	realm := &Realm{
		config:   config,
		roles:    roles,
		sessions: make(map[wamp.ID]*wamp.Session),
	}
	realm.meta = NewMetaPublisher(realm)
	return realm, nil
}

func (r *Realm) ID() wamp.URI { return r.config.URI }

func (r *Realm) HasRole(authrole string) bool {
	if len(r.roles) == 0 {
		// No explicit role list configured: accept anything, matching
		// crossbar's permissive default realm.
		return true
	}
	_, ok := r.roles[authrole]
	return ok
}

func (r *Realm) ServiceSession() *MetaPublisher { return r.meta }

func (r *Realm) StatsConfig() *StatsConfig { return r.config.Stats }

func (r *Realm) AuthConfig() map[string]MethodConfig { return r.config.Auth }

// Attach registers sess as joined to this realm and returns the roles
// dict to echo back in WELCOME. A session that was already attached (same
// ID) is a programming error in the caller and is rejected.
func (r *Realm) Attach(sess *wamp.Session) (wamp.Dict, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[sess.ID]; ok {
		return nil, fmt.Errorf("session %d already attached to realm %q", sess.ID, r.config.URI)
	}
	r.sessions[sess.ID] = sess
	return wamp.Dict{
		"broker": wamp.Dict{},
		"dealer": wamp.Dict{},
	}, nil
}

// ErrNotAttached is returned by Detach when called for a session that was
// never attached (or already detached), matching crossbar's NotAttached.
var ErrNotAttached = fmt.Errorf("session not attached")

func (r *Realm) Detach(sess *wamp.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[sess.ID]; !ok {
		return ErrNotAttached
	}
	delete(r.sessions, sess.ID)
	return nil
}

// Process hands a routed (post-handshake) message to the realm's broker
// or dealer. Actual PUBLISH/SUBSCRIBE/CALL/REGISTER routing is the
// broker/dealer's job and is out of scope for the session core
// (spec.md §1); this implementation only exists so RouterSession and
// EmbeddedSession have something real to call.
func (r *Realm) Process(sess *wamp.Session, msg wamp.Message) {
	// Intentionally a no-op: routing tables live in the broker/dealer,
	// external to this module.
}

// SessionCount returns the number of sessions currently attached, used by
// the wamp.session.count meta-procedure in a full router and by tests here
// to assert attach/detach bookkeeping.
func (r *Realm) SessionCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
