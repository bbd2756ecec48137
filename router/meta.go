package router

import (
	"sync"
	"time"

	"github.com/wampio/nexus/transport/serialize"
	"github.com/wampio/nexus/wamp"
)

// MetaSubscriber receives meta-events published by a MetaPublisher. Tests
// and a real broker both implement this to observe wamp.session.on_join /
// on_leave / on_stats.
type MetaSubscriber func(topic wamp.URI, args wamp.List, kwargs wamp.Dict)

// MetaPublisher emits the three session lifecycle meta-events spec.md
// §4.5 names, standing in for the realm's "service session" (spec.md §3).
// It does not implement the WAMP broker; it is a direct-call fan-out to
// subscribers registered in-process, sufficient for the session core's own
// use (it only ever publishes, never subscribes to anything itself) and
// for tests to assert what was published.
type MetaPublisher struct {
	realm *Realm

	mu          sync.Mutex
	subscribers []MetaSubscriber
}

// NewMetaPublisher returns a MetaPublisher bound to realm. The realm is
// stored only; publishing does not read it.
func NewMetaPublisher(realm *Realm) *MetaPublisher {
	return &MetaPublisher{realm: realm}
}

// Subscribe registers fn to receive every event this MetaPublisher
// publishes from now on.
func (m *MetaPublisher) Subscribe(fn MetaSubscriber) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers = append(m.subscribers, fn)
}

// Publish fans out topic/args/kwargs to every subscriber. It returns
// immediately; WAMP PUBLISH acknowledgement (used by the embedded path's
// GOODBYE handling, spec.md §4.3) is modeled by the caller simply calling
// Publish synchronously and treating return as "acknowledged".
func (m *MetaPublisher) Publish(topic wamp.URI, args wamp.List, kwargs wamp.Dict) {
	m.mu.Lock()
	subs := make([]MetaSubscriber, len(m.subscribers))
	copy(subs, m.subscribers)
	m.mu.Unlock()
	for _, sub := range subs {
		sub(topic, args, kwargs)
	}
}

// statsTracker implements the stats trigger policy and first/last
// bookkeeping described in spec.md §4.5 and the edge case flagged in §9:
// when TriggerOnJoin is false and TriggerOnLeave is true and no interim
// trigger ever fires, the single leave-time stats event legitimately
// carries both First=true and Last=true.
type statsTracker struct {
	cfg            *StatsConfig
	firstSent      bool
	ratedAcc       int64
	lastTrigger    time.Time
	started        time.Time
}

func newStatsTracker(cfg *StatsConfig) *statsTracker {
	now := time.Now()
	return &statsTracker{cfg: cfg, started: now, lastTrigger: now}
}

// onJoin returns the stats snapshot to publish at WELCOME time, or nil if
// TriggerOnJoin is disabled.
func (t *statsTracker) onJoin(stats serialize.Stats) *serialize.Stats {
	if !t.cfg.TriggerOnJoin {
		return nil
	}
	stats.First = true
	stats.Last = false
	t.firstSent = true
	return &stats
}

// recordMessage accounts for one rated message and reports whether the
// rated-message-count trigger has now fired. Byte-duration triggers are
// evaluated by the caller's ticker (see RouterSession's stats goroutine);
// this method only tracks the message-count axis.
func (t *statsTracker) recordMessage(size int) *serialize.Stats {
	if t.cfg.TriggerAfterRatedMessages == 0 {
		return nil
	}
	rated := size / t.cfg.RatedMessageSize
	if size%t.cfg.RatedMessageSize != 0 {
		rated++
	}
	t.ratedAcc += int64(rated)
	if t.ratedAcc < int64(t.cfg.TriggerAfterRatedMessages) {
		return nil
	}
	t.ratedAcc = 0
	return t.fire()
}

// fire produces the stats snapshot for an interim trigger, setting First
// correctly based on whether onJoin already sent one.
func (t *statsTracker) fire() *serialize.Stats {
	s := serialize.Stats{First: !t.firstSent, Last: false}
	t.firstSent = true
	return &s
}

// onLeave returns the final stats snapshot to publish when the session
// ends, or nil if TriggerOnLeave is disabled. Implements the §9 edge case:
// if nothing has triggered first yet, this snapshot is both First and Last.
func (t *statsTracker) onLeave() *serialize.Stats {
	if !t.cfg.TriggerOnLeave {
		return nil
	}
	s := serialize.Stats{First: !t.firstSent, Last: true}
	t.firstSent = true
	return &s
}
