package router

import (
	"sync"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/wampio/nexus/stdlog"
	"github.com/wampio/nexus/wamp"
)

func TestEmbeddedSessionLifecycleSequencing(t *testing.T) {
	defer leaktest.Check(t)()

	realmObj := newTestRealm(t)

	var mu sync.Mutex
	var order []string
	record := func(stage string) {
		mu.Lock()
		order = append(order, stage)
		mu.Unlock()
	}

	var joinedSess *wamp.Session
	hooks := EmbeddedHooks{
		OnConnect: func() { record("connect") },
		OnJoin:    func(sess *wamp.Session) { record("join"); joinedSess = sess },
		OnReady:   func() { record("ready") },
		OnLeave:   func(*wamp.Goodbye) { record("leave") },
	}

	peer, detach, err := NewEmbeddedSession(realmObj, "alice", "user", nil, hooks, stdlog.New())
	if err != nil {
		t.Fatal(err)
	}
	if joinedSess == nil {
		t.Fatal("expected OnJoin to run synchronously before NewEmbeddedSession returns")
	}
	if realmObj.SessionCount() != 1 {
		t.Fatalf("expected 1 attached session, got %d", realmObj.SessionCount())
	}

	detach()

	deadline := time.Now().Add(time.Second)
	for realmObj.SessionCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if realmObj.SessionCount() != 0 {
		t.Fatal("expected session detached after detach()")
	}

	mu.Lock()
	got := append([]string(nil), order...)
	mu.Unlock()
	want := []string{"connect", "join", "ready", "leave"}
	if len(got) != len(want) {
		t.Fatalf("hook sequence = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("hook sequence = %v, want %v", got, want)
		}
	}

	_ = peer
}

func TestEmbeddedSessionPanickingHookIsolated(t *testing.T) {
	defer leaktest.Check(t)()

	realmObj := newTestRealm(t)

	readyRan := false
	hooks := EmbeddedHooks{
		OnJoin:  func(*wamp.Session) { panic("boom") },
		OnReady: func() { readyRan = true },
	}

	_, detach, err := NewEmbeddedSession(realmObj, "alice", "user", nil, hooks, stdlog.New())
	if err != nil {
		t.Fatal(err)
	}
	if !readyRan {
		t.Fatal("expected OnReady to still run after OnJoin panicked")
	}
	detach()

	deadline := time.Now().Add(time.Second)
	for realmObj.SessionCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if realmObj.SessionCount() != 0 {
		t.Fatal("expected session detached after detach()")
	}
}

func TestEmbeddedSessionUndefinedRoleRejected(t *testing.T) {
	defer leaktest.Check(t)()

	realmObj, err := NewRealm(&RealmConfig{URI: testRealmURI, Roles: []string{"admin"}})
	if err != nil {
		t.Fatal(err)
	}

	_, _, err = NewEmbeddedSession(realmObj, "mallory", "guest", nil, EmbeddedHooks{}, stdlog.New())
	if err == nil {
		t.Fatal("expected an error joining with a role the realm does not define")
	}
}

func TestEmbeddedSessionGoodbyeFromApplication(t *testing.T) {
	defer leaktest.Check(t)()

	realmObj := newTestRealm(t)

	leftCh := make(chan *wamp.Goodbye, 1)
	hooks := EmbeddedHooks{
		OnLeave: func(g *wamp.Goodbye) { leftCh <- g },
	}

	peer, _, err := NewEmbeddedSession(realmObj, "alice", "user", nil, hooks, stdlog.New())
	if err != nil {
		t.Fatal(err)
	}

	peer.Send(&wamp.Goodbye{Reason: wamp.CloseNormal})

	select {
	case g := <-leftCh:
		if g == nil || g.Reason != wamp.CloseNormal {
			t.Fatalf("expected the application's GOODBYE to reach OnLeave, got %v", g)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for OnLeave")
	}

	deadline := time.Now().Add(time.Second)
	for realmObj.SessionCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if realmObj.SessionCount() != 0 {
		t.Fatal("expected session detached after application-initiated GOODBYE")
	}
}

func TestEmbeddedSessionPublishesMetaEvents(t *testing.T) {
	defer leaktest.Check(t)()

	realmObj := newTestRealm(t)

	var mu sync.Mutex
	var topics []wamp.URI
	realmObj.ServiceSession().Subscribe(func(topic wamp.URI, args wamp.List, kwargs wamp.Dict) {
		mu.Lock()
		topics = append(topics, topic)
		mu.Unlock()
	})

	_, detach, err := NewEmbeddedSession(realmObj, "alice", "user", nil, EmbeddedHooks{}, stdlog.New())
	if err != nil {
		t.Fatal(err)
	}

	mu.Lock()
	gotJoin := len(topics) == 1 && topics[0] == wamp.MetaEventSessionOnJoin
	mu.Unlock()
	if !gotJoin {
		t.Fatal("expected wamp.session.on_join to be published synchronously on join")
	}

	detach()

	deadline := time.Now().Add(time.Second)
	for {
		mu.Lock()
		n := len(topics)
		mu.Unlock()
		if n >= 2 || time.Now().After(deadline) {
			break
		}
		time.Sleep(time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(topics) != 2 || topics[1] != wamp.MetaEventSessionOnLeave {
		t.Fatalf("expected [on_join, on_leave], got %v", topics)
	}
}
