package router

import (
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/fortytw2/leaktest"
	"github.com/wampio/nexus/stdlog"
	"github.com/wampio/nexus/transport"
	"github.com/wampio/nexus/wamp"
)

// assertDictEqual compares two wamp.Dicts, dumping both sides with spew on
// mismatch so a failure shows the full nested shape instead of Go's default
// %v rendering of interface{} values.
func assertDictEqual(t *testing.T, got, want wamp.Dict) {
	t.Helper()
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("dict mismatch:\ngot:\n%s\nwant:\n%s", spew.Sdump(got), spew.Sdump(want))
	}
}

const testRealmURI = wamp.URI("nexus.test.realm")

var testClientRoles = wamp.Dict{
	"subscriber": wamp.Dict{},
	"publisher":  wamp.Dict{},
	"caller":     wamp.Dict{},
	"callee":     wamp.Dict{},
}

func testHelloDetails(authmethods ...string) wamp.Dict {
	d := wamp.Dict{"roles": testClientRoles}
	if len(authmethods) > 0 {
		d["authmethods"] = authmethods
	}
	return d
}

func newTestRealm(t *testing.T) *Realm {
	t.Helper()
	r, err := NewRealm(&RealmConfig{URI: testRealmURI})
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func newTestSession(realmObj Router, authReg *AuthMethodRegistry, cookies CookieStore) (wamp.Peer, *RouterSession) {
	client, server := transport.LinkedPeers()
	wt := NewWireTransport(server, TransportDetails{ChannelType: "local"})
	resolver := func(uri wamp.URI) (Router, bool) {
		if uri == realmObj.ID() {
			return realmObj, true
		}
		return nil, false
	}
	if authReg == nil {
		authReg = NewAuthMethodRegistry()
	}
	if cookies == nil {
		cookies = NewMemCookieStore()
	}
	rs := NewRouterSession(wt, resolver, authReg, cookies, stdlog.New())
	rs.Start()
	return client, rs
}

func recvWithin(t *testing.T, client wamp.Peer, d time.Duration) wamp.Message {
	t.Helper()
	select {
	case msg, ok := <-client.Recv():
		if !ok {
			t.Fatal("peer closed without sending a message")
		}
		return msg
	case <-time.After(d):
		t.Fatal("timed out waiting for a message")
		return nil
	}
}

func TestHandshakeAnonymous(t *testing.T) {
	defer leaktest.Check(t)()

	realmObj := newTestRealm(t)
	client, _ := newTestSession(realmObj, nil, nil)

	client.Send(&wamp.Hello{Realm: testRealmURI, Details: testHelloDetails("anonymous")})

	msg := recvWithin(t, client, time.Second)
	welcome, ok := msg.(*wamp.Welcome)
	if !ok {
		t.Fatalf("expected WELCOME, got %s", msg.MessageType())
	}
	if welcome.Details["authmethod"] != "anonymous" {
		t.Errorf("expected authmethod anonymous, got %v", welcome.Details["authmethod"])
	}
	if realmObj.SessionCount() != 1 {
		t.Fatalf("expected 1 attached session, got %d", realmObj.SessionCount())
	}

	client.Send(&wamp.Goodbye{Reason: wamp.CloseNormal})
	msg = recvWithin(t, client, time.Second)
	if _, ok := msg.(*wamp.Goodbye); !ok {
		t.Fatalf("expected GOODBYE, got %s", msg.MessageType())
	}

	deadline := time.Now().Add(time.Second)
	for realmObj.SessionCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if realmObj.SessionCount() != 0 {
		t.Fatal("session was not detached from realm after GOODBYE")
	}
}

func TestWelcomeRolesDict(t *testing.T) {
	defer leaktest.Check(t)()

	realmObj := newTestRealm(t)
	client, _ := newTestSession(realmObj, nil, nil)

	client.Send(&wamp.Hello{Realm: testRealmURI, Details: testHelloDetails("anonymous")})

	msg := recvWithin(t, client, time.Second)
	welcome, ok := msg.(*wamp.Welcome)
	if !ok {
		t.Fatalf("expected WELCOME, got %s", msg.MessageType())
	}
	assertDictEqual(t, welcome.Details["roles"].(wamp.Dict), wamp.Dict{
		"broker": wamp.Dict{},
		"dealer": wamp.Dict{},
	})

	client.Close()
}

func TestWelcomeAuthExtraCarriesRouterStampedFields(t *testing.T) {
	defer leaktest.Check(t)()

	realmObj := newTestRealm(t)
	client, _ := newTestSession(realmObj, nil, nil)

	client.Send(&wamp.Hello{Realm: testRealmURI, Details: testHelloDetails("anonymous")})

	msg := recvWithin(t, client, time.Second)
	welcome, ok := msg.(*wamp.Welcome)
	if !ok {
		t.Fatalf("expected WELCOME, got %s", msg.MessageType())
	}
	authextra, ok := welcome.Details["authextra"].(wamp.Dict)
	if !ok {
		t.Fatalf("expected authextra to be a wamp.Dict, got %T", welcome.Details["authextra"])
	}
	for _, key := range []string{"x_cb_node", "x_cb_worker", "x_cb_peer", "x_cb_pid"} {
		if _, ok := authextra[key]; !ok {
			t.Errorf("expected authextra to contain %s", key)
		}
	}

	client.Close()
}

func TestOnWelcomeHookRunsBeforeOnJoinEvent(t *testing.T) {
	defer leaktest.Check(t)()

	realmObj := newTestRealm(t)

	var mu sync.Mutex
	var order []string
	realmObj.ServiceSession().Subscribe(func(topic wamp.URI, args wamp.List, kwargs wamp.Dict) {
		if topic == wamp.MetaEventSessionOnJoin {
			mu.Lock()
			order = append(order, "on_join")
			mu.Unlock()
		}
	})

	client, server := transport.LinkedPeers()
	wt := NewWireTransport(server, TransportDetails{ChannelType: "local"})
	resolver := func(uri wamp.URI) (Router, bool) {
		if uri == realmObj.ID() {
			return realmObj, true
		}
		return nil, false
	}
	rs := NewRouterSession(wt, resolver, NewAuthMethodRegistry(), NewMemCookieStore(), stdlog.New())
	rs.OnWelcome(func(*RouterSession) {
		mu.Lock()
		order = append(order, "welcome")
		mu.Unlock()
	})
	rs.Start()

	client.Send(&wamp.Hello{Realm: testRealmURI, Details: testHelloDetails("anonymous")})
	recvWithin(t, client, time.Second)

	deadline := time.Now().Add(time.Second)
	for {
		mu.Lock()
		n := len(order)
		mu.Unlock()
		if n >= 2 || time.Now().After(deadline) {
			break
		}
		time.Sleep(time.Millisecond)
	}

	client.Close()

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 2 || order[0] != "welcome" || order[1] != "on_join" {
		t.Fatalf("expected [welcome, on_join], got %v", order)
	}
}

func TestHandshakeNoSuchRealm(t *testing.T) {
	defer leaktest.Check(t)()

	client, server := transport.LinkedPeers()
	wt := NewWireTransport(server, TransportDetails{ChannelType: "local"})
	resolver := func(wamp.URI) (Router, bool) { return nil, false }
	rs := NewRouterSession(wt, resolver, NewAuthMethodRegistry(), NewMemCookieStore(), stdlog.New())
	rs.Start()

	client.Send(&wamp.Hello{Realm: "does.not.exist", Details: testHelloDetails()})

	msg := recvWithin(t, client, time.Second)
	abort, ok := msg.(*wamp.Abort)
	if !ok {
		t.Fatalf("expected ABORT, got %s", msg.MessageType())
	}
	if abort.Reason != wamp.ErrNoSuchRealm {
		t.Errorf("expected %s, got %s", wamp.ErrNoSuchRealm, abort.Reason)
	}
}

func TestHandshakeNoRoles(t *testing.T) {
	defer leaktest.Check(t)()

	realmObj := newTestRealm(t)
	client, _ := newTestSession(realmObj, nil, nil)

	client.Send(&wamp.Hello{Realm: testRealmURI})

	msg := recvWithin(t, client, time.Second)
	abort, ok := msg.(*wamp.Abort)
	if !ok {
		t.Fatalf("expected ABORT, got %s", msg.MessageType())
	}
	if abort.Reason != wamp.ErrNoSuchRole {
		t.Errorf("expected %s, got %s", wamp.ErrNoSuchRole, abort.Reason)
	}
}

func TestHandshakeTicketChallenge(t *testing.T) {
	defer leaktest.Check(t)()

	realmObj, err := NewRealm(&RealmConfig{
		URI: testRealmURI,
		Auth: map[string]MethodConfig{
			"ticket": {
				AuthRole: "user",
				Ticket: func(authid, ticket string) (string, bool) {
					if authid == "alice" && ticket == "s3cr3t" {
						return "user", true
					}
					return "", false
				},
			},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	client, _ := newTestSession(realmObj, nil, nil)

	details := testHelloDetails("ticket")
	details["authid"] = "alice"
	client.Send(&wamp.Hello{Realm: testRealmURI, Details: details})

	msg := recvWithin(t, client, time.Second)
	if _, ok := msg.(*wamp.Challenge); !ok {
		t.Fatalf("expected CHALLENGE, got %s", msg.MessageType())
	}

	client.Send(&wamp.Authenticate{Signature: "s3cr3t"})
	msg = recvWithin(t, client, time.Second)
	welcome, ok := msg.(*wamp.Welcome)
	if !ok {
		t.Fatalf("expected WELCOME, got %s", msg.MessageType())
	}
	if welcome.Details["authrole"] != "user" {
		t.Errorf("expected authrole user, got %v", welcome.Details["authrole"])
	}

	client.Close()
}

func TestHandshakeTicketWrongSecret(t *testing.T) {
	defer leaktest.Check(t)()

	realmObj, err := NewRealm(&RealmConfig{
		URI: testRealmURI,
		Auth: map[string]MethodConfig{
			"ticket": {Ticket: func(authid, ticket string) (string, bool) { return "", false }},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	client, _ := newTestSession(realmObj, nil, nil)

	details := testHelloDetails("ticket")
	details["authid"] = "alice"
	client.Send(&wamp.Hello{Realm: testRealmURI, Details: details})
	recvWithin(t, client, time.Second) // CHALLENGE

	client.Send(&wamp.Authenticate{Signature: "wrong"})
	msg := recvWithin(t, client, time.Second)
	abort, ok := msg.(*wamp.Abort)
	if !ok {
		t.Fatalf("expected ABORT, got %s", msg.MessageType())
	}
	if abort.Reason != wamp.ErrAuthorizationFailed {
		t.Errorf("expected %s, got %s", wamp.ErrAuthorizationFailed, abort.Reason)
	}
}

func TestLogoutKicksOtherCookieHolders(t *testing.T) {
	defer leaktest.Check(t)()

	realmObj := newTestRealm(t)
	cookies := NewMemCookieStore()
	authReg := NewAuthMethodRegistry()

	client1, server1 := transport.LinkedPeers()
	wt1 := NewWireTransport(server1, TransportDetails{ChannelType: "local"}).WithCookie("cbt-1")
	resolver := func(uri wamp.URI) (Router, bool) {
		if uri == realmObj.ID() {
			return realmObj, true
		}
		return nil, false
	}
	rs1 := NewRouterSession(wt1, resolver, authReg, cookies, stdlog.New())
	rs1.Start()
	client1.Send(&wamp.Hello{Realm: testRealmURI, Details: testHelloDetails("anonymous")})
	recvWithin(t, client1, time.Second) // WELCOME

	client2, server2 := transport.LinkedPeers()
	wt2 := NewWireTransport(server2, TransportDetails{ChannelType: "local"}).WithCookie("cbt-1")
	rs2 := NewRouterSession(wt2, resolver, authReg, cookies, stdlog.New())
	rs2.Start()
	client2.Send(&wamp.Hello{Realm: testRealmURI, Details: testHelloDetails("anonymous")})
	recvWithin(t, client2, time.Second) // WELCOME, same cookie rebinds

	client1.Send(&wamp.Goodbye{Reason: wamp.CloseLogout})
	recvWithin(t, client1, time.Second) // GOODBYE ack on session 1

	deadline := time.Now().Add(time.Second)
	for cookies.Exists("cbt-1") && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if cookies.Exists("cbt-1") {
		t.Fatal("expected wamp.close.logout to revoke the shared cookie binding")
	}
}

func TestStatsOnJoinAndLeave(t *testing.T) {
	defer leaktest.Check(t)()

	realmObj, err := NewRealm(&RealmConfig{
		URI:   testRealmURI,
		Stats: &StatsConfig{TriggerOnJoin: true, TriggerOnLeave: true, TriggerAfterRatedMessages: 1000},
	})
	if err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	var events []wamp.Dict
	realmObj.ServiceSession().Subscribe(func(topic wamp.URI, args wamp.List, kwargs wamp.Dict) {
		if topic == wamp.MetaEventSessionOnStats {
			mu.Lock()
			events = append(events, kwargs)
			mu.Unlock()
		}
	})

	client, _ := newTestSession(realmObj, nil, nil)
	client.Send(&wamp.Hello{Realm: testRealmURI, Details: testHelloDetails("anonymous")})
	recvWithin(t, client, time.Second)

	client.Send(&wamp.Goodbye{})
	recvWithin(t, client, time.Second)

	deadline := time.Now().Add(time.Second)
	for {
		mu.Lock()
		n := len(events)
		mu.Unlock()
		if n >= 2 || time.Now().After(deadline) {
			break
		}
		time.Sleep(time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 2 {
		t.Fatalf("expected 2 stats events (join, leave), got %d", len(events))
	}
	if first, _ := events[0]["first"].(bool); !first {
		t.Error("expected join-time stats event to have first=true")
	}
	if last, _ := events[1]["last"].(bool); !last {
		t.Error("expected leave-time stats event to have last=true")
	}
}

// TestStatsRatedMessageTriggerFiresMidSession drives a routed message through
// dispatch's stateJoined default branch and checks that crossing the
// configured rated-message threshold publishes an interim on_stats event,
// not just the join/leave snapshots TestStatsOnJoinAndLeave covers.
func TestStatsRatedMessageTriggerFiresMidSession(t *testing.T) {
	defer leaktest.Check(t)()

	realmObj, err := NewRealm(&RealmConfig{
		URI:   testRealmURI,
		Stats: &StatsConfig{TriggerAfterRatedMessages: 1, RatedMessageSize: 1},
	})
	if err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	var events []wamp.Dict
	realmObj.ServiceSession().Subscribe(func(topic wamp.URI, args wamp.List, kwargs wamp.Dict) {
		if topic == wamp.MetaEventSessionOnStats {
			mu.Lock()
			events = append(events, kwargs)
			mu.Unlock()
		}
	})

	client, _ := newTestSession(realmObj, nil, nil)
	client.Send(&wamp.Hello{Realm: testRealmURI, Details: testHelloDetails("anonymous")})
	recvWithin(t, client, time.Second)

	client.Send(&wamp.Subscribe{Request: 1, Topic: wamp.URI("nexus.test.topic")})

	deadline := time.Now().Add(time.Second)
	for {
		mu.Lock()
		n := len(events)
		mu.Unlock()
		if n >= 1 || time.Now().After(deadline) {
			break
		}
		time.Sleep(time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 1 {
		t.Fatalf("expected 1 interim stats event from the rated-message trigger, got %d", len(events))
	}

	client.Send(&wamp.Goodbye{})
	recvWithin(t, client, time.Second)
}

// TestStatsDurationTriggerFiresMidSession checks that a short
// TriggerAfterDuration publishes an interim on_stats event on its own,
// without any routed traffic or GOODBYE, via the ticker RouterSession
// starts in finishAuth.
func TestStatsDurationTriggerFiresMidSession(t *testing.T) {
	defer leaktest.Check(t)()

	realmObj, err := NewRealm(&RealmConfig{
		URI:   testRealmURI,
		Stats: &StatsConfig{TriggerAfterDuration: 1},
	})
	if err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	var events []wamp.Dict
	realmObj.ServiceSession().Subscribe(func(topic wamp.URI, args wamp.List, kwargs wamp.Dict) {
		if topic == wamp.MetaEventSessionOnStats {
			mu.Lock()
			events = append(events, kwargs)
			mu.Unlock()
		}
	})

	client, _ := newTestSession(realmObj, nil, nil)
	client.Send(&wamp.Hello{Realm: testRealmURI, Details: testHelloDetails("anonymous")})
	recvWithin(t, client, time.Second)

	deadline := time.Now().Add(3 * time.Second)
	for {
		mu.Lock()
		n := len(events)
		mu.Unlock()
		if n >= 1 || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	mu.Lock()
	n := len(events)
	mu.Unlock()
	if n < 1 {
		t.Fatal("expected the duration ticker to publish at least one interim stats event")
	}

	client.Send(&wamp.Goodbye{})
	recvWithin(t, client, time.Second)
}

func TestNoSuchAuthMethod(t *testing.T) {
	defer leaktest.Check(t)()

	realmObj := newTestRealm(t)
	client, _ := newTestSession(realmObj, nil, nil)

	client.Send(&wamp.Hello{Realm: testRealmURI, Details: testHelloDetails("wampcra")})

	msg := recvWithin(t, client, time.Second)
	abort, ok := msg.(*wamp.Abort)
	if !ok {
		t.Fatalf("expected ABORT, got %s", msg.MessageType())
	}
	if abort.Reason != wamp.ErrNoAuthMethod {
		t.Errorf("expected %s, got %s", wamp.ErrNoAuthMethod, abort.Reason)
	}
}

func TestTransportLossDetachesSession(t *testing.T) {
	defer leaktest.Check(t)()

	realmObj := newTestRealm(t)
	client, rs := newTestSession(realmObj, nil, nil)

	client.Send(&wamp.Hello{Realm: testRealmURI, Details: testHelloDetails("anonymous")})
	recvWithin(t, client, time.Second)
	if realmObj.SessionCount() != 1 {
		t.Fatal("expected session attached")
	}
	if rs.Session() == nil {
		t.Fatal("expected Session() to be non-nil once joined")
	}

	client.Close()

	deadline := time.Now().Add(time.Second)
	for realmObj.SessionCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if realmObj.SessionCount() != 0 {
		t.Fatal("expected session detached after transport loss")
	}

	deadline = time.Now().Add(time.Second)
	for rs.Session() != nil && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if rs.Session() != nil {
		t.Fatal("expected Session() to be cleared after transport loss")
	}
}

func TestHandshakeTimeout(t *testing.T) {
	t.Skip("exercises the 5 second helloTimeout; skipped to keep the suite fast")
}
