package router

import (
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/wampio/nexus/stdlog"
)

func TestFactoryRegisterEmbeddedPreventsDoubleRegistration(t *testing.T) {
	defer leaktest.Check(t)()

	realmObj := newTestRealm(t)
	f := NewSessionFactory(nil, nil, nil, stdlog.New())

	appSession := "service-a"
	peer, err := f.RegisterEmbedded(appSession, realmObj, "alice", "user", nil, EmbeddedHooks{})
	if err != nil {
		t.Fatal(err)
	}
	if peer == nil {
		t.Fatal("expected a non-nil peer from RegisterEmbedded")
	}

	if _, err := f.RegisterEmbedded(appSession, realmObj, "alice", "user", nil, EmbeddedHooks{}); err == nil {
		t.Fatal("expected registering the same application session twice to fail")
	}

	f.UnregisterEmbedded(appSession)
	time.Sleep(20 * time.Millisecond)

	// Once unregistered, the same handle can be registered again.
	if _, err := f.RegisterEmbedded(appSession, realmObj, "alice", "user", nil, EmbeddedHooks{}); err != nil {
		t.Fatalf("expected re-registration after unregister to succeed, got %v", err)
	}
	f.UnregisterEmbedded(appSession)
	time.Sleep(20 * time.Millisecond)
}

func TestFactoryUnregisterEmbeddedUnknownIsNoop(t *testing.T) {
	defer leaktest.Check(t)()

	f := NewSessionFactory(nil, nil, nil, stdlog.New())
	f.UnregisterEmbedded("never-registered")
}
