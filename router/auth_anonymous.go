package router

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/wampio/nexus/wamp"
)

// anonymousAuth accepts unconditionally, assigning a fresh random authid on
// every Hello; an authid offered by the client or a cookie id on the
// transport is not used.
type anonymousAuth struct {
	config         MethodConfig
	pendingSession wamp.ID
	cookieID       string
}

func newAnonymousAuth(pendingSession wamp.ID, transport TransportDetails, config MethodConfig) PendingAuth {
	return &anonymousAuth{config: config, pendingSession: pendingSession}
}

func (a *anonymousAuth) Hello(realm wamp.URI, details HelloDetails) Disposition {
	authrole := a.config.AuthRole
	if authrole == "" {
		authrole = "anonymous"
	}
	authid := generateSerial()
	return Accept{
		Realm:        realm,
		AuthID:       authid,
		AuthRole:     authrole,
		AuthMethod:   "anonymous",
		AuthProvider: "static",
	}
}

func (a *anonymousAuth) Authenticate(signature string, extra wamp.Dict) Disposition {
	return Deny{Reason: wamp.ErrAuthorizationFailed, Message: "anonymous authentication does not challenge"}
}

// anonymousProxyAuth trusts the authid/authrole a frontend proxy already
// placed in the HELLO details, passing the HELLO's authextra through
// unchanged (a proxy that fronts this router performed real authentication
// and forwards the resulting identity). It never challenges.
type anonymousProxyAuth struct{}

func newAnonymousProxyAuth(pendingSession wamp.ID, transport TransportDetails, config MethodConfig) PendingAuth {
	return anonymousProxyAuth{}
}

func (anonymousProxyAuth) Hello(realm wamp.URI, details HelloDetails) Disposition {
	if details.AuthID == "" {
		return Deny{Reason: wamp.ErrAuthorizationFailed, Message: "anonymous-proxy requires a forwarded authid"}
	}
	authrole := details.AuthRole
	if authrole == "" {
		authrole = "anonymous"
	}
	return Accept{
		Realm:        realm,
		AuthID:       details.AuthID,
		AuthRole:     authrole,
		AuthMethod:   "anonymous",
		AuthProvider: "anonymous-proxy",
		AuthExtra:    details.AuthExtra,
	}
}

func (anonymousProxyAuth) Authenticate(signature string, extra wamp.Dict) Disposition {
	return Deny{Reason: wamp.ErrAuthorizationFailed, Message: "anonymous-proxy does not challenge"}
}

// generateSerial returns a random hex identifier, used as the authid of
// every anonymous session, matching crossbar's
// util.generate_serial_number() fallback.
func generateSerial() string {
	var b [16]byte
	rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
