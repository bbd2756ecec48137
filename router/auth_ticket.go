package router

import "github.com/wampio/nexus/wamp"

// ticketAuth implements WAMP-Ticket: the router challenges for a
// pre-shared "ticket" string, which the operator-supplied MethodConfig.Ticket
// callback verifies out of band (e.g. against a database row).
type ticketAuth struct {
	config MethodConfig
	authid string
	realm  wamp.URI
}

func newTicketAuth(pendingSession wamp.ID, transport TransportDetails, config MethodConfig) PendingAuth {
	return &ticketAuth{config: config}
}

func (t *ticketAuth) Hello(realm wamp.URI, details HelloDetails) Disposition {
	if details.AuthID == "" {
		return Deny{Reason: wamp.ErrAuthorizationFailed, Message: "ticket authentication requires an authid"}
	}
	if t.config.Ticket == nil {
		return Deny{Reason: wamp.ErrAuthorizationFailed, Message: "ticket authentication is not configured"}
	}
	t.authid = details.AuthID
	t.realm = realm
	return Challenge{AuthMethod: "ticket"}
}

func (t *ticketAuth) Authenticate(signature string, extra wamp.Dict) Disposition {
	authrole, ok := t.config.Ticket(t.authid, signature)
	if !ok {
		return Deny{Reason: wamp.ErrAuthorizationFailed, Message: "invalid ticket"}
	}
	if authrole == "" {
		authrole = t.config.AuthRole
	}
	return Accept{
		Realm:        t.realm,
		AuthID:       t.authid,
		AuthRole:     authrole,
		AuthMethod:   "ticket",
		AuthProvider: "static",
	}
}
