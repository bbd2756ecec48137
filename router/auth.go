package router

import (
	"github.com/wampio/nexus/wamp"
)

// HelloDetails is the normalized view of a HELLO message's Details dict
// that PendingAuth.Hello consumes, equivalent to crossbar's HelloDetails.
type HelloDetails struct {
	AuthMethods    []string
	AuthID         string
	AuthRole       string
	AuthExtra      wamp.Dict
	SessionRoles   wamp.Dict
	PendingSession wamp.ID
}

// Disposition is the result of PendingAuth.Hello or PendingAuth.Authenticate:
// exactly one of Accept, Challenge (Hello only), or Deny.
type Disposition interface {
	isDisposition()
}

// Accept concludes authentication successfully.
type Accept struct {
	Realm        wamp.URI
	AuthID       string
	AuthRole     string
	AuthMethod   string
	AuthProvider string
	AuthExtra    wamp.Dict
}

func (Accept) isDisposition() {}

// Challenge asks the client to respond to an authentication challenge; only
// valid as the return of PendingAuth.Hello.
type Challenge struct {
	AuthMethod string
	Extra      wamp.Dict
}

func (Challenge) isDisposition() {}

// Deny concludes authentication with a failure.
type Deny struct {
	Reason  wamp.URI
	Message string
}

func (Deny) isDisposition() {}

// MethodConfig is the realm operator's configuration for one authmethod,
// e.g. which authrole a static anonymous/ticket config grants, or the
// callback used to verify a ticket/signature/password. The verification
// callbacks are the "authentication credential verifiers" spec.md §1
// calls out as an external collaborator: this core never contains
// password or key material, only the interface to check it.
type MethodConfig struct {
	// AuthRole is the role granted when this method accepts and the
	// verifier does not itself return a role (anonymous, most statically
	// configured methods).
	AuthRole string

	// Ticket verifies a WAMP-Ticket credential. Returns the authrole to
	// grant (an empty authrole falls back to AuthRole), or ok=false to deny.
	Ticket func(authid, ticket string) (authrole string, ok bool)

	// CraSecret returns the shared secret for authid, used to compute the
	// expected WAMP-CRA HMAC response. ok=false denies before a challenge
	// is even issued.
	CraSecret func(authid string) (secret string, ok bool)

	// ScramCredential returns the stored SCRAM credential for authid:
	// salt, iteration count, and the salted-password-derived StoredKey,
	// per RFC 5802 notation. ok=false denies before a challenge is issued.
	ScramCredential func(authid string) (salt []byte, iterations int, storedKey []byte, ok bool)

	// CryptosignPubKey returns the hex-encoded Ed25519 public key
	// authorized for authid. ok=false denies before a challenge is
	// issued.
	CryptosignPubKey func(authid string) (pubKeyHex string, ok bool)
}

// PendingAuth is the per-method authentication transaction: issued a
// pending session id, a view of the transport, and that method's config,
// it answers Hello once and then, if it returned a Challenge, answers
// Authenticate once.
type PendingAuth interface {
	Hello(realm wamp.URI, details HelloDetails) Disposition
	Authenticate(signature string, extra wamp.Dict) Disposition
}

// Factory constructs a PendingAuth for one authentication attempt.
type Factory func(pendingSession wamp.ID, transport TransportDetails, config MethodConfig) PendingAuth

// AuthMethodRegistry maps authmethod name to the Factory that builds its
// PendingAuth, merging the built-in methods with any methods an optional
// extension ("personality", per spec.md §4.2) contributes.
type AuthMethodRegistry struct {
	methods map[string]Factory
}

// NewAuthMethodRegistry returns a registry preloaded with the standard
// methods: anonymous, ticket, wampcra, scram, cryptosign, plus the two
// proxy-trust variants used when a frontend proxy has already verified the
// client (anonymous-proxy, cryptosign-proxy).
func NewAuthMethodRegistry() *AuthMethodRegistry {
	r := &AuthMethodRegistry{methods: make(map[string]Factory)}
	r.methods["anonymous"] = newAnonymousAuth
	r.methods["anonymous-proxy"] = newAnonymousProxyAuth
	r.methods["ticket"] = newTicketAuth
	r.methods["wampcra"] = newWampCraAuth
	r.methods["scram"] = newScramAuth
	r.methods["cryptosign"] = newCryptosignAuth
	r.methods["cryptosign-proxy"] = newCryptosignProxyAuth
	return r
}

// Extend merges additional method factories into the registry, as a
// personality would contribute extra auth methods at registry-construction
// time (spec.md §4.2). Extend overwrites any built-in of the same name.
func (r *AuthMethodRegistry) Extend(extra map[string]Factory) {
	for name, f := range extra {
		r.methods[name] = f
	}
}

// New builds the PendingAuth for method, or returns nil if method is not
// registered.
func (r *AuthMethodRegistry) New(method string, pendingSession wamp.ID, transport TransportDetails, config MethodConfig) PendingAuth {
	f, ok := r.methods[method]
	if !ok {
		return nil
	}
	return f(pendingSession, transport, config)
}

// Has reports whether method is registered.
func (r *AuthMethodRegistry) Has(method string) bool {
	_, ok := r.methods[method]
	return ok
}
