package router

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"

	"github.com/wampio/nexus/wamp"
)

// wampCraAuth implements WAMP-CRA: the router issues a random nonce inside
// a Challenge.Extra JSON-able dict, and the client must answer with
// base64(HMAC-SHA256(secret, challengeJSON)).
type wampCraAuth struct {
	config     MethodConfig
	authid     string
	realm      wamp.URI
	secret     string
	challenge  string
	challenged bool
}

func newWampCraAuth(pendingSession wamp.ID, transport TransportDetails, config MethodConfig) PendingAuth {
	return &wampCraAuth{config: config}
}

func (w *wampCraAuth) Hello(realm wamp.URI, details HelloDetails) Disposition {
	if details.AuthID == "" {
		return Deny{Reason: wamp.ErrAuthorizationFailed, Message: "wampcra authentication requires an authid"}
	}
	if w.config.CraSecret == nil {
		return Deny{Reason: wamp.ErrAuthorizationFailed, Message: "wampcra authentication is not configured"}
	}
	secret, ok := w.config.CraSecret(details.AuthID)
	if !ok {
		return Deny{Reason: wamp.ErrNoSuchRole, Message: "no such authid"}
	}
	w.authid = details.AuthID
	w.realm = realm
	w.secret = secret

	var nonce [16]byte
	rand.Read(nonce[:])
	challengeInfo := map[string]interface{}{
		"nonce":      hex.EncodeToString(nonce[:]),
		"authid":     details.AuthID,
		"authrole":   w.config.AuthRole,
		"authmethod": "wampcra",
	}
	b, _ := json.Marshal(challengeInfo)
	w.challenge = string(b)
	w.challenged = true
	return Challenge{AuthMethod: "wampcra", Extra: wamp.Dict{"challenge": w.challenge}}
}

func (w *wampCraAuth) Authenticate(signature string, extra wamp.Dict) Disposition {
	if !w.challenged {
		return Deny{Reason: wamp.ErrAuthorizationFailed, Message: "no challenge issued"}
	}
	mac := hmac.New(sha256.New, []byte(w.secret))
	mac.Write([]byte(w.challenge))
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return Deny{Reason: wamp.ErrAuthorizationFailed, Message: "signature mismatch"}
	}
	return Accept{
		Realm:        w.realm,
		AuthID:       w.authid,
		AuthRole:     w.config.AuthRole,
		AuthMethod:   "wampcra",
		AuthProvider: "static",
	}
}
