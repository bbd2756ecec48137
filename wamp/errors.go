package wamp

// Standard WAMP error/abort reason URIs used by the session core.
const (
	ErrNoSuchRealm          = URI("wamp.error.no_such_realm")
	ErrNoSuchRole           = URI("wamp.error.no_such_role")
	ErrNoSuchSession        = URI("wamp.error.no_such_session")
	ErrNoAuthMethod         = URI("wamp.error.no_auth_method")
	ErrAuthenticationFailed = URI("wamp.error.authentication_failed")
	ErrAuthorizationFailed  = URI("wamp.error.authorization_failed")
	ErrSystemShutdown       = URI("wamp.error.system_shutdown")
	ErrProtocolViolation    = URI("wamp.exception.protocol_violation")
	ErrInvalidArgument      = URI("wamp.error.invalid_argument")
	ErrNoSuchProcedure      = URI("wamp.error.no_such_procedure")
	ErrNoSuchSubscription   = URI("wamp.error.no_such_subscription")
	ErrNoSuchRegistration   = URI("wamp.error.no_such_registration")

	// CloseNormal is the GOODBYE reason for an ordinary, voluntary close.
	CloseNormal = URI("wamp.close.normal")
	// CloseLogout is the GOODBYE reason that additionally revokes any
	// cookie-based authentication bound to the session's transport and
	// kicks every other transport sharing that cookie.
	CloseLogout = URI("wamp.close.logout")
	// CloseGoodbyeAndOut is the reason the router sends in its GOODBYE
	// reply to a GOODBYE the client initiated.
	CloseGoodbyeAndOut = URI("wamp.close.goodbye_and_out")
)
