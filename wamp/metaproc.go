package wamp

// Meta-event topics published by the router's service session on session
// lifecycle transitions. Exactly these three exist; nothing else is
// published under the "wamp.session." prefix by this core.
const (
	MetaEventSessionOnJoin  = URI("wamp.session.on_join")
	MetaEventSessionOnLeave = URI("wamp.session.on_leave")
	MetaEventSessionOnStats = URI("wamp.session.on_stats")
)

// Session meta-procedures, retained from the teacher's broker/dealer meta
// API so that callers migrating off the teacher's wire format see familiar
// names; the broker/dealer implementations of these are out of scope for
// the session core (see spec.md §1), but the constants belong next to the
// event topics they're related to.
const (
	MetaProcSessionCount = URI("wamp.session.count")
	MetaProcSessionList  = URI("wamp.session.list")
	MetaProcSessionGet   = URI("wamp.session.get")

	MetaProcRegList         = URI("wamp.registration.list")
	MetaProcRegLookup       = URI("wamp.registration.lookup")
	MetaProcRegMatch        = URI("wamp.registration.match")
	MetaProcRegGet          = URI("wamp.registration.get")
	MetaProcRegListCallees  = URI("wamp.registration.list_callees")
	MetaProcRegCountCallees = URI("wamp.registration.count_callees")
)
