package wamp

// MessageType identifies the wire type of a WAMP message.
type MessageType int

// WAMP message type codes, as defined by the Basic Profile plus the
// Advanced Profile RPC messages this router supports.
const (
	HELLO        MessageType = 1
	WELCOME      MessageType = 2
	ABORT        MessageType = 3
	CHALLENGE    MessageType = 4
	AUTHENTICATE MessageType = 5
	GOODBYE      MessageType = 6
	ERROR        MessageType = 8

	PUBLISH   MessageType = 16
	PUBLISHED MessageType = 17

	SUBSCRIBE    MessageType = 32
	SUBSCRIBED   MessageType = 33
	UNSUBSCRIBE  MessageType = 34
	UNSUBSCRIBED MessageType = 35
	EVENT        MessageType = 36

	CALL   MessageType = 48
	RESULT MessageType = 50

	REGISTER     MessageType = 64
	REGISTERED   MessageType = 65
	UNREGISTER   MessageType = 66
	UNREGISTERED MessageType = 67
	INVOCATION   MessageType = 68
	YIELD        MessageType = 70

	CANCEL MessageType = 49
)

func (t MessageType) String() string {
	switch t {
	case HELLO:
		return "HELLO"
	case WELCOME:
		return "WELCOME"
	case ABORT:
		return "ABORT"
	case CHALLENGE:
		return "CHALLENGE"
	case AUTHENTICATE:
		return "AUTHENTICATE"
	case GOODBYE:
		return "GOODBYE"
	case ERROR:
		return "ERROR"
	case PUBLISH:
		return "PUBLISH"
	case PUBLISHED:
		return "PUBLISHED"
	case SUBSCRIBE:
		return "SUBSCRIBE"
	case SUBSCRIBED:
		return "SUBSCRIBED"
	case UNSUBSCRIBE:
		return "UNSUBSCRIBE"
	case UNSUBSCRIBED:
		return "UNSUBSCRIBED"
	case EVENT:
		return "EVENT"
	case CALL:
		return "CALL"
	case CANCEL:
		return "CANCEL"
	case RESULT:
		return "RESULT"
	case REGISTER:
		return "REGISTER"
	case REGISTERED:
		return "REGISTERED"
	case UNREGISTER:
		return "UNREGISTER"
	case UNREGISTERED:
		return "UNREGISTERED"
	case INVOCATION:
		return "INVOCATION"
	case YIELD:
		return "YIELD"
	default:
		return "UNKNOWN"
	}
}

// Message is implemented by every WAMP message struct.
type Message interface {
	MessageType() MessageType
}

// Hello is sent by a client to initiate a WAMP session.
type Hello struct {
	Realm   URI
	Details Dict
}

func (*Hello) MessageType() MessageType { return HELLO }

// Welcome is sent by the router to accept a session.
type Welcome struct {
	ID      ID
	Details Dict
}

func (*Welcome) MessageType() MessageType { return WELCOME }

// Abort is sent by either peer to abort session establishment.
type Abort struct {
	Details Dict
	Reason  URI
}

func (*Abort) MessageType() MessageType { return ABORT }

// Challenge is sent by the router to initiate a challenge-response
// authentication exchange.
type Challenge struct {
	AuthMethod string
	Extra      Dict
}

func (*Challenge) MessageType() MessageType { return CHALLENGE }

// Authenticate is sent by the client in response to a Challenge.
type Authenticate struct {
	Signature string
	Extra     Dict
}

func (*Authenticate) MessageType() MessageType { return AUTHENTICATE }

// Goodbye is sent by either peer to close a session cleanly.
type Goodbye struct {
	Details Dict
	Reason  URI
}

func (*Goodbye) MessageType() MessageType { return GOODBYE }

// Error conveys that a request failed.
type Error struct {
	Type        MessageType
	Request     ID
	Details     Dict
	Error       URI
	Arguments   List
	ArgumentsKw Dict
}

func (*Error) MessageType() MessageType { return ERROR }

// Publish requests publication of an event to a topic.
type Publish struct {
	Request     ID
	Options     Dict
	Topic       URI
	Arguments   List
	ArgumentsKw Dict
}

func (*Publish) MessageType() MessageType { return PUBLISH }

// Published acknowledges a Publish that requested acknowledgement.
type Published struct {
	Request     ID
	Publication ID
}

func (*Published) MessageType() MessageType { return PUBLISHED }

// Subscribe requests subscription to a topic.
type Subscribe struct {
	Request ID
	Options Dict
	Topic   URI
}

func (*Subscribe) MessageType() MessageType { return SUBSCRIBE }

// Subscribed acknowledges a Subscribe.
type Subscribed struct {
	Request      ID
	Subscription ID
}

func (*Subscribed) MessageType() MessageType { return SUBSCRIBED }

// Unsubscribe requests removal of an existing subscription.
type Unsubscribe struct {
	Request      ID
	Subscription ID
}

func (*Unsubscribe) MessageType() MessageType { return UNSUBSCRIBE }

// Unsubscribed acknowledges an Unsubscribe.
type Unsubscribed struct {
	Request ID
}

func (*Unsubscribed) MessageType() MessageType { return UNSUBSCRIBED }

// Event delivers a published event to a subscriber.
type Event struct {
	Subscription ID
	Publication  ID
	Details      Dict
	Arguments    List
	ArgumentsKw  Dict
}

func (*Event) MessageType() MessageType { return EVENT }

// Call requests invocation of a remote procedure.
type Call struct {
	Request     ID
	Options     Dict
	Procedure   URI
	Arguments   List
	ArgumentsKw Dict
}

func (*Call) MessageType() MessageType { return CALL }

// Cancel requests cancellation of an outstanding Call.
type Cancel struct {
	Request ID
	Options Dict
}

func (*Cancel) MessageType() MessageType { return CANCEL }

// Result conveys the result of a procedure call.
type Result struct {
	Request     ID
	Details     Dict
	Arguments   List
	ArgumentsKw Dict
}

func (*Result) MessageType() MessageType { return RESULT }

// Register requests registration of a procedure.
type Register struct {
	Request   ID
	Options   Dict
	Procedure URI
}

func (*Register) MessageType() MessageType { return REGISTER }

// Registered acknowledges a Register.
type Registered struct {
	Request      ID
	Registration ID
}

func (*Registered) MessageType() MessageType { return REGISTERED }

// Unregister requests removal of an existing registration.
type Unregister struct {
	Request      ID
	Registration ID
}

func (*Unregister) MessageType() MessageType { return UNREGISTER }

// Unregistered acknowledges an Unregister.
type Unregistered struct {
	Request ID
}

func (*Unregistered) MessageType() MessageType { return UNREGISTERED }

// Invocation delivers a call to the callee that registered the procedure.
type Invocation struct {
	Request      ID
	Registration ID
	Details      Dict
	Arguments    List
	ArgumentsKw  Dict
}

func (*Invocation) MessageType() MessageType { return INVOCATION }

// Yield returns the result of an invocation from callee to router.
type Yield struct {
	Request     ID
	Options     Dict
	Arguments   List
	ArgumentsKw Dict
}

func (*Yield) MessageType() MessageType { return YIELD }

// IsGoodbyeAck reports whether msg is a GOODBYE. It does not tell an
// acknowledgement apart from a fresh GOODBYE: any GOODBYE counts. Used by
// RouterSession to accept the reply to a GOODBYE it sent, and by transports
// to decide whether a write failure following a GOODBYE is worth logging.
func IsGoodbyeAck(msg Message) bool {
	_, ok := msg.(*Goodbye)
	return ok
}
