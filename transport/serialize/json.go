package serialize

import (
	"encoding/json"
	"fmt"

	"github.com/wampio/nexus/wamp"
)

// JSONSerializer implements Serializer using the standard library's JSON
// codec. WAMP's JSON wire representation is a plain array of
// [type, ...fields]; a third-party JSON library buys nothing over
// encoding/json for this shape, so this one part of the stack stays on the
// standard library (see DESIGN.md).
type JSONSerializer struct{}

func (JSONSerializer) Serialize(msg wamp.Message) ([]byte, error) {
	fields, err := messageToFields(msg)
	if err != nil {
		return nil, err
	}
	return json.Marshal(fields)
}

func (JSONSerializer) Deserialize(b []byte) (wamp.Message, error) {
	var fields []interface{}
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, err
	}
	return fieldsToMessage(fields)
}

func messageToFields(msg wamp.Message) ([]interface{}, error) {
	switch m := msg.(type) {
	case *wamp.Hello:
		return []interface{}{wamp.HELLO, m.Realm, m.Details}, nil
	case *wamp.Welcome:
		return []interface{}{wamp.WELCOME, m.ID, m.Details}, nil
	case *wamp.Abort:
		return []interface{}{wamp.ABORT, m.Details, m.Reason}, nil
	case *wamp.Challenge:
		return []interface{}{wamp.CHALLENGE, m.AuthMethod, m.Extra}, nil
	case *wamp.Authenticate:
		return []interface{}{wamp.AUTHENTICATE, m.Signature, m.Extra}, nil
	case *wamp.Goodbye:
		return []interface{}{wamp.GOODBYE, m.Details, m.Reason}, nil
	case *wamp.Error:
		return []interface{}{wamp.ERROR, m.Type, m.Request, m.Details, m.Error, m.Arguments, m.ArgumentsKw}, nil
	case *wamp.Publish:
		return []interface{}{wamp.PUBLISH, m.Request, m.Options, m.Topic, m.Arguments, m.ArgumentsKw}, nil
	case *wamp.Published:
		return []interface{}{wamp.PUBLISHED, m.Request, m.Publication}, nil
	case *wamp.Subscribe:
		return []interface{}{wamp.SUBSCRIBE, m.Request, m.Options, m.Topic}, nil
	case *wamp.Subscribed:
		return []interface{}{wamp.SUBSCRIBED, m.Request, m.Subscription}, nil
	case *wamp.Unsubscribe:
		return []interface{}{wamp.UNSUBSCRIBE, m.Request, m.Subscription}, nil
	case *wamp.Unsubscribed:
		return []interface{}{wamp.UNSUBSCRIBED, m.Request}, nil
	case *wamp.Event:
		return []interface{}{wamp.EVENT, m.Subscription, m.Publication, m.Details, m.Arguments, m.ArgumentsKw}, nil
	case *wamp.Call:
		return []interface{}{wamp.CALL, m.Request, m.Options, m.Procedure, m.Arguments, m.ArgumentsKw}, nil
	case *wamp.Cancel:
		return []interface{}{wamp.CANCEL, m.Request, m.Options}, nil
	case *wamp.Result:
		return []interface{}{wamp.RESULT, m.Request, m.Details, m.Arguments, m.ArgumentsKw}, nil
	case *wamp.Register:
		return []interface{}{wamp.REGISTER, m.Request, m.Options, m.Procedure}, nil
	case *wamp.Registered:
		return []interface{}{wamp.REGISTERED, m.Request, m.Registration}, nil
	case *wamp.Unregister:
		return []interface{}{wamp.UNREGISTER, m.Request, m.Registration}, nil
	case *wamp.Unregistered:
		return []interface{}{wamp.UNREGISTERED, m.Request}, nil
	case *wamp.Invocation:
		return []interface{}{wamp.INVOCATION, m.Request, m.Registration, m.Details, m.Arguments, m.ArgumentsKw}, nil
	case *wamp.Yield:
		return []interface{}{wamp.YIELD, m.Request, m.Options, m.Arguments, m.ArgumentsKw}, nil
	default:
		return nil, fmt.Errorf("serialize: unsupported message type %T", msg)
	}
}

func fieldsToMessage(fields []interface{}) (wamp.Message, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("deserialize: empty message")
	}
	mtNum, ok := wamp.AsInt64(fields[0])
	if !ok {
		return nil, fmt.Errorf("deserialize: bad message type field")
	}
	mt := wamp.MessageType(mtNum)

	str := func(i int) string {
		if i < len(fields) {
			s, _ := fields[i].(string)
			return s
		}
		return ""
	}
	dict := func(i int) wamp.Dict {
		if i < len(fields) {
			return wamp.NormalizeDict(fields[i])
		}
		return nil
	}
	list := func(i int) wamp.List {
		if i < len(fields) {
			if l, ok := fields[i].([]interface{}); ok {
				return wamp.List(l)
			}
		}
		return nil
	}
	id := func(i int) wamp.ID {
		if i < len(fields) {
			n, _ := wamp.AsID(fields[i])
			return n
		}
		return 0
	}

	switch mt {
	case wamp.HELLO:
		return &wamp.Hello{Realm: wamp.URI(str(1)), Details: dict(2)}, nil
	case wamp.WELCOME:
		return &wamp.Welcome{ID: id(1), Details: dict(2)}, nil
	case wamp.ABORT:
		return &wamp.Abort{Details: dict(1), Reason: wamp.URI(str(2))}, nil
	case wamp.CHALLENGE:
		return &wamp.Challenge{AuthMethod: str(1), Extra: dict(2)}, nil
	case wamp.AUTHENTICATE:
		return &wamp.Authenticate{Signature: str(1), Extra: dict(2)}, nil
	case wamp.GOODBYE:
		return &wamp.Goodbye{Details: dict(1), Reason: wamp.URI(str(2))}, nil
	case wamp.ERROR:
		return &wamp.Error{
			Type: wamp.MessageType(func() int64 { n, _ := wamp.AsInt64(fields[1]); return n }()), Request: id(2),
			Details: dict(3), Error: wamp.URI(str(4)), Arguments: list(5), ArgumentsKw: dict(6),
		}, nil
	case wamp.PUBLISH:
		return &wamp.Publish{Request: id(1), Options: dict(2), Topic: wamp.URI(str(3)), Arguments: list(4), ArgumentsKw: dict(5)}, nil
	case wamp.PUBLISHED:
		return &wamp.Published{Request: id(1), Publication: id(2)}, nil
	case wamp.SUBSCRIBE:
		return &wamp.Subscribe{Request: id(1), Options: dict(2), Topic: wamp.URI(str(3))}, nil
	case wamp.SUBSCRIBED:
		return &wamp.Subscribed{Request: id(1), Subscription: id(2)}, nil
	case wamp.UNSUBSCRIBE:
		return &wamp.Unsubscribe{Request: id(1), Subscription: id(2)}, nil
	case wamp.UNSUBSCRIBED:
		return &wamp.Unsubscribed{Request: id(1)}, nil
	case wamp.EVENT:
		return &wamp.Event{Subscription: id(1), Publication: id(2), Details: dict(3), Arguments: list(4), ArgumentsKw: dict(5)}, nil
	case wamp.CALL:
		return &wamp.Call{Request: id(1), Options: dict(2), Procedure: wamp.URI(str(3)), Arguments: list(4), ArgumentsKw: dict(5)}, nil
	case wamp.CANCEL:
		return &wamp.Cancel{Request: id(1), Options: dict(2)}, nil
	case wamp.RESULT:
		return &wamp.Result{Request: id(1), Details: dict(2), Arguments: list(3), ArgumentsKw: dict(4)}, nil
	case wamp.REGISTER:
		return &wamp.Register{Request: id(1), Options: dict(2), Procedure: wamp.URI(str(3))}, nil
	case wamp.REGISTERED:
		return &wamp.Registered{Request: id(1), Registration: id(2)}, nil
	case wamp.UNREGISTER:
		return &wamp.Unregister{Request: id(1), Registration: id(2)}, nil
	case wamp.UNREGISTERED:
		return &wamp.Unregistered{Request: id(1)}, nil
	case wamp.INVOCATION:
		return &wamp.Invocation{Request: id(1), Registration: id(2), Details: dict(3), Arguments: list(4), ArgumentsKw: dict(5)}, nil
	case wamp.YIELD:
		return &wamp.Yield{Request: id(1), Options: dict(2), Arguments: list(3), ArgumentsKw: dict(4)}, nil
	default:
		return nil, fmt.Errorf("deserialize: unknown message type %v", mt)
	}
}
