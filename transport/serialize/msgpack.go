package serialize

import (
	"bytes"
	"reflect"

	"github.com/ugorji/go/codec"
	"github.com/wampio/nexus/wamp"
)

var mpHandle codec.MsgpackHandle

func init() {
	mpHandle.MapType = reflect.TypeOf(map[string]interface{}{})
	mpHandle.RawToString = true
}

// MessagePackSerializer implements Serializer using ugorji/go/codec, the
// same MsgPack library the teacher's websocket transport selects for the
// "wamp.2.msgpack" subprotocol.
type MessagePackSerializer struct{}

func (MessagePackSerializer) Serialize(msg wamp.Message) ([]byte, error) {
	fields, err := messageToFields(msg)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := codec.NewEncoder(&buf, &mpHandle)
	if err := enc.Encode(fields); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (MessagePackSerializer) Deserialize(b []byte) (wamp.Message, error) {
	var fields []interface{}
	dec := codec.NewDecoderBytes(b, &mpHandle)
	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}
	return fieldsToMessage(fields)
}
