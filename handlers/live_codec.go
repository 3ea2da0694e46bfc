package handlers

import (
	"encoding/json"

	"regwizard/models"
	"regwizard/services/wizard"

	"github.com/coder/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

// Live subprotocols. Clients that negotiate none get JSON.
const (
	SubprotocolJSON    = "wizard.json"
	SubprotocolMsgpack = "wizard.msgpack"
)

// Live event types sent by the client.
const (
	EventChange   = "change"
	EventBlur     = "blur"
	EventNext     = "next"
	EventPrev     = "prev"
	EventValidate = "validate"
	EventSubmit   = "submit"
	EventCancel   = "cancel"
	EventReset    = "reset"
	EventSync     = "sync"
)

// Live message types sent by the server.
const (
	MessageView      = "view"
	MessageSubmitted = "submitted"
	MessageError     = "error"
)

// LiveEvent is one client frame.
type LiveEvent struct {
	Type  string `json:"type" msgpack:"type"`
	Field string `json:"field,omitempty" msgpack:"field,omitempty"`
	Value string `json:"value,omitempty" msgpack:"value,omitempty"`
}

// LiveMessage is one server frame.
type LiveMessage struct {
	Type       string                `json:"type" msgpack:"type"`
	View       *wizard.View          `json:"view,omitempty" msgpack:"view,omitempty"`
	Result     *wizard.AdvanceResult `json:"result,omitempty" msgpack:"result,omitempty"`
	Notice     *models.Notice        `json:"notice,omitempty" msgpack:"notice,omitempty"`
	SummaryRef string                `json:"summaryRef,omitempty" msgpack:"summaryRef,omitempty"`
	Error      string                `json:"error,omitempty" msgpack:"error,omitempty"`
}

// LiveCodec converts frames for one subprotocol.
type LiveCodec interface {
	Encode(msg *LiveMessage) ([]byte, error)
	Decode(data []byte) (*LiveEvent, error)
	Name() string
	MessageType() websocket.MessageType
}

type jsonLiveCodec struct{}

func (jsonLiveCodec) Encode(msg *LiveMessage) ([]byte, error) { return json.Marshal(msg) }

func (jsonLiveCodec) Decode(data []byte) (*LiveEvent, error) {
	var ev LiveEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

func (jsonLiveCodec) Name() string                       { return SubprotocolJSON }
func (jsonLiveCodec) MessageType() websocket.MessageType { return websocket.MessageText }

type msgpackLiveCodec struct{}

func (msgpackLiveCodec) Encode(msg *LiveMessage) ([]byte, error) { return msgpack.Marshal(msg) }

func (msgpackLiveCodec) Decode(data []byte) (*LiveEvent, error) {
	var ev LiveEvent
	if err := msgpack.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

func (msgpackLiveCodec) Name() string                       { return SubprotocolMsgpack }
func (msgpackLiveCodec) MessageType() websocket.MessageType { return websocket.MessageBinary }

// codecFor returns the codec of a negotiated subprotocol.
func codecFor(subprotocol string) LiveCodec {
	if subprotocol == SubprotocolMsgpack {
		return msgpackLiveCodec{}
	}
	return jsonLiveCodec{}
}
