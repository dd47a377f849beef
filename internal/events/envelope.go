// Package events implements the wire protocol: the tagged-union envelope,
// inbound/outbound payload shapes, declarative validation, and the
// dispatcher that decodes, validates, and routes to domain handlers.
package events

import "encoding/json"

// Inbound action names.
const (
	ActionInitialize     = "initialize"
	ActionNewMessage     = "new-message"
	ActionNewRoom        = "new-room"
	ActionUpdateRoom     = "update-room"
	ActionDeleteRoom     = "delete-room"
	ActionLeaveRoom      = "leave-room"
	ActionAddMembers     = "add-members"
	ActionDeleteMembers  = "delete-members"
	ActionAddFriend      = "add-friend"
	ActionAcceptFriend   = "accept-friend"
	ActionRefuseFriend   = "refuse-friend"
	ActionDeleteFriend   = "delete-friend"
)

// Outbound action names.
const (
	OutToast          = "toast"
	OutInitialize     = "initialize"
	OutNewMessage     = "new-message"
	OutNewRoom        = "new-room"
	OutUpdateRoom     = "update-room"
	OutChangeCover    = "change-cover"
	OutDeleteRoom     = "delete-room"
	OutAddMembers     = "add-members"
	OutDeleteMembers  = "delete-members"
	OutAddFriend      = "add-friend"
	OutAcceptFriend   = "accept-friend"
	OutRefuseFriend   = "refuse-friend"
	OutDeleteFriend   = "delete-friend"
	OutPing           = "ping"
)

// Envelope is the wire object carried over the socket in both directions:
// a discriminant (Action) and an opaque payload (Data), decoded only once
// the action has been matched to a known handler.
type Envelope struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// New builds an outbound envelope by marshaling payload into Data.
func New(action string, payload any) (*Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Envelope{Action: action, Data: data}, nil
}

// Encode marshals the envelope to the bytes written to the socket.
func (e *Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}
