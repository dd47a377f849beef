package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/drazan344/chat-core/internal/core"
	"github.com/drazan344/chat-core/internal/hub"
	"github.com/rs/zerolog/log"
)

// Handlers is the full set of domain operations the dispatcher can route
// to. Each method is a short orchestration over Store + Hub and is
// responsible for emitting its own outbound events (to the room, to
// individual users, or back to the caller) — the dispatcher only turns a
// recoverable error into a toast for the originating client.
type Handlers interface {
	Initialize(ctx context.Context, client *hub.Client, req InitializeRequest) error
	SendMessage(ctx context.Context, client *hub.Client, req NewMessageRequest) error
	CreateRoom(ctx context.Context, client *hub.Client, req NewRoomRequest) error
	UpdateRoom(ctx context.Context, client *hub.Client, req UpdateRoomRequest) error
	DeleteRoom(ctx context.Context, client *hub.Client, req DeleteRoomRequest) error
	LeaveRoom(ctx context.Context, client *hub.Client, req LeaveRoomRequest) error
	AddMembers(ctx context.Context, client *hub.Client, req AddMembersRequest) error
	DeleteMembers(ctx context.Context, client *hub.Client, req DeleteMembersRequest) error
	AddFriend(ctx context.Context, client *hub.Client, req AddFriendRequest) error
	AcceptFriend(ctx context.Context, client *hub.Client, req AcceptFriendRequest) error
	RefuseFriend(ctx context.Context, client *hub.Client, req RefuseFriendRequest) error
	DeleteFriend(ctx context.Context, client *hub.Client, req DeleteFriendRequest) error
}

// Dispatcher decodes an inbound frame into an Envelope, validates and
// decodes its payload, and invokes the matching handler.
type Dispatcher struct {
	handlers Handlers
}

func NewDispatcher(handlers Handlers) *Dispatcher {
	return &Dispatcher{handlers: handlers}
}

// ErrFatal wraps an error that must terminate the owning session, as
// opposed to one converted into a toast for the caller.
type ErrFatal struct{ Err error }

func (e *ErrFatal) Error() string { return e.Err.Error() }
func (e *ErrFatal) Unwrap() error { return e.Err }

// Dispatch decodes raw bytes as an Envelope and routes it to a handler.
// A recoverable handler error becomes a toast sent only to client; a
// fatal error (send/serialize failure) is returned so the caller's
// session terminates.
func (d *Dispatcher) Dispatch(ctx context.Context, client *hub.Client, raw []byte) error {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return d.toast(client, "malformed event envelope")
	}

	err := d.route(ctx, client, env)
	if err == nil {
		return nil
	}

	coreErr, ok := err.(*core.CoreError)
	if !ok {
		log.Error().Err(err).Str("action", env.Action).Msg("unexpected handler error")
		return d.toast(client, "internal error")
	}
	if coreErr.Fatal() {
		return &ErrFatal{Err: coreErr}
	}
	return d.toast(client, coreErr.Error())
}

func (d *Dispatcher) route(ctx context.Context, client *hub.Client, env Envelope) error {
	switch env.Action {
	case ActionInitialize:
		return decodeAndCall(env, d.handlers.Initialize, ctx, client)
	case ActionNewMessage:
		return decodeAndCall(env, d.handlers.SendMessage, ctx, client)
	case ActionNewRoom:
		return decodeAndCall(env, d.handlers.CreateRoom, ctx, client)
	case ActionUpdateRoom:
		return decodeAndCall(env, d.handlers.UpdateRoom, ctx, client)
	case ActionDeleteRoom:
		return decodeAndCall(env, d.handlers.DeleteRoom, ctx, client)
	case ActionLeaveRoom:
		return decodeAndCall(env, d.handlers.LeaveRoom, ctx, client)
	case ActionAddMembers:
		return decodeAndCall(env, d.handlers.AddMembers, ctx, client)
	case ActionDeleteMembers:
		return decodeAndCall(env, d.handlers.DeleteMembers, ctx, client)
	case ActionAddFriend:
		return decodeAndCall(env, d.handlers.AddFriend, ctx, client)
	case ActionAcceptFriend:
		return decodeAndCall(env, d.handlers.AcceptFriend, ctx, client)
	case ActionRefuseFriend:
		return decodeAndCall(env, d.handlers.RefuseFriend, ctx, client)
	case ActionDeleteFriend:
		return decodeAndCall(env, d.handlers.DeleteFriend, ctx, client)
	default:
		return core.Validationf("unknown action %q", env.Action)
	}
}

// decodeAndCall unmarshals env.Data into T, validates it, and invokes fn.
// Go's lack of method-value generics over differing receiver types means
// this is a free function parameterized on the request type instead of a
// Dispatcher method.
func decodeAndCall[T any](env Envelope, fn func(context.Context, *hub.Client, T) error, ctx context.Context, client *hub.Client) error {
	var req T
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &req); err != nil {
			return core.Validationf("invalid payload for %q", env.Action)
		}
	}
	if err := Validate(req); err != nil {
		return core.Validationf("%s", err.Error())
	}
	return fn(ctx, client, req)
}

func (d *Dispatcher) toast(client *hub.Client, message string) error {
	env, err := New(OutToast, ToastResponse{Message: message})
	if err != nil {
		return &ErrFatal{Err: core.SerializeFailure()}
	}
	data, err := env.Encode()
	if err != nil {
		return &ErrFatal{Err: core.SerializeFailure()}
	}
	if sendErr := client.Send(data); sendErr != nil {
		return &ErrFatal{Err: fmt.Errorf("toast delivery: %w", sendErr)}
	}
	return nil
}
