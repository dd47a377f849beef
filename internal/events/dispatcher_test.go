package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/drazan344/chat-core/internal/core"
	"github.com/drazan344/chat-core/internal/hub"
)

type fakeHandlers struct {
	sendMessageErr error
	called         string
}

func (f *fakeHandlers) Initialize(ctx context.Context, c *hub.Client, req InitializeRequest) error {
	f.called = "initialize"
	return nil
}
func (f *fakeHandlers) SendMessage(ctx context.Context, c *hub.Client, req NewMessageRequest) error {
	f.called = "send_message"
	return f.sendMessageErr
}
func (f *fakeHandlers) CreateRoom(ctx context.Context, c *hub.Client, req NewRoomRequest) error {
	return nil
}
func (f *fakeHandlers) UpdateRoom(ctx context.Context, c *hub.Client, req UpdateRoomRequest) error {
	return nil
}
func (f *fakeHandlers) DeleteRoom(ctx context.Context, c *hub.Client, req DeleteRoomRequest) error {
	return nil
}
func (f *fakeHandlers) LeaveRoom(ctx context.Context, c *hub.Client, req LeaveRoomRequest) error {
	return nil
}
func (f *fakeHandlers) AddMembers(ctx context.Context, c *hub.Client, req AddMembersRequest) error {
	return nil
}
func (f *fakeHandlers) DeleteMembers(ctx context.Context, c *hub.Client, req DeleteMembersRequest) error {
	return nil
}
func (f *fakeHandlers) AddFriend(ctx context.Context, c *hub.Client, req AddFriendRequest) error {
	return nil
}
func (f *fakeHandlers) AcceptFriend(ctx context.Context, c *hub.Client, req AcceptFriendRequest) error {
	return nil
}
func (f *fakeHandlers) RefuseFriend(ctx context.Context, c *hub.Client, req RefuseFriendRequest) error {
	return nil
}
func (f *fakeHandlers) DeleteFriend(ctx context.Context, c *hub.Client, req DeleteFriendRequest) error {
	return nil
}

func envelopeBytes(t *testing.T, action string, data any) []byte {
	t.Helper()
	env, err := New(action, data)
	if err != nil {
		t.Fatal(err)
	}
	raw, err := env.Encode()
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func TestDispatchRoutesToHandler(t *testing.T) {
	fh := &fakeHandlers{}
	d := NewDispatcher(fh)
	c := hub.NewClient(1, 100, 8)

	raw := envelopeBytes(t, ActionNewMessage, NewMessageRequest{RoomID: 1, Content: "hi", Kind: "text"})
	if err := d.Dispatch(context.Background(), c, raw); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fh.called != "send_message" {
		t.Fatalf("expected send_message to be called, got %q", fh.called)
	}
}

func TestDispatchValidationFailureBecomesToast(t *testing.T) {
	fh := &fakeHandlers{}
	d := NewDispatcher(fh)
	c := hub.NewClient(1, 100, 8)

	raw := envelopeBytes(t, ActionNewMessage, NewMessageRequest{RoomID: 0, Content: "", Kind: "bogus"})
	if err := d.Dispatch(context.Background(), c, raw); err != nil {
		t.Fatalf("validation failure should toast, not error: %v", err)
	}

	select {
	case msg := <-c.Outbound():
		var env Envelope
		if err := json.Unmarshal(msg, &env); err != nil {
			t.Fatal(err)
		}
		if env.Action != OutToast {
			t.Fatalf("expected toast, got %q", env.Action)
		}
	default:
		t.Fatal("expected a toast to be enqueued")
	}
}

func TestDispatchRecoverableErrorBecomesToast(t *testing.T) {
	fh := &fakeHandlers{sendMessageErr: core.Forbidden("not a member")}
	d := NewDispatcher(fh)
	c := hub.NewClient(1, 100, 8)

	raw := envelopeBytes(t, ActionNewMessage, NewMessageRequest{RoomID: 1, Content: "hi", Kind: "text"})
	if err := d.Dispatch(context.Background(), c, raw); err != nil {
		t.Fatalf("recoverable error should toast, not terminate: %v", err)
	}

	msg := <-c.Outbound()
	var env Envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		t.Fatal(err)
	}
	if env.Action != OutToast {
		t.Fatalf("expected toast, got %q", env.Action)
	}
}

func TestDispatchFatalErrorTerminatesSession(t *testing.T) {
	fh := &fakeHandlers{sendMessageErr: core.SerializeFailure()}
	d := NewDispatcher(fh)
	c := hub.NewClient(1, 100, 8)

	raw := envelopeBytes(t, ActionNewMessage, NewMessageRequest{RoomID: 1, Content: "hi", Kind: "text"})
	err := d.Dispatch(context.Background(), c, raw)
	if err == nil {
		t.Fatal("expected fatal error to propagate")
	}
	if _, ok := err.(*ErrFatal); !ok {
		t.Fatalf("expected *ErrFatal, got %T", err)
	}
}

func TestDispatchUnknownActionToasts(t *testing.T) {
	fh := &fakeHandlers{}
	d := NewDispatcher(fh)
	c := hub.NewClient(1, 100, 8)

	raw := envelopeBytes(t, "not-a-real-action", struct{}{})
	if err := d.Dispatch(context.Background(), c, raw); err != nil {
		t.Fatalf("unknown action should toast, not error: %v", err)
	}

	select {
	case msg := <-c.Outbound():
		var env Envelope
		if err := json.Unmarshal(msg, &env); err != nil {
			t.Fatal(err)
		}
		if env.Action != OutToast {
			t.Fatalf("expected toast, got %q", env.Action)
		}
	default:
		t.Fatal("expected a toast to be enqueued")
	}
}
