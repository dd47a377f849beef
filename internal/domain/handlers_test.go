package domain

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/drazan344/chat-core/internal/core"
	"github.com/drazan344/chat-core/internal/events"
	"github.com/drazan344/chat-core/internal/hub"
	"github.com/drazan344/chat-core/internal/store"
)

// fakeUsers/fakeRooms/fakeMembers/fakeMessages/fakeFriends implement just
// enough of store.Storage's interfaces for the handlers under test, each
// backed by closures so individual tests can script the exact return
// values and error paths they need.

type fakeUsers struct{}

func (fakeUsers) Create(ctx context.Context, username, hashedPassword, role string) (*store.User, error) {
	return nil, nil
}
func (fakeUsers) GetByUsername(ctx context.Context, username string) (*store.User, error) {
	return nil, nil
}
func (fakeUsers) GetByID(ctx context.Context, id int64) (*store.User, error) { return nil, nil }

type fakeRooms struct {
	createFn        func(ctx context.Context, name string, memberIDs []int64) (*store.RoomInfo, error)
	updateFn        func(ctx context.Context, roomID int64, name string) error
	deleteFn        func(ctx context.Context, id int64) ([]int64, error)
	getUserRoomsFn  func(ctx context.Context, userID int64) ([]*store.RoomInfo, error)
	getByIDFn       func(ctx context.Context, id int64) (*store.RoomInfo, error)
}

func (f fakeRooms) Create(ctx context.Context, name string, memberIDs []int64) (*store.RoomInfo, error) {
	return f.createFn(ctx, name, memberIDs)
}
func (f fakeRooms) GetByID(ctx context.Context, id int64) (*store.RoomInfo, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return &store.RoomInfo{RoomID: id}, nil
}
func (f fakeRooms) Update(ctx context.Context, roomID int64, name string) error {
	return f.updateFn(ctx, roomID, name)
}
func (f fakeRooms) Delete(ctx context.Context, id int64) ([]int64, error) {
	return f.deleteFn(ctx, id)
}
func (f fakeRooms) GetUserRooms(ctx context.Context, userID int64) ([]*store.RoomInfo, error) {
	if f.getUserRoomsFn != nil {
		return f.getUserRoomsFn(ctx, userID)
	}
	return nil, nil
}

type fakeMembers struct {
	rank    string
	rankOK  bool
	addFn   func(ctx context.Context, roomID int64, memberIDs []int64) ([]*store.MemberInfo, error)
	deleteFn func(ctx context.Context, roomID int64, memberIDs []int64) ([]int64, error)
}

func (f fakeMembers) Add(ctx context.Context, roomID int64, memberIDs []int64) ([]*store.MemberInfo, error) {
	return f.addFn(ctx, roomID, memberIDs)
}
func (f fakeMembers) Delete(ctx context.Context, roomID int64, memberIDs []int64) ([]int64, error) {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, roomID, memberIDs)
	}
	return memberIDs, nil
}
func (f fakeMembers) GetRank(ctx context.Context, userID, roomID int64) (string, bool, error) {
	return f.rank, f.rankOK, nil
}
func (f fakeMembers) IsUserInRoom(ctx context.Context, roomID, userID int64) (bool, error) {
	return f.rankOK, nil
}

type fakeMessages struct {
	appendFn func(ctx context.Context, senderID, roomID int64, content, kind string) (*store.Message, error)
}

func (f fakeMessages) Append(ctx context.Context, senderID, roomID int64, content, kind string) (*store.Message, error) {
	return f.appendFn(ctx, senderID, roomID, content, kind)
}
func (f fakeMessages) GetSince(ctx context.Context, roomID int64, since time.Time) ([]*store.Message, error) {
	return nil, nil
}

type fakeFriends struct {
	getFn    func(ctx context.Context, userID, friendID int64) (*store.FriendShip, error)
	createFn func(ctx context.Context, userID, friendID int64) (*store.FriendShip, error)
}

func (f fakeFriends) Get(ctx context.Context, userID, friendID int64) (*store.FriendShip, error) {
	return f.getFn(ctx, userID, friendID)
}
func (f fakeFriends) Create(ctx context.Context, userID, friendID int64) (*store.FriendShip, error) {
	return f.createFn(ctx, userID, friendID)
}
func (f fakeFriends) Update(ctx context.Context, userID, friendID int64) error { return nil }
func (f fakeFriends) Accept(ctx context.Context, userID, friendID int64) (*store.FriendShip, error) {
	return nil, nil
}
func (f fakeFriends) Refuse(ctx context.Context, userID, friendID int64) error { return nil }
func (f fakeFriends) Delete(ctx context.Context, userID, friendID int64) (*store.FriendShip, error) {
	return nil, nil
}
func (f fakeFriends) GetUserFriends(ctx context.Context, userID int64) ([]*store.FriendInfo, error) {
	return nil, nil
}

func newTestHandlers(rooms fakeRooms, members fakeMembers, messages fakeMessages, friends fakeFriends) (*Handlers, *hub.Hub) {
	h := hub.New(8)
	storage := store.Storage{Users: fakeUsers{}, Rooms: rooms, Members: members, Messages: messages, Friends: friends}
	return New(storage, h, nil), h
}

func drainEnvelope(t *testing.T, c *hub.Client) events.Envelope {
	t.Helper()
	select {
	case msg := <-c.Outbound():
		var env events.Envelope
		if err := json.Unmarshal(msg, &env); err != nil {
			t.Fatal(err)
		}
		return env
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message on outbound queue")
		return events.Envelope{}
	}
}

func TestSendMessageRequiresMembership(t *testing.T) {
	handlers, _ := newTestHandlers(fakeRooms{}, fakeMembers{}, fakeMessages{}, fakeFriends{})
	client := hub.NewClient(1, 100, 8)

	err := handlers.SendMessage(context.Background(), client, events.NewMessageRequest{RoomID: 5, Content: "hi", Kind: "text"})
	cerr, ok := err.(*core.CoreError)
	if !ok || cerr.Kind != core.KindForbidden {
		t.Fatalf("expected Forbidden, got %v", err)
	}
}

func TestSendMessagePersistsAndBroadcasts(t *testing.T) {
	messages := fakeMessages{appendFn: func(ctx context.Context, senderID, roomID int64, content, kind string) (*store.Message, error) {
		return &store.Message{ID: 1, RoomID: roomID, SenderID: senderID, Content: content, Kind: kind}, nil
	}}
	handlers, h := newTestHandlers(fakeRooms{}, fakeMembers{}, messages, fakeFriends{})

	client := hub.NewClient(1, 100, 8)
	h.Connect(context.Background(), client, []int64{5})

	if err := handlers.SendMessage(context.Background(), client, events.NewMessageRequest{RoomID: 5, Content: "hi", Kind: "text"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	env := drainEnvelope(t, client)
	if env.Action != events.OutNewMessage {
		t.Fatalf("expected %q, got %q", events.OutNewMessage, env.Action)
	}
}

func TestCreateRoomRequiresCallerFirst(t *testing.T) {
	handlers, _ := newTestHandlers(fakeRooms{}, fakeMembers{}, fakeMessages{}, fakeFriends{})
	client := hub.NewClient(1, 100, 8)

	err := handlers.CreateRoom(context.Background(), client, events.NewRoomRequest{Name: "room", MemberIDs: []int64{2, 1, 3}})
	cerr, ok := err.(*core.CoreError)
	if !ok || cerr.Kind != core.KindForbidden {
		t.Fatalf("expected Forbidden, got %v", err)
	}
}

func TestCreateRoomPersistsAndBroadcasts(t *testing.T) {
	rooms := fakeRooms{createFn: func(ctx context.Context, name string, memberIDs []int64) (*store.RoomInfo, error) {
		return &store.RoomInfo{RoomID: 9, Name: name}, nil
	}}
	handlers, h := newTestHandlers(rooms, fakeMembers{}, fakeMessages{}, fakeFriends{})
	client := hub.NewClient(1, 100, 8)
	h.Connect(context.Background(), client, nil)

	if err := handlers.CreateRoom(context.Background(), client, events.NewRoomRequest{Name: "room", MemberIDs: []int64{1, 2, 3}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	env := drainEnvelope(t, client)
	if env.Action != events.OutNewRoom {
		t.Fatalf("expected %q, got %q", events.OutNewRoom, env.Action)
	}
}

func TestLeaveRoomForbidsOwner(t *testing.T) {
	members := fakeMembers{rank: core.RankOwner, rankOK: true}
	handlers, _ := newTestHandlers(fakeRooms{}, members, fakeMessages{}, fakeFriends{})
	client := hub.NewClient(1, 100, 8)

	err := handlers.LeaveRoom(context.Background(), client, events.LeaveRoomRequest{RoomID: 5})
	cerr, ok := err.(*core.CoreError)
	if !ok || cerr.Kind != core.KindForbidden {
		t.Fatalf("expected Forbidden, got %v", err)
	}
}

func TestLeaveRoomRemovesMembership(t *testing.T) {
	members := fakeMembers{rank: core.RankMember, rankOK: true, deleteFn: func(ctx context.Context, roomID int64, memberIDs []int64) ([]int64, error) {
		return memberIDs, nil
	}}
	handlers, h := newTestHandlers(fakeRooms{}, members, fakeMessages{}, fakeFriends{})
	client := hub.NewClient(1, 100, 8)
	h.Connect(context.Background(), client, []int64{5, 100})

	if err := handlers.LeaveRoom(context.Background(), client, events.LeaveRoomRequest{RoomID: 5}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	env := drainEnvelope(t, client)
	if env.Action != events.OutDeleteRoom {
		t.Fatalf("expected the caller's own delete-room echo, got %q", env.Action)
	}
}

func TestAddFriendRejectsSelf(t *testing.T) {
	handlers, _ := newTestHandlers(fakeRooms{}, fakeMembers{}, fakeMessages{}, fakeFriends{})
	client := hub.NewClient(1, 100, 8)

	err := handlers.AddFriend(context.Background(), client, events.AddFriendRequest{FriendID: 1})
	cerr, ok := err.(*core.CoreError)
	if !ok || cerr.Kind != core.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAddFriendCreatesFreshPair(t *testing.T) {
	friends := fakeFriends{
		getFn: func(ctx context.Context, userID, friendID int64) (*store.FriendShip, error) {
			return nil, sql.ErrNoRows
		},
		createFn: func(ctx context.Context, userID, friendID int64) (*store.FriendShip, error) {
			return &store.FriendShip{UserID: userID, FriendID: friendID, Status: core.FriendAdding, RoomID: 7}, nil
		},
	}
	handlers, h := newTestHandlers(fakeRooms{}, fakeMembers{}, fakeMessages{}, friends)
	client := hub.NewClient(1, 100, 8)
	h.Connect(context.Background(), client, nil)

	if err := handlers.AddFriend(context.Background(), client, events.AddFriendRequest{FriendID: 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	env := drainEnvelope(t, client)
	if env.Action != events.OutAddFriend {
		t.Fatalf("expected %q, got %q", events.OutAddFriend, env.Action)
	}
}
