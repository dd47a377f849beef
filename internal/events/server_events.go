package events

import "github.com/drazan344/chat-core/internal/store"

// Outbound response payloads, one per server action.

type ToastResponse struct {
	Message string `json:"message"`
}

type InitializeResponse struct {
	Rooms   []*store.RoomInfo   `json:"rooms"`
	Friends []*store.FriendInfo `json:"friends"`
}

type NewMessageResponse struct {
	RoomID  int64           `json:"room_id"`
	Message *store.Message  `json:"message"`
}

type NewRoomResponse struct {
	Room *store.RoomInfo `json:"room"`
}

type UpdateRoomResponse struct {
	RoomID int64  `json:"room_id"`
	Name   string `json:"name"`
}

type DeleteRoomResponse struct {
	RoomID int64 `json:"room_id"`
}

type AddMembersResponse struct {
	RoomID  int64                `json:"room_id"`
	Members []*store.MemberInfo  `json:"members"`
}

type DeleteMembersResponse struct {
	RoomID    int64   `json:"room_id"`
	MemberIDs []int64 `json:"member_ids"`
}

type AddFriendResponse struct {
	Friend *store.FriendInfo `json:"friend"`
}

type AcceptFriendResponse struct {
	Friend *store.FriendInfo `json:"friend"`
	Room   *store.RoomInfo   `json:"room"`
}

type RefuseFriendResponse struct {
	FriendID int64 `json:"friend_id"`
}

type DeleteFriendResponse struct {
	FriendID int64 `json:"friend_id"`
	RoomID   int64 `json:"room_id"`
}
