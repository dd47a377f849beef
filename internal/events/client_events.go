package events

// Inbound request payloads, one per action in the Envelope's Data field.
// Validation tags are enforced by internal/events.Validate before a
// handler ever sees the struct — grounded on the original system's
// field-level #[validate] annotations, reimplemented with validator/v10.

type InitializeRequest struct {
	Timestamp int64 `json:"timestamp" validate:"min=0"`
}

type NewMessageRequest struct {
	RoomID  int64  `json:"room_id" validate:"min=1"`
	Content string `json:"content" validate:"min=1,max=500"`
	Kind    string `json:"kind" validate:"oneof=text image file"`
}

type NewRoomRequest struct {
	Name      string  `json:"name" validate:"min=2,max=50"`
	MemberIDs []int64 `json:"member_ids" validate:"min=3,uniqueidpositive"`
}

type UpdateRoomRequest struct {
	RoomID int64  `json:"room_id" validate:"min=1"`
	Name   string `json:"name" validate:"min=2,max=50"`
}

type DeleteRoomRequest struct {
	RoomID int64 `json:"room_id" validate:"min=1"`
}

type LeaveRoomRequest struct {
	RoomID int64 `json:"room_id" validate:"min=1"`
}

type AddMembersRequest struct {
	RoomID    int64   `json:"room_id" validate:"min=1"`
	MemberIDs []int64 `json:"member_ids" validate:"min=1,uniqueidpositive"`
}

type DeleteMembersRequest struct {
	RoomID    int64   `json:"room_id" validate:"min=1"`
	MemberIDs []int64 `json:"member_ids" validate:"min=1,uniqueidpositive"`
}

type AddFriendRequest struct {
	FriendID int64 `json:"friend_id" validate:"min=1"`
}

type AcceptFriendRequest struct {
	FriendID int64 `json:"friend_id" validate:"min=1"`
}

type RefuseFriendRequest struct {
	FriendID int64 `json:"friend_id" validate:"min=1"`
}

type DeleteFriendRequest struct {
	FriendID int64 `json:"friend_id" validate:"min=1"`
}
