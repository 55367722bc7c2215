package models

// FriendRequestStatus is the lifecycle state of a friend request.
type FriendRequestStatus string

const (
	FriendRequestStatusPending  FriendRequestStatus = "pending"
	FriendRequestStatusAccepted FriendRequestStatus = "accepted"
	FriendRequestStatusRejected FriendRequestStatus = "rejected"
)

// IsTerminal reports whether no further transitions are permitted.
func (s FriendRequestStatus) IsTerminal() bool {
	return s == FriendRequestStatusAccepted || s == FriendRequestStatusRejected
}

// FriendRequest represents one directed friend request between two users.
//
// At most one non-rejected record may exist per (sender, receiver) pair;
// a rejected record does not block a fresh request for the same pair. The
// uniqueness is enforced by a partial unique index created in the storage
// layer, so the check-then-insert race resolves inside postgres.
type FriendRequest struct {
	BaseModel
	SenderID   uint                `gorm:"not null;index:idx_friend_request_pair" json:"senderId"`
	ReceiverID uint                `gorm:"not null;index:idx_friend_request_pair" json:"receiverId"`
	Status     FriendRequestStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
}

// FriendEntry is the projection returned by the friends and pending-request
// views: the request identifier plus the counterpart's public profile.
type FriendEntry struct {
	RequestID uint   `json:"id"`
	UserID    uint   `json:"userId"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// TableName specifies the table name for the FriendRequest model.
func (FriendRequest) TableName() string {
	return "friend_requests"
}
