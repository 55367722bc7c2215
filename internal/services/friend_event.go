package services

import "time"

// Friend event types published to the friend event topic.
const (
	FriendEventCreated  = "friend.request.created"
	FriendEventAccepted = "friend.request.accepted"
	FriendEventRejected = "friend.request.rejected"
)

// FriendEvent is the Kafka payload describing a friend request lifecycle
// change. The notify server consumes these and pushes them to the affected
// user's websocket connection.
type FriendEvent struct {
	Type       string    `json:"type"`
	RequestID  uint      `json:"requestId"`
	SenderID   uint      `json:"senderId"`
	ReceiverID uint      `json:"receiverId"`
	Timestamp  time.Time `json:"timestamp"`
}

// NotifyUserID returns the user the event should be delivered to: the
// receiver learns about new requests, the sender learns about verdicts.
func (e *FriendEvent) NotifyUserID() uint {
	if e.Type == FriendEventCreated {
		return e.ReceiverID
	}
	return e.SenderID
}
