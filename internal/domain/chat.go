package domain

import "time"

// ChatSender identifies which side of the ride sent a message.
type ChatSender string

const (
	ChatSenderUser   ChatSender = "user"
	ChatSenderDriver ChatSender = "driver"
)

// ChatMessage is a single message in a ride's chat thread. Messages are
// append-only per ride and ordering is server-assigned; the client never
// reorders beyond appending to the end.
type ChatMessage struct {
	FromType  ChatSender `json:"from_type"`
	Message   string     `json:"message"`
	CreatedAt time.Time  `json:"created_at"`
}
