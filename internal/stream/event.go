package stream

import "time"

const (
	EventFollowRequested = "follow.requested"
	EventFollowAccepted  = "follow.accepted"
	EventCommentCreated  = "comment.created"
)

type Event struct {
	Type      string    `json:"type"`
	Data      any       `json:"data"`
	CreatedAt time.Time `json:"created_at"`
}

// Notifier delivers events to a user. Delivery is best effort.
type Notifier interface {
	Publish(userID string, ev Event)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(string, Event) {}

// NewEvent stamps an event with the current time.
func NewEvent(typ string, data any) Event {
	return Event{Type: typ, Data: data, CreatedAt: time.Now().UTC()}
}
