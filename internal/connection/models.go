package connection

import "time"

type State string

const (
	StatePending  State = "pending"
	StateAccepted State = "accepted"
	StateRejected State = "rejected"
)

// Connection is a directed follow edge: FollowUserID follows FollowingUserID.
type Connection struct {
	ID              string    `json:"id"`
	FollowUserID    string    `json:"follow_user_id"`
	FollowingUserID string    `json:"following_user_id"`
	State           State     `json:"state"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
