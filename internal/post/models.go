package post

import (
	"encoding/json"
	"time"

	"backend-travelapp/internal/location"
	"backend-travelapp/internal/tag"
)

type ComponentType string

const (
	ComponentText  ComponentType = "TEXT"
	ComponentPhoto ComponentType = "PHOTO"
	ComponentVideo ComponentType = "VIDEO"
)

type TextPayload struct {
	Content string `json:"content"`
}

type PhotoPayload struct {
	URL     string `json:"url"`
	Caption string `json:"caption"`
}

type VideoPayload struct {
	URL      string `json:"url"`
	Duration int    `json:"duration"`
}

// Component is one ordered piece of post content. Exactly one payload is set,
// selected by Type.
type Component struct {
	ID     string
	PostID string
	Order  int
	Type   ComponentType
	Text   *TextPayload
	Photo  *PhotoPayload
	Video  *VideoPayload

	// position is the index in the caller's list; it breaks ties on Order.
	position int
}

func (c Component) MarshalJSON() ([]byte, error) {
	var content any
	switch c.Type {
	case ComponentText:
		content = c.Text
	case ComponentPhoto:
		content = c.Photo
	case ComponentVideo:
		content = c.Video
	}
	return json.Marshal(struct {
		ID      string        `json:"id"`
		PostID  string        `json:"post_id"`
		Order   int           `json:"order"`
		Type    ComponentType `json:"type"`
		Content any           `json:"content"`
	}{c.ID, c.PostID, c.Order, c.Type, content})
}

// Owner is the public summary of a post author.
type Owner struct {
	ID           string  `json:"id"`
	Username     string  `json:"username"`
	Nickname     string  `json:"nickname"`
	PhotoProfile *string `json:"photo_profile"`
}

type Post struct {
	ID          string              `json:"id"`
	UserID      string              `json:"user_id"`
	Description string              `json:"description"`
	Privacity   bool                `json:"privacity"`
	LikeNumber  int                 `json:"like_number"`
	CreatedAt   time.Time           `json:"created_at"`
	Owner       *Owner              `json:"owner,omitempty"`
	Components  []Component         `json:"components"`
	Locations   []location.Location `json:"locations"`
	Tags        []tag.Tag           `json:"tags"`
}

// ComponentInput is a component as sent by clients. Content is decoded
// according to Type.
type ComponentInput struct {
	Order   int             `json:"order"`
	Type    string          `json:"type"`
	Content json.RawMessage `json:"content"`
}

type CreateInput struct {
	Description string           `json:"description"`
	Privacity   *bool            `json:"privacity"`
	Components  []ComponentInput `json:"components"`
	Locations   []location.Input `json:"locations"`
	Tags        []string         `json:"tags"`
}

// UpdateInput is a partial update. A non-nil Components replaces every
// component; a non-empty Locations replaces every location link; Tags are
// appended.
type UpdateInput struct {
	Description *string          `json:"description"`
	Privacity   *bool            `json:"privacity"`
	Components  []ComponentInput `json:"components"`
	Locations   []location.Input `json:"locations"`
	Tags        []string         `json:"tags"`
}
