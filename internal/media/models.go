package media

import "time"

type Kind string

const (
	KindPhoto Kind = "PHOTO"
	KindVideo Kind = "VIDEO"
)

type Object struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	URL       string    `json:"url"`
	Kind      Kind      `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

type UploadRequest struct {
	FileName string `json:"file_name"`
	Kind     string `json:"kind"`
}

type UploadResponse struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
