package user

import "time"

type User struct {
	ID           string    `json:"id"`
	Nickname     string    `json:"nickname"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Phone        string    `json:"phone"`
	PhotoProfile *string   `json:"photo_profile"`
	Description  *string   `json:"description"`
	Privacity    bool      `json:"privacity"`
	CreatedAt    time.Time `json:"created_at"`
}

type CreateInput struct {
	Nickname     string  `json:"nickname"`
	Username     string  `json:"username"`
	Email        string  `json:"email"`
	Password     string  `json:"password"`
	Phone        string  `json:"phone"`
	PhotoProfile *string `json:"photo_profile"`
	Description  *string `json:"description"`
	Privacity    bool    `json:"privacity"`
}

// UpdateInput is a partial update; nil fields are left unchanged.
type UpdateInput struct {
	Nickname     *string `json:"nickname"`
	Username     *string `json:"username"`
	Email        *string `json:"email"`
	Password     *string `json:"password"`
	Phone        *string `json:"phone"`
	PhotoProfile *string `json:"photo_profile"`
	Description  *string `json:"description"`
	Privacity    *bool   `json:"privacity"`
}
