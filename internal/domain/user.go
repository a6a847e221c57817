package domain

import "time"

// User represents an authenticated listener account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash,omitempty"` // Stored hashed, filter from API responses
	Username     string    `json:"username,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	AvatarPath   string    `json:"avatarPath,omitempty"`
	AvatarBlur   string    `json:"avatarBlur,omitempty"` // blurhash placeholder for clients
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Profile is the API-safe view of a user, with credentials stripped.
type Profile struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Username   string    `json:"username,omitempty"`
	Bio        string    `json:"bio,omitempty"`
	AvatarURL  string    `json:"avatarUrl,omitempty"`
	AvatarBlur string    `json:"avatarBlur,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Profile returns the public view of the user. avatarURL should be the
// serving path for the stored avatar, or empty when none is set.
func (u *User) Profile(avatarURL string) Profile {
	return Profile{
		ID:         u.ID,
		Email:      u.Email,
		Username:   u.Username,
		Bio:        u.Bio,
		AvatarURL:  avatarURL,
		AvatarBlur: u.AvatarBlur,
		CreatedAt:  u.CreatedAt,
	}
}
