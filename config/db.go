package config

import "time"

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type SessionRecord struct {
	TokenHash string
	UserID    string
	ExpiresAt time.Time
}

// Photo is the metadata row of a stored image blob.
type Photo struct {
	ID        string    `json:"id"`
	CreatedBy string    `json:"created_by"`
	TakenDate string    `json:"taken_date"`
	Caption   string    `json:"caption"`
	FileName  string    `json:"file_name"`
	MimeType  string    `json:"mime_type"`
	Bytes     int64     `json:"bytes"`
	CreatedAt time.Time `json:"created_at"`
}
