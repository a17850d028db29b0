package models

import "time"

// Introduction is a confirmed self-introduction. The (user_id, chat_id)
// pair is unique; the storage layer enforces it.
type Introduction struct {
	ID        int64     `json:"id"`
	ChatID    int64     `json:"chat_id"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	RawText   string    `json:"raw_text"`
	CreatedAt time.Time `json:"created_at"`
}
