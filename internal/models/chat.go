package models

import "time"

// Chat holds metadata for a group the bot has been added to.
type Chat struct {
	ID      int64     `json:"id"`
	Title   string    `json:"title"`
	Type    string    `json:"type"`
	AddedAt time.Time `json:"added_at"`
}
