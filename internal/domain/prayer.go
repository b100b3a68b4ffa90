package domain

import "time"

// Prayer is one captured prayer request from the prayer-wall channel.
// ExtractedText is the single-sentence request distilled from RawMessage.
type Prayer struct {
	ID            string    `json:"id"`
	MessageID     string    `json:"message_id"`
	UserID        string    `json:"user_id"`
	Username      string    `json:"username"`
	ChannelID     string    `json:"channel_id"`
	RawMessage    string    `json:"raw_message"`
	ExtractedText string    `json:"extracted_text"`
	PostedAt      time.Time `json:"posted_at"`
	CreatedAt     time.Time `json:"created_at"`
}
