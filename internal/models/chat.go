package models

import (
	"errors"
	"sort"
	"strings"
	"time"
)

var ErrInvalidChatID = errors.New("invalid chat id")

const chatIDSeparator = "_"

// ChatID is the deterministic key of the two-party chat between a and b.
func ChatID(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return strings.Join(pair, chatIDSeparator)
}

// ChatParticipants splits a chat id back into its two participants.
func ChatParticipants(chatID string) (string, string, error) {
	parts := strings.Split(chatID, chatIDSeparator)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" || parts[0] >= parts[1] {
		return "", "", ErrInvalidChatID
	}
	return parts[0], parts[1], nil
}

type Chat struct {
	ID            string     `json:"id"`
	Participants  []string   `json:"participants"`
	LastMessage   string     `json:"lastMessage"`
	LastMessageAt *time.Time `json:"lastMessageTimestamp,omitempty"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func (c Chat) Other(viewerID string) string {
	for _, p := range c.Participants {
		if p != viewerID {
			return p
		}
	}
	return ""
}

// Message is immutable once stored. Seq breaks timestamp ties.
type Message struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chatId"`
	SenderID  string    `json:"senderId"`
	Text      string    `json:"text"`
	Seq       int64     `json:"seq"`
	CreatedAt time.Time `json:"timestamp"`
}
