package httpdto

import (
	"time"

	"linklet/internal/domain/message"
)

type SendMessageRequest struct {
	ConversationID string   `json:"conversation_id"`
	Text           string   `json:"text"`
	Attachments    []string `json:"attachments"`
}

type AddReactionRequest struct {
	Emoji string `json:"emoji"`
}

type MessageResponse struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	Text           string    `json:"text,omitempty"`
	Attachments    []string  `json:"attachments,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func FromMessage(m message.Message) MessageResponse {
	resp := MessageResponse{
		ID:             m.ID.String(),
		ConversationID: m.ConversationID.String(),
		SenderID:       m.SenderID.String(),
		Attachments:    m.Attachments,
		CreatedAt:      m.CreatedAt,
	}
	if m.Text.Valid {
		resp.Text = m.Text.String
	}
	return resp
}

func FromMessages(list []message.Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(list))
	for _, m := range list {
		out = append(out, FromMessage(m))
	}
	return out
}

type MessageReadResponse struct {
	UserID string    `json:"user_id"`
	ReadAt time.Time `json:"read_at"`
}

type MessageReactionResponse struct {
	UserID string `json:"user_id"`
	Emoji  string `json:"emoji"`
}

func FromReads(list []message.MessageRead) []MessageReadResponse {
	out := make([]MessageReadResponse, 0, len(list))
	for _, r := range list {
		out = append(out, MessageReadResponse{UserID: r.UserID.String(), ReadAt: r.ReadAt})
	}
	return out
}

func FromReactions(list []message.MessageReaction) []MessageReactionResponse {
	out := make([]MessageReactionResponse, 0, len(list))
	for _, r := range list {
		out = append(out, MessageReactionResponse{UserID: r.UserID.String(), Emoji: r.Emoji})
	}
	return out
}
