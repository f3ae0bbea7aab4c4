package httpdto

import (
	"time"

	"linklet/internal/domain/conversation"
)

type CreateDirectConversationRequest struct {
	UserID string `json:"user_id"`
}

type CreateGroupConversationRequest struct {
	GroupName    string   `json:"group_name"`
	GroupAvatar  string   `json:"group_avatar"`
	Participants []string `json:"participants"`
}

type ConversationResponse struct {
	ID            string           `json:"id"`
	IsGroup       bool             `json:"is_group"`
	GroupName     string           `json:"group_name,omitempty"`
	GroupAvatar   string           `json:"group_avatar,omitempty"`
	Status        string           `json:"status"`
	LastMessageID *string          `json:"last_message_id,omitempty"`
	LastMessage   *MessageResponse `json:"last_message,omitempty"`
	Participants  []string         `json:"participants,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

func FromConversation(c conversation.Conversation) ConversationResponse {
	resp := ConversationResponse{
		ID:        c.ID.String(),
		IsGroup:   c.IsGroup,
		Status:    c.Status,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if c.GroupName.Valid {
		resp.GroupName = c.GroupName.String
	}
	if c.GroupAvatar.Valid {
		resp.GroupAvatar = c.GroupAvatar.String
	}
	if c.LastMessageID.Valid {
		id := c.LastMessageID.UUID.String()
		resp.LastMessageID = &id
	}
	if c.LastMessage != nil {
		preview := FromMessage(*c.LastMessage)
		resp.LastMessage = &preview
	}
	for _, p := range c.Participants {
		resp.Participants = append(resp.Participants, p.UserID.String())
	}
	return resp
}

func FromConversations(list []conversation.Conversation) []ConversationResponse {
	out := make([]ConversationResponse, 0, len(list))
	for _, c := range list {
		out = append(out, FromConversation(c))
	}
	return out
}
