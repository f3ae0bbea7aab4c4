package httpdto

import "linklet/internal/domain/user"

type UserResponse struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	IsOnline    bool   `json:"is_online"`
}

func FromUserSummary(s user.Summary) UserResponse {
	return UserResponse{
		ID:          s.ID.String(),
		Username:    s.Username,
		DisplayName: s.DisplayName,
		AvatarURL:   s.AvatarURL,
		IsOnline:    s.IsOnline,
	}
}

func FromUserSummaries(list []user.Summary) []UserResponse {
	out := make([]UserResponse, 0, len(list))
	for _, s := range list {
		out = append(out, FromUserSummary(s))
	}
	return out
}

type SearchResultResponse struct {
	UserResponse
	Relationship string `json:"relationship"`
}
