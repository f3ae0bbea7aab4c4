package httpdto

type SendFriendRequestRequest struct {
	UserID string `json:"user_id"`
}

type AcceptFriendRequestRequest struct {
	SenderID string `json:"sender_id"`
}

type RejectFriendRequestRequest struct {
	SenderID string `json:"sender_id"`
}

type AcceptFriendResponse struct {
	FriendID       string  `json:"friend_id"`
	ConversationID *string `json:"conversation_id,omitempty"`
}
