package model

// LoginRequest is an OAuth2 password grant. Username carries the phone.
type LoginRequest struct {
	GrantType string `json:"grant_type" form:"grant_type" binding:"omitempty,oneof=password"`
	Username  string `json:"username" form:"username" binding:"required"`
	Password  string `json:"password" form:"password" binding:"required"`
}

type TokenResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	User        UserSummary `json:"user"`
}
