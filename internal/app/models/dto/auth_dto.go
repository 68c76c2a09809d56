package dto

// LoginRequest represents login credentials
type LoginRequest struct {
	MemberID string `json:"memberId" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType" example:"Bearer"`
	ExpiresIn   int64  `json:"expiresIn"`
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token  TokenResponse `json:"token"`
	Member IdentityData  `json:"member"`
}

// IdentityData is the session view of the logged in member
type IdentityData struct {
	ID       int64  `json:"id"`
	MemberID string `json:"memberId"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	ImageURL string `json:"imageUrl"`
}
