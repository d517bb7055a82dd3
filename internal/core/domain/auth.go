package domain

// Role identifies what a token is allowed to do.
type Role string

const (
	// RoleAdmin may trigger index rebuilds and inspect sessions.
	RoleAdmin Role = "admin"
)

// TokenClaims are the claims carried by an API access token.
type TokenClaims struct {
	Subject   string `json:"subject"`
	Role      Role   `json:"role"`
	IssuedAt  int64  `json:"issued_at"`
	ExpiresAt int64  `json:"expires_at"`
}
