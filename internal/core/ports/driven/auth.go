package driven

import "github.com/Vettuu/CHArloTte/internal/core/domain"

// AuthAdapter handles token generation and validation for the admin surface.
type AuthAdapter interface {
	// GenerateToken creates a signed token from claims.
	GenerateToken(claims *domain.TokenClaims) (string, error)

	// ParseToken validates a token and extracts claims.
	ParseToken(token string) (*domain.TokenClaims, error)

	// VerifyRebuildToken checks a caller-supplied rebuild token against the
	// configured hash.
	VerifyRebuildToken(token string) bool
}
