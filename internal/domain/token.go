package domain

// TokenVerifier validates a bearer token and returns the user ID it
// identifies. Tokens are minted by the external auth service; this
// application only verifies them.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}
