package auth

import (
	"net/http"
)

// BearerAuth sends an access token, as issued to report API clients
type BearerAuth struct {
	Token string
}

// NewBearerAuth creates a new bearer token authentication handler
func NewBearerAuth(token string) *BearerAuth {
	return &BearerAuth{
		Token: token,
	}
}

// ApplyAuth sets the Authorization header
func (b *BearerAuth) ApplyAuth(req *http.Request) error {
	if b.Token == "" {
		return missing("token", "apply bearer auth")
	}
	req.Header.Set("Authorization", "Bearer "+b.Token)
	return nil
}

func (b *BearerAuth) String() string {
	return "BearerAuth(token: [REDACTED])"
}
