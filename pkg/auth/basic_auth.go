package auth

import (
	"fmt"
	"net/http"
)

// BasicAuth implements HTTP basic authentication
type BasicAuth struct {
	Username string
	Password string // may be empty
}

// NewBasicAuth creates a new basic authentication handler
func NewBasicAuth(username, password string) *BasicAuth {
	return &BasicAuth{
		Username: username,
		Password: password,
	}
}

// ApplyAuth sets the Authorization header
func (b *BasicAuth) ApplyAuth(req *http.Request) error {
	if b.Username == "" {
		return missing("username", "apply basic auth")
	}
	req.SetBasicAuth(b.Username, b.Password)
	return nil
}

func (b *BasicAuth) String() string {
	return fmt.Sprintf("BasicAuth(username: %s)", b.Username)
}
