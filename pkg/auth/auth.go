// Package auth signs outgoing report requests
package auth

import (
	"fmt"
	"net/http"

	"github.com/saturnines/ledger-core/pkg/config"
	"github.com/saturnines/ledger-core/pkg/errors"
)

// Handler signs a request before it is sent
type Handler interface {
	ApplyAuth(req *http.Request) error
}

// HandlerFunc adapts a function to Handler
type HandlerFunc func(req *http.Request) error

func (f HandlerFunc) ApplyAuth(req *http.Request) error {
	return f(req)
}

var defaultRegistry = NewAuthRegistry()

// CreateHandler builds a handler from job auth config using the default
// registry. A nil config means no auth.
func CreateHandler(authConfig *config.Auth) (Handler, error) {
	if authConfig == nil {
		return nil, nil
	}
	return defaultRegistry.Create(authConfig)
}

// RegisterAuthHandler adds or replaces a creator in the default registry
func RegisterAuthHandler(authType config.AuthType, creator AuthCreator) {
	defaultRegistry.Register(authType, creator)
}

func missing(what, op string) error {
	return errors.WrapError(fmt.Errorf("%s is empty", what), errors.ErrConfiguration, op)
}
