package auth

import (
	"fmt"
	"slices"
	"sync"

	"github.com/saturnines/ledger-core/pkg/config"
	"github.com/saturnines/ledger-core/pkg/errors"
)

// AuthCreator builds a handler from a report job's auth block
type AuthCreator func(*config.Auth) (Handler, error)

// AuthRegistry maps auth types to creators. The default registry knows the
// schemes report APIs accept: basic, bearer and api_key.
type AuthRegistry struct {
	creators map[config.AuthType]AuthCreator
	mutex    sync.RWMutex
}

// NewAuthRegistry creates a registry with basic, bearer and api_key
func NewAuthRegistry() *AuthRegistry {
	registry := &AuthRegistry{
		creators: make(map[config.AuthType]AuthCreator),
	}
	registry.Register(config.AuthTypeBasic, createBasicAuth)
	registry.Register(config.AuthTypeBearer, createBearerAuth)
	registry.Register(config.AuthTypeAPIKey, createAPIKeyAuth)
	return registry
}

// Register adds or replaces a creator
func (r *AuthRegistry) Register(authType config.AuthType, creator AuthCreator) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.creators[authType] = creator
}

// Types lists the registered auth types, sorted
func (r *AuthRegistry) Types() []config.AuthType {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	types := make([]config.AuthType, 0, len(r.creators))
	for t := range r.creators {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

// Create builds the handler for authConfig.Type
func (r *AuthRegistry) Create(authConfig *config.Auth) (Handler, error) {
	if authConfig == nil {
		return nil, errors.WrapError(fmt.Errorf("auth configuration is nil"), errors.ErrConfiguration, "invalid auth")
	}

	r.mutex.RLock()
	creator, exists := r.creators[authConfig.Type]
	r.mutex.RUnlock()

	if !exists {
		return nil, errors.WrapError(
			fmt.Errorf("unsupported auth type %q, registered: %v", authConfig.Type, r.Types()),
			errors.ErrConfiguration,
			"invalid auth type",
		)
	}
	return creator(authConfig)
}
