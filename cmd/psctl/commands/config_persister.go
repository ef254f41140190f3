package commands

import (
	"fmt"
	"sync"
	"time"

	"github.com/fivetwenty-io/psclient/internal/constants"
)

// ConfigPersister implements the auth.ConfigPersister interface.
type ConfigPersister struct {
	mutex sync.Mutex
}

// NewConfigPersister creates a new config persister.
func NewConfigPersister() *ConfigPersister {
	return &ConfigPersister{}
}

// UpdateToken stores the token of a server profile in the config file. An
// empty token clears it.
func (p *ConfigPersister) UpdateToken(profile, token string, expiresAt time.Time) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	config, err := loadConfig()
	if err != nil {
		return err
	}

	server, exists := config.Servers[profile]
	if !exists {
		return fmt.Errorf("server profile '%s': %w", profile, constants.ErrProfileNotFound)
	}

	server.Token = token
	server.TokenExpiresAt = nil

	if !expiresAt.IsZero() {
		server.TokenExpiresAt = &expiresAt
	}

	now := time.Now()
	server.LastRefreshed = &now

	return saveConfig(config)
}
