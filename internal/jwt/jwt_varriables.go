package jwt

import (
	"sync"
	"time"
)

const DefaultTokenTTL = 12 * time.Hour

const (
	RoleRenderer Role = iota
	RoleOperator
)

var (
	secretsMu   sync.RWMutex
	RoleSecrets = map[Role]string{}
)

// Init installs the signing secret for every role.
func Init(hostSecret string) {
	secretsMu.Lock()
	defer secretsMu.Unlock()
	RoleSecrets = map[Role]string{
		RoleRenderer: hostSecret,
		RoleOperator: hostSecret,
	}
}

func secretFor(role Role) (string, bool) {
	secretsMu.RLock()
	defer secretsMu.RUnlock()
	secret, ok := RoleSecrets[role]
	return secret, ok && secret != ""
}
