package utils

import (
	"sync"
	"time"
)

const defaultRevocationTTL = 24 * time.Hour

var (
	revokedTokens = make(map[string]time.Time)
	revokedMutex  sync.RWMutex
)

// RevokeToken remembers a token the console has logged out, until the token's own expiry
// (or 24 hours when the expiry is unknown).
func RevokeToken(token string) {
	if token == "" {
		return
	}
	until := time.Now().Add(defaultRevocationTTL)
	if claims, err := ParseSessionClaims(token); err == nil && !claims.ExpiresAt.IsZero() {
		until = claims.ExpiresAt
	}

	revokedMutex.Lock()
	defer revokedMutex.Unlock()
	pruneRevokedLocked(time.Now())
	revokedTokens[token] = until
}

func IsTokenRevoked(token string) bool {
	revokedMutex.RLock()
	expiry, exists := revokedTokens[token]
	revokedMutex.RUnlock()

	if !exists {
		return false
	}
	if time.Now().Before(expiry) {
		return true
	}

	// Hapus token kadaluarsa
	revokedMutex.Lock()
	delete(revokedTokens, token)
	revokedMutex.Unlock()
	return false
}

func pruneRevokedLocked(now time.Time) {
	for token, expiry := range revokedTokens {
		if now.After(expiry) {
			delete(revokedTokens, token)
		}
	}
}
