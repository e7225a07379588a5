package peers

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// tokenBytes sets the token entropy; the hex form is twice this length.
const tokenBytes = 8

// issueTokenLocked draws random tokens until one is unused among the live
// sessions. Callers must hold t.mu.
func (t *Table) issueTokenLocked() (string, error) {
	for {
		buf := make([]byte, tokenBytes)
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to draw session token: %w", err)
		}
		token := hex.EncodeToString(buf)
		if !t.tokenInUseLocked(token) {
			return token, nil
		}
	}
}

func (t *Table) tokenInUseLocked(token string) bool {
	for _, s := range t.sessions {
		if s.Token == token {
			return true
		}
	}
	return false
}
