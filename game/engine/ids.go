package engine

import (
	"crypto/rand"

	"github.com/google/uuid"
)

// codeAlphabet excludes visually confusing characters (I, O, 0, 1).
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const codeLength = 4

// GameCode returns a 4-character human-shareable join code. Collisions
// against live sessions are handled by the store at insert time.
func GameCode() string {
	buf := make([]byte, codeLength)
	rand.Read(buf)

	code := make([]byte, codeLength)
	for i, b := range buf {
		code[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(code)
}

// PlayerID returns a globally unique opaque player id.
func PlayerID() string {
	return "player_" + uuid.NewString()
}

// SessionID returns a globally unique opaque session id.
func SessionID() string {
	return "session_" + uuid.NewString()
}
