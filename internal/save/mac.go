package save

import (
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Sign computes the keyed BLAKE2b-256 tag over the canonical save bytes.
// An empty key disables signing and returns "".
func Sign(payload, key []byte) (string, error) {
	if len(key) == 0 {
		return "", nil
	}
	h, err := blake2b.New256(key)
	if err != nil {
		return "", err
	}
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Verify reports whether mac is the valid tag for payload under key.
// Comparison is constant-time.
func Verify(payload, key []byte, mac string) bool {
	want, err := Sign(payload, key)
	if err != nil || want == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(want), []byte(mac)) == 1
}
