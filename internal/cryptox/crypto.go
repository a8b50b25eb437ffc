// Package cryptox contains the one-way digests used for credentials.
//
// Clients never send plaintext: usernames and passwords are reduced to a
// SHA-256 hex digest with HashString first. The server hardens the password
// digest once more with DerivePasswordDigest before it touches the database.
package cryptox

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/argon2"
)

// DigestLen is the length of a HashString result.
const DigestLen = sha256.Size * 2

// HashString returns the lowercase hex SHA-256 digest of text.
func HashString(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// HashBytes is HashString for byte slices, so password buffers can be
// wiped by the caller without ever becoming an immutable string.
func HashBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// IsDigest reports whether s looks like a HashString result.
func IsDigest(s string) bool {
	if len(s) != DigestLen {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// DerivePasswordDigest turns a client password digest into the value stored
// server-side. The salt is derived from the server pepper, so the result is
// deterministic and exact-match lookups keep working.
func DerivePasswordDigest(clientDigest, pepper string) string {
	salt := sha256.Sum256([]byte("invaders/password/" + pepper))
	key := argon2.IDKey([]byte(clientDigest), salt[:], 1, 64*1024, 4, 32)
	return hex.EncodeToString(key)
}
