package helpers

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/base64"

	"golang.org/x/crypto/pbkdf2"
)

// Some legacy clients pre-encode password fields before transport:
// base64(12-byte IV || AES-256-GCM ciphertext) with a PBKDF2-derived key.
// This is an obfuscation shim, not a security control; TryDecryptPassword
// attempts the decode and falls back to the raw value on any failure so
// plain-text clients keep working.

const gcmTagSize = 16

// TryDecryptPassword decodes a legacy pre-encoded password field. passphrase
// empty disables the shim entirely. salt is base64; when empty a static
// legacy salt is used.
func TryDecryptPassword(value, passphrase, saltB64 string) string {
	if value == "" || passphrase == "" {
		return value
	}
	combined, err := base64.StdEncoding.DecodeString(value)
	if err != nil || len(combined) < 12+gcmTagSize {
		return value
	}
	salt := []byte("static-salt-please-change")
	if saltB64 != "" {
		if s, err := base64.StdEncoding.DecodeString(saltB64); err == nil {
			salt = s
		}
	}
	key := pbkdf2.Key([]byte(passphrase), salt, 100000, 32, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return value
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return value
	}
	iv, ciphertext := combined[:12], combined[12:]
	plain, err := gcm.Open(nil, iv, ciphertext, nil)
	if err != nil {
		return value
	}
	return string(plain)
}
