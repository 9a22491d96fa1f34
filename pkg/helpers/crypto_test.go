package helpers

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/pbkdf2"
)

func encryptLegacy(t *testing.T, plain, passphrase string, salt []byte) string {
	t.Helper()
	key := pbkdf2.Key([]byte(passphrase), salt, 100000, 32, sha256.New)
	block, err := aes.NewCipher(key)
	assert.NoError(t, err)
	gcm, err := cipher.NewGCM(block)
	assert.NoError(t, err)
	iv := make([]byte, 12)
	_, err = rand.Read(iv)
	assert.NoError(t, err)
	sealed := gcm.Seal(nil, iv, []byte(plain), nil)
	return base64.StdEncoding.EncodeToString(append(iv, sealed...))
}

func TestTryDecryptPassword_RoundTrip(t *testing.T) {
	salt := []byte("per-deploy-salt")
	encoded := encryptLegacy(t, "s3cret-pass", "passphrase", salt)

	got := TryDecryptPassword(encoded, "passphrase", base64.StdEncoding.EncodeToString(salt))
	assert.Equal(t, "s3cret-pass", got)
}

func TestTryDecryptPassword_StaticSaltDefault(t *testing.T) {
	encoded := encryptLegacy(t, "s3cret-pass", "passphrase", []byte("static-salt-please-change"))

	got := TryDecryptPassword(encoded, "passphrase", "")
	assert.Equal(t, "s3cret-pass", got)
}

func TestTryDecryptPassword_FallsBackToRawValue(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"plain text", "just-a-password"},
		{"valid base64 but too short", base64.StdEncoding.EncodeToString([]byte("short"))},
		{"garbage base64 payload", base64.StdEncoding.EncodeToString(make([]byte, 40))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.value, TryDecryptPassword(tt.value, "passphrase", ""))
		})
	}
}

func TestTryDecryptPassword_DisabledWithoutPassphrase(t *testing.T) {
	encoded := encryptLegacy(t, "s3cret-pass", "passphrase", []byte("static-salt-please-change"))
	assert.Equal(t, encoded, TryDecryptPassword(encoded, "", ""))
}

func TestTryDecryptPassword_WrongPassphraseFallsBack(t *testing.T) {
	encoded := encryptLegacy(t, "s3cret-pass", "passphrase", []byte("static-salt-please-change"))
	assert.Equal(t, encoded, TryDecryptPassword(encoded, "other-passphrase", ""))
}
