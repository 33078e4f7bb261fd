package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := []byte(strings.Repeat("k", 32))

	ciphertext, err := Encrypt([]byte("access-token-value"), key)
	require.NoError(t, err)
	assert.NotContains(t, ciphertext, "access-token-value")

	plaintext, err := Decrypt(ciphertext, key)
	require.NoError(t, err)
	assert.Equal(t, "access-token-value", plaintext)
}

func TestDecryptRejectsWrongKey(t *testing.T) {
	ciphertext, err := Encrypt([]byte("secret"), []byte(strings.Repeat("a", 32)))
	require.NoError(t, err)

	_, err = Decrypt(ciphertext, []byte(strings.Repeat("b", 32)))
	assert.Error(t, err)
}

func TestEncryptRejectsBadKeyLength(t *testing.T) {
	_, err := Encrypt([]byte("secret"), []byte("short"))
	assert.Error(t, err)
}

func TestDecryptRejectsGarbage(t *testing.T) {
	_, err := Decrypt("not base64 at all!!!", []byte(strings.Repeat("k", 32)))
	assert.Error(t, err)
}
