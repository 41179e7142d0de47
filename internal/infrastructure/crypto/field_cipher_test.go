package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finhealth/finhealth/internal/infrastructure/kms"
)

func testCipher(t *testing.T, passphrase string) *FieldCipher {
	t.Helper()
	c, err := NewFieldCipher(&kms.KeyMaterial{Passphrase: passphrase, Salt: "finhealth-test-salt"})
	require.NoError(t, err)
	return c
}

func TestFieldCipherRoundTrip(t *testing.T) {
	c := testCipher(t, "correct horse battery staple")

	ciphertext, err := c.Encrypt("tally-api-key-12345")
	require.NoError(t, err)
	assert.NotContains(t, ciphertext, "tally-api-key")

	plaintext, err := c.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, "tally-api-key-12345", plaintext)
}

func TestFieldCipherUniqueNonces(t *testing.T) {
	c := testCipher(t, "correct horse battery staple")

	first, err := c.Encrypt("same secret")
	require.NoError(t, err)
	second, err := c.Encrypt("same secret")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestFieldCipherRejectsForeignKey(t *testing.T) {
	a := testCipher(t, "key one")
	b := testCipher(t, "key two")

	ciphertext, err := a.Encrypt("secret")
	require.NoError(t, err)

	_, err = b.Decrypt(ciphertext)
	assert.Error(t, err)
}

func TestFieldCipherRejectsGarbage(t *testing.T) {
	c := testCipher(t, "key")

	_, err := c.Decrypt("not base64 at all %%%")
	assert.Error(t, err)

	_, err = c.Decrypt("c2hvcnQ=")
	assert.Error(t, err)
}
