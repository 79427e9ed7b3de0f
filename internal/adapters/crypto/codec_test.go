package crypto

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBase64Codec(t *testing.T) {
	c := Base64Codec{}

	encoded, err := c.Encode("s3cret")
	require.NoError(t, err)
	assert.Equal(t, "czNjcmV0", encoded)

	plain, err := c.Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", plain)

	_, err = c.Decode("%%%")
	require.Error(t, err)
}

func TestSealedCodec(t *testing.T) {
	c, err := NewSealedCodec("hunter2")
	require.NoError(t, err)

	first, err := c.Encode("s3cret")
	require.NoError(t, err)
	second, err := c.Encode("s3cret")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(first, sealedPrefix))
	assert.NotEqual(t, first, second)
	assert.NotContains(t, first, "czNjcmV0")

	plain, err := c.Decode(first)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", plain)
}

func TestSealedCodec_Errors(t *testing.T) {
	_, err := NewSealedCodec("")
	require.Error(t, err)

	c, err := NewSealedCodec("hunter2")
	require.NoError(t, err)
	other, err := NewSealedCodec("letmein")
	require.NoError(t, err)

	sealed, err := c.Encode("s3cret")
	require.NoError(t, err)

	_, err = other.Decode(sealed)
	require.ErrorContains(t, err, "decrypt")

	_, err = c.Decode(sealedPrefix + base64.StdEncoding.EncodeToString([]byte("short")))
	require.ErrorIs(t, err, ErrCiphertextTooShort)
}

func TestSealedCodec_ReadsLegacyValues(t *testing.T) {
	c, err := NewSealedCodec("hunter2")
	require.NoError(t, err)

	plain, err := c.Decode("czNjcmV0")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", plain)
}
