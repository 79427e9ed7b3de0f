// Package crypto encodes stored account passwords.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var ErrCiphertextTooShort = errors.New("ciphertext too short")

// Base64Codec stores passwords base64 encoded. It is reversible by anyone with database access.
type Base64Codec struct{}

func (Base64Codec) Encode(plain string) (string, error) {
	return base64.StdEncoding.EncodeToString([]byte(plain)), nil
}

func (Base64Codec) Decode(stored string) (string, error) {
	b, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return "", fmt.Errorf("decode base64: %w", err)
	}
	return string(b), nil
}

const (
	sealedPrefix = "v1:"
	keySize      = 32
)

var keySalt = []byte("spybot/credentials")

// SealedCodec encrypts passwords with AES-256-GCM under a key derived from a secret.
// Values without the sealed prefix are read as Base64Codec output so existing rows stay readable.
type SealedCodec struct {
	gcm cipher.AEAD
}

func NewSealedCodec(secret string) (*SealedCodec, error) {
	if secret == "" {
		return nil, errors.New("empty credential secret")
	}

	key := argon2.IDKey([]byte(secret), keySalt, 1, 64*1024, 4, keySize)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	return &SealedCodec{gcm: gcm}, nil
}

func (c *SealedCodec) Encode(plain string) (string, error) {
	nonce := make([]byte, c.gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := c.gcm.Seal(nonce, nonce, []byte(plain), nil)
	return sealedPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

func (c *SealedCodec) Decode(stored string) (string, error) {
	encoded, ok := strings.CutPrefix(stored, sealedPrefix)
	if !ok {
		return Base64Codec{}.Decode(stored)
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode base64: %w", err)
	}

	n := c.gcm.NonceSize()
	if len(data) < n {
		return "", ErrCiphertextTooShort
	}

	plain, err := c.gcm.Open(nil, data[:n], data[n:], nil)
	if err != nil {
		return "", fmt.Errorf("decrypt: %w", err)
	}

	return string(plain), nil
}
