// Package cryptor encrypts sensitive cluster material (TLS certs, bearer
// tokens) before it reaches the relational store. AES-256-GCM with a random
// nonce per value; the key comes from the environment so rotating it is a
// deployment concern, not a code change.
package cryptor

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// EnvKey names the environment variable holding the encryption key. An
// unset key stores values as plaintext, which is acceptable only for
// development databases.
const EnvKey = "PAAS_WL_ENCRYPT_KEY"

// prefix marks encrypted values so plaintext rows written before a key was
// configured keep decrypting to themselves.
const prefix = "enc$"

var errMalformed = errors.New("malformed encrypted value")

func gcmFromEnv() (cipher.AEAD, error) {
	raw := os.Getenv(EnvKey)
	if raw == "" {
		return nil, nil
	}
	// Derive a fixed-size key so operators may configure any passphrase.
	key := sha256.Sum256([]byte(raw))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Encrypt seals value under the configured key. Without a key the value is
// returned unchanged.
func Encrypt(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	gcm, err := gcmFromEnv()
	if err != nil {
		return "", err
	}
	if gcm == nil {
		return value, nil
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	sealed := gcm.Seal(nonce, nonce, []byte(value), nil)
	return prefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt. Plaintext values pass through
// so databases written before encryption was enabled keep working.
func Decrypt(value string) (string, error) {
	rest, ok := strings.CutPrefix(value, prefix)
	if !ok {
		return value, nil
	}
	gcm, err := gcmFromEnv()
	if err != nil {
		return "", err
	}
	if gcm == nil {
		return "", fmt.Errorf("%w: %s is not set", errMalformed, EnvKey)
	}
	sealed, err := base64.StdEncoding.DecodeString(rest)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errMalformed, err)
	}
	if len(sealed) < gcm.NonceSize() {
		return "", errMalformed
	}
	plain, err := gcm.Open(nil, sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():], nil)
	if err != nil {
		return "", fmt.Errorf("decrypting value: %w", err)
	}
	return string(plain), nil
}
