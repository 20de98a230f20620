package security

import (
	"crypto/aes"
	"errors"
	"fmt"
)

// The wire cipher is AES-ECB with PKCS#5 padding, kept for protocol
// compatibility with deployed clients. It protects only the password field of
// registration and login payloads, never bulk traffic.

var (
	// ErrBadCiphertext is returned when a ciphertext is empty, misaligned, or
	// carries invalid padding.
	ErrBadCiphertext = errors.New("malformed ciphertext")
)

// DecryptPassword decrypts an AES-ECB/PKCS5 ciphertext with the session key.
func DecryptPassword(ciphertext, key []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("session key unusable as cipher key: %w", err)
	}
	bs := block.BlockSize()
	if len(ciphertext) == 0 || len(ciphertext)%bs != 0 {
		return "", ErrBadCiphertext
	}

	plain := make([]byte, len(ciphertext))
	for off := 0; off < len(ciphertext); off += bs {
		block.Decrypt(plain[off:off+bs], ciphertext[off:off+bs])
	}

	return stripPKCS5(plain, bs)
}

// EncryptPassword is the inverse of DecryptPassword. The server itself only
// decrypts; this is used by tests and tooling standing in for a client.
func EncryptPassword(password string, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("session key unusable as cipher key: %w", err)
	}
	bs := block.BlockSize()

	padded := padPKCS5([]byte(password), bs)
	out := make([]byte, len(padded))
	for off := 0; off < len(padded); off += bs {
		block.Encrypt(out[off:off+bs], padded[off:off+bs])
	}
	return out, nil
}

func padPKCS5(data []byte, bs int) []byte {
	n := bs - len(data)%bs
	out := make([]byte, len(data)+n)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = byte(n)
	}
	return out
}

func stripPKCS5(data []byte, bs int) (string, error) {
	if len(data) == 0 {
		return "", ErrBadCiphertext
	}
	n := int(data[len(data)-1])
	if n == 0 || n > bs || n > len(data) {
		return "", ErrBadCiphertext
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return "", ErrBadCiphertext
		}
	}
	return string(data[:len(data)-n]), nil
}
