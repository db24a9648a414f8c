package vault

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/pbkdf2"
)

var tokenEncoding = base64.URLEncoding

// DeriveKey stretches passphrase and salt into a KeySize key.
func DeriveKey(passphrase string, salt []byte) ([]byte, error) {
	if len(salt) != SaltSize {
		return nil, ErrInvalidSalt
	}
	return pbkdf2.Key([]byte(passphrase), salt, Iterations, KeySize, sha256.New), nil
}

// Encrypt seals secret under a key derived from passphrase and a new salt.
func Encrypt(secret, passphrase string) (EncryptedBlob, error) {
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return EncryptedBlob{}, fmt.Errorf("vault: generate salt: %w", err)
	}

	key, err := DeriveKey(passphrase, salt)
	if err != nil {
		return EncryptedBlob{}, err
	}
	defer wipe(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return EncryptedBlob{}, fmt.Errorf("vault: init cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return EncryptedBlob{}, fmt.Errorf("vault: generate nonce: %w", err)
	}

	payload := make([]byte, 0, 1+len(nonce)+len(secret)+aead.Overhead())
	payload = append(payload, tokenVersion)
	payload = append(payload, nonce...)
	payload = aead.Seal(payload, nonce, []byte(secret), []byte{tokenVersion})

	return EncryptedBlob{
		Salt:  salt,
		Token: tokenEncoding.EncodeToString(payload),
	}, nil
}

// Decrypt opens blob with a key derived from passphrase. Every failure,
// whatever its cause, is reported as ErrDecryption.
func Decrypt(blob EncryptedBlob, passphrase string) (string, error) {
	key, err := DeriveKey(passphrase, blob.Salt)
	if err != nil {
		return "", ErrDecryption
	}
	defer wipe(key)

	payload, err := tokenEncoding.DecodeString(blob.Token)
	if err != nil {
		return "", ErrDecryption
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return "", ErrDecryption
	}

	if len(payload) < 1+aead.NonceSize()+aead.Overhead() || payload[0] != tokenVersion {
		return "", ErrDecryption
	}
	nonce := payload[1 : 1+aead.NonceSize()]
	ciphertext := payload[1+aead.NonceSize():]

	plaintext, err := aead.Open(nil, nonce, ciphertext, payload[:1])
	if err != nil {
		return "", ErrDecryption
	}
	if !utf8.Valid(plaintext) {
		return "", ErrDecryption
	}
	return string(plaintext), nil
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
