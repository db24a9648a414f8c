package vault

import (
	"encoding/base64"
	"encoding/json"
	"errors"
)

// RecordVersion is the current credential file format version.
const RecordVersion = 1

// Key derivation and token parameters.
const (
	// SaltSize is the length of the random PBKDF2 salt.
	SaltSize = 16

	// KeySize is the length of the derived symmetric key.
	KeySize = 32

	// Iterations is the PBKDF2 iteration count.
	Iterations = 200_000

	// tokenVersion prefixes every token and is bound as additional data.
	tokenVersion byte = 0x01
)

// Vault errors.
var (
	ErrDecryption    = errors.New("vault: decryption failed (wrong passphrase or corrupted data)")
	ErrNotFound      = errors.New("vault: credential file not found")
	ErrFormat        = errors.New("vault: malformed credential file")
	ErrInvalidRegion = errors.New("vault: region must be one of: us, ous, jp")
	ErrInvalidSalt   = errors.New("vault: salt must be 16 bytes")
)

// Region identifies the Dexcom Share deployment the account lives in.
type Region string

const (
	// RegionUS is the United States deployment.
	RegionUS Region = "us"

	// RegionOUS is the deployment for accounts outside the United States.
	RegionOUS Region = "ous"

	// RegionJP is the Japanese deployment.
	RegionJP Region = "jp"
)

// CredentialRecord is the full content of the credential file.
type CredentialRecord struct {
	// Version is the file format version.
	Version int `json:"version"`

	// Region is the Share deployment.
	Region Region `json:"region"`

	// Username is the Share account name (email, phone or user ID).
	Username string `json:"username"`

	// EncryptedPassword holds the sealed Share password.
	EncryptedPassword EncryptedBlob `json:"encrypted_password"`
}

// EncryptedBlob is a salt plus an authenticated encryption token.
type EncryptedBlob struct {
	Salt  []byte
	Token string
}

type encryptedBlobJSON struct {
	SaltB64 string `json:"salt_b64"`
	PWToken string `json:"pw_token"`
}

// MarshalJSON encodes the salt as standard base64.
func (b EncryptedBlob) MarshalJSON() ([]byte, error) {
	return json.Marshal(encryptedBlobJSON{
		SaltB64: base64.StdEncoding.EncodeToString(b.Salt),
		PWToken: b.Token,
	})
}

// UnmarshalJSON decodes the salt_b64/pw_token object.
func (b *EncryptedBlob) UnmarshalJSON(data []byte) error {
	var raw encryptedBlobJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	salt, err := base64.StdEncoding.DecodeString(raw.SaltB64)
	if err != nil {
		return err
	}
	b.Salt = salt
	b.Token = raw.PWToken
	return nil
}

// IsZero reports whether the blob carries no data.
func (b EncryptedBlob) IsZero() bool {
	return len(b.Salt) == 0 && b.Token == ""
}
