package vault

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Save writes rec as the entire content of path and restricts the file to
// owner read/write. Parent directories are created as needed.
func Save(path string, rec *CredentialRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("vault: create directory: %w", err)
	}

	rec.Version = RecordVersion

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("vault: encode record: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("vault: write %s: %w", path, err)
	}

	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(path, 0600); err != nil && runtime.GOOS != "windows" {
		return fmt.Errorf("vault: restrict permissions: %w", err)
	}
	return nil
}

// Load reads the credential record at path.
func Load(path string) (*CredentialRecord, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("vault: read %s: %w", path, err)
	}

	rec := &CredentialRecord{}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	switch {
	case rec.Version != RecordVersion:
		return nil, fmt.Errorf("%w: unsupported version %d", ErrFormat, rec.Version)
	case strings.TrimSpace(rec.Username) == "":
		return nil, fmt.Errorf("%w: missing username", ErrFormat)
	case rec.EncryptedPassword.IsZero():
		return nil, fmt.Errorf("%w: missing encrypted_password", ErrFormat)
	}

	return rec, nil
}
