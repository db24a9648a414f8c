package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	cause := errors.New("vault: decryption failed (wrong passphrase or corrupted data)")
	err := WrapWithCode(cause, ErrVault, "Could not unlock credentials", "Re-run 'dexosc setup' if you forgot the passphrase")

	out := err.Error()
	assert.True(t, strings.HasPrefix(out, "✗ Could not unlock credentials\n"))
	assert.Contains(t, out, "\n  vault: decryption failed")
	assert.Contains(t, out, "\n  Re-run 'dexosc setup'")
}

func TestErrorWithoutCauseOrSuggestion(t *testing.T) {
	assert.Equal(t, "✗ Passphrases do not match\n", New(ErrSetup, "Passphrases do not match", "").Error())
}

func TestUnwrapAndIsCode(t *testing.T) {
	cause := errors.New("no candidates")
	err := fmt.Errorf("run: %w", WrapWithCode(cause, ErrDiscovery, "No endpoint found", ""))

	assert.ErrorIs(t, err, cause)
	assert.True(t, IsCode(err, ErrDiscovery))
	assert.False(t, IsCode(err, ErrVault))
	assert.False(t, IsCode(nil, ErrVault))
	assert.False(t, IsCode(cause, ErrDiscovery))
}
