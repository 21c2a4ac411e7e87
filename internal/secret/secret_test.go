package secret_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-countdown/internal/config"
	"github.com/tartampluch/go-countdown/internal/secret"
	"github.com/zalando/go-keyring"
)

func TestStoreAndLookup(t *testing.T) {
	keyring.MockInit()

	require.NoError(t, secret.Store("alice", "s3cret"))

	pass, err := secret.Lookup("alice")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", pass)
	assert.Equal(t, "s3cret", secret.LookupOptional("alice"))
}

func TestLookup_NotFound(t *testing.T) {
	keyring.MockInit()

	_, err := secret.Lookup("nobody")
	require.Error(t, err)
	assert.ErrorIs(t, err, secret.ErrNotFound)
	assert.Empty(t, secret.LookupOptional("nobody"))
	assert.Empty(t, secret.LookupOptional(""))
}

func TestStore_RejectsEmpty(t *testing.T) {
	keyring.MockInit()

	err := secret.Store("alice", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrPasswordEmpty)
}

func TestStore_KeyringFailure(t *testing.T) {
	keyring.MockInitWithError(assert.AnError)
	t.Cleanup(keyring.MockInit)

	err := secret.Store("alice", "pw")
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), config.ErrKeyringSet)

	_, err = secret.Lookup("alice")
	assert.ErrorIs(t, err, assert.AnError)
	assert.NotErrorIs(t, err, secret.ErrNotFound)
}

func TestPrompt_NoTerminal(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "stdin"))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	var out bytes.Buffer
	_, err = secret.Prompt(f, &out)
	assert.ErrorIs(t, err, secret.ErrNoTerminal)
	assert.Empty(t, out.String(), "No label without a terminal")
}

func TestLogin(t *testing.T) {
	keyring.MockInit()

	f, err := os.Create(filepath.Join(t.TempDir(), "stdin"))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	err = secret.Login("", f, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrUserRequired)

	err = secret.Login("alice", f, &bytes.Buffer{})
	assert.ErrorIs(t, err, secret.ErrNoTerminal)
}
