package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreSaveAndLoadRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir(), nil)

	p := validProfile()
	require.NoError(t, store.SaveProfile("MyBank", p))

	// Keys are normalized to lower case.
	got, err := store.LoadProfile("  MYBANK ")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Test bank", got.Name)
	assert.Equal(t, []string{"date"}, got.CSVConfig.FieldMappings["date"])
}

func TestStoreRejectsInvalidProfile(t *testing.T) {
	store := NewStore(t.TempDir(), nil)

	p := validProfile()
	p.Name = ""
	err := store.SaveProfile("mybank", p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid")
}

func TestStoreUnknownKeyIsNotAnError(t *testing.T) {
	store := NewStore(t.TempDir(), nil)

	got, err := store.LoadProfile("nobody")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = store.LoadProfile("")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStoreFallsBackToBuiltins(t *testing.T) {
	store := NewStore(t.TempDir(), nil)

	got, err := store.LoadProfile("tatra")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Tatra banka", got.Name)
	assert.NotEmpty(t, got.PDFConfig.TransactionPatterns)
}

func TestStoreFileOverridesBuiltin(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, nil)

	p := validProfile()
	p.Name = "Tatra override"
	require.NoError(t, store.SaveProfile("tatra", p))

	got, err := store.LoadProfile("tatra")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Tatra override", got.Name)
}

func TestStoreSaveInvalidatesCache(t *testing.T) {
	store := NewStore(t.TempDir(), nil)

	require.NoError(t, store.SaveProfile("mybank", validProfile()))
	_, err := store.LoadProfile("mybank")
	require.NoError(t, err)

	updated := validProfile()
	updated.Name = "Renamed bank"
	require.NoError(t, store.SaveProfile("mybank", updated))

	got, err := store.LoadProfile("mybank")
	require.NoError(t, err)
	assert.Equal(t, "Renamed bank", got.Name)
}

func TestListProfiles(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, nil)

	require.NoError(t, store.SaveProfile("acme", validProfile()))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0600))

	keys, err := store.ListProfiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"acme", "generic", "tatra"}, keys)
}

func TestListProfilesMissingDirHasBuiltins(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "does-not-exist"), nil)

	keys, err := store.ListProfiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"generic", "tatra"}, keys)
}
