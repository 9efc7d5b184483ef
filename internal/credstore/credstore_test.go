package credstore

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(afero.NewMemMapFs(), "/home/tester/.bidmarket/credentials.json")
	require.NoError(t, err)
	return store
}

func TestFileStore_SetGet(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	require.NoError(t, store.Set(KeyToken, "tok-123"))

	got, err := store.Get(KeyToken)
	require.NoError(t, err)
	require.Equal(t, "tok-123", got)
}

func TestFileStore_GetMissingKey(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	_, err := store.Get(KeyUser)
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestFileStore_Delete(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	require.NoError(t, store.Set(KeyPendingVerificationEmail, "a@b.com"))
	require.NoError(t, store.Set(KeyPendingRegistrationPassword, "secret"))

	require.NoError(t, store.Delete(KeyPendingVerificationEmail, KeyPendingRegistrationPassword, "neverStored"))

	_, err := store.Get(KeyPendingVerificationEmail)
	require.ErrorIs(t, err, ErrKeyNotFound)
	_, err = store.Get(KeyPendingRegistrationPassword)
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestFileStore_ClearRemovesEverything(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	require.NoError(t, store.Set(KeyToken, "tok"))
	require.NoError(t, store.Set(KeyUser, `{"id":1}`))

	require.NoError(t, store.Clear())

	_, err := store.Get(KeyToken)
	require.ErrorIs(t, err, ErrKeyNotFound)
	_, err = store.Get(KeyUser)
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestFileStore_PersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	path := "/data/credentials.json"

	store, err := NewFileStore(fs, path)
	require.NoError(t, err)
	require.NoError(t, store.Set(KeyToken, "tok-persisted"))
	require.NoError(t, store.Set(KeyUser, `{"id":7,"email":"x@y.z"}`))

	// Simulate an app restart by reopening the same file.
	reopened, err := NewFileStore(fs, path)
	require.NoError(t, err)

	got, err := reopened.Get(KeyToken)
	require.NoError(t, err)
	require.Equal(t, "tok-persisted", got)

	got, err = reopened.Get(KeyUser)
	require.NoError(t, err)
	require.Equal(t, `{"id":7,"email":"x@y.z"}`, got)
}

func TestFileStore_CorruptFile(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	path := "/data/credentials.json"
	require.NoError(t, afero.WriteFile(fs, path, []byte("{not json"), 0o600))

	_, err := NewFileStore(fs, path)
	require.Error(t, err)
}
