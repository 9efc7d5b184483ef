package integrationtests

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"bidmarket-client/internal/client"
	"bidmarket-client/internal/credstore"
	"bidmarket-client/internal/fakeserver"
	"bidmarket-client/internal/models"
	"bidmarket-client/internal/restclient"
)

// testEnv wires a full client against an in-process fake backend: REST
// client, credential file on an in-memory fs, state store, all services.
type testEnv struct {
	client *client.Client
	repo   *fakeserver.MemoryRepo
	fs     afero.Fs
	url    string
}

// SetupTestEnv starts the fake backend and builds a fully wired client
// against it.
func SetupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo := fakeserver.NewMemoryRepo()
	server := fakeserver.Start(repo)
	t.Cleanup(server.Close)

	fs := afero.NewMemMapFs()
	return &testEnv{
		client: newClientOn(t, fs, server.URL),
		repo:   repo,
		fs:     fs,
		url:    server.URL,
	}
}

// newClientOn builds a client sharing the given credential filesystem, so a
// second client can simulate an app restart against the same device state.
func newClientOn(t *testing.T, fs afero.Fs, baseURL string) *client.Client {
	t.Helper()

	creds, err := credstore.NewFileStore(fs, "/device/credentials.json")
	require.NoError(t, err)
	api := restclient.New(restclient.Config{BaseURL: baseURL})
	return client.New(api, creds)
}

// Restart simulates closing and reopening the app: a fresh client over the
// same persisted credentials.
func (e *testEnv) Restart(t *testing.T) *client.Client {
	t.Helper()
	return newClientOn(t, e.fs, e.url)
}

// SeedActiveUser registers a ready-to-login account on the backend.
func (e *testEnv) SeedActiveUser(email, password string) models.User {
	return e.repo.SeedUser(models.User{
		Firstname: "Nadia",
		Lastname:  "Karim",
		CIN:       12345678,
		Email:     email,
	}, password, true, "")
}
