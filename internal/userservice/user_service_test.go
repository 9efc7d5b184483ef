package userservice_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"bidmarket-client/internal/authservice"
	"bidmarket-client/internal/clienterrors"
	"bidmarket-client/internal/fakeserver"
	"bidmarket-client/internal/models"
	"bidmarket-client/internal/restclient"
	"bidmarket-client/internal/userservice"
)

type harness struct {
	svc  *userservice.Service
	repo *fakeserver.MemoryRepo
	user models.User
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	repo := fakeserver.NewMemoryRepo()
	server := fakeserver.Start(repo)
	t.Cleanup(server.Close)

	user := repo.SeedUser(models.User{
		Firstname: "Nadia",
		Lastname:  "Karim",
		CIN:       12345678,
		Email:     "nadia@example.com",
	}, "secret", true, "")

	api := restclient.New(restclient.Config{BaseURL: server.URL})
	result, err := authservice.New(api).Login(context.Background(), user.Email, "secret")
	require.NoError(t, err)
	api.SetToken(result.Token)

	return &harness{svc: userservice.New(api), repo: repo, user: user}
}

func TestGet(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	user, err := h.svc.Get(context.Background(), h.user.ID)
	require.NoError(t, err)
	require.Equal(t, h.user.Email, user.Email)

	_, err = h.svc.Get(context.Background(), 99999)
	require.ErrorIs(t, err, clienterrors.ErrNotFound)
	require.Equal(t, "This user no longer exists.", clienterrors.UserMessage(err))
}

func TestUpdate_Fields(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	updated, err := h.svc.Update(context.Background(), h.user.ID, userservice.UpdateInput{
		Firstname: "Nour",
		Lastname:  "Karim",
		Email:     "nour@example.com",
	}, nil)

	require.NoError(t, err)
	require.Equal(t, "Nour", updated.Firstname)
	require.Equal(t, "nour@example.com", updated.Email)
}

func TestUpdate_Validation(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	_, err := h.svc.Update(context.Background(), h.user.ID, userservice.UpdateInput{
		Firstname: "Nour",
	}, nil)

	require.ErrorIs(t, err, clienterrors.ErrValidation)
	require.Equal(t, "Name and email are required.", clienterrors.UserMessage(err))
}

func TestUpdate_EmailTaken(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.repo.SeedUser(models.User{Email: "taken@example.com", CIN: 2}, "pw", true, "")

	_, err := h.svc.Update(context.Background(), h.user.ID, userservice.UpdateInput{
		Firstname: h.user.Firstname,
		Lastname:  h.user.Lastname,
		Email:     "taken@example.com",
	}, nil)

	require.ErrorIs(t, err, clienterrors.ErrConflict)
	require.Equal(t, "Another account already uses this email.", clienterrors.UserMessage(err))
}

func TestUpdate_WithPhoto(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	photo := &restclient.FilePart{
		FieldName:   "photo",
		Filename:    "avatar.jpg",
		ContentType: "image/jpeg",
		Data:        []byte{0xff, 0xd8, 0x01},
	}
	updated, err := h.svc.Update(context.Background(), h.user.ID, userservice.UpdateInput{
		Firstname: h.user.Firstname,
		Lastname:  h.user.Lastname,
		Email:     h.user.Email,
	}, photo)

	require.NoError(t, err)
	require.NotNil(t, updated.PhotoID)

	// the photo URL serves the uploaded bytes without auth
	resp, err := http.Get(h.svc.PhotoURL(h.user.ID))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDeletePhoto(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	// no photo yet
	err := h.svc.DeletePhoto(context.Background(), h.user.ID)
	require.ErrorIs(t, err, clienterrors.ErrNotFound)
	require.Equal(t, "There is no profile photo to remove.", clienterrors.UserMessage(err))

	photo := &restclient.FilePart{FieldName: "photo", Filename: "avatar.jpg", ContentType: "image/jpeg", Data: []byte{1}}
	_, err = h.svc.Update(context.Background(), h.user.ID, userservice.UpdateInput{
		Firstname: h.user.Firstname,
		Lastname:  h.user.Lastname,
		Email:     h.user.Email,
	}, photo)
	require.NoError(t, err)

	require.NoError(t, h.svc.DeletePhoto(context.Background(), h.user.ID))

	user, err := h.svc.Get(context.Background(), h.user.ID)
	require.NoError(t, err)
	require.Nil(t, user.PhotoID)
}
