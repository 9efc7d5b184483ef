package auctionservice_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bidmarket-client/internal/auctionservice"
	"bidmarket-client/internal/authservice"
	"bidmarket-client/internal/clienterrors"
	"bidmarket-client/internal/fakeserver"
	"bidmarket-client/internal/models"
	"bidmarket-client/internal/restclient"
)

type harness struct {
	svc    *auctionservice.Service
	repo   *fakeserver.MemoryRepo
	seller models.User
}

// newHarness spins up the fake backend and signs in a seller, so the REST
// client carries a valid bearer token.
func newHarness(t *testing.T) *harness {
	t.Helper()

	repo := fakeserver.NewMemoryRepo()
	server := fakeserver.Start(repo)
	t.Cleanup(server.Close)

	seller := repo.SeedUser(models.User{
		Firstname: "Omar",
		Lastname:  "Bellamy",
		CIN:       44556677,
		Email:     "omar@example.com",
	}, "hunter2", true, "")

	api := restclient.New(restclient.Config{BaseURL: server.URL})
	result, err := authservice.New(api).Login(context.Background(), seller.Email, "hunter2")
	require.NoError(t, err)
	api.SetToken(result.Token)

	return &harness{svc: auctionservice.New(api), repo: repo, seller: seller}
}

func validInput() auctionservice.Input {
	return auctionservice.Input{
		Title:         "Road bike",
		Description:   "Carbon frame, size 56",
		StartingPrice: 250,
		Category:      models.CategorySports,
		ExpireDate:    time.Now().Add(72 * time.Hour),
	}
}

func photoParts(n int) []restclient.FilePart {
	parts := make([]restclient.FilePart, 0, n)
	for i := 0; i < n; i++ {
		parts = append(parts, restclient.FilePart{
			FieldName:   "photos",
			Filename:    fmt.Sprintf("photo-%d.jpg", i),
			ContentType: "image/jpeg",
			Data:        []byte{0xff, 0xd8, byte(i)},
		})
	}
	return parts
}

func TestCreate_RoundTrip(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	in := validInput()
	created, err := h.svc.Create(context.Background(), in, photoParts(2), h.seller.ID)

	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.Equal(t, in.Title, created.Title)
	require.Equal(t, models.AuctionStatusActive, created.Status)
	require.Equal(t, h.seller.ID, created.Seller.ID)
	require.Len(t, created.PhotoIDs, 2)
	require.Equal(t, 2, h.repo.AuctionPhotoCount(created.ID))
}

func TestCreate_TruncatesPhotoSelection(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	created, err := h.svc.Create(context.Background(), validInput(), photoParts(auctionservice.MaxPhotos+3), h.seller.ID)

	require.NoError(t, err)
	require.Len(t, created.PhotoIDs, auctionservice.MaxPhotos)
	require.Equal(t, auctionservice.MaxPhotos, h.repo.AuctionPhotoCount(created.ID))
}

func TestCreate_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(in *auctionservice.Input)
		wantMsg string
	}{
		{
			name:    "missing title",
			mutate:  func(in *auctionservice.Input) { in.Title = "" },
			wantMsg: "A title is required.",
		},
		{
			name:    "zero price",
			mutate:  func(in *auctionservice.Input) { in.StartingPrice = 0 },
			wantMsg: "The starting price must be greater than zero.",
		},
		{
			name:    "negative price",
			mutate:  func(in *auctionservice.Input) { in.StartingPrice = -5 },
			wantMsg: "The starting price must be greater than zero.",
		},
		{
			name:    "expiration in the past",
			mutate:  func(in *auctionservice.Input) { in.ExpireDate = time.Now().Add(-time.Hour) },
			wantMsg: "The expiration date must be in the future.",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			h := newHarness(t)

			in := validInput()
			tc.mutate(&in)

			_, err := h.svc.Create(context.Background(), in, nil, h.seller.ID)

			require.ErrorIs(t, err, clienterrors.ErrValidation)
			require.Equal(t, tc.wantMsg, clienterrors.UserMessage(err))
		})
	}
}

func TestFetchAll_PreservesServerOrder(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	first := h.repo.SeedAuction(models.Auction{Title: "First", Seller: h.seller})
	second := h.repo.SeedAuction(models.Auction{Title: "Second", Seller: h.seller})

	auctions, err := h.svc.FetchAll(context.Background())

	require.NoError(t, err)
	require.Len(t, auctions, 2)
	require.Equal(t, first.ID, auctions[0].ID)
	require.Equal(t, second.ID, auctions[1].ID)
}

func TestFetchByID(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	seeded := h.repo.SeedAuction(models.Auction{Title: "Espresso machine", Seller: h.seller})

	auction, err := h.svc.FetchByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	require.Equal(t, "Espresso machine", auction.Title)

	_, err = h.svc.FetchByID(context.Background(), 99999)
	require.ErrorIs(t, err, clienterrors.ErrNotFound)
	require.Equal(t, "This auction no longer exists.", clienterrors.UserMessage(err))
}

func TestFetchBySeller_FiltersOtherSellers(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	other := h.repo.SeedUser(models.User{Email: "rival@example.com", CIN: 2}, "pw", true, "")
	mine := h.repo.SeedAuction(models.Auction{Title: "Mine", Seller: h.seller})
	h.repo.SeedAuction(models.Auction{Title: "Theirs", Seller: other})

	auctions, err := h.svc.FetchBySeller(context.Background(), h.seller.ID)

	require.NoError(t, err)
	require.Len(t, auctions, 1)
	require.Equal(t, mine.ID, auctions[0].ID)
}

func TestUpdate_EditsFieldsAndPhotos(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	created, err := h.svc.Create(context.Background(), validInput(), photoParts(2), h.seller.ID)
	require.NoError(t, err)

	in := validInput()
	in.Title = "Road bike (price drop)"
	in.StartingPrice = 200
	updated, err := h.svc.Update(context.Background(), created.ID, in, photoParts(1), created.PhotoIDs[:1])

	require.NoError(t, err)
	require.Equal(t, "Road bike (price drop)", updated.Title)
	require.Equal(t, float64(200), updated.StartingPrice)
	// one removed, one kept, one added
	require.Len(t, updated.PhotoIDs, 2)
	require.NotContains(t, updated.PhotoIDs, created.PhotoIDs[0])
	require.Contains(t, updated.PhotoIDs, created.PhotoIDs[1])
}

func TestUpdate_UnknownAuction(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	_, err := h.svc.Update(context.Background(), 99999, validInput(), nil, nil)

	require.ErrorIs(t, err, clienterrors.ErrNotFound)
	require.Equal(t, "This auction no longer exists.", clienterrors.UserMessage(err))
}

func TestDelete(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	seeded := h.repo.SeedAuction(models.Auction{Title: "Short lived", Seller: h.seller})

	require.NoError(t, h.svc.Delete(context.Background(), seeded.ID))

	auctions, err := h.svc.FetchAll(context.Background())
	require.NoError(t, err)
	require.Empty(t, auctions)

	err = h.svc.Delete(context.Background(), seeded.ID)
	require.ErrorIs(t, err, clienterrors.ErrNotFound)
}

func TestMutationsRequireToken(t *testing.T) {
	t.Parallel()

	repo := fakeserver.NewMemoryRepo()
	server := fakeserver.Start(repo)
	t.Cleanup(server.Close)

	api := restclient.New(restclient.Config{BaseURL: server.URL})
	svc := auctionservice.New(api)

	_, err := svc.Create(context.Background(), validInput(), nil, 1)
	require.ErrorIs(t, err, clienterrors.ErrUnauthorized)

	err = svc.Delete(context.Background(), 1)
	require.ErrorIs(t, err, clienterrors.ErrUnauthorized)
}

func TestPhotoURL(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	created, err := h.svc.Create(context.Background(), validInput(), photoParts(1), h.seller.ID)
	require.NoError(t, err)

	url := h.svc.PhotoURL(created.ID, created.PhotoIDs[0])
	require.Contains(t, url, fmt.Sprintf("/auctions/%d/photos/%d", created.ID, created.PhotoIDs[0]))

	// the URL is directly fetchable without auth
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
