package store

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bidmarket-client/internal/models"
)

func newClockedStore() *Store {
	return NewWithClock(func() time.Time { return testNow })
}

func TestStore_LoginLogoutCycle(t *testing.T) {
	t.Parallel()

	s := newClockedStore()

	s.Dispatch(AuthStarted{})
	require.True(t, s.State().Auth.Loading)

	session := models.Session{Token: "tok", User: models.User{ID: 7, Email: "a@b.com"}}
	s.Dispatch(LoggedIn{Session: session})

	state := s.State()
	require.False(t, state.Auth.Loading)
	require.True(t, state.Auth.Session.Authenticated())
	require.Equal(t, int64(7), state.User.Profile.ID)

	s.Dispatch(LoggedOut{})
	state = s.State()
	require.False(t, state.Auth.Session.Authenticated())
	require.Empty(t, state.Auctions.All)
	require.Empty(t, state.Notifications.Items)
}

func TestStore_VerificationPendingBlocksSession(t *testing.T) {
	t.Parallel()

	s := newClockedStore()
	s.Dispatch(VerificationPending{Email: "new@user.com"})

	state := s.State()
	require.False(t, state.Auth.Session.Authenticated())
	require.True(t, state.Auth.PendingVerification)
	require.Equal(t, "new@user.com", state.Auth.PendingEmail)
}

func TestStore_FetchAppliesStatusCorrection(t *testing.T) {
	t.Parallel()

	s := newClockedStore()
	seq := s.BeginFetch(SliceAuctions)
	require.True(t, s.State().Auctions.Loading)

	s.Dispatch(AuctionsFetched{Seq: seq, Auctions: []models.Auction{
		newAuction(1, "live", models.AuctionStatusActive, tp(testNow.Add(time.Hour))),
		newAuction(2, "stale_active", models.AuctionStatusActive, tp(testNow.Add(-time.Hour))),
	}})

	state := s.State()
	require.False(t, state.Auctions.Loading)
	require.Equal(t, models.AuctionStatusActive, state.Auctions.All[0].Status)
	require.Equal(t, models.AuctionStatusEnded, state.Auctions.All[1].Status)
}

func TestStore_StaleFetchResultDiscarded(t *testing.T) {
	t.Parallel()

	s := newClockedStore()

	first := s.BeginFetch(SliceAuctions)
	second := s.BeginFetch(SliceAuctions)

	// The newer fetch resolves first.
	s.Dispatch(AuctionsFetched{Seq: second, Auctions: []models.Auction{
		newAuction(2, "fresh", models.AuctionStatusActive, tp(testNow.Add(time.Hour))),
	}})
	// The older response lands late and must be dropped.
	s.Dispatch(AuctionsFetched{Seq: first, Auctions: []models.Auction{
		newAuction(1, "stale", models.AuctionStatusActive, tp(testNow.Add(time.Hour))),
	}})

	state := s.State()
	require.Len(t, state.Auctions.All, 1)
	require.Equal(t, "fresh", state.Auctions.All[0].Title)
}

func TestStore_StaleFailureDoesNotClobberFreshData(t *testing.T) {
	t.Parallel()

	s := newClockedStore()

	first := s.BeginFetch(SliceNotifications)
	second := s.BeginFetch(SliceNotifications)

	s.Dispatch(NotificationsFetched{Seq: second, Items: []models.Notification{{ID: 1}}})
	s.Dispatch(NotificationsFetchFailed{Seq: first, Message: "timed out"})

	state := s.State()
	require.Empty(t, state.Notifications.Error)
	require.Len(t, state.Notifications.Items, 1)
	require.Equal(t, 1, state.Notifications.Unread)
}

func TestStore_AuctionLocalPatches(t *testing.T) {
	t.Parallel()

	s := newClockedStore()
	seq := s.BeginFetch(SliceAuctions)
	s.Dispatch(AuctionsFetched{Seq: seq, Auctions: []models.Auction{
		newAuction(1, "first", models.AuctionStatusActive, tp(testNow.Add(time.Hour))),
		newAuction(2, "second", models.AuctionStatusActive, tp(testNow.Add(time.Hour))),
	}})

	// create prepends
	s.Dispatch(AuctionCreated{Auction: newAuction(3, "created", models.AuctionStatusActive, tp(testNow.Add(time.Hour)))})
	state := s.State()
	require.Equal(t, []int64{3, 1, 2}, auctionIDs(state.Auctions.All))
	require.Equal(t, []int64{3}, auctionIDs(state.Auctions.Mine))

	// update replaces by id
	renamed := newAuction(1, "renamed", models.AuctionStatusActive, tp(testNow.Add(time.Hour)))
	s.Dispatch(AuctionUpdated{Auction: renamed})
	state = s.State()
	require.Equal(t, "renamed", state.Auctions.All[1].Title)

	// delete filters out
	s.Dispatch(AuctionDeleted{ID: 2})
	state = s.State()
	require.Equal(t, []int64{3, 1}, auctionIDs(state.Auctions.All))
}

func TestStore_NotificationsReadRecomputesUnread(t *testing.T) {
	t.Parallel()

	s := newClockedStore()
	seq := s.BeginFetch(SliceNotifications)
	s.Dispatch(NotificationsFetched{Seq: seq, Items: []models.Notification{
		{ID: 1, Type: models.NotificationBidPlaced},
		{ID: 2, Type: models.NotificationAuctionEnding},
		{ID: 3, Type: models.NotificationAuctionWon, Read: true},
	}})
	require.Equal(t, 2, s.State().Notifications.Unread)

	s.Dispatch(NotificationsRead{Items: []models.Notification{
		{ID: 1, Type: models.NotificationBidPlaced, Read: true},
	}})

	state := s.State()
	require.Equal(t, 1, state.Notifications.Unread)
	require.True(t, state.Notifications.Items[0].Read)
	require.False(t, state.Notifications.Items[1].Read)
}

func TestStore_ProfileLoadedRefreshesSessionSnapshot(t *testing.T) {
	t.Parallel()

	s := newClockedStore()
	s.Dispatch(LoggedIn{Session: models.Session{Token: "tok", User: models.User{ID: 7, Firstname: "Old"}}})

	s.Dispatch(ProfileLoaded{User: models.User{ID: 7, Firstname: "New"}})

	state := s.State()
	require.Equal(t, "New", state.User.Profile.Firstname)
	require.Equal(t, "New", state.Auth.Session.User.Firstname)
}

func TestStore_ConcurrentDispatchIsSerialized(t *testing.T) {
	t.Parallel()

	s := newClockedStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Dispatch(AuctionCreated{Auction: newAuction(int64(i), fmt.Sprintf("auction_%d", i),
				models.AuctionStatusActive, tp(testNow.Add(time.Hour)))})
		}(i)
	}
	wg.Wait()

	require.Len(t, s.State().Auctions.All, 50)
}

func auctionIDs(list []models.Auction) []int64 {
	ids := make([]int64, 0, len(list))
	for _, a := range list {
		ids = append(ids, a.ID)
	}
	return ids
}
