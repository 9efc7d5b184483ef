package store

import (
	"time"

	"bidmarket-client/internal/models"
)

// reduce applies one action to the state. Reducers are pure: the only
// inputs are the previous state, the action and the current time (needed
// for the expired-status derivation on auction records entering the store).
func reduce(s State, action Action, now time.Time) State {
	switch a := action.(type) {

	// auth
	case AuthStarted:
		s.Auth.Loading = true
		s.Auth.Error = ""
	case LoggedIn:
		s.Auth = AuthState{Session: a.Session}
		s.User.Profile = a.Session.User
	case AuthFailed:
		s.Auth.Loading = false
		s.Auth.Error = a.Message
	case VerificationPending:
		s.Auth = AuthState{PendingVerification: true, PendingEmail: a.Email}
	case LoggedOut:
		// every slice is scoped to the session
		s = State{}

	// profile
	case ProfileStarted:
		s.User.Loading = true
		s.User.Error = ""
	case ProfileLoaded:
		s.User = UserState{Profile: a.User}
		if s.Auth.Session.Authenticated() {
			s.Auth.Session.User = a.User
		}
	case ProfileFailed:
		s.User.Loading = false
		s.User.Error = a.Message

	// fetch lifecycle
	case FetchStarted:
		switch a.Slice {
		case SliceAuctions:
			s.Auctions.Loading = true
			s.Auctions.Error = ""
		case SliceMyAuctions:
			s.Auctions.MineLoading = true
			s.Auctions.MineError = ""
		case SliceNotifications:
			s.Notifications.Loading = true
			s.Notifications.Error = ""
		case SliceAuth:
			s.Auth.Loading = true
			s.Auth.Error = ""
		case SliceUser:
			s.User.Loading = true
			s.User.Error = ""
		}
	case AuctionsFetched:
		s.Auctions.Loading = false
		s.Auctions.Error = ""
		s.Auctions.All = CorrectAuctionStatuses(a.Auctions, now)
	case AuctionsFetchFailed:
		s.Auctions.Loading = false
		s.Auctions.Error = a.Message
	case MyAuctionsFetched:
		s.Auctions.MineLoading = false
		s.Auctions.MineError = ""
		s.Auctions.Mine = CorrectAuctionStatuses(a.Auctions, now)
	case MyAuctionsFetchFailed:
		s.Auctions.MineLoading = false
		s.Auctions.MineError = a.Message
	case NotificationsFetched:
		s.Notifications.Loading = false
		s.Notifications.Error = ""
		s.Notifications.Items = a.Items
		s.Notifications.Unread = UnreadCount(a.Items)
	case NotificationsFetchFailed:
		s.Notifications.Loading = false
		s.Notifications.Error = a.Message

	// local patches from mutation responses
	case AuctionCreated:
		created := CorrectAuctionStatus(a.Auction, now)
		s.Auctions.All = prependAuction(s.Auctions.All, created)
		s.Auctions.Mine = prependAuction(s.Auctions.Mine, created)
	case AuctionUpdated:
		updated := CorrectAuctionStatus(a.Auction, now)
		s.Auctions.All = replaceAuction(s.Auctions.All, updated)
		s.Auctions.Mine = replaceAuction(s.Auctions.Mine, updated)
	case AuctionDeleted:
		s.Auctions.All = removeAuction(s.Auctions.All, a.ID)
		s.Auctions.Mine = removeAuction(s.Auctions.Mine, a.ID)
	case NotificationsRead:
		s.Notifications.Items = patchNotifications(s.Notifications.Items, a.Items)
		s.Notifications.Unread = UnreadCount(s.Notifications.Items)
	}

	return s
}

func prependAuction(list []models.Auction, auction models.Auction) []models.Auction {
	out := make([]models.Auction, 0, len(list)+1)
	out = append(out, auction)
	return append(out, list...)
}

func replaceAuction(list []models.Auction, auction models.Auction) []models.Auction {
	out := append([]models.Auction(nil), list...)
	for i := range out {
		if out[i].ID == auction.ID {
			out[i] = auction
		}
	}
	return out
}

func removeAuction(list []models.Auction, id int64) []models.Auction {
	out := make([]models.Auction, 0, len(list))
	for _, auction := range list {
		if auction.ID != id {
			out = append(out, auction)
		}
	}
	return out
}

func patchNotifications(list, updates []models.Notification) []models.Notification {
	byID := make(map[int64]models.Notification, len(updates))
	for _, n := range updates {
		byID[n.ID] = n
	}
	out := append([]models.Notification(nil), list...)
	for i := range out {
		if updated, ok := byID[out[i].ID]; ok {
			out[i] = updated
		}
	}
	return out
}
