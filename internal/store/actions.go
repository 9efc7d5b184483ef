package store

import "bidmarket-client/internal/models"

// Slice identifies one independently fetched region of client state.
type Slice int

const (
	SliceAuth Slice = iota
	SliceUser
	SliceAuctions
	SliceMyAuctions
	SliceNotifications
)

// Action is the tagged union of every state transition. Actions are plain
// data; reducers are the only code that interprets them.
type Action interface {
	isAction()
}

// sequenced is implemented by fetch-result actions. A result whose sequence
// number no longer matches the slice's current fetch is stale and dropped,
// so overlapping fetches resolve in request order rather than
// last-response-wins.
type sequenced interface {
	slice() Slice
	sequence() uint64
}

// --- auth ---

// AuthStarted marks the auth slice as loading.
type AuthStarted struct{}

// LoggedIn installs a fresh session after login or verify-and-login.
type LoggedIn struct{ Session models.Session }

// AuthFailed records a user-facing auth error.
type AuthFailed struct{ Message string }

// VerificationPending records that an account exists but is blocked on code
// verification; no session is started.
type VerificationPending struct{ Email string }

// LoggedOut clears the session.
type LoggedOut struct{}

func (AuthStarted) isAction()         {}
func (LoggedIn) isAction()            {}
func (AuthFailed) isAction()          {}
func (VerificationPending) isAction() {}
func (LoggedOut) isAction()           {}

// --- user profile ---

// ProfileStarted marks the user slice as loading.
type ProfileStarted struct{}

// ProfileLoaded installs the fetched or updated profile. It also refreshes
// the session's user snapshot so both stay in step.
type ProfileLoaded struct{ User models.User }

// ProfileFailed records a user-facing profile error.
type ProfileFailed struct{ Message string }

func (ProfileStarted) isAction() {}
func (ProfileLoaded) isAction()  {}
func (ProfileFailed) isAction()  {}

// --- fetch lifecycle (auctions, my auctions, notifications) ---

// FetchStarted flags a slice as loading. Emitted by Store.BeginFetch
// together with a fresh sequence number.
type FetchStarted struct{ Slice Slice }

func (FetchStarted) isAction() {}

// AuctionsFetched replaces the marketplace auction list.
type AuctionsFetched struct {
	Seq      uint64
	Auctions []models.Auction
}

// AuctionsFetchFailed records a fetch error for the marketplace list.
type AuctionsFetchFailed struct {
	Seq     uint64
	Message string
}

// MyAuctionsFetched replaces the signed-in seller's auction list.
type MyAuctionsFetched struct {
	Seq      uint64
	Auctions []models.Auction
}

// MyAuctionsFetchFailed records a fetch error for the seller list.
type MyAuctionsFetchFailed struct {
	Seq     uint64
	Message string
}

// NotificationsFetched replaces the notification list.
type NotificationsFetched struct {
	Seq   uint64
	Items []models.Notification
}

// NotificationsFetchFailed records a notification fetch error.
type NotificationsFetchFailed struct {
	Seq     uint64
	Message string
}

func (AuctionsFetched) isAction()          {}
func (AuctionsFetchFailed) isAction()      {}
func (MyAuctionsFetched) isAction()        {}
func (MyAuctionsFetchFailed) isAction()    {}
func (NotificationsFetched) isAction()     {}
func (NotificationsFetchFailed) isAction() {}

func (a AuctionsFetched) slice() Slice              { return SliceAuctions }
func (a AuctionsFetched) sequence() uint64          { return a.Seq }
func (a AuctionsFetchFailed) slice() Slice          { return SliceAuctions }
func (a AuctionsFetchFailed) sequence() uint64      { return a.Seq }
func (a MyAuctionsFetched) slice() Slice            { return SliceMyAuctions }
func (a MyAuctionsFetched) sequence() uint64        { return a.Seq }
func (a MyAuctionsFetchFailed) slice() Slice        { return SliceMyAuctions }
func (a MyAuctionsFetchFailed) sequence() uint64    { return a.Seq }
func (a NotificationsFetched) slice() Slice         { return SliceNotifications }
func (a NotificationsFetched) sequence() uint64     { return a.Seq }
func (a NotificationsFetchFailed) slice() Slice     { return SliceNotifications }
func (a NotificationsFetchFailed) sequence() uint64 { return a.Seq }

// --- local patches applied from mutation responses ---
//
// Each mutating call patches local lists with the server's response instead
// of forcing a re-fetch: created auctions are prepended, updated ones are
// replaced by id, deleted ones filtered out. The lists can therefore drift
// from the server until the next full fetch; that contract is deliberate.

// AuctionCreated prepends the server-returned auction to both lists.
type AuctionCreated struct{ Auction models.Auction }

// AuctionUpdated replaces the auction by id wherever it appears.
type AuctionUpdated struct{ Auction models.Auction }

// AuctionDeleted removes the auction by id wherever it appears.
type AuctionDeleted struct{ ID int64 }

// NotificationsRead replaces the listed notifications by id; the unread
// count is recomputed from the final list, never tracked separately.
type NotificationsRead struct{ Items []models.Notification }

func (AuctionCreated) isAction()    {}
func (AuctionUpdated) isAction()    {}
func (AuctionDeleted) isAction()    {}
func (NotificationsRead) isAction() {}
