// Package store holds the client-side state synchronized against the
// backend: plain data slices with loading/error flags, mutated only through
// serialized dispatch of tagged-union actions through pure reducers.
//
// The store is an explicitly constructed value handed to the UI layer, not
// an ambient singleton.
package store

import (
	"sync"
	"time"

	"bidmarket-client/internal/models"
	"bidmarket-client/utils"
)

// AuthState is the session slice.
type AuthState struct {
	Loading             bool
	Error               string
	Session             models.Session
	PendingVerification bool
	PendingEmail        string
}

// UserState is the profile slice.
type UserState struct {
	Loading bool
	Error   string
	Profile models.User
}

// AuctionState holds the marketplace list and the signed-in seller's list.
type AuctionState struct {
	Loading     bool
	Error       string
	All         []models.Auction
	MineLoading bool
	MineError   string
	Mine        []models.Auction
}

// NotificationState is the notification slice. Unread is always recomputed
// from Items, never tracked independently.
type NotificationState struct {
	Loading bool
	Error   string
	Items   []models.Notification
	Unread  int
}

// State is a snapshot of every slice.
type State struct {
	Auth          AuthState
	User          UserState
	Auctions      AuctionState
	Notifications NotificationState
}

// Store serializes all state mutations: one action is applied at a time,
// with no interleaved partial updates.
type Store struct {
	mu    sync.Mutex
	state State
	seqs  map[Slice]uint64
	now   func() time.Time
}

// New creates an empty store.
func New() *Store {
	return NewWithClock(time.Now)
}

// NewWithClock creates a store with an injected clock, used by tests to pin
// the expiration-derivation boundary.
func NewWithClock(now func() time.Time) *Store {
	return &Store{
		seqs: make(map[Slice]uint64),
		now:  now,
	}
}

// BeginFetch starts a fetch cycle for the slice: it bumps the slice's
// sequence number, flags it as loading, and returns the sequence the caller
// must attach to the result action. A result carrying an older sequence is
// discarded on dispatch.
func (s *Store) BeginFetch(slice Slice) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seqs[slice]++
	s.state = reduce(s.state, FetchStarted{Slice: slice}, s.now())
	return s.seqs[slice]
}

// Dispatch applies one action under the store lock. Stale sequenced results
// are dropped.
func (s *Store) Dispatch(action Action) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sq, ok := action.(sequenced); ok {
		if current := s.seqs[sq.slice()]; sq.sequence() != current {
			utils.Debug("stale fetch result discarded", map[string]any{
				"slice":       int(sq.slice()),
				"result_seq":  sq.sequence(),
				"current_seq": current,
			})
			return
		}
	}

	s.state = reduce(s.state, action, s.now())
}

// State returns a snapshot. Contained slices are copies, safe to read while
// further dispatches happen.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state
	snapshot.Auctions.All = append([]models.Auction(nil), s.state.Auctions.All...)
	snapshot.Auctions.Mine = append([]models.Auction(nil), s.state.Auctions.Mine...)
	snapshot.Notifications.Items = append([]models.Notification(nil), s.state.Notifications.Items...)
	return snapshot
}
