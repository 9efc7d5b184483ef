// Package fakeserver is an in-process stand-in for the remote marketplace
// backend, used by service and integration tests. It implements the same
// REST surface over an in-memory repository.
package fakeserver

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"bidmarket-client/internal/models"
)

// MemoryRepo is a concurrency-safe in-memory backend state.
type MemoryRepo struct {
	mu sync.RWMutex

	nextID          int64
	users           map[int64]models.User
	emailIndex      map[string]int64  // email -> userID
	passwords       map[string]string // email -> password
	codes           map[string]string // email -> pending verification/reset code
	tokens          map[string]int64  // bearer token -> userID
	auctions        map[int64]models.Auction
	auctionOrder    []int64
	photos          map[int64]map[int64][]byte // auctionID -> photoID -> bytes
	userPhotos      map[int64][]byte
	notifications   map[int64]models.Notification
	notifOrder      []int64
	notifRecipients map[int64]int64 // notification id -> recipient userID
}

// NewMemoryRepo creates an empty backend state.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		users:           make(map[int64]models.User),
		emailIndex:      make(map[string]int64),
		passwords:       make(map[string]string),
		codes:           make(map[string]string),
		tokens:          make(map[string]int64),
		auctions:        make(map[int64]models.Auction),
		photos:          make(map[int64]map[int64][]byte),
		userPhotos:      make(map[int64][]byte),
		notifications:   make(map[int64]models.Notification),
		notifRecipients: make(map[int64]int64),
	}
}

// allocateID hands out monotonically increasing ids. Caller must hold mu.
func (r *MemoryRepo) allocateID() int64 {
	r.nextID++
	return r.nextID
}

// SeedUser adds an account. Pending accounts get the given verification
// code; active accounts can log in immediately.
func (r *MemoryRepo) SeedUser(user models.User, password string, active bool, code string) models.User {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID == 0 {
		user.ID = r.allocateID()
	}
	if active {
		user.Status = models.UserStatusActive
	} else {
		user.Status = models.UserStatusPending
		r.codes[user.Email] = code
	}
	r.users[user.ID] = user
	r.emailIndex[user.Email] = user.ID
	r.passwords[user.Email] = password
	return user
}

// SeedAuction adds a listing owned by the given seller.
func (r *MemoryRepo) SeedAuction(auction models.Auction) models.Auction {
	r.mu.Lock()
	defer r.mu.Unlock()

	if auction.ID == 0 {
		auction.ID = r.allocateID()
	}
	if auction.Status == "" {
		auction.Status = models.AuctionStatusActive
	}
	r.auctions[auction.ID] = auction
	r.auctionOrder = append(r.auctionOrder, auction.ID)
	return auction
}

// SeedNotification adds a server-created notification for a user.
func (r *MemoryRepo) SeedNotification(userID int64, n models.Notification) models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n.ID == 0 {
		n.ID = r.allocateID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	r.notifications[n.ID] = n
	r.notifOrder = append(r.notifOrder, n.ID)
	r.notifRecipients[n.ID] = userID
	return n
}

// VerificationCode reveals the code the real backend would have emailed,
// so tests can play the user reading their inbox.
func (r *MemoryRepo) VerificationCode(email string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.codes[email]
}

// AuctionPhotoCount reports how many photos are stored for an auction.
func (r *MemoryRepo) AuctionPhotoCount(auctionID int64) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.photos[auctionID])
}

// issueToken creates and registers a bearer token. Caller must hold mu.
func (r *MemoryRepo) issueToken(userID int64) string {
	token := fmt.Sprintf("tok-%s", uuid.New().String())
	r.tokens[token] = userID
	return token
}

// userByToken resolves a bearer token to its account.
func (r *MemoryRepo) userByToken(token string) (models.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	userID, ok := r.tokens[token]
	if !ok {
		return models.User{}, false
	}
	user, ok := r.users[userID]
	return user, ok
}
