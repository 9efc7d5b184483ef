package models

import "time"

// User statuses as reported by the backend.
const (
	UserStatusPending = "Waiting for validation"
	UserStatusActive  = "Active"
)

// Auction statuses. The backend reports active/pending/ended; the client
// additionally derives ended locally once the expiration date has passed.
const (
	AuctionStatusActive  = "active"
	AuctionStatusPending = "pending"
	AuctionStatusEnded   = "ended"
)

// Category is one of the fixed auction category tags.
type Category string

const (
	CategoryElectronics  Category = "electronics"
	CategoryVehicles     Category = "vehicles"
	CategoryFashion      Category = "fashion"
	CategoryHome         Category = "home"
	CategorySports       Category = "sports"
	CategoryBooks        Category = "books"
	CategoryArt          Category = "art"
	CategoryJewelry      Category = "jewelry"
	CategoryCollectibles Category = "collectibles"
	CategoryOther        Category = "other"
)

// Categories lists every known category tag, in display order.
func Categories() []Category {
	return []Category{
		CategoryElectronics, CategoryVehicles, CategoryFashion, CategoryHome,
		CategorySports, CategoryBooks, CategoryArt, CategoryJewelry,
		CategoryCollectibles, CategoryOther,
	}
}

// NotificationType identifies the kind of event a notification carries.
type NotificationType string

const (
	NotificationBidPlaced     NotificationType = "BID_PLACED"
	NotificationAuctionWon    NotificationType = "AUCTION_WON"
	NotificationAuctionLost   NotificationType = "AUCTION_LOST"
	NotificationAuctionEnding NotificationType = "AUCTION_ENDING"
	NotificationOther         NotificationType = "OTHER"
)

// User represents a marketplace account as transmitted by the backend.
type User struct {
	ID        int64  `json:"id"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	CIN       int64  `json:"cin"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	PhotoID   *int64 `json:"photoId,omitempty"`
}

// FullName returns the display name for the user.
func (u User) FullName() string {
	if u.Firstname == "" {
		return u.Lastname
	}
	if u.Lastname == "" {
		return u.Firstname
	}
	return u.Firstname + " " + u.Lastname
}

// Auction represents a sellable listing with a starting price and an
// expiration deadline.
type Auction struct {
	ID            int64              `json:"id"`
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	StartingPrice float64            `json:"startingPrice"`
	Category      Category           `json:"category"`
	Status        string             `json:"status"`
	ExpireDate    *time.Time         `json:"expireDate,omitempty"`
	PhotoIDs      []int64            `json:"photoId,omitempty"`
	Seller        User               `json:"seller"`
	Bidders       map[string]float64 `json:"bidders,omitempty"`
}

// BidderCount returns how many distinct users have bid on the auction.
// Only the cardinality of the bidders map is meaningful to the client.
func (a Auction) BidderCount() int {
	return len(a.Bidders)
}

// Expired reports whether the auction's deadline has passed at the given
// instant. Auctions without an expiration date never expire.
func (a Auction) Expired(now time.Time) bool {
	return a.ExpireDate != nil && !now.Before(*a.ExpireDate)
}

// Notification is a server-created event delivered to a user. The client
// only ever flips the Read flag; it never creates or deletes notifications.
type Notification struct {
	ID        int64            `json:"id"`
	Type      NotificationType `json:"type"`
	Message   string           `json:"message"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"createdAt"`

	// Set only for bid-related notifications.
	AuctionID *int64   `json:"auctionId,omitempty"`
	BidderID  *int64   `json:"bidderId,omitempty"`
	BidAmount *float64 `json:"bidAmount,omitempty"`
}

// Session is the persisted authentication state: a bearer token plus a
// snapshot of the signed-in user. An empty token means unauthenticated.
type Session struct {
	Token     string    `json:"token"`
	User      User      `json:"user"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Authenticated reports whether the session carries a token.
func (s Session) Authenticated() bool {
	return s.Token != ""
}
