package store

import (
	"strings"
	"time"

	"bidmarket-client/internal/models"
)

// Derived view state: pure functions over already-fetched records. None of
// these touch the network, and none of the corrections they make are ever
// written back to the server.

// CorrectAuctionStatus returns the auction with its status forced to ended
// when the expiration date has passed, overriding a stale server status.
func CorrectAuctionStatus(a models.Auction, now time.Time) models.Auction {
	if a.Expired(now) {
		a.Status = models.AuctionStatusEnded
	}
	return a
}

// CorrectAuctionStatuses applies CorrectAuctionStatus to a whole list.
func CorrectAuctionStatuses(list []models.Auction, now time.Time) []models.Auction {
	out := make([]models.Auction, len(list))
	for i, a := range list {
		out[i] = CorrectAuctionStatus(a, now)
	}
	return out
}

// FilterActiveAuctions returns the auctions whose expiration date is
// strictly in the future or absent.
func FilterActiveAuctions(list []models.Auction, now time.Time) []models.Auction {
	out := make([]models.Auction, 0, len(list))
	for _, a := range list {
		if !a.Expired(now) {
			out = append(out, a)
		}
	}
	return out
}

// SearchAuctions narrows a list to active-status auctions whose title or
// description contains the query (case-insensitive) and, when category is
// non-empty, that carry the category tag. Expired records never match.
func SearchAuctions(list []models.Auction, query string, category models.Category, now time.Time) []models.Auction {
	query = strings.ToLower(strings.TrimSpace(query))

	out := make([]models.Auction, 0, len(list))
	for _, a := range list {
		a = CorrectAuctionStatus(a, now)
		if a.Status != models.AuctionStatusActive {
			continue
		}
		if category != "" && a.Category != category {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(a.Title), query) &&
			!strings.Contains(strings.ToLower(a.Description), query) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// UnreadCount counts the notifications not yet marked read.
func UnreadCount(list []models.Notification) int {
	count := 0
	for _, n := range list {
		if !n.Read {
			count++
		}
	}
	return count
}
