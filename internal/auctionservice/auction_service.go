package auctionservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bidmarket-client/internal/clienterrors"
	"bidmarket-client/internal/models"
	"bidmarket-client/internal/restclient"
	"bidmarket-client/utils"
)

// MaxPhotos is the client-enforced cap on images per auction. Extra
// selections are silently truncated, never rejected.
const MaxPhotos = 10

// Service maps auction operations to the backend endpoints.
type Service struct {
	api *restclient.Client
	now func() time.Time
}

// New creates an auction Service on top of the shared REST client.
func New(api *restclient.Client) *Service {
	return &Service{api: api, now: time.Now}
}

// Input carries the auction form fields for create and update.
type Input struct {
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	StartingPrice float64         `json:"startingPrice"`
	Category      models.Category `json:"category"`
	ExpireDate    time.Time       `json:"expireDate"`
}

type createPayload struct {
	Input
	SellerID int64 `json:"sellerId"`
}

type updatePayload struct {
	Input
	RemovedPhotoIDs []int64 `json:"removedPhotoIds,omitempty"`
}

// FetchAll returns every auction known to the backend.
func (s *Service) FetchAll(ctx context.Context) ([]models.Auction, error) {
	var auctions []models.Auction
	if err := s.api.GetJSON(ctx, "/auctions", &auctions); err != nil {
		return nil, err
	}
	return auctions, nil
}

// FetchByID returns one auction.
func (s *Service) FetchByID(ctx context.Context, id int64) (models.Auction, error) {
	var auction models.Auction
	if err := s.api.GetJSON(ctx, fmt.Sprintf("/auctions/%d", id), &auction); err != nil {
		if errors.Is(err, clienterrors.ErrNotFound) {
			return models.Auction{}, clienterrors.WithUserMessage(err, "This auction no longer exists.")
		}
		return models.Auction{}, err
	}
	return auction, nil
}

// FetchBySeller returns the auctions created by one user.
func (s *Service) FetchBySeller(ctx context.Context, sellerID int64) ([]models.Auction, error) {
	var auctions []models.Auction
	if err := s.api.GetJSON(ctx, fmt.Sprintf("/users/%d/auctions", sellerID), &auctions); err != nil {
		return nil, err
	}
	return auctions, nil
}

// Create publishes a new auction with up to MaxPhotos images. The
// expiration date must be strictly in the future; the server re-checks.
func (s *Service) Create(ctx context.Context, in Input, photos []restclient.FilePart, sellerID int64) (models.Auction, error) {
	if err := s.validate(in); err != nil {
		return models.Auction{}, err
	}
	photos = capPhotos(photos)

	var created models.Auction
	payload := createPayload{Input: in, SellerID: sellerID}
	if err := s.api.PostMultipart(ctx, "/auctions", "auction", payload, photos, &created); err != nil {
		if errors.Is(err, clienterrors.ErrBadRequest) {
			return models.Auction{}, clienterrors.WithUserMessage(err, "The auction details were rejected by the server.")
		}
		return models.Auction{}, err
	}
	return created, nil
}

// Update edits an existing auction, optionally attaching new photos and
// removing old ones by id.
func (s *Service) Update(ctx context.Context, id int64, in Input, photos []restclient.FilePart, removedPhotoIDs []int64) (models.Auction, error) {
	if err := s.validate(in); err != nil {
		return models.Auction{}, err
	}
	photos = capPhotos(photos)

	var updated models.Auction
	payload := updatePayload{Input: in, RemovedPhotoIDs: removedPhotoIDs}
	if err := s.api.PutMultipart(ctx, fmt.Sprintf("/auctions/%d", id), "auction", payload, photos, &updated); err != nil {
		if errors.Is(err, clienterrors.ErrNotFound) {
			return models.Auction{}, clienterrors.WithUserMessage(err, "This auction no longer exists.")
		}
		return models.Auction{}, err
	}
	return updated, nil
}

// Delete removes an auction.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.api.Delete(ctx, fmt.Sprintf("/auctions/%d", id)); err != nil {
		if errors.Is(err, clienterrors.ErrNotFound) {
			return clienterrors.WithUserMessage(err, "This auction no longer exists.")
		}
		return err
	}
	return nil
}

// PhotoURL builds the direct image URL for an auction photo, consumed as an
// image source without a separate fetch call.
func (s *Service) PhotoURL(auctionID, photoID int64) string {
	return fmt.Sprintf("%s/auctions/%d/photos/%d", s.api.BaseURL(), auctionID, photoID)
}

func (s *Service) validate(in Input) error {
	if in.Title == "" {
		return clienterrors.WithUserMessage(
			fmt.Errorf("auction: %w", clienterrors.ErrValidation), "A title is required.")
	}
	if in.StartingPrice <= 0 {
		return clienterrors.WithUserMessage(
			fmt.Errorf("auction: %w", clienterrors.ErrValidation), "The starting price must be greater than zero.")
	}
	if !in.ExpireDate.After(s.now()) {
		return clienterrors.WithUserMessage(
			fmt.Errorf("auction: %w", clienterrors.ErrValidation), "The expiration date must be in the future.")
	}
	return nil
}

// photoField is the multipart field the backend expects auction images on.
const photoField = "photos"

// capPhotos truncates the selection to MaxPhotos and stamps the wire field
// name on a copy, leaving the caller's slice untouched.
func capPhotos(photos []restclient.FilePart) []restclient.FilePart {
	if len(photos) > MaxPhotos {
		utils.Warn("photo selection truncated", map[string]any{
			"selected": len(photos),
			"kept":     MaxPhotos,
		})
		photos = photos[:MaxPhotos]
	}

	out := make([]restclient.FilePart, len(photos))
	copy(out, photos)
	for i := range out {
		out[i].FieldName = photoField
	}
	return out
}
