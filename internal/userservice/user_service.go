package userservice

import (
	"context"
	"errors"
	"fmt"

	"bidmarket-client/internal/clienterrors"
	"bidmarket-client/internal/models"
	"bidmarket-client/internal/restclient"
)

// Service maps profile operations to the backend user endpoints.
type Service struct {
	api *restclient.Client
}

// New creates a user Service on top of the shared REST client.
func New(api *restclient.Client) *Service {
	return &Service{api: api}
}

// UpdateInput carries the editable profile fields.
type UpdateInput struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email"`
}

// Get returns the full user record, used to resolve seller references on
// auction cards and bidder references on notifications.
func (s *Service) Get(ctx context.Context, id int64) (models.User, error) {
	var user models.User
	if err := s.api.GetJSON(ctx, fmt.Sprintf("/users/%d", id), &user); err != nil {
		if errors.Is(err, clienterrors.ErrNotFound) {
			return models.User{}, clienterrors.WithUserMessage(err, "This user no longer exists.")
		}
		return models.User{}, err
	}
	return user, nil
}

// Update edits the profile. When photo is non-nil the request goes out as
// multipart with the new profile photo attached; otherwise plain JSON.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput, photo *restclient.FilePart) (models.User, error) {
	if in.Firstname == "" || in.Lastname == "" || in.Email == "" {
		return models.User{}, clienterrors.WithUserMessage(
			fmt.Errorf("update user: %w", clienterrors.ErrValidation), "Name and email are required.")
	}

	var updated models.User
	path := fmt.Sprintf("/users/%d", id)

	var err error
	if photo != nil {
		part := *photo
		part.FieldName = "photo"
		err = s.api.PutMultipart(ctx, path, "user", in, []restclient.FilePart{part}, &updated)
	} else {
		err = s.api.PutJSON(ctx, path, in, &updated)
	}
	if err != nil {
		if errors.Is(err, clienterrors.ErrConflict) {
			return models.User{}, clienterrors.WithUserMessage(err, "Another account already uses this email.")
		}
		return models.User{}, err
	}
	return updated, nil
}

// DeletePhoto removes the profile photo.
func (s *Service) DeletePhoto(ctx context.Context, id int64) error {
	if err := s.api.Delete(ctx, fmt.Sprintf("/users/%d/photo", id)); err != nil {
		if errors.Is(err, clienterrors.ErrNotFound) {
			return clienterrors.WithUserMessage(err, "There is no profile photo to remove.")
		}
		return err
	}
	return nil
}

// PhotoURL builds the direct image URL for a user's profile photo.
func (s *Service) PhotoURL(id int64) string {
	return fmt.Sprintf("%s/users/%d/photo", s.api.BaseURL(), id)
}
