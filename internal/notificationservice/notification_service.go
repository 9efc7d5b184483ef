package notificationservice

import (
	"context"
	"errors"
	"fmt"

	"bidmarket-client/internal/clienterrors"
	"bidmarket-client/internal/models"
	"bidmarket-client/internal/restclient"
)

// Service maps notification operations to the backend endpoints. The client
// only fetches notifications and flips their read flag; creation and
// deletion are server concerns.
type Service struct {
	api *restclient.Client
}

// New creates a notification Service on top of the shared REST client.
func New(api *restclient.Client) *Service {
	return &Service{api: api}
}

// FetchForUser returns all notifications addressed to the user.
func (s *Service) FetchForUser(ctx context.Context, userID int64) ([]models.Notification, error) {
	var notifications []models.Notification
	if err := s.api.GetJSON(ctx, fmt.Sprintf("/users/%d/notifications", userID), &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkAsRead flags a single notification as read and returns the updated
// record.
func (s *Service) MarkAsRead(ctx context.Context, id int64) (models.Notification, error) {
	var updated models.Notification
	if err := s.api.PutJSON(ctx, fmt.Sprintf("/notifications/%d/read", id), nil, &updated); err != nil {
		if errors.Is(err, clienterrors.ErrNotFound) {
			return models.Notification{}, clienterrors.WithUserMessage(err, "This notification no longer exists.")
		}
		return models.Notification{}, err
	}
	return updated, nil
}

// MarkManyAsRead marks each id read with one call per id; the backend has
// no batch endpoint. The first failure aborts the batch and nothing is
// reported as updated. An empty id list is a no-op.
func (s *Service) MarkManyAsRead(ctx context.Context, ids []int64) ([]models.Notification, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	updated := make([]models.Notification, 0, len(ids))
	for _, id := range ids {
		notification, err := s.MarkAsRead(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("mark notifications read, failed at id %d: %w", id, err)
		}
		updated = append(updated, notification)
	}
	return updated, nil
}
