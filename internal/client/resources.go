package client

import (
	"context"
	"encoding/json"
	"fmt"

	"bidmarket-client/internal/auctionservice"
	"bidmarket-client/internal/clienterrors"
	"bidmarket-client/internal/credstore"
	"bidmarket-client/internal/models"
	"bidmarket-client/internal/restclient"
	"bidmarket-client/internal/store"
	"bidmarket-client/internal/userservice"
	"bidmarket-client/utils"
)

// Fetch cycles are sequence-guarded: each refresh registers with the store
// before the network call and attaches the returned sequence to the result,
// so a slower, older response can never overwrite a newer one.

// RefreshAuctions reloads the marketplace auction list.
func (c *Client) RefreshAuctions(ctx context.Context) error {
	seq := c.store.BeginFetch(store.SliceAuctions)

	auctions, err := c.auctions.FetchAll(ctx)
	if err != nil {
		c.store.Dispatch(store.AuctionsFetchFailed{Seq: seq, Message: clienterrors.UserMessage(err)})
		utils.Error("auction list fetch failed", map[string]any{"error": err.Error()})
		return err
	}

	c.store.Dispatch(store.AuctionsFetched{Seq: seq, Auctions: auctions})
	return nil
}

// RefreshMyAuctions reloads the signed-in seller's own listings.
func (c *Client) RefreshMyAuctions(ctx context.Context) error {
	user, err := c.sessionUser()
	if err != nil {
		return err
	}
	seq := c.store.BeginFetch(store.SliceMyAuctions)

	auctions, err := c.auctions.FetchBySeller(ctx, user.ID)
	if err != nil {
		c.store.Dispatch(store.MyAuctionsFetchFailed{Seq: seq, Message: clienterrors.UserMessage(err)})
		utils.Error("own auction list fetch failed", map[string]any{"user_id": user.ID, "error": err.Error()})
		return err
	}

	c.store.Dispatch(store.MyAuctionsFetched{Seq: seq, Auctions: auctions})
	return nil
}

// CreateAuction publishes a listing and prepends the server's response to
// the local lists; no re-fetch is forced.
func (c *Client) CreateAuction(ctx context.Context, in auctionservice.Input, photos []restclient.FilePart) error {
	user, err := c.sessionUser()
	if err != nil {
		return err
	}

	created, err := c.auctions.Create(ctx, in, photos, user.ID)
	if err != nil {
		return err
	}

	c.store.Dispatch(store.AuctionCreated{Auction: created})
	utils.Info("auction created", map[string]any{"auction_id": created.ID, "seller_id": user.ID})
	return nil
}

// UpdateAuction edits a listing and replaces it locally by id.
func (c *Client) UpdateAuction(ctx context.Context, id int64, in auctionservice.Input, photos []restclient.FilePart, removedPhotoIDs []int64) error {
	if _, err := c.sessionUser(); err != nil {
		return err
	}

	updated, err := c.auctions.Update(ctx, id, in, photos, removedPhotoIDs)
	if err != nil {
		return err
	}

	c.store.Dispatch(store.AuctionUpdated{Auction: updated})
	return nil
}

// DeleteAuction removes a listing and filters it out locally.
func (c *Client) DeleteAuction(ctx context.Context, id int64) error {
	if _, err := c.sessionUser(); err != nil {
		return err
	}

	if err := c.auctions.Delete(ctx, id); err != nil {
		return err
	}

	c.store.Dispatch(store.AuctionDeleted{ID: id})
	return nil
}

// RefreshProfile reloads the signed-in user's record and refreshes the
// persisted snapshot.
func (c *Client) RefreshProfile(ctx context.Context) error {
	user, err := c.sessionUser()
	if err != nil {
		return err
	}
	c.store.Dispatch(store.ProfileStarted{})

	fresh, err := c.users.Get(ctx, user.ID)
	if err != nil {
		c.store.Dispatch(store.ProfileFailed{Message: clienterrors.UserMessage(err)})
		return err
	}

	return c.applyProfile(fresh)
}

// UpdateProfile edits the profile, optionally replacing the photo.
func (c *Client) UpdateProfile(ctx context.Context, in userservice.UpdateInput, photo *restclient.FilePart) error {
	user, err := c.sessionUser()
	if err != nil {
		return err
	}
	c.store.Dispatch(store.ProfileStarted{})

	updated, err := c.users.Update(ctx, user.ID, in, photo)
	if err != nil {
		c.store.Dispatch(store.ProfileFailed{Message: clienterrors.UserMessage(err)})
		return err
	}

	return c.applyProfile(updated)
}

// DeleteProfilePhoto removes the profile photo.
func (c *Client) DeleteProfilePhoto(ctx context.Context) error {
	user, err := c.sessionUser()
	if err != nil {
		return err
	}

	if err := c.users.DeletePhoto(ctx, user.ID); err != nil {
		return err
	}

	user.PhotoID = nil
	return c.applyProfile(user)
}

// applyProfile dispatches the fresh record and re-persists the user
// snapshot so the next RestoreSession sees current data.
func (c *Client) applyProfile(user models.User) error {
	c.store.Dispatch(store.ProfileLoaded{User: user})

	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("client: encode user snapshot: %w", err)
	}
	return c.creds.Set(credstore.KeyUser, string(raw))
}

// RefreshNotifications reloads the notification list for the signed-in
// user.
func (c *Client) RefreshNotifications(ctx context.Context) error {
	user, err := c.sessionUser()
	if err != nil {
		return err
	}
	seq := c.store.BeginFetch(store.SliceNotifications)

	items, err := c.notifications.FetchForUser(ctx, user.ID)
	if err != nil {
		c.store.Dispatch(store.NotificationsFetchFailed{Seq: seq, Message: clienterrors.UserMessage(err)})
		utils.Error("notification fetch failed", map[string]any{"user_id": user.ID, "error": err.Error()})
		return err
	}

	c.store.Dispatch(store.NotificationsFetched{Seq: seq, Items: items})
	return nil
}

// MarkNotificationRead flips one notification to read.
func (c *Client) MarkNotificationRead(ctx context.Context, id int64) error {
	updated, err := c.notifications.MarkAsRead(ctx, id)
	if err != nil {
		return err
	}
	c.store.Dispatch(store.NotificationsRead{Items: []models.Notification{updated}})
	return nil
}

// MarkNotificationsRead flips a batch of notifications to read, one call
// per id. On the first failure nothing is patched locally; the list stays
// as fetched. An empty id list is a no-op.
func (c *Client) MarkNotificationsRead(ctx context.Context, ids []int64) error {
	updated, err := c.notifications.MarkManyAsRead(ctx, ids)
	if err != nil {
		return err
	}
	if len(updated) == 0 {
		return nil
	}
	c.store.Dispatch(store.NotificationsRead{Items: updated})
	return nil
}
