// Package client is the synchronization layer between the UI, the backend
// services and the local state: it runs the fetch/mutate cycles, keeps the
// credential store and the state store in step, and owns the session
// lifecycle.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bidmarket-client/internal/auctionservice"
	"bidmarket-client/internal/authservice"
	"bidmarket-client/internal/clienterrors"
	"bidmarket-client/internal/credstore"
	"bidmarket-client/internal/models"
	"bidmarket-client/internal/notificationservice"
	"bidmarket-client/internal/restclient"
	"bidmarket-client/internal/store"
	"bidmarket-client/internal/userservice"
	"bidmarket-client/utils"
)

// AuthService is the account lifecycle surface consumed by the client.
type AuthService interface {
	Login(ctx context.Context, email, password string) (authservice.LoginResult, error)
	Register(ctx context.Context, in authservice.RegisterInput) (models.User, error)
	VerifyAccount(ctx context.Context, email, code, password string) (authservice.LoginResult, error)
	ResendCode(ctx context.Context, email string) error
	RequestPasswordReset(ctx context.Context, cin int64, email string) error
	UpdatePassword(ctx context.Context, email, code, newPassword string) error
}

// UserService is the profile surface consumed by the client.
type UserService interface {
	Get(ctx context.Context, id int64) (models.User, error)
	Update(ctx context.Context, id int64, in userservice.UpdateInput, photo *restclient.FilePart) (models.User, error)
	DeletePhoto(ctx context.Context, id int64) error
}

// AuctionService is the listing surface consumed by the client.
type AuctionService interface {
	FetchAll(ctx context.Context) ([]models.Auction, error)
	FetchByID(ctx context.Context, id int64) (models.Auction, error)
	FetchBySeller(ctx context.Context, sellerID int64) ([]models.Auction, error)
	Create(ctx context.Context, in auctionservice.Input, photos []restclient.FilePart, sellerID int64) (models.Auction, error)
	Update(ctx context.Context, id int64, in auctionservice.Input, photos []restclient.FilePart, removedPhotoIDs []int64) (models.Auction, error)
	Delete(ctx context.Context, id int64) error
}

// NotificationService is the notification surface consumed by the client.
type NotificationService interface {
	FetchForUser(ctx context.Context, userID int64) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, id int64) (models.Notification, error)
	MarkManyAsRead(ctx context.Context, ids []int64) ([]models.Notification, error)
}

// TokenSink receives the bearer token for outgoing requests.
type TokenSink interface {
	SetToken(token string)
	ClearToken()
}

// Client binds the resource services, the credential store and the state
// store. It is constructed explicitly and passed to the UI layer.
type Client struct {
	store         *store.Store
	creds         credstore.Store
	transport     TokenSink
	auth          AuthService
	users         UserService
	auctions      AuctionService
	notifications NotificationService
	now           func() time.Time
}

// Deps lists everything a Client needs. Tests substitute mocks here.
type Deps struct {
	Store         *store.Store
	Creds         credstore.Store
	Transport     TokenSink
	Auth          AuthService
	Users         UserService
	Auctions      AuctionService
	Notifications NotificationService
}

// New wires a Client over the real services sharing one REST transport.
func New(api *restclient.Client, creds credstore.Store) *Client {
	return NewWithDeps(Deps{
		Store:         store.New(),
		Creds:         creds,
		Transport:     api,
		Auth:          authservice.New(api),
		Users:         userservice.New(api),
		Auctions:      auctionservice.New(api),
		Notifications: notificationservice.New(api),
	})
}

// NewWithDeps builds a Client from explicit dependencies.
func NewWithDeps(deps Deps) *Client {
	if deps.Store == nil {
		deps.Store = store.New()
	}
	return &Client{
		store:         deps.Store,
		creds:         deps.Creds,
		transport:     deps.Transport,
		auth:          deps.Auth,
		users:         deps.Users,
		auctions:      deps.Auctions,
		notifications: deps.Notifications,
		now:           time.Now,
	}
}

// State returns a snapshot of the client state for rendering.
func (c *Client) State() store.State {
	return c.store.State()
}

// --- session lifecycle ---

// RestoreSession loads the persisted token and user at startup. It returns
// true when a usable session was restored; an absent or expired token means
// unauthenticated.
func (c *Client) RestoreSession() (bool, error) {
	token, err := c.creds.Get(credstore.KeyToken)
	if errors.Is(err, credstore.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	rawUser, err := c.creds.Get(credstore.KeyUser)
	if err != nil {
		return false, err
	}
	var user models.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		return false, fmt.Errorf("client: corrupt persisted user: %w", err)
	}

	session := sessionFromToken(token, user)
	if !session.ExpiresAt.IsZero() && !session.ExpiresAt.After(c.now()) {
		utils.Info("persisted session expired, clearing", map[string]any{"user_id": user.ID})
		if err := c.creds.Delete(credstore.KeyToken, credstore.KeyUser); err != nil {
			return false, err
		}
		return false, nil
	}

	c.transport.SetToken(token)
	c.store.Dispatch(store.LoggedIn{Session: session})
	return true, nil
}

// Login authenticates and persists the session. An account still pending
// verification stores the credentials for the verification flow and surfaces
// ErrNeedsVerification instead of starting a session.
func (c *Client) Login(ctx context.Context, email, password string) error {
	c.store.Dispatch(store.AuthStarted{})

	result, err := c.auth.Login(ctx, email, password)
	if errors.Is(err, clienterrors.ErrNeedsVerification) {
		if persistErr := c.persistPendingVerification(email, password); persistErr != nil {
			return persistErr
		}
		c.store.Dispatch(store.VerificationPending{Email: email})
		return err
	}
	if err != nil {
		c.store.Dispatch(store.AuthFailed{Message: clienterrors.UserMessage(err)})
		return err
	}

	return c.startSession(result)
}

// Register creates a pending account and stores the email and password so
// a successful verification can auto-login.
func (c *Client) Register(ctx context.Context, in authservice.RegisterInput) error {
	c.store.Dispatch(store.AuthStarted{})

	if _, err := c.auth.Register(ctx, in); err != nil {
		c.store.Dispatch(store.AuthFailed{Message: clienterrors.UserMessage(err)})
		return err
	}

	if err := c.persistPendingVerification(in.Email, in.Password); err != nil {
		return err
	}
	c.store.Dispatch(store.VerificationPending{Email: in.Email})
	return nil
}

// VerifyAccount forwards the user-entered code to the server. A correct
// code activates the account and auto-logs in with the pending password; a
// wrong code leaves the session unauthenticated and the pending state
// intact.
func (c *Client) VerifyAccount(ctx context.Context, code string) error {
	email, err := c.creds.Get(credstore.KeyPendingVerificationEmail)
	if err != nil {
		return fmt.Errorf("client: %w: no verification in progress", clienterrors.ErrNoSession)
	}
	password, err := c.creds.Get(credstore.KeyPendingRegistrationPassword)
	if err != nil {
		return fmt.Errorf("client: %w: no verification in progress", clienterrors.ErrNoSession)
	}

	result, err := c.auth.VerifyAccount(ctx, email, code, password)
	if err != nil {
		c.store.Dispatch(store.AuthFailed{Message: clienterrors.UserMessage(err)})
		return err
	}

	if err := c.creds.Delete(credstore.KeyPendingVerificationEmail, credstore.KeyPendingRegistrationPassword); err != nil {
		return err
	}
	return c.startSession(result)
}

// ResendCode asks for a fresh verification code for the pending account.
func (c *Client) ResendCode(ctx context.Context) error {
	email, err := c.creds.Get(credstore.KeyPendingVerificationEmail)
	if err != nil {
		return fmt.Errorf("client: %w: no verification in progress", clienterrors.ErrNoSession)
	}
	return c.auth.ResendCode(ctx, email)
}

// RequestPasswordReset starts the reset flow and remembers which email it
// was requested for.
func (c *Client) RequestPasswordReset(ctx context.Context, cin int64, email string) error {
	if err := c.auth.RequestPasswordReset(ctx, cin, email); err != nil {
		return err
	}
	return c.creds.Set(credstore.KeyResetPasswordEmail, email)
}

// CompletePasswordReset sends the user-entered reset code and the new
// password to the server, which validates the code.
func (c *Client) CompletePasswordReset(ctx context.Context, code, newPassword string) error {
	email, err := c.creds.Get(credstore.KeyResetPasswordEmail)
	if err != nil {
		return fmt.Errorf("client: %w: no password reset in progress", clienterrors.ErrNoSession)
	}
	if err := c.auth.UpdatePassword(ctx, email, code, newPassword); err != nil {
		return err
	}
	return c.creds.Delete(credstore.KeyResetPasswordEmail)
}

// Logout clears every persisted key, drops the bearer token and resets the
// state store.
func (c *Client) Logout() error {
	if err := c.creds.Clear(); err != nil {
		return err
	}
	c.transport.ClearToken()
	c.store.Dispatch(store.LoggedOut{})
	return nil
}

func (c *Client) startSession(result authservice.LoginResult) error {
	session := sessionFromToken(result.Token, result.User)

	if err := c.creds.Set(credstore.KeyToken, session.Token); err != nil {
		return err
	}
	rawUser, err := json.Marshal(session.User)
	if err != nil {
		return fmt.Errorf("client: encode user snapshot: %w", err)
	}
	if err := c.creds.Set(credstore.KeyUser, string(rawUser)); err != nil {
		return err
	}

	c.transport.SetToken(session.Token)
	c.store.Dispatch(store.LoggedIn{Session: session})
	utils.Info("session started", map[string]any{"user_id": session.User.ID})
	return nil
}

func (c *Client) persistPendingVerification(email, password string) error {
	if err := c.creds.Set(credstore.KeyPendingVerificationEmail, email); err != nil {
		return err
	}
	return c.creds.Set(credstore.KeyPendingRegistrationPassword, password)
}

// sessionUser returns the signed-in user or ErrNoSession.
func (c *Client) sessionUser() (models.User, error) {
	state := c.store.State()
	if !state.Auth.Session.Authenticated() {
		return models.User{}, fmt.Errorf("client: %w", clienterrors.ErrNoSession)
	}
	return state.Auth.Session.User, nil
}
