package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/afero"

	"bidmarket-client/internal/client"
	"bidmarket-client/internal/config"
	"bidmarket-client/internal/credstore"
	"bidmarket-client/internal/restclient"
	"bidmarket-client/internal/store"
)

// A small console front-end over the client: restores the session if one is
// persisted, then prints the active listings and, when signed in, the unread
// notification count.
func main() {
	cfg := config.Load()

	creds, err := credstore.NewFileStore(afero.NewOsFs(), cfg.CredentialsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open credential store: %v\n", err)
		os.Exit(1)
	}

	api := restclient.New(restclient.Config{BaseURL: cfg.BaseURL, Timeout: cfg.RequestTimeout})
	app := client.New(api, creds)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()

	restored, err := app.RestoreSession()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to restore session: %v\n", err)
		os.Exit(1)
	}
	if restored {
		fmt.Printf("Signed in as %s\n", app.State().Auth.Session.User.FullName())
	} else {
		fmt.Println("Browsing as guest")
	}

	if err := app.RefreshAuctions(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load auctions: %v\n", err)
		os.Exit(1)
	}

	state := app.State()
	active := store.FilterActiveAuctions(state.Auctions.All, time.Now())
	fmt.Printf("Active auctions (%d):\n", len(active))
	for _, auction := range active {
		fmt.Printf("  #%d %s, from %.2f (%d bidders)\n",
			auction.ID, auction.Title, auction.StartingPrice, auction.BidderCount())
	}

	if restored {
		if err := app.RefreshNotifications(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load notifications: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Unread notifications: %d\n", app.State().Notifications.Unread)
	}
}
