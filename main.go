package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auction-house/internal/admin"
	bidding "auction-house/internal/biddingService"
	"auction-house/internal/config"
	"auction-house/internal/hub"
	"auction-house/internal/identity"
	model "auction-house/internal/models"
	"auction-house/internal/server"
	"auction-house/internal/store"
	"auction-house/internal/sweeper"
	"auction-house/utils"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		utils.Fatal("cannot load config", map[string]any{"error": err.Error()})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	auctionStore, err := newStore(ctx, cfg.Database)
	if err != nil {
		utils.Fatal("cannot initialize store", map[string]any{"error": err.Error()})
	}

	notifications := hub.NewHub()
	resolver := seedIdentities(cfg.Auth)

	biddingSvc := bidding.NewBiddingService(auctionStore, notifications)
	adminSvc := admin.NewAdminService(auctionStore, notifications)

	sweep := sweeper.New(auctionStore, notifications, cfg.Sweeper.Interval())
	go sweep.Run(ctx)

	router := server.SetupRouter(biddingSvc, adminSvc, notifications, resolver)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		utils.Info("starting auction server", map[string]any{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Fatal("server failed", map[string]any{"error": err.Error()})
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Error("server shutdown failed", map[string]any{"error": err.Error()})
	}
	utils.Info("server stopped", nil)
}

// newStore selects the store implementation from configuration. The
// in-memory store is seeded with demo listings; postgres is assumed to be
// migrated out of band (store.Schema).
func newStore(ctx context.Context, cfg config.DatabaseConfig) (store.AuctionStore, error) {
	switch cfg.Driver {
	case "", "memory":
		memStore := store.NewMemoryStore()
		prepopulateListings(memStore)
		return memStore, nil
	case "postgres":
		connStr := fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName)
		pool, err := pgxpool.New(ctx, connStr)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		return store.NewPostgresStore(pool), nil
	default:
		return nil, fmt.Errorf("unknown database driver: %s", cfg.Driver)
	}
}

// prepopulateListings adds sample listings to the in-memory store
func prepopulateListings(s *store.MemoryStore) {
	now := time.Now().UTC()
	listings := []model.Listing{
		{ListingID: "listing1", SellerID: "seller1", Title: "title1", Description: "description1", StartingPrice: 100, EndTime: now.Add(30 * time.Minute), Status: model.ListingActive},
		{ListingID: "listing2", SellerID: "seller1", Title: "title2", Description: "description2", StartingPrice: 200, EndTime: now.Add(time.Hour), Status: model.ListingActive},
		{ListingID: "listing3", SellerID: "seller2", Title: "title3", Description: "description3", StartingPrice: 150, EndTime: now.Add(2 * time.Hour), Status: model.ListingActive},
	}

	for _, listing := range listings {
		s.AddListing(listing)
	}
}

// seedIdentities builds the static token table: the admin from config plus
// demo bidders, mirroring the external identity provider at its boundary.
func seedIdentities(cfg config.AuthConfig) *identity.StaticResolver {
	resolver := identity.NewStaticResolver()
	resolver.Add(cfg.AdminToken, identity.Identity{UserID: "admin1", Username: "admin", Role: identity.RoleAdmin})
	resolver.Add("token-user1", identity.Identity{UserID: "user1", Username: "alice", Role: identity.RoleBidder})
	resolver.Add("token-user2", identity.Identity{UserID: "user2", Username: "bob", Role: identity.RoleBidder})
	resolver.Add("token-seller1", identity.Identity{UserID: "seller1", Username: "carol", Role: identity.RoleBidder})
	return resolver
}
