package integrationtests

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"auction-house/internal/admin"
	bidding "auction-house/internal/biddingService"
	"auction-house/internal/hub"
	"auction-house/internal/identity"
	model "auction-house/internal/models"
	"auction-house/internal/server"
	"auction-house/internal/store"

	"github.com/gin-gonic/gin"
)

const (
	adminToken  = "test-admin-token"
	user1Token  = "test-user1-token"
	user2Token  = "test-user2-token"
	sellerToken = "test-seller-token"
)

// TestEnv wires the full stack on the in-memory store for one test.
type TestEnv struct {
	Router  *gin.Engine
	Store   *store.MemoryStore
	Hub     *hub.Hub
	Bidding *bidding.BiddingService
	Admin   *admin.AdminService
}

// SetupTestEnv initializes the router with in-memory collaborators for
// integration testing.
func SetupTestEnv(listings ...model.Listing) *TestEnv {
	gin.SetMode(gin.TestMode)

	memStore := store.NewMemoryStore()
	for _, l := range listings {
		memStore.AddListing(l)
	}

	notifications := hub.NewHub()
	biddingSvc := bidding.NewBiddingService(memStore, notifications)
	adminSvc := admin.NewAdminService(memStore, notifications)

	resolver := identity.NewStaticResolver()
	resolver.Add(adminToken, identity.Identity{UserID: "admin1", Username: "admin", Role: identity.RoleAdmin})
	resolver.Add(user1Token, identity.Identity{UserID: "user1", Username: "alice", Role: identity.RoleBidder})
	resolver.Add(user2Token, identity.Identity{UserID: "user2", Username: "bob", Role: identity.RoleBidder})
	resolver.Add(sellerToken, identity.Identity{UserID: "seller1", Username: "carol", Role: identity.RoleBidder})

	return &TestEnv{
		Router:  server.SetupRouter(biddingSvc, adminSvc, notifications, resolver),
		Store:   memStore,
		Hub:     notifications,
		Bidding: biddingSvc,
		Admin:   adminSvc,
	}
}

// activeListing builds a listing open for another hour.
func activeListing(listingID, sellerID string, startingPrice float64) model.Listing {
	return model.Listing{
		ListingID:     listingID,
		SellerID:      sellerID,
		Title:         listingID + " title",
		Description:   listingID + " description",
		StartingPrice: startingPrice,
		EndTime:       time.Now().UTC().Add(time.Hour),
		Status:        model.ListingActive,
	}
}

// drainEvents collects whatever events the subscriber has buffered so far.
func drainEvents(sub *hub.Subscriber) []hub.Event {
	var events []hub.Event
	for {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				return events
			}
			events = append(events, ev)
		default:
			return events
		}
	}
}

// ExecuteRequestAndParse executes an HTTP request on the router with the
// given bearer token and parses the JSON response envelope.
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url, token string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	var err error
	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	case string:
		reqBody = []byte(v)
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}
	return resp, w
}
