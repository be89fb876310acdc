package identity

import (
	"fmt"
	"sync"

	"auction-house/internal/auctionerrors"
)

// ContextKey is where transport middleware stores the resolved Identity.
const ContextKey = "identity"

// Role is the coarse capability class of a caller.
type Role string

const (
	RoleBidder Role = "bidder"
	RoleAdmin  Role = "admin"
)

// Identity is the resolved caller: a stable user id plus its role. The
// bidding core never sees tokens, passwords or sessions.
type Identity struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// IsAdmin reports whether the identity carries the admin capability.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// Resolver turns an opaque caller token into an Identity.
type Resolver interface {
	Resolve(token string) (Identity, error)
}

// StaticResolver is a fixed token table seeded at startup. It stands in
// for the external identity provider at its interface boundary.
type StaticResolver struct {
	mu     sync.RWMutex
	tokens map[string]Identity
}

// NewStaticResolver creates an empty resolver
func NewStaticResolver() *StaticResolver {
	return &StaticResolver{tokens: make(map[string]Identity)}
}

// Add registers a token for an identity
func (r *StaticResolver) Add(token string, id Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token] = id
}

// Resolve looks up the identity for a token
func (r *StaticResolver) Resolve(token string) (Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.tokens[token]
	if !ok {
		return Identity{}, fmt.Errorf("resolve token: %w", auctionerrors.ErrUnknownToken)
	}
	return id, nil
}
