// Copyright (c) 2026 Ritmus. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account handles user profile management, onboarding, and billing identity.

It provides functionalities for users to view and update their private identity
data, claim a permanent username during onboarding, and expose a filtered public
profile. Administrators can enumerate accounts for support and moderation.

# Architecture

  - Entities: Account, PublicProfile (DTO).
  - Onboarding: Username is NULL at registration and claimed exactly once.
  - Billing: SubscriptionID and the credit balances mirror the payment state.
*/
package account

import (
	"context"
	"time"

	"github.com/taibuivan/ritmus/internal/platform/sec"
)

// # Domain Entities

// Account represents the full private identity of a Ritmus user.
//
// Username stays nil until the user completes onboarding, and once claimed it
// is immutable. The credit balances track how many generations of each tier
// the account may still run.
type Account struct {
	ID             string       `json:"id"`
	Username       *string      `json:"username"`
	Email          string       `json:"email"`
	DisplayName    string       `json:"display_name"`
	Role           sec.UserRole `json:"role"`
	IsVerified     bool         `json:"is_verified"`
	Subscribe      bool         `json:"subscribe"` // Marketing email opt-in
	SubscriptionID string       `json:"subscription_id"`
	CustomerID     *string      `json:"customer_id,omitempty"` // Billing provider customer id
	BasicCredits   int          `json:"basic_credits"`
	ProCredits     int          `json:"pro_credits"`
	PremiumCredits int          `json:"premium_credits"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// UsernameOrEmpty returns the claimed username or "" before onboarding.
func (account *Account) UsernameOrEmpty() string {
	if account.Username == nil {
		return ""
	}
	return *account.Username
}

// PublicProfile is the safety-mapped view of an account for public discovery.
// It omits email, role, and billing state for transport.
type PublicProfile struct {
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// DefaultSubscriptionID is the plan every account starts on.
const DefaultSubscriptionID = "starter"

// # Repository Contract

// Repository defines the persistence contract for user accounts.
type Repository interface {
	/*
		FindByID retrieves an account record by its unique ID.

		Parameters:
		  - context: context.Context
		  - id: string (UUIDv7)

		Returns:
		  - *Account: Loaded account entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*Account, error)

	/*
		FindByUsername retrieves an account by its claimed username.

		Parameters:
		  - context: context.Context
		  - username: string

		Returns:
		  - *Account: Loaded account entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByUsername(context context.Context, username string) (*Account, error)

	/*
		Update modifies the mutable profile fields of an existing account.

		Parameters:
		  - context: context.Context
		  - account: *Account (Hydrated entity with changes)

		Returns:
		  - error: Storage or constraint failures
	*/
	Update(context context.Context, account *Account) error

	/*
		ClaimUsername writes the username onto an account that has none yet.

		Description: The write is conditional on the stored username still being
		NULL, so a double-submit cannot overwrite an earlier claim.

		Parameters:
		  - context: context.Context
		  - id: string
		  - username: string

		Returns:
		  - error: apperr.Conflict when the name is taken or already claimed
	*/
	ClaimUsername(context context.Context, id, username string) error

	/*
		List returns a page of accounts ordered by creation time.

		Parameters:
		  - context: context.Context
		  - limit: int
		  - offset: int

		Returns:
		  - []*Account: Page of accounts
		  - int: Total account count
		  - error: Retrieval failures
	*/
	List(context context.Context, limit, offset int) ([]*Account, int, error)
}
