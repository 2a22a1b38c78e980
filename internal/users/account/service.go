// Copyright (c) 2026 Ritmus. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/taibuivan/ritmus/internal/platform/apperr"
	"github.com/taibuivan/ritmus/internal/platform/validate"
)

// # Service Layer

// Service orchestrates business logic for user accounts and onboarding.
//
// It ensures that profile updates and username claims follow established
// business constraints.
type Service struct {
	accountRepository Repository
	logger            *slog.Logger
}

// NewService constructs a new [Service] with its repository dependency.
func NewService(accountRepo Repository, logger *slog.Logger) *Service {
	return &Service{
		accountRepository: accountRepo,
		logger:            logger,
	}
}

// # Profile Management

/*
Me retrieves the full private identity of the authenticated user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *Account: The hydrated account
  - error: Not found or execution failures
*/
func (service *Service) Me(context context.Context, userID string) (*Account, error) {
	account, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return nil, fmt.Errorf("account_service_me_failed: %w", err)
	}
	return account, nil
}

// UpdateProfileInput defines the mutable subset of account fields.
type UpdateProfileInput struct {
	DisplayName *string
	Subscribe   *bool
}

/*
UpdateProfile applies a partial set of changes to a user's account metadata.

Description: Fetches the existing account state, overrides provided fields, and
synchronizes the change to persistent storage.

Parameters:
  - context: context.Context
  - userID: string
  - input: UpdateProfileInput

Returns:
  - *Account: The updated account
  - error: Update or storage failures
*/
func (service *Service) UpdateProfile(context context.Context, userID string, input UpdateProfileInput) (*Account, error) {
	account, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return nil, fmt.Errorf("account_service_update_lookup_failed: %w", err)
	}

	// Apply delta updates
	if input.DisplayName != nil {
		account.DisplayName = *input.DisplayName
	}
	if input.Subscribe != nil {
		account.Subscribe = *input.Subscribe
	}

	// Persist changes
	if err := service.accountRepository.Update(context, account); err != nil {
		return nil, fmt.Errorf("account_service_update_failed: %w", err)
	}

	service.logger.Info("user_profile_updated", slog.String("user_id", userID))

	return account, nil
}

// # Onboarding

// usernamePattern restricts claimed usernames to URL-safe handle characters.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateUsername checks a candidate username against the handle rules.
//
// A username must be 3 to 32 characters of [a-zA-Z0-9_-], and the reserved
// handle "admin" is rejected regardless of case.
func ValidateUsername(username string) error {
	v := &validate.Validator{}
	v.Required("username", username).
		MinLen("username", username, 3).
		MaxLen("username", username, 32).
		Custom("username", !usernamePattern.MatchString(username),
			"Username may only contain letters, numbers, underscores and hyphens").
		Custom("username", strings.EqualFold(username, "admin"),
			"This username is reserved")
	return v.Err()
}

/*
ClaimUsername completes onboarding by writing a permanent username.

Description: Validates the candidate handle, rejects accounts that already
claimed one, and persists the claim. The database unique constraint is the
backstop for concurrent claims of the same handle.

Parameters:
  - context: context.Context
  - userID: string
  - username: string

Returns:
  - *Account: The account with the claimed username
  - error: Validation, apperr.Conflict, or storage failures
*/
func (service *Service) ClaimUsername(context context.Context, userID, username string) (*Account, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}

	account, err := service.accountRepository.FindByID(context, userID)
	if err != nil {
		return nil, fmt.Errorf("account_service_claim_lookup_failed: %w", err)
	}

	// Business: A claimed username is immutable
	if account.Username != nil {
		return nil, apperr.Conflict("Username has already been claimed")
	}

	if err := service.accountRepository.ClaimUsername(context, userID, username); err != nil {
		return nil, err
	}

	account.Username = &username

	service.logger.Info("username_claimed",
		slog.String("user_id", userID),
		slog.String("username", username),
	)

	return account, nil
}

// # Public Discovery

/*
PublicProfile resolves the filtered public view of an account by username.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - *PublicProfile: Public profile data
  - error: apperr.NotFound or retrieval failures
*/
func (service *Service) PublicProfile(context context.Context, username string) (*PublicProfile, error) {
	account, err := service.accountRepository.FindByUsername(context, username)
	if err != nil {
		return nil, err
	}

	return &PublicProfile{
		Username:    account.UsernameOrEmpty(),
		DisplayName: account.DisplayName,
		CreatedAt:   account.CreatedAt,
	}, nil
}

// # Administration

/*
ListAccounts returns a page of all accounts for administrative review.

Parameters:
  - context: context.Context
  - limit: int
  - offset: int

Returns:
  - []*Account: Page of accounts
  - int: Total account count
  - error: Retrieval failures
*/
func (service *Service) ListAccounts(context context.Context, limit, offset int) ([]*Account, int, error) {
	accounts, total, err := service.accountRepository.List(context, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("account_service_list_failed: %w", err)
	}
	return accounts, total, nil
}
