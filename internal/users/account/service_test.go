// Copyright (c) 2026 Ritmus. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/ritmus/internal/platform/apperr"
	"github.com/taibuivan/ritmus/internal/platform/sec"
)

// memoryRepository is an in-memory [Repository] for service tests.
type memoryRepository struct {
	accounts map[string]*Account
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{accounts: make(map[string]*Account)}
}

func (repo *memoryRepository) FindByID(_ context.Context, id string) (*Account, error) {
	account, ok := repo.accounts[id]
	if !ok {
		return nil, apperr.NotFound("Account")
	}
	clone := *account
	return &clone, nil
}

func (repo *memoryRepository) FindByUsername(_ context.Context, username string) (*Account, error) {
	for _, account := range repo.accounts {
		if account.Username != nil && *account.Username == username {
			clone := *account
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("Account")
}

func (repo *memoryRepository) Update(_ context.Context, account *Account) error {
	stored, ok := repo.accounts[account.ID]
	if !ok {
		return apperr.NotFound("Account")
	}
	stored.DisplayName = account.DisplayName
	stored.Subscribe = account.Subscribe
	stored.UpdatedAt = time.Now()
	return nil
}

func (repo *memoryRepository) ClaimUsername(_ context.Context, id, username string) error {
	for _, account := range repo.accounts {
		if account.Username != nil && *account.Username == username {
			return apperr.Conflict("Username is already taken")
		}
	}
	stored, ok := repo.accounts[id]
	if !ok {
		return apperr.NotFound("Account")
	}
	if stored.Username != nil {
		return apperr.Conflict("Username has already been claimed")
	}
	stored.Username = &username
	return nil
}

func (repo *memoryRepository) List(_ context.Context, limit, offset int) ([]*Account, int, error) {
	all := make([]*Account, 0, len(repo.accounts))
	for _, account := range repo.accounts {
		clone := *account
		all = append(all, &clone)
	}
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func newTestService() (*Service, *memoryRepository) {
	repo := newMemoryRepository()
	service := NewService(repo, slog.Default())
	return service, repo
}

func seedAccount(repo *memoryRepository, id string, username *string) *Account {
	account := &Account{
		ID:             id,
		Username:       username,
		Email:          id + "@example.com",
		DisplayName:    "Test User",
		Role:           sec.RoleUser,
		SubscriptionID: DefaultSubscriptionID,
		CreatedAt:      time.Now().Add(-time.Hour),
	}
	repo.accounts[id] = account
	return account
}

func strPtr(s string) *string { return &s }

func TestValidateUsername(t *testing.T) {
	cases := []struct {
		name     string
		username string
		valid    bool
	}{
		{"valid simple", "beatmaker", true},
		{"valid with separators", "lo-fi_99", true},
		{"minimum length", "abc", true},
		{"maximum length", "abcdefghijklmnopqrstuvwxyz012345", true},
		{"too short", "ab", false},
		{"too long", "abcdefghijklmnopqrstuvwxyz0123456", false},
		{"empty", "", false},
		{"spaces", "beat maker", false},
		{"unicode", "bëatmaker", false},
		{"dots", "beat.maker", false},
		{"reserved", "admin", false},
		{"reserved mixed case", "AdMiN", false},
	}

	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			err := ValidateUsername(testCase.username)
			if testCase.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestClaimUsername(t *testing.T) {
	service, repo := newTestService()
	seedAccount(repo, "user-1", nil)

	account, err := service.ClaimUsername(context.Background(), "user-1", "producer-one")
	require.NoError(t, err)
	require.NotNil(t, account.Username)
	assert.Equal(t, "producer-one", *account.Username)

	// The claim is persisted, not just echoed.
	stored, err := service.Me(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, stored.Username)
	assert.Equal(t, "producer-one", *stored.Username)
}

func TestClaimUsernameIsImmutable(t *testing.T) {
	service, repo := newTestService()
	seedAccount(repo, "user-1", strPtr("original"))

	_, err := service.ClaimUsername(context.Background(), "user-1", "newname")
	require.Error(t, err)

	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, 409, appErr.HTTPStatus)

	stored, err := service.Me(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "original", *stored.Username)
}

func TestClaimUsernameTaken(t *testing.T) {
	service, repo := newTestService()
	seedAccount(repo, "user-1", strPtr("producer-one"))
	seedAccount(repo, "user-2", nil)

	_, err := service.ClaimUsername(context.Background(), "user-2", "producer-one")
	require.Error(t, err)

	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, 409, appErr.HTTPStatus)
}

func TestClaimUsernameRejectsInvalidWithoutLookup(t *testing.T) {
	service, _ := newTestService()

	_, err := service.ClaimUsername(context.Background(), "missing-user", "x")
	require.Error(t, err)

	// Validation fires before the repository, so the missing account is
	// irrelevant and the caller sees a 400, not a 404.
	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, 400, appErr.HTTPStatus)
}

func TestUpdateProfilePartial(t *testing.T) {
	service, repo := newTestService()
	seedAccount(repo, "user-1", strPtr("producer-one"))

	updated, err := service.UpdateProfile(context.Background(), "user-1", UpdateProfileInput{
		DisplayName: strPtr("New Name"),
	})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.DisplayName)
	assert.False(t, updated.Subscribe)

	subscribe := true
	updated, err = service.UpdateProfile(context.Background(), "user-1", UpdateProfileInput{
		Subscribe: &subscribe,
	})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.DisplayName, "unset fields stay untouched")
	assert.True(t, updated.Subscribe)
}

func TestPublicProfileFiltersPrivateFields(t *testing.T) {
	service, repo := newTestService()
	account := seedAccount(repo, "user-1", strPtr("producer-one"))

	profile, err := service.PublicProfile(context.Background(), "producer-one")
	require.NoError(t, err)

	assert.Equal(t, "producer-one", profile.Username)
	assert.Equal(t, account.DisplayName, profile.DisplayName)
	assert.WithinDuration(t, account.CreatedAt, profile.CreatedAt, time.Second)
}

func TestPublicProfileNotFound(t *testing.T) {
	service, _ := newTestService()

	_, err := service.PublicProfile(context.Background(), "nobody")
	require.Error(t, err)
	assert.True(t, apperr.IsAppError(err))
}

func TestListAccounts(t *testing.T) {
	service, repo := newTestService()
	seedAccount(repo, "user-1", strPtr("one"))
	seedAccount(repo, "user-2", strPtr("two"))
	seedAccount(repo, "user-3", nil)

	accounts, total, err := service.ListAccounts(context.Background(), 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, accounts, 2)
}
