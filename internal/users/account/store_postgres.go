// Copyright (c) 2026 Ritmus. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account (Postgres) implements the storage layer for account meta-data.

# Schema Table Mapping
  - users.account: Master identity, onboarding, and billing state.
*/
package account

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/ritmus/internal/platform/apperr"
	"github.com/taibuivan/ritmus/internal/platform/database/schema"
	"github.com/taibuivan/ritmus/internal/platform/dberr"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new Postgres implementation for account management.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func selectColumns() string {
	t := schema.UsersAccount
	return strings.Join([]string{
		t.ID, t.Username, t.Email, t.DisplayName, t.Role, t.IsVerified,
		t.Subscribe, t.SubscriptionID, t.CustomerID,
		t.BasicCredits, t.ProCredits, t.PremiumCredits,
		t.CreatedAt, t.UpdatedAt,
	}, ", ")
}

func scanAccount(row pgx.Row) (*Account, error) {
	account := &Account{}
	err := row.Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.DisplayName,
		&account.Role,
		&account.IsVerified,
		&account.Subscribe,
		&account.SubscriptionID,
		&account.CustomerID,
		&account.BasicCredits,
		&account.ProCredits,
		&account.PremiumCredits,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return account, nil
}

/*
FindByID retrieves an account record from the users.account table.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *Account: Hydrated identity entity
  - error: apperr.NotFound or database execution failure
*/
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Account, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1 AND %s IS NULL`,
		selectColumns(),
		schema.UsersAccount.Table,
		schema.UsersAccount.ID, schema.UsersAccount.DeletedAt,
	)

	account, err := scanAccount(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "find_account_by_id")
	}

	return account, nil
}

/*
FindByUsername retrieves an account by its claimed username.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - *Account: Hydrated identity entity
  - error: apperr.NotFound or database execution failure
*/
func (repository *PostgresRepository) FindByUsername(context context.Context, username string) (*Account, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1 AND %s IS NULL`,
		selectColumns(),
		schema.UsersAccount.Table,
		schema.UsersAccount.Username, schema.UsersAccount.DeletedAt,
	)

	account, err := scanAccount(repository.pool.QueryRow(context, query, username))
	if err != nil {
		return nil, dberr.Wrap(err, "find_account_by_username")
	}

	return account, nil
}

/*
Update modifies the mutable profile metadata of an account.

Description: This method specifically syncs the DisplayName and Subscribe
fields, while refreshing the updatedat timestamp.

Parameters:
  - context: context.Context
  - account: *Account

Returns:
  - error: Update failures
*/
func (repository *PostgresRepository) Update(context context.Context, account *Account) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4
		WHERE %s = $1 AND %s IS NULL`,
		schema.UsersAccount.Table,
		schema.UsersAccount.DisplayName, schema.UsersAccount.Subscribe, schema.UsersAccount.UpdatedAt,
		schema.UsersAccount.ID, schema.UsersAccount.DeletedAt,
	)

	tag, err := repository.pool.Exec(context, query,
		account.ID,
		account.DisplayName,
		account.Subscribe,
		time.Now(),
	)
	if err != nil {
		return dberr.Wrap(err, "update_account")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Account")
	}

	return nil
}

/*
ClaimUsername writes the username onto an account whose username is still NULL.

Description: The WHERE clause guards against double claims. The unique index
on the username column turns a concurrent claim of the same handle into a
Conflict error via [dberr.Wrap].

Parameters:
  - context: context.Context
  - id: string
  - username: string

Returns:
  - error: apperr.Conflict, apperr.NotFound, or execution failures
*/
func (repository *PostgresRepository) ClaimUsername(context context.Context, id, username string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3
		WHERE %s = $1 AND %s IS NULL AND %s IS NULL`,
		schema.UsersAccount.Table,
		schema.UsersAccount.Username, schema.UsersAccount.UpdatedAt,
		schema.UsersAccount.ID, schema.UsersAccount.Username, schema.UsersAccount.DeletedAt,
	)

	tag, err := repository.pool.Exec(context, query, id, username, time.Now())
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("Username is already taken")
		}
		return dberr.Wrap(err, "claim_username")
	}
	if tag.RowsAffected() == 0 {
		return apperr.Conflict("Username has already been claimed")
	}

	return nil
}

/*
List returns a page of accounts ordered by creation time, newest first.

Parameters:
  - context: context.Context
  - limit: int
  - offset: int

Returns:
  - []*Account: Page of accounts
  - int: Total account count
  - error: Retrieval failures
*/
func (repository *PostgresRepository) List(context context.Context, limit, offset int) ([]*Account, int, error) {
	countQuery := fmt.Sprintf(`SELECT count(*) FROM %s WHERE %s IS NULL`,
		schema.UsersAccount.Table, schema.UsersAccount.DeletedAt)

	var total int
	if err := repository.pool.QueryRow(context, countQuery).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_accounts")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s IS NULL
		ORDER BY %s DESC
		LIMIT $1 OFFSET $2`,
		selectColumns(),
		schema.UsersAccount.Table,
		schema.UsersAccount.DeletedAt,
		schema.UsersAccount.CreatedAt,
	)

	rows, err := repository.pool.Query(context, query, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_accounts")
	}
	defer rows.Close()

	var accounts []*Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_account")
		}
		accounts = append(accounts, account)
	}

	return accounts, total, nil
}
