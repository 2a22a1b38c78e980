// Copyright (c) 2026 Ritmus. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package product

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/ritmus/internal/platform/database/schema"
	"github.com/taibuivan/ritmus/internal/platform/dberr"
)

// postgresRepository implements the [Repository] interface using pgx.
type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed product store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

// selectColumns is the column list shared by every read query.
func selectColumns() string {
	t := schema.BillingProduct
	return fmt.Sprintf(`%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s`,
		t.ID, t.DodoProductID, t.Name, t.Description, t.Image, t.Type, t.Status,
		t.Price, t.Currency, t.Discount, t.TaxInclusive,
		t.PaymentFrequencyCount, t.PaymentFrequencyInterval,
		t.SubscriptionPeriodCount, t.SubscriptionPeriodInterval,
		t.TrialPeriodDays, t.FixedPrice,
		t.LicenseKeyEnabled, t.LicenseKeyActivationsLimit, t.Metadata,
		t.CreatedAt, t.UpdatedAt, t.DodoCreatedAt, t.DodoUpdatedAt, t.LastSyncedAt,
	)
}

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(
		&p.ID, &p.DodoProductID, &p.Name, &p.Description, &p.Image, &p.Type, &p.Status,
		&p.Price, &p.Currency, &p.Discount, &p.TaxInclusive,
		&p.PaymentFrequencyCount, &p.PaymentFrequencyInterval,
		&p.SubscriptionPeriodCount, &p.SubscriptionPeriodInterval,
		&p.TrialPeriodDays, &p.FixedPrice,
		&p.LicenseKeyEnabled, &p.LicenseKeyActivationsLimit, &p.Metadata,
		&p.CreatedAt, &p.UpdatedAt, &p.DodoCreatedAt, &p.DodoUpdatedAt, &p.LastSyncedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

/*
List retrieves every mirrored product ordered by creation time.

Parameters:
  - context: context.Context

Returns:
  - []*Product: Full local listing
  - error: Connectivity or scan errors
*/
func (repository *postgresRepository) List(context context.Context) ([]*Product, error) {
	t := schema.BillingProduct
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s`, selectColumns(), t.Table, t.CreatedAt)

	rows, err := repository.pool.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, "product_list")
	}
	defer rows.Close()

	var products []*Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "product_list_scan")
		}
		products = append(products, p)
	}
	return products, dberr.Wrap(rows.Err(), "product_list_rows")
}

// Get retrieves a single product by internal primary key.
func (repository *postgresRepository) Get(context context.Context, id string) (*Product, error) {
	t := schema.BillingProduct
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, selectColumns(), t.Table, t.ID)

	p, err := scanProduct(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "product_get")
	}
	return p, nil
}

// FindByDodoID retrieves a single product by its external catalog key.
func (repository *postgresRepository) FindByDodoID(context context.Context, dodoProductID string) (*Product, error) {
	t := schema.BillingProduct
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, selectColumns(), t.Table, t.DodoProductID)

	p, err := scanProduct(repository.pool.QueryRow(context, query, dodoProductID))
	if err != nil {
		return nil, dberr.Wrap(err, "product_find_by_dodo_id")
	}
	return p, nil
}

/*
Insert persists a new mirror row.

Description: The unique index on the external key rejects a second row
for the same upstream product; that surfaces as a CONFLICT error.
*/
func (repository *postgresRepository) Insert(context context.Context, product *Product) error {
	t := schema.BillingProduct
	query := fmt.Sprintf(`
		INSERT INTO %s (
			%s, %s, %s, %s, %s, %s, %s,
			%s, %s, %s, %s,
			%s, %s, %s, %s, %s, %s,
			%s, %s, %s,
			%s, %s, %s, %s, %s
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17,
			$18, $19, $20,
			$21, $22, $23, $24, $25
		)`,
		t.Table,
		t.ID, t.DodoProductID, t.Name, t.Description, t.Image, t.Type, t.Status,
		t.Price, t.Currency, t.Discount, t.TaxInclusive,
		t.PaymentFrequencyCount, t.PaymentFrequencyInterval,
		t.SubscriptionPeriodCount, t.SubscriptionPeriodInterval,
		t.TrialPeriodDays, t.FixedPrice,
		t.LicenseKeyEnabled, t.LicenseKeyActivationsLimit, t.Metadata,
		t.CreatedAt, t.UpdatedAt, t.DodoCreatedAt, t.DodoUpdatedAt, t.LastSyncedAt,
	)

	_, err := repository.pool.Exec(context, query,
		product.ID, product.DodoProductID, product.Name, product.Description, product.Image, product.Type, product.Status,
		product.Price, product.Currency, product.Discount, product.TaxInclusive,
		product.PaymentFrequencyCount, product.PaymentFrequencyInterval,
		product.SubscriptionPeriodCount, product.SubscriptionPeriodInterval,
		product.TrialPeriodDays, product.FixedPrice,
		product.LicenseKeyEnabled, product.LicenseKeyActivationsLimit, product.Metadata,
		product.CreatedAt, product.UpdatedAt, product.DodoCreatedAt, product.DodoUpdatedAt, product.LastSyncedAt,
	)
	return dberr.Wrap(err, "product_insert")
}

/*
UpdateByDodoID overwrites all mirrored fields of the row matching the
external key, preserving the internal id and CreatedAt.
*/
func (repository *postgresRepository) UpdateByDodoID(context context.Context, product *Product) error {
	t := schema.BillingProduct
	query := fmt.Sprintf(`
		UPDATE %s SET
			%s = $2, %s = $3, %s = $4, %s = $5, %s = $6,
			%s = $7, %s = $8, %s = $9, %s = $10,
			%s = $11, %s = $12, %s = $13, %s = $14,
			%s = $15, %s = $16,
			%s = $17, %s = $18, %s = $19,
			%s = $20, %s = $21, %s = $22, %s = $23
		WHERE %s = $1`,
		t.Table,
		t.Name, t.Description, t.Image, t.Type, t.Status,
		t.Price, t.Currency, t.Discount, t.TaxInclusive,
		t.PaymentFrequencyCount, t.PaymentFrequencyInterval,
		t.SubscriptionPeriodCount, t.SubscriptionPeriodInterval,
		t.TrialPeriodDays, t.FixedPrice,
		t.LicenseKeyEnabled, t.LicenseKeyActivationsLimit, t.Metadata,
		t.UpdatedAt, t.DodoCreatedAt, t.DodoUpdatedAt, t.LastSyncedAt,
		t.DodoProductID,
	)

	tag, err := repository.pool.Exec(context, query,
		product.DodoProductID,
		product.Name, product.Description, product.Image, product.Type, product.Status,
		product.Price, product.Currency, product.Discount, product.TaxInclusive,
		product.PaymentFrequencyCount, product.PaymentFrequencyInterval,
		product.SubscriptionPeriodCount, product.SubscriptionPeriodInterval,
		product.TrialPeriodDays, product.FixedPrice,
		product.LicenseKeyEnabled, product.LicenseKeyActivationsLimit, product.Metadata,
		product.UpdatedAt, product.DodoCreatedAt, product.DodoUpdatedAt, product.LastSyncedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "product_update_by_dodo_id")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

// SetStatus flips a row's status and touch timestamps after a successful
// upstream archive or unarchive.
func (repository *postgresRepository) SetStatus(context context.Context, id string, status Status, at time.Time) error {
	t := schema.BillingProduct
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3, %s = $3 WHERE %s = $1`,
		t.Table, t.Status, t.UpdatedAt, t.LastSyncedAt, t.ID)

	tag, err := repository.pool.Exec(context, query, id, status, at)
	if err != nil {
		return dberr.Wrap(err, "product_set_status")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

// UpdateDetails mirrors an upstream name/description edit.
func (repository *postgresRepository) UpdateDetails(context context.Context, id string, name string, description *string, at time.Time) error {
	t := schema.BillingProduct
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3, %s = $4, %s = $4 WHERE %s = $1`,
		t.Table, t.Name, t.Description, t.UpdatedAt, t.LastSyncedAt, t.ID)

	tag, err := repository.pool.Exec(context, query, id, name, description, at)
	if err != nil {
		return dberr.Wrap(err, "product_update_details")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}
