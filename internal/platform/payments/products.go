// Copyright (c) 2026 Ritmus. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package payments

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// defaultPageSize is the page size requested from the catalog listing endpoint.
const defaultPageSize = 100

// # Wire Types

// TimeInterval is the billing interval unit used by recurring prices.
// The upstream API expects capitalized values.
type TimeInterval string

const (
	IntervalDay   TimeInterval = "Day"
	IntervalWeek  TimeInterval = "Week"
	IntervalMonth TimeInterval = "Month"
	IntervalYear  TimeInterval = "Year"
)

// ToTimeInterval maps a lowercase interval name to its wire form.
// Unknown values default to monthly.
func ToTimeInterval(interval string) TimeInterval {
	switch interval {
	case "day":
		return IntervalDay
	case "week":
		return IntervalWeek
	case "year":
		return IntervalYear
	case "month":
		return IntervalMonth
	default:
		return IntervalMonth
	}
}

// Price discriminator values.
const (
	PriceTypeOneTime    = "one_time_price"
	PriceTypeRecurring  = "recurring_price"
	PriceTypeUsageBased = "usage_based_price"
)

// CatalogPrice is the discriminated price union attached to a catalog product.
//
// The Type field selects the shape: one_time_price carries Price only,
// recurring_price adds frequency/period/trial fields, usage_based_price
// uses FixedPrice instead of Price.
type CatalogPrice struct {
	Type                       string       `json:"type"`
	Currency                   string       `json:"currency"`
	Price                      int          `json:"price,omitempty"`
	FixedPrice                 int          `json:"fixed_price,omitempty"`
	Discount                   int          `json:"discount"`
	TaxInclusive               bool         `json:"tax_inclusive,omitempty"`
	PurchasingPowerParity      bool         `json:"purchasing_power_parity"`
	PaymentFrequencyCount      int          `json:"payment_frequency_count,omitempty"`
	PaymentFrequencyInterval   TimeInterval `json:"payment_frequency_interval,omitempty"`
	SubscriptionPeriodCount    int          `json:"subscription_period_count,omitempty"`
	SubscriptionPeriodInterval TimeInterval `json:"subscription_period_interval,omitempty"`
	TrialPeriodDays            int          `json:"trial_period_days,omitempty"`
}

// CatalogProduct is a product record as returned by the upstream catalog.
type CatalogProduct struct {
	ProductID                  string            `json:"product_id"`
	Name                       string            `json:"name"`
	Description                *string           `json:"description,omitempty"`
	Image                      *string           `json:"image,omitempty"`
	Price                      *CatalogPrice     `json:"price,omitempty"`
	LicenseKeyEnabled          bool              `json:"license_key_enabled,omitempty"`
	LicenseKeyActivationsLimit *int              `json:"license_key_activations_limit,omitempty"`
	Metadata                   map[string]string `json:"metadata,omitempty"`
	TaxCategory                string            `json:"tax_category,omitempty"`
	CreatedAt                  time.Time         `json:"created_at"`
	UpdatedAt                  time.Time         `json:"updated_at"`
}

// CreateProductRequest is the payload for creating a catalog product.
type CreateProductRequest struct {
	Name        string        `json:"name"`
	Description *string       `json:"description,omitempty"`
	Price       *CatalogPrice `json:"price"`
	TaxCategory string        `json:"tax_category"`
}

// UpdateProductRequest is the payload for patching a catalog product.
// Nil fields are left unchanged upstream.
type UpdateProductRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type productListPage struct {
	Items []CatalogProduct `json:"items"`
}

// # Listing

/*
ListProducts returns a lazy iterator over one catalog partition.

The upstream paginates its listing; the iterator fetches pages on demand so
callers consume records one at a time without holding the full partition
in memory.

Parameters:
  - archived: selects the archived partition when true, active otherwise.

Usage:

	iter := client.ListProducts(true)
	for iter.Next(ctx) {
		record := iter.Product()
		...
	}
	if err := iter.Err(); err != nil {
		...
	}
*/
func (client *Client) ListProducts(archived bool) *ProductIterator {
	return &ProductIterator{
		client:   client,
		archived: archived,
		pageSize: defaultPageSize,
	}
}

// ProductIterator walks a paginated catalog partition, modeled after
// database row cursors.
type ProductIterator struct {
	client   *Client
	archived bool
	pageSize int

	page     []CatalogProduct
	index    int
	pageNum  int
	done     bool
	err      error
}

// Next advances the iterator, fetching the next page when the current one
// is exhausted. It returns false when the partition ends or an error occurs.
func (iter *ProductIterator) Next(ctx context.Context) bool {
	if iter.err != nil {
		return false
	}

	if iter.index < len(iter.page) {
		iter.index++
		return true
	}

	if iter.done {
		return false
	}

	query := url.Values{}
	query.Set("archived", strconv.FormatBool(iter.archived))
	query.Set("page_size", strconv.Itoa(iter.pageSize))
	query.Set("page_number", strconv.Itoa(iter.pageNum))

	var page productListPage
	if err := iter.client.do(ctx, http.MethodGet, "/products", query, nil, &page); err != nil {
		iter.err = fmt.Errorf("payments: failed to list products (archived=%t): %w", iter.archived, err)
		return false
	}

	iter.pageNum++
	iter.page = page.Items
	iter.index = 0

	// A short page means the partition is exhausted.
	if len(page.Items) < iter.pageSize {
		iter.done = true
	}
	if len(page.Items) == 0 {
		return false
	}

	iter.index = 1
	return true
}

// Product returns the record the iterator currently points at.
// Only valid after a call to Next that returned true.
func (iter *ProductIterator) Product() CatalogProduct {
	return iter.page[iter.index-1]
}

// Err returns the first error encountered while iterating, if any.
func (iter *ProductIterator) Err() error {
	return iter.err
}

// # Mutations

// CreateProduct creates a product in the upstream catalog and returns the
// canonical record, including its assigned product_id.
func (client *Client) CreateProduct(ctx context.Context, input CreateProductRequest) (*CatalogProduct, error) {
	var created CatalogProduct
	if err := client.do(ctx, http.MethodPost, "/products", nil, input, &created); err != nil {
		return nil, fmt.Errorf("payments: failed to create product: %w", err)
	}
	return &created, nil
}

// UpdateProduct patches name and description on an upstream product.
func (client *Client) UpdateProduct(ctx context.Context, productID string, input UpdateProductRequest) error {
	path := "/products/" + url.PathEscape(productID)
	if err := client.do(ctx, http.MethodPatch, path, nil, input, nil); err != nil {
		return fmt.Errorf("payments: failed to update product %s: %w", productID, err)
	}
	return nil
}

// ArchiveProduct archives an upstream product. Archiving an already archived
// product is a no-op success upstream.
func (client *Client) ArchiveProduct(ctx context.Context, productID string) error {
	path := "/products/" + url.PathEscape(productID)
	if err := client.do(ctx, http.MethodDelete, path, nil, nil, nil); err != nil {
		return fmt.Errorf("payments: failed to archive product %s: %w", productID, err)
	}
	return nil
}

// UnarchiveProduct restores an archived upstream product.
func (client *Client) UnarchiveProduct(ctx context.Context, productID string) error {
	path := "/products/" + url.PathEscape(productID) + "/unarchive"
	if err := client.do(ctx, http.MethodPost, path, nil, nil, nil); err != nil {
		return fmt.Errorf("payments: failed to unarchive product %s: %w", productID, err)
	}
	return nil
}
