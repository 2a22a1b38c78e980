// Copyright (c) 2026 Ritmus. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package product manages the local mirror of the Dodo Payments catalog.
//
// # Architecture
//
// Dodo Payments owns the canonical product catalog. This package keeps a
// local, queryable mirror of it in billing.product and exposes the admin
// operations that mutate the catalog (create, archive, unarchive, update).
// Mutations always write through to Dodo first and mirror locally only on
// success; the reconciler (Sync) repairs any drift on demand.
package product

import "time"

// # Classification

// Type classifies how a product is billed.
type Type string

const (
	TypeOneTime      Type = "one_time"
	TypeSubscription Type = "subscription"
	TypeUsageBased   Type = "usage_based"
)

// Status tracks whether a product is sellable.
type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// # Entity

// Product is a local mirror of a Dodo Payments catalog record.
//
// Exactly one row exists per DodoProductID; reconciliation merges on that
// key and never duplicates it. Status is derived from which catalog
// partition (active/archived) the record was last observed in, or from an
// explicit archive/unarchive action.
type Product struct {
	ID            string  `json:"id"`
	DodoProductID string  `json:"dodo_product_id"`
	Name          string  `json:"name"`
	Description   *string `json:"description"`
	Image         *string `json:"image"`
	Type          Type    `json:"type"`
	Status        Status  `json:"status"`

	// Commercial terms, price in minor currency units.
	Price        int    `json:"price"`
	Currency     string `json:"currency"`
	Discount     int    `json:"discount"`
	TaxInclusive bool   `json:"tax_inclusive"`

	// Billing cadence, only set for subscription and usage_based types.
	PaymentFrequencyCount      *int    `json:"payment_frequency_count"`
	PaymentFrequencyInterval   *string `json:"payment_frequency_interval"`
	SubscriptionPeriodCount    *int    `json:"subscription_period_count"`
	SubscriptionPeriodInterval *string `json:"subscription_period_interval"`
	TrialPeriodDays            int     `json:"trial_period_days"`
	FixedPrice                 *int    `json:"fixed_price"`

	LicenseKeyEnabled          bool    `json:"license_key_enabled"`
	LicenseKeyActivationsLimit *int    `json:"license_key_activations_limit"`

	// Metadata is the upstream metadata map serialized as JSON, nil when absent.
	Metadata *string `json:"metadata"`

	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DodoCreatedAt *time.Time `json:"dodo_created_at"`
	DodoUpdatedAt *time.Time `json:"dodo_updated_at"`
	LastSyncedAt  *time.Time `json:"last_synced_at"`
}

// # Inputs

// CreateInput carries the admin form for creating a catalog product.
type CreateInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Price       int     `json:"price"`
	Currency    string  `json:"currency"`
	Type        Type    `json:"type"`

	// Cadence parameters, used for subscription and usage_based types.
	// Intervals are lowercase: day, week, month, year.
	PaymentFrequencyCount      int    `json:"payment_frequency_count"`
	PaymentFrequencyInterval   string `json:"payment_frequency_interval"`
	SubscriptionPeriodCount    int    `json:"subscription_period_count"`
	SubscriptionPeriodInterval string `json:"subscription_period_interval"`
	TrialPeriodDays            int    `json:"trial_period_days"`
}

// UpdateInput carries a partial edit of name, description, or price.
// Nil fields are left unchanged.
type UpdateInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// SyncResult aggregates the outcome of a reconciliation run.
type SyncResult struct {
	TotalSynced int `json:"total_synced"`
	Created     int `json:"created"`
	Updated     int `json:"updated"`
}

const (
	FieldName     = "name"
	FieldPrice    = "price"
	FieldType     = "type"
	FieldCurrency = "currency"
)
