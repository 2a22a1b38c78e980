// Copyright (c) 2026 Ritmus. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package product

import (
	"context"
	"time"
)

// Repository is the persistence contract for the billing.product mirror.
type Repository interface {
	// List returns all local products ordered by creation time.
	List(context context.Context) ([]*Product, error)

	// Get returns a product by its internal primary key.
	Get(context context.Context, id string) (*Product, error)

	// FindByDodoID returns a product by its external catalog key.
	// Returns dberr.ErrNotFound when no row matches.
	FindByDodoID(context context.Context, dodoProductID string) (*Product, error)

	// Insert persists a new mirror row.
	Insert(context context.Context, product *Product) error

	// UpdateByDodoID overwrites all mirrored fields of the row matching
	// the external key, preserving the internal id and CreatedAt.
	UpdateByDodoID(context context.Context, product *Product) error

	// SetStatus updates only the status and touch timestamps of a row.
	SetStatus(context context.Context, id string, status Status, at time.Time) error

	// UpdateDetails updates name and description after an upstream edit.
	UpdateDetails(context context.Context, id string, name string, description *string, at time.Time) error
}
