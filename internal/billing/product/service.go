// Copyright (c) 2026 Ritmus. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package product

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/taibuivan/ritmus/internal/platform/dberr"
	"github.com/taibuivan/ritmus/internal/platform/payments"
	"github.com/taibuivan/ritmus/internal/platform/validate"
	"github.com/taibuivan/ritmus/pkg/pointer"
	"github.com/taibuivan/ritmus/pkg/uuidv7"
)

// # Catalog Abstraction

// CatalogIterator walks one partition of the upstream catalog.
// Satisfied by [*payments.ProductIterator].
type CatalogIterator interface {
	Next(context context.Context) bool
	Product() payments.CatalogProduct
	Err() error
}

// Catalog is the subset of the payments API the product service consumes.
type Catalog interface {
	ListProducts(archived bool) CatalogIterator
	CreateProduct(context context.Context, input payments.CreateProductRequest) (*payments.CatalogProduct, error)
	UpdateProduct(context context.Context, productID string, input payments.UpdateProductRequest) error
	ArchiveProduct(context context.Context, productID string) error
	UnarchiveProduct(context context.Context, productID string) error
}

// dodoCatalog adapts [*payments.Client] to the [Catalog] interface.
type dodoCatalog struct {
	client *payments.Client
}

// NewDodoCatalog wraps the payments client for use by the product service.
func NewDodoCatalog(client *payments.Client) Catalog {
	return &dodoCatalog{client: client}
}

func (catalog *dodoCatalog) ListProducts(archived bool) CatalogIterator {
	return catalog.client.ListProducts(archived)
}

func (catalog *dodoCatalog) CreateProduct(context context.Context, input payments.CreateProductRequest) (*payments.CatalogProduct, error) {
	return catalog.client.CreateProduct(context, input)
}

func (catalog *dodoCatalog) UpdateProduct(context context.Context, productID string, input payments.UpdateProductRequest) error {
	return catalog.client.UpdateProduct(context, productID, input)
}

func (catalog *dodoCatalog) ArchiveProduct(context context.Context, productID string) error {
	return catalog.client.ArchiveProduct(context, productID)
}

func (catalog *dodoCatalog) UnarchiveProduct(context context.Context, productID string) error {
	return catalog.client.UnarchiveProduct(context, productID)
}

// # Service

// Service implements the catalog reconciler and the admin catalog operations.
type Service struct {
	repo    Repository
	catalog Catalog
	logger  *slog.Logger
	now     func() time.Time
}

// NewService creates the product service.
func NewService(repo Repository, catalog Catalog, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		catalog: catalog,
		logger:  logger,
		now:     time.Now,
	}
}

// # Normalization

// untitledName is stored when the upstream record has no name.
// A nameless record must not fail the row.
const untitledName = "Untitled Product"

/*
normalize maps an upstream catalog record into the local mirror shape.

Mapping rules are deterministic:

  - Type follows the price discriminator: recurring_price is a
    subscription, usage_based_price is usage_based, anything else
    (including a missing price object) is one_time.
  - Price comes from the price field, except usage_based records which
    carry it in fixed_price. Missing values fall back to 0.
  - Currency, discount, and the tax flag default to USD, 0, false when
    the price object is absent.
  - Cadence fields are only populated for recurring and usage_based
    prices; trial days only for recurring.
  - Metadata is serialized to JSON; absent metadata stores as null.

The returned product carries no internal id; the caller decides whether
it becomes an insert or an update.
*/
func (service *Service) normalize(record payments.CatalogProduct, status Status) *Product {
	now := service.now()

	local := &Product{
		DodoProductID:              record.ProductID,
		Name:                       record.Name,
		Description:                record.Description,
		Image:                      record.Image,
		Type:                       TypeOneTime,
		Status:                     status,
		Currency:                   "USD",
		LicenseKeyEnabled:          record.LicenseKeyEnabled,
		LicenseKeyActivationsLimit: record.LicenseKeyActivationsLimit,
		UpdatedAt:                  now,
		LastSyncedAt:               &now,
	}

	if local.Name == "" {
		local.Name = untitledName
	}

	if !record.CreatedAt.IsZero() {
		local.DodoCreatedAt = pointer.To(record.CreatedAt)
	}
	if !record.UpdatedAt.IsZero() {
		local.DodoUpdatedAt = pointer.To(record.UpdatedAt)
	}

	if len(record.Metadata) > 0 {
		if raw, err := json.Marshal(record.Metadata); err == nil {
			local.Metadata = pointer.To(string(raw))
		}
	}

	price := record.Price
	if price == nil {
		return local
	}

	if price.Currency != "" {
		local.Currency = price.Currency
	}
	local.Discount = price.Discount
	local.TaxInclusive = price.TaxInclusive

	switch price.Type {
	case payments.PriceTypeRecurring:
		local.Type = TypeSubscription
		local.Price = price.Price
		local.PaymentFrequencyCount = intPtr(price.PaymentFrequencyCount)
		local.PaymentFrequencyInterval = intervalPtr(price.PaymentFrequencyInterval)
		local.SubscriptionPeriodCount = intPtr(price.SubscriptionPeriodCount)
		local.SubscriptionPeriodInterval = intervalPtr(price.SubscriptionPeriodInterval)
		local.TrialPeriodDays = price.TrialPeriodDays

	case payments.PriceTypeUsageBased:
		local.Type = TypeUsageBased
		local.Price = price.FixedPrice
		local.FixedPrice = pointer.To(price.FixedPrice)
		local.PaymentFrequencyCount = intPtr(price.PaymentFrequencyCount)
		local.PaymentFrequencyInterval = intervalPtr(price.PaymentFrequencyInterval)
		local.SubscriptionPeriodCount = intPtr(price.SubscriptionPeriodCount)
		local.SubscriptionPeriodInterval = intervalPtr(price.SubscriptionPeriodInterval)

	default:
		local.Type = TypeOneTime
		local.Price = price.Price
	}

	return local
}

func intPtr(value int) *int {
	return pointer.To(value)
}

func intervalPtr(interval payments.TimeInterval) *string {
	if interval == "" {
		return nil
	}
	return pointer.To(string(interval))
}

// # Reconciliation

/*
Sync reconciles the local mirror against both upstream catalog partitions.

Description: Walks the active partition forcing status=active, then the
archived partition forcing status=archived. Each record is merged on its
external key: update when a local row exists, insert otherwise.

Returns:
  - *SyncResult: {total_synced, created, updated} counters.
  - error: [*SyncError] when a partition listing cannot be retrieved.
    Progress committed before the failure is NOT rolled back.
*/
func (service *Service) Sync(context context.Context) (*SyncResult, error) {
	result := &SyncResult{}

	if err := service.syncPartition(context, false, StatusActive, result); err != nil {
		return nil, err
	}
	if err := service.syncPartition(context, true, StatusArchived, result); err != nil {
		return nil, err
	}

	service.logger.Info("catalog_synced",
		slog.Int("total", result.TotalSynced),
		slog.Int("created", result.Created),
		slog.Int("updated", result.Updated),
	)
	return result, nil
}

func (service *Service) syncPartition(context context.Context, archived bool, status Status, result *SyncResult) error {
	partition := "active"
	if archived {
		partition = "archived"
	}

	iter := service.catalog.ListProducts(archived)
	for iter.Next(context) {
		created, err := service.mergeRecord(context, iter.Product(), status)
		if err != nil {
			return err
		}

		if created {
			result.Created++
		} else {
			result.Updated++
		}
		result.TotalSynced++
	}

	if err := iter.Err(); err != nil {
		return &SyncError{Partition: partition, Cause: err}
	}
	return nil
}

// mergeRecord upserts one upstream record into the mirror and reports
// whether a new row was created. The unique index on the external key is
// the backstop if two syncs race on the same new record.
func (service *Service) mergeRecord(context context.Context, record payments.CatalogProduct, status Status) (bool, error) {
	local := service.normalize(record, status)

	existing, err := service.repo.FindByDodoID(context, record.ProductID)
	switch {
	case err == nil:
		local.ID = existing.ID
		local.CreatedAt = existing.CreatedAt
		return false, service.repo.UpdateByDodoID(context, local)

	case errors.Is(err, dberr.ErrNotFound):
		local.ID = uuidv7.Must()
		local.CreatedAt = service.now()
		return true, service.repo.Insert(context, local)

	default:
		return false, err
	}
}

// # Admin Operations

/*
CreateProduct creates a catalog product upstream, then mirrors it locally.

Description: Builds the type-specific price object, submits it to Dodo
Payments, and inserts a local row keyed by the returned product_id. The
local row is only written after the upstream id is confirmed.

Returns:
  - *Product: The freshly mirrored row.
  - error: [*CreateError] when the upstream call fails (no local write),
    or a validation error for bad input.
*/
func (service *Service) CreateProduct(context context.Context, input CreateInput) (*Product, error) {
	validator := &validate.Validator{}
	validator.Required(FieldName, input.Name).MaxLen(FieldName, input.Name, 200)
	validator.OneOf(FieldType, string(input.Type),
		string(TypeOneTime), string(TypeSubscription), string(TypeUsageBased))
	validator.Custom(FieldPrice, input.Price < 0, "must not be negative")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	request := payments.CreateProductRequest{
		Name:        input.Name,
		Description: input.Description,
		Price:       buildPriceConfig(input),
		TaxCategory: "digital_products",
	}

	record, err := service.catalog.CreateProduct(context, request)
	if err != nil {
		return nil, &CreateError{Cause: err}
	}

	local := service.normalize(*record, StatusActive)
	local.ID = uuidv7.Must()
	local.CreatedAt = service.now()

	if err := service.repo.Insert(context, local); err != nil {
		return nil, err
	}

	service.logger.Info("product_created",
		slog.String("product_id", local.ID),
		slog.String("dodo_product_id", local.DodoProductID),
	)
	return local, nil
}

// buildPriceConfig maps a CreateInput into the type-specific upstream
// price shape. The three shapes are mutually exclusive, keyed by type.
func buildPriceConfig(input CreateInput) *payments.CatalogPrice {
	currency := input.Currency
	if currency == "" {
		currency = "USD"
	}

	frequencyCount := input.PaymentFrequencyCount
	if frequencyCount == 0 {
		frequencyCount = 1
	}
	periodCount := input.SubscriptionPeriodCount
	if periodCount == 0 {
		periodCount = 1
	}

	switch input.Type {
	case TypeSubscription:
		return &payments.CatalogPrice{
			Type:                       payments.PriceTypeRecurring,
			Currency:                   currency,
			Price:                      input.Price,
			PaymentFrequencyCount:      frequencyCount,
			PaymentFrequencyInterval:   payments.ToTimeInterval(input.PaymentFrequencyInterval),
			SubscriptionPeriodCount:    periodCount,
			SubscriptionPeriodInterval: payments.ToTimeInterval(input.SubscriptionPeriodInterval),
			TrialPeriodDays:            input.TrialPeriodDays,
		}

	case TypeUsageBased:
		return &payments.CatalogPrice{
			Type:                       payments.PriceTypeUsageBased,
			Currency:                   currency,
			FixedPrice:                 input.Price,
			PaymentFrequencyCount:      frequencyCount,
			PaymentFrequencyInterval:   payments.ToTimeInterval(input.PaymentFrequencyInterval),
			SubscriptionPeriodCount:    periodCount,
			SubscriptionPeriodInterval: payments.ToTimeInterval(input.SubscriptionPeriodInterval),
		}

	default:
		return &payments.CatalogPrice{
			Type:     payments.PriceTypeOneTime,
			Currency: currency,
			Price:    input.Price,
		}
	}
}

/*
UpdateProduct edits name and description upstream, then mirrors locally.

Returns:
  - *Product: The updated local row.
  - error: dberr.ErrNotFound for an unknown id, or the upstream failure.
*/
func (service *Service) UpdateProduct(context context.Context, id string, input UpdateInput) (*Product, error) {
	existing, err := service.repo.Get(context, id)
	if err != nil {
		return nil, err
	}

	if err := service.catalog.UpdateProduct(context, existing.DodoProductID, payments.UpdateProductRequest{
		Name:        input.Name,
		Description: input.Description,
	}); err != nil {
		return nil, err
	}

	name := existing.Name
	if input.Name != nil {
		name = *input.Name
	}
	description := existing.Description
	if input.Description != nil {
		description = input.Description
	}

	if err := service.repo.UpdateDetails(context, id, name, description, service.now()); err != nil {
		return nil, err
	}

	return service.repo.Get(context, id)
}

/*
ArchiveProduct archives a product upstream, then mirrors the status.

Description: Write-through in two steps. The upstream archive call runs
first; the local row only flips to archived after it succeeds. On upstream
failure the local row is left untouched.

Returns:
  - error: [*ArchiveError] on upstream failure, dberr.ErrNotFound for an
    unknown id.
*/
func (service *Service) ArchiveProduct(context context.Context, id string) error {
	existing, err := service.repo.Get(context, id)
	if err != nil {
		return err
	}

	if err := service.catalog.ArchiveProduct(context, existing.DodoProductID); err != nil {
		return &ArchiveError{DodoProductID: existing.DodoProductID, Cause: err}
	}

	if err := service.repo.SetStatus(context, id, StatusArchived, service.now()); err != nil {
		return err
	}

	service.logger.Info("product_archived", slog.String("product_id", id))
	return nil
}

// UnarchiveProduct restores an archived product, mirroring ArchiveProduct.
func (service *Service) UnarchiveProduct(context context.Context, id string) error {
	existing, err := service.repo.Get(context, id)
	if err != nil {
		return err
	}

	if err := service.catalog.UnarchiveProduct(context, existing.DodoProductID); err != nil {
		return &UnarchiveError{DodoProductID: existing.DodoProductID, Cause: err}
	}

	if err := service.repo.SetStatus(context, id, StatusActive, service.now()); err != nil {
		return err
	}

	service.logger.Info("product_unarchived", slog.String("product_id", id))
	return nil
}

// GetProducts returns the full local listing ordered by creation time.
func (service *Service) GetProducts(context context.Context) ([]*Product, error) {
	return service.repo.List(context)
}

// GetProduct returns one local product by its internal id.
func (service *Service) GetProduct(context context.Context, id string) (*Product, error) {
	return service.repo.Get(context, id)
}
