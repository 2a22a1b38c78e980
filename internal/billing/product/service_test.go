// Copyright (c) 2026 Ritmus. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package product

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/ritmus/internal/platform/dberr"
	"github.com/taibuivan/ritmus/internal/platform/payments"
)

// # Fakes

// sliceIterator serves catalog records from memory.
type sliceIterator struct {
	items []payments.CatalogProduct
	index int
	err   error
}

func (iter *sliceIterator) Next(context.Context) bool {
	if iter.index >= len(iter.items) {
		return false
	}
	iter.index++
	return true
}

func (iter *sliceIterator) Product() payments.CatalogProduct {
	return iter.items[iter.index-1]
}

func (iter *sliceIterator) Err() error { return iter.err }

// fakeCatalog is an in-memory stand-in for the Dodo Payments API.
type fakeCatalog struct {
	active   []payments.CatalogProduct
	archived []payments.CatalogProduct

	listErr      error
	createErr    error
	archiveErr   error
	unarchiveErr error

	archivedIDs   []string
	unarchivedIDs []string
	nextCreateID  string
}

func (catalog *fakeCatalog) ListProducts(archived bool) CatalogIterator {
	items := catalog.active
	if archived {
		items = catalog.archived
	}
	return &sliceIterator{items: items, err: catalog.listErr}
}

func (catalog *fakeCatalog) CreateProduct(_ context.Context, input payments.CreateProductRequest) (*payments.CatalogProduct, error) {
	if catalog.createErr != nil {
		return nil, catalog.createErr
	}
	return &payments.CatalogProduct{
		ProductID:   catalog.nextCreateID,
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
	}, nil
}

func (catalog *fakeCatalog) UpdateProduct(context.Context, string, payments.UpdateProductRequest) error {
	return nil
}

func (catalog *fakeCatalog) ArchiveProduct(_ context.Context, productID string) error {
	if catalog.archiveErr != nil {
		return catalog.archiveErr
	}
	catalog.archivedIDs = append(catalog.archivedIDs, productID)
	return nil
}

func (catalog *fakeCatalog) UnarchiveProduct(_ context.Context, productID string) error {
	if catalog.unarchiveErr != nil {
		return catalog.unarchiveErr
	}
	catalog.unarchivedIDs = append(catalog.unarchivedIDs, productID)
	return nil
}

// memoryRepository implements Repository over a map keyed by internal id.
type memoryRepository struct {
	rows map[string]*Product
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{rows: make(map[string]*Product)}
}

func (repo *memoryRepository) List(context.Context) ([]*Product, error) {
	var products []*Product
	for _, p := range repo.rows {
		clone := *p
		products = append(products, &clone)
	}
	sort.Slice(products, func(i, j int) bool {
		return products[i].CreatedAt.Before(products[j].CreatedAt)
	})
	return products, nil
}

func (repo *memoryRepository) Get(_ context.Context, id string) (*Product, error) {
	p, ok := repo.rows[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (repo *memoryRepository) FindByDodoID(_ context.Context, dodoProductID string) (*Product, error) {
	for _, p := range repo.rows {
		if p.DodoProductID == dodoProductID {
			clone := *p
			return &clone, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (repo *memoryRepository) Insert(_ context.Context, product *Product) error {
	for _, p := range repo.rows {
		if p.DodoProductID == product.DodoProductID {
			return errors.New("unique violation on dodoproductid")
		}
	}
	clone := *product
	repo.rows[product.ID] = &clone
	return nil
}

func (repo *memoryRepository) UpdateByDodoID(_ context.Context, product *Product) error {
	for id, p := range repo.rows {
		if p.DodoProductID == product.DodoProductID {
			clone := *product
			clone.ID = p.ID
			clone.CreatedAt = p.CreatedAt
			repo.rows[id] = &clone
			return nil
		}
	}
	return dberr.ErrNotFound
}

func (repo *memoryRepository) SetStatus(_ context.Context, id string, status Status, at time.Time) error {
	p, ok := repo.rows[id]
	if !ok {
		return dberr.ErrNotFound
	}
	p.Status = status
	p.UpdatedAt = at
	p.LastSyncedAt = &at
	return nil
}

func (repo *memoryRepository) UpdateDetails(_ context.Context, id string, name string, description *string, at time.Time) error {
	p, ok := repo.rows[id]
	if !ok {
		return dberr.ErrNotFound
	}
	p.Name = name
	p.Description = description
	p.UpdatedAt = at
	p.LastSyncedAt = &at
	return nil
}

func newTestService(catalog *fakeCatalog) (*Service, *memoryRepository) {
	repo := newMemoryRepository()
	service := NewService(repo, catalog, slog.Default())
	return service, repo
}

func strPtr(s string) *string { return &s }

// # Sync

func TestSyncCreatesOneTimeProduct(t *testing.T) {
	catalog := &fakeCatalog{
		active: []payments.CatalogProduct{{
			ProductID: "p1",
			Name:      "Starter Pack",
			Price:     &payments.CatalogPrice{Type: payments.PriceTypeOneTime, Price: 999, Currency: "USD"},
		}},
	}
	service, repo := newTestService(catalog)

	result, err := service.Sync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, &SyncResult{TotalSynced: 1, Created: 1, Updated: 0}, result)

	row, err := repo.FindByDodoID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, TypeOneTime, row.Type)
	assert.Equal(t, 999, row.Price)
	assert.Equal(t, StatusActive, row.Status)
	assert.Equal(t, "USD", row.Currency)
}

func TestSyncIsIdempotent(t *testing.T) {
	catalog := &fakeCatalog{
		active: []payments.CatalogProduct{
			{ProductID: "p1", Name: "Starter Pack"},
			{ProductID: "p2", Name: "Pro Pack"},
		},
		archived: []payments.CatalogProduct{
			{ProductID: "p3", Name: "Legacy Pack"},
		},
	}
	service, repo := newTestService(catalog)

	first, err := service.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &SyncResult{TotalSynced: 3, Created: 3, Updated: 0}, first)

	// Nothing changed upstream; every record is re-observed as an update.
	second, err := service.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &SyncResult{TotalSynced: 3, Created: 0, Updated: 3}, second)

	assert.Len(t, repo.rows, 3)
}

func TestSyncNeverDuplicatesMergeKey(t *testing.T) {
	catalog := &fakeCatalog{
		active: []payments.CatalogProduct{{ProductID: "p1", Name: "Starter Pack"}},
	}
	service, repo := newTestService(catalog)

	for run := 0; run < 4; run++ {
		_, err := service.Sync(context.Background())
		require.NoError(t, err)
	}

	count := 0
	for _, p := range repo.rows {
		if p.DodoProductID == "p1" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestSyncTransitionsActiveToArchived(t *testing.T) {
	catalog := &fakeCatalog{
		active: []payments.CatalogProduct{{ProductID: "p1", Name: "Starter Pack"}},
	}
	service, repo := newTestService(catalog)

	_, err := service.Sync(context.Background())
	require.NoError(t, err)

	before, err := repo.FindByDodoID(context.Background(), "p1")
	require.NoError(t, err)
	require.Equal(t, StatusActive, before.Status)

	// The record moves to the archived partition before the next run.
	catalog.active = nil
	catalog.archived = []payments.CatalogProduct{{ProductID: "p1", Name: "Starter Pack"}}

	_, err = service.Sync(context.Background())
	require.NoError(t, err)

	after, err := repo.FindByDodoID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, StatusArchived, after.Status)
	assert.Equal(t, before.ID, after.ID)
	assert.Len(t, repo.rows, 1)
}

func TestSyncFailureKeepsPartialProgress(t *testing.T) {
	catalog := &fakeCatalog{
		active:  []payments.CatalogProduct{{ProductID: "p1", Name: "Starter Pack"}},
		listErr: errors.New("upstream 503"),
	}
	service, repo := newTestService(catalog)

	_, err := service.Sync(context.Background())
	require.Error(t, err)

	var syncErr *SyncError
	require.True(t, errors.As(err, &syncErr))
	assert.Equal(t, "active", syncErr.Partition)

	// The iterator yielded its records before reporting the page failure,
	// and those merges stay committed.
	assert.Len(t, repo.rows, 1)
}

// # Normalization

func TestNormalizeDefaultsWithoutPriceObject(t *testing.T) {
	catalog := &fakeCatalog{
		active: []payments.CatalogProduct{{ProductID: "p1"}},
	}
	service, repo := newTestService(catalog)

	_, err := service.Sync(context.Background())
	require.NoError(t, err)

	row, err := repo.FindByDodoID(context.Background(), "p1")
	require.NoError(t, err)

	assert.Equal(t, untitledName, row.Name)
	assert.Equal(t, TypeOneTime, row.Type)
	assert.Equal(t, 0, row.Price)
	assert.Equal(t, "USD", row.Currency)
	assert.Equal(t, 0, row.Discount)
	assert.False(t, row.TaxInclusive)
	assert.Nil(t, row.PaymentFrequencyInterval)
	assert.Nil(t, row.Metadata)
}

func TestNormalizeRecurringPrice(t *testing.T) {
	catalog := &fakeCatalog{
		active: []payments.CatalogProduct{{
			ProductID: "p1",
			Name:      "Pro",
			Price: &payments.CatalogPrice{
				Type:                       payments.PriceTypeRecurring,
				Currency:                   "EUR",
				Price:                      1999,
				Discount:                   10,
				TaxInclusive:               true,
				PaymentFrequencyCount:      1,
				PaymentFrequencyInterval:   payments.IntervalMonth,
				SubscriptionPeriodCount:    12,
				SubscriptionPeriodInterval: payments.IntervalMonth,
				TrialPeriodDays:            14,
			},
			Metadata: map[string]string{"tier": "pro"},
		}},
	}
	service, repo := newTestService(catalog)

	_, err := service.Sync(context.Background())
	require.NoError(t, err)

	row, err := repo.FindByDodoID(context.Background(), "p1")
	require.NoError(t, err)

	assert.Equal(t, TypeSubscription, row.Type)
	assert.Equal(t, 1999, row.Price)
	assert.Equal(t, "EUR", row.Currency)
	assert.Equal(t, 10, row.Discount)
	assert.True(t, row.TaxInclusive)
	require.NotNil(t, row.PaymentFrequencyInterval)
	assert.Equal(t, "Month", *row.PaymentFrequencyInterval)
	assert.Equal(t, 14, row.TrialPeriodDays)
	require.NotNil(t, row.Metadata)
	assert.JSONEq(t, `{"tier":"pro"}`, *row.Metadata)
}

func TestNormalizeUsageBasedPriceUsesFixedPrice(t *testing.T) {
	catalog := &fakeCatalog{
		active: []payments.CatalogProduct{{
			ProductID: "p1",
			Name:      "Metered",
			Price: &payments.CatalogPrice{
				Type:       payments.PriceTypeUsageBased,
				Currency:   "USD",
				FixedPrice: 500,
			},
		}},
	}
	service, repo := newTestService(catalog)

	_, err := service.Sync(context.Background())
	require.NoError(t, err)

	row, err := repo.FindByDodoID(context.Background(), "p1")
	require.NoError(t, err)

	assert.Equal(t, TypeUsageBased, row.Type)
	assert.Equal(t, 500, row.Price)
	require.NotNil(t, row.FixedPrice)
	assert.Equal(t, 500, *row.FixedPrice)

	// Usage based prices never carry a trial.
	assert.Equal(t, 0, row.TrialPeriodDays)
}

// # Admin Operations

func TestCreateProductMirrorsExternalID(t *testing.T) {
	catalog := &fakeCatalog{nextCreateID: "prod_xyz"}
	service, repo := newTestService(catalog)

	created, err := service.CreateProduct(context.Background(), CreateInput{
		Name:                     "Pro",
		Price:                    1999,
		Type:                     TypeSubscription,
		PaymentFrequencyInterval: "month",
	})
	require.NoError(t, err)

	assert.Equal(t, "prod_xyz", created.DodoProductID)
	assert.Equal(t, StatusActive, created.Status)

	row, err := repo.FindByDodoID(context.Background(), "prod_xyz")
	require.NoError(t, err)
	assert.Equal(t, created.ID, row.ID)
	assert.Len(t, repo.rows, 1)
}

func TestCreateProductUpstreamFailureWritesNothing(t *testing.T) {
	catalog := &fakeCatalog{createErr: errors.New("upstream 500")}
	service, repo := newTestService(catalog)

	_, err := service.CreateProduct(context.Background(), CreateInput{
		Name:  "Pro",
		Price: 1999,
		Type:  TypeOneTime,
	})
	require.Error(t, err)

	var createErr *CreateError
	assert.True(t, errors.As(err, &createErr))
	assert.Empty(t, repo.rows)
}

func TestCreateProductValidatesInput(t *testing.T) {
	service, repo := newTestService(&fakeCatalog{})

	_, err := service.CreateProduct(context.Background(), CreateInput{
		Name:  "",
		Price: -5,
		Type:  Type("lifetime"),
	})
	require.Error(t, err)
	assert.Empty(t, repo.rows)
}

func TestArchiveProductWritesThrough(t *testing.T) {
	catalog := &fakeCatalog{
		active: []payments.CatalogProduct{{ProductID: "p1", Name: "Starter Pack"}},
	}
	service, repo := newTestService(catalog)

	_, err := service.Sync(context.Background())
	require.NoError(t, err)
	row, err := repo.FindByDodoID(context.Background(), "p1")
	require.NoError(t, err)

	require.NoError(t, service.ArchiveProduct(context.Background(), row.ID))

	assert.Equal(t, []string{"p1"}, catalog.archivedIDs)
	after, err := repo.Get(context.Background(), row.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusArchived, after.Status)
}

func TestArchiveProductUpstreamFailureLeavesRowUntouched(t *testing.T) {
	catalog := &fakeCatalog{
		active: []payments.CatalogProduct{{ProductID: "p1", Name: "Starter Pack"}},
	}
	service, repo := newTestService(catalog)

	_, err := service.Sync(context.Background())
	require.NoError(t, err)
	row, err := repo.FindByDodoID(context.Background(), "p1")
	require.NoError(t, err)

	catalog.archiveErr = errors.New("upstream 500")
	err = service.ArchiveProduct(context.Background(), row.ID)
	require.Error(t, err)

	var archiveErr *ArchiveError
	require.True(t, errors.As(err, &archiveErr))
	assert.Equal(t, "p1", archiveErr.DodoProductID)

	after, err := repo.Get(context.Background(), row.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, after.Status)
}

func TestUnarchiveProductRestoresStatus(t *testing.T) {
	catalog := &fakeCatalog{
		archived: []payments.CatalogProduct{{ProductID: "p1", Name: "Legacy Pack"}},
	}
	service, repo := newTestService(catalog)

	_, err := service.Sync(context.Background())
	require.NoError(t, err)
	row, err := repo.FindByDodoID(context.Background(), "p1")
	require.NoError(t, err)
	require.Equal(t, StatusArchived, row.Status)

	require.NoError(t, service.UnarchiveProduct(context.Background(), row.ID))

	assert.Equal(t, []string{"p1"}, catalog.unarchivedIDs)
	after, err := repo.Get(context.Background(), row.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, after.Status)
}

func TestUpdateProductMergesPartialEdit(t *testing.T) {
	catalog := &fakeCatalog{
		active: []payments.CatalogProduct{{
			ProductID:   "p1",
			Name:        "Starter Pack",
			Description: strPtr("Original description"),
		}},
	}
	service, repo := newTestService(catalog)

	_, err := service.Sync(context.Background())
	require.NoError(t, err)
	row, err := repo.FindByDodoID(context.Background(), "p1")
	require.NoError(t, err)

	updated, err := service.UpdateProduct(context.Background(), row.ID, UpdateInput{
		Name: strPtr("Starter Pack v2"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Starter Pack v2", updated.Name)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "Original description", *updated.Description)
}

func TestOperationsOnUnknownIDReturnNotFound(t *testing.T) {
	service, _ := newTestService(&fakeCatalog{})

	_, err := service.GetProduct(context.Background(), "missing")
	assert.ErrorIs(t, err, dberr.ErrNotFound)

	err = service.ArchiveProduct(context.Background(), "missing")
	assert.ErrorIs(t, err, dberr.ErrNotFound)

	err = service.UnarchiveProduct(context.Background(), "missing")
	assert.ErrorIs(t, err, dberr.ErrNotFound)
}
