// Copyright (c) 2026 Ritmus. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient points a Client at a local httptest server.
func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient("test-key", EnvironmentTest, slog.Default())
	client.baseURL = server.URL
	return client, server
}

func TestEnvironmentBaseURL(t *testing.T) {
	assert.Equal(t, "https://test.dodopayments.com", EnvironmentTest.BaseURL())
	assert.Equal(t, "https://live.dodopayments.com", EnvironmentLive.BaseURL())

	// Unknown environments must never hit production.
	assert.Equal(t, "https://test.dodopayments.com", Environment("staging").BaseURL())
}

func TestListProductsPaginates(t *testing.T) {
	// Three pages worth of records at pageSize 2.
	records := []CatalogProduct{
		{ProductID: "p1", Name: "Starter Pack"},
		{ProductID: "p2", Name: "Pro Pack"},
		{ProductID: "p3", Name: "Studio Pack"},
		{ProductID: "p4", Name: "Label Pack"},
		{ProductID: "p5", Name: "Legacy Pack"},
	}

	var requestedPages []string
	handler := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		require.Equal(t, "/products", request.URL.Path)
		require.Equal(t, "Bearer test-key", request.Header.Get("Authorization"))
		require.Equal(t, "true", request.URL.Query().Get("archived"))

		pageNumber := request.URL.Query().Get("page_number")
		requestedPages = append(requestedPages, pageNumber)

		var page int
		fmt.Sscanf(pageNumber, "%d", &page)
		start := page * 2
		end := start + 2
		if start > len(records) {
			start = len(records)
		}
		if end > len(records) {
			end = len(records)
		}

		json.NewEncoder(writer).Encode(productListPage{Items: records[start:end]})
	})

	client, _ := newTestClient(t, handler)

	iter := client.ListProducts(true)
	iter.pageSize = 2

	var seen []string
	ctx := context.Background()
	for iter.Next(ctx) {
		seen = append(seen, iter.Product().ProductID)
	}

	require.NoError(t, iter.Err())
	assert.Equal(t, []string{"p1", "p2", "p3", "p4", "p5"}, seen)

	// Final short page (1 record) stops the iteration without an extra fetch.
	assert.Equal(t, []string{"0", "1", "2"}, requestedPages)
}

func TestListProductsEmptyPartition(t *testing.T) {
	handler := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		json.NewEncoder(writer).Encode(productListPage{})
	})
	client, _ := newTestClient(t, handler)

	iter := client.ListProducts(false)
	assert.False(t, iter.Next(context.Background()))
	assert.NoError(t, iter.Err())
}

func TestListProductsUpstreamFailure(t *testing.T) {
	handler := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		http.Error(writer, `{"error":"invalid api key"}`, http.StatusUnauthorized)
	})
	client, _ := newTestClient(t, handler)

	iter := client.ListProducts(false)
	assert.False(t, iter.Next(context.Background()))

	err := iter.Err()
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestCreateProduct(t *testing.T) {
	handler := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		require.Equal(t, http.MethodPost, request.Method)
		require.Equal(t, "/products", request.URL.Path)
		require.Equal(t, "application/json", request.Header.Get("Content-Type"))

		var payload CreateProductRequest
		require.NoError(t, json.NewDecoder(request.Body).Decode(&payload))
		assert.Equal(t, "Pro", payload.Name)
		require.NotNil(t, payload.Price)
		assert.Equal(t, PriceTypeRecurring, payload.Price.Type)

		json.NewEncoder(writer).Encode(CatalogProduct{
			ProductID: "prod_abc123",
			Name:      payload.Name,
			Price:     payload.Price,
		})
	})
	client, _ := newTestClient(t, handler)

	created, err := client.CreateProduct(context.Background(), CreateProductRequest{
		Name: "Pro",
		Price: &CatalogPrice{
			Type:                       PriceTypeRecurring,
			Currency:                   "USD",
			Price:                      1999,
			PaymentFrequencyCount:      1,
			PaymentFrequencyInterval:   IntervalMonth,
			SubscriptionPeriodCount:    1,
			SubscriptionPeriodInterval: IntervalMonth,
		},
		TaxCategory: "digital_products",
	})

	require.NoError(t, err)
	assert.Equal(t, "prod_abc123", created.ProductID)
}

func TestArchiveProduct(t *testing.T) {
	handler := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		require.Equal(t, http.MethodDelete, request.Method)
		require.Equal(t, "/products/prod_abc123", request.URL.Path)
		writer.WriteHeader(http.StatusOK)
	})
	client, _ := newTestClient(t, handler)

	require.NoError(t, client.ArchiveProduct(context.Background(), "prod_abc123"))
}

func TestUnarchiveProductFailure(t *testing.T) {
	handler := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		require.Equal(t, http.MethodPost, request.Method)
		require.Equal(t, "/products/prod_abc123/unarchive", request.URL.Path)
		http.Error(writer, `{"error":"not archived"}`, http.StatusConflict)
	})
	client, _ := newTestClient(t, handler)

	err := client.UnarchiveProduct(context.Background(), "prod_abc123")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
}

func TestGetOrCreateCustomer(t *testing.T) {
	t.Run("existing customer is reused", func(t *testing.T) {
		handler := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			require.Equal(t, "/customers", request.URL.Path)
			require.Equal(t, http.MethodGet, request.Method)
			require.Equal(t, "ana@example.com", request.URL.Query().Get("email"))

			json.NewEncoder(writer).Encode(customerListPage{Items: []Customer{
				{CustomerID: "cus_1", Email: "ana@example.com", Name: "Ana"},
			}})
		})
		client, _ := newTestClient(t, handler)

		id, err := client.GetOrCreateCustomer(context.Background(), "ana@example.com", "Ana")
		require.NoError(t, err)
		assert.Equal(t, "cus_1", id)
	})

	t.Run("missing customer is created", func(t *testing.T) {
		handler := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			switch request.Method {
			case http.MethodGet:
				json.NewEncoder(writer).Encode(customerListPage{})
			case http.MethodPost:
				var payload createCustomerRequest
				require.NoError(t, json.NewDecoder(request.Body).Decode(&payload))
				json.NewEncoder(writer).Encode(Customer{
					CustomerID: "cus_new",
					Email:      payload.Email,
					Name:       payload.Name,
				})
			}
		})
		client, _ := newTestClient(t, handler)

		id, err := client.GetOrCreateCustomer(context.Background(), "ben@example.com", "Ben")
		require.NoError(t, err)
		assert.Equal(t, "cus_new", id)
	})
}
