// Copyright (c) 2026 Ritmus. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package payments

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Customer is a billing customer record in the upstream system.
type Customer struct {
	CustomerID string `json:"customer_id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
}

type customerListPage struct {
	Items []Customer `json:"items"`
}

type createCustomerRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// FindCustomerByEmail looks up a customer by email address.
// It returns an empty string (and no error) when no customer matches.
func (client *Client) FindCustomerByEmail(ctx context.Context, email string) (string, error) {
	query := url.Values{}
	query.Set("email", email)

	var page customerListPage
	if err := client.do(ctx, http.MethodGet, "/customers", query, nil, &page); err != nil {
		return "", fmt.Errorf("payments: failed to look up customer: %w", err)
	}

	// The email filter can match loosely; confirm the exact address.
	for _, customer := range page.Items {
		if customer.Email == email {
			return customer.CustomerID, nil
		}
	}
	return "", nil
}

// CreateCustomer creates a billing customer and returns its id.
func (client *Client) CreateCustomer(ctx context.Context, email, name string) (string, error) {
	var created Customer
	payload := createCustomerRequest{Email: email, Name: name}
	if err := client.do(ctx, http.MethodPost, "/customers", nil, payload, &created); err != nil {
		return "", fmt.Errorf("payments: failed to create customer: %w", err)
	}
	return created.CustomerID, nil
}

// GetOrCreateCustomer returns the customer id for an email address,
// creating the customer when none exists yet. Registration calls this so
// every account carries a billing identity from day one.
func (client *Client) GetOrCreateCustomer(ctx context.Context, email, name string) (string, error) {
	customerID, err := client.FindCustomerByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if customerID != "" {
		return customerID, nil
	}
	return client.CreateCustomer(ctx, email, name)
}
