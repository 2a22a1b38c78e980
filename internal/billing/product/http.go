// Copyright (c) 2026 Ritmus. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package product

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/ritmus/internal/platform/apperr"
	"github.com/taibuivan/ritmus/internal/platform/middleware"
	requestutil "github.com/taibuivan/ritmus/internal/platform/request"
	"github.com/taibuivan/ritmus/internal/platform/respond"
	"github.com/taibuivan/ritmus/internal/platform/sec"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	// Public catalog reads (pricing page)
	router.Get("/", handler.listProducts)
	router.Get("/{id}", handler.getProduct)

	// Admin Only
	router.Group(func(adminRoute chi.Router) {
		adminRoute.Use(middleware.RequireRole(sec.RoleAdmin))

		adminRoute.Post("/", handler.createProduct)
		adminRoute.Post("/sync", handler.sync)
		adminRoute.Patch("/{id}", handler.updateProduct)
		adminRoute.Delete("/{id}", handler.archiveProduct)
		adminRoute.Post("/{id}/unarchive", handler.unarchiveProduct)
	})
}

// asResponseError maps the catalog error taxonomy onto transport errors.
// Upstream failures become 502s; everything else passes through.
func asResponseError(err error) error {
	var syncErr *SyncError
	if errors.As(err, &syncErr) {
		return apperr.UpstreamFailure("Catalog sync failed, partial progress kept", err)
	}

	var createErr *CreateError
	if errors.As(err, &createErr) {
		return apperr.UpstreamFailure("Payment provider rejected the product", err)
	}

	var archiveErr *ArchiveError
	if errors.As(err, &archiveErr) {
		return apperr.UpstreamFailure("Payment provider could not archive the product", err)
	}

	var unarchiveErr *UnarchiveError
	if errors.As(err, &unarchiveErr) {
		return apperr.UpstreamFailure("Payment provider could not restore the product", err)
	}

	return err
}

func (handler *Handler) listProducts(writer http.ResponseWriter, request *http.Request) {
	products, err := handler.service.GetProducts(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, products)
}

func (handler *Handler) getProduct(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.ID(request, "id")

	product, err := handler.service.GetProduct(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, product)
}

func (handler *Handler) sync(writer http.ResponseWriter, request *http.Request) {
	result, err := handler.service.Sync(request.Context())
	if err != nil {
		respond.Error(writer, request, asResponseError(err))
		return
	}
	respond.OK(writer, result)
}

func (handler *Handler) createProduct(writer http.ResponseWriter, request *http.Request) {
	var input CreateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	created, err := handler.service.CreateProduct(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, asResponseError(err))
		return
	}
	respond.Created(writer, created)
}

func (handler *Handler) updateProduct(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.ID(request, "id")

	var input UpdateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := handler.service.UpdateProduct(request.Context(), id, input)
	if err != nil {
		respond.Error(writer, request, asResponseError(err))
		return
	}
	respond.OK(writer, updated)
}

func (handler *Handler) archiveProduct(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.ID(request, "id")

	if err := handler.service.ArchiveProduct(request.Context(), id); err != nil {
		respond.Error(writer, request, asResponseError(err))
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) unarchiveProduct(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.ID(request, "id")

	if err := handler.service.UnarchiveProduct(request.Context(), id); err != nil {
		respond.Error(writer, request, asResponseError(err))
		return
	}
	respond.NoContent(writer)
}
