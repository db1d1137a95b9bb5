// Package handler exposes the product service HTTP API: public browsing,
// farmer listing management, and admin oversight.
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"freshbonds/backend/internal/api"
	"freshbonds/backend/internal/product/domain"
	"freshbonds/backend/internal/product/service"
	"freshbonds/backend/internal/security"
	"freshbonds/backend/internal/server/middleware"
)

type Handler struct {
	svc      *service.ProductService
	tokens   *security.TokenProvider
	validate *api.Validator
	log      *zap.Logger
}

func New(svc *service.ProductService, tokens *security.TokenProvider, validate *api.Validator, log *zap.Logger) *Handler {
	return &Handler{svc: svc, tokens: tokens, validate: validate, log: log}
}

// Routes mounts the product API under /api/products.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.listVisible)
		r.Get("/{id}", h.get)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(h.tokens))
			r.With(middleware.RequireRole(security.RoleAdmin)).Get("/all", h.listAll)
			r.Get("/farmer/{farmerId}", h.listByFarmer)
			r.With(middleware.RequireRole(security.RoleFarmer)).Post("/", h.create)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireOwnership(h.loadForOwnership))
				r.Put("/{id}", h.update)
				r.Patch("/{id}/visibility", h.toggleVisibility)
				r.Delete("/{id}", h.remove)
			})
		})
	})
}

func (h *Handler) loadForOwnership(ctx context.Context, id string) (any, string, error) {
	p, ownerID, err := h.svc.Owner(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			return nil, "", middleware.ErrResourceNotFound
		}
		return nil, "", err
	}
	return p, ownerID, nil
}

type listingRequest struct {
	Name           string    `json:"name" validate:"required,min=2,max=255"`
	Description    string    `json:"description" validate:"required,min=10,max=2000"`
	Price          float64   `json:"price" validate:"required,gt=0,lte=1000000"`
	Category       string    `json:"category" validate:"required"`
	Image          string    `json:"image" validate:"required,http_url"`
	FarmerName     string    `json:"farmerName" validate:"omitempty,max=100"`
	FarmerLocation string    `json:"farmerLocation" validate:"omitempty,max=255"`
	FarmerMobile   string    `json:"farmerMobile" validate:"omitempty,sl_phone"`
	InStock        *bool     `json:"inStock"`
	IsVisible      *bool     `json:"isVisible"`
	Organic        bool      `json:"organic"`
	HarvestDate    time.Time `json:"harvestDate" validate:"required,harvest_window"`
	Quantity       string    `json:"quantity" validate:"required"`
	Unit           string    `json:"unit" validate:"required"`
}

type productResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Price          float64   `json:"price"`
	Category       string    `json:"category"`
	Image          string    `json:"image"`
	FarmerID       string    `json:"farmerId"`
	FarmerName     string    `json:"farmerName"`
	FarmerLocation string    `json:"farmerLocation"`
	FarmerMobile   string    `json:"farmerMobile,omitempty"`
	InStock        bool      `json:"inStock"`
	IsVisible      bool      `json:"isVisible"`
	Organic        bool      `json:"organic"`
	HarvestDate    time.Time `json:"harvestDate"`
	Quantity       string    `json:"quantity"`
	Unit           string    `json:"unit"`
	CreatedAt      time.Time `json:"createdAt"`
}

func toProductResponse(p *domain.Product) productResponse {
	return productResponse{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Price:          p.Price,
		Category:       p.Category,
		Image:          p.Image,
		FarmerID:       p.FarmerID,
		FarmerName:     p.FarmerName,
		FarmerLocation: p.FarmerLocation,
		FarmerMobile:   p.FarmerMobile,
		InStock:        p.InStock,
		IsVisible:      p.IsVisible,
		Organic:        p.Organic,
		HarvestDate:    p.HarvestDate,
		Quantity:       p.Quantity,
		Unit:           p.Unit,
		CreatedAt:      p.CreatedAt,
	}
}

func toProductResponses(ps []*domain.Product) []productResponse {
	out := make([]productResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, toProductResponse(p))
	}
	return out
}

func (h *Handler) listVisible(w http.ResponseWriter, r *http.Request) {
	ps, err := h.svc.ListVisible(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, toProductResponses(ps))
}

func (h *Handler) listAll(w http.ResponseWriter, r *http.Request) {
	ps, err := h.svc.ListAll(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, toProductResponses(ps))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if uuid.Validate(id) != nil {
		api.BadRequest(w, "invalid product ID format")
		return
	}
	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, toProductResponse(p))
}

// listByFarmer lets a farmer see their own listings (hidden included) and an
// admin see anyone's.
func (h *Handler) listByFarmer(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		api.Unauthorized(w, "authentication required")
		return
	}
	farmerID := chi.URLParam(r, "farmerId")
	if p.Role != security.RoleAdmin && p.UserID != farmerID {
		api.Forbidden(w, "access denied - can only view your own products")
		return
	}
	ps, err := h.svc.ListByFarmer(r.Context(), farmerID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, toProductResponses(ps))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		api.Unauthorized(w, "authentication required")
		return
	}
	req, ok := h.decodeListing(w, r)
	if !ok {
		return
	}

	created, err := h.svc.Create(r.Context(), p.UserID, toListingInput(req))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	api.JSON(w, http.StatusCreated, toProductResponse(created))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		api.Unauthorized(w, "authentication required")
		return
	}
	existing, ok := middleware.GetResource(r.Context()).(*domain.Product)
	if !ok {
		api.InternalError(w)
		return
	}
	req, ok := h.decodeListing(w, r)
	if !ok {
		return
	}

	updated, err := h.svc.Update(r.Context(), existing, p.UserID, toListingInput(req))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, toProductResponse(updated))
}

func (h *Handler) toggleVisibility(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		api.Unauthorized(w, "authentication required")
		return
	}
	existing, ok := middleware.GetResource(r.Context()).(*domain.Product)
	if !ok {
		api.InternalError(w)
		return
	}

	updated, err := h.svc.ToggleVisibility(r.Context(), existing, p.UserID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, toProductResponse(updated))
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		api.Unauthorized(w, "authentication required")
		return
	}
	existing, ok := middleware.GetResource(r.Context()).(*domain.Product)
	if !ok {
		api.InternalError(w)
		return
	}

	if err := h.svc.Delete(r.Context(), existing.ID, p.UserID); err != nil {
		h.writeServiceError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, map[string]string{
		"message":     "Product deleted successfully",
		"productName": existing.Name,
	})
}

func (h *Handler) decodeListing(w http.ResponseWriter, r *http.Request) (listingRequest, bool) {
	var req listingRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.BadRequest(w, "invalid JSON payload")
		return req, false
	}
	details := h.validate.Struct(req)
	if !containsString(domain.Categories, req.Category) {
		details = append(details, "Invalid product category")
	}
	if !containsString(domain.Units, req.Unit) {
		details = append(details, "Invalid unit")
	}
	if req.Quantity != "" && !isNumericQuantity(req.Quantity) {
		details = append(details, "Quantity must be a valid number")
	}
	if details != nil {
		api.ValidationError(w, details)
		return req, false
	}
	return req, true
}

func toListingInput(req listingRequest) service.ListingInput {
	return service.ListingInput{
		Name:           req.Name,
		Description:    req.Description,
		Price:          req.Price,
		Category:       req.Category,
		Image:          req.Image,
		FarmerName:     req.FarmerName,
		FarmerLocation: req.FarmerLocation,
		FarmerMobile:   req.FarmerMobile,
		InStock:        req.InStock,
		IsVisible:      req.IsVisible,
		Organic:        req.Organic,
		HarvestDate:    req.HarvestDate,
		Quantity:       req.Quantity,
		Unit:           req.Unit,
	}
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		api.NotFound(w, "product not found")
	case errors.Is(err, domain.ErrValidation):
		api.BadRequest(w, err.Error())
	default:
		h.log.Error("product service error", zap.Error(err))
		api.InternalError(w)
	}
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func isNumericQuantity(s string) bool {
	dot := false
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '.' {
			if dot || i == 0 || i == len(s)-1 {
				return false
			}
			dot = true
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
