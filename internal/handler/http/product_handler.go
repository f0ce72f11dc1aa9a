package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"

	"github.com/camilovelasq/tienda-backend/internal/apperr"
	"github.com/camilovelasq/tienda-backend/internal/catalog"
)

type ProductRequest struct {
	Name          string   `json:"nombre" validate:"required,min=2"`
	Description   string   `json:"descripcion"`
	ImageURL      string   `json:"imagen" validate:"omitempty,url"`
	Price         float64  `json:"precio" validate:"required,gt=0"`
	OriginalPrice *float64 `json:"precio_original" validate:"omitempty,gt=0"`
	Stock         int      `json:"stock" validate:"gte=0"`
	Status        string   `json:"estado" validate:"omitempty,oneof=active inactive"`
	CategoryID    *string  `json:"categoria_id" validate:"omitempty,uuid"`
	Rating        float64  `json:"calificacion" validate:"gte=0,lte=5"`
	Sizes         []string `json:"tallas"`
}

type StockAdjustRequest struct {
	Delta int `json:"ajuste" validate:"required"`
}

type ProductHandler struct {
	service     catalog.Service
	validate    *validator.Validate
	development bool
}

func NewProductHandler(service catalog.Service, development bool) *ProductHandler {
	return &ProductHandler{service: service, validate: validator.New(), development: development}
}

func (h *ProductHandler) RegisterPublicRoutes(router chi.Router) {
	router.Get("/products", h.handleList)
	router.Get("/products/{id}", h.handleGet)
}

func (h *ProductHandler) RegisterStaffRoutes(router chi.Router) {
	router.Post("/products", h.handleCreate)
	router.Put("/products/{id}", h.handleUpdate)
	router.Delete("/products/{id}", h.handleDelete)
	router.Post("/products/{id}/stock", h.handleAdjustStock)
}

func (h *ProductHandler) handleList(w http.ResponseWriter, r *http.Request) {
	filter := catalog.ProductFilter{Search: r.URL.Query().Get("buscar")}
	filter.Page, filter.Limit = parsePagination(r)

	if raw := r.URL.Query().Get("categoria_id"); raw != "" {
		categoryID, err := uuid.FromString(raw)
		if err != nil {
			respondError(w, apperr.InvalidInput("invalid categoria_id parameter"), h.development)
			return
		}
		filter.CategoryID = &categoryID
	}
	if raw := r.URL.Query().Get("estado"); raw != "" {
		status := catalog.ProductStatus(raw)
		if status != catalog.ProductActive && status != catalog.ProductInactive {
			respondError(w, apperr.InvalidInput("invalid estado parameter"), h.development)
			return
		}
		filter.Status = &status
	}

	products, total, err := h.service.ListProducts(r.Context(), filter)
	if err != nil {
		respondError(w, err, h.development)
		return
	}
	respondData(w, http.StatusOK, newPaginated(products, total, filter.Page, filter.Limit))
}

func (h *ProductHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, err, h.development)
		return
	}
	p, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		respondError(w, err, h.development)
		return
	}
	respondData(w, http.StatusOK, p)
}

func (h *ProductHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	p := h.decodeProduct(w, r)
	if p == nil {
		return
	}

	created, err := h.service.CreateProduct(r.Context(), p)
	if err != nil {
		respondError(w, err, h.development)
		return
	}
	respondMessage(w, http.StatusCreated, "product created", created)
}

func (h *ProductHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, err, h.development)
		return
	}

	p := h.decodeProduct(w, r)
	if p == nil {
		return
	}
	p.ID = id

	updated, err := h.service.UpdateProduct(r.Context(), p)
	if err != nil {
		respondError(w, err, h.development)
		return
	}
	respondMessage(w, http.StatusOK, "product updated", updated)
}

func (h *ProductHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, err, h.development)
		return
	}
	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		respondError(w, err, h.development)
		return
	}
	respondMessage(w, http.StatusOK, "product deleted", nil)
}

func (h *ProductHandler) handleAdjustStock(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, err, h.development)
		return
	}

	var payload StockAdjustRequest
	if err := decodeJSON(r, &payload); err != nil {
		respondError(w, err, h.development)
		return
	}

	p, err := h.service.AdjustStock(r.Context(), id, payload.Delta)
	if err != nil {
		respondError(w, err, h.development)
		return
	}
	respondMessage(w, http.StatusOK, "stock adjusted", p)
}

// decodeProduct parses and validates a product payload, responding to the
// client itself when the payload is bad. A nil result means the response has
// already been written.
func (h *ProductHandler) decodeProduct(w http.ResponseWriter, r *http.Request) *catalog.Product {
	var payload ProductRequest
	if err := decodeJSON(r, &payload); err != nil {
		respondError(w, err, h.development)
		return nil
	}
	if err := h.validate.Struct(payload); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			respondValidationErrors(w, validationErrors)
			return nil
		}
		respondError(w, err, h.development)
		return nil
	}

	p := &catalog.Product{
		Name:          payload.Name,
		Description:   payload.Description,
		ImageURL:      payload.ImageURL,
		Price:         payload.Price,
		OriginalPrice: payload.OriginalPrice,
		Stock:         payload.Stock,
		Status:        catalog.ProductStatus(payload.Status),
		Rating:        payload.Rating,
		Sizes:         payload.Sizes,
	}
	if payload.CategoryID != nil {
		categoryID, err := uuid.FromString(*payload.CategoryID)
		if err != nil {
			respondError(w, apperr.InvalidInput("invalid categoria_id"), h.development)
			return nil
		}
		p.CategoryID = &categoryID
	}
	return p
}

func parseID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, apperr.InvalidInput("invalid id parameter")
	}
	return id, nil
}
