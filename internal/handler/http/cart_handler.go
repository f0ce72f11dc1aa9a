package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"

	"github.com/camilovelasq/tienda-backend/internal/apperr"
	"github.com/camilovelasq/tienda-backend/internal/cart"
)

type CartAddRequest struct {
	ProductID string `json:"producto_id" validate:"required,uuid"`
	Quantity  int    `json:"cantidad" validate:"required,min=1"`
	Size      string `json:"talla"`
}

type CartUpdateRequest struct {
	ProductID string `json:"producto_id" validate:"required,uuid"`
	Quantity  int    `json:"cantidad"`
	Size      string `json:"talla"`
}

type CartHandler struct {
	service     cart.Service
	validate    *validator.Validate
	development bool
}

func NewCartHandler(service cart.Service, development bool) *CartHandler {
	return &CartHandler{service: service, validate: validator.New(), development: development}
}

// RegisterRoutes mounts the cart surface; every route requires authentication.
func (h *CartHandler) RegisterRoutes(router chi.Router) {
	router.Route("/cart", func(r chi.Router) {
		r.Get("/", h.handleSummary)
		r.Post("/items", h.handleAdd)
		r.Put("/items", h.handleUpdate)
		r.Delete("/items/{productID}", h.handleRemove)
		r.Delete("/", h.handleClear)
		r.Get("/validate", h.handleValidate)
		r.Post("/adjust", h.handleAutoAdjust)
	})
}

func (h *CartHandler) caller(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		respondError(w, apperr.Unauthorized("missing bearer token"), h.development)
		return uuid.Nil, false
	}
	return identity.UserID, true
}

func (h *CartHandler) handleSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}
	summary, err := h.service.Summary(r.Context(), userID)
	if err != nil {
		respondError(w, err, h.development)
		return
	}
	respondData(w, http.StatusOK, summary)
}

func (h *CartHandler) handleAdd(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}

	var payload CartAddRequest
	if err := decodeJSON(r, &payload); err != nil {
		respondError(w, err, h.development)
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			respondValidationErrors(w, validationErrors)
			return
		}
		respondError(w, err, h.development)
		return
	}

	productID, _ := uuid.FromString(payload.ProductID)
	item, err := h.service.Add(r.Context(), userID, productID, payload.Quantity, payload.Size)
	if err != nil {
		respondError(w, err, h.development)
		return
	}
	respondMessage(w, http.StatusCreated, "product added to cart", item)
}

func (h *CartHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}

	var payload CartUpdateRequest
	if err := decodeJSON(r, &payload); err != nil {
		respondError(w, err, h.development)
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			respondValidationErrors(w, validationErrors)
			return
		}
		respondError(w, err, h.development)
		return
	}

	productID, _ := uuid.FromString(payload.ProductID)
	if err := h.service.UpdateQuantity(r.Context(), userID, productID, payload.Quantity, payload.Size); err != nil {
		respondError(w, err, h.development)
		return
	}
	respondMessage(w, http.StatusOK, "cart updated", nil)
}

func (h *CartHandler) handleRemove(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}

	productID, err := uuid.FromString(chi.URLParam(r, "productID"))
	if err != nil {
		respondError(w, apperr.InvalidInput("invalid product id parameter"), h.development)
		return
	}

	var size *string
	if raw := r.URL.Query().Get("talla"); raw != "" {
		size = &raw
	}

	if err := h.service.Remove(r.Context(), userID, productID, size); err != nil {
		respondError(w, err, h.development)
		return
	}
	respondMessage(w, http.StatusOK, "product removed from cart", nil)
}

func (h *CartHandler) handleClear(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}
	removed, err := h.service.Clear(r.Context(), userID)
	if err != nil {
		respondError(w, err, h.development)
		return
	}
	respondMessage(w, http.StatusOK, "cart cleared", map[string]int{"eliminados": removed})
}

func (h *CartHandler) handleValidate(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}
	issues, err := h.service.Validate(r.Context(), userID)
	if err != nil {
		respondError(w, err, h.development)
		return
	}
	respondData(w, http.StatusOK, map[string]any{"problemas": issues, "valido": len(issues) == 0})
}

func (h *CartHandler) handleAutoAdjust(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.caller(w, r)
	if !ok {
		return
	}
	issues, err := h.service.AutoAdjust(r.Context(), userID)
	if err != nil {
		respondError(w, err, h.development)
		return
	}
	respondMessage(w, http.StatusOK, "cart adjusted", map[string]any{"ajustes": issues})
}
