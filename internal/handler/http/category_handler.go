package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/camilovelasq/tienda-backend/internal/catalog"
)

type CategoryRequest struct {
	Name   string `json:"nombre" validate:"required,min=2"`
	Status string `json:"estado" validate:"omitempty,oneof=active inactive"`
}

type CategoryHandler struct {
	service     catalog.Service
	validate    *validator.Validate
	development bool
}

func NewCategoryHandler(service catalog.Service, development bool) *CategoryHandler {
	return &CategoryHandler{service: service, validate: validator.New(), development: development}
}

func (h *CategoryHandler) RegisterPublicRoutes(router chi.Router) {
	router.Get("/categories", h.handleList)
}

func (h *CategoryHandler) RegisterStaffRoutes(router chi.Router) {
	router.Post("/categories", h.handleCreate)
	router.Put("/categories/{id}", h.handleUpdate)
	router.Delete("/categories/{id}", h.handleDelete)
}

func (h *CategoryHandler) handleList(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		respondError(w, err, h.development)
		return
	}
	respondData(w, http.StatusOK, categories)
}

func (h *CategoryHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.decodeCategory(w, r)
	if !ok {
		return
	}

	c, err := h.service.CreateCategory(r.Context(), payload.Name)
	if err != nil {
		respondError(w, err, h.development)
		return
	}
	respondMessage(w, http.StatusCreated, "category created", c)
}

func (h *CategoryHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, err, h.development)
		return
	}

	payload, ok := h.decodeCategory(w, r)
	if !ok {
		return
	}
	status := catalog.ProductStatus(payload.Status)
	if status == "" {
		status = catalog.ProductActive
	}

	c, err := h.service.UpdateCategory(r.Context(), id, payload.Name, status)
	if err != nil {
		respondError(w, err, h.development)
		return
	}
	respondMessage(w, http.StatusOK, "category updated", c)
}

func (h *CategoryHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, err, h.development)
		return
	}
	if err := h.service.DeleteCategory(r.Context(), id); err != nil {
		respondError(w, err, h.development)
		return
	}
	respondMessage(w, http.StatusOK, "category removed", nil)
}

func (h *CategoryHandler) decodeCategory(w http.ResponseWriter, r *http.Request) (*CategoryRequest, bool) {
	var payload CategoryRequest
	if err := decodeJSON(r, &payload); err != nil {
		respondError(w, err, h.development)
		return nil, false
	}
	if err := h.validate.Struct(payload); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			respondValidationErrors(w, validationErrors)
			return nil, false
		}
		respondError(w, err, h.development)
		return nil, false
	}
	return &payload, true
}
