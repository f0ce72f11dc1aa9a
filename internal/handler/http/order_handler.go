package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"

	"github.com/camilovelasq/tienda-backend/internal/apperr"
	"github.com/camilovelasq/tienda-backend/internal/order"
)

type OrderLineRequest struct {
	ProductID string `json:"producto_id" validate:"required,uuid"`
	Quantity  int    `json:"cantidad" validate:"required,min=1"`
	Size      string `json:"talla"`
}

type CreateOrderRequest struct {
	CustomerName    string             `json:"nombre_cliente" validate:"required,min=2"`
	CustomerEmail   string             `json:"email_cliente" validate:"required,email"`
	CustomerPhone   string             `json:"telefono_cliente" validate:"required"`
	ShippingAddress string             `json:"direccion_envio" validate:"required"`
	ShippingCity    string             `json:"ciudad_envio" validate:"required"`
	PaymentMethod   string             `json:"metodo_pago" validate:"required"`
	Products        []OrderLineRequest `json:"productos" validate:"required,min=1,dive"`
}

type UpdateStatusRequest struct {
	Status       string  `json:"estado" validate:"required"`
	RejectReason *string `json:"motivo_rechazo" validate:"omitempty,min=3"`
}

type OrderHandler struct {
	service     order.Service
	validate    *validator.Validate
	development bool
}

func NewOrderHandler(service order.Service, development bool) *OrderHandler {
	return &OrderHandler{service: service, validate: validator.New(), development: development}
}

func (h *OrderHandler) RegisterPublicRoutes(router chi.Router) {
	router.Get("/orders/track/{numero}", h.handleTrack)
}

func (h *OrderHandler) RegisterProtectedRoutes(router chi.Router) {
	router.Post("/orders", h.handleCreate)
	router.Get("/orders/my-orders", h.handleMyOrders)
	router.Get("/orders/my-orders/{id}", h.handleMyOrder)
	router.Post("/orders/{id}/cancel", h.handleCancel)
}

func (h *OrderHandler) RegisterStaffRoutes(router chi.Router) {
	router.Get("/orders", h.handleList)
	router.Put("/orders/{id}/status", h.handleUpdateStatus)
}

func (h *OrderHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		respondError(w, apperr.Unauthorized("missing bearer token"), h.development)
		return
	}

	var payload CreateOrderRequest
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

	input := order.NewOrder{
		UserID:          identity.UserID,
		CustomerName:    payload.CustomerName,
		CustomerEmail:   payload.CustomerEmail,
		CustomerPhone:   payload.CustomerPhone,
		ShippingAddress: payload.ShippingAddress,
		ShippingCity:    payload.ShippingCity,
		PaymentMethod:   payload.PaymentMethod,
		Lines:           make([]order.NewLine, len(payload.Products)),
	}
	for i, line := range payload.Products {
		productID, _ := uuid.FromString(line.ProductID)
		input.Lines[i] = order.NewLine{ProductID: productID, Quantity: line.Quantity, Size: line.Size}
	}

	created, err := h.service.Create(r.Context(), input)
	if err != nil {
		respondError(w, err, h.development)
		return
	}
	respondMessage(w, http.StatusCreated, "order created", created)
}

func (h *OrderHandler) handleMyOrders(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		respondError(w, apperr.Unauthorized("missing bearer token"), h.development)
		return
	}

	page, limit := parsePagination(r)
	orders, total, err := h.service.ListByUser(r.Context(), identity.UserID, page, limit)
	if err != nil {
		respondError(w, err, h.development)
		return
	}
	respondData(w, http.StatusOK, newPaginated(orders, total, page, limit))
}

func (h *OrderHandler) handleMyOrder(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		respondError(w, apperr.Unauthorized("missing bearer token"), h.development)
		return
	}

	id, err := parseID(r)
	if err != nil {
		respondError(w, err, h.development)
		return
	}

	o, err := h.service.GetForUser(r.Context(), identity.UserID, id, identity.Role.IsStaff())
	if err != nil {
		respondError(w, err, h.development)
		return
	}
	respondData(w, http.StatusOK, o)
}

func (h *OrderHandler) handleTrack(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "numero")
	if number == "" {
		respondError(w, apperr.InvalidInput("numero parameter is required"), h.development)
		return
	}

	o, err := h.service.Track(r.Context(), number)
	if err != nil {
		respondError(w, err, h.development)
		return
	}
	respondData(w, http.StatusOK, o)
}

func (h *OrderHandler) handleList(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePagination(r)

	var status *order.Status
	if raw := r.URL.Query().Get("estado"); raw != "" {
		s := order.Status(raw)
		status = &s
	}

	orders, total, err := h.service.List(r.Context(), status, page, limit)
	if err != nil {
		respondError(w, err, h.development)
		return
	}
	respondData(w, http.StatusOK, newPaginated(orders, total, page, limit))
}

func (h *OrderHandler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, err, h.development)
		return
	}

	var payload UpdateStatusRequest
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

	o, err := h.service.UpdateStatus(r.Context(), id, order.Status(payload.Status), payload.RejectReason)
	if err != nil {
		respondError(w, err, h.development)
		return
	}
	respondMessage(w, http.StatusOK, "order status updated", o)
}

func (h *OrderHandler) handleCancel(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		respondError(w, apperr.Unauthorized("missing bearer token"), h.development)
		return
	}

	id, err := parseID(r)
	if err != nil {
		respondError(w, err, h.development)
		return
	}

	o, err := h.service.Cancel(r.Context(), identity.UserID, id, identity.Role.IsStaff())
	if err != nil {
		respondError(w, err, h.development)
		return
	}
	respondMessage(w, http.StatusOK, "order cancelled", o)
}
