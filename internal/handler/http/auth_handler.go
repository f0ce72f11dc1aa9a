package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"

	"github.com/camilovelasq/tienda-backend/internal/apperr"
	"github.com/camilovelasq/tienda-backend/internal/auth"
	"github.com/camilovelasq/tienda-backend/internal/user"
)

type RegisterRequest struct {
	Name     string `json:"nombre" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserResponse struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"nombre"`
	Email     string      `json:"email"`
	Role      user.Role   `json:"rol"`
	Status    user.Status `json:"estado"`
	CreatedAt time.Time   `json:"created_at"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"usuario"`
}

type AuthHandler struct {
	service     user.Service
	tokens      *auth.TokenManager
	validate    *validator.Validate
	development bool
}

func NewAuthHandler(service user.Service, tokens *auth.TokenManager, development bool) *AuthHandler {
	return &AuthHandler{
		service:     service,
		tokens:      tokens,
		validate:    validator.New(),
		development: development,
	}
}

func (h *AuthHandler) RegisterPublicRoutes(router chi.Router) {
	router.Post("/auth/register", h.handleRegister)
	router.Post("/auth/login", h.handleLogin)
}

func (h *AuthHandler) RegisterProtectedRoutes(router chi.Router) {
	router.Get("/auth/me", h.handleMe)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var payload RegisterRequest
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

	u, err := h.service.Register(r.Context(), payload.Name, payload.Email, payload.Password)
	if err != nil {
		respondError(w, err, h.development)
		return
	}

	respondMessage(w, http.StatusCreated, "user registered", toUserResponse(u))
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload LoginRequest
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

	u, err := h.service.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		respondError(w, err, h.development)
		return
	}

	token, err := h.tokens.Issue(u)
	if err != nil {
		respondError(w, err, h.development)
		return
	}

	respondData(w, http.StatusOK, LoginResponse{Token: token, User: toUserResponse(u)})
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r.Context())
	if !ok {
		respondError(w, apperr.Unauthorized("missing bearer token"), h.development)
		return
	}

	u, err := h.service.GetByID(r.Context(), identity.UserID)
	if err != nil {
		respondError(w, err, h.development)
		return
	}
	respondData(w, http.StatusOK, toUserResponse(u))
}

func toUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
	}
}
