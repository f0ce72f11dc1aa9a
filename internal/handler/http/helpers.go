package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/camilovelasq/tienda-backend/internal/apperr"
)

// envelope is the shared response shape of every endpoint.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

// paginated wraps list payloads with the usual page metadata.
type paginated struct {
	Items      any `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"total_pages"`
}

func newPaginated(items any, total, page, limit int) paginated {
	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}
	return paginated{Items: items, Total: total, Page: page, Limit: limit, TotalPages: totalPages}
}

func respondJSON(w http.ResponseWriter, code int, payload envelope) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"message":"failed to marshal response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("failed to write JSON response")
	}
}

func respondData(w http.ResponseWriter, code int, data any) {
	respondJSON(w, code, envelope{Success: true, Data: data})
}

func respondMessage(w http.ResponseWriter, code int, message string, data any) {
	respondJSON(w, code, envelope{Success: true, Message: message, Data: data})
}

// respondError translates any error into the envelope. Typed domain errors
// keep their status and message; everything else becomes a 500 whose detail
// is only exposed in development mode.
func respondError(w http.ResponseWriter, err error, development bool) {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		respondJSON(w, ae.Status, envelope{Success: false, Message: ae.Message, Errors: map[string]string{"code": ae.Code}})
		return
	}

	log.Error().Err(err).Msg("unexpected error reached the boundary")
	message := "internal server error"
	if development {
		message = err.Error()
	}
	respondJSON(w, http.StatusInternalServerError, envelope{Success: false, Message: message})
}

func respondValidationErrors(w http.ResponseWriter, errs validator.ValidationErrors) {
	respondJSON(w, http.StatusBadRequest, envelope{
		Success: false,
		Message: "validation failed",
		Errors:  formatValidationErrors(errs),
	})
}

func formatValidationErrors(errs validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(errs))
	for _, fe := range errs {
		details[fe.Field()] = "failed on " + fe.Tag()
	}
	return details
}

// decodeJSON decodes a request body strictly, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return apperr.InvalidInput("invalid request payload")
	}
	return nil
}

func parsePagination(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return page, limit
}
