package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/foodtruck-service/internal/account"
	"github.com/vasiliy-maslov/foodtruck-service/internal/auth"
	"github.com/vasiliy-maslov/foodtruck-service/internal/catalog"
	"github.com/vasiliy-maslov/foodtruck-service/internal/customer"
	"github.com/vasiliy-maslov/foodtruck-service/internal/location"
	"github.com/vasiliy-maslov/foodtruck-service/internal/message"
	"github.com/vasiliy-maslov/foodtruck-service/internal/order"
	"github.com/vasiliy-maslov/foodtruck-service/internal/report"
	"github.com/vasiliy-maslov/foodtruck-service/internal/supplier"
)

type ValidationErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func mapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, account.ErrAccountNotFound),
		errors.Is(err, account.ErrProfileNotFound),
		errors.Is(err, account.ErrUserNotFound),
		errors.Is(err, customer.ErrCustomerNotFound),
		errors.Is(err, location.ErrLocationNotFound):
		return http.StatusNotFound
	case errors.Is(err, account.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, auth.ErrUnauthenticated),
		errors.Is(err, account.ErrMissingIdentity):
		return http.StatusUnauthorized
	case errors.Is(err, order.ErrStatusConflict),
		errors.Is(err, account.ErrEmailExists):
		return http.StatusConflict
	case errors.Is(err, order.ErrInvalidStatusTransition),
		errors.Is(err, order.ErrTerminalStatus),
		errors.Is(err, order.ErrProductNotFound),
		errors.Is(err, order.ErrProductInactive),
		errors.Is(err, order.ErrUnknownCustomer),
		errors.Is(err, order.ErrUnknownLocation),
		errors.Is(err, message.ErrUnknownCustomer):
		return http.StatusUnprocessableEntity
	case errors.Is(err, order.ErrEmptyOrder),
		errors.Is(err, order.ErrInvalidFilter),
		errors.Is(err, order.ErrInvalidItem),
		errors.Is(err, catalog.ErrInvalidProduct),
		errors.Is(err, catalog.ErrInvalidInventoryEvent),
		errors.Is(err, customer.ErrEmptyContact),
		errors.Is(err, location.ErrInvalidCoordinates),
		errors.Is(err, location.ErrInvalidLocation),
		errors.Is(err, account.ErrInvalidProfileKind),
		errors.Is(err, report.ErrInvalidSnapshot),
		errors.Is(err, message.ErrInvalidMessage),
		errors.Is(err, supplier.ErrInvalidTransaction):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondWithServiceError renders err without leaking internal messages. Client
// errors carry the sentinel text; everything else gets fallback.
func respondWithServiceError(w http.ResponseWriter, err error, fallback string) {
	code := mapErrorToStatusCode(err)
	if code == http.StatusInternalServerError {
		log.Error().Err(err).Msg(fallback)
		respondWithError(w, code, fallback)
		return
	}
	log.Warn().Err(err).Int("status", code).Msg("Request rejected by service")
	respondWithError(w, code, err.Error())
}

func formatValidationErrors(errs validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(errs))
	for _, fe := range errs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			details[field] = "is required"
		case "email":
			details[field] = "must be a valid email address"
		case "min":
			details[field] = fmt.Sprintf("must be at least %s", fe.Param())
		case "max":
			details[field] = fmt.Sprintf("must be at most %s", fe.Param())
		case "gt":
			details[field] = fmt.Sprintf("must be greater than %s", fe.Param())
		case "gte":
			details[field] = fmt.Sprintf("must be greater than or equal to %s", fe.Param())
		case "oneof":
			details[field] = fmt.Sprintf("must be one of [%s]", fe.Param())
		case "uuid4", "uuid":
			details[field] = "must be a valid UUID"
		case "latitude", "longitude":
			details[field] = "must be a valid " + fe.Tag()
		default:
			details[field] = fmt.Sprintf("failed on the '%s' rule", fe.Tag())
		}
	}
	return details
}

// decodeAndValidate decodes a JSON body into dst and validates it. On failure the
// response has already been written and false is returned.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, validate *validator.Validate, dst interface{}) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		log.Warn().Err(err).Msg("Failed to decode request body")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return false
	}

	err := validate.Struct(dst)
	if err == nil {
		return true
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		respondWithJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Error:   "Validation failed",
			Details: formatValidationErrors(validationErrors),
		})
		return false
	}
	log.Error().Err(err).Type("validation_error_type", err).Msg("Unexpected error type during validation")
	respondWithError(w, http.StatusInternalServerError, "Internal validation error")
	return false
}

func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	raw := chi.URLParam(r, name)
	id, err := uuid.FromString(raw)
	if err != nil {
		log.Warn().Err(err).Str(name, raw).Msg("Failed to parse id parameter from URL")
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s parameter", name))
		return uuid.Nil, false
	}
	return id, true
}

func parseOptionalUUID(raw string) (*uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.FromString(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// RequestLogger logs one line per request with the chi request id.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			log.Info().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("HTTP request")
		}()
		next.ServeHTTP(ww, r)
	})
}
