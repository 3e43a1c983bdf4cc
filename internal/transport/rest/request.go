package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/mockshop/mockshop/pkg/web"
)

// decodeAndValidate decodes the JSON request body into dst and validates it.
// On failure it writes the error response and returns false. Field-level
// validation failures are reported per field under "validation_errors".
func decodeAndValidate(w http.ResponseWriter, r *http.Request, validate *validator.Validate, logger *slog.Logger, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			logger.WarnContext(r.Context(), "Request body too large", "limit", maxBytesErr.Limit)
			web.RespondError(w, logger, http.StatusBadRequest, "Request body too large")
			return false
		}
		logger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, logger, http.StatusBadRequest, "Invalid request body")
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			logger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			web.RespondJSON(w, logger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
			return false
		}
		logger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		web.RespondError(w, logger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
