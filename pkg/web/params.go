package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
)

// ParseID extracts and validates a numeric path parameter from the request.
// Returns the parsed value and a boolean indicating success.
func ParseID(w http.ResponseWriter, r *http.Request, logger *slog.Logger, key string) (int64, bool) {
	raw := r.PathValue(key)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid %s: %s", key, raw))
		return 0, false
	}
	return id, true
}
