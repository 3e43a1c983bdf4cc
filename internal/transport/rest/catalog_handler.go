// Package rest provides the HTTP handlers for the catalog and cart resources.
package rest

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	domain "github.com/mockshop/mockshop/internal/errors"
	"github.com/mockshop/mockshop/internal/service"
	"github.com/mockshop/mockshop/pkg/web"
)

// CatalogHandler serves the product catalog routes.
type CatalogHandler struct {
	service  service.CatalogService
	validate *validator.Validate
	logger   *slog.Logger
	verbose  bool
}

// NewCatalogHandler creates a new CatalogHandler. When verbose is set,
// internal error detail is included in 500 responses (development only).
func NewCatalogHandler(service service.CatalogService, logger *slog.Logger, verbose bool) *CatalogHandler {
	return &CatalogHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
		verbose:  verbose,
	}
}

// RegisterRoutes registers the catalog routes on the given router. The same
// routes are mounted both at the root and under /api by the caller.
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.FindAll)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindByID)
			r.Post("/comments", h.AddComment)
		})
	})
}

// FindAll retrieves the whole catalog.
func (h *CatalogHandler) FindAll(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	mLogger.DebugContext(r.Context(), "Received request to list products")
	list, err := h.service.FindAll(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving product list", "error", err)
		h.respondServerError(w, mLogger, "Failed to fetch products", err)
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved product list", "count", len(list))
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// FindByID retrieves a product by its ID, annotated with the derived rating.
func (h *CatalogHandler) FindByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger, "id")
	if !ok {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to find product by ID", "ID", id)
	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %d not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving product", "ID", id, "error", err)
		h.respondServerError(w, mLogger, fmt.Sprintf("Failed to retrieve product with ID %d", id), err)
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved product", "ID", found.ID, "Title", found.Title)
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// AddComment appends a comment to a product and returns the updated product.
func (h *CatalogHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger, "id")
	if !ok {
		return
	}

	var commentDto service.CommentDto
	if !decodeAndValidate(w, r, h.validate, mLogger, &commentDto) {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to add comment", "ID", id, "User", commentDto.User)

	updated, err := h.service.AddComment(r.Context(), id, commentDto)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrProductNotFound):
			mLogger.WarnContext(r.Context(), "Product not found for comment", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %d not found", id))
		case errors.Is(err, domain.ErrCommentLimit):
			mLogger.WarnContext(r.Context(), "Comment limit reached", "ID", id)
			web.RespondError(w, mLogger, http.StatusBadRequest, "Comment limit reached for this product")
		default:
			mLogger.ErrorContext(r.Context(), "Error adding comment", "ID", id, "error", err)
			h.respondServerError(w, mLogger, fmt.Sprintf("Failed to add comment to product with ID %d", id), err)
		}
		return
	}
	mLogger.InfoContext(r.Context(), "Comment added successfully", "ID", id, "Rating", commentDto.Rating)
	web.RespondJSON(w, mLogger, http.StatusCreated, updated)
}

// respondServerError writes a 500, appending error detail in development.
func (h *CatalogHandler) respondServerError(w http.ResponseWriter, logger *slog.Logger, message string, err error) {
	if h.verbose {
		message = fmt.Sprintf("%s: %v", message, err)
	}
	web.RespondError(w, logger, http.StatusInternalServerError, message)
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *CatalogHandler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
