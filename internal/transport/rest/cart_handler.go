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

// CartHandler serves the user and cart routes.
type CartHandler struct {
	service  service.CartService
	validate *validator.Validate
	logger   *slog.Logger
	verbose  bool
}

// NewCartHandler creates a new CartHandler. When verbose is set, internal
// error detail is included in 500 responses (development only).
func NewCartHandler(service service.CartService, logger *slog.Logger, verbose bool) *CartHandler {
	return &CartHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
		verbose:  verbose,
	}
}

// RegisterRoutes registers the user and cart routes on the given router. The
// same routes are mounted both at the root and under /api by the caller.
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.FindAll)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindByID)
			r.Post("/cart", h.AddItem)
			r.Patch("/cart/{itemId}", h.UpdateItem)
			r.Delete("/cart/{itemId}", h.RemoveItem)
			r.Post("/checkout", h.Checkout)
		})
	})
}

// FindAll retrieves all users.
func (h *CartHandler) FindAll(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	mLogger.DebugContext(r.Context(), "Received request to list users")
	list, err := h.service.FindAll(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving user list", "error", err)
		h.respondServerError(w, mLogger, "Failed to fetch users", err)
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved user list", "count", len(list))
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// FindByID retrieves a user with their cart and derived cart count.
func (h *CartHandler) FindByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger, "id")
	if !ok {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to find user by ID", "ID", id)
	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			mLogger.WarnContext(r.Context(), "User not found", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("User with ID %d not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving user", "ID", id, "error", err)
		h.respondServerError(w, mLogger, fmt.Sprintf("Failed to retrieve user with ID %d", id), err)
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved user", "ID", found.ID)
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// AddItem adds a product to the user's cart. The same product accumulates
// onto its existing line.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	userID, ok := web.ParseID(w, r, mLogger, "id")
	if !ok {
		return
	}

	var addDto service.CartAddDto
	if !decodeAndValidate(w, r, h.validate, mLogger, &addDto) {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to add cart item",
		"UserID", userID, "ItemID", addDto.ItemID, "Quantity", addDto.Quantity)

	updated, err := h.service.AddItem(r.Context(), userID, addDto)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			mLogger.WarnContext(r.Context(), "User not found for cart add", "UserID", userID)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("User with ID %d not found", userID))
		case errors.Is(err, domain.ErrProductNotFound):
			mLogger.WarnContext(r.Context(), "Product not found for cart add", "ItemID", addDto.ItemID)
			web.RespondError(w, mLogger, http.StatusBadRequest, fmt.Sprintf("Product with ID %d does not exist", addDto.ItemID))
		case errors.Is(err, domain.ErrInsufficientStock):
			mLogger.WarnContext(r.Context(), "Requested quantity exceeds stock", "ItemID", addDto.ItemID)
			web.RespondError(w, mLogger, http.StatusBadRequest, "Requested quantity exceeds stock")
		case errors.Is(err, domain.ErrCartFull):
			mLogger.WarnContext(r.Context(), "Cart item limit reached", "UserID", userID)
			web.RespondError(w, mLogger, http.StatusBadRequest, "Cart item limit reached")
		default:
			mLogger.ErrorContext(r.Context(), "Error adding cart item", "UserID", userID, "error", err)
			h.respondServerError(w, mLogger, fmt.Sprintf("Failed to add item to cart of user %d", userID), err)
		}
		return
	}
	mLogger.InfoContext(r.Context(), "Cart item added successfully",
		"UserID", userID, "ItemID", addDto.ItemID, "CartCount", updated.CartCount)
	web.RespondJSON(w, mLogger, http.StatusCreated, updated)
}

// UpdateItem replaces a cart line's quantity. Quantity zero removes the line.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	userID, ok := web.ParseID(w, r, mLogger, "id")
	if !ok {
		return
	}
	itemID, ok := web.ParseID(w, r, mLogger, "itemId")
	if !ok {
		return
	}

	var updateDto service.CartUpdateDto
	if !decodeAndValidate(w, r, h.validate, mLogger, &updateDto) {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to update cart item",
		"UserID", userID, "ItemID", itemID, "Quantity", *updateDto.Quantity)

	updated, err := h.service.UpdateItem(r.Context(), userID, itemID, *updateDto.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			mLogger.WarnContext(r.Context(), "User not found for cart update", "UserID", userID)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("User with ID %d not found", userID))
		case errors.Is(err, domain.ErrCartItemNotFound):
			mLogger.WarnContext(r.Context(), "Cart item not found for update", "UserID", userID, "ItemID", itemID)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Item %d is not in the cart of user %d", itemID, userID))
		case errors.Is(err, domain.ErrInsufficientStock):
			mLogger.WarnContext(r.Context(), "Requested quantity exceeds stock", "ItemID", itemID)
			web.RespondError(w, mLogger, http.StatusBadRequest, "Requested quantity exceeds stock")
		default:
			mLogger.ErrorContext(r.Context(), "Error updating cart item", "UserID", userID, "error", err)
			h.respondServerError(w, mLogger, fmt.Sprintf("Failed to update cart of user %d", userID), err)
		}
		return
	}
	mLogger.InfoContext(r.Context(), "Cart item updated successfully",
		"UserID", userID, "ItemID", itemID, "CartCount", updated.CartCount)
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

// RemoveItem deletes a cart line.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	userID, ok := web.ParseID(w, r, mLogger, "id")
	if !ok {
		return
	}
	itemID, ok := web.ParseID(w, r, mLogger, "itemId")
	if !ok {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to remove cart item", "UserID", userID, "ItemID", itemID)
	updated, err := h.service.RemoveItem(r.Context(), userID, itemID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			mLogger.WarnContext(r.Context(), "User not found for cart removal", "UserID", userID)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("User with ID %d not found", userID))
		case errors.Is(err, domain.ErrCartItemNotFound):
			mLogger.WarnContext(r.Context(), "Cart item not found for removal", "UserID", userID, "ItemID", itemID)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Item %d is not in the cart of user %d", itemID, userID))
		default:
			mLogger.ErrorContext(r.Context(), "Error removing cart item", "UserID", userID, "error", err)
			h.respondServerError(w, mLogger, fmt.Sprintf("Failed to remove item from cart of user %d", userID), err)
		}
		return
	}
	mLogger.InfoContext(r.Context(), "Cart item removed successfully",
		"UserID", userID, "ItemID", itemID, "CartCount", updated.CartCount)
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

// Checkout validates the whole cart against stock and applies the decrement.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	userID, ok := web.ParseID(w, r, mLogger, "id")
	if !ok {
		return
	}

	mLogger.DebugContext(r.Context(), "Received checkout request", "UserID", userID)
	result, err := h.service.Checkout(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			mLogger.WarnContext(r.Context(), "User not found for checkout", "UserID", userID)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("User with ID %d not found", userID))
		case errors.Is(err, domain.ErrCartEmpty):
			mLogger.WarnContext(r.Context(), "Checkout rejected: cart is empty", "UserID", userID)
			web.RespondError(w, mLogger, http.StatusBadRequest, "Cart is empty")
		case errors.Is(err, domain.ErrProductNotFound):
			mLogger.WarnContext(r.Context(), "Checkout rejected: unknown product in cart", "UserID", userID)
			web.RespondError(w, mLogger, http.StatusBadRequest, "Cart references a product that no longer exists")
		case errors.Is(err, domain.ErrInsufficientStock):
			mLogger.WarnContext(r.Context(), "Checkout rejected: insufficient stock", "UserID", userID)
			web.RespondError(w, mLogger, http.StatusBadRequest, "Insufficient stock for one or more cart items")
		default:
			mLogger.ErrorContext(r.Context(), "Error during checkout", "UserID", userID, "error", err)
			h.respondServerError(w, mLogger, fmt.Sprintf("Failed to check out cart of user %d", userID), err)
		}
		return
	}
	mLogger.InfoContext(r.Context(), "Checkout completed successfully", "UserID", userID)
	web.RespondJSON(w, mLogger, http.StatusOK, result)
}

// respondServerError writes a 500, appending error detail in development.
func (h *CartHandler) respondServerError(w http.ResponseWriter, logger *slog.Logger, message string, err error) {
	if h.verbose {
		message = fmt.Sprintf("%s: %v", message, err)
	}
	web.RespondError(w, logger, http.StatusInternalServerError, message)
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *CartHandler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
