// Package store provides the storage interfaces for products and users and a
// JSON file implementation.
package store

import "context"

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, file-backed).
type ProductStore interface {
	// FindAll returns all catalog products.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]Product, error)

	// FindByID retrieves a single product by its numeric identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id int64) (*Product, error)

	// AddComment appends a comment to a product and persists the collection.
	// Returns ErrProductNotFound if the product is unknown and ErrCommentLimit
	// when the product already holds the configured comment ceiling.
	AddComment(ctx context.Context, id int64, comment Comment) (*Product, error)
}

// UserStore is an interface for user and cart storage operations. Cart
// mutations recompute the derived cart count before persisting.
type UserStore interface {
	// FindAllUsers returns all users.
	FindAllUsers(ctx context.Context) ([]User, error)

	// FindUserByID retrieves a single user by its numeric identifier.
	// Returns ErrUserNotFound if no user exists with the given ID.
	FindUserByID(ctx context.Context, id int64) (*User, error)

	// AddCartItem adds quantity of a product to the user's cart, accumulating
	// onto an existing line for the same product. Returns ErrProductNotFound
	// if the product is unknown, ErrInsufficientStock when the accumulated
	// quantity would exceed the product's stock, and ErrCartFull when the
	// cart is at its line ceiling.
	AddCartItem(ctx context.Context, userID, itemID, quantity int64) (*User, error)

	// SetCartItemQuantity replaces the quantity of an existing cart line.
	// Quantity 0 removes the line. Returns ErrCartItemNotFound if the user
	// has no line for the product and ErrInsufficientStock when the new
	// quantity exceeds the product's stock.
	SetCartItemQuantity(ctx context.Context, userID, itemID, quantity int64) (*User, error)

	// RemoveCartItem deletes a cart line.
	// Returns ErrCartItemNotFound if the user has no line for the product.
	RemoveCartItem(ctx context.Context, userID, itemID int64) (*User, error)

	// Checkout validates every cart line against current stock and, only when
	// all lines pass, decrements stock, clears the cart and persists both
	// collections. Returns ErrCartEmpty, ErrProductNotFound or
	// ErrInsufficientStock on rejection, leaving both collections untouched.
	Checkout(ctx context.Context, userID int64) ([]Product, error)
}
