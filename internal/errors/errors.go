// Package errors provides the domain error values shared by the catalog and
// cart services.
package errors

import "errors"

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrCartItemNotFound = errors.New("cart item not found")

	ErrInsufficientStock = errors.New("requested quantity exceeds stock")
	ErrCartEmpty         = errors.New("cart is empty")
	ErrCartFull          = errors.New("cart item limit reached")
	ErrCommentLimit      = errors.New("comment limit reached")
)
