package service

import (
	"context"
	"fmt"

	"github.com/mockshop/mockshop/internal/store"
)

// CartService defines the methods for reading users and mutating their carts.
type CartService interface {
	// FindAll returns all users.
	FindAll(ctx context.Context) ([]UserDto, error)

	// FindByID retrieves a single user.
	// Returns ErrUserNotFound if no user exists with the given ID.
	FindByID(ctx context.Context, id int64) (*UserDto, error)

	// AddItem adds quantity of a product to the user's cart, accumulating
	// onto an existing line. Returns ErrUserNotFound, ErrProductNotFound,
	// ErrInsufficientStock or ErrCartFull.
	AddItem(ctx context.Context, userID int64, item CartAddDto) (*UserDto, error)

	// UpdateItem replaces a cart line's quantity; zero removes the line.
	// Returns ErrUserNotFound, ErrCartItemNotFound or ErrInsufficientStock.
	UpdateItem(ctx context.Context, userID, itemID, quantity int64) (*UserDto, error)

	// RemoveItem deletes a cart line.
	// Returns ErrUserNotFound or ErrCartItemNotFound.
	RemoveItem(ctx context.Context, userID, itemID int64) (*UserDto, error)

	// Checkout validates the whole cart against stock, decrements stock,
	// clears the cart and returns the post-decrement catalog. Returns
	// ErrUserNotFound, ErrCartEmpty, ErrProductNotFound or
	// ErrInsufficientStock.
	Checkout(ctx context.Context, userID int64) (*CheckoutResultDto, error)
}

// Cart implements CartService over a UserStore.
type Cart struct {
	repository store.UserStore
}

// NewCart creates a new cart service backed by the provided store.
func NewCart(repo store.UserStore) *Cart {
	return &Cart{repository: repo}
}

// FindAll returns all users as DTOs.
func (s *Cart) FindAll(ctx context.Context) ([]UserDto, error) {
	users, err := s.repository.FindAllUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	userDTOs := make([]UserDto, len(users))
	for i := range users {
		userDTOs[i] = *toUserDto(&users[i])
	}
	return userDTOs, nil
}

// FindByID retrieves a user by ID and returns it as a UserDto.
// Returns ErrUserNotFound if no user exists with the given ID.
func (s *Cart) FindByID(ctx context.Context, id int64) (*UserDto, error) {
	user, err := s.repository.FindUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user by ID %d: %w", id, err)
	}
	return toUserDto(user), nil
}

// AddItem adds a product to the user's cart.
func (s *Cart) AddItem(ctx context.Context, userID int64, item CartAddDto) (*UserDto, error) {
	user, err := s.repository.AddCartItem(ctx, userID, item.ItemID, item.Quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to add item %d to cart of user %d: %w", item.ItemID, userID, err)
	}
	return toUserDto(user), nil
}

// UpdateItem replaces a cart line's quantity; zero removes the line.
func (s *Cart) UpdateItem(ctx context.Context, userID, itemID, quantity int64) (*UserDto, error) {
	user, err := s.repository.SetCartItemQuantity(ctx, userID, itemID, quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to update item %d in cart of user %d: %w", itemID, userID, err)
	}
	return toUserDto(user), nil
}

// RemoveItem deletes a cart line.
func (s *Cart) RemoveItem(ctx context.Context, userID, itemID int64) (*UserDto, error) {
	user, err := s.repository.RemoveCartItem(ctx, userID, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to remove item %d from cart of user %d: %w", itemID, userID, err)
	}
	return toUserDto(user), nil
}

// Checkout runs the validate-all-then-apply-all checkout sequence.
func (s *Cart) Checkout(ctx context.Context, userID int64) (*CheckoutResultDto, error) {
	products, err := s.repository.Checkout(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check out cart of user %d: %w", userID, err)
	}
	productDTOs := make([]ProductDto, len(products))
	for i := range products {
		productDTOs[i] = *toProductDto(&products[i])
	}
	return &CheckoutResultDto{Success: true, Products: productDTOs}, nil
}
