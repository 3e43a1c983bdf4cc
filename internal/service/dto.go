package service

import (
	"math"

	"github.com/mockshop/mockshop/internal/store"
)

// CommentDto represents a product comment in requests and responses.
type CommentDto struct {
	User   string `json:"user"   validate:"required,max=100"`
	Text   string `json:"text"   validate:"required,max=500"`
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
}

// ProductDto represents a catalog product. Rating is the mean of the comment
// ratings rounded to two decimals, or null when the product has no comments.
type ProductDto struct {
	ID       int64        `json:"id"`
	Title    string       `json:"title"`
	Price    float64      `json:"price"`
	Stock    int64        `json:"stock"`
	Comments []CommentDto `json:"comments"`
	Rating   *float64     `json:"rating"`
}

// CartItemDto represents one cart line.
type CartItemDto struct {
	ItemID   int64 `json:"itemId"`
	Quantity int64 `json:"quantity"`
}

// UserDto represents a user with their cart and the derived cart count.
type UserDto struct {
	ID        int64         `json:"id"`
	CartItems []CartItemDto `json:"cartItems"`
	CartCount int64         `json:"cartCount"`
}

// CartAddDto is the request body for adding a product to a cart.
type CartAddDto struct {
	ItemID   int64 `json:"itemId"   validate:"required,min=1"`
	Quantity int64 `json:"quantity" validate:"required,min=1"`
}

// CartUpdateDto is the request body for replacing a cart line's quantity.
// Quantity zero removes the line.
type CartUpdateDto struct {
	Quantity *int64 `json:"quantity" validate:"required,min=0"`
}

// CheckoutResultDto is the checkout response: the post-decrement catalog.
type CheckoutResultDto struct {
	Success  bool         `json:"success"`
	Products []ProductDto `json:"products"`
}

// toProductDto converts a stored product, deriving the average rating.
func toProductDto(p *store.Product) *ProductDto {
	comments := make([]CommentDto, len(p.Comments))
	for i, c := range p.Comments {
		comments[i] = CommentDto{User: c.User, Text: c.Text, Rating: c.Rating}
	}
	return &ProductDto{
		ID:       p.ID,
		Title:    p.Title,
		Price:    p.Price,
		Stock:    p.Stock,
		Comments: comments,
		Rating:   averageRating(p.Comments),
	}
}

// toUserDto converts a stored user.
func toUserDto(u *store.User) *UserDto {
	items := make([]CartItemDto, len(u.CartItems))
	for i, item := range u.CartItems {
		items[i] = CartItemDto{ItemID: item.ItemID, Quantity: item.Quantity}
	}
	return &UserDto{
		ID:        u.ID,
		CartItems: items,
		CartCount: u.CartCount,
	}
}

// averageRating returns the mean comment rating rounded to two decimals, or
// nil when there are no comments.
func averageRating(comments []store.Comment) *float64 {
	if len(comments) == 0 {
		return nil
	}
	var sum int
	for _, c := range comments {
		sum += c.Rating
	}
	avg := math.Round(float64(sum)/float64(len(comments))*100) / 100
	return &avg
}
