// Package service provides the catalog and cart business logic.
package service

import (
	"context"
	"fmt"

	"github.com/mockshop/mockshop/internal/store"
)

// CatalogService defines the methods for reading the product catalog and
// adding comments. It abstracts the underlying business logic and data access.
type CatalogService interface {
	// FindAll returns all catalog products with derived ratings.
	FindAll(ctx context.Context) ([]ProductDto, error)

	// FindByID retrieves a single product with its derived rating.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id int64) (*ProductDto, error)

	// AddComment appends a comment to a product and returns the product with
	// a freshly recomputed rating. Returns ErrProductNotFound for an unknown
	// product and ErrCommentLimit when the product is at its comment ceiling.
	AddComment(ctx context.Context, id int64, comment CommentDto) (*ProductDto, error)
}

// Catalog implements CatalogService over a ProductStore.
type Catalog struct {
	repository store.ProductStore
}

// NewCatalog creates a new catalog service backed by the provided store.
func NewCatalog(repo store.ProductStore) *Catalog {
	return &Catalog{repository: repo}
}

// FindAll returns all products as DTOs with derived ratings.
func (s *Catalog) FindAll(ctx context.Context) ([]ProductDto, error) {
	products, err := s.repository.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	productDTOs := make([]ProductDto, len(products))
	for i := range products {
		productDTOs[i] = *toProductDto(&products[i])
	}
	return productDTOs, nil
}

// FindByID retrieves a product by its ID and returns it as a ProductDto.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Catalog) FindByID(ctx context.Context, id int64) (*ProductDto, error) {
	product, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %d: %w", id, err)
	}
	return toProductDto(product), nil
}

// AddComment appends a comment and returns the annotated product.
func (s *Catalog) AddComment(ctx context.Context, id int64, comment CommentDto) (*ProductDto, error) {
	updated, err := s.repository.AddComment(ctx, id, store.Comment{
		User:   comment.User,
		Text:   comment.Text,
		Rating: comment.Rating,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add comment to product %d: %w", id, err)
	}
	return toProductDto(updated), nil
}
