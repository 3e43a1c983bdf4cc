package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/mockshop/mockshop/internal/errors"
)

func writeFixture(t *testing.T, path string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func readFixture[T any](t *testing.T, path string) []T {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out []T
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

type storeFixture struct {
	store        *FileStore
	productsPath string
	usersPath    string
}

func newTestStore(t *testing.T, products []Product, users []User, opts ...func(*Options)) *storeFixture {
	t.Helper()
	dir := t.TempDir()
	productsPath := filepath.Join(dir, "products.json")
	usersPath := filepath.Join(dir, "users.json")
	writeFixture(t, productsPath, products)
	writeFixture(t, usersPath, users)

	options := Options{
		ProductsFile: productsPath,
		UsersFile:    usersPath,
		CacheTTL:     time.Minute,
		MaxComments:  5,
		MaxCartItems: 3,
	}
	for _, opt := range opts {
		opt(&options)
	}
	return &storeFixture{
		store:        NewFileStore(options, slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))),
		productsPath: productsPath,
		usersPath:    usersPath,
	}
}

func seedProducts() []Product {
	return []Product{
		{ID: 1, Title: "Mouse", Price: 24.99, Stock: 5, Comments: []Comment{}},
		{ID: 2, Title: "Keyboard", Price: 89.50, Stock: 2, Comments: []Comment{
			{User: "alice", Text: "solid", Rating: 4},
		}},
	}
}

func seedUsers() []User {
	return []User{
		{ID: 1, CartItems: []CartItem{}, CartCount: 0},
		{ID: 2, CartItems: []CartItem{{ItemID: 1, Quantity: 2}}, CartCount: 2},
	}
}

func Test_FileStore_FindByID(t *testing.T) {
	fx := newTestStore(t, seedProducts(), seedUsers())

	found, err := fx.store.FindByID(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Keyboard", found.Title)

	_, err = fx.store.FindByID(context.Background(), 99)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func Test_FileStore_MissingFile(t *testing.T) {
	fx := newTestStore(t, seedProducts(), seedUsers())
	require.NoError(t, os.Remove(fx.productsPath))

	_, err := fx.store.FindAll(context.Background())
	assert.Error(t, err)
}

func Test_FileStore_CorruptFile(t *testing.T) {
	fx := newTestStore(t, seedProducts(), seedUsers())
	require.NoError(t, os.WriteFile(fx.productsPath, []byte("{not json"), 0o644))

	_, err := fx.store.FindAll(context.Background())
	assert.Error(t, err)
}

func Test_FileStore_SnapshotTTL(t *testing.T) {
	fx := newTestStore(t, seedProducts(), seedUsers(), func(o *Options) {
		o.CacheTTL = 50 * time.Millisecond
	})

	// First read fills the snapshot.
	products, err := fx.store.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)

	// An external rewrite is invisible while the snapshot is fresh.
	writeFixture(t, fx.productsPath, seedProducts()[:1])
	products, err = fx.store.FindAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 2)

	// After the TTL lapses the file is parsed again.
	time.Sleep(60 * time.Millisecond)
	products, err = fx.store.FindAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func Test_FileStore_AddComment(t *testing.T) {
	fx := newTestStore(t, seedProducts(), seedUsers())

	updated, err := fx.store.AddComment(context.Background(), 1, Comment{User: "bob", Text: "nice", Rating: 5})
	require.NoError(t, err)
	require.Len(t, updated.Comments, 1)
	assert.Equal(t, "bob", updated.Comments[0].User)

	// The write is persisted to the backing file.
	persisted := readFixture[Product](t, fx.productsPath)
	require.Len(t, persisted[0].Comments, 1)

	_, err = fx.store.AddComment(context.Background(), 99, Comment{User: "bob", Text: "nice", Rating: 5})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func Test_FileStore_AddComment_Ceiling(t *testing.T) {
	products := seedProducts()
	for i := 0; i < 5; i++ {
		products[0].Comments = append(products[0].Comments, Comment{User: "u", Text: "t", Rating: 3})
	}
	fx := newTestStore(t, products, seedUsers())

	_, err := fx.store.AddComment(context.Background(), 1, Comment{User: "bob", Text: "one too many", Rating: 5})
	assert.ErrorIs(t, err, domain.ErrCommentLimit)
}

func Test_FileStore_AddCartItem(t *testing.T) {
	testCases := []struct {
		name          string
		userID        int64
		itemID        int64
		quantity      int64
		expectedErr   error
		expectedItems []CartItem
		expectedCount int64
	}{
		{
			name:          "Success - add to empty cart",
			userID:        1,
			itemID:        1,
			quantity:      2,
			expectedItems: []CartItem{{ItemID: 1, Quantity: 2}},
			expectedCount: 2,
		},
		{
			name:          "Success - same item accumulates",
			userID:        2,
			itemID:        1,
			quantity:      3,
			expectedItems: []CartItem{{ItemID: 1, Quantity: 5}},
			expectedCount: 5,
		},
		{
			name:        "Error - quantity exceeds stock",
			userID:      1,
			itemID:      2,
			quantity:    3,
			expectedErr: domain.ErrInsufficientStock,
		},
		{
			name:        "Error - accumulated quantity exceeds stock",
			userID:      2,
			itemID:      1,
			quantity:    4,
			expectedErr: domain.ErrInsufficientStock,
		},
		{
			name:        "Error - unknown product",
			userID:      1,
			itemID:      42,
			quantity:    1,
			expectedErr: domain.ErrProductNotFound,
		},
		{
			name:        "Error - unknown user",
			userID:      42,
			itemID:      1,
			quantity:    1,
			expectedErr: domain.ErrUserNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fx := newTestStore(t, seedProducts(), seedUsers())
			// when
			updated, err := fx.store.AddCartItem(context.Background(), tc.userID, tc.itemID, tc.quantity)
			// then
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedItems, updated.CartItems)
			assert.Equal(t, tc.expectedCount, updated.CartCount)
		})
	}
}

func Test_FileStore_AddCartItem_CartFull(t *testing.T) {
	products := seedProducts()
	products = append(products,
		Product{ID: 3, Title: "Hub", Stock: 9},
		Product{ID: 4, Title: "Cable", Stock: 9},
	)
	users := []User{{ID: 1, CartItems: []CartItem{
		{ItemID: 1, Quantity: 1},
		{ItemID: 2, Quantity: 1},
		{ItemID: 3, Quantity: 1},
	}, CartCount: 3}}
	fx := newTestStore(t, products, users)

	_, err := fx.store.AddCartItem(context.Background(), 1, 4, 1)
	assert.ErrorIs(t, err, domain.ErrCartFull)

	// Accumulating onto an existing line is still allowed.
	updated, err := fx.store.AddCartItem(context.Background(), 1, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(4), updated.CartCount)
}

func Test_FileStore_SetCartItemQuantity(t *testing.T) {
	testCases := []struct {
		name          string
		userID        int64
		itemID        int64
		quantity      int64
		expectedErr   error
		expectedItems []CartItem
		expectedCount int64
	}{
		{
			name:          "Success - quantity replaced",
			userID:        2,
			itemID:        1,
			quantity:      4,
			expectedItems: []CartItem{{ItemID: 1, Quantity: 4}},
			expectedCount: 4,
		},
		{
			name:          "Success - zero removes the line",
			userID:        2,
			itemID:        1,
			quantity:      0,
			expectedItems: []CartItem{},
			expectedCount: 0,
		},
		{
			name:        "Error - line not in cart",
			userID:      1,
			itemID:      1,
			quantity:    1,
			expectedErr: domain.ErrCartItemNotFound,
		},
		{
			name:        "Error - quantity exceeds stock",
			userID:      2,
			itemID:      1,
			quantity:    6,
			expectedErr: domain.ErrInsufficientStock,
		},
		{
			name:        "Error - unknown user",
			userID:      42,
			itemID:      1,
			quantity:    1,
			expectedErr: domain.ErrUserNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fx := newTestStore(t, seedProducts(), seedUsers())
			// when
			updated, err := fx.store.SetCartItemQuantity(context.Background(), tc.userID, tc.itemID, tc.quantity)
			// then
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedItems, updated.CartItems)
			assert.Equal(t, tc.expectedCount, updated.CartCount)
		})
	}
}

func Test_FileStore_RemoveCartItem(t *testing.T) {
	fx := newTestStore(t, seedProducts(), seedUsers())

	updated, err := fx.store.RemoveCartItem(context.Background(), 2, 1)
	require.NoError(t, err)
	assert.Empty(t, updated.CartItems)
	assert.Equal(t, int64(0), updated.CartCount)

	_, err = fx.store.RemoveCartItem(context.Background(), 2, 1)
	assert.ErrorIs(t, err, domain.ErrCartItemNotFound)
}

func Test_FileStore_Checkout(t *testing.T) {
	fx := newTestStore(t, seedProducts(), seedUsers())

	// User 2 holds 2 of product 1 (stock 5).
	products, err := fx.store.Checkout(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), products[0].Stock)
	assert.Equal(t, int64(2), products[1].Stock)

	user, err := fx.store.FindUserByID(context.Background(), 2)
	require.NoError(t, err)
	assert.Empty(t, user.CartItems)
	assert.Equal(t, int64(0), user.CartCount)

	// Both collections hit the disk.
	assert.Equal(t, int64(3), readFixture[Product](t, fx.productsPath)[0].Stock)
	assert.Empty(t, readFixture[User](t, fx.usersPath)[1].CartItems)

	// Re-running checkout reports the empty cart, not a stock problem.
	_, err = fx.store.Checkout(context.Background(), 2)
	assert.ErrorIs(t, err, domain.ErrCartEmpty)
}

func Test_FileStore_Checkout_InsufficientStock(t *testing.T) {
	users := []User{{ID: 1, CartItems: []CartItem{
		{ItemID: 1, Quantity: 2},
		{ItemID: 2, Quantity: 3}, // stock is only 2
	}, CartCount: 5}}
	fx := newTestStore(t, seedProducts(), users)

	_, err := fx.store.Checkout(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// No partial decrement, cart untouched.
	products, err := fx.store.FindAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), products[0].Stock)
	assert.Equal(t, int64(2), products[1].Stock)

	user, err := fx.store.FindUserByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, user.CartItems, 2)
	assert.Equal(t, int64(5), user.CartCount)
}

func Test_FileStore_Checkout_UnknownProduct(t *testing.T) {
	users := []User{{ID: 1, CartItems: []CartItem{{ItemID: 42, Quantity: 1}}, CartCount: 1}}
	fx := newTestStore(t, seedProducts(), users)

	_, err := fx.store.Checkout(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func Test_FileStore_StockScenario(t *testing.T) {
	products := []Product{{ID: 1, Title: "Widget", Stock: 5}}
	users := []User{{ID: 1, CartItems: []CartItem{}, CartCount: 0}}
	fx := newTestStore(t, products, users)
	ctx := context.Background()

	// Requesting 6 of a stock of 5 is rejected.
	_, err := fx.store.AddCartItem(ctx, 1, 1, 6)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// Requesting exactly the stock succeeds.
	user, err := fx.store.AddCartItem(ctx, 1, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), user.CartCount)

	// Checkout drains the stock to zero and empties the cart.
	checkedOut, err := fx.store.Checkout(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), checkedOut[0].Stock)

	user, err = fx.store.FindUserByID(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, user.CartItems)
}

func Test_FileStore_ConcurrentAdds(t *testing.T) {
	products := []Product{{ID: 1, Title: "Widget", Stock: 100}}
	users := []User{{ID: 1, CartItems: []CartItem{}, CartCount: 0}}
	fx := newTestStore(t, products, users)

	const workers = 10
	done := make(chan error, workers)
	for i := 0; i < workers; i++ {
		go func() {
			_, err := fx.store.AddCartItem(context.Background(), 1, 1, 1)
			done <- err
		}()
	}
	for i := 0; i < workers; i++ {
		require.NoError(t, <-done)
	}

	// Serialized mutations lose no updates.
	user, err := fx.store.FindUserByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(workers), user.CartCount)
}

func Test_FileStore_PrettyPersistence(t *testing.T) {
	fx := newTestStore(t, seedProducts(), seedUsers(), func(o *Options) {
		o.Pretty = true
	})

	_, err := fx.store.AddComment(context.Background(), 1, Comment{User: "bob", Text: "nice", Rating: 5})
	require.NoError(t, err)

	data, err := os.ReadFile(fx.productsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  ")
}
