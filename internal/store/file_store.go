package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	domain "github.com/mockshop/mockshop/internal/errors"
)

// Options configures the JSON file store.
type Options struct {
	ProductsFile string
	UsersFile    string
	// CacheTTL bounds how long an in-memory snapshot is served before the
	// backing file is parsed again.
	CacheTTL     time.Duration
	MaxComments  int
	MaxCartItems int
	// Pretty persists indented JSON. Enabled in development so the data
	// files stay hand-editable.
	Pretty bool
}

// FileStore implements ProductStore and UserStore over two flat JSON files,
// one array per collection. Each collection is guarded by its own lock, so
// concurrent mutations of the same resource serialize instead of racing
// read-modify-write. When both collections are touched (checkout), the
// products lock is always taken before the users lock.
type FileStore struct {
	opts   Options
	logger *slog.Logger
	sf     singleflight.Group

	productsMu sync.RWMutex
	products   []Product
	productsAt time.Time

	usersMu sync.RWMutex
	users   []User
	usersAt time.Time
}

var (
	_ ProductStore = (*FileStore)(nil)
	_ UserStore    = (*FileStore)(nil)
)

// NewFileStore creates a store over the configured product and user files.
// Files are parsed lazily on first read.
func NewFileStore(opts Options, logger *slog.Logger) *FileStore {
	return &FileStore{
		opts:   opts,
		logger: logger.With("component", "file_store"),
	}
}

// FindAll returns the current product collection, served from the snapshot
// when it is younger than the cache TTL.
func (s *FileStore) FindAll(ctx context.Context) ([]Product, error) {
	s.productsMu.RLock()
	if s.productsFresh() {
		products := append([]Product(nil), s.products...)
		s.productsMu.RUnlock()
		return products, nil
	}
	s.productsMu.RUnlock()

	// Collapse concurrent reloads into a single file parse.
	_, err, _ := s.sf.Do("products", func() (any, error) {
		s.productsMu.Lock()
		defer s.productsMu.Unlock()
		return nil, s.reloadProductsLocked()
	})
	if err != nil {
		return nil, err
	}

	s.productsMu.RLock()
	defer s.productsMu.RUnlock()
	return append([]Product(nil), s.products...), nil
}

// FindByID retrieves a product by ID.
func (s *FileStore) FindByID(ctx context.Context, id int64) (*Product, error) {
	products, err := s.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID == id {
			return &products[i], nil
		}
	}
	return nil, domain.ErrProductNotFound
}

// AddComment appends a comment to the product and persists the collection.
func (s *FileStore) AddComment(ctx context.Context, id int64, comment Comment) (*Product, error) {
	s.productsMu.Lock()
	defer s.productsMu.Unlock()
	if err := s.ensureProductsLocked(); err != nil {
		return nil, err
	}

	idx := indexOfProduct(s.products, id)
	if idx < 0 {
		return nil, domain.ErrProductNotFound
	}
	if len(s.products[idx].Comments) >= s.opts.MaxComments {
		return nil, domain.ErrCommentLimit
	}

	products := append([]Product(nil), s.products...)
	products[idx].Comments = append(append([]Comment(nil), products[idx].Comments...), comment)

	if err := s.persistProductsLocked(products); err != nil {
		return nil, err
	}
	updated := products[idx]
	return &updated, nil
}

// FindAllUsers returns the current user collection, served from the snapshot
// when it is younger than the cache TTL.
func (s *FileStore) FindAllUsers(ctx context.Context) ([]User, error) {
	s.usersMu.RLock()
	if s.usersFresh() {
		users := append([]User(nil), s.users...)
		s.usersMu.RUnlock()
		return users, nil
	}
	s.usersMu.RUnlock()

	_, err, _ := s.sf.Do("users", func() (any, error) {
		s.usersMu.Lock()
		defer s.usersMu.Unlock()
		return nil, s.reloadUsersLocked()
	})
	if err != nil {
		return nil, err
	}

	s.usersMu.RLock()
	defer s.usersMu.RUnlock()
	return append([]User(nil), s.users...), nil
}

// FindUserByID retrieves a user by ID.
func (s *FileStore) FindUserByID(ctx context.Context, id int64) (*User, error) {
	users, err := s.FindAllUsers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// AddCartItem adds quantity of a product to the user's cart. An existing line
// for the same product accumulates; the accumulated quantity must not exceed
// the product's current stock.
func (s *FileStore) AddCartItem(ctx context.Context, userID, itemID, quantity int64) (*User, error) {
	product, err := s.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	s.usersMu.Lock()
	defer s.usersMu.Unlock()
	if err := s.ensureUsersLocked(); err != nil {
		return nil, err
	}

	idx := indexOfUser(s.users, userID)
	if idx < 0 {
		return nil, domain.ErrUserNotFound
	}

	users := append([]User(nil), s.users...)
	items := append([]CartItem(nil), users[idx].CartItems...)

	line := indexOfCartItem(items, itemID)
	requested := quantity
	if line >= 0 {
		requested += items[line].Quantity
	}
	if requested > product.Stock {
		return nil, domain.ErrInsufficientStock
	}
	if line < 0 && len(items) >= s.opts.MaxCartItems {
		return nil, domain.ErrCartFull
	}

	if line >= 0 {
		items[line].Quantity = requested
	} else {
		items = append(items, CartItem{ItemID: itemID, Quantity: quantity})
	}
	users[idx].CartItems = items
	users[idx].CartCount = cartCount(items)

	if err := s.persistUsersLocked(users); err != nil {
		return nil, err
	}
	updated := users[idx]
	return &updated, nil
}

// SetCartItemQuantity replaces the quantity of an existing cart line.
// Quantity 0 removes the line. The new quantity is checked against current
// stock when the referenced product still exists.
func (s *FileStore) SetCartItemQuantity(ctx context.Context, userID, itemID, quantity int64) (*User, error) {
	var stock = int64(-1)
	if quantity > 0 {
		// Cart lines are soft references; an orphaned line can still be
		// updated or cleared.
		if product, err := s.FindByID(ctx, itemID); err == nil {
			stock = product.Stock
		} else if !errors.Is(err, domain.ErrProductNotFound) {
			return nil, err
		}
	}

	s.usersMu.Lock()
	defer s.usersMu.Unlock()
	if err := s.ensureUsersLocked(); err != nil {
		return nil, err
	}

	idx := indexOfUser(s.users, userID)
	if idx < 0 {
		return nil, domain.ErrUserNotFound
	}

	users := append([]User(nil), s.users...)
	items := append([]CartItem(nil), users[idx].CartItems...)

	line := indexOfCartItem(items, itemID)
	if line < 0 {
		return nil, domain.ErrCartItemNotFound
	}
	if stock >= 0 && quantity > stock {
		return nil, domain.ErrInsufficientStock
	}

	if quantity == 0 {
		items = append(items[:line], items[line+1:]...)
	} else {
		items[line].Quantity = quantity
	}
	users[idx].CartItems = items
	users[idx].CartCount = cartCount(items)

	if err := s.persistUsersLocked(users); err != nil {
		return nil, err
	}
	updated := users[idx]
	return &updated, nil
}

// RemoveCartItem deletes a cart line.
func (s *FileStore) RemoveCartItem(ctx context.Context, userID, itemID int64) (*User, error) {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()
	if err := s.ensureUsersLocked(); err != nil {
		return nil, err
	}

	idx := indexOfUser(s.users, userID)
	if idx < 0 {
		return nil, domain.ErrUserNotFound
	}

	users := append([]User(nil), s.users...)
	items := append([]CartItem(nil), users[idx].CartItems...)

	line := indexOfCartItem(items, itemID)
	if line < 0 {
		return nil, domain.ErrCartItemNotFound
	}
	items = append(items[:line], items[line+1:]...)
	users[idx].CartItems = items
	users[idx].CartCount = cartCount(items)

	if err := s.persistUsersLocked(users); err != nil {
		return nil, err
	}
	updated := users[idx]
	return &updated, nil
}

// Checkout validates every cart line against current stock and only then
// decrements stock and clears the cart. Rejection leaves both collections
// untouched. The product file is persisted before the user file; a failure
// persisting users leaves the decremented stock on disk with the cart
// intact, mirroring the non-transactional two-file layout.
func (s *FileStore) Checkout(ctx context.Context, userID int64) ([]Product, error) {
	s.productsMu.Lock()
	defer s.productsMu.Unlock()
	s.usersMu.Lock()
	defer s.usersMu.Unlock()

	if err := s.ensureProductsLocked(); err != nil {
		return nil, err
	}
	if err := s.ensureUsersLocked(); err != nil {
		return nil, err
	}

	uIdx := indexOfUser(s.users, userID)
	if uIdx < 0 {
		return nil, domain.ErrUserNotFound
	}
	cart := s.users[uIdx].CartItems
	if len(cart) == 0 {
		return nil, domain.ErrCartEmpty
	}

	// Phase one: validate every line before touching anything.
	for _, line := range cart {
		pIdx := indexOfProduct(s.products, line.ItemID)
		if pIdx < 0 {
			return nil, domain.ErrProductNotFound
		}
		if line.Quantity > s.products[pIdx].Stock {
			return nil, domain.ErrInsufficientStock
		}
	}

	// Phase two: apply every decrement and clear the cart.
	products := append([]Product(nil), s.products...)
	for _, line := range cart {
		pIdx := indexOfProduct(products, line.ItemID)
		products[pIdx].Stock -= line.Quantity
	}
	users := append([]User(nil), s.users...)
	users[uIdx].CartItems = []CartItem{}
	users[uIdx].CartCount = 0

	if err := s.persistProductsLocked(products); err != nil {
		return nil, err
	}
	if err := s.persistUsersLocked(users); err != nil {
		s.logger.Error("checkout persisted products but not users", "user_id", userID, "error", err)
		return nil, err
	}
	return append([]Product(nil), products...), nil
}

// productsFresh reports whether the product snapshot is within its TTL.
// Caller must hold productsMu.
func (s *FileStore) productsFresh() bool {
	return !s.productsAt.IsZero() && time.Since(s.productsAt) < s.opts.CacheTTL
}

// usersFresh reports whether the user snapshot is within its TTL.
// Caller must hold usersMu.
func (s *FileStore) usersFresh() bool {
	return !s.usersAt.IsZero() && time.Since(s.usersAt) < s.opts.CacheTTL
}

// ensureProductsLocked reloads the product snapshot when it is stale.
// Caller must hold the write lock.
func (s *FileStore) ensureProductsLocked() error {
	if s.productsFresh() {
		return nil
	}
	return s.reloadProductsLocked()
}

// ensureUsersLocked reloads the user snapshot when it is stale.
// Caller must hold the write lock.
func (s *FileStore) ensureUsersLocked() error {
	if s.usersFresh() {
		return nil
	}
	return s.reloadUsersLocked()
}

func (s *FileStore) reloadProductsLocked() error {
	if s.productsFresh() {
		return nil
	}
	var products []Product
	if err := readJSONFile(s.opts.ProductsFile, &products); err != nil {
		return fmt.Errorf("failed to load products: %w", err)
	}
	s.products = products
	s.productsAt = time.Now()
	s.logger.Debug("products reloaded from file", "count", len(products))
	return nil
}

func (s *FileStore) reloadUsersLocked() error {
	if s.usersFresh() {
		return nil
	}
	var users []User
	if err := readJSONFile(s.opts.UsersFile, &users); err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}
	s.users = users
	s.usersAt = time.Now()
	s.logger.Debug("users reloaded from file", "count", len(users))
	return nil
}

// persistProductsLocked writes the collection to disk and, on success,
// replaces the snapshot and resets its timestamp. A failed write leaves both
// the file and the snapshot as they were.
func (s *FileStore) persistProductsLocked(products []Product) error {
	if err := writeJSONFile(s.opts.ProductsFile, products, s.opts.Pretty); err != nil {
		return fmt.Errorf("failed to persist products: %w", err)
	}
	s.products = products
	s.productsAt = time.Now()
	return nil
}

func (s *FileStore) persistUsersLocked(users []User) error {
	if err := writeJSONFile(s.opts.UsersFile, users, s.opts.Pretty); err != nil {
		return fmt.Errorf("failed to persist users: %w", err)
	}
	s.users = users
	s.usersAt = time.Now()
	return nil
}

// readJSONFile parses one collection file. A missing or malformed file is an
// error; there is no fallback or repair.
func readJSONFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("invalid JSON in %s: %w", filepath.Base(path), err)
	}
	return nil
}

// writeJSONFile replaces a collection file via write-to-temp and rename, so a
// crashed write never leaves a torn file behind.
func writeJSONFile(path string, in any, pretty bool) error {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(in, "", "  ")
	} else {
		data, err = json.Marshal(in)
	}
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func indexOfProduct(products []Product, id int64) int {
	for i := range products {
		if products[i].ID == id {
			return i
		}
	}
	return -1
}

func indexOfUser(users []User, id int64) int {
	for i := range users {
		if users[i].ID == id {
			return i
		}
	}
	return -1
}

func indexOfCartItem(items []CartItem, itemID int64) int {
	for i := range items {
		if items[i].ItemID == itemID {
			return i
		}
	}
	return -1
}
