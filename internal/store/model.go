package store

// Comment is a single product review. Rating is constrained to 1..5 at the
// transport layer.
type Comment struct {
	User   string `json:"user"`
	Text   string `json:"text"`
	Rating int    `json:"rating"`
}

// Product is a catalog entry as persisted in the products file. The average
// rating is derived from Comments and never stored.
type Product struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	Price    float64   `json:"price"`
	Stock    int64     `json:"stock"`
	Comments []Comment `json:"comments"`
}

// CartItem is one cart line. ItemID is a soft reference to a Product ID.
type CartItem struct {
	ItemID   int64 `json:"itemId"`
	Quantity int64 `json:"quantity"`
}

// User is a shopper as persisted in the users file. CartCount is the sum of
// cart line quantities and is recomputed after every cart mutation.
type User struct {
	ID        int64      `json:"id"`
	CartItems []CartItem `json:"cartItems"`
	CartCount int64      `json:"cartCount"`
}

// cartCount sums the quantities of the given cart lines.
func cartCount(items []CartItem) int64 {
	var total int64
	for _, item := range items {
		total += item.Quantity
	}
	return total
}
