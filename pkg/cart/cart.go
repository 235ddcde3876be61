// Package cart is the client-held shopping cart: one line per product, with
// the price breakdown recomputed and persisted alongside the lines on every
// change.
package cart

import (
	"encoding/json"
	"fmt"
	"sync"

	"storefront/internal/pricing"
)

// Storage keys.
const (
	KeyCartItems     = "cartItems"
	KeyItemsPrice    = "itemsPrice"
	KeyShippingPrice = "shippingPrice"
	KeyTaxPrice      = "taxPrice"
	KeyTotalPrice    = "totalPrice"
)

// Product is the catalog snapshot a line is built from.
type Product struct {
	ID           string
	Name         string
	Image        string
	Price        float64
	CountInStock int
}

// Line is one product in the cart.
type Line struct {
	ProductID    string  `json:"product"`
	Name         string  `json:"name"`
	Image        string  `json:"image"`
	UnitPrice    float64 `json:"price"`
	Quantity     int     `json:"qty"`
	CountInStock int     `json:"countInStock"`
}

// Store holds the cart. It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	storage Storage
	policy  pricing.Policy
	lines   []Line
	totals  pricing.Breakdown
}

// New loads the cart from storage. An unreadable saved line list starts an
// empty cart instead of failing.
func New(storage Storage, policy pricing.Policy) (*Store, error) {
	s := &Store{storage: storage, policy: policy}

	raw, ok, err := storage.Load(KeyCartItems)
	if err != nil {
		return nil, err
	}
	if ok {
		var lines []Line
		if json.Unmarshal([]byte(raw), &lines) == nil {
			s.lines = lines
		}
	}
	s.totals = policy.Compute(pricingLines(s.lines))
	return s, nil
}

// AddItem puts product in the cart with quantity qty. A product already in
// the cart has its quantity replaced, not increased. Non-positive
// quantities are ignored.
func (s *Store) AddItem(p Product, qty int) error {
	if qty <= 0 {
		return nil
	}
	line := Line{
		ProductID:    p.ID,
		Name:         p.Name,
		Image:        p.Image,
		UnitPrice:    p.Price,
		Quantity:     qty,
		CountInStock: p.CountInStock,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]Line, 0, len(s.lines)+1)
	replaced := false
	for _, l := range s.lines {
		if l.ProductID == p.ID {
			next = append(next, line)
			replaced = true
			continue
		}
		next = append(next, l)
	}
	if !replaced {
		next = append(next, line)
	}
	return s.commit(next)
}

// UpdateQuantity sets the quantity of a product already in the cart.
func (s *Store) UpdateQuantity(productID string, qty int) error {
	if qty <= 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := append([]Line(nil), s.lines...)
	for i := range next {
		if next[i].ProductID == productID {
			next[i].Quantity = qty
			return s.commit(next)
		}
	}
	return nil
}

// RemoveItem drops a product from the cart; removing an absent product is
// not an error.
func (s *Store) RemoveItem(productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]Line, 0, len(s.lines))
	for _, l := range s.lines {
		if l.ProductID != productID {
			next = append(next, l)
		}
	}
	return s.commit(next)
}

// Clear empties the cart.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit([]Line{})
}

// Lines returns a copy of the cart lines.
func (s *Store) Lines() []Line {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Line(nil), s.lines...)
}

// Totals returns the breakdown computed at the last change.
func (s *Store) Totals() pricing.Breakdown {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totals
}

// ItemCount is the total quantity across lines.
func (s *Store) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, l := range s.lines {
		n += l.Quantity
	}
	return n
}

// commit persists next with its breakdown and only then makes it current,
// so a storage failure leaves the cart as it was. Callers hold s.mu.
func (s *Store) commit(next []Line) error {
	totals := s.policy.Compute(pricingLines(next))

	raw, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	items, shipping, tax, total := totals.Strings()
	if err := s.storage.Save(map[string]string{
		KeyCartItems:     string(raw),
		KeyItemsPrice:    items,
		KeyShippingPrice: shipping,
		KeyTaxPrice:      tax,
		KeyTotalPrice:    total,
	}); err != nil {
		return err
	}

	s.lines = next
	s.totals = totals
	return nil
}

func pricingLines(lines []Line) []pricing.Line {
	out := make([]pricing.Line, len(lines))
	for i, l := range lines {
		out[i] = pricing.Line{UnitPrice: l.UnitPrice, Quantity: l.Quantity}
	}
	return out
}
