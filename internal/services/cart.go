package services

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"tmm-bienestar/internal/models"
	"tmm-bienestar/internal/store"
)

// CartService maintains the purchasable-items basket per browser,
// independent of server state until checkout. Every mutation persists the
// full item list; the persisted copy seeds the next read, so the cart
// survives restarts and new tabs.
type CartService struct {
	mu    sync.Mutex
	store store.Store
}

// NewCartService creates a new cart service.
func NewCartService(st store.Store) *CartService {
	return &CartService{store: st}
}

// Items loads the current cart. A missing or corrupt stored payload yields
// an empty cart rather than an error.
func (s *CartService) Items(ctx context.Context, browserID string) []models.CartItem {
	raw, ok, err := s.store.Get(ctx, browserID, store.KeyCart)
	if err != nil {
		log.Printf("Failed to load cart: %v", err)
		return nil
	}
	if !ok || raw == "" {
		return nil
	}

	var items []models.CartItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		// Corrupt payload: start over with an empty cart.
		log.Printf("Discarding malformed stored cart: %v", err)
		return nil
	}
	return items
}

// Add puts an item in the cart. A line with the same uniqueId already
// present has its quantity incremented instead of being duplicated.
// Quantity defaults to 1; MaxQuantity, when set, caps the merged total.
func (s *CartService) Add(ctx context.Context, browserID string, item models.CartItem) ([]models.CartItem, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	item.UniqueID = models.CartKey(item.Type, item.ID)

	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.Items(ctx, browserID)
	merged := false
	for i := range items {
		if items[i].UniqueID == item.UniqueID {
			items[i].Quantity += item.Quantity
			if items[i].MaxQuantity > 0 && items[i].Quantity > items[i].MaxQuantity {
				items[i].Quantity = items[i].MaxQuantity
			}
			merged = true
			break
		}
	}
	if !merged {
		if item.MaxQuantity > 0 && item.Quantity > item.MaxQuantity {
			item.Quantity = item.MaxQuantity
		}
		items = append(items, item)
	}

	if err := s.persist(ctx, browserID, items); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateQuantity sets a line's quantity exactly. A quantity below 1 removes
// the line entirely.
func (s *CartService) UpdateQuantity(ctx context.Context, browserID, uniqueID string, quantity int) ([]models.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.Items(ctx, browserID)
	if quantity < 1 {
		items = removeItem(items, uniqueID)
	} else {
		for i := range items {
			if items[i].UniqueID == uniqueID {
				items[i].Quantity = quantity
				break
			}
		}
	}

	if err := s.persist(ctx, browserID, items); err != nil {
		return nil, err
	}
	return items, nil
}

// Remove filters the line out. Removing an absent line is not an error.
func (s *CartService) Remove(ctx context.Context, browserID, uniqueID string) ([]models.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := removeItem(s.Items(ctx, browserID), uniqueID)
	if err := s.persist(ctx, browserID, items); err != nil {
		return nil, err
	}
	return items, nil
}

// Clear empties the cart, e.g. after a successful order.
func (s *CartService) Clear(ctx context.Context, browserID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persist(ctx, browserID, nil)
}

func (s *CartService) persist(ctx context.Context, browserID string, items []models.CartItem) error {
	if items == nil {
		items = []models.CartItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, browserID, store.KeyCart, string(raw))
}

func removeItem(items []models.CartItem, uniqueID string) []models.CartItem {
	kept := items[:0]
	for _, item := range items {
		if item.UniqueID != uniqueID {
			kept = append(kept, item)
		}
	}
	return kept
}

// CartTotal sums price times quantity over the items. Recomputed on every
// read, never cached.
func CartTotal(items []models.CartItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Subtotal()
	}
	return total
}

// CartCount sums the quantities over the items.
func CartCount(items []models.CartItem) int {
	var count int
	for _, item := range items {
		count += item.Quantity
	}
	return count
}
