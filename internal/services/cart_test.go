package services

import (
	"context"
	"testing"
	"time"

	"tmm-bienestar/internal/models"
	"tmm-bienestar/internal/store"
)

func newTestCart(t *testing.T) (*CartService, store.Store) {
	t.Helper()
	st := store.NewMemoryStore(time.Hour)
	return NewCartService(st), st
}

func kitItem(id, quantity int) models.CartItem {
	return models.CartItem{
		ID:       id,
		Type:     models.CartItemProduct,
		Title:    "Kit de bordado",
		Price:    12990,
		Quantity: quantity,
	}
}

func TestCartAddMergesSameLine(t *testing.T) {
	cart, _ := newTestCart(t)
	ctx := context.Background()

	if _, err := cart.Add(ctx, "b1", kitItem(7, 2)); err != nil {
		t.Fatalf("First add failed: %v", err)
	}
	items, err := cart.Add(ctx, "b1", kitItem(7, 3))
	if err != nil {
		t.Fatalf("Second add failed: %v", err)
	}

	if len(items) != 1 {
		t.Fatalf("Expected one merged line, got %d", len(items))
	}
	if items[0].Quantity != 5 {
		t.Errorf("Expected merged quantity 5, got %d", items[0].Quantity)
	}
	if items[0].UniqueID != "product-7" {
		t.Errorf("Expected uniqueId product-7, got %q", items[0].UniqueID)
	}
}

func TestCartAddSameIDDifferentTypeStaysSeparate(t *testing.T) {
	cart, _ := newTestCart(t)
	ctx := context.Background()

	cart.Add(ctx, "b1", kitItem(7, 1))
	items, err := cart.Add(ctx, "b1", models.CartItem{
		ID: 7, Type: models.CartItemCourse, Title: "Curso de bordado", Price: 29990,
	})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Same id under a different type must be its own line, got %d lines", len(items))
	}
}

func TestCartAddClampsToMaxQuantity(t *testing.T) {
	cart, _ := newTestCart(t)
	ctx := context.Background()

	item := kitItem(3, 2)
	item.MaxQuantity = 3
	cart.Add(ctx, "b1", item)
	items, err := cart.Add(ctx, "b1", item)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if items[0].Quantity != 3 {
		t.Errorf("Expected quantity clamped to 3, got %d", items[0].Quantity)
	}
}

func TestCartAddDefaultsQuantityToOne(t *testing.T) {
	cart, _ := newTestCart(t)

	items, err := cart.Add(context.Background(), "b1", kitItem(1, 0))
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if items[0].Quantity != 1 {
		t.Errorf("Expected default quantity 1, got %d", items[0].Quantity)
	}
}

func TestCartAddValidates(t *testing.T) {
	cart, _ := newTestCart(t)

	bad := models.CartItem{ID: 0, Type: models.CartItemProduct}
	if _, err := cart.Add(context.Background(), "b1", bad); err == nil {
		t.Error("Expected validation error for zero id")
	}
	bad = models.CartItem{ID: 1, Type: "ticket"}
	if _, err := cart.Add(context.Background(), "b1", bad); err == nil {
		t.Error("Expected validation error for unknown type")
	}
}

func TestCartUpdateQuantityZeroRemoves(t *testing.T) {
	cart, _ := newTestCart(t)
	ctx := context.Background()

	cart.Add(ctx, "b1", kitItem(7, 2))
	items, err := cart.UpdateQuantity(ctx, "b1", "product-7", 0)
	if err != nil {
		t.Fatalf("UpdateQuantity failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Quantity zero should remove the line, got %d lines", len(items))
	}
}

func TestCartUpdateQuantitySetsExactly(t *testing.T) {
	cart, _ := newTestCart(t)
	ctx := context.Background()

	cart.Add(ctx, "b1", kitItem(7, 2))
	items, err := cart.UpdateQuantity(ctx, "b1", "product-7", 6)
	if err != nil {
		t.Fatalf("UpdateQuantity failed: %v", err)
	}
	if items[0].Quantity != 6 {
		t.Errorf("Expected quantity 6, got %d", items[0].Quantity)
	}
}

func TestCartRemoveAbsentLineIsNoError(t *testing.T) {
	cart, _ := newTestCart(t)

	if _, err := cart.Remove(context.Background(), "b1", "product-99"); err != nil {
		t.Errorf("Removing an absent line should not error, got %v", err)
	}
}

func TestCartPersistsAcrossServiceInstances(t *testing.T) {
	st := store.NewMemoryStore(time.Hour)
	ctx := context.Background()

	first := NewCartService(st)
	first.Add(ctx, "b1", kitItem(7, 2))

	// A new service over the same store sees the same cart, like a new tab.
	second := NewCartService(st)
	items := second.Items(ctx, "b1")
	if len(items) != 1 || items[0].Quantity != 2 {
		t.Fatalf("Expected persisted cart with one line of quantity 2, got %+v", items)
	}
}

func TestCartIsolatedPerBrowser(t *testing.T) {
	cart, _ := newTestCart(t)
	ctx := context.Background()

	cart.Add(ctx, "b1", kitItem(7, 1))
	if items := cart.Items(ctx, "b2"); len(items) != 0 {
		t.Errorf("Carts must be isolated per browser, got %d lines for b2", len(items))
	}
}

func TestCartCorruptPayloadStartsEmpty(t *testing.T) {
	st := store.NewMemoryStore(time.Hour)
	ctx := context.Background()
	st.Set(ctx, "b1", store.KeyCart, "{not json")

	cart := NewCartService(st)
	if items := cart.Items(ctx, "b1"); items != nil {
		t.Errorf("Corrupt payload should yield an empty cart, got %+v", items)
	}

	// The cart stays usable afterwards.
	if _, err := cart.Add(ctx, "b1", kitItem(1, 1)); err != nil {
		t.Errorf("Add after corrupt payload failed: %v", err)
	}
}

func TestCartTotalsRecomputed(t *testing.T) {
	items := []models.CartItem{
		{ID: 1, Type: models.CartItemProduct, Price: 1000, Quantity: 2},
		{ID: 2, Type: models.CartItemCourse, Price: 29990, Quantity: 1},
	}
	if got := CartTotal(items); got != 31990 {
		t.Errorf("Expected total 31990, got %v", got)
	}
	if got := CartCount(items); got != 3 {
		t.Errorf("Expected count 3, got %v", got)
	}
	if got := CartTotal(nil); got != 0 {
		t.Errorf("Expected empty total 0, got %v", got)
	}
}
