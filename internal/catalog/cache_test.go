package catalog

import (
	"context"
	"errors"
	"testing"

	"orderbridge/internal/lyra"
)

type fakeSource struct {
	calls    int
	products []lyra.Product
	err      error
}

func (f *fakeSource) ListProducts(ctx context.Context, perPage int) ([]lyra.Product, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.products, nil
}

func TestCache_MapLazyFetchAndReuse(t *testing.T) {
	src := &fakeSource{products: []lyra.Product{{ID: 501, SKU: "EAN1"}}}
	c := New(src, 1000)

	m, err := c.Map(context.Background(), false)
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}
	if m["EAN1"] != 501 {
		t.Errorf(`m["EAN1"] = %d, want 501`, m["EAN1"])
	}
	if src.calls != 1 {
		t.Errorf("calls = %d, want 1 (first use fetches)", src.calls)
	}

	if _, err := c.Map(context.Background(), false); err != nil {
		t.Fatalf("Map() error = %v", err)
	}
	if src.calls != 1 {
		t.Errorf("calls = %d, want 1 (cached map reused)", src.calls)
	}
}

func TestCache_FreshReplacesMap(t *testing.T) {
	src := &fakeSource{products: []lyra.Product{{ID: 501, SKU: "EAN1"}}}
	c := New(src, 1000)

	if _, err := c.Map(context.Background(), false); err != nil {
		t.Fatalf("Map() error = %v", err)
	}

	src.products = []lyra.Product{{ID: 777, SKU: "EAN2"}}
	m, err := c.Map(context.Background(), true)
	if err != nil {
		t.Fatalf("Map(fresh) error = %v", err)
	}
	if src.calls != 2 {
		t.Errorf("calls = %d, want 2", src.calls)
	}
	if _, ok := m["EAN1"]; ok {
		t.Error("stale SKU survived a fresh fetch")
	}
	if m["EAN2"] != 777 {
		t.Errorf(`m["EAN2"] = %d, want 777`, m["EAN2"])
	}
}

func TestCache_ProductIDBySKU_RefreshesOnceOnMiss(t *testing.T) {
	src := &fakeSource{products: []lyra.Product{{ID: 501, SKU: "EAN1"}}}
	c := New(src, 1000)

	// Known SKU: no extra refresh.
	id, ok, err := c.ProductIDBySKU(context.Background(), "EAN1")
	if err != nil {
		t.Fatalf("ProductIDBySKU() error = %v", err)
	}
	if !ok || id != 501 {
		t.Errorf("got (%d, %v), want (501, true)", id, ok)
	}
	if src.calls != 1 {
		t.Errorf("calls = %d, want 1", src.calls)
	}

	// Unknown SKU: exactly one forced refresh, then not found.
	_, ok, err = c.ProductIDBySKU(context.Background(), "EANX")
	if err != nil {
		t.Fatalf("ProductIDBySKU() error = %v", err)
	}
	if ok {
		t.Error("expected miss for unknown SKU")
	}
	if src.calls != 2 {
		t.Errorf("calls = %d, want 2 (one bounded refresh)", src.calls)
	}
}

func TestCache_ProductIDBySKU_FoundAfterRefresh(t *testing.T) {
	src := &fakeSource{products: []lyra.Product{{ID: 501, SKU: "EAN1"}}}
	c := New(src, 1000)

	if _, err := c.Map(context.Background(), false); err != nil {
		t.Fatalf("Map() error = %v", err)
	}

	// Catalog gains a product between cache builds.
	src.products = append(src.products, lyra.Product{ID: 900, SKU: "EAN9"})

	id, ok, err := c.ProductIDBySKU(context.Background(), "EAN9")
	if err != nil {
		t.Fatalf("ProductIDBySKU() error = %v", err)
	}
	if !ok || id != 900 {
		t.Errorf("got (%d, %v), want (900, true)", id, ok)
	}
}

func TestCache_FetchErrorSurfaced(t *testing.T) {
	src := &fakeSource{err: errors.New("boom")}
	c := New(src, 1000)

	if _, err := c.Map(context.Background(), false); err == nil {
		t.Fatal("Map() expected error, got nil")
	}
}

func TestCache_SkipsEmptySKUs(t *testing.T) {
	src := &fakeSource{products: []lyra.Product{{ID: 1, SKU: ""}, {ID: 2, SKU: "S"}}}
	c := New(src, 1000)

	m, err := c.Map(context.Background(), false)
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}
	if len(m) != 1 {
		t.Errorf("len(m) = %d, want 1", len(m))
	}
}
