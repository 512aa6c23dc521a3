package domain

import "testing"

func TestSellingPriceCents(t *testing.T) {
	cases := []struct {
		name     string
		price    int64
		discount int64
		want     int64
	}{
		{"no discount", 49900, 0, 49900},
		{"ten percent", 49900, 1000, 44910},
		{"fractional percent floors", 9999, 1250, 8750},
		{"full discount", 1000, 10000, 0},
		{"negative discount ignored", 1000, -500, 1000},
	}
	for _, tc := range cases {
		v := Variant{PriceCents: tc.price, DiscountBps: tc.discount}
		if got := v.SellingPriceCents(); got != tc.want {
			t.Errorf("%s: SellingPriceCents() = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestComputeCartTotals(t *testing.T) {
	items := []CartItem{
		{Quantity: 3, UnitPriceCents: 10000, TotalCents: 30000},
		{Quantity: 1, UnitPriceCents: 4990, TotalCents: 4990},
	}
	got := ComputeCartTotals(items)
	if got.SubtotalCents != 34990 {
		t.Fatalf("subtotal = %d, want 34990", got.SubtotalCents)
	}
	// 18% GST, floored.
	if got.TaxCents != 6298 {
		t.Fatalf("tax = %d, want 6298", got.TaxCents)
	}
	if got.ShippingCents != 0 {
		t.Fatalf("shipping = %d, want 0", got.ShippingCents)
	}
	if got.TotalCents != 41288 {
		t.Fatalf("total = %d, want 41288", got.TotalCents)
	}
}

func TestComputeCartTotalsEmpty(t *testing.T) {
	got := ComputeCartTotals(nil)
	if got.SubtotalCents != 0 || got.TaxCents != 0 || got.ShippingCents != 0 || got.TotalCents != 0 {
		t.Fatalf("empty cart totals should be zero, got %+v", got)
	}
}

func TestComputeCartTotalsIdempotent(t *testing.T) {
	items := []CartItem{{Quantity: 2, UnitPriceCents: 12345, TotalCents: 24690}}
	first := ComputeCartTotals(items)
	second := ComputeCartTotals(items)
	if first != second {
		t.Fatalf("recomputation changed totals: %+v vs %+v", first, second)
	}
}

func TestInventoryAvailable(t *testing.T) {
	rec := InventoryRecord{Stock: 5, Reserved: 3}
	if got := rec.Available(); got != 2 {
		t.Fatalf("Available() = %d, want 2", got)
	}
}
