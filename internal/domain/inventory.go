package domain

// InventoryRecord tracks owned stock vs. units reserved for in-flight orders,
// one row per variant. Invariant: 0 <= reserved <= stock. Only the order and
// cart services mutate it, and only while holding the row's exclusive lock.
type InventoryRecord struct {
	VariantID string `json:"variantId"`
	Stock     int64  `json:"stock"`
	Reserved  int64  `json:"reserved"`
}

// Available is the quantity eligible for new reservations.
func (r InventoryRecord) Available() int64 {
	return r.Stock - r.Reserved
}
