package cart

import (
	"encoding/json"
	"errors"
	"fmt"

	"Storefront/internal/catalog"
)

const StorageKey = "cart"

var ErrMalformedSnapshot = errors.New("malformed cart snapshot")

// snapshotItem flattens the product fields next to the quantity:
// {"id":1,"title":...,"quantity":2}.
type snapshotItem struct {
	catalog.Product
	Quantity int `json:"quantity"`
}

type snapshot struct {
	CartItems  []snapshotItem `json:"cartItems"`
	TotalPrice float64        `json:"totalPrice"`
}

func EncodeSnapshot(s State) ([]byte, error) {
	snap := snapshot{
		CartItems:  make([]snapshotItem, 0, len(s.Entries)),
		TotalPrice: s.Subtotal,
	}
	for _, e := range s.Entries {
		snap.CartItems = append(snap.CartItems, snapshotItem{Product: e.Product, Quantity: e.Quantity})
	}
	return json.Marshal(snap)
}

// DecodeSnapshot rebuilds a State. Quantities are restored as stored, so
// a SetQuantity below 1 survives a reload. The stored total is ignored and
// the subtotal recomputed from the entries.
func DecodeSnapshot(b []byte) (State, error) {
	var snap snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return Empty(), fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}

	s := State{Entries: make([]Entry, 0, len(snap.CartItems))}
	seen := make(map[int64]struct{}, len(snap.CartItems))
	for _, it := range snap.CartItems {
		if _, dup := seen[it.ID]; dup {
			return Empty(), fmt.Errorf("%w: duplicate product %d", ErrMalformedSnapshot, it.ID)
		}
		seen[it.ID] = struct{}{}
		s.Entries = append(s.Entries, Entry{Product: it.Product, Quantity: it.Quantity})
	}
	s.Subtotal = subtotal(s.Entries)
	return s, nil
}
