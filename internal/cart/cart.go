// Package cart holds the shopping cart slice: a pure reducer over State and
// a Store that applies actions and writes every resulting state through to
// durable storage.
package cart

import "Storefront/internal/catalog"

// Entry is one cart line. Quantity is at least 1 for every entry produced
// by Add, Increase, Decrease and Remove.
type Entry struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

func (e Entry) LineTotal() float64 {
	return e.Product.Price * float64(e.Quantity)
}

// State is the cart aggregate. Subtotal always equals the sum of line
// totals over Entries; every reducer path recomputes it.
type State struct {
	Entries  []Entry `json:"entries"`
	Subtotal float64 `json:"subtotal"`
}

func Empty() State {
	return State{Entries: []Entry{}}
}

func (s State) index(id int64) int {
	for i, e := range s.Entries {
		if e.Product.ID == id {
			return i
		}
	}
	return -1
}

func (s State) Find(id int64) (Entry, bool) {
	if i := s.index(id); i >= 0 {
		return s.Entries[i], true
	}
	return Entry{}, false
}

// LineCount is the number of distinct products in the cart.
func (s State) LineCount() int { return len(s.Entries) }

// UnitCount is the sum of quantities.
func (s State) UnitCount() int {
	n := 0
	for _, e := range s.Entries {
		n += e.Quantity
	}
	return n
}

func (s State) clone() State {
	out := State{Entries: make([]Entry, len(s.Entries)), Subtotal: s.Subtotal}
	copy(out.Entries, s.Entries)
	return out
}

func subtotal(entries []Entry) float64 {
	var total float64
	for _, e := range entries {
		total += e.LineTotal()
	}
	return total
}
