package cart

import "Storefront/internal/catalog"

// Action is an intent dispatched to the cart.
type Action interface {
	cartAction()
}

type (
	// Add increments an existing entry or appends a new one with quantity 1.
	Add struct{ Product catalog.Product }
	// Remove deletes the entry; absent ids are a no-op.
	Remove struct{ ProductID int64 }
	Increase struct{ ProductID int64 }
	// Decrease removes the entry instead of going below 1.
	Decrease struct{ ProductID int64 }
	// SetQuantity writes Quantity verbatim. Callers must clamp first; see
	// Store.UpdateQuantity.
	SetQuantity struct {
		ProductID int64
		Quantity  int
	}
	Clear   struct{}
	Replace struct{ State State }
)

func (Add) cartAction()         {}
func (Remove) cartAction()      {}
func (Increase) cartAction()    {}
func (Decrease) cartAction()    {}
func (SetQuantity) cartAction() {}
func (Clear) cartAction()       {}
func (Replace) cartAction()     {}

// Reduce returns the state after applying a. It never mutates s.
func Reduce(s State, a Action) State {
	next := s.clone()

	switch a := a.(type) {
	case Add:
		if i := next.index(a.Product.ID); i >= 0 {
			next.Entries[i].Quantity++
		} else {
			next.Entries = append(next.Entries, Entry{Product: a.Product, Quantity: 1})
		}

	case Remove:
		next.Entries = without(next.Entries, a.ProductID)

	case Increase:
		if i := next.index(a.ProductID); i >= 0 {
			next.Entries[i].Quantity++
		}

	case Decrease:
		i := next.index(a.ProductID)
		if i >= 0 && next.Entries[i].Quantity > 1 {
			next.Entries[i].Quantity--
		} else {
			next.Entries = without(next.Entries, a.ProductID)
		}

	case SetQuantity:
		if i := next.index(a.ProductID); i >= 0 {
			next.Entries[i].Quantity = a.Quantity
		}

	case Clear:
		return Empty()

	case Replace:
		next = a.State.clone()
		if next.Entries == nil {
			next.Entries = []Entry{}
		}

	default:
		return next
	}

	next.Subtotal = subtotal(next.Entries)
	return next
}

func without(entries []Entry, id int64) []Entry {
	out := entries[:0]
	for _, e := range entries {
		if e.Product.ID != id {
			out = append(out, e)
		}
	}
	return out
}
