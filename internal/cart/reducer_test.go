package cart

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Storefront/internal/catalog"
)

var (
	productA = catalog.Product{ID: 1, Title: "A", Price: 10, Stock: 5, Category: "beauty"}
	productB = catalog.Product{ID: 2, Title: "B", Price: 5, Stock: 3, Category: "beauty"}
	productC = catalog.Product{ID: 3, Title: "C", Price: 19.99, Stock: 50, Category: "groceries"}
)

func sumLines(s State) float64 {
	var total float64
	for _, e := range s.Entries {
		total += e.Product.Price * float64(e.Quantity)
	}
	return total
}

func TestReduce_AddTwiceYieldsOneEntry(t *testing.T) {
	s := Reduce(Empty(), Add{Product: productA})
	s = Reduce(s, Add{Product: productA})

	require.Len(t, s.Entries, 1)
	assert.Equal(t, 2, s.Entries[0].Quantity)
	assert.Equal(t, 20.0, s.Subtotal)
}

func TestReduce_Scenario25(t *testing.T) {
	s := Empty()
	for _, a := range []Action{Add{productA}, Add{productA}, Add{productB}} {
		s = Reduce(s, a)
	}
	assert.Equal(t, 25.0, s.Subtotal)
	assert.Equal(t, 2, s.LineCount())
	assert.Equal(t, 3, s.UnitCount())
}

func TestReduce_DecreaseFromOneRemoves(t *testing.T) {
	s := Reduce(Empty(), Add{productA})
	s = Reduce(s, Add{productB})
	s = Reduce(s, Decrease{ProductID: productA.ID})

	_, ok := s.Find(productA.ID)
	assert.False(t, ok)
	assert.Equal(t, 5.0, s.Subtotal)
}

func TestReduce_DecreaseAboveOne(t *testing.T) {
	s := Reduce(Reduce(Empty(), Add{productA}), Increase{ProductID: productA.ID})
	s = Reduce(s, Decrease{ProductID: productA.ID})

	e, ok := s.Find(productA.ID)
	require.True(t, ok)
	assert.Equal(t, 1, e.Quantity)
}

func TestReduce_MissingIDsAreNoops(t *testing.T) {
	s := Reduce(Empty(), Add{productA})

	for _, a := range []Action{Remove{99}, Increase{99}, Decrease{99}, SetQuantity{99, 4}} {
		next := Reduce(s, a)
		assert.Equal(t, s, next, "%T", a)
	}
}

// SetQuantity does not guard the lower bound; callers are expected to
// route anything below 1 to Remove (Store.UpdateQuantity does).
func TestReduce_SetQuantityIsVerbatim(t *testing.T) {
	s := Reduce(Empty(), Add{productA})

	for _, q := range []int{0, -3} {
		next := Reduce(s, SetQuantity{ProductID: productA.ID, Quantity: q})
		e, ok := next.Find(productA.ID)
		require.True(t, ok)
		assert.Equal(t, q, e.Quantity)
		assert.Equal(t, productA.Price*float64(q), next.Subtotal)
	}
}

func TestReduce_ClearAlwaysEmpties(t *testing.T) {
	states := []State{Empty(), Reduce(Empty(), Add{productC})}
	for _, s := range states {
		next := Reduce(s, Clear{})
		assert.Empty(t, next.Entries)
		assert.Zero(t, next.Subtotal)
	}
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	s := Reduce(Empty(), Add{productA})
	before := s.clone()

	_ = Reduce(s, Increase{productA.ID})
	_ = Reduce(s, Remove{productA.ID})

	assert.Equal(t, before, s)
}

func TestReduce_SubtotalMatchesLinesOverRandomSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	products := []catalog.Product{productA, productB, productC}

	s := Empty()
	for i := 0; i < 2000; i++ {
		p := products[rng.Intn(len(products))]

		var a Action
		switch rng.Intn(4) {
		case 0:
			a = Add{Product: p}
		case 1:
			a = Remove{ProductID: p.ID}
		case 2:
			a = Increase{ProductID: p.ID}
		default:
			a = Decrease{ProductID: p.ID}
		}
		s = Reduce(s, a)

		require.InDelta(t, sumLines(s), s.Subtotal, 1e-9, "step %d after %T", i, a)
		for _, e := range s.Entries {
			require.GreaterOrEqual(t, e.Quantity, 1)
		}
		require.LessOrEqual(t, len(s.Entries), len(products))
	}
	assert.False(t, math.IsNaN(s.Subtotal))
}
