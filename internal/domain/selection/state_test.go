package selection

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/najugourmet/storefront/internal/domain/catalog"
)

func newFlavor(id, name, categoryID, extraPrice string) catalog.Flavor {
	return catalog.Flavor{
		ID:         id,
		Name:       name,
		CategoryID: categoryID,
		ExtraPrice: decimal.RequireFromString(extraPrice),
		Available:  true,
	}
}

func plainCategory(id string, required bool, cap int, flavors ...catalog.Flavor) Category {
	return Category{
		CategoryID:    id,
		Name:          id,
		Pool:          PoolAll,
		Required:      required,
		MaxSelections: cap,
		Free:          allFree(flavors),
		Flavors:       flavors,
	}
}

func TestToggle_SelectAndDeselect(t *testing.T) {
	cat := plainCategory("fruit", true, 2,
		newFlavor("f1", "Morango", "fruit", "0"),
		newFlavor("f2", "Banana", "fruit", "0"),
	)

	state, outcome := Toggle(State{}, cat, "f1")
	assert.Equal(t, ToggleSelected, outcome)
	assert.Equal(t, []string{"f1"}, state[cat.Key()])

	state, outcome = Toggle(state, cat, "f1")
	assert.Equal(t, ToggleDeselected, outcome)
	assert.Empty(t, state[cat.Key()])
}

func TestToggle_SingletonReplaces(t *testing.T) {
	cat := plainCategory("size", true, 1,
		newFlavor("s1", "300ml", "size", "0"),
		newFlavor("s2", "500ml", "size", "0"),
	)

	state, _ := Toggle(State{}, cat, "s1")
	state, outcome := Toggle(state, cat, "s2")

	assert.Equal(t, ToggleReplaced, outcome)
	assert.Equal(t, []string{"s2"}, state[cat.Key()])
	assert.Len(t, state[cat.Key()], 1)
}

func TestToggle_RejectedAtCapacity(t *testing.T) {
	cat := plainCategory("fruit", false, 2,
		newFlavor("f1", "Morango", "fruit", "0"),
		newFlavor("f2", "Banana", "fruit", "0"),
		newFlavor("f3", "Kiwi", "fruit", "0"),
	)

	state, _ := Toggle(State{}, cat, "f1")
	state, _ = Toggle(state, cat, "f2")
	next, outcome := Toggle(state, cat, "f3")

	assert.Equal(t, ToggleRejected, outcome)
	assert.Equal(t, state, next, "rejected toggle must leave state unchanged")

	// Freeing a slot makes the toggle legal again.
	next, _ = Toggle(next, cat, "f1")
	next, outcome = Toggle(next, cat, "f3")
	assert.Equal(t, ToggleSelected, outcome)
	assert.Equal(t, []string{"f2", "f3"}, next[cat.Key()])
}

func TestToggle_CapInvariantHoldsForAnySequence(t *testing.T) {
	cat := plainCategory("fruit", false, 3,
		newFlavor("f1", "A", "fruit", "0"),
		newFlavor("f2", "B", "fruit", "0"),
		newFlavor("f3", "C", "fruit", "0"),
		newFlavor("f4", "D", "fruit", "0"),
		newFlavor("f5", "E", "fruit", "0"),
	)

	sequence := []string{"f1", "f2", "f3", "f4", "f5", "f2", "f4", "f1", "f1", "f5", "f3", "f2"}
	state := State{}
	for _, id := range sequence {
		state, _ = Toggle(state, cat, id)
		assert.LessOrEqual(t, len(state[cat.Key()]), cat.MaxSelections)
	}
}

func TestToggle_DoesNotMutateInput(t *testing.T) {
	cat := plainCategory("fruit", false, 2, newFlavor("f1", "A", "fruit", "0"))

	before := State{"fruit": {"f1"}}
	_, _ = Toggle(before, cat, "f1")
	assert.Equal(t, []string{"f1"}, before["fruit"])
}

func TestIsValid(t *testing.T) {
	required := plainCategory("fruit", true, 1, newFlavor("f1", "Morango", "fruit", "0"))
	optional := plainCategory("extra", false, 2, newFlavor("e1", "Granola", "extra", "0"))

	tests := []struct {
		name  string
		state State
		want  bool
	}{
		{name: "empty state fails required", state: State{}, want: false},
		{name: "required satisfied", state: State{"fruit": {"f1"}}, want: true},
		{name: "optional alone does not satisfy required", state: State{"extra": {"e1"}}, want: false},
		{name: "optional state is irrelevant once required is met", state: State{"fruit": {"f1"}, "extra": {"e1"}}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValid(tt.state, []Category{required, optional}))
		})
	}
}

func TestIsValid_RequiredEmptyCategoryNeverSatisfiable(t *testing.T) {
	empty := plainCategory("broken", true, 1)
	assert.False(t, IsValid(State{}, []Category{empty}))
}

func TestPriceOf_PaidFlavorNeverDecreases(t *testing.T) {
	product := catalog.Product{ID: "p1", Name: "Açaí 300ml", Price: decimal.RequireFromString("22.00")}
	paid := plainCategory("extra", false, 3,
		newFlavor("e1", "Nutella", "extra", "5.00"),
		newFlavor("e2", "Leite Ninho", "extra", "3.50"),
	)
	cats := []Category{paid}

	state := State{}
	prev := PriceOf(product, state, cats, 1)
	for _, id := range []string{"e1", "e2"} {
		state, _ = Toggle(state, paid, id)
		next := PriceOf(product, state, cats, 1)
		assert.True(t, next.GreaterThanOrEqual(prev), "adding a paid flavor must not decrease price")
		prev = next
	}
	assert.True(t, decimal.RequireFromString("30.50").Equal(prev))
}

func TestPriceOf_FreePoolChargesNothing(t *testing.T) {
	product := catalog.Product{ID: "p1", Price: decimal.RequireFromString("22.00")}
	// The underlying flavor has a nominal extra price; the free pool forces
	// the charge to zero anyway.
	topping := newFlavor("t1", "Granola", "topping", "5.00")
	free := Category{
		CategoryID:    "topping",
		Name:          "Topping Grátis",
		Pool:          PoolFree,
		MaxSelections: 1,
		Free:          true,
		Flavors:       []catalog.Flavor{topping},
	}

	state, _ := Toggle(State{}, free, "t1")
	got := PriceOf(product, state, []Category{free}, 1)
	assert.True(t, product.Price.Equal(got))
}

// Scenario: Açaí 300ml at 22.00, required fruit (free), one free topping and
// one paid topping at +5.00 -> 27.00 for quantity 1, 54.00 for quantity 2.
func TestPriceOf_AcaiScenario(t *testing.T) {
	product := catalog.Product{ID: "acai-300", Name: "Açaí 300ml", Price: decimal.RequireFromString("22.00")}

	fruit := plainCategory("fruta", true, 1, newFlavor("morango", "Morango", "fruta", "0"))
	toppings := []catalog.Flavor{
		newFlavor("nutella", "Nutella", "topping", "5.00"),
		newFlavor("granola", "Granola", "topping", "2.00"),
	}
	freePool := Category{CategoryID: "topping", Name: "Topping Grátis", Pool: PoolFree, MaxSelections: 1, Free: true, Flavors: toppings}
	paidPool := Category{CategoryID: "topping", Name: "Topping", Pool: PoolPaid, MaxSelections: 1, Flavors: toppings}
	cats := []Category{fruit, freePool, paidPool}

	state, _ := Toggle(State{}, fruit, "morango")
	state, _ = Toggle(state, freePool, "granola")
	state, _ = Toggle(state, paidPool, "nutella")

	require.True(t, IsValid(state, cats))
	assert.True(t, decimal.RequireFromString("27.00").Equal(PriceOf(product, state, cats, 1)))
	assert.True(t, decimal.RequireFromString("54.00").Equal(PriceOf(product, state, cats, 2)))

	resolved := Resolve(cats, state)
	require.Len(t, resolved, 3)
	assert.True(t, resolved[1].Charged.IsZero(), "free pool selection is charged 0")
	assert.True(t, decimal.RequireFromString("5.00").Equal(resolved[2].Charged))
}
