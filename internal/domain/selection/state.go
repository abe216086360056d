package selection

import (
	"github.com/shopspring/decimal"

	"github.com/najugourmet/storefront/internal/domain/catalog"
)

// State maps a category key (see Category.Key) to the ordered flavor ids
// currently selected in it. The zero value is an empty state.
//
// Invariant: len(state[key]) never exceeds the category's MaxSelections.
type State map[string][]string

// ToggleOutcome reports what a Toggle call did, letting callers surface
// feedback for rejected toggles instead of silently absorbing them.
type ToggleOutcome int

const (
	// ToggleSelected means the flavor was added to the selection.
	ToggleSelected ToggleOutcome = iota
	// ToggleDeselected means the flavor was already selected and was removed.
	ToggleDeselected
	// ToggleReplaced means the category is a singleton (cap 1) and the new
	// flavor replaced the previous selection.
	ToggleReplaced
	// ToggleRejected means the category is at capacity (cap > 1) and the
	// toggle was a no-op.
	ToggleRejected
)

// Toggle flips the selection of flavorID in the given category and returns the
// resulting state. The input state is never mutated. Behaviour at capacity:
// cap 1 replaces the existing selection, cap > 1 rejects the toggle.
func Toggle(state State, cat Category, flavorID string) (State, ToggleOutcome) {
	key := cat.Key()
	current := state[key]

	for _, id := range current {
		if id == flavorID {
			next := state.clone()
			next[key] = remove(current, flavorID)
			return next, ToggleDeselected
		}
	}

	if len(current) >= cat.MaxSelections {
		if cat.MaxSelections == 1 {
			next := state.clone()
			next[key] = []string{flavorID}
			return next, ToggleReplaced
		}
		return state, ToggleRejected
	}

	next := state.clone()
	next[key] = append(append([]string(nil), current...), flavorID)
	return next, ToggleSelected
}

// IsValid reports whether every required category has at least one selection.
// Optional categories (including every free pool) impose no minimum. A
// required category with no flavors can never be satisfied.
func IsValid(state State, categories []Category) bool {
	for _, cat := range categories {
		if cat.Required && len(state[cat.Key()]) == 0 {
			return false
		}
	}
	return true
}

// PriceOf computes (product price + sum of charged flavor prices) x quantity.
// Selections in free categories are charged nothing even when the underlying
// flavor carries a nominal extra price.
func PriceOf(p catalog.Product, state State, categories []Category, quantity int) decimal.Decimal {
	total := p.Price
	for _, cat := range categories {
		if cat.Free {
			continue
		}
		for _, flavorID := range state[cat.Key()] {
			if f := cat.flavorByID(flavorID); f != nil && f.ExtraPrice.IsPositive() {
				total = total.Add(f.ExtraPrice)
			}
		}
	}
	return total.Mul(decimal.NewFromInt(int64(quantity)))
}

func (s State) clone() State {
	next := make(State, len(s))
	for k, v := range s {
		next[k] = append([]string(nil), v...)
	}
	return next
}

func remove(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
