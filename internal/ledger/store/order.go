package store

import (
	"cmp"
	"slices"

	"github.com/MrJamesThe3rd/pocket/internal/ledger"
)

var (
	builtinCategoryOrder      = rank(ledger.BuiltinCategories(), func(c ledger.Category) string { return c.ID })
	builtinPaymentMethodOrder = rank(ledger.BuiltinPaymentMethods(), func(pm ledger.PaymentMethod) string { return pm.ID })
)

func rank[T any](items []T, id func(T) string) map[string]int {
	out := make(map[string]int, len(items))
	for i, it := range items {
		out[id(it)] = i
	}

	return out
}

// sortByBuiltinOrder lists built-ins in their canonical order followed by
// user-defined entries sorted by name.
func sortByBuiltinOrder[T any](items []T, order map[string]int, key func(T) (id, name string, builtin bool)) []T {
	slices.SortStableFunc(items, func(a, b T) int {
		aID, aName, aBuiltin := key(a)
		bID, bName, bBuiltin := key(b)

		switch {
		case aBuiltin && bBuiltin:
			return cmp.Compare(order[aID], order[bID])
		case aBuiltin:
			return -1
		case bBuiltin:
			return 1
		default:
			return cmp.Or(cmp.Compare(aName, bName), cmp.Compare(aID, bID))
		}
	})

	return items
}
