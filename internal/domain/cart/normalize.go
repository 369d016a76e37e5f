package cart

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// minProductIDLen is the shortest accepted bare product identifier. Real IDs
// are UUIDs (36 chars); anything shorter is a leftover composite or garbage.
const minProductIDLen = 30

// legacyPrefix matches the historical "type-" prefix that older carts embed
// in product IDs, e.g. "cake-<uuid>" or "cakE-<uuid>".
var legacyPrefix = regexp.MustCompile(`^(?i:cake|drink|toppings)-`)

// Normalize converts cart lines to canonical order items. It resolves each
// line's product ID (preferring the pre-resolved ProductID over the raw
// composite), strips legacy type prefixes, flattens toppings, and
// deduplicates by (productID, sorted topping IDs). Duplicate lines are a
// tolerated frontend artifact (double-add on re-render): the first instance
// wins and the duplicate is logged, not rejected.
func Normalize(ctx context.Context, lines []Line) ([]Item, error) {
	lg := zctx.From(ctx)

	items := make([]Item, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))

	for _, l := range lines {
		id := resolveProductID(l)
		if len(id) < minProductIDLen {
			return nil, &InvalidProductError{Name: l.Name, ID: id}
		}

		item := Item{
			ProductID:   id,
			ProductType: l.Type,
			Quantity:    l.Quantity,
			ToppingIDs:  toppingIDs(l.Toppings),
		}

		key := dedupeKey(item)
		if _, dup := seen[key]; dup {
			lg.Warn("duplicate cart line dropped",
				zap.String("product_id", id),
				zap.String("name", l.Name),
			)
			continue
		}
		seen[key] = struct{}{}
		items = append(items, item)
	}

	return items, nil
}

// resolveProductID picks the best identifier for a line and strips the
// legacy type prefix when present.
func resolveProductID(l Line) string {
	id := l.ProductID
	if id == "" {
		id = l.SourceID
	}
	if id == "" {
		id = l.RawID
	}
	return legacyPrefix.ReplaceAllString(id, "")
}

// toppingIDs flattens topping refs to their IDs, dropping empty entries.
func toppingIDs(refs []ToppingRef) []string {
	ids := make([]string, 0, len(refs))
	for _, r := range refs {
		if r.ID == "" {
			continue
		}
		ids = append(ids, r.ID)
	}
	return ids
}

// dedupeKey identifies a logical cart item: same product with the same
// topping set, regardless of topping order.
func dedupeKey(item Item) string {
	ids := append([]string(nil), item.ToppingIDs...)
	sort.Strings(ids)
	return item.ProductID + "|" + strings.Join(ids, ",")
}
