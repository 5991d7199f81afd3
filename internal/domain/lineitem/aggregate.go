// internal/domain/lineitem/aggregate.go
package lineitem

// Aggregate merges line items sharing a variant key into one entry per key,
// preserving first-seen order across groups. Quantities and max quantities
// are summed, the unit price keeps the minimum of the compared prices, and
// the first non-empty product name and image win. The variant ref of a
// merged entry accumulates every contributing source id, pipe-joined, so the
// merge stays traceable. Aggregating an already-aggregated list is a no-op.
func Aggregate(items []LineItem) []LineItem {
	if len(items) <= 1 {
		return cloneItems(items)
	}

	merged := make([]LineItem, 0, len(items))
	byKey := make(map[VariantKey]int, len(items))

	for _, item := range items {
		key := item.Key()
		idx, seen := byKey[key]
		if !seen {
			clone := item
			clone.UnitPrice = item.UnitPrice.Round(2)
			byKey[key] = len(merged)
			merged = append(merged, clone)
			continue
		}

		target := &merged[idx]
		target.Quantity += item.Quantity
		target.MaxQuantity += item.MaxQuantity

		// Conservative display choice: never show a higher price than any
		// contributing record carried.
		price := item.UnitPrice.Round(2)
		if price.LessThan(target.UnitPrice) {
			target.UnitPrice = price
		}

		if target.ProductName == "" {
			target.ProductName = item.ProductName
		}
		if target.ProductImage == "" {
			target.ProductImage = item.ProductImage
		}
		if item.VariantRef != "" {
			target.VariantRef = target.VariantRef + "|" + item.VariantRef
		}
	}

	return merged
}

func cloneItems(items []LineItem) []LineItem {
	clone := make([]LineItem, len(items))
	copy(clone, items)
	return clone
}
