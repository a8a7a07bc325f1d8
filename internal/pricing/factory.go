package pricing

// ChargeType says how a factory cost item scales.
type ChargeType string

const (
	// ChargeOnce applies once per factory slot.
	ChargeOnce ChargeType = "once"
	// ChargePerQuantity applies to every unit of every linked product.
	ChargePerQuantity ChargeType = "per_quantity"
)

// FactoryCostItem is an ad-hoc cost line billed by a factory, such as a
// mould fee or per-unit packing.
type FactoryCostItem struct {
	Name       string
	Amount     float64
	Currency   Currency
	ChargeType ChargeType
}

// FactorySlot groups the cost items of one factory and the products they
// apply to. An empty LinkedProductIDs links every product in the basket.
type FactorySlot struct {
	ID               string
	Name             string
	Items            []FactoryCostItem
	LinkedProductIDs []string
}

// ProductShare is one product's part of a cost item, in won.
type ProductShare struct {
	ProductID string  `json:"productId"`
	Amount    float64 `json:"amount"`
}

// ItemAllocation explains how one cost item was split.
type ItemAllocation struct {
	SlotID      string         `json:"slotId"`
	ItemName    string         `json:"itemName"`
	ChargeType  ChargeType     `json:"chargeType"`
	Total       float64        `json:"total"`
	Shares      []ProductShare `json:"shares"`
	Unallocated bool           `json:"unallocated,omitempty"`
}

// SlotTotal is the won total billed by one factory slot.
type SlotTotal struct {
	SlotID string  `json:"slotId"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// FactoryAllocation is the result of AllocateFactoryCosts. PerProduct is
// aligned with the products passed in.
type FactoryAllocation struct {
	PerProduct []float64        `json:"perProduct"`
	Items      []ItemAllocation `json:"items"`
	Slots      []SlotTotal      `json:"slots"`
	Total      float64          `json:"total"`
}

// AllocateFactoryCosts distributes factory cost items over the products
// each slot is linked to.
//
// Per-quantity items charge amount*quantity to every linked product. Once
// items are split equally in whole won across the linked products, with
// the remainder going to the last one, so the shares of an item always add
// up to its won total. Unlinked products get nothing; an item whose linked
// products are all missing is reported as unallocated.
func AllocateFactoryCosts(slots []FactorySlot, products []Product, rates ExchangeRates) FactoryAllocation {
	alloc := FactoryAllocation{
		PerProduct: make([]float64, len(products)),
		Items:      []ItemAllocation{},
		Slots:      []SlotTotal{},
	}

	indexByID := make(map[string]int, len(products))
	for i, p := range products {
		if _, dup := indexByID[p.ID]; !dup {
			indexByID[p.ID] = i
		}
	}

	for _, slot := range slots {
		linked := linkedProducts(slot, products, indexByID)
		slotTotal := SlotTotal{SlotID: slot.ID, Name: slot.Name}

		for _, item := range slot.Items {
			ia := ItemAllocation{
				SlotID:     slot.ID,
				ItemName:   item.Name,
				ChargeType: item.ChargeType,
				Shares:     make([]ProductShare, 0, len(linked)),
			}
			if len(linked) == 0 {
				ia.Unallocated = true
				alloc.Items = append(alloc.Items, ia)
				continue
			}

			var shares []float64
			if item.ChargeType == ChargePerQuantity {
				shares = perQuantityShares(item, linked, products, rates)
			} else {
				shares = equalShares(roundWon(rates.ToKRW(item.Amount, item.Currency)), len(linked))
			}

			for k, idx := range linked {
				alloc.PerProduct[idx] += shares[k]
				ia.Total += shares[k]
				ia.Shares = append(ia.Shares, ProductShare{ProductID: products[idx].ID, Amount: shares[k]})
			}
			slotTotal.Amount += ia.Total
			alloc.Items = append(alloc.Items, ia)
		}

		alloc.Total += slotTotal.Amount
		alloc.Slots = append(alloc.Slots, slotTotal)
	}

	return alloc
}

func linkedProducts(slot FactorySlot, products []Product, indexByID map[string]int) []int {
	if len(slot.LinkedProductIDs) == 0 {
		all := make([]int, len(products))
		for i := range products {
			all[i] = i
		}
		return all
	}

	seen := make(map[int]struct{}, len(slot.LinkedProductIDs))
	linked := make([]int, 0, len(slot.LinkedProductIDs))
	for _, id := range slot.LinkedProductIDs {
		idx, ok := indexByID[id]
		if !ok {
			continue
		}
		if _, dup := seen[idx]; dup {
			continue
		}
		seen[idx] = struct{}{}
		linked = append(linked, idx)
	}
	return linked
}

func perQuantityShares(item FactoryCostItem, linked []int, products []Product, rates ExchangeRates) []float64 {
	unit := rates.ToKRW(item.Amount, item.Currency)
	shares := make([]float64, len(linked))
	for k, idx := range linked {
		shares[k] = roundWon(unit * float64(products[idx].Quantity))
	}
	return shares
}

// equalShares splits total whole won into n shares; the last share absorbs
// the remainder.
func equalShares(total float64, n int) []float64 {
	shares := make([]float64, n)
	won := int64(total)
	base := won / int64(n)
	for k := range shares {
		shares[k] = float64(base)
	}
	shares[n-1] = float64(won - base*int64(n-1))
	return shares
}
