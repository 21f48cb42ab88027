package domain

import "github.com/shopspring/decimal"

// Product is the subset of catalog data the cart needs to build a line.
type Product struct {
	ID       int64
	Name     string
	Price    decimal.Decimal
	ImageURL string
}

// CartLine is one product entry in the cart. At most one line exists per
// product ID; quantities below 1 are expressed by removing the line.
type CartLine struct {
	ProductID   int64
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
	ImageURL    string
}

// Subtotal returns UnitPrice * Quantity.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Snapshot is the derived view of cart state published to observers.
// TotalPrice and TotalCount are always recomputed from Lines, never
// mutated independently.
type Snapshot struct {
	Lines      []CartLine
	TotalPrice decimal.Decimal
	TotalCount int
}

// NewSnapshot copies lines and computes the derived totals.
func NewSnapshot(lines []CartLine) Snapshot {
	copied := make([]CartLine, len(lines))
	copy(copied, lines)

	total := decimal.Zero
	count := 0
	for _, l := range copied {
		total = total.Add(l.Subtotal())
		count += l.Quantity
	}

	return Snapshot{
		Lines:      copied,
		TotalPrice: total,
		TotalCount: count,
	}
}

// Line returns the line for the given product ID, if present.
func (s Snapshot) Line(productID int64) (CartLine, bool) {
	for _, l := range s.Lines {
		if l.ProductID == productID {
			return l, true
		}
	}
	return CartLine{}, false
}
