package domain

// Variant is the purchasable SKU read model the order core consumes: the
// variant row joined with enough of its product to price a line and fill
// the order-item snapshot fields.
type Variant struct {
	ID              string
	ProductID       string
	ProductName     string
	Size            string
	Color           string
	BasePrice       int64 // product base price in minor units
	PriceAdjustment int64 // signed delta applied on top of the base price
	Stock           int
}

// UnitPrice is the price charged per unit at order time.
func (v Variant) UnitPrice() int64 {
	return v.BasePrice + v.PriceAdjustment
}
