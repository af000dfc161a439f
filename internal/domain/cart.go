package domain

// PlatformFeeRate is the buyer-side surcharge applied to the cart subtotal at
// checkout.
const PlatformFeeRate = 0.075

// CartLine is one purchasable unit in a cart. The descriptive fields are a
// snapshot captured when the line is added and are never re-fetched from the
// listing.
type CartLine struct {
	ID          string  `json:"id"`
	ListingID   string  `json:"listingId"`
	Title       string  `json:"title"`
	Tier        string  `json:"tier"`
	SellerPrice float64 `json:"sellerPrice"`
	BuyerPrice  float64 `json:"buyerPrice"`
	City        string  `json:"city"`
	Size        string  `json:"size"`
	Category    string  `json:"category"`
	Image       string  `json:"image,omitempty"`
	Quantity    int     `json:"quantity"`
}

// CartLineInput carries the snapshot fields for a new line; id and quantity
// are assigned by the store.
type CartLineInput struct {
	ListingID   string  `json:"listingId"`
	Title       string  `json:"title"`
	Tier        string  `json:"tier"`
	SellerPrice float64 `json:"sellerPrice"`
	BuyerPrice  float64 `json:"buyerPrice"`
	City        string  `json:"city"`
	Size        string  `json:"size"`
	Category    string  `json:"category"`
	Image       string  `json:"image,omitempty"`
}

// CartAggregate is derived from the current line set and never persisted.
type CartAggregate struct {
	ItemCount   int     `json:"itemCount"`
	TotalAmount float64 `json:"totalAmount"`
	PlatformFee float64 `json:"platformFee"`
	GrandTotal  float64 `json:"grandTotal"`
}

// Aggregate recomputes the cart totals from the line set. It is a pure
// function: the same lines always produce the same aggregate. Rounding happens
// only at display time.
func Aggregate(lines []CartLine) CartAggregate {
	var agg CartAggregate
	for _, line := range lines {
		agg.ItemCount += line.Quantity
		agg.TotalAmount += line.BuyerPrice * float64(line.Quantity)
	}
	agg.PlatformFee = agg.TotalAmount * PlatformFeeRate
	agg.GrandTotal = agg.TotalAmount + agg.PlatformFee
	return agg
}
