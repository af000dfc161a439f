package domain

import "time"

const (
	PaymentMethodCOD   = "cod"
	OrderStatusPending = "pending"
)

// Order is the durable record of a completed checkout. The core never mutates
// an order after creation; status transitions belong to fulfillment.
type Order struct {
	ID                   string      `json:"id"`
	UserID               *string     `json:"userId,omitempty"`
	FullName             string      `json:"fullName"`
	Phone                string      `json:"phone"`
	Email                string      `json:"email"`
	StreetAddress        string      `json:"streetAddress"`
	City                 string      `json:"city"`
	PostalCode           string      `json:"postalCode"`
	State                string      `json:"state"`
	DeliveryInstructions string      `json:"deliveryInstructions,omitempty"`
	PaymentMethod        string      `json:"paymentMethod"`
	Status               string      `json:"status"`
	TotalAmount          float64     `json:"totalAmount"`
	PlatformFee          float64     `json:"platformFee"`
	GrandTotal           float64     `json:"grandTotal"`
	CreatedAt            time.Time   `json:"createdAt"`
	Items                []OrderItem `json:"items,omitempty"`
}

// OrderItem is a frozen copy of a cart line at checkout time.
type OrderItem struct {
	ID          string  `json:"id"`
	OrderID     string  `json:"orderId"`
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

// OrderItemFromLine freezes a cart line into an order item.
func OrderItemFromLine(line CartLine) OrderItem {
	return OrderItem{
		ListingID:   line.ListingID,
		Title:       line.Title,
		Tier:        line.Tier,
		SellerPrice: line.SellerPrice,
		BuyerPrice:  line.BuyerPrice,
		City:        line.City,
		Size:        line.Size,
		Category:    line.Category,
		Image:       line.Image,
		Quantity:    line.Quantity,
	}
}
