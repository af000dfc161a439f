package domain

import "time"

// Listing tiers. B is worn stock with a capped price, A is good condition,
// X carries a seller-set price with a weekly holding fee while unsold.
const (
	TierA = "A"
	TierB = "B"
	TierX = "X"
)

const (
	ListingStatusPending  = "pending"
	ListingStatusApproved = "approved"
	ListingStatusRejected = "rejected"
)

type Listing struct {
	ID                 string         `json:"id"`
	Category           string         `json:"category"`
	Size               string         `json:"size"`
	Fabric             string         `json:"fabric,omitempty"`
	ConditionNotes     string         `json:"conditionNotes,omitempty"`
	HasDefects         bool           `json:"hasDefects"`
	Tier               string         `json:"tier,omitempty"`
	Price              float64        `json:"price"`
	Donation           bool           `json:"donation"`
	Photos             []ListingPhoto `json:"photos,omitempty"`
	City               string         `json:"city"`
	Pincode            string         `json:"pincode"`
	PickupAvailability string         `json:"pickupAvailability,omitempty"`
	Contact            string         `json:"contact,omitempty"`
	Status             string         `json:"status"`
	CreatedAt          time.Time      `json:"createdAt"`
}

// ListingPhoto references an uploaded image. Index 0 in a listing's photo
// slice is the cover image.
type ListingPhoto struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}
