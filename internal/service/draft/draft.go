package draft

import (
	"context"
	"errors"
	"fmt"

	"clothcycle/internal/domain"
	"clothcycle/internal/localstore"
	"clothcycle/internal/notify"
)

const (
	totalSteps = 4
	minPhotos  = 1
	maxPhotos  = 6

	detailsStep  = 1
	tierStep     = 2
	photosStep   = 3
	locationStep = 4

	tierBMin, tierBMax = 10.0, 30.0
	tierAMin, tierAMax = 50.0, 100.0
	weeklyFeeRate      = 0.07

	draftStorageKey = "clothcycle_listing_draft"
)

// Draft kinds: a sale sets a tiered price, a donation has neither tier nor
// price.
const (
	KindSale     = "sale"
	KindDonation = "donation"
)

// State is the full wizard state. It is serialized to the device store after
// every mutation so a reload resumes at the same step with the same values.
type State struct {
	Step           int    `json:"step"`
	Kind           string `json:"kind"`
	Category       string `json:"category"`
	Size           string `json:"size"`
	Fabric         string `json:"fabric"`
	ConditionNotes string `json:"conditionNotes"`
	HasDefects     bool   `json:"hasDefects"`

	Tier       string  `json:"tier"`
	TierBPrice float64 `json:"tierBPrice"`
	TierAPrice float64 `json:"tierAPrice"`
	TierXPrice float64 `json:"tierXPrice"`

	Photos []PhotoRef `json:"photos"`

	City               string `json:"city"`
	Pincode            string `json:"pincode"`
	PickupAvailability string `json:"pickupAvailability"`
	Contact            string `json:"contact"`
}

// PhotoRef is a committed photo reference held by the draft. Order is
// significant: index 0 is the cover image.
type PhotoRef struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

type listingRepo interface {
	Insert(ctx context.Context, in domain.Listing) (*domain.Listing, error)
}

// Machine is the multi-step listing wizard for one device. Every mutation is
// re-persisted; Submit emits the listing row, clears the saved draft, and
// resets to step 1.
type Machine struct {
	store    *localstore.Store
	deviceID string
	notifier notify.Notifier
	listings listingRepo
	state    State
}

// New builds a Machine, rehydrating any draft previously saved for the
// device. A corrupt or absent draft starts fresh at step 1.
func New(store *localstore.Store, deviceID, kind string, notifier notify.Notifier, listings listingRepo) *Machine {
	m := &Machine{
		store:    store,
		deviceID: deviceID,
		notifier: notifier,
		listings: listings,
		state:    State{Step: 1, Kind: kind},
	}
	var saved State
	if store.Get(deviceID, m.storageKey(), &saved) {
		if saved.Step < 1 || saved.Step > totalSteps {
			saved.Step = 1
		}
		saved.Kind = kind
		m.state = saved
	}
	return m
}

func (m *Machine) storageKey() string {
	if m.state.Kind == KindDonation {
		return draftStorageKey + "_donation"
	}
	return draftStorageKey
}

// State returns a copy of the current wizard state.
func (m *Machine) State() State {
	return m.state
}

func (m *Machine) TotalSteps() int { return totalSteps }

// Next advances one step, enforcing the entry guards: the tier step requires
// a selected tier for sales, and the photos step requires the minimum photo
// count.
func (m *Machine) Next() error {
	switch m.state.Step {
	case tierStep:
		if m.state.Kind == KindSale && m.state.Tier == "" {
			m.notifier.Error("Tier required", "Please select a tier for your listing.")
			return errors.New("tier not selected")
		}
	case photosStep:
		if len(m.state.Photos) < minPhotos {
			m.notifier.Error("Photos required", fmt.Sprintf("Please add at least %d photo(s) of your item.", minPhotos))
			return errors.New("not enough photos")
		}
	}
	if m.state.Step < totalSteps {
		m.state.Step++
		m.persist()
	}
	return nil
}

// Back moves one step back; no guards apply.
func (m *Machine) Back() {
	if m.state.Step > 1 {
		m.state.Step--
		m.persist()
	}
}

// SetDetails records the descriptive fields of step 1.
func (m *Machine) SetDetails(category, size, fabric, conditionNotes string, hasDefects bool) {
	m.state.Category = category
	m.state.Size = size
	m.state.Fabric = fabric
	m.state.ConditionNotes = conditionNotes
	m.state.HasDefects = hasDefects
	m.persist()
}

// SetLocation records the pickup/contact fields of the final step.
func (m *Machine) SetLocation(city, pincode, pickupAvailability, contact string) {
	m.state.City = city
	m.state.Pincode = pincode
	m.state.PickupAvailability = pickupAvailability
	m.state.Contact = contact
	m.persist()
}

// SelectTier activates the price field for the chosen tier. A price already
// entered for tier A or B is clamped into that tier's bound, re-notifying the
// user when adjusted.
func (m *Machine) SelectTier(tier string) error {
	switch tier {
	case domain.TierA, domain.TierB, domain.TierX:
	default:
		return fmt.Errorf("unknown tier %q", tier)
	}
	m.state.Tier = tier
	switch tier {
	case domain.TierB:
		if m.state.TierBPrice != 0 {
			m.state.TierBPrice = m.clampTierPrice(domain.TierB, m.state.TierBPrice, tierBMin, tierBMax)
		}
	case domain.TierA:
		if m.state.TierAPrice != 0 {
			m.state.TierAPrice = m.clampTierPrice(domain.TierA, m.state.TierAPrice, tierAMin, tierAMax)
		}
	}
	m.persist()
	return nil
}

// SetTierBPrice records a tier B price, clamped into the tier's bounds.
func (m *Machine) SetTierBPrice(price float64) error {
	if price <= 0 {
		return errors.New("price must be positive")
	}
	m.state.TierBPrice = m.clampTierPrice(domain.TierB, price, tierBMin, tierBMax)
	m.persist()
	return nil
}

// SetTierAPrice records a tier A price, clamped into the tier's bounds.
func (m *Machine) SetTierAPrice(price float64) error {
	if price <= 0 {
		return errors.New("price must be positive")
	}
	m.state.TierAPrice = m.clampTierPrice(domain.TierA, price, tierAMin, tierAMax)
	m.persist()
	return nil
}

// SetTierXPrice records a seller-set price. Tier X accepts any positive
// amount; the weekly holding fee is derived for display, never stored.
func (m *Machine) SetTierXPrice(price float64) error {
	if price <= 0 {
		return errors.New("price must be positive")
	}
	m.state.TierXPrice = price
	m.persist()
	return nil
}

func (m *Machine) clampTierPrice(tier string, price, min, max float64) float64 {
	if price < min {
		m.notifier.Error("Price adjusted",
			fmt.Sprintf("Price is below minimum for Tier %s; adjusted to ₹%.0f", tier, min))
		return min
	}
	if price > max {
		m.notifier.Error("Price adjusted",
			fmt.Sprintf("Price exceeds maximum for Tier %s; adjusted to ₹%.0f", tier, max))
		return max
	}
	return price
}

// WeeklyHoldingFee is the display-only tier X fee charged while unsold.
func (m *Machine) WeeklyHoldingFee() float64 {
	return m.state.TierXPrice * weeklyFeeRate
}

// AddPhoto appends a committed photo reference, keeping order.
func (m *Machine) AddPhoto(ref PhotoRef) error {
	if len(m.state.Photos) >= maxPhotos {
		return fmt.Errorf("at most %d photos", maxPhotos)
	}
	m.state.Photos = append(m.state.Photos, ref)
	m.persist()
	return nil
}

// RemovePhoto drops a photo reference without disturbing the order of the
// rest.
func (m *Machine) RemovePhoto(id string) {
	kept := m.state.Photos[:0]
	for _, p := range m.state.Photos {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	m.state.Photos = kept
	m.persist()
}

// Submit emits the listing record. Only the final step may submit; sales need
// a tier, and the price field matching the chosen tier becomes the final
// price. On success the saved draft is cleared and the machine resets to an
// empty step 1; on failure every field is left intact for retry.
func (m *Machine) Submit(ctx context.Context) (*domain.Listing, error) {
	if m.state.Step != totalSteps {
		return nil, fmt.Errorf("submit only allowed on step %d", totalSteps)
	}

	listing := domain.Listing{
		Category:           m.state.Category,
		Size:               m.state.Size,
		Fabric:             m.state.Fabric,
		ConditionNotes:     m.state.ConditionNotes,
		HasDefects:         m.state.HasDefects,
		City:               m.state.City,
		Pincode:            m.state.Pincode,
		PickupAvailability: m.state.PickupAvailability,
		Contact:            m.state.Contact,
		Status:             domain.ListingStatusPending,
	}
	for _, p := range m.state.Photos {
		listing.Photos = append(listing.Photos, domain.ListingPhoto{URL: p.URL, Filename: p.Filename})
	}

	if m.state.Kind == KindDonation {
		listing.Donation = true
	} else {
		switch m.state.Tier {
		case domain.TierA:
			listing.Price = m.state.TierAPrice
		case domain.TierB:
			listing.Price = m.state.TierBPrice
		case domain.TierX:
			listing.Price = m.state.TierXPrice
		default:
			m.notifier.Error("Tier required", "Please select a tier for your listing.")
			return nil, errors.New("tier not selected")
		}
		listing.Tier = m.state.Tier
	}

	created, err := m.listings.Insert(ctx, listing)
	if err != nil {
		m.notifier.Error("Submission failed", "There was an error submitting your listing. Please try again.")
		return nil, err
	}

	if err := m.store.Delete(m.deviceID, m.storageKey()); err != nil {
		m.notifier.Error("Error", "Could not clear the saved draft")
	}
	m.state = State{Step: 1, Kind: m.state.Kind}

	m.notifier.Success("Listing submitted", "Your item has been submitted for review.")
	return created, nil
}

func (m *Machine) persist() {
	if err := m.store.Put(m.deviceID, m.storageKey(), m.state); err != nil {
		m.notifier.Error("Error", "Could not save your draft")
	}
}
