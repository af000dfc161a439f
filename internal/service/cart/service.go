package cart

import (
	"context"
	"errors"
	"sync"

	"clothcycle/internal/domain"
	"clothcycle/internal/notify"
)

// MergePolicy decides what happens to a guest cart when its owner signs in.
type MergePolicy string

const (
	// MergeOnLogin folds the local lines into the durable cart.
	MergeOnLogin MergePolicy = "merge"
	// DiscardOnLogin drops the local lines and keeps only the durable cart.
	DiscardOnLogin MergePolicy = "discard"
)

// Config wires a Store. NewRemote and NewLocal build the backing strategies;
// the store swaps between them on identity changes.
type Config struct {
	Notifier    notify.Notifier
	NewRemote   func(userID string) Strategy
	NewLocal    func() Strategy
	MergePolicy MergePolicy
}

// Store is the single source of truth for one session's cart. It owns the
// in-memory line set; other components may only invoke its operations and
// read the derived aggregate.
//
// No operation returns an error: failures degrade to a notification and the
// in-memory state stays consistent with whatever was actually persisted.
type Store struct {
	mu       sync.Mutex
	notifier notify.Notifier
	policy   MergePolicy

	newRemote func(userID string) Strategy
	newLocal  func() Strategy

	userID   *string
	strategy Strategy
	lines    []domain.CartLine
}

func NewStore(cfg Config) *Store {
	policy := cfg.MergePolicy
	if policy == "" {
		policy = MergeOnLogin
	}
	return &Store{
		notifier:  cfg.Notifier,
		policy:    policy,
		newRemote: cfg.NewRemote,
		newLocal:  cfg.NewLocal,
		strategy:  cfg.NewLocal(),
	}
}

// SetIdentity reacts to a login or logout event: the backing strategy is
// swapped and the line set reloaded. On login the guest cart is merged or
// discarded per the configured policy.
func (s *Store) SetIdentity(ctx context.Context, userID *string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if equalID(s.userID, userID) {
		return
	}

	wasGuest := s.userID == nil
	guestLines := s.lines
	guestStrategy := s.strategy

	s.userID = userID
	if userID == nil {
		s.strategy = s.newLocal()
	} else {
		s.strategy = s.newRemote(*userID)
	}
	loaded := s.reload(ctx)

	if wasGuest && userID != nil && s.policy == MergeOnLogin && len(guestLines) > 0 {
		if !loaded {
			// The durable cart is unknown, so merging would mutate lines that
			// were never persisted. Keep the guest store intact as the only
			// durable copy.
			return
		}
		if s.mergeGuestLines(ctx, guestLines) {
			if err := guestStrategy.Clear(ctx); err != nil {
				s.notifier.Error("Error", "Could not clear the signed-out cart")
			}
		}
	}
}

// Identity returns the user id the store currently serves, nil for a guest.
func (s *Store) Identity() *string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// Load refreshes the in-memory set from the backing store. On failure the
// last-known lines are kept and a notification is emitted.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reload(ctx)
}

func (s *Store) reload(ctx context.Context) bool {
	lines, err := s.strategy.Load(ctx)
	if err != nil {
		s.notifier.Error("Error loading cart", "Could not load your cart items")
		return false
	}
	s.lines = lines
	return true
}

// mergeGuestLines folds carried-over guest lines into the freshly loaded
// durable cart using the same add-or-increment rule as AddLine. It reports
// whether every guest line made it into the durable cart; callers must not
// drop the guest copy otherwise.
func (s *Store) mergeGuestLines(ctx context.Context, guestLines []domain.CartLine) bool {
	merged := true
	for _, g := range guestLines {
		if existing := s.findByListing(g.ListingID); existing != nil {
			if !s.applyQuantity(ctx, existing.ID, existing.Quantity+g.Quantity) {
				merged = false
			}
			continue
		}
		line, err := s.strategy.Add(ctx, lineInput(g), g.Quantity)
		if err != nil {
			s.notifier.Error("Error", "Could not move "+g.Title+" to your account cart")
			merged = false
			continue
		}
		s.lines = append(s.lines, *line)
	}
	return merged
}

// AddLine adds a listing snapshot to the cart. A listing already present is
// incremented instead of duplicated, so there is at most one line per
// listing.
func (s *Store) AddLine(ctx context.Context, in domain.CartLineInput) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing := s.findByListing(in.ListingID); existing != nil {
		if !s.applyQuantity(ctx, existing.ID, existing.Quantity+1) {
			return
		}
	} else {
		line, err := s.strategy.Add(ctx, in, 1)
		if err != nil {
			s.notifier.Error("Error", "Could not add item to cart")
			return
		}
		s.lines = append(s.lines, *line)
	}

	s.notifier.Success("Added to cart", in.Title+" has been added to your cart")
}

// RemoveLine deletes a line by id and notifies. Unknown ids are a no-op.
func (s *Store) RemoveLine(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(ctx, id)
}

func (s *Store) removeLocked(ctx context.Context, id string) {
	if err := s.strategy.Remove(ctx, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
		s.notifier.Error("Error", "Could not remove item from cart")
		return
	}
	kept := s.lines[:0]
	removed := false
	for _, line := range s.lines {
		if line.ID == id {
			removed = true
			continue
		}
		kept = append(kept, line)
	}
	s.lines = kept
	if removed {
		s.notifier.Success("Removed from cart", "Item has been removed from your cart")
	}
}

// SetQuantity updates a line's quantity. Quantities below 1 remove the line.
// Unknown ids are a silent no-op. Unlike add and remove, a successful update
// emits no notification.
func (s *Store) SetQuantity(ctx context.Context, id string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity < 1 {
		s.removeLocked(ctx, id)
		return
	}
	s.applyQuantity(ctx, id, quantity)
}

func (s *Store) applyQuantity(ctx context.Context, id string, quantity int) bool {
	idx := -1
	for i := range s.lines {
		if s.lines[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return true
	}
	if err := s.strategy.SetQuantity(ctx, id, quantity); err != nil {
		s.notifier.Error("Error", "Could not update item quantity")
		return false
	}
	s.lines[idx].Quantity = quantity
	return true
}

// Clear empties the cart in the backing store and in memory.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.strategy.Clear(ctx); err != nil {
		s.notifier.Error("Error", "Could not clear cart")
		return
	}
	s.lines = nil
}

// Lines returns a copy of the current line set.
func (s *Store) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

// Aggregate recomputes the pricing aggregate from the current lines. It is
// never cached across mutations.
func (s *Store) Aggregate() domain.CartAggregate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Aggregate(s.lines)
}

func (s *Store) findByListing(listingID string) *domain.CartLine {
	for i := range s.lines {
		if s.lines[i].ListingID == listingID {
			return &s.lines[i]
		}
	}
	return nil
}

func lineInput(line domain.CartLine) domain.CartLineInput {
	return domain.CartLineInput{
		ListingID:   line.ListingID,
		Title:       line.Title,
		Tier:        line.Tier,
		SellerPrice: line.SellerPrice,
		BuyerPrice:  line.BuyerPrice,
		City:        line.City,
		Size:        line.Size,
		Category:    line.Category,
		Image:       line.Image,
	}
}

func equalID(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
