package draft

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"clothcycle/internal/domain"
	"clothcycle/internal/localstore"
)

type stubNotifier struct {
	errors    []string
	successes []string
}

func (n *stubNotifier) Success(title, _ string) { n.successes = append(n.successes, title) }
func (n *stubNotifier) Error(title, _ string)   { n.errors = append(n.errors, title) }

type stubListingRepo struct {
	created *domain.Listing
	err     error
	lastIn  domain.Listing
}

func (r *stubListingRepo) Insert(_ context.Context, in domain.Listing) (*domain.Listing, error) {
	r.lastIn = in
	if r.err != nil {
		return nil, r.err
	}
	out := in
	out.ID = "listing-1"
	return &out, nil
}

func newTestMachine(t *testing.T) (*Machine, *localstore.Store, *stubNotifier, *stubListingRepo) {
	t.Helper()
	store, err := localstore.New(t.TempDir())
	if err != nil {
		t.Fatalf("localstore: %v", err)
	}
	notifier := &stubNotifier{}
	repo := &stubListingRepo{}
	return New(store, "device-1", KindSale, notifier, repo), store, notifier, repo
}

func advanceToFinalStep(t *testing.T, m *Machine) {
	t.Helper()
	m.SetDetails("shirts", "M", "cotton", "light wear", false)
	if err := m.Next(); err != nil {
		t.Fatalf("step 1 -> 2: %v", err)
	}
	if err := m.SelectTier(domain.TierB); err != nil {
		t.Fatalf("select tier: %v", err)
	}
	if err := m.SetTierBPrice(25); err != nil {
		t.Fatalf("set price: %v", err)
	}
	if err := m.Next(); err != nil {
		t.Fatalf("step 2 -> 3: %v", err)
	}
	if err := m.AddPhoto(PhotoRef{ID: "p1", URL: "https://img/p1.jpg", Filename: "front.jpg"}); err != nil {
		t.Fatalf("add photo: %v", err)
	}
	if err := m.Next(); err != nil {
		t.Fatalf("step 3 -> 4: %v", err)
	}
	m.SetLocation("Pune", "411001", "weekends", "9876543210")
}

func TestNextBlockedWithoutTier(t *testing.T) {
	m, _, notifier, _ := newTestMachine(t)
	if err := m.Next(); err != nil {
		t.Fatalf("step 1 has no guard: %v", err)
	}
	if err := m.Next(); err == nil {
		t.Fatal("tier step should block Next without a tier")
	}
	if m.State().Step != 2 {
		t.Fatalf("step should not advance, got %d", m.State().Step)
	}
	if len(notifier.errors) == 0 {
		t.Fatal("expected a user-facing rejection")
	}
}

func TestNextBlockedWithoutPhotos(t *testing.T) {
	m, _, notifier, _ := newTestMachine(t)
	m.Next()
	m.SelectTier(domain.TierX)
	m.SetTierXPrice(200)
	m.Next()

	if err := m.Next(); err == nil {
		t.Fatal("photos step should block Next below the minimum")
	}
	if m.State().Step != 3 {
		t.Fatalf("step should stay at 3, got %d", m.State().Step)
	}
	if len(notifier.errors) == 0 {
		t.Fatal("expected a user-facing rejection")
	}
}

func TestTierBPriceClamped(t *testing.T) {
	m, _, notifier, _ := newTestMachine(t)
	m.SelectTier(domain.TierB)
	if err := m.SetTierBPrice(45); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := m.State().TierBPrice; got != 30 {
		t.Fatalf("expected clamp to 30, got %v", got)
	}
	if len(notifier.errors) == 0 || notifier.errors[len(notifier.errors)-1] != "Price adjusted" {
		t.Fatalf("expected clamp notification, got %v", notifier.errors)
	}
}

func TestTierAPriceClamped(t *testing.T) {
	m, _, _, _ := newTestMachine(t)
	m.SelectTier(domain.TierA)
	if err := m.SetTierAPrice(150); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := m.State().TierAPrice; got != 100 {
		t.Fatalf("expected clamp to 100, got %v", got)
	}
}

func TestTierBPriceRaisedToMinimum(t *testing.T) {
	m, _, notifier, _ := newTestMachine(t)
	m.SelectTier(domain.TierB)
	if err := m.SetTierBPrice(5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := m.State().TierBPrice; got != 10 {
		t.Fatalf("expected clamp to 10, got %v", got)
	}
	if len(notifier.errors) == 0 || notifier.errors[len(notifier.errors)-1] != "Price adjusted" {
		t.Fatalf("expected clamp notification, got %v", notifier.errors)
	}
}

func TestTierAPriceRaisedToMinimum(t *testing.T) {
	m, _, _, _ := newTestMachine(t)
	m.SelectTier(domain.TierA)
	if err := m.SetTierAPrice(20); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := m.State().TierAPrice; got != 50 {
		t.Fatalf("expected clamp to 50, got %v", got)
	}
}

func TestSelectTierClampsExistingPrice(t *testing.T) {
	m, _, notifier, _ := newTestMachine(t)
	m.SelectTier(domain.TierX)
	m.state.TierBPrice = 45 // entered before the tier switch
	m.SelectTier(domain.TierB)
	if got := m.State().TierBPrice; got != 30 {
		t.Fatalf("switching to tier B should clamp, got %v", got)
	}
	if len(notifier.errors) == 0 {
		t.Fatal("expected re-notification on clamp")
	}

	m.state.TierAPrice = 20
	m.SelectTier(domain.TierA)
	if got := m.State().TierAPrice; got != 50 {
		t.Fatalf("switching to tier A should raise to the minimum, got %v", got)
	}
}

func TestTierXWeeklyFee(t *testing.T) {
	m, _, _, _ := newTestMachine(t)
	m.SelectTier(domain.TierX)
	if err := m.SetTierXPrice(200); err != nil {
		t.Fatalf("tier X accepts any positive amount: %v", err)
	}
	if got := fmt.Sprintf("%.2f", m.WeeklyHoldingFee()); got != "14.00" {
		t.Fatalf("expected weekly fee 14.00, got %s", got)
	}
}

func TestNonPositivePricesRejected(t *testing.T) {
	m, _, _, _ := newTestMachine(t)
	if err := m.SetTierBPrice(0); err == nil {
		t.Fatal("zero price should be rejected")
	}
	if err := m.SetTierXPrice(-5); err == nil {
		t.Fatal("negative price should be rejected")
	}
}

func TestDraftRehydratesAcrossReload(t *testing.T) {
	store, err := localstore.New(t.TempDir())
	if err != nil {
		t.Fatalf("localstore: %v", err)
	}
	notifier := &stubNotifier{}
	repo := &stubListingRepo{}

	m := New(store, "device-1", KindSale, notifier, repo)
	m.SetDetails("sarees", "free", "silk", "", false)
	m.Next()
	m.SelectTier(domain.TierA)
	m.SetTierAPrice(80)

	reloaded := New(store, "device-1", KindSale, notifier, repo)
	st := reloaded.State()
	if st.Step != 2 || st.Category != "sarees" || st.Tier != domain.TierA || st.TierAPrice != 80 {
		t.Fatalf("draft not rehydrated: %+v", st)
	}
}

func TestSubmitOnlyOnFinalStep(t *testing.T) {
	m, _, _, _ := newTestMachine(t)
	if _, err := m.Submit(context.Background()); err == nil {
		t.Fatal("submit before the final step should fail")
	}
}

func TestSubmitSuccessResetsDraft(t *testing.T) {
	m, store, _, repo := newTestMachine(t)
	advanceToFinalStep(t, m)

	created, err := m.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if created.ID != "listing-1" {
		t.Fatalf("expected created listing, got %+v", created)
	}

	in := repo.lastIn
	if in.Tier != domain.TierB || in.Price != 25 {
		t.Fatalf("final price should match the chosen tier: %+v", in)
	}
	if in.Status != domain.ListingStatusPending {
		t.Fatalf("new listings start pending, got %q", in.Status)
	}
	if len(in.Photos) != 1 || in.Photos[0].URL != "https://img/p1.jpg" {
		t.Fatalf("photo references not carried: %+v", in.Photos)
	}

	st := m.State()
	if st.Step != 1 || st.Category != "" || st.Tier != "" || len(st.Photos) != 0 {
		t.Fatalf("state should reset after submit: %+v", st)
	}
	var saved State
	if store.Get("device-1", draftStorageKey, &saved) {
		t.Fatal("saved draft should be cleared after submit")
	}
}

func TestSubmitFailureKeepsDraft(t *testing.T) {
	m, store, _, repo := newTestMachine(t)
	advanceToFinalStep(t, m)
	repo.err = errors.New("insert failed")

	if _, err := m.Submit(context.Background()); err == nil {
		t.Fatal("expected submit error")
	}

	st := m.State()
	if st.Step != 4 || st.Category != "shirts" || st.TierBPrice != 25 {
		t.Fatalf("failed submit must keep all fields: %+v", st)
	}
	var saved State
	if !store.Get("device-1", draftStorageKey, &saved) {
		t.Fatal("saved draft should survive a failed submit")
	}
}

func TestDonationSubmitHasNoTierOrPrice(t *testing.T) {
	store, err := localstore.New(t.TempDir())
	if err != nil {
		t.Fatalf("localstore: %v", err)
	}
	repo := &stubListingRepo{}
	m := New(store, "device-1", KindDonation, &stubNotifier{}, repo)

	m.SetDetails("jackets", "L", "wool", "", false)
	m.Next()
	m.Next() // donation drafts have no tier guard
	m.AddPhoto(PhotoRef{ID: "p1", URL: "https://img/p1.jpg", Filename: "a.jpg"})
	m.Next()
	m.SetLocation("Delhi", "110001", "anytime", "9876543210")

	created, err := m.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !created.Donation || created.Tier != "" || created.Price != 0 {
		t.Fatalf("donation listing should carry no tier/price: %+v", created)
	}
}

func TestRemovePhotoPreservesOrder(t *testing.T) {
	m, _, _, _ := newTestMachine(t)
	for i := 1; i <= 3; i++ {
		m.AddPhoto(PhotoRef{ID: fmt.Sprintf("p%d", i)})
	}
	m.RemovePhoto("p2")
	ph := m.State().Photos
	if len(ph) != 2 || ph[0].ID != "p1" || ph[1].ID != "p3" {
		t.Fatalf("order not preserved: %+v", ph)
	}
}
