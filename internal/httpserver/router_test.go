package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"clothcycle/internal/blob"
	"clothcycle/internal/domain"
	"clothcycle/internal/localstore"
	"clothcycle/internal/notify"
	"clothcycle/internal/service/cart"
	"clothcycle/internal/service/checkout"
	"clothcycle/internal/service/draft"
	"clothcycle/internal/service/ngo"
	"clothcycle/internal/service/photo"
)

type stubCartItemRepo struct {
	lines map[string][]domain.CartLine
}

func newStubCartItemRepo() *stubCartItemRepo {
	return &stubCartItemRepo{lines: make(map[string][]domain.CartLine)}
}

func (r *stubCartItemRepo) ListByUser(_ context.Context, userID string) ([]domain.CartLine, error) {
	return r.lines[userID], nil
}

func (r *stubCartItemRepo) Insert(_ context.Context, userID string, in domain.CartLineInput, quantity int) (*domain.CartLine, error) {
	line := domain.CartLine{
		ID:          uuid.NewString(),
		ListingID:   in.ListingID,
		Title:       in.Title,
		Tier:        in.Tier,
		SellerPrice: in.SellerPrice,
		BuyerPrice:  in.BuyerPrice,
		City:        in.City,
		Size:        in.Size,
		Category:    in.Category,
		Image:       in.Image,
		Quantity:    quantity,
	}
	r.lines[userID] = append(r.lines[userID], line)
	return &line, nil
}

func (r *stubCartItemRepo) UpdateQuantity(_ context.Context, userID, id string, quantity int) error {
	for i := range r.lines[userID] {
		if r.lines[userID][i].ID == id {
			r.lines[userID][i].Quantity = quantity
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *stubCartItemRepo) Delete(_ context.Context, userID, id string) error {
	kept := r.lines[userID][:0]
	found := false
	for _, line := range r.lines[userID] {
		if line.ID == id {
			found = true
			continue
		}
		kept = append(kept, line)
	}
	r.lines[userID] = kept
	if !found {
		return domain.ErrNotFound
	}
	return nil
}

func (r *stubCartItemRepo) DeleteByUser(_ context.Context, userID string) error {
	delete(r.lines, userID)
	return nil
}

type stubListingRepo struct {
	listings  map[string]domain.Listing
	insertErr error
}

func newStubListingRepo() *stubListingRepo {
	return &stubListingRepo{listings: make(map[string]domain.Listing)}
}

func (r *stubListingRepo) Insert(_ context.Context, in domain.Listing) (*domain.Listing, error) {
	if r.insertErr != nil {
		return nil, r.insertErr
	}
	out := in
	out.ID = uuid.NewString()
	out.CreatedAt = time.Now()
	r.listings[out.ID] = out
	return &out, nil
}

func (r *stubListingRepo) GetByID(_ context.Context, id string) (*domain.Listing, error) {
	l, ok := r.listings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &l, nil
}

func (r *stubListingRepo) ListByStatus(_ context.Context, status string) ([]domain.Listing, error) {
	var out []domain.Listing
	for _, l := range r.listings {
		if l.Status == status {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *stubListingRepo) SetStatus(_ context.Context, id, status string) error {
	l, ok := r.listings[id]
	if !ok {
		return domain.ErrNotFound
	}
	l.Status = status
	r.listings[id] = l
	return nil
}

type stubOrderRepo struct {
	orders map[string]domain.Order
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{orders: make(map[string]domain.Order)}
}

func (r *stubOrderRepo) CreateWithItems(_ context.Context, in domain.Order) (*domain.Order, error) {
	out := in
	out.ID = uuid.NewString()
	out.CreatedAt = time.Now()
	r.orders[out.ID] = out
	return &out, nil
}

func (r *stubOrderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &o, nil
}

type stubNGORepo struct {
	apps []domain.NGOApplication
}

func (r *stubNGORepo) Insert(_ context.Context, in domain.NGOApplication) (*domain.NGOApplication, error) {
	out := in
	out.ID = uuid.NewString()
	out.CreatedAt = time.Now()
	r.apps = append(r.apps, out)
	return &out, nil
}

func (r *stubNGORepo) List(context.Context) ([]domain.NGOApplication, error) {
	return r.apps, nil
}

func (r *stubNGORepo) Review(_ context.Context, id, status, _, _ string, _ time.Time) error {
	for i := range r.apps {
		if r.apps[i].ID == id {
			r.apps[i].Status = status
			return nil
		}
	}
	return domain.ErrNotFound
}

type testEnv struct {
	router   *gin.Engine
	cartRepo *stubCartItemRepo
	listings *stubListingRepo
	orders   *stubOrderRepo
	ngoRepo  *stubNGORepo
}

// stub verifier: token "user:<uid>" authenticates, "admin:<uid>" gets the
// admin claim, anything else is rejected.
func testVerifier() TokenVerifier {
	return verifierFunc(func(_ context.Context, token string) (Identity, error) {
		switch {
		case strings.HasPrefix(token, "admin:"):
			return Identity{UID: strings.TrimPrefix(token, "admin:"), Admin: true}, nil
		case strings.HasPrefix(token, "user:"):
			return Identity{UID: strings.TrimPrefix(token, "user:")}, nil
		}
		return Identity{}, errors.New("unknown token")
	})
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := log.New(io.Discard, "", 0)

	local, err := localstore.New(t.TempDir())
	if err != nil {
		t.Fatalf("init local store: %v", err)
	}
	blobs, err := blob.NewLocalStore(t.TempDir(), "http://blobs.test")
	if err != nil {
		t.Fatalf("init blob store: %v", err)
	}

	cartRepo := newStubCartItemRepo()
	listings := newStubListingRepo()
	orders := newStubOrderRepo()
	ngoRepo := &stubNGORepo{}

	sessions := NewSessions(SessionFactories{
		NewCart: func(deviceID string, notifier notify.Notifier) *cart.Store {
			return cart.NewStore(cart.Config{
				Notifier: notifier,
				NewRemote: func(userID string) cart.Strategy {
					return cart.NewRemoteStrategy(cartRepo, userID)
				},
				NewLocal: func() cart.Strategy {
					return cart.NewLocalStrategy(local, deviceID)
				},
			})
		},
		NewDraft: func(deviceID, kind string, notifier notify.Notifier) *draft.Machine {
			return draft.New(local, deviceID, kind, notifier, listings)
		},
		NewPipeline: func() *photo.Pipeline {
			return photo.NewPipeline(photo.ImageNormalizer{}, blobs)
		},
	})

	deps := Deps{
		Verifier:      testVerifier(),
		Sessions:      sessions,
		CheckoutSvc:   checkout.New(orders, nil, "", logger),
		NGOSvc:        ngo.New(ngoRepo, blobs, "ngo-documents"),
		Listings:      listings,
		Orders:        orders,
		ListingBucket: "listing-photos",
	}

	return &testEnv{
		router:   buildRouter(logger, nil, deps),
		cartRepo: cartRepo,
		listings: listings,
		orders:   orders,
		ngoRepo:  ngoRepo,
	}
}

func (e *testEnv) do(t *testing.T, method, target, token, deviceID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if deviceID != "" {
		req.Header.Set(deviceHeader, deviceID)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/healthz", "", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestNewDeviceIssuesID(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/devices", "", "", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	id, _ := body["deviceId"].(string)
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("expected a uuid device id, got %q", id)
	}
}

func TestCartRequiresDeviceHeader(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/cart", "", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestInvalidTokenRejected(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/cart", "bogus", "device-1", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestGuestCartFlow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/cart/items", "", "device-1", map[string]interface{}{
		"item": map[string]interface{}{
			"listingId":  "listing-1",
			"title":      "Denim jacket",
			"tier":       domain.TierA,
			"buyerPrice": 100.0,
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	items, _ := body["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("expected 1 cart item, got %d", len(items))
	}
	if _, ok := body["notifications"]; !ok {
		t.Fatal("expected a notification on add")
	}
	agg, _ := body["aggregate"].(map[string]interface{})
	if got := agg["grandTotal"].(float64); got != 107.5 {
		t.Fatalf("expected grand total 107.5, got %v", got)
	}

	itemID := items[0].(map[string]interface{})["id"].(string)

	rec = env.do(t, http.MethodPatch, "/api/cart/items/"+itemID, "", "device-1", map[string]interface{}{"quantity": 0})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body = decodeBody(t, rec)
	if items, _ := body["items"].([]interface{}); len(items) != 0 {
		t.Fatalf("expected quantity 0 to remove the line, got %d items", len(items))
	}
}

func TestCartSurvivesReloadForSameDevice(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodPost, "/api/cart/items", "", "device-7", map[string]interface{}{
		"item": map[string]interface{}{"listingId": "listing-1", "title": "Kurta", "buyerPrice": 50.0},
	})

	rec := env.do(t, http.MethodGet, "/api/cart", "", "device-7", nil)
	body := decodeBody(t, rec)
	if items, _ := body["items"].([]interface{}); len(items) != 1 {
		t.Fatalf("expected persisted guest cart, got %d items", len(items))
	}
}

func TestCartMergesOnLogin(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodPost, "/api/cart/items", "", "device-2", map[string]interface{}{
		"item": map[string]interface{}{"listingId": "listing-9", "title": "Saree", "buyerPrice": 200.0},
	})

	rec := env.do(t, http.MethodGet, "/api/cart", "user:u1", "device-2", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	items, _ := body["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("expected merged cart with 1 item, got %d", len(items))
	}
	if len(env.cartRepo.lines["u1"]) != 1 {
		t.Fatalf("expected guest line persisted for u1, got %d", len(env.cartRepo.lines["u1"]))
	}
}

func TestCheckoutValidationErrors(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/checkout", "", "device-3", map[string]interface{}{
		"fullName": "A",
		"phone":    "12",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if _, ok := body["errors"]; !ok {
		t.Fatal("expected per-field errors")
	}
}

func validDelivery() map[string]interface{} {
	return map[string]interface{}{
		"fullName":      "Asha Rao",
		"phone":         "9876543210",
		"email":         "asha@example.com",
		"streetAddress": "12 MG Road, Flat 4",
		"city":          "Bengaluru",
		"postalCode":    "560001",
		"state":         "Karnataka",
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/checkout", "", "device-4", validDelivery())
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rec.Code)
	}
}

func TestCheckoutPlacesOrderAndClearsCart(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodPost, "/api/cart/items", "", "device-5", map[string]interface{}{
		"item": map[string]interface{}{"listingId": "listing-1", "title": "Denim jacket", "buyerPrice": 100.0},
	})

	rec := env.do(t, http.MethodPost, "/api/checkout", "", "device-5", validDelivery())
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	ord, _ := body["order"].(map[string]interface{})
	if ord["paymentMethod"] != domain.PaymentMethodCOD || ord["status"] != domain.OrderStatusPending {
		t.Fatalf("unexpected order: %v", ord)
	}

	rec = env.do(t, http.MethodGet, "/api/cart", "", "device-5", nil)
	cartBody := decodeBody(t, rec)
	if items, _ := cartBody["items"].([]interface{}); len(items) != 0 {
		t.Fatalf("expected cart cleared after checkout, got %d items", len(items))
	}
}

func TestDraftStepGuards(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/drafts/sale/next", "", "device-6", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected step 1 -> 2 to pass, got %d: %s", rec.Code, rec.Body.String())
	}

	// step 2 needs a tier before advancing
	rec = env.do(t, http.MethodPost, "/api/drafts/sale/next", "", "device-6", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422 without a tier, got %d", rec.Code)
	}

	env.do(t, http.MethodPost, "/api/drafts/sale/tier", "", "device-6", map[string]interface{}{"tier": domain.TierB})
	env.do(t, http.MethodPost, "/api/drafts/sale/price", "", "device-6", map[string]interface{}{"price": 25.0})
	rec = env.do(t, http.MethodPost, "/api/drafts/sale/next", "", "device-6", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 after tier selection, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestDraftUnknownKind(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/drafts/rental", "", "device-6", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestDraftPriceClampNotifies(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodPost, "/api/drafts/sale/tier", "", "device-8", map[string]interface{}{"tier": domain.TierB})
	rec := env.do(t, http.MethodPost, "/api/drafts/sale/price", "", "device-8", map[string]interface{}{"price": 45.0})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	state, _ := body["draft"].(map[string]interface{})
	if got := state["tierBPrice"].(float64); got != 30 {
		t.Fatalf("expected clamp to 30, got %v", got)
	}
	if _, ok := body["notifications"]; !ok {
		t.Fatal("expected a clamp notification")
	}
}

func TestAdminRoutesRequireAdminClaim(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/admin/ngo/applications", "", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 for guest, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/admin/ngo/applications", "user:u1", "", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403 without admin claim, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/admin/ngo/applications", "admin:a1", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 for admin, got %d", rec.Code)
	}
}

func TestSetListingStatus(t *testing.T) {
	env := newTestEnv(t)
	created, err := env.listings.Insert(context.Background(), domain.Listing{Status: domain.ListingStatusPending})
	if err != nil {
		t.Fatalf("insert listing: %v", err)
	}

	rec := env.do(t, http.MethodPatch, "/api/admin/listings/"+created.ID+"/status", "admin:a1", "", map[string]interface{}{
		"status": domain.ListingStatusApproved,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodPatch, "/api/admin/listings/"+created.ID+"/status", "admin:a1", "", map[string]interface{}{
		"status": "archived",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for unknown status, got %d", rec.Code)
	}
}

func TestSubmitNGOApplication(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for field, value := range map[string]string{
		"ngoName":            "Sahara Trust",
		"registrationNumber": "REG123",
		"contactPerson":      "Meera Iyer",
		"contactEmail":       "meera@sahara.org",
		"contactPhone":       "9876543210",
		"serviceArea":        "Pune",
	} {
		if err := mw.WriteField(field, value); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	fw, err := mw.CreateFormFile("documents", "certificate.pdf")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte("registration certificate")); err != nil {
		t.Fatalf("write file: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/ngo/applications", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(env.ngoRepo.apps) != 1 {
		t.Fatalf("expected 1 stored application, got %d", len(env.ngoRepo.apps))
	}
	if env.ngoRepo.apps[0].Status != domain.ApplicationStatusPending {
		t.Fatalf("expected pending status, got %s", env.ngoRepo.apps[0].Status)
	}
}

func TestReviewNGOApplication(t *testing.T) {
	env := newTestEnv(t)
	created, err := env.ngoRepo.Insert(context.Background(), domain.NGOApplication{
		NGOName:            "Sahara Trust",
		RegistrationNumber: "REG123",
		ContactPerson:      "Meera Iyer",
		ContactEmail:       "meera@sahara.org",
		ContactPhone:       "9876543210",
		ServiceArea:        "Pune",
		Status:             domain.ApplicationStatusPending,
	})
	if err != nil {
		t.Fatalf("seed application: %v", err)
	}

	rec := env.do(t, http.MethodPost, "/api/admin/ngo/applications/"+created.ID+"/review", "admin:a1", "", map[string]interface{}{
		"approve":    true,
		"adminNotes": "documents verified",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if env.ngoRepo.apps[0].Status != domain.ApplicationStatusApproved {
		t.Fatalf("expected approved status, got %s", env.ngoRepo.apps[0].Status)
	}
}
