package httpserver

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"clothcycle/internal/identity"
	"clothcycle/internal/notify"
	"clothcycle/internal/service/cart"
	"clothcycle/internal/service/draft"
	"clothcycle/internal/service/photo"
)

// SessionFactories build the per-device components. The notifier passed in
// is the session's buffer; everything the components report surfaces in the
// next response for that device.
type SessionFactories struct {
	NewCart     func(deviceID string, notifier notify.Notifier) *cart.Store
	NewDraft    func(deviceID, kind string, notifier notify.Notifier) *draft.Machine
	NewPipeline func() *photo.Pipeline
}

// Sessions tracks per-device state: the cart store, the listing draft
// machines and the staged photo pipelines. A device is identified by the
// X-Device-ID header so guest state survives across requests.
type Sessions struct {
	mu        sync.Mutex
	factories SessionFactories
	byDevice  map[string]*Session
}

func NewSessions(factories SessionFactories) *Sessions {
	return &Sessions{
		factories: factories,
		byDevice:  make(map[string]*Session),
	}
}

// Get returns the session for a device, creating it on first use.
func (s *Sessions) Get(deviceID string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.byDevice[deviceID]; ok {
		return sess
	}
	buf := &notify.Buffer{}
	sess := &Session{
		deviceID:  deviceID,
		notifier:  buf,
		identity:  identity.NewObserver(),
		cart:      s.factories.NewCart(deviceID, buf),
		factories: s.factories,
		drafts:    make(map[string]*draft.Machine),
		pipelines: make(map[string]*photo.Pipeline),
	}
	sess.identity.Subscribe(func(userID *string) {
		sess.cart.SetIdentity(context.Background(), userID)
	})
	s.byDevice[deviceID] = sess
	return sess
}

// Session is one device's live state.
type Session struct {
	mu        sync.Mutex
	deviceID  string
	notifier  *notify.Buffer
	identity  *identity.Observer
	cart      *cart.Store
	factories SessionFactories
	drafts    map[string]*draft.Machine
	pipelines map[string]*photo.Pipeline
}

func (s *Session) Cart() *cart.Store { return s.cart }

// Draft returns the machine for a draft kind, rehydrating it from the device
// store on first access.
func (s *Session) Draft(kind string) *draft.Machine {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.drafts[kind]; ok {
		return m
	}
	m := s.factories.NewDraft(s.deviceID, kind, s.notifier)
	s.drafts[kind] = m
	return m
}

// Pipeline returns the staged photo pipeline for a draft kind.
func (s *Session) Pipeline(kind string) *photo.Pipeline {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.pipelines[kind]; ok {
		return p
	}
	p := s.factories.NewPipeline()
	s.pipelines[kind] = p
	return p
}

// Notifications drains the session's pending notifications.
func (s *Session) Notifications() []notify.Notification {
	return s.notifier.Drain()
}

// newDeviceHandler issues a device id for clients that do not have one yet.
// The id keys all device-scoped state, so clients must persist it.
func newDeviceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"deviceId": uuid.NewString()})
	}
}

// sessionMiddleware resolves the device session and aligns the cart with the
// caller's identity. The X-Device-ID header is required on session routes;
// without it guest state would have nowhere to live.
func sessionMiddleware(sessions *Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		deviceID := c.GetHeader(deviceHeader)
		if deviceID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing " + deviceHeader + " header"})
			return
		}
		sess := sessions.Get(deviceID)
		sess.identity.Set(currentUserID(c))
		c.Set(ctxDeviceIDKey, deviceID)
		c.Set(ctxSessionKey, sess)
		c.Next()
	}
}

const ctxSessionKey = "session"

func currentSession(c *gin.Context) *Session {
	v, _ := c.Get(ctxSessionKey)
	sess, _ := v.(*Session)
	return sess
}

// respond writes a JSON payload, attaching any notifications the session's
// components emitted while handling the request.
func respond(c *gin.Context, sess *Session, status int, payload gin.H) {
	if sess != nil {
		if notes := sess.Notifications(); len(notes) > 0 {
			payload["notifications"] = notes
		}
	}
	c.JSON(status, payload)
}
