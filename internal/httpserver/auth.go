package httpserver

import (
	"context"
	"net/http"
	"strings"

	firebase "firebase.google.com/go/v4"
	"github.com/gin-gonic/gin"
	"google.golang.org/api/option"
)

const (
	ctxUserIDKey   = "userID"
	ctxAdminKey    = "isAdmin"
	ctxDeviceIDKey = "deviceID"

	deviceHeader = "X-Device-ID"
)

// Identity is a verified caller.
type Identity struct {
	UID   string
	Admin bool
}

// TokenVerifier checks a bearer token and returns the caller identity.
type TokenVerifier interface {
	Verify(ctx context.Context, idToken string) (Identity, error)
}

// NewFirebaseVerifier builds a TokenVerifier backed by a Firebase project.
func NewFirebaseVerifier(ctx context.Context, credentialsFile string) (TokenVerifier, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, err
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, err
	}
	return verifierFunc(func(ctx context.Context, idToken string) (Identity, error) {
		tok, err := client.VerifyIDToken(ctx, idToken)
		if err != nil {
			return Identity{}, err
		}
		admin, _ := tok.Claims["admin"].(bool)
		return Identity{UID: tok.UID, Admin: admin}, nil
	}), nil
}

type verifierFunc func(ctx context.Context, idToken string) (Identity, error)

func (f verifierFunc) Verify(ctx context.Context, idToken string) (Identity, error) {
	return f(ctx, idToken)
}

// identityMiddleware resolves the optional bearer token. Requests without a
// token proceed as guests; a present but invalid token is rejected.
func identityMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "malformed authorization header"})
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if token == "" || verifier == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		id, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(ctxUserIDKey, id.UID)
		c.Set(ctxAdminKey, id.Admin)
		c.Next()
	}
}

func requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUserID(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUserID(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if !c.GetBool(ctxAdminKey) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

// currentUserID returns the authenticated uid, or nil for guests.
func currentUserID(c *gin.Context) *string {
	v, ok := c.Get(ctxUserIDKey)
	if !ok {
		return nil
	}
	uid, ok := v.(string)
	if !ok || uid == "" {
		return nil
	}
	return &uid
}
