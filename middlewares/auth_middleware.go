package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"blogapp/config"
	"blogapp/global"
	"blogapp/utils"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// ErrNoToken is returned when a request carries neither the auth cookie nor
// a bearer token.
var ErrNoToken = errors.New("no token provided")

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID string
	Email  string
}

// CookieName is the cookie holding the session token.
func CookieName() string {
	if config.AppConfig == nil || config.AppConfig.Cookie.Name == "" {
		return "auth-token"
	}
	return config.AppConfig.Cookie.Name
}

// ResolveIdentity reads the session token from the auth cookie, falling back
// to an Authorization: Bearer header, and verifies it.
func ResolveIdentity(r *http.Request) (*Identity, error) {
	token := ""
	if c, err := r.Cookie(CookieName()); err == nil {
		token = c.Value
	}
	if token == "" {
		header := r.Header.Get("Authorization")
		if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
			token = strings.TrimSpace(header[7:])
		}
	}
	if token == "" {
		return nil, ErrNoToken
	}

	claims, err := global.Tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	return &Identity{UserID: claims.UserID, Email: claims.Email}, nil
}

// AuthMiddleWare rejects requests without a valid session token.
func AuthMiddleWare() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id, err := ResolveIdentity(ctx.Request)
		if err != nil {
			message := "Invalid token"
			if errors.Is(err, ErrNoToken) {
				message = "No token provided"
			}
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": message})
			return
		}
		ctx.Set(identityKey, id)
		ctx.Next()
	}
}

// OptionalAuth attaches the identity when a valid token is present and lets
// anonymous requests through.
func OptionalAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if id, err := ResolveIdentity(ctx.Request); err == nil {
			ctx.Set(identityKey, id)
		}
		ctx.Next()
	}
}

// CurrentIdentity returns the identity set by AuthMiddleWare or OptionalAuth.
func CurrentIdentity(ctx *gin.Context) (*Identity, bool) {
	v, ok := ctx.Get(identityKey)
	if !ok {
		return nil, false
	}
	id, ok := v.(*Identity)
	return id, ok
}

// ValidateID rejects path parameters that are not well-formed ids.
func ValidateID(param string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !utils.ValidID(ctx.Param(param)) {
			ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid id"})
			return
		}
		ctx.Next()
	}
}
