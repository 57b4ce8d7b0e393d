package auth

import (
	"context"
	"net/http"

	"agrimarket-api-io/api/pkg/models"
	"agrimarket-api-io/api/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	sessionKey      = "auth_session"
	blacklistPrefix = "blacklist:"
)

// Session is the authenticated caller attached to the request context.
type Session struct {
	UserID primitive.ObjectID
	Email  string
	Role   models.UserRole
}

// Auth verifies the bearer token and rejects revoked tokens. rdb may be nil,
// in which case revocation is not checked.
func Auth(secret string, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := ExtractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			util.HandleError(c, http.StatusUnauthorized, ErrMissingToken)
			return
		}

		claim, err := ValidateToken(secret, tokenString)
		if err != nil {
			util.HandleError(c, http.StatusUnauthorized, err)
			return
		}

		if rdb != nil && !IsTokenValid(c.Request.Context(), rdb, tokenString) {
			util.HandleError(c, http.StatusUnauthorized, ErrRevokedToken)
			return
		}

		userID, _ := claim.GetUserObjectId()
		SetSession(c, Session{UserID: userID, Email: claim.Email, Role: claim.Role})
		c.Next()
	}
}

// SetSession stores the caller on the gin context.
func SetSession(c *gin.Context, s Session) {
	c.Set(sessionKey, s)
}

// CurrentUser returns the caller placed on the context by Auth.
func CurrentUser(c *gin.Context) (Session, error) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return Session{}, errors.New("unauthorized: no authenticated session")
	}
	s, ok := v.(Session)
	if !ok || s.UserID.IsZero() {
		return Session{}, errors.New("unauthorized: malformed session")
	}
	return s, nil
}

// Check if token is in the blacklist
func IsTokenValid(ctx context.Context, rdb *redis.Client, tokenString string) bool {
	err := rdb.Get(ctx, blacklistPrefix+tokenString).Err()
	if err == redis.Nil {
		return true
	}
	if err != nil {
		util.LogError("blacklist lookup failed", err)
		return false
	}
	return false
}
