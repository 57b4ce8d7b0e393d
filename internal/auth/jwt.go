package auth

import (
	"agrimarket-api-io/api/pkg/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrMissingToken  = errors.New("request does not contain an access token")
	ErrInvalidClaims = errors.New("couldn't parse claims")
	ErrRevokedToken  = errors.New("token has been revoked, please login again")
)

// JWTClaim is issued by the account service; this API only verifies it.
type JWTClaim struct {
	Id    string          `json:"id"`
	Email string          `json:"email"`
	Role  models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Validate a signed jwt auth token and it's expiration time.
func ValidateToken(secret, signedToken string) (JWTClaim, error) {
	token, err := jwt.ParseWithClaims(
		signedToken,
		&JWTClaim{},
		func(token *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return JWTClaim{}, errors.Wrap(err, "invalid token")
	}

	claim, ok := token.Claims.(*JWTClaim)
	if !ok || !token.Valid {
		return JWTClaim{}, ErrInvalidClaims
	}
	if _, err := claim.GetUserObjectId(); err != nil {
		return JWTClaim{}, errors.Wrap(ErrInvalidClaims, "user id")
	}
	if !claim.Role.IsValid() {
		return JWTClaim{}, errors.Wrapf(ErrInvalidClaims, "role %q", claim.Role)
	}

	return *claim, nil
}

// Get user object ID from JWTClaim.
func (j JWTClaim) GetUserObjectId() (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(j.Id)
}
