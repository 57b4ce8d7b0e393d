package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is owned by the account service. This API reads it and, on
// application approval, adds the granted vendor role.
type User struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	Email     string             `bson:"email" json:"email"`
	FirstName string             `bson:"first_name" json:"firstName"`
	LastName  string             `bson:"last_name" json:"lastName"`
	Role      UserRole           `bson:"role" json:"role"`
	Roles     []UserRole         `bson:"roles,omitempty" json:"roles,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

// HasRole reports whether the user holds role either as primary or granted role.
func (u User) HasRole(role UserRole) bool {
	if u.Role == role {
		return true
	}
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
