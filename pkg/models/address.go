package models

import "strings"

// Address is embedded in profiles and orders; it has no identity of its own.
type Address struct {
	Street     string   `bson:"street" json:"street" validate:"required"`
	City       string   `bson:"city" json:"city" validate:"required"`
	State      string   `bson:"state" json:"state" validate:"required"`
	Country    string   `bson:"country" json:"country" validate:"required"`
	PostalCode string   `bson:"postal_code,omitempty" json:"postalCode,omitempty"`
	Latitude   *float64 `bson:"latitude,omitempty" json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude  *float64 `bson:"longitude,omitempty" json:"longitude,omitempty" validate:"omitempty,longitude"`
}

// HasCoordinates reports whether both latitude and longitude are set.
func (a Address) HasCoordinates() bool {
	return a.Latitude != nil && a.Longitude != nil
}

// Normalize trims whitespace so that city/state filters match reliably. A lone
// latitude or longitude is dropped.
func (a Address) Normalize() Address {
	if !a.HasCoordinates() {
		a.Latitude, a.Longitude = nil, nil
	}
	a.Street = strings.TrimSpace(a.Street)
	a.City = strings.TrimSpace(a.City)
	a.State = strings.TrimSpace(a.State)
	a.Country = strings.TrimSpace(a.Country)
	a.PostalCode = strings.TrimSpace(a.PostalCode)
	return a
}
