package models

import (
	id "orgatlas/pkg/domain"
)

// Address is a shared postal address. Up to two references from a single
// organization (official and postal) and any number across organizations.
type Address struct {
	ID         id.AddressID   `json:"id"`
	ZipCode    *string        `json:"zip_code,omitempty"`
	LocationID *id.LocationID `json:"location_id,omitempty"`
}

// HasLocation reports whether the address points at a town.
func (a *Address) HasLocation() bool { return a.LocationID != nil }

// AddressView is an Address with its town resolved.
type AddressView struct {
	ID       id.AddressID `json:"id"`
	ZipCode  *string      `json:"zip_code,omitempty"`
	Location *Location    `json:"location,omitempty"`
}

// AddressInput carries the zip code and an optional town reference. An absent
// Location leaves the address without a town.
type AddressInput struct {
	ZipCode  *string
	Location LocationRef
}

// AddressRef is either an inline Address or an existing one by ID.
type AddressRef = Ref[id.AddressID, AddressInput]

// DeleteAddressCommand selects how an address is removed. Exactly one of
// Force and RedirectTo must be set.
type DeleteAddressCommand struct {
	Force      bool
	RedirectTo *id.AddressID
}
