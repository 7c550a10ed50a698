package models

import (
	id "orgatlas/pkg/domain"
	dErrors "orgatlas/pkg/domain-errors"
)

// Location is a shared point. X is latitude and Y is longitude; any number of
// addresses may reference the same Location.
type Location struct {
	ID   id.LocationID `json:"id"`
	X    float32       `json:"x"`
	Y    float64       `json:"y"`
	Z    float32       `json:"z"`
	Name *string       `json:"name,omitempty"`
}

// LocationInput is the payload for creating or overwriting a Location.
type LocationInput struct {
	X    float32
	Y    float64
	Z    *float32
	Name *string
}

func (in LocationInput) Validate() error {
	if in.Z == nil {
		return dErrors.New(dErrors.CodeBadRequest, "z coordinate is required")
	}
	return nil
}

// Apply overwrites the mutable fields of l. Identity is kept.
func (in LocationInput) Apply(l *Location) {
	l.X = in.X
	l.Y = in.Y
	if in.Z != nil {
		l.Z = *in.Z
	}
	l.Name = in.Name
}

// LocationRef is either an inline Location or an existing one by ID.
type LocationRef = Ref[id.LocationID, LocationInput]
