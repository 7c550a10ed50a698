package models

import (
	id "orgatlas/pkg/domain"
)

// Coordinates is a shared map position referenced by organizations.
type Coordinates struct {
	ID id.CoordinatesID `json:"id"`
	X  int64            `json:"x"`
	Y  float32          `json:"y"`
}

type CoordinatesInput struct {
	X int64
	Y float32
}

func (in CoordinatesInput) Apply(c *Coordinates) {
	c.X = in.X
	c.Y = in.Y
}

// CoordinatesRef is either inline Coordinates or existing ones by ID.
type CoordinatesRef = Ref[id.CoordinatesID, CoordinatesInput]
