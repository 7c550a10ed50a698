package service

import (
	"context"
	"fmt"

	"orgatlas/internal/registry/models"
	dErrors "orgatlas/pkg/domain-errors"
)

// resolveLocation materializes a town reference. An inline payload is
// inserted in the current transaction; an identifier is looked up and
// returned unchanged. An absent reference resolves to nil.
func (s *Service) resolveLocation(ctx context.Context, ref models.LocationRef) (*models.Location, error) {
	if payload, ok := ref.Payload(); ok {
		if err := payload.Validate(); err != nil {
			return nil, err
		}
		loc := &models.Location{}
		payload.Apply(loc)
		if err := s.locations.Create(ctx, loc); err != nil {
			return nil, fmt.Errorf("create location: %w", err)
		}
		return loc, nil
	}
	if locID, ok := ref.ID(); ok {
		loc, err := s.locations.FindByID(ctx, locID)
		if err != nil {
			return nil, notFound(err, "location", locID)
		}
		return loc, nil
	}
	return nil, nil
}

func (s *Service) resolveCoordinates(ctx context.Context, ref models.CoordinatesRef) (*models.Coordinates, error) {
	if payload, ok := ref.Payload(); ok {
		c := &models.Coordinates{}
		payload.Apply(c)
		if err := s.coordinates.Create(ctx, c); err != nil {
			return nil, fmt.Errorf("create coordinates: %w", err)
		}
		return c, nil
	}
	if coordID, ok := ref.ID(); ok {
		c, err := s.coordinates.FindByID(ctx, coordID)
		if err != nil {
			return nil, notFound(err, "coordinates", coordID)
		}
		return c, nil
	}
	return nil, dErrors.New(dErrors.CodeBadRequest, "coordinates are required")
}

// resolveAddress materializes an address reference, recursing into its town
// for inline payloads. The returned view carries the town, if any.
func (s *Service) resolveAddress(ctx context.Context, ref models.AddressRef, field string) (*models.AddressView, error) {
	if payload, ok := ref.Payload(); ok {
		return s.createAddress(ctx, payload)
	}
	if addrID, ok := ref.ID(); ok {
		addr, err := s.addresses.FindByID(ctx, addrID)
		if err != nil {
			return nil, notFound(err, "address", addrID)
		}
		return s.addressView(ctx, addr)
	}
	return nil, dErrors.Newf(dErrors.CodeBadRequest, "%s is required", field)
}

func (s *Service) createAddress(ctx context.Context, in models.AddressInput) (*models.AddressView, error) {
	loc, err := s.resolveLocation(ctx, in.Location)
	if err != nil {
		return nil, err
	}
	addr := &models.Address{ZipCode: in.ZipCode}
	if loc != nil {
		addr.LocationID = &loc.ID
	}
	if err := s.addresses.Create(ctx, addr); err != nil {
		return nil, fmt.Errorf("create address: %w", err)
	}
	return &models.AddressView{ID: addr.ID, ZipCode: addr.ZipCode, Location: loc}, nil
}

// addressView loads the town of addr.
func (s *Service) addressView(ctx context.Context, addr *models.Address) (*models.AddressView, error) {
	view := &models.AddressView{ID: addr.ID, ZipCode: addr.ZipCode}
	if addr.LocationID == nil {
		return view, nil
	}
	loc, err := s.locations.FindByID(ctx, *addr.LocationID)
	if err != nil {
		return nil, notFound(err, "location", *addr.LocationID)
	}
	view.Location = loc
	return view, nil
}
