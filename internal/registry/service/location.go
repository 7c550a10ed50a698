package service

import (
	"context"
	"fmt"

	"orgatlas/internal/notify"
	"orgatlas/internal/registry/models"
	id "orgatlas/pkg/domain"
)

func (s *Service) CreateLocation(ctx context.Context, in models.LocationInput) (*models.Location, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	loc := &models.Location{}
	in.Apply(loc)
	err := s.inTx(ctx, "create_location", func(ctx context.Context) error {
		if err := s.locations.Create(ctx, loc); err != nil {
			return fmt.Errorf("create location: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.committed(ctx, notify.EntityLocation, notify.ActionCreated, int64(loc.ID))
	return loc, nil
}

// UpdateLocation overwrites every field of an existing location.
func (s *Service) UpdateLocation(ctx context.Context, locID id.LocationID, in models.LocationInput) (*models.Location, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var loc *models.Location
	err := s.inTx(ctx, "update_location", func(ctx context.Context) error {
		found, err := s.locations.FindByID(ctx, locID)
		if err != nil {
			return notFound(err, "location", locID)
		}
		in.Apply(found)
		if err := s.locations.Update(ctx, found); err != nil {
			return fmt.Errorf("update location: %w", err)
		}
		addrIDs, err := s.addresses.ListIDsByLocation(ctx, locID)
		if err != nil {
			return fmt.Errorf("list addresses by location: %w", err)
		}
		if err := s.revalidateDependents(ctx, addrIDs...); err != nil {
			return err
		}
		loc = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.committed(ctx, notify.EntityLocation, notify.ActionUpdated, int64(loc.ID))
	return loc, nil
}

func (s *Service) GetLocation(ctx context.Context, locID id.LocationID) (*models.Location, error) {
	loc, err := s.locations.FindByID(ctx, locID)
	if err != nil {
		return nil, notFound(err, "location", locID)
	}
	return loc, nil
}

func (s *Service) ListLocations(ctx context.Context, filter models.LocationFilter, page models.Page) (models.PageResult[models.Location], error) {
	page, err := page.Normalize(models.LocationSortFields)
	if err != nil {
		return models.PageResult[models.Location]{}, err
	}
	return s.locations.List(ctx, filter, page)
}
