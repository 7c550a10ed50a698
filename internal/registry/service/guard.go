package service

import (
	"context"
	"fmt"

	"orgatlas/internal/notify"
	"orgatlas/internal/registry/models"
	id "orgatlas/pkg/domain"
	dErrors "orgatlas/pkg/domain-errors"
)

// Shared entities are never cascade-deleted. Each delete counts live
// references first and refuses while any remain.

// DeleteLocation removes a town no address points at.
func (s *Service) DeleteLocation(ctx context.Context, locID id.LocationID) (*models.Location, error) {
	var deleted *models.Location
	err := s.inTx(ctx, "delete_location", func(ctx context.Context) error {
		loc, err := s.locations.FindByID(ctx, locID)
		if err != nil {
			return notFound(err, "location", locID)
		}
		n, err := s.addresses.CountByLocation(ctx, locID)
		if err != nil {
			return fmt.Errorf("count addresses: %w", err)
		}
		if n > 0 {
			return dErrors.Newf(dErrors.CodeConflict,
				"location with id %s is used by %d address(es); clear the addresses first", locID, n)
		}
		if err := s.locations.Delete(ctx, locID); err != nil {
			return storeFailure("delete location", err)
		}
		deleted = loc
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.committed(ctx, notify.EntityLocation, notify.ActionDeleted, int64(locID))
	return deleted, nil
}

// DeleteCoordinates removes coordinates no organization points at.
func (s *Service) DeleteCoordinates(ctx context.Context, coordID id.CoordinatesID) (*models.Coordinates, error) {
	var deleted *models.Coordinates
	err := s.inTx(ctx, "delete_coordinates", func(ctx context.Context) error {
		c, err := s.coordinates.FindByID(ctx, coordID)
		if err != nil {
			return notFound(err, "coordinates", coordID)
		}
		n, err := s.organizations.CountByCoordinates(ctx, coordID)
		if err != nil {
			return fmt.Errorf("count organizations: %w", err)
		}
		if n > 0 {
			return dErrors.Newf(dErrors.CodeConflict,
				"coordinates with id %s are used by %d organization(s); clear the organizations first", coordID, n)
		}
		if err := s.coordinates.Delete(ctx, coordID); err != nil {
			return storeFailure("delete coordinates", err)
		}
		deleted = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.committed(ctx, notify.EntityCoordinates, notify.ActionDeleted, int64(coordID))
	return deleted, nil
}

// DeleteAddress removes an address in one of two modes. Force deletes it
// outright. Redirect first moves its town onto another address that has none.
// Either way no organization may still use the address.
func (s *Service) DeleteAddress(ctx context.Context, addrID id.AddressID, cmd models.DeleteAddressCommand) (*models.AddressView, error) {
	if err := validateDeleteAddress(addrID, cmd); err != nil {
		return nil, err
	}

	var deleted *models.AddressView
	err := s.inTx(ctx, "delete_address", func(ctx context.Context) error {
		addr, err := s.addresses.FindByID(ctx, addrID)
		if err != nil {
			return notFound(err, "address", addrID)
		}
		n, err := s.organizations.CountByAddress(ctx, addrID)
		if err != nil {
			return fmt.Errorf("count organizations: %w", err)
		}
		if n > 0 {
			return dErrors.Newf(dErrors.CodeConflict,
				"address with id %s is used by %d organization(s); clear the organizations first", addrID, n)
		}

		view, err := s.addressView(ctx, addr)
		if err != nil {
			return err
		}
		if !cmd.Force {
			if err := s.redirectLocation(ctx, addr, *cmd.RedirectTo); err != nil {
				return err
			}
		}
		if err := s.addresses.Delete(ctx, addrID); err != nil {
			return storeFailure("delete address", err)
		}
		deleted = view
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.committed(ctx, notify.EntityAddress, notify.ActionDeleted, int64(addrID))
	if !cmd.Force {
		s.committed(ctx, notify.EntityAddress, notify.ActionUpdated, int64(*cmd.RedirectTo))
	}
	return deleted, nil
}

func validateDeleteAddress(addrID id.AddressID, cmd models.DeleteAddressCommand) error {
	if cmd.Force && cmd.RedirectTo != nil {
		return dErrors.New(dErrors.CodeBadRequest, "cannot use both force and redirect_to")
	}
	if !cmd.Force && cmd.RedirectTo == nil {
		return dErrors.New(dErrors.CodeBadRequest, "either force=true or redirect_to must be provided")
	}
	if cmd.RedirectTo != nil && *cmd.RedirectTo == addrID {
		return dErrors.New(dErrors.CodeConflict, "cannot redirect to the address being deleted")
	}
	return nil
}

// redirectLocation moves the town of src onto the address targetID, which
// must exist and have no town of its own.
func (s *Service) redirectLocation(ctx context.Context, src *models.Address, targetID id.AddressID) error {
	target, err := s.addresses.FindByID(ctx, targetID)
	if err != nil {
		return notFound(err, "address", targetID)
	}
	if target.HasLocation() {
		return dErrors.Newf(dErrors.CodeConflict, "location for address with id %s is not empty", targetID)
	}
	target.LocationID = src.LocationID
	if err := s.addresses.Update(ctx, target); err != nil {
		return fmt.Errorf("update redirect target: %w", err)
	}
	return nil
}
