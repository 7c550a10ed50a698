package service

import (
	"context"
	"fmt"

	"orgatlas/internal/notify"
	"orgatlas/internal/registry/models"
	id "orgatlas/pkg/domain"
)

// CreateAddress creates an address, resolving its optional town.
func (s *Service) CreateAddress(ctx context.Context, in models.AddressInput) (*models.AddressView, error) {
	var view *models.AddressView
	err := s.inTx(ctx, "create_address", func(ctx context.Context) error {
		v, err := s.createAddress(ctx, in)
		view = v
		return err
	})
	if err != nil {
		return nil, err
	}
	s.committed(ctx, notify.EntityAddress, notify.ActionCreated, int64(view.ID))
	return view, nil
}

// UpdateAddress overwrites the zip code and town. An absent town reference
// clears the town.
func (s *Service) UpdateAddress(ctx context.Context, addrID id.AddressID, in models.AddressInput) (*models.AddressView, error) {
	var view *models.AddressView
	err := s.inTx(ctx, "update_address", func(ctx context.Context) error {
		addr, err := s.addresses.FindByID(ctx, addrID)
		if err != nil {
			return notFound(err, "address", addrID)
		}
		loc, err := s.resolveLocation(ctx, in.Location)
		if err != nil {
			return err
		}
		addr.ZipCode = in.ZipCode
		addr.LocationID = nil
		if loc != nil {
			addr.LocationID = &loc.ID
		}
		if err := s.addresses.Update(ctx, addr); err != nil {
			return fmt.Errorf("update address: %w", err)
		}
		if err := s.revalidateDependents(ctx, addr.ID); err != nil {
			return err
		}
		view = &models.AddressView{ID: addr.ID, ZipCode: addr.ZipCode, Location: loc}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.committed(ctx, notify.EntityAddress, notify.ActionUpdated, int64(view.ID))
	return view, nil
}

func (s *Service) GetAddress(ctx context.Context, addrID id.AddressID) (*models.AddressView, error) {
	addr, err := s.addresses.FindByID(ctx, addrID)
	if err != nil {
		return nil, notFound(err, "address", addrID)
	}
	return s.addressView(ctx, addr)
}

func (s *Service) ListAddresses(ctx context.Context, filter models.AddressFilter, page models.Page) (models.PageResult[models.AddressView], error) {
	page, err := page.Normalize(models.AddressSortFields)
	if err != nil {
		return models.PageResult[models.AddressView]{}, err
	}
	res, err := s.addresses.List(ctx, filter, page)
	if err != nil {
		return models.PageResult[models.AddressView]{}, err
	}
	return s.addressViews(ctx, res)
}

// ListAddressesWithoutLocation lists the addresses that can receive a town
// through a redirect delete.
func (s *Service) ListAddressesWithoutLocation(ctx context.Context, page models.Page) (models.PageResult[models.AddressView], error) {
	page, err := page.Normalize(models.AddressSortFields)
	if err != nil {
		return models.PageResult[models.AddressView]{}, err
	}
	res, err := s.addresses.ListWithoutLocation(ctx, page)
	if err != nil {
		return models.PageResult[models.AddressView]{}, err
	}
	return s.addressViews(ctx, res)
}

func (s *Service) addressViews(ctx context.Context, res models.PageResult[models.Address]) (models.PageResult[models.AddressView], error) {
	out := models.PageResult[models.AddressView]{
		Items: make([]models.AddressView, 0, len(res.Items)),
		Total: res.Total,
		Page:  res.Page,
		Size:  res.Size,
	}
	for i := range res.Items {
		view, err := s.addressView(ctx, &res.Items[i])
		if err != nil {
			return models.PageResult[models.AddressView]{}, err
		}
		out.Items = append(out.Items, *view)
	}
	return out, nil
}
