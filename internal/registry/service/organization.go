package service

import (
	"context"

	"orgatlas/internal/notify"
	"orgatlas/internal/registry/models"
	id "orgatlas/pkg/domain"
)

// CreateOrganization resolves nested references, validates and persists a new
// organization in one transaction.
func (s *Service) CreateOrganization(ctx context.Context, in models.OrganizationInput) (*models.OrganizationView, error) {
	var view *models.OrganizationView
	err := s.inTx(ctx, "create_organization", func(ctx context.Context) error {
		v, err := s.createOrganization(ctx, in)
		view = v
		return err
	})
	if err != nil {
		return nil, err
	}
	s.committed(ctx, notify.EntityOrganization, notify.ActionCreated, int64(view.ID))
	return view, nil
}

// createOrganization must run inside a transaction.
func (s *Service) createOrganization(ctx context.Context, in models.OrganizationInput) (*models.OrganizationView, error) {
	view, err := s.buildOrganization(ctx, in, nil)
	if err != nil {
		return nil, err
	}
	view.CreationDate = now(ctx)
	if err := s.organizations.Create(ctx, &view.Organization); err != nil {
		return nil, storeFailure("create organization", err)
	}
	return view, nil
}

// UpdateOrganization overwrites every field of an existing organization.
// Identity and creation date are kept.
func (s *Service) UpdateOrganization(ctx context.Context, orgID id.OrganizationID, in models.OrganizationInput) (*models.OrganizationView, error) {
	var view *models.OrganizationView
	err := s.inTx(ctx, "update_organization", func(ctx context.Context) error {
		existing, err := s.organizations.FindByID(ctx, orgID)
		if err != nil {
			return notFound(err, "organization", orgID)
		}
		v, err := s.buildOrganization(ctx, in, &orgID)
		if err != nil {
			return err
		}
		v.ID = existing.ID
		v.CreationDate = existing.CreationDate
		if err := s.organizations.Update(ctx, &v.Organization); err != nil {
			return storeFailure("update organization", err)
		}
		view = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.committed(ctx, notify.EntityOrganization, notify.ActionUpdated, int64(orgID))
	return view, nil
}

// DeleteOrganization removes the organization only. Its coordinates and
// addresses stay for explicit, guarded deletion.
func (s *Service) DeleteOrganization(ctx context.Context, orgID id.OrganizationID) (*models.OrganizationView, error) {
	var view *models.OrganizationView
	err := s.inTx(ctx, "delete_organization", func(ctx context.Context) error {
		org, err := s.organizations.FindByID(ctx, orgID)
		if err != nil {
			return notFound(err, "organization", orgID)
		}
		v, err := s.organizationView(ctx, org)
		if err != nil {
			return err
		}
		if err := s.organizations.Delete(ctx, orgID); err != nil {
			return storeFailure("delete organization", err)
		}
		view = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.committed(ctx, notify.EntityOrganization, notify.ActionDeleted, int64(orgID))
	return view, nil
}

func (s *Service) GetOrganization(ctx context.Context, orgID id.OrganizationID) (*models.OrganizationView, error) {
	org, err := s.organizations.FindByID(ctx, orgID)
	if err != nil {
		return nil, notFound(err, "organization", orgID)
	}
	return s.organizationView(ctx, org)
}

func (s *Service) ListOrganizations(ctx context.Context, filter models.OrganizationFilter, page models.Page) (models.PageResult[models.OrganizationView], error) {
	page, err := page.Normalize(models.OrganizationSortFields)
	if err != nil {
		return models.PageResult[models.OrganizationView]{}, err
	}
	res, err := s.organizations.List(ctx, filter, page)
	if err != nil {
		return models.PageResult[models.OrganizationView]{}, err
	}
	views, err := s.organizationViews(ctx, res.Items)
	if err != nil {
		return models.PageResult[models.OrganizationView]{}, err
	}
	return models.PageResult[models.OrganizationView]{Items: views, Total: res.Total, Page: res.Page, Size: res.Size}, nil
}

// organizationView resolves coordinates and both addresses of org.
func (s *Service) organizationView(ctx context.Context, org *models.Organization) (*models.OrganizationView, error) {
	coords, err := s.coordinates.FindByID(ctx, org.CoordinatesID)
	if err != nil {
		return nil, notFound(err, "coordinates", org.CoordinatesID)
	}
	official, err := s.loadAddressView(ctx, org.OfficialAddressID)
	if err != nil {
		return nil, err
	}
	postal, err := s.loadAddressView(ctx, org.PostalAddressID)
	if err != nil {
		return nil, err
	}
	return &models.OrganizationView{
		Organization:    *org,
		Coordinates:     *coords,
		OfficialAddress: *official,
		PostalAddress:   *postal,
	}, nil
}

func (s *Service) organizationViews(ctx context.Context, orgs []models.Organization) ([]models.OrganizationView, error) {
	views := make([]models.OrganizationView, 0, len(orgs))
	for i := range orgs {
		v, err := s.organizationView(ctx, &orgs[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *v)
	}
	return views, nil
}

func (s *Service) loadAddressView(ctx context.Context, addrID id.AddressID) (*models.AddressView, error) {
	addr, err := s.addresses.FindByID(ctx, addrID)
	if err != nil {
		return nil, notFound(err, "address", addrID)
	}
	return s.addressView(ctx, addr)
}
