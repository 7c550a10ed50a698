package service

import (
	"context"
	"fmt"

	"orgatlas/internal/registry/geo"
	"orgatlas/internal/registry/models"
	id "orgatlas/pkg/domain"
	dErrors "orgatlas/pkg/domain-errors"
)

// buildOrganization validates in and resolves its references into a view
// ready to persist. Checks run cheapest first: structure, then uniqueness,
// then the turnover floor, then the town distance rule. excludeID is the
// organization being updated, nil on create.
func (s *Service) buildOrganization(ctx context.Context, in models.OrganizationInput, excludeID *id.OrganizationID) (*models.OrganizationView, error) {
	if err := in.ValidateStructure(); err != nil {
		return nil, err
	}

	coords, err := s.resolveCoordinates(ctx, in.Coordinates)
	if err != nil {
		return nil, err
	}
	official, err := s.resolveAddress(ctx, in.OfficialAddress, "official address")
	if err != nil {
		return nil, err
	}
	postal, err := s.resolveAddress(ctx, in.PostalAddress, "postal address")
	if err != nil {
		return nil, err
	}

	if err := s.validateUniqueness(ctx, in.FullName, postal.ZipCode, in.Type, excludeID); err != nil {
		return nil, err
	}
	if err := validateTurnover(*in.AnnualTurnover, in.EmployeesCount); err != nil {
		return nil, err
	}
	if err := geo.Check(in.Type, official.Location, postal.Location); err != nil {
		return nil, err
	}

	return &models.OrganizationView{
		Organization: models.Organization{
			Name:              in.Name,
			FullName:          in.FullName,
			Type:              in.Type,
			CoordinatesID:     coords.ID,
			OfficialAddressID: official.ID,
			PostalAddressID:   postal.ID,
			AnnualTurnover:    *in.AnnualTurnover,
			EmployeesCount:    in.EmployeesCount,
			Rating:            in.Rating,
		},
		Coordinates:     *coords,
		OfficialAddress: *official,
		PostalAddress:   *postal,
	}, nil
}

// revalidateDependents re-checks the address-derived rules of every
// organization using one of addressIDs, after those addresses or their towns
// changed inside the current transaction.
func (s *Service) revalidateDependents(ctx context.Context, addressIDs ...id.AddressID) error {
	if len(addressIDs) == 0 {
		return nil
	}
	orgs, err := s.organizations.FindByAddresses(ctx, addressIDs...)
	if err != nil {
		return fmt.Errorf("find dependent organizations: %w", err)
	}
	for _, org := range orgs {
		official, err := s.loadAddressView(ctx, org.OfficialAddressID)
		if err != nil {
			return err
		}
		postal, err := s.loadAddressView(ctx, org.PostalAddressID)
		if err != nil {
			return err
		}
		if postal.ZipCode != nil {
			exists, err := s.organizations.ExistsByPostalZipCodeAndType(ctx, *postal.ZipCode, org.Type, &org.ID)
			if err != nil {
				return fmt.Errorf("check postal zip code: %w", err)
			}
			if exists {
				return dErrors.Newf(dErrors.CodeConflict,
					"organization %d would share postal zip code %s with another %s organization", org.ID, *postal.ZipCode, org.Type)
			}
		}
		if err := geo.Check(org.Type, official.Location, postal.Location); err != nil {
			return dErrors.Wrap(err, dErrors.CodeOf(err), fmt.Sprintf("organization %d: %s", org.ID, describe(err)))
		}
	}
	return nil
}

func (s *Service) validateUniqueness(ctx context.Context, fullName string, postalZip *string, orgType models.OrganizationType, excludeID *id.OrganizationID) error {
	exists, err := s.organizations.ExistsByFullName(ctx, fullName, excludeID)
	if err != nil {
		return fmt.Errorf("check full name: %w", err)
	}
	if exists {
		return dErrors.Newf(dErrors.CodeConflict, "organization with full name %q already exists", fullName)
	}

	if postalZip == nil {
		return nil
	}
	exists, err = s.organizations.ExistsByPostalZipCodeAndType(ctx, *postalZip, orgType, excludeID)
	if err != nil {
		return fmt.Errorf("check postal zip code: %w", err)
	}
	if exists {
		return dErrors.Newf(dErrors.CodeConflict,
			"organization of type %s already exists with postal zip code %s", orgType, *postalZip)
	}
	return nil
}

// validateTurnover enforces the subsistence floor when staff is known.
func validateTurnover(turnover float64, employees *int32) error {
	if employees == nil {
		return nil
	}
	if floor := models.MinAnnualTurnover(*employees); turnover < floor {
		return dErrors.Newf(dErrors.CodeUnprocessableEntity,
			"annual turnover %.2f is below the subsistence level %.2f for %d employees", turnover, floor, *employees)
	}
	return nil
}
