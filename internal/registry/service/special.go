package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"orgatlas/internal/notify"
	"orgatlas/internal/registry/models"
	id "orgatlas/pkg/domain"
	dErrors "orgatlas/pkg/domain-errors"
	"orgatlas/pkg/platform/sentinel"
)

// OrganizationWithMaxOfficialAddress returns the organization whose official
// address has the highest identifier.
func (s *Service) OrganizationWithMaxOfficialAddress(ctx context.Context) (*models.OrganizationView, error) {
	org, err := s.organizations.FindWithMaxOfficialAddress(ctx)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "no organizations with official address found")
	}
	if err != nil {
		return nil, fmt.Errorf("find max official address: %w", err)
	}
	return s.organizationView(ctx, org)
}

// CountByFullName groups organizations by full name.
func (s *Service) CountByFullName(ctx context.Context) ([]models.FullNameCount, error) {
	counts, err := s.organizations.CountByFullName(ctx)
	if err != nil {
		return nil, fmt.Errorf("count by full name: %w", err)
	}
	if len(counts) == 0 {
		return nil, dErrors.New(dErrors.CodeNotFound, "no organizations found")
	}
	return counts, nil
}

// FindByFullNameContaining matches full names case-insensitively.
func (s *Service) FindByFullNameContaining(ctx context.Context, substr string) ([]models.OrganizationView, error) {
	if strings.TrimSpace(substr) == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "search substring cannot be empty")
	}
	orgs, err := s.organizations.FindByFullNameContaining(ctx, substr)
	if err != nil {
		return nil, fmt.Errorf("find by full name: %w", err)
	}
	return s.organizationViews(ctx, orgs)
}

// IncrementEmployees adds one employee. An unknown head count becomes 1.
// The turnover floor is re-checked against the new count.
func (s *Service) IncrementEmployees(ctx context.Context, orgID id.OrganizationID) (*models.OrganizationView, error) {
	var view *models.OrganizationView
	err := s.inTx(ctx, "increment_employees", func(ctx context.Context) error {
		org, err := s.organizations.FindByID(ctx, orgID)
		if err != nil {
			return notFound(err, "organization", orgID)
		}
		next := int32(1)
		if org.EmployeesCount != nil {
			next = *org.EmployeesCount + 1
		}
		if err := validateTurnover(org.AnnualTurnover, &next); err != nil {
			return err
		}
		org.EmployeesCount = &next
		if err := s.organizations.Update(ctx, org); err != nil {
			return storeFailure("update organization", err)
		}
		v, err := s.organizationView(ctx, org)
		view = v
		return err
	})
	if err != nil {
		return nil, err
	}
	s.committed(ctx, notify.EntityOrganization, notify.ActionUpdated, int64(orgID))
	return view, nil
}
