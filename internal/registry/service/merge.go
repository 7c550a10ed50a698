package service

import (
	"context"
	"math"

	"go.opentelemetry.io/otel/attribute"

	"orgatlas/internal/notify"
	"orgatlas/internal/registry/models"
	dErrors "orgatlas/pkg/domain-errors"
)

// MergeOrganizations creates a new organization from cmd.Organization,
// deriving unset numeric fields from the two sources. The sources are left
// untouched.
func (s *Service) MergeOrganizations(ctx context.Context, cmd models.MergeCommand) (*models.OrganizationView, error) {
	if cmd.FirstID == nil || cmd.SecondID == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "both organization ids must be provided")
	}
	if *cmd.FirstID == *cmd.SecondID {
		return nil, dErrors.New(dErrors.CodeBadRequest, "cannot merge an organization with itself")
	}
	if cmd.Organization == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "merged organization payload is required")
	}

	ctx, span := s.tracer.Start(ctx, "registry.merge")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("merge.first_id", int64(*cmd.FirstID)),
		attribute.Int64("merge.second_id", int64(*cmd.SecondID)),
	)

	var view *models.OrganizationView
	err := s.inTx(ctx, "merge_organizations", func(ctx context.Context) error {
		first, err := s.organizations.FindByID(ctx, *cmd.FirstID)
		if err != nil {
			return notFound(err, "organization", *cmd.FirstID)
		}
		second, err := s.organizations.FindByID(ctx, *cmd.SecondID)
		if err != nil {
			return notFound(err, "organization", *cmd.SecondID)
		}
		in, err := mergedInput(*cmd.Organization, first, second)
		if err != nil {
			return err
		}
		v, err := s.createOrganization(ctx, in)
		view = v
		return err
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.committed(ctx, notify.EntityOrganization, notify.ActionMerged, int64(view.ID))
	return view, nil
}

// mergedInput fills the numeric fields the caller left unset:
//   - turnover is the sum of both sources
//   - employees is the sum of both sources, left unset when the sum is zero
//     and rejected when it does not fit an int32
//   - rating is the mean of the ratings that are present, left unset when
//     neither source has one
func mergedInput(in models.OrganizationInput, first, second *models.Organization) (models.OrganizationInput, error) {
	if in.AnnualTurnover == nil {
		sum := first.AnnualTurnover + second.AnnualTurnover
		in.AnnualTurnover = &sum
	}
	if in.EmployeesCount == nil {
		var sum int64
		for _, n := range []*int32{first.EmployeesCount, second.EmployeesCount} {
			if n != nil {
				sum += int64(*n)
			}
		}
		if sum > math.MaxInt32 {
			return in, dErrors.Newf(dErrors.CodeUnprocessableEntity,
				"merged employees count %d exceeds %d", sum, math.MaxInt32)
		}
		if sum > 0 {
			employees := int32(sum)
			in.EmployeesCount = &employees
		}
	}
	if in.Rating == nil {
		var total float32
		var present int
		for _, r := range []*float32{first.Rating, second.Rating} {
			if r != nil {
				total += *r
				present++
			}
		}
		if present > 0 {
			mean := total / float32(present)
			in.Rating = &mean
		}
	}
	return in, nil
}
