//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	pgplatform "orgatlas/internal/platform/postgres"
	platformmetrics "orgatlas/internal/platform/metrics"
	"orgatlas/internal/registry/models"
	"orgatlas/internal/registry/service"
	"orgatlas/internal/registry/store/postgres"
	id "orgatlas/pkg/domain"
	dErrors "orgatlas/pkg/domain-errors"
	"orgatlas/pkg/platform/sentinel"
	"orgatlas/pkg/platform/tx"
	"orgatlas/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	ctx     context.Context
	pg      *containers.PostgresContainer
	service *service.Service

	locations     *postgres.LocationStore
	addresses     *postgres.AddressStore
	organizations *postgres.OrganizationStore
	history       *postgres.ImportHistoryStore
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.pg = containers.NewPostgresContainer(s.T())
	s.Require().NoError(postgres.Migrate(s.ctx, s.pg.DB))
	s.Require().NoError(postgres.Migrate(s.ctx, s.pg.DB), "migration is idempotent")

	s.locations = postgres.NewLocationStore(s.pg.DB)
	s.addresses = postgres.NewAddressStore(s.pg.DB)
	s.organizations = postgres.NewOrganizationStore(s.pg.DB)
	s.history = postgres.NewImportHistoryStore(s.pg.DB)

	runner := pgplatform.NewRunner(s.pg.DB,
		pgplatform.WithRetryPolicy(tx.RetryPolicy{MaxAttempts: 10, InitialDelay: 5 * time.Millisecond}),
		pgplatform.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		pgplatform.WithMetrics(platformmetrics.NewWith(prometheus.NewRegistry())),
	)
	svc, err := service.New(service.Stores{
		Locations:     s.locations,
		Coordinates:   postgres.NewCoordinatesStore(s.pg.DB),
		Addresses:     s.addresses,
		Organizations: s.organizations,
		History:       s.history,
	}, runner, service.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	s.Require().NoError(err)
	s.service = svc
}

func (s *PostgresStoreSuite) SetupTest() {
	_, err := s.pg.DB.ExecContext(s.ctx,
		`TRUNCATE organizations, addresses, locations, coordinates, import_history RESTART IDENTITY CASCADE`)
	s.Require().NoError(err)
}

func ptr[T any](v T) *T { return &v }

func orgInput(fullName, postalZip string, t models.OrganizationType) models.OrganizationInput {
	town := models.Inline[id.LocationID](models.LocationInput{X: 56.95, Y: 24.1, Z: ptr(float32(1)), Name: ptr("Riga")})
	return models.OrganizationInput{
		Name:            fullName,
		FullName:        fullName,
		Type:            t,
		Coordinates:     models.Inline[id.CoordinatesID](models.CoordinatesInput{X: 3, Y: 4.5}),
		OfficialAddress: models.Inline[id.AddressID](models.AddressInput{ZipCode: ptr("OFF-" + fullName), Location: town}),
		PostalAddress:   models.Inline[id.AddressID](models.AddressInput{ZipCode: ptr(postalZip), Location: town}),
		AnnualTurnover:  ptr(5_000_000.0),
		EmployeesCount:  ptr(int32(7)),
		Rating:          ptr(float32(4.5)),
	}
}

func (s *PostgresStoreSuite) TestOrganizationRoundTrip() {
	created, err := s.service.CreateOrganization(s.ctx, orgInput("Round Trip", "LV-1", models.TypePublic))
	s.Require().NoError(err)

	got, err := s.service.GetOrganization(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(created.FullName, got.FullName)
	s.Equal(int32(7), *got.EmployeesCount)
	s.Equal(float32(4.5), *got.Rating)
	s.True(created.CreationDate.Equal(got.CreationDate))
	s.Require().NotNil(got.PostalAddress.Location)
	s.Equal("Riga", *got.PostalAddress.Location.Name)
}

func (s *PostgresStoreSuite) TestMissingRowsAreNotFound() {
	_, err := s.organizations.FindByID(s.ctx, 404)
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.ErrorIs(s.addresses.Delete(s.ctx, 404), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestForeignKeyViolationIsConflict() {
	loc := &models.Location{Z: 1}
	s.Require().NoError(s.locations.Create(s.ctx, loc))
	s.Require().NoError(s.addresses.Create(s.ctx, &models.Address{LocationID: &loc.ID}))

	err := s.locations.Delete(s.ctx, loc.ID)
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestListFiltersSortsAndPages() {
	for _, zip := range []string{"A-100", "a-200", "B-300", "a_%"} {
		s.Require().NoError(s.addresses.Create(s.ctx, &models.Address{ZipCode: ptr(zip)}))
	}
	s.Require().NoError(s.addresses.Create(s.ctx, &models.Address{}))

	page, err := models.Page{Size: 2, SortBy: "zip_code", Direction: models.SortDesc}.Normalize(models.AddressSortFields)
	s.Require().NoError(err)
	res, err := s.addresses.List(s.ctx, models.AddressFilter{ZipCodeContains: ptr("a-")}, page)
	s.Require().NoError(err)
	s.Equal(2, res.Total)
	s.Require().Len(res.Items, 2)
	s.Equal("a-200", *res.Items[0].ZipCode)

	res, err = s.addresses.List(s.ctx, models.AddressFilter{ZipCodeContains: ptr("_%")}, page)
	s.Require().NoError(err)
	s.Equal(1, res.Total, "LIKE wildcards are matched literally")

	res, err = s.addresses.ListWithoutLocation(s.ctx, page)
	s.Require().NoError(err)
	s.Equal(5, res.Total)
}

func (s *PostgresStoreSuite) TestReportQueries() {
	_, err := s.organizations.FindWithMaxOfficialAddress(s.ctx)
	s.ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.service.CreateOrganization(s.ctx, orgInput("Alpha Corp", "Z-1", models.TypeCommercial))
	s.Require().NoError(err)
	last, err := s.service.CreateOrganization(s.ctx, orgInput("Beta Corp", "Z-2", models.TypeCommercial))
	s.Require().NoError(err)

	top, err := s.organizations.FindWithMaxOfficialAddress(s.ctx)
	s.Require().NoError(err)
	s.Equal(last.ID, top.ID)

	counts, err := s.organizations.CountByFullName(s.ctx)
	s.Require().NoError(err)
	s.Equal([]models.FullNameCount{{FullName: "Alpha Corp", Count: 1}, {FullName: "Beta Corp", Count: 1}}, counts)

	found, err := s.organizations.FindByFullNameContaining(s.ctx, "ALPHA")
	s.Require().NoError(err)
	s.Len(found, 1)

	n, err := s.organizations.CountByAddress(s.ctx, last.PostalAddress.ID)
	s.Require().NoError(err)
	s.Equal(1, n)
}

func (s *PostgresStoreSuite) TestDependencyLookups() {
	first, err := s.service.CreateOrganization(s.ctx, orgInput("Gamma Trust", "T-1", models.TypeTrust))
	s.Require().NoError(err)
	second, err := s.service.CreateOrganization(s.ctx, orgInput("Delta Trust", "T-2", models.TypeTrust))
	s.Require().NoError(err)

	ids, err := s.addresses.ListIDsByLocation(s.ctx, first.PostalAddress.Location.ID)
	s.Require().NoError(err)
	s.Equal([]id.AddressID{first.PostalAddress.ID}, ids)

	orgs, err := s.organizations.FindByAddresses(s.ctx, second.OfficialAddress.ID, first.PostalAddress.ID)
	s.Require().NoError(err)
	s.Require().Len(orgs, 2)
	s.Equal(first.ID, orgs[0].ID)
	s.Equal(second.ID, orgs[1].ID)

	townRef := models.ByID[id.LocationID, models.LocationInput](second.PostalAddress.Location.ID)
	_, err = s.service.UpdateAddress(s.ctx, second.PostalAddress.ID, models.AddressInput{ZipCode: ptr("T-1"), Location: townRef})
	s.True(dErrors.HasCode(err, dErrors.CodeConflict), "error: %v", err)

	got, err := s.service.GetAddress(s.ctx, second.PostalAddress.ID)
	s.Require().NoError(err)
	s.Equal("T-2", *got.ZipCode)
}

func (s *PostgresStoreSuite) TestConcurrentCreatesWithSameZipAndType() {
	const racers = 4
	var wg sync.WaitGroup
	errs := make([]error, racers)
	for i := range racers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			in := orgInput(fmt.Sprintf("Racer %d", i), "RACE-1", models.TypeCommercial)
			_, errs[i] = s.service.CreateOrganization(s.ctx, in)
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		conflict := dErrors.HasCode(err, dErrors.CodeConflict)
		s.True(conflict || dErrors.HasCode(err, dErrors.CodeInternal), "unexpected error: %v", err)
	}
	s.Equal(1, succeeded)

	exists, err := s.organizations.ExistsByPostalZipCodeAndType(s.ctx, "RACE-1", models.TypeCommercial, nil)
	s.Require().NoError(err)
	s.True(exists)
}

func (s *PostgresStoreSuite) TestImportRollbackKeepsHistory() {
	_, err := s.service.Import(s.ctx, []models.OrganizationInput{
		orgInput("Imported", "IMP-1", models.TypePublic),
		orgInput("Imported", "IMP-2", models.TypePublic),
	})
	s.Require().Error(err)

	res, err := s.organizations.List(s.ctx, models.OrganizationFilter{}, models.Page{Size: 10, SortBy: "id", Direction: models.SortAsc})
	s.Require().NoError(err)
	s.Zero(res.Total)

	history, err := s.service.ListImportHistory(s.ctx, models.Page{})
	s.Require().NoError(err)
	s.Require().Len(history.Items, 1)
	s.Equal(models.ImportError, history.Items[0].Status)
	s.Equal(1, history.Items[0].Counter)
}
