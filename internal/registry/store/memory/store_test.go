package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"orgatlas/internal/platform/metrics"
	"orgatlas/internal/registry/models"
	id "orgatlas/pkg/domain"
	dErrors "orgatlas/pkg/domain-errors"
	"orgatlas/pkg/platform/sentinel"
	"orgatlas/pkg/platform/tx"
)

type StoreSuite struct {
	suite.Suite
	ctx     context.Context
	db      *DB
	metrics *metrics.Metrics
	runner  *Runner

	locations     *LocationStore
	coordinates   *CoordinatesStore
	addresses     *AddressStore
	organizations *OrganizationStore
	history       *ImportHistoryStore
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.db = NewDB()
	s.metrics = metrics.NewWith(prometheus.NewRegistry())
	s.runner = NewRunner(s.db,
		WithMetrics(s.metrics),
		WithRetryPolicy(tx.RetryPolicy{MaxAttempts: 3, InitialDelay: time.Millisecond}),
	)
	s.locations = NewLocationStore(s.db)
	s.coordinates = NewCoordinatesStore(s.db)
	s.addresses = NewAddressStore(s.db)
	s.organizations = NewOrganizationStore(s.db)
	s.history = NewImportHistoryStore(s.db)
}

func ptr[T any](v T) *T { return &v }

func (s *StoreSuite) address(zip *string) *models.Address {
	a := &models.Address{ZipCode: zip}
	s.Require().NoError(s.addresses.Create(s.ctx, a))
	return a
}

func (s *StoreSuite) organization(fullName string, t models.OrganizationType, official, postal id.AddressID) *models.Organization {
	c := &models.Coordinates{X: 1, Y: 2}
	s.Require().NoError(s.coordinates.Create(s.ctx, c))
	o := &models.Organization{
		Name:              fullName,
		FullName:          fullName,
		Type:              t,
		CoordinatesID:     c.ID,
		OfficialAddressID: official,
		PostalAddressID:   postal,
		AnnualTurnover:    1_000_000,
		CreationDate:      time.Now().UTC(),
	}
	s.Require().NoError(s.organizations.Create(s.ctx, o))
	return o
}

func (s *StoreSuite) TestCreateAssignsSequentialIDs() {
	first := &models.Location{X: 1, Y: 2, Z: 3}
	second := &models.Location{X: 4, Y: 5, Z: 6}
	s.Require().NoError(s.locations.Create(s.ctx, first))
	s.Require().NoError(s.locations.Create(s.ctx, second))

	s.Equal(id.LocationID(1), first.ID)
	s.Equal(id.LocationID(2), second.ID)
}

func (s *StoreSuite) TestReturnedValuesAreCopies() {
	loc := &models.Location{Z: 1, Name: ptr("Riga")}
	s.Require().NoError(s.locations.Create(s.ctx, loc))
	*loc.Name = "changed"

	got, err := s.locations.FindByID(s.ctx, loc.ID)
	s.Require().NoError(err)
	s.Equal("Riga", *got.Name)

	*got.Name = "changed again"
	again, err := s.locations.FindByID(s.ctx, loc.ID)
	s.Require().NoError(err)
	s.Equal("Riga", *again.Name)
}

func (s *StoreSuite) TestDependencyLookups() {
	loc := &models.Location{Z: 1}
	s.Require().NoError(s.locations.Create(s.ctx, loc))
	placed := &models.Address{ZipCode: ptr("LV-1"), LocationID: &loc.ID}
	s.Require().NoError(s.addresses.Create(s.ctx, placed))
	loose := s.address(ptr("LV-2"))
	spare := s.address(nil)

	ids, err := s.addresses.ListIDsByLocation(s.ctx, loc.ID)
	s.Require().NoError(err)
	s.Equal([]id.AddressID{placed.ID}, ids)

	first := s.organization("First", models.TypePublic, placed.ID, loose.ID)
	second := s.organization("Second", models.TypeTrust, loose.ID, loose.ID)

	orgs, err := s.organizations.FindByAddresses(s.ctx, placed.ID)
	s.Require().NoError(err)
	s.Require().Len(orgs, 1)
	s.Equal(first.ID, orgs[0].ID)

	orgs, err = s.organizations.FindByAddresses(s.ctx, loose.ID, placed.ID)
	s.Require().NoError(err)
	s.Require().Len(orgs, 2)
	s.Equal(first.ID, orgs[0].ID)
	s.Equal(second.ID, orgs[1].ID)

	orgs, err = s.organizations.FindByAddresses(s.ctx, spare.ID)
	s.Require().NoError(err)
	s.Empty(orgs)
}

func (s *StoreSuite) TestMissingRowsReturnNotFound() {
	_, err := s.organizations.FindByID(s.ctx, 42)
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.ErrorIs(s.addresses.Delete(s.ctx, 42), sentinel.ErrNotFound)
	s.ErrorIs(s.coordinates.Update(s.ctx, &models.Coordinates{ID: 42}), sentinel.ErrNotFound)
	s.ErrorIs(s.history.Update(s.ctx, &models.ImportHistory{ID: 42}), sentinel.ErrNotFound)
}

func (s *StoreSuite) TestRunnerCommitsOnSuccess() {
	err := s.runner.WithTx(s.ctx, func(ctx context.Context) error {
		loc := &models.Location{Z: 1}
		if err := s.locations.Create(ctx, loc); err != nil {
			return err
		}
		return s.addresses.Create(ctx, &models.Address{LocationID: &loc.ID})
	})
	s.Require().NoError(err)

	n, err := s.addresses.CountByLocation(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal(1, n)
	s.Equal(1.0, promtest.ToFloat64(s.metrics.TxAttempts.WithLabelValues(backendName)))
}

func (s *StoreSuite) TestRunnerRollsBackOnError() {
	boom := dErrors.New(dErrors.CodeConflict, "boom")
	err := s.runner.WithTx(s.ctx, func(ctx context.Context) error {
		s.Require().NoError(s.locations.Create(ctx, &models.Location{Z: 1}))
		_, err := s.locations.FindByID(ctx, 1)
		s.Require().NoError(err, "writes are visible inside the transaction")
		return boom
	})
	s.ErrorIs(err, boom)
	s.Zero(promtest.ToFloat64(s.metrics.TxExhausted.WithLabelValues(backendName)))

	_, err = s.locations.FindByID(s.ctx, 1)
	s.ErrorIs(err, sentinel.ErrNotFound)

	// The id sequence rolls back with the data.
	loc := &models.Location{Z: 1}
	s.Require().NoError(s.locations.Create(s.ctx, loc))
	s.Equal(id.LocationID(1), loc.ID)
}

func (s *StoreSuite) TestRunnerRetriesTransientErrors() {
	calls := 0
	err := s.runner.WithTx(s.ctx, func(ctx context.Context) error {
		calls++
		if calls < 2 {
			return sentinel.ErrUnavailable
		}
		return s.locations.Create(ctx, &models.Location{Z: 1})
	})
	s.Require().NoError(err)
	s.Equal(2, calls)
	s.Equal(1.0, promtest.ToFloat64(s.metrics.TxRetries.WithLabelValues(backendName)))
}

func (s *StoreSuite) TestRunnerReportsExhaustion() {
	err := s.runner.WithTx(s.ctx, func(context.Context) error {
		return sentinel.ErrUnavailable
	})
	s.ErrorIs(err, tx.ErrRetriesExhausted)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	s.Equal(3.0, promtest.ToFloat64(s.metrics.TxAttempts.WithLabelValues(backendName)))
	s.Equal(1.0, promtest.ToFloat64(s.metrics.TxExhausted.WithLabelValues(backendName)))
}

func (s *StoreSuite) TestNestedTransactionsJoin() {
	err := s.runner.WithTx(s.ctx, func(ctx context.Context) error {
		s.Require().NoError(s.locations.Create(ctx, &models.Location{Z: 1}))
		return s.runner.WithTx(ctx, func(ctx context.Context) error {
			_, err := s.locations.FindByID(ctx, 1)
			return err
		})
	})
	s.NoError(err)
}

func (s *StoreSuite) TestTransactionsAreSerialized() {
	counter := &models.Coordinates{X: 0}
	s.Require().NoError(s.coordinates.Create(s.ctx, counter))

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.runner.WithTx(s.ctx, func(ctx context.Context) error {
				c, err := s.coordinates.FindByID(ctx, counter.ID)
				if err != nil {
					return err
				}
				c.X++
				return s.coordinates.Update(ctx, c)
			})
			s.NoError(err)
		}()
	}
	wg.Wait()

	got, err := s.coordinates.FindByID(s.ctx, counter.ID)
	s.Require().NoError(err)
	s.Equal(int64(20), got.X)
}

func (s *StoreSuite) TestListSortsFiltersAndPages() {
	for _, name := range []string{"Oslo", "osaka", "Bergen", "Ostrava"} {
		s.Require().NoError(s.locations.Create(s.ctx, &models.Location{Z: 1, Name: ptr(name)}))
	}

	page, err := models.Page{Size: 2, SortBy: "name", Direction: models.SortDesc}.Normalize(models.LocationSortFields)
	s.Require().NoError(err)
	res, err := s.locations.List(s.ctx, models.LocationFilter{NameContains: ptr("OS")}, page)
	s.Require().NoError(err)

	s.Equal(3, res.Total)
	s.Require().Len(res.Items, 2)
	s.Equal("osaka", *res.Items[0].Name)
	s.Equal("Ostrava", *res.Items[1].Name)

	page.Page = 5
	res, err = s.locations.List(s.ctx, models.LocationFilter{}, page)
	s.Require().NoError(err)
	s.Equal(4, res.Total)
	s.Empty(res.Items)
}

func (s *StoreSuite) TestNilValuesSortFirst() {
	withZip := s.address(ptr("1000"))
	without := s.address(nil)

	page, err := models.Page{SortBy: "zip_code"}.Normalize(models.AddressSortFields)
	s.Require().NoError(err)
	res, err := s.addresses.List(s.ctx, models.AddressFilter{}, page)
	s.Require().NoError(err)

	s.Require().Len(res.Items, 2)
	s.Equal(without.ID, res.Items[0].ID)
	s.Equal(withZip.ID, res.Items[1].ID)
}

func (s *StoreSuite) TestListWithoutLocation() {
	loc := &models.Location{Z: 1}
	s.Require().NoError(s.locations.Create(s.ctx, loc))
	s.Require().NoError(s.addresses.Create(s.ctx, &models.Address{LocationID: &loc.ID}))
	bare := s.address(ptr("2000"))

	page, err := models.Page{}.Normalize(models.AddressSortFields)
	s.Require().NoError(err)
	res, err := s.addresses.ListWithoutLocation(s.ctx, page)
	s.Require().NoError(err)

	s.Require().Len(res.Items, 1)
	s.Equal(bare.ID, res.Items[0].ID)
}

func (s *StoreSuite) TestExistsByPostalZipCodeAndType() {
	zipped := s.address(ptr("LV-1010"))
	other := s.address(ptr("LV-2020"))
	org := s.organization("Acme", models.TypeCommercial, other.ID, zipped.ID)

	exists, err := s.organizations.ExistsByPostalZipCodeAndType(s.ctx, "LV-1010", models.TypeCommercial, nil)
	s.Require().NoError(err)
	s.True(exists)

	exists, err = s.organizations.ExistsByPostalZipCodeAndType(s.ctx, "LV-1010", models.TypeTrust, nil)
	s.Require().NoError(err)
	s.False(exists, "type is part of the key")

	exists, err = s.organizations.ExistsByPostalZipCodeAndType(s.ctx, "LV-2020", models.TypeCommercial, nil)
	s.Require().NoError(err)
	s.False(exists, "official zip code does not count")

	exists, err = s.organizations.ExistsByPostalZipCodeAndType(s.ctx, "LV-1010", models.TypeCommercial, &org.ID)
	s.Require().NoError(err)
	s.False(exists, "excluded organization is skipped")
}

func (s *StoreSuite) TestExistsByFullNameHonorsExclusion() {
	a := s.address(nil)
	org := s.organization("Acme Ltd", models.TypePublic, a.ID, a.ID)

	exists, err := s.organizations.ExistsByFullName(s.ctx, "Acme Ltd", nil)
	s.Require().NoError(err)
	s.True(exists)

	exists, err = s.organizations.ExistsByFullName(s.ctx, "Acme Ltd", &org.ID)
	s.Require().NoError(err)
	s.False(exists)
}

func (s *StoreSuite) TestCountByAddressCountsOrganizationsOnce() {
	shared := s.address(nil)
	other := s.address(nil)
	s.organization("A", models.TypePublic, shared.ID, shared.ID)
	s.organization("B", models.TypePublic, other.ID, shared.ID)

	n, err := s.organizations.CountByAddress(s.ctx, shared.ID)
	s.Require().NoError(err)
	s.Equal(2, n)

	n, err = s.organizations.CountByAddress(s.ctx, other.ID)
	s.Require().NoError(err)
	s.Equal(1, n)
}

func (s *StoreSuite) TestReportQueries() {
	_, err := s.organizations.FindWithMaxOfficialAddress(s.ctx)
	s.ErrorIs(err, sentinel.ErrNotFound)

	low := s.address(nil)
	high := s.address(nil)
	s.organization("Beta Group", models.TypePublic, low.ID, low.ID)
	winner := s.organization("Alpha Group", models.TypePublic, high.ID, low.ID)
	s.organization("Alpha Group", models.TypeTrust, high.ID, high.ID)

	top, err := s.organizations.FindWithMaxOfficialAddress(s.ctx)
	s.Require().NoError(err)
	s.Equal(winner.ID, top.ID)

	counts, err := s.organizations.CountByFullName(s.ctx)
	s.Require().NoError(err)
	s.Equal([]models.FullNameCount{
		{FullName: "Alpha Group", Count: 2},
		{FullName: "Beta Group", Count: 1},
	}, counts)

	found, err := s.organizations.FindByFullNameContaining(s.ctx, "ALPHA")
	s.Require().NoError(err)
	s.Len(found, 2)

	none, err := s.organizations.FindByFullNameContaining(s.ctx, "gamma")
	s.Require().NoError(err)
	s.NotNil(none)
	s.Empty(none)
}

func (s *StoreSuite) TestHistoryCreateThenUpdate() {
	h := &models.ImportHistory{CreationDate: time.Now().UTC(), Status: models.ImportError, Message: "import in progress"}
	s.Require().NoError(s.history.Create(s.ctx, h))

	h.Status = models.ImportSuccess
	h.Counter = 3
	h.Message = ""
	s.Require().NoError(s.history.Update(s.ctx, h))

	page, err := models.Page{}.Normalize(models.ImportHistorySortFields)
	s.Require().NoError(err)
	res, err := s.history.List(s.ctx, page)
	s.Require().NoError(err)
	s.Require().Len(res.Items, 1)
	s.Equal(models.ImportSuccess, res.Items[0].Status)
	s.Equal(3, res.Items[0].Counter)
}

func (s *StoreSuite) TestAutocommitErrorLeavesStateUntouched() {
	err := s.db.write(s.ctx, func(st *state) error {
		st.nextLocation = 99
		return errors.New("fail")
	})
	s.Error(err)

	loc := &models.Location{Z: 1}
	s.Require().NoError(s.locations.Create(s.ctx, loc))
	s.Equal(id.LocationID(1), loc.ID)
}
