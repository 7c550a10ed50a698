package service

import (
	"context"

	"orgatlas/internal/notify"
	"orgatlas/internal/registry/models"
	id "orgatlas/pkg/domain"
)

// Stores return sentinel.ErrNotFound for missing rows. Create assigns the
// identifier on the passed entity. Every method joins the transaction carried
// by ctx, if any.

type LocationStore interface {
	Create(ctx context.Context, loc *models.Location) error
	FindByID(ctx context.Context, id id.LocationID) (*models.Location, error)
	Update(ctx context.Context, loc *models.Location) error
	Delete(ctx context.Context, id id.LocationID) error
	List(ctx context.Context, filter models.LocationFilter, page models.Page) (models.PageResult[models.Location], error)
}

type CoordinatesStore interface {
	Create(ctx context.Context, c *models.Coordinates) error
	FindByID(ctx context.Context, id id.CoordinatesID) (*models.Coordinates, error)
	Update(ctx context.Context, c *models.Coordinates) error
	Delete(ctx context.Context, id id.CoordinatesID) error
	List(ctx context.Context, page models.Page) (models.PageResult[models.Coordinates], error)
}

type AddressStore interface {
	Create(ctx context.Context, a *models.Address) error
	FindByID(ctx context.Context, id id.AddressID) (*models.Address, error)
	Update(ctx context.Context, a *models.Address) error
	Delete(ctx context.Context, id id.AddressID) error
	List(ctx context.Context, filter models.AddressFilter, page models.Page) (models.PageResult[models.Address], error)
	ListWithoutLocation(ctx context.Context, page models.Page) (models.PageResult[models.Address], error)
	CountByLocation(ctx context.Context, locationID id.LocationID) (int, error)
	ListIDsByLocation(ctx context.Context, locationID id.LocationID) ([]id.AddressID, error)
}

// OrganizationStore carries the union of the query surfaces the registry
// needs: CRUD, uniqueness probes, reference counts and report queries.
type OrganizationStore interface {
	Create(ctx context.Context, org *models.Organization) error
	FindByID(ctx context.Context, id id.OrganizationID) (*models.Organization, error)
	Update(ctx context.Context, org *models.Organization) error
	Delete(ctx context.Context, id id.OrganizationID) error
	List(ctx context.Context, filter models.OrganizationFilter, page models.Page) (models.PageResult[models.Organization], error)

	// ExistsByFullName and ExistsByPostalZipCodeAndType skip excludeID when
	// it is non-nil.
	ExistsByFullName(ctx context.Context, fullName string, excludeID *id.OrganizationID) (bool, error)
	ExistsByPostalZipCodeAndType(ctx context.Context, zipCode string, orgType models.OrganizationType, excludeID *id.OrganizationID) (bool, error)

	CountByCoordinates(ctx context.Context, coordinatesID id.CoordinatesID) (int, error)
	// CountByAddress counts organizations using the address as official or postal.
	CountByAddress(ctx context.Context, addressID id.AddressID) (int, error)
	// FindByAddresses lists organizations using any of addressIDs, ordered by id.
	FindByAddresses(ctx context.Context, addressIDs ...id.AddressID) ([]models.Organization, error)

	FindWithMaxOfficialAddress(ctx context.Context) (*models.Organization, error)
	CountByFullName(ctx context.Context) ([]models.FullNameCount, error)
	FindByFullNameContaining(ctx context.Context, substr string) ([]models.Organization, error)
}

type ImportHistoryStore interface {
	Create(ctx context.Context, h *models.ImportHistory) error
	Update(ctx context.Context, h *models.ImportHistory) error
	List(ctx context.Context, page models.Page) (models.PageResult[models.ImportHistory], error)
}

// TxRunner runs fn as one atomic unit. Implementations retry transient
// contention and roll back on every error.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Notifier receives committed changes. It must not block.
type Notifier interface {
	Notify(ctx context.Context, msg notify.Message)
}

// Stores groups the persistence ports.
type Stores struct {
	Locations     LocationStore
	Coordinates   CoordinatesStore
	Addresses     AddressStore
	Organizations OrganizationStore
	History       ImportHistoryStore
}
