// Package handler exposes the registry over HTTP with chi.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"orgatlas/internal/registry/models"
	id "orgatlas/pkg/domain"
	dErrors "orgatlas/pkg/domain-errors"
	"orgatlas/pkg/platform/httputil"
	"orgatlas/pkg/requestcontext"
)

// Service is the registry surface the handlers call.
type Service interface {
	CreateLocation(ctx context.Context, in models.LocationInput) (*models.Location, error)
	UpdateLocation(ctx context.Context, locID id.LocationID, in models.LocationInput) (*models.Location, error)
	GetLocation(ctx context.Context, locID id.LocationID) (*models.Location, error)
	DeleteLocation(ctx context.Context, locID id.LocationID) (*models.Location, error)
	ListLocations(ctx context.Context, filter models.LocationFilter, page models.Page) (models.PageResult[models.Location], error)

	CreateCoordinates(ctx context.Context, in models.CoordinatesInput) (*models.Coordinates, error)
	UpdateCoordinates(ctx context.Context, coordID id.CoordinatesID, in models.CoordinatesInput) (*models.Coordinates, error)
	GetCoordinates(ctx context.Context, coordID id.CoordinatesID) (*models.Coordinates, error)
	DeleteCoordinates(ctx context.Context, coordID id.CoordinatesID) (*models.Coordinates, error)
	ListCoordinates(ctx context.Context, page models.Page) (models.PageResult[models.Coordinates], error)

	CreateAddress(ctx context.Context, in models.AddressInput) (*models.AddressView, error)
	UpdateAddress(ctx context.Context, addrID id.AddressID, in models.AddressInput) (*models.AddressView, error)
	GetAddress(ctx context.Context, addrID id.AddressID) (*models.AddressView, error)
	DeleteAddress(ctx context.Context, addrID id.AddressID, cmd models.DeleteAddressCommand) (*models.AddressView, error)
	ListAddresses(ctx context.Context, filter models.AddressFilter, page models.Page) (models.PageResult[models.AddressView], error)
	ListAddressesWithoutLocation(ctx context.Context, page models.Page) (models.PageResult[models.AddressView], error)

	CreateOrganization(ctx context.Context, in models.OrganizationInput) (*models.OrganizationView, error)
	UpdateOrganization(ctx context.Context, orgID id.OrganizationID, in models.OrganizationInput) (*models.OrganizationView, error)
	GetOrganization(ctx context.Context, orgID id.OrganizationID) (*models.OrganizationView, error)
	DeleteOrganization(ctx context.Context, orgID id.OrganizationID) (*models.OrganizationView, error)
	ListOrganizations(ctx context.Context, filter models.OrganizationFilter, page models.Page) (models.PageResult[models.OrganizationView], error)

	OrganizationWithMaxOfficialAddress(ctx context.Context) (*models.OrganizationView, error)
	CountByFullName(ctx context.Context) ([]models.FullNameCount, error)
	FindByFullNameContaining(ctx context.Context, substr string) ([]models.OrganizationView, error)
	IncrementEmployees(ctx context.Context, orgID id.OrganizationID) (*models.OrganizationView, error)
	MergeOrganizations(ctx context.Context, cmd models.MergeCommand) (*models.OrganizationView, error)

	Import(ctx context.Context, entries []models.OrganizationInput) (*models.ImportHistory, error)
	RejectImport(ctx context.Context, total, index int, cause error) error
	ListImportHistory(ctx context.Context, page models.Page) (models.PageResult[models.ImportHistory], error)
}

// Handler wires registry endpoints to the service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Register mounts the registry endpoints. Callers mount it under /api.
func (h *Handler) Register(r chi.Router) {
	r.Route("/location", func(r chi.Router) {
		r.Post("/", h.handleCreateLocation)
		r.Get("/", h.handleListLocations)
		r.Get("/{id}", h.handleGetLocation)
		r.Put("/{id}", h.handleUpdateLocation)
		r.Delete("/{id}", h.handleDeleteLocation)
	})
	r.Route("/coordinates", func(r chi.Router) {
		r.Post("/", h.handleCreateCoordinates)
		r.Get("/", h.handleListCoordinates)
		r.Get("/{id}", h.handleGetCoordinates)
		r.Put("/{id}", h.handleUpdateCoordinates)
		r.Delete("/{id}", h.handleDeleteCoordinates)
	})
	r.Route("/address", func(r chi.Router) {
		r.Post("/", h.handleCreateAddress)
		r.Get("/", h.handleListAddresses)
		r.Get("/without-location", h.handleListAddressesWithoutLocation)
		r.Get("/{id}", h.handleGetAddress)
		r.Put("/{id}", h.handleUpdateAddress)
		r.Delete("/{id}", h.handleDeleteAddress)
	})
	r.Route("/organization", func(r chi.Router) {
		r.Post("/", h.handleCreateOrganization)
		r.Get("/", h.handleListOrganizations)
		r.Get("/{id}", h.handleGetOrganization)
		r.Put("/{id}", h.handleUpdateOrganization)
		r.Delete("/{id}", h.handleDeleteOrganization)
	})
	r.Route("/special-operation", func(r chi.Router) {
		r.Get("/max-official-address", h.handleMaxOfficialAddress)
		r.Get("/group-fullname", h.handleGroupByFullName)
		r.Get("/fullname-contains", h.handleFullNameContains)
		r.Put("/increment-employees/{id}", h.handleIncrementEmployees)
		r.Post("/merge", h.handleMerge)
	})
	r.Route("/import", func(r chi.Router) {
		r.Post("/", h.handleImport)
		r.Get("/", h.handleImportHistory)
	})
}

// fail logs err at a level matching its code and writes the error envelope.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()
	attrs := []any{
		"request_id", requestcontext.RequestID(ctx),
		"operation", op,
		"error", err,
	}
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, "registry request failed", attrs...)
	} else {
		h.logger.WarnContext(ctx, "registry request rejected", attrs...)
	}
	httputil.WriteError(w, err)
}

func pathID[T id.ID](r *http.Request, parse func(string) (T, error)) (T, error) {
	return parse(chi.URLParam(r, "id"))
}

// pageFromQuery reads page, size, sort_by and direction. The service fills
// defaults and checks the sort field.
func pageFromQuery(r *http.Request) (models.Page, error) {
	q := r.URL.Query()
	var page models.Page
	var err error
	if page.Page, err = intParam(q.Get("page"), "page"); err != nil {
		return page, err
	}
	if page.Size, err = intParam(q.Get("size"), "size"); err != nil {
		return page, err
	}
	page.SortBy = q.Get("sort_by")
	page.Direction = models.SortDirection(q.Get("direction"))
	return page, nil
}

func intParam(v, name string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, dErrors.Newf(dErrors.CodeBadRequest, "%s must be an integer", name)
	}
	return n, nil
}

// optionalParam returns nil for an absent query parameter.
func optionalParam(r *http.Request, name string) *string {
	if !r.URL.Query().Has(name) {
		return nil
	}
	v := r.URL.Query().Get(name)
	return &v
}
