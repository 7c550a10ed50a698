package memory

import (
	"cmp"
	"context"
	"slices"

	"orgatlas/internal/registry/models"
	id "orgatlas/pkg/domain"
	"orgatlas/pkg/platform/sentinel"
)

var addressFields = map[string]compareFunc[models.Address]{
	"id":       func(a, b models.Address) int { return cmp.Compare(a.ID, b.ID) },
	"zip_code": func(a, b models.Address) int { return comparePtr(a.ZipCode, b.ZipCode) },
}

type AddressStore struct {
	db *DB
}

func NewAddressStore(db *DB) *AddressStore {
	return &AddressStore{db: db}
}

func copyAddress(a models.Address) models.Address {
	a.ZipCode = clonePtr(a.ZipCode)
	a.LocationID = clonePtr(a.LocationID)
	return a
}

func (s *AddressStore) Create(ctx context.Context, a *models.Address) error {
	return s.db.write(ctx, func(st *state) error {
		if a.LocationID != nil {
			if _, ok := st.locations[*a.LocationID]; !ok {
				return sentinel.ErrNotFound
			}
		}
		st.nextAddress++
		a.ID = id.AddressID(st.nextAddress)
		st.addresses[a.ID] = copyAddress(*a)
		return nil
	})
}

func (s *AddressStore) FindByID(ctx context.Context, addressID id.AddressID) (*models.Address, error) {
	var out *models.Address
	err := s.db.read(ctx, func(st *state) error {
		a, ok := st.addresses[addressID]
		if !ok {
			return sentinel.ErrNotFound
		}
		a = copyAddress(a)
		out = &a
		return nil
	})
	return out, err
}

func (s *AddressStore) Update(ctx context.Context, a *models.Address) error {
	return s.db.write(ctx, func(st *state) error {
		if _, ok := st.addresses[a.ID]; !ok {
			return sentinel.ErrNotFound
		}
		st.addresses[a.ID] = copyAddress(*a)
		return nil
	})
}

func (s *AddressStore) Delete(ctx context.Context, addressID id.AddressID) error {
	return s.db.write(ctx, func(st *state) error {
		if _, ok := st.addresses[addressID]; !ok {
			return sentinel.ErrNotFound
		}
		delete(st.addresses, addressID)
		return nil
	})
}

func (s *AddressStore) List(ctx context.Context, filter models.AddressFilter, page models.Page) (models.PageResult[models.Address], error) {
	return s.list(ctx, page, func(a models.Address) bool {
		return models.ContainsFold(a.ZipCode, filter.ZipCodeContains)
	})
}

func (s *AddressStore) ListWithoutLocation(ctx context.Context, page models.Page) (models.PageResult[models.Address], error) {
	return s.list(ctx, page, func(a models.Address) bool { return !a.HasLocation() })
}

func (s *AddressStore) list(ctx context.Context, page models.Page, keep func(models.Address) bool) (models.PageResult[models.Address], error) {
	var result models.PageResult[models.Address]
	err := s.db.read(ctx, func(st *state) error {
		rows := make([]models.Address, 0, len(st.addresses))
		for _, a := range st.addresses {
			if keep(a) {
				rows = append(rows, copyAddress(a))
			}
		}
		result = paginate(rows, page, addressFields)
		return nil
	})
	return result, err
}

// ListIDsByLocation returns the ids of addresses placed at locationID.
func (s *AddressStore) ListIDsByLocation(ctx context.Context, locationID id.LocationID) ([]id.AddressID, error) {
	var out []id.AddressID
	err := s.db.read(ctx, func(st *state) error {
		for _, a := range st.addresses {
			if a.LocationID != nil && *a.LocationID == locationID {
				out = append(out, a.ID)
			}
		}
		slices.Sort(out)
		return nil
	})
	return out, err
}

func (s *AddressStore) CountByLocation(ctx context.Context, locationID id.LocationID) (int, error) {
	n := 0
	err := s.db.read(ctx, func(st *state) error {
		for _, a := range st.addresses {
			if a.LocationID != nil && *a.LocationID == locationID {
				n++
			}
		}
		return nil
	})
	return n, err
}
