package memory

import (
	"cmp"
	"context"

	"orgatlas/internal/registry/models"
	id "orgatlas/pkg/domain"
	"orgatlas/pkg/platform/sentinel"
)

var locationFields = map[string]compareFunc[models.Location]{
	"id":   func(a, b models.Location) int { return cmp.Compare(a.ID, b.ID) },
	"x":    func(a, b models.Location) int { return cmp.Compare(a.X, b.X) },
	"y":    func(a, b models.Location) int { return cmp.Compare(a.Y, b.Y) },
	"z":    func(a, b models.Location) int { return cmp.Compare(a.Z, b.Z) },
	"name": func(a, b models.Location) int { return comparePtr(a.Name, b.Name) },
}

type LocationStore struct {
	db *DB
}

func NewLocationStore(db *DB) *LocationStore {
	return &LocationStore{db: db}
}

func copyLocation(l models.Location) models.Location {
	l.Name = clonePtr(l.Name)
	return l
}

func (s *LocationStore) Create(ctx context.Context, loc *models.Location) error {
	return s.db.write(ctx, func(st *state) error {
		st.nextLocation++
		loc.ID = id.LocationID(st.nextLocation)
		st.locations[loc.ID] = copyLocation(*loc)
		return nil
	})
}

func (s *LocationStore) FindByID(ctx context.Context, locationID id.LocationID) (*models.Location, error) {
	var out *models.Location
	err := s.db.read(ctx, func(st *state) error {
		l, ok := st.locations[locationID]
		if !ok {
			return sentinel.ErrNotFound
		}
		l = copyLocation(l)
		out = &l
		return nil
	})
	return out, err
}

func (s *LocationStore) Update(ctx context.Context, loc *models.Location) error {
	return s.db.write(ctx, func(st *state) error {
		if _, ok := st.locations[loc.ID]; !ok {
			return sentinel.ErrNotFound
		}
		st.locations[loc.ID] = copyLocation(*loc)
		return nil
	})
}

func (s *LocationStore) Delete(ctx context.Context, locationID id.LocationID) error {
	return s.db.write(ctx, func(st *state) error {
		if _, ok := st.locations[locationID]; !ok {
			return sentinel.ErrNotFound
		}
		delete(st.locations, locationID)
		return nil
	})
}

func (s *LocationStore) List(ctx context.Context, filter models.LocationFilter, page models.Page) (models.PageResult[models.Location], error) {
	var result models.PageResult[models.Location]
	err := s.db.read(ctx, func(st *state) error {
		rows := make([]models.Location, 0, len(st.locations))
		for _, l := range st.locations {
			if models.ContainsFold(l.Name, filter.NameContains) {
				rows = append(rows, copyLocation(l))
			}
		}
		result = paginate(rows, page, locationFields)
		return nil
	})
	return result, err
}
