package memory

import (
	"cmp"
	"context"

	"orgatlas/internal/registry/models"
	id "orgatlas/pkg/domain"
	"orgatlas/pkg/platform/sentinel"
)

var coordinatesFields = map[string]compareFunc[models.Coordinates]{
	"id": func(a, b models.Coordinates) int { return cmp.Compare(a.ID, b.ID) },
	"x":  func(a, b models.Coordinates) int { return cmp.Compare(a.X, b.X) },
	"y":  func(a, b models.Coordinates) int { return cmp.Compare(a.Y, b.Y) },
}

type CoordinatesStore struct {
	db *DB
}

func NewCoordinatesStore(db *DB) *CoordinatesStore {
	return &CoordinatesStore{db: db}
}

func (s *CoordinatesStore) Create(ctx context.Context, c *models.Coordinates) error {
	return s.db.write(ctx, func(st *state) error {
		st.nextCoordinates++
		c.ID = id.CoordinatesID(st.nextCoordinates)
		st.coordinates[c.ID] = *c
		return nil
	})
}

func (s *CoordinatesStore) FindByID(ctx context.Context, coordinatesID id.CoordinatesID) (*models.Coordinates, error) {
	var out *models.Coordinates
	err := s.db.read(ctx, func(st *state) error {
		c, ok := st.coordinates[coordinatesID]
		if !ok {
			return sentinel.ErrNotFound
		}
		out = &c
		return nil
	})
	return out, err
}

func (s *CoordinatesStore) Update(ctx context.Context, c *models.Coordinates) error {
	return s.db.write(ctx, func(st *state) error {
		if _, ok := st.coordinates[c.ID]; !ok {
			return sentinel.ErrNotFound
		}
		st.coordinates[c.ID] = *c
		return nil
	})
}

func (s *CoordinatesStore) Delete(ctx context.Context, coordinatesID id.CoordinatesID) error {
	return s.db.write(ctx, func(st *state) error {
		if _, ok := st.coordinates[coordinatesID]; !ok {
			return sentinel.ErrNotFound
		}
		delete(st.coordinates, coordinatesID)
		return nil
	})
}

func (s *CoordinatesStore) List(ctx context.Context, page models.Page) (models.PageResult[models.Coordinates], error) {
	var result models.PageResult[models.Coordinates]
	err := s.db.read(ctx, func(st *state) error {
		rows := make([]models.Coordinates, 0, len(st.coordinates))
		for _, c := range st.coordinates {
			rows = append(rows, c)
		}
		result = paginate(rows, page, coordinatesFields)
		return nil
	})
	return result, err
}
