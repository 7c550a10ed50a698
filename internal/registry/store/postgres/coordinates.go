package postgres

import (
	"context"
	"database/sql"

	"orgatlas/internal/registry/models"
	id "orgatlas/pkg/domain"
)

var coordinatesColumns = map[string]string{"id": "id", "x": "x", "y": "y"}

type CoordinatesStore struct {
	store
}

func NewCoordinatesStore(db *sql.DB) *CoordinatesStore {
	return &CoordinatesStore{store{db: db}}
}

func (s *CoordinatesStore) Create(ctx context.Context, c *models.Coordinates) error {
	err := s.conn(ctx).QueryRowContext(ctx,
		`INSERT INTO coordinates (x, y) VALUES ($1, $2) RETURNING id`, c.X, c.Y,
	).Scan(&c.ID)
	if err != nil {
		return storeError("create coordinates", err)
	}
	return nil
}

func (s *CoordinatesStore) FindByID(ctx context.Context, coordinatesID id.CoordinatesID) (*models.Coordinates, error) {
	var c models.Coordinates
	err := s.conn(ctx).QueryRowContext(ctx,
		`SELECT id, x, y FROM coordinates WHERE id = $1`, coordinatesID,
	).Scan(&c.ID, &c.X, &c.Y)
	if err != nil {
		return nil, storeError("find coordinates", err)
	}
	return &c, nil
}

func (s *CoordinatesStore) Update(ctx context.Context, c *models.Coordinates) error {
	res, err := s.conn(ctx).ExecContext(ctx,
		`UPDATE coordinates SET x = $2, y = $3 WHERE id = $1`, c.ID, c.X, c.Y)
	return affectedOne("update coordinates", res, err)
}

func (s *CoordinatesStore) Delete(ctx context.Context, coordinatesID id.CoordinatesID) error {
	res, err := s.conn(ctx).ExecContext(ctx, `DELETE FROM coordinates WHERE id = $1`, coordinatesID)
	return affectedOne("delete coordinates", res, err)
}

func (s *CoordinatesStore) List(ctx context.Context, page models.Page) (models.PageResult[models.Coordinates], error) {
	w := &where{}
	total, err := s.count(ctx, "count coordinates", "coordinates", w)
	if err != nil {
		return models.PageResult[models.Coordinates]{}, err
	}
	result := emptyPage[models.Coordinates](page, total)
	rows, err := s.conn(ctx).QueryContext(ctx,
		`SELECT id, x, y FROM coordinates`+orderBy(page, coordinatesColumns))
	if err != nil {
		return result, storeError("list coordinates", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c models.Coordinates
		if err := rows.Scan(&c.ID, &c.X, &c.Y); err != nil {
			return result, storeError("scan coordinates", err)
		}
		result.Items = append(result.Items, c)
	}
	if err := rows.Err(); err != nil {
		return result, storeError("list coordinates", err)
	}
	return result, nil
}
