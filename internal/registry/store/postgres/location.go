package postgres

import (
	"context"
	"database/sql"

	"orgatlas/internal/registry/models"
	id "orgatlas/pkg/domain"
)

var locationColumns = map[string]string{"id": "id", "x": "x", "y": "y", "z": "z", "name": "name"}

type LocationStore struct {
	store
}

func NewLocationStore(db *sql.DB) *LocationStore {
	return &LocationStore{store{db: db}}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLocation(row rowScanner) (*models.Location, error) {
	var (
		l    models.Location
		name sql.Null[string]
	)
	if err := row.Scan(&l.ID, &l.X, &l.Y, &l.Z, &name); err != nil {
		return nil, err
	}
	l.Name = pointer(name)
	return &l, nil
}

func (s *LocationStore) Create(ctx context.Context, loc *models.Location) error {
	err := s.conn(ctx).QueryRowContext(ctx,
		`INSERT INTO locations (x, y, z, name) VALUES ($1, $2, $3, $4) RETURNING id`,
		loc.X, loc.Y, loc.Z, nullArg(loc.Name),
	).Scan(&loc.ID)
	if err != nil {
		return storeError("create location", err)
	}
	return nil
}

func (s *LocationStore) FindByID(ctx context.Context, locationID id.LocationID) (*models.Location, error) {
	loc, err := scanLocation(s.conn(ctx).QueryRowContext(ctx,
		`SELECT id, x, y, z, name FROM locations WHERE id = $1`, locationID))
	if err != nil {
		return nil, storeError("find location", err)
	}
	return loc, nil
}

func (s *LocationStore) Update(ctx context.Context, loc *models.Location) error {
	res, err := s.conn(ctx).ExecContext(ctx,
		`UPDATE locations SET x = $2, y = $3, z = $4, name = $5 WHERE id = $1`,
		loc.ID, loc.X, loc.Y, loc.Z, nullArg(loc.Name))
	return affectedOne("update location", res, err)
}

func (s *LocationStore) Delete(ctx context.Context, locationID id.LocationID) error {
	res, err := s.conn(ctx).ExecContext(ctx, `DELETE FROM locations WHERE id = $1`, locationID)
	return affectedOne("delete location", res, err)
}

func (s *LocationStore) List(ctx context.Context, filter models.LocationFilter, page models.Page) (models.PageResult[models.Location], error) {
	w := &where{}
	w.contains("name", filter.NameContains)

	total, err := s.count(ctx, "count locations", "locations", w)
	if err != nil {
		return models.PageResult[models.Location]{}, err
	}
	result := emptyPage[models.Location](page, total)
	rows, err := s.conn(ctx).QueryContext(ctx,
		`SELECT id, x, y, z, name FROM locations`+w.String()+orderBy(page, locationColumns), w.args...)
	if err != nil {
		return result, storeError("list locations", err)
	}
	defer rows.Close()
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return result, storeError("scan location", err)
		}
		result.Items = append(result.Items, *loc)
	}
	if err := rows.Err(); err != nil {
		return result, storeError("list locations", err)
	}
	return result, nil
}
