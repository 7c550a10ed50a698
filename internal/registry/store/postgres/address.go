package postgres

import (
	"context"
	"database/sql"

	"orgatlas/internal/registry/models"
	id "orgatlas/pkg/domain"
)

var addressColumns = map[string]string{"id": "id", "zip_code": "zip_code"}

type AddressStore struct {
	store
}

func NewAddressStore(db *sql.DB) *AddressStore {
	return &AddressStore{store{db: db}}
}

func scanAddress(row rowScanner) (*models.Address, error) {
	var (
		a          models.Address
		zip        sql.Null[string]
		locationID sql.Null[id.LocationID]
	)
	if err := row.Scan(&a.ID, &zip, &locationID); err != nil {
		return nil, err
	}
	a.ZipCode = pointer(zip)
	a.LocationID = pointer(locationID)
	return &a, nil
}

func (s *AddressStore) Create(ctx context.Context, a *models.Address) error {
	err := s.conn(ctx).QueryRowContext(ctx,
		`INSERT INTO addresses (zip_code, location_id) VALUES ($1, $2) RETURNING id`,
		nullArg(a.ZipCode), nullArg(a.LocationID),
	).Scan(&a.ID)
	if err != nil {
		return storeError("create address", err)
	}
	return nil
}

func (s *AddressStore) FindByID(ctx context.Context, addressID id.AddressID) (*models.Address, error) {
	a, err := scanAddress(s.conn(ctx).QueryRowContext(ctx,
		`SELECT id, zip_code, location_id FROM addresses WHERE id = $1`, addressID))
	if err != nil {
		return nil, storeError("find address", err)
	}
	return a, nil
}

func (s *AddressStore) Update(ctx context.Context, a *models.Address) error {
	res, err := s.conn(ctx).ExecContext(ctx,
		`UPDATE addresses SET zip_code = $2, location_id = $3 WHERE id = $1`,
		a.ID, nullArg(a.ZipCode), nullArg(a.LocationID))
	return affectedOne("update address", res, err)
}

func (s *AddressStore) Delete(ctx context.Context, addressID id.AddressID) error {
	res, err := s.conn(ctx).ExecContext(ctx, `DELETE FROM addresses WHERE id = $1`, addressID)
	return affectedOne("delete address", res, err)
}

func (s *AddressStore) List(ctx context.Context, filter models.AddressFilter, page models.Page) (models.PageResult[models.Address], error) {
	w := &where{}
	w.contains("zip_code", filter.ZipCodeContains)
	return s.list(ctx, w, page)
}

func (s *AddressStore) ListWithoutLocation(ctx context.Context, page models.Page) (models.PageResult[models.Address], error) {
	w := &where{conds: []string{"location_id IS NULL"}}
	return s.list(ctx, w, page)
}

func (s *AddressStore) list(ctx context.Context, w *where, page models.Page) (models.PageResult[models.Address], error) {
	total, err := s.count(ctx, "count addresses", "addresses", w)
	if err != nil {
		return models.PageResult[models.Address]{}, err
	}
	result := emptyPage[models.Address](page, total)
	rows, err := s.conn(ctx).QueryContext(ctx,
		`SELECT id, zip_code, location_id FROM addresses`+w.String()+orderBy(page, addressColumns), w.args...)
	if err != nil {
		return result, storeError("list addresses", err)
	}
	defer rows.Close()
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return result, storeError("scan address", err)
		}
		result.Items = append(result.Items, *a)
	}
	if err := rows.Err(); err != nil {
		return result, storeError("list addresses", err)
	}
	return result, nil
}

// ListIDsByLocation returns the ids of addresses placed at locationID.
func (s *AddressStore) ListIDsByLocation(ctx context.Context, locationID id.LocationID) ([]id.AddressID, error) {
	rows, err := s.conn(ctx).QueryContext(ctx,
		`SELECT id FROM addresses WHERE location_id = $1 ORDER BY id`, locationID)
	if err != nil {
		return nil, storeError("list addresses by location", err)
	}
	defer rows.Close()
	var out []id.AddressID
	for rows.Next() {
		var addrID id.AddressID
		if err := rows.Scan(&addrID); err != nil {
			return nil, storeError("list addresses by location", err)
		}
		out = append(out, addrID)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("list addresses by location", err)
	}
	return out, nil
}

func (s *AddressStore) CountByLocation(ctx context.Context, locationID id.LocationID) (int, error) {
	w := &where{}
	w.add("location_id = $%d", locationID)
	return s.count(ctx, "count addresses by location", "addresses", w)
}
