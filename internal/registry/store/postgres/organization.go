package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"orgatlas/internal/registry/models"
	id "orgatlas/pkg/domain"
)

var organizationColumns = map[string]string{
	"id":              "id",
	"name":            "name",
	"full_name":       "full_name",
	"type":            "type",
	"annual_turnover": "annual_turnover",
	"employees_count": "employees_count",
	"rating":          "rating",
	"creation_date":   "creation_date",
}

const organizationSelect = `SELECT id, name, full_name, type, coordinates_id, official_address_id,
	postal_address_id, annual_turnover, employees_count, rating, creation_date FROM organizations`

type OrganizationStore struct {
	store
}

func NewOrganizationStore(db *sql.DB) *OrganizationStore {
	return &OrganizationStore{store{db: db}}
}

func scanOrganization(row rowScanner) (*models.Organization, error) {
	var (
		o         models.Organization
		employees sql.Null[int32]
		rating    sql.Null[float32]
	)
	err := row.Scan(&o.ID, &o.Name, &o.FullName, &o.Type, &o.CoordinatesID, &o.OfficialAddressID,
		&o.PostalAddressID, &o.AnnualTurnover, &employees, &rating, &o.CreationDate)
	if err != nil {
		return nil, err
	}
	o.EmployeesCount = pointer(employees)
	o.Rating = pointer(rating)
	o.CreationDate = o.CreationDate.UTC()
	return &o, nil
}

func (s *OrganizationStore) scanAll(ctx context.Context, op, query string, args ...any) ([]models.Organization, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeError(op, err)
	}
	defer rows.Close()
	out := []models.Organization{}
	for rows.Next() {
		o, err := scanOrganization(rows)
		if err != nil {
			return nil, storeError(op, err)
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError(op, err)
	}
	return out, nil
}

func (s *OrganizationStore) Create(ctx context.Context, org *models.Organization) error {
	err := s.conn(ctx).QueryRowContext(ctx, `
		INSERT INTO organizations (name, full_name, type, coordinates_id, official_address_id,
			postal_address_id, annual_turnover, employees_count, rating, creation_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		org.Name, org.FullName, string(org.Type), org.CoordinatesID, org.OfficialAddressID,
		org.PostalAddressID, org.AnnualTurnover, nullArg(org.EmployeesCount), nullArg(org.Rating), org.CreationDate,
	).Scan(&org.ID)
	if err != nil {
		return storeError("create organization", err)
	}
	return nil
}

func (s *OrganizationStore) FindByID(ctx context.Context, orgID id.OrganizationID) (*models.Organization, error) {
	o, err := scanOrganization(s.conn(ctx).QueryRowContext(ctx, organizationSelect+` WHERE id = $1`, orgID))
	if err != nil {
		return nil, storeError("find organization", err)
	}
	return o, nil
}

func (s *OrganizationStore) Update(ctx context.Context, org *models.Organization) error {
	res, err := s.conn(ctx).ExecContext(ctx, `
		UPDATE organizations SET name = $2, full_name = $3, type = $4, coordinates_id = $5,
			official_address_id = $6, postal_address_id = $7, annual_turnover = $8,
			employees_count = $9, rating = $10, creation_date = $11
		WHERE id = $1`,
		org.ID, org.Name, org.FullName, string(org.Type), org.CoordinatesID, org.OfficialAddressID,
		org.PostalAddressID, org.AnnualTurnover, nullArg(org.EmployeesCount), nullArg(org.Rating), org.CreationDate,
	)
	return affectedOne("update organization", res, err)
}

func (s *OrganizationStore) Delete(ctx context.Context, orgID id.OrganizationID) error {
	res, err := s.conn(ctx).ExecContext(ctx, `DELETE FROM organizations WHERE id = $1`, orgID)
	return affectedOne("delete organization", res, err)
}

func (s *OrganizationStore) List(ctx context.Context, filter models.OrganizationFilter, page models.Page) (models.PageResult[models.Organization], error) {
	w := &where{}
	w.contains("name", filter.NameContains)
	w.contains("full_name", filter.FullNameContains)

	total, err := s.count(ctx, "count organizations", "organizations", w)
	if err != nil {
		return models.PageResult[models.Organization]{}, err
	}
	result := emptyPage[models.Organization](page, total)
	items, err := s.scanAll(ctx, "list organizations",
		organizationSelect+w.String()+orderBy(page, organizationColumns), w.args...)
	if err != nil {
		return result, err
	}
	result.Items = items
	return result, nil
}

// excluding adds "id <> excludeID" when excludeID is set.
func excluding(w *where, excludeID *id.OrganizationID) {
	if excludeID != nil {
		w.add("id <> $%d", *excludeID)
	}
}

func (s *OrganizationStore) exists(ctx context.Context, op string, w *where) (bool, error) {
	n, err := s.count(ctx, op, "organizations", w)
	return n > 0, err
}

func (s *OrganizationStore) ExistsByFullName(ctx context.Context, fullName string, excludeID *id.OrganizationID) (bool, error) {
	w := &where{}
	w.add("full_name = $%d", fullName)
	excluding(w, excludeID)
	return s.exists(ctx, "check full name", w)
}

// ExistsByPostalZipCodeAndType reads the addresses table inside the
// transaction, so a concurrent insert with the same key fails serialization.
func (s *OrganizationStore) ExistsByPostalZipCodeAndType(ctx context.Context, zipCode string, orgType models.OrganizationType, excludeID *id.OrganizationID) (bool, error) {
	w := &where{}
	w.add("postal_address_id IN (SELECT a.id FROM addresses a WHERE a.zip_code = $%d)", zipCode)
	w.add("type = $%d", string(orgType))
	excluding(w, excludeID)
	return s.exists(ctx, "check postal zip code", w)
}

func (s *OrganizationStore) CountByCoordinates(ctx context.Context, coordinatesID id.CoordinatesID) (int, error) {
	w := &where{}
	w.add("coordinates_id = $%d", coordinatesID)
	return s.count(ctx, "count organizations by coordinates", "organizations", w)
}

func (s *OrganizationStore) CountByAddress(ctx context.Context, addressID id.AddressID) (int, error) {
	w := &where{}
	w.add("(official_address_id = $%[1]d OR postal_address_id = $%[1]d)", addressID)
	return s.count(ctx, "count organizations by address", "organizations", w)
}

// FindByAddresses returns the organizations using any of addressIDs as
// official or postal address, ordered by id.
func (s *OrganizationStore) FindByAddresses(ctx context.Context, addressIDs ...id.AddressID) ([]models.Organization, error) {
	if len(addressIDs) == 0 {
		return []models.Organization{}, nil
	}
	ids := make([]int64, len(addressIDs))
	for i, a := range addressIDs {
		ids[i] = int64(a)
	}
	w := &where{}
	w.add("(official_address_id = ANY($%[1]d) OR postal_address_id = ANY($%[1]d))", pq.Array(ids))
	return s.scanAll(ctx, "find organizations by address", organizationSelect+w.String()+` ORDER BY id`, w.args...)
}

func (s *OrganizationStore) FindWithMaxOfficialAddress(ctx context.Context) (*models.Organization, error) {
	o, err := scanOrganization(s.conn(ctx).QueryRowContext(ctx,
		organizationSelect+` ORDER BY official_address_id DESC, id ASC LIMIT 1`))
	if err != nil {
		return nil, storeError("find max official address", err)
	}
	return o, nil
}

func (s *OrganizationStore) CountByFullName(ctx context.Context) ([]models.FullNameCount, error) {
	rows, err := s.conn(ctx).QueryContext(ctx,
		`SELECT full_name, COUNT(*) FROM organizations GROUP BY full_name ORDER BY full_name`)
	if err != nil {
		return nil, storeError("count by full name", err)
	}
	defer rows.Close()
	out := []models.FullNameCount{}
	for rows.Next() {
		var c models.FullNameCount
		if err := rows.Scan(&c.FullName, &c.Count); err != nil {
			return nil, storeError("count by full name", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("count by full name", err)
	}
	return out, nil
}

func (s *OrganizationStore) FindByFullNameContaining(ctx context.Context, substr string) ([]models.Organization, error) {
	w := &where{}
	w.contains("full_name", &substr)
	return s.scanAll(ctx, "find by full name", organizationSelect+w.String()+` ORDER BY id`, w.args...)
}
