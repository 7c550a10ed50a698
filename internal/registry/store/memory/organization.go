package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"orgatlas/internal/registry/models"
	id "orgatlas/pkg/domain"
	"orgatlas/pkg/platform/sentinel"
)

var organizationFields = map[string]compareFunc[models.Organization]{
	"id":              func(a, b models.Organization) int { return cmp.Compare(a.ID, b.ID) },
	"name":            func(a, b models.Organization) int { return cmp.Compare(a.Name, b.Name) },
	"full_name":       func(a, b models.Organization) int { return cmp.Compare(a.FullName, b.FullName) },
	"type":            func(a, b models.Organization) int { return cmp.Compare(a.Type, b.Type) },
	"annual_turnover": func(a, b models.Organization) int { return cmp.Compare(a.AnnualTurnover, b.AnnualTurnover) },
	"employees_count": func(a, b models.Organization) int { return comparePtr(a.EmployeesCount, b.EmployeesCount) },
	"rating":          func(a, b models.Organization) int { return comparePtr(a.Rating, b.Rating) },
	"creation_date":   func(a, b models.Organization) int { return a.CreationDate.Compare(b.CreationDate) },
}

type OrganizationStore struct {
	db *DB
}

func NewOrganizationStore(db *DB) *OrganizationStore {
	return &OrganizationStore{db: db}
}

func copyOrganization(o models.Organization) models.Organization {
	o.EmployeesCount = clonePtr(o.EmployeesCount)
	o.Rating = clonePtr(o.Rating)
	return o
}

func (s *OrganizationStore) Create(ctx context.Context, org *models.Organization) error {
	return s.db.write(ctx, func(st *state) error {
		st.nextOrganization++
		org.ID = id.OrganizationID(st.nextOrganization)
		st.organizations[org.ID] = copyOrganization(*org)
		return nil
	})
}

func (s *OrganizationStore) FindByID(ctx context.Context, orgID id.OrganizationID) (*models.Organization, error) {
	var out *models.Organization
	err := s.db.read(ctx, func(st *state) error {
		o, ok := st.organizations[orgID]
		if !ok {
			return sentinel.ErrNotFound
		}
		o = copyOrganization(o)
		out = &o
		return nil
	})
	return out, err
}

func (s *OrganizationStore) Update(ctx context.Context, org *models.Organization) error {
	return s.db.write(ctx, func(st *state) error {
		if _, ok := st.organizations[org.ID]; !ok {
			return sentinel.ErrNotFound
		}
		st.organizations[org.ID] = copyOrganization(*org)
		return nil
	})
}

func (s *OrganizationStore) Delete(ctx context.Context, orgID id.OrganizationID) error {
	return s.db.write(ctx, func(st *state) error {
		if _, ok := st.organizations[orgID]; !ok {
			return sentinel.ErrNotFound
		}
		delete(st.organizations, orgID)
		return nil
	})
}

func (s *OrganizationStore) List(ctx context.Context, filter models.OrganizationFilter, page models.Page) (models.PageResult[models.Organization], error) {
	var result models.PageResult[models.Organization]
	err := s.db.read(ctx, func(st *state) error {
		rows := make([]models.Organization, 0, len(st.organizations))
		for _, o := range st.organizations {
			if models.ContainsFold(&o.Name, filter.NameContains) && models.ContainsFold(&o.FullName, filter.FullNameContains) {
				rows = append(rows, copyOrganization(o))
			}
		}
		result = paginate(rows, page, organizationFields)
		return nil
	})
	return result, err
}

func excluded(orgID id.OrganizationID, excludeID *id.OrganizationID) bool {
	return excludeID != nil && *excludeID == orgID
}

func (s *OrganizationStore) ExistsByFullName(ctx context.Context, fullName string, excludeID *id.OrganizationID) (bool, error) {
	found := false
	err := s.db.read(ctx, func(st *state) error {
		for _, o := range st.organizations {
			if o.FullName == fullName && !excluded(o.ID, excludeID) {
				found = true
				return nil
			}
		}
		return nil
	})
	return found, err
}

func (s *OrganizationStore) ExistsByPostalZipCodeAndType(ctx context.Context, zipCode string, orgType models.OrganizationType, excludeID *id.OrganizationID) (bool, error) {
	found := false
	err := s.db.read(ctx, func(st *state) error {
		for _, o := range st.organizations {
			if o.Type != orgType || excluded(o.ID, excludeID) {
				continue
			}
			postal, ok := st.addresses[o.PostalAddressID]
			if ok && postal.ZipCode != nil && *postal.ZipCode == zipCode {
				found = true
				return nil
			}
		}
		return nil
	})
	return found, err
}

func (s *OrganizationStore) CountByCoordinates(ctx context.Context, coordinatesID id.CoordinatesID) (int, error) {
	n := 0
	err := s.db.read(ctx, func(st *state) error {
		for _, o := range st.organizations {
			if o.CoordinatesID == coordinatesID {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (s *OrganizationStore) CountByAddress(ctx context.Context, addressID id.AddressID) (int, error) {
	n := 0
	err := s.db.read(ctx, func(st *state) error {
		for _, o := range st.organizations {
			if o.OfficialAddressID == addressID || o.PostalAddressID == addressID {
				n++
			}
		}
		return nil
	})
	return n, err
}

// FindByAddresses returns the organizations using any of addressIDs as
// official or postal address, ordered by id.
func (s *OrganizationStore) FindByAddresses(ctx context.Context, addressIDs ...id.AddressID) ([]models.Organization, error) {
	var out []models.Organization
	err := s.db.read(ctx, func(st *state) error {
		out = []models.Organization{}
		for _, o := range st.organizations {
			if slices.Contains(addressIDs, o.OfficialAddressID) || slices.Contains(addressIDs, o.PostalAddressID) {
				out = append(out, copyOrganization(o))
			}
		}
		slices.SortFunc(out, func(a, b models.Organization) int { return cmp.Compare(a.ID, b.ID) })
		return nil
	})
	return out, err
}

// FindWithMaxOfficialAddress breaks ties on the lowest organization id.
func (s *OrganizationStore) FindWithMaxOfficialAddress(ctx context.Context) (*models.Organization, error) {
	var out *models.Organization
	err := s.db.read(ctx, func(st *state) error {
		for _, o := range st.organizations {
			if out == nil || o.OfficialAddressID > out.OfficialAddressID ||
				(o.OfficialAddressID == out.OfficialAddressID && o.ID < out.ID) {
				c := copyOrganization(o)
				out = &c
			}
		}
		if out == nil {
			return sentinel.ErrNotFound
		}
		return nil
	})
	return out, err
}

func (s *OrganizationStore) CountByFullName(ctx context.Context) ([]models.FullNameCount, error) {
	var out []models.FullNameCount
	err := s.db.read(ctx, func(st *state) error {
		counts := make(map[string]int64)
		for _, o := range st.organizations {
			counts[o.FullName]++
		}
		out = make([]models.FullNameCount, 0, len(counts))
		for name, n := range counts {
			out = append(out, models.FullNameCount{FullName: name, Count: n})
		}
		slices.SortFunc(out, func(a, b models.FullNameCount) int { return cmp.Compare(a.FullName, b.FullName) })
		return nil
	})
	return out, err
}

func (s *OrganizationStore) FindByFullNameContaining(ctx context.Context, substr string) ([]models.Organization, error) {
	needle := strings.ToLower(substr)
	var out []models.Organization
	err := s.db.read(ctx, func(st *state) error {
		out = []models.Organization{}
		for _, o := range st.organizations {
			if strings.Contains(strings.ToLower(o.FullName), needle) {
				out = append(out, copyOrganization(o))
			}
		}
		slices.SortFunc(out, func(a, b models.Organization) int { return cmp.Compare(a.ID, b.ID) })
		return nil
	})
	return out, err
}
