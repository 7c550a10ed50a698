package models

import (
	"strings"
	"time"

	id "orgatlas/pkg/domain"
	dErrors "orgatlas/pkg/domain-errors"
)

// OrganizationType classifies an organization. GOVERNMENT and TRUST carry
// distance limits between their official and postal towns.
type OrganizationType string

const (
	TypeCommercial            OrganizationType = "COMMERCIAL"
	TypePublic                OrganizationType = "PUBLIC"
	TypeGovernment            OrganizationType = "GOVERNMENT"
	TypeTrust                 OrganizationType = "TRUST"
	TypePrivateLimitedCompany OrganizationType = "PRIVATE_LIMITED_COMPANY"
)

var organizationTypes = map[OrganizationType]struct{}{
	TypeCommercial:            {},
	TypePublic:                {},
	TypeGovernment:            {},
	TypeTrust:                 {},
	TypePrivateLimitedCompany: {},
}

// ParseOrganizationType validates s against the known types. Matching is
// case-sensitive.
func ParseOrganizationType(s string) (OrganizationType, error) {
	t := OrganizationType(s)
	if !t.IsValid() {
		return "", dErrors.Newf(dErrors.CodeBadRequest, "unknown organization type %q", s)
	}
	return t, nil
}

func (t OrganizationType) IsValid() bool {
	_, ok := organizationTypes[t]
	return ok
}

func (t OrganizationType) String() string { return string(t) }

// Subsistence floor used by the turnover rule: every employee plus the owner
// must be covered for a year.
const (
	MonthsPerYear       = 12
	MonthlySubsistence  = 19500
	minTurnoverHeadroom = 1
)

// MinAnnualTurnover returns the lowest turnover allowed for the given staff.
func MinAnnualTurnover(employees int32) float64 {
	return float64((int64(employees) + minTurnoverHeadroom) * MonthsPerYear * MonthlySubsistence)
}

// Organization is the aggregate that owns references to Coordinates and two
// Addresses.
//
// Invariants:
//   - Name and FullName are non-blank; FullName is unique
//   - (postal zip code, Type) is unique when the zip code is set
//   - AnnualTurnover > 0 and covers MinAnnualTurnover when EmployeesCount is set
//   - EmployeesCount and Rating are positive when present
//   - CreationDate is immutable after creation
type Organization struct {
	ID                id.OrganizationID `json:"id"`
	Name              string            `json:"name"`
	FullName          string            `json:"full_name"`
	Type              OrganizationType  `json:"type"`
	CoordinatesID     id.CoordinatesID  `json:"coordinates_id"`
	OfficialAddressID id.AddressID      `json:"official_address_id"`
	PostalAddressID   id.AddressID      `json:"postal_address_id"`
	AnnualTurnover    float64           `json:"annual_turnover"`
	EmployeesCount    *int32            `json:"employees_count,omitempty"`
	Rating            *float32          `json:"rating,omitempty"`
	CreationDate      time.Time         `json:"creation_date"`
}

// OrganizationView is an Organization with every reference resolved.
type OrganizationView struct {
	Organization
	Coordinates     Coordinates `json:"coordinates"`
	OfficialAddress AddressView `json:"official_address"`
	PostalAddress   AddressView `json:"postal_address"`
}

// OrganizationInput is the create/update payload. Numeric fields are pointers
// so merge can tell "unset" from zero.
type OrganizationInput struct {
	Name            string
	FullName        string
	Type            OrganizationType
	Coordinates     CoordinatesRef
	OfficialAddress AddressRef
	PostalAddress   AddressRef
	AnnualTurnover  *float64
	EmployeesCount  *int32
	Rating          *float32
}

// ValidateStructure runs the checks that need no store access: required fields
// first, then positivity.
func (in OrganizationInput) ValidateStructure() error {
	if strings.TrimSpace(in.Name) == "" {
		return dErrors.New(dErrors.CodeBadRequest, "organization name cannot be empty")
	}
	if strings.TrimSpace(in.FullName) == "" {
		return dErrors.New(dErrors.CodeBadRequest, "full name cannot be empty")
	}
	if in.Coordinates.IsZero() {
		return dErrors.New(dErrors.CodeBadRequest, "coordinates are required")
	}
	if in.OfficialAddress.IsZero() {
		return dErrors.New(dErrors.CodeBadRequest, "official address is required")
	}
	if in.PostalAddress.IsZero() {
		return dErrors.New(dErrors.CodeBadRequest, "postal address is required")
	}
	if in.Type == "" {
		return dErrors.New(dErrors.CodeBadRequest, "organization type is required")
	}
	if !in.Type.IsValid() {
		return dErrors.Newf(dErrors.CodeBadRequest, "unknown organization type %q", string(in.Type))
	}
	if in.AnnualTurnover == nil || *in.AnnualTurnover <= 0 {
		return dErrors.New(dErrors.CodeUnprocessableEntity, "annual turnover must be greater than 0")
	}
	if in.EmployeesCount != nil && *in.EmployeesCount <= 0 {
		return dErrors.New(dErrors.CodeUnprocessableEntity, "employees count must be greater than 0 if provided")
	}
	if in.Rating != nil && *in.Rating <= 0 {
		return dErrors.New(dErrors.CodeUnprocessableEntity, "rating must be greater than 0 if provided")
	}
	return nil
}

// FullNameCount is one row of the group-by-full-name report.
type FullNameCount struct {
	FullName string `json:"full_name"`
	Count    int64  `json:"count"`
}

// MergeCommand combines two organizations into a new one described by
// Organization. Unset numeric fields are derived from the sources.
type MergeCommand struct {
	FirstID      *id.OrganizationID
	SecondID     *id.OrganizationID
	Organization *OrganizationInput
}
