package handler

import (
	"strings"

	"orgatlas/internal/registry/models"
	id "orgatlas/pkg/domain"
	dErrors "orgatlas/pkg/domain-errors"
)

// LocationRequest is the body for creating or overwriting a location, and the
// inline form of a nested town.
type LocationRequest struct {
	X    float32  `json:"x"`
	Y    float64  `json:"y"`
	Z    *float32 `json:"z"`
	Name *string  `json:"name"`
}

func (r *LocationRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	return r.Input().Validate()
}

func (r *LocationRequest) Input() models.LocationInput {
	return models.LocationInput{X: r.X, Y: r.Y, Z: r.Z, Name: r.Name}
}

type CoordinatesRequest struct {
	X int64   `json:"x"`
	Y float32 `json:"y"`
}

func (r *CoordinatesRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	return nil
}

func (r *CoordinatesRequest) Input() models.CoordinatesInput {
	return models.CoordinatesInput{X: r.X, Y: r.Y}
}

// AddressRequest carries an optional town either inline or by id.
type AddressRequest struct {
	ZipCode    *string          `json:"zip_code"`
	Location   *LocationRequest `json:"location"`
	LocationID *id.LocationID   `json:"location_id"`

	input models.AddressInput
}

func (r *AddressRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if err := positive("location_id", r.LocationID); err != nil {
		return err
	}
	var inline *models.LocationInput
	if r.Location != nil {
		if err := r.Location.Validate(); err != nil {
			return err
		}
		in := r.Location.Input()
		inline = &in
	}
	ref, err := models.NewRef("location", inline, r.LocationID)
	if err != nil {
		return err
	}
	r.input = models.AddressInput{ZipCode: r.ZipCode, Location: ref}
	return nil
}

// Input is valid after Validate.
func (r *AddressRequest) Input() models.AddressInput { return r.input }

// OrganizationRequest is the create/update body. Each nested reference is
// given either inline or by id, never both.
type OrganizationRequest struct {
	Name              string              `json:"name"`
	FullName          string              `json:"full_name"`
	Type              string              `json:"type"`
	Coordinates       *CoordinatesRequest `json:"coordinates"`
	CoordinatesID     *id.CoordinatesID   `json:"coordinates_id"`
	OfficialAddress   *AddressRequest     `json:"official_address"`
	OfficialAddressID *id.AddressID       `json:"official_address_id"`
	PostalAddress     *AddressRequest     `json:"postal_address"`
	PostalAddressID   *id.AddressID       `json:"postal_address_id"`
	AnnualTurnover    *float64            `json:"annual_turnover"`
	EmployeesCount    *int32              `json:"employees_count"`
	Rating            *float32            `json:"rating"`

	input models.OrganizationInput
}

func (r *OrganizationRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Name = strings.TrimSpace(r.Name)
	r.FullName = strings.TrimSpace(r.FullName)

	in := models.OrganizationInput{
		Name:           r.Name,
		FullName:       r.FullName,
		AnnualTurnover: r.AnnualTurnover,
		EmployeesCount: r.EmployeesCount,
		Rating:         r.Rating,
	}
	if r.Type != "" {
		t, err := models.ParseOrganizationType(strings.ToUpper(strings.TrimSpace(r.Type)))
		if err != nil {
			return err
		}
		in.Type = t
	}

	if err := positive("coordinates_id", r.CoordinatesID); err != nil {
		return err
	}
	var coords *models.CoordinatesInput
	if r.Coordinates != nil {
		c := r.Coordinates.Input()
		coords = &c
	}
	coordsRef, err := models.NewRef("coordinates", coords, r.CoordinatesID)
	if err != nil {
		return err
	}
	in.Coordinates = coordsRef

	if in.OfficialAddress, err = addressRef("official_address", r.OfficialAddress, r.OfficialAddressID); err != nil {
		return err
	}
	if in.PostalAddress, err = addressRef("postal_address", r.PostalAddress, r.PostalAddressID); err != nil {
		return err
	}
	r.input = in
	return nil
}

// Input is valid after Validate.
func (r *OrganizationRequest) Input() models.OrganizationInput { return r.input }

func addressRef(field string, payload *AddressRequest, addrID *id.AddressID) (models.AddressRef, error) {
	if err := positive(field+"_id", addrID); err != nil {
		return models.AddressRef{}, err
	}
	var inline *models.AddressInput
	if payload != nil {
		if err := payload.Validate(); err != nil {
			return models.AddressRef{}, err
		}
		in := payload.Input()
		inline = &in
	}
	return models.NewRef(field, inline, addrID)
}

// MergeRequest is the body of POST /special-operation/merge.
type MergeRequest struct {
	FirstOrganizationID  *id.OrganizationID   `json:"first_organization_id"`
	SecondOrganizationID *id.OrganizationID   `json:"second_organization_id"`
	Organization         *OrganizationRequest `json:"organization"`
}

func (r *MergeRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if err := positive("first_organization_id", r.FirstOrganizationID); err != nil {
		return err
	}
	if err := positive("second_organization_id", r.SecondOrganizationID); err != nil {
		return err
	}
	if r.Organization != nil {
		return r.Organization.Validate()
	}
	return nil
}

func (r *MergeRequest) Command() models.MergeCommand {
	cmd := models.MergeCommand{FirstID: r.FirstOrganizationID, SecondID: r.SecondOrganizationID}
	if r.Organization != nil {
		in := r.Organization.Input()
		cmd.Organization = &in
	}
	return cmd
}

func positive[T id.ID](field string, v *T) error {
	if v != nil && *v <= 0 {
		return dErrors.Newf(dErrors.CodeBadRequest, "%s must be positive", field)
	}
	return nil
}
