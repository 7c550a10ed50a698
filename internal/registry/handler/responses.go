package handler

import (
	"time"

	"orgatlas/internal/registry/models"
	id "orgatlas/pkg/domain"
)

// OrganizationResponse nests the resolved references in place of their ids.
type OrganizationResponse struct {
	ID              id.OrganizationID  `json:"id"`
	Name            string             `json:"name"`
	FullName        string             `json:"full_name"`
	Type            string             `json:"type"`
	Coordinates     models.Coordinates `json:"coordinates"`
	OfficialAddress models.AddressView `json:"official_address"`
	PostalAddress   models.AddressView `json:"postal_address"`
	AnnualTurnover  float64            `json:"annual_turnover"`
	EmployeesCount  *int32             `json:"employees_count"`
	Rating          *float32           `json:"rating"`
	CreationDate    time.Time          `json:"creation_date"`
}

func toOrganizationResponse(v *models.OrganizationView) OrganizationResponse {
	return OrganizationResponse{
		ID:              v.ID,
		Name:            v.Name,
		FullName:        v.FullName,
		Type:            v.Type.String(),
		Coordinates:     v.Coordinates,
		OfficialAddress: v.OfficialAddress,
		PostalAddress:   v.PostalAddress,
		AnnualTurnover:  v.AnnualTurnover,
		EmployeesCount:  v.EmployeesCount,
		Rating:          v.Rating,
		CreationDate:    v.CreationDate,
	}
}

func toOrganizationResponses(views []models.OrganizationView) []OrganizationResponse {
	out := make([]OrganizationResponse, 0, len(views))
	for i := range views {
		out = append(out, toOrganizationResponse(&views[i]))
	}
	return out
}

// PageResponse is one page of a listing.
type PageResponse[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	Size       int `json:"size"`
	TotalPages int `json:"total_pages"`
}

func toPage[T, R any](res models.PageResult[T], conv func(T) R) PageResponse[R] {
	items := make([]R, 0, len(res.Items))
	for _, item := range res.Items {
		items = append(items, conv(item))
	}
	pages := 0
	if res.Size > 0 {
		pages = (res.Total + res.Size - 1) / res.Size
	}
	return PageResponse[R]{Items: items, Total: res.Total, Page: res.Page, Size: res.Size, TotalPages: pages}
}

func identity[T any](v T) T { return v }

// ImportHistoryResponse renders the status by name.
type ImportHistoryResponse struct {
	ID           id.ImportID `json:"id"`
	CreationDate time.Time   `json:"creation_date"`
	Status       string      `json:"status"`
	Counter      int         `json:"counter"`
	Message      string      `json:"message,omitempty"`
}

func toImportHistoryResponse(h models.ImportHistory) ImportHistoryResponse {
	return ImportHistoryResponse{
		ID:           h.ID,
		CreationDate: h.CreationDate,
		Status:       h.Status.String(),
		Counter:      h.Counter,
		Message:      h.Message,
	}
}
