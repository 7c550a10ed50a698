package handler

import (
	"net/http"

	"orgatlas/internal/registry/models"
	id "orgatlas/pkg/domain"
	"orgatlas/pkg/platform/httputil"
	"orgatlas/pkg/requestcontext"
)

func (h *Handler) handleCreateOrganization(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[OrganizationRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	org, err := h.service.CreateOrganization(ctx, req.Input())
	if err != nil {
		h.fail(w, r, "create organization", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toOrganizationResponse(org))
}

func (h *Handler) handleUpdateOrganization(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orgID, err := pathID(r, id.ParseOrganizationID)
	if err != nil {
		h.fail(w, r, "update organization", err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[OrganizationRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	org, err := h.service.UpdateOrganization(ctx, orgID, req.Input())
	if err != nil {
		h.fail(w, r, "update organization", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toOrganizationResponse(org))
}

func (h *Handler) handleGetOrganization(w http.ResponseWriter, r *http.Request) {
	orgID, err := pathID(r, id.ParseOrganizationID)
	if err != nil {
		h.fail(w, r, "get organization", err)
		return
	}
	org, err := h.service.GetOrganization(r.Context(), orgID)
	if err != nil {
		h.fail(w, r, "get organization", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toOrganizationResponse(org))
}

func (h *Handler) handleDeleteOrganization(w http.ResponseWriter, r *http.Request) {
	orgID, err := pathID(r, id.ParseOrganizationID)
	if err != nil {
		h.fail(w, r, "delete organization", err)
		return
	}
	org, err := h.service.DeleteOrganization(r.Context(), orgID)
	if err != nil {
		h.fail(w, r, "delete organization", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toOrganizationResponse(org))
}

func (h *Handler) handleListOrganizations(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		h.fail(w, r, "list organizations", err)
		return
	}
	filter := models.OrganizationFilter{
		NameContains:     optionalParam(r, "name_contains"),
		FullNameContains: optionalParam(r, "full_name_contains"),
	}
	res, err := h.service.ListOrganizations(r.Context(), filter, page)
	if err != nil {
		h.fail(w, r, "list organizations", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toPage(res, func(v models.OrganizationView) OrganizationResponse {
		return toOrganizationResponse(&v)
	}))
}
