package handler

import (
	"net/http"

	id "orgatlas/pkg/domain"
	dErrors "orgatlas/pkg/domain-errors"
	"orgatlas/pkg/platform/httputil"
	"orgatlas/pkg/requestcontext"
)

func (h *Handler) handleMaxOfficialAddress(w http.ResponseWriter, r *http.Request) {
	org, err := h.service.OrganizationWithMaxOfficialAddress(r.Context())
	if err != nil {
		h.fail(w, r, "max official address", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toOrganizationResponse(org))
}

func (h *Handler) handleGroupByFullName(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.CountByFullName(r.Context())
	if err != nil {
		h.fail(w, r, "group by full name", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, counts)
}

func (h *Handler) handleFullNameContains(w http.ResponseWriter, r *http.Request) {
	substr := optionalParam(r, "substring")
	if substr == nil {
		h.fail(w, r, "full name contains", dErrors.New(dErrors.CodeBadRequest, "substring is required"))
		return
	}
	orgs, err := h.service.FindByFullNameContaining(r.Context(), *substr)
	if err != nil {
		h.fail(w, r, "full name contains", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toOrganizationResponses(orgs))
}

func (h *Handler) handleIncrementEmployees(w http.ResponseWriter, r *http.Request) {
	orgID, err := pathID(r, id.ParseOrganizationID)
	if err != nil {
		h.fail(w, r, "increment employees", err)
		return
	}
	org, err := h.service.IncrementEmployees(r.Context(), orgID)
	if err != nil {
		h.fail(w, r, "increment employees", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toOrganizationResponse(org))
}

func (h *Handler) handleMerge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[MergeRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	org, err := h.service.MergeOrganizations(ctx, req.Command())
	if err != nil {
		h.fail(w, r, "merge organizations", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toOrganizationResponse(org))
}
