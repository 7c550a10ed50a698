package handler

import (
	"net/http"

	"orgatlas/internal/registry/models"
	id "orgatlas/pkg/domain"
	"orgatlas/pkg/platform/httputil"
	"orgatlas/pkg/requestcontext"
)

func (h *Handler) handleCreateLocation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[LocationRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	loc, err := h.service.CreateLocation(ctx, req.Input())
	if err != nil {
		h.fail(w, r, "create location", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, loc)
}

func (h *Handler) handleUpdateLocation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	locID, err := pathID(r, id.ParseLocationID)
	if err != nil {
		h.fail(w, r, "update location", err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[LocationRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	loc, err := h.service.UpdateLocation(ctx, locID, req.Input())
	if err != nil {
		h.fail(w, r, "update location", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, loc)
}

func (h *Handler) handleGetLocation(w http.ResponseWriter, r *http.Request) {
	locID, err := pathID(r, id.ParseLocationID)
	if err != nil {
		h.fail(w, r, "get location", err)
		return
	}
	loc, err := h.service.GetLocation(r.Context(), locID)
	if err != nil {
		h.fail(w, r, "get location", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, loc)
}

func (h *Handler) handleDeleteLocation(w http.ResponseWriter, r *http.Request) {
	locID, err := pathID(r, id.ParseLocationID)
	if err != nil {
		h.fail(w, r, "delete location", err)
		return
	}
	loc, err := h.service.DeleteLocation(r.Context(), locID)
	if err != nil {
		h.fail(w, r, "delete location", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, loc)
}

func (h *Handler) handleListLocations(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		h.fail(w, r, "list locations", err)
		return
	}
	filter := models.LocationFilter{NameContains: optionalParam(r, "name_contains")}
	res, err := h.service.ListLocations(r.Context(), filter, page)
	if err != nil {
		h.fail(w, r, "list locations", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toPage(res, identity[models.Location]))
}
