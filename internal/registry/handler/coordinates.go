package handler

import (
	"net/http"

	"orgatlas/internal/registry/models"
	id "orgatlas/pkg/domain"
	"orgatlas/pkg/platform/httputil"
	"orgatlas/pkg/requestcontext"
)

func (h *Handler) handleCreateCoordinates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[CoordinatesRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	c, err := h.service.CreateCoordinates(ctx, req.Input())
	if err != nil {
		h.fail(w, r, "create coordinates", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) handleUpdateCoordinates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	coordID, err := pathID(r, id.ParseCoordinatesID)
	if err != nil {
		h.fail(w, r, "update coordinates", err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[CoordinatesRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	c, err := h.service.UpdateCoordinates(ctx, coordID, req.Input())
	if err != nil {
		h.fail(w, r, "update coordinates", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) handleGetCoordinates(w http.ResponseWriter, r *http.Request) {
	coordID, err := pathID(r, id.ParseCoordinatesID)
	if err != nil {
		h.fail(w, r, "get coordinates", err)
		return
	}
	c, err := h.service.GetCoordinates(r.Context(), coordID)
	if err != nil {
		h.fail(w, r, "get coordinates", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) handleDeleteCoordinates(w http.ResponseWriter, r *http.Request) {
	coordID, err := pathID(r, id.ParseCoordinatesID)
	if err != nil {
		h.fail(w, r, "delete coordinates", err)
		return
	}
	c, err := h.service.DeleteCoordinates(r.Context(), coordID)
	if err != nil {
		h.fail(w, r, "delete coordinates", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) handleListCoordinates(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		h.fail(w, r, "list coordinates", err)
		return
	}
	res, err := h.service.ListCoordinates(r.Context(), page)
	if err != nil {
		h.fail(w, r, "list coordinates", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toPage(res, identity[models.Coordinates]))
}
