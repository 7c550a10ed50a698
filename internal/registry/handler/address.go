package handler

import (
	"net/http"
	"strconv"

	"orgatlas/internal/registry/models"
	id "orgatlas/pkg/domain"
	dErrors "orgatlas/pkg/domain-errors"
	"orgatlas/pkg/platform/httputil"
	"orgatlas/pkg/requestcontext"
)

func (h *Handler) handleCreateAddress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[AddressRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	addr, err := h.service.CreateAddress(ctx, req.Input())
	if err != nil {
		h.fail(w, r, "create address", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, addr)
}

func (h *Handler) handleUpdateAddress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	addrID, err := pathID(r, id.ParseAddressID)
	if err != nil {
		h.fail(w, r, "update address", err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[AddressRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	addr, err := h.service.UpdateAddress(ctx, addrID, req.Input())
	if err != nil {
		h.fail(w, r, "update address", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, addr)
}

func (h *Handler) handleGetAddress(w http.ResponseWriter, r *http.Request) {
	addrID, err := pathID(r, id.ParseAddressID)
	if err != nil {
		h.fail(w, r, "get address", err)
		return
	}
	addr, err := h.service.GetAddress(r.Context(), addrID)
	if err != nil {
		h.fail(w, r, "get address", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, addr)
}

// handleDeleteAddress takes either ?force=true or ?redirect_to={id}.
func (h *Handler) handleDeleteAddress(w http.ResponseWriter, r *http.Request) {
	addrID, err := pathID(r, id.ParseAddressID)
	if err != nil {
		h.fail(w, r, "delete address", err)
		return
	}
	cmd, err := deleteAddressCommand(r)
	if err != nil {
		h.fail(w, r, "delete address", err)
		return
	}
	addr, err := h.service.DeleteAddress(r.Context(), addrID, cmd)
	if err != nil {
		h.fail(w, r, "delete address", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, addr)
}

func deleteAddressCommand(r *http.Request) (models.DeleteAddressCommand, error) {
	var cmd models.DeleteAddressCommand
	if v := optionalParam(r, "force"); v != nil && *v != "" {
		force, err := strconv.ParseBool(*v)
		if err != nil {
			return cmd, dErrors.New(dErrors.CodeBadRequest, "force must be a boolean")
		}
		cmd.Force = force
	}
	if v := optionalParam(r, "redirect_to"); v != nil && *v != "" {
		target, err := id.ParseAddressID(*v)
		if err != nil {
			return cmd, err
		}
		cmd.RedirectTo = &target
	}
	return cmd, nil
}

func (h *Handler) handleListAddresses(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		h.fail(w, r, "list addresses", err)
		return
	}
	filter := models.AddressFilter{ZipCodeContains: optionalParam(r, "zip_code_contains")}
	res, err := h.service.ListAddresses(r.Context(), filter, page)
	if err != nil {
		h.fail(w, r, "list addresses", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toPage(res, identity[models.AddressView]))
}

func (h *Handler) handleListAddressesWithoutLocation(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		h.fail(w, r, "list addresses without location", err)
		return
	}
	res, err := h.service.ListAddressesWithoutLocation(r.Context(), page)
	if err != nil {
		h.fail(w, r, "list addresses without location", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toPage(res, identity[models.AddressView]))
}
