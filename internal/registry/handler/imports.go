package handler

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"orgatlas/internal/registry/models"
	dErrors "orgatlas/pkg/domain-errors"
	"orgatlas/pkg/platform/httputil"
)

// maxImportBytes caps an import body, inline or uploaded.
const maxImportBytes = 10 << 20

// handleImport accepts a JSON array of organizations, either as the request
// body or as the "file" part of a multipart form.
func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	body, err := importBody(r)
	if err != nil {
		h.fail(w, r, "import", err)
		return
	}
	defer body.Close()

	entries, invalid, err := decodeImport(io.LimitReader(body, maxImportBytes))
	if err != nil {
		h.fail(w, r, "import", err)
		return
	}
	if invalid != nil {
		h.fail(w, r, "import", h.service.RejectImport(r.Context(), invalid.total, invalid.index, invalid.err))
		return
	}
	record, err := h.service.Import(r.Context(), entries)
	if err != nil {
		h.fail(w, r, "import", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toImportHistoryResponse(*record))
}

func importBody(r *http.Request) (io.ReadCloser, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnsupportedMedia, "content type must be application/json or multipart/form-data")
	}
	switch mediaType {
	case "application/json":
		return r.Body, nil
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxImportBytes); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid multipart form")
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, dErrors.New(dErrors.CodeBadRequest, "file is required")
		}
		if !isJSONPart(header.Header.Get("Content-Type"), header.Filename) {
			file.Close()
			return nil, dErrors.New(dErrors.CodeUnsupportedMedia, "file must be JSON")
		}
		return file, nil
	default:
		return nil, dErrors.New(dErrors.CodeUnsupportedMedia, "content type must be application/json or multipart/form-data")
	}
}

func isJSONPart(contentType, filename string) bool {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil && mediaType == "application/json" {
		return true
	}
	return strings.EqualFold(filepath.Ext(filename), ".json")
}

// invalidEntry is the first import entry that failed request validation.
type invalidEntry struct {
	total int
	index int
	err   error
}

// decodeImport decodes and validates every entry. A body that is not a JSON
// array fails outright; the first entry that fails validation is returned as
// invalid so the service can record it.
func decodeImport(r io.Reader) ([]models.OrganizationInput, *invalidEntry, error) {
	var reqs []*OrganizationRequest
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&reqs); err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "import body must be a JSON array of organizations")
	}
	entries := make([]models.OrganizationInput, 0, len(reqs))
	for i, req := range reqs {
		if err := validateEntry(req); err != nil {
			return nil, &invalidEntry{total: len(reqs), index: i, err: err}, nil
		}
		entries = append(entries, req.Input())
	}
	return entries, nil, nil
}

func validateEntry(req *OrganizationRequest) error {
	err := req.Validate()
	if err != nil && !dErrors.IsDomain(err) {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, err.Error())
	}
	return err
}

func (h *Handler) handleImportHistory(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		h.fail(w, r, "list import history", err)
		return
	}
	res, err := h.service.ListImportHistory(r.Context(), page)
	if err != nil {
		h.fail(w, r, "list import history", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toPage(res, toImportHistoryResponse))
}
