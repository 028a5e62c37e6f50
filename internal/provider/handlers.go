package provider

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"wsync/internal/asset"
	"wsync/internal/checksum"
	"wsync/internal/source"
	"wsync/internal/version"
)

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Info(),
	})
}

// handleGetAsset serves GET /assets/:checksum?kind=K&owner=ID.
func (s *Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}

	hexSum := strings.TrimPrefix(r.URL.Path, "/assets/")
	sum, err := checksum.Parse(hexSum)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	path := asset.Path{
		Kind:  asset.Kind(r.URL.Query().Get("kind")),
		Owner: r.URL.Query().Get("owner"),
	}
	rec, err := s.store.GetAsset(r.Context(), path, sum)
	if err != nil {
		s.writeLookupError(w, err, sum)
		return
	}

	writeJSON(w, http.StatusOK, source.WireAsset{
		Checksum: sum,
		Kind:     string(rec.Kind),
		Data:     rec.Data,
	})
}

// handleBatchAssets serves POST /assets/batch. All requested checksums must
// resolve; a single miss fails the whole call with the missing checksum
// named in the error body.
func (s *Server) handleBatchAssets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}

	var req source.BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid batch request: "+err.Error(), "")
		return
	}

	path := asset.Path{Kind: asset.Kind(req.Kind), Owner: req.Owner}
	resp := source.BatchResponse{Assets: make([]source.WireAsset, 0, len(req.Checksums))}

	err := s.store.GetAssets(r.Context(), path, req.Checksums, func(sum checksum.Checksum, rec asset.Record) {
		resp.Assets = append(resp.Assets, source.WireAsset{
			Checksum: sum,
			Kind:     string(rec.Kind),
			Data:     rec.Data,
		})
	})
	if err != nil {
		var notFound *source.NotFoundError
		if errors.As(err, &notFound) {
			s.writeLookupError(w, err, notFound.Checksum)
		} else {
			s.writeLookupError(w, err, checksum.Zero)
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// writeLookupError maps store errors to HTTP statuses.
func (s *Server) writeLookupError(w http.ResponseWriter, err error, sum checksum.Checksum) {
	switch {
	case errors.Is(err, source.ErrAssetNotFound):
		writeError(w, http.StatusNotFound, "asset not found", sum.String())
	case errors.Is(err, source.ErrChecksumMismatch):
		s.logger.Error("Stored asset failed verification", "checksum", sum.String(), "error", err.Error())
		writeError(w, http.StatusInternalServerError, "asset verification failed", sum.String())
	default:
		s.logger.Error("Asset lookup failed", "checksum", sum.String(), "error", err.Error())
		writeError(w, http.StatusInternalServerError, "asset lookup failed", "")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message, sum string) {
	writeJSON(w, status, source.ErrorResponse{Error: message, Checksum: sum})
}
