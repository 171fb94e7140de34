package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"mediabank/internal/auth"
	"mediabank/internal/constants"
)

func (s *Server) handleListSchools(w http.ResponseWriter, r *http.Request) {
	if s.authorize(w, r, auth.OpListSchools) == nil {
		return
	}

	schools, err := s.app.Services.Account.ListSchools()
	if err != nil {
		s.handleServiceError(w, err)
		return
	}
	WriteSuccess(w, schools)
}

type banRequest struct {
	Banned bool `json:"banned"`
}

func (s *Server) handleToggleBan(w http.ResponseWriter, r *http.Request) {
	if s.authorize(w, r, auth.OpToggleBan) == nil {
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid account id", constants.ErrCodeInvalidRequest)
		return
	}

	var req banRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON body", constants.ErrCodeInvalidRequest)
		return
	}

	if err := s.app.Services.Account.SetBanned(id, req.Banned); err != nil {
		s.handleServiceError(w, err)
		return
	}
	WriteSuccess(w, map[string]interface{}{
		"id":     id,
		"banned": req.Banned,
	})
}

func (s *Server) handleListAllMedia(w http.ResponseWriter, r *http.Request) {
	if s.authorize(w, r, auth.OpListAllMedia) == nil {
		return
	}

	records, err := s.app.Services.Media.QueryAll()
	if err != nil {
		s.handleServiceError(w, err)
		return
	}
	WriteSuccess(w, records)
}

func (s *Server) handleGlobalStats(w http.ResponseWriter, r *http.Request) {
	if s.authorize(w, r, auth.OpGlobalStats) == nil {
		return
	}

	stats, err := s.app.Services.Stats.GlobalStats()
	if err != nil {
		s.handleServiceError(w, err)
		return
	}
	WriteSuccess(w, stats)
}

type bulkExportRequest struct {
	IDs []int64 `json:"ids"`
}

func (s *Server) handleBulkExport(w http.ResponseWriter, r *http.Request) {
	if s.authorize(w, r, auth.OpBulkExport) == nil {
		return
	}

	var req bulkExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON body", constants.ErrCodeInvalidRequest)
		return
	}
	if len(req.IDs) == 0 {
		WriteError(w, http.StatusBadRequest, "ids is required", constants.ErrCodeInvalidRequest)
		return
	}

	// Headers go out before the first archive byte; errors past this
	// point can only abort the stream.
	w.Header().Set("Content-Type", constants.MimeTypeZIP)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s"`, constants.ExportArchiveName))

	if err := s.app.Services.Export.ExportArchive(req.IDs, w); err != nil {
		s.logger.Error("BulkExport: stream failed: %v", err)
	}
}
