package server

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"mediabank/internal/auth"
	"mediabank/internal/constants"
	"mediabank/internal/sanitize"
	"mediabank/internal/services"
)

// multipartMemoryLimit is the in-memory buffer for multipart parsing;
// larger files spill to temp files.
const multipartMemoryLimit = 32 << 20

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	claims := s.authorize(w, r, auth.OpUploadMedia)
	if claims == nil {
		return
	}

	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid multipart body", constants.ErrCodeInvalidRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File[constants.FormFieldFiles]
	files := make([]services.IngestFile, 0, len(headers))
	for _, header := range headers {
		h := header
		files = append(files, services.IngestFile{
			Name: h.Filename,
			Size: h.Size,
			Open: func() (io.ReadCloser, error) { return h.Open() },
		})
	}

	result, err := s.app.Services.Media.Ingest(&services.IngestRequest{
		OwnerID:   claims.AccountID,
		EventName: strings.TrimSpace(r.FormValue(constants.FormFieldEventName)),
		Remarks:   r.FormValue(constants.FormFieldRemarks),
		Tags:      r.FormValue(constants.FormFieldTags),
		Files:     files,
	})
	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	for _, info := range result.Uploaded {
		s.metrics.RecordUpload(true, info.SizeBytes)
	}
	for range result.Failed {
		s.metrics.RecordUpload(false, 0)
	}

	WriteJSON(w, http.StatusCreated, result)
}

func (s *Server) handleListMedia(w http.ResponseWriter, r *http.Request) {
	claims := s.authorize(w, r, auth.OpListOwnMedia)
	if claims == nil {
		return
	}

	query := r.URL.Query()
	limit := 0
	if raw := query.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "limit must be an integer", constants.ErrCodeInvalidRequest)
			return
		}
		limit = parsed
	}

	records, err := s.app.Services.Media.Query(claims.AccountID,
		query.Get("event"), query.Get("sortBy"), query.Get("order"), limit)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}
	WriteSuccess(w, records)
}

func (s *Server) handleDownloadMedia(w http.ResponseWriter, r *http.Request) {
	claims := s.authorize(w, r, auth.OpDownloadOwnMedia)
	if claims == nil {
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid media id", constants.ErrCodeInvalidRequest)
		return
	}

	isAdmin := claims.Role == constants.RoleAdmin
	rec, err := s.app.Services.Media.GetRecordForDownload(claims.AccountID, isAdmin, id)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}

	f, err := s.app.FileStore.Open(rec.StoredName)
	if err != nil {
		s.logger.Error("Download: stored file %s unreadable: %v", rec.StoredName, err)
		WriteError(w, http.StatusNotFound, "stored file not found", constants.ErrCodeNotFound)
		return
	}
	defer f.Close()

	size, err := s.app.FileStore.Stat(rec.StoredName)
	if err == nil {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	}

	name := sanitize.ContentDispositionFilename(rec.OriginalName)
	if name == "" {
		name = rec.StoredName
	}
	w.Header().Set("Content-Type", mimeTypeFor(rec.FileType))
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))

	if _, err := io.Copy(w, f); err != nil {
		// Client went away mid-stream; nothing left to write.
		s.logger.Debug("Download: stream aborted for %s: %v", rec.StoredName, err)
	}
}

// mimeTypeFor maps a ledger file_type (".jpg") to a response MIME type.
func mimeTypeFor(fileType string) string {
	ext := strings.TrimPrefix(fileType, ".")
	if mt, ok := constants.ExtensionMimeTypes[ext]; ok {
		return mt
	}
	return constants.DefaultMimeType
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	claims := s.authorize(w, r, auth.OpListEvents)
	if claims == nil {
		return
	}

	events, err := s.app.Services.Event.ListEvents(claims.AccountID)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}
	WriteSuccess(w, events)
}

func (s *Server) handleSuggestEvents(w http.ResponseWriter, r *http.Request) {
	claims := s.authorize(w, r, auth.OpSuggestEvents)
	if claims == nil {
		return
	}

	names, err := s.app.Services.Media.SuggestEventNames(claims.AccountID, r.URL.Query().Get("query"))
	if err != nil {
		s.handleServiceError(w, err)
		return
	}
	WriteSuccess(w, names)
}

func (s *Server) handleUserStats(w http.ResponseWriter, r *http.Request) {
	claims := s.authorize(w, r, auth.OpOwnStats)
	if claims == nil {
		return
	}

	stats, err := s.app.Services.Stats.UserStats(claims.AccountID)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}
	WriteSuccess(w, stats)
}
