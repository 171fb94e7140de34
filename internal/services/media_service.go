package services

import (
	"io"
	"time"

	"mediabank/internal/constants"
	"mediabank/internal/database"
	"mediabank/internal/logger"
	"mediabank/internal/sanitize"
)

// MediaService handles batch ingest and ledger queries.
type MediaService struct {
	app    AppState
	logger *logger.Logger
}

// NewMediaService creates a new media service instance.
func NewMediaService(app AppState, log *logger.Logger) *MediaService {
	return &MediaService{app: app, logger: log}
}

// MediaInfo is the client-facing view of a ledger record.
type MediaInfo struct {
	ID           int64  `json:"id"`
	StoredName   string `json:"storedName"`
	OriginalName string `json:"originalName"`
	FileType     string `json:"fileType"`
	EventName    string `json:"eventName"`
	Remarks      string `json:"remarks,omitempty"`
	Tags         string `json:"tags,omitempty"`
	Checksum     string `json:"checksum,omitempty"`
	SizeBytes    int64  `json:"sizeBytes"`
	UploadDate   string `json:"uploadDate"`
	Username     string `json:"username,omitempty"`
}

func mediaInfo(rec *database.MediaRecord) MediaInfo {
	return MediaInfo{
		ID:           rec.ID,
		StoredName:   rec.StoredName,
		OriginalName: rec.OriginalName,
		FileType:     rec.FileType,
		EventName:    rec.EventName,
		Remarks:      rec.Remarks,
		Tags:         rec.Tags,
		Checksum:     rec.Checksum,
		SizeBytes:    rec.SizeBytes,
		UploadDate:   rec.UploadDate,
		Username:     rec.Username,
	}
}

// IngestFile is one file of an upload batch. Open is called at most once.
type IngestFile struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

// IngestRequest is a validated upload batch bound to one event label.
type IngestRequest struct {
	OwnerID   int64
	EventName string
	Remarks   string
	Tags      string
	Files     []IngestFile
}

// IngestFailure reports one file that could not be ingested.
type IngestFailure struct {
	Name    string `json:"name"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// IngestResult reports the per-file outcome of a batch.
type IngestResult struct {
	Uploaded []MediaInfo     `json:"uploaded"`
	Failed   []IngestFailure `json:"failed,omitempty"`
}

// Ingest stores an upload batch. Request-level problems (missing event
// label, empty batch, oversized batch) fail wholesale before any side
// effect. Each file is then processed independently: a failure on one
// file never rolls back the others, and an invalid file leaves behind
// neither a stored file nor a ledger record.
func (s *MediaService) Ingest(req *IngestRequest) (*IngestResult, error) {
	cfg := s.app.GetConfig()

	if req.EventName == "" {
		return nil, invalidRequest("eventName is required")
	}
	if len(req.Files) == 0 {
		return nil, invalidRequest("at least one file is required")
	}
	if len(req.Files) > cfg.Upload.MaxFilesPerBatch {
		return nil, invalidRequest("too many files in one upload")
	}

	result := &IngestResult{}
	for i := range req.Files {
		info, failure := s.ingestOne(req, &req.Files[i])
		if failure != nil {
			result.Failed = append(result.Failed, *failure)
			continue
		}
		result.Uploaded = append(result.Uploaded, *info)
	}

	s.logger.Info("MediaService: ingest for account %d event %q: %d stored, %d failed",
		req.OwnerID, req.EventName, len(result.Uploaded), len(result.Failed))
	return result, nil
}

func (s *MediaService) ingestOne(req *IngestRequest, file *IngestFile) (*MediaInfo, *IngestFailure) {
	// Type check comes before any byte is written, so a rejected file
	// leaves no trace.
	ext := sanitize.Extension(file.Name)
	if !constants.AllowedUploadExtensions[ext] {
		return nil, &IngestFailure{
			Name:    file.Name,
			Code:    constants.ErrCodeInvalidFileType,
			Message: "file type not allowed",
		}
	}
	if file.Size > s.app.GetConfig().Upload.MaxFileBytes {
		return nil, &IngestFailure{
			Name:    file.Name,
			Code:    constants.ErrCodeFileTooLarge,
			Message: "file exceeds maximum size",
		}
	}

	reader, err := file.Open()
	if err != nil {
		s.logger.Error("MediaService: failed to open upload %q: %v", file.Name, err)
		return nil, &IngestFailure{
			Name:    file.Name,
			Code:    constants.ErrCodeStorageFailure,
			Message: "failed to read upload",
		}
	}
	defer reader.Close()

	stored, err := s.app.GetFileStore().Save(reader, file.Name)
	if err != nil {
		s.logger.Error("MediaService: failed to store upload %q: %v", file.Name, err)
		return nil, &IngestFailure{
			Name:    file.Name,
			Code:    constants.ErrCodeStorageFailure,
			Message: "failed to store file",
		}
	}

	rec := &database.MediaRecord{
		StoredName:   stored.Handle,
		OriginalName: sanitize.Filename(file.Name),
		FileType:     fileType(ext),
		EventName:    req.EventName,
		Remarks:      req.Remarks,
		Tags:         req.Tags,
		Checksum:     stored.Checksum,
		SizeBytes:    stored.Size,
		UploadDate:   time.Now().UTC().Format(constants.UploadDateFormat),
		AccountID:    req.OwnerID,
	}

	id, err := database.InsertMediaRecord(s.app.GetDB(), rec)
	if err != nil {
		// Undo the save so no orphaned file remains.
		if removeErr := s.app.GetFileStore().Remove(stored.Handle); removeErr != nil {
			s.logger.Error("MediaService: failed to remove orphaned file %s: %v", stored.Handle, removeErr)
		}
		s.logger.Error("MediaService: ledger insert failed for %q: %v", file.Name, err)
		return nil, &IngestFailure{
			Name:    file.Name,
			Code:    constants.ErrCodeStorageFailure,
			Message: "failed to record file",
		}
	}
	rec.ID = id

	info := mediaInfo(rec)
	return &info, nil
}

// fileType renders an extension as the ledger's file_type column value:
// lowercased with a leading dot.
func fileType(ext string) string {
	if ext == "" {
		return ""
	}
	return "." + ext
}

// Query returns the owner's records, optionally filtered by event label
// and sorted. Unknown sort keys are ignored rather than rejected.
func (s *MediaService) Query(ownerID int64, eventName, sortBy, order string, limit int) ([]MediaInfo, error) {
	records, err := database.QueryMedia(s.app.GetDB(), ownerID,
		database.MediaFilter{EventName: eventName},
		database.MediaSort{By: sortBy, Order: order}, limit)
	if err != nil {
		s.logger.Error("MediaService: query failed for account %d: %v", ownerID, err)
		return nil, storageFailure(err)
	}
	return mediaInfos(records), nil
}

// QueryAll returns the full ledger with owner usernames, newest first.
// Admin view.
func (s *MediaService) QueryAll() ([]MediaInfo, error) {
	records, err := database.QueryAllMedia(s.app.GetDB())
	if err != nil {
		s.logger.Error("MediaService: admin query failed: %v", err)
		return nil, storageFailure(err)
	}
	return mediaInfos(records), nil
}

func mediaInfos(records []database.MediaRecord) []MediaInfo {
	infos := make([]MediaInfo, 0, len(records))
	for i := range records {
		infos = append(infos, mediaInfo(&records[i]))
	}
	return infos
}

// SuggestEventNames returns up to 5 of the owner's event labels matching
// the partial string, most recently used first.
func (s *MediaService) SuggestEventNames(ownerID int64, partial string) ([]string, error) {
	names, err := database.SuggestEventNames(s.app.GetDB(), ownerID, partial, constants.EventSuggestionLimit)
	if err != nil {
		return nil, storageFailure(err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// GetRecordForDownload resolves a record id for a download. Schools only
// reach their own records; a foreign id reads as not found rather than
// forbidden so record ids are not probeable. The admin reaches any record.
func (s *MediaService) GetRecordForDownload(requesterID int64, isAdmin bool, recordID int64) (*database.MediaRecord, error) {
	rec, err := database.GetMediaRecordByID(s.app.GetDB(), recordID)
	if err != nil {
		return nil, storageFailure(err)
	}
	if rec == nil {
		return nil, ErrMediaNotFound
	}
	if !isAdmin && rec.AccountID != requesterID {
		return nil, ErrMediaNotFound
	}
	return rec, nil
}
