package services

import (
	"archive/zip"
	"io"

	"github.com/klauspost/compress/flate"

	"mediabank/internal/database"
	"mediabank/internal/logger"
)

// ExportService streams bulk ZIP archives of stored media.
type ExportService struct {
	app    AppState
	logger *logger.Logger
}

// NewExportService creates a new export service instance.
func NewExportService(app AppState, log *logger.Logger) *ExportService {
	return &ExportService{app: app, logger: log}
}

// ExportArchive writes a ZIP of the given record ids to w, one entry per
// record named by its stored handle. Ids without a record and records
// whose physical file is missing are silently skipped — the archive just
// omits them. Entries are streamed straight from the file store; nothing
// is buffered in memory.
func (s *ExportService) ExportArchive(ids []int64, w io.Writer) error {
	if len(ids) == 0 {
		return invalidRequest("ids is required")
	}

	records, err := database.GetMediaRecordsByIDs(s.app.GetDB(), ids)
	if err != nil {
		s.logger.Error("ExportService: record resolution failed: %v", err)
		return storageFailure(err)
	}

	zw := zip.NewWriter(w)
	// Media files are already compressed; best-speed flate keeps the
	// archive streaming fast without fighting the codecs.
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestSpeed)
	})

	written := 0
	for i := range records {
		ok, err := s.addEntry(zw, &records[i])
		if err != nil {
			// Write errors mean the consumer is gone or the stream is
			// broken; nothing sensible can follow them.
			zw.Close()
			return err
		}
		if ok {
			written++
		}
	}

	if err := zw.Close(); err != nil {
		return storageFailure(err)
	}

	s.logger.Info("ExportService: archived %d of %d requested records", written, len(ids))
	return nil
}

// addEntry copies one stored file into the archive. A missing physical
// file is skipped (false, nil); a stream error aborts the export.
func (s *ExportService) addEntry(zw *zip.Writer, rec *database.MediaRecord) (bool, error) {
	f, err := s.app.GetFileStore().Open(rec.StoredName)
	if err != nil {
		s.logger.Warn("ExportService: skipping %s (id %d): %v", rec.StoredName, rec.ID, err)
		return false, nil
	}
	defer f.Close()

	entry, err := zw.Create(rec.StoredName)
	if err != nil {
		return false, storageFailure(err)
	}
	if _, err := io.Copy(entry, f); err != nil {
		return false, storageFailure(err)
	}
	return true, nil
}
