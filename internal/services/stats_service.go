package services

import (
	"fmt"
	"strconv"
	"strings"

	"mediabank/internal/constants"
	"mediabank/internal/database"
	"mediabank/internal/logger"
)

// StatsService computes on-demand statistics from the ledger and file
// store. Nothing is cached or pre-aggregated; sizes come from a live
// stat of every handle so the numbers reflect the disk, not the ledger.
type StatsService struct {
	app    AppState
	logger *logger.Logger
}

// NewStatsService creates a new stats service instance.
func NewStatsService(app AppState, log *logger.Logger) *StatsService {
	return &StatsService{app: app, logger: log}
}

// UserStatsInfo is the per-school statistics view.
type UserStatsInfo struct {
	TotalFiles     int64            `json:"totalFiles"`
	TotalEvents    int64            `json:"totalEvents"`
	TotalSizeBytes int64            `json:"totalSizeBytes"`
	TotalSize      string           `json:"totalSize"`
	RecentEvents   []EventInfo      `json:"recentEvents"`
	FileTypes      map[string]int64 `json:"fileTypes"`
}

// GlobalStatsInfo is the admin-wide statistics view.
type GlobalStatsInfo struct {
	TotalSchools   int64  `json:"totalSchools"`
	ActiveSchools  int64  `json:"activeSchools"`
	TotalFiles     int64  `json:"totalFiles"`
	TotalEvents    int64  `json:"totalEvents"`
	TotalSizeBytes int64  `json:"totalSizeBytes"`
	TotalSize      string `json:"totalSize"`
}

// UserStats computes the owner's statistics in one pass.
func (s *StatsService) UserStats(ownerID int64) (*UserStatsInfo, error) {
	db := s.app.GetDB()

	totalFiles, err := database.CountMediaByOwner(db, ownerID)
	if err != nil {
		return nil, storageFailure(err)
	}
	totalEvents, err := database.CountDistinctEventsByOwner(db, ownerID)
	if err != nil {
		return nil, storageFailure(err)
	}

	handles, err := database.ListHandlesByOwner(db, ownerID)
	if err != nil {
		return nil, storageFailure(err)
	}
	totalSize := s.sumSizes(handles)

	summaries, err := database.ListEvents(db, ownerID, constants.RecentEventsLimit)
	if err != nil {
		return nil, storageFailure(err)
	}
	recent := make([]EventInfo, 0, len(summaries))
	for _, sum := range summaries {
		recent = append(recent, EventInfo{
			Name:       sum.Name,
			MediaCount: sum.MediaCount,
			LastUpload: sum.LastUpload,
		})
	}

	typeCounts, err := database.FileTypeCountsByOwner(db, ownerID)
	if err != nil {
		return nil, storageFailure(err)
	}
	fileTypes := make(map[string]int64, len(typeCounts))
	for _, tc := range typeCounts {
		fileTypes[tc.FileType] = tc.Count
	}

	return &UserStatsInfo{
		TotalFiles:     totalFiles,
		TotalEvents:    totalEvents,
		TotalSizeBytes: totalSize,
		TotalSize:      FormatSize(totalSize),
		RecentEvents:   recent,
		FileTypes:      fileTypes,
	}, nil
}

// GlobalStats computes system-wide statistics across all schools.
func (s *StatsService) GlobalStats() (*GlobalStatsInfo, error) {
	db := s.app.GetDB()

	totalSchools, err := database.CountSchools(db)
	if err != nil {
		return nil, storageFailure(err)
	}
	activeSchools, err := database.CountActiveOwners(db)
	if err != nil {
		return nil, storageFailure(err)
	}
	totalFiles, err := database.CountAllMedia(db)
	if err != nil {
		return nil, storageFailure(err)
	}
	totalEvents, err := database.CountDistinctEventsAll(db)
	if err != nil {
		return nil, storageFailure(err)
	}

	handles, err := database.ListAllHandles(db)
	if err != nil {
		return nil, storageFailure(err)
	}
	totalSize := s.sumSizes(handles)

	return &GlobalStatsInfo{
		TotalSchools:   totalSchools,
		ActiveSchools:  activeSchools,
		TotalFiles:     totalFiles,
		TotalEvents:    totalEvents,
		TotalSizeBytes: totalSize,
		TotalSize:      FormatSize(totalSize),
	}, nil
}

// sumSizes stats every handle against the file store. A handle whose
// physical file cannot be statted is logged and skipped; a partially
// missing store must not break the stats endpoint.
func (s *StatsService) sumSizes(handles []string) int64 {
	store := s.app.GetFileStore()
	var total int64
	for _, handle := range handles {
		size, err := store.Stat(handle)
		if err != nil {
			s.logger.Warn("StatsService: failed to stat %s: %v", handle, err)
			continue
		}
		total += size
	}
	return total
}

// sizeUnits stops at GB: school media collections do not reach TB.
var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatSize renders a byte count using the largest unit that keeps the
// magnitude under 1024, rounded to two decimals with trailing zeros
// trimmed. Zero is "0 Bytes".
func FormatSize(bytes int64) string {
	if bytes == 0 {
		return "0 Bytes"
	}

	value := float64(bytes)
	unit := 0
	for value >= 1024 && unit < len(sizeUnits)-1 {
		value /= 1024
		unit++
	}

	rounded := strconv.FormatFloat(value, 'f', 2, 64)
	rounded = strings.TrimRight(rounded, "0")
	rounded = strings.TrimRight(rounded, ".")
	return fmt.Sprintf("%s %s", rounded, sizeUnits[unit])
}
