package services

import (
	"mediabank/internal/database"
	"mediabank/internal/logger"
)

// EventService derives event groupings from the media ledger. Events are
// never stored; every listing is a fresh aggregation.
type EventService struct {
	app    AppState
	logger *logger.Logger
}

// NewEventService creates a new event service instance.
func NewEventService(app AppState, log *logger.Logger) *EventService {
	return &EventService{app: app, logger: log}
}

// EventInfo is the client-facing view of a derived event.
type EventInfo struct {
	Name       string `json:"name"`
	MediaCount int64  `json:"mediaCount"`
	LastUpload string `json:"lastUpload"`
}

// ListEvents groups the owner's ledger by event label, most recent
// upload first.
func (s *EventService) ListEvents(ownerID int64) ([]EventInfo, error) {
	summaries, err := database.ListEvents(s.app.GetDB(), ownerID, 0)
	if err != nil {
		s.logger.Error("EventService: aggregation failed for account %d: %v", ownerID, err)
		return nil, storageFailure(err)
	}

	events := make([]EventInfo, 0, len(summaries))
	for _, sum := range summaries {
		events = append(events, EventInfo{
			Name:       sum.Name,
			MediaCount: sum.MediaCount,
			LastUpload: sum.LastUpload,
		})
	}
	return events, nil
}
