package services

import (
	"bytes"
	"database/sql"
	"io"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"mediabank/internal/config"
	"mediabank/internal/database"
	"mediabank/internal/logger"
	"mediabank/internal/storage"
)

// testApp is a minimal AppState backed by an in-memory database and a
// temp-dir file store.
type testApp struct {
	db        *sql.DB
	store     *storage.FileStore
	cfg       *config.Config
	log       *logger.Logger
	startedAt time.Time
}

func (a *testApp) GetDB() *sql.DB                   { return a.db }
func (a *testApp) GetFileStore() *storage.FileStore { return a.store }
func (a *testApp) GetConfig() *config.Config        { return a.cfg }
func (a *testApp) GetLogger() *logger.Logger        { return a.log }
func (a *testApp) GetStartedAt() time.Time          { return a.startedAt }

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec(database.GetSchema()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create file store: %v", err)
	}

	cfg := &config.Config{}
	cfg.ApplyDefaults()

	return &testApp{
		db:        db,
		store:     store,
		cfg:       cfg,
		log:       logger.NewLogger("error"),
		startedAt: time.Now(),
	}
}

func newTestServices(t *testing.T) (*Services, *testApp) {
	t.Helper()
	app := newTestApp(t)
	return NewServices(app, app.log), app
}

// ingestFile builds an in-memory upload for tests.
func ingestFile(name, content string) IngestFile {
	return IngestFile{
		Name: name,
		Size: int64(len(content)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader([]byte(content))), nil
		},
	}
}

// mustRegister creates a school account and returns its id.
func mustRegister(t *testing.T, svc *Services, username string) int64 {
	t.Helper()
	info, err := svc.Account.Register(username, "pass123", "")
	if err != nil {
		t.Fatalf("Register(%s) failed: %v", username, err)
	}
	return info.ID
}

// mustIngest uploads one valid file for the account and event.
func mustIngest(t *testing.T, svc *Services, ownerID int64, event, name string) MediaInfo {
	t.Helper()
	result, err := svc.Media.Ingest(&IngestRequest{
		OwnerID:   ownerID,
		EventName: event,
		Files:     []IngestFile{ingestFile(name, "content of "+name)},
	})
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if len(result.Uploaded) != 1 {
		t.Fatalf("expected 1 uploaded file, got %+v", result)
	}
	return result.Uploaded[0]
}
