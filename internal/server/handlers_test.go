package server

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediabank/internal/config"
	"mediabank/internal/database"
	"mediabank/internal/logger"
	"mediabank/internal/storage"
)

// newTestServer builds a server over a database opened exactly as in
// production (InitDatabase: pragmas included), so schema constraints
// behave the same here as on a real deployment.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	db, err := database.InitDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.ApplyDefaults()

	app := NewApp(cfg, logger.NewLogger("error"), db, store)
	return NewServer(app, ":0")
}

func doJSON(t *testing.T, s *Server, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

// registerAndLogin creates a school account and returns its token.
func registerAndLogin(t *testing.T, s *Server, username string) string {
	t.Helper()

	w := doJSON(t, s, http.MethodPost, "/api/register", "", map[string]string{
		"username": username, "password": "pass123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	return login(t, s, username, "pass123")
}

func login(t *testing.T, s *Server, username, password string) string {
	t.Helper()

	w := doJSON(t, s, http.MethodPost, "/api/login", "", map[string]string{
		"username": username, "password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	decodeBody(t, w, &resp)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

// uploadFiles posts a multipart batch under one event label.
func uploadFiles(t *testing.T, s *Server, token, event string, names ...string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("eventName", event))
	for _, name := range names {
		part, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte("content of " + name))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	decodeBody(t, w, &resp)
	assert.Equal(t, "ok", resp["status"])
}

func TestRegisterRejectsNonSchoolRole(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/register", "", map[string]string{
		"username": "sneaky", "password": "pass123", "role": "admin",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterDuplicateIsConflict(t *testing.T) {
	s := newTestServer(t)
	registerAndLogin(t, s, "riverside")

	w := doJSON(t, s, http.MethodPost, "/api/register", "", map[string]string{
		"username": "riverside", "password": "other",
	})
	require.Equal(t, http.StatusConflict, w.Code)

	var apiErr APIError
	decodeBody(t, w, &apiErr)
	assert.Equal(t, "USERNAME_TAKEN", apiErr.Code)
}

func TestAuthRequiredDistinguishesMissingAndInvalid(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/api/media", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	var apiErr APIError
	decodeBody(t, w, &apiErr)
	assert.Equal(t, "UNAUTHENTICATED", apiErr.Code)

	w = doJSON(t, s, http.MethodGet, "/api/media", "garbage-token", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	decodeBody(t, w, &apiErr)
	assert.Equal(t, "INVALID_TOKEN", apiErr.Code)
}

func TestSchoolForbiddenFromAdminEndpoints(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s, "riverside")

	for _, path := range []string{"/api/admin/schools", "/api/admin/media", "/api/admin/stats"} {
		w := doJSON(t, s, http.MethodGet, path, token, nil)
		require.Equal(t, http.StatusForbidden, w.Code, path)
		var apiErr APIError
		decodeBody(t, w, &apiErr)
		assert.Equal(t, "FORBIDDEN", apiErr.Code, path)
	}
}

// The full multi-tenant scenario: a school registers, logs in, uploads
// a two-file batch, sees exactly its own records; the admin sees the
// records with the owner's display name attached.
func TestSchoolUploadScenario(t *testing.T) {
	s := newTestServer(t)

	schoolToken := registerAndLogin(t, s, "riverside")
	otherToken := registerAndLogin(t, s, "westgate")
	adminToken := login(t, s, "admin", "admin")

	w := uploadFiles(t, s, schoolToken, "Sports Day", "one.jpg", "two.mp4")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var uploadResp struct {
		Uploaded []struct {
			ID         int64  `json:"id"`
			StoredName string `json:"storedName"`
			EventName  string `json:"eventName"`
		} `json:"uploaded"`
	}
	decodeBody(t, w, &uploadResp)
	require.Len(t, uploadResp.Uploaded, 2)

	// Owner listing is scoped: riverside sees 2, westgate sees 0
	w = doJSON(t, s, http.MethodGet, "/api/media", schoolToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var records []map[string]interface{}
	decodeBody(t, w, &records)
	assert.Len(t, records, 2)

	w = doJSON(t, s, http.MethodGet, "/api/media", otherToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &records)
	assert.Len(t, records, 0)

	// Admin view carries the owner's username
	w = doJSON(t, s, http.MethodGet, "/api/admin/media", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &records)
	require.Len(t, records, 2)
	assert.Equal(t, "riverside", records[0]["username"])

	// Events aggregate for the owner
	w = doJSON(t, s, http.MethodGet, "/api/events", schoolToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var events []map[string]interface{}
	decodeBody(t, w, &events)
	require.Len(t, events, 1)
	assert.Equal(t, "Sports Day", events[0]["name"])
	assert.EqualValues(t, 2, events[0]["mediaCount"])
}

// The admin singleton (id 0, no accounts row) can upload; the ledger
// insert must succeed against the production schema and pragmas.
func TestAdminUploadScenario(t *testing.T) {
	s := newTestServer(t)
	adminToken := login(t, s, "admin", "admin")

	w := uploadFiles(t, s, adminToken, "Office Archive", "pic.jpg")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Uploaded []struct {
			ID int64 `json:"id"`
		} `json:"uploaded"`
		Failed []struct {
			Code string `json:"code"`
		} `json:"failed"`
	}
	decodeBody(t, w, &resp)
	require.Empty(t, resp.Failed)
	require.Len(t, resp.Uploaded, 1)

	// The record is reachable through the admin's own scoped listing and
	// download path
	w = doJSON(t, s, http.MethodGet, "/api/media", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var records []map[string]interface{}
	decodeBody(t, w, &records)
	require.Len(t, records, 1)

	w = doJSON(t, s, http.MethodGet,
		fmt.Sprintf("/api/media/%d/download", resp.Uploaded[0].ID), adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "content of pic.jpg", w.Body.String())
}

func TestUploadBatchWithInvalidType(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s, "riverside")

	w := uploadFiles(t, s, token, "Sports Day", "good.jpg", "bad.exe", "fine.mov")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Uploaded []json.RawMessage `json:"uploaded"`
		Failed   []struct {
			Name string `json:"name"`
			Code string `json:"code"`
		} `json:"failed"`
	}
	decodeBody(t, w, &resp)
	assert.Len(t, resp.Uploaded, 2)
	require.Len(t, resp.Failed, 1)
	assert.Equal(t, "bad.exe", resp.Failed[0].Name)
	assert.Equal(t, "INVALID_FILE_TYPE", resp.Failed[0].Code)
}

func TestUploadWithoutEventName(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s, "riverside")

	w := uploadFiles(t, s, token, "", "one.jpg")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDownloadOwnerScopedWithQueryToken(t *testing.T) {
	s := newTestServer(t)
	ownerToken := registerAndLogin(t, s, "riverside")
	otherToken := registerAndLogin(t, s, "westgate")

	w := uploadFiles(t, s, ownerToken, "Sports Day", "photo.jpg")
	require.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		Uploaded []struct {
			ID int64 `json:"id"`
		} `json:"uploaded"`
	}
	decodeBody(t, w, &resp)
	id := resp.Uploaded[0].ID

	// Query-parameter token works for browser-initiated downloads
	req := httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/api/media/%d/download?token=%s", id, ownerToken), nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "photo.jpg")
	assert.Equal(t, "content of photo.jpg", rec.Body.String())

	// Another school cannot reach it
	w = doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/media/%d/download", id), otherToken, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestBanFlow(t *testing.T) {
	s := newTestServer(t)
	schoolToken := registerAndLogin(t, s, "riverside")
	adminToken := login(t, s, "admin", "admin")

	// Find the school's id via the admin roster
	w := doJSON(t, s, http.MethodGet, "/api/admin/schools", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var schools []struct {
		ID     int64 `json:"id"`
		Banned bool  `json:"banned"`
	}
	decodeBody(t, w, &schools)
	require.Len(t, schools, 1)

	w = doJSON(t, s, http.MethodPut,
		fmt.Sprintf("/api/admin/schools/%d/ban", schools[0].ID), adminToken,
		map[string]bool{"banned": true})
	require.Equal(t, http.StatusOK, w.Code)

	// The school's still-valid token is now rejected with BANNED
	w = doJSON(t, s, http.MethodGet, "/api/media", schoolToken, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	var apiErr APIError
	decodeBody(t, w, &apiErr)
	assert.Equal(t, "BANNED", apiErr.Code)

	// Banning an unknown id is 404
	w = doJSON(t, s, http.MethodPut, "/api/admin/schools/9999/ban", adminToken,
		map[string]bool{"banned": true})
	require.Equal(t, http.StatusNotFound, w.Code)

	// Schools cannot ban
	w = doJSON(t, s, http.MethodPut,
		fmt.Sprintf("/api/admin/schools/%d/ban", schools[0].ID), schoolToken,
		map[string]bool{"banned": false})
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestUserStatsEndpoint(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s, "riverside")

	uploadFiles(t, s, token, "Sports Day", "one.jpg", "two.jpg")
	uploadFiles(t, s, token, "Graduation", "three.mp4")

	w := doJSON(t, s, http.MethodGet, "/api/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats struct {
		TotalFiles  int64  `json:"totalFiles"`
		TotalEvents int64  `json:"totalEvents"`
		TotalSize   string `json:"totalSize"`
	}
	decodeBody(t, w, &stats)
	assert.EqualValues(t, 3, stats.TotalFiles)
	assert.EqualValues(t, 2, stats.TotalEvents)
	assert.NotEmpty(t, stats.TotalSize)
}

func TestAdminStatsEndpoint(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s, "riverside")
	adminToken := login(t, s, "admin", "admin")

	uploadFiles(t, s, token, "Sports Day", "one.jpg")

	w := doJSON(t, s, http.MethodGet, "/api/admin/stats", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats struct {
		TotalSchools  int64 `json:"totalSchools"`
		ActiveSchools int64 `json:"activeSchools"`
		TotalFiles    int64 `json:"totalFiles"`
	}
	decodeBody(t, w, &stats)
	assert.EqualValues(t, 1, stats.TotalSchools)
	assert.EqualValues(t, 1, stats.ActiveSchools)
	assert.EqualValues(t, 1, stats.TotalFiles)
}

func TestBulkExportEndpoint(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s, "riverside")
	adminToken := login(t, s, "admin", "admin")

	w := uploadFiles(t, s, token, "Sports Day", "one.jpg", "two.jpg")
	var resp struct {
		Uploaded []struct {
			ID int64 `json:"id"`
		} `json:"uploaded"`
	}
	decodeBody(t, w, &resp)
	require.Len(t, resp.Uploaded, 2)

	w = doJSON(t, s, http.MethodPost, "/api/admin/media/download", adminToken,
		map[string][]int64{"ids": {resp.Uploaded[0].ID, resp.Uploaded[1].ID, 9999}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/zip", w.Header().Get("Content-Type"))

	zr, err := zip.NewReader(bytes.NewReader(w.Body.Bytes()), int64(w.Body.Len()))
	require.NoError(t, err)
	assert.Len(t, zr.File, 2)

	// Empty id list is a 400
	w = doJSON(t, s, http.MethodPost, "/api/admin/media/download", adminToken,
		map[string][]int64{"ids": {}})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Schools cannot bulk-export
	w = doJSON(t, s, http.MethodPost, "/api/admin/media/download", token,
		map[string][]int64{"ids": {resp.Uploaded[0].ID}})
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestProfileEndpoints(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s, "riverside")

	w := doJSON(t, s, http.MethodPut, "/api/profile", token, map[string]string{
		"schoolName":    "Riverside Primary",
		"contactPerson": "J. Doe",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodGet, "/api/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var profile map[string]interface{}
	decodeBody(t, w, &profile)
	assert.Equal(t, "Riverside Primary", profile["schoolName"])

	// Password change, then old token still works (stateless) but old
	// password does not
	w = doJSON(t, s, http.MethodPut, "/api/profile/password", token, map[string]string{
		"currentPassword": "pass123",
		"newPassword":     "newpass",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodPost, "/api/login", "", map[string]string{
		"username": "riverside", "password": "pass123",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	login(t, s, "riverside", "newpass")
}

func TestEventSuggestions(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s, "riverside")

	uploadFiles(t, s, token, "Sports Day 2026", "one.jpg")
	uploadFiles(t, s, token, "Graduation", "two.jpg")

	w := doJSON(t, s, http.MethodGet, "/api/events/suggestions?query=sports", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var names []string
	decodeBody(t, w, &names)
	require.Len(t, names, 1)
	assert.Equal(t, "Sports Day 2026", names[0])
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)

	// A prior request gives the request counter a labeled child to expose
	doJSON(t, s, http.MethodGet, "/api/health", "", nil)

	w := doJSON(t, s, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "mediabank_http_requests_total")
}
