package constants

import "time"

// Application
const (
	AppName        = "mediabank"
	AppDisplayName = "MediaBank"
)

// Paths
const (
	ConfigDir    = ".config/mediabank"
	ConfigFile   = "config.yaml"
	DatabaseFile = "mediabank.db"
	UploadsDir   = "uploads"
	LogsDir      = "logs"

	DirPermissions  = 0755
	FilePermissions = 0644
)

// API
const (
	DefaultPort         = 5000
	DefaultStorageDir   = "./data"
	ShutdownTimeoutSecs = 10
	HTTPIdleTimeout     = 120 * time.Second
)

// Auth
const (
	RoleAdmin  = "admin"
	RoleSchool = "school"

	// AdminAccountID is the identity id carried by admin tokens. The admin
	// is a configured singleton, not a row in the accounts table.
	AdminAccountID = 0

	BcryptCost = 10

	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin"
	DefaultSigningKey    = "dev-signing-key"
	DefaultTokenTTLHours = 24

	TokenIssuer         = "mediabank"
	HeaderAuthorization = "Authorization"
	AuthBearerPrefix    = "Bearer "
	AuthQueryParamToken = "token"
)

// Upload
const (
	DefaultMaxFileBytes     = 512 * 1024 * 1024 // 512MB per file
	DefaultMaxFilesPerBatch = 10

	FormFieldFiles     = "files"
	FormFieldEventName = "eventName"
	FormFieldRemarks   = "remarks"
	FormFieldTags      = "tags"
)

// AllowedUploadExtensions is the set of file types accepted at ingest.
// Extensions are stored lowercase without the leading dot.
var AllowedUploadExtensions = map[string]bool{
	"jpeg": true,
	"jpg":  true,
	"png":  true,
	"gif":  true,
	"mp4":  true,
	"mov":  true,
}

// MIME types for download responses, keyed by extension without the dot.
var ExtensionMimeTypes = map[string]string{
	"jpeg": "image/jpeg",
	"jpg":  "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"mp4":  "video/mp4",
	"mov":  "video/quicktime",
}

const DefaultMimeType = "application/octet-stream"

// Aggregation
const (
	EventSuggestionLimit = 5
	RecentEventsLimit    = 5
)

// Media query sorting
const (
	SortByDate  = "date"
	SortByName  = "name"
	SortByEvent = "event"

	SortAsc  = "asc"
	SortDesc = "desc"
)

// Bulk export
const (
	MimeTypeZIP       = "application/zip"
	ExportArchiveName = "media-files.zip"
)

// Timestamps: upload dates are server-assigned ISO-8601 in UTC.
const UploadDateFormat = "2006-01-02T15:04:05.000Z"

// Filename sanitization
const (
	MaxFilenameLength       = 255
	MaxExtensionLength      = 16
	FilenameReplacementChar = "_"
)

// Checksums: BLAKE3 hex string length (32 bytes = 64 hex chars).
const ChecksumLength = 64

// Database pragmas, applied immediately after opening any connection.
var SQLitePragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA foreign_keys=ON",
}

// Logging
const (
	DefaultLogLevel    = "debug"
	LogFileExtension   = ".log"
	LogTimestampFormat = "2006-01-02 15:04:05"
)
