// Package auth provides session tokens, password hashing, and the access
// guard that gates every protected operation. Sessions are stateless
// signed JWTs; authorization decisions re-check the credential store on
// each call rather than trusting the token.
package auth

import "github.com/golang-jwt/jwt/v5"

// Claims is the payload carried by a session token.
type Claims struct {
	AccountID int64  `json:"id"`
	Username  string `json:"username"`
	Role      string `json:"role"` // "school" | "admin"
	jwt.RegisteredClaims
}

// Operation identifies a guarded action.
type Operation string

const (
	OpUploadMedia      Operation = "upload_media"
	OpListOwnMedia     Operation = "list_own_media"
	OpListEvents       Operation = "list_events"
	OpSuggestEvents    Operation = "suggest_events"
	OpOwnStats         Operation = "own_stats"
	OpReadProfile      Operation = "read_profile"
	OpUpdateProfile    Operation = "update_profile"
	OpChangePassword   Operation = "change_password"
	OpDownloadOwnMedia Operation = "download_own_media"

	OpListSchools  Operation = "list_schools"
	OpToggleBan    Operation = "toggle_ban"
	OpListAllMedia Operation = "list_all_media"
	OpGlobalStats  Operation = "global_stats"
	OpBulkExport   Operation = "bulk_export"
)

// adminOnlyOps require an admin token; schools are refused outright.
var adminOnlyOps = map[Operation]bool{
	OpListSchools:  true,
	OpToggleBan:    true,
	OpListAllMedia: true,
	OpGlobalStats:  true,
	OpBulkExport:   true,
}

// Denial codes carried by guard decisions.
const (
	DenyUnauthenticated = "UNAUTHENTICATED"
	DenyForbidden       = "FORBIDDEN"
	DenyBanned          = "BANNED"
	DenyStorageFailure  = "STORAGE_FAILURE"
)

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Code    string // denial code when not allowed
	Reason  string
}

func allow() *Decision {
	return &Decision{Allowed: true}
}

func deny(code, reason string) *Decision {
	return &Decision{Allowed: false, Code: code, Reason: reason}
}
