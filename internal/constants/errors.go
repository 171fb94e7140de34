package constants

// API error codes
const (
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeUnauthenticated    = "UNAUTHENTICATED"
	ErrCodeInvalidToken       = "INVALID_TOKEN"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeBanned             = "BANNED"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeUsernameTaken      = "USERNAME_TAKEN"
	ErrCodeInvalidFileType    = "INVALID_FILE_TYPE"
	ErrCodeFileTooLarge       = "FILE_TOO_LARGE"
	ErrCodeStorageFailure     = "STORAGE_FAILURE"
)
