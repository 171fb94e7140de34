package server

import (
	"encoding/json"
	"net/http"

	"mediabank/internal/auth"
	"mediabank/internal/constants"
	"mediabank/internal/services"
)

// APIError represents a standard error response.
type APIError struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// WriteError writes a standard error response.
func WriteError(w http.ResponseWriter, status int, message string, code string) {
	WriteJSON(w, status, APIError{
		Error:   true,
		Message: message,
		Code:    code,
	})
}

// WriteSuccess writes a simple success response.
func WriteSuccess(w http.ResponseWriter, data interface{}) {
	WriteJSON(w, http.StatusOK, data)
}

// handleServiceError maps service errors to HTTP responses. Storage
// failures reach the client with an opaque message; the wrapped detail
// stays in the log.
func (s *Server) handleServiceError(w http.ResponseWriter, err error) {
	code, isServiceErr := services.IsServiceError(err)
	if !isServiceErr {
		s.logger.Error("Unexpected error: %v", err)
		WriteError(w, http.StatusInternalServerError, "internal error", constants.ErrCodeStorageFailure)
		return
	}

	status := http.StatusInternalServerError
	message := err.Error()
	switch code {
	case constants.ErrCodeInvalidRequest, constants.ErrCodeInvalidFileType:
		status = http.StatusBadRequest
	case constants.ErrCodeUnauthenticated, constants.ErrCodeInvalidToken,
		constants.ErrCodeInvalidCredentials:
		status = http.StatusUnauthorized
	case constants.ErrCodeForbidden, constants.ErrCodeBanned:
		status = http.StatusForbidden
	case constants.ErrCodeNotFound:
		status = http.StatusNotFound
	case constants.ErrCodeUsernameTaken:
		status = http.StatusConflict
	case constants.ErrCodeFileTooLarge:
		status = http.StatusRequestEntityTooLarge
	case constants.ErrCodeStorageFailure:
		s.logger.Error("Storage failure: %v", err)
		message = "internal storage error"
	}

	WriteError(w, status, message, code)
}

// requireAuth returns the authenticated claims or writes a 401. A token
// that was presented but failed validation yields INVALID_TOKEN; an
// absent token yields UNAUTHENTICATED.
func (s *Server) requireAuth(w http.ResponseWriter, r *http.Request) *auth.Claims {
	claims := auth.GetClaims(r.Context())
	if claims != nil {
		return claims
	}

	if auth.TokenWasRejected(r.Context()) {
		WriteError(w, http.StatusUnauthorized, "invalid or expired token", constants.ErrCodeInvalidToken)
		return nil
	}
	WriteError(w, http.StatusUnauthorized, "authentication required", constants.ErrCodeUnauthenticated)
	return nil
}

// authorize runs the access guard for an operation, writing the denial
// response itself. Returns claims on success, nil when a response was
// already written.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request, op auth.Operation) *auth.Claims {
	claims := s.requireAuth(w, r)
	if claims == nil {
		return nil
	}

	decision := s.app.Guard.Authorize(claims, op)
	if decision.Allowed {
		return claims
	}

	switch decision.Code {
	case auth.DenyBanned:
		WriteError(w, http.StatusForbidden, decision.Reason, constants.ErrCodeBanned)
	case auth.DenyUnauthenticated:
		WriteError(w, http.StatusUnauthorized, decision.Reason, constants.ErrCodeUnauthenticated)
	case auth.DenyStorageFailure:
		WriteError(w, http.StatusInternalServerError, decision.Reason, constants.ErrCodeStorageFailure)
	default:
		WriteError(w, http.StatusForbidden, decision.Reason, constants.ErrCodeForbidden)
	}
	return nil
}
