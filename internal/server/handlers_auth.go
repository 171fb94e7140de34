package server

import (
	"encoding/json"
	"net/http"

	"mediabank/internal/auth"
	"mediabank/internal/constants"
	"mediabank/internal/database"
)

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON body", constants.ErrCodeInvalidRequest)
		return
	}

	info, err := s.app.Services.Account.Register(req.Username, req.Password, req.Role)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, info)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON body", constants.ErrCodeInvalidRequest)
		return
	}

	token, info, err := s.app.Services.Account.Login(req.Username, req.Password)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}
	WriteSuccess(w, map[string]interface{}{
		"token":   token,
		"account": info,
	})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	claims := s.authorize(w, r, auth.OpReadProfile)
	if claims == nil {
		return
	}

	info, err := s.app.Services.Account.GetProfile(claims.AccountID)
	if err != nil {
		s.handleServiceError(w, err)
		return
	}
	WriteSuccess(w, info)
}

type profileRequest struct {
	SchoolName    string `json:"schoolName"`
	Address       string `json:"address"`
	ContactPerson string `json:"contactPerson"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims := s.authorize(w, r, auth.OpUpdateProfile)
	if claims == nil {
		return
	}

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON body", constants.ErrCodeInvalidRequest)
		return
	}

	info, err := s.app.Services.Account.UpdateProfile(claims.AccountID, database.ProfileUpdate{
		SchoolName:    req.SchoolName,
		Address:       req.Address,
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
		Email:         req.Email,
	})
	if err != nil {
		s.handleServiceError(w, err)
		return
	}
	WriteSuccess(w, info)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := s.authorize(w, r, auth.OpChangePassword)
	if claims == nil {
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON body", constants.ErrCodeInvalidRequest)
		return
	}

	if err := s.app.Services.Account.ChangePassword(claims.AccountID, req.CurrentPassword, req.NewPassword); err != nil {
		s.handleServiceError(w, err)
		return
	}
	WriteSuccess(w, map[string]string{"status": "password changed"})
}
