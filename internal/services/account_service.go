package services

import (
	"strings"

	"mediabank/internal/auth"
	"mediabank/internal/constants"
	"mediabank/internal/database"
	"mediabank/internal/logger"
)

// AccountService handles registration, login, profiles, and the admin's
// school roster.
type AccountService struct {
	app    AppState
	logger *logger.Logger
	issuer *auth.TokenIssuer
}

// NewAccountService creates a new account service instance.
func NewAccountService(app AppState, log *logger.Logger) *AccountService {
	cfg := app.GetConfig()
	return &AccountService{
		app:    app,
		logger: log,
		issuer: auth.NewTokenIssuer(cfg.Token.SigningKey, cfg.Token.TTLHours),
	}
}

// AccountInfo is the client-facing view of an account. Credentials are
// never included.
type AccountInfo struct {
	ID            int64  `json:"id"`
	Username      string `json:"username"`
	Role          string `json:"role"`
	SchoolName    string `json:"schoolName,omitempty"`
	Address       string `json:"address,omitempty"`
	ContactPerson string `json:"contactPerson,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Email         string `json:"email,omitempty"`
	Banned        bool   `json:"banned"`
}

func accountInfo(a *database.Account) *AccountInfo {
	return &AccountInfo{
		ID:            a.ID,
		Username:      a.Username,
		Role:          a.Role,
		SchoolName:    a.SchoolName,
		Address:       a.Address,
		ContactPerson: a.ContactPerson,
		Phone:         a.Phone,
		Email:         a.Email,
		Banned:        a.Banned,
	}
}

// Register creates a new school account. Every registration yields role
// "school"; requesting any other role is rejected up front.
func (s *AccountService) Register(username, password, role string) (*AccountInfo, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, invalidRequest("username and password are required")
	}
	if role != "" && role != constants.RoleSchool {
		return nil, invalidRequest("role must be school")
	}
	if username == s.app.GetConfig().Admin.Username {
		// The admin name is reserved; treat as taken.
		return nil, ErrUsernameTaken
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, storageFailure(err)
	}

	id, err := database.CreateAccount(s.app.GetDB(), username, hash)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		s.logger.Error("AccountService: failed to create account %s: %v", username, err)
		return nil, storageFailure(err)
	}

	s.logger.Info("AccountService: registered school account %s (id %d)", username, id)
	return &AccountInfo{ID: id, Username: username, Role: constants.RoleSchool}, nil
}

// Login authenticates a user and issues a session token. The configured
// admin is a singleton identity with id 0 and no account row; its
// password is compared in constant time. Banned schools are refused here
// in addition to the per-request guard.
func (s *AccountService) Login(username, password string) (string, *AccountInfo, error) {
	if username == "" || password == "" {
		return "", nil, invalidRequest("username and password are required")
	}

	cfg := s.app.GetConfig()
	if username == cfg.Admin.Username {
		if !auth.ConstantTimeEquals(password, cfg.Admin.Password) {
			return "", nil, ErrInvalidCredentials
		}
		token, err := s.issuer.Issue(constants.AdminAccountID, cfg.Admin.Username, constants.RoleAdmin)
		if err != nil {
			return "", nil, storageFailure(err)
		}
		s.logger.Info("AccountService: admin login")
		return token, &AccountInfo{
			ID:       constants.AdminAccountID,
			Username: cfg.Admin.Username,
			Role:     constants.RoleAdmin,
		}, nil
	}

	account, err := database.GetAccountByUsername(s.app.GetDB(), username)
	if err != nil {
		s.logger.Error("AccountService: login lookup failed for %s: %v", username, err)
		return "", nil, storageFailure(err)
	}
	if account == nil {
		return "", nil, ErrInvalidCredentials
	}
	if err := auth.VerifyPassword(password, account.PasswordHash); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if account.Banned {
		s.logger.Warn("AccountService: banned account %s attempted login", username)
		return "", nil, ErrAccountBanned
	}

	token, err := s.issuer.Issue(account.ID, account.Username, account.Role)
	if err != nil {
		return "", nil, storageFailure(err)
	}

	s.logger.Info("AccountService: login %s (id %d)", account.Username, account.ID)
	return token, accountInfo(account), nil
}

// GetProfile returns the profile for the authenticated identity. The
// admin singleton gets a synthesized profile.
func (s *AccountService) GetProfile(accountID int64) (*AccountInfo, error) {
	if accountID == constants.AdminAccountID {
		return &AccountInfo{
			ID:       constants.AdminAccountID,
			Username: s.app.GetConfig().Admin.Username,
			Role:     constants.RoleAdmin,
		}, nil
	}

	account, err := database.GetAccountByID(s.app.GetDB(), accountID)
	if err != nil {
		return nil, storageFailure(err)
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return accountInfo(account), nil
}

// UpdateProfile replaces the mutable profile fields of a school account.
func (s *AccountService) UpdateProfile(accountID int64, update database.ProfileUpdate) (*AccountInfo, error) {
	account, err := database.GetAccountByID(s.app.GetDB(), accountID)
	if err != nil {
		return nil, storageFailure(err)
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	if err := database.UpdateProfile(s.app.GetDB(), accountID, update); err != nil {
		s.logger.Error("AccountService: profile update failed for id %d: %v", accountID, err)
		return nil, storageFailure(err)
	}

	return s.GetProfile(accountID)
}

// ChangePassword verifies the current password and replaces it.
func (s *AccountService) ChangePassword(accountID int64, current, next string) error {
	if next == "" {
		return invalidRequest("new password is required")
	}

	account, err := database.GetAccountByID(s.app.GetDB(), accountID)
	if err != nil {
		return storageFailure(err)
	}
	if account == nil {
		return ErrAccountNotFound
	}
	if err := auth.VerifyPassword(current, account.PasswordHash); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return storageFailure(err)
	}
	if err := database.UpdatePasswordHash(s.app.GetDB(), accountID, hash); err != nil {
		s.logger.Error("AccountService: password update failed for id %d: %v", accountID, err)
		return storageFailure(err)
	}

	s.logger.Info("AccountService: password changed for account id %d", accountID)
	return nil
}

// ListSchools returns all school accounts ordered by username. Admin view.
func (s *AccountService) ListSchools() ([]AccountInfo, error) {
	accounts, err := database.ListSchools(s.app.GetDB())
	if err != nil {
		return nil, storageFailure(err)
	}

	infos := make([]AccountInfo, 0, len(accounts))
	for i := range accounts {
		infos = append(infos, *accountInfo(&accounts[i]))
	}
	return infos, nil
}

// SetBanned flips a school's ban flag. The underlying update is scoped to
// school rows, so an unknown id (or the admin's id 0) yields NotFound.
func (s *AccountService) SetBanned(accountID int64, banned bool) error {
	affected, err := database.SetBanned(s.app.GetDB(), accountID, banned)
	if err != nil {
		s.logger.Error("AccountService: ban update failed for id %d: %v", accountID, err)
		return storageFailure(err)
	}
	if affected == 0 {
		return ErrAccountNotFound
	}

	s.logger.Info("AccountService: account id %d banned=%t", accountID, banned)
	return nil
}
