package services

import (
	"testing"

	"mediabank/internal/constants"
	"mediabank/internal/database"
)

// Every registration yields a school account, whatever role was asked for.
func TestRegisterAlwaysSchool(t *testing.T) {
	svc, _ := newTestServices(t)

	info, err := svc.Account.Register("riverside", "pass123", "")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if info.Role != constants.RoleSchool {
		t.Errorf("role = %q, want school", info.Role)
	}

	// Requesting a non-school role is rejected outright
	if _, err := svc.Account.Register("sneaky", "pass123", "admin"); err == nil {
		t.Fatal("expected error for requested admin role")
	} else if code, _ := IsServiceError(err); code != constants.ErrCodeInvalidRequest {
		t.Errorf("error code = %q, want INVALID_REQUEST", code)
	}

	// Explicitly requesting school is fine
	info, err = svc.Account.Register("westgate", "pass123", "school")
	if err != nil {
		t.Fatalf("Register with explicit school role failed: %v", err)
	}
	if info.Role != constants.RoleSchool {
		t.Errorf("role = %q, want school", info.Role)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestServices(t)

	if _, err := svc.Account.Register("", "pass123", ""); err == nil {
		t.Error("expected error for empty username")
	}
	if _, err := svc.Account.Register("riverside", "", ""); err == nil {
		t.Error("expected error for empty password")
	}

	svc.Account.Register("riverside", "pass123", "")
	_, err := svc.Account.Register("riverside", "other", "")
	if code, _ := IsServiceError(err); code != constants.ErrCodeUsernameTaken {
		t.Errorf("duplicate username error code = %q, want USERNAME_TAKEN", code)
	}

	// The configured admin name is reserved
	_, err = svc.Account.Register("admin", "pass123", "")
	if code, _ := IsServiceError(err); code != constants.ErrCodeUsernameTaken {
		t.Errorf("admin username error code = %q, want USERNAME_TAKEN", code)
	}
}

func TestLoginSchool(t *testing.T) {
	svc, _ := newTestServices(t)
	id := mustRegister(t, svc, "riverside")

	token, info, err := svc.Account.Login("riverside", "pass123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if token == "" {
		t.Error("expected non-empty token")
	}
	if info.ID != id || info.Role != constants.RoleSchool {
		t.Errorf("login info mismatch: %+v", info)
	}

	if _, _, err := svc.Account.Login("riverside", "wrong"); err == nil {
		t.Error("expected error for wrong password")
	}
	if _, _, err := svc.Account.Login("nobody", "pass123"); err == nil {
		t.Error("expected error for unknown user")
	}
}

func TestLoginAdminSingleton(t *testing.T) {
	svc, _ := newTestServices(t)

	token, info, err := svc.Account.Login("admin", "admin")
	if err != nil {
		t.Fatalf("admin login failed: %v", err)
	}
	if token == "" {
		t.Error("expected non-empty token")
	}
	if info.ID != constants.AdminAccountID || info.Role != constants.RoleAdmin {
		t.Errorf("admin info mismatch: %+v", info)
	}

	if _, _, err := svc.Account.Login("admin", "wrong"); err == nil {
		t.Error("expected error for wrong admin password")
	}
}

func TestLoginBannedRefused(t *testing.T) {
	svc, app := newTestServices(t)
	id := mustRegister(t, svc, "riverside")

	if _, err := database.SetBanned(app.db, id, true); err != nil {
		t.Fatal(err)
	}

	_, _, err := svc.Account.Login("riverside", "pass123")
	if code, _ := IsServiceError(err); code != constants.ErrCodeBanned {
		t.Errorf("banned login error code = %q, want BANNED", code)
	}
}

func TestProfileRoundTrip(t *testing.T) {
	svc, _ := newTestServices(t)
	id := mustRegister(t, svc, "riverside")

	updated, err := svc.Account.UpdateProfile(id, database.ProfileUpdate{
		SchoolName:    "Riverside Primary",
		Address:       "1 River Road",
		ContactPerson: "J. Doe",
		Phone:         "555-0101",
		Email:         "office@riverside.example",
	})
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	if updated.SchoolName != "Riverside Primary" || updated.Email != "office@riverside.example" {
		t.Errorf("profile not applied: %+v", updated)
	}

	profile, err := svc.Account.GetProfile(id)
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if profile.ContactPerson != "J. Doe" {
		t.Errorf("profile read-back mismatch: %+v", profile)
	}

	// Admin singleton profile is synthesized
	adminProfile, err := svc.Account.GetProfile(constants.AdminAccountID)
	if err != nil {
		t.Fatalf("GetProfile(admin) failed: %v", err)
	}
	if adminProfile.Role != constants.RoleAdmin || adminProfile.Username != "admin" {
		t.Errorf("admin profile mismatch: %+v", adminProfile)
	}
}

func TestChangePassword(t *testing.T) {
	svc, _ := newTestServices(t)
	id := mustRegister(t, svc, "riverside")

	if err := svc.Account.ChangePassword(id, "wrong", "newpass"); err == nil {
		t.Error("expected error for wrong current password")
	}
	if err := svc.Account.ChangePassword(id, "pass123", ""); err == nil {
		t.Error("expected error for empty new password")
	}

	if err := svc.Account.ChangePassword(id, "pass123", "newpass"); err != nil {
		t.Fatalf("ChangePassword failed: %v", err)
	}
	if _, _, err := svc.Account.Login("riverside", "newpass"); err != nil {
		t.Errorf("login with new password failed: %v", err)
	}
	if _, _, err := svc.Account.Login("riverside", "pass123"); err == nil {
		t.Error("old password still accepted")
	}
}

func TestSetBanned(t *testing.T) {
	svc, _ := newTestServices(t)
	id := mustRegister(t, svc, "riverside")

	if err := svc.Account.SetBanned(id, true); err != nil {
		t.Fatalf("SetBanned failed: %v", err)
	}

	schools, err := svc.Account.ListSchools()
	if err != nil {
		t.Fatalf("ListSchools failed: %v", err)
	}
	if len(schools) != 1 || !schools[0].Banned {
		t.Errorf("expected one banned school, got %+v", schools)
	}

	// Unknown id (and the admin's id 0) maps to not found
	err = svc.Account.SetBanned(9999, true)
	if code, _ := IsServiceError(err); code != constants.ErrCodeNotFound {
		t.Errorf("error code = %q, want NOT_FOUND", code)
	}
	err = svc.Account.SetBanned(0, true)
	if code, _ := IsServiceError(err); code != constants.ErrCodeNotFound {
		t.Errorf("admin id ban error code = %q, want NOT_FOUND", code)
	}
}
