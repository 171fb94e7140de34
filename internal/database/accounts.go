package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"mediabank/internal/constants"
)

// Account represents a row in the accounts table.
type Account struct {
	ID            int64
	Username      string
	PasswordHash  string
	Role          string
	SchoolName    string
	Address       string
	ContactPerson string
	Phone         string
	Email         string
	Banned        bool
	CreatedAt     int64
	UpdatedAt     int64
}

// ProfileUpdate carries the mutable profile fields of an account.
type ProfileUpdate struct {
	SchoolName    string
	Address       string
	ContactPerson string
	Phone         string
	Email         string
}

// IsUniqueViolation reports whether err is a SQLite UNIQUE constraint
// failure. Used to detect username collisions at insert time.
func IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// CreateAccount inserts a new school account and returns its id.
func CreateAccount(db *sql.DB, username, passwordHash string) (int64, error) {
	now := time.Now().Unix()
	result, err := db.Exec(`
		INSERT INTO accounts (username, password_hash, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, username, passwordHash, constants.RoleSchool, now, now)
	if err != nil {
		return 0, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}
	return id, nil
}

const accountColumns = `id, username, password_hash, role, school_name, address,
	contact_person, phone, email, banned, created_at, updated_at`

func scanAccount(row interface{ Scan(...interface{}) error }) (*Account, error) {
	var a Account
	var banned int
	err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.Role, &a.SchoolName,
		&a.Address, &a.ContactPerson, &a.Phone, &a.Email, &banned,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Banned = banned != 0
	return &a, nil
}

// GetAccountByUsername returns the account with the given username,
// or nil when no such account exists.
func GetAccountByUsername(db *sql.DB, username string) (*Account, error) {
	row := db.QueryRow("SELECT "+accountColumns+" FROM accounts WHERE username = ?", username)
	account, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return account, err
}

// GetAccountByID returns the account with the given id, or nil when no
// such account exists.
func GetAccountByID(db *sql.DB, id int64) (*Account, error) {
	row := db.QueryRow("SELECT "+accountColumns+" FROM accounts WHERE id = ?", id)
	account, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return account, err
}

// UpdateProfile replaces the mutable profile fields of an account.
func UpdateProfile(db *sql.DB, id int64, p ProfileUpdate) error {
	_, err := db.Exec(`
		UPDATE accounts
		SET school_name = ?, address = ?, contact_person = ?, phone = ?, email = ?, updated_at = ?
		WHERE id = ?
	`, p.SchoolName, p.Address, p.ContactPerson, p.Phone, p.Email, time.Now().Unix(), id)
	return err
}

// UpdatePasswordHash replaces the password hash of an account.
func UpdatePasswordHash(db *sql.DB, id int64, passwordHash string) error {
	_, err := db.Exec(`
		UPDATE accounts SET password_hash = ?, updated_at = ? WHERE id = ?
	`, passwordHash, time.Now().Unix(), id)
	return err
}

// SetBanned flips the ban flag of a school account. The update is scoped
// to role='school' rows, so unknown ids affect zero rows; the caller maps
// that to a not-found result.
func SetBanned(db *sql.DB, id int64, banned bool) (int64, error) {
	flag := 0
	if banned {
		flag = 1
	}
	result, err := db.Exec(`
		UPDATE accounts SET banned = ?, updated_at = ? WHERE id = ? AND role = ?
	`, flag, time.Now().Unix(), id, constants.RoleSchool)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// ListSchools returns all school accounts ordered by username.
func ListSchools(db *sql.DB) ([]Account, error) {
	rows, err := db.Query(`
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE role = 'school'
		ORDER BY username
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *account)
	}
	return accounts, rows.Err()
}

// CountSchools returns the number of school account rows.
func CountSchools(db *sql.DB) (int64, error) {
	var count int64
	err := db.QueryRow("SELECT COUNT(*) FROM accounts WHERE role = 'school'").Scan(&count)
	return count, err
}
