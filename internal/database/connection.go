package database

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"

	"mediabank/internal/constants"
)

// OpenDatabase opens a SQLite database at the given path and applies pragmas.
// _txlock=immediate makes BEGIN take a RESERVED lock up front, serializing
// write transactions under concurrent uploads.
func OpenDatabase(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_txlock=immediate")
	if err != nil {
		return nil, err
	}

	if err := ApplyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// InitDatabase opens or creates the application database and initializes
// the schema.
func InitDatabase(path string) (*sql.DB, error) {
	db, err := OpenDatabase(path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(GetSchema()); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// ApplyPragmas applies all SQLite pragmas from constants.SQLitePragmas.
// Must be called immediately after opening any database connection.
func ApplyPragmas(db *sql.DB) error {
	for _, pragma := range constants.SQLitePragmas {
		if _, err := db.Exec(pragma); err != nil {
			return err
		}
	}
	return nil
}
