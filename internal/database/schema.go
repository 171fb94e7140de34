package database

// GetSchema returns the full SQL schema for the application database.
func GetSchema() string {
	return `
-- accounts table (school accounts only; the admin is a configured
-- singleton and never has a row here)
CREATE TABLE IF NOT EXISTS accounts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role TEXT NOT NULL DEFAULT 'school' CHECK (role IN ('school')),
    school_name TEXT NOT NULL DEFAULT '',
    address TEXT NOT NULL DEFAULT '',
    contact_person TEXT NOT NULL DEFAULT '',
    phone TEXT NOT NULL DEFAULT '',
    email TEXT NOT NULL DEFAULT '',
    banned INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_accounts_username ON accounts(username);
CREATE INDEX IF NOT EXISTS idx_accounts_banned ON accounts(banned);

-- media_records table (append-only ledger; no update or delete paths)
CREATE TABLE IF NOT EXISTS media_records (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    stored_name TEXT NOT NULL UNIQUE,  -- file store handle
    original_name TEXT,                -- sanitized client filename
    file_type TEXT,                    -- extension with leading dot, lowercased
    event_name TEXT NOT NULL,
    remarks TEXT NOT NULL DEFAULT '',
    tags TEXT NOT NULL DEFAULT '',     -- comma separated
    checksum TEXT NOT NULL DEFAULT '', -- BLAKE3 hex (64 chars)
    size_bytes INTEGER NOT NULL DEFAULT 0,
    upload_date TEXT NOT NULL,         -- ISO-8601 UTC, server-assigned
    account_id INTEGER NOT NULL        -- 0 = configured admin, which has no accounts row
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_media_stored_name ON media_records(stored_name);
CREATE INDEX IF NOT EXISTS idx_media_account ON media_records(account_id);
CREATE INDEX IF NOT EXISTS idx_media_account_event ON media_records(account_id, event_name);
CREATE INDEX IF NOT EXISTS idx_media_upload_date ON media_records(upload_date DESC);
`
}
