package storage

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"mediabank/internal/constants"
	"mediabank/internal/sanitize"
)

var (
	ErrInvalidHandle    = errors.New("invalid file handle")
	ErrChecksumMismatch = errors.New("stored file checksum mismatch")
)

// StoredFile describes a file after it has been written to the store.
type StoredFile struct {
	Handle   string
	Size     int64
	Checksum string // BLAKE3 hex (64 chars)
}

// FileStore keeps uploaded files as flat files under a single root
// directory. Handles are server-generated, so the store never trusts a
// client-supplied name as a path.
type FileStore struct {
	root string
}

// NewFileStore creates the root directory if needed and returns a store.
func NewFileStore(root string) (*FileStore, error) {
	if err := os.MkdirAll(root, constants.DirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &FileStore{root: root}, nil
}

// Root returns the store's root directory.
func (s *FileStore) Root() string {
	return s.root
}

// NewHandle generates a fresh handle for an upload: millisecond timestamp
// plus a random suffix, keeping the original file's extension. Collisions
// are practically impossible.
func NewHandle(originalName string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	handle := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), suffix)
	if ext := sanitize.Extension(originalName); ext != "" {
		handle += "." + ext
	}
	return handle
}

// resolve maps a handle to an absolute path inside the root, rejecting
// anything that could escape it.
func (s *FileStore) resolve(handle string) (string, error) {
	if handle == "" || sanitize.IsPathTraversal(handle) {
		return "", ErrInvalidHandle
	}
	path := filepath.Join(s.root, handle)
	if filepath.Dir(path) != filepath.Clean(s.root) {
		return "", ErrInvalidHandle
	}
	return path, nil
}

// Save streams the reader to disk under a fresh handle derived from the
// original filename, computing a BLAKE3 checksum on the way through.
// On any write error the partial file is removed.
func (s *FileStore) Save(r io.Reader, originalName string) (*StoredFile, error) {
	handle := NewHandle(originalName)
	path, err := s.resolve(handle)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, constants.FilePermissions)
	if err != nil {
		return nil, fmt.Errorf("failed to create stored file: %w", err)
	}

	hasher := blake3.New()
	written, err := io.Copy(f, io.TeeReader(r, hasher))
	if err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("failed to write stored file: %w", err)
	}

	// Sync before the ledger insert so a crash cannot leave a record
	// pointing at missing bytes.
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("failed to sync stored file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to close stored file: %w", err)
	}

	return &StoredFile{
		Handle:   handle,
		Size:     written,
		Checksum: hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

// Open returns a reader for the stored file. Caller closes.
func (s *FileStore) Open(handle string) (*os.File, error) {
	path, err := s.resolve(handle)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// Stat returns the size of the stored file in bytes.
func (s *FileStore) Stat(handle string) (int64, error) {
	path, err := s.resolve(handle)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Exists reports whether the handle resolves to a physical file.
func (s *FileStore) Exists(handle string) bool {
	path, err := s.resolve(handle)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Remove deletes the stored file. Used to undo a save whose ledger
// insert failed.
func (s *FileStore) Remove(handle string) error {
	path, err := s.resolve(handle)
	if err != nil {
		return err
	}
	return os.Remove(path)
}

// VerifyChecksum recomputes the BLAKE3 hash of the stored file and
// compares it with the expected hex string.
func (s *FileStore) VerifyChecksum(handle, expected string) error {
	if len(expected) != constants.ChecksumLength {
		return fmt.Errorf("expected checksum must be %d hex chars, got %d",
			constants.ChecksumLength, len(expected))
	}

	f, err := s.Open(handle)
	if err != nil {
		return err
	}
	defer f.Close()

	hasher := blake3.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return err
	}

	if hex.EncodeToString(hasher.Sum(nil)) != expected {
		return ErrChecksumMismatch
	}
	return nil
}
