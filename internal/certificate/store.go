package certificate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mrz1836/wipecert/internal/constants"
	wcerrors "github.com/mrz1836/wipecert/internal/errors"
	"github.com/mrz1836/wipecert/internal/flock"
)

// Store persists signed certificates.
type Store interface {
	// Save writes a signed record and returns its path.
	// Returns errors.ErrCertificateExists if the report ID is already stored.
	Save(ctx context.Context, r Record) (string, error)

	// Load returns the raw bytes of a stored certificate.
	Load(ctx context.Context, path string) ([]byte, error)

	// List returns the paths of stored certificates, sorted by name.
	List(ctx context.Context) ([]string, error)
}

// FileStore keeps one <reportID>.json file per certificate in a directory.
// Writes are atomic (temp file + rename) and serialized by a lock file.
type FileStore struct {
	dir         string
	lockTimeout time.Duration
}

// FileStoreOption configures a FileStore.
type FileStoreOption func(*FileStore)

// WithLockTimeout sets a custom lock timeout.
func WithLockTimeout(timeout time.Duration) FileStoreOption {
	return func(s *FileStore) {
		s.lockTimeout = timeout
	}
}

// NewFileStore creates a FileStore rooted at dir.
func NewFileStore(dir string, opts ...FileStoreOption) *FileStore {
	s := &FileStore{
		dir:         dir,
		lockTimeout: constants.LockTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the directory certificates are written to.
func (s *FileStore) Dir() string {
	return s.dir
}

// Save writes r. The existence check happens under the lock so two
// concurrent saves of the same report ID cannot both succeed.
func (s *FileStore) Save(ctx context.Context, r Record) (string, error) {
	if !r.Signed() {
		return "", fmt.Errorf("%w: refusing to store unsigned record %s", wcerrors.ErrInvalidArgument, r.ReportID)
	}

	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create certificate directory: %w", err)
	}

	lock, err := flock.Acquire(ctx, filepath.Join(s.dir, constants.StoreLockFileName), s.lockTimeout)
	if err != nil {
		return "", fmt.Errorf("failed to acquire store lock: %w", err)
	}
	defer func() { _ = lock.Release() }()

	path := filepath.Join(s.dir, r.ReportID+constants.CertificateExt)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%w: %s", wcerrors.ErrCertificateExists, path)
	}

	if err := atomicWrite(path, Marshal(r)); err != nil {
		return "", fmt.Errorf("failed to write certificate: %w", err)
	}
	return path, nil
}

// Load reads the certificate at path. Relative names are resolved against
// the store directory when they do not exist as given.
func (s *FileStore) Load(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied certificate path
	if errors.Is(err, fs.ErrNotExist) && !filepath.IsAbs(path) {
		data, err = os.ReadFile(filepath.Join(s.dir, path)) //nolint:gosec // resolved inside the store directory
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", wcerrors.ErrCertificateNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read certificate %s: %w", path, err)
	}
	return data, nil
}

// List returns stored certificate paths. A missing directory yields an empty list.
func (s *FileStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list certificates: %w", err)
	}

	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != constants.CertificateExt {
			continue
		}
		paths = append(paths, filepath.Join(s.dir, name))
	}
	sort.Strings(paths)
	return paths, nil
}

// atomicWrite writes data to a file atomically using temp file + rename.
func atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil { //nolint:gosec // certificates are public artifacts
		return fmt.Errorf("failed to set certificate permissions: %w", err)
	}

	return os.Rename(tmpPath, path)
}

var _ Store = (*FileStore)(nil)
