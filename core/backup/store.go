package backup

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// ErrNotFound indicates a managed file that does not exist on disk.
var ErrNotFound = errors.New("file not found")

// Config holds configuration for the snapshot store.
type Config struct {
	// Dir is the directory where pristine snapshots are kept.
	Dir string `mapstructure:"dir" default:"backups"`
}

// Store owns the mapping from a managed file to its one-time pristine
// snapshot. Snapshot creation is idempotent: once a snapshot exists it is
// never overwritten, so it always holds the content from the first time
// the tool ever touched the file.
type Store struct {
	dir    string
	logger *zap.Logger
}

// NewStore creates the snapshot directory if needed and returns a Store.
func NewStore(dir string, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create backup dir %s: %w", dir, err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Dir returns the snapshot directory.
func (s *Store) Dir() string {
	return s.dir
}

// snapshotName derives the snapshot file name for a managed file:
// <base>_original<ext>.
func snapshotName(file string) string {
	base := filepath.Base(file)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return stem + "_original" + ext
}

// EnsureBackup creates a pristine snapshot of file unless one already
// exists, and returns the snapshot path either way. Returns ErrNotFound
// when the source file is missing.
func (s *Store) EnsureBackup(file string) (string, error) {
	if _, err := os.Stat(file); err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, file)
	}

	target := filepath.Join(s.dir, snapshotName(file))
	if _, err := os.Stat(target); err == nil {
		// Snapshot already exists, never overwrite it.
		return target, nil
	}

	if err := copyFile(file, target); err != nil {
		return "", fmt.Errorf("failed to snapshot %s: %w", file, err)
	}
	s.logger.Info("snapshot created", zap.String("file", file), zap.String("snapshot", target))
	return target, nil
}

// InitializeAll ensures a snapshot for every managed file that exists on
// disk. Missing files are reported, not fatal. It returns true iff at
// least one snapshot exists afterwards, which gates any apply pass.
func (s *Store) InitializeAll(files []string) bool {
	// Short-circuit when the full expected count is already present.
	existing := s.snapshotCount()
	if existing >= len(files) && len(files) > 0 {
		s.logger.Info("snapshots already present", zap.Int("count", existing))
		return true
	}

	created := 0
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			s.logger.Warn("managed file not found", zap.String("file", file))
			continue
		}
		target := filepath.Join(s.dir, snapshotName(file))
		if _, err := os.Stat(target); err == nil {
			continue
		}
		if err := copyFile(file, target); err != nil {
			s.logger.Warn("failed to snapshot file", zap.String("file", file), zap.Error(err))
			continue
		}
		s.logger.Info("snapshot created", zap.String("snapshot", filepath.Base(target)))
		created++
	}

	if created > 0 {
		s.logger.Info("initial snapshots created", zap.Int("count", created))
	}
	return s.snapshotCount() > 0
}

// RestoreAll overwrites each managed file with its snapshot content,
// where both exist. Per-file failures are logged and the pass continues.
// Returns true iff at least one file was restored.
func (s *Store) RestoreAll(files []string) bool {
	restored := 0
	for _, file := range files {
		snapshot := filepath.Join(s.dir, snapshotName(file))
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if _, err := os.Stat(snapshot); err != nil {
			continue
		}
		if err := copyFile(snapshot, file); err != nil {
			s.logger.Warn("failed to restore file", zap.String("file", file), zap.Error(err))
			continue
		}
		s.logger.Info("restored from snapshot", zap.String("file", file))
		restored++
	}
	if restored > 0 {
		s.logger.Info("files restored", zap.Int("count", restored))
	}
	return restored > 0
}

// LatestSnapshot resolves the snapshot path for a managed file, or ""
// when none exists. Should multiple candidates match the name pattern,
// the one with the earliest modification time wins: the oldest copy is
// the one closest to the true original.
func (s *Store) LatestSnapshot(file string) string {
	matches, err := filepath.Glob(filepath.Join(s.dir, snapshotName(file)))
	if err != nil || len(matches) == 0 {
		return ""
	}

	sort.Slice(matches, func(i, j int) bool {
		fi, errI := os.Stat(matches[i])
		fj, errJ := os.Stat(matches[j])
		if errI != nil || errJ != nil {
			return matches[i] < matches[j]
		}
		return fi.ModTime().Before(fj.ModTime())
	})
	return matches[0]
}

func (s *Store) snapshotCount() int {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*_original.*"))
	if err != nil {
		return 0
	}
	return len(matches)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
