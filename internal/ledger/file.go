package ledger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	recordFileMode  = 0o644
	recordDirMode   = 0o755
	tempFilePattern = ".points-*.tmp"
)

// record is the on-disk document. Points sits under its own key so other
// top-level fields can be added later without migrating the file.
type record struct {
	Points map[string]int64 `yaml:"points" toml:"points"`
}

// FileStore keeps the ledger in a single YAML document, or TOML when the
// path ends in ".toml".
type FileStore struct {
	path string
}

var _ Store = (*FileStore)(nil)

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) isTOML() bool {
	return strings.EqualFold(filepath.Ext(s.path), ".toml")
}

func (s *FileStore) Load(ctx context.Context) (map[string]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read points file: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, ErrEmptyLedger
	}

	var rec record
	if s.isTOML() {
		err = toml.Unmarshal(data, &rec)
	} else {
		err = yaml.Unmarshal(data, &rec)
	}
	if err != nil {
		return nil, fmt.Errorf("decode points file: %w", err)
	}
	if rec.Points == nil {
		return nil, ErrEmptyLedger
	}
	return rec.Points, nil
}

// Save writes the whole ledger to a temp file next to the target and renames
// it into place, so a crash never leaves a half-written record behind.
func (s *FileStore) Save(ctx context.Context, points map[string]int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rec := record{Points: points}
	if rec.Points == nil {
		rec.Points = map[string]int64{}
	}

	var (
		data []byte
		err  error
	)
	if s.isTOML() {
		data, err = toml.Marshal(rec)
	} else {
		data, err = yaml.Marshal(rec)
	}
	if err != nil {
		return fmt.Errorf("encode points file: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, recordDirMode); err != nil {
		return fmt.Errorf("create points directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp points file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp points file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("sync temp points file: %w", err)
	}
	if err := tempFile.Chmod(recordFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp points file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp points file: %w", err)
	}

	if err := os.Rename(tempName, s.path); err != nil {
		return fmt.Errorf("replace points file: %w", err)
	}
	cleanup = false

	return nil
}
