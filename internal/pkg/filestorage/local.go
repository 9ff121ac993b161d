package filestorage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/yigit/campus/internal/pkg/logger"
)

// ErrInvalidName is returned for a blob name that would escape the storage directory
var ErrInvalidName = errors.New("invalid blob name")

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string // The root directory where files will be stored
	baseURL  string // The URL prefix the directory is served under
}

// NewLocalStorage creates a new LocalStorage instance, creating basePath if needed.
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

// Save writes content to basePath/name. The file is written to a temporary
// name first so a failed upload never leaves a truncated photo behind.
func (ls *LocalStorage) Save(ctx context.Context, name string, content io.Reader) error {
	dstPath, err := ls.path(name)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(ls.basePath, ".upload-*")
	if err != nil {
		logger.Error().Err(err).Str("path", ls.basePath).Msg("Failed to create temporary file")
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		logger.Error().Err(err).Str("name", name).Msg("Failed to copy uploaded file content")
		return fmt.Errorf("failed to save file content: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to save file content: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := os.Rename(tmpPath, dstPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to move file into place: %w", err)
	}

	logger.Info().Str("name", name).Str("path", dstPath).Msg("File saved successfully")
	return nil
}

// Delete removes a file from the storage directory.
// Returns nil if deletion is successful or if the file doesn't exist.
func (ls *LocalStorage) Delete(_ context.Context, name string) error {
	if name == "" {
		return nil // Nothing to delete
	}
	physicalPath, err := ls.path(name)
	if err != nil {
		return err
	}

	if err := os.Remove(physicalPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
			return nil
		}
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", physicalPath).Msg("File deleted successfully")
	return nil
}

// Rename atomically replaces basePath/to with basePath/from
func (ls *LocalStorage) Rename(ctx context.Context, from, to string) error {
	fromPath, err := ls.path(from)
	if err != nil {
		return err
	}
	toPath, err := ls.path(to)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.Rename(fromPath, toPath); err != nil {
		logger.Error().Err(err).Str("from", from).Str("to", to).Msg("Failed to rename file")
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}

// Exists reports whether name is stored
func (ls *LocalStorage) Exists(_ context.Context, name string) (bool, error) {
	physicalPath, err := ls.path(name)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(physicalPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// URL returns baseURL/name
func (ls *LocalStorage) URL(name string) string {
	return ls.baseURL + "/" + name
}

// GetFullPath returns the full filesystem path for a blob name
func (ls *LocalStorage) GetFullPath(name string) string {
	p, err := ls.path(name)
	if err != nil {
		return ""
	}
	return p
}

func (ls *LocalStorage) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(ls.basePath, name), nil
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// SecureFilename reduces an upload name to a single safe path component:
// ASCII letters, digits and "_-.", with no leading or trailing dots and no separators.
func SecureFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.Join(strings.Fields(name), "_")
	name = strings.ReplaceAll(name, "/", "_")
	name = unsafeChars.ReplaceAllString(name, "")
	name = strings.Trim(name, "._")
	return name
}

// BlobName builds the stored filename for a student's photo
func BlobName(idno, uploadName string) string {
	return SecureFilename(idno + "_" + uploadName)
}
