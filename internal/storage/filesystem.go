package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bookforge/cover-service/internal/model"
)

// FileSystem stores rendered cover artifacts on disk, next to the SQLite
// index. Artifacts live at: {baseDir}/{class}/{digest}.{format}
type FileSystem struct {
	baseDir string
}

// NewFileSystem creates a new FileSystem storage, ensuring the base directory exists.
func NewFileSystem(baseDir string) (*FileSystem, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("creating cover directory: %w", err)
	}
	return &FileSystem{baseDir: baseDir}, nil
}

// CoverPath returns the filesystem path for an artifact.
func (fs *FileSystem) CoverPath(class model.CoverClass, digest, format string) string {
	return filepath.Join(fs.baseDir, string(class), digest+"."+format)
}

// ClassDir returns the directory holding one class's artifacts.
func (fs *FileSystem) ClassDir(class model.CoverClass) string {
	return filepath.Join(fs.baseDir, string(class))
}

// Read loads an artifact's raw bytes from disk.
func (fs *FileSystem) Read(class model.CoverClass, digest, format string) ([]byte, error) {
	path := fs.CoverPath(class, digest, format)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("cover file not found: %s/%s", class, digest)
		}
		return nil, fmt.Errorf("reading cover file: %w", err)
	}
	return data, nil
}

// Write saves an artifact to disk, creating the class directory if needed.
func (fs *FileSystem) Write(class model.CoverClass, digest, format string, data []byte) error {
	dir := fs.ClassDir(class)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating class directory: %w", err)
	}

	path := fs.CoverPath(class, digest, format)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing cover file: %w", err)
	}
	return nil
}

// Exists checks if an artifact exists on disk.
func (fs *FileSystem) Exists(class model.CoverClass, digest, format string) bool {
	path := fs.CoverPath(class, digest, format)
	_, err := os.Stat(path)
	return err == nil
}

// Delete removes one artifact from disk. Missing files are not an error.
func (fs *FileSystem) Delete(class model.CoverClass, digest, format string) error {
	err := os.Remove(fs.CoverPath(class, digest, format))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting cover file: %w", err)
	}
	return nil
}
