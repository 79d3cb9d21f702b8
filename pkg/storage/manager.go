package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// Adapter is the narrow set of storage primitives the scrape pipeline needs
type Adapter interface {
	// MkdirAll creates a directory and any missing parents
	MkdirAll(dir string) error
	// ListDirs returns the names of the directories directly under dir
	ListDirs(dir string) ([]string, error)
	// ReadText reads a whole file as text
	ReadText(path string) (string, error)
	// WriteText replaces the file at path with text
	WriteText(path string, text string) error
	// WriteBinary replaces the file at path with data
	WriteBinary(path string, data []byte) error
	// Remove deletes a single file
	Remove(path string) error
}

// FileSystem implements Adapter on the local disk
type FileSystem struct {
	dirPerm  os.FileMode
	filePerm os.FileMode
}

// NewFileSystem creates a local disk adapter
func NewFileSystem() *FileSystem {
	return &FileSystem{
		dirPerm:  0755,
		filePerm: 0644,
	}
}

// MkdirAll creates a directory and any missing parents
func (fs *FileSystem) MkdirAll(dir string) error {
	if err := os.MkdirAll(dir, fs.dirPerm); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}

// ListDirs returns the names of the directories directly under dir
func (fs *FileSystem) ListDirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
		}
	}
	return dirs, nil
}

// ReadText reads a whole file as text
func (fs *FileSystem) ReadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return string(data), nil
}

// WriteText replaces the file at path with text
func (fs *FileSystem) WriteText(path string, text string) error {
	return fs.writeAtomic(path, []byte(text))
}

// WriteBinary replaces the file at path with data
func (fs *FileSystem) WriteBinary(path string, data []byte) error {
	return fs.writeAtomic(path, data)
}

// Remove deletes a single file
func (fs *FileSystem) Remove(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}

// writeAtomic writes to a temporary file in the target directory and renames
// it into place, so readers never observe a partially written file.
func (fs *FileSystem) writeAtomic(path string, data []byte) error {
	tempFile, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tempPath := tempFile.Name()

	_, err = tempFile.Write(data)
	closeErr := tempFile.Close()

	if err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to write file data: %w", err)
	}

	if closeErr != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Chmod(tempPath, fs.filePerm); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to set file permissions: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}
