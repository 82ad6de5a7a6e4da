package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrPathTraversal = errors.New("path traversal detected")
	ErrFileNotFound  = errors.New("file not found")
	ErrFileTooLarge  = errors.New("file exceeds size limit")
	ErrBlockedExt    = errors.New("file extension is blocked")
)

// MaxFileSize caps a single attachment at 25 MB
const MaxFileSize = 25 * 1024 * 1024

// BlockedExtensions lists executable attachment types that are never
// persisted, regardless of the classifier verdict
var BlockedExtensions = map[string]bool{
	".exe": true, ".bat": true, ".cmd": true, ".com": true,
	".pif": true, ".scr": true, ".vbs": true, ".js": true,
	".jar": true, ".ps1": true, ".sh": true, ".bash": true,
	".msi": true, ".dll": true, ".sys": true,
}

// FileStorage persists attachment blobs. Save returns the relative path
// recorded on the attachment row; Get and Delete take that path back.
type FileStorage interface {
	Save(filename string, content io.Reader) (string, error)
	Get(filePath string) (io.ReadCloser, error)
	Delete(filePath string) error
}

// diskStorage implements FileStorage on the local filesystem
type diskStorage struct {
	basePath string
}

// NewLocalStorage creates disk-backed storage rooted at basePath
func NewLocalStorage(basePath string) (FileStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &diskStorage{basePath: basePath}, nil
}

// resolve turns a stored relative path into an absolute one, rejecting
// anything that would escape the storage root
func (s *diskStorage) resolve(filePath string) (string, error) {
	cleaned := filepath.Clean(filePath)
	if filepath.IsAbs(cleaned) || strings.Contains(cleaned, "..") {
		return "", ErrPathTraversal
	}

	absPath, err := filepath.Abs(filepath.Join(s.basePath, cleaned))
	if err != nil {
		return "", fmt.Errorf("invalid file path: %w", err)
	}
	absBase, err := filepath.Abs(s.basePath)
	if err != nil {
		return "", fmt.Errorf("invalid base path: %w", err)
	}

	if absPath != absBase && !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", ErrPathTraversal
	}
	return absPath, nil
}

// ValidateFile rejects blocked extensions and oversized attachments before
// anything touches disk
func ValidateFile(filename string, size int64) error {
	if BlockedExtensions[strings.ToLower(filepath.Ext(filename))] {
		return ErrBlockedExt
	}
	if size > MaxFileSize {
		return ErrFileTooLarge
	}
	return nil
}

// Save writes content under a fresh UUID name, sharded into a two-character
// subdirectory, and returns the relative path
func (s *diskStorage) Save(filename string, content io.Reader) (string, error) {
	uniqueName := uuid.New().String() + filepath.Ext(filename)
	relPath := filepath.Join(uniqueName[:2], uniqueName)

	fullPath := filepath.Join(s.basePath, relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create subdirectory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, content); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return relPath, nil
}

// Get opens a stored blob for reading
func (s *diskStorage) Get(filePath string) (io.ReadCloser, error) {
	fullPath, err := s.resolve(filePath)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// Delete removes a stored blob. A missing file is not an error.
func (s *diskStorage) Delete(filePath string) error {
	fullPath, err := s.resolve(filePath)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
