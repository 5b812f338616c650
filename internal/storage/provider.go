// Package storage provides atomic file storage rooted at one directory.
package storage

import "github.com/sohanasz/viote/internal/models"

// Provider is the interface for file operations under a storage root.
// All paths are relative to the root.
type Provider interface {
	// List returns metadata for every file under dir whose name ends in ext.
	// An empty ext matches every file.
	List(dir, ext string) ([]models.FileMeta, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Move renames oldPath to newPath.
	Move(oldPath, newPath string) error
}
