// Package storage defines the file-system abstraction for the source and output trees.
package storage

import "github.com/starford/mddita/internal/models"

// Provider is the interface for tree file operations. All paths are relative
// to the provider root and use the host separator.
type Provider interface {
	// Root returns the absolute directory the provider is anchored at.
	Root() string
	// List returns metadata for every file under dir whose name ends with ext.
	List(dir, ext string) ([]models.FileMetadata, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path, creating parent directories.
	Write(path string, content []byte) error
	// Exists reports whether path exists.
	Exists(path string) bool
	// RemoveAll deletes path and everything below it.
	RemoveAll(path string) error
	// MkdirAll creates the directory path.
	MkdirAll(path string) error
}
