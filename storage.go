package wpmigrate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Storage is the collaborator that receives relocated binary assets.
// Paths use forward slashes and are relative to the storage root.
type Storage interface {
	Put(path string, data []byte) error
	Exists(path string) bool
	URL(path string) string
	MakeDirectory(path string) error
}

// DiskStorage writes assets under a local directory that is served as
// static files, the way uploads are published on the new site.
type DiskStorage struct {
	Root      string // filesystem root, e.g. "public/storage"
	URLPrefix string // public prefix, e.g. "/storage"
}

// NewDiskStorage creates a DiskStorage rooted at dir, served under urlPrefix.
func NewDiskStorage(dir, urlPrefix string) *DiskStorage {
	return &DiskStorage{Root: dir, URLPrefix: strings.TrimRight(urlPrefix, "/")}
}

func (d *DiskStorage) abs(path string) string {
	return filepath.Join(d.Root, filepath.FromSlash(path))
}

// Put writes data to path, creating parent directories as needed.
func (d *DiskStorage) Put(path string, data []byte) error {
	abs := d.abs(path)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", path, err)
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Exists reports whether a file is present at path.
func (d *DiskStorage) Exists(path string) bool {
	_, err := os.Stat(d.abs(path))
	return err == nil
}

// URL returns the public URL for a stored path.
func (d *DiskStorage) URL(path string) string {
	return d.URLPrefix + "/" + strings.TrimLeft(path, "/")
}

// MakeDirectory ensures a bucket directory exists.
func (d *DiskStorage) MakeDirectory(path string) error {
	return os.MkdirAll(d.abs(path), 0o755)
}
