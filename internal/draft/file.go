package draft

import (
	"errors"
	"os"
	"regexp"

	"github.com/sohanasz/viote/internal/storage"
)

var unsafeKeyRe = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// File is a Store keeping one JSON file per key under a storage root.
// Writes are atomic, so a crash mid-save leaves the previous draft intact.
type File struct {
	fs storage.Provider
}

// NewFile returns a Store backed by fs.
func NewFile(fs storage.Provider) *File {
	return &File{fs: fs}
}

func (f *File) Get(key string) ([]byte, bool, error) {
	data, err := f.fs.Read(fileName(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (f *File) Set(key string, value []byte) error {
	return f.fs.Write(fileName(key), value)
}

func (f *File) Clear(key string) error {
	if err := f.fs.Delete(fileName(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func fileName(key string) string {
	return unsafeKeyRe.ReplaceAllString(key, "_") + ".json"
}
