package fileio

import (
	"os"

	"github.com/wippyai/native-host/errors"
)

// ReadFile reads the whole file at path without touching the table.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.IO("read "+path, err)
	}
	return data, nil
}

// WriteFile replaces the contents of path atomically from the caller's
// point of view: plain truncate-and-write, 0644.
func WriteFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.IO("write "+path, err)
	}
	return nil
}

// AppendFile appends data to path, creating it if missing.
func AppendFile(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return errors.IO("open "+path, err)
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return errors.IO("append "+path, err)
	}
	return nil
}

// Exists reports whether path names an existing file or directory.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Remove deletes the file at path.
func Remove(path string) error {
	if err := os.Remove(path); err != nil {
		return errors.IO("remove "+path, err)
	}
	return nil
}

// Entry is a single directory listing row.
type Entry struct {
	Name  string
	IsDir bool
}

// CreateDir creates a directory, including missing parents.
func CreateDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return errors.IO("mkdir "+path, err)
	}
	return nil
}

// RemoveDir deletes a directory and everything under it.
func RemoveDir(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return errors.IO("rmdir "+path, err)
	}
	return nil
}

// ListDir returns the entries of path. The "." and ".." rows never
// appear; os.ReadDir does not emit them.
func ListDir(path string) ([]Entry, error) {
	ents, err := os.ReadDir(path)
	if err != nil {
		return nil, errors.IO("readdir "+path, err)
	}
	out := make([]Entry, 0, len(ents))
	for _, e := range ents {
		out = append(out, Entry{Name: e.Name(), IsDir: e.IsDir()})
	}
	return out, nil
}
