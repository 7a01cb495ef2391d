package fileio

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/native-host/errors"
	"github.com/wippyai/native-host/handle"
	"github.com/wippyai/native-host/registry"
)

type file struct {
	f    *os.File
	path string
	mode string
}

// Drop closes the descriptor when the table discards it at shutdown.
func (fl *file) Drop() {
	fl.f.Close()
}

// Table is the file descriptor registry: the same handle pattern as the
// concurrency subsystem, reused for a concern whose only shared state is
// the table itself.
type Table struct {
	alloc *handle.Allocator
	reg   *registry.Registry[*file]
	log   *zap.Logger
}

// NewTable creates an empty file table sharing the given allocator.
func NewTable(alloc *handle.Allocator, log *zap.Logger) *Table {
	if log == nil {
		log = zap.NewNop()
	}
	return &Table{
		alloc: alloc,
		reg:   registry.New[*file](errors.PhaseFile),
		log:   log,
	}
}

// Open opens path in the given mode and registers the descriptor.
// Modes follow the classic stdio letters: "r" read, "w" write+truncate,
// "a" append, with "rw"/"r+" for read-write.
func (t *Table) Open(path, mode string) (handle.Handle, error) {
	flags, err := parseMode(mode)
	if err != nil {
		return handle.Invalid, err
	}

	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return handle.Invalid, errors.IO("open "+path, err)
	}

	h := t.alloc.Next()
	if err := t.reg.Insert(h, &file{f: f, path: path, mode: mode}); err != nil {
		f.Close()
		return handle.Invalid, err
	}
	return h, nil
}

func parseMode(mode string) (int, error) {
	read := strings.ContainsRune(mode, 'r')
	write := strings.ContainsRune(mode, 'w')
	app := strings.ContainsRune(mode, 'a')
	plus := strings.ContainsRune(mode, '+')

	switch {
	case read && (write || plus):
		return os.O_RDWR | os.O_CREATE, nil
	case write:
		return os.O_WRONLY | os.O_CREATE | os.O_TRUNC, nil
	case app:
		return os.O_WRONLY | os.O_CREATE | os.O_APPEND, nil
	case read:
		return os.O_RDONLY, nil
	default:
		return 0, errors.Validation(errors.PhaseFile, "unknown open mode %q", mode)
	}
}

// Close closes the descriptor and removes its handle.
func (t *Table) Close(h handle.Handle) error {
	fl, ok := t.reg.Remove(h)
	if !ok {
		return errors.NotFound(errors.PhaseFile, uint64(h))
	}
	if err := fl.f.Close(); err != nil {
		return errors.IO("close "+fl.path, err)
	}
	return nil
}

// Read reads up to n bytes from the current position.
func (t *Table) Read(h handle.Handle, n int) ([]byte, error) {
	fl, ok := t.reg.Get(h)
	if !ok {
		return nil, errors.NotFound(errors.PhaseFile, uint64(h))
	}
	if n < 0 {
		return nil, errors.Validation(errors.PhaseFile, "negative read length %d", n)
	}

	buf := make([]byte, n)
	read, err := fl.f.Read(buf)
	if err != nil && err != io.EOF {
		return nil, errors.IO("read "+fl.path, err)
	}
	return buf[:read], nil
}

// ReadAt reads up to n bytes starting at offset without moving the
// file position.
func (t *Table) ReadAt(h handle.Handle, offset int64, n int) ([]byte, error) {
	fl, ok := t.reg.Get(h)
	if !ok {
		return nil, errors.NotFound(errors.PhaseFile, uint64(h))
	}
	if n < 0 || offset < 0 {
		return nil, errors.Validation(errors.PhaseFile, "invalid range offset=%d n=%d", offset, n)
	}

	buf := make([]byte, n)
	read, err := fl.f.ReadAt(buf, offset)
	if err != nil && err != io.EOF {
		return nil, errors.IO("read "+fl.path, err)
	}
	return buf[:read], nil
}

// Write writes data at the current position and returns the byte count.
func (t *Table) Write(h handle.Handle, data []byte) (int, error) {
	fl, ok := t.reg.Get(h)
	if !ok {
		return 0, errors.NotFound(errors.PhaseFile, uint64(h))
	}
	n, err := fl.f.Write(data)
	if err != nil {
		return n, errors.IO("write "+fl.path, err)
	}
	return n, nil
}

// WriteAt writes data at offset without moving the file position.
// Files opened in append mode reject positioned writes.
func (t *Table) WriteAt(h handle.Handle, offset int64, data []byte) (int, error) {
	fl, ok := t.reg.Get(h)
	if !ok {
		return 0, errors.NotFound(errors.PhaseFile, uint64(h))
	}
	if offset < 0 {
		return 0, errors.Validation(errors.PhaseFile, "negative offset %d", offset)
	}
	n, err := fl.f.WriteAt(data, offset)
	if err != nil {
		return n, errors.IO("write "+fl.path, err)
	}
	return n, nil
}

// Seek moves the file position. whence follows io.Seek* semantics.
func (t *Table) Seek(h handle.Handle, offset int64, whence int) (int64, error) {
	fl, ok := t.reg.Get(h)
	if !ok {
		return 0, errors.NotFound(errors.PhaseFile, uint64(h))
	}
	if whence != io.SeekStart && whence != io.SeekCurrent && whence != io.SeekEnd {
		return 0, errors.Validation(errors.PhaseFile, "invalid whence %d", whence)
	}
	pos, err := fl.f.Seek(offset, whence)
	if err != nil {
		return 0, errors.IO("seek "+fl.path, err)
	}
	return pos, nil
}

// Flush forces buffered writes to stable storage.
func (t *Table) Flush(h handle.Handle) error {
	fl, ok := t.reg.Get(h)
	if !ok {
		return errors.NotFound(errors.PhaseFile, uint64(h))
	}
	if err := fl.f.Sync(); err != nil {
		return errors.IO("sync "+fl.path, err)
	}
	return nil
}

// Info describes an open file.
type Info struct {
	Path    string
	Mode    string
	Size    int64
	ModTime int64 // unix nanoseconds
	IsDir   bool
}

// Stat returns metadata for an open file.
func (t *Table) Stat(h handle.Handle) (Info, error) {
	fl, ok := t.reg.Get(h)
	if !ok {
		return Info{}, errors.NotFound(errors.PhaseFile, uint64(h))
	}
	st, err := fl.f.Stat()
	if err != nil {
		return Info{}, errors.IO("stat "+fl.path, err)
	}
	return Info{
		Path:    fl.path,
		Mode:    fl.mode,
		Size:    st.Size(),
		ModTime: st.ModTime().UnixNano(),
		IsDir:   st.IsDir(),
	}, nil
}

// Len returns the number of open descriptors.
func (t *Table) Len() int { return t.reg.Len() }

// Shutdown closes every remaining descriptor.
func (t *Table) Shutdown() error {
	return t.reg.Close()
}
