package listfile

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"golang.org/x/sys/unix"

	"urldeck/internal/entry"
	"urldeck/internal/fileutil"
)

// ErrNotWritable reports a save target whose directory cannot be written.
var ErrNotWritable = errors.New("list file directory is not writable")

// ResolvePath converts a file:// URI to a local path. Other input is returned
// unchanged.
func ResolvePath(raw string) string {
	path := strings.TrimSpace(raw)
	if !strings.HasPrefix(path, "file://") {
		return path
	}
	path = strings.TrimPrefix(path, "file://")
	if strings.HasPrefix(path, "localhost/") {
		path = strings.TrimPrefix(path, "localhost")
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if decoded, err := url.PathUnescape(path); err == nil {
		path = decoded
	}
	return path
}

// Load reads the list at path under a shared lock.
func Load(path, format string) ([]entry.Pair, error) {
	path = ResolvePath(path)
	lock := flock.New(lockPath(path))
	if err := lock.RLock(); err != nil {
		return nil, fmt.Errorf("lock list file: %w", err)
	}
	defer func() { _ = lock.Unlock() }()
	return read(path, format)
}

// Save writes pairs to path under the exclusive lock. The file is replaced
// atomically.
func Save(path, format string, pairs []entry.Pair) error {
	path = ResolvePath(path)
	if err := checkWritable(path); err != nil {
		return err
	}
	data, err := encode(format, pairs)
	if err != nil {
		return err
	}

	lock := flock.New(lockPath(path))
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock list file: %w", err)
	}
	defer func() { _ = lock.Unlock() }()
	return write(path, data)
}

// Update holds the exclusive lock across reading the list, applying fn and
// writing the result, so concurrent updates never overwrite each other. A
// missing file is passed to fn as an empty list. When fn returns an error the
// file is left untouched.
func Update(path, format string, fn func([]entry.Pair) ([]entry.Pair, error)) error {
	path = ResolvePath(path)
	if err := checkWritable(path); err != nil {
		return err
	}

	lock := flock.New(lockPath(path))
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock list file: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	pairs, err := read(path, format)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	updated, err := fn(pairs)
	if err != nil {
		return err
	}
	data, err := encode(format, updated)
	if err != nil {
		return err
	}
	if fileutil.SameContent(path, data) {
		return nil
	}
	return write(path, data)
}

func read(path, format string) ([]entry.Pair, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open list file: %w", err)
	}
	defer file.Close()

	pairs, err := Parse(file, format)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return pairs, nil
}

func encode(format string, pairs []entry.Pair) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, format, pairs); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func write(path string, data []byte) error {
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("save list file: %w", err)
	}
	return nil
}

func checkWritable(path string) error {
	dir := filepath.Dir(path)
	if err := unix.Access(dir, unix.W_OK); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrNotWritable, dir, err)
	}
	return nil
}

func lockPath(path string) string {
	return path + ".lock"
}
