package storage

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/rl1809/pharmacy-records/internal/port"
)

const (
	tempFileSuffix = ".tmp"
	maxLineSize    = 1 << 20
)

var errStopScan = errors.New("stop scan")

var _ port.RecordStore[struct{}] = (*FileStore[struct{}])(nil)

// FileStore is a RecordStore backed by one delimited text file. Update and
// Delete write a complete copy to <path>.tmp and rename it over the original,
// so a crash mid-rewrite never leaves a half-written file. Nothing is locked:
// two processes rewriting the same file race and the last rename wins.
type FileStore[R any] struct {
	path  string
	codec Codec[R]
}

func NewFileStore[R any](path string, codec Codec[R]) *FileStore[R] {
	return &FileStore[R]{path: path, codec: codec}
}

func (s *FileStore[R]) Path() string {
	return s.path
}

func (s *FileStore[R]) FindAll(ctx context.Context) ([]R, error) {
	records := []R{}
	err := s.scan(ctx, func(line string) error {
		if r, ok := s.codec.Decode(line); ok {
			records = append(records, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (s *FileStore[R]) FindByKey(ctx context.Context, key string) (R, bool, error) {
	var (
		found R
		ok    bool
	)
	err := s.scan(ctx, func(line string) error {
		r, decoded := s.codec.Decode(line)
		if decoded && s.codec.Key(r) == key {
			found, ok = r, true
			return errStopScan
		}
		return nil
	})
	return found, ok, err
}

func (s *FileStore[R]) Count(ctx context.Context) (int, error) {
	records, err := s.FindAll(ctx)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

func (s *FileStore[R]) Add(ctx context.Context, r R) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if exists, err := s.exists(); err != nil || !exists {
		return false, err
	}

	_, taken, err := s.FindByKey(ctx, s.codec.Key(r))
	if err != nil {
		return false, err
	}
	if taken {
		return false, nil
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("open %s: %w", s.path, err)
	}

	if _, err := io.WriteString(f, s.codec.Encode(r)+"\n"); err != nil {
		f.Close()
		return false, fmt.Errorf("append %s: %w", s.path, err)
	}
	if err := f.Close(); err != nil {
		return false, fmt.Errorf("close %s: %w", s.path, err)
	}
	return true, nil
}

func (s *FileStore[R]) Update(ctx context.Context, oldKey string, r R) (bool, error) {
	line := s.codec.Encode(r)
	return s.rewrite(ctx, oldKey, &line)
}

func (s *FileStore[R]) Delete(ctx context.Context, key string) (bool, error) {
	return s.rewrite(ctx, key, nil)
}

// rewrite copies the file to a temp file, replacing records keyed key with
// replacement, or dropping them when replacement is nil. The temp file is
// renamed into place only if at least one record matched.
func (s *FileStore[R]) rewrite(ctx context.Context, key string, replacement *string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	src, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", s.path, err)
	}

	tmpPath := s.path + tempFileSuffix
	tmp, err := os.Create(tmpPath)
	if err != nil {
		return false, fmt.Errorf("create %s: %w", tmpPath, err)
	}
	// the rename replaces the original, so carry its permissions over
	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return false, fmt.Errorf("chmod %s: %w", tmpPath, err)
	}

	found := false
	w := bufio.NewWriter(tmp)
	err = readLines(src, func(line string) error {
		if r, ok := s.codec.Decode(line); ok && s.codec.Key(r) == key {
			found = true
			if replacement == nil {
				return nil
			}
			line = *replacement
		}
		_, err := w.WriteString(line + "\n")
		return err
	})
	if err == nil {
		err = w.Flush()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpPath)
		return false, fmt.Errorf("rewrite %s: %w", s.path, err)
	}

	if !found {
		if err := os.Remove(tmpPath); err != nil {
			return false, fmt.Errorf("remove %s: %w", tmpPath, err)
		}
		return false, nil
	}

	src.Close()
	if err := os.Rename(tmpPath, s.path); err != nil {
		return false, fmt.Errorf("replace %s: %w", s.path, err)
	}
	return true, nil
}

func (s *FileStore[R]) exists() (bool, error) {
	_, err := os.Stat(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", s.path, err)
	}
	return true, nil
}

func (s *FileStore[R]) scan(ctx context.Context, fn func(line string) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	err = readLines(f, fn)
	if errors.Is(err, errStopScan) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", s.path, err)
	}
	return nil
}

func readLines(r io.Reader, fn func(line string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		if err := fn(strings.TrimSuffix(sc.Text(), "\r")); err != nil {
			return err
		}
	}
	return sc.Err()
}

// EnsureFile creates an empty file at path if none exists.
func EnsureFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	return f.Close()
}
