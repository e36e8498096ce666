package repository

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"unicode/utf8"
)

// DefaultLogMaxBytes is the size the current log may reach before it is
// rotated into the single old file.
const DefaultLogMaxBytes = 50 * 1024

// LogFile keeps the text log in two files: the current one and at most one
// rotated generation.
type LogFile struct {
	mu       sync.Mutex
	path     string
	oldPath  string
	maxBytes int64
}

var _ LogStore = (*LogFile)(nil)

func NewLogFile(path, oldPath string, maxBytes int64) (*LogFile, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultLogMaxBytes
	}
	for _, p := range []string{path, oldPath} {
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return nil, fmt.Errorf("create log dir for %q: %w", p, err)
		}
	}
	return &LogFile{path: path, oldPath: oldPath, maxBytes: maxBytes}, nil
}

// Append writes line plus a newline. If that would push the current file past
// maxBytes, the current file replaces the old one first.
func (l *LogFile) Append(line string) error {
	entry := line + "\n"

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.rotateIfNeeded(int64(len(entry))); err != nil {
		return err
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(entry); err != nil {
		return fmt.Errorf("append log: %w", err)
	}
	return nil
}

func (l *LogFile) rotateIfNeeded(incoming int64) error {
	info, err := os.Stat(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat log: %w", err)
	}
	if info.Size()+incoming <= l.maxBytes {
		return nil
	}
	// os.Rename replaces oldPath, so only one generation survives.
	if err := os.Rename(l.path, l.oldPath); err != nil {
		return fmt.Errorf("rotate log: %w", err)
	}
	return nil
}

// Read returns the current log. A missing file reads as empty.
func (l *LogFile) Read() (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return readOptional(l.path)
}

func (l *LogFile) ReadOld() (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return readOptional(l.oldPath)
}

// Tail returns at most maxBytes from the end of the current log. A cut
// inside a line starts the result at the next whole line, or at the next
// rune when the window holds no complete line.
func (l *LogFile) Tail(maxBytes int) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat log: %w", err)
	}
	offset := int64(0)
	if maxBytes > 0 && info.Size() > int64(maxBytes) {
		offset = info.Size() - int64(maxBytes)
	}
	start := offset
	if offset > 0 {
		// one byte earlier tells whether offset is a line start
		start--
	}
	if _, err := f.Seek(start, io.SeekStart); err != nil {
		return "", fmt.Errorf("seek log: %w", err)
	}
	b, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("read log: %w", err)
	}
	if offset > 0 {
		b = alignTail(b)
	}
	return string(b), nil
}

// alignTail drops the partial line at the head of b, whose first byte
// precedes the requested window.
func alignTail(b []byte) []byte {
	if i := bytes.IndexByte(b, '\n'); i >= 0 && i+1 < len(b) {
		return b[i+1:]
	}
	b = b[1:]
	for len(b) > 0 && !utf8.RuneStart(b[0]) {
		b = b[1:]
	}
	return b
}

func readOptional(path string) (string, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %q: %w", path, err)
	}
	return string(b), nil
}
