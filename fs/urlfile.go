package fs

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
)

// URLFile writes a URL list with atomic replace semantics.
// URLs are written to a temporary file next to the target, then renamed
// over it on Commit.
type URLFile struct {
	path string
	tmp  *os.File
}

// NewURLFile creates a URLFile targeting path.
func NewURLFile(path string) *URLFile {
	return &URLFile{path: path}
}

// Write writes urls one per line, each newline-terminated, to the
// temporary file. It may be called once before Commit or Abort.
func (f *URLFile) Write(urls []string) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return err
	}
	f.tmp = tmp

	if err := WriteURLs(tmp, urls); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	return tmp.Close()
}

// Commit moves the temporary file over the target path.
func (f *URLFile) Commit() error {
	if f.tmp == nil {
		return nil
	}
	if err := os.Chmod(f.tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(f.tmp.Name(), f.path)
}

// Abort removes the temporary file, leaving the target untouched.
func (f *URLFile) Abort() error {
	if f.tmp == nil {
		return nil
	}
	_ = f.tmp.Close()
	err := os.Remove(f.tmp.Name())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// WriteURLs writes urls to w one per line, each newline-terminated.
func WriteURLs(w io.Writer, urls []string) error {
	bw := bufio.NewWriter(w)
	for _, u := range urls {
		if _, err := bw.WriteString(u); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteURLFile atomically replaces the file at path with urls.
func WriteURLFile(path string, urls []string) error {
	f := NewURLFile(path)
	if err := f.Write(urls); err != nil {
		_ = f.Abort()
		return err
	}
	if err := f.Commit(); err != nil {
		_ = f.Abort()
		return err
	}
	return nil
}
