package services

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// UploadInbox stores uploaded transcript files before they are extracted.
type UploadInbox struct {
	Dir string // absolute path of the upload directory
}

func NewUploadInbox(dir string) (*UploadInbox, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("could not determine absolute path for upload dir: %w", err)
	}
	if err := os.MkdirAll(absPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &UploadInbox{Dir: absPath}, nil
}

// sanitizeFilename ensures the filename is a supported transcript type and
// stays within the upload directory.
func (u *UploadInbox) sanitizeFilename(filename string) (string, error) {
	base := filepath.Base(filepath.Clean("/" + strings.ReplaceAll(filename, `\`, "/")))
	if base == "/" || base == "." || base == ".." {
		return "", fmt.Errorf("invalid filename %q", filename)
	}
	if !SupportedFile(base) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFile, filepath.Ext(base))
	}
	cleanPath := filepath.Join(u.Dir, base)
	if !strings.HasPrefix(cleanPath, u.Dir+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid filename, attempts to escape upload directory")
	}
	return cleanPath, nil
}

// Save writes r under a timestamped version of filename and returns the path.
// The timestamp goes after the original name so a leading meeting number stays
// the first integer. Existing uploads are never overwritten.
func (u *UploadInbox) Save(filename string, r io.Reader) (string, error) {
	path, err := u.sanitizeFilename(filename)
	if err != nil {
		return "", err
	}
	ext := filepath.Ext(path)
	path = strings.TrimSuffix(path, ext) + "_" + time.Now().UTC().Format("20060102T150405.000000000") + ext

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file %s: %w", filepath.Base(path), err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write upload file %s: %w", filepath.Base(path), err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}
