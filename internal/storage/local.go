// Package storage keeps uploaded originals and derived files on local disk.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidName is returned for names that escape the storage root.
var ErrInvalidName = errors.New("invalid storage name")

// Local stores files below Root and serves them under BaseURL.
// Names are slash-separated paths relative to Root, e.g. "pages/gallery/a.jpg".
type Local struct {
	Root    string
	BaseURL string
}

// NewLocal returns a Local store rooted at root.
func NewLocal(root, baseURL string) *Local {
	return &Local{
		Root:    root,
		BaseURL: "/" + strings.Trim(baseURL, "/"),
	}
}

// Save writes r under name and returns the name actually used. When name is
// taken a short random suffix is added before the extension.
func (l *Local) Save(name string, r io.Reader) (string, error) {
	clean, err := cleanName(name)
	if err != nil {
		return "", err
	}

	target, err := l.availableName(clean)
	if err != nil {
		return "", err
	}

	full := l.fullPath(target)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create storage dir: %w", err)
	}

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", target, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(full)
		return "", fmt.Errorf("write %s: %w", target, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(full)
		return "", fmt.Errorf("close %s: %w", target, err)
	}

	return target, nil
}

// Open opens a stored file for reading.
func (l *Local) Open(name string) (io.ReadCloser, error) {
	clean, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	return os.Open(l.fullPath(clean))
}

// Delete removes a stored file. Missing files are not an error.
func (l *Local) Delete(name string) error {
	if strings.TrimSpace(name) == "" {
		return nil
	}
	clean, err := cleanName(name)
	if err != nil {
		return err
	}
	if err := os.Remove(l.fullPath(clean)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Exists reports whether name is present.
func (l *Local) Exists(name string) bool {
	clean, err := cleanName(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(l.fullPath(clean))
	return err == nil
}

// URL returns the public URL path for name.
func (l *Local) URL(name string) string {
	if name == "" {
		return ""
	}
	return strings.TrimRight(l.BaseURL, "/") + "/" + strings.TrimLeft(name, "/")
}

func (l *Local) fullPath(name string) string {
	return filepath.Join(l.Root, filepath.FromSlash(name))
}

func (l *Local) availableName(name string) (string, error) {
	if !l.Exists(name) {
		return name, nil
	}

	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for i := 0; i < 10; i++ {
		candidate := fmt.Sprintf("%s_%s%s", base, uuid.NewString()[:7], ext)
		if !l.Exists(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no available name for %s", name)
}

func cleanName(name string) (string, error) {
	trimmed := strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	if trimmed == "" {
		return "", ErrInvalidName
	}
	clean := path.Clean("/" + trimmed)
	clean = strings.TrimPrefix(clean, "/")
	if clean == "" || clean == "." {
		return "", ErrInvalidName
	}
	return clean, nil
}
