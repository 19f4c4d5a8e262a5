// Package local stores uploads on the local filesystem and exposes them under
// a public URL prefix.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/logger"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/storage"
)

// PublicPrefix is the URL prefix the HTTP server serves Root under.
const PublicPrefix = "/uploads"

type Store struct {
	root string
	logg *logger.Logger
}

// New creates root if needed.
func New(ctx context.Context, root string, logg *logger.Logger) (*Store, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("upload root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %q: %w", root, err)
	}
	if logg != nil {
		logg.Info(logg.WithField(ctx, "upload_dir", root), "local upload storage ready")
	}
	return &Store{root: root, logg: logg}, nil
}

func (s *Store) Root() string {
	return s.root
}

// Save writes body to <root>/<folder>/<filename> and returns
// /uploads/<folder>/<filename>.
func (s *Store) Save(ctx context.Context, folder, filename string, body io.Reader) (string, error) {
	folder = cleanSegment(folder)
	filename = cleanSegment(filename)
	if filename == "" {
		return "", errors.New("filename is required")
	}

	dir := filepath.Join(s.root, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}

	full := filepath.Join(dir, filename)
	f, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %q: %w", full, err)
	}
	if _, err := io.Copy(f, body); err != nil {
		_ = f.Close()
		_ = os.Remove(full)
		return "", fmt.Errorf("write %q: %w", full, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(full)
		return "", fmt.Errorf("close %q: %w", full, err)
	}

	return path.Join(PublicPrefix, folder, filename), nil
}

// Delete removes a file previously returned by Save.
func (s *Store) Delete(ctx context.Context, publicPath string) error {
	rel := strings.TrimPrefix(path.Clean("/"+publicPath), PublicPrefix+"/")
	if rel == "" || strings.HasPrefix(rel, "/") {
		return fmt.Errorf("path %q is outside the upload root", publicPath)
	}
	full := filepath.Join(s.root, filepath.FromSlash(rel))
	if err := os.Remove(full); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("remove %q: %w", full, err)
	}
	return nil
}

// Ping checks that the root is still a writable directory.
func (s *Store) Ping(ctx context.Context) error {
	info, err := os.Stat(s.root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%q is not a directory", s.root)
	}
	return nil
}

func cleanSegment(seg string) string {
	seg = strings.TrimSpace(seg)
	seg = strings.ReplaceAll(seg, "..", "")
	seg = strings.Trim(seg, "/\\")
	return filepath.ToSlash(seg)
}

// FileServer serves the files under root. Directories answer 404 so uploads
// cannot be enumerated.
func FileServer(root string) http.Handler {
	return http.FileServer(filesOnly{http.Dir(root)})
}

type filesOnly struct {
	fs http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = file.Close()
		return nil, os.ErrNotExist
	}
	return file, nil
}

var _ storage.Store = (*Store)(nil)
