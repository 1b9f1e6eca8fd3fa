package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type localUploader struct {
	root string
}

// NewLocalUploader writes objects below root, creating directories as needed.
func NewLocalUploader(root string) (FileUploader, error) {
	if root == "" {
		return nil, errors.New("local output directory is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output directory %s: %w", root, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", abs, err)
	}
	return &localUploader{root: abs}, nil
}

func (u *localUploader) path(key string) (string, error) {
	p := filepath.Join(u.root, filepath.FromSlash(key))
	if p != u.root && !strings.HasPrefix(p, u.root+string(filepath.Separator)) {
		return "", fmt.Errorf("key %q escapes the output directory", key)
	}
	return p, nil
}

func (u *localUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := u.path(key)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", key, err)
	}

	// write to a temp file and rename so overlay readers never see a half-written file
	tmp, err := os.CreateTemp(filepath.Dir(p), ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file for %s: %w", key, err)
	}
	if _, err := io.Copy(tmp, reader); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("failed to close %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("failed to move %s into place: %w", key, err)
	}

	return &UploadResult{Key: key, Location: p}, nil
}

func (u *localUploader) Delete(_ context.Context, key string) error {
	p, err := u.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (u *localUploader) GetPublicURL(key string) string {
	p, err := u.path(key)
	if err != nil {
		return ""
	}
	return "file://" + filepath.ToSlash(p)
}
