package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	apperrors "hrportal/internal/errors"
)

const blobStore = "blob"

// LocalStore keeps blobs in a directory tree, one file per reference.
type LocalStore struct {
	root string
}

// NewLocalStore creates a store rooted at root/folder.
func NewLocalStore(root, folder string) (*LocalStore, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("local blob root is required")
	}
	abs, err := filepath.Abs(filepath.Join(root, folder))
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Join(abs, "tmp"), 0o755); err != nil {
		return nil, err
	}
	return &LocalStore{root: abs}, nil
}

// Put writes the body to a temp file and renames it into place, so a
// reference never points at a partial file.
func (s *LocalStore) Put(ctx context.Context, obj Object) (string, error) {
	if obj.Body == nil {
		return "", fmt.Errorf("body is required")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(filepath.Join(s.root, "tmp"), "put-*")
	if err != nil {
		return "", apperrors.NewStoreError(blobStore, "put", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	if _, err := io.Copy(tmp, obj.Body); err != nil {
		cleanup()
		return "", apperrors.NewStoreError(blobStore, "put", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", apperrors.NewStoreError(blobStore, "put", err)
	}

	ref := uuid.NewString()
	if err := os.Rename(tmpPath, s.path(ref)); err != nil {
		cleanup()
		return "", apperrors.NewStoreError(blobStore, "put", err)
	}
	return ref, nil
}

// Open returns the content stored under ref.
func (s *LocalStore) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(ref); err != nil {
		return nil, apperrors.ErrDocumentNotFound
	}
	f, err := os.Open(s.path(ref))
	if os.IsNotExist(err) {
		return nil, apperrors.ErrDocumentNotFound
	}
	if err != nil {
		return nil, apperrors.NewStoreError(blobStore, "open", err)
	}
	return f, nil
}

func (s *LocalStore) path(ref string) string {
	return filepath.Join(s.root, ref)
}
