// Package blob stores document content outside the record store and hands
// out opaque references to it.
package blob

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// Object is one payload handed to a Store.
type Object struct {
	Name        string
	ContentType string
	Body        io.Reader
	Size        int64
}

// Store is the byte-storage abstraction used by the document registry.
type Store interface {
	// Put stores the object and returns the reference assigned to it.
	Put(ctx context.Context, obj Object) (string, error)
	// Open returns a reader for the content stored under ref.
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
}

// Linker turns a reference into a URL a browser can open.
type Linker interface {
	Link(ctx context.Context, ref string) (string, error)
}

// ViewerLinker builds share links of the form
// https://<host>/file/d/<ref>/view?usp=sharing.
type ViewerLinker struct {
	Host string
}

// NewViewerLinker returns a ViewerLinker for host. A scheme prefix is dropped.
func NewViewerLinker(host string) *ViewerLinker {
	host = strings.TrimPrefix(strings.TrimPrefix(host, "https://"), "http://")
	return &ViewerLinker{Host: strings.TrimSuffix(host, "/")}
}

func (l *ViewerLinker) Link(_ context.Context, ref string) (string, error) {
	if ref == "" {
		return "", fmt.Errorf("blob reference is required")
	}
	return fmt.Sprintf("https://%s/file/d/%s/view?usp=sharing", l.Host, url.PathEscape(ref)), nil
}
