// Package sink stores generated documents and previews, either in a local
// directory or in an S3 bucket.
package sink

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned by Get for a missing name.
var ErrNotFound = errors.New("sink: not found")

// Sink stores named blobs. Names use forward slashes.
type Sink interface {
	Put(ctx context.Context, name string, data []byte) error
	Get(ctx context.Context, name string) ([]byte, error)
	// Location describes where name ends up, for logging.
	Location(name string) string
}

// Dir is a Sink rooted at a local directory.
type Dir struct {
	Root string
}

func (d Dir) path(name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if clean == "." || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("sink: name %q escapes %s", name, d.Root)
	}
	return filepath.Join(d.Root, clean), nil
}

// Put writes data to Root/name, creating parent directories.
func (d Dir) Put(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := d.path(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return fmt.Errorf("sink: %w", err)
	}
	if err := os.WriteFile(p, data, 0644); err != nil {
		return fmt.Errorf("sink: %w", err)
	}
	return nil
}

// Get reads Root/name.
func (d Dir) Get(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := d.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	if err != nil {
		return nil, fmt.Errorf("sink: %w", err)
	}
	return data, nil
}

func (d Dir) Location(name string) string {
	return filepath.Join(d.Root, filepath.FromSlash(name))
}
