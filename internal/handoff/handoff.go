// Package handoff reads and writes the two small files that tell the
// renderer which image of which split to render next.
package handoff

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"clevr-scenegen/internal/rng"
)

const (
	ImageFile = "img2render.txt"
	SplitFile = "split.txt"
)

// Handoff names one image of one split.
type Handoff struct {
	Image int
	Split string
}

// Read parses the handoff files in dir.
func Read(dir string) (Handoff, error) {
	img, err := readTrimmed(filepath.Join(dir, ImageFile))
	if err != nil {
		return Handoff{}, err
	}
	n, err := strconv.Atoi(img)
	if err != nil || n < 0 {
		return Handoff{}, fmt.Errorf("handoff: %s holds %q, want a non-negative integer", ImageFile, img)
	}

	split, err := readTrimmed(filepath.Join(dir, SplitFile))
	if err != nil {
		return Handoff{}, err
	}
	if _, err := rng.SeedForSplit(split); err != nil {
		return Handoff{}, fmt.Errorf("handoff: %w", err)
	}
	return Handoff{Image: n, Split: split}, nil
}

// Write stores h in dir.
func Write(dir string, h Handoff) error {
	if h.Image < 0 {
		return fmt.Errorf("handoff: negative image index %d", h.Image)
	}
	if _, err := rng.SeedForSplit(h.Split); err != nil {
		return fmt.Errorf("handoff: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("handoff: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ImageFile), []byte(strconv.Itoa(h.Image)+"\n"), 0644); err != nil {
		return fmt.Errorf("handoff: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, SplitFile), []byte(h.Split+"\n"), 0644); err != nil {
		return fmt.Errorf("handoff: %w", err)
	}
	return nil
}

func readTrimmed(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("handoff: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
