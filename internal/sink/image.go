package sink

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// ImageSink writes accepted frames into one directory, each named by the
// topic cursor at accept time. Throttled runs leave gaps in the numbering on
// purpose: the file name is the message's provenance within the bag.
type ImageSink struct {
	dir string
	now func() time.Time
}

func newImageSink(dir string, now func() time.Time) (*ImageSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}
	return &ImageSink{dir: dir, now: now}, nil
}

// Dir returns the directory frames are written into.
func (s *ImageSink) Dir() string {
	return s.dir
}

// WriteImage persists one frame as <index>.png with the metadata record and
// an extraction timestamp embedded as PNG text chunks.
func (s *ImageSink) WriteImage(index int, img image.Image, metadata map[string]string) error {
	meta := make(map[string]string, len(metadata)+1)
	for k, v := range metadata {
		meta[k] = v
	}
	meta["extracted_at"] = s.now().UTC().Format(time.RFC3339)

	path := filepath.Join(s.dir, strconv.Itoa(index)+".png")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create image file: %w", err)
	}

	if err := encodePNGWithText(f, img, meta); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
