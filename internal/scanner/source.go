package scanner

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sync"
)

// ErrSourceClosed is returned once the capture device has been released.
var ErrSourceClosed = errors.New("capture device closed")

// ErrNoFrames signals an exhausted frame source.
var ErrNoFrames = errors.New("no more frames available")

// FileSource replays captured frame images from disk, in order. Used by
// the scan CLI; the API server never owns a capture device.
type FileSource struct {
	mu     sync.Mutex
	paths  []string
	idx    int
	closed bool
}

func NewFileSource(paths ...string) *FileSource {
	return &FileSource{paths: paths}
}

func (s *FileSource) NextFrame(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSourceClosed
	}
	if s.idx >= len(s.paths) {
		return nil, ErrNoFrames
	}
	path := s.paths[s.idx]
	s.idx++

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode frame %s: %w", path, err)
	}
	return img, nil
}

func (s *FileSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
