// Package avatars stores user avatar images on disk with BlurHash
// placeholders for clients.
package avatars

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bbrks/go-blurhash"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// blurHashSize is the thumbnail edge used for BlurHash computation.
// BlurHash is a low-resolution placeholder, so a small thumbnail
// produces nearly identical results at a fraction of the cost.
const blurHashSize = 64

// Storage manages avatar files under a single directory.
// Thread-safe for concurrent operations.
type Storage struct {
	basePath string
	mu       sync.RWMutex
}

// NewStorage creates avatar storage rooted at basePath, creating the
// directory if needed.
func NewStorage(basePath string) (*Storage, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}

	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create avatar directory: %w", err)
	}

	return &Storage{basePath: basePath}, nil
}

// Save validates and stores an avatar for a user, replacing any
// previous one. The data must decode as JPEG, PNG, GIF, or WebP.
// Returns the stored filename and the computed BlurHash.
func (s *Storage) Save(userID string, data []byte) (filename, hash string, err error) {
	if userID == "" {
		return "", "", fmt.Errorf("user ID cannot be empty")
	}
	if len(data) == 0 {
		return "", "", fmt.Errorf("image data cannot be empty")
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", "", fmt.Errorf("decode image: %w", err)
	}

	hash, err = computeBlurHash(img)
	if err != nil {
		return "", "", err
	}

	filename = userID + "." + format

	s.mu.Lock()
	defer s.mu.Unlock()

	// Drop stale files with a different extension.
	if err := s.removeLocked(userID); err != nil {
		return "", "", err
	}

	if err := os.WriteFile(filepath.Join(s.basePath, filename), data, 0o644); err != nil {
		return "", "", fmt.Errorf("failed to write avatar file: %w", err)
	}

	return filename, hash, nil
}

// Resolve maps a stored filename to its absolute path, rejecting
// anything that would escape the avatar directory.
func (s *Storage) Resolve(filename string) (string, error) {
	if filename == "" || strings.ContainsAny(filename, `/\`) || strings.Contains(filename, "..") {
		return "", fmt.Errorf("invalid avatar filename %q", filename)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	path := filepath.Join(s.basePath, filename)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("avatar %s not found: %w", filename, err)
	}
	return path, nil
}

// Delete removes all stored avatars for a user. Missing files are not
// an error.
func (s *Storage) Delete(userID string) error {
	if userID == "" {
		return fmt.Errorf("user ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.removeLocked(userID)
}

func (s *Storage) removeLocked(userID string) error {
	matches, err := filepath.Glob(filepath.Join(s.basePath, userID+".*"))
	if err != nil {
		return fmt.Errorf("glob avatars: %w", err)
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove avatar: %w", err)
		}
	}
	return nil
}

// computeBlurHash generates a BlurHash with 4x3 components, resizing
// to a small thumbnail first for performance.
func computeBlurHash(img image.Image) (string, error) {
	thumbnail := resizeForBlurHash(img)

	hash, err := blurhash.Encode(4, 3, thumbnail)
	if err != nil {
		return "", fmt.Errorf("encode blurhash: %w", err)
	}
	return hash, nil
}

// resizeForBlurHash scales the image down with nearest-neighbor
// sampling, which is fast and sufficient for BlurHash.
func resizeForBlurHash(img image.Image) image.Image {
	bounds := img.Bounds()
	srcWidth := bounds.Dx()
	srcHeight := bounds.Dy()

	if srcWidth <= blurHashSize && srcHeight <= blurHashSize {
		return img
	}

	var dstWidth, dstHeight int
	if srcWidth > srcHeight {
		dstWidth = blurHashSize
		dstHeight = max((srcHeight*blurHashSize)/srcWidth, 1)
	} else {
		dstHeight = blurHashSize
		dstWidth = max((srcWidth*blurHashSize)/srcHeight, 1)
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstWidth, dstHeight))

	xRatio := float64(srcWidth) / float64(dstWidth)
	yRatio := float64(srcHeight) / float64(dstHeight)

	for y := 0; y < dstHeight; y++ {
		for x := 0; x < dstWidth; x++ {
			srcX := int(float64(x) * xRatio)
			srcY := int(float64(y) * yRatio)
			dst.Set(x, y, img.At(bounds.Min.X+srcX, bounds.Min.Y+srcY))
		}
	}

	return dst
}
