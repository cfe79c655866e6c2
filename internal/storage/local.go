package storage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"  // register decoders for common upload formats
	_ "image/jpeg" //
	_ "image/png"  //

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	masterMaxSize = 2048
	webpQuality   = 80
)

// LocalStore stores objects as normalized WebP files under a base directory.
// Object IDs are relative paths ("avatars/<uuid>.webp") so they double as the
// public URL suffix.
type LocalStore struct {
	baseDir string
	baseURL string
}

// NewLocalStore returns a LocalStore rooted at baseDir, serving under baseURL.
func NewLocalStore(baseDir, baseURL string) *LocalStore {
	return &LocalStore{
		baseDir: baseDir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// BaseDir returns the directory objects are written under, for static serving.
func (s *LocalStore) BaseDir() string {
	return s.baseDir
}

// Upload decodes, downscales, and re-encodes the image as WebP, then writes it
// under folder. The rewrite strips metadata and rejects non-image payloads.
func (s *LocalStore) Upload(ctx context.Context, content []byte, folder string) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	src = downscale(src, masterMaxSize)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, src, &webp.Options{Quality: webpQuality}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}

	objectID := filepath.Join(folder, uuid.New().String()+".webp")
	path := filepath.Join(s.baseDir, objectID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create object directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("write object: %w", err)
	}

	return &Object{
		ID:  objectID,
		URL: fmt.Sprintf("%s/uploads/%s", s.baseURL, filepath.ToSlash(objectID)),
	}, nil
}

// Delete removes the object file. A missing object is not an error so
// releases stay idempotent.
func (s *LocalStore) Delete(ctx context.Context, objectID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// Refuse IDs that escape the base directory.
	clean := filepath.Clean(objectID)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return fmt.Errorf("invalid object id %q", objectID)
	}
	err := os.Remove(filepath.Join(s.baseDir, clean))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// downscale resizes src so its longest side is at most maxSize, preserving
// aspect ratio. Images already within bounds are returned unchanged.
func downscale(src image.Image, maxSize int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxSize && h <= maxSize {
		return src
	}

	var nw, nh int
	if w >= h {
		nw = maxSize
		nh = h * maxSize / w
	} else {
		nh = maxSize
		nw = w * maxSize / h
	}
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)
	return dst
}
