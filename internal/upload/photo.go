// Package upload processes store photo uploads: only images are accepted,
// each file gets a random name, and oversized photos are scaled down before
// hitting disk.
package upload

import (
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const maxWidth = 800

var ErrNotAnImage = errors.New("that file type is not allowed")

var extByType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/bmp":  ".bmp",
}

type Processor struct {
	dir string
}

func NewProcessor(dir string) (*Processor, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Processor{dir: dir}, nil
}

// Save validates that header is an image, resizes it to at most maxWidth
// pixels wide (aspect preserved) and writes it under a fresh UUID filename.
// The returned name is what gets persisted on the store.
func (p *Processor) Save(header *multipart.FileHeader) (string, error) {
	ext, ok := extByType[header.Header.Get("Content-Type")]
	if !ok {
		return "", ErrNotAnImage
	}

	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	img, err := imaging.Decode(file, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}

	if img.Bounds().Dx() > maxWidth {
		// Height 0 preserves the aspect ratio.
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}

	name := uuid.NewString() + ext
	if err := imaging.Save(img, filepath.Join(p.dir, name)); err != nil {
		return "", fmt.Errorf("save photo: %w", err)
	}
	return name, nil
}
