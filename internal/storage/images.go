package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

// SetLogLevel aligns the storage logger with the application level
func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}

// ErrNotImage is returned when the uploaded bytes are empty or not an image
var ErrNotImage = errors.New("uploaded data is not an image")

// ImageStore persists recipe images and returns a reference stored on the recipe
type ImageStore interface {
	// Save stores the raw image bytes and returns its reference
	Save(ctx context.Context, data []byte) (string, error)
	// Delete removes a previously saved image; unknown references are ignored
	Delete(ctx context.Context, ref string) error
}

// FileImageStore keeps images under root/recipes with random names
type FileImageStore struct {
	root string
}

// NewFileImageStore creates the recipes directory under root if needed
func NewFileImageStore(root string) (*FileImageStore, error) {
	if err := os.MkdirAll(filepath.Join(root, "recipes"), 0o755); err != nil {
		return nil, fmt.Errorf("creating media directory: %w", err)
	}
	return &FileImageStore{root: root}, nil
}

func (s *FileImageStore) Save(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrNotImage
	}
	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", fmt.Errorf("%w: detected %s", ErrNotImage, mtype.String())
	}

	ref := filepath.ToSlash(filepath.Join("recipes", uuid.New().String()+mtype.Extension()))
	if err := os.WriteFile(filepath.Join(s.root, ref), data, 0o644); err != nil {
		return "", fmt.Errorf("writing image: %w", err)
	}

	log.WithFields(logrus.Fields{
		"ref":  ref,
		"mime": mtype.String(),
		"size": len(data),
	}).Debug("Image stored")
	return ref, nil
}

func (s *FileImageStore) Delete(ctx context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	clean := filepath.Clean(filepath.FromSlash(ref))
	if filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return fmt.Errorf("refusing to delete image outside media root: %s", ref)
	}
	err := os.Remove(filepath.Join(s.root, clean))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing image: %w", err)
	}
	return nil
}
