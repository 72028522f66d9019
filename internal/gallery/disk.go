package gallery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Disk layout under the data root:
//
//	<root>/users/<name>/<name>.jpg   reference image
//	<root>/users/<name>/verified_report.txt
//	<root>/unknown/                  unknown-face archive
const (
	usersDir   = "users"
	unknownDir = "unknown"
)

// UsersPath returns the directory holding all identity folders.
func UsersPath(root string) string {
	return filepath.Join(root, usersDir)
}

// IdentityPath returns the storage directory for one identity.
func IdentityPath(root, name string) string {
	return filepath.Join(root, usersDir, name)
}

// UnknownPath returns the identity-independent unknown-face archive.
func UnknownPath(root string) string {
	return filepath.Join(root, unknownDir)
}

// referenceImagePath returns the path of the stored reference JPEG.
func referenceImagePath(root, name string) string {
	return filepath.Join(IdentityPath(root, name), name+".jpg")
}

// SaveImage writes the reference JPEG for an identity, creating its
// folder if needed.
func SaveImage(root, name string, jpegData []byte) error {
	dir := IdentityPath(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating identity folder: %w", err)
	}
	if err := os.WriteFile(referenceImagePath(root, name), jpegData, 0o644); err != nil {
		return fmt.Errorf("writing reference image: %w", err)
	}
	return nil
}

// RemoveStorage deletes an identity's folder and everything in it.
func RemoveStorage(root, name string) error {
	if err := os.RemoveAll(IdentityPath(root, name)); err != nil {
		return fmt.Errorf("removing identity folder: %w", err)
	}
	return nil
}

// StoredIdentity is an identity folder found on disk with a readable
// reference image.
type StoredIdentity struct {
	Name      string
	ImagePath string
}

// ListStored scans the users directory for identity folders that carry
// a reference image. A missing users directory is not an error.
func ListStored(root string) ([]StoredIdentity, error) {
	entries, err := os.ReadDir(UsersPath(root))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading users directory: %w", err)
	}

	var stored []StoredIdentity
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name := e.Name()
		imagePath := referenceImagePath(root, name)
		if _, err := os.Stat(imagePath); err != nil {
			continue
		}
		stored = append(stored, StoredIdentity{Name: name, ImagePath: imagePath})
	}
	return stored, nil
}

// ExtractFunc computes a feature vector from an image. It is the
// feature-extraction contract the reload path depends on.
type ExtractFunc func(ctx context.Context, imageData []byte) ([]float32, error)

// LoadStored re-registers one stored identity by re-running feature
// extraction over its reference image.
func (g *Gallery) LoadStored(ctx context.Context, stored StoredIdentity, extract ExtractFunc) error {
	data, err := os.ReadFile(stored.ImagePath)
	if err != nil {
		return fmt.Errorf("reading reference image: %w", err)
	}
	vector, err := extract(ctx, data)
	if err != nil {
		return fmt.Errorf("extracting features for %q: %w", stored.Name, err)
	}
	return g.Register(stored.Name, vector)
}
