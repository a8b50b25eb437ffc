// Package filex contains file helpers for the client: locating the local
// data directory and loading avatar images with the upload limits applied.
package filex

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/invaders/internal/common"
)

// MaxAvatarSize is the largest avatar the server accepts (2 MiB).
const MaxAvatarSize int64 = 2 << 20

func EnsureSubdDir(dirName string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getwd: %w", err)
	}

	dir := filepath.Join(cwd, dirName)

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// Image is an avatar loaded from disk.
type Image struct {
	Data        []byte
	ContentType string
	Ext         string
}

// ValidateImage applies the avatar rules: an image/* MIME type and at most
// max bytes.
func ValidateImage(contentType string, size, max int64) error {
	if !strings.HasPrefix(contentType, "image/") {
		return fmt.Errorf("%w: %q", common.ErrorUnsupportedMediaType, contentType)
	}
	if size > max {
		return fmt.Errorf("%w: %d bytes, limit %d", common.ErrorFileTooLarge, size, max)
	}
	return nil
}

// ReadImage loads path if it passes ValidateImage. The size is checked
// before reading. The type is sniffed from the content and falls back to
// the extension for formats sniffing does not know, such as SVG.
func ReadImage(path string, max int64) (*Image, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if fi.Size() > max {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", common.ErrorFileTooLarge, fi.Size(), max)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") && ext != "" {
		if byExt := mime.TypeByExtension("." + ext); byExt != "" {
			contentType = strings.SplitN(byExt, ";", 2)[0]
		}
	}

	if err := ValidateImage(contentType, int64(len(data)), max); err != nil {
		return nil, err
	}

	if ext == "" {
		ext = ExtensionFor(contentType)
	}

	return &Image{Data: data, ContentType: contentType, Ext: ext}, nil
}

// ExtensionFor maps an image content type to a file extension without the dot.
func ExtensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/webp":
		return "webp"
	case "image/svg+xml":
		return "svg"
	}
	if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
		return strings.TrimPrefix(exts[0], ".")
	}
	return "bin"
}
