package image

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	MaxDimension  = 4096
	ThumbnailSize = 300
)

// Processor validates uploads and writes resized copies under the uploads
// directory.
type Processor struct {
	dir     string
	maxSize int64
}

func NewProcessor(dir string, maxSize int64) *Processor {
	return &Processor{dir: dir, maxSize: maxSize}
}

// Save validates the upload and writes a 300x300 center-cropped copy. It
// returns the stored filename.
func (p *Processor) Save(file io.Reader, originalName string) (string, error) {
	data, err := io.ReadAll(io.LimitReader(file, p.maxSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	if int64(len(data)) > p.maxSize {
		return "", fmt.Errorf("file exceeds maximum %d bytes", p.maxSize)
	}

	contentType := http.DetectContentType(data)
	if contentType != "image/jpeg" && contentType != "image/png" {
		return "", fmt.Errorf("invalid file type %q: only jpeg and png are allowed", contentType)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > MaxDimension || bounds.Dy() > MaxDimension {
		return "", fmt.Errorf("image dimensions %dx%d exceed maximum %d", bounds.Dx(), bounds.Dy(), MaxDimension)
	}

	thumb := imaging.Fill(img, ThumbnailSize, ThumbnailSize, imaging.Center, imaging.Lanczos)

	ext := ".jpg"
	if format == "png" {
		ext = ".png"
	}
	name := sanitizeFilename(originalName) + "-" + uuid.New().String()[:8] + ext

	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}

	out, err := os.Create(filepath.Join(p.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer out.Close()

	switch format {
	case "png":
		err = imaging.Encode(out, thumb, imaging.PNG)
	default:
		err = imaging.Encode(out, thumb, imaging.JPEG, imaging.JPEGQuality(85))
	}
	if err != nil {
		return "", fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return name, nil
}

// sanitizeFilename strips the extension and anything outside [a-z0-9-].
func sanitizeFilename(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	base = strings.ToLower(base)
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == ' ':
			b.WriteByte('-')
		}
	}
	cleaned := strings.Trim(b.String(), "-")
	if cleaned == "" {
		cleaned = "upload"
	}
	if len(cleaned) > 40 {
		cleaned = cleaned[:40]
	}
	return cleaned
}
