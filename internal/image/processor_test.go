package image

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProcessorSave(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(dir, 5*1024*1024)

	t.Run("stores a png thumbnail", func(t *testing.T) {
		name, err := p.Save(bytes.NewReader(pngBytes(t, 600, 400)), "Foto de Oficina.png")
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(name, ".png"), "got %q", name)
		assert.True(t, strings.HasPrefix(name, "foto-de-oficina-"), "got %q", name)

		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)

		img, format, err := image.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, "png", format)
		assert.Equal(t, ThumbnailSize, img.Bounds().Dx())
		assert.Equal(t, ThumbnailSize, img.Bounds().Dy())
	})

	t.Run("rejects non-image payloads", func(t *testing.T) {
		_, err := p.Save(strings.NewReader("definitely not an image"), "notes.txt")
		assert.Error(t, err)
	})

	t.Run("rejects oversized files", func(t *testing.T) {
		small := NewProcessor(dir, 10)
		_, err := small.Save(bytes.NewReader(pngBytes(t, 50, 50)), "big.png")
		assert.ErrorContains(t, err, "exceeds maximum")
	})
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"Foto de Oficina.png":  "foto-de-oficina",
		"../../etc/passwd":     "passwd",
		"REPORTE_FINAL.JPG":    "reporte-final",
		"señal#rara!.png":      "sealrara",
		"....":                 "upload",
	}
	for in, want := range cases {
		assert.Equal(t, want, sanitizeFilename(in), "input %q", in)
	}
}
