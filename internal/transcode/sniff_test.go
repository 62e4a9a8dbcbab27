package transcode

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSniff(t *testing.T) {
	tests := []struct {
		name    string
		entry   string
		payload []byte
		want    Format
	}{
		{"jpeg magic", "x.bin", []byte("\xFF\xD8\xFF\xE0rest"), FormatJPEG},
		{"png magic wins over extension", "x.jpg", []byte("\x89PNG\x0D\x0A\x1A\x0Arest"), FormatPNG},
		{"gif", "x", []byte("GIF89a...."), FormatGIF},
		{"webp", "x", []byte("RIFF\x00\x00\x00\x00WEBPVP"), FormatWebP},
		{"tiff little endian", "x", []byte("II*\x00rest"), FormatTIFF},
		{"tiff big endian", "x", []byte("MM\x00*rest"), FormatTIFF},
		{"extension only", "page.JPEG", []byte("garbage"), FormatJPEG},
		{"text", "ComicInfo.xml", []byte("<?xml version=\"1.0\"?>"), FormatUnknown},
		{"empty", "empty", nil, FormatUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sniff(tt.entry, tt.payload))
		})
	}
}

func TestMarkerRoundTrip(t *testing.T) {
	encoded := []byte{0xFF, 0xD8, 0xFF, 0xDB, 0x00, 0x04, 0x01, 0x02, 0xFF, 0xDA, 0x00, 0x02}
	marked := withMarker(encoded, 85)

	assert.True(t, hasMarker(marked, 85))
	assert.False(t, hasMarker(marked, 70))
	assert.False(t, hasMarker(encoded, 85))
	assert.Equal(t, encoded[2:], marked[len(marked)-len(encoded)+2:])
}

func TestHasMarkerTruncated(t *testing.T) {
	assert.False(t, hasMarker([]byte{0xFF, 0xD8, 0xFF, 0xFE, 0x00, 0x40}, 85))
	assert.False(t, hasMarker([]byte("not a jpeg"), 85))
}

func TestFitKeepsAspect(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 1000, 10))
	out := fit(src, 100)
	assert.Equal(t, 100, out.Bounds().Dx())
	assert.Equal(t, 1, out.Bounds().Dy())
	assert.True(t, isGray(out))
}
