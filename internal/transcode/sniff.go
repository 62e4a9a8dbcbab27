package transcode

import (
	"bytes"
	"net/http"
	"path"
	"strings"
)

// Format identifies an image container.
type Format string

const (
	FormatUnknown Format = ""
	FormatJPEG    Format = "jpeg"
	FormatPNG     Format = "png"
	FormatGIF     Format = "gif"
	FormatBMP     Format = "bmp"
	FormatTIFF    Format = "tiff"
	FormatWebP    Format = "webp"
)

var extensionFormats = map[string]Format{
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".jpe":  FormatJPEG,
	".png":  FormatPNG,
	".gif":  FormatGIF,
	".bmp":  FormatBMP,
	".tif":  FormatTIFF,
	".tiff": FormatTIFF,
	".webp": FormatWebP,
}

var mimeFormats = map[string]Format{
	"image/jpeg": FormatJPEG,
	"image/png":  FormatPNG,
	"image/gif":  FormatGIF,
	"image/bmp":  FormatBMP,
	"image/webp": FormatWebP,
}

var (
	tiffLittleEndian = []byte("II*\x00")
	tiffBigEndian    = []byte("MM\x00*")
)

// Sniff decides whether an entry should be treated as an image. The payload's
// magic bytes win over the extension; an image extension on unrecognized
// bytes still reports that format so the decode failure is surfaced rather
// than silently ignored. Anything else is FormatUnknown and passes through.
func Sniff(name string, payload []byte) Format {
	if format := sniffContent(payload); format != FormatUnknown {
		return format
	}
	return extensionFormats[strings.ToLower(path.Ext(name))]
}

func sniffContent(payload []byte) Format {
	if bytes.HasPrefix(payload, tiffLittleEndian) || bytes.HasPrefix(payload, tiffBigEndian) {
		return FormatTIFF
	}
	mime := http.DetectContentType(payload)
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return mimeFormats[mime]
}

// IsImage reports whether Sniff recognizes the entry as an image.
func IsImage(name string, payload []byte) bool {
	return Sniff(name, payload) != FormatUnknown
}
