package transcode

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"path"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"cbzsanitize/internal/config"
	"cbzsanitize/internal/faults"
)

// Options bounds the images the transcoder emits.
type Options struct {
	MaxDimension  int
	Quality       int
	SizeThreshold int64
	// MaxPixels refuses to decode images whose area exceeds it.
	MaxPixels int64
}

// OptionsFromConfig maps the finalized transcode section to Options.
func OptionsFromConfig(cfg config.Transcode) Options {
	return Options{
		MaxDimension:  cfg.MaxDimension,
		Quality:       cfg.Quality,
		SizeThreshold: cfg.SizeThresholdBytes,
		MaxPixels:     cfg.MaxPixels,
	}
}

// Result is the outcome for one entry. When Transcoded is false, Payload and
// Name are the inputs unchanged.
type Result struct {
	Name       string
	Payload    []byte
	Format     Format
	Transcoded bool
	// Resized is set when the image was scaled down.
	Resized bool
	Width   int
	Height  int
	// Skip explains why an image was left alone.
	Skip string
}

// Transcoder downsizes and re-encodes oversized page images.
type Transcoder struct {
	opts Options
}

// New returns a Transcoder with the given bounds.
func New(opts Options) *Transcoder {
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = jpeg.DefaultQuality
	}
	return &Transcoder{opts: opts}
}

// Apply transcodes payload when its longer edge exceeds MaxDimension or its
// size exceeds SizeThreshold. Non-image entries and images within bounds are
// returned unchanged. When the image cannot be decoded the unchanged input is
// returned together with an ErrDecodeFailure error.
func (t *Transcoder) Apply(name string, payload []byte) (Result, error) {
	result := Result{Name: name, Payload: payload, Format: Sniff(name, payload)}
	if result.Format == FormatUnknown {
		result.Skip = "not an image"
		return result, nil
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(payload))
	if err != nil {
		return result, faults.Wrap(faults.ErrDecodeFailure, "transcoder", "decode", name, err)
	}
	result.Width, result.Height = cfg.Width, cfg.Height
	if t.opts.MaxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > t.opts.MaxPixels {
		return result, faults.Wrap(faults.ErrDecodeFailure, "transcoder", "decode",
			fmt.Sprintf("%s is %dx%d, above the %d pixel limit", name, cfg.Width, cfg.Height, t.opts.MaxPixels), nil)
	}

	oversize := t.opts.MaxDimension > 0 && max(cfg.Width, cfg.Height) > t.opts.MaxDimension
	heavy := t.opts.SizeThreshold > 0 && int64(len(payload)) > t.opts.SizeThreshold
	switch {
	case !oversize && !heavy:
		result.Skip = "within bounds"
		return result, nil
	case !oversize && result.Format == FormatJPEG && hasMarker(payload, t.opts.Quality):
		result.Skip = "already transcoded"
		return result, nil
	}

	img, err := decode(result.Format, payload)
	if err != nil {
		return result, faults.Wrap(faults.ErrDecodeFailure, "transcoder", "decode", name, err)
	}
	if img == nil {
		result.Skip = "animated gif"
		return result, nil
	}

	if oversize {
		img = fit(img, t.opts.MaxDimension)
	}

	outFormat := result.Format
	if outFormat == FormatWebP {
		outFormat = FormatJPEG
	}
	encoded, err := t.encode(outFormat, img)
	if err != nil {
		return result, faults.Wrap(faults.ErrDecodeFailure, "transcoder", "encode", name, err)
	}

	// Without a resize the re-encode only earns its place by being smaller.
	if !oversize && len(encoded) >= len(payload) {
		result.Skip = "re-encode not smaller"
		return result, nil
	}

	bounds := img.Bounds()
	result.Payload = encoded
	result.Transcoded = true
	result.Resized = oversize
	result.Width, result.Height = bounds.Dx(), bounds.Dy()
	if outFormat != result.Format {
		result.Name = replaceExtension(name, ".jpg")
		result.Format = outFormat
	}
	return result, nil
}

// decode returns a nil image for animated GIFs, which are left alone.
func decode(format Format, payload []byte) (image.Image, error) {
	if format == FormatGIF {
		all, err := gif.DecodeAll(bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		if len(all.Image) != 1 {
			return nil, nil
		}
		return all.Image[0], nil
	}
	img, _, err := image.Decode(bytes.NewReader(payload))
	return img, err
}

// fit scales img so that its longer edge is limit, keeping the aspect ratio.
func fit(img image.Image, limit int) image.Image {
	src := img.Bounds()
	w, h := src.Dx(), src.Dy()
	var tw, th int
	if w >= h {
		tw = limit
		th = max(1, int((int64(h)*int64(limit)+int64(w)/2)/int64(w)))
	} else {
		th = limit
		tw = max(1, int((int64(w)*int64(limit)+int64(h)/2)/int64(h)))
	}

	rect := image.Rect(0, 0, tw, th)
	var dst draw.Image
	if isGray(img) {
		dst = image.NewGray(rect)
	} else {
		dst = image.NewRGBA(rect)
	}
	draw.CatmullRom.Scale(dst, rect, img, src, draw.Over, nil)
	return dst
}

func isGray(img image.Image) bool {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return true
	default:
		return false
	}
}

func (t *Transcoder) encode(format Format, img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case FormatJPEG:
		if err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: t.opts.Quality}); err == nil {
			return withMarker(buf.Bytes(), t.opts.Quality), nil
		}
	case FormatPNG:
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		err = enc.Encode(&buf, img)
	case FormatGIF:
		err = gif.Encode(&buf, img, nil)
	case FormatBMP:
		err = bmp.Encode(&buf, img)
	case FormatTIFF:
		err = tiff.Encode(&buf, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	default:
		err = fmt.Errorf("no encoder for %q", format)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func replaceExtension(name, ext string) string {
	return strings.TrimSuffix(name, path.Ext(name)) + ext
}
