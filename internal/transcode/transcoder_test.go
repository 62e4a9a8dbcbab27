package transcode_test

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"cbzsanitize/internal/faults"
	"cbzsanitize/internal/testsupport"
	"cbzsanitize/internal/transcode"
)

func newTranscoder(maxDim int, threshold int64) *transcode.Transcoder {
	return transcode.New(transcode.Options{
		MaxDimension:  maxDim,
		Quality:       85,
		SizeThreshold: threshold,
		MaxPixels:     50_000_000,
	})
}

func decodedSize(t *testing.T, payload []byte) (int, int) {
	t.Helper()
	cfg, _, err := image.DecodeConfig(bytes.NewReader(payload))
	require.NoError(t, err)
	return cfg.Width, cfg.Height
}

func TestApplyResizesOversizedJPEG(t *testing.T) {
	original := testsupport.JPEG(t, testsupport.NoiseImage(300, 400, 1), 100)
	tc := newTranscoder(200, 100_000)
	require.Greater(t, len(original), 100_000, "fixture must exceed the size threshold")

	res, err := tc.Apply("page_001.jpg", original)
	require.NoError(t, err)
	assert.True(t, res.Transcoded)
	assert.True(t, res.Resized)
	assert.Equal(t, "page_001.jpg", res.Name)
	assert.Equal(t, transcode.FormatJPEG, res.Format)

	w, h := decodedSize(t, res.Payload)
	assert.Equal(t, 150, w)
	assert.Equal(t, 200, h)
	assert.Less(t, len(res.Payload), 100_000)
}

func TestApplyIsIdempotent(t *testing.T) {
	tc := newTranscoder(200, 20_000)
	inputs := map[string][]byte{
		"noise.jpg": testsupport.JPEG(t, testsupport.NoiseImage(240, 320, 2), 100),
		"noise.png": testsupport.PNG(t, testsupport.NoiseImage(320, 240, 3)),
		"flat.png":  testsupport.PNG(t, testsupport.FlatImage(500, 100, color.RGBA{R: 200, A: 255})),
	}
	for name, payload := range inputs {
		t.Run(name, func(t *testing.T) {
			first, err := tc.Apply(name, payload)
			require.NoError(t, err)
			require.True(t, first.Transcoded)

			second, err := tc.Apply(first.Name, first.Payload)
			require.NoError(t, err)
			assert.False(t, second.Transcoded)
			assert.Equal(t, first.Payload, second.Payload)
			assert.Equal(t, first.Name, second.Name)
		})
	}
}

func TestApplyWithinBoundsPassesThrough(t *testing.T) {
	payload := testsupport.JPEG(t, testsupport.NoiseImage(100, 80, 4), 90)
	tc := newTranscoder(200, 10_000_000)

	res, err := tc.Apply("small.jpg", payload)
	require.NoError(t, err)
	assert.False(t, res.Transcoded)
	assert.Equal(t, "within bounds", res.Skip)
	assert.Equal(t, payload, res.Payload)
	assert.Equal(t, 100, res.Width)
}

func TestApplySizeTriggerKeepsSmallerOnly(t *testing.T) {
	heavy := testsupport.JPEG(t, testsupport.NoiseImage(180, 180, 5), 100)
	tc := newTranscoder(2000, int64(len(heavy)-1))

	res, err := tc.Apply("heavy.jpg", heavy)
	require.NoError(t, err)
	assert.True(t, res.Transcoded)
	assert.False(t, res.Resized)
	assert.Less(t, len(res.Payload), len(heavy))
	w, h := decodedSize(t, res.Payload)
	assert.Equal(t, 180, w)
	assert.Equal(t, 180, h)

	// Re-encoding a low quality JPEG at a higher quality only grows it.
	coarse := testsupport.JPEG(t, testsupport.NoiseImage(180, 180, 8), 20)
	res, err = newTranscoder(2000, 1).Apply("coarse.jpg", coarse)
	require.NoError(t, err)
	assert.False(t, res.Transcoded)
	assert.Equal(t, "re-encode not smaller", res.Skip)
	assert.Equal(t, coarse, res.Payload)
}

func TestApplyNonImagePassesThrough(t *testing.T) {
	payload := bytes.Repeat([]byte("ComicInfo "), 1000)
	res, err := newTranscoder(10, 1).Apply("ComicInfo.xml", payload)
	require.NoError(t, err)
	assert.False(t, res.Transcoded)
	assert.Equal(t, transcode.FormatUnknown, res.Format)
	assert.Equal(t, payload, res.Payload)
}

func TestApplyDecodeFailure(t *testing.T) {
	payload := append([]byte{0xFF, 0xD8, 0xFF}, bytes.Repeat([]byte{0x00}, 64)...)
	res, err := newTranscoder(10, 1).Apply("broken.jpg", payload)
	require.Error(t, err)
	assert.ErrorIs(t, err, faults.ErrDecodeFailure)
	assert.False(t, faults.IsFatal(err))
	assert.False(t, res.Transcoded)
	assert.Equal(t, payload, res.Payload)
}

func TestApplyRejectsHugePixelCount(t *testing.T) {
	payload := testsupport.PNG(t, testsupport.FlatImage(100, 100, color.White))
	tc := transcode.New(transcode.Options{MaxDimension: 50, Quality: 80, SizeThreshold: 1, MaxPixels: 9_999})

	res, err := tc.Apply("big.png", payload)
	assert.ErrorIs(t, err, faults.ErrDecodeFailure)
	assert.Equal(t, payload, res.Payload)
}

func TestApplyKeepsFormat(t *testing.T) {
	src := testsupport.NoiseImage(120, 60, 6)
	var bmpBuf bytes.Buffer
	require.NoError(t, bmp.Encode(&bmpBuf, src))

	res, err := newTranscoder(60, 1<<30).Apply("page.bmp", bmpBuf.Bytes())
	require.NoError(t, err)
	assert.True(t, res.Transcoded)
	assert.Equal(t, transcode.FormatBMP, res.Format)
	w, h := decodedSize(t, res.Payload)
	assert.Equal(t, 60, w)
	assert.Equal(t, 30, h)
}

func TestApplyLeavesAnimatedGIF(t *testing.T) {
	palette := color.Palette{color.Black, color.White}
	anim := &gif.GIF{
		Image: []*image.Paletted{
			image.NewPaletted(image.Rect(0, 0, 100, 100), palette),
			image.NewPaletted(image.Rect(0, 0, 100, 100), palette),
		},
		Delay: []int{10, 10},
	}
	var buf bytes.Buffer
	require.NoError(t, gif.EncodeAll(&buf, anim))

	res, err := newTranscoder(50, 1).Apply("anim.gif", buf.Bytes())
	require.NoError(t, err)
	assert.False(t, res.Transcoded)
	assert.Equal(t, buf.Bytes(), res.Payload)
}

func TestApplyFullSizePage(t *testing.T) {
	if testing.Short() {
		t.Skip("encodes a 12 megapixel page")
	}
	original := testsupport.JPEG(t, testsupport.NoiseImage(3000, 4000, 7), 100)
	tc := transcode.New(transcode.Options{MaxDimension: 2000, Quality: 85, SizeThreshold: 3_000_000, MaxPixels: 400_000_000})

	res, err := tc.Apply("page_001.jpg", original)
	require.NoError(t, err)
	require.True(t, res.Resized)
	w, h := decodedSize(t, res.Payload)
	assert.Equal(t, 1500, w)
	assert.Equal(t, 2000, h)
	assert.Less(t, len(res.Payload), len(original))
}
