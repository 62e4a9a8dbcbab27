// Package transcode shrinks oversized page images.
//
// Sniff gates the work: only payloads recognized as images are decoded, and
// everything else passes through untouched. An image is transcoded when its
// longer edge exceeds the configured maximum dimension (it is then scaled
// down with Catmull-Rom resampling) or when its encoded size exceeds the size
// threshold (it is then re-encoded in place and kept only if smaller).
//
// JPEG output is tagged with a COM segment naming the quality it was written
// at. A tagged JPEG within the dimension bound is never encoded again, so
// running the transcoder over its own output returns identical bytes. WebP
// has no encoder here and is written out as JPEG.
package transcode
