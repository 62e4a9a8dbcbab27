package transcode

import (
	"bytes"
	"encoding/binary"
	"strconv"
)

const markerPrefix = "cbzsanitize q="

const (
	jpegSOI = 0xD8
	jpegCOM = 0xFE
	jpegSOS = 0xDA
)

// withMarker inserts a COM segment recording quality directly after the SOI
// marker of an encoded JPEG.
func withMarker(encoded []byte, quality int) []byte {
	if len(encoded) < 2 || encoded[0] != 0xFF || encoded[1] != jpegSOI {
		return encoded
	}
	text := markerPrefix + strconv.Itoa(quality)
	segment := make([]byte, 4, 4+len(text))
	segment[0], segment[1] = 0xFF, jpegCOM
	binary.BigEndian.PutUint16(segment[2:], uint16(2+len(text)))
	segment = append(segment, text...)

	out := make([]byte, 0, len(encoded)+len(segment))
	out = append(out, encoded[:2]...)
	out = append(out, segment...)
	return append(out, encoded[2:]...)
}

// hasMarker reports whether a JPEG header carries the COM segment written
// by withMarker for quality. Only the segments before the scan are examined.
func hasMarker(payload []byte, quality int) bool {
	if len(payload) < 4 || payload[0] != 0xFF || payload[1] != jpegSOI {
		return false
	}
	want := []byte(markerPrefix + strconv.Itoa(quality))
	pos := 2
	for pos+4 <= len(payload) {
		if payload[pos] != 0xFF {
			return false
		}
		kind := payload[pos+1]
		if kind == 0xFF {
			pos++
			continue
		}
		if kind == jpegSOS {
			return false
		}
		length := int(binary.BigEndian.Uint16(payload[pos+2:]))
		if length < 2 || pos+2+length > len(payload) {
			return false
		}
		if kind == jpegCOM && bytes.Equal(payload[pos+4:pos+2+length], want) {
			return true
		}
		pos += 2 + length
	}
	return false
}
