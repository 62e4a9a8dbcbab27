package naming

import (
	"path"
	"strings"

	"golang.org/x/text/unicode/norm"

	"cbzsanitize/internal/config"
)

const (
	defaultPadWidth = 3
	fallbackName    = "unnamed"

	minTokenLen = 5
	maxTokenLen = 16
)

// extensionAliases folds alternate spellings onto the one written out.
var extensionAliases = map[string]string{
	".jpeg": ".jpg",
	".jpe":  ".jpg",
	".tif":  ".tiff",
}

// Normalizer maps stored entry names to canonical names.
type Normalizer struct {
	padWidth int
	suffixes []string
}

// NewNormalizer builds a Normalizer from the naming section of the config.
func NewNormalizer(cfg config.Naming) *Normalizer {
	width := cfg.PadWidth
	if width <= 0 {
		width = defaultPadWidth
	}
	suffixes := make([]string, 0, len(cfg.StripSuffixes))
	for _, suffix := range cfg.StripSuffixes {
		if suffix = strings.TrimSpace(suffix); suffix != "" {
			suffixes = append(suffixes, suffix)
		}
	}
	return &Normalizer{padWidth: width, suffixes: suffixes}
}

// Canonical returns the canonical name for original. The result depends only
// on original and the normalizer's settings.
func (n *Normalizer) Canonical(original string) string {
	cleaned := norm.NFC.String(strings.ReplaceAll(original, "\\", "/"))

	segments := make([]string, 0, strings.Count(cleaned, "/")+1)
	for _, segment := range strings.Split(cleaned, "/") {
		switch segment {
		case "", ".", "..":
			continue
		}
		segments = append(segments, segment)
	}
	if len(segments) == 0 {
		return fallbackName
	}

	last := len(segments) - 1
	for i := range last {
		segments[i] = padLastNumber(segments[i], n.padWidth)
	}
	segments[last] = n.cleanFileName(segments[last])
	return strings.Join(segments, "/")
}

func (n *Normalizer) cleanFileName(name string) string {
	stem, ext := splitExtension(name)
	stem = n.stripNoise(stem)
	stem = padLastNumber(stem, n.padWidth)
	if ext != "" {
		ext = strings.ToLower(ext)
		if alias, ok := extensionAliases[ext]; ok {
			ext = alias
		}
	}
	return stem + ext
}

// stripNoise removes configured suffixes and randomized download tokens from
// the end of stem until neither applies. The stem is never emptied.
func (n *Normalizer) stripNoise(stem string) string {
	for {
		trimmed := stem
		for _, suffix := range n.suffixes {
			if len(trimmed) > len(suffix) && strings.HasSuffix(trimmed, suffix) {
				trimmed = trimmed[:len(trimmed)-len(suffix)]
			}
		}
		if cut := trailingToken(trimmed); cut > 0 {
			trimmed = trimmed[:cut]
		}
		if trimmed == stem {
			return stem
		}
		stem = trimmed
	}
}

// trailingToken returns the index of the separator that starts a trailing
// download token in stem, or -1 if stem does not end in one.
func trailingToken(stem string) int {
	sep := strings.LastIndexAny(stem, "_-")
	if sep <= 0 {
		return -1
	}
	if isDownloadToken(stem[sep+1:]) {
		return sep
	}
	return -1
}

// isDownloadToken reports whether token looks like a randomized id: ASCII
// alphanumerics with letters and digits interleaved in both directions.
func isDownloadToken(token string) bool {
	if len(token) < minTokenLen || len(token) > maxTokenLen {
		return false
	}
	var letterThenDigit, digitThenLetter bool
	var prev byte
	for i := 0; i < len(token); i++ {
		c := token[i]
		switch {
		case isDigit(c):
			if i > 0 && isLetter(prev) {
				letterThenDigit = true
			}
		case isLetter(c):
			if i > 0 && isDigit(prev) {
				digitThenLetter = true
			}
		default:
			return false
		}
		prev = c
	}
	return letterThenDigit && digitThenLetter
}

// padLastNumber zero-pads the last run of ASCII digits in s to width. Runs
// already at least width digits long are returned unchanged.
func padLastNumber(s string, width int) string {
	end := -1
	for i := len(s) - 1; i >= 0; i-- {
		if isDigit(s[i]) {
			end = i + 1
			break
		}
	}
	if end < 0 {
		return s
	}
	start := end - 1
	for start > 0 && isDigit(s[start-1]) {
		start--
	}
	if digits := end - start; digits < width {
		return s[:start] + strings.Repeat("0", width-digits) + s[start:]
	}
	return s
}

// splitExtension separates a short alphanumeric extension from name. Dot
// files such as ".DS_Store" have no extension.
func splitExtension(name string) (string, string) {
	ext := path.Ext(name)
	if ext == "" || len(ext) == len(name) || len(ext) > 6 {
		return name, ""
	}
	for i := 1; i < len(ext); i++ {
		if !isDigit(ext[i]) && !isLetter(ext[i]) {
			return name, ""
		}
	}
	return name[:len(name)-len(ext)], ext
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
