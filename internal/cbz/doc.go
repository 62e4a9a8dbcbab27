// Package cbz reads and writes comic book archives (ZIP containers of page
// images).
//
// Reader lists an archive's entries lazily in stored order; every call to
// Entries walks the central directory again, so a listing can be restarted.
// WriteFile is all-or-nothing: entries go to a temp file beside the
// destination which is renamed into place only after it is complete, under an
// advisory lock so two processes never write the same destination.
package cbz
