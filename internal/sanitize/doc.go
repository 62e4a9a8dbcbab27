// Package sanitize runs the archive rewriting pipeline.
//
// A Pipeline lists one archive, drops junk metadata entries, assigns
// canonical names, flags byte-identical duplicate pages, transcodes oversized
// images, and writes the survivors in page order through the atomic archive
// writer. Each Run owns its entries outright; nothing carries over between
// archives. RunBatch processes several archives one after another and keeps
// going when one of them fails.
//
// Scan is the read-only counterpart used to inspect archives before
// sanitizing them.
package sanitize
