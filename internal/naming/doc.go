// Package naming derives canonical entry names for comic archive pages.
//
// Normalizer.Canonical is a pure function of the stored entry name: it
// removes redundant path prefixes and randomized download tokens, re-pads the
// page index so that a lexicographic sort matches reading order, and folds the
// extension to a single spelling. Assigner then makes names unique within one
// archive. ArchiveName applies the file-level rename rule used by the rename
// command.
package naming
