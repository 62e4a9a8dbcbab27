// Package faults defines the error taxonomy shared by the archive pipeline.
//
// Archive-level failures (ErrCorruptArchive, ErrWrite) abort the run for one
// file; entry-level failures (ErrDecodeFailure) are recovered where they occur
// and surface only as warnings. Wrap stamps stage and operation context onto
// an error while keeping the marker reachable through errors.Is.
package faults
