// Package fileutil holds small filesystem helpers shared by the archive
// writer: verified copies, hard-link backups, and free-space checks.
package fileutil
