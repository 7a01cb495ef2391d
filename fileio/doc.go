// Package fileio exposes file descriptors through the same opaque handle
// table the rest of the host uses. Open registers an *os.File under a
// fresh handle; Read, Write, Seek, Flush and Stat operate on that handle
// until Close removes it. Path-level helpers (ReadFile, WriteFile,
// ListDir) skip the table for one-shot operations.
package fileio
