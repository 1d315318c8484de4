// Package mmap maps files read-only into memory.
//
// On unix the mapping uses mmap(2) via golang.org/x/sys/unix. Elsewhere the
// file is read into a heap buffer, which keeps the same API.
package mmap
