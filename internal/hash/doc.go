// Package hash provides the CRC32-Castagnoli checksum used to protect
// index snapshots.
package hash
